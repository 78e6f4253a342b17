package export

import (
	"github.com/dhamidi/classgraph/java"
)

// Row is one element of an UNWIND batch.
type Row = map[string]any

// MemberKey identifies a member node. Overloads and bridge methods share a
// full name, so the key carries the JVM descriptor.
func MemberKey(m java.Member) string {
	return m.Owner().Name() + "." + m.Name() + m.Descriptor()
}

// ClassRows describes every imported class. Stub classes only appear as
// relationship endpoints.
func ClassRows(classes *java.Classes) []Row {
	var rows []Row
	for _, c := range classes.Imported() {
		row := Row{
			"name":      c.Name(),
			"simple":    c.SimpleName(),
			"package":   c.PackageName(),
			"kind":      string(c.Kind()),
			"modifiers": c.Modifiers().Names(),
			"source":    "",
			"checksum":  "",
		}
		if src := c.Source(); src != nil {
			row["source"] = src.URL.String()
			row["checksum"] = src.Checksum.String()
		}
		rows = append(rows, row)
	}
	return rows
}

// MemberRows describes the fields and code units of the imported classes.
// The owner column drives the DECLARES relationship.
func MemberRows(classes *java.Classes) []Row {
	var rows []Row
	for _, c := range classes.Imported() {
		for _, m := range c.Members() {
			kind := "field"
			if cu, ok := m.(*java.CodeUnit); ok {
				kind = string(cu.Kind())
			}
			rows = append(rows, Row{
				"key":        MemberKey(m),
				"owner":      c.Name(),
				"name":       m.Name(),
				"full_name":  m.FullName(),
				"descriptor": m.Descriptor(),
				"kind":       kind,
				"modifiers":  m.Modifiers().Names(),
			})
		}
	}
	return rows
}

// DependencyRows lists the direct dependencies of every imported class, one
// row per origin, target and kind.
func DependencyRows(classes *java.Classes) []Row {
	var rows []Row
	for _, c := range classes.Imported() {
		for _, d := range c.DirectDependencies() {
			rows = append(rows, Row{
				"origin": d.Origin.Name(),
				"target": d.Target.Name(),
				"kind":   string(d.Kind),
				"stub":   d.Target.IsStub(),
			})
		}
	}
	return rows
}

// AccessRows splits accesses into those resolved to a member and those that
// only name a class: instanceof checks and unresolved targets.
func AccessRows(classes *java.Classes) (toMember, toClass []Row) {
	for _, c := range classes.Imported() {
		for _, a := range c.AccessesFromSelf() {
			row := Row{
				"origin": MemberKey(a.Origin()),
				"kind":   string(a.Kind()),
				"line":   a.Line(),
			}
			if target, ok := a.Resolved(); ok {
				row["target"] = MemberKey(target)
				toMember = append(toMember, row)
				continue
			}
			row["target"] = a.Target().Owner.BaseComponentType().Name()
			row["member"] = a.Target().Name
			toClass = append(toClass, row)
		}
	}
	return toMember, toClass
}
