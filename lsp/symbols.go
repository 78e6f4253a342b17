package lsp

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/classgraph/java"
)

const (
	maxSymbols     = 500
	deprecatedName = "java.lang.Deprecated"
)

// Symbols lists the imported classes and their members whose simple or
// fully qualified name contains query, ignoring case. An empty query
// matches everything. At most limit symbols are returned; limit <= 0
// means no limit. Synthetic members and static initializers are skipped.
func Symbols(classes *java.Classes, query string, limit int) []protocol.SymbolInformation {
	query = strings.ToLower(query)
	var result []protocol.SymbolInformation
	add := func(si protocol.SymbolInformation) bool {
		result = append(result, si)
		return limit <= 0 || len(result) < limit
	}

	for _, c := range classes.Imported() {
		loc := location(c)
		name := className(c)
		if matches(query, name, c.Name()) {
			si := protocol.SymbolInformation{
				Name:     name,
				Kind:     classKind(c),
				Tags:     tags(c.Annotations()),
				Location: loc,
			}
			if pkg := c.PackageName(); pkg != "" {
				si.ContainerName = &pkg
			}
			if !add(si) {
				return result
			}
		}

		container := c.Name()
		for _, m := range c.Members() {
			if m.Modifiers().Has(java.ModifierSynthetic) {
				continue
			}
			if cu, ok := m.(*java.CodeUnit); ok && cu.Kind() == java.CodeUnitStaticInitializer {
				continue
			}
			name := memberName(m)
			if !matches(query, name, m.FullName()) {
				continue
			}
			if !add(protocol.SymbolInformation{
				Name:          name,
				Kind:          memberKind(m),
				Tags:          tags(m.Annotations()),
				Location:      loc,
				ContainerName: &container,
			}) {
				return result
			}
		}
	}
	return result
}

func matches(query string, names ...string) bool {
	if query == "" {
		return true
	}
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), query) {
			return true
		}
	}
	return false
}

// className is the name without package, keeping the "$" path of nested
// classes so anonymous classes stay distinguishable.
func className(c *java.Class) string {
	if pkg := c.PackageName(); pkg != "" {
		return strings.TrimPrefix(c.Name(), pkg+".")
	}
	return c.Name()
}

func memberName(m java.Member) string {
	cu, ok := m.(*java.CodeUnit)
	if !ok {
		return m.Name()
	}
	signature := strings.TrimPrefix(cu.FullName(), cu.Owner().Name()+".")
	if cu.IsConstructor() {
		return cu.Owner().SimpleName() + strings.TrimPrefix(signature, java.ConstructorName)
	}
	return signature
}

func classKind(c *java.Class) protocol.SymbolKind {
	switch c.Kind() {
	case java.ClassKindInterface, java.ClassKindAnnotation:
		return protocol.SymbolKindInterface
	case java.ClassKindEnum:
		return protocol.SymbolKindEnum
	case java.ClassKindRecord:
		return protocol.SymbolKindStruct
	}
	return protocol.SymbolKindClass
}

func memberKind(m java.Member) protocol.SymbolKind {
	switch m := m.(type) {
	case *java.Field:
		switch {
		case m.Modifiers().Has(java.ModifierEnum):
			return protocol.SymbolKindEnumMember
		case m.Modifiers().Has(java.ModifierStatic | java.ModifierFinal):
			return protocol.SymbolKindConstant
		}
		return protocol.SymbolKindField
	case *java.CodeUnit:
		if m.IsConstructor() {
			return protocol.SymbolKindConstructor
		}
	}
	return protocol.SymbolKindMethod
}

func tags(annotations []*java.Annotation) []protocol.SymbolTag {
	for _, a := range annotations {
		if a.Type().Name() == deprecatedName {
			return []protocol.SymbolTag{protocol.SymbolTagDeprecated}
		}
	}
	return nil
}

func location(c *java.Class) protocol.Location {
	var uri protocol.DocumentUri
	if src := c.Source(); src != nil {
		uri = src.URL.String()
	}
	return protocol.Location{URI: uri}
}
