package java

import "fmt"

type AccessKind string

const (
	AccessFieldGet        AccessKind = "get"
	AccessFieldSet        AccessKind = "set"
	AccessMethodCall      AccessKind = "call"
	AccessConstructorCall AccessKind = "construct"
	AccessInstanceofCheck AccessKind = "instanceof"

	// References are method references (Type::method) and constructor
	// references (Type::new) compiled to invokedynamic call sites.
	AccessMethodReference      AccessKind = "method-reference"
	AccessConstructorReference AccessKind = "constructor-reference"
)

// AccessTarget names what an access points at. Owner may be a stub. Name
// and Descriptor are empty for instanceof checks.
type AccessTarget struct {
	Owner      *Class
	Name       string
	Descriptor string
}

func (t AccessTarget) String() string {
	if t.Name == "" {
		return t.Owner.name
	}
	return t.Owner.name + "." + t.Name
}

// Access is a field access, call, method or constructor reference or
// instanceof check made from a code unit.
type Access struct {
	origin   *CodeUnit
	kind     AccessKind
	target   AccessTarget
	line     int
	resolved Member
}

func (a *Access) Origin() *CodeUnit    { return a.origin }
func (a *Access) Kind() AccessKind     { return a.kind }
func (a *Access) Target() AccessTarget { return a.target }

// Line is the source line of the access, 0 when the class file carries no
// line numbers.
func (a *Access) Line() int { return a.line }

// Resolved returns the member the access was resolved to. Fields are looked
// up on the owner, its superinterfaces and then its superclass; methods on
// the owner, its superclasses and then its interfaces.
func (a *Access) Resolved() (Member, bool) { return a.resolved, a.resolved != nil }

// IsResolved reports whether the target member was found. Instanceof checks
// have no member and always count as resolved.
func (a *Access) IsResolved() bool {
	return a.kind == AccessInstanceofCheck || a.resolved != nil
}

func (a *Access) String() string {
	verb := map[AccessKind]string{
		AccessFieldGet:        "gets field",
		AccessFieldSet:        "sets field",
		AccessMethodCall:      "calls method",
		AccessConstructorCall: "calls constructor",
		AccessInstanceofCheck: "checks instanceof",

		AccessMethodReference:      "references method",
		AccessConstructorReference: "references constructor",
	}[a.kind]
	return fmt.Sprintf("%s %s <%s> in (%s:%d)", a.origin.FullName(), verb, a.target, a.origin.owner.sourceFileName(), a.line)
}

func (c *Class) sourceFileName() string {
	if c.source == nil {
		return SimpleName(c.name) + ".java"
	}
	return c.source.FileNameOrGuess()
}

// resolveField looks the field up on owner, then recursively on its direct
// superinterfaces in declaration order, then on its superclass.
func resolveField(owner *Class, name, descriptor string) *Field {
	return lookupField(owner, name, descriptor, make(map[*Class]bool))
}

func lookupField(c *Class, name, descriptor string, seen map[*Class]bool) *Field {
	if c == nil || seen[c] {
		return nil
	}
	seen[c] = true
	for _, f := range c.fields {
		if f.name == name && (descriptor == "" || f.descriptor == descriptor) {
			return f
		}
	}
	for _, iface := range c.interfaces {
		if f := lookupField(iface, name, descriptor, seen); f != nil {
			return f
		}
	}
	return lookupField(c.superclass, name, descriptor, seen)
}

func resolveMethod(owner *Class, name, descriptor string) *CodeUnit {
	order := append([]*Class{owner}, owner.AllSuperclasses()...)
	for _, c := range append(order, owner.AllInterfaces()...) {
		for _, m := range c.methods {
			if m.name == name && m.descriptor == descriptor {
				return m
			}
		}
	}
	return nil
}

func resolveConstructor(owner *Class, descriptor string) *CodeUnit {
	for _, ctor := range owner.constructors {
		if ctor.descriptor == descriptor {
			return ctor
		}
	}
	return nil
}
