package java

import "strings"

type TypeKind int

const (
	TypeKindClass TypeKind = iota
	TypeKindParameterized
	TypeKindVariable
	TypeKindWildcard
	TypeKindGenericArray
)

// Type is a possibly generic type. Implementations are *Class,
// *ParameterizedType, *TypeVariable, *WildcardType and *GenericArrayType;
// switch on TypeKind or a type switch to tell them apart.
type Type interface {
	TypeKind() TypeKind
	// Name renders the type like java.lang.reflect.Type#getTypeName.
	Name() string
	// Erasure returns the raw class the type erases to.
	Erasure() *Class
	isType()
}

// GenericDeclaration is a class or code unit that declares type parameters.
type GenericDeclaration interface {
	TypeParameters() []*TypeVariable
	FullName() string
}

type ParameterizedType struct {
	raw  *Class
	args []Type
}

func (t *ParameterizedType) TypeKind() TypeKind { return TypeKindParameterized }
func (t *ParameterizedType) Erasure() *Class    { return t.raw }
func (t *ParameterizedType) isType()            {}

func (t *ParameterizedType) Raw() *Class { return t.raw }

func (t *ParameterizedType) TypeArguments() []Type {
	return append([]Type(nil), t.args...)
}

func (t *ParameterizedType) Name() string {
	var sb strings.Builder
	sb.WriteString(t.raw.Name())
	sb.WriteString("<")
	for i, arg := range t.args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.Name())
	}
	sb.WriteString(">")
	return sb.String()
}

func (t *ParameterizedType) String() string { return t.Name() }

// TypeVariable is a declared type parameter, or a stub standing in for one
// whose declaration lies in a scope that was not imported. A stub has no
// bounds and reports BoundsUnknown; it is never the same type as a variable
// bounded by java.lang.Object.
type TypeVariable struct {
	name          string
	owner         GenericDeclaration
	bounds        []Type
	boundsUnknown bool
	object        *Class
}

func (t *TypeVariable) TypeKind() TypeKind { return TypeKindVariable }
func (t *TypeVariable) Name() string       { return t.name }
func (t *TypeVariable) isType()            {}

// Owner returns the declaring class or code unit, nil for stubs.
func (t *TypeVariable) Owner() GenericDeclaration { return t.owner }

// Bounds returns the upper bounds. A declared variable without explicit
// bounds is bounded by java.lang.Object.
func (t *TypeVariable) Bounds() []Type {
	return append([]Type(nil), t.bounds...)
}

func (t *TypeVariable) BoundsUnknown() bool { return t.boundsUnknown }

// maxErasureSteps guards against cyclic bounds in malformed input.
const maxErasureSteps = 64

func (t *TypeVariable) Erasure() *Class {
	current := t
	for i := 0; i < maxErasureSteps; i++ {
		if len(current.bounds) == 0 {
			return current.object
		}
		next, ok := current.bounds[0].(*TypeVariable)
		if !ok {
			return current.bounds[0].Erasure()
		}
		current = next
	}
	return t.object
}

// String renders the declaration, e.g. "T extends java.lang.Comparable<T>".
func (t *TypeVariable) String() string {
	if t.boundsUnknown {
		return t.name + " extends <unknown>"
	}
	if len(t.bounds) == 0 {
		return t.name
	}
	names := make([]string, len(t.bounds))
	for i, b := range t.bounds {
		names[i] = b.Name()
	}
	return t.name + " extends " + strings.Join(names, " & ")
}

type WildcardType struct {
	upper  []Type
	lower  []Type
	object *Class
}

func (t *WildcardType) TypeKind() TypeKind { return TypeKindWildcard }
func (t *WildcardType) isType()            {}

func (t *WildcardType) UpperBounds() []Type { return append([]Type(nil), t.upper...) }
func (t *WildcardType) LowerBounds() []Type { return append([]Type(nil), t.lower...) }

func (t *WildcardType) Name() string {
	switch {
	case len(t.upper) > 0:
		return "? extends " + t.upper[0].Name()
	case len(t.lower) > 0:
		return "? super " + t.lower[0].Name()
	}
	return "?"
}

func (t *WildcardType) Erasure() *Class {
	if len(t.upper) > 0 {
		return t.upper[0].Erasure()
	}
	return t.object
}

func (t *WildcardType) String() string { return t.Name() }

// GenericArrayType is an array whose component is parameterized or a type
// variable. Arrays of plain classes are represented by array *Class nodes.
type GenericArrayType struct {
	component Type
	erasure   *Class
}

func (t *GenericArrayType) TypeKind() TypeKind { return TypeKindGenericArray }
func (t *GenericArrayType) Name() string       { return t.component.Name() + "[]" }
func (t *GenericArrayType) Erasure() *Class    { return t.erasure }
func (t *GenericArrayType) isType()            {}

func (t *GenericArrayType) ComponentType() Type { return t.component }

func (t *GenericArrayType) String() string { return t.Name() }

// SameType compares two types structurally. Type variables are equal when
// they have the same name, the same owner and the same bound knowledge;
// their bounds are not compared, so cyclic bounds terminate.
func SameType(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.TypeKind() != b.TypeKind() {
		return false
	}
	switch a := a.(type) {
	case *Class:
		return a == b.(*Class)
	case *ParameterizedType:
		other := b.(*ParameterizedType)
		return a.raw == other.raw && sameTypes(a.args, other.args)
	case *TypeVariable:
		other := b.(*TypeVariable)
		return a.name == other.name && a.owner == other.owner && a.boundsUnknown == other.boundsUnknown
	case *WildcardType:
		other := b.(*WildcardType)
		return sameTypes(a.upper, other.upper) && sameTypes(a.lower, other.lower)
	case *GenericArrayType:
		return SameType(a.component, b.(*GenericArrayType).component)
	}
	return false
}

func sameTypes(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !SameType(a[i], b[i]) {
			return false
		}
	}
	return true
}
