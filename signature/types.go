// Package signature parses the generic signatures stored in the Signature
// attribute of class files.
package signature

import "strings"

// Type is one of *ClassType, *TypeVar, *Wildcard, *Array or *Primitive.
type Type interface {
	isType()
	String() string
}

// ClassType is a possibly parameterized class reference. Name is the binary
// name with dots as package separator and '$' before nested class names.
// For an inner class reference Outer<A>.Inner<B>, Args holds only B.
type ClassType struct {
	Name string
	Args []Type
}

type TypeVar struct {
	Name string
}

// Wildcard is "?", "? extends Upper" or "? super Lower".
type Wildcard struct {
	Upper Type
	Lower Type
}

type Array struct {
	Component Type
}

// Primitive holds the descriptor character of a primitive type.
type Primitive struct {
	Descriptor byte
}

func (*ClassType) isType() {}
func (*TypeVar) isType()   {}
func (*Wildcard) isType()  {}
func (*Array) isType()     {}
func (*Primitive) isType() {}

func (t *ClassType) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	var sb strings.Builder
	sb.WriteString(t.Name)
	sb.WriteString("<")
	for i, arg := range t.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.String())
	}
	sb.WriteString(">")
	return sb.String()
}

func (t *TypeVar) String() string { return t.Name }

func (t *Wildcard) String() string {
	switch {
	case t.Upper != nil:
		return "? extends " + t.Upper.String()
	case t.Lower != nil:
		return "? super " + t.Lower.String()
	}
	return "?"
}

func (t *Array) String() string { return t.Component.String() + "[]" }

func (t *Primitive) String() string { return primitiveNames[t.Descriptor] }

var primitiveNames = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
}

// TypeParameter is a declared type variable. Bounds lists the class bound,
// if any, followed by the interface bounds.
type TypeParameter struct {
	Name   string
	Bounds []Type
}

type ClassSignature struct {
	TypeParameters []TypeParameter
	Superclass     *ClassType
	Interfaces     []*ClassType
}

// MethodSignature describes a generic method. Return is nil for void.
type MethodSignature struct {
	TypeParameters []TypeParameter
	Parameters     []Type
	Return         Type
	Throws         []Type
}
