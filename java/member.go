package java

import "strings"

// Member is a field or code unit of a class.
type Member interface {
	Owner() *Class
	Name() string
	// FullName is "Owner.field" for fields and
	// "Owner.method(param, ...)" for code units.
	FullName() string
	Descriptor() string
	Modifiers() Modifiers
	Annotations() []*Annotation
}

type Field struct {
	owner         *Class
	name          string
	descriptor    string
	modifiers     Modifiers
	rawType       *Class
	genericType   Type
	annotations   []*Annotation
	constantValue interface{}
}

func (f *Field) Owner() *Class              { return f.owner }
func (f *Field) Name() string               { return f.name }
func (f *Field) FullName() string           { return f.owner.name + "." + f.name }
func (f *Field) Descriptor() string         { return f.descriptor }
func (f *Field) Modifiers() Modifiers       { return f.modifiers }
func (f *Field) Annotations() []*Annotation { return append([]*Annotation(nil), f.annotations...) }
func (f *Field) String() string             { return f.FullName() }

func (f *Field) RawType() *Class { return f.rawType }

// Type returns the generic type of the field, or its raw type.
func (f *Field) Type() Type {
	if f.genericType != nil {
		return f.genericType
	}
	return f.rawType
}

// ConstantValue is the compile time constant of a static final field.
func (f *Field) ConstantValue() (interface{}, bool) {
	return f.constantValue, f.constantValue != nil
}

type CodeUnitKind string

const (
	CodeUnitMethod            CodeUnitKind = "method"
	CodeUnitConstructor       CodeUnitKind = "constructor"
	CodeUnitStaticInitializer CodeUnitKind = "static initializer"
)

const (
	ConstructorName       = "<init>"
	StaticInitializerName = "<clinit>"
)

// CodeUnit is a method, constructor or static initializer.
type CodeUnit struct {
	owner      *Class
	kind       CodeUnitKind
	name       string
	descriptor string
	modifiers  Modifiers

	typeParameters       []*TypeVariable
	rawParameterTypes    []*Class
	parameterTypes       []Type
	rawReturnType        *Class
	returnType           Type
	throws               []Type
	annotations          []*Annotation
	parameterAnnotations [][]*Annotation
	accesses             []*Access
}

func (cu *CodeUnit) Owner() *Class              { return cu.owner }
func (cu *CodeUnit) Kind() CodeUnitKind         { return cu.kind }
func (cu *CodeUnit) Name() string               { return cu.name }
func (cu *CodeUnit) Descriptor() string         { return cu.descriptor }
func (cu *CodeUnit) Modifiers() Modifiers       { return cu.modifiers }
func (cu *CodeUnit) Annotations() []*Annotation { return append([]*Annotation(nil), cu.annotations...) }
func (cu *CodeUnit) String() string             { return cu.FullName() }

func (cu *CodeUnit) IsConstructor() bool { return cu.kind == CodeUnitConstructor }

func (cu *CodeUnit) FullName() string {
	names := make([]string, len(cu.rawParameterTypes))
	for i, p := range cu.rawParameterTypes {
		names[i] = p.name
	}
	return cu.owner.name + "." + cu.name + "(" + strings.Join(names, ", ") + ")"
}

func (cu *CodeUnit) TypeParameters() []*TypeVariable {
	return append([]*TypeVariable(nil), cu.typeParameters...)
}

// RawParameterTypes are the erased parameter types from the descriptor.
// For constructors of inner classes they include the outer instance.
func (cu *CodeUnit) RawParameterTypes() []*Class {
	return append([]*Class(nil), cu.rawParameterTypes...)
}

// ParameterTypes are the generic parameter types. When the code unit has a
// generic signature they follow it, so the synthetic outer instance of an
// inner class constructor is not included.
func (cu *CodeUnit) ParameterTypes() []Type {
	if cu.parameterTypes != nil {
		return append([]Type(nil), cu.parameterTypes...)
	}
	result := make([]Type, len(cu.rawParameterTypes))
	for i, p := range cu.rawParameterTypes {
		result[i] = p
	}
	return result
}

func (cu *CodeUnit) RawReturnType() *Class { return cu.rawReturnType }

func (cu *CodeUnit) ReturnType() Type {
	if cu.returnType != nil {
		return cu.returnType
	}
	return cu.rawReturnType
}

// ThrowsClause returns the declared exception types.
func (cu *CodeUnit) ThrowsClause() []Type { return append([]Type(nil), cu.throws...) }

func (cu *CodeUnit) ParameterAnnotations() [][]*Annotation {
	return append([][]*Annotation(nil), cu.parameterAnnotations...)
}

// Accesses returns the accesses made by the code unit in bytecode order.
func (cu *CodeUnit) Accesses() []*Access { return append([]*Access(nil), cu.accesses...) }

func (cu *CodeUnit) hasParameterNames(names []string) bool {
	if len(names) != len(cu.rawParameterTypes) {
		return false
	}
	for i, p := range cu.rawParameterTypes {
		if p.name != NormalizeName(names[i]) {
			return false
		}
	}
	return true
}

// RecordComponent links a record component to its field and accessor.
type RecordComponent struct {
	owner       *Class
	name        string
	rawType     *Class
	genericType Type
	field       *Field
	accessor    *CodeUnit
}

func (rc *RecordComponent) Owner() *Class       { return rc.owner }
func (rc *RecordComponent) Name() string        { return rc.name }
func (rc *RecordComponent) RawType() *Class     { return rc.rawType }
func (rc *RecordComponent) Field() *Field       { return rc.field }
func (rc *RecordComponent) Accessor() *CodeUnit { return rc.accessor }

func (rc *RecordComponent) Type() Type {
	if rc.genericType != nil {
		return rc.genericType
	}
	return rc.rawType
}

// Annotation is a resolved annotation. Element values are constants,
// strings, *Class for class literals, EnumConstant, *Annotation or
// []interface{} of those.
type Annotation struct {
	typ       *Class
	retention Retention
	elements  []AnnotationElement
}

type AnnotationElement struct {
	Name  string
	Value interface{}
}

type EnumConstant struct {
	Type *Class
	Name string
}

func (e EnumConstant) String() string { return e.Type.name + "." + e.Name }

func (a *Annotation) Type() *Class         { return a.typ }
func (a *Annotation) Retention() Retention { return a.retention }

func (a *Annotation) Elements() []AnnotationElement {
	return append([]AnnotationElement(nil), a.elements...)
}

func (a *Annotation) Get(name string) (interface{}, bool) {
	for _, e := range a.elements {
		if e.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

func (a *Annotation) String() string { return "@" + a.typ.name }

func findAnnotation(annotations []*Annotation, typeName string) (*Annotation, bool) {
	typeName = NormalizeName(typeName)
	for _, a := range annotations {
		if a.typ.name == typeName {
			return a, true
		}
	}
	return nil, false
}
