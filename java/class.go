package java

// Class is a node of the class graph. Besides imported classes it represents
// stubs for referenced classes that were not imported, arrays and
// primitives. Handles are shared: every reference to a class name within one
// graph yields the same *Class.
type Class struct {
	index     int
	name      string
	kind      ClassKind
	modifiers Modifiers
	stub      bool
	primitive bool
	component *Class
	source    *Source

	superclass        *Class
	genericSuperclass Type
	interfaces        []*Class
	genericInterfaces []Type
	typeParameters    []*TypeVariable

	enclosingClass     *Class
	enclosingCodeUnit  *CodeUnit
	enclosingMethodRef *MethodRef

	fields              []*Field
	methods             []*CodeUnit
	constructors        []*CodeUnit
	staticInitializer   *CodeUnit
	annotations         []*Annotation
	recordComponents    []*RecordComponent
	permittedSubclasses []*Class
}

func (c *Class) TypeKind() TypeKind { return TypeKindClass }
func (c *Class) Erasure() *Class    { return c }
func (c *Class) isType()            {}

// Index is the position of the class in its graph's arena.
func (c *Class) Index() int { return c.index }

func (c *Class) Name() string     { return c.name }
func (c *Class) FullName() string { return c.name }
func (c *Class) String() string   { return c.name }

func (c *Class) SimpleName() string  { return SimpleName(c.name) }
func (c *Class) PackageName() string { return PackageName(c.name) }

func (c *Class) Kind() ClassKind      { return c.kind }
func (c *Class) Modifiers() Modifiers { return c.modifiers }

// IsStub reports whether the class was referenced but never imported or
// resolved. Stubs carry only their name.
func (c *Class) IsStub() bool { return c.stub }

func (c *Class) IsPrimitive() bool  { return c.primitive }
func (c *Class) IsArray() bool      { return c.component != nil }
func (c *Class) IsInterface() bool  { return c.kind == ClassKindInterface || c.kind == ClassKindAnnotation }
func (c *Class) IsEnum() bool       { return c.kind == ClassKindEnum }
func (c *Class) IsRecord() bool     { return c.kind == ClassKindRecord }
func (c *Class) IsAnnotation() bool { return c.kind == ClassKindAnnotation }

// IsImported reports whether the class was built from a descriptor.
func (c *Class) IsImported() bool { return !c.stub && !c.primitive && c.component == nil }

func (c *Class) IsTopLevel() bool  { return c.enclosingClass == nil }
func (c *Class) IsAnonymous() bool { return c.enclosingClass != nil && c.SimpleName() == "" }

// IsLocal reports whether the class was declared inside a code unit.
func (c *Class) IsLocal() bool {
	return !c.IsAnonymous() && (c.enclosingCodeUnit != nil || c.enclosingMethodRef != nil)
}

// ComponentType returns the element type of an array, nil otherwise.
func (c *Class) ComponentType() *Class { return c.component }

// BaseComponentType strips all array dimensions.
func (c *Class) BaseComponentType() *Class {
	base := c
	for base.component != nil {
		base = base.component
	}
	return base
}

func (c *Class) Source() *Source { return c.source }

// Superclass is nil for interfaces, java.lang.Object, primitives and stubs.
func (c *Class) Superclass() *Class { return c.superclass }

// GenericSuperclass is the superclass with its type arguments, or the raw
// superclass if it has none.
func (c *Class) GenericSuperclass() Type {
	if c.genericSuperclass != nil {
		return c.genericSuperclass
	}
	if c.superclass == nil {
		return nil
	}
	return c.superclass
}

func (c *Class) Interfaces() []*Class { return append([]*Class(nil), c.interfaces...) }

func (c *Class) GenericInterfaces() []Type {
	if c.genericInterfaces != nil {
		return append([]Type(nil), c.genericInterfaces...)
	}
	result := make([]Type, len(c.interfaces))
	for i, iface := range c.interfaces {
		result[i] = iface
	}
	return result
}

func (c *Class) TypeParameters() []*TypeVariable {
	return append([]*TypeVariable(nil), c.typeParameters...)
}

func (c *Class) EnclosingClass() *Class { return c.enclosingClass }

// EnclosingCodeUnit returns the method or constructor a local or anonymous
// class was declared in, if it could be resolved.
func (c *Class) EnclosingCodeUnit() *CodeUnit { return c.enclosingCodeUnit }

// AllSuperclasses walks the superclass chain, nearest first.
func (c *Class) AllSuperclasses() []*Class {
	var result []*Class
	seen := map[*Class]bool{c: true}
	for s := c.superclass; s != nil && !seen[s]; s = s.superclass {
		seen[s] = true
		result = append(result, s)
	}
	return result
}

// AllInterfaces returns the interfaces implemented by the class or any of
// its supertypes, breadth first.
func (c *Class) AllInterfaces() []*Class {
	var result []*Class
	seen := map[*Class]bool{}
	queue := append([]*Class{c}, c.AllSuperclasses()...)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, iface := range current.interfaces {
			if seen[iface] {
				continue
			}
			seen[iface] = true
			result = append(result, iface)
			queue = append(queue, iface)
		}
	}
	return result
}

// IsAssignableTo reports whether c is other or a subtype of it.
func (c *Class) IsAssignableTo(other *Class) bool {
	if c == other {
		return true
	}
	for _, s := range c.AllSuperclasses() {
		if s == other {
			return true
		}
	}
	for _, iface := range c.AllInterfaces() {
		if iface == other {
			return true
		}
	}
	return false
}

func (c *Class) Fields() []*Field { return append([]*Field(nil), c.fields...) }

func (c *Class) Field(name string) (*Field, bool) {
	for _, f := range c.fields {
		if f.name == name {
			return f, true
		}
	}
	return nil, false
}

// EnumConstants returns the fields declared as enum constants.
func (c *Class) EnumConstants() []*Field {
	var result []*Field
	for _, f := range c.fields {
		if f.modifiers.Has(ModifierEnum) {
			result = append(result, f)
		}
	}
	return result
}

func (c *Class) Methods() []*CodeUnit { return append([]*CodeUnit(nil), c.methods...) }

// Method finds a method by name and raw parameter type names.
func (c *Class) Method(name string, parameterTypes ...string) (*CodeUnit, bool) {
	for _, m := range c.methods {
		if m.name == name && m.hasParameterNames(parameterTypes) {
			return m, true
		}
	}
	return nil, false
}

func (c *Class) Constructors() []*CodeUnit {
	return append([]*CodeUnit(nil), c.constructors...)
}

func (c *Class) Constructor(parameterTypes ...string) (*CodeUnit, bool) {
	for _, ctor := range c.constructors {
		if ctor.hasParameterNames(parameterTypes) {
			return ctor, true
		}
	}
	return nil, false
}

func (c *Class) StaticInitializer() (*CodeUnit, bool) {
	return c.staticInitializer, c.staticInitializer != nil
}

// CodeUnits returns methods, constructors and the static initializer.
func (c *Class) CodeUnits() []*CodeUnit {
	result := make([]*CodeUnit, 0, len(c.methods)+len(c.constructors)+1)
	result = append(result, c.methods...)
	result = append(result, c.constructors...)
	if c.staticInitializer != nil {
		result = append(result, c.staticInitializer)
	}
	return result
}

func (c *Class) codeUnit(name, descriptor string) *CodeUnit {
	for _, cu := range c.CodeUnits() {
		if cu.name == name && cu.descriptor == descriptor {
			return cu
		}
	}
	return nil
}

// Members returns fields followed by code units.
func (c *Class) Members() []Member {
	result := make([]Member, 0, len(c.fields)+len(c.methods)+len(c.constructors)+1)
	for _, f := range c.fields {
		result = append(result, f)
	}
	for _, cu := range c.CodeUnits() {
		result = append(result, cu)
	}
	return result
}

func (c *Class) Annotations() []*Annotation {
	return append([]*Annotation(nil), c.annotations...)
}

func (c *Class) Annotation(typeName string) (*Annotation, bool) {
	return findAnnotation(c.annotations, typeName)
}

func (c *Class) RecordComponents() []*RecordComponent {
	return append([]*RecordComponent(nil), c.recordComponents...)
}

func (c *Class) PermittedSubclasses() []*Class {
	return append([]*Class(nil), c.permittedSubclasses...)
}

// AccessesFromSelf returns the accesses made by the class's code units.
func (c *Class) AccessesFromSelf() []*Access {
	var result []*Access
	for _, cu := range c.CodeUnits() {
		result = append(result, cu.accesses...)
	}
	return result
}
