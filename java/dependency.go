package java

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

type DependencyKind string

const (
	DependencyExtends            DependencyKind = "extends"
	DependencyImplements         DependencyKind = "implements"
	DependencyTypeParameterBound DependencyKind = "type parameter bound"
	DependencyTypeArgument       DependencyKind = "type argument"
	DependencyFieldType          DependencyKind = "field type"
	DependencyParameterType      DependencyKind = "parameter type"
	DependencyReturnType         DependencyKind = "return type"
	DependencyThrows             DependencyKind = "throws"
	DependencyAnnotation         DependencyKind = "annotation"
	DependencyAccess             DependencyKind = "access"
	DependencyInstanceof         DependencyKind = "instanceof"
)

// Dependency is a reference from one class to another. Arrays are reported
// as their base component type.
type Dependency struct {
	Origin *Class
	Target *Class
	Kind   DependencyKind
}

func (d Dependency) String() string {
	return fmt.Sprintf("%s -[%s]-> %s", d.Origin.name, d.Kind, d.Target.name)
}

type dependencyCollector struct {
	origin *Class
	seen   map[Dependency]bool
	deps   []Dependency
	types  map[Type]bool
}

func (dc *dependencyCollector) add(target *Class, kind DependencyKind) {
	if target == nil {
		return
	}
	target = target.BaseComponentType()
	if target == dc.origin || target.primitive {
		return
	}
	d := Dependency{Origin: dc.origin, Target: target, Kind: kind}
	if dc.seen[d] {
		return
	}
	dc.seen[d] = true
	dc.deps = append(dc.deps, d)
}

// addType records the erasure of t under kind and every class mentioned in
// its arguments or bounds as a type argument.
func (dc *dependencyCollector) addType(t Type, kind DependencyKind) {
	if t == nil {
		return
	}
	dc.add(t.Erasure(), kind)
	dc.addNested(t)
}

func (dc *dependencyCollector) addNested(t Type) {
	if dc.types[t] {
		return
	}
	dc.types[t] = true
	switch t := t.(type) {
	case *ParameterizedType:
		for _, arg := range t.args {
			dc.addType(arg, DependencyTypeArgument)
		}
	case *WildcardType:
		for _, bound := range append(append([]Type(nil), t.upper...), t.lower...) {
			dc.addType(bound, DependencyTypeArgument)
		}
	case *GenericArrayType:
		dc.addNested(t.component)
	}
}

func (dc *dependencyCollector) addAnnotations(annotations []*Annotation) {
	for _, a := range annotations {
		dc.add(a.typ, DependencyAnnotation)
	}
}

// DirectDependencies lists the classes c refers to, in declaration order. Self
// references and primitives are omitted and each (target, kind) pair
// appears once.
func (c *Class) DirectDependencies() []Dependency {
	dc := &dependencyCollector{origin: c, seen: make(map[Dependency]bool), types: make(map[Type]bool)}

	if c.genericSuperclass != nil {
		dc.addType(c.genericSuperclass, DependencyExtends)
	} else {
		dc.add(c.superclass, DependencyExtends)
	}
	for i, iface := range c.interfaces {
		if i < len(c.genericInterfaces) {
			dc.addType(c.genericInterfaces[i], DependencyImplements)
		} else {
			dc.add(iface, DependencyImplements)
		}
	}
	for _, tv := range c.typeParameters {
		for _, bound := range tv.bounds {
			dc.addType(bound, DependencyTypeParameterBound)
		}
	}
	dc.addAnnotations(c.annotations)

	for _, f := range c.fields {
		dc.addType(f.Type(), DependencyFieldType)
		dc.addAnnotations(f.annotations)
	}
	for _, cu := range c.CodeUnits() {
		for _, tv := range cu.typeParameters {
			for _, bound := range tv.bounds {
				dc.addType(bound, DependencyTypeParameterBound)
			}
		}
		for _, p := range cu.rawParameterTypes {
			dc.add(p, DependencyParameterType)
		}
		for _, p := range cu.parameterTypes {
			dc.addType(p, DependencyParameterType)
		}
		dc.addType(cu.ReturnType(), DependencyReturnType)
		for _, t := range cu.throws {
			dc.addType(t, DependencyThrows)
		}
		dc.addAnnotations(cu.annotations)
		for _, anns := range cu.parameterAnnotations {
			dc.addAnnotations(anns)
		}
		for _, a := range cu.accesses {
			if a.kind == AccessInstanceofCheck {
				dc.add(a.target.Owner, DependencyInstanceof)
			} else {
				dc.add(a.target.Owner, DependencyAccess)
			}
		}
	}
	return dc.deps
}

// TransitiveDependencies returns every class reachable from c through
// DirectDependencies, excluding c itself, sorted by name. Cycles are followed
// once.
func (cs *Classes) TransitiveDependencies(c *Class) []*Class {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	visited := roaring.New()
	visited.Add(uint32(c.index))
	queue := []*Class{c}
	var result []*Class
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, d := range current.DirectDependencies() {
			if !visited.CheckedAdd(uint32(d.Target.index)) {
				continue
			}
			result = append(result, d.Target)
			queue = append(queue, d.Target)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].name < result[j].name })
	return result
}
