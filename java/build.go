package java

import (
	"fmt"
	"sort"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/classgraph/classfile"
	"github.com/dhamidi/classgraph/signature"
)

var log = commonlog.GetLogger("classgraph.java")

// DefaultMaxResolveDepth lets the resolver supply classes referenced by
// imported classes, but not classes referenced only by resolved ones.
const DefaultMaxResolveDepth = 1

type BuildOptions struct {
	// Resolver is asked for classes that are referenced but were not
	// imported. Without a resolver they become stubs.
	Resolver DescriptorResolver
	// MaxResolveDepth bounds how far resolution follows references away
	// from the imported classes. Values below 1 mean DefaultMaxResolveDepth.
	MaxResolveDepth int
}

type pendingClass struct {
	class     *Class
	desc      *ClassDescriptor
	depth     int
	signature *signature.ClassSignature
	fields    []pendingField
	codeUnits []pendingCodeUnit
	records   []pendingRecord
}

type pendingField struct {
	field     *Field
	signature signature.Type
}

type pendingCodeUnit struct {
	codeUnit  *CodeUnit
	signature *signature.MethodSignature
	accesses  []pendingAccess
}

type pendingAccess struct {
	raw   RawAccess
	owner *Class
}

type pendingRecord struct {
	component *RecordComponent
	signature signature.Type
}

type builder struct {
	classes       *Classes
	resolver      DescriptorResolver
	maxDepth      int
	tried         map[string]bool
	queue         []*pendingClass
	genericArrays []*GenericArrayType
	stubVariables map[stubVariableKey]*TypeVariable
	err           error
}

// Build turns descriptors into a linked class graph. Every descriptor gets
// a handle before any class is populated, so references between imported
// classes, including cyclic ones, resolve to the shared handles without
// recursion. Referenced names that are neither imported nor supplied by the
// resolver become stubs.
//
// Build fails only on an InconsistentTypeParameterError or a resolver error.
func Build(descriptors []*ClassDescriptor, opts BuildOptions) (*Classes, error) {
	b := &builder{
		classes:       newClasses(),
		resolver:      opts.Resolver,
		maxDepth:      opts.MaxResolveDepth,
		tried:         make(map[string]bool),
		stubVariables: make(map[stubVariableKey]*TypeVariable),
	}
	if b.maxDepth < 1 {
		b.maxDepth = DefaultMaxResolveDepth
	}

	for _, d := range dedupe(descriptors) {
		b.allocate(d, 0)
	}

	headers, linked, generics, arrays := 0, 0, 0, 0
	for headers < len(b.queue) {
		for ; headers < len(b.queue); headers++ {
			b.populateHeader(b.queue[headers])
			if b.err != nil {
				return nil, b.err
			}
		}
		for ; linked < headers; linked++ {
			b.linkEnclosingCodeUnit(b.queue[linked])
		}
		for ; generics < headers; generics++ {
			if err := b.resolveGenerics(b.queue[generics]); err != nil {
				return nil, err
			}
			if b.err != nil {
				return nil, b.err
			}
		}
		for ; arrays < len(b.genericArrays); arrays++ {
			g := b.genericArrays[arrays]
			g.erasure = b.classFor(ArrayName(g.component.Erasure().name), b.maxDepth)
		}
	}

	b.resolveAccesses()

	log.Debugf("built %d classes (%d from descriptors, %d stubs)",
		len(b.classes.arena), len(b.queue), len(b.classes.report.Stubs))
	return b.classes, nil
}

// dedupe keeps one descriptor per class name, preferring the lowest Order,
// and returns them sorted by name.
func dedupe(descriptors []*ClassDescriptor) []*ClassDescriptor {
	sorted := make([]*ClassDescriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if d != nil && d.Name != "" {
			sorted = append(sorted, d)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		ni, nj := NormalizeName(sorted[i].Name), NormalizeName(sorted[j].Name)
		if ni != nj {
			return ni < nj
		}
		return sorted[i].Order < sorted[j].Order
	})

	result := sorted[:0]
	for i, d := range sorted {
		if i > 0 && NormalizeName(sorted[i-1].Name) == NormalizeName(d.Name) {
			log.Debugf("ignoring duplicate definition of %s (order %d)", d.Name, d.Order)
			continue
		}
		result = append(result, d)
	}
	return result
}

func (b *builder) allocate(d *ClassDescriptor, depth int) *pendingClass {
	c := b.classes.add(&Class{name: NormalizeName(d.Name)})
	p := &pendingClass{class: c, desc: d, depth: depth}
	b.queue = append(b.queue, p)
	return p
}

func newStubClass(name string) *Class {
	return &Class{name: name, kind: ClassKindClass, stub: true}
}

func newPrimitiveClass(name string) *Class {
	return &Class{
		name:      name,
		kind:      ClassKindClass,
		modifiers: ModifierPublic | ModifierFinal | ModifierAbstract,
		primitive: true,
	}
}

func newArrayClass(name string, component *Class) *Class {
	return &Class{
		name:      name,
		kind:      ClassKindClass,
		modifiers: ModifierPublic | ModifierFinal | ModifierAbstract,
		component: component,
	}
}

// classFor returns the handle for name, creating it if needed. It never
// populates a class: resolved descriptors are queued, everything else
// becomes an array, primitive or stub node.
func (b *builder) classFor(name string, depth int) *Class {
	name = NormalizeName(name)
	if c, ok := b.classes.byName[name]; ok {
		return c
	}
	if component := ComponentName(name); component != "" {
		return b.classes.add(newArrayClass(name, b.classFor(component, depth)))
	}
	if IsPrimitiveName(name) {
		return b.classes.add(newPrimitiveClass(name))
	}
	if b.resolver != nil && depth < b.maxDepth && !b.tried[name] {
		b.tried[name] = true
		desc, err := b.resolver.TryResolve(name)
		switch {
		case err != nil:
			if b.err == nil {
				b.err = fmt.Errorf("failed to resolve %s: %w", name, err)
			}
		case desc != nil && NormalizeName(desc.Name) != name:
			log.Warningf("resolver returned %s when asked for %s", desc.Name, name)
		case desc != nil:
			log.Debugf("resolved %s at depth %d", name, depth+1)
			return b.allocate(desc, depth+1).class
		}
	}
	log.Debugf("creating stub for %s", name)
	b.classes.report.Stubs = append(b.classes.report.Stubs, name)
	return b.classes.add(newStubClass(name))
}

func (b *builder) object(depth int) *Class {
	return b.classFor(ObjectClassName, depth)
}

func (b *builder) signatureFailure(site string, err error) {
	log.Warningf("falling back to erased types for %s: %s", site, err)
	b.classes.report.SignatureErrors = append(b.classes.report.SignatureErrors, SignatureFailure{Site: site, Err: err})
}

func (b *builder) populateHeader(p *pendingClass) {
	c, d := p.class, p.desc

	c.kind = d.Kind
	if c.kind == "" {
		c.kind = ClassKindClass
	}
	c.modifiers = d.Modifiers
	c.source = d.Source

	if d.Signature != "" {
		sig, err := signature.ParseClass(d.Signature)
		if err != nil {
			b.signatureFailure(c.name, err)
		} else {
			p.signature = sig
		}
	}

	if !c.IsInterface() && d.SuperclassName != "" && c.name != ObjectClassName {
		c.superclass = b.classFor(d.SuperclassName, p.depth)
	}
	for _, name := range d.InterfaceNames {
		c.interfaces = append(c.interfaces, b.classFor(name, p.depth))
	}
	for _, name := range d.PermittedSubclassNames {
		c.permittedSubclasses = append(c.permittedSubclasses, b.classFor(name, p.depth))
	}
	if d.EnclosingClassName != "" {
		c.enclosingClass = b.classFor(d.EnclosingClassName, p.depth)
	}
	if d.EnclosingMethod != nil {
		ref := *d.EnclosingMethod
		c.enclosingMethodRef = &ref
	}
	if p.signature != nil {
		for _, tp := range p.signature.TypeParameters {
			c.typeParameters = append(c.typeParameters, b.newTypeVariable(tp.Name, c, p.depth))
		}
	}
	c.annotations = b.annotations(d.Annotations, p.depth)

	for _, fd := range d.Fields {
		p.fields = append(p.fields, b.newField(c, fd, p.depth))
	}
	for _, cud := range d.CodeUnits {
		p.codeUnits = append(p.codeUnits, b.newCodeUnit(c, cud, p.depth))
	}
	for _, rcd := range d.RecordComponents {
		p.records = append(p.records, b.newRecordComponent(c, rcd, p.depth))
	}
}

func (b *builder) newTypeVariable(name string, owner GenericDeclaration, depth int) *TypeVariable {
	return &TypeVariable{name: name, owner: owner, object: b.object(depth)}
}

func (b *builder) newField(c *Class, fd *FieldDescriptor, depth int) pendingField {
	f := &Field{
		owner:         c,
		name:          fd.Name,
		descriptor:    fd.Descriptor,
		modifiers:     fd.Modifiers,
		rawType:       b.classFor(DescriptorToName(fd.Descriptor), depth),
		annotations:   b.annotations(fd.Annotations, depth),
		constantValue: fd.ConstantValue,
	}
	c.fields = append(c.fields, f)

	pf := pendingField{field: f}
	if fd.Signature != "" {
		sig, err := signature.ParseField(fd.Signature)
		if err != nil {
			b.signatureFailure(f.FullName(), err)
		} else {
			pf.signature = sig
		}
	}
	return pf
}

func (b *builder) newCodeUnit(c *Class, cud *CodeUnitDescriptor, depth int) pendingCodeUnit {
	cu := &CodeUnit{
		owner:      c,
		kind:       CodeUnitMethod,
		name:       cud.Name,
		descriptor: cud.Descriptor,
		modifiers:  cud.Modifiers,
	}
	switch cud.Name {
	case ConstructorName:
		cu.kind = CodeUnitConstructor
		c.constructors = append(c.constructors, cu)
	case StaticInitializerName:
		cu.kind = CodeUnitStaticInitializer
		c.staticInitializer = cu
	default:
		c.methods = append(c.methods, cu)
	}

	md, err := classfile.ParseMethodDescriptor(cud.Descriptor)
	if err != nil {
		log.Warningf("%s: %s", c.name, err.Error())
		md = &classfile.MethodDescriptor{Return: VoidName}
	}
	for _, p := range md.Parameters {
		cu.rawParameterTypes = append(cu.rawParameterTypes, b.classFor(p, depth))
	}
	cu.rawReturnType = b.classFor(md.Return, depth)
	for _, name := range cud.ExceptionNames {
		cu.throws = append(cu.throws, b.classFor(name, depth))
	}
	cu.annotations = b.annotations(cud.Annotations, depth)
	for _, anns := range cud.ParameterAnnotations {
		cu.parameterAnnotations = append(cu.parameterAnnotations, b.annotations(anns, depth))
	}

	pcu := pendingCodeUnit{codeUnit: cu}
	if cud.Signature != "" {
		sig, err := signature.ParseMethod(cud.Signature)
		if err != nil {
			b.signatureFailure(cu.FullName(), err)
		} else {
			pcu.signature = sig
			for _, tp := range sig.TypeParameters {
				cu.typeParameters = append(cu.typeParameters, b.newTypeVariable(tp.Name, cu, depth))
			}
		}
	}
	for _, raw := range cud.Accesses {
		pcu.accesses = append(pcu.accesses, pendingAccess{raw: raw, owner: b.classFor(raw.Owner, depth)})
	}
	return pcu
}

func (b *builder) newRecordComponent(c *Class, rcd RecordComponentDescriptor, depth int) pendingRecord {
	rc := &RecordComponent{
		owner:   c,
		name:    rcd.Name,
		rawType: b.classFor(DescriptorToName(rcd.Descriptor), depth),
	}
	if f, ok := c.Field(rcd.Name); ok {
		rc.field = f
	}
	rc.accessor = c.codeUnit(rcd.Name, "()"+rcd.Descriptor)
	c.recordComponents = append(c.recordComponents, rc)

	pr := pendingRecord{component: rc}
	if rcd.Signature != "" {
		sig, err := signature.ParseField(rcd.Signature)
		if err != nil {
			b.signatureFailure(c.name+"."+rcd.Name, err)
		} else {
			pr.signature = sig
		}
	}
	return pr
}

func (b *builder) annotations(descs []AnnotationDescriptor, depth int) []*Annotation {
	if len(descs) == 0 {
		return nil
	}
	result := make([]*Annotation, len(descs))
	for i := range descs {
		result[i] = b.annotation(descs[i], depth)
	}
	return result
}

func (b *builder) annotation(d AnnotationDescriptor, depth int) *Annotation {
	a := &Annotation{typ: b.classFor(d.Type, depth), retention: d.Retention}
	for _, e := range d.Elements {
		a.elements = append(a.elements, AnnotationElement{Name: e.Name, Value: b.annotationValue(e.Value, depth)})
	}
	return a
}

func (b *builder) annotationValue(v interface{}, depth int) interface{} {
	switch v := v.(type) {
	case EnumConstantDescriptor:
		return EnumConstant{Type: b.classFor(v.Type, depth), Name: v.Name}
	case ClassLiteralDescriptor:
		return b.classFor(v.Name, depth)
	case AnnotationDescriptor:
		return b.annotation(v, depth)
	case []interface{}:
		result := make([]interface{}, len(v))
		for i := range v {
			result[i] = b.annotationValue(v[i], depth)
		}
		return result
	}
	return v
}

// linkEnclosingCodeUnit connects a local or anonymous class to the code unit
// it was declared in.
func (b *builder) linkEnclosingCodeUnit(p *pendingClass) {
	c := p.class
	ref := c.enclosingMethodRef
	if ref == nil {
		return
	}
	owner := c.enclosingClass
	if owner == nil || owner.stub {
		b.classes.report.UnresolvedEnclosing = append(b.classes.report.UnresolvedEnclosing, c.name)
		return
	}
	cu := owner.codeUnit(ref.Name, ref.Descriptor)
	if cu == nil {
		log.Warningf("enclosing code unit %s%s of %s not found in %s", ref.Name, ref.Descriptor, c.name, owner.name)
		b.classes.report.UnresolvedEnclosing = append(b.classes.report.UnresolvedEnclosing, c.name)
		return
	}
	c.enclosingCodeUnit = cu
	c.enclosingMethodRef = nil
}

func (b *builder) resolveGenerics(p *pendingClass) error {
	c := p.class
	ctx := typeContext{class: c}

	if sig := p.signature; sig != nil {
		for i, tp := range sig.TypeParameters {
			bounds, err := b.resolveTypes(tp.Bounds, ctx, p.depth)
			if err != nil {
				return err
			}
			c.typeParameters[i].bounds = bounds
		}
		if c.superclass != nil && sig.Superclass != nil {
			t, err := b.resolveType(sig.Superclass, ctx, p.depth)
			if err != nil {
				return err
			}
			c.genericSuperclass = t
		}
		if len(sig.Interfaces) == len(c.interfaces) && len(sig.Interfaces) > 0 {
			c.genericInterfaces = make([]Type, len(sig.Interfaces))
			for i, iface := range sig.Interfaces {
				t, err := b.resolveType(iface, ctx, p.depth)
				if err != nil {
					return err
				}
				c.genericInterfaces[i] = t
			}
		} else if len(sig.Interfaces) != len(c.interfaces) {
			b.signatureFailure(c.name, fmt.Errorf("signature declares %d interfaces, class file %d", len(sig.Interfaces), len(c.interfaces)))
		}
	}

	for _, pf := range p.fields {
		if pf.signature == nil {
			continue
		}
		t, err := b.resolveType(pf.signature, ctx.at(pf.field.FullName()), p.depth)
		if err != nil {
			return err
		}
		pf.field.genericType = t
	}

	for _, pcu := range p.codeUnits {
		if err := b.resolveCodeUnitGenerics(pcu, p.depth); err != nil {
			return err
		}
	}

	for _, pr := range p.records {
		if pr.signature == nil {
			continue
		}
		t, err := b.resolveType(pr.signature, ctx.at(c.name+"."+pr.component.name), p.depth)
		if err != nil {
			return err
		}
		pr.component.genericType = t
	}
	return nil
}

func (b *builder) resolveCodeUnitGenerics(pcu pendingCodeUnit, depth int) error {
	sig, cu := pcu.signature, pcu.codeUnit
	if sig == nil {
		return nil
	}
	ctx := typeContext{class: cu.owner, codeUnit: cu}

	for i, tp := range sig.TypeParameters {
		bounds, err := b.resolveTypes(tp.Bounds, ctx, depth)
		if err != nil {
			return err
		}
		cu.typeParameters[i].bounds = bounds
	}

	params, err := b.resolveTypes(sig.Parameters, ctx, depth)
	if err != nil {
		return err
	}
	cu.parameterTypes = make([]Type, 0, len(params))
	cu.parameterTypes = append(cu.parameterTypes, params...)

	if sig.Return == nil {
		cu.returnType = b.classFor(VoidName, depth)
	} else if cu.returnType, err = b.resolveType(sig.Return, ctx, depth); err != nil {
		return err
	}

	if len(sig.Throws) > 0 {
		throws, err := b.resolveTypes(sig.Throws, ctx, depth)
		if err != nil {
			return err
		}
		cu.throws = throws
	}
	return nil
}

func (b *builder) resolveTypes(types []signature.Type, ctx typeContext, depth int) ([]Type, error) {
	if len(types) == 0 {
		return nil, nil
	}
	result := make([]Type, len(types))
	for i, t := range types {
		resolved, err := b.resolveType(t, ctx, depth)
		if err != nil {
			return nil, err
		}
		result[i] = resolved
	}
	return result, nil
}

func (b *builder) resolveType(t signature.Type, ctx typeContext, depth int) (Type, error) {
	switch t := t.(type) {
	case *signature.ClassType:
		raw := b.classFor(t.Name, depth)
		if len(t.Args) == 0 {
			return raw, nil
		}
		args, err := b.resolveTypes(t.Args, ctx, depth)
		if err != nil {
			return nil, err
		}
		return &ParameterizedType{raw: raw, args: args}, nil

	case *signature.TypeVar:
		tv, err := b.lookupTypeVariable(t.Name, ctx)
		if err != nil {
			return nil, err
		}
		return tv, nil

	case *signature.Wildcard:
		w := &WildcardType{object: b.object(depth)}
		if t.Upper != nil {
			upper, err := b.resolveType(t.Upper, ctx, depth)
			if err != nil {
				return nil, err
			}
			w.upper = []Type{upper}
		}
		if t.Lower != nil {
			lower, err := b.resolveType(t.Lower, ctx, depth)
			if err != nil {
				return nil, err
			}
			w.lower = []Type{lower}
		}
		return w, nil

	case *signature.Array:
		component, err := b.resolveType(t.Component, ctx, depth)
		if err != nil {
			return nil, err
		}
		if cls, ok := component.(*Class); ok {
			return b.classFor(ArrayName(cls.name), depth), nil
		}
		g := &GenericArrayType{component: component}
		b.genericArrays = append(b.genericArrays, g)
		return g, nil

	case *signature.Primitive:
		return b.classFor(t.String(), depth), nil
	}
	return b.object(depth), nil
}

func (b *builder) resolveAccesses() {
	for _, p := range b.queue {
		for _, pcu := range p.codeUnits {
			for _, pa := range pcu.accesses {
				a := &Access{
					origin: pcu.codeUnit,
					kind:   pa.raw.Kind,
					target: AccessTarget{Owner: pa.owner, Name: pa.raw.Name, Descriptor: pa.raw.Descriptor},
					line:   pa.raw.Line,
				}
				switch a.kind {
				case AccessFieldGet, AccessFieldSet:
					if f := resolveField(pa.owner, pa.raw.Name, pa.raw.Descriptor); f != nil {
						a.resolved = f
					}
				case AccessMethodCall, AccessMethodReference:
					if m := resolveMethod(pa.owner, pa.raw.Name, pa.raw.Descriptor); m != nil {
						a.resolved = m
					}
				case AccessConstructorCall, AccessConstructorReference:
					if ctor := resolveConstructor(pa.owner, pa.raw.Descriptor); ctor != nil {
						a.resolved = ctor
					}
				}
				if a.resolved != nil {
					b.classes.accessesTo[a.resolved] = append(b.classes.accessesTo[a.resolved], a)
				} else if !a.IsResolved() {
					b.classes.report.UnresolvedAccesses = append(b.classes.report.UnresolvedAccesses, a)
				}
				pcu.codeUnit.accesses = append(pcu.codeUnit.accesses, a)
			}
		}
	}
}
