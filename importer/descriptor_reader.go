package importer

import (
	"fmt"
	"strings"

	"github.com/dhamidi/classgraph/classfile"
	"github.com/dhamidi/classgraph/java"
)

// ReadDescriptor decodes one class file into a descriptor. It has no side
// effects and may be called from many goroutines. Malformed input is
// reported as a *classfile.MalformedModuleError.
func ReadDescriptor(uri string, content []byte) (*java.ClassDescriptor, error) {
	cf, err := classfile.ParseBytes(content)
	if err != nil {
		return nil, err
	}
	return descriptorFromClassFile(uri, cf)
}

func descriptorFromClassFile(uri string, cf *classfile.ClassFile) (*java.ClassDescriptor, error) {
	cp := cf.ConstantPool
	name := classfile.InternalToSourceName(cf.ClassName())

	desc := &java.ClassDescriptor{
		Name:      name,
		Kind:      classKind(cf),
		Modifiers: classModifiers(cf.AccessFlags),
		Signature: cf.Signature(),
		Source:    java.NewSource(sourceURL(uri), cf.SourceFile(), java.ChecksumWithState(java.ChecksumUndetermined)),
	}

	if cf.SuperClass != 0 && !cf.AccessFlags.Has(classfile.AccInterface) {
		desc.SuperclassName = classfile.InternalToSourceName(cf.SuperClassName())
	}
	for _, iface := range cf.InterfaceNames() {
		desc.InterfaceNames = append(desc.InterfaceNames, java.NormalizeName(iface))
	}
	for _, sub := range cf.PermittedSubclassNames() {
		desc.PermittedSubclassNames = append(desc.PermittedSubclassNames, java.NormalizeName(sub))
	}

	readNesting(cf, desc)

	for _, attr := range cf.Annotations() {
		desc.Annotations = append(desc.Annotations, annotationDescriptors(cp, attr.Visible, attr.Annotations)...)
	}

	for i := range cf.Fields {
		desc.Fields = append(desc.Fields, fieldDescriptor(cp, &cf.Fields[i]))
	}
	bootstraps := cf.BootstrapMethods()
	for i := range cf.Methods {
		cud, err := codeUnitDescriptor(cp, bootstraps, &cf.Methods[i])
		if err != nil {
			return nil, err
		}
		desc.CodeUnits = append(desc.CodeUnits, cud)
	}

	if rec := cf.Record(); rec != nil && desc.Kind == java.ClassKindRecord {
		for i := range rec.Components {
			rc := &rec.Components[i]
			desc.RecordComponents = append(desc.RecordComponents, java.RecordComponentDescriptor{
				Name:       cp.GetUtf8(rc.NameIndex),
				Descriptor: cp.GetUtf8(rc.DescriptorIndex),
				Signature:  rc.Signature(cp),
			})
		}
	}
	return desc, nil
}

func sourceURL(uri string) java.URLString {
	if u, err := java.ParseURLString(uri); err == nil && !u.IsZero() {
		return u
	}
	return java.FileURL(uri)
}

func classKind(cf *classfile.ClassFile) java.ClassKind {
	switch {
	case cf.IsAnnotation():
		return java.ClassKindAnnotation
	case cf.IsEnum():
		return java.ClassKindEnum
	case cf.IsInterface():
		return java.ClassKindInterface
	case cf.IsRecord():
		return java.ClassKindRecord
	}
	return java.ClassKindClass
}

// readNesting fills in the enclosing class and method. The InnerClasses
// entry describing the class itself carries the source level modifiers of
// member classes, which the class access flags cannot express.
func readNesting(cf *classfile.ClassFile, desc *java.ClassDescriptor) {
	cp := cf.ConstantPool
	self := cf.ClassName()

	for _, entry := range cf.InnerClasses() {
		if cp.GetClassName(entry.InnerClassInfoIndex) != self {
			continue
		}
		desc.Modifiers = classModifiers(entry.InnerClassAccessFlags)
		if entry.OuterClassInfoIndex != 0 {
			desc.EnclosingClassName = classfile.InternalToSourceName(cp.GetClassName(entry.OuterClassInfoIndex))
		}
	}

	if em := cf.EnclosingMethod(); em != nil {
		desc.EnclosingClassName = classfile.InternalToSourceName(cp.GetClassName(em.ClassIndex))
		if em.MethodIndex != 0 {
			name, descriptor := cp.GetNameAndType(em.MethodIndex)
			desc.EnclosingMethod = &java.MethodRef{Name: name, Descriptor: descriptor}
		}
	}
}

var commonModifiers = []struct {
	flag classfile.AccessFlags
	mod  java.Modifiers
}{
	{classfile.AccPublic, java.ModifierPublic},
	{classfile.AccProtected, java.ModifierProtected},
	{classfile.AccPrivate, java.ModifierPrivate},
	{classfile.AccStatic, java.ModifierStatic},
	{classfile.AccFinal, java.ModifierFinal},
	{classfile.AccSynthetic, java.ModifierSynthetic},
}

func modifiers(flags classfile.AccessFlags, extra map[classfile.AccessFlags]java.Modifiers) java.Modifiers {
	var m java.Modifiers
	for _, cm := range commonModifiers {
		if flags&cm.flag != 0 {
			m |= cm.mod
		}
	}
	for flag, mod := range extra {
		if flags&flag != 0 {
			m |= mod
		}
	}
	return m
}

// The JVM reuses bits between member kinds, so each kind has its own table.
var (
	classFlags = map[classfile.AccessFlags]java.Modifiers{
		classfile.AccAbstract: java.ModifierAbstract,
		classfile.AccEnum:     java.ModifierEnum,
	}
	fieldFlags = map[classfile.AccessFlags]java.Modifiers{
		classfile.AccVolatile:  java.ModifierVolatile,
		classfile.AccTransient: java.ModifierTransient,
		classfile.AccEnum:      java.ModifierEnum,
	}
	methodFlags = map[classfile.AccessFlags]java.Modifiers{
		classfile.AccSynchronized: java.ModifierSynchronized,
		classfile.AccBridge:       java.ModifierBridge,
		classfile.AccNative:       java.ModifierNative,
		classfile.AccAbstract:     java.ModifierAbstract,
	}
)

func classModifiers(flags classfile.AccessFlags) java.Modifiers {
	return modifiers(flags, classFlags)
}

func fieldDescriptor(cp classfile.ConstantPool, f *classfile.FieldInfo) *java.FieldDescriptor {
	fd := &java.FieldDescriptor{
		Name:          f.Name(cp),
		Descriptor:    f.Descriptor(cp),
		Signature:     f.Signature(cp),
		Modifiers:     modifiers(f.AccessFlags, fieldFlags),
		ConstantValue: f.ConstantValue(cp),
	}
	for _, attr := range f.Annotations() {
		fd.Annotations = append(fd.Annotations, annotationDescriptors(cp, attr.Visible, attr.Annotations)...)
	}
	return fd
}

func codeUnitDescriptor(cp classfile.ConstantPool, bootstraps []classfile.BootstrapMethod, m *classfile.MethodInfo) (*java.CodeUnitDescriptor, error) {
	cud := &java.CodeUnitDescriptor{
		Name:       m.Name(cp),
		Descriptor: m.Descriptor(cp),
		Signature:  m.Signature(cp),
		Modifiers:  modifiers(m.AccessFlags, methodFlags),
	}
	for _, name := range m.ExceptionNames(cp) {
		cud.ExceptionNames = append(cud.ExceptionNames, java.NormalizeName(name))
	}
	for _, attr := range m.Annotations() {
		cud.Annotations = append(cud.Annotations, annotationDescriptors(cp, attr.Visible, attr.Annotations)...)
	}
	for _, attr := range m.ParameterAnnotations() {
		for i, anns := range attr.ParameterAnnotations {
			for len(cud.ParameterAnnotations) <= i {
				cud.ParameterAnnotations = append(cud.ParameterAnnotations, nil)
			}
			cud.ParameterAnnotations[i] = append(cud.ParameterAnnotations[i], annotationDescriptors(cp, attr.Visible, anns)...)
		}
	}

	if code := m.GetCodeAttribute(cp); code != nil {
		accesses, err := scanAccesses(cp, bootstraps, code)
		if err != nil {
			return nil, err
		}
		cud.Accesses = accesses
	}
	return cud, nil
}

// scanAccesses records the field accesses, calls, method and constructor
// references and instanceof checks in a method body, in bytecode order.
func scanAccesses(cp classfile.ConstantPool, bootstraps []classfile.BootstrapMethod, code *classfile.CodeAttribute) ([]java.RawAccess, error) {
	insns, err := code.Instructions()
	if err != nil {
		return nil, err
	}
	lines := code.LineNumbers()

	var accesses []java.RawAccess
	for _, insn := range insns {
		var kind java.AccessKind
		switch insn.Opcode {
		case classfile.OpGetField, classfile.OpGetStatic:
			kind = java.AccessFieldGet
		case classfile.OpPutField, classfile.OpPutStatic:
			kind = java.AccessFieldSet
		case classfile.OpInvokeVirtual, classfile.OpInvokeStatic, classfile.OpInvokeInterface, classfile.OpInvokeSpecial:
			kind = java.AccessMethodCall
		case classfile.OpInstanceOf:
			owner := cp.GetClassName(insn.Index)
			if owner == "" {
				return nil, malformedCode(insn, fmt.Sprintf("instanceof operand #%d is %s, not a class", insn.Index, cp.TagAt(insn.Index)))
			}
			accesses = append(accesses, java.RawAccess{
				Kind:  java.AccessInstanceofCheck,
				Owner: java.NormalizeName(owner),
				Line:  classfile.LineAt(lines, insn.PC),
			})
			continue
		case classfile.OpInvokeDynamic:
			ref, ok, err := methodReference(cp, bootstraps, insn)
			if err != nil {
				return nil, err
			}
			if ok {
				ref.Line = classfile.LineAt(lines, insn.PC)
				accesses = append(accesses, ref)
			}
			continue
		default:
			continue
		}

		ref, ok := cp.GetMemberRef(insn.Index)
		if !ok {
			return nil, malformedCode(insn, fmt.Sprintf("operand #%d is %s, not a member reference", insn.Index, cp.TagAt(insn.Index)))
		}
		if kind == java.AccessMethodCall && insn.Opcode == classfile.OpInvokeSpecial && ref.Name == java.ConstructorName {
			kind = java.AccessConstructorCall
		}
		accesses = append(accesses, java.RawAccess{
			Kind:       kind,
			Owner:      java.NormalizeName(ref.ClassName),
			Name:       ref.Name,
			Descriptor: ref.Descriptor,
			Line:       classfile.LineAt(lines, insn.PC),
		})
	}
	return accesses, nil
}

const lambdaMetafactory = "java/lang/invoke/LambdaMetafactory"

// methodReference decodes the method or constructor reference created by an
// invokedynamic call site bootstrapped by LambdaMetafactory. Call sites with
// other bootstraps, such as string concatenation, and lambda bodies compiled
// to synthetic lambda$ methods are not references.
func methodReference(cp classfile.ConstantPool, bootstraps []classfile.BootstrapMethod, insn classfile.Instruction) (java.RawAccess, bool, error) {
	bsm, _, _, ok := cp.GetInvokeDynamic(insn.Index)
	if !ok {
		return java.RawAccess{}, false, malformedCode(insn, fmt.Sprintf("operand #%d is %s, not an invokedynamic entry", insn.Index, cp.TagAt(insn.Index)))
	}
	if int(bsm) >= len(bootstraps) {
		return java.RawAccess{}, false, malformedCode(insn, fmt.Sprintf("bootstrap method %d of %d", bsm, len(bootstraps)))
	}
	factory, ok := cp.GetMethodHandle(bootstraps[bsm].MethodRef)
	if !ok || factory.Ref.ClassName != lambdaMetafactory || len(bootstraps[bsm].Arguments) < 2 {
		return java.RawAccess{}, false, nil
	}
	impl, ok := cp.GetMethodHandle(bootstraps[bsm].Arguments[1])
	if !ok || strings.HasPrefix(impl.Ref.Name, "lambda$") {
		return java.RawAccess{}, false, nil
	}

	var kind java.AccessKind
	switch impl.Kind {
	case classfile.RefNewInvokeSpecial:
		kind = java.AccessConstructorReference
	case classfile.RefInvokeVirtual, classfile.RefInvokeStatic, classfile.RefInvokeSpecial, classfile.RefInvokeInterface:
		kind = java.AccessMethodReference
	default:
		return java.RawAccess{}, false, nil
	}
	return java.RawAccess{
		Kind:       kind,
		Owner:      java.NormalizeName(impl.Ref.ClassName),
		Name:       impl.Ref.Name,
		Descriptor: impl.Ref.Descriptor,
	}, true, nil
}

func malformedCode(insn classfile.Instruction, reason string) error {
	return &classfile.MalformedModuleError{
		Section: "code",
		Offset:  int64(insn.PC),
		Err:     fmt.Errorf("opcode 0x%02x: %s", uint8(insn.Opcode), reason),
	}
}

func annotationDescriptors(cp classfile.ConstantPool, visible bool, anns []classfile.Annotation) []java.AnnotationDescriptor {
	retention := java.RetentionClass
	if visible {
		retention = java.RetentionRuntime
	}
	result := make([]java.AnnotationDescriptor, 0, len(anns))
	for i := range anns {
		result = append(result, annotationDescriptor(cp, retention, &anns[i]))
	}
	return result
}

func annotationDescriptor(cp classfile.ConstantPool, retention java.Retention, a *classfile.Annotation) java.AnnotationDescriptor {
	ad := java.AnnotationDescriptor{
		Type:      java.DescriptorToName(cp.GetUtf8(a.TypeIndex)),
		Retention: retention,
	}
	for _, pair := range a.ElementValuePairs {
		ad.Elements = append(ad.Elements, java.AnnotationElementDescriptor{
			Name:  cp.GetUtf8(pair.ElementNameIndex),
			Value: elementValue(cp, retention, pair.Value),
		})
	}
	return ad
}

func elementValue(cp classfile.ConstantPool, retention java.Retention, ev classfile.ElementValue) interface{} {
	switch v := ev.Value.(type) {
	case uint16:
		switch ev.Tag {
		case 's':
			return cp.GetUtf8(v)
		case 'c':
			return java.ClassLiteralDescriptor{Name: java.DescriptorToName(cp.GetUtf8(v))}
		}
		return constantElement(ev.Tag, cp.GetConstant(v))
	case classfile.EnumConstValue:
		return java.EnumConstantDescriptor{
			Type: java.DescriptorToName(cp.GetUtf8(v.TypeNameIndex)),
			Name: cp.GetUtf8(v.ConstNameIndex),
		}
	case classfile.Annotation:
		return annotationDescriptor(cp, retention, &v)
	case classfile.ArrayValue:
		values := make([]interface{}, len(v.Values))
		for i, elem := range v.Values {
			values[i] = elementValue(cp, retention, elem)
		}
		return values
	}
	return nil
}

// constantElement narrows the int32 the constant pool stores for the small
// primitive element types.
func constantElement(tag byte, c interface{}) interface{} {
	n, ok := c.(int32)
	if !ok {
		return c
	}
	switch tag {
	case 'Z':
		return n != 0
	case 'B':
		return int8(n)
	case 'S':
		return int16(n)
	case 'C':
		return rune(n)
	}
	return n
}
