package classfile

import (
	"bytes"
	"fmt"
)

type AttributeInfo struct {
	NameIndex uint16
	Info      []byte
	Parsed    interface{}
}

type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionTableEntry
	Attributes     []AttributeInfo
}

type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

type LineNumberTableAttribute struct {
	LineNumberTable []LineNumberEntry
}

type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

type SourceFileAttribute struct {
	SourceFileIndex uint16
}

type ConstantValueAttribute struct {
	ConstantValueIndex uint16
}

type ExceptionsAttribute struct {
	ExceptionIndexTable []uint16
}

type InnerClassesAttribute struct {
	Classes []InnerClassEntry
}

type InnerClassEntry struct {
	InnerClassInfoIndex   uint16
	OuterClassInfoIndex   uint16
	InnerNameIndex        uint16
	InnerClassAccessFlags AccessFlags
}

type SignatureAttribute struct {
	SignatureIndex uint16
}

type EnclosingMethodAttribute struct {
	ClassIndex  uint16
	MethodIndex uint16
}

type RecordAttribute struct {
	Components []RecordComponentInfo
}

type RecordComponentInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func (rc *RecordComponentInfo) Signature(cp ConstantPool) string {
	return signatureOf(rc.Attributes, cp)
}

type PermittedSubclassesAttribute struct {
	Classes []uint16
}

type BootstrapMethodsAttribute struct {
	Methods []BootstrapMethod
}

// BootstrapMethod is one entry of BootstrapMethods: a method handle and its
// static constant pool arguments.
type BootstrapMethod struct {
	MethodRef uint16
	Arguments []uint16
}

type Annotation struct {
	TypeIndex         uint16
	ElementValuePairs []ElementValuePair
}

type ElementValuePair struct {
	ElementNameIndex uint16
	Value            ElementValue
}

// ElementValue holds an annotation element. Value is a constant pool index
// (uint16) for constants, strings and class literals, an EnumConstValue, a
// nested Annotation or an ArrayValue, depending on Tag.
type ElementValue struct {
	Tag   byte
	Value interface{}
}

type EnumConstValue struct {
	TypeNameIndex  uint16
	ConstNameIndex uint16
}

type ArrayValue struct {
	Values []ElementValue
}

// AnnotationsAttribute is RuntimeVisibleAnnotations or
// RuntimeInvisibleAnnotations.
type AnnotationsAttribute struct {
	Visible     bool
	Annotations []Annotation
}

// ParameterAnnotationsAttribute is RuntimeVisibleParameterAnnotations or
// RuntimeInvisibleParameterAnnotations.
type ParameterAnnotationsAttribute struct {
	Visible              bool
	ParameterAnnotations [][]Annotation
}

func (a *AttributeInfo) AsCode() *CodeAttribute {
	v, _ := a.Parsed.(*CodeAttribute)
	return v
}

func (a *AttributeInfo) AsLineNumberTable() *LineNumberTableAttribute {
	v, _ := a.Parsed.(*LineNumberTableAttribute)
	return v
}

func (a *AttributeInfo) AsSourceFile() *SourceFileAttribute {
	v, _ := a.Parsed.(*SourceFileAttribute)
	return v
}

func (a *AttributeInfo) AsConstantValue() *ConstantValueAttribute {
	v, _ := a.Parsed.(*ConstantValueAttribute)
	return v
}

func (a *AttributeInfo) AsExceptions() *ExceptionsAttribute {
	v, _ := a.Parsed.(*ExceptionsAttribute)
	return v
}

func (a *AttributeInfo) AsInnerClasses() *InnerClassesAttribute {
	v, _ := a.Parsed.(*InnerClassesAttribute)
	return v
}

func (a *AttributeInfo) AsSignature() *SignatureAttribute {
	v, _ := a.Parsed.(*SignatureAttribute)
	return v
}

func (a *AttributeInfo) AsEnclosingMethod() *EnclosingMethodAttribute {
	v, _ := a.Parsed.(*EnclosingMethodAttribute)
	return v
}

func (a *AttributeInfo) AsRecord() *RecordAttribute {
	v, _ := a.Parsed.(*RecordAttribute)
	return v
}

func (a *AttributeInfo) AsPermittedSubclasses() *PermittedSubclassesAttribute {
	v, _ := a.Parsed.(*PermittedSubclassesAttribute)
	return v
}

func (a *AttributeInfo) AsBootstrapMethods() *BootstrapMethodsAttribute {
	v, _ := a.Parsed.(*BootstrapMethodsAttribute)
	return v
}

func (a *AttributeInfo) AsAnnotations() *AnnotationsAttribute {
	v, _ := a.Parsed.(*AnnotationsAttribute)
	return v
}

func (a *AttributeInfo) AsParameterAnnotations() *ParameterAnnotationsAttribute {
	v, _ := a.Parsed.(*ParameterAnnotationsAttribute)
	return v
}

// parseAttribute decodes the attributes the importer consumes. Other
// attributes are kept as raw bytes only.
func parseAttribute(name string, info []byte, cp ConstantPool) (interface{}, error) {
	r := newReader(bytes.NewReader(info))

	var parsed interface{}
	switch name {
	case "Code":
		parsed = parseCodeAttribute(r, cp)
	case "LineNumberTable":
		parsed = parseLineNumberTableAttribute(r)
	case "SourceFile":
		parsed = &SourceFileAttribute{SourceFileIndex: r.readU2()}
	case "ConstantValue":
		parsed = &ConstantValueAttribute{ConstantValueIndex: r.readU2()}
	case "Exceptions":
		parsed = &ExceptionsAttribute{ExceptionIndexTable: readIndexTable(r)}
	case "InnerClasses":
		parsed = parseInnerClassesAttribute(r)
	case "Signature":
		parsed = &SignatureAttribute{SignatureIndex: r.readU2()}
	case "EnclosingMethod":
		parsed = &EnclosingMethodAttribute{ClassIndex: r.readU2(), MethodIndex: r.readU2()}
	case "Record":
		parsed = parseRecordAttribute(r, cp)
	case "PermittedSubclasses":
		parsed = &PermittedSubclassesAttribute{Classes: readIndexTable(r)}
	case "BootstrapMethods":
		parsed = parseBootstrapMethodsAttribute(r)
	case "RuntimeVisibleAnnotations":
		parsed = &AnnotationsAttribute{Visible: true, Annotations: parseAnnotations(r)}
	case "RuntimeInvisibleAnnotations":
		parsed = &AnnotationsAttribute{Annotations: parseAnnotations(r)}
	case "RuntimeVisibleParameterAnnotations":
		parsed = &ParameterAnnotationsAttribute{Visible: true, ParameterAnnotations: parseParameterAnnotations(r)}
	case "RuntimeInvisibleParameterAnnotations":
		parsed = &ParameterAnnotationsAttribute{ParameterAnnotations: parseParameterAnnotations(r)}
	default:
		return nil, nil
	}

	if r.err != nil {
		return nil, fmt.Errorf("truncated at byte %d of %d: %w", r.off, len(info), r.err)
	}
	return parsed, nil
}

func parseBootstrapMethodsAttribute(r *reader) *BootstrapMethodsAttribute {
	count := r.readU2()
	attr := &BootstrapMethodsAttribute{}
	for i := 0; i < int(count) && r.err == nil; i++ {
		attr.Methods = append(attr.Methods, BootstrapMethod{
			MethodRef: r.readU2(),
			Arguments: readIndexTable(r),
		})
	}
	return attr
}

func readIndexTable(r *reader) []uint16 {
	count := r.readU2()
	if r.err != nil {
		return nil
	}
	table := make([]uint16, count)
	for i := range table {
		table[i] = r.readU2()
	}
	return table
}

func parseCodeAttribute(r *reader, cp ConstantPool) *CodeAttribute {
	code := &CodeAttribute{
		MaxStack:  r.readU2(),
		MaxLocals: r.readU2(),
	}
	codeLength := r.readU4()
	if r.err != nil {
		return nil
	}
	code.Code = r.readBytes(int(codeLength))

	exceptionTableLength := r.readU2()
	if r.err != nil {
		return nil
	}
	code.ExceptionTable = make([]ExceptionTableEntry, exceptionTableLength)
	for i := range code.ExceptionTable {
		code.ExceptionTable[i] = ExceptionTableEntry{
			StartPC:   r.readU2(),
			EndPC:     r.readU2(),
			HandlerPC: r.readU2(),
			CatchType: r.readU2(),
		}
	}

	attrs, err := readAttributes(r, cp)
	if err != nil {
		if r.err == nil {
			r.err = err
		}
		return nil
	}
	code.Attributes = attrs
	return code
}

func parseLineNumberTableAttribute(r *reader) *LineNumberTableAttribute {
	count := r.readU2()
	if r.err != nil {
		return nil
	}
	lnt := &LineNumberTableAttribute{
		LineNumberTable: make([]LineNumberEntry, count),
	}
	for i := range lnt.LineNumberTable {
		lnt.LineNumberTable[i] = LineNumberEntry{
			StartPC:    r.readU2(),
			LineNumber: r.readU2(),
		}
	}
	return lnt
}

func parseInnerClassesAttribute(r *reader) *InnerClassesAttribute {
	count := r.readU2()
	if r.err != nil {
		return nil
	}
	ic := &InnerClassesAttribute{
		Classes: make([]InnerClassEntry, count),
	}
	for i := range ic.Classes {
		ic.Classes[i] = InnerClassEntry{
			InnerClassInfoIndex:   r.readU2(),
			OuterClassInfoIndex:   r.readU2(),
			InnerNameIndex:        r.readU2(),
			InnerClassAccessFlags: AccessFlags(r.readU2()),
		}
	}
	return ic
}

func parseRecordAttribute(r *reader, cp ConstantPool) *RecordAttribute {
	count := r.readU2()
	if r.err != nil {
		return nil
	}
	rec := &RecordAttribute{
		Components: make([]RecordComponentInfo, count),
	}
	for i := range rec.Components {
		rec.Components[i].NameIndex = r.readU2()
		rec.Components[i].DescriptorIndex = r.readU2()
		attrs, err := readAttributes(r, cp)
		if err != nil {
			if r.err == nil {
				r.err = err
			}
			return nil
		}
		rec.Components[i].Attributes = attrs
	}
	return rec
}

func parseAnnotations(r *reader) []Annotation {
	count := r.readU2()
	if r.err != nil {
		return nil
	}
	annotations := make([]Annotation, count)
	for i := range annotations {
		annotations[i] = parseAnnotation(r)
	}
	return annotations
}

func parseParameterAnnotations(r *reader) [][]Annotation {
	count := r.readU1()
	if r.err != nil {
		return nil
	}
	params := make([][]Annotation, count)
	for i := range params {
		params[i] = parseAnnotations(r)
	}
	return params
}

func parseAnnotation(r *reader) Annotation {
	ann := Annotation{TypeIndex: r.readU2()}
	numPairs := r.readU2()
	if r.err != nil {
		return ann
	}
	ann.ElementValuePairs = make([]ElementValuePair, numPairs)
	for i := range ann.ElementValuePairs {
		ann.ElementValuePairs[i].ElementNameIndex = r.readU2()
		ann.ElementValuePairs[i].Value = parseElementValue(r)
	}
	return ann
}

func parseElementValue(r *reader) ElementValue {
	ev := ElementValue{Tag: r.readU1()}
	if r.err != nil {
		return ev
	}

	switch ev.Tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's', 'c':
		ev.Value = r.readU2()
	case 'e':
		ev.Value = EnumConstValue{
			TypeNameIndex:  r.readU2(),
			ConstNameIndex: r.readU2(),
		}
	case '@':
		ev.Value = parseAnnotation(r)
	case '[':
		numValues := r.readU2()
		if r.err != nil {
			return ev
		}
		values := make([]ElementValue, numValues)
		for i := range values {
			values[i] = parseElementValue(r)
		}
		ev.Value = ArrayValue{Values: values}
	default:
		if r.err == nil {
			r.err = fmt.Errorf("unknown element value tag %q", ev.Tag)
		}
	}
	return ev
}
