package classfile

// member holds what fields and methods have in common.
type member struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func (m *member) Name(cp ConstantPool) string {
	return cp.GetUtf8(m.NameIndex)
}

func (m *member) Descriptor(cp ConstantPool) string {
	return cp.GetUtf8(m.DescriptorIndex)
}

func (m *member) GetAttribute(cp ConstantPool, name string) *AttributeInfo {
	return findAttribute(m.Attributes, cp, name)
}

func (m *member) Signature(cp ConstantPool) string {
	return signatureOf(m.Attributes, cp)
}

func (m *member) Annotations() []AnnotationsAttribute {
	return annotationsOf(m.Attributes)
}

type FieldInfo struct {
	member
}

// ConstantValue returns the compile time constant of a static final field.
func (f *FieldInfo) ConstantValue(cp ConstantPool) interface{} {
	attr := f.GetAttribute(cp, "ConstantValue")
	if attr == nil {
		return nil
	}
	if cv := attr.AsConstantValue(); cv != nil {
		return cp.GetConstant(cv.ConstantValueIndex)
	}
	return nil
}
