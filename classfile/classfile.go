package classfile

type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   []AttributeInfo
}

// ClassName returns the internal (slash separated) name of the class.
func (cf *ClassFile) ClassName() string {
	return cf.ConstantPool.GetClassName(cf.ThisClass)
}

func (cf *ClassFile) SuperClassName() string {
	if cf.SuperClass == 0 {
		return ""
	}
	return cf.ConstantPool.GetClassName(cf.SuperClass)
}

func (cf *ClassFile) InterfaceNames() []string {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		names[i] = cf.ConstantPool.GetClassName(idx)
	}
	return names
}

func (cf *ClassFile) IsInterface() bool {
	return cf.AccessFlags.Has(AccInterface) && !cf.AccessFlags.Has(AccAnnotation)
}

func (cf *ClassFile) IsAnnotation() bool {
	return cf.AccessFlags.Has(AccAnnotation)
}

func (cf *ClassFile) IsEnum() bool {
	return cf.AccessFlags.Has(AccEnum)
}

// IsRecord reports whether the class was compiled from a record declaration.
func (cf *ClassFile) IsRecord() bool {
	return cf.SuperClassName() == "java/lang/Record" && cf.Record() != nil
}

func (cf *ClassFile) GetMethod(name, descriptor string) *MethodInfo {
	for i := range cf.Methods {
		if cf.Methods[i].Name(cf.ConstantPool) == name {
			if descriptor == "" || cf.Methods[i].Descriptor(cf.ConstantPool) == descriptor {
				return &cf.Methods[i]
			}
		}
	}
	return nil
}

func (cf *ClassFile) GetAttribute(name string) *AttributeInfo {
	return findAttribute(cf.Attributes, cf.ConstantPool, name)
}

func (cf *ClassFile) Signature() string {
	return signatureOf(cf.Attributes, cf.ConstantPool)
}

func (cf *ClassFile) SourceFile() string {
	if attr := cf.GetAttribute("SourceFile"); attr != nil {
		if sf := attr.AsSourceFile(); sf != nil {
			return cf.ConstantPool.GetUtf8(sf.SourceFileIndex)
		}
	}
	return ""
}

func (cf *ClassFile) InnerClasses() []InnerClassEntry {
	if attr := cf.GetAttribute("InnerClasses"); attr != nil {
		if ic := attr.AsInnerClasses(); ic != nil {
			return ic.Classes
		}
	}
	return nil
}

func (cf *ClassFile) EnclosingMethod() *EnclosingMethodAttribute {
	if attr := cf.GetAttribute("EnclosingMethod"); attr != nil {
		return attr.AsEnclosingMethod()
	}
	return nil
}

func (cf *ClassFile) Record() *RecordAttribute {
	if attr := cf.GetAttribute("Record"); attr != nil {
		return attr.AsRecord()
	}
	return nil
}

func (cf *ClassFile) PermittedSubclassNames() []string {
	attr := cf.GetAttribute("PermittedSubclasses")
	if attr == nil {
		return nil
	}
	ps := attr.AsPermittedSubclasses()
	if ps == nil {
		return nil
	}
	names := make([]string, 0, len(ps.Classes))
	for _, idx := range ps.Classes {
		names = append(names, cf.ConstantPool.GetClassName(idx))
	}
	return names
}

// BootstrapMethods returns the bootstrap method table used by invokedynamic
// instructions, or nil when the class has none.
func (cf *ClassFile) BootstrapMethods() []BootstrapMethod {
	if attr := cf.GetAttribute("BootstrapMethods"); attr != nil {
		if bm := attr.AsBootstrapMethods(); bm != nil {
			return bm.Methods
		}
	}
	return nil
}

// Annotations returns the class level annotations, visible ones first.
func (cf *ClassFile) Annotations() []AnnotationsAttribute {
	return annotationsOf(cf.Attributes)
}

func findAttribute(attrs []AttributeInfo, cp ConstantPool, name string) *AttributeInfo {
	for i := range attrs {
		if cp.GetUtf8(attrs[i].NameIndex) == name {
			return &attrs[i]
		}
	}
	return nil
}

func signatureOf(attrs []AttributeInfo, cp ConstantPool) string {
	if attr := findAttribute(attrs, cp, "Signature"); attr != nil {
		if sig := attr.AsSignature(); sig != nil {
			return cp.GetUtf8(sig.SignatureIndex)
		}
	}
	return ""
}

func annotationsOf(attrs []AttributeInfo) []AnnotationsAttribute {
	var result []AnnotationsAttribute
	for i := range attrs {
		if a := attrs[i].AsAnnotations(); a != nil {
			result = append(result, *a)
		}
	}
	return result
}
