package classfile

type ConstantPoolEntry interface {
	Tag() ConstantTag
}

type ConstantUtf8Info struct {
	Value string
}

func (c *ConstantUtf8Info) Tag() ConstantTag { return ConstantUtf8 }

type ConstantIntegerInfo struct {
	Value int32
}

func (c *ConstantIntegerInfo) Tag() ConstantTag { return ConstantInteger }

type ConstantFloatInfo struct {
	Value float32
}

func (c *ConstantFloatInfo) Tag() ConstantTag { return ConstantFloat }

type ConstantLongInfo struct {
	Value int64
}

func (c *ConstantLongInfo) Tag() ConstantTag { return ConstantLong }

type ConstantDoubleInfo struct {
	Value float64
}

func (c *ConstantDoubleInfo) Tag() ConstantTag { return ConstantDouble }

type ConstantClassInfo struct {
	NameIndex uint16
}

func (c *ConstantClassInfo) Tag() ConstantTag { return ConstantClass }

type ConstantStringInfo struct {
	StringIndex uint16
}

func (c *ConstantStringInfo) Tag() ConstantTag { return ConstantString }

// ConstantMemberRefInfo covers Fieldref, Methodref and InterfaceMethodref.
type ConstantMemberRefInfo struct {
	Kind             ConstantTag
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantMemberRefInfo) Tag() ConstantTag { return c.Kind }

type ConstantNameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndTypeInfo) Tag() ConstantTag { return ConstantNameAndType }

// ReferenceKind is the kind of a method handle (JVMS 5.4.3.5).
type ReferenceKind uint8

const (
	RefGetField         ReferenceKind = 1
	RefGetStatic        ReferenceKind = 2
	RefPutField         ReferenceKind = 3
	RefPutStatic        ReferenceKind = 4
	RefInvokeVirtual    ReferenceKind = 5
	RefInvokeStatic     ReferenceKind = 6
	RefInvokeSpecial    ReferenceKind = 7
	RefNewInvokeSpecial ReferenceKind = 8
	RefInvokeInterface  ReferenceKind = 9
)

type ConstantMethodHandleInfo struct {
	ReferenceKind  ReferenceKind
	ReferenceIndex uint16
}

func (c *ConstantMethodHandleInfo) Tag() ConstantTag { return ConstantMethodHandle }

// ConstantDynamicInfo covers Dynamic and InvokeDynamic entries.
type ConstantDynamicInfo struct {
	Kind                     ConstantTag
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantDynamicInfo) Tag() ConstantTag { return c.Kind }

// ConstantOtherInfo holds entries whose operands are never looked at:
// method types, modules and packages.
type ConstantOtherInfo struct {
	Kind ConstantTag
}

func (c *ConstantOtherInfo) Tag() ConstantTag { return c.Kind }

// MemberRef is a resolved Fieldref, Methodref or InterfaceMethodref.
type MemberRef struct {
	Kind       ConstantTag
	ClassName  string
	Name       string
	Descriptor string
}

type ConstantPool []ConstantPoolEntry

func (cp ConstantPool) entry(index uint16) ConstantPoolEntry {
	if index == 0 || int(index) > len(cp) {
		return nil
	}
	return cp[index-1]
}

// TagAt returns the tag of the entry at index, or 0 when there is none.
func (cp ConstantPool) TagAt(index uint16) ConstantTag {
	if e := cp.entry(index); e != nil {
		return e.Tag()
	}
	return 0
}

func (cp ConstantPool) GetUtf8(index uint16) string {
	if entry, ok := cp.entry(index).(*ConstantUtf8Info); ok {
		return entry.Value
	}
	return ""
}

func (cp ConstantPool) GetClassName(index uint16) string {
	if entry, ok := cp.entry(index).(*ConstantClassInfo); ok {
		return cp.GetUtf8(entry.NameIndex)
	}
	return ""
}

func (cp ConstantPool) GetNameAndType(index uint16) (name, descriptor string) {
	if entry, ok := cp.entry(index).(*ConstantNameAndTypeInfo); ok {
		return cp.GetUtf8(entry.NameIndex), cp.GetUtf8(entry.DescriptorIndex)
	}
	return "", ""
}

func (cp ConstantPool) GetString(index uint16) string {
	if entry, ok := cp.entry(index).(*ConstantStringInfo); ok {
		return cp.GetUtf8(entry.StringIndex)
	}
	return ""
}

func (cp ConstantPool) GetMemberRef(index uint16) (MemberRef, bool) {
	entry, ok := cp.entry(index).(*ConstantMemberRefInfo)
	if !ok {
		return MemberRef{}, false
	}
	ref := MemberRef{Kind: entry.Kind, ClassName: cp.GetClassName(entry.ClassIndex)}
	ref.Name, ref.Descriptor = cp.GetNameAndType(entry.NameAndTypeIndex)
	return ref, ref.ClassName != "" && ref.Name != ""
}

// MethodHandle is a resolved CONSTANT_MethodHandle.
type MethodHandle struct {
	Kind ReferenceKind
	Ref  MemberRef
}

func (cp ConstantPool) GetMethodHandle(index uint16) (MethodHandle, bool) {
	entry, ok := cp.entry(index).(*ConstantMethodHandleInfo)
	if !ok {
		return MethodHandle{}, false
	}
	ref, ok := cp.GetMemberRef(entry.ReferenceIndex)
	return MethodHandle{Kind: entry.ReferenceKind, Ref: ref}, ok
}

// GetInvokeDynamic returns the bootstrap method index and the name and
// descriptor of an InvokeDynamic entry.
func (cp ConstantPool) GetInvokeDynamic(index uint16) (bootstrap uint16, name, descriptor string, ok bool) {
	entry, ok := cp.entry(index).(*ConstantDynamicInfo)
	if !ok || entry.Kind != ConstantInvokeDynamic {
		return 0, "", "", false
	}
	name, descriptor = cp.GetNameAndType(entry.NameAndTypeIndex)
	return entry.BootstrapMethodAttrIndex, name, descriptor, true
}

// GetConstant returns the Go value of a loadable constant: int32, int64,
// float32, float64 or string. It returns nil for any other entry.
func (cp ConstantPool) GetConstant(index uint16) interface{} {
	switch entry := cp.entry(index).(type) {
	case *ConstantIntegerInfo:
		return entry.Value
	case *ConstantLongInfo:
		return entry.Value
	case *ConstantFloatInfo:
		return entry.Value
	case *ConstantDoubleInfo:
		return entry.Value
	case *ConstantStringInfo:
		return cp.GetUtf8(entry.StringIndex)
	case *ConstantUtf8Info:
		return entry.Value
	}
	return nil
}
