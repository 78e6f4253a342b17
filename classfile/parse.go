package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

type reader struct {
	r   io.Reader
	off int64
	err error
}

func newReader(rd io.Reader) *reader {
	return &reader{r: rd}
}

func (r *reader) read(buf []byte) {
	if r.err != nil {
		return
	}
	var n int
	n, r.err = io.ReadFull(r.r, buf)
	r.off += int64(n)
}

func (r *reader) readU1() uint8 {
	var buf [1]byte
	r.read(buf[:])
	return buf[0]
}

func (r *reader) readU2() uint16 {
	var buf [2]byte
	r.read(buf[:])
	return binary.BigEndian.Uint16(buf[:])
}

func (r *reader) readU4() uint32 {
	var buf [4]byte
	r.read(buf[:])
	return binary.BigEndian.Uint32(buf[:])
}

// maxChunk bounds a single length-prefixed read; no valid class file
// component comes close to it.
const maxChunk = 1 << 28

func (r *reader) readBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > maxChunk {
		r.err = fmt.Errorf("length %d out of range", n)
		return nil
	}
	buf := make([]byte, n)
	r.read(buf)
	return buf
}

// malformed wraps err (or the sticky read error) with the section being read.
func (r *reader) malformed(section string, err error) *MalformedModuleError {
	if err == nil {
		err = r.err
	}
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return &MalformedModuleError{Section: section, Offset: r.off, Err: err}
}

func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open class file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// ParseBytes parses an in-memory class file.
func ParseBytes(content []byte) (*ClassFile, error) {
	return Parse(bytes.NewReader(content))
}

// Parse decodes a class file. Any failure is reported as a
// *MalformedModuleError.
func Parse(rd io.Reader) (*ClassFile, error) {
	r := newReader(rd)

	magic := r.readU4()
	if r.err != nil {
		return nil, r.malformed("magic", fmt.Errorf("failed to read magic: %w", r.err))
	}
	if magic != Magic {
		return nil, r.malformed("magic", fmt.Errorf("invalid magic number: 0x%X (expected 0xCAFEBABE)", magic))
	}

	cf := &ClassFile{
		MinorVersion: r.readU2(),
		MajorVersion: r.readU2(),
	}
	if r.err != nil {
		return nil, r.malformed("version", nil)
	}

	constantPoolCount := r.readU2()
	if r.err != nil {
		return nil, r.malformed("constant pool", fmt.Errorf("failed to read constant pool count: %w", r.err))
	}
	if constantPoolCount == 0 {
		return nil, r.malformed("constant pool", fmt.Errorf("constant pool count is zero"))
	}

	cf.ConstantPool = make(ConstantPool, constantPoolCount-1)
	for i := uint16(1); i < constantPoolCount; i++ {
		entry, wide, err := readConstantPoolEntry(r)
		if err != nil {
			return nil, r.malformed("constant pool", fmt.Errorf("failed to read constant pool entry %d: %w", i, err))
		}
		cf.ConstantPool[i-1] = entry
		if wide {
			i++
		}
	}

	cf.AccessFlags = AccessFlags(r.readU2())
	cf.ThisClass = r.readU2()
	cf.SuperClass = r.readU2()
	if r.err != nil {
		return nil, r.malformed("class info", nil)
	}
	if cf.ClassName() == "" {
		return nil, r.malformed("class info", fmt.Errorf("this_class %d is not a class entry", cf.ThisClass))
	}

	interfacesCount := r.readU2()
	cf.Interfaces = make([]uint16, interfacesCount)
	for i := range cf.Interfaces {
		cf.Interfaces[i] = r.readU2()
	}
	if r.err != nil {
		return nil, r.malformed("interfaces", nil)
	}

	fieldsCount := r.readU2()
	if r.err != nil {
		return nil, r.malformed("fields", fmt.Errorf("failed to read fields count: %w", r.err))
	}
	cf.Fields = make([]FieldInfo, fieldsCount)
	for i := range cf.Fields {
		if err := readMember(r, cf.ConstantPool, &cf.Fields[i].member); err != nil {
			return nil, r.malformed("fields", fmt.Errorf("failed to read field %d: %w", i, err))
		}
	}

	methodsCount := r.readU2()
	if r.err != nil {
		return nil, r.malformed("methods", fmt.Errorf("failed to read methods count: %w", r.err))
	}
	cf.Methods = make([]MethodInfo, methodsCount)
	for i := range cf.Methods {
		if err := readMember(r, cf.ConstantPool, &cf.Methods[i].member); err != nil {
			return nil, r.malformed("methods", fmt.Errorf("failed to read method %d: %w", i, err))
		}
	}

	attrs, err := readAttributes(r, cf.ConstantPool)
	if err != nil {
		return nil, r.malformed("attributes", err)
	}
	cf.Attributes = attrs

	return cf, nil
}

func readConstantPoolEntry(r *reader) (ConstantPoolEntry, bool, error) {
	tag := ConstantTag(r.readU1())
	if r.err != nil {
		return nil, false, r.err
	}

	var (
		entry ConstantPoolEntry
		wide  bool
	)
	switch tag {
	case ConstantUtf8:
		length := r.readU2()
		entry = &ConstantUtf8Info{Value: decodeModifiedUtf8(r.readBytes(int(length)))}

	case ConstantInteger:
		entry = &ConstantIntegerInfo{Value: int32(r.readU4())}

	case ConstantFloat:
		entry = &ConstantFloatInfo{Value: math.Float32frombits(r.readU4())}

	case ConstantLong:
		high := r.readU4()
		low := r.readU4()
		entry, wide = &ConstantLongInfo{Value: int64(high)<<32 | int64(low)}, true

	case ConstantDouble:
		high := r.readU4()
		low := r.readU4()
		entry, wide = &ConstantDoubleInfo{Value: math.Float64frombits(uint64(high)<<32 | uint64(low))}, true

	case ConstantClass:
		entry = &ConstantClassInfo{NameIndex: r.readU2()}

	case ConstantString:
		entry = &ConstantStringInfo{StringIndex: r.readU2()}

	case ConstantFieldref, ConstantMethodref, ConstantInterfaceMethodref:
		entry = &ConstantMemberRefInfo{
			Kind:             tag,
			ClassIndex:       r.readU2(),
			NameAndTypeIndex: r.readU2(),
		}

	case ConstantNameAndType:
		entry = &ConstantNameAndTypeInfo{
			NameIndex:       r.readU2(),
			DescriptorIndex: r.readU2(),
		}

	case ConstantMethodHandle:
		entry = &ConstantMethodHandleInfo{
			ReferenceKind:  ReferenceKind(r.readU1()),
			ReferenceIndex: r.readU2(),
		}

	case ConstantMethodType, ConstantModule, ConstantPackage:
		r.readU2()
		entry = &ConstantOtherInfo{Kind: tag}

	case ConstantDynamic, ConstantInvokeDynamic:
		entry = &ConstantDynamicInfo{
			Kind:                     tag,
			BootstrapMethodAttrIndex: r.readU2(),
			NameAndTypeIndex:         r.readU2(),
		}

	default:
		return nil, false, fmt.Errorf("unknown constant pool tag: %d", tag)
	}

	if r.err != nil {
		return nil, false, r.err
	}
	return entry, wide, nil
}

func readMember(r *reader, cp ConstantPool, m *member) error {
	m.AccessFlags = AccessFlags(r.readU2())
	m.NameIndex = r.readU2()
	m.DescriptorIndex = r.readU2()
	if r.err != nil {
		return r.err
	}
	attrs, err := readAttributes(r, cp)
	if err != nil {
		return err
	}
	m.Attributes = attrs
	return nil
}

func readAttributes(r *reader, cp ConstantPool) ([]AttributeInfo, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read attributes count: %w", r.err)
	}
	attrs := make([]AttributeInfo, count)
	for i := range attrs {
		if err := readAttributeInfo(r, cp, &attrs[i]); err != nil {
			return nil, fmt.Errorf("failed to read attribute %d: %w", i, err)
		}
	}
	return attrs, nil
}

func readAttributeInfo(r *reader, cp ConstantPool, attr *AttributeInfo) error {
	nameIndex := r.readU2()
	length := r.readU4()
	info := r.readBytes(int(length))
	if r.err != nil {
		return r.err
	}

	attr.NameIndex = nameIndex
	attr.Info = info

	name := cp.GetUtf8(nameIndex)
	parsed, err := parseAttribute(name, info, cp)
	if err != nil {
		return fmt.Errorf("malformed %s attribute: %w", name, err)
	}
	attr.Parsed = parsed
	return nil
}

func decodeModifiedUtf8(bytes []byte) string {
	runes := make([]rune, 0, len(bytes))
	i := 0
	for i < len(bytes) {
		b := bytes[i]
		switch {
		case b&0x80 == 0:
			runes = append(runes, rune(b))
			i++
		case b&0xE0 == 0xC0:
			if i+1 >= len(bytes) {
				return string(runes)
			}
			runes = append(runes, rune(b&0x1F)<<6|rune(bytes[i+1]&0x3F))
			i += 2
		case b&0xF0 == 0xE0:
			if i+2 >= len(bytes) {
				return string(runes)
			}
			r := rune(b&0x0F)<<12 | rune(bytes[i+1]&0x3F)<<6 | rune(bytes[i+2]&0x3F)
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(bytes) && bytes[i+3] == 0xED {
				low := rune(bytes[i+3]&0x0F)<<12 | rune(bytes[i+4]&0x3F)<<6 | rune(bytes[i+5]&0x3F)
				if low >= 0xDC00 && low <= 0xDFFF {
					runes = append(runes, 0x10000+((r-0xD800)<<10)+(low-0xDC00))
					i += 6
					continue
				}
			}
			runes = append(runes, r)
			i += 3
		default:
			runes = append(runes, rune(b))
			i++
		}
	}
	return string(runes)
}
