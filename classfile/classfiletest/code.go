package classfiletest

// Insn is one instruction of a method body. Line, when non-zero, adds a
// line number table entry starting at this instruction.
type Insn struct {
	encode func(p *pool, pc int) []byte
	Line   int
}

// OnLine returns a copy of the instruction attributed to line.
func (i Insn) OnLine(line int) Insn {
	i.Line = line
	return i
}

func simple(op ...byte) Insn {
	return Insn{encode: func(*pool, int) []byte { return op }}
}

func member(op byte, tag uint8, owner, name, desc string) Insn {
	return Insn{encode: func(p *pool, _ int) []byte {
		idx := p.memberRef(tag, owner, name, desc)
		out := []byte{op, byte(idx >> 8), byte(idx)}
		if op == 0xb9 {
			out = append(out, 1, 0)
		}
		return out
	}}
}

func GetField(owner, name, desc string) Insn  { return member(0xb4, 9, owner, name, desc) }
func PutField(owner, name, desc string) Insn  { return member(0xb5, 9, owner, name, desc) }
func GetStatic(owner, name, desc string) Insn { return member(0xb2, 9, owner, name, desc) }
func PutStatic(owner, name, desc string) Insn { return member(0xb3, 9, owner, name, desc) }

func InvokeVirtual(owner, name, desc string) Insn { return member(0xb6, 10, owner, name, desc) }
func InvokeSpecial(owner, name, desc string) Insn { return member(0xb7, 10, owner, name, desc) }
func InvokeStatic(owner, name, desc string) Insn  { return member(0xb8, 10, owner, name, desc) }

func InvokeInterface(owner, name, desc string) Insn {
	return member(0xb9, 11, owner, name, desc)
}

func InstanceOf(class string) Insn {
	return Insn{encode: func(p *pool, _ int) []byte {
		idx := p.class(class)
		return []byte{0xc1, byte(idx >> 8), byte(idx)}
	}}
}

func New(class string) Insn {
	return Insn{encode: func(p *pool, _ int) []byte {
		idx := p.class(class)
		return []byte{0xbb, byte(idx >> 8), byte(idx)}
	}}
}

// Method handle reference kinds.
const (
	RefGetField         = 1
	RefGetStatic        = 2
	RefPutField         = 3
	RefPutStatic        = 4
	RefInvokeVirtual    = 5
	RefInvokeStatic     = 6
	RefInvokeSpecial    = 7
	RefNewInvokeSpecial = 8
	RefInvokeInterface  = 9
)

// Handle is a method handle constant. Interface selects an
// InterfaceMethodref for invoke kinds.
type Handle struct {
	Kind       uint8
	Owner      string
	Name       string
	Descriptor string
	Interface  bool
}

// MethodType is a method type constant given as a descriptor.
type MethodType string

// InvokeDynamic encodes an invokedynamic call site. Supported bootstrap
// arguments are Handle, MethodType and string.
func InvokeDynamic(bootstrap Handle, name, desc string, args ...interface{}) Insn {
	return Insn{encode: func(p *pool, _ int) []byte {
		idx := p.invokeDynamic(p.bootstrap(bootstrap, args), name, desc)
		return []byte{0xba, byte(idx >> 8), byte(idx), 0, 0}
	}}
}

// LambdaMetafactory is the bootstrap javac uses for lambdas and method
// references.
var LambdaMetafactory = Handle{
	Kind:       RefInvokeStatic,
	Owner:      "java/lang/invoke/LambdaMetafactory",
	Name:       "metafactory",
	Descriptor: "(Ljava/lang/invoke/MethodHandles$Lookup;Ljava/lang/String;Ljava/lang/invoke/MethodType;Ljava/lang/invoke/MethodType;Ljava/lang/invoke/MethodHandle;Ljava/lang/invoke/MethodType;)Ljava/lang/invoke/CallSite;",
}

// FunctionalReference encodes the call site javac emits for a method
// reference or lambda: it creates an instance of iface whose single abstract
// method, named method with descriptor samDesc, is implemented by impl.
func FunctionalReference(iface, method, samDesc string, impl Handle) Insn {
	return InvokeDynamic(LambdaMetafactory, method, "()L"+iface+";",
		MethodType(samDesc), impl, MethodType(samDesc))
}

func ALoad0() Insn  { return simple(0x2a) }
func Dup() Insn     { return simple(0x59) }
func Pop() Insn     { return simple(0x57) }
func IConst0() Insn { return simple(0x03) }
func Return() Insn  { return simple(0xb1) }

// WideIinc encodes "wide iinc" on local 1 by 1.
func WideIinc() Insn { return simple(0xc4, 0x84, 0, 1, 0, 1) }

// TableSwitch encodes a tableswitch over [low, high] whose branches all
// jump to offset 0. Padding depends on the instruction's pc.
func TableSwitch(low, high int32) Insn {
	return Insn{encode: func(_ *pool, pc int) []byte {
		var b buf
		b.u1(0xaa)
		for (pc+len(b))%4 != 0 {
			b.u1(0)
		}
		b.u4(0)
		b.u4(uint32(low))
		b.u4(uint32(high))
		for i := low; i <= high; i++ {
			b.u4(0)
		}
		return b
	}}
}

// LookupSwitch encodes a lookupswitch with the given match keys.
func LookupSwitch(keys ...int32) Insn {
	return Insn{encode: func(_ *pool, pc int) []byte {
		var b buf
		b.u1(0xab)
		for (pc+len(b))%4 != 0 {
			b.u1(0)
		}
		b.u4(0)
		b.u4(uint32(len(keys)))
		for _, k := range keys {
			b.u4(uint32(k))
			b.u4(0)
		}
		return b
	}}
}

// Raw inserts bytes verbatim.
func Raw(b ...byte) Insn { return simple(b...) }

func assembleCode(p *pool, insns []Insn) []byte {
	var code buf
	var lines buf
	lineCount := 0
	for _, insn := range insns {
		pc := len(code)
		if insn.Line != 0 {
			lines.u2(uint16(pc))
			lines.u2(uint16(insn.Line))
			lineCount++
		}
		code = append(code, insn.encode(p, pc)...)
	}

	var b buf
	b.u2(8) // max_stack
	b.u2(8) // max_locals
	b.u4(uint32(len(code)))
	b = append(b, code...)
	b.u2(0) // exception table
	var attrs attributes
	if lineCount > 0 {
		var lnt buf
		lnt.u2(uint16(lineCount))
		lnt = append(lnt, lines...)
		attrs.add(p, "LineNumberTable", lnt)
	}
	attrs.writeTo(&b)
	return b
}
