// Package classfiletest assembles small but valid class files for tests.
package classfiletest

import (
	"encoding/binary"
	"math"
)

// Access flags, duplicated here so the package has no dependency on the
// reader under test.
const (
	AccPublic     = 0x0001
	AccPrivate    = 0x0002
	AccProtected  = 0x0004
	AccStatic     = 0x0008
	AccFinal      = 0x0010
	AccSuper      = 0x0020
	AccBridge     = 0x0040
	AccInterface  = 0x0200
	AccAbstract   = 0x0400
	AccSynthetic  = 0x1000
	AccAnnotation = 0x2000
	AccEnum       = 0x4000
)

// Class describes a class file. Names are internal names ("p/Outer$Inner").
// An empty Super writes super_class 0.
type Class struct {
	Name                 string
	Super                string
	Interfaces           []string
	Flags                uint16
	Major                uint16
	Signature            string
	SourceFile           string
	Fields               []Field
	Methods              []Method
	InnerClasses         []InnerClass
	EnclosingMethod      *EnclosingMethod
	RecordComponents     []RecordComponent
	PermittedSubclasses  []string
	Annotations          []Annotation
	InvisibleAnnotations []Annotation
}

type Field struct {
	Flags       uint16
	Name        string
	Descriptor  string
	Signature   string
	Constant    interface{}
	Annotations []Annotation
}

// Method describes a method. A nil Code writes no Code attribute.
type Method struct {
	Flags                uint16
	Name                 string
	Descriptor           string
	Signature            string
	Exceptions           []string
	Annotations          []Annotation
	ParameterAnnotations [][]Annotation
	Code                 []Insn
}

type InnerClass struct {
	Inner     string
	Outer     string
	InnerName string
	Flags     uint16
}

// EnclosingMethod names the enclosing class and optionally the method.
type EnclosingMethod struct {
	Class      string
	Name       string
	Descriptor string
}

type RecordComponent struct {
	Name       string
	Descriptor string
	Signature  string
}

// Annotation is written with the given type descriptor ("Lp/Anno;").
type Annotation struct {
	Type   string
	Values []Value
}

// Value is an annotation element. Supported Go types are string, int32,
// bool, EnumValue, ClassValue, Annotation and []interface{}.
type Value struct {
	Name  string
	Value interface{}
}

type EnumValue struct {
	Type string
	Name string
}

// ClassValue is a class literal given as a descriptor.
type ClassValue string

// Bytes assembles the class file.
func (c *Class) Bytes() []byte {
	p := newPool()
	var body buf

	flags := c.Flags
	body.u2(flags)
	body.u2(p.class(c.Name))
	if c.Super == "" {
		body.u2(0)
	} else {
		body.u2(p.class(c.Super))
	}
	body.u2(uint16(len(c.Interfaces)))
	for _, iface := range c.Interfaces {
		body.u2(p.class(iface))
	}

	body.u2(uint16(len(c.Fields)))
	for _, f := range c.Fields {
		body.u2(f.Flags)
		body.u2(p.utf8(f.Name))
		body.u2(p.utf8(f.Descriptor))
		var attrs attributes
		if f.Signature != "" {
			attrs.add(p, "Signature", u2bytes(p.utf8(f.Signature)))
		}
		if f.Constant != nil {
			attrs.add(p, "ConstantValue", u2bytes(p.constant(f.Constant)))
		}
		attrs.annotations(p, f.Annotations, nil)
		attrs.writeTo(&body)
	}

	body.u2(uint16(len(c.Methods)))
	for _, m := range c.Methods {
		body.u2(m.Flags)
		body.u2(p.utf8(m.Name))
		body.u2(p.utf8(m.Descriptor))
		var attrs attributes
		if m.Code != nil {
			attrs.add(p, "Code", assembleCode(p, m.Code))
		}
		if m.Signature != "" {
			attrs.add(p, "Signature", u2bytes(p.utf8(m.Signature)))
		}
		if len(m.Exceptions) > 0 {
			var b buf
			b.u2(uint16(len(m.Exceptions)))
			for _, e := range m.Exceptions {
				b.u2(p.class(e))
			}
			attrs.add(p, "Exceptions", b)
		}
		attrs.annotations(p, m.Annotations, nil)
		if len(m.ParameterAnnotations) > 0 {
			var b buf
			b.u1(uint8(len(m.ParameterAnnotations)))
			for _, anns := range m.ParameterAnnotations {
				b.u2(uint16(len(anns)))
				for _, a := range anns {
					writeAnnotation(&b, p, a)
				}
			}
			attrs.add(p, "RuntimeVisibleParameterAnnotations", b)
		}
		attrs.writeTo(&body)
	}

	var attrs attributes
	if len(p.bootstraps) > 0 {
		var b buf
		b.u2(uint16(len(p.bootstraps)))
		for _, bsm := range p.bootstraps {
			b = append(b, bsm...)
		}
		attrs.add(p, "BootstrapMethods", b)
	}
	if c.SourceFile != "" {
		attrs.add(p, "SourceFile", u2bytes(p.utf8(c.SourceFile)))
	}
	if c.Signature != "" {
		attrs.add(p, "Signature", u2bytes(p.utf8(c.Signature)))
	}
	if len(c.InnerClasses) > 0 {
		var b buf
		b.u2(uint16(len(c.InnerClasses)))
		for _, ic := range c.InnerClasses {
			b.u2(p.class(ic.Inner))
			if ic.Outer == "" {
				b.u2(0)
			} else {
				b.u2(p.class(ic.Outer))
			}
			if ic.InnerName == "" {
				b.u2(0)
			} else {
				b.u2(p.utf8(ic.InnerName))
			}
			b.u2(ic.Flags)
		}
		attrs.add(p, "InnerClasses", b)
	}
	if em := c.EnclosingMethod; em != nil {
		var b buf
		b.u2(p.class(em.Class))
		if em.Name == "" {
			b.u2(0)
		} else {
			b.u2(p.nameAndType(em.Name, em.Descriptor))
		}
		attrs.add(p, "EnclosingMethod", b)
	}
	if c.RecordComponents != nil {
		var b buf
		b.u2(uint16(len(c.RecordComponents)))
		for _, rc := range c.RecordComponents {
			b.u2(p.utf8(rc.Name))
			b.u2(p.utf8(rc.Descriptor))
			var rcAttrs attributes
			if rc.Signature != "" {
				rcAttrs.add(p, "Signature", u2bytes(p.utf8(rc.Signature)))
			}
			rcAttrs.writeTo(&b)
		}
		attrs.add(p, "Record", b)
	}
	if len(c.PermittedSubclasses) > 0 {
		var b buf
		b.u2(uint16(len(c.PermittedSubclasses)))
		for _, s := range c.PermittedSubclasses {
			b.u2(p.class(s))
		}
		attrs.add(p, "PermittedSubclasses", b)
	}
	attrs.annotations(p, c.Annotations, c.InvisibleAnnotations)
	attrs.writeTo(&body)

	major := c.Major
	if major == 0 {
		major = 61
	}
	var out buf
	out.u4(0xCAFEBABE)
	out.u2(0)
	out.u2(major)
	out.u2(p.count())
	out = append(out, p.bytes...)
	out = append(out, body...)
	return out
}

type attributes struct {
	count int
	data  buf
}

func (a *attributes) add(p *pool, name string, payload []byte) {
	a.count++
	a.data.u2(p.utf8(name))
	a.data.u4(uint32(len(payload)))
	a.data = append(a.data, payload...)
}

func (a *attributes) annotations(p *pool, visible, invisible []Annotation) {
	write := func(name string, anns []Annotation) {
		if len(anns) == 0 {
			return
		}
		var b buf
		b.u2(uint16(len(anns)))
		for _, ann := range anns {
			writeAnnotation(&b, p, ann)
		}
		a.add(p, name, b)
	}
	write("RuntimeVisibleAnnotations", visible)
	write("RuntimeInvisibleAnnotations", invisible)
}

func (a *attributes) writeTo(b *buf) {
	b.u2(uint16(a.count))
	*b = append(*b, a.data...)
}

func writeAnnotation(b *buf, p *pool, ann Annotation) {
	b.u2(p.utf8(ann.Type))
	b.u2(uint16(len(ann.Values)))
	for _, v := range ann.Values {
		b.u2(p.utf8(v.Name))
		writeElementValue(b, p, v.Value)
	}
}

func writeElementValue(b *buf, p *pool, v interface{}) {
	switch v := v.(type) {
	case string:
		b.u1('s')
		b.u2(p.utf8(v))
	case int32:
		b.u1('I')
		b.u2(p.integer(v))
	case bool:
		b.u1('Z')
		n := int32(0)
		if v {
			n = 1
		}
		b.u2(p.integer(n))
	case EnumValue:
		b.u1('e')
		b.u2(p.utf8(v.Type))
		b.u2(p.utf8(v.Name))
	case ClassValue:
		b.u1('c')
		b.u2(p.utf8(string(v)))
	case Annotation:
		b.u1('@')
		writeAnnotation(b, p, v)
	case []interface{}:
		b.u1('[')
		b.u2(uint16(len(v)))
		for _, e := range v {
			writeElementValue(b, p, e)
		}
	default:
		panic("classfiletest: unsupported annotation value")
	}
}

type buf []byte

func (b *buf) u1(v uint8) { *b = append(*b, v) }

func (b *buf) u2(v uint16) { *b = binary.BigEndian.AppendUint16(*b, v) }

func (b *buf) u4(v uint32) { *b = binary.BigEndian.AppendUint32(*b, v) }

func u2bytes(v uint16) []byte {
	return binary.BigEndian.AppendUint16(nil, v)
}

// pool is a deduplicating constant pool writer. It also collects the
// bootstrap methods referenced by invokedynamic instructions.
type pool struct {
	bytes      []byte
	next       uint16
	index      map[string]uint16
	bootstraps []buf
	bsmIndex   map[string]uint16
}

func newPool() *pool {
	return &pool{next: 1, index: make(map[string]uint16), bsmIndex: make(map[string]uint16)}
}

func (p *pool) count() uint16 { return p.next }

func (p *pool) add(key string, slots uint16, entry []byte) uint16 {
	if idx, ok := p.index[key]; ok {
		return idx
	}
	idx := p.next
	p.next += slots
	p.index[key] = idx
	p.bytes = append(p.bytes, entry...)
	return idx
}

func (p *pool) utf8(s string) uint16 {
	var b buf
	b.u1(1)
	b.u2(uint16(len(s)))
	b = append(b, s...)
	return p.add("utf8:"+s, 1, b)
}

func (p *pool) class(name string) uint16 {
	nameIdx := p.utf8(name)
	var b buf
	b.u1(7)
	b.u2(nameIdx)
	return p.add("class:"+name, 1, b)
}

func (p *pool) str(s string) uint16 {
	idx := p.utf8(s)
	var b buf
	b.u1(8)
	b.u2(idx)
	return p.add("string:"+s, 1, b)
}

func (p *pool) integer(v int32) uint16 {
	var b buf
	b.u1(3)
	b.u4(uint32(v))
	return p.add("int:"+string(b[1:]), 1, b)
}

func (p *pool) long(v int64) uint16 {
	var b buf
	b.u1(5)
	b.u4(uint32(uint64(v) >> 32))
	b.u4(uint32(v))
	return p.add("long:"+string(b[1:]), 2, b)
}

func (p *pool) double(v float64) uint16 {
	bits := math.Float64bits(v)
	var b buf
	b.u1(6)
	b.u4(uint32(bits >> 32))
	b.u4(uint32(bits))
	return p.add("double:"+string(b[1:]), 2, b)
}

func (p *pool) constant(v interface{}) uint16 {
	switch v := v.(type) {
	case int32:
		return p.integer(v)
	case int:
		return p.integer(int32(v))
	case int64:
		return p.long(v)
	case float64:
		return p.double(v)
	case string:
		return p.str(v)
	}
	panic("classfiletest: unsupported constant")
}

func (p *pool) nameAndType(name, desc string) uint16 {
	n := p.utf8(name)
	d := p.utf8(desc)
	var b buf
	b.u1(12)
	b.u2(n)
	b.u2(d)
	return p.add("nat:"+name+":"+desc, 1, b)
}

func (p *pool) memberRef(tag uint8, owner, name, desc string) uint16 {
	c := p.class(owner)
	nat := p.nameAndType(name, desc)
	var b buf
	b.u1(tag)
	b.u2(c)
	b.u2(nat)
	return p.add(string(rune('0'+tag))+":"+owner+"."+name+":"+desc, 1, b)
}

func (p *pool) methodHandle(h Handle) uint16 {
	tag := uint8(10)
	switch {
	case h.Kind <= RefPutStatic:
		tag = 9
	case h.Interface:
		tag = 11
	}
	ref := p.memberRef(tag, h.Owner, h.Name, h.Descriptor)
	var b buf
	b.u1(15)
	b.u1(h.Kind)
	b.u2(ref)
	return p.add("mh:"+string(b[1:]), 1, b)
}

func (p *pool) methodType(desc string) uint16 {
	d := p.utf8(desc)
	var b buf
	b.u1(16)
	b.u2(d)
	return p.add("mt:"+desc, 1, b)
}

func (p *pool) bootstrap(method Handle, args []interface{}) uint16 {
	var b buf
	b.u2(p.methodHandle(method))
	b.u2(uint16(len(args)))
	for _, arg := range args {
		switch arg := arg.(type) {
		case Handle:
			b.u2(p.methodHandle(arg))
		case MethodType:
			b.u2(p.methodType(string(arg)))
		case string:
			b.u2(p.str(arg))
		default:
			panic("classfiletest: unsupported bootstrap argument")
		}
	}
	key := string(b)
	if idx, ok := p.bsmIndex[key]; ok {
		return idx
	}
	idx := uint16(len(p.bootstraps))
	p.bsmIndex[key] = idx
	p.bootstraps = append(p.bootstraps, b)
	return idx
}

func (p *pool) invokeDynamic(bsm uint16, name, desc string) uint16 {
	nat := p.nameAndType(name, desc)
	var b buf
	b.u1(18)
	b.u2(bsm)
	b.u2(nat)
	return p.add("indy:"+string(b[1:]), 1, b)
}
