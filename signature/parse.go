package signature

import (
	"fmt"
	"strings"
)

type parser struct {
	s   string
	pos int
	err *MalformedSignatureError
}

func (p *parser) fail(format string, args ...interface{}) {
	if p.err == nil {
		p.err = &MalformedSignatureError{Signature: p.s, Offset: p.pos, Reason: fmt.Sprintf(format, args...)}
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *parser) expect(c byte) {
	if p.err != nil {
		return
	}
	if p.peek() != c {
		if p.pos >= len(p.s) {
			p.fail("expected %q, got end of input", c)
		} else {
			p.fail("expected %q, got %q", c, p.peek())
		}
		return
	}
	p.pos++
}

func (p *parser) done() error {
	if p.err == nil && p.pos != len(p.s) {
		p.fail("unexpected trailing input %q", p.s[p.pos:])
	}
	if p.err != nil {
		return p.err
	}
	return nil
}

// ParseClass parses a ClassSignature such as
// "<T:Ljava/lang/Object;>Ljava/util/AbstractList<TT;>;Ljava/io/Serializable;".
func ParseClass(s string) (*ClassSignature, error) {
	p := &parser{s: s}
	sig := &ClassSignature{TypeParameters: p.typeParameters()}
	sig.Superclass = p.classType()
	for p.err == nil && p.pos < len(p.s) {
		sig.Interfaces = append(sig.Interfaces, p.classType())
	}
	if err := p.done(); err != nil {
		return nil, err
	}
	return sig, nil
}

// ParseMethod parses a MethodSignature such as "<T:Ljava/lang/Object;>(TT;)V".
func ParseMethod(s string) (*MethodSignature, error) {
	p := &parser{s: s}
	sig := &MethodSignature{TypeParameters: p.typeParameters()}
	p.expect('(')
	for p.err == nil && p.peek() != ')' {
		if p.pos >= len(p.s) {
			p.fail("unterminated parameter list")
			break
		}
		sig.Parameters = append(sig.Parameters, p.javaType())
	}
	p.expect(')')
	if p.err == nil {
		if p.peek() == 'V' {
			p.pos++
		} else {
			sig.Return = p.javaType()
		}
	}
	for p.err == nil && p.peek() == '^' {
		p.pos++
		if p.peek() == 'T' {
			sig.Throws = append(sig.Throws, p.typeVar())
		} else {
			sig.Throws = append(sig.Throws, p.classType())
		}
	}
	if err := p.done(); err != nil {
		return nil, err
	}
	return sig, nil
}

// ParseField parses a field or record component signature, which is a
// single reference type.
func ParseField(s string) (Type, error) {
	p := &parser{s: s}
	t := p.referenceType()
	if err := p.done(); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *parser) typeParameters() []TypeParameter {
	if p.peek() != '<' {
		return nil
	}
	p.pos++
	var params []TypeParameter
	for p.err == nil && p.peek() != '>' {
		name := p.identifier()
		if p.err != nil {
			break
		}
		tp := TypeParameter{Name: name}
		p.expect(':')
		// The class bound may be empty when only interface bounds follow.
		if c := p.peek(); c != ':' && c != '>' {
			tp.Bounds = append(tp.Bounds, p.referenceType())
		}
		for p.err == nil && p.peek() == ':' {
			p.pos++
			tp.Bounds = append(tp.Bounds, p.referenceType())
		}
		params = append(params, tp)
	}
	if p.err == nil && len(params) == 0 {
		p.fail("empty type parameter list")
	}
	p.expect('>')
	return params
}

func (p *parser) javaType() Type {
	if _, ok := primitiveNames[p.peek()]; ok {
		t := &Primitive{Descriptor: p.peek()}
		p.pos++
		return t
	}
	return p.referenceType()
}

func (p *parser) referenceType() Type {
	if p.err != nil {
		return nil
	}
	switch p.peek() {
	case 'L':
		return p.classType()
	case 'T':
		return p.typeVar()
	case '[':
		p.pos++
		component := p.javaType()
		if p.err != nil {
			return nil
		}
		return &Array{Component: component}
	case 0:
		p.fail("expected reference type, got end of input")
	default:
		p.fail("expected reference type, got %q", p.peek())
	}
	return nil
}

func (p *parser) typeVar() Type {
	p.expect('T')
	name := p.identifier()
	p.expect(';')
	if p.err != nil {
		return nil
	}
	return &TypeVar{Name: name}
}

func (p *parser) classType() *ClassType {
	p.expect('L')
	if p.err != nil {
		return nil
	}
	var name strings.Builder
	for {
		name.WriteString(p.identifier())
		if p.peek() != '/' {
			break
		}
		p.pos++
		name.WriteByte('.')
	}
	t := &ClassType{}
	t.Args = p.typeArguments()
	for p.err == nil && p.peek() == '.' {
		p.pos++
		name.WriteByte('$')
		name.WriteString(p.identifier())
		t.Args = p.typeArguments()
	}
	p.expect(';')
	if p.err != nil {
		return nil
	}
	t.Name = name.String()
	return t
}

func (p *parser) typeArguments() []Type {
	if p.err != nil || p.peek() != '<' {
		return nil
	}
	p.pos++
	var args []Type
	for p.err == nil && p.peek() != '>' {
		switch p.peek() {
		case '*':
			p.pos++
			args = append(args, &Wildcard{})
		case '+':
			p.pos++
			args = append(args, &Wildcard{Upper: p.referenceType()})
		case '-':
			p.pos++
			args = append(args, &Wildcard{Lower: p.referenceType()})
		default:
			args = append(args, p.referenceType())
		}
	}
	if p.err == nil && len(args) == 0 {
		p.fail("empty type argument list")
	}
	p.expect('>')
	return args
}

func (p *parser) identifier() string {
	if p.err != nil {
		return ""
	}
	start := p.pos
	for p.pos < len(p.s) && !strings.ContainsRune(".;[/<>:", rune(p.s[p.pos])) {
		p.pos++
	}
	if p.pos == start {
		if p.pos >= len(p.s) {
			p.fail("expected identifier, got end of input")
		} else {
			p.fail("expected identifier, got %q", p.s[p.pos])
		}
		return ""
	}
	return p.s[start:p.pos]
}
