package classfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

type Opcode uint8

const (
	OpGetStatic       Opcode = 0xb2
	OpPutStatic       Opcode = 0xb3
	OpGetField        Opcode = 0xb4
	OpPutField        Opcode = 0xb5
	OpInvokeVirtual   Opcode = 0xb6
	OpInvokeSpecial   Opcode = 0xb7
	OpInvokeStatic    Opcode = 0xb8
	OpInvokeInterface Opcode = 0xb9
	OpInvokeDynamic   Opcode = 0xba
	OpNew             Opcode = 0xbb
	OpANewArray       Opcode = 0xbd
	OpCheckCast       Opcode = 0xc0
	OpInstanceOf      Opcode = 0xc1

	opTableSwitch  Opcode = 0xaa
	opLookupSwitch Opcode = 0xab
	opWide         Opcode = 0xc4
	opIinc         Opcode = 0x84
)

// Instruction is a decoded bytecode instruction. Index is the constant pool
// operand for instructions that carry one, zero otherwise.
type Instruction struct {
	PC     int
	Opcode Opcode
	Index  uint16
}

// HasConstantOperand reports whether the opcode's first operand is a
// constant pool index.
func (op Opcode) HasConstantOperand() bool {
	switch op {
	case 0x13, 0x14, // ldc_w, ldc2_w
		OpGetStatic, OpPutStatic, OpGetField, OpPutField,
		OpInvokeVirtual, OpInvokeSpecial, OpInvokeStatic, OpInvokeInterface, OpInvokeDynamic,
		OpNew, OpANewArray, OpCheckCast, OpInstanceOf,
		0xc5: // multianewarray
		return true
	}
	return false
}

// instructionLength is the fixed length of every opcode, including the
// opcode byte. Zero marks variable length or undefined opcodes.
var instructionLength = func() [256]int {
	var l [256]int
	set := func(from, to, n int) {
		for op := from; op <= to; op++ {
			l[op] = n
		}
	}
	set(0x00, 0x0f, 1)
	l[0x10] = 2 // bipush
	l[0x11] = 3 // sipush
	l[0x12] = 2 // ldc
	set(0x13, 0x14, 3)
	set(0x15, 0x19, 2)
	set(0x1a, 0x35, 1)
	set(0x36, 0x3a, 2)
	set(0x3b, 0x83, 1)
	l[opIinc] = 3
	set(0x85, 0x98, 1)
	set(0x99, 0xa8, 3)
	l[0xa9] = 2 // ret
	set(0xac, 0xb1, 1)
	set(0xb2, 0xb8, 3)
	set(0xb9, 0xba, 5)
	l[0xbb] = 3
	l[0xbc] = 2 // newarray
	l[0xbd] = 3
	set(0xbe, 0xbf, 1)
	set(0xc0, 0xc1, 3)
	set(0xc2, 0xc3, 1)
	l[0xc5] = 4
	set(0xc6, 0xc7, 3)
	set(0xc8, 0xc9, 5)
	l[0xca] = 1 // breakpoint
	set(0xfe, 0xff, 1)
	return l
}()

// Instructions decodes the method body. Truncated or undefined
// instructions are reported as *MalformedModuleError in section "code".
func (c *CodeAttribute) Instructions() ([]Instruction, error) {
	code := c.Code
	var result []Instruction
	for pc := 0; pc < len(code); {
		op := Opcode(code[pc])
		n, err := variableLength(code, pc, op)
		if err != nil {
			return nil, &MalformedModuleError{Section: "code", Offset: int64(pc), Err: err}
		}
		if pc+n > len(code) {
			return nil, &MalformedModuleError{
				Section: "code",
				Offset:  int64(pc),
				Err:     fmt.Errorf("opcode 0x%02x: %w", uint8(op), io.ErrUnexpectedEOF),
			}
		}
		ins := Instruction{PC: pc, Opcode: op}
		if op.HasConstantOperand() {
			ins.Index = binary.BigEndian.Uint16(code[pc+1 : pc+3])
		}
		result = append(result, ins)
		pc += n
	}
	return result, nil
}

func variableLength(code []byte, pc int, op Opcode) (int, error) {
	switch op {
	case opTableSwitch:
		base := pc + 1 + padding(pc)
		if base+12 > len(code) {
			return 0, fmt.Errorf("tableswitch: %w", io.ErrUnexpectedEOF)
		}
		low := int32(binary.BigEndian.Uint32(code[base+4:]))
		high := int32(binary.BigEndian.Uint32(code[base+8:]))
		if high < low {
			return 0, fmt.Errorf("tableswitch: high %d below low %d", high, low)
		}
		return base - pc + 12 + int(int64(high)-int64(low)+1)*4, nil
	case opLookupSwitch:
		base := pc + 1 + padding(pc)
		if base+8 > len(code) {
			return 0, fmt.Errorf("lookupswitch: %w", io.ErrUnexpectedEOF)
		}
		npairs := int32(binary.BigEndian.Uint32(code[base+4:]))
		if npairs < 0 {
			return 0, fmt.Errorf("lookupswitch: negative pair count %d", npairs)
		}
		return base - pc + 8 + int(npairs)*8, nil
	case opWide:
		if pc+1 >= len(code) {
			return 0, fmt.Errorf("wide: %w", io.ErrUnexpectedEOF)
		}
		if Opcode(code[pc+1]) == opIinc {
			return 6, nil
		}
		return 4, nil
	}
	n := instructionLength[op]
	if n == 0 {
		return 0, fmt.Errorf("undefined opcode 0x%02x", uint8(op))
	}
	return n, nil
}

// padding is the number of bytes aligning switch operands to four bytes.
func padding(pc int) int {
	return (4 - (pc+1)%4) % 4
}

// LineNumbers returns the method's line number table sorted by start pc.
func (c *CodeAttribute) LineNumbers() []LineNumberEntry {
	var entries []LineNumberEntry
	for i := range c.Attributes {
		if lnt := c.Attributes[i].AsLineNumberTable(); lnt != nil {
			entries = append(entries, lnt.LineNumberTable...)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartPC < entries[j].StartPC
	})
	return entries
}

// LineAt returns the source line of the instruction at pc, using the entry
// with the greatest start pc not after it. It returns 0 if unknown.
func LineAt(entries []LineNumberEntry, pc int) int {
	i := sort.Search(len(entries), func(i int) bool {
		return int(entries[i].StartPC) > pc
	})
	if i == 0 {
		return 0
	}
	return int(entries[i-1].LineNumber)
}
