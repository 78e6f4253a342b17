package classfile

import (
	"errors"
	"testing"

	"github.com/dhamidi/classgraph/classfile/classfiletest"
)

func TestInstructions(t *testing.T) {
	class := &classfiletest.Class{
		Name:  "p/Switches",
		Super: "java/lang/Object",
		Methods: []classfiletest.Method{{
			Name:       "pick",
			Descriptor: "(I)V",
			Code: []classfiletest.Insn{
				classfiletest.IConst0(),
				classfiletest.TableSwitch(1, 3),
				classfiletest.WideIinc(),
				classfiletest.LookupSwitch(5, 9),
				classfiletest.ALoad0(),
				classfiletest.InstanceOf("java/lang/String").OnLine(40),
				classfiletest.Pop(),
				classfiletest.InvokeInterface("java/lang/Runnable", "run", "()V"),
				classfiletest.Return(),
			},
		}},
	}
	cf, err := ParseBytes(class.Bytes())
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	code := cf.Methods[0].GetCodeAttribute(cf.ConstantPool)
	instructions, err := code.Instructions()
	if err != nil {
		t.Fatalf("Instructions() error = %v", err)
	}

	var ops []Opcode
	for _, ins := range instructions {
		ops = append(ops, ins.Opcode)
	}
	want := []Opcode{0x03, opTableSwitch, opWide, opLookupSwitch, 0x2a, OpInstanceOf, 0x57, OpInvokeInterface, 0xb1}
	if len(ops) != len(want) {
		t.Fatalf("opcodes = %x, want %x", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("opcode %d = 0x%02x, want 0x%02x", i, ops[i], want[i])
		}
	}

	// tableswitch at pc 1 pads to 4: 1 + 2 + 12 + 3*4 = 27 bytes.
	if got := instructions[2].PC; got != 28 {
		t.Errorf("wide pc = %d, want 28", got)
	}

	instanceOf := instructions[5]
	if got := cf.ConstantPool.GetClassName(instanceOf.Index); got != "java/lang/String" {
		t.Errorf("instanceof operand = %q", got)
	}
	if got := LineAt(code.LineNumbers(), instanceOf.PC); got != 40 {
		t.Errorf("LineAt(instanceof) = %d, want 40", got)
	}
	if got := LineAt(code.LineNumbers(), 0); got != 0 {
		t.Errorf("LineAt(0) = %d, want 0", got)
	}

	ref, ok := cf.ConstantPool.GetMemberRef(instructions[7].Index)
	if !ok || ref.Kind != ConstantInterfaceMethodref || ref.Name != "run" {
		t.Errorf("invokeinterface ref = %+v", ref)
	}
}

func TestInstructionsMalformed(t *testing.T) {
	tests := []struct {
		name string
		code []byte
	}{
		{"truncated operand", []byte{0xb4, 0x00}},
		{"undefined opcode", []byte{0xcb}},
		{"truncated switch", []byte{0xaa, 0, 0, 0}},
		{"inverted switch", []byte{0xaa, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 5, 0, 0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&CodeAttribute{Code: tt.code}).Instructions()
			var mme *MalformedModuleError
			if !errors.As(err, &mme) || mme.Section != "code" {
				t.Fatalf("Instructions() error = %v, want code section error", err)
			}
		})
	}
}
