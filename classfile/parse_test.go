package classfile

import (
	"errors"
	"testing"

	"github.com/dhamidi/classgraph/classfile/classfiletest"
)

func sampleClass() *classfiletest.Class {
	return &classfiletest.Class{
		Name:       "org/example/Sample",
		Super:      "java/lang/Object",
		Interfaces: []string{"java/io/Serializable", "java/lang/Comparable"},
		Flags:      classfiletest.AccPublic | classfiletest.AccSuper,
		Signature:  "Ljava/lang/Object;Ljava/io/Serializable;Ljava/lang/Comparable<Lorg/example/Sample;>;",
		SourceFile: "Sample.java",
		Fields: []classfiletest.Field{
			{Flags: classfiletest.AccPrivate, Name: "name", Descriptor: "Ljava/lang/String;"},
			{Flags: classfiletest.AccPublic | classfiletest.AccStatic | classfiletest.AccFinal, Name: "LIMIT", Descriptor: "I", Constant: int32(42)},
			{Flags: classfiletest.AccPrivate, Name: "big", Descriptor: "J", Constant: int64(1 << 40)},
		},
		Methods: []classfiletest.Method{
			{
				Flags:      classfiletest.AccPublic,
				Name:       "<init>",
				Descriptor: "()V",
				Code: []classfiletest.Insn{
					classfiletest.ALoad0().OnLine(3),
					classfiletest.InvokeSpecial("java/lang/Object", "<init>", "()V"),
					classfiletest.Return(),
				},
			},
			{
				Flags:      classfiletest.AccPublic,
				Name:       "compareTo",
				Descriptor: "(Lorg/example/Sample;)I",
				Exceptions: []string{"java/lang/IllegalStateException"},
				Code: []classfiletest.Insn{
					classfiletest.ALoad0().OnLine(10),
					classfiletest.GetField("org/example/Sample", "name", "Ljava/lang/String;").OnLine(11),
					classfiletest.Pop(),
					classfiletest.IConst0().OnLine(12),
					classfiletest.Raw(0xac),
				},
			},
			{Flags: classfiletest.AccPublic | classfiletest.AccAbstract, Name: "run", Descriptor: "()V"},
		},
	}
}

func TestParseClassFile(t *testing.T) {
	cf, err := ParseBytes(sampleClass().Bytes())
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	t.Run("class name", func(t *testing.T) {
		if got, want := cf.ClassName(), "org/example/Sample"; got != want {
			t.Errorf("ClassName() = %q, want %q", got, want)
		}
	})

	t.Run("super class", func(t *testing.T) {
		if got, want := cf.SuperClassName(), "java/lang/Object"; got != want {
			t.Errorf("SuperClassName() = %q, want %q", got, want)
		}
	})

	t.Run("interfaces", func(t *testing.T) {
		names := cf.InterfaceNames()
		if len(names) != 2 || names[0] != "java/io/Serializable" || names[1] != "java/lang/Comparable" {
			t.Errorf("InterfaceNames() = %v", names)
		}
	})

	t.Run("access flags", func(t *testing.T) {
		if !cf.AccessFlags.Has(AccPublic) {
			t.Error("expected class to be public")
		}
		if cf.IsInterface() || cf.IsEnum() || cf.IsAnnotation() || cf.IsRecord() {
			t.Error("expected plain class")
		}
	})

	t.Run("fields", func(t *testing.T) {
		if len(cf.Fields) != 3 {
			t.Fatalf("len(Fields) = %d, want 3", len(cf.Fields))
		}
		f := cf.Fields[0]
		if f.Name(cf.ConstantPool) != "name" || f.Descriptor(cf.ConstantPool) != "Ljava/lang/String;" {
			t.Errorf("field 0 = %s %s", f.Name(cf.ConstantPool), f.Descriptor(cf.ConstantPool))
		}
		if got := cf.Fields[1].ConstantValue(cf.ConstantPool); got != int32(42) {
			t.Errorf("LIMIT constant = %v, want 42", got)
		}
		if got := cf.Fields[2].ConstantValue(cf.ConstantPool); got != int64(1<<40) {
			t.Errorf("big constant = %v, want %d", got, int64(1<<40))
		}
	})

	t.Run("methods", func(t *testing.T) {
		if len(cf.Methods) != 3 {
			t.Fatalf("len(Methods) = %d, want 3", len(cf.Methods))
		}
		if !cf.Methods[0].IsConstructor(cf.ConstantPool) {
			t.Error("expected first method to be a constructor")
		}
		m := cf.GetMethod("compareTo", "")
		if m == nil {
			t.Fatal("compareTo not found")
		}
		if got := m.ExceptionNames(cf.ConstantPool); len(got) != 1 || got[0] != "java/lang/IllegalStateException" {
			t.Errorf("ExceptionNames() = %v", got)
		}
		if cf.GetMethod("run", "()V").GetCodeAttribute(cf.ConstantPool) != nil {
			t.Error("abstract method should have no code")
		}
	})

	t.Run("method code attribute", func(t *testing.T) {
		code := cf.GetMethod("compareTo", "").GetCodeAttribute(cf.ConstantPool)
		if code == nil {
			t.Fatal("missing Code attribute")
		}
		instructions, err := code.Instructions()
		if err != nil {
			t.Fatalf("Instructions() error = %v", err)
		}
		if len(instructions) != 5 {
			t.Fatalf("len(instructions) = %d, want 5", len(instructions))
		}
		getField := instructions[1]
		if getField.Opcode != OpGetField || getField.PC != 1 {
			t.Fatalf("instruction 1 = %+v", getField)
		}
		ref, ok := cf.ConstantPool.GetMemberRef(getField.Index)
		if !ok {
			t.Fatal("GetMemberRef() failed")
		}
		if ref.Kind != ConstantFieldref || ref.ClassName != "org/example/Sample" || ref.Name != "name" {
			t.Errorf("member ref = %+v", ref)
		}
		lines := code.LineNumbers()
		if got := LineAt(lines, getField.PC); got != 11 {
			t.Errorf("LineAt(getfield) = %d, want 11", got)
		}
		if got := LineAt(lines, 4); got != 11 {
			t.Errorf("LineAt(pop) = %d, want 11", got)
		}
		if got := LineAt(lines, 5); got != 12 {
			t.Errorf("LineAt(iconst_0) = %d, want 12", got)
		}
	})

	t.Run("source file and signature", func(t *testing.T) {
		if got := cf.SourceFile(); got != "Sample.java" {
			t.Errorf("SourceFile() = %q", got)
		}
		if got := cf.Signature(); got != sampleClass().Signature {
			t.Errorf("Signature() = %q", got)
		}
	})
}

func TestParseFieldDescriptor(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{"I", "int"},
		{"Z", "boolean"},
		{"Ljava/lang/String;", "java.lang.String"},
		{"[I", "int[]"},
		{"[[D", "double[][]"},
		{"[Lorg/example/Some$Inner;", "org.example.Some$Inner[]"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := ParseFieldDescriptor(tt.desc)
			if err != nil {
				t.Fatalf("ParseFieldDescriptor(%q): %v", tt.desc, err)
			}
			if got != tt.want {
				t.Errorf("ParseFieldDescriptor(%q) = %q, want %q", tt.desc, got, tt.want)
			}
		})
	}

	for _, bad := range []string{"", "[", "L;", "Ljava/lang/String", "II", "X", "V"} {
		if got, err := ParseFieldDescriptor(bad); err == nil {
			t.Errorf("ParseFieldDescriptor(%q) = %q, want error", bad, got)
		}
	}
}

func TestParseMethodDescriptor(t *testing.T) {
	tests := []struct {
		desc   string
		params []string
		ret    string
	}{
		{"()V", nil, "void"},
		{"()I", nil, "int"},
		{"(I)V", []string{"int"}, "void"},
		{"(II)I", []string{"int", "int"}, "int"},
		{"(Ljava/lang/String;)V", []string{"java.lang.String"}, "void"},
		{"(ID[Ljava/lang/Thread;)Ljava/lang/Object;", []string{"int", "double", "java.lang.Thread[]"}, "java.lang.Object"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			md, err := ParseMethodDescriptor(tt.desc)
			if err != nil {
				t.Fatalf("ParseMethodDescriptor(%q): %v", tt.desc, err)
			}
			if len(md.Parameters) != len(tt.params) {
				t.Fatalf("Parameters = %v, want %v", md.Parameters, tt.params)
			}
			for i := range tt.params {
				if md.Parameters[i] != tt.params[i] {
					t.Errorf("Parameters[%d] = %q, want %q", i, md.Parameters[i], tt.params[i])
				}
			}
			if md.Return != tt.ret {
				t.Errorf("Return = %q, want %q", md.Return, tt.ret)
			}
		})
	}

	md, _ := ParseMethodDescriptor("(I[J)V")
	if got := md.String(); got != "(int, long[]) void" {
		t.Errorf("String() = %q", got)
	}

	for _, bad := range []string{"", "V", "(I", "()", "(I)VV", "(Q)V"} {
		if md, err := ParseMethodDescriptor(bad); err == nil {
			t.Errorf("ParseMethodDescriptor(%q) = %+v, want error", bad, md)
		}
	}
}

func TestMalformedClassFile(t *testing.T) {
	valid := sampleClass().Bytes()

	tests := []struct {
		name    string
		content []byte
		section string
	}{
		{"empty", nil, "magic"},
		{"bad magic", []byte{0xCA, 0xFE, 0xBA, 0xBF, 0, 0, 0, 61}, "magic"},
		{"truncated version", valid[:6], "version"},
		{"truncated constant pool", valid[:20], "constant pool"},
		{"unknown constant tag", append(append([]byte{}, valid[:10]...), 2, 0, 0), "constant pool"},
		{"truncated body", valid[:len(valid)-3], "attributes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes(tt.content)
			if err == nil {
				t.Fatal("expected an error")
			}
			var mme *MalformedModuleError
			if !errors.As(err, &mme) {
				t.Fatalf("error %T is not a *MalformedModuleError", err)
			}
			if mme.Section != tt.section {
				t.Errorf("Section = %q, want %q (%v)", mme.Section, tt.section, err)
			}
		})
	}
}

func TestClassAttributes(t *testing.T) {
	class := &classfiletest.Class{
		Name:  "org/example/Shape",
		Super: "java/lang/Record",
		Flags: classfiletest.AccPublic | classfiletest.AccFinal,
		InnerClasses: []classfiletest.InnerClass{
			{Inner: "org/example/Shape$Corner", Outer: "org/example/Shape", InnerName: "Corner", Flags: classfiletest.AccStatic},
		},
		EnclosingMethod: &classfiletest.EnclosingMethod{Class: "org/example/Outer", Name: "make", Descriptor: "()V"},
		RecordComponents: []classfiletest.RecordComponent{
			{Name: "points", Descriptor: "Ljava/util/List;", Signature: "Ljava/util/List<Ljava/lang/Integer;>;"},
		},
		PermittedSubclasses: []string{"org/example/Square"},
		Annotations: []classfiletest.Annotation{{
			Type: "Lorg/example/Marker;",
			Values: []classfiletest.Value{
				{Name: "value", Value: "hello"},
				{Name: "kind", Value: classfiletest.EnumValue{Type: "Lorg/example/Kind;", Name: "ROUND"}},
				{Name: "types", Value: []interface{}{classfiletest.ClassValue("Ljava/lang/String;")}},
			},
		}},
		InvisibleAnnotations: []classfiletest.Annotation{{Type: "Lorg/example/Hidden;"}},
	}
	cf, err := ParseBytes(class.Bytes())
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	t.Run("Record", func(t *testing.T) {
		if !cf.IsRecord() {
			t.Fatal("expected a record")
		}
		rec := cf.Record()
		if len(rec.Components) != 1 {
			t.Fatalf("len(Components) = %d, want 1", len(rec.Components))
		}
		rc := rec.Components[0]
		if cf.ConstantPool.GetUtf8(rc.NameIndex) != "points" {
			t.Errorf("component name = %q", cf.ConstantPool.GetUtf8(rc.NameIndex))
		}
		if got := rc.Signature(cf.ConstantPool); got != "Ljava/util/List<Ljava/lang/Integer;>;" {
			t.Errorf("component signature = %q", got)
		}
	})

	t.Run("InnerClasses", func(t *testing.T) {
		entries := cf.InnerClasses()
		if len(entries) != 1 {
			t.Fatalf("len(InnerClasses()) = %d, want 1", len(entries))
		}
		if got := cf.ConstantPool.GetClassName(entries[0].InnerClassInfoIndex); got != "org/example/Shape$Corner" {
			t.Errorf("inner = %q", got)
		}
		if !entries[0].InnerClassAccessFlags.Has(AccStatic) {
			t.Error("expected static inner class flags")
		}
	})

	t.Run("EnclosingMethod", func(t *testing.T) {
		em := cf.EnclosingMethod()
		if em == nil {
			t.Fatal("missing EnclosingMethod")
		}
		if got := cf.ConstantPool.GetClassName(em.ClassIndex); got != "org/example/Outer" {
			t.Errorf("class = %q", got)
		}
		name, desc := cf.ConstantPool.GetNameAndType(em.MethodIndex)
		if name != "make" || desc != "()V" {
			t.Errorf("method = %s%s", name, desc)
		}
	})

	t.Run("PermittedSubclasses", func(t *testing.T) {
		if got := cf.PermittedSubclassNames(); len(got) != 1 || got[0] != "org/example/Square" {
			t.Errorf("PermittedSubclassNames() = %v", got)
		}
	})

	t.Run("Annotations", func(t *testing.T) {
		attrs := cf.Annotations()
		if len(attrs) != 2 {
			t.Fatalf("len(Annotations()) = %d, want 2", len(attrs))
		}
		if !attrs[0].Visible || attrs[1].Visible {
			t.Error("expected visible annotations first")
		}
		ann := attrs[0].Annotations[0]
		if got := cf.ConstantPool.GetUtf8(ann.TypeIndex); got != "Lorg/example/Marker;" {
			t.Errorf("type = %q", got)
		}
		if len(ann.ElementValuePairs) != 3 {
			t.Fatalf("len(ElementValuePairs) = %d, want 3", len(ann.ElementValuePairs))
		}
		if ev := ann.ElementValuePairs[1].Value; ev.Tag != 'e' {
			t.Errorf("kind tag = %q, want 'e'", ev.Tag)
		}
		arr, ok := ann.ElementValuePairs[2].Value.Value.(ArrayValue)
		if !ok || len(arr.Values) != 1 || arr.Values[0].Tag != 'c' {
			t.Errorf("types = %+v", ann.ElementValuePairs[2].Value)
		}
	})
}

func TestConstantPoolTagAt(t *testing.T) {
	cp := ConstantPool{&ConstantUtf8Info{Value: "x"}, &ConstantLongInfo{Value: 1}, nil}
	if got := cp.TagAt(1).String(); got != "Utf8" {
		t.Errorf("TagAt(1) = %s, want Utf8", got)
	}
	if got := cp.TagAt(2).String(); got != "Long" {
		t.Errorf("TagAt(2) = %s, want Long", got)
	}
	if got := cp.TagAt(3); got != 0 {
		t.Errorf("TagAt(3) = %d, want 0", got)
	}
	if got := cp.TagAt(9).String(); got != "tag(0)" {
		t.Errorf("TagAt(9) = %s, want tag(0)", got)
	}
}

func TestBootstrapMethods(t *testing.T) {
	class := &classfiletest.Class{
		Name:  "org/example/Refs",
		Super: "java/lang/Object",
		Methods: []classfiletest.Method{{
			Name:       "supply",
			Descriptor: "()Ljava/util/function/Supplier;",
			Code: []classfiletest.Insn{
				classfiletest.FunctionalReference("java/util/function/Supplier", "get", "()Ljava/lang/Object;",
					classfiletest.Handle{Kind: classfiletest.RefNewInvokeSpecial, Owner: "org/example/Refs", Name: "<init>", Descriptor: "()V"}),
				classfiletest.Return(),
			},
		}},
	}
	cf, err := ParseBytes(class.Bytes())
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	bootstraps := cf.BootstrapMethods()
	if len(bootstraps) != 1 {
		t.Fatalf("len(BootstrapMethods()) = %d, want 1", len(bootstraps))
	}
	factory, ok := cf.ConstantPool.GetMethodHandle(bootstraps[0].MethodRef)
	if !ok || factory.Kind != RefInvokeStatic || factory.Ref.ClassName != "java/lang/invoke/LambdaMetafactory" {
		t.Errorf("bootstrap handle = %+v", factory)
	}
	if len(bootstraps[0].Arguments) != 3 {
		t.Fatalf("len(Arguments) = %d, want 3", len(bootstraps[0].Arguments))
	}
	if got := cf.ConstantPool.TagAt(bootstraps[0].Arguments[0]); got != ConstantMethodType {
		t.Errorf("argument 0 tag = %s, want MethodType", got)
	}
	impl, ok := cf.ConstantPool.GetMethodHandle(bootstraps[0].Arguments[1])
	if !ok || impl.Kind != RefNewInvokeSpecial || impl.Ref.Name != "<init>" || impl.Ref.Descriptor != "()V" {
		t.Errorf("implementation handle = %+v", impl)
	}

	code := cf.GetMethod("supply", "").GetCodeAttribute(cf.ConstantPool)
	if code == nil {
		t.Fatal("missing Code attribute")
	}
	insns, err := code.Instructions()
	if err != nil {
		t.Fatalf("Instructions() error = %v", err)
	}
	bsm, name, desc, ok := cf.ConstantPool.GetInvokeDynamic(insns[0].Index)
	if !ok || bsm != 0 || name != "get" || desc != "()Ljava/util/function/Supplier;" {
		t.Errorf("GetInvokeDynamic() = %d, %q, %q, %v", bsm, name, desc, ok)
	}
}
