package java

// ClassDescriptor is the raw, mutable description of one class as read from
// a class file or supplied by a DescriptorResolver. Build consumes each
// descriptor exactly once. Type names use the canonical form returned by
// NormalizeName; member descriptors keep the JVM syntax.
type ClassDescriptor struct {
	Name                   string
	SuperclassName         string
	InterfaceNames         []string
	Kind                   ClassKind
	Modifiers              Modifiers
	Signature              string
	EnclosingClassName     string
	EnclosingMethod        *MethodRef
	Fields                 []*FieldDescriptor
	CodeUnits              []*CodeUnitDescriptor
	RecordComponents       []RecordComponentDescriptor
	Annotations            []AnnotationDescriptor
	PermittedSubclassNames []string
	Source                 *Source

	// Order is the position of the input the descriptor was read from.
	// When two inputs define the same class the lower Order wins.
	Order int
}

// MethodRef names a code unit by name and JVM descriptor.
type MethodRef struct {
	Name       string
	Descriptor string
}

type FieldDescriptor struct {
	Name          string
	Descriptor    string
	Signature     string
	Modifiers     Modifiers
	Annotations   []AnnotationDescriptor
	ConstantValue interface{}
}

// CodeUnitDescriptor describes a method, constructor ("<init>") or static
// initializer ("<clinit>").
type CodeUnitDescriptor struct {
	Name                 string
	Descriptor           string
	Signature            string
	Modifiers            Modifiers
	ExceptionNames       []string
	Annotations          []AnnotationDescriptor
	ParameterAnnotations [][]AnnotationDescriptor
	Accesses             []RawAccess
}

// RawAccess is an access found in a method body before the target has
// been resolved. Name and Descriptor are empty for instanceof checks.
type RawAccess struct {
	Kind       AccessKind
	Owner      string
	Name       string
	Descriptor string
	Line       int
}

type RecordComponentDescriptor struct {
	Name       string
	Descriptor string
	Signature  string
}

// AnnotationDescriptor is an annotation with unresolved type names. Element
// values are bool, integer, floating point and string constants,
// EnumConstantDescriptor, ClassLiteralDescriptor, AnnotationDescriptor or
// []interface{} of those.
type AnnotationDescriptor struct {
	Type      string
	Retention Retention
	Elements  []AnnotationElementDescriptor
}

type AnnotationElementDescriptor struct {
	Name  string
	Value interface{}
}

type EnumConstantDescriptor struct {
	Type string
	Name string
}

type ClassLiteralDescriptor struct {
	Name string
}

// DescriptorResolver supplies descriptors for classes that were referenced
// but not imported. TryResolve returns (nil, nil) when the class is unknown;
// an error aborts the import.
type DescriptorResolver interface {
	TryResolve(name string) (*ClassDescriptor, error)
}

// DescriptorResolverFunc adapts a function to DescriptorResolver.
type DescriptorResolverFunc func(name string) (*ClassDescriptor, error)

func (f DescriptorResolverFunc) TryResolve(name string) (*ClassDescriptor, error) {
	return f(name)
}
