package java

import "strings"

const (
	ObjectClassName = "java.lang.Object"
	RecordClassName = "java.lang.Record"
	EnumClassName   = "java.lang.Enum"
	VoidName        = "void"
)

var primitiveDescriptors = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
}

// IsPrimitiveName reports whether name is a primitive type or void.
func IsPrimitiveName(name string) bool {
	if name == VoidName {
		return true
	}
	for _, p := range primitiveDescriptors {
		if p == name {
			return true
		}
	}
	return false
}

// NormalizeName turns the binary, internal and array descriptor spellings
// of a type name into the canonical form used by the graph:
// "[[Lorg.example.Some$Inner;" and "[[Lorg/example/Some$Inner;" both become
// "org.example.Some$Inner[][]" and "[I" becomes "int[]". Canonical names are
// returned unchanged.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	dims := 0
	for dims < len(name) && name[dims] == '[' {
		dims++
	}
	if dims == 0 {
		return strings.ReplaceAll(name, "/", ".")
	}
	component := name[dims:]
	switch {
	case len(component) == 1 && primitiveDescriptors[component[0]] != "":
		component = primitiveDescriptors[component[0]]
	case len(component) > 2 && component[0] == 'L' && component[len(component)-1] == ';':
		component = component[1 : len(component)-1]
	}
	return strings.ReplaceAll(component, "/", ".") + strings.Repeat("[]", dims)
}

// DescriptorToName converts a field descriptor ("Ljava/lang/String;", "[I")
// to a canonical type name.
func DescriptorToName(desc string) string {
	if desc == "" {
		return ""
	}
	if desc == "V" {
		return VoidName
	}
	if name, ok := primitiveDescriptors[desc[0]]; ok && len(desc) == 1 {
		return name
	}
	if desc[0] == 'L' && desc[len(desc)-1] == ';' {
		return strings.ReplaceAll(desc[1:len(desc)-1], "/", ".")
	}
	if desc[0] == '[' {
		return NormalizeName(desc)
	}
	return desc
}

func IsArrayName(name string) bool {
	return strings.HasSuffix(name, "[]")
}

// ArrayName returns the name of the array type with the given component.
func ArrayName(component string) string {
	return NormalizeName(component) + "[]"
}

// ComponentName strips one array dimension. It returns "" for non-arrays.
func ComponentName(name string) string {
	name = NormalizeName(name)
	if !IsArrayName(name) {
		return ""
	}
	return strings.TrimSuffix(name, "[]")
}

// BaseComponentName strips all array dimensions.
func BaseComponentName(name string) string {
	name = NormalizeName(name)
	for IsArrayName(name) {
		name = strings.TrimSuffix(name, "[]")
	}
	return name
}

// SimpleName returns the source level simple name: "Inner[][]" for
// "p.Outer$Inner[][]", "Local" for the local class "p.Outer$1Local" and ""
// for the anonymous class "p.Outer$1".
func SimpleName(name string) string {
	name = NormalizeName(name)
	base := BaseComponentName(name)
	suffix := name[len(base):]

	simple := base[strings.LastIndex(base, ".")+1:]
	if i := strings.LastIndex(simple, "$"); i >= 0 {
		simple = strings.TrimLeft(simple[i+1:], "0123456789")
	}
	return simple + suffix
}

// PackageName returns the package of a type. Primitives and arrays of
// primitives live in java.lang; classes without a package return "".
func PackageName(name string) string {
	base := BaseComponentName(name)
	if IsPrimitiveName(base) {
		return "java.lang"
	}
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[:i]
	}
	return ""
}
