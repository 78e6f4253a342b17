package classfile

import (
	"fmt"
	"strings"
)

// MethodDescriptor holds the types of a method descriptor, each rendered as a
// binary name with one "[]" per dimension ("java.lang.String[][]", "int").
// Return is "void" for V.
type MethodDescriptor struct {
	Parameters []string
	Return     string
}

func (md *MethodDescriptor) String() string {
	return "(" + strings.Join(md.Parameters, ", ") + ") " + md.Return
}

// ParseFieldDescriptor decodes a single field type such as
// "[Lorg/example/Some$Inner;" into "org.example.Some$Inner[]".
func ParseFieldDescriptor(desc string) (string, error) {
	name, end, err := fieldType(desc, 0)
	if err != nil {
		return "", err
	}
	if end != len(desc) {
		return "", fmt.Errorf("trailing data in field descriptor %q at offset %d", desc, end)
	}
	return name, nil
}

func ParseMethodDescriptor(desc string) (*MethodDescriptor, error) {
	if !strings.HasPrefix(desc, "(") {
		return nil, fmt.Errorf("method descriptor %q does not start with '('", desc)
	}
	md := &MethodDescriptor{}
	i := 1
	for i < len(desc) && desc[i] != ')' {
		name, next, err := fieldType(desc, i)
		if err != nil {
			return nil, err
		}
		md.Parameters = append(md.Parameters, name)
		i = next
	}
	if i >= len(desc) {
		return nil, fmt.Errorf("method descriptor %q has no closing ')'", desc)
	}
	i++
	if desc[i:] == "V" {
		md.Return = "void"
		return md, nil
	}
	name, end, err := fieldType(desc, i)
	if err != nil {
		return nil, err
	}
	if end != len(desc) {
		return nil, fmt.Errorf("trailing data in method descriptor %q at offset %d", desc, end)
	}
	md.Return = name
	return md, nil
}

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

// fieldType decodes the type starting at desc[start] and returns the offset
// just past it.
func fieldType(desc string, start int) (string, int, error) {
	i := start
	for i < len(desc) && desc[i] == '[' {
		i++
	}
	dims := i - start
	if i >= len(desc) {
		return "", 0, fmt.Errorf("descriptor %q ends inside the type at offset %d", desc, start)
	}

	var name string
	end := i + 1
	if p, ok := primitiveDescriptors[desc[i]]; ok {
		name = p
	} else if desc[i] == 'L' {
		semi := strings.IndexByte(desc[i:], ';')
		if semi <= 1 {
			return "", 0, fmt.Errorf("unterminated class name in descriptor %q at offset %d", desc, i)
		}
		name = InternalToSourceName(desc[i+1 : i+semi])
		end = i + semi + 1
	} else {
		return "", 0, fmt.Errorf("unexpected %q in descriptor %q at offset %d", desc[i], desc, i)
	}
	return name + strings.Repeat("[]", dims), end, nil
}

// InternalToSourceName turns "java/util/Map$Entry" into "java.util.Map$Entry".
func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}
