// Package format renders imported classes for the command line.
package format

import (
	"encoding"
	"io"
	"strings"

	"github.com/dhamidi/classgraph/java"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(class *java.Class) error
}

// New returns the encoder registered under name: "line" or "json".
func New(name string, w io.Writer) (Encoder, bool) {
	switch name {
	case "line", "":
		return NewLineEncoder(w), true
	case "json":
		return NewJSONEncoder(w), true
	}
	return nil, false
}

// modifierNames lists the modifiers other than visibility in lower case.
func modifierNames(m java.Modifiers) []string {
	m &^= java.ModifierPublic | java.ModifierProtected | java.ModifierPrivate
	names := m.Names()
	for i, n := range names {
		names[i] = strings.ToLower(n)
	}
	return names
}

func typeName(t java.Type) string {
	if t == nil {
		return ""
	}
	return t.Name()
}

func typeNames(types []java.Type) []string {
	var names []string
	for _, t := range types {
		names = append(names, t.Name())
	}
	return names
}

func typeParameterNames(vars []*java.TypeVariable) []string {
	var names []string
	for _, v := range vars {
		names = append(names, v.String())
	}
	return names
}

func annotationNames(annotations []*java.Annotation) []string {
	var names []string
	for _, a := range annotations {
		names = append(names, a.String())
	}
	return names
}
