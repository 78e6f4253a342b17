package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/classgraph/java"
)

// LineEncoder writes one tab separated record per class, member and
// access. Empty columns are written as "-".
type LineEncoder struct {
	w     io.Writer
	class *java.Class
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(class *java.Class) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	c := e.class

	fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\n", c.Kind(), c.Name(), c.Modifiers().Visibility(), joined(modifierNames(c.Modifiers())))
	if sup := c.GenericSuperclass(); sup != nil {
		fmt.Fprintf(&sb, "extends\t%s\n", sup.Name())
	}
	for _, i := range c.GenericInterfaces() {
		fmt.Fprintf(&sb, "implements\t%s\n", i.Name())
	}
	for _, tv := range c.TypeParameters() {
		fmt.Fprintf(&sb, "typeparam\t%s\n", tv)
	}

	for _, f := range c.Fields() {
		fmt.Fprintf(&sb, "field\t%s\t%s\t%s\t%s\n",
			f.Name(),
			f.Type().Name(),
			f.Modifiers().Visibility(),
			joined(modifierNames(f.Modifiers())),
		)
	}

	for _, cu := range c.CodeUnits() {
		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\t%s\t%s\n",
			codeUnitTag(cu),
			cu.Name(),
			typeName(cu.ReturnType()),
			"("+strings.Join(typeNames(cu.ParameterTypes()), ",")+")",
			cu.Modifiers().Visibility(),
			joined(modifierNames(cu.Modifiers())),
		)
		for _, a := range cu.Accesses() {
			fmt.Fprintf(&sb, "access\t%s\t%s\t%d\n", a.Kind(), a.Target(), a.Line())
		}
	}

	return []byte(sb.String()), nil
}

func codeUnitTag(cu *java.CodeUnit) string {
	switch cu.Kind() {
	case java.CodeUnitConstructor:
		return "constructor"
	case java.CodeUnitStaticInitializer:
		return "initializer"
	}
	return "method"
}

func joined(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}
