package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/classgraph/java"
)

type JSONEncoder struct {
	w     io.Writer
	class *java.Class
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(class *java.Class) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(buildClass(e.class), "", "  ")
}

type jsonClass struct {
	Name                string                `json:"name"`
	SimpleName          string                `json:"simpleName"`
	Package             string                `json:"package"`
	Kind                string                `json:"kind"`
	Stub                bool                  `json:"stub,omitempty"`
	Visibility          string                `json:"visibility"`
	Modifiers           []string              `json:"modifiers,omitempty"`
	TypeParameters      []string              `json:"typeParameters,omitempty"`
	SuperClass          string                `json:"superClass,omitempty"`
	Interfaces          []string              `json:"interfaces,omitempty"`
	EnclosingClass      string                `json:"enclosingClass,omitempty"`
	EnclosingCodeUnit   string                `json:"enclosingCodeUnit,omitempty"`
	PermittedSubclasses []string              `json:"permittedSubclasses,omitempty"`
	Annotations         []string              `json:"annotations,omitempty"`
	Source              *jsonSource           `json:"source,omitempty"`
	RecordComponents    []jsonRecordComponent `json:"recordComponents,omitempty"`
	Fields              []jsonField           `json:"fields,omitempty"`
	CodeUnits           []jsonCodeUnit        `json:"codeUnits,omitempty"`
}

type jsonSource struct {
	URI      string `json:"uri,omitempty"`
	FileName string `json:"fileName"`
	Checksum string `json:"checksum"`
}

type jsonRecordComponent struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type jsonField struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Visibility  string   `json:"visibility"`
	Modifiers   []string `json:"modifiers,omitempty"`
	Annotations []string `json:"annotations,omitempty"`
}

type jsonCodeUnit struct {
	Name           string       `json:"name"`
	Kind           string       `json:"kind"`
	TypeParameters []string     `json:"typeParameters,omitempty"`
	ReturnType     string       `json:"returnType"`
	Parameters     []string     `json:"parameters,omitempty"`
	Throws         []string     `json:"throws,omitempty"`
	Visibility     string       `json:"visibility"`
	Modifiers      []string     `json:"modifiers,omitempty"`
	Annotations    []string     `json:"annotations,omitempty"`
	Accesses       []jsonAccess `json:"accesses,omitempty"`
}

type jsonAccess struct {
	Kind     string `json:"kind"`
	Target   string `json:"target"`
	Line     int    `json:"line"`
	Resolved bool   `json:"resolved"`
}

func buildClass(c *java.Class) jsonClass {
	data := jsonClass{
		Name:                c.Name(),
		SimpleName:          c.SimpleName(),
		Package:             c.PackageName(),
		Kind:                string(c.Kind()),
		Stub:                c.IsStub(),
		Visibility:          string(c.Modifiers().Visibility()),
		Modifiers:           modifierNames(c.Modifiers()),
		TypeParameters:      typeParameterNames(c.TypeParameters()),
		SuperClass:          typeName(c.GenericSuperclass()),
		Interfaces:          typeNames(c.GenericInterfaces()),
		PermittedSubclasses: classNames(c.PermittedSubclasses()),
		Annotations:         annotationNames(c.Annotations()),
	}
	if outer := c.EnclosingClass(); outer != nil {
		data.EnclosingClass = outer.Name()
	}
	if cu := c.EnclosingCodeUnit(); cu != nil {
		data.EnclosingCodeUnit = cu.FullName()
	}
	if src := c.Source(); src != nil {
		data.Source = &jsonSource{
			URI:      src.URL.String(),
			FileName: src.FileNameOrGuess(),
			Checksum: src.Checksum.String(),
		}
	}
	for _, rc := range c.RecordComponents() {
		data.RecordComponents = append(data.RecordComponents, jsonRecordComponent{Name: rc.Name(), Type: rc.Type().Name()})
	}
	for _, f := range c.Fields() {
		data.Fields = append(data.Fields, jsonField{
			Name:        f.Name(),
			Type:        f.Type().Name(),
			Visibility:  string(f.Modifiers().Visibility()),
			Modifiers:   modifierNames(f.Modifiers()),
			Annotations: annotationNames(f.Annotations()),
		})
	}
	for _, cu := range c.CodeUnits() {
		data.CodeUnits = append(data.CodeUnits, buildCodeUnit(cu))
	}
	return data
}

func buildCodeUnit(cu *java.CodeUnit) jsonCodeUnit {
	data := jsonCodeUnit{
		Name:           cu.Name(),
		Kind:           string(cu.Kind()),
		TypeParameters: typeParameterNames(cu.TypeParameters()),
		ReturnType:     typeName(cu.ReturnType()),
		Parameters:     typeNames(cu.ParameterTypes()),
		Throws:         typeNames(cu.ThrowsClause()),
		Visibility:     string(cu.Modifiers().Visibility()),
		Modifiers:      modifierNames(cu.Modifiers()),
		Annotations:    annotationNames(cu.Annotations()),
	}
	for _, a := range cu.Accesses() {
		data.Accesses = append(data.Accesses, jsonAccess{
			Kind:     string(a.Kind()),
			Target:   a.Target().String(),
			Line:     a.Line(),
			Resolved: a.IsResolved(),
		})
	}
	return data
}

func classNames(classes []*java.Class) []string {
	var names []string
	for _, c := range classes {
		names = append(names, c.Name())
	}
	return names
}
