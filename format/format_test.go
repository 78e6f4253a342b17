package format

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/classgraph/java"
)

func repository(t *testing.T) *java.Class {
	t.Helper()
	descs := []*java.ClassDescriptor{{
		Name:           "p.Repository",
		SuperclassName: "java.lang.Object",
		InterfaceNames: []string{"java.lang.Iterable"},
		Kind:           java.ClassKindClass,
		Modifiers:      java.ModifierPublic | java.ModifierAbstract,
		Signature:      "<T:Ljava/lang/Object;>Ljava/lang/Object;Ljava/lang/Iterable<TT;>;",
		Source:         java.NewSource(java.FileURL("/classes/p/Repository.class"), "", java.ChecksumWithState(java.ChecksumDisabled)),
		Annotations:    []java.AnnotationDescriptor{{Type: "p.Managed"}},
		Fields: []*java.FieldDescriptor{
			{Name: "items", Descriptor: "Ljava/util/List;", Signature: "Ljava/util/List<TT;>;", Modifiers: java.ModifierPrivate | java.ModifierFinal},
		},
		CodeUnits: []*java.CodeUnitDescriptor{
			{
				Name:       "add",
				Descriptor: "(Ljava/lang/Object;)Z",
				Signature:  "(TT;)Z",
				Modifiers:  java.ModifierPublic,
				Accesses: []java.RawAccess{
					{Kind: java.AccessFieldGet, Owner: "p.Repository", Name: "items", Descriptor: "Ljava/util/List;", Line: 9},
				},
			},
			{Name: "<init>", Descriptor: "()V", Modifiers: java.ModifierProtected},
		},
	}}
	classes, err := java.Build(descs, java.BuildOptions{})
	require.NoError(t, err)
	c, _ := classes.Get("p.Repository")
	return c
}

func TestLineEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewLineEncoder(&buf).Encode(repository(t)))
	assert.Equal(t, ""+
		"class\tp.Repository\tpublic\tabstract\n"+
		"extends\tjava.lang.Object\n"+
		"implements\tjava.lang.Iterable<T>\n"+
		"typeparam\tT extends java.lang.Object\n"+
		"field\titems\tjava.util.List<T>\tprivate\tfinal\n"+
		"method\tadd\tboolean\t(T)\tpublic\t-\n"+
		"access\tget\tp.Repository.items\t9\n"+
		"constructor\t<init>\tvoid\t()\tprotected\t-\n",
		buf.String())
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONEncoder(&buf).Encode(repository(t)))

	var got jsonClass
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "p.Repository", got.Name)
	assert.Equal(t, "Repository", got.SimpleName)
	assert.Equal(t, "public", got.Visibility)
	assert.Equal(t, []string{"abstract"}, got.Modifiers)
	assert.Equal(t, []string{"T extends java.lang.Object"}, got.TypeParameters)
	assert.Equal(t, []string{"java.lang.Iterable<T>"}, got.Interfaces)
	assert.Equal(t, []string{"@p.Managed"}, got.Annotations)
	assert.Equal(t, &jsonSource{URI: "file:///classes/p/Repository.class", FileName: "Repository.class", Checksum: "DISABLED"}, got.Source)
	require.Len(t, got.CodeUnits, 2)
	assert.Equal(t, []string{"T"}, got.CodeUnits[0].Parameters)
	assert.Equal(t, []jsonAccess{{Kind: "get", Target: "p.Repository.items", Line: 9, Resolved: true}}, got.CodeUnits[0].Accesses)
	assert.Equal(t, "constructor", got.CodeUnits[1].Kind)
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	enc, ok := New("json", &buf)
	require.True(t, ok)
	assert.IsType(t, &JSONEncoder{}, enc)
	enc, ok = New("", &buf)
	require.True(t, ok)
	assert.IsType(t, &LineEncoder{}, enc)
	_, ok = New("xml", &buf)
	assert.False(t, ok)
}
