package signature

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClass(t *testing.T) {
	sig, err := ParseClass("<K:Ljava/lang/Object;V::Ljava/lang/Comparable<-TV;>;:Ljava/io/Serializable;>Ljava/util/AbstractMap<TK;TV;>;Ljava/util/Map<TK;TV;>;")
	require.NoError(t, err)

	require.Len(t, sig.TypeParameters, 2)
	assert.Equal(t, "K", sig.TypeParameters[0].Name)
	require.Len(t, sig.TypeParameters[0].Bounds, 1)
	assert.Equal(t, "java.lang.Object", sig.TypeParameters[0].Bounds[0].String())

	v := sig.TypeParameters[1]
	assert.Equal(t, "V", v.Name)
	require.Len(t, v.Bounds, 2, "interface-only bounds keep both entries")
	assert.Equal(t, "java.lang.Comparable<? super V>", v.Bounds[0].String())
	assert.Equal(t, "java.io.Serializable", v.Bounds[1].String())

	assert.Equal(t, "java.util.AbstractMap<K, V>", sig.Superclass.String())
	require.Len(t, sig.Interfaces, 1)
	assert.Equal(t, "java.util.Map", sig.Interfaces[0].Name)
}

func TestParseMethod(t *testing.T) {
	sig, err := ParseMethod("<T:Ljava/lang/Exception;>([[I[TT;Ljava/util/List<+Ljava/lang/Number;>;)Ljava/util/Map<Ljava/lang/String;*>;^TT;^Ljava/io/IOException;")
	require.NoError(t, err)

	require.Len(t, sig.TypeParameters, 1)
	require.Len(t, sig.Parameters, 3)
	assert.Equal(t, "int[][]", sig.Parameters[0].String())
	assert.Equal(t, "T[]", sig.Parameters[1].String())
	assert.Equal(t, "java.util.List<? extends java.lang.Number>", sig.Parameters[2].String())
	assert.Equal(t, "java.util.Map<java.lang.String, ?>", sig.Return.String())
	require.Len(t, sig.Throws, 2)
	assert.IsType(t, &TypeVar{}, sig.Throws[0])
	assert.Equal(t, "java.io.IOException", sig.Throws[1].String())
}

func TestParseMethodVoid(t *testing.T) {
	sig, err := ParseMethod("(Ljava/util/List<Ljava/lang/String;>;)V")
	require.NoError(t, err)
	assert.Nil(t, sig.Return)
	assert.Empty(t, sig.TypeParameters)
}

func TestParseFieldInnerClass(t *testing.T) {
	typ, err := ParseField("Lorg/example/Outer<Ljava/lang/String;>.Inner<Ljava/lang/Integer;>;")
	require.NoError(t, err)

	ct, ok := typ.(*ClassType)
	require.True(t, ok)
	assert.Equal(t, "org.example.Outer$Inner", ct.Name)
	require.Len(t, ct.Args, 1)
	assert.Equal(t, "java.lang.Integer", ct.Args[0].String())
}

func TestParseFieldNested(t *testing.T) {
	typ, err := ParseField("Ljava/util/List<Ljava/util/Map<[Ljava/lang/String;[[I>;>;")
	require.NoError(t, err)
	assert.Equal(t, "java.util.List<java.util.Map<java.lang.String[], int[][]>>", typ.String())
}

func TestMalformedSignatures(t *testing.T) {
	tests := []struct {
		name   string
		parse  func(string) error
		input  string
		offset int
	}{
		{"empty class", classParse, "", 0},
		{"missing semicolon", fieldParse, "Ljava/lang/String", 17},
		{"bad type argument", fieldParse, "Ljava/util/List<Q>;", 16},
		{"empty type arguments", fieldParse, "Ljava/util/List<>;", 16},
		{"primitive field", fieldParse, "I", 0},
		{"trailing input", fieldParse, "TT;X", 3},
		{"unterminated params", methodParse, "(I", 2},
		{"missing type parameter bound", classParse, "<T>Ljava/lang/Object;", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.parse(tt.input)
			var mse *MalformedSignatureError
			require.True(t, errors.As(err, &mse), "got %v", err)
			assert.Equal(t, tt.input, mse.Signature)
			assert.Equal(t, tt.offset, mse.Offset)
		})
	}
}

func classParse(s string) error {
	_, err := ParseClass(s)
	return err
}

func methodParse(s string) error {
	_, err := ParseMethod(s)
	return err
}

func fieldParse(s string) error {
	_, err := ParseField(s)
	return err
}
