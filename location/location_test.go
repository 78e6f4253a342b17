package location

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"

	cft "github.com/dhamidi/classgraph/classfile/classfiletest"
	"github.com/dhamidi/classgraph/importer"
	"github.com/dhamidi/classgraph/java"
)

func classBytes(name, super string) []byte {
	return (&cft.Class{Name: name, Super: super, Flags: cft.AccPublic | cft.AccSuper}).Bytes()
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func zipBytes(t *testing.T, entries map[string][]byte, order ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range order {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write(entries[name])
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func uris(inputs []importer.Input) []string {
	var result []string
	for _, in := range inputs {
		result = append(result, in.URI)
	}
	return result
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		path   string
		want   bool
	}{
		{"empty admits all", Filter{}, "a/b/C.class", true},
		{"include prefix", Filter{Include: []string{"a/b"}}, "a/b/C.class", true},
		{"include miss", Filter{Include: []string{"x/"}}, "a/b/C.class", false},
		{"exclude wins", Filter{Include: []string{"a/"}, Exclude: []string{"a/b/"}}, "a/b/C.class", false},
		{"directory prefix is not a name prefix", Filter{Exclude: []string{"a/b/"}}, "a/bc/C.class", true},
		{"directory itself", Filter{Exclude: []string{"a/b/"}}, "a/b", false},
		{"cleaned", Filter{Exclude: []string{"a/b/"}}, "./a/b/../b/C.class", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Allows(tt.path))
		})
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	a := classBytes("p/A", "java/lang/Object")
	writeFile(t, filepath.Join(dir, "classes", "p", "A.class"), a)
	writeFile(t, filepath.Join(dir, "classes", "p", "B.class"), classBytes("p/B", "p/A"))
	writeFile(t, filepath.Join(dir, "classes", "p", "notes.txt"), []byte("ignored"))
	writeFile(t, filepath.Join(dir, "lib", "dep.jar"), zipBytes(t, map[string][]byte{
		"META-INF/MANIFEST.MF": []byte("Manifest-Version: 1.0\n"),
		"q/C.class":            classBytes("q/C", "java/lang/Object"),
	}, "META-INF/MANIFEST.MF", "q/C.class"))

	opts := importer.DefaultOptions()
	res, err := New(opts).Scan(context.Background(), filepath.Join(dir, "classes"), filepath.Join(dir, "lib", "dep.jar"))
	require.NoError(t, err)
	assert.Empty(t, res.Errors)

	classes := java.FileURL(filepath.ToSlash(filepath.Join(dir, "classes"))).String()
	jar := "jar:" + java.FileURL(filepath.ToSlash(filepath.Join(dir, "lib", "dep.jar"))).String()
	assert.Equal(t, []string{
		classes + "/p/A.class",
		classes + "/p/B.class",
		jar + "!/q/C.class",
	}, uris(res.Inputs))

	sum := blake3.Sum256(a)
	assert.True(t, res.Inputs[0].Checksum.Equal(java.ChecksumOf(sum[:])))
	assert.Equal(t, a, res.Inputs[0].Content)

	result, err := importer.New().Import(context.Background(), res.Inputs)
	require.NoError(t, err)
	b, ok := result.Classes.Get("p.B")
	require.True(t, ok)
	assert.True(t, b.Superclass().IsImported())
	c, _ := result.Classes.Get("q.C")
	assert.Equal(t, jar+"!/q/C.class", c.Source().URL.String())
	assert.Equal(t, "C.class", c.Source().FileNameOrGuess())
}

func TestScanNestedArchive(t *testing.T) {
	dir := t.TempDir()
	inner := zipBytes(t, map[string][]byte{"q/C.class": classBytes("q/C", "java/lang/Object")}, "q/C.class")
	path := filepath.Join(dir, "app.zip")
	writeFile(t, path, zipBytes(t, map[string][]byte{
		"lib/inner.jar": inner,
		"p/A.class":     classBytes("p/A", "q/C"),
	}, "lib/inner.jar", "p/A.class"))

	res, err := New(importer.DefaultOptions()).Scan(context.Background(), path)
	require.NoError(t, err)
	base := "jar:" + java.FileURL(filepath.ToSlash(path)).String()
	assert.Equal(t, []string{
		base + "!/lib/inner.jar!/q/C.class",
		base + "!/p/A.class",
	}, uris(res.Inputs))
}

func TestScanFilterAndChecksums(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "p", "A.class"), classBytes("p/A", "java/lang/Object"))
	writeFile(t, filepath.Join(dir, "p", "generated", "G.class"), classBytes("p/generated/G", "java/lang/Object"))

	opts := importer.DefaultOptions()
	opts.Checksums = false
	opts.Exclude = []string{filepath.ToSlash(filepath.Join(dir, "p", "generated")) + "/"}

	res, err := New(opts).Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, res.Inputs, 1)
	assert.Contains(t, res.Inputs[0].URI, "/p/A.class")
	assert.Equal(t, java.ChecksumDisabled, res.Inputs[0].Checksum.State())
}

func TestScanReportsUnreadablePaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.jar"), []byte("not a zip"))
	writeFile(t, filepath.Join(dir, "A.class"), classBytes("A", "java/lang/Object"))

	res, err := New(importer.DefaultOptions()).Scan(context.Background(),
		filepath.Join(dir, "missing"),
		filepath.Join(dir, "broken.jar"),
		filepath.Join(dir, "A.class"),
	)
	require.NoError(t, err)
	assert.Len(t, res.Errors, 2)
	assert.Len(t, res.Inputs, 1)
}

func TestScanCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(importer.DefaultOptions()).Scan(ctx, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassPathResolver(t *testing.T) {
	dir := t.TempDir()
	classes := filepath.Join(dir, "classes")
	writeFile(t, filepath.Join(classes, "lib", "Base.class"), classBytes("lib/Base", "java/lang/Object"))
	writeFile(t, filepath.Join(classes, "lib", "Broken.class"), []byte{0xca, 0xfe, 0xba, 0xbe})
	jarPath := filepath.Join(dir, "dep.jar")
	writeFile(t, jarPath, zipBytes(t, map[string][]byte{
		"lib/Base.class":        classBytes("lib/Base", "lib/Shadowed"),
		"lib/Outer$Inner.class": classBytes("lib/Outer$Inner", "java/lang/Object"),
	}, "lib/Base.class", "lib/Outer$Inner.class"))

	r := NewClassPathResolver([]string{classes, jarPath}, true)
	defer r.Close()

	desc, err := r.TryResolve("lib.Base")
	require.NoError(t, err)
	require.NotNil(t, desc)
	assert.Equal(t, "java.lang.Object", desc.SuperclassName, "earlier entries win")
	assert.Equal(t, java.ChecksumComputed, desc.Source.Checksum.State())

	desc, err = r.TryResolve("lib/Outer$Inner")
	require.NoError(t, err)
	require.NotNil(t, desc)
	assert.Equal(t, "jar:"+java.FileURL(filepath.ToSlash(jarPath)).String()+"!/lib/Outer$Inner.class", desc.Source.URL.String())

	for _, name := range []string{"lib.Missing", "lib.Broken", "int", "lib.Base[]"} {
		desc, err = r.TryResolve(name)
		require.NoError(t, err, name)
		assert.Nil(t, desc, name)
	}

	bad := NewClassPathResolver([]string{filepath.Join(dir, "missing.jar")}, true)
	_, err = bad.TryResolve("lib.Base")
	assert.Error(t, err)
}

func TestClassPathResolverWithImporter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lib", "Base.class"), classBytes("lib/Base", "lib/Root"))
	writeFile(t, filepath.Join(dir, "lib", "Root.class"), classBytes("lib/Root", "java/lang/Object"))
	r := NewClassPathResolver([]string{dir}, false)
	defer r.Close()

	inputs := []importer.Input{{URI: "mem:p/A", Content: classBytes("p/A", "lib/Base")}}
	result, err := importer.New(importer.WithResolver(r)).Import(context.Background(), inputs)
	require.NoError(t, err)

	base, _ := result.Classes.Get("lib.Base")
	assert.True(t, base.IsImported())
	assert.Equal(t, java.ChecksumDisabled, base.Source().Checksum.State())
	root, _ := result.Classes.Get("lib.Root")
	assert.True(t, root.IsStub(), "resolution stops at the configured depth")
}
