package export

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/classgraph/java"
)

type call struct {
	cypher string
	rows   []Row
}

type recorder struct {
	calls  []call
	failOn string
}

func (r *recorder) Run(ctx context.Context, cypher string, params map[string]any) error {
	if r.failOn != "" && strings.Contains(cypher, r.failOn) {
		return errors.New("boom")
	}
	c := call{cypher: cypher}
	if params != nil {
		c.rows = params["batch"].([]Row)
	}
	r.calls = append(r.calls, c)
	return nil
}

func graph(t *testing.T) *java.Classes {
	t.Helper()
	descs := []*java.ClassDescriptor{
		{
			Name:           "p.Base",
			SuperclassName: "java.lang.Object",
			Modifiers:      java.ModifierPublic,
			Source:         java.NewSource(java.FileURL("/classes/p/Base.class"), "Base.java", java.ChecksumWithState(java.ChecksumDisabled)),
			Fields:         []*java.FieldDescriptor{{Name: "count", Descriptor: "I"}},
		},
		{
			Name:           "p.Sub",
			SuperclassName: "p.Base",
			InterfaceNames: []string{"lib.Missing"},
			CodeUnits: []*java.CodeUnitDescriptor{{
				Name:       "bump",
				Descriptor: "()V",
				Accesses: []java.RawAccess{
					{Kind: java.AccessFieldGet, Owner: "p.Sub", Name: "count", Descriptor: "I", Line: 4},
					{Kind: java.AccessMethodCall, Owner: "lib.Missing", Name: "call", Descriptor: "()V", Line: 5},
					{Kind: java.AccessInstanceofCheck, Owner: "p.Base[]", Line: 6},
				},
			}},
		},
	}
	classes, err := java.Build(descs, java.BuildOptions{})
	require.NoError(t, err)
	return classes
}

func TestRows(t *testing.T) {
	classes := graph(t)

	rows := ClassRows(classes)
	require.Len(t, rows, 2)
	assert.Equal(t, "p.Base", rows[0]["name"])
	assert.Equal(t, "Base", rows[0]["simple"])
	assert.Equal(t, "p", rows[0]["package"])
	assert.Equal(t, "class", rows[0]["kind"])
	assert.Equal(t, []string{"PUBLIC"}, rows[0]["modifiers"])
	assert.Equal(t, "file:///classes/p/Base.class", rows[0]["source"])
	assert.Equal(t, "DISABLED", rows[0]["checksum"])
	assert.Equal(t, "", rows[1]["source"])

	members := MemberRows(classes)
	require.Len(t, members, 2)
	assert.Equal(t, Row{
		"key": "p.Base.countI", "owner": "p.Base", "name": "count", "full_name": "p.Base.count",
		"descriptor": "I", "kind": "field", "modifiers": []string(nil),
	}, members[0])
	assert.Equal(t, "p.Sub.bump()V", members[1]["key"])
	assert.Equal(t, "method", members[1]["kind"])

	deps := DependencyRows(classes)
	var edges []string
	for _, d := range deps {
		edges = append(edges, d["origin"].(string)+" "+d["kind"].(string)+" "+d["target"].(string))
	}
	assert.Contains(t, edges, "p.Sub extends p.Base")
	assert.Contains(t, edges, "p.Sub implements lib.Missing")
	assert.Contains(t, edges, "p.Sub instanceof p.Base")
	assert.Contains(t, edges, "p.Base extends java.lang.Object")

	toMember, toClass := AccessRows(classes)
	assert.Equal(t, []Row{{"origin": "p.Sub.bump()V", "kind": "get", "line": 4, "target": "p.Base.countI"}}, toMember)
	require.Len(t, toClass, 2)
	assert.Equal(t, "lib.Missing", toClass[0]["target"])
	assert.Equal(t, "call", toClass[0]["member"])
	assert.Equal(t, "p.Base", toClass[1]["target"], "arrays are reported as their component")
}

func TestExport(t *testing.T) {
	classes := graph(t)
	r := &recorder{}
	e := NewExporter(r, 1)

	require.NoError(t, e.Clean(context.Background()))
	require.NoError(t, e.CreateIndexes(context.Background()))
	stats, err := e.Export(context.Background(), classes)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Classes)
	assert.Equal(t, 2, stats.Members)
	assert.Equal(t, 1, stats.MemberAccesses)
	assert.Equal(t, 2, stats.ClassAccesses)

	var batches int
	for _, c := range r.calls {
		if c.rows != nil {
			assert.Len(t, c.rows, 1, "batch size is honoured")
			batches++
		}
	}
	assert.Equal(t, stats.Classes+stats.Members+stats.Dependencies+stats.MemberAccesses+stats.ClassAccesses, batches)
	assert.Contains(t, r.calls[0].cypher, "DETACH DELETE")
	assert.Contains(t, r.calls[4].cypher, "MERGE (c:JavaClass")
}

func TestExportStopsOnError(t *testing.T) {
	r := &recorder{failOn: "JavaMember {key: row.key}"}
	stats, err := NewExporter(r, 0).Export(context.Background(), graph(t))
	assert.ErrorContains(t, err, "loading members")
	assert.Equal(t, 2, stats.Classes)
	assert.Zero(t, stats.Members)
}
