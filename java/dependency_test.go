package java

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dependencyTargets(deps []Dependency, kind DependencyKind) []string {
	var names []string
	for _, d := range deps {
		if d.Kind == kind {
			names = append(names, d.Target.Name())
		}
	}
	return names
}

func TestDependencies(t *testing.T) {
	service := class("p.Service", "p.Base")
	service.Signature = "<K:Ljava/lang/Comparable<TK;>;>Lp/Base<Lp/Model;>;Ljava/lang/Runnable;"
	service.InterfaceNames = []string{"java.lang.Runnable"}
	service.Annotations = []AnnotationDescriptor{{Type: "p.Component", Retention: RetentionRuntime}}
	service.Fields = []*FieldDescriptor{
		{Name: "cache", Descriptor: "Ljava/util/Map;", Signature: "Ljava/util/Map<TK;[Lp/Entry;>;"},
		{Name: "count", Descriptor: "I"},
		{Name: "self", Descriptor: "Lp/Service;"},
	}
	service.CodeUnits = []*CodeUnitDescriptor{{
		Name:           "find",
		Descriptor:     "(Lp/Query;)Ljava/util/Optional;",
		Signature:      "(Lp/Query;)Ljava/util/Optional<+Lp/Model;>;",
		ExceptionNames: []string{"java.io.IOException"},
		Accesses: []RawAccess{
			{Kind: AccessMethodCall, Owner: "p.Repository", Name: "load", Descriptor: "()V"},
			{Kind: AccessInstanceofCheck, Owner: "p.Special"},
		},
	}}

	classes := build(t, service)
	deps := mustGet(t, classes, "p.Service").DirectDependencies()

	assert.Equal(t, []string{"p.Base"}, dependencyTargets(deps, DependencyExtends))
	assert.Equal(t, []string{"java.lang.Runnable"}, dependencyTargets(deps, DependencyImplements))
	assert.Equal(t, []string{"java.lang.Comparable"}, dependencyTargets(deps, DependencyTypeParameterBound))
	assert.ElementsMatch(t, []string{"p.Model", "java.lang.Comparable", "p.Entry"}, dependencyTargets(deps, DependencyTypeArgument))
	assert.Equal(t, []string{"java.util.Map"}, dependencyTargets(deps, DependencyFieldType))
	assert.Equal(t, []string{"p.Query"}, dependencyTargets(deps, DependencyParameterType))
	assert.Equal(t, []string{"java.util.Optional"}, dependencyTargets(deps, DependencyReturnType))
	assert.Equal(t, []string{"java.io.IOException"}, dependencyTargets(deps, DependencyThrows))
	assert.Equal(t, []string{"p.Component"}, dependencyTargets(deps, DependencyAnnotation))
	assert.Equal(t, []string{"p.Repository"}, dependencyTargets(deps, DependencyAccess))
	assert.Equal(t, []string{"p.Special"}, dependencyTargets(deps, DependencyInstanceof))

	for _, d := range deps {
		assert.NotEqual(t, "p.Service", d.Target.Name(), "self references are omitted")
		assert.False(t, d.Target.IsPrimitive())
	}
}

func TestTransitiveDependenciesStopAtStubs(t *testing.T) {
	a := class("p.A", "p.B")
	b := class("p.B", "lib.Missing")

	classes := build(t, a, b)
	closure := classes.TransitiveDependencies(mustGet(t, classes, "p.A"))
	require.Len(t, closure, 2)
	assert.Equal(t, "lib.Missing", closure[0].Name())
	assert.True(t, closure[0].IsStub())
	assert.Equal(t, "p.B", closure[1].Name())
}
