// Package java holds the imported class graph: classes, members, generic
// types and the accesses between them. Graphs are built once by Build and
// are read-only afterwards.
package java

import "strings"

type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
	VisibilityPackage   Visibility = "package"
)

type ClassKind string

const (
	ClassKindClass      ClassKind = "class"
	ClassKindInterface  ClassKind = "interface"
	ClassKindEnum       ClassKind = "enum"
	ClassKindAnnotation ClassKind = "annotation"
	ClassKindRecord     ClassKind = "record"
)

// Modifiers is a set of Java modifiers.
type Modifiers uint16

const (
	ModifierPublic Modifiers = 1 << iota
	ModifierProtected
	ModifierPrivate
	ModifierStatic
	ModifierFinal
	ModifierAbstract
	ModifierSynchronized
	ModifierVolatile
	ModifierTransient
	ModifierNative
	ModifierSynthetic
	ModifierBridge
	ModifierEnum
)

var modifierNames = []struct {
	m    Modifiers
	name string
}{
	{ModifierPublic, "PUBLIC"},
	{ModifierProtected, "PROTECTED"},
	{ModifierPrivate, "PRIVATE"},
	{ModifierStatic, "STATIC"},
	{ModifierFinal, "FINAL"},
	{ModifierAbstract, "ABSTRACT"},
	{ModifierSynchronized, "SYNCHRONIZED"},
	{ModifierVolatile, "VOLATILE"},
	{ModifierTransient, "TRANSIENT"},
	{ModifierNative, "NATIVE"},
	{ModifierSynthetic, "SYNTHETIC"},
	{ModifierBridge, "BRIDGE"},
	{ModifierEnum, "ENUM"},
}

func (m Modifiers) Has(other Modifiers) bool { return m&other == other }

func (m Modifiers) Visibility() Visibility {
	switch {
	case m.Has(ModifierPublic):
		return VisibilityPublic
	case m.Has(ModifierProtected):
		return VisibilityProtected
	case m.Has(ModifierPrivate):
		return VisibilityPrivate
	}
	return VisibilityPackage
}

// Names lists the modifiers in declaration order.
func (m Modifiers) Names() []string {
	var names []string
	for _, mn := range modifierNames {
		if m.Has(mn.m) {
			names = append(names, mn.name)
		}
	}
	return names
}

func (m Modifiers) String() string {
	return "[" + strings.Join(m.Names(), ", ") + "]"
}

// Retention tells whether an annotation is visible at runtime.
type Retention string

const (
	RetentionRuntime Retention = "RUNTIME"
	RetentionClass   Retention = "CLASS"
)
