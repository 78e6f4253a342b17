package importer

import (
	"fmt"

	"github.com/dhamidi/classgraph/java"
)

// ResolverChain asks each resolver in turn and returns the first
// descriptor found. The first error stops the chain.
type ResolverChain []java.DescriptorResolver

func (rc ResolverChain) TryResolve(name string) (*java.ClassDescriptor, error) {
	for i, r := range rc {
		desc, err := r.TryResolve(name)
		if err != nil {
			return nil, fmt.Errorf("resolver %d failed for %s: %w", i, name, err)
		}
		if desc != nil {
			return desc, nil
		}
	}
	return nil, nil
}

// DescriptorMap resolves names from a fixed set of descriptors, which is
// convenient for tests and for classes synthesized by callers.
type DescriptorMap map[string]*java.ClassDescriptor

func (m DescriptorMap) TryResolve(name string) (*java.ClassDescriptor, error) {
	return m[java.NormalizeName(name)], nil
}
