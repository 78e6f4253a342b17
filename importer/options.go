package importer

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/classgraph/java"
)

// DefaultConfigFile is read from the working directory when no explicit
// configuration path is given.
const DefaultConfigFile = "classgraph.yaml"

// Options configures an Importer. All fields can be set from YAML except
// Resolver, which is wired in code.
type Options struct {
	// Workers bounds the number of class files decoded concurrently.
	Workers int `yaml:"workers"`

	// ResolveMissingFromClassPath enables resolution of referenced classes
	// from ClassPath.
	ResolveMissingFromClassPath bool `yaml:"resolve_missing_from_classpath"`

	MaxResolveDepth int `yaml:"max_resolve_depth"`

	// ClassPath lists directories and jar files searched for missing classes.
	ClassPath []string `yaml:"classpath"`

	// Checksums turns content digests of imported files on or off.
	Checksums bool `yaml:"checksums"`

	// Include and Exclude filter input paths by prefix. An empty Include
	// accepts everything.
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`

	Resolver java.DescriptorResolver `yaml:"-"`
}

func DefaultOptions() Options {
	return Options{
		Workers:         runtime.NumCPU(),
		MaxResolveDepth: java.DefaultMaxResolveDepth,
		Checksums:       true,
	}
}

// LoadOptions reads options from a YAML file on top of DefaultOptions. A
// missing file is not an error.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return DefaultOptions(), fmt.Errorf("parsing %s: %w", path, err)
	}
	opts.normalize()
	return opts, nil
}

func (o *Options) normalize() {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.MaxResolveDepth <= 0 {
		o.MaxResolveDepth = java.DefaultMaxResolveDepth
	}
}

// Option is a functional option for configuring an Importer.
type Option func(*Options)

// WithOptions replaces all options, e.g. with the result of LoadOptions.
func WithOptions(o Options) Option {
	return func(opts *Options) {
		*opts = o
	}
}

func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

func WithMaxResolveDepth(depth int) Option {
	return func(o *Options) {
		o.MaxResolveDepth = depth
	}
}

// WithResolver sets the resolver asked for referenced classes that were
// not imported.
func WithResolver(r java.DescriptorResolver) Option {
	return func(o *Options) {
		o.Resolver = r
	}
}
