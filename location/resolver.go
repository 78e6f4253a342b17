package location

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dhamidi/classgraph/importer"
	"github.com/dhamidi/classgraph/java"
)

// ClassPathResolver finds classes that were not part of an import on a
// list of class-path entries, each a directory or a jar. Entries are
// searched in order.
type ClassPathResolver struct {
	entries   []string
	checksums bool

	mu   sync.Mutex
	jars map[string]*zip.ReadCloser
}

func NewClassPathResolver(entries []string, checksums bool) *ClassPathResolver {
	return &ClassPathResolver{
		entries:   append([]string(nil), entries...),
		checksums: checksums,
		jars:      make(map[string]*zip.ReadCloser),
	}
}

// TryResolve reads a.b.C$D from <dir>/a/b/C$D.class or from the jar entry
// a/b/C$D.class. Array and primitive names are never found. A class file
// that cannot be decoded counts as not found.
func (r *ClassPathResolver) TryResolve(name string) (*java.ClassDescriptor, error) {
	name = java.NormalizeName(name)
	if name == "" || java.IsPrimitiveName(name) || strings.HasSuffix(name, "[]") {
		return nil, nil
	}
	rel := strings.ReplaceAll(name, ".", "/") + ".class"

	for _, entry := range r.entries {
		uri, content, err := r.read(entry, rel)
		if err != nil {
			return nil, fmt.Errorf("class path entry %s: %w", entry, err)
		}
		if content == nil {
			continue
		}
		desc, err := importer.ReadDescriptor(uri, content)
		if err != nil {
			log.Warningf("ignoring %s on class path: %s", uri, err)
			return nil, nil
		}
		desc.Source.Checksum = checksum(content, r.checksums)
		log.Debugf("resolved %s from %s", name, uri)
		return desc, nil
	}
	return nil, nil
}

// read returns nil content when entry does not contain rel.
func (r *ClassPathResolver) read(entry, rel string) (string, []byte, error) {
	if isArchive(entry) {
		jar, err := r.open(entry)
		if err != nil {
			return "", nil, err
		}
		f, err := jar.Open(rel)
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, nil
		}
		if err != nil {
			return "", nil, err
		}
		defer f.Close()
		content, err := io.ReadAll(f)
		if err != nil {
			return "", nil, err
		}
		return entryURI(fileURI(entry), rel), content, nil
	}

	p := filepath.Join(entry, filepath.FromSlash(rel))
	content, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	return fileURI(p), content, nil
}

func (r *ClassPathResolver) open(entry string) (*zip.ReadCloser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if jar, ok := r.jars[entry]; ok {
		return jar, nil
	}
	jar, err := zip.OpenReader(entry)
	if err != nil {
		return nil, err
	}
	r.jars[entry] = jar
	return jar, nil
}

// Close releases the jars opened so far.
func (r *ClassPathResolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for entry, jar := range r.jars {
		if err := jar.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", entry, err))
		}
		delete(r.jars, entry)
	}
	return errors.Join(errs...)
}
