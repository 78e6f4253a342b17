// Package location enumerates class files in directories and archives and
// turns them into importer inputs.
package location

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	"github.com/zeebo/blake3"

	"github.com/dhamidi/classgraph/importer"
	"github.com/dhamidi/classgraph/java"
)

var log = commonlog.GetLogger("classgraph.location")

// Result holds the inputs found by a scan and the paths that could not be
// read. A read failure does not stop the scan.
type Result struct {
	Inputs []importer.Input
	Errors []error
}

type Scanner struct {
	filter    Filter
	checksums bool
}

// New creates a scanner honouring the include/exclude prefixes and the
// checksum setting of opts.
func New(opts importer.Options) *Scanner {
	return &Scanner{
		filter:    Filter{Include: opts.Include, Exclude: opts.Exclude},
		checksums: opts.Checksums,
	}
}

// Scan enumerates each path in order. A path is a directory, which is
// walked in lexical order, a .jar or .zip archive, or a single .class
// file.
func (s *Scanner) Scan(ctx context.Context, paths ...string) (*Result, error) {
	var res Result
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(p)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("stat %s: %w", p, err))
			continue
		}
		switch {
		case info.IsDir():
			if err := s.scanDirectory(ctx, p, &res); err != nil {
				return nil, err
			}
		case isArchive(p):
			s.scanArchiveFile(p, &res)
		case filepath.Ext(p) == ".class":
			s.scanClassFile(p, &res)
		default:
			res.Errors = append(res.Errors, fmt.Errorf("%s: not a directory, archive or class file", p))
		}
	}
	log.Infof("found %d class files in %d locations (%d unreadable)", len(res.Inputs), len(paths), len(res.Errors))
	return &res, nil
}

func isArchive(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".jar" || ext == ".zip"
}

func (s *Scanner) scanDirectory(ctx context.Context, root string, res *Result) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("walk %s: %w", p, err))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		switch {
		case filepath.Ext(p) == ".class":
			s.scanClassFile(p, res)
		case isArchive(p):
			s.scanArchiveFile(p, res)
		}
		return nil
	})
}

func (s *Scanner) scanClassFile(p string, res *Result) {
	if !s.filter.Allows(p) {
		log.Debugf("excluded %s", p)
		return
	}
	content, err := os.ReadFile(p)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Errorf("read %s: %w", p, err))
		return
	}
	res.Inputs = append(res.Inputs, s.input(fileURI(p), content))
}

func (s *Scanner) scanArchiveFile(p string, res *Result) {
	if !s.filter.Allows(p) {
		log.Debugf("excluded %s", p)
		return
	}
	r, err := zip.OpenReader(p)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Errorf("open archive %s: %w", p, err))
		return
	}
	defer r.Close()
	s.scanArchive(&r.Reader, fileURI(p), res)
}

// scanArchive reads the class files of an archive, descending one level
// into archives nested in it.
func (s *Scanner) scanArchive(r *zip.Reader, base string, res *Result) {
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		switch {
		case filepath.Ext(f.Name) == ".class":
			if !s.filter.Allows(f.Name) {
				continue
			}
			content, err := readEntry(f)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Errorf("read %s in %s: %w", f.Name, base, err))
				continue
			}
			res.Inputs = append(res.Inputs, s.input(entryURI(base, f.Name), content))

		case isArchive(f.Name) && !strings.HasPrefix(base, "jar:"):
			data, err := readEntry(f)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Errorf("read %s in %s: %w", f.Name, base, err))
				continue
			}
			nested, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
			if err != nil {
				res.Errors = append(res.Errors, fmt.Errorf("open %s in %s as archive: %w", f.Name, base, err))
				continue
			}
			s.scanArchive(nested, entryURI(base, f.Name), res)
		}
	}
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *Scanner) input(uri string, content []byte) importer.Input {
	return importer.Input{URI: uri, Content: content, Checksum: checksum(content, s.checksums)}
}

func checksum(content []byte, enabled bool) java.Checksum {
	if !enabled {
		return java.ChecksumWithState(java.ChecksumDisabled)
	}
	sum := blake3.Sum256(content)
	return java.ChecksumOf(sum[:])
}

func fileURI(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return java.FileURL(filepath.ToSlash(p)).String()
}

// entryURI addresses an archive entry the way the JDK does,
// "jar:file:///lib/x.jar!/p/A.class". Entries of nested archives append
// another "!/" segment.
func entryURI(base, entry string) string {
	if !strings.HasPrefix(base, "jar:") {
		base = "jar:" + base
	}
	return base + "!/" + entry
}
