package java

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
)

// URLString is a URL that marshals to and from its string form.
type URLString struct {
	url.URL
}

// ParseURLString parses a location such as "file:///tmp/A.class" or
// "jar:file:///lib/x.jar!/p/A.class".
func ParseURLString(s string) (URLString, error) {
	u, err := url.Parse(s)
	if err != nil {
		return URLString{}, fmt.Errorf("invalid source location %q: %w", s, err)
	}
	return URLString{URL: *u}, nil
}

func FileURL(p string) URLString {
	return URLString{
		URL: url.URL{
			Scheme: "file",
			Path:   p,
		},
	}
}

func (u URLString) IsZero() bool {
	return u.URL.Scheme == "" && u.URL.Opaque == "" && u.URL.Host == "" && u.URL.Path == ""
}

func (u URLString) String() string {
	if u.IsZero() {
		return ""
	}
	return u.URL.String()
}

func (u URLString) MarshalJSON() ([]byte, error) {
	if u.IsZero() {
		return json.Marshal(nil)
	}
	return json.Marshal(u.URL.String())
}

func (u *URLString) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*u = URLString{}
		return nil
	}
	parsed, err := ParseURLString(*s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

type ChecksumState int

const (
	// ChecksumUndetermined means the content could not be read.
	ChecksumUndetermined ChecksumState = iota
	// ChecksumNotSupported means no digest algorithm was available.
	ChecksumNotSupported
	// ChecksumDisabled means checksums were turned off by configuration.
	ChecksumDisabled
	ChecksumComputed
)

// Checksum is a content digest of a class file, or the reason it is absent.
type Checksum struct {
	state  ChecksumState
	digest []byte
}

func ChecksumOf(digest []byte) Checksum {
	return Checksum{state: ChecksumComputed, digest: append([]byte(nil), digest...)}
}

func ChecksumWithState(state ChecksumState) Checksum {
	return Checksum{state: state}
}

func (c Checksum) State() ChecksumState { return c.state }

func (c Checksum) Digest() []byte { return append([]byte(nil), c.digest...) }

func (c Checksum) Equal(other Checksum) bool {
	return c.state == other.state && string(c.digest) == string(other.digest)
}

func (c Checksum) String() string {
	switch c.state {
	case ChecksumComputed:
		return hex.EncodeToString(c.digest)
	case ChecksumNotSupported:
		return "NOT_SUPPORTED"
	case ChecksumDisabled:
		return "DISABLED"
	}
	return "UNDETERMINED"
}

// Source records where a class was imported from.
type Source struct {
	URL      URLString
	FileName string
	Checksum Checksum
}

func NewSource(u URLString, fileName string, checksum Checksum) *Source {
	return &Source{URL: u, FileName: fileName, Checksum: checksum}
}

// FileNameOrGuess returns the SourceFile attribute, or the class file name
// when the attribute is missing.
func (s *Source) FileNameOrGuess() string {
	if s.FileName != "" {
		return s.FileName
	}
	p := s.URL.Path
	if p == "" {
		p = s.URL.Opaque
	}
	return path.Base(p)
}

func (s *Source) String() string {
	return fmt.Sprintf("%s [checksum='%s']", s.URL, s.Checksum)
}
