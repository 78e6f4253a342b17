package importer

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"github.com/dhamidi/classgraph/java"
)

// ErrSessionSealed is returned by Register once the session is sealed.
var ErrSessionSealed = errors.New("import session is sealed")

const shardCount = 32

type shard struct {
	mu     sync.Mutex
	byName map[string]*java.ClassDescriptor
}

// Session collects the descriptors of one import run. Register is safe
// for concurrent use until Seal; sessions share no state.
type Session struct {
	id       uuid.UUID
	shards   [shardCount]shard
	sealed   atomic.Bool
	resolver java.DescriptorResolver

	memoMu sync.Mutex
	memo   map[string]lookup
}

type lookup struct {
	desc *java.ClassDescriptor
	err  error
}

// NewSession starts a session. resolver may be nil.
func NewSession(resolver java.DescriptorResolver) *Session {
	s := &Session{
		id:       uuid.New(),
		resolver: resolver,
		memo:     make(map[string]lookup),
	}
	for i := range s.shards {
		s.shards[i].byName = make(map[string]*java.ClassDescriptor)
	}
	return s
}

func (s *Session) ID() string { return s.id.String() }

// Register adds a descriptor. When a class is registered twice the
// descriptor with the lower Order is kept.
func (s *Session) Register(desc *java.ClassDescriptor) error {
	if s.sealed.Load() {
		return ErrSessionSealed
	}
	name := java.NormalizeName(desc.Name)
	sh := &s.shards[xxh3.HashString(name)%shardCount]

	sh.mu.Lock()
	defer sh.mu.Unlock()
	if existing, ok := sh.byName[name]; ok {
		if existing.Order <= desc.Order {
			log.Debugf("session %s: ignoring duplicate %s (order %d, kept %d)", s.ID(), name, desc.Order, existing.Order)
			return nil
		}
		log.Debugf("session %s: replacing duplicate %s (order %d, kept %d)", s.ID(), name, existing.Order, desc.Order)
	}
	sh.byName[name] = desc
	return nil
}

// Seal ends registration.
func (s *Session) Seal() {
	s.sealed.Store(true)
}

func (s *Session) Sealed() bool { return s.sealed.Load() }

// Descriptors returns the registered descriptors sorted by name.
func (s *Session) Descriptors() []*java.ClassDescriptor {
	var result []*java.ClassDescriptor
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for _, d := range sh.byName {
			result = append(result, d)
		}
		sh.mu.Unlock()
	}
	sort.Slice(result, func(i, j int) bool {
		return java.NormalizeName(result[i].Name) < java.NormalizeName(result[j].Name)
	})
	return result
}

// Len returns the number of registered classes.
func (s *Session) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		n += len(sh.byName)
		sh.mu.Unlock()
	}
	return n
}

// TryResolve asks the session's resolver for name, at most once per name.
func (s *Session) TryResolve(name string) (*java.ClassDescriptor, error) {
	s.memoMu.Lock()
	defer s.memoMu.Unlock()
	if l, ok := s.memo[name]; ok {
		return l.desc, l.err
	}

	var l lookup
	if s.resolver != nil {
		l.desc, l.err = s.resolver.TryResolve(name)
	}
	switch {
	case l.err != nil:
		resolverLookupsTotal.WithLabelValues("error").Inc()
	case l.desc != nil:
		resolverLookupsTotal.WithLabelValues("found").Inc()
	default:
		log.Debugf("session %s: %s not found by resolver", s.ID(), name)
		resolverLookupsTotal.WithLabelValues("missing").Inc()
	}
	s.memo[name] = l
	return l.desc, l.err
}
