package java

import (
	"sort"
	"sync"
)

// Classes is an imported class graph. Lookups are safe for concurrent use;
// Resolve is the only operation that adds nodes after Build.
type Classes struct {
	mu         sync.RWMutex
	arena      []*Class
	byName     map[string]*Class
	accessesTo map[Member][]*Access
	report     Report
}

func newClasses() *Classes {
	return &Classes{
		byName:     make(map[string]*Class),
		accessesTo: make(map[Member][]*Access),
	}
}

// add appends a handle to the arena. Callers hold mu or own the graph.
func (cs *Classes) add(c *Class) *Class {
	c.index = len(cs.arena)
	cs.arena = append(cs.arena, c)
	cs.byName[c.name] = c
	return c
}

// Get returns the class with the given name in any spelling accepted by
// NormalizeName.
func (cs *Classes) Get(name string) (*Class, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	c, ok := cs.byName[NormalizeName(name)]
	return c, ok
}

// Contains reports whether the class was imported or resolved, as opposed
// to being a stub.
func (cs *Classes) Contains(name string) bool {
	c, ok := cs.Get(name)
	return ok && !c.stub
}

// Resolve returns the named class, creating a stub for names that were
// never referenced during the import. Existing nodes are never changed.
func (cs *Classes) Resolve(name string) *Class {
	name = NormalizeName(name)
	if c, ok := cs.Get(name); ok {
		return c
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.lateClass(name)
}

func (cs *Classes) lateClass(name string) *Class {
	if c, ok := cs.byName[name]; ok {
		return c
	}
	if component := ComponentName(name); component != "" {
		return cs.add(newArrayClass(name, cs.lateClass(component)))
	}
	if IsPrimitiveName(name) {
		return cs.add(newPrimitiveClass(name))
	}
	log.Debugf("creating late stub for %s", name)
	c := cs.add(newStubClass(name))
	cs.report.Stubs = append(cs.report.Stubs, name)
	return c
}

// ByIndex returns the class at the given arena index.
func (cs *Classes) ByIndex(i int) (*Class, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	if i < 0 || i >= len(cs.arena) {
		return nil, false
	}
	return cs.arena[i], true
}

func (cs *Classes) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.arena)
}

// All returns every node, including stubs, arrays and primitives, in
// arena order.
func (cs *Classes) All() []*Class {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return append([]*Class(nil), cs.arena...)
}

// Imported returns the classes built from descriptors, sorted by name.
func (cs *Classes) Imported() []*Class {
	var result []*Class
	for _, c := range cs.All() {
		if c.IsImported() {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].name < result[j].name })
	return result
}

// AccessesFrom returns the accesses made by the code units of c.
func (cs *Classes) AccessesFrom(c *Class) []*Access {
	return c.AccessesFromSelf()
}

// AccessesTo returns the resolved accesses that target m.
func (cs *Classes) AccessesTo(m Member) []*Access {
	return append([]*Access(nil), cs.accessesTo[m]...)
}

// AccessesToClass returns the accesses whose target owner is c, resolved
// or not.
func (cs *Classes) AccessesToClass(c *Class) []*Access {
	var result []*Access
	for _, origin := range cs.Imported() {
		for _, a := range origin.AccessesFromSelf() {
			if a.target.Owner == c {
				result = append(result, a)
			}
		}
	}
	return result
}

func (cs *Classes) Report() Report {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	r := cs.report
	r.Stubs = append([]string(nil), r.Stubs...)
	return r
}

// Report lists the places where the graph was degraded instead of failing.
type Report struct {
	Stubs                 []string
	UnresolvedAccesses    []*Access
	UnknownBoundVariables []UnknownBoundVariable
	SignatureErrors       []SignatureFailure
	UnresolvedEnclosing   []string
}

// UnknownBoundVariable is a type variable use whose declaring scope was not
// imported.
type UnknownBoundVariable struct {
	Name string
	Site string
}

// SignatureFailure is a generic signature that could not be parsed; the
// site fell back to its erased types.
type SignatureFailure struct {
	Site string
	Err  error
}

func (r Report) Degraded() bool {
	return len(r.Stubs) > 0 ||
		len(r.UnresolvedAccesses) > 0 ||
		len(r.UnknownBoundVariables) > 0 ||
		len(r.SignatureErrors) > 0 ||
		len(r.UnresolvedEnclosing) > 0
}
