package interp

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// ScopeMode chooses whether a TupleMap synchronizes access.
type ScopeMode int

const (
	// Unguarded maps do no locking. Sharing one between goroutines is the
	// caller's risk.
	Unguarded ScopeMode = iota
	// Guarded maps serialize every read and write with a RWMutex, including
	// reads and writes of the tuples they own.
	Guarded
)

// globalScope is the part of a TupleMap that shared maps alias: the global
// bindings and the lock guarding them.
type globalScope struct {
	mode   ScopeMode
	mu     sync.RWMutex
	global map[string]*Tuple
}

// TupleMap binds names to tuples. Lookups search the innermost local frame
// outward and then the globals. Local frames belong to one interpreter; see
// Share.
type TupleMap struct {
	*globalScope

	locals []map[string]*Tuple
	// base is the number of frames inherited from the map this one was
	// shared from. PopLocal never goes below it.
	base int
}

// NewTupleMap creates a map holding the default tuples @true and @false.
func NewTupleMap(mode ScopeMode) *TupleMap {
	tm := &TupleMap{globalScope: &globalScope{
		mode:   mode,
		global: make(map[string]*Tuple),
	}}
	tm.global["@true"] = tm.own(NewTuple("@true", true))
	tm.global["@false"] = tm.own(NewTuple("@false", false))
	return tm
}

// Share returns a map aliasing tm's globals and the local frames open right
// now. Frames pushed on either map afterwards are private to it.
func (tm *TupleMap) Share() *TupleMap {
	defer tm.rlock()()

	locals := make([]map[string]*Tuple, len(tm.locals))
	copy(locals, tm.locals)
	return &TupleMap{
		globalScope: tm.globalScope,
		locals:      locals,
		base:        len(locals),
	}
}

// Mode returns the synchronization mode.
func (tm *TupleMap) Mode() ScopeMode {
	return tm.mode
}

func (tm *TupleMap) own(t *Tuple) *Tuple {
	if tm.mode == Guarded && t.mu == nil {
		t.mu = &tm.mu
	}
	return t
}

func (tm *TupleMap) rlock() func() {
	if tm.mode != Guarded {
		return func() {}
	}
	tm.mu.RLock()
	return tm.mu.RUnlock
}

func (tm *TupleMap) lock() func() {
	if tm.mode != Guarded {
		return func() {}
	}
	tm.mu.Lock()
	return tm.mu.Unlock
}

// Get looks up a tuple by name.
func (tm *TupleMap) Get(name string) (*Tuple, bool) {
	defer tm.rlock()()
	return tm.get(name)
}

func (tm *TupleMap) get(name string) (*Tuple, bool) {
	for i := len(tm.locals) - 1; i >= 0; i-- {
		if t, ok := tm.locals[i][name]; ok {
			return t, true
		}
	}
	t, ok := tm.global[name]
	return t, ok
}

// Set rebinds the innermost existing binding of name, or binds it globally.
func (tm *TupleMap) Set(name string, value interface{}) *Tuple {
	defer tm.lock()()

	for i := len(tm.locals) - 1; i >= 0; i-- {
		if t, ok := tm.locals[i][name]; ok {
			t.value = value
			return t
		}
	}
	if t, ok := tm.global[name]; ok {
		t.value = value
		return t
	}

	t := tm.own(NewTuple(name, value))
	tm.global[name] = t
	return t
}

// PutMostLocal binds name in the innermost local frame, or globally if there
// are no local frames.
func (tm *TupleMap) PutMostLocal(name string, value interface{}) *Tuple {
	t := NewTuple(name, value)
	tm.PutTupleMostLocal(name, t)
	return t
}

// PutTupleMostLocal places an existing tuple under name in the innermost
// frame. The tuple is aliased, not copied.
func (tm *TupleMap) PutTupleMostLocal(name string, t *Tuple) {
	defer tm.lock()()

	tm.own(t)
	if n := len(tm.locals); n > 0 {
		tm.locals[n-1][name] = t
		return
	}
	tm.global[name] = t
}

// Delete removes the innermost binding of name.
func (tm *TupleMap) Delete(name string) bool {
	defer tm.lock()()

	for i := len(tm.locals) - 1; i >= 0; i-- {
		if _, ok := tm.locals[i][name]; ok {
			delete(tm.locals[i], name)
			return true
		}
	}
	if _, ok := tm.global[name]; ok {
		delete(tm.global, name)
		return true
	}
	return false
}

// PushLocal opens a new local frame.
func (tm *TupleMap) PushLocal() {
	defer tm.lock()()
	tm.locals = append(tm.locals, make(map[string]*Tuple))
}

// PopLocal discards the innermost local frame unless it was inherited.
func (tm *TupleMap) PopLocal() {
	defer tm.lock()()
	if n := len(tm.locals); n > tm.base {
		tm.locals = tm.locals[:n-1]
	}
}

// LocalDepth is the number of open local frames.
func (tm *TupleMap) LocalDepth() int {
	defer tm.rlock()()
	return len(tm.locals)
}

// Names returns every visible tuple name, sorted.
func (tm *TupleMap) Names() []string {
	defer tm.rlock()()

	seen := make(map[string]bool)
	for k := range tm.global {
		seen[k] = true
	}
	for _, l := range tm.locals {
		for k := range l {
			seen[k] = true
		}
	}

	var out []string
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Dump writes the visible bindings, one per line.
func (tm *TupleMap) Dump(w io.Writer) {
	for _, name := range tm.Names() {
		if t, ok := tm.Get(name); ok {
			fmt.Fprintf(w, "%s\t%s\n", name, t.ValueString())
		}
	}
}
