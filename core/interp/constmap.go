package interp

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ConstChar introduces a constant reference.
const ConstChar = "*"

var (
	// ErrConstDefined is returned when redefining a constant in the same map.
	ErrConstDefined = errors.New("constant already defined")
	// ErrConstName is returned for names lacking the constant introducer.
	ErrConstName = errors.New("not a constant name")
)

// IsConstName reports whether s names a constant.
func IsConstName(s string) bool {
	return strings.HasPrefix(s, ConstChar) && len(s) > len(ConstChar)
}

// Const is an immutable named value.
type Const struct {
	Name  string
	Value string
}

// ConstMap holds constants. A child map sees its parent's constants and can
// shadow them but never overwrite them.
type ConstMap struct {
	mu     sync.RWMutex
	parent *ConstMap
	consts map[string]Const
}

// NewConstMap creates a map whose lookups fall through to parent.
func NewConstMap(parent *ConstMap) *ConstMap {
	return &ConstMap{parent: parent, consts: make(map[string]Const)}
}

// Define binds a new constant.
func (cm *ConstMap) Define(name, value string) error {
	if !IsConstName(name) {
		return fmt.Errorf("%q: %w", name, ErrConstName)
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, ok := cm.consts[name]; ok {
		return fmt.Errorf("%q: %w", name, ErrConstDefined)
	}
	cm.consts[name] = Const{Name: name, Value: value}
	return nil
}

// Get looks up a constant, searching parents.
func (cm *ConstMap) Get(name string) (Const, bool) {
	for m := cm; m != nil; m = m.parent {
		m.mu.RLock()
		c, ok := m.consts[name]
		m.mu.RUnlock()
		if ok {
			return c, true
		}
	}
	return Const{}, false
}

// List returns every visible constant sorted by name.
func (cm *ConstMap) List() []Const {
	seen := make(map[string]Const)
	for m := cm; m != nil; m = m.parent {
		m.mu.RLock()
		for k, v := range m.consts {
			if _, shadowed := seen[k]; !shadowed {
				seen[k] = v
			}
		}
		m.mu.RUnlock()
	}

	var out []Const
	for _, c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
