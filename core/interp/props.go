package interp

import (
	"sort"
	"sync"
)

// Props are string settings shared by an interpreter and everything spawned
// from it.
type Props struct {
	mu    sync.RWMutex
	props map[string]string
}

// NewProps creates an empty property set.
func NewProps() *Props {
	return &Props{props: make(map[string]string)}
}

// Get returns a property.
func (p *Props) Get(key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.props[key]
	return v, ok
}

// Set stores a property.
func (p *Props) Set(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.props[key] = value
}

// Keys returns the property names, sorted.
func (p *Props) Keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []string
	for k := range p.props {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
