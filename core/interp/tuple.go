package interp

import (
	"fmt"
	"strings"
	"sync"
)

const (
	// TupleChar introduces a tuple reference.
	TupleChar = "@"
	// PopToken takes the top of the tuple stack.
	PopToken = "~"

	paramSubstitutePrefix = "@///"
)

// IsTupleName reports whether s names a tuple.
func IsTupleName(s string) bool {
	return strings.HasPrefix(s, TupleChar) && len(s) > len(TupleChar)
}

// IsPop reports whether s is the tuple stack pop token.
func IsPop(s string) bool {
	return s == PopToken
}

// Tuple is a named mutable cell. Anything holding the pointer observes later
// rebinding.
type Tuple struct {
	key   string
	value interface{}

	// mu is shared with the owning TupleMap when that map is guarded.
	mu *sync.RWMutex
}

// NewTuple creates an unowned tuple.
func NewTuple(key string, value interface{}) *Tuple {
	return &Tuple{key: key, value: value}
}

// Key is the tuple's name.
func (t *Tuple) Key() string {
	return t.key
}

// Value returns the bound value.
func (t *Tuple) Value() interface{} {
	if t.mu != nil {
		t.mu.RLock()
		defer t.mu.RUnlock()
	}
	return t.value
}

// SetValue rebinds the tuple in place.
func (t *Tuple) SetValue(v interface{}) {
	if t.mu != nil {
		t.mu.Lock()
		defer t.mu.Unlock()
	}
	t.value = v
}

// ValueString renders the value the way commands print it.
func (t *Tuple) ValueString() string {
	return ValueString(t.Value())
}

func (t *Tuple) String() string {
	return fmt.Sprintf("%s=%s", t.key, t.ValueString())
}

// ValueString renders a tuple value; nil renders as "null".
func ValueString(v interface{}) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprint(v)
}

// Autonomic values know which command operates on them. When such a value is
// the head of the token stream, the interpreter hands it to that command.
type Autonomic interface {
	AutonomeCommand() string
}
