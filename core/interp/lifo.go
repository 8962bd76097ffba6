package interp

import (
	"errors"
	"fmt"
	"io"

	"github.com/edwingeng/deque"
)

// ErrLifoEmpty is returned when popping an empty tuple stack.
var ErrLifoEmpty = errors.New("tuple stack is empty")

// TupleStack is the per-interpreter last-in-first-out stack of tuples used
// by the "~" token and the LIFO data sink. The top is the back of the deque.
type TupleStack struct {
	d deque.Deque
}

// NewTupleStack creates an empty stack.
func NewTupleStack() *TupleStack {
	return &TupleStack{d: deque.NewDeque()}
}

// Push places t on top.
func (s *TupleStack) Push(t *Tuple) {
	s.d.PushBack(t)
}

// PushValue wraps v in an anonymous tuple and pushes it.
func (s *TupleStack) PushValue(v interface{}) {
	s.Push(NewTuple("", v))
}

// Pop removes the top tuple.
func (s *TupleStack) Pop() (*Tuple, error) {
	if s.d.Empty() {
		return nil, ErrLifoEmpty
	}
	return s.d.PopBack().(*Tuple), nil
}

// Peek returns the tuple n places below the top without removing it.
func (s *TupleStack) Peek(n int) (*Tuple, error) {
	if n < 0 || n >= s.d.Len() {
		return nil, fmt.Errorf("pick %d of %d: %w", n, s.d.Len(), ErrLifoEmpty)
	}
	return s.d.Peek(s.d.Len() - 1 - n).(*Tuple), nil
}

// Depth is the number of stacked tuples.
func (s *TupleStack) Depth() int {
	return s.d.Len()
}

// Clear empties the stack.
func (s *TupleStack) Clear() {
	s.d = deque.NewDeque()
}

// Dup pushes a copy of the top reference.
func (s *TupleStack) Dup() error {
	t, err := s.Peek(0)
	if err != nil {
		return err
	}
	s.Push(t)
	return nil
}

// Swap exchanges the top two entries.
func (s *TupleStack) Swap() error {
	if s.Depth() < 2 {
		return ErrLifoEmpty
	}
	a, _ := s.Pop()
	b, _ := s.Pop()
	s.Push(a)
	s.Push(b)
	return nil
}

// Over pushes the second entry on top.
func (s *TupleStack) Over() error {
	t, err := s.Peek(1)
	if err != nil {
		return err
	}
	s.Push(t)
	return nil
}

// Rot moves the third entry to the top.
func (s *TupleStack) Rot() error {
	if s.Depth() < 3 {
		return ErrLifoEmpty
	}
	a, _ := s.Pop()
	b, _ := s.Pop()
	c, _ := s.Pop()
	s.Push(b)
	s.Push(a)
	s.Push(c)
	return nil
}

// Dump writes the stack from top to bottom.
func (s *TupleStack) Dump(w io.Writer) {
	for i := 0; i < s.Depth(); i++ {
		t, _ := s.Peek(i)
		fmt.Fprintln(w, t.ValueString())
	}
}
