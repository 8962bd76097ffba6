package interp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/edwingeng/deque"
)

// Quotation and block delimiters.
const (
	OpenQuote  = "${"
	CloseQuote = "}$"
	OpenBlock  = "$["
	CloseBlock = "]$"
)

var (
	// ErrUnderflow is returned when taking a token from an empty ArgArray.
	ErrUnderflow = errors.New("argument array underflow")
	// ErrUnclosed is returned when a quotation or block never closes.
	ErrUnclosed = errors.New("unclosed quotation or block")
)

// ArgArray is the ordered remainder of unconsumed tokens. Commands take
// tokens from the head and may splice new ones in.
type ArgArray struct {
	in     *Interpreter
	tokens deque.Deque
}

// NewArgArray creates an ArgArray over tokens. The interpreter resolves tuple,
// constant and pop references and supplies continuation lines; it may be nil
// for a bare token buffer.
func NewArgArray(in *Interpreter, tokens ...string) *ArgArray {
	aa := &ArgArray{in: in, tokens: deque.NewDeque()}
	for _, t := range tokens {
		aa.tokens.PushBack(t)
	}
	return aa
}

// IsEmpty is true when no tokens remain.
func (aa *ArgArray) IsEmpty() bool {
	return aa.tokens.Empty()
}

// Len is the number of remaining tokens.
func (aa *ArgArray) Len() int {
	return aa.tokens.Len()
}

// Next removes and returns the head token.
func (aa *ArgArray) Next() (string, error) {
	if aa.tokens.Empty() {
		return "", ErrUnderflow
	}
	return aa.tokens.PopFront().(string), nil
}

// NextString removes and returns the head token, or "" if there is none.
func (aa *ArgArray) NextString() string {
	s, _ := aa.Next()
	return s
}

// Peek returns the head token without removing it.
func (aa *ArgArray) Peek() (string, bool) {
	if aa.tokens.Empty() {
		return "", false
	}
	return aa.tokens.Front().(string), true
}

func (aa *ArgArray) peekString() string {
	s, _ := aa.Peek()
	return s
}

func (aa *ArgArray) at(i int) string {
	return aa.tokens.Peek(i).(string)
}

// PeekNextIsTupleOrPop reports whether the head token is a tuple reference
// or the pop token.
func (aa *ArgArray) PeekNextIsTupleOrPop() bool {
	s, ok := aa.Peek()
	return ok && (IsTupleName(s) || IsPop(s))
}

// Add splices token in at index. Index 0 makes it the new head.
func (aa *ArgArray) Add(index int, token string) error {
	if index < 0 || index > aa.tokens.Len() {
		return fmt.Errorf("add at %d of %d: %w", index, aa.tokens.Len(), ErrUnderflow)
	}

	held := make([]string, 0, index)
	for i := 0; i < index; i++ {
		held = append(held, aa.tokens.PopFront().(string))
	}
	aa.tokens.PushFront(token)
	for i := len(held) - 1; i >= 0; i-- {
		aa.tokens.PushFront(held[i])
	}
	return nil
}

// PushFront places tokens at the head, keeping their order.
func (aa *ArgArray) PushFront(tokens ...string) {
	for i := len(tokens) - 1; i >= 0; i-- {
		aa.tokens.PushFront(tokens[i])
	}
}

// Append adds tokens to the tail.
func (aa *ArgArray) Append(tokens ...string) {
	for _, t := range tokens {
		aa.tokens.PushBack(t)
	}
}

// Tokens returns a copy of the remaining tokens.
func (aa *ArgArray) Tokens() []string {
	out := make([]string, 0, aa.tokens.Len())
	for i := 0; i < aa.tokens.Len(); i++ {
		out = append(out, aa.at(i))
	}
	return out
}

// Copy returns an independent ArgArray with the same tokens.
func (aa *ArgArray) Copy() *ArgArray {
	return NewArgArray(aa.in, aa.Tokens()...)
}

// Clear drops all remaining tokens.
func (aa *ArgArray) Clear() {
	aa.tokens = deque.NewDeque()
}

// ToHistoryLine reconstructs the line from the remaining tokens.
func (aa *ArgArray) ToHistoryLine() string {
	return strings.Join(aa.Tokens(), " ")
}

func (aa *ArgArray) String() string {
	return aa.ToHistoryLine()
}

// HasDashCommand reports whether the head token is a dash command.
func (aa *ArgArray) HasDashCommand() bool {
	s, ok := aa.Peek()
	return ok && strings.HasPrefix(s, "-")
}

// ParseDashCommand takes the head dash command, or returns "" if the head
// isn't one.
func (aa *ArgArray) ParseDashCommand() string {
	if !aa.HasDashCommand() {
		return ""
	}
	return aa.NextString()
}

// IsNextTupleName reports whether the head token names a tuple.
func (aa *ArgArray) IsNextTupleName() bool {
	return IsTupleName(aa.peekString())
}

// IsNextTupleNameOrPop reports whether the head is a tuple name or "~".
func (aa *ArgArray) IsNextTupleNameOrPop() bool {
	return aa.PeekNextIsTupleOrPop()
}

// IsNextConstName reports whether the head token names a constant.
func (aa *ArgArray) IsNextConstName() bool {
	return IsConstName(aa.peekString())
}

// IsNextQuotation reports whether the head token opens a quotation.
func (aa *ArgArray) IsNextQuotation() bool {
	return aa.peekString() == OpenQuote
}

// IsNextBlock reports whether the head token opens a block.
func (aa *ArgArray) IsNextBlock() bool {
	return aa.peekString() == OpenBlock
}

// IsNext reports whether the head token equals word, ignoring case.
func (aa *ArgArray) IsNext(word string) bool {
	return strings.EqualFold(aa.peekString(), word)
}

// NextTupleOrPop takes a tuple reference or "~" and returns the tuple. A
// non-tuple token is discarded and nil returned.
func (aa *ArgArray) NextTupleOrPop() *Tuple {
	s, err := aa.Next()
	if err != nil || aa.in == nil {
		return nil
	}

	switch {
	case IsPop(s):
		t, err := aa.in.stack.Pop()
		if err != nil {
			return nil
		}
		return t
	case IsTupleName(s):
		t, _ := aa.in.GetTuple(s)
		return t
	default:
		return nil
	}
}

// NextMaybeQuotationTuplePopString takes the head as a string value: a
// constant's value, a tuple's value, a popped value, a quotation's text or
// the literal token. ok is false when a reference doesn't resolve.
func (aa *ArgArray) NextMaybeQuotationTuplePopString() (string, bool) {
	switch {
	case aa.IsEmpty():
		return "", false
	case aa.IsNextConstName() && aa.in != nil:
		if c, ok := aa.in.consts.Get(aa.peekString()); ok {
			aa.NextString()
			return c.Value, true
		}
		return aa.NextString(), true
	case aa.PeekNextIsTupleOrPop():
		t := aa.NextTupleOrPop()
		if t == nil || t.Value() == nil {
			return "", false
		}
		return ValueString(t.Value()), true
	case aa.IsNextQuotation():
		q, err := aa.NextQuotation()
		return q, err == nil
	default:
		return aa.NextString(), true
	}
}

// NextInt takes the head token as an integer, resolving references.
func (aa *ArgArray) NextInt() (int, error) {
	s, ok := aa.NextMaybeQuotationTuplePopString()
	if !ok {
		return 0, fmt.Errorf("expected an integer: %w", ErrUndefinedTuple)
	}
	return strconv.Atoi(strings.TrimSpace(s))
}

// NextQuotation takes a "${ ... }$" quotation and returns its inner text.
func (aa *ArgArray) NextQuotation() (string, error) {
	if !aa.IsNextQuotation() {
		return "", fmt.Errorf("expected %s", OpenQuote)
	}
	if err := aa.assimilate(aa.findCloseQuote); err != nil {
		return "", err
	}
	return aa.pack(aa.findCloseQuote()), nil
}

// NextBlock takes a "$[ ... ]$" block and returns its inner text. ok is
// false if the head isn't a block or the block never closes.
func (aa *ArgArray) NextBlock() (string, bool) {
	if !aa.IsNextBlock() {
		return "", false
	}
	if err := aa.assimilate(aa.findCloseBlock); err != nil {
		return "", false
	}
	return aa.pack(aa.findCloseBlock()), true
}

// assimilate reads continuation lines until finder locates a closer.
func (aa *ArgArray) assimilate(finder func() int) error {
	for finder() == -1 {
		if aa.in == nil {
			return ErrUnclosed
		}
		more, err := aa.in.readContinuation()
		if err != nil {
			return fmt.Errorf("%v: %w", err, ErrUnclosed)
		}
		aa.Append(more...)
	}
	return nil
}

func (aa *ArgArray) findCloseQuote() int {
	for i := 1; i < aa.tokens.Len(); i++ {
		if aa.at(i) == CloseQuote {
			return i
		}
	}
	return -1
}

func (aa *ArgArray) findCloseBlock() int {
	depth := 0
	for i := 0; i < aa.tokens.Len(); i++ {
		switch strings.TrimSpace(aa.at(i)) {
		case OpenBlock:
			depth++
		case CloseBlock:
			depth--
		}
		if depth == 0 {
			return i
		}
	}
	return -1
}

// pack removes the opener through the closer at index closer and returns the
// tokens between them joined by spaces.
func (aa *ArgArray) pack(closer int) string {
	aa.tokens.PopFront()
	inner := make([]string, 0, closer)
	for i := 1; i < closer; i++ {
		inner = append(inner, aa.tokens.PopFront().(string))
	}
	aa.tokens.PopFront()
	return strings.Join(inner, " ")
}
