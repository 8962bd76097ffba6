package interp

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrParamList is returned for a malformed "( @a @b )" list.
var ErrParamList = errors.New("malformed parameter list")

// Functor is a named, parameterized block of tokens invoked like a command.
// Inside the body, "@@param" refers to the caller's tuple bound to param.
type Functor struct {
	Name   string
	Params []string
	Body   string
}

func (f *Functor) String() string {
	return fmt.Sprintf("%s ( %s ) $[ %s ]$", f.Name, strings.Join(f.Params, " "), f.Body)
}

var substituteSeq uint64

// bind rewrites the body, replacing each "@@param" with a substitute tuple
// name that aliases the caller's tuple in the innermost scope. Arguments that
// aren't tuple names are substituted literally.
func (f *Functor) bind(in *Interpreter, actual []string) string {
	body := f.Body
	for i, param := range f.Params {
		replacement := actual[i]
		if IsTupleName(replacement) {
			t, ok := in.GetTuple(replacement)
			if !ok {
				t = in.SetTuple(replacement, nil)
			}
			replacement = fmt.Sprintf("%s%d", paramSubstitutePrefix, atomic.AddUint64(&substituteSeq, 1))
			in.tuples.PutTupleMostLocal(replacement, t)
		}

		re := regexp.MustCompile(regexp.QuoteMeta("@@"+param) + `(\s|$)`)
		body = re.ReplaceAllLiteralString(body, replacement+" ")
	}
	return body
}

// ParseParamList takes "( a b ... )" from the head of args. It returns
// ErrParamList if the list doesn't open with "(" or never closes.
func ParseParamList(args *ArgArray) ([]string, error) {
	if open, ok := args.Peek(); !ok || open != "(" {
		return nil, ErrParamList
	}
	args.NextString()

	out := []string{}
	for {
		tok, err := args.Next()
		if err != nil {
			return nil, ErrParamList
		}
		if tok == ")" {
			return out, nil
		}
		out = append(out, tok)
	}
}

// FunctorMap holds user-defined functors.
type FunctorMap struct {
	mu       sync.RWMutex
	functors map[string]*Functor
}

// NewFunctorMap creates an empty map.
func NewFunctorMap() *FunctorMap {
	return &FunctorMap{functors: make(map[string]*Functor)}
}

// Put defines or redefines a functor.
func (fm *FunctorMap) Put(f *Functor) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.functors[f.Name] = f
}

// Get looks up a functor.
func (fm *FunctorMap) Get(name string) (*Functor, bool) {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	f, ok := fm.functors[name]
	return f, ok
}

// Delete removes a functor.
func (fm *FunctorMap) Delete(name string) bool {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	_, ok := fm.functors[name]
	delete(fm.functors, name)
	return ok
}

// Names lists functor names, sorted.
func (fm *FunctorMap) Names() []string {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	var out []string
	for k := range fm.functors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
