package interp

import (
	"fmt"
	"sort"
)

// Command is a builtin. It consumes its own parameters from args and returns
// the remainder along with its result.
type Command interface {
	Run(call *Call, args *ArgArray) (*ArgArray, Result)
}

// CommandFunc adapts a function to the Command interface.
type CommandFunc func(call *Call, args *ArgArray) (*ArgArray, Result)

// Run implements Command.
func (f CommandFunc) Run(call *Call, args *ArgArray) (*ArgArray, Result) {
	return f(call, args)
}

var _ Command = (CommandFunc)(nil)

// CommandEntry describes a registered builtin.
type CommandEntry struct {
	// Names the command is registered under; the first is canonical.
	Names []string
	// Use holds a one line usage string.
	Use string
	// Short holds a one line description.
	Short string

	Command Command
}

// Name is the canonical name.
func (e *CommandEntry) Name() string {
	return e.Names[0]
}

// Registry maps command names to builtins. Registration happens during
// initialization; lookups afterwards are read only.
type Registry struct {
	commands map[string]*CommandEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*CommandEntry)}
}

// Add registers an entry under each of its names.
func (r *Registry) Add(e *CommandEntry) error {
	if len(e.Names) == 0 || e.Command == nil {
		return fmt.Errorf("invalid command entry %+v", e)
	}
	for _, n := range e.Names {
		if _, ok := r.commands[n]; ok {
			return fmt.Errorf("command %q registered twice", n)
		}
	}
	for _, n := range e.Names {
		r.commands[n] = e
	}
	return nil
}

// MustAdd is like Add but panics on error.
func (r *Registry) MustAdd(e *CommandEntry) {
	if err := r.Add(e); err != nil {
		panic(err)
	}
}

// Get looks up a command by any of its names.
func (r *Registry) Get(name string) (*CommandEntry, bool) {
	e, ok := r.commands[name]
	return e, ok
}

// Entries returns each distinct entry once, sorted by canonical name.
func (r *Registry) Entries() []*CommandEntry {
	seen := make(map[*CommandEntry]bool)
	var out []*CommandEntry
	for _, e := range r.commands {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// ResolutionKind tags the outcome of resolving a command name.
type ResolutionKind int

const (
	NotFound ResolutionKind = iota
	Builtin
	UserFunctor
)

// Resolution is the result of looking up a command name: a builtin, a
// functor or nothing.
type Resolution struct {
	Kind    ResolutionKind
	Entry   *CommandEntry
	Functor *Functor
}

// Resolve looks name up in the fixed order builtins, functors, not found.
func (in *Interpreter) Resolve(name string) Resolution {
	if e, ok := in.commands.Get(name); ok {
		return Resolution{Kind: Builtin, Entry: e}
	}
	if f, ok := in.functors.Get(name); ok {
		return Resolution{Kind: UserFunctor, Functor: f}
	}
	return Resolution{Kind: NotFound}
}
