package commands

import (
	"errors"
	"fmt"
	"sync"

	"github.com/josephlewis42/ublush/core/interp"
	"github.com/josephlewis42/ublush/core/sink"
)

var errThreadStarted = errors.New("thread already started")

// Thread runs a block in a spawned interpreter on its own goroutine.
type Thread struct {
	in    *interp.Interpreter
	block string

	mu      sync.Mutex
	started bool
	done    chan struct{}
	result  interp.Result
}

// NewThread prepares block to run in an interpreter spawned from parent.
func NewThread(parent *interp.Interpreter, block string, share bool) *Thread {
	return &Thread{
		in:    parent.Spawn(share),
		block: block,
		done:  make(chan struct{}),
	}
}

// AutonomeCommand implements interp.Autonomic.
func (t *Thread) AutonomeCommand() string {
	return "thread"
}

// Start runs the block.
func (t *Thread) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return errThreadStarted
	}
	t.started = true

	go func() {
		defer close(t.done)
		result := t.in.ExecuteBlock(t.block)
		t.mu.Lock()
		t.result = result
		t.mu.Unlock()
	}()
	return nil
}

// Stop asks the thread's interpreter to finish after its current command.
func (t *Thread) Stop() {
	t.in.Goodbye()
}

// Wait blocks until a started thread finishes and returns its result.
func (t *Thread) Wait() interp.Result {
	t.mu.Lock()
	started := t.started
	t.mu.Unlock()
	if !started {
		return interp.Success
	}
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// Status describes the thread's state.
func (t *Thread) Status() string {
	t.mu.Lock()
	started := t.started
	t.mu.Unlock()
	if !started {
		return "new"
	}
	select {
	case <-t.done:
		return fmt.Sprintf("done %s", t.Wait())
	default:
		return "running"
	}
}

func (t *Thread) String() string {
	return fmt.Sprintf("thread[%s]", t.Status())
}

type threadOp int

const (
	threadInstance threadOp = iota
	threadStart
	threadStop
	threadWait
	threadStatus
)

// ThreadCmd creates and controls threads.
func ThreadCmd(call *interp.Call, args *interp.ArgArray) (*interp.ArgArray, interp.Result) {
	op := threadInstance
	var thread *Thread
	var share, badThread bool

	res := parseDashCommands(call, args, func(dc string) bool {
		switch dc {
		case "-from":
			call.SetSrcFromArgs(args)
		case "--", "-thread":
			t, ok := valueOf(args.NextTupleOrPop()).(*Thread)
			thread, badThread = t, !ok
		case "-new", "-instance":
			op = threadInstance
		case "-start":
			op = threadStart
		case "-stop":
			op = threadStop
		case "-wait":
			op = threadWait
		case "-status":
			op = threadStatus
		case "-share":
			share = true
		default:
			return false
		}
		return true
	})
	if res == interp.Failure {
		return args, res
	}
	if badThread {
		return args, call.Failf("Tuple value is not a thread")
	}

	if thread == nil {
		var block string
		switch call.Src.Kind {
		case sink.Std:
			b, ok := args.NextBlock()
			if !ok {
				return args, call.Failf("thread needs a $[ block ]$")
			}
			block = b
		case sink.Tuple:
			t, ok := call.In.GetTuple(call.Src.Name)
			if !ok {
				return args, call.Failf("Tuple %s does not exist.", call.Src.Name)
			}
			lines, ok := t.Value().(string)
			if !ok {
				return args, call.Failf("Tuple %s does not contain program lines", t.Key())
			}
			block = lines
		default:
			return args, call.Failf("%s not implemented in thread.", call.Src.Kind)
		}
		thread = NewThread(call.In, block, share)
	}

	switch op {
	case threadStart:
		if err := thread.Start(); err != nil {
			return args, call.Failf("%v", err)
		}
		return args, call.PutOrFail(thread)
	case threadStop:
		thread.Stop()
	case threadWait:
		return args, thread.Wait()
	case threadStatus:
		return args, call.PutOrFail(thread.Status())
	default:
		return args, call.PutOrFail(thread)
	}
	return args, interp.Success
}

func init() {
	addCmd(
		"thread [-to datasink] [-from datasink] [-- @thread] [-share] [-new | -start | -stop | -wait | -status] [$[ block ]$]",
		"Run a block in a spawned interpreter on its own goroutine.",
		ThreadCmd, "thread")
}
