// Package sink classifies names into routing targets for command input and
// output. It performs no I/O.
package sink

import (
	"fmt"
	"strings"
)

// Kind is the type of a DataSink.
type Kind int

const (
	File Kind = iota
	URL
	Tuple
	Std
	Err
	Null
	Lifo
)

var kindNames = map[Kind]string{
	File:  "FILE",
	URL:   "URL",
	Tuple: "TUPLE",
	Std:   "STD",
	Err:   "ERR",
	Null:  "NULL",
	Lifo:  "LIFO",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Reserved sink names.
const (
	TuplePrefix = "@"
	NullName    = "NULL:"
	StdName     = "STD:"
	ErrName     = "ERR:"
	LifoName    = "~"
)

var urlPrefixes = []string{"http://", "https://"}

// DataSink describes where output goes or input comes from.
type DataSink struct {
	Kind Kind
	Name string
}

func (d DataSink) String() string {
	return fmt.Sprintf("%s:%s", d.Kind, d.Name)
}

// Classify derives a DataSink from the lexical form of name. The first
// matching rule wins and FILE is the fallback. The reserved names only match
// exactly, so "~/notes.txt" is a file.
func Classify(name string) DataSink {
	switch {
	case strings.HasPrefix(name, TuplePrefix):
		return DataSink{Tuple, name}
	case hasURLPrefix(name):
		return DataSink{URL, name}
	case name == NullName:
		return DataSink{Null, name}
	case name == StdName:
		return DataSink{Std, name}
	case name == ErrName:
		return DataSink{Err, name}
	case name == LifoName:
		return DataSink{Lifo, name}
	default:
		return DataSink{File, name}
	}
}

func hasURLPrefix(name string) bool {
	for _, p := range urlPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// FileFromValue creates a FILE sink named by the string form of a value,
// typically the current value of a tuple.
func FileFromValue(v interface{}) DataSink {
	return DataSink{File, fmt.Sprint(v)}
}

// Standard returns the STD sink.
func Standard() DataSink {
	return DataSink{Std, StdName}
}

// Error returns the ERR sink.
func Error() DataSink {
	return DataSink{Err, ErrName}
}
