package interp

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// History is an append-only log of executed lines.
type History interface {
	Append(line string) error
	Lines() ([]string, error)
	Name() string
}

// FileHistory appends lines to a file.
type FileHistory struct {
	mu   sync.Mutex
	fs   afero.Fs
	name string
}

// NewFileHistory creates a history backed by the named file.
func NewFileHistory(fs afero.Fs, name string) *FileHistory {
	return &FileHistory{fs: fs, name: name}
}

var _ History = (*FileHistory)(nil)

// Name is the history file name.
func (h *FileHistory) Name() string {
	return h.name
}

// Append writes one line.
func (h *FileHistory) Append(line string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	fd, err := h.fs.OpenFile(h.name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(fd, strings.TrimRight(line, "\r\n")); err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}

// Lines reads every recorded line.
func (h *FileHistory) Lines() ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	fd, err := h.fs.Open(h.name)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	var out []string
	scanner := bufio.NewScanner(fd)
	for scanner.Scan() {
		out = append(out, scanner.Text())
	}
	return out, scanner.Err()
}
