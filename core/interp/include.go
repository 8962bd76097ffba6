package interp

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// scriptLineReader feeds lines from an included script. It also satisfies
// continuation reads for blocks spanning several lines.
type scriptLineReader struct {
	scanner *bufio.Scanner
	lineNo  int
}

func (s *scriptLineReader) ReadLine(string) (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	s.lineNo++
	return s.scanner.Text(), nil
}

// ResolveInclude finds name relative to the current include directory or
// along the include path.
func (in *Interpreter) ResolveInclude(name string) (string, error) {
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		if in.frame.includeDir != "" {
			candidates = append([]string{filepath.Join(in.frame.includeDir, name)}, candidates...)
		}
		for _, dir := range in.includePath {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}

	for _, c := range candidates {
		if ok, _ := afero.Exists(in.fs, c); ok {
			return c, nil
		}
	}
	return "", fmt.Errorf("include %q: file not found", name)
}

// Include runs a script file line by line in a new frame, stopping at the
// first failing line.
func (in *Interpreter) Include(name string) Result {
	path, err := in.ResolveInclude(name)
	if err != nil {
		in.log.Severe("%v", err)
		return Failure
	}

	fd, err := in.fs.Open(path)
	if err != nil {
		in.log.Severe("Could not open include file %s: %v", path, err)
		return Failure
	}
	defer fd.Close()

	return in.IncludeReader(path, fd)
}

// IncludeReader runs lines from r as if included from the named file.
func (in *Interpreter) IncludeReader(name string, r io.Reader) Result {
	in.PushFrame()
	savedLines := in.lines
	defer func() {
		in.lines = savedLines
		in.PopFrame()
	}()

	script := &scriptLineReader{scanner: bufio.NewScanner(r)}
	in.lines = script
	in.frame.including = true
	in.frame.includeDir = filepath.Dir(name)

	result := Success
	for !in.goodbye.IsSet() && !in.breakIssued.IsSet() {
		line, err := script.ReadLine("")
		if err == io.EOF {
			break
		}
		if err != nil {
			in.log.Severe("Error reading include file %s: %v", name, err)
			return Failure
		}

		if in.echoInclude {
			fmt.Fprintf(in.stderr, ":: %s\n", line)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		in.frame.args = in.Parse(line)
		if result = in.Loop(); result == Failure {
			in.log.Severe("Include of %s failed at line %d", name, script.lineNo)
			break
		}
	}
	return result
}
