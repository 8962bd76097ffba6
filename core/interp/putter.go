package interp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/josephlewis42/ublush/core/sink"
	"github.com/spf13/afero"
	"github.com/valyala/fasthttp"
)

// ErrUnsupportedSink is returned for a sink that can't serve the operation.
var ErrUnsupportedSink = errors.New("unsupported data sink")

// PutOptions control how a value is rendered into a text sink.
type PutOptions struct {
	// Append to a FILE rather than truncating it.
	Append bool
	// Space follows the value.
	Space bool
	// Newline follows the value.
	Newline bool
}

func (o PutOptions) render(v interface{}) string {
	var sb strings.Builder
	if t, ok := v.(*Tuple); ok {
		v = t.Value()
	}
	sb.WriteString(ValueString(v))
	if o.Space {
		sb.WriteString(" ")
	}
	if o.Newline {
		sb.WriteString("\n")
	}
	return sb.String()
}

// Put routes v to dest. TUPLE and LIFO sinks receive the value itself;
// everything else receives its text.
func (in *Interpreter) Put(v interface{}, dest sink.DataSink, opts PutOptions) error {
	switch dest.Kind {
	case sink.Std:
		_, err := io.WriteString(in.stdout, opts.render(v))
		return err
	case sink.Err:
		_, err := io.WriteString(in.stderr, opts.render(v))
		return err
	case sink.Null:
		return nil
	case sink.Tuple:
		if t, ok := v.(*Tuple); ok {
			v = t.Value()
		}
		in.SetTuple(dest.Name, v)
		return nil
	case sink.Lifo:
		if t, ok := v.(*Tuple); ok {
			in.stack.Push(t)
			return nil
		}
		in.stack.PushValue(v)
		return nil
	case sink.File:
		return in.putFile(dest.Name, opts.render(v), opts.Append)
	case sink.URL:
		return postURL(dest.Name, opts.render(v))
	default:
		return fmt.Errorf("put to %s: %w", dest, ErrUnsupportedSink)
	}
}

func (in *Interpreter) putFile(name, text string, appendTo bool) error {
	flags := os.O_CREATE | os.O_WRONLY
	if appendTo {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	fd, err := in.fs.OpenFile(name, flags, 0644)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(fd, text); err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}

func postURL(url, body string) error {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("text/plain; charset=utf-8")
	req.SetBodyString(body)

	if err := fasthttp.Do(req, resp); err != nil {
		return err
	}
	if code := resp.StatusCode(); code >= 300 {
		return fmt.Errorf("POST %s: status %d", url, code)
	}
	return nil
}

// Get reads a value from src. TUPLE and LIFO sources yield the value itself;
// everything else yields text.
func (in *Interpreter) Get(src sink.DataSink) (interface{}, error) {
	switch src.Kind {
	case sink.Std:
		line, err := in.ReadLine()
		if err != nil {
			return nil, err
		}
		return line, nil
	case sink.Null:
		return "", nil
	case sink.Tuple:
		t, ok := in.GetTuple(src.Name)
		if !ok {
			return nil, fmt.Errorf("%s: %w", src.Name, ErrUndefinedTuple)
		}
		return t.Value(), nil
	case sink.Lifo:
		t, err := in.stack.Pop()
		if err != nil {
			return nil, err
		}
		return t.Value(), nil
	case sink.File:
		b, err := afero.ReadFile(in.fs, src.Name)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case sink.URL:
		code, body, err := fasthttp.Get(nil, src.Name)
		if err != nil {
			return nil, err
		}
		if code >= 300 {
			return nil, fmt.Errorf("GET %s: status %d", src.Name, code)
		}
		return string(body), nil
	default:
		return nil, fmt.Errorf("get from %s: %w", src, ErrUnsupportedSink)
	}
}

// GetString reads src and renders the result as text.
func (in *Interpreter) GetString(src sink.DataSink) (string, error) {
	v, err := in.Get(src)
	if err != nil {
		return "", err
	}
	return ValueString(v), nil
}

// ReadLines reads every line of a FILE source.
func (in *Interpreter) ReadLines(name string) ([]string, error) {
	fd, err := in.fs.Open(name)
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
