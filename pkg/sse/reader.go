package sse

import (
	"bufio"
	"io"
	"strings"
)

const maxLineSize = 1024 * 1024

// Reader parses SSE events from a source io.Reader. When a tee writer is
// configured every raw line is copied to it as it is scanned, which lets
// callers keep a verbatim capture of the stream.
type Reader struct {
	scanner *bufio.Scanner
	tee     io.Writer

	// current accumulates fields for the event being built.
	current *Event
	hasData bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithTee copies every raw line read from the source to w.
func WithTee(w io.Writer) Option {
	return func(r *Reader) {
		r.tee = w
	}
}

// NewReader returns a Reader over src.
func NewReader(src io.Reader, opts ...Option) *Reader {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	r := &Reader{
		scanner: scanner,
		current: &Event{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Next blocks until a complete event is available and returns it.
// Next returns nil, nil when the source is exhausted.
func (r *Reader) Next() (*Event, error) {
	for r.scanner.Scan() {
		raw := r.scanner.Text()

		if r.tee != nil {
			if _, err := io.WriteString(r.tee, raw+"\n"); err != nil {
				return nil, err
			}
		}

		// A blank line ends the current event.
		if raw == "" {
			if r.hasData {
				ev := r.current
				r.reset()
				return ev, nil
			}
			continue
		}

		// Comment / keep-alive line.
		if strings.HasPrefix(raw, ":") {
			continue
		}

		r.parseLine(raw)
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	// Stream ended without a trailing blank line.
	if r.hasData {
		ev := r.current
		r.reset()
		return ev, nil
	}

	return nil, nil
}

// parseLine accumulates one "field:value" line into the current event. A
// single space after the colon is stripped.
func (r *Reader) parseLine(line string) {
	field, value, ok := strings.Cut(line, ":")
	if ok {
		value = strings.TrimPrefix(value, " ")
	} else {
		field = line
	}

	switch field {
	case "data":
		if r.hasData && r.current.Data != "" {
			r.current.Data += "\n"
		}
		r.current.Data += value
		r.hasData = true
	case "event":
		r.current.Type = value
		r.hasData = true
	case "id":
		r.current.ID = value
		r.hasData = true
	}
}

func (r *Reader) reset() {
	r.current = &Event{}
	r.hasData = false
}
