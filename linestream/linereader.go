package linestream

import (
	"errors"
	"io"
	"iter"
	"strings"
)

// A FragmentSource produces decoded text fragments, returning io.EOF at the
// end.  *ChunkDecoder implements it.
type FragmentSource interface {
	NextFragment() (string, error)
}

var _ FragmentSource = &ChunkDecoder{}

// A LineReader reassembles the fragments of a FragmentSource into lines,
// wherever the line separators fall relative to fragment boundaries.  Lines
// are returned with surrounding white space trimmed.
//
// A LineReader is a single forward-only pass over its source: it cannot be
// restarted.
//
// Unless Config.KeepTrailingLine is set, text after the last '\n' of the
// stream is discarded.
type LineReader struct {
	source   FragmentSource
	keepTail bool

	// Complete lines split off the current fragment, not yet returned.
	lines []string

	// The unterminated end of the last fragment.  Never contains '\n'.
	buffer string

	// Terminal error (io.EOF at the end of the stream)
	err error
}

// NewLineReader returns a LineReader pulling fragments from source.
func NewLineReader(source FragmentSource, cfg Config) *LineReader {
	return &LineReader{
		source:   source,
		keepTail: cfg.KeepTrailingLine,
	}
}

// Next returns the next line.  It returns io.EOF when the stream is exhausted.
// Any other error comes from the source, e.g. a *DecodeExhaustedError; once
// an error has been returned, Next keeps returning it.
func (r *LineReader) Next() (string, error) {
	for len(r.lines) == 0 {
		if r.err != nil {
			return "", r.err
		}
		r.pull()
	}
	line := r.lines[0]
	r.lines[0] = ""
	r.lines = r.lines[1:]
	return line, nil
}

// pull gets one fragment from the source and splits it into lines.
func (r *LineReader) pull() {
	fragment, err := r.source.NextFragment()
	if err != nil {
		if errors.Is(err, io.EOF) && r.keepTail {
			if tail := strings.TrimSpace(r.buffer); tail != "" {
				r.lines = append(r.lines, tail)
			}
		}
		r.buffer = ""
		r.err = err
		return
	}
	parts := strings.Split(r.buffer+fragment, "\n")
	last := len(parts) - 1
	for i, part := range parts[:last] {
		parts[i] = strings.TrimSpace(part)
	}
	r.lines = parts[:last]
	r.buffer = parts[last]
}

// All returns an iterator over the remaining lines.  If the stream ends with
// an error other than io.EOF, the iterator yields it once with an empty line
// and stops.
func (r *LineReader) All() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			line, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if !yield(line, nil) {
				return
			}
		}
	}
}
