// Package output writes matching comments to a file or a terminal.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/arnodel/zstlines/record"
)

// DefaultFlushEvery is the number of pending results that triggers a flush.
const DefaultFlushEvery = 100

// A Target is where results are written.  Each flush opens it, writes the
// pending results and closes it.
type Target interface {
	Open() (io.WriteCloser, error)
	String() string
}

// FileTarget appends to a file, creating it if needed.  The file is only
// created when the first results are flushed.
type FileTarget struct {
	Path string
}

func (t FileTarget) Open() (io.WriteCloser, error) {
	return os.OpenFile(t.Path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
}

func (t FileTarget) String() string {
	return t.Path
}

// DefaultFileName returns the name of the results file for a search started
// at t.
func DefaultFileName(t time.Time) string {
	return fmt.Sprintf("filtered_comments_%s.json", t.Format("20060102_150405"))
}

// StreamTarget writes to a stream which it does not close, e.g. stdout.
type StreamTarget struct {
	io.Writer
	Name string
}

func (t StreamTarget) Open() (io.WriteCloser, error) {
	return nopCloser{t.Writer}, nil
}

func (t StreamTarget) String() string {
	return t.Name
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// A Writer buffers matching comments and writes them to its Target in
// batches, one result per line.
type Writer struct {
	Target    Target
	Style     Style
	Colorizer *Colorizer

	// FlushEvery is the batch size (DefaultFlushEvery if not positive).
	FlushEvery int

	pending []*record.Comment
	count   int
}

// Add accepts a matching comment, flushing if the batch is full.
func (w *Writer) Add(c *record.Comment) error {
	w.pending = append(w.pending, c)
	w.count++
	if len(w.pending) >= w.flushEvery() {
		return w.Flush()
	}
	return nil
}

// Count returns the number of comments accepted so far.
func (w *Writer) Count() int {
	return w.count
}

// Flush writes the pending comments to the target.  It does nothing if there
// are none.
func (w *Writer) Flush() (err error) {
	if len(w.pending) == 0 {
		return nil
	}
	out, err := w.Target.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", w.Target, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing %s: %w", w.Target, cerr)
		}
	}()
	buf := bufio.NewWriter(out)
	if err := w.print(buf); err != nil {
		return fmt.Errorf("writing %s: %w", w.Target, err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", w.Target, err)
	}
	clear(w.pending)
	w.pending = w.pending[:0]
	return nil
}

func (w *Writer) print(out io.Writer) (err error) {
	defer CatchPrinterError(&err)
	p := &DefaultPrinter{Writer: out}
	for _, c := range w.pending {
		w.Style.Print(p, w.Colorizer, c)
		p.NewLine()
	}
	return nil
}

func (w *Writer) flushEvery() int {
	if w.FlushEvery <= 0 {
		return DefaultFlushEvery
	}
	return w.FlushEvery
}
