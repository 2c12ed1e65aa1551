// Package search runs the record loop: it pulls lines from an archive,
// parses and filters them and hands the matches to an output writer.
package search

import (
	"errors"
	"io"

	"github.com/arnodel/zstlines/filter"
	"github.com/arnodel/zstlines/linestream"
	"github.com/arnodel/zstlines/output"
	"github.com/arnodel/zstlines/record"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// A LineSource yields lines until io.EOF.  *linestream.LineReader and
// *zstlines.Archive implement it.
type LineSource interface {
	Next() (string, error)
}

// Options controls how failures are handled.
type Options struct {
	// KeepGoing skips records that fail to parse or filter instead of
	// stopping at the first one.
	KeepGoing bool

	Logger log.Logger
}

// Result summarizes a run.
type Result struct {
	Lines   int // lines read
	Matched int // comments written
	Skipped int // records skipped because of an error

	// Aborted is the error that stopped the loop early, if any.  The matches
	// found before it have been written.
	Aborted error
}

// Run filters every line of lines into w.  Record and stream errors stop the
// loop but are not returned: they are logged and reported in Result.Aborted,
// and the results found so far are still flushed.  The returned error is only
// set if flushing the results failed.
func Run(lines LineSource, f *filter.Filter, w *output.Writer, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	var res Result
	for {
		line, err := lines.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			logStreamError(logger, err, res.Lines)
			res.Aborted = err
			break
		}
		res.Lines++
		if err := process(line, f, w); err != nil {
			if _, isRecordErr := err.(*recordError); !isRecordErr {
				// Output failure: nothing more can be written.
				res.Matched = w.Count()
				return res, err
			}
			level.Error(logger).Log("msg", "error processing line", "line", res.Lines, "record", line, "err", err)
			if !opts.KeepGoing {
				res.Aborted = err
				break
			}
			res.Skipped++
		}
	}
	res.Matched = w.Count()
	return res, w.Flush()
}

func process(line string, f *filter.Filter, w *output.Writer) error {
	c, err := record.Parse(line)
	if err != nil {
		return &recordError{err}
	}
	ok, err := f.Match(c)
	if err != nil {
		return &recordError{err}
	}
	if !ok {
		return nil
	}
	return w.Add(c)
}

func logStreamError(logger log.Logger, err error, lines int) {
	var exhausted *linestream.DecodeExhaustedError
	if errors.As(err, &exhausted) {
		level.Error(logger).Log(
			"msg", "cannot decode archive, raise the max window size or treat the archive as corrupt",
			"bytes_read", exhausted.BytesRead,
			"attempts", exhausted.Attempts,
			"lines", lines,
			"err", err,
		)
		return
	}
	level.Error(logger).Log("msg", "error reading archive", "lines", lines, "err", err)
}

// A recordError is a failure to handle a single record.
type recordError struct {
	err error
}

func (e *recordError) Error() string {
	return e.err.Error()
}

func (e *recordError) Unwrap() error {
	return e.err
}
