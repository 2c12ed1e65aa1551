package search

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/arnodel/zstlines/filter"
	"github.com/arnodel/zstlines/linestream"
	"github.com/arnodel/zstlines/output"
	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineReader(s string, chunkSize int) *linestream.LineReader {
	cfg := linestream.Config{ChunkSize: chunkSize, MaxWindowSize: 1 << 20, MaxAttempts: 3}
	return linestream.NewLineReader(linestream.NewChunkDecoder(strings.NewReader(s), cfg), cfg)
}

func newWriter(buf *bytes.Buffer) *output.Writer {
	return &output.Writer{
		Target: output.StreamTarget{Writer: buf, Name: "buffer"},
		Style:  output.Style{CommentOnly: true},
	}
}

func mustFilter(t *testing.T, opts filter.Options) *filter.Filter {
	t.Helper()
	f, err := filter.New(opts)
	require.NoError(t, err)
	return f
}

const archive = `{"author":"alice","body":"hello gophers","subreddit":"golang","created_utc":1673784000}
{"author":"AutoModerator","body":"rules","subreddit":"golang","created_utc":1673784000}
{"author":"bob","body":"[deleted]","subreddit":"golang","created_utc":1673784000}
{"author":"carol","body":"borrow checker","subreddit":"rust","created_utc":1673784000}
{"author":"dave","body":"Hello again","subreddit":"golang","created_utc":1673870400}
`

func TestRunFilters(t *testing.T) {
	var buf bytes.Buffer
	w := newWriter(&buf)
	res, err := Run(lineReader(archive, 16), mustFilter(t, filter.Options{Subreddit: "golang", Keyword: "hello"}), w, Options{})
	require.NoError(t, err)

	assert.Equal(t, Result{Lines: 5, Matched: 2}, res)
	assert.Equal(t, "hello gophers\nHello again\n", buf.String())
}

func TestRunNoMatches(t *testing.T) {
	var buf bytes.Buffer
	res, err := Run(lineReader(archive, 64), mustFilter(t, filter.Options{User: "nobody"}), newWriter(&buf), Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Matched)
	assert.Equal(t, "", buf.String())
}

func TestRunStopsAtBadRecord(t *testing.T) {
	const input = `{"author":"alice","body":"one"}
not json
{"author":"bob","body":"two"}
`
	var buf, logs bytes.Buffer
	res, err := Run(lineReader(input, 8), mustFilter(t, filter.Options{}), newWriter(&buf), Options{Logger: log.NewLogfmtLogger(&logs)})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Lines)
	assert.Equal(t, 1, res.Matched)
	assert.Error(t, res.Aborted)
	// The match found before the error is still written.
	assert.Equal(t, "one\n", buf.String())
	assert.Contains(t, logs.String(), "error processing line")
	assert.Contains(t, logs.String(), "not json")
}

func TestRunKeepGoing(t *testing.T) {
	const input = `{"author":"alice","body":"one"}
not json
{"author":"bob","body":"two"}
`
	var buf bytes.Buffer
	res, err := Run(lineReader(input, 8), mustFilter(t, filter.Options{}), newWriter(&buf), Options{KeepGoing: true})
	require.NoError(t, err)

	assert.Equal(t, Result{Lines: 3, Matched: 2, Skipped: 1}, res)
	assert.Equal(t, "one\ntwo\n", buf.String())
}

func TestRunDecodeExhausted(t *testing.T) {
	input := `{"author":"alice","body":"one"}` + "\n" + strings.Repeat("x", 32) + "\xff\n"
	var buf, logs bytes.Buffer
	res, err := Run(lineReader(input, 32), mustFilter(t, filter.Options{}), newWriter(&buf), Options{Logger: log.NewLogfmtLogger(&logs)})
	require.NoError(t, err)

	assert.ErrorIs(t, res.Aborted, linestream.ErrDecodeExhausted)
	assert.Equal(t, 1, res.Matched)
	assert.Equal(t, "one\n", buf.String())
	assert.Contains(t, logs.String(), "attempts=3")
}

type errSource struct {
	lines []string
	err   error
}

func (s *errSource) Next() (string, error) {
	if len(s.lines) == 0 {
		return "", s.err
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func TestRunReadError(t *testing.T) {
	errRead := errors.New("unexpected end of frame")
	var buf bytes.Buffer
	src := &errSource{lines: []string{`{"author":"a","body":"b"}`}, err: errRead}
	res, err := Run(src, mustFilter(t, filter.Options{}), newWriter(&buf), Options{})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Aborted, errRead)
	assert.Equal(t, "b\n", buf.String())
}

func TestRunFilterError(t *testing.T) {
	const input = `{"author":"alice","body":"no date"}` + "\n"
	var buf bytes.Buffer
	f := mustFilter(t, filter.Options{Date: mustDate(t, "2023-01-15")})
	res, err := Run(lineReader(input, 64), f, newWriter(&buf), Options{})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Aborted, filter.ErrMissingTimestamp)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRunOutputError(t *testing.T) {
	w := &output.Writer{Target: output.StreamTarget{Writer: failingWriter{}, Name: "broken"}, FlushEvery: 1}
	_, err := Run(lineReader(archive, 64), mustFilter(t, filter.Options{}), w, Options{})
	assert.ErrorContains(t, err, "disk full")
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := filter.ParseDate(s)
	require.NoError(t, err)
	return d
}
