package linestream

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// A ChunkDecoder turns a byte stream into a sequence of UTF-8 text fragments.
// It reads the stream in fixed size chunks.  When a chunk ends in the middle
// of a multi-byte character, the undecodable bytes are kept and decoded again
// together with the next chunk.
type ChunkDecoder struct {
	reader io.Reader
	cfg    Config
	logger log.Logger

	// Read buffer, allocated on first use with len == cfg.ChunkSize
	buf []byte

	// Bytes that failed to decode and must be prepended to the next chunk.
	remainder []byte

	// Bytes requested since the last successful decode.  It is incremented
	// by cfg.ChunkSize on every attempt, even when fewer bytes are available.
	bytesRead int64

	// Set once the reader has returned io.EOF
	eof bool
}

// NewChunkDecoder returns a decoder reading from r.  The decoder does not
// close r.
func NewChunkDecoder(r io.Reader, cfg Config) *ChunkDecoder {
	return &ChunkDecoder{
		reader: r,
		cfg:    cfg,
		logger: cfg.logger(),
	}
}

// NextFragment returns the next decoded fragment.  At the end of the stream it
// returns "", io.EOF.  If the text cannot be decoded within the configured
// budget it returns a *DecodeExhaustedError; errors from the reader are
// returned wrapped.  In both cases the decoder should not be used again.
func (d *ChunkDecoder) NextFragment() (string, error) {
	for attempt := 0; ; attempt++ {
		res := d.step(attempt)
		switch res.kind {
		case stepDecoded:
			d.remainder = nil
			d.bytesRead = 0
			if res.text == "" {
				return "", io.EOF
			}
			return res.text, nil
		case stepRetry:
			d.remainder = res.remainder
			level.Warn(d.logger).Log(
				"msg", "decoding error, reading another chunk",
				"attempt", attempt+1,
				"bytes_read", d.bytesRead,
			)
		default:
			return "", res.err
		}
	}
}

type stepKind uint8

const (
	stepDecoded stepKind = iota
	stepRetry
	stepFailed
)

// stepResult is the outcome of one decode attempt.
type stepResult struct {
	kind      stepKind
	text      string
	remainder []byte
	err       error
}

// step reads one chunk, prepends the pending remainder and tries to decode
// the result.
func (d *ChunkDecoder) step(attempt int) stepResult {
	n, err := d.readChunk()
	d.bytesRead += int64(d.cfg.ChunkSize)
	if err != nil {
		return stepResult{kind: stepFailed, err: fmt.Errorf("reading chunk: %w", err)}
	}
	var data []byte
	if len(d.remainder) > 0 {
		data = append(d.remainder, d.buf[:n]...)
	} else {
		data = d.buf[:n]
	}
	if utf8.Valid(data) {
		return stepResult{kind: stepDecoded, text: string(data)}
	}
	if attempt >= d.cfg.MaxAttempts-1 || d.bytesRead > d.cfg.MaxWindowSize {
		return stepResult{
			kind: stepFailed,
			err:  &DecodeExhaustedError{BytesRead: d.bytesRead, Attempts: attempt + 1},
		}
	}
	if len(d.remainder) == 0 {
		// data aliases the read buffer
		data = bytes.Clone(data)
	}
	return stepResult{kind: stepRetry, remainder: data}
}

// readChunk fills the read buffer from the reader.  It returns fewer bytes
// than the chunk size only at the end of the stream.  io.EOF is not reported
// as an error.
func (d *ChunkDecoder) readChunk() (int, error) {
	if d.buf == nil {
		d.buf = make([]byte, d.cfg.ChunkSize)
	}
	if d.eof {
		return 0, nil
	}
	var fillIndex, emptyReads int
	for fillIndex < len(d.buf) {
		n, err := d.reader.Read(d.buf[fillIndex:])
		fillIndex += n
		if err == io.EOF {
			d.eof = true
			return fillIndex, nil
		}
		if err != nil {
			return fillIndex, err
		}
		if n > 0 {
			emptyReads = 0
			continue
		}
		emptyReads++
		if emptyReads >= maxConsecutiveEmptyReads {
			return fillIndex, io.ErrNoProgress
		}
	}
	return fillIndex, nil
}

const maxConsecutiveEmptyReads = 100
