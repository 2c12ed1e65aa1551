package zstlines

import (
	"fmt"
	"io"
	"os"

	"github.com/arnodel/zstlines/linestream"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"
)

// A Reader yields the lines of a zstd-compressed text stream.  It embeds a
// *linestream.LineReader, so lines are read with Next or All.
type Reader struct {
	*linestream.LineReader
	decoder *zstd.Decoder
}

// NewReader returns a Reader decompressing r.  The caller still owns r and
// must close it after closing the Reader.
func NewReader(r io.Reader, cfg linestream.Config) (*Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxWindowSize < zstd.MinWindowSize {
		return nil, fmt.Errorf("max window size %s is below the zstd minimum of %s",
			humanize.IBytes(uint64(cfg.MaxWindowSize)), humanize.IBytes(zstd.MinWindowSize))
	}
	decoder, err := zstd.NewReader(r,
		zstd.WithDecoderMaxWindow(uint64(cfg.MaxWindowSize)),
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	chunks := linestream.NewChunkDecoder(decoder, cfg)
	return &Reader{
		LineReader: linestream.NewLineReader(chunks, cfg),
		decoder:    decoder,
	}, nil
}

// Close releases the decompressor.  It does not close the underlying reader.
func (r *Reader) Close() error {
	if r.decoder != nil {
		r.decoder.Close()
		r.decoder = nil
	}
	return nil
}

// An Archive is a Reader over a file that it owns.
type Archive struct {
	*Reader
	file *os.File
}

// Open opens the zstd-compressed file at path for line reading.  The returned
// Archive must be closed, which closes the file as well.
func Open(path string, cfg linestream.Config) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	reader, err := NewReader(file, cfg)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &Archive{Reader: reader, file: file}, nil
}

// Close closes the decompressor then the file.  Calling it more than once is
// harmless.
func (a *Archive) Close() error {
	a.Reader.Close()
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}
