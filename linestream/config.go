package linestream

import (
	"fmt"

	"github.com/go-kit/log"
)

const (
	// DefaultChunkSize is the number of bytes requested from the
	// decompression stream per read attempt.
	DefaultChunkSize = 1 << 27

	// DefaultMaxWindowSize bounds the decompressor window and the number of
	// bytes that may be read while retrying a single decode.
	DefaultMaxWindowSize = 1 << 30

	// DefaultMaxAttempts is how many chunks may be read for one fragment
	// before giving up.
	DefaultMaxAttempts = 3
)

// Config holds the settings of a ChunkDecoder and LineReader.  Each decoder
// has its own Config so several archives can be read with different bounds
// in the same process.
type Config struct {
	// ChunkSize is the number of bytes requested per read.
	ChunkSize int

	// MaxWindowSize is the ceiling on bytes read for one logical chunk.  It is
	// also handed to the zstd decoder as its maximum window.
	MaxWindowSize int64

	// MaxAttempts is the number of reads allowed for one fragment.
	MaxAttempts int

	// KeepTrailingLine makes the LineReader emit a final line that is not
	// terminated by a newline.  By default such a line is dropped.
	KeepTrailingLine bool

	// Logger receives retry notices.  Nil means no logging.
	Logger log.Logger
}

// DefaultConfig returns the configuration used for Reddit dump archives.
func DefaultConfig() Config {
	return Config{
		ChunkSize:     DefaultChunkSize,
		MaxWindowSize: DefaultMaxWindowSize,
		MaxAttempts:   DefaultMaxAttempts,
	}
}

// Validate reports an error if a bound is not positive.
func (c Config) Validate() error {
	switch {
	case c.ChunkSize <= 0:
		return fmt.Errorf("invalid chunk size %d", c.ChunkSize)
	case c.MaxWindowSize <= 0:
		return fmt.Errorf("invalid max window size %d", c.MaxWindowSize)
	case c.MaxAttempts <= 0:
		return fmt.Errorf("invalid max attempts %d", c.MaxAttempts)
	}
	return nil
}

func (c Config) logger() log.Logger {
	if c.Logger == nil {
		return log.NewNopLogger()
	}
	return c.Logger
}
