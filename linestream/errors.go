package linestream

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

// ErrDecodeExhausted matches any *DecodeExhaustedError with errors.Is.
var ErrDecodeExhausted = errors.New("decode exhausted")

// A DecodeExhaustedError is returned when a chunk could not be decoded as
// UTF-8 text within the attempt or byte budget.  It terminates the stream.
type DecodeExhaustedError struct {
	// BytesRead counts the bytes requested while retrying, which may be more
	// than the stream actually delivered.
	BytesRead int64
	Attempts  int
}

func (e *DecodeExhaustedError) Error() string {
	return fmt.Sprintf("can't decode after reading %s bytes and %d attempts", humanize.Comma(e.BytesRead), e.Attempts)
}

func (e *DecodeExhaustedError) Is(target error) bool {
	return target == ErrDecodeExhausted
}
