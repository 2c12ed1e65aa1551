package output

import (
	"fmt"
	"io"
)

// The Printer interface is used to output results.
//
// NewLine() starts a new line
// PrintBytes() outputs bytes at the current position
// PrintString() outputs a string at the current position
//
// The methods do not return an error because writing results is not expected
// to fail, and when it does the only sensible outcome is to stop.
// Instead, implementations are expected to panic with a *PrinterError when
// they encounter an error.  A user of the Printer interface can use
//
//	func printingFunction(p Printer) (err error) {
//	    defer CatchPrinterError(&err)
//	    return doSomePrinting(p)
//	}
//
// to capture such errors.
type Printer interface {
	NewLine()
	PrintBytes([]byte)
	PrintString(string)
}

// CatchPrinterError can be used to capture panics caused by a Printer because
// of an error encountered while attempting to send output.  See the Printer
// interface documentation for details.
func CatchPrinterError(err *error) {
	if r := recover(); r != nil {
		perr, ok := r.(*PrinterError)
		if ok {
			*err = perr
		} else {
			panic(r)
		}
	}
}

// A PrinterError contains an error that occurred while a Printer implementation
// was sending some output.
type PrinterError struct {
	Err error
}

func (e *PrinterError) Error() string {
	return fmt.Sprintf("printer error: %s", e.Err)
}

func (e *PrinterError) Unwrap() error {
	return e.Err
}

// DefaultPrinter implements a Printer which uses an io.Writer to send output.
type DefaultPrinter struct {
	io.Writer
}

var _ Printer = &DefaultPrinter{}

// NewLine outputs '\n'.
func (p *DefaultPrinter) NewLine() {
	p.PrintBytes(newLine)
}

// PrintBytes sends the given bytes verbatim to the printer's writer.
func (p *DefaultPrinter) PrintBytes(b []byte) {
	_, err := p.Write(b)
	if err != nil {
		panic(wrapError(err))
	}
}

// PrintString sends the given string verbatim to the printer's writer.
func (p *DefaultPrinter) PrintString(s string) {
	_, err := io.WriteString(p.Writer, s)
	if err != nil {
		panic(wrapError(err))
	}
}

var newLine = []byte{'\n'}

func wrapError(err error) *PrinterError {
	return &PrinterError{Err: err}
}
