package output

// A Colorizer holds the terminal escape codes used to highlight results.  A
// nil *Colorizer prints without colors.
type Colorizer struct {
	RecordColorCode []byte
	BodyColorCode   []byte
	LinkColorCode   []byte
	ResetCode       []byte
}

// Some color ANSI codes
var (
	Reset = []byte("\033[0m")

	White    = []byte("\033[37m")
	DimWhite = []byte("\033[37;2m")
	Cyan     = []byte("\033[36m")
)

// DefaultColorizer is used when writing to a terminal.
var DefaultColorizer = Colorizer{
	RecordColorCode: DimWhite,
	BodyColorCode:   White,
	LinkColorCode:   Cyan,
	ResetCode:       Reset,
}

func (c *Colorizer) print(p Printer, code []byte, s string) {
	if c != nil {
		p.PrintBytes(code)
	}
	p.PrintString(s)
	if c != nil {
		p.PrintBytes(c.ResetCode)
	}
}

// PrintRecord prints a whole record.
func (c *Colorizer) PrintRecord(p Printer, s string) {
	c.print(p, c.recordCode(), s)
}

// PrintBody prints a comment body.
func (c *Colorizer) PrintBody(p Printer, s string) {
	c.print(p, c.bodyCode(), s)
}

// PrintLink prints a link line.
func (c *Colorizer) PrintLink(p Printer, s string) {
	c.print(p, c.linkCode(), s)
}

func (c *Colorizer) recordCode() []byte {
	if c == nil {
		return nil
	}
	return c.RecordColorCode
}

func (c *Colorizer) bodyCode() []byte {
	if c == nil {
		return nil
	}
	return c.BodyColorCode
}

func (c *Colorizer) linkCode() []byte {
	if c == nil {
		return nil
	}
	return c.LinkColorCode
}
