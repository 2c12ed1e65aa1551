// Package filter selects the comments to keep.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arnodel/zstlines/record"
	"github.com/expr-lang/expr/vm"
	"golang.org/x/text/cases"
)

// DateLayout is the format of dates given on the command line.
const DateLayout = "2006-01-02"

// Options describes which comments to keep.  Zero values disable the
// corresponding predicate.
type Options struct {
	// User keeps only comments by this exact author.
	User string

	// Subreddit keeps only comments in this exact subreddit.
	Subreddit string

	// Date keeps only comments created on this UTC day.
	Date time.Time

	// From and To keep only comments created between these UTC days,
	// inclusive.  Both must be set.  Cannot be combined with Date.
	From, To time.Time

	// Keyword keeps only comments whose body contains it, ignoring case.
	Keyword string

	// Where is an expression over the record fields that must be true,
	// e.g. `score > 10 && !stickied`.
	Where string
}

// A Filter decides whether a comment matches its Options.
type Filter struct {
	opts    Options
	fold    cases.Caser
	keyword string
	where   *vm.Program
}

// ErrMissingTimestamp is returned by Match when a date predicate is set and
// the record has no created_utc field.
var ErrMissingTimestamp = errors.New("record has no created_utc")

// New validates the options and compiles the Where expression.
func New(opts Options) (*Filter, error) {
	if !opts.Date.IsZero() && (!opts.From.IsZero() || !opts.To.IsZero()) {
		return nil, errors.New("a date and a date range cannot be used together")
	}
	if opts.From.IsZero() != opts.To.IsZero() {
		return nil, errors.New("a date range needs a start and an end")
	}
	if opts.From.After(opts.To) {
		return nil, fmt.Errorf("date range start %s is after its end %s",
			opts.From.Format(DateLayout), opts.To.Format(DateLayout))
	}
	f := &Filter{
		opts: opts,
		fold: cases.Fold(),
	}
	if opts.Keyword != "" {
		f.keyword = f.fold.String(opts.Keyword)
	}
	if opts.Where != "" {
		program, err := compileWhere(opts.Where)
		if err != nil {
			return nil, err
		}
		f.where = program
	}
	return f, nil
}

// Match reports whether the comment should be kept.  An error means the
// record could not be evaluated.
func (f *Filter) Match(c *record.Comment) (bool, error) {
	if IsModeration(c) {
		return false, nil
	}
	if f.opts.User != "" && c.Author != f.opts.User {
		return false, nil
	}
	if f.opts.Subreddit != "" && c.Subreddit != f.opts.Subreddit {
		return false, nil
	}
	if !f.opts.Date.IsZero() || !f.opts.From.IsZero() {
		if !c.HasCreated {
			return false, ErrMissingTimestamp
		}
		date := c.Date()
		if !f.opts.Date.IsZero() && !date.Equal(f.opts.Date) {
			return false, nil
		}
		if !f.opts.From.IsZero() && (date.Before(f.opts.From) || date.After(f.opts.To)) {
			return false, nil
		}
	}
	if f.keyword != "" && !strings.Contains(f.fold.String(c.Body), f.keyword) {
		return false, nil
	}
	if f.where != nil {
		return evalWhere(f.where, c)
	}
	return true, nil
}

// IsModeration reports whether the comment was posted by AutoModerator or
// has been deleted or removed.  Such comments are never kept.
func IsModeration(c *record.Comment) bool {
	if strings.EqualFold(c.Author, "automoderator") {
		return true
	}
	return c.Body == "[deleted]" || c.Body == "[removed]"
}

// ParseDate parses a YYYY-MM-DD date as a UTC day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (format: YYYY-MM-DD)", s)
	}
	return t, nil
}

// ParseDateRange parses a "START,END" pair of YYYY-MM-DD dates.
func ParseDateRange(s string) (from, to time.Time, err error) {
	start, end, ok := strings.Cut(s, ",")
	if !ok {
		return from, to, fmt.Errorf("invalid date range %q (format: YYYY-MM-DD,YYYY-MM-DD)", s)
	}
	if from, err = ParseDate(strings.TrimSpace(start)); err != nil {
		return
	}
	to, err = ParseDate(strings.TrimSpace(end))
	return
}
