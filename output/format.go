package output

import (
	"strings"

	"github.com/arnodel/zstlines/record"
)

const redditURL = "https://www.reddit.com"

// A Style says how a matching comment is rendered.
type Style struct {
	// CommentOnly prints the comment body instead of the whole record.
	CommentOnly bool

	// Link appends a link to the comment when CommentOnly is set.
	Link bool
}

// Print renders the comment on p, without a trailing new line.
func (s Style) Print(p Printer, c *Colorizer, comment *record.Comment) {
	if !s.CommentOnly {
		c.PrintRecord(p, comment.Raw)
		return
	}
	c.PrintBody(p, comment.Body)
	if !s.Link {
		return
	}
	if link := Link(comment); link != "" {
		p.NewLine()
		c.PrintLink(p, "Link: "+link)
	}
}

// Link returns the URL of the comment, built from its permalink or failing
// that from the id of the submission it belongs to.  It returns "" if neither
// is available.
func Link(c *record.Comment) string {
	if c.Permalink != "" {
		return redditURL + c.Permalink
	}
	if id, ok := strings.CutPrefix(c.LinkID, "t3_"); ok && id != "" {
		return redditURL + "/comments/" + id + "/"
	}
	return ""
}
