// Package record extracts from a JSON line the comment fields that the
// filters and output need.  The rest of the record is kept verbatim.
package record

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/buger/jsonparser"
)

// ErrNotObject is returned by Parse when a line is not a JSON object.
var ErrNotObject = errors.New("record is not a JSON object")

// A Comment is a parsed record from a comment archive.
type Comment struct {
	// Raw is the record as read from the archive.
	Raw string

	Author    string
	Body      string
	Subreddit string
	Permalink string
	LinkID    string

	// CreatedUTC is a unix timestamp, valid if HasCreated is true.
	CreatedUTC int64
	HasCreated bool

	// Fields holds the top-level scalar fields: strings, float64 numbers,
	// booleans and nil.  Nested values are kept as their JSON text.
	Fields map[string]any
}

// Date returns the UTC calendar date the comment was created.
func (c *Comment) Date() time.Time {
	t := time.Unix(c.CreatedUTC, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Parse parses a line containing a JSON object.
func Parse(line string) (*Comment, error) {
	data := []byte(line)
	if vt := valueType(data); vt != jsonparser.Object {
		return nil, ErrNotObject
	}
	c := &Comment{Raw: line, Fields: map[string]any{}}
	err := jsonparser.ObjectEach(data, func(key, value []byte, vt jsonparser.ValueType, _ int) error {
		name, err := jsonparser.ParseString(key)
		if err != nil {
			return fmt.Errorf("invalid key %q: %w", key, err)
		}
		v, err := scalarValue(value, vt)
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		c.Fields[name] = v
		switch name {
		case "author":
			c.Author = stringValue(v)
		case "body":
			c.Body = stringValue(v)
		case "subreddit":
			c.Subreddit = stringValue(v)
		case "permalink":
			c.Permalink = stringValue(v)
		case "link_id":
			c.LinkID = stringValue(v)
		case "created_utc":
			c.CreatedUTC, err = timestamp(value, vt)
			if err != nil {
				return fmt.Errorf("field %q: %w", name, err)
			}
			c.HasCreated = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func valueType(data []byte) jsonparser.ValueType {
	_, vt, _, err := jsonparser.Get(data)
	if err != nil {
		return jsonparser.NotExist
	}
	return vt
}

func scalarValue(value []byte, vt jsonparser.ValueType) (any, error) {
	switch vt {
	case jsonparser.String:
		return jsonparser.ParseString(value)
	case jsonparser.Number:
		return jsonparser.ParseFloat(value)
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(value)
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Object, jsonparser.Array:
		return string(value), nil
	default:
		return nil, fmt.Errorf("unexpected value %q", value)
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// timestamp accepts the numbers and numeric strings found in the dumps, e.g.
// 1672531200, 1672531200.0 and "1672531200".
func timestamp(value []byte, vt jsonparser.ValueType) (int64, error) {
	var s string
	switch vt {
	case jsonparser.Number:
		s = string(value)
	case jsonparser.String:
		var err error
		s, err = jsonparser.ParseString(value)
		if err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	return int64(f), nil
}
