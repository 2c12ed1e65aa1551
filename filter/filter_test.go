package filter

import (
	"testing"
	"time"

	"github.com/arnodel/zstlines/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, line string) *record.Comment {
	t.Helper()
	c, err := record.Parse(line)
	require.NoError(t, err)
	return c
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

// 2023-01-15T12:00:00Z
const sample = `{"author":"Alice","body":"Learning Go is FUN","subreddit":"golang","created_utc":1673784000,"score":42,"stickied":false}`

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want bool
	}{
		{"no predicates", Options{}, true},
		{"user", Options{User: "Alice"}, true},
		{"user is exact", Options{User: "alice"}, false},
		{"subreddit", Options{Subreddit: "golang"}, true},
		{"other subreddit", Options{Subreddit: "rust"}, false},
		{"date", Options{Date: mustDate(t, "2023-01-15")}, true},
		{"other date", Options{Date: mustDate(t, "2023-01-16")}, false},
		{"range", Options{From: mustDate(t, "2023-01-01"), To: mustDate(t, "2023-01-31")}, true},
		{"range start inclusive", Options{From: mustDate(t, "2023-01-15"), To: mustDate(t, "2023-01-20")}, true},
		{"range end inclusive", Options{From: mustDate(t, "2023-01-10"), To: mustDate(t, "2023-01-15")}, true},
		{"before range", Options{From: mustDate(t, "2023-01-16"), To: mustDate(t, "2023-01-20")}, false},
		{"after range", Options{From: mustDate(t, "2022-12-01"), To: mustDate(t, "2023-01-14")}, false},
		{"keyword ignores case", Options{Keyword: "go is fun"}, true},
		{"missing keyword", Options{Keyword: "rust"}, false},
		{"where", Options{Where: `score > 10 && !stickied`}, true},
		{"where false", Options{Where: `score > 100`}, false},
		{"all together", Options{User: "Alice", Subreddit: "golang", Keyword: "learning", Where: `subreddit == "golang"`}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.opts)
			require.NoError(t, err)
			got, err := f.Match(mustParse(t, sample))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModerationExcluded(t *testing.T) {
	f, err := New(Options{})
	require.NoError(t, err)

	for _, line := range []string{
		`{"author":"AutoModerator","body":"Please read the rules"}`,
		`{"author":"automoderator","body":"Please read the rules"}`,
		`{"author":"bob","body":"[deleted]"}`,
		`{"author":"[deleted]","body":"[removed]"}`,
	} {
		ok, err := f.Match(mustParse(t, line))
		require.NoError(t, err)
		assert.False(t, ok, line)
	}

	ok, err := f.Match(mustParse(t, `{"author":"bob","body":"[deleted] is not the whole body"}`))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestKeywordUnicodeFolding(t *testing.T) {
	f, err := New(Options{Keyword: "ÉCOLE"})
	require.NoError(t, err)
	ok, err := f.Match(mustParse(t, `{"author":"x","body":"Une école à Paris"}`))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMissingTimestamp(t *testing.T) {
	f, err := New(Options{Date: mustDate(t, "2023-01-15")})
	require.NoError(t, err)
	_, err = f.Match(mustParse(t, `{"author":"x","body":"y"}`))
	assert.ErrorIs(t, err, ErrMissingTimestamp)

	// Without a date predicate the timestamp is not needed.
	f, err = New(Options{})
	require.NoError(t, err)
	ok, err := f.Match(mustParse(t, `{"author":"x","body":"y"}`))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWhereErrors(t *testing.T) {
	_, err := New(Options{Where: `score >`})
	assert.Error(t, err)

	f, err := New(Options{Where: `author`})
	require.NoError(t, err)
	_, err = f.Match(mustParse(t, sample))
	assert.Error(t, err)
}

func TestWhereUndefinedField(t *testing.T) {
	f, err := New(Options{Where: `edited == nil`})
	require.NoError(t, err)
	ok, err := f.Match(mustParse(t, sample))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewRejectsBadDates(t *testing.T) {
	_, err := New(Options{Date: mustDate(t, "2023-01-15"), From: mustDate(t, "2023-01-01"), To: mustDate(t, "2023-01-31")})
	assert.Error(t, err)

	_, err = New(Options{From: mustDate(t, "2023-01-01")})
	assert.Error(t, err)

	_, err = New(Options{From: mustDate(t, "2023-02-01"), To: mustDate(t, "2023-01-01")})
	assert.Error(t, err)
}

func TestParseDateRange(t *testing.T) {
	from, to, err := ParseDateRange("2023-01-01, 2023-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC), to)

	_, _, err = ParseDateRange("2023-01-01")
	assert.Error(t, err)

	_, _, err = ParseDateRange("2023-01-01,tomorrow")
	assert.Error(t, err)

	_, err = ParseDate("01/02/2023")
	assert.Error(t, err)
}
