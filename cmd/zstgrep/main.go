package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/arnodel/zstlines"
	"github.com/arnodel/zstlines/filter"
	"github.com/arnodel/zstlines/internal/search"
	"github.com/arnodel/zstlines/linestream"
	"github.com/arnodel/zstlines/output"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

func main() {
	// Do not handle SIGPIPE, we'll do it ourselves (see error handling at the bottom of main).
	signal.Ignore(syscall.SIGPIPE)

	// Display a stack trace on panic
	defer func() {
		if e := recover(); e != nil {
			fmt.Fprintf(os.Stderr, "%s: %s", e, debug.Stack())
			os.Exit(2)
		}
	}()

	// Parse the command line arguments
	var filterOpts filter.Options
	var style output.Style
	var date string
	var dateRange string
	var outPath string
	var colorMode string
	var logLevel string
	var keepGoing bool

	cfg := linestream.DefaultConfig()

	flag.Usage = printUsage

	stringFlag(&filterOpts.User, "user", "u", "", "keep comments by this author")
	stringFlag(&filterOpts.Subreddit, "subreddit", "s", "", "keep comments from this subreddit")
	stringFlag(&date, "date", "d", "", "keep comments from this date (YYYY-MM-DD)")
	stringFlag(&dateRange, "date-range", "dr", "", "keep comments within this date range (YYYY-MM-DD,YYYY-MM-DD)")
	stringFlag(&filterOpts.Keyword, "keyword", "k", "", "keep comments containing this keyword or phrase")
	boolFlag(&style.CommentOnly, "comment-only", "c", "only output comment text, not metadata")
	boolFlag(&style.Link, "link", "l", "add the link to the comment when used with -comment-only")
	flag.StringVar(&filterOpts.Where, "where", "", "keep comments for which this expression is true")
	flag.StringVar(&outPath, "out", "", "output file, - for stdout (default: filtered_comments_<timestamp>.json)")
	flag.StringVar(&colorMode, "color", "auto", "colorize stdout output: auto, always, never")
	flag.IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "bytes decompressed per read")
	flag.Int64Var(&cfg.MaxWindowSize, "max-window", cfg.MaxWindowSize, "maximum zstd window size and decode lookahead in bytes")
	flag.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "reads allowed to decode one chunk")
	flag.BoolVar(&cfg.KeepTrailingLine, "keep-trailing-line", false, "also process a last line without a trailing newline")
	flag.BoolVar(&keepGoing, "keep-going", false, "skip records that cannot be processed instead of stopping")
	flag.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	flag.Parse()

	if flag.NArg() != 1 {
		printUsage()
		os.Exit(1)
	}
	archivePath := flag.Arg(0)

	logger, err := newLogger(logLevel)
	if err != nil {
		fatalError("%s", err)
	}
	cfg.Logger = logger

	if date != "" && dateRange != "" {
		fatalError("-date and -date-range cannot be used together")
	}
	if date != "" {
		filterOpts.Date, err = filter.ParseDate(date)
		if err != nil {
			fatalError("%s", err)
		}
	}
	if dateRange != "" {
		filterOpts.From, filterOpts.To, err = filter.ParseDateRange(dateRange)
		if err != nil {
			fatalError("%s", err)
		}
	}
	commentFilter, err := filter.New(filterOpts)
	if err != nil {
		fatalError("%s", err)
	}

	// Choose where results go
	var target output.Target
	var colorizer *output.Colorizer
	switch outPath {
	case "-":
		var stdout io.Writer = os.Stdout
		isTerminal := isatty.IsTerminal(os.Stdout.Fd())
		switch colorMode {
		case "always":
			colorizer = &output.DefaultColorizer
		case "never":
		case "auto":
			if isTerminal {
				colorizer = &output.DefaultColorizer
			}
		default:
			fatalError("invalid -color value: %q (use auto, always, or never)", colorMode)
		}
		if colorizer != nil {
			stdout = colorable.NewColorableStdout()
		}
		target = output.StreamTarget{Writer: stdout, Name: "stdout"}
	case "":
		outPath = output.DefaultFileName(time.Now())
		fallthrough
	default:
		target = output.FileTarget{Path: outPath}
	}

	writer := &output.Writer{
		Target:    target,
		Style:     style,
		Colorizer: colorizer,
	}
	// When writing to a terminal, flush after each result so the user gets
	// feedback early.
	if outPath == "-" && isatty.IsTerminal(os.Stdout.Fd()) {
		writer.FlushEvery = 1
	}

	archive, err := zstlines.Open(archivePath, cfg)
	if err != nil {
		fatalError("error opening %q: %s", archivePath, err)
	}
	defer archive.Close()

	res, err := search.Run(archive, commentFilter, writer, search.Options{
		KeepGoing: keepGoing,
		Logger:    logger,
	})
	level.Debug(logger).Log("msg", "search done", "lines", res.Lines, "matched", res.Matched, "skipped", res.Skipped)
	if err != nil {
		if errors.Is(err, syscall.EPIPE) {
			// stdout is a pipe and something closed it (e.g. 'head' or 'less').
			// In this case we don't want to complain.
			return
		}
		archive.Close()
		fatalError("error: %s", err)
	}

	if res.Matched == 0 {
		fmt.Fprintln(os.Stderr, "No results found for the given search parameters.")
	} else {
		fmt.Fprintf(os.Stderr, "Finished. Found and saved %d comments.\n", res.Matched)
	}
}

func stringFlag(p *string, name, short, value, usage string) {
	flag.StringVar(p, name, value, usage)
	flag.StringVar(p, short, value, "shorthand for -"+name)
}

func boolFlag(p *bool, name, short, usage string) {
	flag.BoolVar(p, name, false, usage)
	flag.BoolVar(p, short, false, "shorthand for -"+name)
}

func newLogger(lvl string) (log.Logger, error) {
	var option level.Option
	switch strings.ToLower(lvl) {
	case "debug":
		option = level.AllowDebug()
	case "info":
		option = level.AllowInfo()
	case "warn":
		option = level.AllowWarn()
	case "error":
		option = level.AllowError()
	default:
		return nil, fmt.Errorf("invalid -log-level value: %q (use debug, info, warn or error)", lvl)
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, option)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	logger = log.With(logger, "caller", log.DefaultCaller)
	return logger, nil
}

func fatalError(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprint(os.Stderr, `zstgrep - search zstd-compressed Reddit comment dumps

USAGE:
  zstgrep [options] FILE.zst

DESCRIPTION:
  zstgrep decompresses the archive as a stream and filters its comments one
  line at a time, so archives much larger than memory can be searched.
  Comments by AutoModerator and deleted or removed comments are skipped.

  Matching comments are appended to filtered_comments_<timestamp>.json in
  batches of 100, or to the file given with -out.  Use -out - to print them.

FILTERS:
  -user, -u NAME           Comments by this author (exact match)
  -subreddit, -s NAME      Comments from this subreddit (exact match)
  -date, -d DATE           Comments from this day (YYYY-MM-DD, UTC)
  -date-range, -dr A,B     Comments between these days, inclusive
  -keyword, -k TEXT        Comments containing TEXT, ignoring case
  -where EXPR              Comments for which EXPR is true.  EXPR can use
                           any top-level field, e.g. 'score > 100 && !stickied'

OUTPUT:
  -comment-only, -c        Only output the comment text
  -link, -l                With -comment-only, add a link to the comment
  -out PATH                Output file (- for stdout)
  -color MODE              Colorize stdout output: auto, always, never

DECODING:
  -chunk-size N            Bytes decompressed per read (default: 128MiB)
  -max-window N            Maximum zstd window and decode lookahead (default: 1GiB)
  -max-attempts N          Reads allowed to decode one chunk (default: 3)
  -keep-trailing-line      Process a last line lacking a newline (dropped by default)
  -keep-going              Skip bad records instead of stopping at the first one
  -log-level LEVEL         debug, info, warn or error (default: info)

EXAMPLES:
  # Comments by a user in January 2023
  zstgrep -u spez -dr 2023-01-01,2023-01-31 RC_2023-01.zst

  # Print matching comment text with links
  zstgrep -s golang -k generics -c -l -out - RC_2023-01.zst | less -R
`)
}
