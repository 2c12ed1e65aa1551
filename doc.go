// Package zstlines reads very large zstd-compressed newline-delimited JSON
// archives (such as the Reddit comment dumps) one line at a time.
//
// The package is organized into several sub-packages:
//
// - linestream: chunked UTF-8 decoding and line reassembly (the core)
// - record: extraction of the comment fields used for filtering
// - filter: predicates over comments (author, subreddit, date, keyword...)
// - output: formatting and buffered writing of the matching comments
//
// They combine into a pipeline:
//
//	zstd file -> chunk decoder -> line reader -> record -> filter -> output
//
// Each stage pulls from the previous one, so memory usage is bounded by the
// decoder chunk size plus the longest line, whatever the size of the archive.
// Decompression uses a bounded window: archives requiring a larger window
// than configured are rejected.
//
// A typical use is:
//
//	archive, err := zstlines.Open("RC_2023-01.zst", linestream.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer archive.Close()
//	for line, err := range archive.All() {
//	    if err != nil {
//	        return err
//	    }
//	    process(line)
//	}
//
// Note that a final line not terminated by a newline is dropped unless
// linestream.Config.KeepTrailingLine is set.
//
// The CLI utility is in the directory cmd/zstgrep.  You can install it with:
//
//	go install github.com/arnodel/zstlines/cmd/zstgrep
package zstlines
