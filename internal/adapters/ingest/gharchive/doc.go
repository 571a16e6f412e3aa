// Package gharchive handles locating, fetching, and reading GH Archive hourly
// gzip files line by line
//
// Design choices:
// - Stream with bufio.Scanner but with a 32MB cap to reliably handle huge events.
// - Malformed lines are skipped and counted; truncated trailing lines are expected
//   in archive exports and must not fail the hour
// - Keep payload as raw JSON until the extract stage to avoid a giant union type
// - Remote fetches land in a per-hour temp file so both extraction passes can
//   re-open the same bytes; the file is removed when the hour is done
package gharchive
