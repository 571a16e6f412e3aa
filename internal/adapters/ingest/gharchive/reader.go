package gharchive

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
)

const maxScanTokenSize = 32 * 1024 * 1024

// Reader streams EventEnvelope items from a gzip NDJSON stream.
// Single pass, one line buffered at a time
type Reader struct {
	r         io.ReadCloser
	gz        *gzip.Reader
	sc        *bufio.Scanner
	err       error
	events    int
	malformed int
	bytes     int64
}

// NewReader creates a Reader over the given gzip ReadCloser
func NewReader(r io.ReadCloser) (*Reader, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		if cerr := r.Close(); cerr != nil {
			return nil, cerr
		}
		return nil, err
	}
	sc := bufio.NewScanner(gz)
	buf := make([]byte, 512*1024)
	sc.Buffer(buf, maxScanTokenSize)
	return &Reader{r: r, gz: gz, sc: sc}, nil
}

// Next reads the next event; returns io.EOF when the stream is done.
// Lines that fail to decode are counted and skipped, never returned as errors
func (rd *Reader) Next() (EventEnvelope, error) {
	if rd.err != nil {
		return EventEnvelope{}, rd.err
	}
	for {
		if !rd.sc.Scan() {
			if err := rd.sc.Err(); err != nil {
				rd.err = err
				return EventEnvelope{}, err
			}
			rd.err = io.EOF
			return EventEnvelope{}, io.EOF
		}
		line := rd.sc.Bytes()
		rd.bytes += int64(len(line) + 1) // include newline

		var env EventEnvelope
		if err := json.Unmarshal(line, &env); err != nil {
			rd.malformed++
			continue
		}
		rd.events++
		return env, nil
	}
}

// Close closes the gzip layer then the underlying reader
func (rd *Reader) Close() error {
	var first error
	if rd.gz != nil {
		if err := rd.gz.Close(); err != nil && !errors.Is(err, io.ErrClosedPipe) {
			first = err
		}
	}
	if rd.r != nil {
		if err := rd.r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Stats returns decoded events, skipped malformed lines, and uncompressed bytes read
func (rd *Reader) Stats() (events, malformed int, bytes int64) {
	return rd.events, rd.malformed, rd.bytes
}
