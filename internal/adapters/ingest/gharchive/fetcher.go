package gharchive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DefaultBaseURL is the public GH Archive host
const DefaultBaseURL = "https://data.gharchive.org"

// ErrHourMissing signals the requested hour does not exist in the archive.
// Callers treat it as "skip this hour", not a failure
var ErrHourMissing = errors.New("gharchive: hour not in archive")

// Source is a fetched hour that can be opened for reading more than once.
// Close releases whatever backs it (for remote fetches, a temp file)
type Source interface {
	Open() (io.ReadCloser, error)
	Close() error
}

// Fetcher resolves an hour to a re-openable Source
type Fetcher interface {
	Fetch(ctx context.Context, hour HourRef) (Source, error)
}

// LocalFetcher serves hours from a directory of archive files
type LocalFetcher struct {
	Dir string
}

// Fetch returns a Source over the local file, or ErrHourMissing when absent
func (f *LocalFetcher) Fetch(_ context.Context, hour HourRef) (Source, error) {
	path := filepath.Join(f.Dir, hour.String()+Suffix)
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrHourMissing
		}
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, ErrHourMissing
	}
	return fileSource{path: path}, nil
}

// fileSource opens a caller-owned file; Close does not remove it
type fileSource struct{ path string }

func (s fileSource) Open() (io.ReadCloser, error) { return os.Open(s.path) }
func (s fileSource) Close() error                 { return nil }

// HTTPFetcher downloads hours from a GH Archive style host into TmpDir.
// The returned Source owns its temp file and removes it on Close
type HTTPFetcher struct {
	Client  *http.Client
	BaseURL string
	TmpDir  string
}

// NewHTTPFetcher builds an HTTPFetcher; timeout zero means no client timeout
func NewHTTPFetcher(baseURL, tmpDir string, timeout time.Duration) *HTTPFetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPFetcher{
		Client:  &http.Client{Timeout: timeout},
		BaseURL: baseURL,
		TmpDir:  tmpDir,
	}
}

// Fetch downloads the hour. 404 maps to ErrHourMissing; any other non-200
// status or transport failure is an error for this hour only
func (f *HTTPFetcher) Fetch(ctx context.Context, hour HourRef) (Source, error) {
	url := fmt.Sprintf("%s/%s%s", f.BaseURL, hour.String(), Suffix)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		// stream to a temp file below
	case http.StatusNotFound:
		return nil, ErrHourMissing
	default:
		return nil, fmt.Errorf("gharchive: unexpected status %d for %s", resp.StatusCode, url)
	}

	if f.TmpDir != "" {
		_ = os.MkdirAll(f.TmpDir, 0o755)
	}
	tmp, err := os.CreateTemp(f.TmpDir, hour.String()+"-*"+Suffix)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("gharchive: download %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, err
	}
	return &tempSource{path: tmp.Name()}, nil
}

// tempSource owns a downloaded temp file and deletes it on Close
type tempSource struct{ path string }

func (s *tempSource) Open() (io.ReadCloser, error) { return os.Open(s.path) }

func (s *tempSource) Close() error {
	err := os.Remove(s.path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
