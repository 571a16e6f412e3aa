package gharchive

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLocalFetcherMissingHour(t *testing.T) {
	t.Parallel()

	f := &LocalFetcher{Dir: t.TempDir()}
	_, err := f.Fetch(context.Background(), HourRef{2024, 1, 1, 3})
	if !errors.Is(err, ErrHourMissing) {
		t.Fatalf("want ErrHourMissing got %v", err)
	}
}

func TestLocalFetcherReopensSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	hr := HourRef{2024, 1, 1, 3}
	if err := os.WriteFile(filepath.Join(dir, hr.String()+Suffix), []byte("payload"), 0o600); err != nil {
		t.Fatal(err)
	}

	f := &LocalFetcher{Dir: dir}
	src, err := f.Fetch(context.Background(), hr)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	for range 2 {
		rc, err := src.Open()
		if err != nil {
			t.Fatal(err)
		}
		b, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil || string(b) != "payload" {
			t.Fatalf("read = %q err %v", b, err)
		}
	}
}

func TestHTTPFetcherStatuses(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/2024-01-01-3.json.gz":
			_, _ = w.Write([]byte("hello"))
		case "/2024-01-01-4.json.gz":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL, t.TempDir(), 5*time.Second)

	src, err := f.Fetch(context.Background(), HourRef{2024, 1, 1, 3})
	if err != nil {
		t.Fatal(err)
	}
	rc, err := src.Open()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != "hello" {
		t.Fatalf("body = %q", b)
	}
	path := src.(*tempSource).path
	if err := src.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("temp file should be removed, stat err = %v", err)
	}

	if _, err := f.Fetch(context.Background(), HourRef{2024, 1, 1, 4}); !errors.Is(err, ErrHourMissing) {
		t.Fatalf("404 should map to ErrHourMissing, got %v", err)
	}
	if _, err := f.Fetch(context.Background(), HourRef{2024, 1, 1, 5}); err == nil || errors.Is(err, ErrHourMissing) {
		t.Fatalf("500 should be a plain error, got %v", err)
	}
}
