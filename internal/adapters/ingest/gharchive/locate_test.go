package gharchive

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseHourName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		base string
		want HourRef
		ok   bool
	}{
		{"2024-01-02-9", HourRef{2024, 1, 2, 9}, true},
		{"2024-01-02-23", HourRef{2024, 1, 2, 23}, true},
		{"2024-01-02-0", HourRef{2024, 1, 2, 0}, true},
		{"2024-13-02-9", HourRef{}, false}, // bad month
		{"2024-01-02-24", HourRef{}, false},
		{"2024-01-02", HourRef{}, false},
		{"notadate", HourRef{}, false},
	}
	for _, c := range cases {
		got, ok := ParseHourName(c.base)
		if ok != c.ok || got != c.want {
			t.Errorf("ParseHourName(%q) = %v,%v want %v,%v", c.base, got, ok, c.want, c.ok)
		}
	}
}

func TestHourRefSortKeyOrdersNumerically(t *testing.T) {
	t.Parallel()

	// hour 2 must sort before hour 10 even though "10" < "2" as raw strings
	a := HourRef{2024, 1, 1, 2}
	b := HourRef{2024, 1, 1, 10}
	c := HourRef{2024, 1, 2, 9}
	if !(a.SortKey() < b.SortKey() && b.SortKey() < c.SortKey()) {
		t.Fatalf("sort keys out of order: %q %q %q", a.SortKey(), b.SortKey(), c.SortKey())
	}
}

func TestScanDirChronological(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{
		"2024-01-01-10.json.gz",
		"2024-01-01-2.json.gz",
		"2024-01-02-9.json.gz",
		"README.txt",          // ignored
		"2024-99-01-2.json.gz", // bad month, ignored
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	shards, err := ScanDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, s := range shards {
		got = append(got, s.Hour.String())
	}
	want := []string{"2024-01-01-2", "2024-01-01-10", "2024-01-02-9"}
	if len(got) != len(want) {
		t.Fatalf("shards = %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("shards = %v want %v", got, want)
		}
	}
}

func TestHoursInRange(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	hours, err := HoursInRange(start, end, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(hours) != 48 {
		t.Fatalf("len = %d want 48", len(hours))
	}
	if hours[0].String() != "2024-01-01-0" || hours[47].String() != "2024-01-02-23" {
		t.Fatalf("bounds wrong: %s .. %s", hours[0], hours[47])
	}

	if _, err := HoursInRange(end, start, now); err == nil {
		t.Fatal("inverted range should fail")
	}
	future := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	if _, err := HoursInRange(start, future, now); err == nil {
		t.Fatal("future end should fail")
	}
}
