package gharchive

import (
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	perr "ghcensus/internal/platform/errors"
)

// Suffix is the fixed file suffix of archive hours
const Suffix = ".json.gz"

// hourNameRe matches the archive base name: date components padded, hour not
var hourNameRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(\d{1,2})$`)

// ParseHourName parses an archive base name like "2024-01-02-9".
// Returns false for names that do not match or carry an out-of-range hour
func ParseHourName(base string) (HourRef, bool) {
	m := hourNameRe.FindStringSubmatch(base)
	if m == nil {
		return HourRef{}, false
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	h, _ := strconv.Atoi(m[4])
	if mo < 1 || mo > 12 || d < 1 || d > 31 || h > 23 {
		return HourRef{}, false
	}
	return HourRef{Year: y, Month: mo, Day: d, Hour: h}, true
}

// LocalShard is an archive hour present on disk
type LocalShard struct {
	Hour HourRef
	Path string
}

// ScanDir enumerates archive files in dir and returns them in chronological
// order. Files whose names do not match the archive pattern are ignored
func ScanDir(dir string) ([]LocalShard, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []LocalShard
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, Suffix) {
			continue
		}
		hr, ok := ParseHourName(strings.TrimSuffix(name, Suffix))
		if !ok {
			continue
		}
		out = append(out, LocalShard{Hour: hr, Path: dir + string(os.PathSeparator) + name})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Hour.SortKey() < out[j].Hour.SortKey()
	})
	return out, nil
}

// HoursInRange expands [startDay, endDay] into 24 HourRefs per calendar day,
// chronologically. Both bounds are truncated to their UTC day. Fails when the
// range is inverted or endDay lies beyond today relative to now
func HoursInRange(startDay, endDay, now time.Time) ([]HourRef, error) {
	start := truncateDay(startDay)
	end := truncateDay(endDay)
	if end.Before(start) {
		return nil, perr.InvalidArgf("gharchive: start date %s after end date %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	if end.After(truncateDay(now)) {
		return nil, perr.InvalidArgf("gharchive: end date %s is in the future",
			end.Format("2006-01-02"))
	}

	var out []HourRef
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		for h := 0; h < 24; h++ {
			out = append(out, NewHourRef(day.Add(time.Duration(h)*time.Hour)))
		}
	}
	return out, nil
}

func truncateDay(t time.Time) time.Time {
	ut := t.UTC()
	return time.Date(ut.Year(), ut.Month(), ut.Day(), 0, 0, 0, 0, time.UTC)
}
