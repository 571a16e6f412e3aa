package logger

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
)

// The root logger is process-wide and initializes once, so every test in this
// package shares the same buffer-backed sink
var sink bytes.Buffer

func TestMain(m *testing.M) {
	Init(Options{Level: "debug", Format: "json", Service: "test", Writer: &sink})
	os.Exit(m.Run())
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{" DEBUG ", zerolog.DebugLevel},
		{"junk", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, c := range cases {
		if got := parseLevel(c.in); got != c.want {
			t.Errorf("parseLevel(%q) = %v want %v", c.in, got, c.want)
		}
	}
}

func TestRootCarriesService(t *testing.T) {
	sink.Reset()
	Get().Info().Msg("hello")
	if out := sink.String(); !bytes.Contains([]byte(out), []byte(`"service":"test"`)) {
		t.Fatalf("missing service field: %s", out)
	}
}

func TestContextEnrichment(t *testing.T) {
	sink.Reset()
	ctx := WithShard(WithRun(context.Background(), "run-123"), "2024-01-01-2")
	C(ctx).Info().Msg("shard event")
	out := sink.String()
	for _, want := range []string{`"run_id":"run-123"`, `"shard":"2024-01-01-2"`} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Fatalf("missing %s in %s", want, out)
		}
	}

	// a bare context stays unenriched
	sink.Reset()
	C(context.Background()).Info().Msg("plain")
	if out := sink.String(); bytes.Contains([]byte(out), []byte("run_id")) {
		t.Fatalf("unexpected run_id: %s", out)
	}
}

func TestNamed(t *testing.T) {
	sink.Reset()
	Named("pg").Info().Msg("component event")
	if out := sink.String(); !bytes.Contains([]byte(out), []byte(`"component":"pg"`)) {
		t.Fatalf("missing component field: %s", out)
	}
}
