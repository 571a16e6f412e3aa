package config

import (
	"testing"
	"time"

	kit "ghcensus/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	root := New()
	svc := root.Prefix("SERVICE_")
	if got := svc.key("DBURL"); got != "SERVICE_DBURL" {
		t.Fatalf("key() = %q, want %q", got, "SERVICE_DBURL")
	}
	// nested prefix
	pg := svc.Prefix("PGSQL_")
	if got := pg.key("DBURL"); got != "SERVICE_PGSQL_DBURL" {
		t.Fatalf("nested key() = %q, want %q", got, "SERVICE_PGSQL_DBURL")
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_NAME", "  ghcensus ")
	if got := c.MustString("NAME"); got != "ghcensus" {
		t.Fatalf("MustString = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestRequire(t *testing.T) {
	c := New().Prefix("REQ_")
	t.Setenv("REQ_A", "1")
	t.Setenv("REQ_B", "2")
	kit.MustNotPanic(t, func() { c.Require("A", "B") })
	kit.MustPanic(t, func() { c.Require("A", "MISSING") })
}

func TestMayString(t *testing.T) {
	c := New().Prefix("S_")
	t.Setenv("S_SET", " v ")
	if got := c.MayString("SET", "d"); got != "v" {
		t.Fatalf("MayString = %q", got)
	}
	if got := c.MayString("UNSET", "d"); got != "d" {
		t.Fatalf("MayString default = %q", got)
	}
}

func TestMayInt(t *testing.T) {
	c := New().Prefix("I_")
	t.Setenv("I_N", " 8 ")
	if got := c.MayInt("N", 1); got != 8 {
		t.Fatalf("MayInt = %d", got)
	}
	if got := c.MayInt("UNSET", 4); got != 4 {
		t.Fatalf("MayInt default = %d", got)
	}
	t.Setenv("I_BAD", "x")
	if got := c.MayInt("BAD", 4); got != 4 {
		t.Fatalf("MayInt junk = %d, want default", got)
	}
}

func TestMayBool(t *testing.T) {
	c := New().Prefix("B_")
	t.Setenv("B_ON", "true")
	if !c.MayBool("ON", false) {
		t.Fatal("MayBool true expected")
	}
	if c.MayBool("UNSET", false) {
		t.Fatal("MayBool default expected")
	}
	t.Setenv("B_BAD", "notabool")
	if !c.MayBool("BAD", true) {
		t.Fatal("MayBool junk should yield default")
	}
}

func TestMayDuration(t *testing.T) {
	c := New().Prefix("D_")
	t.Setenv("D_T", "1500ms")
	if got := c.MayDuration("T", time.Second); got != 1500*time.Millisecond {
		t.Fatalf("MayDuration = %v", got)
	}
	if got := c.MayDuration("UNSET", time.Second); got != time.Second {
		t.Fatalf("MayDuration default = %v", got)
	}
	t.Setenv("D_BAD", "soon")
	if got := c.MayDuration("BAD", time.Second); got != time.Second {
		t.Fatalf("MayDuration junk = %v, want default", got)
	}
}
