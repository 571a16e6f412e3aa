package strings

import "testing"

func TestSQLNull(t *testing.T) {
	t.Parallel()

	if got := SQLNull("  "); got != nil {
		t.Fatalf("blank should bind NULL, got %#v", got)
	}
	if got := SQLNull("x"); got != "x" {
		t.Fatalf("SQLNull = %#v", got)
	}
}

func TestDeref(t *testing.T) {
	t.Parallel()

	if Deref(nil) != "" {
		t.Fatal("nil should deref to empty")
	}
	s := "v"
	if Deref(&s) != "v" {
		t.Fatal("Deref lost the value")
	}
}

func TestPtr(t *testing.T) {
	t.Parallel()

	if Ptr("") != nil {
		t.Fatal("empty should be nil")
	}
	p := Ptr("v")
	if p == nil || *p != "v" {
		t.Fatalf("Ptr = %v", p)
	}
}
