package guardrails

import (
	"context"
	"testing"
	"time"
)

func TestWithHourZeroInheritsParent(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	child, childCancel := WithHour(parent, Timeouts{})
	defer childCancel()

	pd, _ := parent.Deadline()
	cd, ok := child.Deadline()
	if !ok || !cd.Equal(pd) {
		t.Fatalf("zero hour budget must inherit the parent deadline: %v vs %v", cd, pd)
	}
}

func TestChildNeverExtendsParent(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	child, childCancel := ForFetch(parent, Timeouts{Fetch: time.Hour})
	defer childCancel()

	cd, ok := child.Deadline()
	if !ok {
		t.Fatal("child should carry a deadline")
	}
	if time.Until(cd) > time.Second {
		t.Fatalf("child deadline extended past parent: %v", time.Until(cd))
	}
}

func TestChildTightensParent(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	child, childCancel := ForRead(parent, Timeouts{Read: 20 * time.Millisecond})
	defer childCancel()

	select {
	case <-child.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("child should expire on its own budget")
	}
	if parent.Err() != nil {
		t.Fatal("parent must be unaffected")
	}
}

func TestRemaining(t *testing.T) {
	t.Parallel()

	if Remaining(context.Background()) != 0 {
		t.Fatal("no deadline means zero remaining")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if Remaining(ctx) <= 0 {
		t.Fatal("bounded context should have remaining budget")
	}
}
