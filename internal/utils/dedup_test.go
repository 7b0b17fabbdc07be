package utils

import (
	"testing"
	"time"
)

func TestRecentActionsWindow(t *testing.T) {
	now := time.Now()
	dedup := NewRecentActions(10 * time.Second)
	dedup.WithClock(func() time.Time { return now })

	if !dedup.Observe("u1", "ban") {
		t.Fatalf("first observation should be fresh")
	}
	if dedup.Observe("u1", "ban") {
		t.Fatalf("repeat within window should be suppressed")
	}
	if !dedup.Observe("u1", "kick") {
		t.Fatalf("different kind should be independent")
	}
	if !dedup.Observe("u2", "ban") {
		t.Fatalf("different target should be independent")
	}

	now = now.Add(11 * time.Second)
	if !dedup.Observe("u1", "ban") {
		t.Fatalf("expired stamp should be fresh again")
	}
}

func TestRecentActionsStamp(t *testing.T) {
	now := time.Now()
	dedup := NewRecentActions(10 * time.Second)
	dedup.WithClock(func() time.Time { return now })

	dedup.Stamp("u1", "timeout")
	if dedup.Observe("u1", "timeout") {
		t.Fatalf("stamped pair should be suppressed")
	}
}
