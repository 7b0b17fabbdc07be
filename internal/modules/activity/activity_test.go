package activity

import (
	"context"
	"testing"
	"time"

	"imperial-warden/internal/storage"

	"go.uber.org/zap"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestTracker(t *testing.T, clock *fakeClock) *Tracker {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	tracker := New(store, zap.NewNop())
	tracker.WithClock(clock)
	return tracker
}

func TestWeeklyTickFiresOnMonday(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)} // a Monday
	tracker := newTestTracker(t, clock)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		tracker.HandleMessage(ctx, "g1", "u1")
	}
	tracker.HandleMessage(ctx, "g1", "u2")

	mvp, fired, err := tracker.WeeklyTick(ctx, "g1")
	if err != nil {
		t.Fatalf("weekly tick: %v", err)
	}
	if !fired {
		t.Fatalf("expected reset on monday")
	}
	if mvp == nil || mvp.UserID != "u1" || mvp.MessagesWeek != 4 {
		t.Fatalf("unexpected mvp: %+v", mvp)
	}

	stats, _, err := tracker.Stats(ctx, "g1", "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.MessagesWeek != 0 || stats.MessagesTotal != 4 {
		t.Fatalf("reset should zero week only: %+v", stats)
	}
}

func TestWeeklyTickOncePerWeek(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(t, clock)
	ctx := context.Background()

	if _, fired, _ := tracker.WeeklyTick(ctx, "g1"); !fired {
		t.Fatalf("first monday tick should fire")
	}
	clock.now = clock.now.Add(6 * time.Hour)
	if _, fired, _ := tracker.WeeklyTick(ctx, "g1"); fired {
		t.Fatalf("second tick in the same week must not fire")
	}

	clock.now = clock.now.Add(7 * 24 * time.Hour) // next Monday
	if _, fired, _ := tracker.WeeklyTick(ctx, "g1"); !fired {
		t.Fatalf("next week's monday should fire again")
	}
}

func TestWeeklyTickSkipsOtherDays(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)} // a Wednesday
	tracker := newTestTracker(t, clock)

	if _, fired, _ := tracker.WeeklyTick(context.Background(), "g1"); fired {
		t.Fatalf("tick outside monday must not fire")
	}
}

func TestWeeklyTickNoMVPWhenIdle(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(t, clock)

	mvp, fired, err := tracker.WeeklyTick(context.Background(), "g1")
	if err != nil {
		t.Fatalf("weekly tick: %v", err)
	}
	if !fired || mvp != nil {
		t.Fatalf("idle week should reset without an mvp: fired=%t mvp=%+v", fired, mvp)
	}
}
