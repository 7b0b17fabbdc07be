package staffwatch

import (
	"sort"
	"sync"
	"time"
)

const (
	wellnessThreshold = 20
	rapidThreshold    = 10
	rapidGap          = 2 * time.Minute
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type counters struct {
	actions    int
	today      int
	lastAction time.Time
}

type Stats struct {
	StaffID    string
	Actions    int
	Today      int
	LastAction time.Time
}

type AlertKind int

const (
	AlertWellness AlertKind = iota
	AlertRapidRate
)

type Alert struct {
	StaffID string
	Kind    AlertKind
	Today   int
}

// Monitor tracks moderator action counters and raises burnout or abuse
// signals on periodic sweeps.
type Monitor struct {
	mu      sync.Mutex
	clock   Clock
	entries map[string]*counters
}

func New() *Monitor {
	return &Monitor{
		clock:   realClock{},
		entries: make(map[string]*counters),
	}
}

func (m *Monitor) WithClock(clock Clock) {
	m.clock = clock
}

func (m *Monitor) RecordAction(staffID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	item := m.entries[staffID]
	if item == nil {
		item = &counters{}
		m.entries[staffID] = item
	}
	if !sameUTCDay(item.lastAction, now) {
		item.today = 0
	}
	item.actions++
	item.today++
	item.lastAction = now
}

// Sweep rolls over stale daily counters and returns the alerts the
// current state warrants. Called from a periodic tick.
func (m *Monitor) Sweep() []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	var alerts []Alert
	for staffID, item := range m.entries {
		if !sameUTCDay(item.lastAction, now) {
			item.today = 0
			continue
		}
		if item.today >= wellnessThreshold {
			alerts = append(alerts, Alert{StaffID: staffID, Kind: AlertWellness, Today: item.today})
		}
		if item.today >= rapidThreshold && now.Sub(item.lastAction) < rapidGap {
			alerts = append(alerts, Alert{StaffID: staffID, Kind: AlertRapidRate, Today: item.today})
		}
	}
	return alerts
}

func (m *Monitor) Snapshot() []Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	out := make([]Stats, 0, len(m.entries))
	for staffID, item := range m.entries {
		today := item.today
		if !sameUTCDay(item.lastAction, now) {
			today = 0
		}
		out = append(out, Stats{
			StaffID:    staffID,
			Actions:    item.actions,
			Today:      today,
			LastAction: item.lastAction,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Actions > out[j].Actions
	})
	return out
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
