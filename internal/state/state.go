package state

import "sync"

// Record is the process-wide guild configuration. A single instance is
// created at startup and shared by reference through the Manager.
type Record struct {
	GuildID             string
	WelcomeChannelID    string
	SupportLogChannelID string
	BotLogChannelID     string
	AutoroleID          string
	VoiceChannelID      string
	VoiceStay           bool
	StaffTiers          map[int]string
	PanicMode           bool
	AutomodEnabled      bool
	MessageTracking     bool
}

func NewRecord() Record {
	return Record{
		StaffTiers:      make(map[int]string),
		AutomodEnabled:  true,
		MessageTracking: true,
	}
}

func (r Record) clone() Record {
	out := r
	out.StaffTiers = make(map[int]string, len(r.StaffTiers))
	for tier, roleID := range r.StaffTiers {
		out.StaffTiers[tier] = roleID
	}
	return out
}

type Manager struct {
	mu      sync.RWMutex
	rec     Record
	persist func(Record)
}

func NewManager(rec Record) *Manager {
	if rec.StaffTiers == nil {
		rec.StaffTiers = make(map[int]string)
	}
	return &Manager{rec: rec}
}

// OnUpdate registers a hook invoked with a snapshot after every Update.
func (m *Manager) OnUpdate(persist func(Record)) {
	m.mu.Lock()
	m.persist = persist
	m.mu.Unlock()
}

func (m *Manager) Snapshot() Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rec.clone()
}

func (m *Manager) Update(fn func(*Record)) Record {
	m.mu.Lock()
	fn(&m.rec)
	snapshot := m.rec.clone()
	persist := m.persist
	m.mu.Unlock()

	if persist != nil {
		persist(snapshot)
	}
	return snapshot
}
