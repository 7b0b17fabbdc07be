package state

import "testing"

func TestSnapshotIsolation(t *testing.T) {
	manager := NewManager(NewRecord())
	manager.Update(func(rec *Record) {
		rec.GuildID = "g1"
		rec.StaffTiers[1] = "r1"
	})

	snap := manager.Snapshot()
	snap.StaffTiers[1] = "tampered"
	snap.GuildID = "other"

	fresh := manager.Snapshot()
	if fresh.GuildID != "g1" || fresh.StaffTiers[1] != "r1" {
		t.Fatalf("snapshot mutation leaked into manager: %+v", fresh)
	}
}

func TestUpdateInvokesPersistHook(t *testing.T) {
	manager := NewManager(NewRecord())

	var persisted []Record
	manager.OnUpdate(func(rec Record) {
		persisted = append(persisted, rec)
	})

	manager.Update(func(rec *Record) {
		rec.GuildID = "g1"
		rec.PanicMode = true
	})

	if len(persisted) != 1 {
		t.Fatalf("expected 1 persist call, got %d", len(persisted))
	}
	if persisted[0].GuildID != "g1" || !persisted[0].PanicMode {
		t.Fatalf("unexpected persisted record: %+v", persisted[0])
	}
}

func TestNewRecordDefaults(t *testing.T) {
	rec := NewRecord()
	if !rec.AutomodEnabled || !rec.MessageTracking {
		t.Fatalf("automod and tracking should default on: %+v", rec)
	}
	if rec.PanicMode || rec.VoiceStay {
		t.Fatalf("panic and voice stay should default off: %+v", rec)
	}
}
