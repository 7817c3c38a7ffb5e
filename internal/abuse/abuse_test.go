package abuse

import (
	"testing"
	"time"
)

var base = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func TestRapidStealFlagTripsAtThreshold(t *testing.T) {
	s := NewSignal()
	s.Record(SignalRapidSteal, base)
	s.Record(SignalRapidSteal, base.Add(5*time.Second))

	if flags := s.Flags(base.Add(5 * time.Second)); len(flags) != 0 {
		t.Fatalf("expected no flags below threshold, got %+v", flags)
	}

	s.Record(SignalRapidSteal, base.Add(10*time.Second))
	flags := s.Flags(base.Add(10 * time.Second))
	if len(flags) != 1 {
		t.Fatalf("expected one flag, got %+v", flags)
	}
	if flags[0].Code != "RAPID_STEALS" || flags[0].Severity != SeverityHigh || flags[0].Count != 3 {
		t.Errorf("unexpected flag %+v", flags[0])
	}
	if s.LastFlaggedAt != base.Add(10*time.Second) {
		t.Errorf("LastFlaggedAt = %v, want record instant", s.LastFlaggedAt)
	}
}

func TestFlagExpiresWithWindow(t *testing.T) {
	s := NewSignal()
	for i := 0; i < 3; i++ {
		s.Record(SignalRapidSteal, base.Add(time.Duration(i)*time.Second))
	}
	if len(s.Flags(base.Add(2*time.Second))) != 1 {
		t.Fatal("expected flag while events are in window")
	}

	// 30s window: all three events fall out
	if flags := s.Flags(base.Add(40 * time.Second)); len(flags) != 0 {
		t.Errorf("expected flag to expire, got %+v", flags)
	}
	if got := s.Count(SignalRapidSteal, base.Add(40*time.Second)); got != 0 {
		t.Errorf("count after expiry = %d, want 0", got)
	}
}

func TestFlagsSortBySeverityThenCode(t *testing.T) {
	s := NewSignal()
	now := base
	for i := 0; i < 3; i++ {
		s.Record(SignalFailedUpgrade, now)
	}
	for i := 0; i < 4; i++ {
		s.Record(SignalDuplicateAction, now)
	}
	for i := 0; i < 3; i++ {
		s.Record(SignalRapidSteal, now)
	}

	flags := s.Flags(now)
	if len(flags) != 3 {
		t.Fatalf("expected 3 flags, got %+v", flags)
	}
	wantOrder := []string{"RAPID_STEALS", "DUPLICATE_ACTION_SPAM", "UPGRADE_ABUSE"}
	for i, code := range wantOrder {
		if flags[i].Code != code {
			t.Errorf("position %d: got %s, want %s", i, flags[i].Code, code)
		}
	}
	if got := s.HighestSeverity(now); got != SeverityHigh {
		t.Errorf("HighestSeverity = %s, want high", got)
	}
}

func TestUnknownKindIgnored(t *testing.T) {
	s := NewSignal()
	s.Record(SignalKind("bogus"), base)
	if got := s.Count(SignalKind("bogus"), base); got != 0 {
		t.Errorf("unknown kind count = %d, want 0", got)
	}
}
