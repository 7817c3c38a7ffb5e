// Package abuse keeps sliding-window counters of suspicious register activity
// and surfaces severity-ranked flags for manager visibility. Flags never block
// anything by themselves.
package abuse

import (
	"sort"
	"time"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

var severityRank = map[Severity]int{
	SeverityLow:    1,
	SeverityMedium: 2,
	SeverityHigh:   3,
}

// Rank orders severities for display sorting: low < medium < high.
func Rank(s Severity) int { return severityRank[s] }

type SignalKind string

const (
	SignalRapidSteal      SignalKind = "rapidSteal"
	SignalDuplicateAction SignalKind = "duplicateAction"
	SignalFailedUpgrade   SignalKind = "failedUpgrade"
)

// Rule defines one sliding-window detector.
type Rule struct {
	Kind      SignalKind
	Code      string
	Label     string
	Severity  Severity
	Threshold int
	Window    time.Duration
}

var Rules = []Rule{
	{
		Kind:      SignalRapidSteal,
		Code:      "RAPID_STEALS",
		Label:     "Rapid steal attempts",
		Severity:  SeverityHigh,
		Threshold: 3,
		Window:    30 * time.Second,
	},
	{
		Kind:      SignalDuplicateAction,
		Code:      "DUPLICATE_ACTION_SPAM",
		Label:     "Duplicate action spam",
		Severity:  SeverityMedium,
		Threshold: 4,
		Window:    45 * time.Second,
	},
	{
		Kind:      SignalFailedUpgrade,
		Code:      "UPGRADE_ABUSE",
		Label:     "Repeated ineligible tier upgrades",
		Severity:  SeverityLow,
		Threshold: 3,
		Window:    120 * time.Second,
	},
}

func ruleFor(kind SignalKind) (Rule, bool) {
	for _, rule := range Rules {
		if rule.Kind == kind {
			return rule, true
		}
	}
	return Rule{}, false
}

// SuspiciousFlag is one currently-tripped rule, with its as-of-now count.
type SuspiciousFlag struct {
	Code     string        `json:"code"`
	Label    string        `json:"label"`
	Severity Severity      `json:"severity"`
	Count    int           `json:"count"`
	WindowMs time.Duration `json:"-"`
}

// Signal tracks one register's raw event timestamps. Entries are pruned lazily
// to each rule's window on record and on read, so flags always reflect "as of
// now" windowing.
type Signal struct {
	events        map[SignalKind][]time.Time
	LastFlaggedAt time.Time
}

func NewSignal() *Signal {
	return &Signal{events: map[SignalKind][]time.Time{}}
}

// Record appends an occurrence of a signal kind at the given instant.
func (s *Signal) Record(kind SignalKind, now time.Time) {
	rule, ok := ruleFor(kind)
	if !ok {
		return
	}
	s.events[kind] = prune(append(s.events[kind], now), now, rule.Window)
	if len(s.events[kind]) >= rule.Threshold {
		s.LastFlaggedAt = now
	}
}

// Count returns the in-window occurrence count for a signal kind.
func (s *Signal) Count(kind SignalKind, now time.Time) int {
	rule, ok := ruleFor(kind)
	if !ok {
		return 0
	}
	s.events[kind] = prune(s.events[kind], now, rule.Window)
	return len(s.events[kind])
}

// Flags recomputes the tripped rules as of now, sorted by descending severity
// then code for stable display.
func (s *Signal) Flags(now time.Time) []SuspiciousFlag {
	var flags []SuspiciousFlag
	for _, rule := range Rules {
		count := s.Count(rule.Kind, now)
		if count >= rule.Threshold {
			flags = append(flags, SuspiciousFlag{
				Code:     rule.Code,
				Label:    rule.Label,
				Severity: rule.Severity,
				Count:    count,
				WindowMs: rule.Window,
			})
		}
	}
	sort.SliceStable(flags, func(i, j int) bool {
		if Rank(flags[i].Severity) != Rank(flags[j].Severity) {
			return Rank(flags[i].Severity) > Rank(flags[j].Severity)
		}
		return flags[i].Code < flags[j].Code
	})
	return flags
}

// HighestSeverity returns the max severity over the currently tripped flags,
// or "" when none are tripped.
func (s *Signal) HighestSeverity(now time.Time) Severity {
	var highest Severity
	for _, flag := range s.Flags(now) {
		if Rank(flag.Severity) > Rank(highest) {
			highest = flag.Severity
		}
	}
	return highest
}

func prune(events []time.Time, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	out := events[:0]
	for _, at := range events {
		if at.After(cutoff) {
			out = append(out, at)
		}
	}
	return out
}
