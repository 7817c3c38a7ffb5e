// Package service owns the register engine: one explicit state container per
// RegisterService, every mutation routed through action methods, and the
// bridge to the host game client. Guard-rejected actions are silent no-ops,
// contractual non-events rather than errors.
package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/patrick-gordon/umbra-registers/internal/abuse"
	"github.com/patrick-gordon/umbra-registers/internal/bridge"
	"github.com/patrick-gordon/umbra-registers/internal/clock"
	"github.com/patrick-gordon/umbra-registers/internal/domain"
	"github.com/patrick-gordon/umbra-registers/internal/pricing"
)

const progressTickInterval = 90 * time.Millisecond

// Config wires the engine's collaborators. Zero-value fields fall back to
// production defaults (wall clock, time-seeded rand, no-op bridge and cues).
type Config struct {
	Clock  clock.Clock
	Rand   clock.Rand
	Bridge bridge.Client
	Cues   Cues
	Logger *zap.SugaredLogger

	// Standalone grants organization access without a host, the way the
	// original overlay unlocks all views outside the game client.
	Standalone bool
}

// RegisterService is the top-level store composing pricing, catalog views,
// the per-register session state machine, abuse tracking and statistics.
// Every action is atomic under one mutex; registers are otherwise fully
// independent and may be in flight simultaneously.
type RegisterService struct {
	mu    sync.Mutex
	state *engineState

	signals map[string]*abuse.Signal

	clock      clock.Clock
	rand       clock.Rand
	bridge     bridge.Client
	cues       Cues
	logger     *zap.SugaredLogger
	standalone bool

	// Generation counters disarm stale timers: a tick or deadline scheduled
	// for a superseded ring-up or minigame must never resurrect state.
	procSeq    map[string]int
	gameSeq    map[string]int
	gameTimers map[string]clock.Timer
}

func NewRegisterService(cfg Config) *RegisterService {
	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	r := cfg.Rand
	if r == nil {
		r = clock.NewRand(time.Now().UnixNano())
	}
	b := cfg.Bridge
	if b == nil {
		b = bridge.Noop{}
	}
	cues := cfg.Cues
	if cues == nil {
		cues = NoopCues{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &RegisterService{
		state:      newEngineState(),
		signals:    map[string]*abuse.Signal{},
		clock:      c,
		rand:       r,
		bridge:     b,
		cues:       cues,
		logger:     logger,
		standalone: cfg.Standalone,
		procSeq:    map[string]int{},
		gameSeq:    map[string]int{},
		gameTimers: map[string]clock.Timer{},
	}
}

func (s *RegisterService) signal(registerID string) *abuse.Signal {
	sig, ok := s.signals[registerID]
	if !ok {
		sig = abuse.NewSignal()
		s.signals[registerID] = sig
	}
	return sig
}

func (s *RegisterService) hasOrgAccessLocked() bool {
	return s.state.IsOrgMember || s.standalone
}

func (s *RegisterService) isManagerLocked() bool {
	return s.hasOrgAccessLocked() && s.state.CurrentRole == domain.RoleManager
}

func (s *RegisterService) canUseEmployeeActionsLocked() bool {
	return s.hasOrgAccessLocked() &&
		(s.state.CurrentRole == domain.RoleManager || s.state.CurrentRole == domain.RoleEmployee)
}

// send posts one event to the host with consistent pending/error bookkeeping.
// It is called without the state lock held so a slow host never stalls other
// registers; registerID attributes transport-reported abuse signals.
func (s *RegisterService) send(ctx context.Context, eventName string, payload any, registerID string) bridge.Response {
	s.mu.Lock()
	s.state.PendingAction = eventName
	s.state.BridgeError = ""
	s.mu.Unlock()

	resp := s.bridge.Send(ctx, eventName, payload)

	s.mu.Lock()
	s.state.LastEvent = eventName
	s.state.PendingAction = ""
	if !resp.OK && resp.Error != nil {
		normalized := bridge.Normalize(*resp.Error, bridge.CodeBridgeError)
		s.state.BridgeError = normalized.Banner()
		now := s.clock.Now()
		if registerID != "" {
			switch normalized.Code {
			case bridge.CodeDuplicateAction:
				s.signal(registerID).Record(abuse.SignalDuplicateAction, now)
			case bridge.CodeTierNotEligible:
				s.signal(registerID).Record(abuse.SignalFailedUpgrade, now)
			}
		}
		s.logger.Warnw("host event failed",
			"event", eventName, "code", normalized.Code, "retryable", bridge.Retryable(normalized.Code))
	}
	s.mu.Unlock()
	return resp
}

// ClearBridgeError dismisses the transport error banner.
func (s *RegisterService) ClearBridgeError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.BridgeError = ""
}

// CloseUI hides the overlay and notifies the host.
func (s *RegisterService) CloseUI(ctx context.Context) {
	s.mu.Lock()
	s.state.UIVisible = false
	s.mu.Unlock()
	s.send(ctx, domain.EventClose, map[string]any{}, "")
}

func (s *RegisterService) pricingContextLocked() pricing.Context {
	return pricing.Context{Now: s.clock.Now(), ActiveEventTags: s.state.ActiveEventTags}
}
