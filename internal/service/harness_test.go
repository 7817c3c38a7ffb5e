package service

import (
	"time"

	"github.com/patrick-gordon/umbra-registers/internal/bridge"
	"github.com/patrick-gordon/umbra-registers/internal/clock"
	"github.com/patrick-gordon/umbra-registers/internal/domain"
)

const testRegisterID = "store-1-register-1"

var testStart = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

// stubRand lets a test steer the jam and instant-block draws mid-flow.
type stubRand struct{ v float64 }

func (r *stubRand) Float64() float64 { return r.v }

// cueLog counts the audio cues the engine asked for.
type cueLog struct {
	chimes int
	sirens int
}

func (c *cueLog) PaymentChime()      { c.chimes++ }
func (c *cueLog) StealBlockedSiren() { c.sirens++ }

type testEngine struct {
	svc   *RegisterService
	clock *clock.Fake
	rec   *bridge.Recorder
	rand  *stubRand
	cues  *cueLog
}

func newTestEngine() *testEngine {
	fake := clock.NewFake(testStart)
	rec := bridge.NewRecorder()
	rnd := &stubRand{v: 0.99}
	cues := &cueLog{}
	svc := NewRegisterService(Config{
		Clock:      fake,
		Rand:       rnd,
		Bridge:     rec,
		Cues:       cues,
		Standalone: true,
	})
	return &testEngine{svc: svc, clock: fake, rec: rec, rand: rnd, cues: cues}
}

func (e *testEngine) session() domain.Session {
	e.svc.mu.Lock()
	defer e.svc.mu.Unlock()
	return e.svc.state.session(testRegisterID)
}

func (e *testEngine) tray() []domain.TrayLine {
	e.svc.mu.Lock()
	defer e.svc.mu.Unlock()
	return cloneTray(e.svc.state.tray(testRegisterID))
}

func (e *testEngine) stats() domain.RegisterStats {
	e.svc.mu.Lock()
	defer e.svc.mu.Unlock()
	return e.svc.state.StatsByRegister[testRegisterID]
}

func (e *testEngine) setTier(level int) {
	e.svc.mu.Lock()
	defer e.svc.mu.Unlock()
	e.svc.state.TierByRegister[testRegisterID] = level
}

// clearMinigame wipes the sticky minigame outcome so another steal can start
// within the same transaction.
func (e *testEngine) clearMinigame() {
	e.svc.mu.Lock()
	defer e.svc.mu.Unlock()
	sess := e.svc.state.session(testRegisterID)
	sess.StealMinigame = domain.StealState{}
	sess.Phase = domain.PhaseCustomer
	e.svc.state.SessionsByRegister[testRegisterID] = sess
}

func (e *testEngine) sentNames() []string {
	return e.rec.Names()
}

func containsName(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}
