package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/patrick-gordon/umbra-registers/internal/bridge"
	"github.com/patrick-gordon/umbra-registers/internal/clock"
	"github.com/patrick-gordon/umbra-registers/internal/domain"
)

func boolPtr(v bool) *bool { return &v }

// newHostedEngine builds an engine without the standalone bypass, so
// membership gating actually bites.
func newHostedEngine() *testEngine {
	fake := clock.NewFake(testStart)
	rec := bridge.NewRecorder()
	rnd := &stubRand{v: 0.99}
	cues := &cueLog{}
	svc := NewRegisterService(Config{
		Clock:  fake,
		Rand:   rnd,
		Bridge: rec,
		Cues:   cues,
	})
	return &testEngine{svc: svc, clock: fake, rec: rec, rand: rnd, cues: cues}
}

func hostMsg(t *testing.T, action string, payload any) domain.HostMessage {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return domain.HostMessage{Action: action, Payload: raw}
}

func TestResolveMembership(t *testing.T) {
	cases := []struct {
		name     string
		m        domain.Membership
		ic       *domain.InteractionContext
		member   bool
		resolved bool
	}{
		{"nothing", domain.Membership{}, nil, false, false},
		{"flag true", domain.Membership{IsOrganizationMember: boolPtr(true)}, nil, true, true},
		{"explicit false beats id", domain.Membership{IsOrgMember: boolPtr(false), OrganizationID: "org-1"}, nil, false, true},
		{"org id alone", domain.Membership{OrgID: "org-1"}, nil, true, true},
		{"blank id says nothing", domain.Membership{BusinessID: "   "}, nil, false, false},
		{"nested flag", domain.Membership{}, &domain.InteractionContext{
			Membership: domain.Membership{OrganizationMember: boolPtr(true)},
		}, true, true},
		{"nested id", domain.Membership{}, &domain.InteractionContext{
			Membership: domain.Membership{BusinessID: "biz-7"},
		}, true, true},
		{"outer flag beats nested", domain.Membership{IsBusinessMember: boolPtr(false)}, &domain.InteractionContext{
			Membership: domain.Membership{OrgID: "org-1"},
		}, false, true},
	}
	for _, tc := range cases {
		member, resolved := ResolveMembership(tc.m, tc.ic)
		if member != tc.member || resolved != tc.resolved {
			t.Errorf("%s: got (%v, %v), want (%v, %v)", tc.name, member, resolved, tc.member, tc.resolved)
		}
	}
}

func TestOpenRegisterForcesCustomerViewOnNonMembers(t *testing.T) {
	e := newHostedEngine()
	err := e.svc.HandleHostMessage(hostMsg(t, domain.ActionOpenRegister, map[string]any{
		"role": "employee",
		"view": "employee",
	}))
	if err != nil {
		t.Fatalf("HandleHostMessage: %v", err)
	}

	snap := e.svc.Snapshot()
	if snap.View != ViewCustomer {
		t.Errorf("view = %q, want customer for an unresolved membership", snap.View)
	}
	if snap.CurrentRole != domain.RoleEmployee || !snap.UIVisible {
		t.Errorf("role %q visible %v", snap.CurrentRole, snap.UIVisible)
	}
}

func TestOpenRegisterHonorsMemberView(t *testing.T) {
	e := newHostedEngine()
	e.svc.HandleHostMessage(hostMsg(t, domain.ActionOpenRegister, map[string]any{
		"role":           "manager",
		"organizationId": "org-1",
		"storeId":        "store-1",
		"registerId":     testRegisterID,
	}))

	snap := e.svc.Snapshot()
	if snap.View != ViewManager {
		t.Errorf("view = %q, want the role default manager view", snap.View)
	}
	if !snap.IsOrgMember {
		t.Error("org id must resolve membership")
	}
}

func TestOpenRegisterIgnoresUnknownStore(t *testing.T) {
	e := newHostedEngine()
	e.svc.HandleHostMessage(hostMsg(t, domain.ActionOpenRegister, map[string]any{
		"role":    "employee",
		"storeId": "no-such-store",
	}))
	if snap := e.svc.Snapshot(); snap.ActiveStoreID != "store-1" {
		t.Errorf("active store = %q, must stay put", snap.ActiveStoreID)
	}
}

func TestCloseRegisterResets(t *testing.T) {
	e := newHostedEngine()
	e.svc.HandleHostMessage(hostMsg(t, domain.ActionOpenRegister, map[string]any{
		"role": "manager", "orgId": "org-1",
	}))
	e.svc.HandleHostMessage(domain.HostMessage{Action: domain.ActionCloseRegister})

	snap := e.svc.Snapshot()
	if snap.UIVisible || snap.IsOrgMember || snap.View != ViewCustomer {
		t.Errorf("close left state behind: %+v", snap)
	}
	if snap.InteractionContext != nil {
		t.Error("interaction context must be dropped on close")
	}
}

func TestSetRoleKeepsMembershipWhenUnresolved(t *testing.T) {
	e := newHostedEngine()
	e.svc.HandleHostMessage(hostMsg(t, domain.ActionSetRole, map[string]any{
		"role": "employee", "isOrgMember": true,
	}))
	if snap := e.svc.Snapshot(); !snap.IsOrgMember {
		t.Fatal("membership should be granted")
	}

	// no membership keys at all: prior answer stands
	e.svc.HandleHostMessage(hostMsg(t, domain.ActionSetRole, map[string]any{
		"role": "manager",
	}))
	snap := e.svc.Snapshot()
	if !snap.IsOrgMember || snap.CurrentRole != domain.RoleManager {
		t.Errorf("snapshot = role %q member %v", snap.CurrentRole, snap.IsOrgMember)
	}

	// explicit false revokes
	e.svc.HandleHostMessage(hostMsg(t, domain.ActionSetRole, map[string]any{
		"role": "manager", "isOrgMember": false, "view": "manager",
	}))
	snap = e.svc.Snapshot()
	if snap.IsOrgMember {
		t.Error("explicit false must revoke membership")
	}
	if snap.View != ViewCustomer {
		t.Errorf("view = %q, non-members cannot take the manager view", snap.View)
	}
}

func TestUnknownActionIgnored(t *testing.T) {
	e := newHostedEngine()
	if err := e.svc.HandleHostMessage(domain.HostMessage{Action: "teleportPlayer"}); err != nil {
		t.Errorf("unknown action must not error, got %v", err)
	}
}

func TestMalformedPayloadReturnsError(t *testing.T) {
	e := newHostedEngine()
	msg := domain.HostMessage{Action: domain.ActionSetRole, Payload: json.RawMessage(`{"role":42}`)}
	if err := e.svc.HandleHostMessage(msg); err == nil {
		t.Error("malformed payload must surface an error")
	}
}

func TestSyncStateLegacyAliases(t *testing.T) {
	e := newHostedEngine()
	e.svc.HandleHostMessage(hostMsg(t, domain.ActionSyncState, map[string]any{
		"registerLevelsByRegister": map[string]int{testRegisterID: 4},
		"statsByRegister": map[string]domain.RegisterStats{
			testRegisterID: {TotalSales: 42, PaidTransactions: 3},
		},
	}))

	e.svc.mu.Lock()
	level := e.svc.state.tierLevel(testRegisterID)
	st := e.svc.state.StatsByRegister[testRegisterID]
	e.svc.mu.Unlock()
	if level != 4 {
		t.Errorf("tier = %d, want 4 via the legacy key", level)
	}
	if st.TotalSales != 42 || st.PaidTransactions != 3 {
		t.Errorf("stats = %+v", st)
	}
}

func TestSyncStateRejectsNonPositiveTier(t *testing.T) {
	e := newHostedEngine()
	e.svc.HandleHostMessage(hostMsg(t, domain.ActionSyncState, map[string]any{
		"registerTierByRegister": map[string]int{testRegisterID: 0},
	}))
	e.svc.mu.Lock()
	level := e.svc.state.tierLevel(testRegisterID)
	e.svc.mu.Unlock()
	if level != 1 {
		t.Errorf("tier = %d, zero must be ignored", level)
	}
}

func TestSyncStateInteractionContextNullVsAbsent(t *testing.T) {
	e := newHostedEngine()
	e.svc.HandleHostMessage(hostMsg(t, domain.ActionSyncState, map[string]any{
		"interactionContext": map[string]any{"businessId": "burgershot"},
	}))
	if snap := e.svc.Snapshot(); snap.InteractionContext == nil ||
		snap.InteractionContext.BusinessID != "burgershot" {
		t.Fatalf("context not applied: %+v", snap.InteractionContext)
	}

	// absent key: context untouched
	e.svc.HandleHostMessage(hostMsg(t, domain.ActionSyncState, map[string]any{
		"view": "customer",
	}))
	if snap := e.svc.Snapshot(); snap.InteractionContext == nil {
		t.Fatal("absent key must not clear the context")
	}

	// explicit null: context cleared
	e.svc.HandleHostMessage(domain.HostMessage{
		Action:  domain.ActionSyncState,
		Payload: json.RawMessage(`{"interactionContext":null}`),
	})
	if snap := e.svc.Snapshot(); snap.InteractionContext != nil {
		t.Errorf("explicit null must clear the context, got %+v", snap.InteractionContext)
	}
}

func TestSyncStateSessionPatchDisarmsTimers(t *testing.T) {
	e := newTestEngine()
	e.svc.AddToTray("1")
	e.svc.RingUp(context.Background())

	e.svc.HandleHostMessage(hostMsg(t, domain.ActionSyncState, map[string]any{
		"sessionsByRegister": map[string]domain.Session{
			testRegisterID: domain.NewSession(),
		},
	}))
	e.clock.Advance(10 * time.Second)

	sess := e.session()
	if sess.IsRungUp || sess.IsProcessing {
		t.Errorf("patched session resurrected by a stale timer: %+v", sess)
	}
	if containsName(e.sentNames(), domain.EventRingUp) {
		t.Error("stale ring-up completion must not fire")
	}
}

func TestSyncStateUnknownKeysDropped(t *testing.T) {
	e := newHostedEngine()
	err := e.svc.HandleHostMessage(hostMsg(t, domain.ActionSyncState, map[string]any{
		"view":       "customer",
		"cashDrawer": map[string]any{"balance": 9999},
	}))
	if err != nil {
		t.Fatalf("unknown keys must be dropped, not fatal: %v", err)
	}
	if snap := e.svc.Snapshot(); snap.View != ViewCustomer {
		t.Errorf("view = %q, allow-listed key must still apply", snap.View)
	}
}

func TestOpenInteractionAsRole(t *testing.T) {
	e := newHostedEngine()
	e.svc.OpenInteractionAsRole(context.Background(), "customer", "burgershot", "store-1-register-1", "")

	snap := e.svc.Snapshot()
	if snap.IsOrgMember || snap.View != ViewCustomer {
		t.Errorf("customer entry granted too much: member %v view %q", snap.IsOrgMember, snap.View)
	}
	if !containsName(e.sentNames(), domain.EventOpenRegister) {
		t.Errorf("openRegister not announced: %v", e.sentNames())
	}

	e.svc.OpenInteractionAsRole(context.Background(), "manager", "burgershot", "store-1-register-1", "")
	snap = e.svc.Snapshot()
	if !snap.IsOrgMember || snap.View != ViewManager {
		t.Errorf("manager entry: member %v view %q", snap.IsOrgMember, snap.View)
	}
	if snap.InteractionContext == nil || snap.InteractionContext.BusinessID != "burgershot" {
		t.Errorf("interaction context = %+v", snap.InteractionContext)
	}
}
