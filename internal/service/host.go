package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/patrick-gordon/umbra-registers/internal/domain"
)

// ResolveMembership turns the loose membership shapes hosts send into a
// tri-state answer. Boolean flags win in declaration order, then a non-blank
// organization id string, then the same checks on a nested interaction. The
// second return is false when the payload says nothing about membership at
// all, in which case the caller keeps its current value.
func ResolveMembership(m domain.Membership, ic *domain.InteractionContext) (bool, bool) {
	for _, flag := range []*bool{m.IsOrganizationMember, m.IsOrgMember, m.OrganizationMember, m.IsBusinessMember} {
		if flag != nil {
			return *flag, true
		}
	}
	for _, id := range []string{m.OrganizationID, m.OrgID, m.BusinessID} {
		if strings.TrimSpace(id) != "" {
			return true, true
		}
	}
	if ic != nil {
		for _, flag := range []*bool{ic.IsOrganizationMember, ic.IsOrgMember, ic.OrganizationMember, ic.IsBusinessMember} {
			if flag != nil {
				return *flag, true
			}
		}
		for _, id := range []string{ic.OrganizationID, ic.OrgID, ic.BusinessID} {
			if strings.TrimSpace(id) != "" {
				return true, true
			}
		}
	}
	return false, false
}

func defaultViewForRole(role string) string {
	if role == string(domain.RoleManager) {
		return string(ViewManager)
	}
	return role
}

// SetView switches the visible panel if the current role is allowed to see it.
func (s *RegisterService) SetView(view View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setViewLocked(view)
}

func (s *RegisterService) setViewLocked(view View) {
	role := s.state.CurrentRole
	if !s.hasOrgAccessLocked() {
		role = domain.RoleCustomer
	}
	for _, allowed := range allowedViewsFor(role) {
		if allowed == view {
			s.state.View = view
			return
		}
	}
}

// SetRole applies a host-pushed role change. Membership only updates when the
// payload actually resolves it; a requested view is honored only for members.
func (s *RegisterService) SetRole(p domain.SetRolePayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	role := p.Role
	if role == "" {
		role = string(domain.RoleEmployee)
	}
	s.state.CurrentRole = domain.Role(role)
	member, resolved := ResolveMembership(p.Membership, nil)
	if resolved {
		s.state.IsOrgMember = member
	}
	if p.View != "" {
		if s.state.IsOrgMember || s.standalone {
			s.state.View = View(p.View)
		} else {
			s.state.View = ViewCustomer
		}
	}
}

// OpenInteractionAsRole simulates entering a register from a world trigger in
// a given role, then announces the open to the host. The prototype grants
// membership to manager and employee roles without asking anyone.
func (s *RegisterService) OpenInteractionAsRole(ctx context.Context, role, businessID, interactionID, registerID string) {
	s.mu.Lock()
	if registerID == "" {
		registerID = s.state.ActiveRegisterID
	}
	requestedView := defaultViewForRole(role)
	isMember := role == string(domain.RoleManager) || role == string(domain.RoleEmployee)
	s.state.UIVisible = true
	s.state.IsOrgMember = isMember
	s.state.CurrentRole = domain.Role(role)
	if isMember {
		s.state.View = View(requestedView)
	} else {
		s.state.View = ViewCustomer
	}
	s.state.ActiveRegisterID = registerID
	s.state.InteractionContext = &domain.InteractionContext{BusinessID: businessID, InteractionID: interactionID}
	storeID := s.state.ActiveStoreID
	s.mu.Unlock()

	s.send(ctx, domain.EventOpenRegister, map[string]any{
		"role":       role,
		"view":       requestedView,
		"storeId":    storeID,
		"registerId": registerID,
		"interaction": map[string]string{
			"businessId":    businessID,
			"interactionId": interactionID,
		},
	}, registerID)
}

// SetActiveEventTags replaces the event tags consulted by event discounts.
func (s *RegisterService) SetActiveEventTags(tags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ActiveEventTags = append([]string(nil), tags...)
}

// HandleHostMessage dispatches one inbound host message. Unknown actions are
// ignored; malformed payloads of known actions are ignored too, logged at
// warn level so a misbehaving host script is visible.
func (s *RegisterService) HandleHostMessage(msg domain.HostMessage) error {
	switch msg.Action {
	case domain.ActionOpenRegister:
		var p domain.OpenRegisterPayload
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			s.logger.Warnw("bad host payload", "action", msg.Action, "error", err)
			return err
		}
		s.applyOpenRegister(p)
	case domain.ActionCloseRegister:
		s.applyCloseRegister()
	case domain.ActionSetRole:
		var p domain.SetRolePayload
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			s.logger.Warnw("bad host payload", "action", msg.Action, "error", err)
			return err
		}
		s.SetRole(p)
	case domain.ActionSetView:
		var p domain.SetViewPayload
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			s.logger.Warnw("bad host payload", "action", msg.Action, "error", err)
			return err
		}
		if p.View != "" {
			s.mu.Lock()
			s.state.View = View(p.View)
			s.mu.Unlock()
		}
	case domain.ActionSyncState:
		patch, err := decodeSyncPatch(msg.Payload)
		if err != nil {
			s.logger.Warnw("bad host payload", "action", msg.Action, "error", err)
			return err
		}
		s.applySyncPatch(patch)
	default:
		s.logger.Debugw("unknown host action ignored", "action", msg.Action)
	}
	return nil
}

func unmarshalPayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

func (s *RegisterService) applyOpenRegister(p domain.OpenRegisterPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	role := p.Role
	if role == "" {
		role = string(domain.RoleEmployee)
	}
	requestedView := p.View
	if requestedView == "" {
		requestedView = defaultViewForRole(role)
	}
	member, _ := ResolveMembership(p.Membership, p.Interaction)

	s.state.UIVisible = true
	s.state.IsOrgMember = member
	s.state.CurrentRole = domain.Role(role)
	if p.StoreID != "" && s.state.storeByID(p.StoreID) != nil {
		s.state.ActiveStoreID = p.StoreID
	}
	if p.RegisterID != "" {
		s.state.ActiveRegisterID = p.RegisterID
	}
	s.state.InteractionContext = p.Interaction
	if member || s.standalone {
		s.state.View = View(requestedView)
	} else {
		s.state.View = ViewCustomer
	}
}

func (s *RegisterService) applyCloseRegister() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.UIVisible = false
	s.state.InteractionContext = nil
	s.state.IsOrgMember = false
	s.state.View = ViewCustomer
}

// decodeSyncPatch keeps only the allow-listed keys of a syncState payload and
// records whether interactionContext was present at all, so an explicit null
// clears while absence leaves the current context alone.
func decodeSyncPatch(raw json.RawMessage) (domain.SyncStatePatch, error) {
	var patch domain.SyncStatePatch
	if len(raw) == 0 {
		return patch, nil
	}
	if err := json.Unmarshal(raw, &patch); err != nil {
		return patch, fmt.Errorf("decode payload: %w", err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err == nil {
		_, patch.HasInteractionContext = keys["interactionContext"]
	}
	return patch, nil
}

func (s *RegisterService) applySyncPatch(patch domain.SyncStatePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(patch.Stores) > 0 {
		s.state.Stores = patch.Stores
		if s.state.activeStore() == nil {
			return
		}
	}
	if patch.ActiveStoreID != "" {
		s.state.ActiveStoreID = patch.ActiveStoreID
	}
	if patch.ActiveRegisterID != "" {
		s.state.ActiveRegisterID = patch.ActiveRegisterID
	}
	if patch.TraysByRegister != nil {
		for id, tray := range patch.TraysByRegister {
			s.state.TraysByRegister[id] = tray
			s.procSeq[id]++
		}
	}
	if patch.SessionsByRegister != nil {
		for id, sess := range patch.SessionsByRegister {
			s.state.SessionsByRegister[id] = sess
			s.procSeq[id]++
			s.gameSeq[id]++
		}
	}
	tiers := patch.TierByRegister
	if tiers == nil {
		tiers = patch.LevelsByRegister
	}
	for id, level := range tiers {
		if level > 0 {
			s.state.TierByRegister[id] = level
		}
	}
	statsPatch := patch.StatsByRegister
	if statsPatch == nil {
		statsPatch = patch.StatsByRegisterLegacy
	}
	for id, st := range statsPatch {
		s.state.StatsByRegister[id] = st
	}
	if patch.CurrentRole != "" {
		s.state.CurrentRole = domain.Role(patch.CurrentRole)
	}
	if patch.View != "" {
		s.state.View = View(patch.View)
	}
	if patch.ActiveEventTags != nil {
		s.state.ActiveEventTags = patch.ActiveEventTags
	}
	if member, resolved := ResolveMembership(patch.Membership, patch.InteractionContext); resolved {
		s.state.IsOrgMember = member
	}
	if patch.HasInteractionContext {
		s.state.InteractionContext = patch.InteractionContext
	}
}
