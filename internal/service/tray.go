package service

import (
	"github.com/patrick-gordon/umbra-registers/internal/catalog"
	"github.com/patrick-gordon/umbra-registers/internal/domain"
	"github.com/patrick-gordon/umbra-registers/internal/pricing"
)

// trayMutationAllowedLocked gates every employee-side tray edit: employee
// phase only, never mid-processing.
func (s *RegisterService) trayMutationAllowedLocked() bool {
	if !s.canUseEmployeeActionsLocked() {
		return false
	}
	sess := s.state.session(s.state.ActiveRegisterID)
	return sess.Phase == domain.PhaseEmployee && !sess.IsProcessing
}

// markTrayDirtyLocked clears the rung-up flag and any stale processing error
// after a tray mutation. The selection of discounts survives.
func (s *RegisterService) markTrayDirtyLocked(registerID string) {
	sess := s.state.session(registerID)
	sess.IsRungUp = false
	sess.ProcessingError = ""
	s.state.SessionsByRegister[registerID] = sess
}

// AddToTray adds one unit of a catalog item, clamped to remaining stock.
func (s *RegisterService) AddToTray(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.trayMutationAllowedLocked() {
		return
	}
	registerID := s.state.ActiveRegisterID
	store := s.state.storeOfRegister(registerID)
	if store == nil {
		return
	}
	var item *domain.MenuItem
	for i := range store.Catalog {
		if store.Catalog[i].ID == itemID {
			item = &store.Catalog[i]
			break
		}
	}
	if item == nil {
		return
	}

	tray := s.state.tray(registerID)
	if catalog.RemainingStock(*item, tray) <= 0 {
		return
	}

	next := cloneTray(tray)
	found := false
	for i := range next {
		if next[i].LineType == domain.LineItem && next[i].ItemID == itemID {
			next[i].Qty++
			next[i].UnitPrice = item.Price
			found = true
			break
		}
	}
	if !found {
		next = append(next, domain.TrayLine{
			ID:        item.ID,
			LineType:  domain.LineItem,
			ItemID:    item.ID,
			Name:      item.Name,
			BasePrice: item.Price,
			UnitPrice: item.Price,
			Qty:       1,
		})
	}
	s.state.TraysByRegister[registerID] = next
	s.markTrayDirtyLocked(registerID)
}

// AddComboToTray adds one combo bundle. Every member item must still have
// remaining stock for the increment.
func (s *RegisterService) AddComboToTray(comboID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.trayMutationAllowedLocked() {
		return
	}
	registerID := s.state.ActiveRegisterID
	store := s.state.storeOfRegister(registerID)
	if store == nil {
		return
	}
	var combo *domain.Combo
	for i := range store.Combos {
		if store.Combos[i].ID == comboID {
			combo = &store.Combos[i]
			break
		}
	}
	if combo == nil {
		return
	}
	members, ok := catalog.ComboMembers(*combo, store.Catalog)
	if !ok {
		return
	}

	tray := s.state.tray(registerID)
	basePrice := 0.0
	memberIDs := make([]string, 0, len(members))
	for _, member := range members {
		if catalog.RemainingStock(member, tray) <= 0 {
			return
		}
		basePrice += member.Price
		memberIDs = append(memberIDs, member.ID)
	}

	lineID := "combo:" + combo.ID
	next := cloneTray(tray)
	found := false
	for i := range next {
		if next[i].ID == lineID {
			next[i].Qty++
			next[i].BasePrice = basePrice
			next[i].UnitPrice = combo.BundlePrice
			next[i].ItemIDs = memberIDs
			found = true
			break
		}
	}
	if !found {
		next = append(next, domain.TrayLine{
			ID:        lineID,
			LineType:  domain.LineCombo,
			ComboID:   combo.ID,
			ItemIDs:   memberIDs,
			Name:      combo.Name,
			BasePrice: basePrice,
			UnitPrice: combo.BundlePrice,
			Qty:       1,
		})
	}
	s.state.TraysByRegister[registerID] = next
	s.markTrayDirtyLocked(registerID)
}

// DecreaseTrayLine removes one unit from a line, dropping it at zero.
func (s *RegisterService) DecreaseTrayLine(lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.trayMutationAllowedLocked() {
		return
	}
	registerID := s.state.ActiveRegisterID
	next := make([]domain.TrayLine, 0, len(s.state.tray(registerID)))
	for _, line := range s.state.tray(registerID) {
		if line.ID == lineID {
			line.Qty--
		}
		if line.Qty > 0 {
			next = append(next, line)
		}
	}
	s.state.TraysByRegister[registerID] = next
	s.markTrayDirtyLocked(registerID)
}

// RemoveTrayLine drops a whole line.
func (s *RegisterService) RemoveTrayLine(lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.trayMutationAllowedLocked() {
		return
	}
	registerID := s.state.ActiveRegisterID
	next := make([]domain.TrayLine, 0, len(s.state.tray(registerID)))
	for _, line := range s.state.tray(registerID) {
		if line.ID != lineID {
			next = append(next, line)
		}
	}
	s.state.TraysByRegister[registerID] = next
	s.markTrayDirtyLocked(registerID)
}

// ToggleSessionDiscount flips a discount id in the session selection.
func (s *RegisterService) ToggleSessionDiscount(discountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.trayMutationAllowedLocked() {
		return
	}
	registerID := s.state.ActiveRegisterID
	sess := s.state.session(registerID)
	sess.IsRungUp = false
	sess.ProcessingError = ""

	selected := make([]string, 0, len(sess.SelectedDiscountIDs)+1)
	removed := false
	for _, id := range sess.SelectedDiscountIDs {
		if id == discountID {
			removed = true
			continue
		}
		selected = append(selected, id)
	}
	if !removed {
		selected = append(selected, discountID)
	}
	sess.SelectedDiscountIDs = selected
	s.state.SessionsByRegister[registerID] = sess
}

// ClearTransaction cancels the current transaction: tray emptied, session
// reset, pending receipt dropped. Forbidden mid-minigame and mid-processing.
func (s *RegisterService) ClearTransaction() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canUseEmployeeActionsLocked() {
		return
	}
	registerID := s.state.ActiveRegisterID
	sess := s.state.session(registerID)
	if sess.Phase == domain.PhaseStealMinigame || sess.IsProcessing {
		return
	}
	s.resetRegisterLocked(registerID)
	delete(s.state.ReceiptsByRegister, registerID)
}

// resetRegisterLocked returns a register to a fresh employee session with an
// empty tray and invalidates any outstanding timers.
func (s *RegisterService) resetRegisterLocked(registerID string) {
	s.state.TraysByRegister[registerID] = []domain.TrayLine{}
	s.state.SessionsByRegister[registerID] = domain.NewSession()
	s.procSeq[registerID]++
	s.gameSeq[registerID]++
	if timer, ok := s.gameTimers[registerID]; ok {
		timer.Stop()
		delete(s.gameTimers, registerID)
	}
}

// activeSelectedDiscounts resolves the session's selected discount ids to the
// currently active subset.
func activeSelectedDiscounts(discounts []domain.Discount, selectedIDs []string, ctx pricing.Context) []domain.Discount {
	ids := map[string]struct{}{}
	for _, id := range selectedIDs {
		ids[id] = struct{}{}
	}
	out := make([]domain.Discount, 0, len(selectedIDs))
	for _, d := range discounts {
		if _, ok := ids[d.ID]; !ok {
			continue
		}
		if pricing.IsDiscountActive(d, ctx) {
			out = append(out, d)
		}
	}
	return out
}
