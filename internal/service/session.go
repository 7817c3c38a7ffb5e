package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/patrick-gordon/umbra-registers/internal/abuse"
	"github.com/patrick-gordon/umbra-registers/internal/bridge"
	"github.com/patrick-gordon/umbra-registers/internal/domain"
	"github.com/patrick-gordon/umbra-registers/internal/pricing"
	"github.com/patrick-gordon/umbra-registers/internal/tier"
)

const jamErrorMessage = "Register jam detected. Re-ring this order."

// recomputeTrayPrices recalculates base and unit prices from the catalog and
// the active discount selection. Combo lines keep their bundle price; item
// lines get the best active discount.
func recomputeTrayPrices(tray []domain.TrayLine, store *domain.Store, selected []domain.Discount, ctx pricing.Context) []domain.TrayLine {
	next := cloneTray(tray)
	for i := range next {
		line := &next[i]
		switch line.LineType {
		case domain.LineCombo:
			base := 0.0
			for _, itemID := range line.ItemIDs {
				for _, item := range store.Catalog {
					if item.ID == itemID {
						base += item.Price
						break
					}
				}
			}
			line.BasePrice = base
		default:
			for _, item := range store.Catalog {
				if item.ID == line.ItemID {
					line.BasePrice = item.Price
					line.UnitPrice = pricing.EffectivePrice(item.ID, item.Price, selected, ctx)
					break
				}
			}
		}
	}
	return next
}

// RingUp locks in pricing for the tray and simulates register processing.
// Tier auto-discount-assist first folds every active discount touching the
// tray into the selection; the tray snapshot taken here is what the host is
// told about, unless its response overrides it.
func (s *RegisterService) RingUp(ctx context.Context) {
	s.mu.Lock()
	registerID := s.state.ActiveRegisterID
	sess := s.state.session(registerID)
	tray := s.state.tray(registerID)
	if !s.canUseEmployeeActionsLocked() || len(tray) == 0 ||
		sess.Phase != domain.PhaseEmployee || sess.IsProcessing {
		s.mu.Unlock()
		return
	}
	store := s.state.storeOfRegister(registerID)
	if store == nil {
		s.mu.Unlock()
		return
	}

	level := s.state.tierLevel(registerID)
	t := tier.Get(level)
	priceCtx := s.pricingContextLocked()

	if t.AutoDiscountAssist {
		trayItemIDs := map[string]struct{}{}
		for _, line := range tray {
			if line.LineType == domain.LineItem {
				trayItemIDs[line.ItemID] = struct{}{}
			}
		}
		for _, d := range store.Discounts {
			if !pricing.IsDiscountActive(d, priceCtx) {
				continue
			}
			// assist keys off listed item ids; applyToAll discounts stay manual
			touches := false
			for _, itemID := range d.ItemIDs {
				if _, ok := trayItemIDs[itemID]; ok {
					touches = true
					break
				}
			}
			if touches && !containsID(sess.SelectedDiscountIDs, d.ID) {
				sess.SelectedDiscountIDs = append(sess.SelectedDiscountIDs, d.ID)
			}
		}
	}

	sess.IsRungUp = false
	sess.IsProcessing = true
	sess.ProcessingProgress = 0
	sess.ProcessingError = ""

	selected := activeSelectedDiscounts(store.Discounts, sess.SelectedDiscountIDs, priceCtx)
	tray = recomputeTrayPrices(tray, store, selected, priceCtx)

	s.state.TraysByRegister[registerID] = tray
	s.state.SessionsByRegister[registerID] = sess

	s.procSeq[registerID]++
	seq := s.procSeq[registerID]
	startedAt := s.clock.Now()
	processing := t.ProcessingMs

	var tick func()
	tick = func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.procSeq[registerID] != seq {
			return
		}
		cur := s.state.session(registerID)
		if !cur.IsProcessing {
			return
		}
		elapsed := s.clock.Now().Sub(startedAt)
		pct := int(math.Round(float64(elapsed) / float64(processing) * 100))
		if pct > 100 {
			pct = 100
		}
		cur.ProcessingProgress = pct
		s.state.SessionsByRegister[registerID] = cur
		s.clock.AfterFunc(progressTickInterval, tick)
	}
	s.clock.AfterFunc(progressTickInterval, tick)
	s.clock.AfterFunc(processing, func() {
		s.finishRingUp(registerID, seq, t, level)
	})

	s.logger.Infow("ring up started",
		"register_id", registerID, "tier_level", level, "processing_ms", processing.Milliseconds())
	s.mu.Unlock()
}

// finishRingUp runs when the processing delay elapses: one uniform draw
// decides between a register jam and a successful ring-up.
func (s *RegisterService) finishRingUp(registerID string, seq int, t tier.Tier, level int) {
	ctx := context.Background()

	s.mu.Lock()
	if s.procSeq[registerID] != seq {
		s.mu.Unlock()
		return
	}
	sess := s.state.session(registerID)
	if !sess.IsProcessing {
		s.mu.Unlock()
		return
	}
	store := s.state.storeOfRegister(registerID)
	storeID := ""
	if store != nil {
		storeID = store.ID
	}

	if s.rand.Float64() < t.RingUpErrorChance {
		sess.IsRungUp = false
		sess.IsProcessing = false
		sess.ProcessingProgress = 0
		sess.ProcessingError = jamErrorMessage
		s.state.SessionsByRegister[registerID] = sess
		s.logger.Warnw("register jam", "register_id", registerID, "tier_level", level)
		s.mu.Unlock()
		s.send(ctx, domain.EventRingUpMachineError, map[string]any{
			"storeId":           storeID,
			"registerId":        registerID,
			"registerTierLevel": level,
		}, registerID)
		return
	}

	sess.IsRungUp = true
	sess.IsProcessing = false
	sess.ProcessingProgress = 100
	sess.ProcessingError = ""
	s.state.SessionsByRegister[registerID] = sess
	finalTray := cloneTray(s.state.tray(registerID))
	s.mu.Unlock()

	resp := s.send(ctx, domain.EventRingUp, map[string]any{
		"storeId":           storeID,
		"registerId":        registerID,
		"registerTierLevel": level,
		"processingMs":      t.ProcessingMs.Milliseconds(),
		"tray":              finalTray,
		"total":             trayTotal(finalTray),
	}, registerID)
	s.applyRingUpResponse(registerID, seq, resp)
}

// applyRingUpResponse enforces the server-authoritative ring-up contract: a
// failure reverts the optimistic local state with a composed detail message; a
// success may replace the local tray and discount selection outright.
func (s *RegisterService) applyRingUpResponse(registerID string, seq int, resp bridge.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.procSeq[registerID] != seq {
		return
	}
	sess := s.state.session(registerID)

	if !resp.OK {
		sess.Phase = domain.PhaseEmployee
		sess.IsRungUp = false
		sess.IsProcessing = false
		sess.ProcessingProgress = 0
		sess.ProcessingError = formatRingUpRejection(resp.Error)
		s.state.SessionsByRegister[registerID] = sess
		return
	}

	var result domain.RingUpResult
	if !resp.DecodeData(&result) {
		return
	}
	if result.Tray != nil {
		s.state.TraysByRegister[registerID] = result.Tray
	}
	if result.SelectedDiscountIDs != nil {
		sess.SelectedDiscountIDs = result.SelectedDiscountIDs
		s.state.SessionsByRegister[registerID] = sess
	}
}

// formatRingUpRejection composes the category-segmented message for a
// server-side rejection, covering each detail category that is present.
func formatRingUpRejection(err *bridge.Error) string {
	if err == nil {
		return bridge.DefaultMessage(bridge.CodeInternalError)
	}
	normalized := bridge.Normalize(*err, bridge.CodeInternalError)
	if normalized.Code != bridge.CodeInsufficientStock || len(normalized.Details) == 0 {
		return normalized.Banner()
	}

	var detail domain.StockErrorDetail
	if jsonErr := json.Unmarshal(normalized.Details, &detail); jsonErr != nil {
		return normalized.Banner()
	}

	parts := []string{normalized.Banner()}
	if len(detail.MissingItems) > 0 {
		parts = append(parts, fmt.Sprintf("Missing items: %s.", strings.Join(detail.MissingItems, ", ")))
	}
	if len(detail.InsufficientQty) > 0 {
		lines := make([]string, 0, len(detail.InsufficientQty))
		for _, q := range detail.InsufficientQty {
			lines = append(lines, fmt.Sprintf("%s needs %d, only %d available", q.Name, q.Required, q.Available))
		}
		parts = append(parts, fmt.Sprintf("Insufficient quantity: %s.", strings.Join(lines, "; ")))
	}
	if len(detail.ComboInvalid) > 0 {
		parts = append(parts, fmt.Sprintf("Invalid combos: %s.", strings.Join(detail.ComboInvalid, ", ")))
	}
	return strings.Join(parts, " ")
}

// ConfirmCustomerActions hands the rung-up transaction to the customer phase
// and drops any receipt still held from the previous transaction.
func (s *RegisterService) ConfirmCustomerActions(ctx context.Context) {
	s.mu.Lock()
	registerID := s.state.ActiveRegisterID
	sess := s.state.session(registerID)
	if !s.canUseEmployeeActionsLocked() || !sess.IsRungUp ||
		sess.Phase != domain.PhaseEmployee || sess.IsProcessing {
		s.mu.Unlock()
		return
	}
	delete(s.state.ReceiptsByRegister, registerID)
	sess.Phase = domain.PhaseCustomer
	s.state.SessionsByRegister[registerID] = sess
	storeID := ""
	if store := s.state.storeOfRegister(registerID); store != nil {
		storeID = store.ID
	}
	s.mu.Unlock()

	s.send(ctx, domain.EventEnableCustomerActions, map[string]any{
		"storeId":    storeID,
		"registerId": registerID,
	}, registerID)
}

// CustomerPay settles the transaction: receipt snapshot, tray zeroed, session
// reset, sales counters bumped.
func (s *RegisterService) CustomerPay(ctx context.Context) {
	s.mu.Lock()
	registerID := s.state.ActiveRegisterID
	sess := s.state.session(registerID)
	if sess.Phase != domain.PhaseCustomer || sess.StealMinigame.Active {
		s.mu.Unlock()
		return
	}

	tray := cloneTray(s.state.tray(registerID))
	total := trayTotal(tray)
	itemCount := trayItemCount(tray)
	now := s.clock.Now()

	store := s.state.storeOfRegister(registerID)
	storeID, storeName := "", ""
	if store != nil {
		storeID, storeName = store.ID, store.Name
	}
	receipt := &domain.Receipt{
		ID:            newID("receipt"),
		StoreID:       storeID,
		StoreName:     storeName,
		RegisterID:    registerID,
		RegisterName:  s.state.registerName(registerID),
		PaidAt:        now,
		Items:         tray,
		ItemCount:     itemCount,
		Total:         total,
		PaymentMethod: "cash",
	}

	s.resetRegisterLocked(registerID)
	s.state.ReceiptsByRegister[registerID] = receipt

	stats := s.state.StatsByRegister[registerID]
	stats.TotalSales += total
	stats.TotalTransactions++
	stats.PaidTransactions++
	stats.ItemsSold += itemCount
	stats.LastPaidTotal = total
	stats.LastTransactionAt = now
	s.state.StatsByRegister[registerID] = stats

	s.logger.Infow("customer paid", "register_id", registerID, "total", total, "items", itemCount)
	s.mu.Unlock()

	s.cues.PaymentChime()
	s.send(ctx, domain.EventCustomerPaid, map[string]any{
		"storeId":    storeID,
		"registerId": registerID,
		"total":      total,
		"receipt":    receipt,
	}, registerID)
}

// DismissReceipt drops the held receipt for the active register.
func (s *RegisterService) DismissReceipt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.ReceiptsByRegister, s.state.ActiveRegisterID)
}

// CustomerSteal starts the theft minigame, unless the tier's instant block
// fires or the register already won this transaction.
func (s *RegisterService) CustomerSteal(ctx context.Context) {
	s.mu.Lock()
	registerID := s.state.ActiveRegisterID
	sess := s.state.session(registerID)
	if sess.Phase != domain.PhaseCustomer || sess.StealMinigame.Active ||
		sess.StealMinigame.Winner == domain.WinnerEmployee {
		s.mu.Unlock()
		return
	}

	now := s.clock.Now()
	s.signal(registerID).Record(abuse.SignalRapidSteal, now)

	level := s.state.tierLevel(registerID)
	t := tier.Get(level)
	store := s.state.storeOfRegister(registerID)
	storeID := ""
	if store != nil {
		storeID = store.ID
	}

	if s.rand.Float64() < t.InstantStealBlockChance {
		sess.Phase = domain.PhaseCustomer
		sess.StealMinigame.Active = false
		sess.StealMinigame.Winner = domain.WinnerEmployee
		s.state.SessionsByRegister[registerID] = sess

		stats := s.state.StatsByRegister[registerID]
		stats.StealAttempts++
		stats.BlockedStealAttempts++
		stats.LastTransactionAt = now
		s.state.StatsByRegister[registerID] = stats

		s.logger.Infow("steal auto-blocked", "register_id", registerID, "tier_level", level)
		s.mu.Unlock()

		s.cues.StealBlockedSiren()
		s.send(ctx, domain.EventStealAttemptAutoBlocked, map[string]any{
			"storeId":            storeID,
			"registerId":         registerID,
			"registerTierLevel":  level,
			"instantBlockChance": t.InstantStealBlockChance,
		}, registerID)
		return
	}

	duration := t.StealMinigameDuration
	endsAt := now.Add(duration)
	sess.Phase = domain.PhaseStealMinigame
	sess.StealMinigame = domain.StealState{
		Active:        true,
		StartedAt:     now,
		EndsAt:        endsAt,
		DurationMs:    int(duration.Milliseconds()),
		CustomerScore: 0,
		EmployeeScore: t.EmployeeDefenseBonus,
		Winner:        domain.WinnerNone,
	}
	s.state.SessionsByRegister[registerID] = sess

	stats := s.state.StatsByRegister[registerID]
	stats.StealAttempts++
	s.state.StatsByRegister[registerID] = stats

	s.armMinigameDeadlineLocked(registerID, duration)
	s.logger.Infow("steal minigame started",
		"register_id", registerID, "duration_ms", duration.Milliseconds(), "defense_bonus", t.EmployeeDefenseBonus)
	s.mu.Unlock()

	s.send(ctx, domain.EventStealMinigameStarted, map[string]any{
		"storeId":              storeID,
		"registerId":           registerID,
		"durationMs":           duration.Milliseconds(),
		"employeeDefenseBonus": t.EmployeeDefenseBonus,
		"registerTierLevel":    level,
	}, registerID)
}

// armMinigameDeadlineLocked schedules auto-resolution at the minigame
// deadline, disarming any previously armed watch for the register.
func (s *RegisterService) armMinigameDeadlineLocked(registerID string, until time.Duration) {
	s.gameSeq[registerID]++
	seq := s.gameSeq[registerID]
	if timer, ok := s.gameTimers[registerID]; ok {
		timer.Stop()
	}
	s.gameTimers[registerID] = s.clock.AfterFunc(until, func() {
		s.resolveMinigame(registerID, seq)
	})
}

// MinigameTap counts one tap for the caller's side. Taps after the deadline
// resolve the game instead of scoring.
func (s *RegisterService) MinigameTap(role domain.Role) {
	s.mu.Lock()
	registerID := s.state.ActiveRegisterID
	sess := s.state.session(registerID)
	if sess.Phase != domain.PhaseStealMinigame || !sess.StealMinigame.Active {
		s.mu.Unlock()
		return
	}
	if !s.clock.Now().Before(sess.StealMinigame.EndsAt) {
		seq := s.gameSeq[registerID]
		s.mu.Unlock()
		s.resolveMinigame(registerID, seq)
		return
	}

	switch role {
	case domain.RoleCustomer:
		sess.StealMinigame.CustomerScore++
	case domain.RoleEmployee, domain.RoleManager:
		sess.StealMinigame.EmployeeScore++
	default:
		s.mu.Unlock()
		return
	}
	s.state.SessionsByRegister[registerID] = sess
	s.mu.Unlock()
}

// Tap counts a tap for the engine's current role.
func (s *RegisterService) Tap() {
	s.mu.Lock()
	role := s.state.CurrentRole
	s.mu.Unlock()
	s.MinigameTap(role)
}

// ResolveStealMinigame resolves the active register's minigame on demand.
func (s *RegisterService) ResolveStealMinigame() {
	s.mu.Lock()
	registerID := s.state.ActiveRegisterID
	sess := s.state.session(registerID)
	if sess.Phase != domain.PhaseStealMinigame {
		s.mu.Unlock()
		return
	}
	seq := s.gameSeq[registerID]
	s.mu.Unlock()
	s.resolveMinigame(registerID, seq)
}

// resolveMinigame settles an active minigame. Ties favor the register: the
// customer must strictly out-tap the employee side to win.
func (s *RegisterService) resolveMinigame(registerID string, seq int) {
	ctx := context.Background()

	s.mu.Lock()
	if s.gameSeq[registerID] != seq {
		s.mu.Unlock()
		return
	}
	sess := s.state.session(registerID)
	if sess.Phase != domain.PhaseStealMinigame || !sess.StealMinigame.Active {
		s.mu.Unlock()
		return
	}

	customerScore := sess.StealMinigame.CustomerScore
	employeeScore := sess.StealMinigame.EmployeeScore
	customerWins := customerScore > employeeScore
	itemCount := trayItemCount(s.state.tray(registerID))
	now := s.clock.Now()
	store := s.state.storeOfRegister(registerID)
	storeID := ""
	if store != nil {
		storeID = store.ID
	}

	if customerWins {
		s.resetRegisterLocked(registerID)
		delete(s.state.ReceiptsByRegister, registerID)

		stats := s.state.StatsByRegister[registerID]
		stats.TotalTransactions++
		stats.StolenTransactions++
		stats.ItemsStolen += itemCount
		stats.LastTransactionAt = now
		s.state.StatsByRegister[registerID] = stats

		s.logger.Infow("customer stole",
			"register_id", registerID, "customer_score", customerScore, "employee_score", employeeScore)
		s.mu.Unlock()

		s.send(ctx, domain.EventCustomerStole, map[string]any{
			"storeId":    storeID,
			"registerId": registerID,
			"minigame": map[string]any{
				"winner":        domain.WinnerCustomer,
				"customerScore": customerScore,
				"employeeScore": employeeScore,
			},
		}, registerID)
		return
	}

	sess.Phase = domain.PhaseCustomer
	sess.StealMinigame.Active = false
	sess.StealMinigame.Winner = domain.WinnerEmployee
	s.state.SessionsByRegister[registerID] = sess

	stats := s.state.StatsByRegister[registerID]
	stats.BlockedStealAttempts++
	stats.LastTransactionAt = now
	s.state.StatsByRegister[registerID] = stats

	s.logger.Infow("steal blocked",
		"register_id", registerID, "customer_score", customerScore, "employee_score", employeeScore)
	s.mu.Unlock()

	s.cues.StealBlockedSiren()
	s.send(ctx, domain.EventStealMinigameResolved, map[string]any{
		"storeId":       storeID,
		"registerId":    registerID,
		"winner":        domain.WinnerEmployee,
		"customerScore": customerScore,
		"employeeScore": employeeScore,
	}, registerID)
}

func containsID(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
