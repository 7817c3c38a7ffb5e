package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/patrick-gordon/umbra-registers/internal/abuse"
	"github.com/patrick-gordon/umbra-registers/internal/catalog"
	"github.com/patrick-gordon/umbra-registers/internal/domain"
	"github.com/patrick-gordon/umbra-registers/internal/pricing"
	"github.com/patrick-gordon/umbra-registers/internal/tier"
)

// AddStore creates a store seeded with the default catalog and one register,
// and makes it active. Returns the new store id, or "" on guard rejection.
func (s *RegisterService) AddStore(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isManagerLocked() {
		return ""
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	store := SeedStore(newID("store"), name)
	registerID := store.Registers[0].ID
	s.state.Stores = append(s.state.Stores, store)
	s.state.TraysByRegister[registerID] = []domain.TrayLine{}
	s.state.SessionsByRegister[registerID] = domain.NewSession()
	s.state.TierByRegister[registerID] = 1
	s.state.StatsByRegister[registerID] = domain.RegisterStats{}
	s.state.ActiveStoreID = store.ID
	s.state.ActiveRegisterID = registerID
	return store.ID
}

// RemoveStore deletes a store and every per-register entry it owned. The last
// remaining store can never be removed.
func (s *RegisterService) RemoveStore(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isManagerLocked() || len(s.state.Stores) <= 1 {
		return
	}
	var removed *domain.Store
	next := make([]domain.Store, 0, len(s.state.Stores)-1)
	for i := range s.state.Stores {
		if s.state.Stores[i].ID == id {
			removed = &s.state.Stores[i]
			continue
		}
		next = append(next, s.state.Stores[i])
	}
	if removed == nil {
		return
	}
	for _, reg := range removed.Registers {
		s.dropRegisterEntriesLocked(reg.ID)
	}
	s.state.Stores = next
	if s.state.ActiveStoreID == id {
		s.state.ActiveStoreID = next[0].ID
		s.state.ActiveRegisterID = next[0].Registers[0].ID
	}
}

// AddRegister appends a register to the active store and selects it.
func (s *RegisterService) AddRegister(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isManagerLocked() {
		return ""
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	store := s.state.activeStore()
	if store == nil {
		return ""
	}
	id := fmt.Sprintf("%s-register-%s", store.ID, uuid.NewString())
	store.Registers = append(store.Registers, domain.Register{ID: id, Name: name})
	s.state.TraysByRegister[id] = []domain.TrayLine{}
	s.state.SessionsByRegister[id] = domain.NewSession()
	s.state.TierByRegister[id] = 1
	s.state.StatsByRegister[id] = domain.RegisterStats{}
	s.state.ActiveRegisterID = id
	return id
}

// RemoveRegister deletes a register from the active store, cascading its
// tray, session, tier, stats, abuse signal and receipt. The store's last
// register can never be removed.
func (s *RegisterService) RemoveRegister(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isManagerLocked() {
		return
	}
	store := s.state.activeStore()
	if store == nil || len(store.Registers) <= 1 {
		return
	}
	found := false
	next := make([]domain.Register, 0, len(store.Registers)-1)
	for _, reg := range store.Registers {
		if reg.ID == id {
			found = true
			continue
		}
		next = append(next, reg)
	}
	if !found {
		return
	}
	store.Registers = next
	s.dropRegisterEntriesLocked(id)
	if s.state.ActiveRegisterID == id {
		s.state.ActiveRegisterID = next[0].ID
	}
}

func (s *RegisterService) dropRegisterEntriesLocked(registerID string) {
	s.procSeq[registerID]++
	s.gameSeq[registerID]++
	if timer, ok := s.gameTimers[registerID]; ok {
		timer.Stop()
		delete(s.gameTimers, registerID)
	}
	delete(s.state.TraysByRegister, registerID)
	delete(s.state.SessionsByRegister, registerID)
	delete(s.state.TierByRegister, registerID)
	delete(s.state.StatsByRegister, registerID)
	delete(s.state.ReceiptsByRegister, registerID)
	delete(s.signals, registerID)
}

// SelectStore switches the active store, resetting the register selection to
// its first register.
func (s *RegisterService) SelectStore(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	store := s.state.storeByID(id)
	if store == nil || len(store.Registers) == 0 {
		return
	}
	s.state.ActiveStoreID = store.ID
	s.state.ActiveRegisterID = store.Registers[0].ID
	s.state.InteractionContext = nil
}

// SelectRegister switches the active register within the active store.
func (s *RegisterService) SelectRegister(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	store := s.state.activeStore()
	if store == nil {
		return
	}
	for _, reg := range store.Registers {
		if reg.ID == id {
			s.state.ActiveRegisterID = id
			return
		}
	}
}

// UpgradeRegisterTier raises a register one tier level. Attempts past the cap
// are no-ops that feed the upgrade-abuse signal.
func (s *RegisterService) UpgradeRegisterTier(ctx context.Context, registerID string) {
	s.mu.Lock()
	if !s.isManagerLocked() {
		s.mu.Unlock()
		return
	}
	current := s.state.tierLevel(registerID)
	if current >= tier.MaxLevel {
		s.signal(registerID).Record(abuse.SignalFailedUpgrade, s.clock.Now())
		s.mu.Unlock()
		return
	}
	next := current + 1
	s.state.TierByRegister[registerID] = next
	storeID := ""
	if store := s.state.storeOfRegister(registerID); store != nil {
		storeID = store.ID
	}
	s.logger.Infow("register tier upgraded", "register_id", registerID, "tier_level", next)
	s.mu.Unlock()

	s.send(ctx, domain.EventRegisterTierUpgraded, map[string]any{
		"storeId":           storeID,
		"registerId":        registerID,
		"previousTierLevel": current,
		"nextTierLevel":     next,
	}, registerID)
}

// ItemUpdate patches a menu item; nil fields are untouched. Invalid values
// (negative price, non-integer-like stock) leave the current value in place.
type ItemUpdate struct {
	Name      *string
	Price     *float64
	Stock     *int
	SortOrder *int
	Category  *string
}

// AddMenuItem appends a catalog item to the active store, then re-syncs every
// tray of the store. Returns the new item id, or "" on rejection.
func (s *RegisterService) AddMenuItem(name string, price float64, stock int, sortOrder int, category string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isManagerLocked() {
		return ""
	}
	name = strings.TrimSpace(name)
	if name == "" || price < 0 {
		return ""
	}
	if stock < 0 {
		stock = 999
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = "Uncategorized"
	}
	store := s.state.activeStore()
	if store == nil {
		return ""
	}
	item := domain.MenuItem{
		ID:        newID("item"),
		Name:      name,
		Price:     price,
		Stock:     stock,
		SortOrder: sortOrder,
		Category:  category,
	}
	store.Catalog = append(store.Catalog, item)
	s.resyncStoreTraysLocked(store.ID)
	return item.ID
}

// UpdateMenuItem applies a validated field patch, then re-syncs trays so
// prices and clamped quantities stay deterministic.
func (s *RegisterService) UpdateMenuItem(id string, upd ItemUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isManagerLocked() {
		return
	}
	store := s.state.activeStore()
	if store == nil {
		return
	}
	for i := range store.Catalog {
		if store.Catalog[i].ID != id {
			continue
		}
		item := &store.Catalog[i]
		if upd.Name != nil {
			item.Name = *upd.Name
		}
		if upd.Category != nil {
			category := strings.TrimSpace(*upd.Category)
			if category == "" {
				category = "Uncategorized"
			}
			item.Category = category
		}
		if upd.Price != nil && *upd.Price >= 0 {
			item.Price = *upd.Price
		}
		if upd.Stock != nil && *upd.Stock >= 0 {
			item.Stock = *upd.Stock
		}
		if upd.SortOrder != nil {
			item.SortOrder = *upd.SortOrder
		}
		break
	}
	s.resyncStoreTraysLocked(store.ID)
}

// RemoveMenuItem deletes an item, strips it from every discount's target list
// and drops tray lines that referenced it.
func (s *RegisterService) RemoveMenuItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isManagerLocked() {
		return
	}
	store := s.state.activeStore()
	if store == nil {
		return
	}
	nextCatalog := make([]domain.MenuItem, 0, len(store.Catalog))
	for _, item := range store.Catalog {
		if item.ID != id {
			nextCatalog = append(nextCatalog, item)
		}
	}
	store.Catalog = nextCatalog
	for i := range store.Discounts {
		ids := store.Discounts[i].ItemIDs[:0]
		for _, itemID := range store.Discounts[i].ItemIDs {
			if itemID != id {
				ids = append(ids, itemID)
			}
		}
		store.Discounts[i].ItemIDs = ids
	}
	s.resyncStoreTraysLocked(store.ID)
}

// AddDiscount validates and appends a discount to the active store. Returns
// the new discount id, or "" on rejection.
func (s *RegisterService) AddDiscount(d domain.Discount) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isManagerLocked() {
		return ""
	}
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" || d.DiscountValue < 0 {
		return ""
	}
	if d.DiscountType != domain.DiscountPercentage && d.DiscountType != domain.DiscountFixed {
		return ""
	}
	if !d.ApplyToAll && len(d.ItemIDs) == 0 {
		return ""
	}
	if d.StartDate != "" && d.EndDate != "" && d.EndDate < d.StartDate {
		return ""
	}
	if d.PromotionType == "" {
		d.PromotionType = domain.PromotionStandard
	}
	store := s.state.activeStore()
	if store == nil {
		return ""
	}
	d.ID = newID("d")
	store.Discounts = append(store.Discounts, d)
	s.resyncStoreTraysLocked(store.ID)
	return d.ID
}

// DiscountUpdate patches a discount; nil fields are untouched.
type DiscountUpdate struct {
	Name          *string
	DiscountValue *float64
	StartDate     *string
	EndDate       *string
	StartTime     *string
	EndTime       *string
	Weekdays      *[]int
	EventTag      *string
	IsForever     *bool
	ApplyToAll    *bool
}

func (s *RegisterService) UpdateDiscount(id string, upd DiscountUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isManagerLocked() {
		return
	}
	store := s.state.activeStore()
	if store == nil {
		return
	}
	for i := range store.Discounts {
		if store.Discounts[i].ID != id {
			continue
		}
		d := &store.Discounts[i]
		if upd.Name != nil {
			d.Name = *upd.Name
		}
		if upd.DiscountValue != nil && *upd.DiscountValue >= 0 {
			d.DiscountValue = *upd.DiscountValue
		}
		if upd.StartDate != nil {
			d.StartDate = *upd.StartDate
		}
		if upd.EndDate != nil {
			d.EndDate = *upd.EndDate
		}
		if upd.StartTime != nil {
			d.StartTime = *upd.StartTime
		}
		if upd.EndTime != nil {
			d.EndTime = *upd.EndTime
		}
		if upd.Weekdays != nil {
			d.Weekdays = *upd.Weekdays
		}
		if upd.EventTag != nil {
			d.EventTag = *upd.EventTag
		}
		if upd.IsForever != nil {
			d.IsForever = *upd.IsForever
		}
		if upd.ApplyToAll != nil {
			d.ApplyToAll = *upd.ApplyToAll
		}
		break
	}
	s.resyncStoreTraysLocked(store.ID)
}

// ToggleDiscountItem flips one item id in a discount's target list.
func (s *RegisterService) ToggleDiscountItem(discountID, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isManagerLocked() {
		return
	}
	store := s.state.activeStore()
	if store == nil {
		return
	}
	for i := range store.Discounts {
		if store.Discounts[i].ID != discountID {
			continue
		}
		d := &store.Discounts[i]
		ids := make([]string, 0, len(d.ItemIDs)+1)
		removed := false
		for _, existing := range d.ItemIDs {
			if existing == itemID {
				removed = true
				continue
			}
			ids = append(ids, existing)
		}
		if !removed {
			ids = append(ids, itemID)
		}
		d.ItemIDs = ids
		break
	}
	s.resyncStoreTraysLocked(store.ID)
}

func (s *RegisterService) RemoveDiscount(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isManagerLocked() {
		return
	}
	store := s.state.activeStore()
	if store == nil {
		return
	}
	next := make([]domain.Discount, 0, len(store.Discounts))
	for _, d := range store.Discounts {
		if d.ID != id {
			next = append(next, d)
		}
	}
	store.Discounts = next
	s.resyncStoreTraysLocked(store.ID)
}

// AddCombo appends a bundle of at least two distinct catalog items. Returns
// the new combo id, or "" on rejection.
func (s *RegisterService) AddCombo(name string, itemIDs []string, bundlePrice float64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isManagerLocked() {
		return ""
	}
	name = strings.TrimSpace(name)
	if name == "" || bundlePrice < 0 {
		return ""
	}
	store := s.state.activeStore()
	if store == nil {
		return ""
	}
	distinct := make([]string, 0, len(itemIDs))
	seen := map[string]struct{}{}
	for _, itemID := range itemIDs {
		if _, dup := seen[itemID]; dup {
			continue
		}
		for _, item := range store.Catalog {
			if item.ID == itemID {
				distinct = append(distinct, itemID)
				seen[itemID] = struct{}{}
				break
			}
		}
	}
	if len(distinct) < 2 {
		return ""
	}
	combo := domain.Combo{ID: newID("combo"), Name: name, ItemIDs: distinct, BundlePrice: bundlePrice}
	store.Combos = append(store.Combos, combo)
	return combo.ID
}

func (s *RegisterService) RemoveCombo(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isManagerLocked() {
		return
	}
	store := s.state.activeStore()
	if store == nil {
		return
	}
	next := make([]domain.Combo, 0, len(store.Combos))
	for _, combo := range store.Combos {
		if combo.ID != id {
			next = append(next, combo)
		}
	}
	store.Combos = next
	s.resyncStoreTraysLocked(store.ID)
}

// resyncStoreTraysLocked recomputes every tray of a store after catalog or
// discount mutations: vanished items drop out, quantities clamp to stock,
// unit prices re-derive from the session's active selection when rung up, and
// combo lines survive only while their combo still resolves to two members.
func (s *RegisterService) resyncStoreTraysLocked(storeID string) {
	store := s.state.storeByID(storeID)
	if store == nil {
		return
	}
	priceCtx := s.pricingContextLocked()

	for _, reg := range store.Registers {
		sess := s.state.session(reg.ID)
		selected := activeSelectedDiscounts(store.Discounts, sess.SelectedDiscountIDs, priceCtx)

		next := make([]domain.TrayLine, 0, len(s.state.tray(reg.ID)))
		for _, line := range s.state.tray(reg.ID) {
			switch line.LineType {
			case domain.LineCombo:
				var combo *domain.Combo
				for i := range store.Combos {
					if store.Combos[i].ID == line.ComboID {
						combo = &store.Combos[i]
						break
					}
				}
				if combo == nil {
					continue
				}
				members, ok := catalog.ComboMembers(*combo, store.Catalog)
				if !ok {
					continue
				}
				qty := line.Qty
				base := 0.0
				memberIDs := make([]string, 0, len(members))
				for _, member := range members {
					base += member.Price
					memberIDs = append(memberIDs, member.ID)
					if member.Stock < qty {
						qty = member.Stock
					}
				}
				if qty <= 0 {
					continue
				}
				line.Qty = qty
				line.Name = combo.Name
				line.ItemIDs = memberIDs
				line.BasePrice = base
				line.UnitPrice = combo.BundlePrice
				next = append(next, line)
			default:
				var item *domain.MenuItem
				for i := range store.Catalog {
					if store.Catalog[i].ID == line.ItemID {
						item = &store.Catalog[i]
						break
					}
				}
				if item == nil {
					continue
				}
				if line.Qty > item.Stock {
					line.Qty = item.Stock
				}
				if line.Qty <= 0 {
					continue
				}
				line.Name = item.Name
				line.BasePrice = item.Price
				if sess.IsRungUp {
					line.UnitPrice = pricing.EffectivePrice(item.ID, item.Price, selected, priceCtx)
				} else {
					line.UnitPrice = item.Price
				}
				next = append(next, line)
			}
		}
		s.state.TraysByRegister[reg.ID] = next
	}
}
