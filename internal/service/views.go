package service

import (
	"github.com/patrick-gordon/umbra-registers/internal/abuse"
	"github.com/patrick-gordon/umbra-registers/internal/catalog"
	"github.com/patrick-gordon/umbra-registers/internal/domain"
	"github.com/patrick-gordon/umbra-registers/internal/pricing"
	"github.com/patrick-gordon/umbra-registers/internal/stats"
	"github.com/patrick-gordon/umbra-registers/internal/tier"
)

// Snapshot is the full engine state as handed to transports. Maps and slices
// are copies, safe to serialize while the engine keeps mutating.
type Snapshot struct {
	View               View                            `json:"view"`
	CurrentRole        domain.Role                     `json:"currentRole"`
	UIVisible          bool                            `json:"uiVisible"`
	IsOrgMember        bool                            `json:"isOrgMember"`
	PendingAction      string                          `json:"pendingAction,omitempty"`
	BridgeError        string                          `json:"bridgeError,omitempty"`
	LastEvent          string                          `json:"lastEvent,omitempty"`
	InteractionContext *domain.InteractionContext      `json:"interactionContext,omitempty"`
	Stores             []domain.Store                  `json:"stores"`
	ActiveStoreID      string                          `json:"activeStoreId"`
	ActiveRegisterID   string                          `json:"activeRegisterId"`
	TraysByRegister    map[string][]domain.TrayLine    `json:"traysByRegister"`
	SessionsByRegister map[string]domain.Session       `json:"sessionsByRegister"`
	TierByRegister     map[string]int                  `json:"registerTierByRegister"`
	StatsByRegister    map[string]domain.RegisterStats `json:"registerStatsByRegister"`
	ReceiptsByRegister map[string]domain.Receipt       `json:"receiptsByRegister"`
}

// Snapshot copies the whole engine state.
func (s *RegisterService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		View:             s.state.View,
		CurrentRole:      s.state.CurrentRole,
		UIVisible:        s.state.UIVisible,
		IsOrgMember:      s.state.IsOrgMember,
		PendingAction:    s.state.PendingAction,
		BridgeError:      s.state.BridgeError,
		LastEvent:        s.state.LastEvent,
		ActiveStoreID:    s.state.ActiveStoreID,
		ActiveRegisterID: s.state.ActiveRegisterID,

		Stores:             make([]domain.Store, len(s.state.Stores)),
		TraysByRegister:    make(map[string][]domain.TrayLine, len(s.state.TraysByRegister)),
		SessionsByRegister: make(map[string]domain.Session, len(s.state.SessionsByRegister)),
		TierByRegister:     make(map[string]int, len(s.state.TierByRegister)),
		StatsByRegister:    make(map[string]domain.RegisterStats, len(s.state.StatsByRegister)),
		ReceiptsByRegister: make(map[string]domain.Receipt, len(s.state.ReceiptsByRegister)),
	}
	for i, store := range s.state.Stores {
		snap.Stores[i] = cloneStore(store)
	}
	if s.state.InteractionContext != nil {
		ic := *s.state.InteractionContext
		snap.InteractionContext = &ic
	}
	for id, tray := range s.state.TraysByRegister {
		snap.TraysByRegister[id] = cloneTray(tray)
	}
	for id, sess := range s.state.SessionsByRegister {
		sess.SelectedDiscountIDs = append([]string(nil), sess.SelectedDiscountIDs...)
		snap.SessionsByRegister[id] = sess
	}
	for id, level := range s.state.TierByRegister {
		snap.TierByRegister[id] = level
	}
	for id, st := range s.state.StatsByRegister {
		snap.StatsByRegister[id] = st
	}
	for id, receipt := range s.state.ReceiptsByRegister {
		if receipt != nil {
			snap.ReceiptsByRegister[id] = *receipt
		}
	}
	return snap
}

// CustomerItem is one catalog row as the customer panel shows it: effective
// price under the session's active selection, plus stock left after the tray.
type CustomerItem struct {
	domain.MenuItem
	EffectivePrice float64 `json:"effectivePrice"`
	HasDiscount    bool    `json:"hasDiscount"`
	RemainingStock int     `json:"remainingStock"`
}

// CustomerItems projects the active store's catalog for the customer panel,
// sorted by sortOrder then name.
func (s *RegisterService) CustomerItems(registerID string) []CustomerItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	store := s.state.storeOfRegister(registerID)
	if store == nil {
		return nil
	}
	sess := s.state.session(registerID)
	tray := s.state.tray(registerID)
	ctx := s.pricingContextLocked()
	selected := activeSelectedDiscounts(store.Discounts, sess.SelectedDiscountIDs, ctx)

	out := make([]CustomerItem, 0, len(store.Catalog))
	for _, item := range catalog.SortedForCustomer(store.Catalog) {
		price := pricing.EffectivePrice(item.ID, item.Price, selected, ctx)
		out = append(out, CustomerItem{
			MenuItem:       item,
			EffectivePrice: price,
			HasDiscount:    price < item.Price,
			RemainingStock: catalog.RemainingStock(item, tray),
		})
	}
	return out
}

// ManagerItems projects the active store's catalog for the manager panel,
// grouped by category then sortOrder. An empty filter returns everything.
func (s *RegisterService) ManagerItems(categoryFilter string) []domain.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	store := s.state.activeStore()
	if store == nil {
		return nil
	}
	sorted := catalog.SortedForManager(store.Catalog)
	if categoryFilter == "" {
		return sorted
	}
	out := make([]domain.MenuItem, 0, len(sorted))
	for _, item := range sorted {
		category := item.Category
		if category == "" {
			category = "Uncategorized"
		}
		if category == categoryFilter {
			out = append(out, item)
		}
	}
	return out
}

// Categories lists the active store's category names.
func (s *RegisterService) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	store := s.state.activeStore()
	if store == nil {
		return nil
	}
	return catalog.Categories(store.Catalog)
}

// AvailableSessionDiscounts lists discounts currently active for a register's
// store, the set the employee may toggle onto a session.
func (s *RegisterService) AvailableSessionDiscounts(registerID string) []domain.Discount {
	s.mu.Lock()
	defer s.mu.Unlock()

	store := s.state.storeOfRegister(registerID)
	if store == nil {
		return nil
	}
	ctx := s.pricingContextLocked()
	out := make([]domain.Discount, 0, len(store.Discounts))
	for _, d := range store.Discounts {
		if pricing.IsDiscountActive(d, ctx) {
			d.ItemIDs = append([]string(nil), d.ItemIDs...)
			d.Weekdays = append([]int(nil), d.Weekdays...)
			out = append(out, d)
		}
	}
	return out
}

// Combos projects the active store's valid bundles with savings and stock.
func (s *RegisterService) Combos(registerID string) []catalog.ComboView {
	s.mu.Lock()
	defer s.mu.Unlock()

	store := s.state.storeOfRegister(registerID)
	if store == nil {
		return nil
	}
	return catalog.ComboViews(store.Combos, store.Catalog, s.state.tray(registerID))
}

// RegisterStatsView is the per-register dashboard row.
type RegisterStatsView struct {
	RegisterID   string        `json:"registerId"`
	RegisterName string        `json:"registerName"`
	TierLevel    int           `json:"tierLevel"`
	TierName     string        `json:"tierName"`
	Stats        stats.Summary `json:"stats"`
}

// RegisterStats returns the dashboard row for one register.
func (s *RegisterService) RegisterStats(registerID string) RegisterStatsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registerStatsLocked(registerID)
}

func (s *RegisterService) registerStatsLocked(registerID string) RegisterStatsView {
	level := s.state.tierLevel(registerID)
	return RegisterStatsView{
		RegisterID:   registerID,
		RegisterName: s.state.registerName(registerID),
		TierLevel:    level,
		TierName:     tier.Get(level).Name,
		Stats:        stats.Summarize(s.state.StatsByRegister[registerID]),
	}
}

// StoreStats returns every register row of one store plus the store-level
// aggregate with recomputed rates.
func (s *RegisterService) StoreStats(storeID string) ([]RegisterStatsView, stats.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store := s.state.storeByID(storeID)
	if store == nil {
		return nil, stats.Summary{}
	}
	rows := make([]RegisterStatsView, 0, len(store.Registers))
	counters := make([]domain.RegisterStats, 0, len(store.Registers))
	for _, reg := range store.Registers {
		rows = append(rows, s.registerStatsLocked(reg.ID))
		counters = append(counters, s.state.StatsByRegister[reg.ID])
	}
	return rows, stats.Aggregate(counters)
}

// GlobalStats aggregates every register of every store.
func (s *RegisterService) GlobalStats() stats.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	var counters []domain.RegisterStats
	for _, store := range s.state.Stores {
		for _, reg := range store.Registers {
			counters = append(counters, s.state.StatsByRegister[reg.ID])
		}
	}
	return stats.Aggregate(counters)
}

// AbuseFlags returns the suspicion flags currently raised for a register,
// sorted by severity.
func (s *RegisterService) AbuseFlags(registerID string) []abuse.SuspiciousFlag {
	s.mu.Lock()
	defer s.mu.Unlock()

	signal, ok := s.signals[registerID]
	if !ok {
		return nil
	}
	return signal.Flags(s.clock.Now())
}

// AllowedViews lists the panels the current role may open. Customers see only
// the customer panel, employees add the employee panel, managers see all.
func (s *RegisterService) AllowedViews() []View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return allowedViewsFor(s.state.CurrentRole)
}

func allowedViewsFor(role domain.Role) []View {
	switch role {
	case domain.RoleManager:
		return []View{ViewManager, ViewEmployee, ViewCustomer}
	case domain.RoleEmployee:
		return []View{ViewEmployee, ViewCustomer}
	default:
		return []View{ViewCustomer}
	}
}
