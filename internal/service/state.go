package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/patrick-gordon/umbra-registers/internal/domain"
)

// View is which panel of the overlay is showing.
type View string

const (
	ViewManager  View = "manager"
	ViewEmployee View = "employee"
	ViewCustomer View = "customer"
)

// engineState is the single source of truth for every store and register.
// Per-register data lives in parallel maps keyed by register id, not nested
// inside Register, so register CRUD never needs deep surgery.
type engineState struct {
	View               View
	CurrentRole        domain.Role
	UIVisible          bool
	IsOrgMember        bool
	PendingAction      string
	BridgeError        string
	LastEvent          string
	InteractionContext *domain.InteractionContext
	ActiveEventTags    []string

	Stores           []domain.Store
	ActiveStoreID    string
	ActiveRegisterID string

	TraysByRegister    map[string][]domain.TrayLine
	SessionsByRegister map[string]domain.Session
	TierByRegister     map[string]int
	StatsByRegister    map[string]domain.RegisterStats
	ReceiptsByRegister map[string]*domain.Receipt
}

func newEngineState() *engineState {
	store := SeedStore("store-1", "Store 1")
	registerID := store.Registers[0].ID
	return &engineState{
		View:               ViewEmployee,
		CurrentRole:        domain.RoleManager,
		UIVisible:          true,
		Stores:             []domain.Store{store},
		ActiveStoreID:      store.ID,
		ActiveRegisterID:   registerID,
		TraysByRegister:    map[string][]domain.TrayLine{registerID: {}},
		SessionsByRegister: map[string]domain.Session{registerID: domain.NewSession()},
		TierByRegister:     map[string]int{registerID: 1},
		StatsByRegister:    map[string]domain.RegisterStats{registerID: {}},
		ReceiptsByRegister: map[string]*domain.Receipt{},
	}
}

// SeedCatalog is the default menu a fresh store opens with.
func SeedCatalog() []domain.MenuItem {
	return []domain.MenuItem{
		{ID: "1", Name: "Bacon Burger", Price: 6.5, Stock: 10, SortOrder: 1, Category: "Mains"},
		{ID: "2", Name: "Morning Coffee", Price: 3.5, Stock: 10, SortOrder: 2, Category: "Drinks"},
		{ID: "3", Name: "Glazed Donut", Price: 4, Stock: 10, SortOrder: 3, Category: "Desserts"},
		{ID: "4", Name: "Crispy Fries", Price: 3, Stock: 10, SortOrder: 4, Category: "Sides"},
		{ID: "5", Name: "Cola Bottle", Price: 2.5, Stock: 10, SortOrder: 5, Category: "Drinks"},
	}
}

// SeedCombos returns the default bundles referencing the seed catalog.
func SeedCombos() []domain.Combo {
	return []domain.Combo{
		{ID: "combo-breakfast", Name: "Breakfast Combo", ItemIDs: []string{"1", "2"}, BundlePrice: 8.5},
		{ID: "combo-sweet-pickup", Name: "Sweet Pickup", ItemIDs: []string{"1", "3"}, BundlePrice: 7},
	}
}

// SeedStore builds a store with the seed catalog, combos and one register.
func SeedStore(id, name string) domain.Store {
	return domain.Store{
		ID:        id,
		Name:      name,
		Catalog:   SeedCatalog(),
		Combos:    SeedCombos(),
		Discounts: []domain.Discount{},
		Registers: []domain.Register{{ID: fmt.Sprintf("%s-register-1", id), Name: "Register 1"}},
	}
}

func newID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}

func (s *engineState) activeStore() *domain.Store {
	for i := range s.Stores {
		if s.Stores[i].ID == s.ActiveStoreID {
			return &s.Stores[i]
		}
	}
	if len(s.Stores) > 0 {
		return &s.Stores[0]
	}
	return nil
}

func (s *engineState) storeByID(id string) *domain.Store {
	for i := range s.Stores {
		if s.Stores[i].ID == id {
			return &s.Stores[i]
		}
	}
	return nil
}

func (s *engineState) storeOfRegister(registerID string) *domain.Store {
	for i := range s.Stores {
		for _, reg := range s.Stores[i].Registers {
			if reg.ID == registerID {
				return &s.Stores[i]
			}
		}
	}
	return nil
}

func (s *engineState) session(registerID string) domain.Session {
	if session, ok := s.SessionsByRegister[registerID]; ok {
		return session
	}
	return domain.NewSession()
}

func (s *engineState) tray(registerID string) []domain.TrayLine {
	return s.TraysByRegister[registerID]
}

func (s *engineState) tierLevel(registerID string) int {
	if level, ok := s.TierByRegister[registerID]; ok && level > 0 {
		return level
	}
	return 1
}

func (s *engineState) registerName(registerID string) string {
	if store := s.storeOfRegister(registerID); store != nil {
		for _, reg := range store.Registers {
			if reg.ID == registerID {
				return reg.Name
			}
		}
	}
	return "Register"
}

// trayTotal sums unitPrice*qty over a tray.
func trayTotal(tray []domain.TrayLine) float64 {
	total := 0.0
	for _, line := range tray {
		total += line.UnitPrice * float64(line.Qty)
	}
	return total
}

// trayItemCount sums line quantities.
func trayItemCount(tray []domain.TrayLine) int {
	count := 0
	for _, line := range tray {
		count += line.Qty
	}
	return count
}

func cloneTray(tray []domain.TrayLine) []domain.TrayLine {
	out := make([]domain.TrayLine, len(tray))
	copy(out, tray)
	return out
}

// cloneStore copies a store down to its nested slices. Catalog and discount
// edits write into the live backing arrays in place, so a snapshot that
// aliased them would race with serialization outside the engine mutex.
func cloneStore(store domain.Store) domain.Store {
	store.Catalog = append([]domain.MenuItem(nil), store.Catalog...)
	store.Registers = append([]domain.Register(nil), store.Registers...)

	combos := make([]domain.Combo, len(store.Combos))
	for i, combo := range store.Combos {
		combo.ItemIDs = append([]string(nil), combo.ItemIDs...)
		combos[i] = combo
	}
	store.Combos = combos

	discounts := make([]domain.Discount, len(store.Discounts))
	for i, d := range store.Discounts {
		d.ItemIDs = append([]string(nil), d.ItemIDs...)
		d.Weekdays = append([]int(nil), d.Weekdays...)
		discounts[i] = d
	}
	store.Discounts = discounts
	return store
}
