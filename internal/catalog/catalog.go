// Package catalog derives the read views the register UI consumes: sorted
// catalogs, tray-aware remaining stock, and combo availability. Stock is a
// ceiling on concurrent tray usage, not a decrementing ledger.
package catalog

import (
	"math"
	"sort"

	"github.com/patrick-gordon/umbra-registers/internal/domain"
)

// SortedForCustomer orders the catalog by (sortOrder, name).
func SortedForCustomer(items []domain.MenuItem) []domain.MenuItem {
	out := make([]domain.MenuItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SortedForManager orders the catalog by (category, sortOrder, name).
func SortedForManager(items []domain.MenuItem) []domain.MenuItem {
	out := make([]domain.MenuItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Categories returns the distinct sorted category names, mapping blanks to
// "Uncategorized".
func Categories(items []domain.MenuItem) []string {
	seen := map[string]struct{}{}
	for _, item := range items {
		category := item.Category
		if category == "" {
			category = "Uncategorized"
		}
		seen[category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for category := range seen {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// UsedStock sums tray consumption per item id. Each combo line unit consumes
// one of every member item.
func UsedStock(tray []domain.TrayLine) map[string]int {
	used := map[string]int{}
	for _, line := range tray {
		switch line.LineType {
		case domain.LineCombo:
			for _, itemID := range line.ItemIDs {
				used[itemID] += line.Qty
			}
		default:
			used[line.ItemID] += line.Qty
		}
	}
	return used
}

// RemainingStock returns an item's stock minus its tray consumption, floored
// at zero.
func RemainingStock(item domain.MenuItem, tray []domain.TrayLine) int {
	remaining := item.Stock - UsedStock(tray)[item.ID]
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ComboView is a combo enriched with live member pricing and availability.
type ComboView struct {
	domain.Combo
	BasePrice float64 `json:"basePrice"`
	Savings   float64 `json:"savings"`
	InStock   bool    `json:"inStock"`
}

// ValidCombos filters out combos with fewer than two resolvable member items,
// e.g. after a member was deleted from the catalog.
func ValidCombos(combos []domain.Combo, items []domain.MenuItem) []domain.Combo {
	byID := indexItems(items)
	out := make([]domain.Combo, 0, len(combos))
	for _, combo := range combos {
		resolvable := 0
		for _, itemID := range combo.ItemIDs {
			if _, ok := byID[itemID]; ok {
				resolvable++
			}
		}
		if resolvable >= 2 {
			out = append(out, combo)
		}
	}
	return out
}

// ComboViews derives pricing and stock availability for every valid combo. A
// combo is in stock only while every member has remaining stock.
func ComboViews(combos []domain.Combo, items []domain.MenuItem, tray []domain.TrayLine) []ComboView {
	byID := indexItems(items)
	valid := ValidCombos(combos, items)
	out := make([]ComboView, 0, len(valid))
	for _, combo := range valid {
		view := ComboView{Combo: combo, InStock: true}
		for _, itemID := range combo.ItemIDs {
			item, ok := byID[itemID]
			if !ok {
				continue
			}
			view.BasePrice += item.Price
			if RemainingStock(item, tray) <= 0 {
				view.InStock = false
			}
		}
		view.Savings = math.Max(0, view.BasePrice-combo.BundlePrice)
		out = append(out, view)
	}
	return out
}

// ComboMembers resolves a combo's member items, reporting false when fewer
// than two members are still resolvable.
func ComboMembers(combo domain.Combo, items []domain.MenuItem) ([]domain.MenuItem, bool) {
	byID := indexItems(items)
	members := make([]domain.MenuItem, 0, len(combo.ItemIDs))
	for _, itemID := range combo.ItemIDs {
		if item, ok := byID[itemID]; ok {
			members = append(members, item)
		}
	}
	return members, len(members) >= 2
}

func indexItems(items []domain.MenuItem) map[string]domain.MenuItem {
	byID := make(map[string]domain.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return byID
}
