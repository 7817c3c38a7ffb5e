package catalog

import (
	"testing"

	"github.com/patrick-gordon/umbra-registers/internal/domain"
)

func testItems() []domain.MenuItem {
	return []domain.MenuItem{
		{ID: "1", Name: "Bacon Burger", Price: 6.5, Stock: 10, SortOrder: 1, Category: "Mains"},
		{ID: "2", Name: "Morning Coffee", Price: 3.5, Stock: 2, SortOrder: 2, Category: "Drinks"},
		{ID: "3", Name: "Glazed Donut", Price: 4, Stock: 5, SortOrder: 3, Category: "Desserts"},
		{ID: "4", Name: "Apple Pie", Price: 3, Stock: 5, SortOrder: 3, Category: ""},
	}
}

func TestSortedForCustomer(t *testing.T) {
	items := []domain.MenuItem{
		{ID: "b", Name: "Beta", SortOrder: 2},
		{ID: "a", Name: "Alpha", SortOrder: 2},
		{ID: "c", Name: "Gamma", SortOrder: 1},
	}
	out := SortedForCustomer(items)
	want := []string{"c", "a", "b"}
	for i, id := range want {
		if out[i].ID != id {
			t.Fatalf("position %d: got %s, want %s", i, out[i].ID, id)
		}
	}
}

func TestSortedForManagerGroupsByCategory(t *testing.T) {
	out := SortedForManager(testItems())
	wantCats := []string{"", "Desserts", "Drinks", "Mains"}
	for i, cat := range wantCats {
		if out[i].Category != cat {
			t.Fatalf("position %d: got category %q, want %q", i, out[i].Category, cat)
		}
	}
}

func TestCategoriesMapsBlankToUncategorized(t *testing.T) {
	cats := Categories(testItems())
	want := []string{"Desserts", "Drinks", "Mains", "Uncategorized"}
	if len(cats) != len(want) {
		t.Fatalf("got %v, want %v", cats, want)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Fatalf("got %v, want %v", cats, want)
		}
	}
}

func TestRemainingStockCountsComboMembers(t *testing.T) {
	items := testItems()
	tray := []domain.TrayLine{
		{ID: "2", LineType: domain.LineItem, ItemID: "2", Qty: 1},
		{ID: "combo:x", LineType: domain.LineCombo, ComboID: "x", ItemIDs: []string{"1", "2"}, Qty: 1},
	}

	// coffee has stock 2: one direct unit plus one combo member
	if got := RemainingStock(items[1], tray); got != 0 {
		t.Errorf("coffee remaining = %d, want 0", got)
	}
	if got := RemainingStock(items[0], tray); got != 9 {
		t.Errorf("burger remaining = %d, want 9", got)
	}
	// never below zero
	over := domain.MenuItem{ID: "2", Stock: 1}
	if got := RemainingStock(over, tray); got != 0 {
		t.Errorf("remaining = %d, want floor at 0", got)
	}
}

func TestValidCombosDropsUnresolvable(t *testing.T) {
	combos := []domain.Combo{
		{ID: "good", ItemIDs: []string{"1", "2"}},
		{ID: "broken", ItemIDs: []string{"1", "missing"}},
	}
	out := ValidCombos(combos, testItems())
	if len(out) != 1 || out[0].ID != "good" {
		t.Fatalf("ValidCombos = %+v, want only 'good'", out)
	}
}

func TestComboViews(t *testing.T) {
	combos := []domain.Combo{
		{ID: "breakfast", ItemIDs: []string{"1", "2"}, BundlePrice: 8.5},
	}
	views := ComboViews(combos, testItems(), nil)
	if len(views) != 1 {
		t.Fatalf("got %d views, want 1", len(views))
	}
	v := views[0]
	if v.BasePrice != 10 {
		t.Errorf("base price = %v, want 10", v.BasePrice)
	}
	if v.Savings != 1.5 {
		t.Errorf("savings = %v, want 1.5", v.Savings)
	}
	if !v.InStock {
		t.Error("expected combo in stock with an empty tray")
	}

	// exhausting one member takes the combo out of stock
	tray := []domain.TrayLine{{ID: "2", LineType: domain.LineItem, ItemID: "2", Qty: 2}}
	views = ComboViews(combos, testItems(), tray)
	if views[0].InStock {
		t.Error("expected combo out of stock when a member is exhausted")
	}

	// bundle priced above members floors savings at zero
	pricey := []domain.Combo{{ID: "p", ItemIDs: []string{"1", "2"}, BundlePrice: 12}}
	views = ComboViews(pricey, testItems(), nil)
	if views[0].Savings != 0 {
		t.Errorf("savings = %v, want 0", views[0].Savings)
	}
}
