package service

import (
	"context"
	"testing"
	"time"

	"github.com/patrick-gordon/umbra-registers/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestAddToTrayMergesLines(t *testing.T) {
	e := newTestEngine()
	e.svc.AddToTray("1")
	e.svc.AddToTray("1")
	e.svc.AddToTray("2")

	tray := e.tray()
	if len(tray) != 2 {
		t.Fatalf("len(tray) = %d, want 2 merged lines", len(tray))
	}
	if tray[0].ItemID != "1" || tray[0].Qty != 2 {
		t.Errorf("line 0 = %+v, want item 1 qty 2", tray[0])
	}
	if tray[1].ItemID != "2" || tray[1].Qty != 1 {
		t.Errorf("line 1 = %+v, want item 2 qty 1", tray[1])
	}
}

func TestAddToTrayClampsToStock(t *testing.T) {
	e := newTestEngine()
	e.svc.UpdateMenuItem("3", ItemUpdate{Stock: intPtr(2)})

	for i := 0; i < 5; i++ {
		e.svc.AddToTray("3")
	}
	tray := e.tray()
	if len(tray) != 1 || tray[0].Qty != 2 {
		t.Errorf("tray = %+v, want a single line clamped to qty 2", tray)
	}
}

func TestAddToTrayUnknownItemIgnored(t *testing.T) {
	e := newTestEngine()
	e.svc.AddToTray("no-such-item")
	if got := e.tray(); len(got) != 0 {
		t.Errorf("tray = %+v, want empty", got)
	}
}

func TestAddComboToTray(t *testing.T) {
	e := newTestEngine()
	e.svc.AddComboToTray("combo-breakfast") // burger + coffee, bundle 8.50

	tray := e.tray()
	if len(tray) != 1 {
		t.Fatalf("tray = %+v, want one combo line", tray)
	}
	line := tray[0]
	if line.ID != "combo:combo-breakfast" || line.LineType != domain.LineCombo {
		t.Errorf("line = %+v", line)
	}
	if line.UnitPrice != 8.5 || line.BasePrice != 10 {
		t.Errorf("prices = unit %v base %v, want 8.5 and 10", line.UnitPrice, line.BasePrice)
	}
	if len(line.ItemIDs) != 2 {
		t.Errorf("member ids = %v", line.ItemIDs)
	}
}

func TestAddComboRespectsMemberStock(t *testing.T) {
	e := newTestEngine()
	e.svc.UpdateMenuItem("2", ItemUpdate{Stock: intPtr(1)})

	// one loose coffee exhausts the shared stock for the combo
	e.svc.AddToTray("2")
	e.svc.AddComboToTray("combo-breakfast")

	tray := e.tray()
	if len(tray) != 1 || tray[0].ItemID != "2" {
		t.Errorf("combo must be refused when a member is out of stock, tray %+v", tray)
	}
}

func TestComboUnitsShareMemberStock(t *testing.T) {
	e := newTestEngine()
	e.svc.UpdateMenuItem("2", ItemUpdate{Stock: intPtr(2)})

	e.svc.AddComboToTray("combo-breakfast")
	e.svc.AddComboToTray("combo-breakfast")
	e.svc.AddComboToTray("combo-breakfast")

	tray := e.tray()
	if len(tray) != 1 || tray[0].Qty != 2 {
		t.Errorf("tray = %+v, want combo qty clamped to 2 by the coffee stock", tray)
	}
}

func TestDecreaseTrayLine(t *testing.T) {
	e := newTestEngine()
	e.svc.AddToTray("1")
	e.svc.AddToTray("1")
	e.svc.DecreaseTrayLine("1")

	if tray := e.tray(); len(tray) != 1 || tray[0].Qty != 1 {
		t.Errorf("tray = %+v, want qty 1", tray)
	}

	// last unit removes the line
	e.svc.DecreaseTrayLine("1")
	if tray := e.tray(); len(tray) != 0 {
		t.Errorf("tray = %+v, want empty", tray)
	}
}

func TestRemoveTrayLineDropsWholeLine(t *testing.T) {
	e := newTestEngine()
	e.svc.AddToTray("1")
	e.svc.AddToTray("1")
	e.svc.AddToTray("4")
	e.svc.RemoveTrayLine("1")

	tray := e.tray()
	if len(tray) != 1 || tray[0].ItemID != "4" {
		t.Errorf("tray = %+v, want only item 4", tray)
	}
}

func TestToggleSessionDiscount(t *testing.T) {
	e := newTestEngine()
	e.svc.ToggleSessionDiscount("d1")
	e.svc.ToggleSessionDiscount("d2")
	if got := e.session().SelectedDiscountIDs; len(got) != 2 {
		t.Fatalf("selection = %v", got)
	}

	e.svc.ToggleSessionDiscount("d1")
	got := e.session().SelectedDiscountIDs
	if len(got) != 1 || got[0] != "d2" {
		t.Errorf("selection = %v, want [d2]", got)
	}
}

func TestDiscountSelectionSurvivesTrayEdits(t *testing.T) {
	e := newTestEngine()
	e.svc.ToggleSessionDiscount("d1")
	e.svc.AddToTray("1")
	e.svc.RemoveTrayLine("1")

	if got := e.session().SelectedDiscountIDs; len(got) != 1 || got[0] != "d1" {
		t.Errorf("selection = %v, want [d1]", got)
	}
}

func TestTrayFrozenWhileProcessing(t *testing.T) {
	e := newTestEngine()
	e.svc.AddToTray("1")
	e.svc.RingUp(context.Background())

	e.svc.AddToTray("2")
	e.svc.DecreaseTrayLine("1")
	e.svc.RemoveTrayLine("1")
	if tray := e.tray(); len(tray) != 1 || tray[0].ItemID != "1" {
		t.Errorf("tray mutated mid-processing: %+v", tray)
	}

	e.clock.Advance(8 * time.Second)
	e.svc.AddToTray("2")
	if tray := e.tray(); len(tray) != 2 {
		t.Errorf("tray should accept edits again after processing, got %+v", tray)
	}
}

func TestTrayFrozenInCustomerPhase(t *testing.T) {
	e := newTestEngine()
	e.svc.AddToTray("1")
	toCustomerPhase(t, e)

	e.svc.AddToTray("2")
	if tray := e.tray(); len(tray) != 1 {
		t.Errorf("tray mutated in customer phase: %+v", tray)
	}
}

func TestClearTransactionResetsSelection(t *testing.T) {
	e := newTestEngine()
	e.svc.AddToTray("1")
	e.svc.ToggleSessionDiscount("d1")
	e.svc.ClearTransaction()

	if tray := e.tray(); len(tray) != 0 {
		t.Errorf("tray = %+v, want empty", tray)
	}
	if got := e.session().SelectedDiscountIDs; len(got) != 0 {
		t.Errorf("selection = %v, want empty", got)
	}
}
