package pricing

import (
	"testing"
	"time"

	"github.com/patrick-gordon/umbra-registers/internal/domain"
)

// Tuesday 2025-06-10 13:30 local.
var testNow = time.Date(2025, 6, 10, 13, 30, 0, 0, time.UTC)

func ctxAt(now time.Time, tags ...string) Context {
	return Context{Now: now, ActiveEventTags: tags}
}

func TestIsDiscountActiveDateRange(t *testing.T) {
	d := domain.Discount{
		Name:          "June Sale",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
		ApplyToAll:    true,
		StartDate:     "2025-06-01",
		EndDate:       "2025-06-30",
	}

	if !IsDiscountActive(d, ctxAt(testNow)) {
		t.Error("expected discount active inside date range")
	}
	if IsDiscountActive(d, ctxAt(testNow.AddDate(0, 1, 0))) {
		t.Error("expected discount inactive after end date")
	}
	if IsDiscountActive(d, ctxAt(testNow.AddDate(0, -1, 0))) {
		t.Error("expected discount inactive before start date")
	}

	// end date is inclusive through the whole day
	lastMinute := time.Date(2025, 6, 30, 23, 59, 0, 0, time.UTC)
	if !IsDiscountActive(d, ctxAt(lastMinute)) {
		t.Error("expected discount active on the last day of the range")
	}
}

func TestIsDiscountActiveForeverIgnoresDates(t *testing.T) {
	d := domain.Discount{
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
		ApplyToAll:    true,
		StartDate:     "2030-01-01",
		EndDate:       "2030-01-02",
		IsForever:     true,
	}
	if !IsDiscountActive(d, ctxAt(testNow)) {
		t.Error("forever discount should ignore its date range")
	}
}

func TestIsDiscountActiveWeekdays(t *testing.T) {
	d := domain.Discount{
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
		ApplyToAll:    true,
		IsForever:     true,
		Weekdays:      []int{2}, // Tuesday
	}
	if !IsDiscountActive(d, ctxAt(testNow)) {
		t.Error("expected active on the configured weekday")
	}
	if IsDiscountActive(d, ctxAt(testNow.AddDate(0, 0, 1))) {
		t.Error("expected inactive on other weekdays")
	}

	// out-of-range entries are dropped, leaving no constraint
	d.Weekdays = []int{-1, 7}
	if !IsDiscountActive(d, ctxAt(testNow.AddDate(0, 0, 1))) {
		t.Error("invalid weekday entries should not constrain the discount")
	}
}

func TestIsDiscountActiveTimeWindow(t *testing.T) {
	d := domain.Discount{
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
		ApplyToAll:    true,
		IsForever:     true,
		StartTime:     "12:00",
		EndTime:       "14:00",
	}
	if !IsDiscountActive(d, ctxAt(testNow)) {
		t.Error("expected active at 13:30 inside a 12:00-14:00 window")
	}
	if IsDiscountActive(d, ctxAt(testNow.Add(3*time.Hour))) {
		t.Error("expected inactive outside the window")
	}

	// overnight window wraps midnight
	d.StartTime, d.EndTime = "22:00", "02:00"
	if !IsDiscountActive(d, ctxAt(time.Date(2025, 6, 10, 23, 15, 0, 0, time.UTC))) {
		t.Error("expected active at 23:15 in a 22:00-02:00 window")
	}
	if !IsDiscountActive(d, ctxAt(time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC))) {
		t.Error("expected active at 01:00 in a 22:00-02:00 window")
	}
	if IsDiscountActive(d, ctxAt(testNow)) {
		t.Error("expected inactive at 13:30 in a 22:00-02:00 window")
	}

	// identical endpoints mean always-on
	d.StartTime, d.EndTime = "08:00", "08:00"
	if !IsDiscountActive(d, ctxAt(testNow)) {
		t.Error("equal start and end times should mean all day")
	}

	// half-configured pair deactivates entirely
	d.StartTime, d.EndTime = "12:00", ""
	if IsDiscountActive(d, ctxAt(testNow)) {
		t.Error("a time window missing its end must deactivate the discount")
	}
}

func TestIsDiscountActiveEventTag(t *testing.T) {
	d := domain.Discount{
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
		ApplyToAll:    true,
		IsForever:     true,
		EventTag:      "summer-festival",
	}
	if IsDiscountActive(d, ctxAt(testNow)) {
		t.Error("event discount must be inactive without its tag")
	}
	if !IsDiscountActive(d, ctxAt(testNow, "summer-festival")) {
		t.Error("event discount must be active when its tag is live")
	}
}

func TestEffectivePricePercentage(t *testing.T) {
	half := domain.Discount{
		ID:            "d1",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 50,
		ItemIDs:       []string{"coffee"},
		IsForever:     true,
	}

	got := EffectivePrice("coffee", 3.50, []domain.Discount{half}, ctxAt(testNow))
	if got != 1.75 {
		t.Errorf("EffectivePrice = %v, want 1.75", got)
	}

	// untargeted item stays at base
	got = EffectivePrice("burger", 6.50, []domain.Discount{half}, ctxAt(testNow))
	if got != 6.50 {
		t.Errorf("EffectivePrice = %v, want base 6.50", got)
	}
}

func TestEffectivePriceFixedAndClamps(t *testing.T) {
	fixed := domain.Discount{
		DiscountType:  domain.DiscountFixed,
		DiscountValue: 2,
		ApplyToAll:    true,
		IsForever:     true,
	}
	if got := EffectivePrice("coffee", 3.50, []domain.Discount{fixed}, ctxAt(testNow)); got != 2 {
		t.Errorf("fixed price = %v, want 2", got)
	}

	// fixed price above base never raises the price
	fixed.DiscountValue = 10
	if got := EffectivePrice("coffee", 3.50, []domain.Discount{fixed}, ctxAt(testNow)); got != 3.50 {
		t.Errorf("fixed above base = %v, want 3.50", got)
	}

	// percentage over 100 clamps to free, not negative
	over := domain.Discount{
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 150,
		ApplyToAll:    true,
		IsForever:     true,
	}
	if got := EffectivePrice("coffee", 3.50, []domain.Discount{over}, ctxAt(testNow)); got != 0 {
		t.Errorf("over-100 percentage = %v, want 0", got)
	}

	// non-positive percentage is rejected, base survives
	zero := domain.Discount{
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 0,
		ApplyToAll:    true,
		IsForever:     true,
	}
	if got := EffectivePrice("coffee", 3.50, []domain.Discount{zero}, ctxAt(testNow)); got != 3.50 {
		t.Errorf("zero percentage = %v, want base 3.50", got)
	}
}

func TestEffectivePriceBestOfManyNoStacking(t *testing.T) {
	discounts := []domain.Discount{
		{DiscountType: domain.DiscountPercentage, DiscountValue: 10, ApplyToAll: true, IsForever: true},
		{DiscountType: domain.DiscountPercentage, DiscountValue: 25, ApplyToAll: true, IsForever: true},
		{DiscountType: domain.DiscountFixed, DiscountValue: 3, ApplyToAll: true, IsForever: true},
	}
	// best single candidate is 25% off 4.00 = 3.00, tied with fixed 3.00
	if got := EffectivePrice("donut", 4, discounts, ctxAt(testNow)); got != 3 {
		t.Errorf("best-of = %v, want 3", got)
	}
}
