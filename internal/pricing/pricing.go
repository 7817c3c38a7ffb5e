// Package pricing resolves discount activity and effective item prices. All
// functions are pure: temporal context comes in as an argument, never from the
// wall clock.
package pricing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/patrick-gordon/umbra-registers/internal/domain"
)

// Context is the temporal and event context a discount is evaluated against.
type Context struct {
	Now             time.Time
	ActiveEventTags []string
}

func parseTimeToMinutes(value string) (int, bool) {
	if !strings.Contains(value, ":") {
		return 0, false
	}
	parts := strings.SplitN(value, ":", 2)
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

func inTimeWindow(now time.Time, startTime, endTime string) bool {
	startMinutes, okStart := parseTimeToMinutes(startTime)
	endMinutes, okEnd := parseTimeToMinutes(endTime)
	if !okStart || !okEnd {
		return true
	}
	if startMinutes == endMinutes {
		return true
	}

	currentMinutes := now.Hour()*60 + now.Minute()
	if startMinutes < endMinutes {
		return currentMinutes >= startMinutes && currentMinutes <= endMinutes
	}
	// Overnight window, e.g. 22:00 -> 02:00
	return currentMinutes >= startMinutes || currentMinutes <= endMinutes
}

func normalizeWeekdays(weekdays []int) []int {
	out := make([]int, 0, len(weekdays))
	for _, day := range weekdays {
		if day >= 0 && day <= 6 {
			out = append(out, day)
		}
	}
	return out
}

// IsDiscountActive reports whether a discount applies right now. Every
// configured constraint must hold: date range (unless forever), weekday list,
// time-of-day window (a half-configured window deactivates the discount), and
// event tag membership.
func IsDiscountActive(d domain.Discount, ctx Context) bool {
	now := ctx.Now
	if now.IsZero() {
		now = time.Now()
	}

	if !d.IsForever {
		if d.StartDate != "" {
			start, err := time.ParseInLocation("2006-01-02", d.StartDate, now.Location())
			if err != nil || now.Before(start) {
				return false
			}
		}
		if d.EndDate != "" {
			end, err := time.ParseInLocation("2006-01-02", d.EndDate, now.Location())
			if err != nil {
				return false
			}
			end = end.Add(24*time.Hour - time.Second)
			if now.After(end) {
				return false
			}
		}
	}

	weekdays := normalizeWeekdays(d.Weekdays)
	if len(weekdays) > 0 {
		match := false
		for _, day := range weekdays {
			if day == int(now.Weekday()) {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}

	if (d.StartTime != "" && d.EndTime == "") || (d.StartTime == "" && d.EndTime != "") {
		return false
	}
	if !inTimeWindow(now, d.StartTime, d.EndTime) {
		return false
	}

	if tag := strings.TrimSpace(d.EventTag); tag != "" {
		found := false
		for _, active := range ctx.ActiveEventTags {
			if active == tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

func discountedPrice(d domain.Discount, basePrice float64) (float64, bool) {
	switch d.DiscountType {
	case domain.DiscountPercentage:
		percent := d.DiscountValue
		if math.IsNaN(percent) || math.IsInf(percent, 0) || percent <= 0 {
			return 0, false
		}
		if percent > 100 {
			percent = 100
		}
		return math.Max(0, basePrice*(1-percent/100)), true
	case domain.DiscountFixed:
		fixed := d.DiscountValue
		if math.IsNaN(fixed) || math.IsInf(fixed, 0) || fixed < 0 {
			return 0, false
		}
		return math.Min(basePrice, fixed), true
	default:
		return 0, false
	}
}

// EffectivePrice returns the best price for an item across every active
// discount that targets it. Discounts never stack: the single lowest candidate
// wins, and a non-matching set leaves the base price untouched.
func EffectivePrice(itemID string, basePrice float64, discounts []domain.Discount, ctx Context) float64 {
	best := basePrice
	matched := false
	for _, d := range discounts {
		if !d.ApplyToAll && !containsString(d.ItemIDs, itemID) {
			continue
		}
		if !IsDiscountActive(d, ctx) {
			continue
		}
		price, ok := discountedPrice(d, basePrice)
		if !ok {
			continue
		}
		if !matched || price < best {
			best = price
			matched = true
		}
	}
	return best
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
