package tier

import "time"

// Tier is one register upgrade level. Levels strictly improve: shorter
// processing, lower jam/steal risk, stronger theft defense.
type Tier struct {
	Level                   int           `json:"level"`
	Name                    string        `json:"name"`
	ProcessingMs            time.Duration `json:"-"`
	RingUpErrorChance       float64       `json:"ringUpErrorChance"`
	AutoDiscountAssist      bool          `json:"autoDiscountAssist"`
	StealMinigameDuration   time.Duration `json:"-"`
	EmployeeDefenseBonus    int           `json:"employeeDefenseBonus"`
	InstantStealBlockChance float64       `json:"instantStealBlockChance"`
	Unlocks                 []string      `json:"unlocks"`
}

var Tiers = []Tier{
	{
		Level:                 1,
		Name:                  "Starter Terminal",
		ProcessingMs:          7000 * time.Millisecond,
		RingUpErrorChance:     0.2,
		StealMinigameDuration: 10 * time.Second,
		Unlocks: []string{
			"Basic ring-up only",
			"Long processing with buffer bar",
			"High jam risk, no automation",
		},
	},
	{
		Level:                 2,
		Name:                  "Refit Terminal",
		ProcessingMs:          2800 * time.Millisecond,
		RingUpErrorChance:     0.16,
		StealMinigameDuration: 10 * time.Second,
		Unlocks: []string{
			"Faster total calculation",
			"Better keypad responsiveness",
			"Slightly stabilized internals",
		},
	},
	{
		Level:                 3,
		Name:                  "Shift Pro Register",
		ProcessingMs:          2100 * time.Millisecond,
		RingUpErrorChance:     0.12,
		AutoDiscountAssist:    true,
		StealMinigameDuration: 10 * time.Second,
		EmployeeDefenseBonus:  1,
		Unlocks: []string{
			"Auto Discount Assist",
			"Smoother tray updates",
			"Theft defense starts +1",
		},
	},
	{
		Level:                 4,
		Name:                  "Service Lane Unit",
		ProcessingMs:          1600 * time.Millisecond,
		RingUpErrorChance:     0.09,
		AutoDiscountAssist:    true,
		StealMinigameDuration: 9200 * time.Millisecond,
		EmployeeDefenseBonus:  2,
		Unlocks: []string{
			"Accelerated ring-up pipeline",
			"Auto Discount Assist",
			"Shorter theft minigame window",
		},
	},
	{
		Level:                   5,
		Name:                    "Rush Hour Console",
		ProcessingMs:            1200 * time.Millisecond,
		RingUpErrorChance:       0.06,
		AutoDiscountAssist:      true,
		StealMinigameDuration:   8600 * time.Millisecond,
		EmployeeDefenseBonus:    3,
		InstantStealBlockChance: 0.08,
		Unlocks: []string{
			"High-volume queue handling",
			"Theft defense starts +3",
			"8% instant theft auto-block",
		},
	},
	{
		Level:                   6,
		Name:                    "Executive POS",
		ProcessingMs:            850 * time.Millisecond,
		RingUpErrorChance:       0.035,
		AutoDiscountAssist:      true,
		StealMinigameDuration:   8 * time.Second,
		EmployeeDefenseBonus:    4,
		InstantStealBlockChance: 0.14,
		Unlocks: []string{
			"Near-instant ring-up",
			"Theft defense starts +4",
			"14% instant theft auto-block",
		},
	},
	{
		Level:                   7,
		Name:                    "Quantum Checkout Core",
		ProcessingMs:            500 * time.Millisecond,
		RingUpErrorChance:       0.015,
		AutoDiscountAssist:      true,
		StealMinigameDuration:   7 * time.Second,
		EmployeeDefenseBonus:    5,
		InstantStealBlockChance: 0.22,
		Unlocks: []string{
			"Top-tier instant checkout",
			"Theft defense starts +5",
			"22% instant theft auto-block",
		},
	},
}

// MaxLevel is the highest upgradeable tier level.
var MaxLevel = Tiers[len(Tiers)-1].Level

// Get returns the tier for a level, falling back to level 1 for unknown levels.
func Get(level int) Tier {
	for _, t := range Tiers {
		if t.Level == level {
			return t
		}
	}
	return Tiers[0]
}
