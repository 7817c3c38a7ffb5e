// Package interaction holds the prototype map of world interaction points a
// host hydrates registers from. Hosts mirror this structure and may replace it
// wholesale over the sync channel.
package interaction

// Point is a single world trigger bound to a register. Polyzone points are
// area triggers, prop points are interactable world entities.
type Point struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	Label            string  `json:"label"`
	RegisterID       string  `json:"registerId"`
	Coords           Vec3    `json:"coords"`
	Size             *Vec3   `json:"size,omitempty"`
	Heading          float64 `json:"heading"`
	Model            string  `json:"model,omitempty"`
	MinZ             float64 `json:"minZ,omitempty"`
	MaxZ             float64 `json:"maxZ,omitempty"`
	InteractDistance float64 `json:"interactDistance,omitempty"`
}

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Business groups the interaction points belonging to one in-game business.
type Business struct {
	BusinessID        string  `json:"businessId"`
	Label             string  `json:"label"`
	InteractionPoints []Point `json:"interactionPoints"`
}

// Defaults returns the seed interaction map.
func Defaults() []Business {
	return []Business{
		{
			BusinessID: "burgershot",
			Label:      "Burger Shot",
			InteractionPoints: []Point{
				{
					ID:         "bs-register-zone-1",
					Type:       "polyzone",
					Label:      "Front Counter Zone",
					RegisterID: "store-1-register-1",
					Coords:     Vec3{X: -1193.2, Y: -892.1, Z: 13.9},
					Size:       &Vec3{X: 2.2, Y: 1.2, Z: 2.0},
					Heading:    35.0,
					MinZ:       12.8,
					MaxZ:       14.8,
				},
				{
					ID:               "bs-register-prop-1",
					Type:             "prop",
					Label:            "Counter Till Prop",
					RegisterID:       "store-1-register-1",
					Model:            "prop_till_01",
					Coords:           Vec3{X: -1194.1, Y: -893.0, Z: 13.95},
					Heading:          35.0,
					InteractDistance: 1.5,
				},
			},
		},
		{
			BusinessID: "uwucafe",
			Label:      "UwU Cafe",
			InteractionPoints: []Point{
				{
					ID:         "uwu-register-zone-1",
					Type:       "polyzone",
					Label:      "Main Register Zone",
					RegisterID: "store-1-register-1",
					Coords:     Vec3{X: -584.9, Y: -1061.4, Z: 22.3},
					Size:       &Vec3{X: 1.8, Y: 1.0, Z: 2.0},
					Heading:    90.0,
					MinZ:       21.5,
					MaxZ:       23.4,
				},
				{
					ID:               "uwu-register-prop-1",
					Type:             "prop",
					Label:            "Cafe Till Prop",
					RegisterID:       "store-1-register-1",
					Model:            "prop_till_01",
					Coords:           Vec3{X: -585.2, Y: -1061.5, Z: 22.35},
					Heading:          90.0,
					InteractDistance: 1.4,
				},
			},
		},
	}
}

// ForBusiness returns the interaction set of one business, or nil.
func ForBusiness(set []Business, businessID string) *Business {
	for i := range set {
		if set[i].BusinessID == businessID {
			return &set[i]
		}
	}
	return nil
}
