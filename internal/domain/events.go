package domain

import "encoding/json"

// Outbound event names sent to the host game client.
const (
	EventRingUp                  = "ringUp"
	EventRingUpMachineError      = "ringUpMachineError"
	EventEnableCustomerActions   = "enableCustomerActions"
	EventCustomerPaid            = "customerPaid"
	EventCustomerStole           = "customerStole"
	EventStealMinigameStarted    = "stealMinigameStarted"
	EventStealAttemptAutoBlocked = "stealAttemptAutoBlocked"
	EventStealMinigameResolved   = "stealMinigameResolved"
	EventRegisterTierUpgraded    = "registerTierUpgraded"
	EventOpenRegister            = "openRegister"
	EventClose                   = "close"
)

// Inbound action names pushed by the host on the multiplexed channel.
const (
	ActionOpenRegister  = "openRegister"
	ActionCloseRegister = "closeRegister"
	ActionSetRole       = "setRole"
	ActionSetView       = "setView"
	ActionSyncState     = "syncState"
)

// HostMessage is the envelope of every inbound host message.
type HostMessage struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// Membership mirrors the loose shapes hosts send for organization membership.
// Resolution order matters, see service.ResolveMembership.
type Membership struct {
	IsOrganizationMember *bool  `json:"isOrganizationMember,omitempty"`
	IsOrgMember          *bool  `json:"isOrgMember,omitempty"`
	OrganizationMember   *bool  `json:"organizationMember,omitempty"`
	IsBusinessMember     *bool  `json:"isBusinessMember,omitempty"`
	OrganizationID       string `json:"organizationId,omitempty"`
	OrgID                string `json:"orgId,omitempty"`
	BusinessID           string `json:"businessId,omitempty"`
}

type InteractionContext struct {
	BusinessID    string `json:"businessId,omitempty"`
	InteractionID string `json:"interactionId,omitempty"`
	Membership
}

// OpenRegisterPayload carries the interaction context a player entered with.
type OpenRegisterPayload struct {
	Role        string              `json:"role"`
	View        string              `json:"view"`
	StoreID     string              `json:"storeId"`
	RegisterID  string              `json:"registerId"`
	Interaction *InteractionContext `json:"interaction"`
	Membership
}

type SetRolePayload struct {
	Role string `json:"role"`
	View string `json:"view"`
	Membership
}

type SetViewPayload struct {
	View string `json:"view"`
}

// SyncStatePatch is the allow-listed partial state a host may push. Only these
// keys ever merge into engine state; anything else in the payload is dropped.
type SyncStatePatch struct {
	Stores                []Store                  `json:"stores,omitempty"`
	ActiveStoreID         string                   `json:"activeStoreId,omitempty"`
	ActiveRegisterID      string                   `json:"activeRegisterId,omitempty"`
	TraysByRegister       map[string][]TrayLine    `json:"traysByRegister,omitempty"`
	SessionsByRegister    map[string]Session       `json:"sessionsByRegister,omitempty"`
	TierByRegister        map[string]int           `json:"registerTierByRegister,omitempty"`
	LevelsByRegister      map[string]int           `json:"registerLevelsByRegister,omitempty"` // legacy alias for TierByRegister
	StatsByRegister       map[string]RegisterStats `json:"registerStatsByRegister,omitempty"`
	StatsByRegisterLegacy map[string]RegisterStats `json:"statsByRegister,omitempty"`
	CurrentRole           string                   `json:"currentRole,omitempty"`
	View                  string                   `json:"view,omitempty"`
	ActiveEventTags       []string                 `json:"activeEventTags,omitempty"`
	InteractionContext    *InteractionContext      `json:"interactionContext,omitempty"`
	HasInteractionContext bool                     `json:"-"`
	Membership
}

// RingUpResult is the server-authoritative response payload to a ringUp event.
// Server pricing wins: on success the tray and discount selection replace the
// locally computed ones.
type RingUpResult struct {
	Tray                []TrayLine `json:"tray,omitempty"`
	SelectedDiscountIDs []string   `json:"selectedDiscountIds,omitempty"`
}

// StockErrorDetail segments a server-side stock rejection.
type StockErrorDetail struct {
	MissingItems    []string          `json:"missingItems,omitempty"`
	InsufficientQty []InsufficientQty `json:"insufficientQty,omitempty"`
	ComboInvalid    []string          `json:"comboInvalid,omitempty"`
}

type InsufficientQty struct {
	Name      string `json:"name"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
}
