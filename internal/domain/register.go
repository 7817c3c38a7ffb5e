package domain

import "time"

// Role is the identity a register session is driven by.
type Role string

const (
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
	RoleCustomer Role = "customer"
)

// Phase is the lifecycle stage of a register session.
type Phase string

const (
	PhaseEmployee      Phase = "employee"
	PhaseCustomer      Phase = "customer"
	PhaseStealMinigame Phase = "stealMinigame"
)

// Winner marks the resolved side of a steal minigame. Empty until resolved.
type Winner string

const (
	WinnerNone     Winner = ""
	WinnerEmployee Winner = "employee"
	WinnerCustomer Winner = "customer"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type PromotionType string

const (
	PromotionStandard     PromotionType = "standard"
	PromotionHappyHour    PromotionType = "happyHour"
	PromotionWeekdayDeal  PromotionType = "weekdayDeal"
	PromotionEventSpecial PromotionType = "eventSpecial"
)

type MenuItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	SortOrder int     `json:"sortOrder"`
	Category  string  `json:"category"`
}

// Combo bundles at least two distinct catalog items at a fixed price.
type Combo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ItemIDs     []string `json:"itemIds"`
	BundlePrice float64  `json:"bundlePrice"`
}

// Discount describes one promotion. Activity is resolved against the current
// time plus the host-pushed active event tags, never stored.
type Discount struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	DiscountType   DiscountType  `json:"discountType"`
	DiscountValue  float64       `json:"discountValue"`
	ItemIDs        []string      `json:"itemIds"`
	ApplyToAll     bool          `json:"applyToAllItems"`
	StartDate      string        `json:"startDate,omitempty"` // YYYY-MM-DD
	EndDate        string        `json:"endDate,omitempty"`   // YYYY-MM-DD
	IsForever      bool          `json:"isForever"`
	StartTime      string        `json:"startTime,omitempty"` // HH:MM
	EndTime        string        `json:"endTime,omitempty"`   // HH:MM
	Weekdays       []int         `json:"weekdays,omitempty"`  // 0=Sunday .. 6=Saturday
	EventTag       string        `json:"eventTag,omitempty"`
	PromotionType  PromotionType `json:"promotionType"`
}

type Register struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Store struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Catalog   []MenuItem `json:"catalog"`
	Combos    []Combo    `json:"combos"`
	Discounts []Discount `json:"discounts"`
	Registers []Register `json:"registers"`
}

type LineType string

const (
	LineItem  LineType = "item"
	LineCombo LineType = "combo"
)

// TrayLine is one ring-up line. Item lines carry the catalog item id; combo
// lines carry "combo:"+comboID and consume one unit of every member item.
type TrayLine struct {
	ID        string   `json:"id"`
	LineType  LineType `json:"lineType"`
	ItemID    string   `json:"itemId,omitempty"`
	ComboID   string   `json:"comboId,omitempty"`
	ItemIDs   []string `json:"itemIds,omitempty"`
	Name      string   `json:"name"`
	BasePrice float64  `json:"basePrice"`
	UnitPrice float64  `json:"unitPrice"`
	Qty       int      `json:"qty"`
}

// StealState is the sub-state of the theft minigame. Winner stays "employee"
// for the rest of the transaction once the register wins; it blocks further
// steal attempts but not payment.
type StealState struct {
	Active        bool      `json:"active"`
	StartedAt     time.Time `json:"startedAt"`
	EndsAt        time.Time `json:"endsAt"`
	DurationMs    int       `json:"durationMs"`
	CustomerScore int       `json:"customerScore"`
	EmployeeScore int       `json:"employeeScore"`
	Winner        Winner    `json:"winner"`
}

type Session struct {
	Phase               Phase      `json:"phase"`
	IsRungUp            bool       `json:"isRungUp"`
	IsProcessing        bool       `json:"isProcessing"`
	ProcessingProgress  int        `json:"processingProgress"`
	ProcessingError     string     `json:"processingError"`
	SelectedDiscountIDs []string   `json:"selectedDiscountIds"`
	StealMinigame       StealState `json:"stealMinigame"`
}

// NewSession returns a freshly initialized employee-phase session.
func NewSession() Session {
	return Session{
		Phase:               PhaseEmployee,
		SelectedDiscountIDs: []string{},
		StealMinigame:       StealState{DurationMs: 10000},
	}
}

// RegisterStats counters only ever grow; rates are derived on read.
type RegisterStats struct {
	TotalSales           float64   `json:"totalSales"`
	TotalTransactions    int       `json:"totalTransactions"`
	PaidTransactions     int       `json:"paidTransactions"`
	StolenTransactions   int       `json:"stolenTransactions"`
	StealAttempts        int       `json:"stealAttempts"`
	BlockedStealAttempts int       `json:"blockedStealAttempts"`
	ItemsSold            int       `json:"itemsSold"`
	ItemsStolen          int       `json:"itemsStolen"`
	LastPaidTotal        float64   `json:"lastPaidTotal"`
	LastTransactionAt    time.Time `json:"lastTransactionAt,omitempty"`
}

// Receipt is an immutable snapshot taken when a payment completes.
type Receipt struct {
	ID            string     `json:"id"`
	StoreID       string     `json:"storeId"`
	StoreName     string     `json:"storeName"`
	RegisterID    string     `json:"registerId"`
	RegisterName  string     `json:"registerName"`
	PaidAt        time.Time  `json:"paidAt"`
	Items         []TrayLine `json:"items"`
	ItemCount     int        `json:"itemCount"`
	Total         float64    `json:"total"`
	PaymentMethod string     `json:"paymentMethod"`
}
