package domain

import "time"

// Role identifies which dashboard an account uses. The seller role is stored
// as "user" for compatibility with existing sessions.
type Role string

const (
	RoleSeller Role = "user"
	RoleBuyer  Role = "buyer"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleSeller, RoleBuyer:
		return Role(s), true
	default:
		return "", false
	}
}

// Tab names a dashboard view.
type Tab string

const (
	TabPantry    Tab = "pantry"
	TabPredict   Tab = "predict"
	TabTips      Tab = "tips"
	TabReminders Tab = "reminders"
	TabMarket    Tab = "market"
	TabKitchen   Tab = "kitchen"
)

// Item is a tracked food entry. ID is the creation time in milliseconds.
type Item struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Qty     Quantity `json:"qty"`
	Expiry  string   `json:"expiry"`
	ForSale bool     `json:"forSale"`
	Price   *float64 `json:"price,omitempty"`
}

type Tip struct {
	Title   string
	Content string
}

// AppState is a read-only snapshot of everything a dashboard renders from.
type AppState struct {
	CurrentTab  Tab
	Items       []Item
	MarketItems []Item
	MyItems     []Item
	Tips        []Tip
}

// Profile is the per-account document kept by the identity backend.
type Profile struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
