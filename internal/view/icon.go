package view

import (
	"fmt"
	"strings"
)

var foodIcons = []struct {
	keywords []string
	icon     string
}{
	{[]string{"milk", "yogurt", "cheese", "butter"}, "🥛"},
	{[]string{"rice", "grain", "pasta"}, "🍚"},
	{[]string{"apple", "fruit", "banana"}, "🍎"},
	{[]string{"carrot", "veg", "salad"}, "🥕"},
	{[]string{"bread", "toast", "bagel"}, "🍞"},
	{[]string{"meat", "chicken", "beef"}, "🥩"},
	{[]string{"fish", "tuna"}, "🐟"},
	{[]string{"egg"}, "🥚"},
	{[]string{"coffee", "tea"}, "☕"},
}

const defaultFoodIcon = "🥡"

// FoodIcon picks an emoji for an item name by keyword. The first matching
// group wins.
func FoodIcon(name string) string {
	lower := strings.ToLower(name)
	for _, group := range foodIcons {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.icon
			}
		}
	}
	return defaultFoodIcon
}

var sellerNames = []string{"Alice Green", "Chef Bob", "Pantry Saver", "EcoWarrior99"}

// SellerProfile is the mocked seller behind a market listing.
type SellerProfile struct {
	ItemID   int64
	Name     string
	Trust    string
	ImpactKg string
}

// SellerFor derives a stable mock seller from a listing id.
func SellerFor(id int64) SellerProfile {
	return SellerProfile{
		ItemID:   id,
		Name:     sellerNames[mod(id, int64(len(sellerNames)))],
		Trust:    fmt.Sprintf("%.1f", 4.0+float64(mod(id, 10))/10),
		ImpactKg: fmt.Sprintf("%.1f", float64(id)*2.5),
	}
}

func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
