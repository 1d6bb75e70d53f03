package view

import (
	"github.com/vbonduro/wasteless/internal/domain"
	"github.com/vbonduro/wasteless/internal/freshness"
	"github.com/vbonduro/wasteless/internal/recipes"
)

const (
	EmptyPantry   = "Your pantry is empty. Add items to start tracking!"
	EmptyKitchen  = "Your kitchen is empty."
	EmptyMarket   = "No items in the market yet."
	EmptyAlerts   = "All clear! Nothing expiring soon."
	EmptyPredict  = "No data available."
	NoIngredients = "No specific ingredients found!"
)

// moneyPerFreshItem is the saving credited per fresh item, in dollars.
const moneyPerFreshItem = 5

type ListData struct {
	Items     []ItemRow
	EmptyText string
}

type SellerPredictData struct {
	Breakdown
	MoneySaved int
}

type BuyerPredictData struct {
	Breakdown
	Alert     bool
	EmptyText string
}

type TipsData struct {
	Cards       []recipes.Card
	NoMatch     bool
	Suggestions []recipes.Recipe
	Tips        []domain.Tip
}

// Listing is a market item with its mocked seller.
type Listing struct {
	ItemRow
	Seller SellerProfile
}

type MarketData struct {
	Listings  []Listing
	EmptyText string
}

func pantryPage(in Input) Page {
	return Page{
		Title:    "Wasteless - Pantry",
		Template: "pantry",
		Data: ListData{
			Items:     rows(freshness.SortByStatus(in.State.Items, in.Now), in.Now),
			EmptyText: EmptyPantry,
		},
	}
}

func sellerPredictPage(in Input) Page {
	b := newBreakdown(in.State.Items, in.Now)
	return Page{
		Title:    "Wasteless - Predictor",
		Template: "seller_predict",
		Data: SellerPredictData{
			Breakdown:  b,
			MoneySaved: b.Fresh * moneyPerFreshItem,
		},
	}
}

func sellerTipsPage(in Input) Page {
	return Page{
		Title:    "Wasteless - Tips",
		Template: "tips",
		Data: TipsData{
			Cards:       recipes.Match(in.State.Items),
			Suggestions: in.Suggestions,
			Tips:        in.State.Tips,
		},
	}
}

// remindersPage lists expired and at-risk items in stored order.
func remindersPage(in Input) Page {
	var alerts []domain.Item
	for _, item := range in.State.Items {
		switch freshness.Classify(item.Expiry, in.Now) {
		case freshness.Expired, freshness.AtRisk:
			alerts = append(alerts, item)
		}
	}
	return Page{
		Title:    "Wasteless - Alerts",
		Template: "reminders",
		Data: ListData{
			Items:     rows(alerts, in.Now),
			EmptyText: EmptyAlerts,
		},
	}
}

func marketPage(in Input) Page {
	var listings []Listing
	for _, item := range in.State.MarketItems {
		if !item.ForSale {
			continue
		}
		listings = append(listings, Listing{
			ItemRow: newRow(item, in.Now),
			Seller:  SellerFor(item.ID),
		})
	}
	return Page{
		Title:    "Wasteless - Market",
		Template: "market",
		Data: MarketData{
			Listings:  listings,
			EmptyText: EmptyMarket,
		},
	}
}

func kitchenPage(in Input) Page {
	return Page{
		Title:    "My Kitchen (Leftovers)",
		Template: "kitchen",
		Data: ListData{
			Items:     rows(freshness.SortByStatus(in.State.MyItems, in.Now), in.Now),
			EmptyText: EmptyKitchen,
		},
	}
}

func buyerPredictPage(in Input) Page {
	b := newBreakdown(in.State.MyItems, in.Now)
	return Page{
		Title:    "Waste Predictor",
		Template: "buyer_predict",
		Data: BuyerPredictData{
			Breakdown: b,
			Alert:     b.Urgent() > 0,
			EmptyText: EmptyPredict,
		},
	}
}

func buyerTipsPage(in Input) Page {
	cards := recipes.Match(in.State.MyItems)
	return Page{
		Title:    "Smart Recipes",
		Template: "tips",
		Data: TipsData{
			Cards:       cards,
			NoMatch:     len(cards) == 0,
			Suggestions: in.Suggestions,
			Tips:        in.State.Tips,
		},
	}
}
