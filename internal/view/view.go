// Package view turns an inventory snapshot into the view model for one
// dashboard tab. Builders are pure: the same state and clock always produce
// the same page.
package view

import (
	"math"
	"strconv"
	"time"

	"github.com/vbonduro/wasteless/internal/domain"
	"github.com/vbonduro/wasteless/internal/freshness"
	"github.com/vbonduro/wasteless/internal/recipes"
)

// Page is a rendered tab: the template to execute and the data it reads.
type Page struct {
	Title    string
	Template string
	Tab      domain.Tab
	Role     domain.Role
	ShowAdd  bool
	Data     any
}

// Input is everything a builder reads.
type Input struct {
	State       domain.AppState
	Now         time.Time
	Suggestions []recipes.Recipe
}

type builder func(Input) Page

var sellerTabs = map[domain.Tab]builder{
	domain.TabPantry:    pantryPage,
	domain.TabPredict:   sellerPredictPage,
	domain.TabTips:      sellerTipsPage,
	domain.TabReminders: remindersPage,
}

var buyerTabs = map[domain.Tab]builder{
	domain.TabMarket:  marketPage,
	domain.TabKitchen: kitchenPage,
	domain.TabTips:    buyerTipsPage,
	domain.TabPredict: buyerPredictPage,
}

// DefaultTab is the tab a role lands on.
func DefaultTab(role domain.Role) domain.Tab {
	if role == domain.RoleBuyer {
		return domain.TabMarket
	}
	return domain.TabPantry
}

// ResolveTab maps a requested tab name to one the role has, falling back to
// the role's default.
func ResolveTab(role domain.Role, tab string) domain.Tab {
	if _, ok := tabsFor(role)[domain.Tab(tab)]; ok {
		return domain.Tab(tab)
	}
	return DefaultTab(role)
}

// Render builds the page for in.State.CurrentTab.
func Render(role domain.Role, in Input) Page {
	tab := ResolveTab(role, string(in.State.CurrentTab))
	in.State.CurrentTab = tab
	page := tabsFor(role)[tab](in)
	page.Tab = tab
	page.Role = role
	page.ShowAdd = tab == domain.TabPantry || tab == domain.TabKitchen
	return page
}

func tabsFor(role domain.Role) map[domain.Tab]builder {
	if role == domain.RoleBuyer {
		return buyerTabs
	}
	return sellerTabs
}

// NavTab is one entry of the bottom navigation bar.
type NavTab struct {
	Tab    domain.Tab
	Label  string
	Icon   string
	Active bool
}

// Nav returns the navigation bar for role with current highlighted.
func Nav(role domain.Role, current domain.Tab) []NavTab {
	var tabs []NavTab
	if role == domain.RoleBuyer {
		tabs = []NavTab{
			{Tab: domain.TabMarket, Label: "Market", Icon: "🛒"},
			{Tab: domain.TabKitchen, Label: "Kitchen", Icon: "🍳"},
			{Tab: domain.TabTips, Label: "Recipes", Icon: "💡"},
			{Tab: domain.TabPredict, Label: "Predict", Icon: "📊"},
		}
	} else {
		tabs = []NavTab{
			{Tab: domain.TabPantry, Label: "Pantry", Icon: "🥫"},
			{Tab: domain.TabPredict, Label: "Predict", Icon: "📊"},
			{Tab: domain.TabTips, Label: "Tips", Icon: "💡"},
			{Tab: domain.TabReminders, Label: "Alerts", Icon: "🔔"},
		}
	}
	for i := range tabs {
		tabs[i].Active = tabs[i].Tab == current
	}
	return tabs
}

// ItemRow is one item as shown in a list.
type ItemRow struct {
	ID          int64
	Name        string
	Icon        string
	Qty         string
	Expiry      string
	StatusLabel string
	StatusClass string
	ForSale     bool
	Price       string
}

func newRow(item domain.Item, now time.Time) ItemRow {
	status := freshness.Classify(item.Expiry, now)
	return ItemRow{
		ID:          item.ID,
		Name:        item.Name,
		Icon:        FoodIcon(item.Name),
		Qty:         item.Qty.String(),
		Expiry:      item.Expiry,
		StatusLabel: status.Label(),
		StatusClass: status.Class(),
		ForSale:     item.ForSale,
		Price:       PriceLabel(item.Price),
	}
}

func rows(items []domain.Item, now time.Time) []ItemRow {
	out := make([]ItemRow, 0, len(items))
	for _, item := range items {
		out = append(out, newRow(item, now))
	}
	return out
}

// PriceLabel formats a listing price. A missing or zero price is free.
func PriceLabel(price *float64) string {
	if price == nil || *price == 0 {
		return "$Free"
	}
	return "$" + strconv.FormatFloat(*price, 'f', -1, 64)
}

// Breakdown is a set of status counts with bar widths in percent.
type Breakdown struct {
	freshness.Tally
	FreshPct   int
	AtRiskPct  int
	ExpiredPct int
}

func newBreakdown(items []domain.Item, now time.Time) Breakdown {
	tally := freshness.Count(items, now)
	b := Breakdown{Tally: tally}
	if total := tally.Total(); total > 0 {
		b.FreshPct = percent(tally.Fresh, total)
		b.AtRiskPct = percent(tally.AtRisk, total)
		b.ExpiredPct = percent(tally.Expired, total)
	}
	return b
}

func percent(n, total int) int {
	return int(math.Round(float64(n) * 100 / float64(total)))
}
