package recipes

import (
	"context"
	"strings"

	"github.com/vbonduro/wasteless/internal/domain"
)

// Tips are the general storage tips shown under the recipe cards.
var Tips = []domain.Tip{
	{Title: "Store Potatoes with Apples", Content: "Apples release ethylene gas which keeps potatoes from sprouting!"},
	{Title: "Revive Wilting Veggies", Content: "Soak slightly wilted veggies in ice water for 30 mins to crisp them up."},
	{Title: "Freeze Fresh Herbs", Content: "Chop herbs and freeze them in olive oil in ice cube trays for instant flavor bombs."},
}

type Recipe struct {
	Name        string
	Description string
}

// Card groups recipes for one leftover ingredient.
type Card struct {
	Ingredient string
	Emoji      string
	Title      string
	Subtitle   string
	Recipes    []Recipe
}

var catalog = []Card{
	{
		Ingredient: "rice",
		Emoji:      "🍚",
		Title:      "Leftover Rice?",
		Subtitle:   "Try these Indian classics:",
		Recipes: []Recipe{
			{Name: "🍋 Lemon Rice (Chitranna)", Description: "Heat oil, add mustard seeds, curry leaves, turmeric, and peanuts. Mix with leftover rice and squeeze fresh lemon juice."},
			{Name: "🍅 Tomato Rice", Description: "Sauté onions, spices, and chopped tomatoes until mushy. Mix in rice and garnish with coriander."},
			{Name: "🧈 Ghee Rice", Description: "Roast cashews/raisins in ghee. Add whole spices (cardamom/cloves). Toss rice in the aromatic ghee and serve hot."},
		},
	},
	{
		Ingredient: "bread",
		Emoji:      "🍞",
		Title:      "Stale Bread?",
		Subtitle:   "Don't toss it!",
		Recipes: []Recipe{
			{Name: "🥖 Bread Upma", Description: "Cube stale bread and toss it with onions, chillies, curry leaves and a little tomato."},
			{Name: "🥣 Bread Pudding", Description: "Soak bread in sweetened milk and egg, then bake until set and golden."},
		},
	},
}

// Match returns the recipe cards whose ingredient appears in any item name.
func Match(items []domain.Item) []Card {
	var cards []Card
	for _, card := range catalog {
		for _, item := range items {
			if strings.Contains(strings.ToLower(item.Name), card.Ingredient) {
				cards = append(cards, card)
				break
			}
		}
	}
	return cards
}

// Prompt is the shared prompt used by all generator backends. The item names
// are appended one per line.
const Prompt = `Suggest up to five simple recipes that use up these leftover food items.
Respond in plain text, one recipe per line,
format: name | one sentence description
Items:`

// Generator suggests recipes for a set of ingredients.
type Generator interface {
	Suggest(ctx context.Context, ingredients []string) ([]Recipe, error)
}

// BuildPrompt renders Prompt followed by the ingredients.
func BuildPrompt(ingredients []string) string {
	var b strings.Builder
	b.WriteString(Prompt)
	for _, in := range ingredients {
		b.WriteString("\n- ")
		b.WriteString(in)
	}
	return b.String()
}

// Ingredients returns the distinct non-empty item names in order.
func Ingredients(items []domain.Item) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}
