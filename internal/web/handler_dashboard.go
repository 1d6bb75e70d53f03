package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/vbonduro/wasteless/internal/domain"
	"github.com/vbonduro/wasteless/internal/recipes"
	"github.com/vbonduro/wasteless/internal/service"
	"github.com/vbonduro/wasteless/internal/view"
)

type dashboardData struct {
	Title string
	Page  view.Page
	Nav   []view.NavTab
	Email string
	Base  string
	Flash string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	if err := s.renderDashboard(w, r, claims.Role, r.URL.Query().Get("tab"), ""); err != nil {
		s.logger.Error("render dashboard failed", "role", claims.Role, "error", err)
	}
}

// renderDashboard renders tab for role: the tab content alone for htmx
// requests, the whole page otherwise.
func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, role domain.Role, tab, flash string) error {
	resolved := view.ResolveTab(role, tab)
	state := s.inventory.Snapshot(resolved)

	in := view.Input{State: state, Now: s.now()}
	if resolved == domain.TabTips {
		in.Suggestions = s.suggest(r.Context(), role, state)
	}
	page := view.Render(role, in)

	data := dashboardData{
		Title: page.Title,
		Page:  page,
		Nav:   view.Nav(role, page.Tab),
		Base:  dashboardPath(role),
		Flash: flash,
	}
	if claims := claimsFrom(r.Context()); claims != nil {
		data.Email = claims.Email
	}

	files := []string{
		"pages/dashboard.html",
		"partials/nav.html",
		"partials/item_row.html",
		"partials/add_form.html",
		"partials/" + page.Template + ".html",
	}
	aliases := map[string]string{"tab": page.Template}
	if isHTMX(r) {
		return s.render(w, "tab_response", data, aliases, files...)
	}
	return s.render(w, "base", data, aliases, append(files, "base.html")...)
}

// suggest asks the recipe generator for ideas. Failures only cost the
// suggestions.
func (s *Server) suggest(ctx context.Context, role domain.Role, state domain.AppState) []recipes.Recipe {
	if s.generator == nil {
		return nil
	}
	items := state.Items
	if role == domain.RoleBuyer {
		items = state.MyItems
	}
	ingredients := recipes.Ingredients(items)
	if len(ingredients) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.recipeTimeout)
	defer cancel()

	suggestions, err := s.generator.Suggest(ctx, ingredients)
	if err != nil {
		s.logger.Warn("recipe suggestions unavailable", "error", err)
		return nil
	}
	return suggestions
}

// listTab is the tab holding the role's own items.
func listTab(role domain.Role) domain.Tab {
	if role == domain.RoleBuyer {
		return domain.TabKitchen
	}
	return domain.TabPantry
}

// respondWithTab re-renders tab after a mutation. Plain form posts are
// redirected so a reload does not resubmit.
func (s *Server) respondWithTab(w http.ResponseWriter, r *http.Request, role domain.Role, tab domain.Tab, flash string) {
	if !isHTMX(r) {
		redirect(w, r, dashboardPath(role)+"?tab="+string(tab))
		return
	}
	if err := s.renderDashboard(w, r, role, string(tab), flash); err != nil {
		s.logger.Error("render dashboard failed", "role", role, "error", err)
	}
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	role := claimsFrom(r.Context()).Role

	item, err := s.inventory.AddItem(r.Context(), role, service.NewItem{
		Name:   r.FormValue("name"),
		Qty:    r.FormValue("qty"),
		Expiry: r.FormValue("expiry"),
	})
	if err != nil {
		s.writeError(w, err, "add item")
		return
	}

	s.respondWithTab(w, r, role, listTab(role), fmt.Sprintf("Added %s.", item.Name))
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	role := claimsFrom(r.Context()).Role

	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	if err := s.inventory.DeleteItem(r.Context(), role, id); err != nil {
		s.writeError(w, err, "delete item")
		return
	}

	s.respondWithTab(w, r, role, listTab(role), "")
}

func (s *Server) handleListItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	price, err := parsePrice(r.FormValue("price"))
	if err != nil {
		http.Error(w, "price must be a non-negative number", http.StatusBadRequest)
		return
	}

	item, err := s.inventory.SetListing(r.Context(), id, true, price)
	if err != nil {
		s.writeError(w, err, "list item")
		return
	}

	s.respondWithTab(w, r, domain.RoleSeller, domain.TabPantry, fmt.Sprintf("%s is now on the market.", item.Name))
}

func (s *Server) handleUnlistItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	if _, err := s.inventory.SetListing(r.Context(), id, false, nil); err != nil {
		s.writeError(w, err, "unlist item")
		return
	}

	s.respondWithTab(w, r, domain.RoleSeller, domain.TabPantry, "")
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	item, err := s.inventory.Buy(r.Context(), id)
	if err != nil {
		s.writeError(w, err, "buy item")
		return
	}

	s.respondWithTab(w, r, domain.RoleBuyer, domain.TabMarket, fmt.Sprintf("Successfully bought %s! Added to your kitchen.", item.Name))
}

func (s *Server) handleSellerProfile(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	market := s.inventory.Snapshot(domain.TabMarket).MarketItems
	listed := slices.ContainsFunc(market, func(i domain.Item) bool { return i.ID == id && i.ForSale })
	if !listed {
		http.NotFound(w, r)
		return
	}

	if err := s.renderPartial(w, "seller_profile", view.SellerFor(id), "partials/seller_profile.html"); err != nil {
		s.logger.Error("render partial failed", "error", err)
	}
}

// writeError maps service errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrItemNotFound):
		http.Error(w, "item not found", http.StatusNotFound)
	case errors.Is(err, service.ErrNotForSale):
		http.Error(w, "item is not for sale", http.StatusConflict)
	default:
		http.Error(w, "failed to "+action, http.StatusInternalServerError)
		s.logger.Error(action+" failed", "error", err)
	}
}

// parseID extracts the {id} path variable and returns it as int64.
func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// parsePrice parses an optional price field. Blank means no price.
func parsePrice(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil || p < 0 {
		return nil, fmt.Errorf("invalid price %q", raw)
	}
	return &p, nil
}
