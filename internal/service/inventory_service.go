package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/vbonduro/wasteless/internal/domain"
	"github.com/vbonduro/wasteless/internal/recipes"
)

// Storage keys shared with earlier versions of the app.
const (
	KeySellerItems = "wasteless_items"
	KeyBuyerItems  = "wasteless_buyer_items"
	KeyUserRole    = "wasteless_user_role"
	KeyLoggedIn    = "wasteless_is_logged_in"
)

const maxItemNameLen = 200

var (
	ErrItemNotFound = errors.New("item not found")
	ErrNotForSale   = errors.New("item is not for sale")
	ErrInvalidInput = errors.New("invalid input")
)

// keyValueStore is the subset of store.KVStore the services require.
type keyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// DefaultSellerItems seeds a pantry that has never been saved.
func DefaultSellerItems() []domain.Item {
	return []domain.Item{
		{ID: 1, Name: "Milk 🥛", Qty: domain.NumberQty(1), Expiry: "2026-02-20"},
		{ID: 2, Name: "Avocados 🥑", Qty: domain.NumberQty(3), Expiry: "2026-02-18"},
		{ID: 3, Name: "Yogurt 🍦", Qty: domain.NumberQty(2), Expiry: "2026-02-10"},
	}
}

// DefaultBuyerItems seeds a kitchen that has never been saved.
func DefaultBuyerItems() []domain.Item {
	return []domain.Item{
		{ID: 991, Name: "Leftover Rice 🍚", Qty: domain.NumberQty(1), Expiry: "2026-02-15"},
	}
}

// NewItem is the user-supplied part of an item.
type NewItem struct {
	Name   string
	Qty    string
	Expiry string
}

// Impact estimates the food a pantry represents.
type Impact struct {
	Units     int
	WeightKg  float64
	PeopleFed int
}

const (
	kgPerUnit = 0.5
	kgPerMeal = 0.4
)

// InventoryService owns the seller pantry and the buyer kitchen. State is
// hydrated once by Load and written back to storage after every mutation.
type InventoryService struct {
	kv     keyValueStore
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	items   []domain.Item
	myItems []domain.Item
	lastID  int64
}

func NewInventoryService(kv keyValueStore, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
}

// Load hydrates state from storage. Missing or corrupt data falls back to the
// defaults; only storage failures are returned.
func (s *InventoryService) Load(ctx context.Context) error {
	items, err := s.loadItems(ctx, KeySellerItems, DefaultSellerItems)
	if err != nil {
		return err
	}
	myItems, err := s.loadItems(ctx, KeyBuyerItems, DefaultBuyerItems)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.myItems = myItems
	s.lastID = 0
	for _, item := range slices.Concat(items, myItems) {
		s.lastID = max(s.lastID, item.ID)
	}
	s.logger.Info("inventory loaded", "items", len(items), "my_items", len(myItems))
	return nil
}

func (s *InventoryService) loadItems(ctx context.Context, key string, defaults func() []domain.Item) ([]domain.Item, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok {
		return defaults(), nil
	}
	items, err := DecodeItems(raw)
	if err != nil {
		s.logger.Warn("corrupt inventory data, resetting to defaults", "key", key, "error", err)
		return defaults(), nil
	}
	return items, nil
}

// DecodeItems parses a stored item array. Entries that are null, not
// objects, or unnamed are dropped. Other fields are coerced leniently so that
// loosely typed entries survive the next save. A value that is not a JSON
// array is an error.
func DecodeItems(raw string) ([]domain.Item, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	if entries == nil {
		return nil, fmt.Errorf("failed to decode items: not an array")
	}

	items := make([]domain.Item, 0, len(entries))
	for _, entry := range entries {
		if item, ok := decodeItem(entry); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// storedItem is an item entry with every field left undecoded.
type storedItem struct {
	ID      json.RawMessage `json:"id"`
	Name    json.RawMessage `json:"name"`
	Qty     json.RawMessage `json:"qty"`
	Expiry  json.RawMessage `json:"expiry"`
	ForSale json.RawMessage `json:"forSale"`
	Price   json.RawMessage `json:"price"`
}

func decodeItem(entry json.RawMessage) (domain.Item, bool) {
	entry = bytes.TrimSpace(entry)
	if len(entry) == 0 || entry[0] != '{' {
		return domain.Item{}, false
	}
	var raw storedItem
	if err := json.Unmarshal(entry, &raw); err != nil {
		return domain.Item{}, false
	}

	name, ok := scalarText(raw.Name)
	if !ok || strings.TrimSpace(name) == "" {
		return domain.Item{}, false
	}

	item := domain.Item{
		ID:      looseID(raw.ID),
		Name:    name,
		ForSale: truthy(raw.ForSale),
		Price:   loosePrice(raw.Price),
	}
	item.Expiry, _ = scalarText(raw.Expiry)
	if len(raw.Qty) > 0 {
		if err := json.Unmarshal(raw.Qty, &item.Qty); err != nil {
			item.Qty = domain.TextQty(string(raw.Qty))
		}
	}
	return item, true
}

// scalarText returns a JSON string's value or a JSON number's literal text.
func scalarText(raw json.RawMessage) (string, bool) {
	switch {
	case len(raw) == 0:
		return "", false
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'):
		return string(raw), true
	default:
		return "", false
	}
}

// looseID accepts integer, fractional and quoted ids. Fractions are
// truncated. Anything unreadable becomes 0.
func looseID(raw json.RawMessage) int64 {
	text, ok := scalarText(raw)
	if !ok {
		return 0
	}
	text = strings.TrimSpace(text)
	if id, err := strconv.ParseInt(text, 10, 64); err == nil {
		return id
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.Abs(f) >= math.MaxInt64 {
		return 0
	}
	return int64(math.Trunc(f))
}

func loosePrice(raw json.RawMessage) *float64 {
	text, ok := scalarText(raw)
	if !ok {
		return nil
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		return nil
	}
	return &p
}

// truthy follows JavaScript truthiness so that flags written by other
// clients keep their meaning.
func truthy(raw json.RawMessage) bool {
	switch string(raw) {
	case "", "null", "false":
		return false
	case "true":
		return true
	}
	if raw[0] == '"' {
		text, _ := scalarText(raw)
		return text != ""
	}
	if text, ok := scalarText(raw); ok {
		f, err := strconv.ParseFloat(text, 64)
		return err == nil && f != 0
	}
	return true
}

// Snapshot returns a copy of the state for rendering tab.
func (s *InventoryService) Snapshot(tab domain.Tab) domain.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.AppState{
		CurrentTab:  tab,
		Items:       slices.Clone(s.items),
		MarketItems: slices.Clone(s.items),
		MyItems:     slices.Clone(s.myItems),
		Tips:        slices.Clone(recipes.Tips),
	}
}

// AddItem appends a new item to the pantry (seller) or kitchen (buyer).
func (s *InventoryService) AddItem(ctx context.Context, role domain.Role, in NewItem) (domain.Item, error) {
	item, err := validateNewItem(in)
	if err != nil {
		return domain.Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = s.nextID()
	list := s.list(role)
	updated := append(slices.Clone(*list), item)
	if err := s.persist(ctx, role, updated); err != nil {
		return domain.Item{}, err
	}
	*list = updated

	s.logger.Info("item added", "role", role, "id", item.ID, "name", item.Name)
	return item, nil
}

// DeleteItem removes the item with id from the role's list.
func (s *InventoryService) DeleteItem(ctx context.Context, role domain.Role, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.list(role)
	updated := slices.DeleteFunc(slices.Clone(*list), func(i domain.Item) bool { return i.ID == id })
	if len(updated) == len(*list) {
		return ErrItemNotFound
	}
	if err := s.persist(ctx, role, updated); err != nil {
		return err
	}
	*list = updated

	s.logger.Info("item deleted", "role", role, "id", id)
	return nil
}

// SetListing puts a pantry item on the market or takes it off. Price is
// optional; nil lists the item for free. Unlisting clears the price.
func (s *InventoryService) SetListing(ctx context.Context, id int64, forSale bool, price *float64) (domain.Item, error) {
	if price != nil && (*price < 0 || math.IsNaN(*price) || math.IsInf(*price, 0)) {
		return domain.Item{}, fmt.Errorf("%w: price must be a non-negative number", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.items, func(i domain.Item) bool { return i.ID == id })
	if idx < 0 {
		return domain.Item{}, ErrItemNotFound
	}

	updated := slices.Clone(s.items)
	item := updated[idx]
	item.ForSale = forSale
	item.Price = nil
	if forSale && price != nil {
		p := *price
		item.Price = &p
	}
	updated[idx] = item

	if err := s.persist(ctx, domain.RoleSeller, updated); err != nil {
		return domain.Item{}, err
	}
	s.items = updated

	s.logger.Info("listing updated", "id", id, "for_sale", forSale)
	return item, nil
}

// Buy copies a listed market item into the buyer's kitchen under a new id.
// The seller's listing is left as is.
func (s *InventoryService) Buy(ctx context.Context, id int64) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.items, func(i domain.Item) bool { return i.ID == id })
	if idx < 0 {
		return domain.Item{}, ErrItemNotFound
	}
	if !s.items[idx].ForSale {
		return domain.Item{}, ErrNotForSale
	}

	bought := s.items[idx]
	bought.ID = s.nextID()
	bought.ForSale = false
	if bought.Price != nil {
		p := *bought.Price
		bought.Price = &p
	}

	updated := append(slices.Clone(s.myItems), bought)
	if err := s.persist(ctx, domain.RoleBuyer, updated); err != nil {
		return domain.Item{}, err
	}
	s.myItems = updated

	s.logger.Info("market item bought", "market_id", id, "id", bought.ID, "name", bought.Name)
	return bought, nil
}

// Impact estimates the weight of the pantry and the meals it could provide.
func (s *InventoryService) Impact() Impact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeImpact(s.items)
}

// ComputeImpact sums leading-integer quantities at half a kilogram per unit;
// a meal is 0.4 kg.
func ComputeImpact(items []domain.Item) Impact {
	units := 0
	for _, item := range items {
		units += item.Qty.Units()
	}
	weight := float64(units) * kgPerUnit
	people := int(math.Floor(weight / kgPerMeal))
	return Impact{
		Units:     units,
		WeightKg:  math.Round(weight*10) / 10,
		PeopleFed: max(people, 0),
	}
}

func (s *InventoryService) list(role domain.Role) *[]domain.Item {
	if role == domain.RoleBuyer {
		return &s.myItems
	}
	return &s.items
}

func (s *InventoryService) persist(ctx context.Context, role domain.Role, items []domain.Item) error {
	key := KeySellerItems
	if role == domain.RoleBuyer {
		key = KeyBuyerItems
	}
	if items == nil {
		items = []domain.Item{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// nextID returns the current time in milliseconds, bumped past the last
// issued id so that ids stay unique. Callers must hold s.mu.
func (s *InventoryService) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func validateNewItem(in NewItem) (domain.Item, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Item{}, fmt.Errorf("%w: item name required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxItemNameLen {
		return domain.Item{}, fmt.Errorf("%w: item name too long", ErrInvalidInput)
	}

	expiry := strings.TrimSpace(in.Expiry)
	if _, err := time.Parse(time.DateOnly, expiry); err != nil {
		return domain.Item{}, fmt.Errorf("%w: expiry must be a date (YYYY-MM-DD)", ErrInvalidInput)
	}

	qty := strings.TrimSpace(in.Qty)
	if qty == "" {
		qty = "1"
	}

	return domain.Item{Name: name, Qty: domain.TextQty(qty), Expiry: expiry}, nil
}
