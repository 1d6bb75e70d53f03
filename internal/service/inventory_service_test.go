package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/wasteless/internal/db"
	"github.com/vbonduro/wasteless/internal/domain"
	"github.com/vbonduro/wasteless/internal/store"
)

// stubKV is a minimal in-memory key/value store for tests.
type stubKV struct {
	data   map[string]string
	getErr error
	setErr error
	sets   int
}

func newStubKV() *stubKV {
	return &stubKV{data: make(map[string]string)}
}

func (s *stubKV) Get(_ context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *stubKV) Set(_ context.Context, key, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.sets++
	s.data[key] = value
	return nil
}

var fixedNow = time.Date(2026, time.February, 12, 10, 0, 0, 0, time.UTC)

func newTestInventory(t *testing.T, kv keyValueStore) *InventoryService {
	t.Helper()
	svc := NewInventoryService(kv, slog.Default())
	svc.now = func() time.Time { return fixedNow }
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func storedItems(t *testing.T, kv *stubKV, key string) []domain.Item {
	t.Helper()
	raw, ok := kv.data[key]
	require.True(t, ok, "key %s not persisted", key)
	var items []domain.Item
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	return items
}

func TestLoadDefaultsWhenAbsent(t *testing.T) {
	kv := newStubKV()
	svc := newTestInventory(t, kv)

	state := svc.Snapshot(domain.TabPantry)
	assert.Equal(t, DefaultSellerItems(), state.Items)
	assert.Equal(t, DefaultBuyerItems(), state.MyItems)
	assert.Len(t, state.Tips, 3)
	assert.Equal(t, domain.TabPantry, state.CurrentTab)
	// Hydration alone does not write.
	assert.Zero(t, kv.sets)
}

func TestLoadDefaultsWhenCorrupt(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":   "{{{",
		"object":     `{"id":1}`,
		"string":     `"hello"`,
		"null":       "null",
		"truncated":  `[{"id":1,"name":"Milk"`,
		"empty text": "",
	} {
		t.Run(name, func(t *testing.T) {
			kv := newStubKV()
			kv.data[KeySellerItems] = raw
			kv.data[KeyBuyerItems] = raw
			svc := newTestInventory(t, kv)

			state := svc.Snapshot(domain.TabPantry)
			assert.Equal(t, DefaultSellerItems(), state.Items)
			assert.Equal(t, DefaultBuyerItems(), state.MyItems)
		})
	}
}

func TestLoadFiltersBadEntries(t *testing.T) {
	kv := newStubKV()
	kv.data[KeySellerItems] = `[null, 5, "x", [], {"id":2}, {"id":3,"name":""}, {"id":6,"name":{}}, {"id":4,"name":"Eggs","qty":"6","expiry":"2026-02-20"}, {"id":5,"name":"Odd","qty":true}]`
	svc := newTestInventory(t, kv)

	items := svc.Snapshot(domain.TabPantry).Items
	require.Len(t, items, 2)
	assert.Equal(t, int64(4), items[0].ID)
	assert.Equal(t, "6", items[0].Qty.String())
	assert.Equal(t, int64(5), items[1].ID)
	assert.Equal(t, "true", items[1].Qty.String())
}

func TestDecodeItemsCoercesLooseFields(t *testing.T) {
	raw := `[
		{"id":"1700000000000","name":"Bread","qty":1,"expiry":"2026-02-14"},
		{"id":1.5,"name":"Soup","qty":"1 can","expiry":"2026-03-01"},
		{"id":7,"name":"Jam","qty":2,"expiry":"2026-04-01","forSale":"yes","price":"2"},
		{"id":8,"name":"Rice","qty":true,"expiry":20260220},
		{"id":9,"name":"Tea","qty":1,"expiry":"2026-05-01","forSale":0,"price":"free"}
	]`

	items, err := DecodeItems(raw)
	require.NoError(t, err)
	require.Len(t, items, 5)

	assert.Equal(t, int64(1700000000000), items[0].ID)
	assert.Equal(t, int64(1), items[1].ID)
	assert.Equal(t, "1 can", items[1].Qty.String())

	assert.True(t, items[2].ForSale)
	require.NotNil(t, items[2].Price)
	assert.Equal(t, 2.0, *items[2].Price)

	assert.Equal(t, "true", items[3].Qty.String())
	assert.Equal(t, "20260220", items[3].Expiry)

	assert.Equal(t, "Tea", items[4].Name)
	assert.False(t, items[4].ForSale)
	assert.Nil(t, items[4].Price)
}

func TestLoadKeepsLooseEntriesAcrossSaves(t *testing.T) {
	kv := newStubKV()
	kv.data[KeySellerItems] = `[{"id":"12","name":"Bread","qty":true,"expiry":"2026-02-14","forSale":true,"price":"1.5"}]`
	svc := newTestInventory(t, kv)

	_, err := svc.AddItem(context.Background(), domain.RoleSeller, NewItem{Name: "Tea", Expiry: "2026-05-01"})
	require.NoError(t, err)

	stored := storedItems(t, kv, KeySellerItems)
	require.Len(t, stored, 2)
	assert.Equal(t, int64(12), stored[0].ID)
	assert.Equal(t, "Bread", stored[0].Name)
	assert.Equal(t, "true", stored[0].Qty.String())
	assert.True(t, stored[0].ForSale)
	require.NotNil(t, stored[0].Price)
	assert.Equal(t, 1.5, *stored[0].Price)
	assert.Equal(t, "Tea", stored[1].Name)
}

func TestLoadKeepsEmptyList(t *testing.T) {
	kv := newStubKV()
	kv.data[KeySellerItems] = "[]"
	svc := newTestInventory(t, kv)

	assert.Empty(t, svc.Snapshot(domain.TabPantry).Items)
}

func TestLoadStorageError(t *testing.T) {
	kv := newStubKV()
	kv.getErr = errors.New("disk gone")
	svc := NewInventoryService(kv, slog.Default())

	assert.Error(t, svc.Load(context.Background()))
}

func TestAddItemPersists(t *testing.T) {
	kv := newStubKV()
	svc := newTestInventory(t, kv)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, domain.RoleSeller, NewItem{Name: " Bread ", Qty: "2", Expiry: "2026-02-14"})
	require.NoError(t, err)
	assert.Equal(t, fixedNow.UnixMilli(), item.ID)
	assert.Equal(t, "Bread", item.Name)
	assert.Equal(t, "2", item.Qty.String())

	stored := storedItems(t, kv, KeySellerItems)
	require.Len(t, stored, 4)
	assert.Equal(t, item, stored[3])
	assert.Equal(t, stored, svc.Snapshot(domain.TabPantry).Items)

	// The buyer list is untouched.
	_, ok := kv.data[KeyBuyerItems]
	assert.False(t, ok)
}

func TestAddItemToKitchen(t *testing.T) {
	kv := newStubKV()
	svc := newTestInventory(t, kv)

	_, err := svc.AddItem(context.Background(), domain.RoleBuyer, NewItem{Name: "Soup", Expiry: "2026-02-13"})
	require.NoError(t, err)

	stored := storedItems(t, kv, KeyBuyerItems)
	require.Len(t, stored, 2)
	assert.Equal(t, "Soup", stored[1].Name)
	assert.Equal(t, "1", stored[1].Qty.String())
}

func TestAddItemUniqueIDs(t *testing.T) {
	svc := newTestInventory(t, newStubKV())
	ctx := context.Background()

	a, err := svc.AddItem(ctx, domain.RoleSeller, NewItem{Name: "A", Expiry: "2026-02-14"})
	require.NoError(t, err)
	b, err := svc.AddItem(ctx, domain.RoleBuyer, NewItem{Name: "B", Expiry: "2026-02-14"})
	require.NoError(t, err)

	assert.Equal(t, a.ID+1, b.ID)
}

func TestAddItemValidation(t *testing.T) {
	svc := newTestInventory(t, newStubKV())
	ctx := context.Background()

	tests := []NewItem{
		{Name: "", Expiry: "2026-02-14"},
		{Name: "   ", Expiry: "2026-02-14"},
		{Name: strings.Repeat("a", 201), Expiry: "2026-02-14"},
		{Name: "Milk", Expiry: ""},
		{Name: "Milk", Expiry: "next week"},
	}
	for _, in := range tests {
		_, err := svc.AddItem(ctx, domain.RoleSeller, in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
	assert.Len(t, svc.Snapshot(domain.TabPantry).Items, 3)
}

func TestAddItemNameLimitCountsCharacters(t *testing.T) {
	svc := newTestInventory(t, newStubKV())
	ctx := context.Background()

	name := strings.Repeat("🥑", maxItemNameLen)
	item, err := svc.AddItem(ctx, domain.RoleSeller, NewItem{Name: name, Expiry: "2026-02-14"})
	require.NoError(t, err)
	assert.Equal(t, name, item.Name)

	_, err = svc.AddItem(ctx, domain.RoleSeller, NewItem{Name: name + "🥑", Expiry: "2026-02-14"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddItemStorageFailureLeavesState(t *testing.T) {
	kv := newStubKV()
	svc := newTestInventory(t, kv)
	kv.setErr = errors.New("read-only")

	_, err := svc.AddItem(context.Background(), domain.RoleSeller, NewItem{Name: "Milk", Expiry: "2026-02-14"})
	assert.Error(t, err)
	assert.Len(t, svc.Snapshot(domain.TabPantry).Items, 3)
}

func TestDeleteItemPersists(t *testing.T) {
	kv := newStubKV()
	svc := newTestInventory(t, kv)

	require.NoError(t, svc.DeleteItem(context.Background(), domain.RoleSeller, 2))

	stored := storedItems(t, kv, KeySellerItems)
	require.Len(t, stored, 2)
	assert.Equal(t, int64(1), stored[0].ID)
	assert.Equal(t, int64(3), stored[1].ID)
}

func TestDeleteLastItemPersistsEmptyArray(t *testing.T) {
	kv := newStubKV()
	svc := newTestInventory(t, kv)

	require.NoError(t, svc.DeleteItem(context.Background(), domain.RoleBuyer, 991))
	assert.Equal(t, "[]", kv.data[KeyBuyerItems])

	// Reloading keeps the empty kitchen rather than restoring defaults.
	reloaded := newTestInventory(t, kv)
	assert.Empty(t, reloaded.Snapshot(domain.TabKitchen).MyItems)
}

func TestDeleteItemNotFound(t *testing.T) {
	kv := newStubKV()
	svc := newTestInventory(t, kv)

	err := svc.DeleteItem(context.Background(), domain.RoleSeller, 12345)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.Zero(t, kv.sets)
}

func TestSetListing(t *testing.T) {
	kv := newStubKV()
	svc := newTestInventory(t, kv)
	ctx := context.Background()

	price := 2.5
	item, err := svc.SetListing(ctx, 2, true, &price)
	require.NoError(t, err)
	assert.True(t, item.ForSale)
	require.NotNil(t, item.Price)
	assert.Equal(t, 2.5, *item.Price)

	stored := storedItems(t, kv, KeySellerItems)
	assert.True(t, stored[1].ForSale)

	state := svc.Snapshot(domain.TabMarket)
	assert.True(t, state.MarketItems[1].ForSale)

	item, err = svc.SetListing(ctx, 2, false, &price)
	require.NoError(t, err)
	assert.False(t, item.ForSale)
	assert.Nil(t, item.Price)
}

func TestSetListingErrors(t *testing.T) {
	svc := newTestInventory(t, newStubKV())
	ctx := context.Background()

	_, err := svc.SetListing(ctx, 999, true, nil)
	assert.ErrorIs(t, err, ErrItemNotFound)

	negative := -1.0
	_, err = svc.SetListing(ctx, 1, true, &negative)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuyClonesIntoKitchen(t *testing.T) {
	kv := newStubKV()
	svc := newTestInventory(t, kv)
	ctx := context.Background()

	price := 3.0
	_, err := svc.SetListing(ctx, 2, true, &price)
	require.NoError(t, err)

	bought, err := svc.Buy(ctx, 2)
	require.NoError(t, err)
	assert.NotEqual(t, int64(2), bought.ID)
	assert.Equal(t, fixedNow.UnixMilli(), bought.ID)
	assert.False(t, bought.ForSale)
	assert.Equal(t, "Avocados 🥑", bought.Name)
	assert.Equal(t, "3", bought.Qty.String())
	assert.Equal(t, "2026-02-18", bought.Expiry)

	stored := storedItems(t, kv, KeyBuyerItems)
	require.Len(t, stored, 2)
	assert.Equal(t, bought.ID, stored[1].ID)
	assert.False(t, stored[1].ForSale)
	assert.Contains(t, kv.data[KeyBuyerItems], `"forSale":false`)

	// The seller's listing stays on the market.
	seller := storedItems(t, kv, KeySellerItems)
	assert.True(t, seller[1].ForSale)
}

func TestBuyErrors(t *testing.T) {
	kv := newStubKV()
	svc := newTestInventory(t, kv)
	ctx := context.Background()

	_, err := svc.Buy(ctx, 404)
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = svc.Buy(ctx, 1)
	assert.ErrorIs(t, err, ErrNotForSale)

	_, ok := kv.data[KeyBuyerItems]
	assert.False(t, ok)
}

func TestComputeImpact(t *testing.T) {
	items := []domain.Item{
		{Name: "Milk", Qty: domain.NumberQty(1)},
		{Name: "Avocados", Qty: domain.NumberQty(3)},
		{Name: "Yogurt", Qty: domain.TextQty("2 cups")},
		{Name: "Herbs", Qty: domain.TextQty("a bunch")},
	}

	impact := ComputeImpact(items)
	assert.Equal(t, 6, impact.Units)
	assert.Equal(t, 3.0, impact.WeightKg)
	assert.Equal(t, 7, impact.PeopleFed)

	assert.Equal(t, Impact{}, ComputeImpact(nil))
	assert.Equal(t, 0, ComputeImpact([]domain.Item{{Qty: domain.TextQty("-10")}}).PeopleFed)
}

func TestInventoryWithSQLiteStore(t *testing.T) {
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	kv := store.NewKVStore(d)
	ctx := context.Background()

	svc := newTestInventory(t, kv)
	added, err := svc.AddItem(ctx, domain.RoleSeller, NewItem{Name: "Rice", Qty: "2", Expiry: "2026-02-20"})
	require.NoError(t, err)

	reloaded := newTestInventory(t, kv)
	items := reloaded.Snapshot(domain.TabPantry).Items
	require.Len(t, items, 4)
	assert.Equal(t, added, items[3])
	// Untouched numeric quantities are still numbers after a round trip.
	raw, _, err := kv.Get(ctx, KeySellerItems)
	require.NoError(t, err)
	assert.Contains(t, raw, `"qty":1`)
	assert.Contains(t, raw, `"qty":"2"`)
}
