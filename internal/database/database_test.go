package database

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pantry/internal/logger/loggertest"
	"pantry/internal/model"
)

func newTestDatabase(t *testing.T) Database {
	t.Helper()
	l, _ := loggertest.New()
	return New(NewMemory(), l)
}

func TestProductsFind(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	_, err := db.ProductsFind(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Set(ctx, KeyProducts, "null"))
	_, err = db.ProductsFind(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Set(ctx, KeyProducts, "{broken"))
	_, err = db.ProductsFind(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)

	require.NoError(t, db.ProductsSave(ctx, nil))
	ps, err := db.ProductsFind(ctx)
	require.NoError(t, err)
	assert.Empty(t, ps)
	assert.NotNil(t, ps)
}

func TestProductUpsertAndRemove(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	milk := model.CatalogProduct{ID: "1", Name: "Milk", Price: decimal.RequireFromString("3.50"), Quantity: 5}
	rice := model.CatalogProduct{ID: "2", Name: "Rice", Price: decimal.RequireFromString("12.90"), Quantity: 20}
	require.NoError(t, db.ProductUpsert(ctx, milk))
	require.NoError(t, db.ProductUpsert(ctx, rice))

	milk.Quantity = 8
	require.NoError(t, db.ProductUpsert(ctx, milk))

	ps, err := db.ProductsFind(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "1", ps[0].ID)
	assert.Equal(t, model.Quantity(8), ps[0].Quantity)

	removed, err := db.ProductRemove(ctx, "1")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = db.ProductRemove(ctx, "1")
	require.NoError(t, err)
	assert.False(t, removed)

	ps, err = db.ProductsFind(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "2", ps[0].ID)
}

func TestTimestampsEnsureIsFirstWriteWins(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	ts, err := db.TimestampsEnsure(ctx, []string{"1", "2"}, 1000)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"1": 1000, "2": 1000}, ts)

	ts, err = db.TimestampsEnsure(ctx, []string{"1", "3"}, 5000)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"1": 1000, "2": 1000, "3": 5000}, ts)

	found, err := db.TimestampsFind(ctx)
	require.NoError(t, err)
	assert.Equal(t, ts, found)
}

func TestTimestampsCorruptValueIsDiscarded(t *testing.T) {
	ctx := context.Background()
	l, observed := loggertest.New()
	db := New(NewMemory(), l)

	require.NoError(t, db.Set(ctx, KeyTimestamps, `{"1": "soon"}`))
	found, err := db.TimestampsFind(ctx)
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Equal(t, 1, observed.FilterMessageSnippet("corrupt timestamps").Len())

	ts, err := db.TimestampsEnsure(ctx, []string{"1"}, 42)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"1": 42}, ts)
}

func TestTimestampsAcceptFloatsAndNumericStrings(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	require.NoError(t, db.Set(ctx, KeyTimestamps, `{"1": 1712345678901, "2": "1712345678902", "3": 1.5e3}`))
	found, err := db.TimestampsFind(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"1": 1712345678901, "2": 1712345678902, "3": 1500}, found)
}

func TestTimestampsPrune(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	removed, err := db.TimestampsPrune(ctx, []string{"1"})
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = db.TimestampsEnsure(ctx, []string{"1", "2", "3"}, 7)
	require.NoError(t, err)
	removed, err = db.TimestampsPrune(ctx, []string{"1", "3"})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	found, err := db.TimestampsFind(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"1": 7, "3": 7}, found)
}

func TestShoppingListRoundTripPreservesOrder(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	entries := []model.ShoppingListEntry{
		{ID: "3", Name: "Soap", Priority: model.PriorityNormal, EstimatedPrice: decimal.RequireFromString("2.00")},
		{ID: "1", Name: "Milk", Priority: model.PriorityUrgent, EstimatedPrice: decimal.RequireFromString("3.50")},
		{ID: "2", Name: "Rice", Priority: model.PriorityWarning, EstimatedPrice: decimal.RequireFromString("12.90")},
	}
	_, err := db.ShoppingListUpdate(ctx, func([]model.ShoppingListEntry) ([]model.ShoppingListEntry, error) {
		return entries, nil
	})
	require.NoError(t, err)

	got, err := db.ShoppingListFind(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(entries))
	for i := range entries {
		assert.Equal(t, entries[i].ID, got[i].ID)
		assert.Equal(t, entries[i].Priority, got[i].Priority)
		assert.True(t, entries[i].EstimatedPrice.Equal(got[i].EstimatedPrice))
	}
}

func TestShoppingListCorruptValueIsEmpty(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	require.NoError(t, db.Set(ctx, KeyShoppingList, "[{"))
	got, err := db.ShoppingListFind(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, db.ShoppingListClear(ctx))
	raw, err := db.Get(ctx, KeyShoppingList)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestSessionFields(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	f, err := db.SessionFind(ctx)
	require.NoError(t, err)
	assert.Equal(t, SessionFields{}, f)

	want := SessionFields{LoggedIn: "true", Token: "dG9rZW4=", IssuedAt: "1000"}
	require.NoError(t, db.SessionSave(ctx, want))
	require.NoError(t, db.SessionIssuedAtUpdate(ctx, "2000"))
	f, err = db.SessionFind(ctx)
	require.NoError(t, err)
	want.IssuedAt = "2000"
	assert.Equal(t, want, f)

	require.NoError(t, db.SessionClear(ctx))
	for _, k := range []string{KeyAuthFlag, KeyAuthToken, KeyAuthTime} {
		_, err = db.Get(ctx, k)
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	seen, err := db.OnboardingSeen(ctx)
	require.NoError(t, err)
	assert.False(t, seen)
	require.NoError(t, db.OnboardingSeenSet(ctx, true))
	seen, err = db.OnboardingSeen(ctx)
	require.NoError(t, err)
	assert.True(t, seen)

	text, err := db.ClipboardFind(ctx)
	require.NoError(t, err)
	assert.Empty(t, text)
	require.NoError(t, db.ClipboardSet(ctx, "Milk"))
	text, err = db.ClipboardFind(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Milk", text)
}
