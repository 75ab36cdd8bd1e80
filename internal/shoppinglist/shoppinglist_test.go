package shoppinglist

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pantry/internal/database"
	"pantry/internal/logger/loggertest"
	"pantry/internal/model"
	"pantry/internal/tracker"
)

type itemMap map[string]model.TrackedItem

func (m itemMap) Item(id string) (model.TrackedItem, bool) {
	ti, ok := m[id]
	return ti, ok
}

var testItems = itemMap{
	"1": {ID: "1", Name: "Milk", Icon: "🥛", Status: model.StatusUrgent, EstimatedPrice: decimal.RequireFromString("3.50")},
	"2": {ID: "2", Name: "Rice", Icon: "🍚", Status: model.StatusWarning, EstimatedPrice: decimal.RequireFromString("12.90")},
	"3": {ID: "3", Name: "Soap", Status: model.StatusSuccess, EstimatedPrice: decimal.RequireFromString("2")},
}

func newTestService(t *testing.T, items ItemFinder, sharer Sharer, delay time.Duration) (*Service, database.Database) {
	t.Helper()
	l, _ := loggertest.New()
	db := database.New(database.NewMemory(), l)
	return New(db, items, sharer, l, delay), db
}

func TestAddToListIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, testItems, nil, 0)

	outcome, err := s.AddToList(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdded, outcome)

	outcome, err = s.AddToList(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)

	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].ID)
}

func TestAddToListMapsPriority(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, testItems, nil, 0)

	for _, id := range []string{"3", "1", "2"} {
		_, err := s.AddToList(ctx, id)
		require.NoError(t, err)
	}
	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, model.PriorityNormal, entries[0].Priority)
	assert.Equal(t, model.PriorityUrgent, entries[1].Priority)
	assert.Equal(t, model.PriorityWarning, entries[2].Priority)
}

func TestAddToListUnknownItemIsNoop(t *testing.T) {
	ctx := context.Background()
	s, db := newTestService(t, testItems, nil, 0)

	outcome, err := s.AddToList(ctx, "404")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)
	_, err = db.Get(ctx, database.KeyShoppingList)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRemoveFromList(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, testItems, nil, 0)
	_, err := s.AddToList(ctx, "1")
	require.NoError(t, err)
	_, err = s.AddToList(ctx, "2")
	require.NoError(t, err)

	removed, err := s.RemoveFromList(ctx, "1")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.RemoveFromList(ctx, "1")
	require.NoError(t, err)
	assert.False(t, removed)

	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2", entries[0].ID)
}

func TestTotals(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, testItems, nil, 0)
	for _, id := range []string{"1", "2", "3"} {
		_, err := s.AddToList(ctx, id)
		require.NoError(t, err)
	}

	totals, err := s.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, totals.Count)
	assert.Equal(t, "18.40", totals.Total.StringFixed(2))

	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, totals, TotalsOf(entries))
	assert.Equal(t, Totals{Total: decimal.Zero}, TotalsOf(nil))
}

func TestCheckoutEmptyList(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, testItems, nil, 0)

	_, err := s.Checkout(ctx)
	assert.ErrorIs(t, err, ErrEmptyList)
	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCheckoutScenarioFromTrackedProduct(t *testing.T) {
	ctx := context.Background()
	l, _ := loggertest.New()
	db := database.New(database.NewMemory(), l)
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, db.ProductsSave(ctx, []model.CatalogProduct{
		{ID: "1", Name: "Milk", Price: decimal.RequireFromString("3.50"), Quantity: 5},
	}))
	tr := tracker.New(db, l, tracker.WithClock(func() time.Time { return start }))
	require.NoError(t, tr.LoadInitial(ctx))
	require.NoError(t, tr.Refresh(ctx, start.Add(26*24*time.Hour)))

	s := New(db, tr, nil, l, 0)
	outcome, err := s.AddToList(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdded, outcome)
	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.PriorityWarning, entries[0].Priority)

	r, err := s.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Count)
	assert.True(t, entries[0].EstimatedPrice.Equal(r.Total))

	entries, err = s.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCheckoutClearsAfterDelay(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, testItems, nil, 30*time.Millisecond)
	_, err := s.AddToList(ctx, "2")
	require.NoError(t, err)

	r, err := s.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, "12.90", r.Total.StringFixed(2))

	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.Eventually(t, func() bool {
		entries, err := s.Entries(ctx)
		return err == nil && len(entries) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFlushRunsPendingClear(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, testItems, nil, time.Hour)
	_, err := s.AddToList(ctx, "1")
	require.NoError(t, err)
	_, err = s.Checkout(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Flush(ctx))
	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, s.Flush(ctx))
}

func TestCheckoutAfterFlushClearsImmediately(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, testItems, nil, time.Hour)
	require.NoError(t, s.Flush(ctx))

	_, err := s.AddToList(ctx, "1")
	require.NoError(t, err)
	r, err := s.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Count)

	s.mu.Lock()
	assert.Nil(t, s.pendingClear)
	s.mu.Unlock()
	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
	require.NoError(t, s.Flush(ctx))
}

type fakeSharer struct {
	available bool
	delivered bool
	err       error

	title string
	text  string
}

func (f *fakeSharer) Available() bool {
	return f.available
}

func (f *fakeSharer) Share(_ context.Context, title string, text string) (bool, error) {
	f.title = title
	f.text = text
	return f.delivered, f.err
}

func TestShare(t *testing.T) {
	tests := []struct {
		name          string
		sharer        *fakeSharer
		want          ShareOutcome
		wantClipboard bool
	}{
		{name: "delivered", sharer: &fakeSharer{available: true, delivered: true}, want: ShareShared},
		{name: "canceled", sharer: &fakeSharer{available: true}, want: ShareCanceled},
		{name: "failed", sharer: &fakeSharer{available: true, err: errors.New("fcm down")}, want: ShareCopied, wantClipboard: true},
		{name: "unavailable", sharer: &fakeSharer{}, want: ShareCopied, wantClipboard: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, db := newTestService(t, testItems, tt.sharer, 0)
			_, err := s.AddToList(ctx, "1")
			require.NoError(t, err)

			res, err := s.Share(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Outcome)

			clip, err := db.ClipboardFind(ctx)
			require.NoError(t, err)
			if tt.wantClipboard {
				assert.Equal(t, res.Text, clip)
			} else {
				assert.Empty(t, clip)
				assert.Equal(t, ShareTitle, tt.sharer.title)
				assert.Equal(t, res.Text, tt.sharer.text)
			}
		})
	}
}

func TestShareEmptyList(t *testing.T) {
	s, _ := newTestService(t, testItems, nil, 0)
	_, err := s.Share(context.Background())
	assert.ErrorIs(t, err, ErrEmptyList)
}

func TestFormatText(t *testing.T) {
	entries := []model.ShoppingListEntry{
		{ID: "1", Name: "Milk", Icon: "🥛", Priority: model.PriorityUrgent, EstimatedPrice: decimal.RequireFromString("3.5")},
		{ID: "2", Name: "Extra long basmati rice from the corner shop down the road", Priority: model.PriorityNormal, EstimatedPrice: decimal.RequireFromString("12.90")},
	}
	want := "Shopping List (2 items)\n" +
		"- 🥛 Milk [urgent] ~3.50\n" +
		"- Extra long basmati rice from the corn... [normal] ~12.90\n" +
		"Estimated total: 16.40"
	assert.Equal(t, want, FormatText(entries))
}
