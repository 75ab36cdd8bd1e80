package tracker

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"pantry/internal/database"
	"pantry/internal/depletion"
	"pantry/internal/misc"
	"pantry/internal/model"
)

const (
	sourceCatalog = "catalog"
	sourceSeed    = "seed"
	sourceError   = "error"
)

// MonthlySavings is the static savings estimate shown on the dashboard.
var MonthlySavings = decimal.RequireFromString("45.00")

type store interface {
	ProductsFind(ctx context.Context) ([]model.CatalogProduct, error)
	TimestampsEnsure(ctx context.Context, ids []string, now int64) (map[string]int64, error)
	TimestampsPrune(ctx context.Context, keep []string) (int, error)
}

type logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

type Stats struct {
	UrgentCount     int             `json:"urgent_count"`
	AverageDaysLeft int             `json:"average_days_left"`
	PendingCount    int             `json:"pending_count"`
	MonthlySavings  decimal.Decimal `json:"monthly_savings"`
}

// Tracker owns the current set of tracked items. Refresh is the only place
// the set is recomputed, subscribers are notified after every successful pass.
type Tracker struct {
	store  store
	logger logger
	seeder Seeder
	now    func() time.Time
	prune  bool

	// refreshMu serializes refresh passes so a pass that read an older
	// catalog cannot prune epochs a newer pass assigned.
	refreshMu sync.Mutex

	mu          sync.RWMutex
	items       []model.TrackedItem
	seeded      bool
	refreshedAt time.Time

	subMu   sync.Mutex
	subs    map[int]func([]model.TrackedItem)
	nextSub int
}

type Option func(*Tracker)

func WithSeeder(s Seeder) Option {
	return func(t *Tracker) {
		if s != nil {
			t.seeder = s
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithPruning controls whether start epochs of products missing from the
// catalog are removed on refresh.
func WithPruning(enabled bool) Option {
	return func(t *Tracker) {
		t.prune = enabled
	}
}

func New(s store, l logger, opts ...Option) *Tracker {
	t := &Tracker{
		store:  s,
		logger: l,
		seeder: DemoSeeder{},
		now:    time.Now,
		prune:  true,
		subs:   map[int]func([]model.TrackedItem){},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// LoadInitial builds the first item set. Products seen for the first time get
// the current time as their start epoch.
func (t *Tracker) LoadInitial(ctx context.Context) error {
	t.logger.Infof("LoadInitial: Loading tracked items")
	if err := t.RefreshNow(ctx); err != nil {
		return errors.WithMessage(err, "error loading tracked items")
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	t.logger.Infof("LoadInitial: Loaded %d item(s), seeded: %t", len(t.items), t.seeded)
	return nil
}

// Refresh re-reads the catalog and start epochs and replaces the item set.
// On a storage error the previous set is kept.
func (t *Tracker) Refresh(ctx context.Context, now time.Time) error {
	t.refreshMu.Lock()
	defer t.refreshMu.Unlock()
	return t.refresh(ctx, now)
}

// RefreshNow refreshes at the tracker's current time, read once the pass
// holds the refresh lock.
func (t *Tracker) RefreshNow(ctx context.Context) error {
	t.refreshMu.Lock()
	defer t.refreshMu.Unlock()
	return t.refresh(ctx, t.now())
}

func (t *Tracker) refresh(ctx context.Context, now time.Time) error {
	start := time.Now()
	defer func() {
		RefreshDuration.Observe(time.Since(start).Seconds())
	}()

	items, source, err := t.recompute(ctx, now)
	if err != nil {
		RefreshTotal.WithLabelValues(sourceError).Inc()
		t.logger.Errorf("Refresh: Error recomputing tracked items, err: %v", err)
		return err
	}
	RefreshTotal.WithLabelValues(source).Inc()
	updateItemMetrics(items)

	t.mu.Lock()
	t.items = items
	t.seeded = source == sourceSeed
	t.refreshedAt = now
	t.mu.Unlock()

	t.logger.Debugf("Refresh: Recomputed %d item(s) from %s", len(items), source)
	t.notify(items)
	return nil
}

func (t *Tracker) recompute(ctx context.Context, now time.Time) ([]model.TrackedItem, string, error) {
	ps, err := t.store.ProductsFind(ctx)
	switch {
	case errors.Is(err, database.ErrNotFound):
		t.logger.Debugf("recompute: No catalog found, using seed")
		return t.seed(now), sourceSeed, nil
	case errors.Is(err, database.ErrCorrupt):
		t.logger.Errorf("recompute: Discarding corrupt catalog, using seed, err: %v", err)
		return t.seed(now), sourceSeed, nil
	case err != nil:
		return nil, "", errors.WithMessage(err, "error reading catalog")
	}

	ps = uniqueProducts(ps)
	ids := make([]string, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.ID)
	}

	nowMs := now.UnixMilli()
	ts, err := t.store.TimestampsEnsure(ctx, ids, nowMs)
	if err != nil {
		return nil, "", errors.WithMessage(err, "error ensuring start timestamps")
	}

	if t.prune {
		n, err := t.store.TimestampsPrune(ctx, ids)
		if err != nil {
			t.logger.Errorf("recompute: Error pruning orphaned timestamps, err: %v", err)
		} else if n > 0 {
			PrunedTimestamps.Add(float64(n))
			t.logger.Infof("recompute: Pruned %d orphaned timestamp(s)", n)
		}
	}

	items := make([]model.TrackedItem, 0, len(ps))
	for _, p := range ps {
		startEpoch, ok := ts[p.ID]
		if !ok {
			startEpoch = nowMs
		}
		e := depletion.EstimateAt(float64(p.Quantity), startEpoch, nowMs)
		items = append(items, model.TrackedItem{
			ID:             p.ID,
			Name:           p.Name,
			Icon:           p.Icon,
			StartEpoch:     startEpoch,
			TotalDays:      e.TotalDays,
			DaysLeft:       e.DaysLeft,
			Status:         e.Status,
			EstimatedPrice: p.Price,
		})
	}
	return items, sourceCatalog, nil
}

func (t *Tracker) seed(now time.Time) []model.TrackedItem {
	items := t.seeder.Seed(now)
	if items == nil {
		return []model.TrackedItem{}
	}
	return items
}

// uniqueProducts keeps the first product for every ID and drops products without one.
func uniqueProducts(ps []model.CatalogProduct) []model.CatalogProduct {
	seen := make(map[string]struct{}, len(ps))
	out := make([]model.CatalogProduct, 0, len(ps))
	for _, p := range ps {
		if p.ID == "" {
			continue
		}
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

func (t *Tracker) RefreshInInterval(ctx context.Context, ticker *time.Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			t.logger.Debugf("RefreshInInterval: Stopping, err: %v", ctx.Err())
			return
		case <-ticker.C:
			_ = t.RefreshNow(ctx)
		}
	}
}

func (t *Tracker) Items() []model.TrackedItem {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return copyItems(t.items)
}

func (t *Tracker) Item(id string) (model.TrackedItem, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, ti := range t.items {
		if ti.ID == id {
			return ti, true
		}
	}
	return model.TrackedItem{}, false
}

// Seeded reports whether the current items come from the seeder.
func (t *Tracker) Seeded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.seeded
}

func (t *Tracker) RefreshedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.refreshedAt
}

// Stats aggregates the current items for the dashboard. pending is the
// number of shopping list entries, owned by the list service.
func (t *Tracker) Stats(pending int) Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st := Stats{
		PendingCount:   misc.Max(0, pending),
		MonthlySavings: MonthlySavings,
	}
	if len(t.items) == 0 {
		return st
	}
	sum := 0
	for _, ti := range t.items {
		if ti.Status == model.StatusUrgent {
			st.UrgentCount++
		}
		sum += ti.DaysLeft
	}
	st.AverageDaysLeft = int(math.Round(float64(sum) / float64(len(t.items))))
	return st
}

// Subscribe registers fn to receive the item set after every refresh. The
// returned function removes the subscription.
func (t *Tracker) Subscribe(fn func([]model.TrackedItem)) func() {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	return func() {
		t.subMu.Lock()
		defer t.subMu.Unlock()
		delete(t.subs, id)
	}
}

func (t *Tracker) notify(items []model.TrackedItem) {
	t.subMu.Lock()
	fns := make([]func([]model.TrackedItem), 0, len(t.subs))
	for _, fn := range t.subs {
		fns = append(fns, fn)
	}
	t.subMu.Unlock()

	for _, fn := range fns {
		fn(copyItems(items))
	}
}

func copyItems(items []model.TrackedItem) []model.TrackedItem {
	c := make([]model.TrackedItem, len(items))
	copy(c, items)
	return c
}
