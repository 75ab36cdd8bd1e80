package shoppinglist

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"pantry/internal/database"
	"pantry/internal/model"
)

var ErrEmptyList = errors.New("shopping list is empty")

type Outcome string

const (
	OutcomeAdded     Outcome = "added"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeNotFound  Outcome = "not_found"
)

type Receipt struct {
	Count   int                       `json:"count"`
	Total   decimal.Decimal           `json:"total"`
	Entries []model.ShoppingListEntry `json:"entries"`
}

type Totals struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type store interface {
	ShoppingListFind(ctx context.Context) ([]model.ShoppingListEntry, error)
	ShoppingListUpdate(
		ctx context.Context, fn func([]model.ShoppingListEntry) ([]model.ShoppingListEntry, error),
	) ([]model.ShoppingListEntry, error)
	ShoppingListClear(ctx context.Context) error
	ClipboardSet(ctx context.Context, text string) error
}

// ItemFinder looks up the current tracked item for an ID.
type ItemFinder interface {
	Item(id string) (model.TrackedItem, bool)
}

type logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

// Service turns tracked items into persisted shopping list entries. Entries
// are snapshots taken when the item is added.
type Service struct {
	store      store
	items      ItemFinder
	sharer     Sharer
	logger     logger
	clearDelay time.Duration

	mu           sync.Mutex
	pendingClear *time.Timer
	clearing     sync.WaitGroup
	flushing     bool
}

// New creates a Service. Checkout clears the list clearDelay after the
// receipt is returned, a delay of zero or less clears before returning.
func New(s store, items ItemFinder, sharer Sharer, l logger, clearDelay time.Duration) *Service {
	if sharer == nil {
		sharer = NoSharer{}
	}
	return &Service{
		store:      s,
		items:      items,
		sharer:     sharer,
		logger:     l,
		clearDelay: clearDelay,
	}
}

func (s *Service) AddToList(ctx context.Context, id string) (Outcome, error) {
	ti, ok := s.items.Item(id)
	if !ok {
		s.logger.Debugf("AddToList: No tracked item with ID: %s", id)
		AddTotal.WithLabelValues(string(OutcomeNotFound)).Inc()
		return OutcomeNotFound, nil
	}

	outcome := OutcomeAdded
	entries, err := s.store.ShoppingListUpdate(ctx, func(cur []model.ShoppingListEntry) ([]model.ShoppingListEntry, error) {
		outcome = OutcomeAdded
		for _, e := range cur {
			if e.ID == id {
				outcome = OutcomeDuplicate
				return nil, database.ErrUnchanged
			}
		}
		return append(cur, model.NewShoppingListEntry(ti)), nil
	})
	if err != nil {
		return "", errors.WithMessagef(err, "error adding item with ID: %s", id)
	}
	AddTotal.WithLabelValues(string(outcome)).Inc()
	EntriesTotal.Set(float64(len(entries)))
	s.logger.Debugf("AddToList: Item with ID: %s, outcome: %s", id, outcome)
	return outcome, nil
}

// RemoveFromList reports whether an entry with the ID was removed. A missing
// entry is not an error.
func (s *Service) RemoveFromList(ctx context.Context, id string) (bool, error) {
	removed := false
	entries, err := s.store.ShoppingListUpdate(ctx, func(cur []model.ShoppingListEntry) ([]model.ShoppingListEntry, error) {
		removed = false
		kept := make([]model.ShoppingListEntry, 0, len(cur))
		for _, e := range cur {
			if e.ID == id {
				removed = true
				continue
			}
			kept = append(kept, e)
		}
		if !removed {
			return nil, database.ErrUnchanged
		}
		return kept, nil
	})
	if err != nil {
		return false, errors.WithMessagef(err, "error removing item with ID: %s", id)
	}
	EntriesTotal.Set(float64(len(entries)))
	return removed, nil
}

// Checkout returns a receipt for the current list and clears the list after
// the configured delay. It fails with ErrEmptyList when there is nothing to buy.
func (s *Service) Checkout(ctx context.Context) (Receipt, error) {
	entries, err := s.store.ShoppingListFind(ctx)
	if err != nil {
		return Receipt{}, errors.WithMessage(err, "error reading shopping list")
	}
	if len(entries) == 0 {
		return Receipt{}, ErrEmptyList
	}

	r := Receipt{
		Count:   len(entries),
		Total:   sum(entries),
		Entries: entries,
	}
	CheckoutTotal.Inc()
	s.logger.Infof("Checkout: %d entry(s), total: %s", r.Count, r.Total.StringFixed(2))

	if s.clearDelay <= 0 {
		if err := s.clear(ctx); err != nil {
			return Receipt{}, err
		}
		return r, nil
	}
	if !s.scheduleClear() {
		if err := s.clear(ctx); err != nil {
			return Receipt{}, err
		}
	}
	return r, nil
}

// scheduleClear reports false once Flush has started, the caller clears
// the list itself then.
func (s *Service) scheduleClear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flushing {
		return false
	}
	if s.pendingClear != nil && s.pendingClear.Stop() {
		s.clearing.Done()
	}
	s.clearing.Add(1)
	var t *time.Timer
	t = time.AfterFunc(s.clearDelay, func() {
		defer s.clearing.Done()
		s.mu.Lock()
		if s.pendingClear == t {
			s.pendingClear = nil
		}
		s.mu.Unlock()
		if err := s.clear(context.Background()); err != nil {
			s.logger.Errorf("scheduleClear: Error clearing shopping list after checkout, err: %v", err)
		}
	})
	s.pendingClear = t
	return true
}

func (s *Service) clear(ctx context.Context) error {
	if err := s.store.ShoppingListClear(ctx); err != nil {
		return errors.WithMessage(err, "error clearing shopping list after checkout")
	}
	EntriesTotal.Set(0)
	s.logger.Debugf("clear: Shopping list cleared")
	return nil
}

// Flush runs a pending checkout clear immediately and waits for running ones.
// Checkouts after Flush clear the list before returning.
func (s *Service) Flush(ctx context.Context) error {
	s.mu.Lock()
	s.flushing = true
	pending := s.pendingClear != nil && s.pendingClear.Stop()
	s.pendingClear = nil
	s.mu.Unlock()

	var err error
	if pending {
		err = s.clear(ctx)
		s.clearing.Done()
	}
	s.clearing.Wait()
	return err
}

func (s *Service) Entries(ctx context.Context) ([]model.ShoppingListEntry, error) {
	entries, err := s.store.ShoppingListFind(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "error reading shopping list")
	}
	EntriesTotal.Set(float64(len(entries)))
	return entries, nil
}

func (s *Service) Totals(ctx context.Context) (Totals, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return Totals{}, err
	}
	return TotalsOf(entries), nil
}

// TotalsOf counts and sums entries already read from the list.
func TotalsOf(entries []model.ShoppingListEntry) Totals {
	return Totals{Count: len(entries), Total: sum(entries)}
}

func sum(entries []model.ShoppingListEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.EstimatedPrice)
	}
	return total
}
