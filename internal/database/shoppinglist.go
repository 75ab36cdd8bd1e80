package database

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"pantry/internal/model"
)

// ShoppingListFind treats a missing or corrupt list as empty.
func (db Database) ShoppingListFind(ctx context.Context) ([]model.ShoppingListEntry, error) {
	raw, err := db.Get(ctx, KeyShoppingList)
	if errors.Is(err, ErrNotFound) {
		return []model.ShoppingListEntry{}, nil
	}
	if err != nil {
		return nil, errors.WithMessage(err, "error finding shopping list")
	}
	return db.decodeShoppingList("ShoppingListFind", raw), nil
}

// ShoppingListUpdate applies fn to the stored list atomically and returns the
// list as stored afterwards. fn may return ErrUnchanged to skip the write.
func (db Database) ShoppingListUpdate(
	ctx context.Context, fn func([]model.ShoppingListEntry) ([]model.ShoppingListEntry, error),
) ([]model.ShoppingListEntry, error) {
	var result []model.ShoppingListEntry
	err := db.Update(ctx, KeyShoppingList, func(cur string, exists bool) (string, error) {
		entries := []model.ShoppingListEntry{}
		if exists {
			entries = db.decodeShoppingList("ShoppingListUpdate", cur)
		}
		next, err := fn(entries)
		if errors.Is(err, ErrUnchanged) {
			result = entries
			return "", err
		}
		if err != nil {
			return "", err
		}
		if next == nil {
			next = []model.ShoppingListEntry{}
		}
		b, err := json.Marshal(next)
		if err != nil {
			return "", errors.Wrap(err, "error encoding shopping list")
		}
		result = next
		return string(b), nil
	})
	if err != nil {
		return nil, errors.WithMessage(err, "error updating shopping list")
	}
	return result, nil
}

func (db Database) ShoppingListClear(ctx context.Context) error {
	return errors.WithMessage(db.Set(ctx, KeyShoppingList, "[]"), "error clearing shopping list")
}

func (db Database) decodeShoppingList(caller string, raw string) []model.ShoppingListEntry {
	var entries []model.ShoppingListEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		db.Logger.Errorf("%s: Discarding corrupt shopping list value, err: %v", caller, err)
		return []model.ShoppingListEntry{}
	}
	if entries == nil {
		return []model.ShoppingListEntry{}
	}
	return entries
}
