package database

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"pantry/internal/model"
)

// ProductsFind returns ErrNotFound when no catalog was ever written and
// ErrCorrupt when the stored catalog cannot be decoded.
func (db Database) ProductsFind(ctx context.Context) ([]model.CatalogProduct, error) {
	raw, err := db.Get(ctx, KeyProducts)
	if err != nil {
		return nil, errors.WithMessage(err, "error finding products")
	}
	ps, err := decodeProducts(raw)
	if err != nil {
		return nil, err
	}
	if ps == nil {
		return nil, errors.WithMessage(ErrNotFound, "products value is null")
	}
	return ps, nil
}

func (db Database) ProductsSave(ctx context.Context, ps []model.CatalogProduct) error {
	if ps == nil {
		ps = []model.CatalogProduct{}
	}
	b, err := json.Marshal(ps)
	if err != nil {
		return errors.Wrap(err, "error encoding products")
	}
	return errors.WithMessage(db.Set(ctx, KeyProducts, string(b)), "error saving products")
}

// ProductUpsert replaces the product with the same ID or appends it.
func (db Database) ProductUpsert(ctx context.Context, p model.CatalogProduct) error {
	err := db.Update(ctx, KeyProducts, func(cur string, exists bool) (string, error) {
		var ps []model.CatalogProduct
		if exists {
			decoded, err := decodeProducts(cur)
			if err != nil {
				db.Logger.Errorf("ProductUpsert: Discarding corrupt products value, err: %v", err)
			}
			ps = decoded
		}
		replaced := false
		for i := range ps {
			if ps[i].ID == p.ID {
				ps[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			ps = append(ps, p)
		}
		b, err := json.Marshal(ps)
		return string(b), err
	})
	return errors.WithMessagef(err, "error upserting product with ID: %s", p.ID)
}

// ProductRemove reports whether a product with the ID existed.
func (db Database) ProductRemove(ctx context.Context, id string) (bool, error) {
	removed := false
	err := db.Update(ctx, KeyProducts, func(cur string, exists bool) (string, error) {
		if !exists {
			return "", ErrUnchanged
		}
		ps, err := decodeProducts(cur)
		if err != nil {
			return "", err
		}
		kept := make([]model.CatalogProduct, 0, len(ps))
		for _, p := range ps {
			if p.ID == id {
				removed = true
				continue
			}
			kept = append(kept, p)
		}
		if !removed {
			return "", ErrUnchanged
		}
		b, err := json.Marshal(kept)
		return string(b), err
	})
	return removed, errors.WithMessagef(err, "error removing product with ID: %s", id)
}

func decodeProducts(raw string) ([]model.CatalogProduct, error) {
	var ps []model.CatalogProduct
	if err := json.Unmarshal([]byte(raw), &ps); err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "error decoding products: %v", err)
	}
	return ps, nil
}
