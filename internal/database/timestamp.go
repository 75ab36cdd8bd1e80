package database

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// Start epochs are unix milliseconds keyed by item ID, stored as one JSON object.

func (db Database) TimestampsFind(ctx context.Context) (map[string]int64, error) {
	raw, err := db.Get(ctx, KeyTimestamps)
	if errors.Is(err, ErrNotFound) {
		return map[string]int64{}, nil
	}
	if err != nil {
		return nil, errors.WithMessage(err, "error finding timestamps")
	}
	ts, err := decodeTimestampValues(raw)
	if err != nil {
		db.Logger.Errorf("TimestampsFind: Discarding corrupt timestamps value, err: %v", err)
		return map[string]int64{}, nil
	}
	return ts, nil
}

// TimestampsEnsure assigns now to every ID without a start epoch and returns
// the full map. Existing start epochs are never overwritten.
func (db Database) TimestampsEnsure(ctx context.Context, ids []string, now int64) (map[string]int64, error) {
	var result map[string]int64
	err := db.Update(ctx, KeyTimestamps, func(cur string, exists bool) (string, error) {
		ts := map[string]int64{}
		changed := !exists
		if exists {
			decoded, err := decodeTimestampValues(cur)
			if err != nil {
				db.Logger.Errorf("TimestampsEnsure: Discarding corrupt timestamps value, err: %v", err)
				changed = true
			} else {
				ts = decoded
			}
		}
		for _, id := range ids {
			if _, ok := ts[id]; !ok {
				ts[id] = now
				changed = true
			}
		}
		result = ts
		if !changed {
			return "", ErrUnchanged
		}
		b, err := json.Marshal(ts)
		return string(b), err
	})
	if err != nil {
		return nil, errors.WithMessage(err, "error ensuring timestamps")
	}
	return copyTimestamps(result), nil
}

// TimestampsPrune drops start epochs whose ID is not in keep.
func (db Database) TimestampsPrune(ctx context.Context, keep []string) (int, error) {
	removed := 0
	err := db.Update(ctx, KeyTimestamps, func(cur string, exists bool) (string, error) {
		removed = 0
		if !exists {
			return "", ErrUnchanged
		}
		ts, err := decodeTimestampValues(cur)
		if err != nil {
			return "", ErrUnchanged
		}
		keepSet := make(map[string]struct{}, len(keep))
		for _, id := range keep {
			keepSet[id] = struct{}{}
		}
		for id := range ts {
			if _, ok := keepSet[id]; !ok {
				delete(ts, id)
				removed++
			}
		}
		if removed == 0 {
			return "", ErrUnchanged
		}
		b, err := json.Marshal(ts)
		return string(b), err
	})
	return removed, errors.WithMessage(err, "error pruning timestamps")
}

func decodeTimestampValues(raw string) (map[string]int64, error) {
	var nums map[string]json.Number
	if err := json.Unmarshal([]byte(raw), &nums); err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "error decoding timestamps: %v", err)
	}
	ts := make(map[string]int64, len(nums))
	for id, n := range nums {
		if v, err := n.Int64(); err == nil {
			ts[id] = v
			continue
		}
		f, err := n.Float64()
		if err != nil {
			return nil, errors.Wrapf(ErrCorrupt, "invalid timestamp for ID %s: %s", id, n)
		}
		ts[id] = int64(f)
	}
	return ts, nil
}

func copyTimestamps(ts map[string]int64) map[string]int64 {
	c := make(map[string]int64, len(ts))
	for k, v := range ts {
		c[k] = v
	}
	return c
}
