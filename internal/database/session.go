package database

import (
	"context"

	"github.com/pkg/errors"
)

// SessionFields holds the raw persisted session values, empty when absent.
type SessionFields struct {
	LoggedIn string
	Token    string
	IssuedAt string
}

func (db Database) SessionFind(ctx context.Context) (SessionFields, error) {
	var f SessionFields
	for key, dst := range map[string]*string{
		KeyAuthFlag:  &f.LoggedIn,
		KeyAuthToken: &f.Token,
		KeyAuthTime:  &f.IssuedAt,
	} {
		v, err := db.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return SessionFields{}, errors.WithMessagef(err, "error finding session field: %s", key)
		}
		*dst = v
	}
	return f, nil
}

// SessionSave writes the issuance time last, a session is only valid once all
// three fields are present.
func (db Database) SessionSave(ctx context.Context, f SessionFields) error {
	if err := db.Set(ctx, KeyAuthFlag, f.LoggedIn); err != nil {
		return errors.WithMessage(err, "error saving session flag")
	}
	if err := db.Set(ctx, KeyAuthToken, f.Token); err != nil {
		return errors.WithMessage(err, "error saving session token")
	}
	return errors.WithMessage(db.Set(ctx, KeyAuthTime, f.IssuedAt), "error saving session time")
}

func (db Database) SessionIssuedAtUpdate(ctx context.Context, issuedAt string) error {
	return errors.WithMessage(db.Set(ctx, KeyAuthTime, issuedAt), "error updating session time")
}

func (db Database) SessionClear(ctx context.Context) error {
	return errors.WithMessage(db.Delete(ctx, KeyAuthFlag, KeyAuthToken, KeyAuthTime), "error clearing session")
}
