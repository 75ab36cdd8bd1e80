package database

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
)

func (db Database) OnboardingSeen(ctx context.Context) (bool, error) {
	v, err := db.Get(ctx, KeyOnboardingSeen)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.WithMessage(err, "error finding onboarding flag")
	}
	seen, err := strconv.ParseBool(v)
	if err != nil {
		db.Logger.Errorf("OnboardingSeen: Invalid onboarding flag value: %q", v)
		return false, nil
	}
	return seen, nil
}

func (db Database) OnboardingSeenSet(ctx context.Context, seen bool) error {
	return errors.WithMessage(db.Set(ctx, KeyOnboardingSeen, strconv.FormatBool(seen)), "error saving onboarding flag")
}

func (db Database) ClipboardFind(ctx context.Context) (string, error) {
	v, err := db.Get(ctx, KeyClipboard)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, errors.WithMessage(err, "error finding clipboard")
}

func (db Database) ClipboardSet(ctx context.Context, text string) error {
	return errors.WithMessage(db.Set(ctx, KeyClipboard, text), "error saving clipboard")
}
