package shoppinglist

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"pantry/internal/misc"
	"pantry/internal/model"
)

const (
	ShareTitle       = "Shopping List"
	shareNameMaxRune = 40
)

type ShareOutcome string

const (
	ShareShared   ShareOutcome = "shared"
	ShareCanceled ShareOutcome = "canceled"
	ShareCopied   ShareOutcome = "copied"
)

// Sharer delivers text through a native share capability. Share reports
// delivered false with a nil error when the recipient canceled.
type Sharer interface {
	Available() bool
	Share(ctx context.Context, title string, text string) (delivered bool, err error)
}

// NoSharer is used when no native share capability is configured.
type NoSharer struct{}

func (NoSharer) Available() bool {
	return false
}

func (NoSharer) Share(context.Context, string, string) (bool, error) {
	return false, errors.New("no share capability available")
}

type ShareResult struct {
	Outcome ShareOutcome `json:"outcome"`
	Text    string       `json:"text"`
}

// Share sends the formatted list through the sharer. Without a sharer, or
// when sharing fails, the text is copied to the clipboard instead.
func (s *Service) Share(ctx context.Context) (ShareResult, error) {
	entries, err := s.store.ShoppingListFind(ctx)
	if err != nil {
		return ShareResult{}, errors.WithMessage(err, "error reading shopping list")
	}
	if len(entries) == 0 {
		return ShareResult{}, ErrEmptyList
	}
	text := FormatText(entries)

	if s.sharer.Available() {
		delivered, err := s.sharer.Share(ctx, ShareTitle, text)
		switch {
		case err != nil:
			s.logger.Errorf("Share: Error sharing shopping list, falling back to clipboard, err: %v", err)
		case delivered:
			ShareTotal.WithLabelValues(string(ShareShared)).Inc()
			return ShareResult{Outcome: ShareShared, Text: text}, nil
		default:
			ShareTotal.WithLabelValues(string(ShareCanceled)).Inc()
			return ShareResult{Outcome: ShareCanceled, Text: text}, nil
		}
	}

	if err := s.store.ClipboardSet(ctx, text); err != nil {
		return ShareResult{}, errors.WithMessage(err, "error copying shopping list to clipboard")
	}
	s.logger.Infof("Share: Native share unavailable, copied %d entry(s) to clipboard", len(entries))
	ShareTotal.WithLabelValues(string(ShareCopied)).Inc()
	return ShareResult{Outcome: ShareCopied, Text: text}, nil
}

// FormatText renders entries as plain text, one line per entry followed by the total.
func FormatText(entries []model.ShoppingListEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d items)\n", ShareTitle, len(entries))
	for _, e := range entries {
		name := misc.StringLimit(e.Name, shareNameMaxRune)
		if e.Icon != "" {
			name = e.Icon + " " + name
		}
		fmt.Fprintf(&sb, "- %s [%s] ~%s\n", name, e.Priority, e.EstimatedPrice.StringFixed(2))
	}
	fmt.Fprintf(&sb, "Estimated total: %s", sum(entries).StringFixed(2))
	return sb.String()
}
