package session

import (
	"context"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"pantry/internal/database"
	"pantry/internal/model"
)

// Timeout is the maximum session age. Renewing resets the age.
const Timeout = 24 * time.Hour

const (
	loggedInValue  = "true"
	tokenSeparator = ":"
)

const (
	resultValid     = "valid"
	resultAnonymous = "anonymous"
	resultInvalid   = "invalid"
	resultError     = "error"
)

var ErrInvalidSession = errors.New("invalid session")

type store interface {
	SessionFind(ctx context.Context) (database.SessionFields, error)
	SessionSave(ctx context.Context, f database.SessionFields) error
	SessionIssuedAtUpdate(ctx context.Context, issuedAt string) error
	SessionClear(ctx context.Context) error
}

type logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

// Guard is the only authority on whether the household is logged in. Every
// answer is derived from the persisted session fields, nothing is cached.
type Guard struct {
	store  store
	logger logger
	now    func() time.Time
}

type Option func(*Guard)

func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

func New(s store, l logger, opts ...Option) *Guard {
	g := &Guard{
		store:  s,
		logger: l,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SetAuth starts a new session with a fresh token and issuance time.
func (g *Guard) SetAuth(ctx context.Context) (model.AuthSession, error) {
	now := g.now()
	raw := strconv.FormatInt(now.UnixMilli(), 10) + tokenSeparator + uuid.NewString()
	s := model.AuthSession{
		LoggedIn: true,
		Token:    base64.StdEncoding.EncodeToString([]byte(raw)),
		IssuedAt: time.UnixMilli(now.UnixMilli()),
	}
	err := g.store.SessionSave(ctx, database.SessionFields{
		LoggedIn: loggedInValue,
		Token:    s.Token,
		IssuedAt: strconv.FormatInt(now.UnixMilli(), 10),
	})
	if err != nil {
		return model.AuthSession{}, errors.WithMessage(err, "error saving session")
	}
	LoginsTotal.Inc()
	g.logger.Infof("SetAuth: New session issued")
	return s, nil
}

// Current returns the persisted session when it is valid. An invalid session
// is cleared and reported as ErrInvalidSession.
func (g *Guard) Current(ctx context.Context) (model.AuthSession, error) {
	f, err := g.store.SessionFind(ctx)
	if err != nil {
		ChecksTotal.WithLabelValues(resultError).Inc()
		g.forceLogout(ctx, "session unreadable")
		return model.AuthSession{}, errors.WithMessage(err, "error reading session")
	}
	if f == (database.SessionFields{}) {
		ChecksTotal.WithLabelValues(resultAnonymous).Inc()
		return model.AuthSession{}, ErrInvalidSession
	}

	s, err := parse(f, g.now())
	if err != nil {
		ChecksTotal.WithLabelValues(resultInvalid).Inc()
		g.forceLogout(ctx, err.Error())
		return model.AuthSession{}, errors.Wrap(ErrInvalidSession, err.Error())
	}
	ChecksTotal.WithLabelValues(resultValid).Inc()
	return s, nil
}

// ValidateAuth fails closed, any error yields false and clears the session.
func (g *Guard) ValidateAuth(ctx context.Context) bool {
	_, err := g.Current(ctx)
	return err == nil
}

// RenewSession moves the issuance time of a valid session to now. The token
// is kept.
func (g *Guard) RenewSession(ctx context.Context) (model.AuthSession, error) {
	s, err := g.Current(ctx)
	if err != nil {
		return model.AuthSession{}, err
	}
	now := g.now()
	if err := g.store.SessionIssuedAtUpdate(ctx, strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		return model.AuthSession{}, errors.WithMessage(err, "error renewing session")
	}
	s.IssuedAt = time.UnixMilli(now.UnixMilli())
	return s, nil
}

// Check revalidates the session and renews it while valid.
func (g *Guard) Check(ctx context.Context) bool {
	if _, err := g.RenewSession(ctx); err != nil {
		if !errors.Is(err, ErrInvalidSession) {
			g.logger.Errorf("Check: Error checking session, err: %v", err)
		}
		return false
	}
	return true
}

func (g *Guard) ClearAuth(ctx context.Context) error {
	if err := g.store.SessionClear(ctx); err != nil {
		return errors.WithMessage(err, "error clearing session")
	}
	g.logger.Infof("ClearAuth: Session cleared")
	return nil
}

// CheckInInterval expires sessions that became invalid between requests. It
// validates without renewing, renewal follows client activity.
func (g *Guard) CheckInInterval(ctx context.Context, ticker *time.Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			g.logger.Debugf("CheckInInterval: Stopping, err: %v", ctx.Err())
			return
		case <-ticker.C:
			g.ValidateAuth(ctx)
		}
	}
}

func (g *Guard) forceLogout(ctx context.Context, reason string) {
	g.logger.Infof("forceLogout: Clearing session, reason: %s", reason)
	if err := g.store.SessionClear(ctx); err != nil {
		g.logger.Errorf("forceLogout: Error clearing session, err: %v", err)
	}
}

func parse(f database.SessionFields, now time.Time) (model.AuthSession, error) {
	if f.LoggedIn != loggedInValue {
		return model.AuthSession{}, errors.New("session flag not set")
	}
	if f.Token == "" {
		return model.AuthSession{}, errors.New("session token missing")
	}
	decoded, err := base64.StdEncoding.DecodeString(f.Token)
	if err != nil {
		return model.AuthSession{}, errors.Wrap(err, "session token is not base64")
	}
	if !strings.Contains(string(decoded), tokenSeparator) {
		return model.AuthSession{}, errors.New("session token has no separator")
	}
	if f.IssuedAt == "" {
		return model.AuthSession{}, errors.New("session time missing")
	}
	issuedMs, err := strconv.ParseInt(strings.TrimSpace(f.IssuedAt), 10, 64)
	if err != nil {
		return model.AuthSession{}, errors.Wrap(err, "session time is not numeric")
	}
	issuedAt := time.UnixMilli(issuedMs)
	if issuedAt.After(now) {
		return model.AuthSession{}, errors.New("session issued in the future")
	}
	s := model.AuthSession{LoggedIn: true, Token: f.Token, IssuedAt: issuedAt}
	if s.Age(now) > Timeout {
		return model.AuthSession{}, errors.Errorf("session expired, age: %v", s.Age(now).Round(time.Second))
	}
	return s, nil
}
