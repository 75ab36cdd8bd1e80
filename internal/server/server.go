package server

import (
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"pantry/internal/database"
	"pantry/internal/session"
	"pantry/internal/shoppinglist"
	"pantry/internal/tracker"
)

// loginTokenLifetime caps a login token. The session behind it expires
// much sooner unless it keeps being renewed.
const loginTokenLifetime = 30 * 24 * time.Hour

type Server struct {
	DB             database.Database
	Tracker        *tracker.Tracker
	List           *shoppinglist.Service
	Guard          *session.Guard
	Logger         logger
	AuthSecretKey  jwk.Key
	PassphraseHash []byte
}

type logger interface {
	Debug(v ...any)
	Info(v ...any)
	Error(v ...any)
	Tracef(format string, v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}
