package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"pantry/internal/session"
)

type sessionResponse struct {
	LoggedIn  bool      `json:"logged_in"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Server) sessionLogin() http.HandlerFunc {
	type request struct {
		Passphrase string `json:"passphrase"`
	}
	type response struct {
		LoginToken string `json:"login_token"`
		sessionResponse
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("sessionLogin: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if err := bcrypt.CompareHashAndPassword(s.PassphraseHash, []byte(req.Passphrase)); err != nil {
			s.Logger.Debugf("sessionLogin: Passphrase mismatch, err: %v", err)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		as, err := s.Guard.SetAuth(r.Context())
		if err != nil {
			s.Logger.Errorf("sessionLogin: Error starting session, err: %v", err)
			internalError(w)
			return
		}
		lt, err := s.createLoginToken(as.Token)
		if err != nil {
			s.Logger.Errorf("sessionLogin: Error creating login token, err: %v", err)
			internalError(w)
			return
		}
		s.writeJsonResponse(w, response{
			LoginToken: lt,
			sessionResponse: sessionResponse{
				LoggedIn:  true,
				IssuedAt:  as.IssuedAt,
				ExpiresAt: as.IssuedAt.Add(session.Timeout),
			},
		}, http.StatusOK)
	}
}

func (s Server) createLoginToken(sessionToken string) (string, error) {
	issuedAt := time.Now()
	t, err := jwt.NewBuilder().
		Subject("household").
		Issuer("pantry").
		IssuedAt(issuedAt).
		Expiration(issuedAt.Add(loginTokenLifetime)).
		Claim(sessionClaim, sessionToken).
		Build()
	if err != nil {
		return "", errors.Wrap(err, "error building login token")
	}
	lt, err := jwt.Sign(t, jwt.WithKey(jwa.HS256, s.AuthSecretKey))
	if err != nil {
		return "", errors.Wrap(err, "error signing login token")
	}
	return string(lt), nil
}

// sessionGet is polled by clients, every call renews the session.
func (s Server) sessionGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		as, err := s.Guard.RenewSession(r.Context())
		if err != nil {
			if errors.Is(err, session.ErrInvalidSession) {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			s.Logger.Errorf("sessionGet: Error renewing session, err: %v", err)
			internalError(w)
			return
		}
		s.writeJsonResponse(w, sessionResponse{
			LoggedIn:  as.LoggedIn,
			IssuedAt:  as.IssuedAt,
			ExpiresAt: as.IssuedAt.Add(session.Timeout),
		}, http.StatusOK)
	}
}

func (s Server) sessionLogout() http.HandlerFunc {
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Guard.ClearAuth(r.Context()); err != nil {
			s.Logger.Errorf("sessionLogout: Error clearing session, err: %v", err)
			internalError(w)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}
