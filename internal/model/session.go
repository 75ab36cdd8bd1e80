package model

import "time"

type AuthSession struct {
	LoggedIn bool      `json:"logged_in"`
	Token    string    `json:"-"`
	IssuedAt time.Time `json:"issued_at"`
}

func (s AuthSession) Age(now time.Time) time.Duration {
	return now.Sub(s.IssuedAt)
}
