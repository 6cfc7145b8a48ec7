package domain

import "time"

// Session is the authenticated caller of a request. It is passed explicitly
// to every service call that acts on behalf of a user.
type Session struct {
	UserID      string
	Email       string
	DisplayName string
	TokenID     string
	IssuedAt    time.Time
	AuthTime    time.Time // last time the user proved their password
	ExpiresAt   time.Time
}
