package sessions

import (
	"time"

	"github.com/jrsteele09/go-hospital-client/users"
)

// Durable storage keys. A persisted session is exactly the user and token
// entries; the refresh entry is written on login and otherwise left alone.
const (
	KeyUser    = "user"
	KeyToken   = "token"
	KeyRefresh = "refresh"
)

// Session is who is acting and with what credential. User and Token are
// always set together.
type Session struct {
	User      users.User
	Token     string
	ExpiresAt time.Time // zero until the token has been decoded
}

// LogoutReason says why a session ended.
type LogoutReason int

const (
	ReasonExplicit     LogoutReason = iota // Logout was called
	ReasonExpired                          // the token's exp passed
	ReasonInvalidToken                     // the token could not be decoded
)

func (r LogoutReason) String() string {
	switch r {
	case ReasonExpired:
		return "expired"
	case ReasonInvalidToken:
		return "invalid-token"
	default:
		return "explicit"
	}
}

// Forced reports whether the session ended without the user asking.
func (r LogoutReason) Forced() bool {
	return r != ReasonExplicit
}
