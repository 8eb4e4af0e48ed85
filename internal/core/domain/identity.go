package domain

import "time"

// Identity is the caller decoded from a verified access token. It lives for
// the duration of one request.
type Identity struct {
	Subject   string    `json:"sub"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
