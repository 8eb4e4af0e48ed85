package domain

import "time"

// AuthEventKind classifies entries of the authentication audit trail.
type AuthEventKind string

const (
	EventLoginSucceeded AuthEventKind = "login_succeeded"
	EventLoginFailed    AuthEventKind = "login_failed"
	EventRegistered     AuthEventKind = "registered"
	EventAccessDenied   AuthEventKind = "access_denied"
	EventStatusChanged  AuthEventKind = "status_changed"
)

// AuthEvent is one audit record. It never carries a password.
type AuthEvent struct {
	ID         string        `json:"id" bson:"_id"`
	Kind       AuthEventKind `json:"kind" bson:"kind"`
	Email      string        `json:"email,omitempty" bson:"email,omitempty"`
	UserID     string        `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Role       Role          `json:"role,omitempty" bson:"role,omitempty"`
	ActorID    string        `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	RemoteIP   string        `json:"remote_ip,omitempty" bson:"remote_ip,omitempty"`
	Path       string        `json:"path,omitempty" bson:"path,omitempty"`
	OccurredAt time.Time     `json:"occurred_at" bson:"occurred_at"`
}
