package types

import (
	"time"

	"github.com/google/uuid"
)

// Rider is the durable record of a registered user.
type Rider struct {
	ID            uuid.UUID `json:"id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`          // Unique across all riders.
	BikerNickname string    `json:"biker_nickname"` // Unique across all riders.
	PasswordHash  string    `json:"-"`              // Never serialized.
	City          string    `json:"city"`
	State         string    `json:"state"`
	RegisteredAt  time.Time `json:"registered_at"` // Immutable once set.
}

// RiderAuth is the reduced view of a rider exposed to the auth service:
// only what credential verification needs, no profile fields.
type RiderAuth struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password"`
}

// RiderSummary is what mutations and reads return to callers.
type RiderSummary struct {
	ID            uuid.UUID `json:"id"`
	BikerNickname string    `json:"biker_nickname"`
	Email         string    `json:"email"`
	City          string    `json:"city"`
	State         string    `json:"state"`
}

// RiderUpsert carries the caller-supplied fields for create and update.
// Password is plaintext on input; it is hashed before it ever reaches
// storage. On update a blank password means "keep the current hash".
type RiderUpsert struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	BikerNickname string `json:"biker_nickname"`
	Password      string `json:"password,omitempty"`
	City          string `json:"city"`
	State         string `json:"state"`
}

// Summary maps a rider to its caller-facing summary view.
func (r *Rider) Summary() *RiderSummary {
	return &RiderSummary{
		ID:            r.ID,
		BikerNickname: r.BikerNickname,
		Email:         r.Email,
		City:          r.City,
		State:         r.State,
	}
}
