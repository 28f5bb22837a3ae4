package rider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rastrodeliberdade/rider-platform/internal/api"
)

// UniquenessGuard enforces the email/nickname uniqueness invariants before a
// write reaches the database. Email is checked before nickname, and the guard
// short-circuits on the first conflict.
//
// This is a check-then-act sequence with no transactional isolation: two
// concurrent creates with the same email can both pass. The UNIQUE
// constraints on the riders table are the actual enforcement point; the
// guard's job is to produce a specific, friendly conflict error first.
type UniquenessGuard struct {
	logger *slog.Logger
	repo   RiderRepo
}

func NewUniquenessGuard(repo RiderRepo, logger *slog.Logger) *UniquenessGuard {
	return &UniquenessGuard{
		logger: logger,
		repo:   repo,
	}
}

// CheckCreate fails with a ConflictError when any rider already holds the
// candidate email or nickname.
func (g *UniquenessGuard) CheckCreate(ctx context.Context, email, nickname string) error {
	return g.check(ctx, email, nickname, uuid.Nil)
}

// CheckUpdate is CheckCreate relaxed for self-updates: a hit is only a
// conflict when the found record belongs to a different rider, so a rider
// may always keep its own email and nickname.
func (g *UniquenessGuard) CheckUpdate(ctx context.Context, email, nickname string, targetID uuid.UUID) error {
	return g.check(ctx, email, nickname, targetID)
}

func (g *UniquenessGuard) check(ctx context.Context, email, nickname string, targetID uuid.UUID) error {
	existing, err := g.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.ID != targetID {
			return &api.ConflictError{Field: "email", Value: email}
		}
	case !errors.Is(err, api.ErrNotFound):
		return fmt.Errorf("checking email uniqueness: %w", err)
	}

	existing, err = g.repo.FindByNickname(ctx, nickname)
	switch {
	case err == nil:
		if existing.ID != targetID {
			return &api.ConflictError{Field: "nickname", Value: nickname}
		}
	case !errors.Is(err, api.ErrNotFound):
		return fmt.Errorf("checking nickname uniqueness: %w", err)
	}

	return nil
}
