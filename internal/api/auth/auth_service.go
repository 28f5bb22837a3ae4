package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	"github.com/rastrodeliberdade/rider-platform/app/observability/metrics"
	"github.com/rastrodeliberdade/rider-platform/internal/api"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService defines the business logic contract for authentication.
type AuthService interface {
	// Login runs the full pipeline for one attempt: remote credential
	// lookup, password verification, token issuance. An unknown email and a
	// wrong password both surface as api.ErrUnauthenticated so a caller
	// cannot probe which emails are registered. Lookup and issuance
	// infrastructure failures propagate as distinct errors.
	Login(ctx context.Context, email, password string) (string, error)
}

// AuthServiceImpl implements the AuthService interface.
type AuthServiceImpl struct {
	logger *slog.Logger
	riders RiderClient
	tokens *TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(riders RiderClient, tokens *TokenIssuer, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		riders: riders,
		tokens: tokens,
	}
}

// Login authenticates a rider by email and password and returns a signed
// access token. Single attempt, synchronous: the caller either receives a
// token or one failure.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()

	start := time.Now()
	l := s.logger.With(slog.String("method", "Login"))
	l.DebugContext(ctx, "Login attempt received")

	principal, err := s.verifyCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, api.ErrLookupFailure) {
			l.ErrorContext(ctx, "Credential lookup failed", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "credential lookup failed")
			return "", err
		}
		// Collapse "no such user" and "wrong password" into one outward
		// signal. The distinction is logged, never returned.
		l.WarnContext(ctx, "Login rejected", slog.Any("reason", err))
		span.SetStatus(codes.Error, "login rejected")
		metrics.Get().LoginRequestsTotal.Add(ctx, 1)
		return "", api.ErrUnauthenticated
	}

	token, err := s.tokens.Issue(principal)
	if err != nil {
		l.ErrorContext(ctx, "Token issuance failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "token issuance failed")
		return "", fmt.Errorf("%w: issuing token: %v", api.ErrInternal, err)
	}

	metrics.Get().LoginRequestsTotal.Add(ctx, 1)
	metrics.Get().LoginDurationSeconds.Record(ctx, time.Since(start).Seconds())
	l.InfoContext(ctx, "Login succeeded")
	return token, nil
}

// verifyCredentials resolves the rider through the remote client and checks
// the password against the stored bcrypt hash. bcrypt's self-salted compare
// is constant-time for the hash in use; it is never short-circuited here.
func (s *AuthServiceImpl) verifyCredentials(ctx context.Context, email, password string) (*Principal, error) {
	rider, err := s.riders.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if rider == nil {
		return nil, api.ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rider.PasswordHash), []byte(password)); err != nil {
		return nil, api.ErrBadCredentials
	}

	return &Principal{
		Email:        rider.Email,
		PasswordHash: rider.PasswordHash,
	}, nil
}
