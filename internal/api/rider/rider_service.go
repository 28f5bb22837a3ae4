package rider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/rastrodeliberdade/rider-platform/app/observability/metrics"
	"github.com/rastrodeliberdade/rider-platform/internal/types"
)

var _ RiderService = (*RiderServiceImpl)(nil)

// RiderService defines the business logic contract for rider operations.
// Every mutation routes through the uniqueness guard before touching storage.
type RiderService interface {
	Insert(ctx context.Context, params types.RiderUpsert) (*types.RiderSummary, error)
	Update(ctx context.Context, id uuid.UUID, params types.RiderUpsert) (*types.RiderSummary, error)
	Delete(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*types.RiderSummary, error)
	FindByEmail(ctx context.Context, email string) (*types.RiderSummary, error)
	FindByState(ctx context.Context, state string) ([]types.RiderSummary, error)
	FindAll(ctx context.Context) ([]types.RiderSummary, error)

	// FindAuthByEmail serves the internal credential lookup consumed by the
	// auth service. Returns api.ErrNotFound when no rider holds the email.
	FindAuthByEmail(ctx context.Context, email string) (*types.RiderAuth, error)
}

// RiderServiceImpl provides the implementation for RiderService.
type RiderServiceImpl struct {
	logger *slog.Logger
	repo   RiderRepo
	guard  *UniquenessGuard
}

// NewRiderService creates a new rider service instance.
func NewRiderService(repo RiderRepo, guard *UniquenessGuard, logger *slog.Logger) *RiderServiceImpl {
	return &RiderServiceImpl{
		logger: logger,
		repo:   repo,
		guard:  guard,
	}
}

// Insert registers a new rider: uniqueness check, password hash, persist.
func (s *RiderServiceImpl) Insert(ctx context.Context, params types.RiderUpsert) (*types.RiderSummary, error) {
	ctx, span := otel.Tracer("RiderService").Start(ctx, "Insert", trace.WithAttributes(
		attribute.String("rider.email", params.Email),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Insert"), slog.String("email", params.Email))
	l.DebugContext(ctx, "Registering new rider")

	if err := s.guard.CheckCreate(ctx, params.Email, params.BikerNickname); err != nil {
		l.WarnContext(ctx, "Rider registration rejected", slog.Any("error", err))
		span.SetStatus(codes.Error, "uniqueness check failed")
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "password hashing failed")
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	saved, err := s.repo.Insert(ctx, &types.Rider{
		FullName:      params.FullName,
		Email:         params.Email,
		BikerNickname: params.BikerNickname,
		PasswordHash:  string(hash),
		City:          params.City,
		State:         params.State,
	})
	if err != nil {
		l.ErrorContext(ctx, "Failed to persist rider", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "rider insert failed")
		return nil, err
	}

	metrics.Get().RiderMutationsTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Rider registered", slog.String("riderID", saved.ID.String()))
	return saved.Summary(), nil
}

// Update merges caller-supplied fields into an existing rider. The password
// hash is replaced only when a new non-blank password was supplied.
func (s *RiderServiceImpl) Update(ctx context.Context, id uuid.UUID, params types.RiderUpsert) (*types.RiderSummary, error) {
	ctx, span := otel.Tracer("RiderService").Start(ctx, "Update", trace.WithAttributes(
		attribute.String("rider.id", id.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Update"), slog.String("riderID", id.String()))
	l.DebugContext(ctx, "Updating rider")

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "rider not found")
		return nil, err
	}

	if err := s.guard.CheckUpdate(ctx, params.Email, params.BikerNickname, id); err != nil {
		l.WarnContext(ctx, "Rider update rejected", slog.Any("error", err))
		span.SetStatus(codes.Error, "uniqueness check failed")
		return nil, err
	}

	existing.FullName = params.FullName
	existing.Email = params.Email
	existing.BikerNickname = params.BikerNickname
	existing.City = params.City
	existing.State = params.State

	if strings.TrimSpace(params.Password) != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "password hashing failed")
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		existing.PasswordHash = string(hash)
	}

	saved, err := s.repo.Update(ctx, existing)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update rider", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "rider update failed")
		return nil, err
	}

	metrics.Get().RiderMutationsTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Rider updated")
	return saved.Summary(), nil
}

// Delete removes a rider by id.
func (s *RiderServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("RiderService").Start(ctx, "Delete", trace.WithAttributes(
		attribute.String("rider.id", id.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Delete"), slog.String("riderID", id.String()))

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		span.SetStatus(codes.Error, "rider not found")
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		l.ErrorContext(ctx, "Failed to delete rider", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "rider delete failed")
		return err
	}

	metrics.Get().RiderMutationsTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Rider deleted")
	return nil
}

// FindByID retrieves a rider summary by id.
func (s *RiderServiceImpl) FindByID(ctx context.Context, id uuid.UUID) (*types.RiderSummary, error) {
	l := s.logger.With(slog.String("method", "FindByID"), slog.String("riderID", id.String()))
	l.DebugContext(ctx, "Fetching rider")

	rider, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return rider.Summary(), nil
}

// FindByEmail retrieves a rider summary by email.
func (s *RiderServiceImpl) FindByEmail(ctx context.Context, email string) (*types.RiderSummary, error) {
	l := s.logger.With(slog.String("method", "FindByEmail"))
	l.DebugContext(ctx, "Fetching rider by email")

	rider, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return rider.Summary(), nil
}

// FindByState lists rider summaries for a state. An unknown state yields an
// empty list, never a not-found error.
func (s *RiderServiceImpl) FindByState(ctx context.Context, state string) ([]types.RiderSummary, error) {
	riders, err := s.repo.FindByState(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("listing riders by state: %w", err)
	}
	return summarize(riders), nil
}

// FindAll lists every registered rider.
func (s *RiderServiceImpl) FindAll(ctx context.Context) ([]types.RiderSummary, error) {
	riders, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing riders: %w", err)
	}
	return summarize(riders), nil
}

// FindAuthByEmail resolves the credential view of a rider.
func (s *RiderServiceImpl) FindAuthByEmail(ctx context.Context, email string) (*types.RiderAuth, error) {
	l := s.logger.With(slog.String("method", "FindAuthByEmail"))
	l.DebugContext(ctx, "Fetching rider credentials")

	return s.repo.FindAuthByEmail(ctx, email)
}

func summarize(riders []types.Rider) []types.RiderSummary {
	summaries := make([]types.RiderSummary, 0, len(riders))
	for i := range riders {
		summaries = append(summaries, *riders[i].Summary())
	}
	return summaries
}
