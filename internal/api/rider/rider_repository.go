package rider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/rastrodeliberdade/rider-platform/app/observability/metrics"
	"github.com/rastrodeliberdade/rider-platform/internal/api"
	"github.com/rastrodeliberdade/rider-platform/internal/types"
)

var _ RiderRepo = (*PostgresRiderRepo)(nil)

// RiderRepo defines the contract for rider persistence.
type RiderRepo interface {
	// FindByID retrieves a rider by id. Returns api.ErrNotFound if absent.
	FindByID(ctx context.Context, id uuid.UUID) (*types.Rider, error)

	// FindByEmail retrieves a rider by email. Returns api.ErrNotFound if absent.
	FindByEmail(ctx context.Context, email string) (*types.Rider, error)

	// FindByNickname retrieves a rider by biker nickname. Returns api.ErrNotFound if absent.
	FindByNickname(ctx context.Context, nickname string) (*types.Rider, error)

	// FindAuthByEmail retrieves only the fields needed for credential
	// verification. Returns api.ErrNotFound if absent.
	FindAuthByEmail(ctx context.Context, email string) (*types.RiderAuth, error)

	// FindByState lists riders registered in a state. Empty slice when none.
	FindByState(ctx context.Context, state string) ([]types.Rider, error)

	// FindAll lists every rider. Empty slice when none.
	FindAll(ctx context.Context) ([]types.Rider, error)

	// Insert persists a new rider and returns it with the assigned id and
	// registration timestamp.
	Insert(ctx context.Context, rider *types.Rider) (*types.Rider, error)

	// Update persists changes to an existing rider. Returns api.ErrNotFound
	// if the rider no longer exists.
	Update(ctx context.Context, rider *types.Rider) (*types.Rider, error)

	// Delete removes a rider. Returns api.ErrNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error
}

// DB is the subset of pgxpool.Pool the repository uses. Kept narrow so tests
// can substitute pgxmock.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresRiderRepo struct {
	logger *slog.Logger
	db     DB
}

func NewPostgresRiderRepo(db DB, logger *slog.Logger) *PostgresRiderRepo {
	return &PostgresRiderRepo{
		logger: logger,
		db:     db,
	}
}

const riderColumns = "id, full_name, email, biker_nickname, password_hash, city, state, registered_at"

func scanRider(row pgx.Row) (*types.Rider, error) {
	var r types.Rider
	err := row.Scan(&r.ID, &r.FullName, &r.Email, &r.BikerNickname,
		&r.PasswordHash, &r.City, &r.State, &r.RegisteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		return nil, fmt.Errorf("scanning rider: %w", err)
	}
	return &r, nil
}

// mapPgError turns a unique-constraint violation (the storage-level
// race-breaker) into the same conflict taxonomy the uniqueness guard uses.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		field := "email"
		if pgErr.ConstraintName == "riders_biker_nickname_key" {
			field = "nickname"
		}
		return &api.ConflictError{Field: field}
	}
	return err
}

func (r *PostgresRiderRepo) FindByID(ctx context.Context, id uuid.UUID) (*types.Rider, error) {
	ctx, span := otel.Tracer("RiderRepo").Start(ctx, "FindByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "riders"),
	))
	defer span.End()

	rider, err := scanRider(r.db.QueryRow(ctx,
		"SELECT "+riderColumns+" FROM riders WHERE id = $1", id))
	if err != nil {
		span.SetStatus(codes.Error, "rider lookup by id failed")
		return nil, err
	}
	return rider, nil
}

func (r *PostgresRiderRepo) FindByEmail(ctx context.Context, email string) (*types.Rider, error) {
	ctx, span := otel.Tracer("RiderRepo").Start(ctx, "FindByEmail", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "riders"),
	))
	defer span.End()

	rider, err := scanRider(r.db.QueryRow(ctx,
		"SELECT "+riderColumns+" FROM riders WHERE email = $1", email))
	if err != nil {
		span.SetStatus(codes.Error, "rider lookup by email failed")
		return nil, err
	}
	return rider, nil
}

func (r *PostgresRiderRepo) FindByNickname(ctx context.Context, nickname string) (*types.Rider, error) {
	ctx, span := otel.Tracer("RiderRepo").Start(ctx, "FindByNickname", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "riders"),
	))
	defer span.End()

	rider, err := scanRider(r.db.QueryRow(ctx,
		"SELECT "+riderColumns+" FROM riders WHERE biker_nickname = $1", nickname))
	if err != nil {
		span.SetStatus(codes.Error, "rider lookup by nickname failed")
		return nil, err
	}
	return rider, nil
}

func (r *PostgresRiderRepo) FindAuthByEmail(ctx context.Context, email string) (*types.RiderAuth, error) {
	ctx, span := otel.Tracer("RiderRepo").Start(ctx, "FindAuthByEmail", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "riders"),
	))
	defer span.End()

	var auth types.RiderAuth
	err := r.db.QueryRow(ctx,
		"SELECT id, email, password_hash FROM riders WHERE email = $1",
		email).Scan(&auth.ID, &auth.Email, &auth.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		span.SetStatus(codes.Error, "rider auth lookup failed")
		return nil, fmt.Errorf("scanning rider auth: %w", err)
	}
	return &auth, nil
}

func (r *PostgresRiderRepo) FindByState(ctx context.Context, state string) ([]types.Rider, error) {
	ctx, span := otel.Tracer("RiderRepo").Start(ctx, "FindByState", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "riders"),
	))
	defer span.End()

	rows, err := r.db.Query(ctx,
		"SELECT "+riderColumns+" FROM riders WHERE state = $1 ORDER BY registered_at", state)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		span.SetStatus(codes.Error, "rider list by state failed")
		return nil, fmt.Errorf("querying riders by state: %w", err)
	}
	defer rows.Close()

	return collectRiders(rows)
}

func (r *PostgresRiderRepo) FindAll(ctx context.Context) ([]types.Rider, error) {
	ctx, span := otel.Tracer("RiderRepo").Start(ctx, "FindAll", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "riders"),
	))
	defer span.End()

	rows, err := r.db.Query(ctx,
		"SELECT "+riderColumns+" FROM riders ORDER BY registered_at")
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		span.SetStatus(codes.Error, "rider list failed")
		return nil, fmt.Errorf("querying riders: %w", err)
	}
	defer rows.Close()

	return collectRiders(rows)
}

func collectRiders(rows pgx.Rows) ([]types.Rider, error) {
	riders := []types.Rider{}
	for rows.Next() {
		var r types.Rider
		if err := rows.Scan(&r.ID, &r.FullName, &r.Email, &r.BikerNickname,
			&r.PasswordHash, &r.City, &r.State, &r.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scanning rider row: %w", err)
		}
		riders = append(riders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rider rows: %w", err)
	}
	return riders, nil
}

func (r *PostgresRiderRepo) Insert(ctx context.Context, rider *types.Rider) (*types.Rider, error) {
	ctx, span := otel.Tracer("RiderRepo").Start(ctx, "Insert", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "riders"),
	))
	defer span.End()

	var saved types.Rider
	err := r.db.QueryRow(ctx, `
		INSERT INTO riders (full_name, email, biker_nickname, password_hash, city, state)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+riderColumns,
		rider.FullName, rider.Email, rider.BikerNickname,
		rider.PasswordHash, rider.City, rider.State,
	).Scan(&saved.ID, &saved.FullName, &saved.Email, &saved.BikerNickname,
		&saved.PasswordHash, &saved.City, &saved.State, &saved.RegisteredAt)
	if err != nil {
		span.SetStatus(codes.Error, "rider insert failed")
		if mapped := mapPgError(err); mapped != err {
			return nil, mapped
		}
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("inserting rider: %w", err)
	}
	return &saved, nil
}

func (r *PostgresRiderRepo) Update(ctx context.Context, rider *types.Rider) (*types.Rider, error) {
	ctx, span := otel.Tracer("RiderRepo").Start(ctx, "Update", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "riders"),
	))
	defer span.End()

	// registered_at is deliberately not in the SET list: it is immutable.
	var saved types.Rider
	err := r.db.QueryRow(ctx, `
		UPDATE riders
		SET full_name = $1, email = $2, biker_nickname = $3, password_hash = $4, city = $5, state = $6
		WHERE id = $7
		RETURNING `+riderColumns,
		rider.FullName, rider.Email, rider.BikerNickname,
		rider.PasswordHash, rider.City, rider.State, rider.ID,
	).Scan(&saved.ID, &saved.FullName, &saved.Email, &saved.BikerNickname,
		&saved.PasswordHash, &saved.City, &saved.State, &saved.RegisteredAt)
	if err != nil {
		span.SetStatus(codes.Error, "rider update failed")
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		if mapped := mapPgError(err); mapped != err {
			return nil, mapped
		}
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("updating rider: %w", err)
	}
	return &saved, nil
}

func (r *PostgresRiderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("RiderRepo").Start(ctx, "Delete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "riders"),
	))
	defer span.End()

	tag, err := r.db.Exec(ctx, "DELETE FROM riders WHERE id = $1", id)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		span.SetStatus(codes.Error, "rider delete failed")
		return fmt.Errorf("deleting rider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return api.ErrNotFound
	}
	return nil
}
