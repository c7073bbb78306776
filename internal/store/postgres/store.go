// Package postgres implements the repositories on pgx. Tenant-scoped
// statements run inside database.InTenant, so row-level security filters
// them, and they also carry an explicit tenant_id predicate.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nikhilbhutani/schoolhub/internal/database"
	"github.com/nikhilbhutani/schoolhub/internal/models"
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	database.TxBeginner
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

type Store struct {
	db DB
}

func New(db DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) scoped(ctx context.Context, tenantID uuid.UUID, fn func(pgx.Tx) error) error {
	return database.InTenant(ctx, s.db, tenantID, fn)
}

// translate maps driver errors onto the model sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, models.ErrConflict)
		case "23503", "42501":
			// foreign key or RLS violation: the row lives in another tenant
			return fmt.Errorf("%s: %w", pgErr.Message, models.ErrCrossTenant)
		}
	}
	return err
}

func (s *Store) InsertAuditLog(ctx context.Context, l *models.AuditLog) error {
	return s.scoped(ctx, l.TenantID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO audit_logs (id, tenant_id, user_id, action, resource_type, resource_id, details, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			l.ID, l.TenantID, l.UserID, l.Action, l.ResourceType, l.ResourceID, l.Details, l.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert audit log: %w", err)
		}
		return nil
	})
}
