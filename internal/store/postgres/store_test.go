package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/schoolhub/internal/models"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, New(mock)
}

func expectScope(mock pgxmock.PgxPoolIface, tenantID uuid.UUID) {
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET LOCAL ROLE school_app")).
		WillReturnResult(pgxmock.NewResult("SET", 0))
	mock.ExpectExec(regexp.QuoteMeta("SELECT set_config('app.tenant_id', $1, true)")).
		WithArgs(tenantID.String()).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: models.ErrNotFound},
		{name: "unique", err: &pgconn.PgError{Code: "23505", ConstraintName: "tenants_slug_key"}, want: models.ErrConflict},
		{name: "foreign key", err: &pgconn.PgError{Code: "23503"}, want: models.ErrCrossTenant},
		{name: "row level security", err: &pgconn.PgError{Code: "42501"}, want: models.ErrCrossTenant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translate(tt.err), tt.want)
		})
	}

	other := &pgconn.PgError{Code: "57014"}
	assert.Same(t, other, translate(other))
	assert.NoError(t, translate(nil))
}

func TestGetProfileScopedToTenant(t *testing.T) {
	mock, store := newMock(t)
	tenantID, userID := uuid.New(), uuid.New()
	created := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)

	expectScope(mock, tenantID)
	mock.ExpectQuery(`FROM profiles WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(tenantID, userID).
		WillReturnRows(mock.NewRows([]string{"id", "tenant_id", "role", "full_name", "email", "created_at"}).
			AddRow(userID, tenantID, models.RoleTeacher, "Tom Teacher", "tom@acme.test", created))
	mock.ExpectCommit()

	p, err := store.GetProfile(context.Background(), tenantID, userID)
	require.NoError(t, err)
	assert.Equal(t, tenantID, p.TenantID)
	assert.Equal(t, models.RoleTeacher, p.Role)
	assert.Equal(t, created, p.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfileMissingIsNotFound(t *testing.T) {
	mock, store := newMock(t)
	tenantID, userID := uuid.New(), uuid.New()

	expectScope(mock, tenantID)
	mock.ExpectQuery(`FROM profiles WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(tenantID, userID).
		WillReturnRows(mock.NewRows([]string{"id", "tenant_id", "role", "full_name", "email", "created_at"}))
	mock.ExpectRollback()

	_, err := store.GetProfile(context.Background(), tenantID, userID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCategoryCrossTenantReference(t *testing.T) {
	mock, store := newMock(t)
	c := &models.InventoryCategory{ID: uuid.New(), TenantID: uuid.New(), Name: "Books", CreatedAt: time.Now().UTC()}

	expectScope(mock, c.TenantID)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO inventory_categories")).
		WithArgs(c.ID, c.TenantID, c.Name, c.Description, c.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "42501", Message: "new row violates row-level security policy"})
	mock.ExpectRollback()

	err := store.CreateCategory(context.Background(), c)
	assert.ErrorIs(t, err, models.ErrCrossTenant)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTenantDuplicateSlug(t *testing.T) {
	mock, store := newMock(t)
	now := time.Now().UTC()
	tn := &models.Tenant{ID: uuid.New(), Name: "Acme High", Slug: "acme", SubscriptionTier: models.TierFree, CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tenants")).
		WithArgs(tn.ID, tn.Name, tn.Address, tn.Motto, tn.LogoURL, tn.PrimaryColor, tn.SecondaryColor,
			tn.Slug, tn.SubscriptionTier, tn.CreatedAt, tn.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "tenants_slug_key"})

	err := store.CreateTenant(context.Background(), tn)
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScopedCallsRejectNilTenant(t *testing.T) {
	mock, store := newMock(t)

	_, err := store.GetProfile(context.Background(), uuid.Nil, uuid.New())
	assert.Error(t, err)
	_, err = store.ListCategories(context.Background(), uuid.Nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
