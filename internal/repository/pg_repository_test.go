package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"property_portal/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pgPropertyCols = []string{"id", "title", "location", "price", "type", "beds", "baths", "area", "image", "status", "city", "created_at", "updated_at"}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestPgPropertyRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPgPropertyRepository(mock)

	mock.ExpectQuery("INSERT INTO properties").
		WithArgs(anyArgs(12)...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(42))

	p := &model.Property{Title: "Villa", Type: model.PropertyTypeResidential, Status: model.StatusAvailable}
	err := repo.Create(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, 42, p.ID)
}

func TestPgPropertyRepository_FindByID(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPgPropertyRepository(mock)

	city := "bhopal"
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM properties WHERE id").
		WithArgs(7).
		WillReturnRows(pgxmock.NewRows(pgPropertyCols).
			AddRow(7, "Villa", "Arera Colony", "1.5 Cr", "Residential", 4, 3, "2400 sqft", "/uploads/a.png", "Available", &city, now, now))

	p, err := repo.FindByID(context.Background(), 7)

	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 7, p.ID)
	assert.Equal(t, "Villa", p.Title)
	assert.Equal(t, 4, p.Beds)
	require.NotNil(t, p.City)
	assert.Equal(t, "bhopal", *p.City)
	assert.Equal(t, now, p.CreatedAt)
}

func TestPgPropertyRepository_FindByID_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPgPropertyRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM properties WHERE id").
		WithArgs(9).
		WillReturnError(pgx.ErrNoRows)

	p, err := repo.FindByID(context.Background(), 9)

	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestPgPropertyRepository_FindAll(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPgPropertyRepository(mock)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM properties ORDER BY created_at DESC").
		WillReturnRows(pgxmock.NewRows(pgPropertyCols).
			AddRow(2, "B", "L", "1", "Land", 0, 0, "2 Acres", "https://img", "Sold", nil, now, now).
			AddRow(1, "A", "L", "1", "Commercial", 0, 1, "1200 sqft", "https://img", "Available", nil, now, now))

	list, err := repo.FindAll(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[0].ID)
	assert.Nil(t, list[0].City)
	assert.Equal(t, "Commercial", list[1].Type)
}

func TestPgPropertyRepository_FindAll_Empty(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPgPropertyRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM properties").
		WillReturnRows(pgxmock.NewRows(pgPropertyCols))

	list, err := repo.FindAll(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestPgPropertyRepository_Update(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPgPropertyRepository(mock)

	mock.ExpectExec("UPDATE properties").
		WithArgs(anyArgs(12)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), &model.Property{ID: 3})
	assert.NoError(t, err)
}

func TestPgPropertyRepository_Update_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPgPropertyRepository(mock)

	mock.ExpectExec("UPDATE properties").
		WithArgs(anyArgs(12)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &model.Property{ID: 3})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPgPropertyRepository_Delete(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPgPropertyRepository(mock)

	mock.ExpectExec("DELETE FROM properties").
		WithArgs(5).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM properties").
		WithArgs(6).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.Delete(context.Background(), 5))
	assert.ErrorIs(t, repo.Delete(context.Background(), 6), ErrNotFound)
}

func TestPgPropertyRepository_Create_DBError(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPgPropertyRepository(mock)

	mock.ExpectQuery("INSERT INTO properties").
		WithArgs(anyArgs(12)...).
		WillReturnError(errors.New("check constraint violated"))

	err := repo.Create(context.Background(), &model.Property{})
	assert.ErrorContains(t, err, "failed to create property")
}

func TestPgUserRepository_FindByUsername(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPgUserRepository(mock)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("admin").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow(1, "admin", "$2a$10$hash", now))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	user, err := repo.FindByUsername(context.Background(), "admin")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, 1, user.ID)
	assert.Equal(t, "$2a$10$hash", user.PasswordHash)

	user, err = repo.FindByUsername(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestPgSessionRepository_Lifecycle(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPgSessionRepository(mock)
	ctx := context.Background()

	now := time.Now().UTC()
	s := &model.Session{ID: "sid-1", UserID: 1, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs("sid-1", 1, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT (.+) FROM sessions WHERE id").
		WithArgs("sid-1", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "created_at", "expires_at"}).
			AddRow("sid-1", 1, s.CreatedAt, s.ExpiresAt))
	mock.ExpectExec("DELETE FROM sessions WHERE id").
		WithArgs("sid-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM sessions WHERE expires_at").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	require.NoError(t, repo.Create(ctx, s))

	found, err := repo.FindActive(ctx, "sid-1", now)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 1, found.UserID)

	require.NoError(t, repo.Delete(ctx, "sid-1"))

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
