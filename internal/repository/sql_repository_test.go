package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"property_portal/internal/config"
	"property_portal/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := config.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, config.MigrateSQLite(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestProperty(title string, createdAt time.Time) *model.Property {
	city := "bhopal"
	return &model.Property{
		Title:     title,
		Location:  "Arera Colony, Bhopal",
		Price:     "1.5 Cr",
		Type:      model.PropertyTypeResidential,
		Beds:      4,
		Baths:     3,
		Area:      "2400 sqft",
		Image:     model.DefaultImageURL,
		Status:    model.StatusAvailable,
		City:      &city,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestSQLPropertyRepository_CreateAndFind(t *testing.T) {
	repo := NewSQLPropertyRepository(setupTestDB(t))
	ctx := context.Background()

	p := newTestProperty("Luxury Villa", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, p))
	assert.NotZero(t, p.ID)

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, p.Title, found.Title)
	assert.Equal(t, p.Beds, found.Beds)
	assert.Equal(t, p.Baths, found.Baths)
	assert.Equal(t, p.Area, found.Area)
	require.NotNil(t, found.City)
	assert.Equal(t, "bhopal", *found.City)
	assert.True(t, p.CreatedAt.Equal(found.CreatedAt), "created_at should round-trip")
}

func TestSQLPropertyRepository_FindByID_NotFound(t *testing.T) {
	repo := NewSQLPropertyRepository(setupTestDB(t))

	found, err := repo.FindByID(context.Background(), 999)
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestSQLPropertyRepository_FindAll_NewestFirst(t *testing.T) {
	repo := NewSQLPropertyRepository(setupTestDB(t))
	ctx := context.Background()

	base := time.Now().UTC()
	older := newTestProperty("Older", base.Add(-time.Hour))
	newer := newTestProperty("Newer", base)
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, older))

	list, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Newer", list[0].Title)
	assert.Equal(t, "Older", list[1].Title)
}

func TestSQLPropertyRepository_FindAll_Empty(t *testing.T) {
	repo := NewSQLPropertyRepository(setupTestDB(t))

	list, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestSQLPropertyRepository_Update(t *testing.T) {
	repo := NewSQLPropertyRepository(setupTestDB(t))
	ctx := context.Background()

	p := newTestProperty("Before", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, p))

	p.Title = "After"
	p.Status = model.StatusSold
	p.City = nil
	p.UpdatedAt = p.UpdatedAt.Add(time.Minute)
	require.NoError(t, repo.Update(ctx, p))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", found.Title)
	assert.Equal(t, model.StatusSold, found.Status)
	assert.Nil(t, found.City)
}

func TestSQLPropertyRepository_Update_NotFound(t *testing.T) {
	repo := NewSQLPropertyRepository(setupTestDB(t))

	p := newTestProperty("Ghost", time.Now().UTC())
	p.ID = 404
	assert.ErrorIs(t, repo.Update(context.Background(), p), ErrNotFound)
}

func TestSQLPropertyRepository_Create_RejectsBadEnum(t *testing.T) {
	repo := NewSQLPropertyRepository(setupTestDB(t))

	p := newTestProperty("Castle", time.Now().UTC())
	p.Type = "Castle"
	assert.Error(t, repo.Create(context.Background(), p))
}

func TestSQLPropertyRepository_DeleteAndCount(t *testing.T) {
	repo := NewSQLPropertyRepository(setupTestDB(t))
	ctx := context.Background()

	p := newTestProperty("Doomed", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, p))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), ErrNotFound)

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSQLUserRepository(t *testing.T) {
	repo := NewSQLUserRepository(setupTestDB(t))
	ctx := context.Background()

	user := &model.User{Username: "admin", PasswordHash: "hash", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)

	byName, err := repo.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, user.ID, byName.ID)
	assert.Equal(t, "hash", byName.PasswordHash)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "admin", byID.Username)

	missing, err := repo.FindByUsername(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	dup := &model.User{Username: "admin", PasswordHash: "other", CreatedAt: time.Now().UTC()}
	assert.Error(t, repo.Create(ctx, dup), "username must be unique")
}

func TestSQLSessionRepository(t *testing.T) {
	db := setupTestDB(t)
	users := NewSQLUserRepository(db)
	sessions := NewSQLSessionRepository(db)
	ctx := context.Background()

	user := &model.User{Username: "admin", PasswordHash: "hash", CreatedAt: time.Now().UTC()}
	require.NoError(t, users.Create(ctx, user))

	now := time.Now().UTC()
	active := &model.Session{ID: "active", UserID: user.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	expired := &model.Session{ID: "expired", UserID: user.ID, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, sessions.Create(ctx, active))
	require.NoError(t, sessions.Create(ctx, expired))

	found, err := sessions.FindActive(ctx, "active", now)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.UserID)

	found, err = sessions.FindActive(ctx, "expired", now)
	require.NoError(t, err)
	assert.Nil(t, found, "expired sessions must not be returned")

	n, err := sessions.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, sessions.Delete(ctx, "active"))
	found, err = sessions.FindActive(ctx, "active", now)
	require.NoError(t, err)
	assert.Nil(t, found)
}
