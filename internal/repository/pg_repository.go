package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"property_portal/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of *pgxpool.Pool the Postgres repositories use.
// pgxmock's pool satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgPropertyRepository struct {
	db PgxPool
}

// NewPgPropertyRepository creates a PropertyRepository backed by PostgreSQL
func NewPgPropertyRepository(db PgxPool) PropertyRepository {
	return &pgPropertyRepository{db: db}
}

func scanProperty(row pgx.Row, p *model.Property) error {
	return row.Scan(
		&p.ID, &p.Title, &p.Location, &p.Price, &p.Type, &p.Beds, &p.Baths,
		&p.Area, &p.Image, &p.Status, &p.City, &p.CreatedAt, &p.UpdatedAt,
	)
}

// Create inserts a new property into the database
func (r *pgPropertyRepository) Create(ctx context.Context, p *model.Property) error {
	sql := `INSERT INTO properties (title, location, price, type, beds, baths, area, image, status, city, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	err := r.db.QueryRow(ctx, sql,
		p.Title, p.Location, p.Price, p.Type, p.Beds, p.Baths, p.Area, p.Image, p.Status, p.City, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}
	return nil
}

// FindByID retrieves a property by its ID
func (r *pgPropertyRepository) FindByID(ctx context.Context, id int) (*model.Property, error) {
	p := &model.Property{}
	sql := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	if err := scanProperty(r.db.QueryRow(ctx, sql, id), p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to find property by ID: %w", err)
	}
	return p, nil
}

// FindAll returns every property, newest first
func (r *pgPropertyRepository) FindAll(ctx context.Context) ([]model.Property, error) {
	rows, err := r.db.Query(ctx, `SELECT `+propertyColumns+` FROM properties ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	properties := []model.Property{}
	for rows.Next() {
		var p model.Property
		if err := scanProperty(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}
		properties = append(properties, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating property rows: %w", err)
	}
	return properties, nil
}

// Update replaces every mutable column of an existing property
func (r *pgPropertyRepository) Update(ctx context.Context, p *model.Property) error {
	sql := `UPDATE properties
            SET title = $1, location = $2, price = $3, type = $4, beds = $5, baths = $6, area = $7, image = $8, status = $9, city = $10, updated_at = $11
            WHERE id = $12`
	cmdTag, err := r.db.Exec(ctx, sql,
		p.Title, p.Location, p.Price, p.Type, p.Beds, p.Baths, p.Area, p.Image, p.Status, p.City, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a property from the database
func (r *pgPropertyRepository) Delete(ctx context.Context, id int) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgPropertyRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM properties`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return count, nil
}

type pgUserRepository struct {
	db PgxPool
}

// NewPgUserRepository creates a UserRepository backed by PostgreSQL
func NewPgUserRepository(db PgxPool) UserRepository {
	return &pgUserRepository{db: db}
}

// Create inserts a new user into the database
func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	sql := `INSERT INTO users (username, password_hash, created_at) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRow(ctx, sql, user.Username, user.PasswordHash, user.CreatedAt).Scan(&user.ID); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByUsername retrieves a user by username
func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`, username)
}

// FindByID retrieves a user by their ID
func (r *pgUserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	return r.findOne(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (r *pgUserRepository) findOne(ctx context.Context, sql string, arg any) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRow(ctx, sql, arg).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

type pgSessionRepository struct {
	db PgxPool
}

// NewPgSessionRepository creates a SessionRepository backed by PostgreSQL
func NewPgSessionRepository(db PgxPool) SessionRepository {
	return &pgSessionRepository{db: db}
}

func (r *pgSessionRepository) Create(ctx context.Context, s *model.Session) error {
	sql := `INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.Exec(ctx, sql, s.ID, s.UserID, s.CreatedAt, s.ExpiresAt); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *pgSessionRepository) FindActive(ctx context.Context, id string, now time.Time) (*model.Session, error) {
	s := &model.Session{}
	sql := `SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = $1 AND expires_at > $2`
	err := r.db.QueryRow(ctx, sql, id, now).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return s, nil
}

func (r *pgSessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *pgSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up expired sessions: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
