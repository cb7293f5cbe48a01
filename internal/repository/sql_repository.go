package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"property_portal/internal/model"

	"github.com/jmoiron/sqlx"
)

const propertyColumns = `id, title, location, price, type, beds, baths, area, image, status, city, created_at, updated_at`

type sqlPropertyRepository struct {
	db *sqlx.DB
}

// NewSQLPropertyRepository creates a PropertyRepository over a database/sql handle (SQLite by default)
func NewSQLPropertyRepository(db *sqlx.DB) PropertyRepository {
	return &sqlPropertyRepository{db: db}
}

// Create inserts a new property and fills in its generated ID
func (r *sqlPropertyRepository) Create(ctx context.Context, p *model.Property) error {
	query := r.db.Rebind(`INSERT INTO properties (title, location, price, type, beds, baths, area, image, status, city, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := r.db.QueryRowxContext(ctx, query,
		p.Title, p.Location, p.Price, p.Type, p.Beds, p.Baths, p.Area, p.Image, p.Status, p.City, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}
	return nil
}

// FindByID retrieves a property by its ID
func (r *sqlPropertyRepository) FindByID(ctx context.Context, id int) (*model.Property, error) {
	var p model.Property
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+propertyColumns+` FROM properties WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find property by ID: %w", err)
	}
	return &p, nil
}

// FindAll returns every property, newest first
func (r *sqlPropertyRepository) FindAll(ctx context.Context) ([]model.Property, error) {
	properties := []model.Property{}
	err := r.db.SelectContext(ctx, &properties, `SELECT `+propertyColumns+` FROM properties ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	return properties, nil
}

// Update replaces every mutable column of an existing property
func (r *sqlPropertyRepository) Update(ctx context.Context, p *model.Property) error {
	query := r.db.Rebind(`UPDATE properties
		SET title = ?, location = ?, price = ?, type = ?, beds = ?, baths = ?, area = ?, image = ?, status = ?, city = ?, updated_at = ?
		WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query,
		p.Title, p.Location, p.Price, p.Type, p.Beds, p.Baths, p.Area, p.Image, p.Status, p.City, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}
	return requireOneRow(res)
}

// Delete removes a property from the database
func (r *sqlPropertyRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM properties WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	return requireOneRow(res)
}

func (r *sqlPropertyRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM properties`); err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return count, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type sqlUserRepository struct {
	db *sqlx.DB
}

// NewSQLUserRepository creates a UserRepository over a database/sql handle
func NewSQLUserRepository(db *sqlx.DB) UserRepository {
	return &sqlUserRepository{db: db}
}

// Create inserts a new user into the database
func (r *sqlUserRepository) Create(ctx context.Context, user *model.User) error {
	query := r.db.Rebind(`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?) RETURNING id`)
	if err := r.db.QueryRowxContext(ctx, query, user.Username, user.PasswordHash, user.CreatedAt).Scan(&user.ID); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByUsername retrieves a user by username
func (r *sqlUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username)
}

// FindByID retrieves a user by their ID
func (r *sqlUserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	return r.findOne(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (r *sqlUserRepository) findOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var user model.User
	if err := r.db.GetContext(ctx, &user, r.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

type sqlSessionRepository struct {
	db *sqlx.DB
}

// NewSQLSessionRepository creates a SessionRepository over a database/sql handle
func NewSQLSessionRepository(db *sqlx.DB) SessionRepository {
	return &sqlSessionRepository{db: db}
}

func (r *sqlSessionRepository) Create(ctx context.Context, s *model.Session) error {
	query := r.db.Rebind(`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, s.ID, s.UserID, s.CreatedAt, s.ExpiresAt); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *sqlSessionRepository) FindActive(ctx context.Context, id string, now time.Time) (*model.Session, error) {
	var s model.Session
	query := r.db.Rebind(`SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = ? AND expires_at > ?`)
	if err := r.db.GetContext(ctx, &s, query, id, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &s, nil
}

func (r *sqlSessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *sqlSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE expires_at <= ?`), now)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up expired sessions: %w", err)
	}
	return res.RowsAffected()
}
