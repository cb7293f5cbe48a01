package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"property_portal/internal/model"
	"property_portal/internal/repository"
	"property_portal/internal/utils"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// SessionDuration is how long a login stays valid
const SessionDuration = 7 * 24 * time.Hour

// AuthService provides authentication related services
type AuthService interface {
	Login(ctx context.Context, username, password string) (*model.User, string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*model.Session, error)
	EnsureAdmin(ctx context.Context, username, password string) (*model.User, error)
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	signer      *utils.SessionSigner
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, signer *utils.SessionSigner) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		signer:      signer,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// compareDummy spends the same bcrypt work as a real check so unknown
// usernames cannot be told apart by response time.
func compareDummy(password string) {
	dummyHashOnce.Do(func() {
		h, err := utils.HashPassword("not-a-real-password")
		if err != nil {
			log.Printf("Error preparing dummy password hash: %v", err)
			return
		}
		dummyHash = h
	})
	if dummyHash != "" {
		utils.CheckPasswordHash(password, dummyHash)
	}
}

// Login checks the credentials, opens a server-side session and returns the
// signed cookie value for it.
func (s *authService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by username: %w", err)
	}
	if user == nil {
		compareDummy(password)
		return nil, "", ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	now := s.now()
	session := &model.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionDuration),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.signer.Sign(session.ID, user.ID, session.ExpiresAt)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session: %w", err)
	}

	return user, token, nil
}

// Logout ends the session behind token. An unknown or tampered token is
// already logged out, so it is not an error.
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.signer.Verify(token)
	if err != nil {
		return nil
	}
	if err := s.sessionRepo.Delete(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Authenticate resolves a cookie value to a live session
func (s *authService) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	claims, err := s.signer.Verify(token)
	if err != nil {
		return nil, ErrInvalidSession
	}

	session, err := s.sessionRepo.FindActive(ctx, claims.SessionID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil || session.UserID != claims.UserID {
		return nil, ErrInvalidSession
	}
	return session, nil
}

// EnsureAdmin creates the admin account on first start. An existing account
// is left untouched.
func (s *authService) EnsureAdmin(ctx context.Context, username, password string) (*model.User, error) {
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing admin: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hashedPassword,
		CreatedAt:    s.now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}
	log.Printf("INFO: Admin user %q created", username)
	return user, nil
}

func (s *authService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessionRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return n, nil
}
