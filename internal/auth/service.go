package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kurama07a/buyer-lead-app/internal/core"
	"github.com/Kurama07a/buyer-lead-app/internal/logging"
)

// Session is the result of a successful register or login.
type Session struct {
	User      core.Identity `json:"user"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// Service registers users and issues, verifies and revokes sessions.
type Service struct {
	users   UserStore
	tokens  *TokenManager
	revoker Revoker
	cost    int
}

// NewService wires the auth service. revoker may be nil, in which case
// logout only clears the client's cookie.
func NewService(users UserStore, tokens *TokenManager, revoker Revoker, bcryptCost int) *Service {
	return &Service{users: users, tokens: tokens, revoker: revoker, cost: bcryptCost}
}

// TokenTTL is the lifetime of issued session tokens.
func (s *Service) TokenTTL() time.Duration { return s.tokens.TTL() }

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a USER account and signs it in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, ErrMissingCredentials
	}
	if len(in.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	return s.createUser(ctx, email, in.Password, strings.TrimSpace(in.Name), core.RoleUser)
}

// EnsureUser returns the account for email, creating it with role if it
// does not exist. Used by the seeder.
func (s *Service) EnsureUser(ctx context.Context, email, password, name string, role core.Role) (core.Identity, error) {
	email = normalizeEmail(email)
	u, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return u.Identity(), nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return core.Identity{}, err
	}
	sess, err := s.createUser(ctx, email, password, name, role)
	if err != nil {
		return core.Identity{}, err
	}
	return sess.User, nil
}

func (s *Service) createUser(ctx context.Context, email, password, name string, role core.Role) (*Session, error) {
	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("user registered", "user_id", u.ID, "role", u.Role)
	return s.issue(u.Identity())
}

// Login verifies credentials and issues a session. Unknown emails and
// wrong passwords both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u.Identity())
}

func (s *Service) issue(id core.Identity) (*Session, error) {
	token, expires, err := s.tokens.Issue(id)
	if err != nil {
		return nil, err
	}
	return &Session{User: id, Token: token, ExpiresAt: expires}, nil
}

// Authenticate verifies token and returns the identity it carries.
func (s *Service) Authenticate(ctx context.Context, token string) (core.Identity, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return core.Identity{}, err
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, token)
		if err != nil {
			return core.Identity{}, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return core.Identity{}, ErrTokenRevoked
		}
	}
	return claims.Identity(), nil
}

// Logout revokes token for the rest of its lifetime. Invalid tokens are
// ignored since they cannot be used anyway.
func (s *Service) Logout(ctx context.Context, token string) error {
	if s.revoker == nil || token == "" {
		return nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revoker.Revoke(ctx, token, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
