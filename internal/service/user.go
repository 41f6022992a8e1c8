package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/spendlog/spendlog/internal/auth"
	"github.com/spendlog/spendlog/internal/model"
	"github.com/spendlog/spendlog/internal/repository"
)

// Identity errors.
var (
	ErrMissingFields       = errors.New("all fields (username, email, password) are required")
	ErrMissingLoginFields  = errors.New("both username and password are required")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// UserStore persists accounts.
type UserStore interface {
	CreateUserWithProfile(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}

// TokenBlacklist remembers rotated refresh tokens until they expire.
// ClaimToken is atomic: for one jti, exactly one call returns true.
type TokenBlacklist interface {
	ClaimToken(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

// UserService handles registration, login and token refresh.
type UserService struct {
	store     UserStore
	tokens    *auth.Issuer
	blacklist TokenBlacklist
	logger    *slog.Logger
	now       func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, tokens *auth.Issuer, blacklist TokenBlacklist, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		store:     store,
		tokens:    tokens,
		blacklist: blacklist,
		logger:    logger,
		now:       time.Now,
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a standard account and its profile.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	return s.createUser(ctx, input, false)
}

// CreateAdmin creates an elevated account. Used by the createadmin command.
func (s *UserService) CreateAdmin(ctx context.Context, input RegisterInput) (*model.User, error) {
	return s.createUser(ctx, input, true)
}

func (s *UserService) createUser(ctx context.Context, input RegisterInput, staff bool) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsStaff:      staff,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUserWithProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.Bool("is_staff", staff),
	)
	return user, nil
}

// validateEmail accepts a bare address only, without a display name.
func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

// dummyHash is verified against when the username is unknown so both
// failure paths cost one argon2 derivation.
var dummyHash = sync.OnceValue(func() string {
	h, _ := auth.HashPassword("spendlog-dummy-password")
	return h
})

// Login checks credentials and issues a token pair.
// Unknown users and wrong passwords return the same error.
func (s *UserService) Login(ctx context.Context, username, password string) (auth.TokenPair, error) {
	if username == "" || password == "" {
		return auth.TokenPair{}, ErrMissingLoginFields
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_, _ = auth.VerifyPassword(password, dummyHash())
			return auth.TokenPair{}, ErrInvalidCredentials
		}
		return auth.TokenPair{}, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash is unreadable",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return auth.TokenPair{}, ErrInvalidCredentials
	}
	if !ok {
		return auth.TokenPair{}, ErrInvalidCredentials
	}

	if auth.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, password)
	}

	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return pair, nil
}

// rehash upgrades a credential hashed with old parameters. Failure only logs.
func (s *UserService) rehash(ctx context.Context, userID, password string) {
	hash, err := auth.HashPassword(password)
	if err == nil {
		err = s.store.UpdatePasswordHash(ctx, userID, hash)
	}
	if err != nil {
		s.logger.Warn("password rehash failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

// Refresh exchanges a refresh token for a new pair.
// The presented token is blacklisted for the rest of its lifetime.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	if refreshToken == "" {
		return auth.TokenPair{}, ErrInvalidRefreshToken
	}

	claims, err := s.tokens.Parse(refreshToken, auth.TokenRefresh)
	if err != nil {
		return auth.TokenPair{}, ErrInvalidRefreshToken
	}

	if _, err := s.store.GetUserByID(ctx, claims.Subject); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return auth.TokenPair{}, ErrInvalidRefreshToken
		}
		return auth.TokenPair{}, fmt.Errorf("failed to get user: %w", err)
	}

	claimed, err := s.blacklist.ClaimToken(ctx, claims.ID, s.tokens.RemainingTTL(claims))
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("failed to claim refresh token: %w", err)
	}
	if !claimed {
		s.logger.Warn("rotated refresh token reused", slog.String("user_id", claims.Subject))
		return auth.TokenPair{}, ErrInvalidRefreshToken
	}

	pair, err := s.tokens.Issue(claims.Subject)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return pair, nil
}

// ListUsers returns every account. Callers gate this to staff.
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
