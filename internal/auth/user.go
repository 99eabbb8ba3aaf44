// internal/auth/user.go
//
// Identity provider for the game server.
// Responsibilities:
//   - User records and roles (player/admin).
//   - Registration and login against a UserStore (bcrypt password hashes).
//   - Username/password policy checks.
//   - JWT issue/parse (see token.go).
//
// The game engine never calls this package; transport resolves the player id
// here and hands it to the engine as-is.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Role distinguishes players from administrators.
type Role string

const (
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)

// ParseRole maps a stored role string to a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RolePlayer, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// CanPlay reports whether accounts with this role may start games.
func (r Role) CanPlay() bool { return r == RolePlayer }

// CanAdminister reports whether accounts with this role may read reports.
func (r Role) CanAdminister() bool { return r == RoleAdmin }

// User matches the users table shape.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidUsername    = errors.New("username must be at least 5 characters, start with a letter, include upper and lower case, and only use letters or numbers")
	ErrInvalidPassword    = errors.New("password must be at least 5 characters and include a letter, a number, and one of $ % * @")
)

// UserStore persists users. Lookups by username are exact.
type UserStore interface {
	CreateUser(ctx context.Context, u User) error
	FindUserByUsername(ctx context.Context, username string) (User, error)
	FindUserByID(ctx context.Context, id string) (User, error)
}

// Service registers and authenticates users.
type Service struct {
	users UserStore
	now   func() time.Time
}

// NewService builds a Service over users.
func NewService(users UserStore) *Service {
	return &Service{users: users, now: time.Now}
}

// Register validates the credentials, hashes the password and inserts a new user.
func (s *Service) Register(ctx context.Context, username, password string, role Role) (User, error) {
	username = strings.TrimSpace(username)
	if !ValidUsername(username) {
		return User{}, ErrInvalidUsername
	}
	if !ValidPassword(password) {
		return User{}, ErrInvalidPassword
	}
	if _, err := ParseRole(string(role)); err != nil {
		role = RolePlayer
	}
	h, err := HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: h,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return User{}, err
	}
	log.Info().Str("user", u.ID).Str("role", string(role)).Msg("user registered")
	return u, nil
}

// Login checks username/password and returns the user.
// Unknown users and wrong passwords are both ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (User, error) {
	u, err := s.users.FindUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrUserNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Lookup returns the user with id.
func (s *Service) Lookup(ctx context.Context, id string) (User, error) {
	return s.users.FindUserByID(ctx, id)
}
