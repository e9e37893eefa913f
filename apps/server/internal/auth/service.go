// Package auth issues and resolves player sessions. Identity lives entirely
// at the boundary: the game engine only ever sees resolved user IDs.
package auth

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Service is the identity contract consumed by the gateway and HTTP handlers.
type Service interface {
	Register(username, password string) (userID uint64, token string, err error)
	Login(username, password string) (userID uint64, token string, err error)
	ResolveSession(token string) (userID uint64, username string, ok bool)
	Logout(token string)
	Close() error
}

var (
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_.-]{2,31}$`)

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateUsername(username string) error {
	if !usernamePattern.MatchString(strings.TrimSpace(username)) {
		return ErrInvalidUsername
	}
	return nil
}

// bcrypt refuses inputs over 72 bytes, so cap here.
func validatePassword(password string) error {
	if len(password) < 6 || len(password) > 72 {
		return ErrInvalidPassword
	}
	return nil
}

// NewServiceFromEnv picks a backend from AUTH_MODE: "memory" (default) or
// "sqlite" (AUTH_SQLITE_PATH).
func NewServiceFromEnv() (Service, string, error) {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_MODE")))
	switch mode {
	case "", "memory", "mem":
		return NewManager(), "memory", nil
	case "local", "sqlite":
		s, err := NewSQLiteService(os.Getenv("AUTH_SQLITE_PATH"))
		if err != nil {
			return nil, "", err
		}
		return s, "sqlite", nil
	default:
		return nil, "", fmt.Errorf("invalid AUTH_MODE %q (supported: memory, sqlite)", mode)
	}
}
