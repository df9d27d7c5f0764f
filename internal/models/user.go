package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/setlist/internal/shared"
)

// MaxUsernameLength bounds usernames in characters.
const MaxUsernameLength = 64

// User is an account: a unique username and the password hash used to verify it.
// Users are created on signup and never mutated afterwards.
type User struct {
	Record
	username     string
	passwordHash string
}

// NormalizeUsername trims surrounding whitespace. Every path that stores or looks up a username goes through it.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// ValidateUsername checks a normalized username is present and at most [MaxUsernameLength] characters.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", shared.ErrInvalidInput)
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return fmt.Errorf("%w: username must be at most %d characters", shared.ErrInvalidInput, MaxUsernameLength)
	}
	return nil
}

// NewUser creates a user with the given username and password hash.
func NewUser(username, passwordHash string) *User {
	return &User{
		Record:       newRecord(),
		username:     NormalizeUsername(username),
		passwordHash: passwordHash,
	}
}

func (u *User) Username() string     { return u.username }
func (u *User) PasswordHash() string { return u.passwordHash }

// Validate checks the username is present and reasonably sized and that a hash is set.
func (u *User) Validate() error {
	if err := ValidateUsername(u.username); err != nil {
		return err
	}
	if u.passwordHash == "" {
		return fmt.Errorf("%w: password hash is required", shared.ErrInvalidInput)
	}
	return nil
}
