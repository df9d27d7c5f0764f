package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// Session is the result of a successful login.
type Session struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	User        *models.User
}

// Accounts implements signup and login.
type Accounts struct {
	users  models.UserStore
	hasher *Hasher
	tokens *TokenIssuer
	logger *log.Logger

	// dummyHash is compared against when the username is unknown, so both login failures cost one bcrypt run.
	dummyHash string
}

// NewAccounts wires the credential store, hasher and token issuer together.
func NewAccounts(users models.UserStore, hasher *Hasher, tokens *TokenIssuer, logger *log.Logger) (*Accounts, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	dummy, err := hasher.Hash(shared.GenerateID())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare login hash: %w", err)
	}

	return &Accounts{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger,
		dummyHash: dummy,
	}, nil
}

// Signup hashes password and stores a new user.
//
// Returns [shared.ErrDuplicateUsername] if the name is taken and [shared.ErrInvalidInput] for an empty
// username or an unusable password.
func (a *Accounts) Signup(ctx context.Context, username, password string) (*models.User, error) {
	username = models.NormalizeUsername(username)
	if err := models.ValidateUsername(username); err != nil {
		return nil, err
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(username, hash)
	if err := a.users.Create(ctx, user); err != nil {
		return nil, err
	}

	a.logger.Info("user signed up", "user_id", user.ID(), "username", user.Username())
	return user, nil
}

// Login verifies the credentials and issues an access token with the default lifetime.
//
// The username is normalized as on signup. An unknown username and a wrong password both return
// [shared.ErrInvalidCredentials].
func (a *Accounts) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := a.users.GetByUsername(ctx, models.NormalizeUsername(username))
	switch {
	case errors.Is(err, shared.ErrNotFound):
		a.hasher.Verify(password, a.dummyHash)
		a.logger.Warn("login failed", "reason", "unknown username")
		return nil, shared.ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !a.hasher.Verify(password, user.PasswordHash()) {
		a.logger.Warn("login failed", "reason", "wrong password", "user_id", user.ID())
		return nil, shared.ErrInvalidCredentials
	}

	token, expiresAt, err := a.tokens.Issue(user.Username(), 0)
	if err != nil {
		return nil, err
	}

	a.logger.Info("user logged in", "user_id", user.ID())
	return &Session{
		AccessToken: token,
		TokenType:   TokenType,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}
