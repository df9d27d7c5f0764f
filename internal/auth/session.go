package auth

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// TokenVerifier decodes a bearer token into its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Resolver turns a bearer token into the stored user it was issued to.
type Resolver struct {
	tokens TokenVerifier
	users  models.UserStore
	logger *log.Logger
}

// NewResolver creates a Resolver. A nil logger discards failure reasons.
func NewResolver(tokens TokenVerifier, users models.UserStore, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{tokens: tokens, users: users, logger: logger}
}

// Resolve verifies token and loads its subject from the credential store.
//
// Every rejection, whether the token is malformed, expired, badly signed, or names a user that no
// longer exists, returns [shared.ErrUnauthorized]. The underlying reason is only logged.
// Store failures other than a missing user are returned wrapped as they are, so they surface as server faults.
func (r *Resolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		r.logger.Warn("rejected request", "reason", "missing token")
		return nil, shared.ErrUnauthorized
	}

	username, err := r.tokens.Verify(token)
	if err != nil {
		r.logger.Warn("rejected token", "reason", reason(err), "error", err)
		return nil, shared.ErrUnauthorized
	}

	user, err := r.users.GetByUsername(ctx, username)
	if errors.Is(err, shared.ErrNotFound) {
		r.logger.Warn("rejected token", "reason", "unknown subject", "subject", username)
		return nil, shared.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	return user, nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid signature"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	default:
		return "unknown"
	}
}
