package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/setlist/internal/shared"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuerName is the iss claim of every token this service mints.
const TokenIssuerName = "setlist"

// TokenType is the token_type reported alongside issued access tokens.
const TokenType = "bearer"

var signingMethod = jwt.SigningMethodHS256

// TokenIssuer mints and verifies signed, time-limited bearer tokens.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// IssuerOption configures a [TokenIssuer].
type IssuerOption func(*TokenIssuer)

// WithClock replaces the time source used for issue time and expiry checks.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *TokenIssuer) { i.now = now }
}

// NewTokenIssuer builds an issuer from the auth configuration. The secret key is required.
func NewTokenIssuer(config shared.AuthConfig, opts ...IssuerOption) (*TokenIssuer, error) {
	if config.SecretKey == "" {
		return nil, fmt.Errorf("%w: secret key is required", shared.ErrInvalidConfig)
	}

	ttl, err := config.TTL()
	if err != nil {
		return nil, err
	}

	issuer := &TokenIssuer{
		key: []byte(config.SecretKey),
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(issuer)
	}
	return issuer, nil
}

// TTL returns the default token lifetime.
func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for subject that expires ttl from now. A non-positive ttl uses the default lifetime.
// It returns the token and its expiry.
func (i *TokenIssuer) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, fmt.Errorf("%w: token subject is required", shared.ErrInvalidInput)
	}
	if ttl <= 0 {
		ttl = i.ttl
	}

	now := i.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    TokenIssuerName,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(i.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, claims.ExpiresAt.Time, nil
}

// Verify checks the token's signature and expiry and returns its subject.
//
// Errors are [ErrInvalidSignature] for a bad signature or unexpected algorithm, [ErrExpired] once the
// expiry has been reached, and [ErrMalformed] for anything that cannot be parsed or lacks a subject.
func (i *TokenIssuer) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.key, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(TokenIssuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrMalformed)
	}

	return claims.Subject, nil
}
