// Package auth implements password hashing, bearer token issuance and the session gate
// that protects catalog writes.
//
// # Passwords
//
// [Hasher] wraps bcrypt with a configurable cost. Verification never fails loudly: a mismatched
// password and a corrupt stored hash both report false.
//
// # Tokens
//
// [TokenIssuer] mints HS256 JWTs carrying the username as the subject claim and an absolute expiry.
// [TokenIssuer.Verify] distinguishes [ErrInvalidSignature], [ErrExpired] and [ErrMalformed] so the
// reason can be logged.
//
// # Sessions
//
// [Resolver] composes token verification with a credential store lookup. It is the only
// authorization gate, and it collapses every failure into [shared.ErrUnauthorized] so callers
// cannot tell which check rejected the token.
//
// # Accounts
//
// [Accounts] drives signup and login on top of the three pieces above.
package auth
