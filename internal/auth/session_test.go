package auth

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/shared"
	tu "github.com/desertthunder/setlist/internal/testing"
)

// failingUsers is a [models.UserStore] whose lookups fail with err.
type failingUsers struct {
	err error
}

func (f *failingUsers) Create(context.Context, *models.User) error { return f.err }
func (f *failingUsers) Get(context.Context, string) (*models.User, error) {
	return nil, f.err
}
func (f *failingUsers) GetByUsername(context.Context, string) (*models.User, error) {
	return nil, f.err
}

func TestResolver(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Resolver, *repositories.UserRepository, *TokenIssuer, *tu.Clock, *bytes.Buffer) {
		t.Helper()

		db := tu.MustOpenDatabase(t)
		users := repositories.NewUserRepository(db)
		clock := tu.NewClock(epoch)
		issuer := newTestIssuer(t, clock)

		var buf bytes.Buffer
		logger := log.New(&buf)

		if err := users.Create(ctx, models.NewUser("alice", "$2a$04$hash")); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		return NewResolver(issuer, users, logger), users, issuer, clock, &buf
	}

	t.Run("Valid Token", func(t *testing.T) {
		resolver, _, issuer, _, _ := setup(t)

		token, _, err := issuer.Issue("alice", time.Minute)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		user, err := resolver.Resolve(ctx, token)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if user.Username() != "alice" {
			t.Errorf("expected alice, got %s", user.Username())
		}
	})

	t.Run("Rejections Collapse To Unauthorized", func(t *testing.T) {
		resolver, _, issuer, clock, buf := setup(t)

		expiring, _, err := issuer.Issue("alice", time.Minute)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		ghost, _, err := issuer.Issue("ghost", time.Minute)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		other, err := NewTokenIssuer(shared.AuthConfig{SecretKey: "another-key"}, WithClock(clock.Now))
		if err != nil {
			t.Fatalf("NewTokenIssuer() error = %v", err)
		}
		forged, _, err := other.Issue("alice", time.Minute)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		tc := []struct {
			name    string
			token   string
			advance time.Duration
			reason  string
		}{
			{name: "missing", token: "", reason: "missing token"},
			{name: "garbage", token: "garbage", reason: "malformed"},
			{name: "forged", token: forged, reason: "invalid signature"},
			{name: "unknown subject", token: ghost, reason: "unknown subject"},
			{name: "expired", token: expiring, advance: time.Minute, reason: "expired"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				buf.Reset()
				clock.Advance(tt.advance)

				user, err := resolver.Resolve(ctx, tt.token)
				if !errors.Is(err, shared.ErrUnauthorized) {
					t.Fatalf("expected ErrUnauthorized, got %v", err)
				}
				if user != nil {
					t.Error("expected no user on rejection")
				}
				if !strings.Contains(buf.String(), tt.reason) {
					t.Errorf("expected log to mention %q, got %q", tt.reason, buf.String())
				}
			})
		}
	})

	t.Run("Deleted User", func(t *testing.T) {
		resolver, users, issuer, _, _ := setup(t)

		token, _, err := issuer.Issue("alice", time.Hour)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		alice, err := users.GetByUsername(ctx, "alice")
		if err != nil {
			t.Fatalf("GetByUsername() error = %v", err)
		}
		if err := users.Delete(ctx, alice.ID()); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		if _, err := resolver.Resolve(ctx, token); !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized for deleted user, got %v", err)
		}
	})

	t.Run("Store Failure", func(t *testing.T) {
		clock := tu.NewClock(epoch)
		issuer := newTestIssuer(t, clock)
		boom := errors.New("disk I/O error")
		resolver := NewResolver(issuer, &failingUsers{err: boom}, nil)

		token, _, err := issuer.Issue("alice", time.Minute)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		_, err = resolver.Resolve(ctx, token)
		if !errors.Is(err, boom) {
			t.Errorf("expected store error to propagate, got %v", err)
		}
		if errors.Is(err, shared.ErrUnauthorized) {
			t.Error("store failure must not be reported as unauthorized")
		}
	})
}
