package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/setlist/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	t.Run("Round Trip", func(t *testing.T) {
		for _, password := range []string{"secret", "correct horse battery staple", "pässwörd", strings.Repeat("x", MaxPasswordLength)} {
			hash, err := hasher.Hash(password)
			if err != nil {
				t.Fatalf("Hash(%q) error = %v", password, err)
			}
			if hash == password {
				t.Fatal("hash must not equal the plaintext")
			}
			if !hasher.Verify(password, hash) {
				t.Errorf("Verify(%q, Hash(%q)) = false", password, password)
			}
		}
	})

	t.Run("Wrong Password", func(t *testing.T) {
		hash, err := hasher.Hash("secret")
		if err != nil {
			t.Fatalf("Hash() error = %v", err)
		}
		if hasher.Verify("Secret", hash) {
			t.Error("Verify() accepted a different password")
		}
	})

	t.Run("Salted", func(t *testing.T) {
		a, _ := hasher.Hash("secret")
		b, _ := hasher.Hash("secret")
		if a == b {
			t.Error("expected two hashes of the same password to differ")
		}
	})

	t.Run("Malformed Hash", func(t *testing.T) {
		for _, hash := range []string{"", "not-a-hash", "$2a$04$short"} {
			if hasher.Verify("secret", hash) {
				t.Errorf("Verify() with malformed hash %q = true", hash)
			}
		}
	})

	t.Run("Invalid Input", func(t *testing.T) {
		tc := []struct {
			name     string
			password string
		}{
			{name: "empty", password: ""},
			{name: "too long", password: strings.Repeat("x", MaxPasswordLength+1)},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := hasher.Hash(tt.password); !errors.Is(err, shared.ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
			})
		}
	})

	t.Run("Cost", func(t *testing.T) {
		if got := NewHasher(0).Cost(); got != bcrypt.DefaultCost {
			t.Errorf("expected default cost for 0, got %d", got)
		}
		if got := NewHasher(bcrypt.MaxCost + 1).Cost(); got != bcrypt.DefaultCost {
			t.Errorf("expected default cost for out of range value, got %d", got)
		}

		hash, err := hasher.Hash("secret")
		if err != nil {
			t.Fatalf("Hash() error = %v", err)
		}
		if cost, _ := bcrypt.Cost([]byte(hash)); cost != bcrypt.MinCost {
			t.Errorf("expected hash cost %d, got %d", bcrypt.MinCost, cost)
		}
	})
}
