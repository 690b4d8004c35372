package services

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"alfredoptarigan/ats-resume-analyzer/internal/repositories"
)

func newTestAuth() AuthService {
	return NewAuthService(repositories.NewMemoryUserRepository(), bcrypt.MinCost)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	auth := newTestAuth()
	ctx := context.Background()

	user, err := auth.Register(ctx, " alice ", "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == 0 || user.Username != "alice" {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.PasswordHash == "secret123" || user.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}

	got, err := auth.Authenticate(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, got.ID)
	}

	found, err := auth.FindUser(ctx, user.ID)
	if err != nil || found.Email != "alice@example.com" {
		t.Fatalf("FindUser: %+v %v", found, err)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	auth := newTestAuth()
	ctx := context.Background()
	if _, err := auth.Register(ctx, "alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := auth.Authenticate(ctx, "alice", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := auth.Authenticate(ctx, "bob", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		want     error
	}{
		{"short username", "al", "al@example.com", "secret123", ErrInvalidUsername},
		{"bad email", "alice", "not-an-email", "secret123", ErrInvalidEmail},
		{"display name email", "alice", "Alice <alice@example.com>", "secret123", ErrInvalidEmail},
		{"weak password", "alice", "alice@example.com", "12345", ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := newTestAuth().Register(context.Background(), tt.username, tt.email, tt.password); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	auth := newTestAuth()
	ctx := context.Background()
	if _, err := auth.Register(ctx, "alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := auth.Register(ctx, "alice", "other@example.com", "secret123"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists for username, got %v", err)
	}
	if _, err := auth.Register(ctx, "alice2", "alice@example.com", "secret123"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists for email, got %v", err)
	}
}
