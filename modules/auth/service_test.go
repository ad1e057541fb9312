package auth

import (
	"context"
	"errors"
	"testing"

	domain "github.com/example/task-planner/domain/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestService wires an AuthService to an in-memory database with
// a low bcrypt cost so tests stay fast.
func setupTestService(t *testing.T) *AuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return NewAuthService(
		NewUserRepository(db),
		&PasswordHasher{cost: 4},
		NewJWTManager(testJWTConfig()),
	)
}

func TestAuthService_Register(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	t.Run("valid registration", func(t *testing.T) {
		user, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if user.ID == "" {
			t.Error("expected generated user ID")
		}
		if user.Username != "alice" {
			t.Errorf("expected username %q, got %q", "alice", user.Username)
		}
		if user.PasswordHash == "password123" {
			t.Error("password stored in plaintext")
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, "alice2", "alice@example.com", "password123")
		if !errors.Is(err, ErrEmailTaken) {
			t.Errorf("expected ErrEmailTaken, got %v", err)
		}
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, "alice", "other@example.com", "password123")
		if !errors.Is(err, ErrUsernameTaken) {
			t.Errorf("expected ErrUsernameTaken, got %v", err)
		}
	})

	t.Run("field validation", func(t *testing.T) {
		tests := []struct {
			name     string
			username string
			email    string
			password string
			wantErr  error
		}{
			{name: "empty username", username: "", email: "a@example.com", password: "password123", wantErr: ErrInvalidUsername},
			{name: "overlong username", username: string(make([]byte, 51)), email: "a@example.com", password: "password123", wantErr: ErrInvalidUsername},
			{name: "bad email", username: "bob", email: "not-an-email", password: "password123", wantErr: ErrInvalidEmail},
			{name: "short password", username: "bob", email: "bob@example.com", password: "short", wantErr: ErrWeakPassword},
			{name: "overlong password", username: "bob", email: "bob@example.com", password: string(make([]byte, 73)), wantErr: ErrPasswordTooLong},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.Register(ctx, tt.username, tt.email, tt.password)
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
				}
			})
		}
	})
}

func TestAuthService_Login(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "carol", "carol@example.com", "password123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		pair, err := svc.Login(ctx, "carol@example.com", "password123")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if pair.AccessToken == "" || pair.RefreshToken == "" {
			t.Error("expected both tokens to be set")
		}
		if pair.TokenType != "Bearer" {
			t.Errorf("expected token type Bearer, got %q", pair.TokenType)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "carol@example.com", "wrong-password")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "password123")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_RefreshTokens(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dave", "dave@example.com", "password123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	pair, err := svc.Login(ctx, "dave@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	t.Run("valid refresh token", func(t *testing.T) {
		next, err := svc.RefreshTokens(ctx, pair.RefreshToken)
		if err != nil {
			t.Fatalf("RefreshTokens() error = %v", err)
		}
		if next.AccessToken == "" || next.RefreshToken == "" {
			t.Error("expected a fresh token pair")
		}
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		if _, err := svc.RefreshTokens(ctx, pair.AccessToken); err == nil {
			t.Error("expected error when refreshing with an access token")
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := svc.RefreshTokens(ctx, "garbage"); err == nil {
			t.Error("expected error for garbage refresh token")
		}
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "erin", "erin@example.com", "password123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	pair, err := svc.Login(ctx, "erin@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	claims, err := svc.ValidateToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("claims.UserID = %v, want %v", claims.UserID, user.ID)
	}
	if claims.Username != "erin" {
		t.Errorf("claims.Username = %v, want %v", claims.Username, "erin")
	}
}
