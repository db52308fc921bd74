package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/safestudy/safestudy-go/internal/crypto"
	"github.com/safestudy/safestudy-go/internal/model"
)

const strongPassword = "X9k$mP2vN&qR7w!"

func newTestAuthService() *AuthService {
	svc := NewAuthService(newFakeUserStore(), "test-secret", time.Hour)
	svc.hashParams = fastHashParams
	return svc
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  model.CreateUserRequest
	}{
		{"empty email", model.CreateUserRequest{Password: strongPassword}},
		{"bad email", model.CreateUserRequest{Email: "not-an-email", Password: strongPassword}},
		{"empty password", model.CreateUserRequest{Email: "test@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestAuthService().Register(context.Background(), tt.req)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	_, err := newTestAuthService().Register(context.Background(), model.CreateUserRequest{
		Email:    "test@example.com",
		Password: "password123",
	})

	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	var weak *WeakPasswordError
	if !errors.As(err, &weak) || len(weak.Report.Suggestions) == 0 {
		t.Errorf("expected WeakPasswordError with suggestions, got %#v", err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, model.CreateUserRequest{Email: " Student@Example.com ", Password: strongPassword})
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	if reg.User.Email != "student@example.com" {
		t.Errorf("email = %q, want normalised address", reg.User.Email)
	}
	claims, err := crypto.ValidateToken(reg.Token, "test-secret")
	if err != nil || claims.UserID != reg.User.ID {
		t.Fatalf("token invalid: claims=%v err=%v", claims, err)
	}

	if _, err := svc.Register(ctx, model.CreateUserRequest{Email: "student@example.com", Password: strongPassword}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate Register() error = %v, want ErrEmailTaken", err)
	}

	login, err := svc.Login(ctx, model.LoginRequest{Email: "STUDENT@example.com", Password: strongPassword})
	if err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}
	if login.User.ID != reg.User.ID {
		t.Errorf("Login() user = %d, want %d", login.User.ID, reg.User.ID)
	}

	if _, err := svc.Login(ctx, model.LoginRequest{Email: "student@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, model.LoginRequest{Email: "nobody@example.com", Password: strongPassword}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifyPassword(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, model.CreateUserRequest{Email: "a@example.com", Password: strongPassword})
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{"correct", strongPassword, true},
		{"wrong", "nope", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := svc.VerifyPassword(ctx, reg.User.ID, tt.candidate)
			if err != nil {
				t.Fatalf("VerifyPassword() unexpected error: %v", err)
			}
			if ok != tt.want {
				t.Errorf("VerifyPassword() = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestGetUser(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, model.CreateUserRequest{Email: "me@example.com", Password: strongPassword})
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	got, err := svc.GetUser(ctx, reg.User.ID)
	if err != nil || got.Email != "me@example.com" {
		t.Errorf("GetUser() = %+v, %v", got, err)
	}
	if _, err := svc.GetUser(ctx, 999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUser(missing) error = %v, want ErrUserNotFound", err)
	}
}
