package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newAuthService() *AuthService {
	return NewAuthService(newMockUserStore(), newTestLogger(), "test-secret", 24*time.Hour)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Name:     "Dana",
		Email:    "dana@example.com",
		Password: "supersecret",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Password == "supersecret" {
		t.Error("password must be stored hashed")
	}

	token, loggedIn, err := svc.Login(ctx, "dana@example.com", "supersecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("expected user %d, got %d", user.ID, loggedIn.ID)
	}

	userID, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if userID != user.ID {
		t.Errorf("expected subject %d, got %d", user.ID, userID)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	in := RegisterInput{Name: "Dana", Email: "dana@example.com", Password: "supersecret"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Register(ctx, in)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields["email"]; !ok {
		t.Errorf("expected email error, got %v", verr.Fields)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Name: "Dana", Email: "dana@example.com", Password: "supersecret"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "dana@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "supersecret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuthService_ParseToken_Invalid(t *testing.T) {
	svc := newAuthService()

	if _, err := svc.ParseToken("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}

	// 其他密钥签发的 token 必须被拒绝
	other := NewAuthService(newMockUserStore(), newTestLogger(), "other-secret", time.Hour)
	token, err := other.issueToken(1)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := svc.ParseToken(token); err == nil {
		t.Error("expected error for token signed with different secret")
	}
}
