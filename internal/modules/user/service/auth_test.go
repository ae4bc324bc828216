package user

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"reelmate/internal/modules/user/dto"
	"reelmate/pkg/apperror"
)

func newAuth(repo *fakeUserRepository, index *fakeIndex) AuthService {
	return NewAuthService(repo, index, "test-secret", time.Hour, quietLogger())
}

func TestAuthService_RegisterLoginAuthenticate(t *testing.T) {
	repo := newFakeUserRepository()
	index := &fakeIndex{}
	svc := newAuth(repo, index)
	ctx := context.Background()

	reg, err := svc.Register(ctx, dto.RegisterInput{Email: "Neo@Example.com", Password: "password123", Username: "neo"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if reg.AccessToken == "" || reg.TokenType != "Bearer" {
		t.Errorf("unexpected auth response: %+v", reg)
	}
	if len(index.indexed) != 1 {
		t.Errorf("new user not indexed")
	}

	login, err := svc.Login(ctx, dto.LoginInput{Email: "neo@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	userID, session, err := svc.Authenticate(ctx, login.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if userID != reg.User.ID || session == "" {
		t.Errorf("userID=%s session=%q", userID, session)
	}

	if err := svc.Logout(ctx, session); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, _, err := svc.Authenticate(ctx, login.AccessToken); apperror.MapErrorToStatus(err) != http.StatusUnauthorized {
		t.Errorf("token still valid after logout: %v", err)
	}

	// The registration session is independent of the logged out one.
	if _, _, err := svc.Authenticate(ctx, reg.AccessToken); err != nil {
		t.Errorf("registration token rejected: %v", err)
	}
}

func TestAuthService_Register_Duplicates(t *testing.T) {
	repo := newFakeUserRepository()
	svc := newAuth(repo, &fakeIndex{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, dto.RegisterInput{Email: "a@example.com", Password: "password123", Username: "alice"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, err := svc.Register(ctx, dto.RegisterInput{Email: "a@example.com", Password: "password123", Username: "other"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate email: err = %v", err)
	}

	_, err = svc.Register(ctx, dto.RegisterInput{Email: "b@example.com", Password: "password123", Username: "alice"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate username: err = %v", err)
	}
}

func TestAuthService_Register_InvalidUsername(t *testing.T) {
	svc := newAuth(newFakeUserRepository(), &fakeIndex{})

	_, err := svc.Register(context.Background(), dto.RegisterInput{Email: "a@example.com", Password: "password123", Username: "bad name"})
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newFakeUserRepository()
	svc := newAuth(repo, &fakeIndex{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, dto.RegisterInput{Email: "a@example.com", Password: "password123", Username: "alice"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	for _, input := range []dto.LoginInput{
		{Email: "a@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "password123"},
	} {
		_, err := svc.Login(ctx, input)
		if apperror.MapErrorToStatus(err) != http.StatusUnauthorized {
			t.Errorf("%s: err = %v, want 401", input.Email, err)
		}
	}
}

func TestAuthService_Authenticate_RejectsForeignSecret(t *testing.T) {
	repo := newFakeUserRepository()
	ctx := context.Background()

	other := NewAuthService(repo, &fakeIndex{}, "other-secret", time.Hour, quietLogger())
	res, err := other.Register(ctx, dto.RegisterInput{Email: "a@example.com", Password: "password123", Username: "alice"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if _, _, err := newAuth(repo, &fakeIndex{}).Authenticate(ctx, res.AccessToken); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}
