package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"reelmate/internal/entity"
	search "reelmate/internal/modules/search/service"
	"reelmate/internal/modules/user/dto"
	"reelmate/internal/modules/user/repository"
	"reelmate/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

var errInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid credentials", apperror.ErrUnauthorized)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Logout(ctx context.Context, sessionToken string) error
	// Authenticate verifies an access token and its session and returns the user id and session token.
	Authenticate(ctx context.Context, token string) (uuid.UUID, string, error)
}

type authService struct {
	repo     repository.UserRepository
	index    search.UserSearchService
	secret   []byte
	tokenTTL time.Duration
	log      *logrus.Logger
}

func NewAuthService(repo repository.UserRepository, index search.UserSearchService, secret string, tokenTTL time.Duration, log *logrus.Logger) AuthService {
	return &authService{
		repo:     repo,
		index:    index,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		log:      log,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.TrimSpace(input.Username)
	if !usernamePattern.MatchString(username) {
		return nil, fmt.Errorf("username may only contain letters, digits and underscores: %w", apperror.ErrInvalidInput)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, apperror.New(http.StatusConflict, "email is already registered", apperror.ErrConflict)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, apperror.New(http.StatusConflict, "username is already taken", apperror.ErrConflict)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hashStr := string(hash)

	user := &entity.User{
		Email:    &email,
		Username: &username,
		Name:     input.Name,
	}
	account := &entity.Account{
		Type:              entity.ProviderCredentials,
		Provider:          entity.ProviderCredentials,
		ProviderAccountID: email,
		PasswordHash:      &hashStr,
	}
	if err := s.repo.CreateWithAccount(ctx, user, account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(http.StatusConflict, "email or username is already taken", apperror.ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.index.IndexUser(user); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to index new user")
	}

	return s.issue(ctx, user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	account, err := s.repo.FindAccount(ctx, user.ID, entity.ProviderCredentials)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if account.PasswordHash == nil {
		return nil, errInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	return s.issue(ctx, user)
}

func (s *authService) Logout(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return apperror.ErrUnauthorized
	}
	return s.repo.DeleteSession(ctx, sessionToken)
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (uuid.UUID, string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, "", apperror.New(http.StatusUnauthorized, "invalid or expired token", apperror.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.ID == "" {
		return uuid.Nil, "", apperror.New(http.StatusUnauthorized, "invalid token claims", apperror.ErrUnauthorized)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", apperror.New(http.StatusUnauthorized, "invalid token claims", apperror.ErrUnauthorized)
	}

	session, err := s.repo.FindSession(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			return uuid.Nil, "", apperror.New(http.StatusUnauthorized, "session expired", err)
		}
		return uuid.Nil, "", err
	}
	if session.UserID != userID {
		return uuid.Nil, "", apperror.New(http.StatusUnauthorized, "session does not match token", apperror.ErrUnauthorized)
	}

	return userID, claims.ID, nil
}

// issue creates a session row and a signed token carrying the session token as its ID.
func (s *authService) issue(ctx context.Context, user *entity.User) (*dto.AuthResponse, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)
	sessionToken := uuid.NewString()

	if err := s.repo.CreateSession(ctx, &entity.Session{
		SessionToken: sessionToken,
		UserID:       user.ID,
		Expires:      expiresAt,
	}); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	signed, err := s.signToken(user.ID, sessionToken, now, expiresAt)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt.Unix(),
		User:        dto.NewUserResponse(user),
	}, nil
}

func (s *authService) signToken(userID uuid.UUID, sessionToken string, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ID:        sessionToken,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
