package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/safestudy/safestudy-go/internal/crypto"
	"github.com/safestudy/safestudy-go/internal/model"
	"github.com/safestudy/safestudy-go/internal/repository"
	"github.com/safestudy/safestudy-go/internal/strength"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already taken")
	ErrWeakPassword       = errors.New("password is too weak")
	ErrUserNotFound       = errors.New("user not found")
)

// WeakPasswordError is returned by Register when the analyzer rates the
// account password weak. It matches ErrWeakPassword.
type WeakPasswordError struct {
	Report strength.Report
}

func (e *WeakPasswordError) Error() string { return ErrWeakPassword.Error() }

func (e *WeakPasswordError) Is(target error) bool { return target == ErrWeakPassword }

// AuthService handles authentication business logic.
type AuthService struct {
	repo       userStore
	jwtSecret  string
	jwtExpiry  time.Duration
	hashParams crypto.HashParams
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo userStore, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		repo:       repo,
		jwtSecret:  secret,
		jwtExpiry:  expiry,
		hashParams: crypto.DefaultHashParams(),
	}
}

// Register creates a new user account and returns an auth token.
func (s *AuthService) Register(ctx context.Context, req model.CreateUserRequest) (model.AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(req); err != nil {
		return model.AuthResponse{}, err
	}

	if report := strength.Analyze(req.Password); report.Rating == strength.Weak {
		return model.AuthResponse{}, &WeakPasswordError{Report: report}
	}

	hash, err := crypto.HashPasswordWithParams(req.Password, s.hashParams)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{
		Email:     req.Email,
		AuthHash:  hash,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, err
	}

	return s.issue(user)
}

// Login authenticates a user and returns an auth token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	if err := validateStruct(req); err != nil {
		return model.AuthResponse{}, err
	}

	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.AuthHash)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

// GetUser retrieves a user by ID and returns safe user data.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

// VerifyPassword reports whether candidate is the current password of the
// user. Used to gate revealing stored secrets.
func (s *AuthService) VerifyPassword(ctx context.Context, userID int64, candidate string) (bool, error) {
	if candidate == "" {
		return false, nil
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return crypto.VerifyPassword(candidate, user.AuthHash)
}

func (s *AuthService) issue(user *model.User) (model.AuthResponse, error) {
	token, err := crypto.GenerateToken(user.ID, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{Token: token, User: toUserResponse(user)}, nil
}

func toUserResponse(user *model.User) model.UserResponse {
	return model.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
