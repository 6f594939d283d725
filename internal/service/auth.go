package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eventhub/eventhub-go/internal/crypto"
	"github.com/eventhub/eventhub-go/internal/metrics"
	"github.com/eventhub/eventhub-go/internal/model"
	"github.com/eventhub/eventhub-go/internal/repository"
)

var (
	ErrRegistrationInput  = errors.New("name, email and pass are required")
	ErrPasswordTooLong    = errors.New("pass must be at most 72 bytes")
	ErrUserExists         = errors.New("user already exist")
	ErrUserNotFound       = errors.New("no user found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthService handles authentication business logic.
type AuthService struct {
	repo     *repository.UserRepository
	tokens   *crypto.TokenIssuer
	validate *validator.Validate
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *repository.UserRepository, tokens *crypto.TokenIssuer) *AuthService {
	return &AuthService{
		repo:     repo,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// Register creates a new user account and returns an auth token.
// A user with the same name or email is rejected with ErrUserExists.
func (s *AuthService) Register(ctx context.Context, req model.CreateUserRequest) (resp model.AuthResponse, err error) {
	defer func() { metrics.AuthAttempts.WithLabelValues("register", metrics.Result(err)).Inc() }()

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return model.AuthResponse{}, ErrRegistrationInput
	}
	if len(req.Password) > crypto.MaxPasswordBytes {
		return model.AuthResponse{}, ErrPasswordTooLong
	}

	_, err = s.repo.FindByNameOrEmail(ctx, req.Name, req.Email)
	switch {
	case err == nil:
		return model.AuthResponse{}, ErrUserExists
	case !errors.Is(err, repository.ErrUserNotFound):
		return model.AuthResponse{}, err
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return model.AuthResponse{}, ErrUserExists
		}
		return model.AuthResponse{}, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{Token: token, Message: "user registered"}, nil
}

// Login authenticates a user and returns an auth token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (resp model.AuthResponse, err error) {
	defer func() { metrics.AuthAttempts.WithLabelValues("login", metrics.Result(err)).Inc() }()

	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrUserNotFound
		}
		return model.AuthResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{Token: token, Message: "login successful"}, nil
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

	return model.UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}, nil
}
