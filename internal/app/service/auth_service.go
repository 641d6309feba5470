package service

import (
	"context"
	"errors"
	"fmt"

	"auth_api/internal/app/validation"
	"auth_api/internal/common"
	"auth_api/internal/common/security"
	"auth_api/internal/domain/model"
	"auth_api/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type AuthService struct {
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	tokens   TokenIssuer
	log      logrus.FieldLogger

	enforcePolicyOnLogin bool
}

type Option func(*AuthService)

// WithLoginPasswordPolicy controls whether Login re-checks password strength
// before looking the user up. Enabled by default.
func WithLoginPasswordPolicy(enabled bool) Option {
	return func(s *AuthService) { s.enforcePolicyOnLogin = enabled }
}

func NewAuthService(userRepo repository.UserRepository, hasher security.PasswordHasher, tokens TokenIssuer, log logrus.FieldLogger, opts ...Option) *AuthService {
	s := &AuthService{
		userRepo:             userRepo,
		hasher:               hasher,
		tokens:               tokens,
		log:                  log,
		enforcePolicyOnLogin: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type RegisterRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a user after validating the request and checking that
// neither the email nor the username is taken. The returned user carries the
// password hash.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if req.Username == "" || req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, common.ErrMissingField
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	// Fast-path checks; the store's own uniqueness constraint decides races.
	if taken, err := s.exists(ctx, s.userRepo.FindByEmail, req.Email); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if taken {
		return nil, common.ErrDuplicateEmail
	}
	if taken, err := s.exists(ctx, s.userRepo.FindByUsername, req.Username); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if taken {
		return nil, common.ErrDuplicateUsername
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if _, ok := common.AsAuthError(err); ok {
			s.log.WithField("username", req.Username).Info("registration lost uniqueness race")
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Login verifies the credentials and returns a signed token for the user.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (string, error) {
	if req.Email == "" || req.Password == "" {
		return "", common.ErrMissingField
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return "", err
	}
	if s.enforcePolicyOnLogin {
		if err := validation.ValidatePassword(req.Password); err != nil {
			return "", err
		}
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrUserNotFound
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	ok, err := s.hasher.Verify(req.Password, user.Password)
	if err != nil {
		return "", fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.log.WithField("user_id", user.ID).Info("login rejected: wrong password")
		return "", common.ErrWrongPassword
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// ListUsers returns every stored user in creation order.
func (s *AuthService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *AuthService) exists(ctx context.Context, find func(context.Context, string) (*model.User, error), key string) (bool, error) {
	_, err := find(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	return false, err
}
