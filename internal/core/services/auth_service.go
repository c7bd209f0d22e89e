package services

import (
	"context"
	"errors"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
	"github.com/taskboard/backend/internal/infrastructure/logger"
)

type AuthServiceConfig struct {
	Users  ports.UserRepository
	Hasher ports.PasswordHasher
	Tokens ports.TokenIssuer
	Logger *logger.Logger
}

type authService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	logger *logger.Logger
}

func NewAuthService(cfg AuthServiceConfig) ports.AuthService {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &authService{users: cfg.Users, hasher: cfg.Hasher, tokens: cfg.Tokens, logger: log}
}

// Signup always creates an employee account.
func (s *authService) Signup(ctx context.Context, input ports.UserInput) (*domain.User, error) {
	user, err := registerUser(ctx, s.users, s.hasher, input, domain.RoleEmployee)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("user_signed_up", "user_id", user.ID)
	return user, nil
}

// Login answers the same error for an unknown email and a wrong password.
func (s *authService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ports.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.logger.Infow("login_rejected", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	token, expires, err := s.tokens.Issue(domain.Caller{UserID: user.ID, Role: user.Role})
	if err != nil {
		return nil, err
	}
	return &ports.LoginResult{Token: token, ExpiresAt: expires, User: user}, nil
}
