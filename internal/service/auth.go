package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/alumni-connect/internal/apperrors"
	"github.com/iliyamo/alumni-connect/internal/metrics"
	"github.com/iliyamo/alumni-connect/internal/model"
	"github.com/iliyamo/alumni-connect/internal/repository"
	"github.com/iliyamo/alumni-connect/internal/utils"
	"github.com/iliyamo/alumni-connect/internal/validator"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,emailaddr"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=student alumni"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,emailaddr"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	User      model.UserSummary `json:"user"`
}

// AuthService issues tokens for new and returning users.
type AuthService struct {
	users      UserStore
	secret     string
	ttl        time.Duration
	bcryptCost int
	now        Clock
}

func NewAuthService(users UserStore, secret string, ttl time.Duration, bcryptCost int) *AuthService {
	return &AuthService{users: users, secret: secret, ttl: ttl, bcryptCost: bcryptCost, now: time.Now}
}

// Register creates the account and logs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (res *AuthResult, err error) {
	defer func() { metrics.AuthAttempts.WithLabelValues("register", metrics.Result(err == nil)).Inc() }()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if err := validator.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}
	if in.Role == "" {
		in.Role = model.RoleStudent
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return nil, apperrors.ErrValidation.WithMessage("Password must be at most 72 bytes").
			WithDetail("fields", map[string]string{"password": "max"})
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	u := &model.User{Name: in.Name, Email: in.Email, PasswordHash: hash, Role: in.Role}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, apperrors.Internal(err)
	}
	return s.issue(u)
}

// Login verifies credentials.  Unknown email and wrong password produce the
// same error so callers cannot probe for accounts.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (res *AuthResult, err error) {
	defer func() { metrics.AuthAttempts.WithLabelValues("login", metrics.Result(err == nil)).Inc() }()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validator.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Internal(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return s.issue(u)
}

// Me returns the caller's own account.
func (s *AuthService) Me(ctx context.Context, a Actor) (*model.User, error) {
	if a.ID == 0 {
		return nil, apperrors.ErrUnauthenticated
	}
	u, err := s.users.GetByID(ctx, a.ID)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return u, nil
}

func (s *AuthService) issue(u *model.User) (*AuthResult, error) {
	tok, err := utils.NewAccessToken(s.secret, u.ID, u.Role, s.ttl, s.now())
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &AuthResult{Token: tok.Token, ExpiresAt: tok.Exp, User: u.Summary()}, nil
}
