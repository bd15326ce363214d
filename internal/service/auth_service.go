package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"task-manager/internal/apperr"
	"task-manager/internal/auth"
	"task-manager/internal/model"
	"task-manager/internal/repository"
	"task-manager/internal/validation"
)

// dummyDigest is compared against when the username does not exist so
// login cost does not reveal whether the account is real.
const dummyDigest = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// TokenPair is the access+refresh pair issued on login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService implements registration, login and the token-based
// authorization context for requests.
type AuthService struct {
	db     *gorm.DB
	users  *repository.UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(db *gorm.DB, users *repository.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{db: db, users: users, tokens: tokens}
}

// Register validates input, rejects duplicate username/email and
// persists the new account with a hashed password. The unique indexes
// back the pre-checks, so two racing registrations cannot both commit.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	reg, err := validation.ValidateRegistration(username, email, password)
	if err != nil {
		return nil, err
	}

	digest, err := auth.HashPassword(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user := model.User{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: digest,
		IsActive:     true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		if _, err := users.FindByUsername(ctx, reg.Username); err == nil {
			return apperr.Conflict("this username is already taken")
		} else if !repository.IsNotFound(err) {
			return fmt.Errorf("check username: %w", err)
		}

		if _, err := users.FindByEmail(ctx, reg.Email); err == nil {
			return apperr.Conflict("this email address is already registered")
		} else if !repository.IsNotFound(err) {
			return fmt.Errorf("check email: %w", err)
		}

		if err := users.Create(ctx, &user); err != nil {
			if repository.IsDuplicate(err) {
				return apperr.Conflict("username or email is already registered")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Login authenticates by username and password and issues a token pair.
// A missing user and a wrong password are indistinguishable to the
// caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, TokenPair, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if repository.IsNotFound(err) {
			// Burn a comparison anyway to keep the cost flat.
			auth.CheckPassword(password, dummyDigest)
			return nil, TokenPair{}, apperr.Auth("username or password is not correct")
		}
		return nil, TokenPair{}, fmt.Errorf("login: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, TokenPair{}, apperr.Auth("username or password is not correct")
	}

	if !user.IsActive {
		return nil, TokenPair{}, apperr.Auth("account is disabled")
	}

	access, err := s.tokens.IssueAccess(user.ID)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	return user, TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a still-valid refresh token for a new access token.
// The password is not re-checked, but the account must still be active.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.tokens.Verify(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return "", err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", apperr.Auth("user not found or disabled")
		}
		return "", fmt.Errorf("refresh: %w", err)
	}
	if !user.IsActive {
		return "", apperr.Auth("user not found or disabled")
	}

	access, err := s.tokens.IssueAccess(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return access, nil
}

// Authenticate resolves a bearer access token to its user. This is the
// only path by which handlers obtain a caller identity; inactive users
// are rejected even with an otherwise valid token.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*model.User, error) {
	userID, err := s.tokens.Verify(accessToken, auth.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.Auth("user not found or disabled")
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if !user.IsActive {
		return nil, apperr.Auth("user not found or disabled")
	}
	return user, nil
}

// GetUser loads a user by id for the /me endpoint.
func (s *AuthService) GetUser(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
