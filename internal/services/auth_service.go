package services

import (
	"errors"
	"fmt"

	"github.com/torisawa/task-assignment-api/internal/models"
	"github.com/torisawa/task-assignment-api/internal/repository"
	"github.com/torisawa/task-assignment-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUserNotFound        = errors.New("user not found")
	ErrConsoleAccessDenied = errors.New("invalid credentials or insufficient permissions")
)

// TokenPair holds a freshly issued access/refresh credential pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *utils.TokenManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *utils.TokenManager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and issues an access/refresh token pair.
// Unknown usernames and wrong passwords produce the same error.
func (s *AuthService) Login(input LoginInput) (*models.User, *TokenPair, error) {
	user, err := s.verifyCredentials(input)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// ConsoleLogin verifies credentials for the admin console.
// Regular users are rejected with the same error as bad credentials.
func (s *AuthService) ConsoleLogin(input LoginInput) (*models.User, error) {
	user, err := s.verifyCredentials(input)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, ErrConsoleAccessDenied
		}
		return nil, err
	}

	if !user.IsAdmin() && !user.IsSuperadmin() {
		return nil, ErrConsoleAccessDenied
	}

	return user, nil
}

// Refresh validates a refresh token and issues a new access token.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	userID, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	// The user may have been deleted since the token was issued
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	accessToken, err := s.tokens.GenerateAccessToken(userID)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}

	return accessToken, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

func (s *AuthService) verifyCredentials(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *AuthService) issueTokens(userID uint64) (*TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
