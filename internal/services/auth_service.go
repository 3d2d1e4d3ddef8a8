package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fanpulse/internal/models"
	"fanpulse/internal/repositories"
	"fanpulse/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthServiceConfig holds token and password settings
type AuthServiceConfig struct {
	JWTSecret  string        `json:"-"`
	JWTExpiry  time.Duration `json:"jwt_expiry"`
	BCryptCost int           `json:"bcrypt_cost"`
}

// DefaultAuthServiceConfig returns production defaults
func DefaultAuthServiceConfig() *AuthServiceConfig {
	return &AuthServiceConfig{
		JWTExpiry:  24 * time.Hour,
		BCryptCost: bcrypt.DefaultCost,
	}
}

// authService implements AuthService
type authService struct {
	userRepo repositories.UserRepository
	config   *AuthServiceConfig
	logger   *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, config *AuthServiceConfig, logger *zap.Logger) AuthService {
	if config == nil {
		config = DefaultAuthServiceConfig()
	}
	return &authService{
		userRepo: userRepo,
		config:   config,
		logger:   logger,
	}
}

// Register creates a new supporter account
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid registration request", err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if existing, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		return nil, NewInternalError("failed to check existing account")
	} else if existing != nil {
		return nil, NewConflictError("an account with this email already exists", "EMAIL_TAKEN")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BCryptCost)
	if err != nil {
		return nil, NewInternalError("failed to hash password")
	}

	user := &models.User{
		Email:        email,
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: string(hash),
		Role:         models.RoleFan,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user", zap.String("email", email), zap.Error(err))
		return nil, NewInternalError("failed to create account")
	}

	s.logger.Info("account registered", zap.Int64("user_id", user.ID))
	return s.issueToken(user)
}

// Login authenticates by email and password
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid login request", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, NewInternalError("failed to load account")
	}
	if user == nil || !user.IsActive {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}

	return s.issueToken(user)
}

// LoginWithGoogle signs in (provisioning on first contact) a Google account
// whose email was verified by the OAuth callback.
func (s *authService) LoginWithGoogle(ctx context.Context, email, name string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, NewValidationError("google profile has no email", nil)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, NewInternalError("failed to load account")
	}
	if user == nil {
		user = &models.User{
			Email:    email,
			Username: usernameFromEmail(email, name),
			Role:     models.RoleFan,
			IsActive: true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			s.logger.Error("failed to provision google account", zap.String("email", email), zap.Error(err))
			return nil, NewInternalError("failed to create account")
		}
		s.logger.Info("account provisioned via google", zap.Int64("user_id", user.ID))
	}
	if !user.IsActive {
		return nil, NewForbiddenError("account is deactivated")
	}

	return s.issueToken(user)
}

// VerifyToken parses and validates a bearer token and loads its user
func (s *authService) VerifyToken(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, NewUnauthorizedError("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, NewUnauthorizedError("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return nil, NewUnauthorizedError("invalid token subject")
	}
	var userID int64
	if _, err := fmt.Sscanf(sub, "%d", &userID); err != nil {
		return nil, NewUnauthorizedError("invalid token subject")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load account")
	}
	if user == nil || !user.IsActive {
		return nil, NewUnauthorizedError("account unavailable")
	}
	return user, nil
}

// GetUser loads a user by id
func (s *authService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load account")
	}
	if user == nil {
		return nil, NewNotFoundError("user not found")
	}
	return user, nil
}

func (s *authService) issueToken(user *models.User) (*AuthResponse, error) {
	expiresAt := time.Now().Add(s.config.JWTExpiry)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", user.ID),
		"role": user.Role,
		"exp":  expiresAt.Unix(),
		"iat":  time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, NewInternalError("failed to sign token")
	}
	return &AuthResponse{Token: signed, ExpiresAt: expiresAt, User: user}, nil
}

// usernameFromEmail derives a display username for provisioned accounts
func usernameFromEmail(email, name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
