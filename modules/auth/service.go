package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"net/url"
	"strings"
	"time"

	domain "github.com/creativity-code/planora/domain/user"
)

var (
	// ErrInvalidCredentials is returned when login credentials are invalid.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidEmail is returned when email format is invalid.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrWeakPassword is returned when password is too weak.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrPasswordTooLong is returned when password exceeds bcrypt's 72-byte limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
	// ErrEmailNotVerified is returned when a user logs in before confirming
	// the emailed verification code.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrInvalidPictureURL is returned when a profile picture URL is malformed
	// or does not point to an image.
	ErrInvalidPictureURL = errors.New("invalid profile picture url")
)

// imageExtensions are the accepted profile picture file types.
var imageExtensions = []string{".jpeg", ".jpg", ".png", ".gif"}

// AuthService handles account business logic: registration with email
// verification, login, password reset, and profile updates.
type AuthService struct {
	repo    *UserRepository
	hasher  *PasswordHasher
	jwt     *JWTManager
	mailer  Mailer
	newCode func() string
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *UserRepository, hasher *PasswordHasher, jwt *JWTManager, mailer Mailer) *AuthService {
	return &AuthService{
		repo:    repo,
		hasher:  hasher,
		jwt:     jwt,
		mailer:  mailer,
		newCode: GenerateCode,
	}
}

// Register creates an unverified account and emails a verification code.
func (s *AuthService) Register(_ context.Context, name, username, email, password, accountType string) (*domain.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidCredentials)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(username, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         "User",
		AccountType:  accountType,
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	code := s.newCode()
	if err := s.repo.CreateVerificationCode(user.ID, code); err != nil {
		return nil, fmt.Errorf("failed to store verification code: %w", err)
	}

	// Mail delivery is best-effort: the account exists either way and the
	// code is still in the store.
	body := fmt.Sprintf("Your verification code is: %s", code)
	if err := s.mailer.Send(email, "Planora Email Verification", body); err != nil {
		log.Printf("[auth] Failed to send verification email to %s: %v", email, err)
	}

	return user, nil
}

// VerifyEmail confirms a verification code and marks the account verified.
func (s *AuthService) VerifyEmail(_ context.Context, userID uint, code string) error {
	if err := s.repo.ConsumeVerificationCode(userID, code); err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return ErrCodeNotFound
		}
		return fmt.Errorf("failed to verify code: %w", err)
	}
	if err := s.repo.MarkVerified(userID); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	return nil
}

// Login authenticates a user by username and returns tokens. Unverified
// accounts cannot log in.
func (s *AuthService) Login(_ context.Context, username, password string) (*domain.User, *TokenPair, error) {
	user, err := s.repo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.Verified {
		return nil, nil, ErrEmailNotVerified
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// RefreshTokens generates new access and refresh tokens.
func (s *AuthService) RefreshTokens(_ context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	user, err := s.repo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return s.generateTokenPair(user)
}

// ValidateToken validates an access token and returns claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*domain.Claims, error) {
	claims, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	return &domain.Claims{
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
	}, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(_ context.Context, userID uint) (*domain.User, error) {
	return s.repo.FindByID(userID)
}

// RequestPasswordReset emails a reset token to an existing account.
func (s *AuthService) RequestPasswordReset(_ context.Context, email string) (uint, error) {
	user, err := s.repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to find user: %w", err)
	}

	token := s.newCode()
	if err := s.repo.CreateResetToken(user.ID, token); err != nil {
		return 0, fmt.Errorf("failed to store reset token: %w", err)
	}

	body := fmt.Sprintf("Your password reset code is: %s", token)
	if err := s.mailer.Send(email, "Planora Password Reset", body); err != nil {
		log.Printf("[auth] Failed to send reset email to %s: %v", email, err)
	}

	return user.ID, nil
}

// ResetPassword consumes a reset token and replaces the account password.
func (s *AuthService) ResetPassword(_ context.Context, userID uint, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if err := s.repo.ConsumeResetToken(userID, token); err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return ErrCodeNotFound
		}
		return fmt.Errorf("failed to check reset token: %w", err)
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// UpdateProfile replaces a user's display name and username and returns the
// updated account.
func (s *AuthService) UpdateProfile(_ context.Context, userID uint, name, username string) (*domain.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidCredentials)
	}
	if err := s.repo.UpdateProfile(userID, name, username); err != nil {
		return nil, err
	}
	return s.repo.FindByID(userID)
}

// SetProfilePicture validates and stores a profile picture URL.
func (s *AuthService) SetProfilePicture(_ context.Context, userID uint, pictureURL string) (*domain.User, error) {
	if strings.TrimSpace(pictureURL) == "" {
		return nil, ErrInvalidPictureURL
	}
	parsed, err := url.ParseRequestURI(pictureURL)
	if err != nil || parsed.Host == "" {
		return nil, ErrInvalidPictureURL
	}

	lower := strings.ToLower(parsed.Path)
	valid := false
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, ErrInvalidPictureURL
	}

	if err := s.repo.SetProfilePicture(userID, pictureURL); err != nil {
		return nil, fmt.Errorf("failed to set profile picture: %w", err)
	}
	return s.repo.FindByID(userID)
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	if len(password) > 72 {
		return ErrPasswordTooLong
	}
	return nil
}

// generateTokenPair generates both access and refresh tokens.
func (s *AuthService) generateTokenPair(user *domain.User) (*TokenPair, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.jwt.AccessTokenDuration(),
		TokenType:    "Bearer",
	}, nil
}
