package auth

import (
	"time"

	domain "github.com/creativity-code/planora/domain/user"
)

// TokenPair carries an issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// UserProfile is the public view of an account.
type UserProfile struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	AccountType    string    `json:"account_type"`
	Verified       bool      `json:"is_verified"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toProfile(user *domain.User) UserProfile {
	return UserProfile{
		ID:             user.ID,
		Name:           user.Name,
		Username:       user.Username,
		Email:          user.Email,
		Role:           user.Role,
		AccountType:    user.AccountType,
		Verified:       user.Verified,
		ProfilePicture: user.ProfilePicture,
		CreatedAt:      user.CreatedAt,
	}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name        string `json:"name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	AccountType string `json:"account_type"`
}

// RegisterResponse returns the created, still-unverified account.
type RegisterResponse struct {
	User UserProfile `json:"user"`
}

// VerifyEmailRequest confirms an emailed verification code.
type VerifyEmailRequest struct {
	UserID uint   `json:"user_id"`
	Code   string `json:"code"`
}

// VerifyEmailResponse reports the verification outcome.
type VerifyEmailResponse struct {
	Verified bool `json:"verified"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the authenticated account and its tokens.
type LoginResponse struct {
	User         UserProfile `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	TokenType    string      `json:"token_type"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse represents a token refresh response.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// ValidateTokenRequest represents a token validation request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse represents a token validation response.
type ValidateTokenResponse struct {
	Valid    bool   `json:"valid"`
	UserID   uint   `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Error    string `json:"error,omitempty"`
}

// GetUserRequest represents a get user request.
type GetUserRequest struct {
	UserID uint `json:"user_id"`
}

// GetUserResponse represents a get user response.
type GetUserResponse struct {
	User UserProfile `json:"user"`
}

// RequestResetRequest starts a password reset for an account email.
type RequestResetRequest struct {
	Email string `json:"email"`
}

// RequestResetResponse identifies the account the reset token was sent for.
type RequestResetResponse struct {
	UserID uint `json:"user_id"`
}

// ResetPasswordRequest consumes a reset token and sets a new password.
type ResetPasswordRequest struct {
	UserID      uint   `json:"user_id"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPasswordResponse reports the reset outcome.
type ResetPasswordResponse struct {
	Reset bool `json:"reset"`
}

// UpdateProfileRequest replaces a user's display name and username.
type UpdateProfileRequest struct {
	UserID   uint   `json:"user_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// UpdateProfileResponse returns the updated account.
type UpdateProfileResponse struct {
	User UserProfile `json:"user"`
}

// SetPictureRequest stores a profile picture URL.
type SetPictureRequest struct {
	UserID     uint   `json:"user_id"`
	PictureURL string `json:"picture_url"`
}

// SetPictureResponse returns the updated account.
type SetPictureResponse struct {
	User UserProfile `json:"user"`
}
