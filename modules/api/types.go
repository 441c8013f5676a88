package api

import "time"

// ErrorResponse is the API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the API health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// RegisterBody is the API request to create an account.
type RegisterBody struct {
	Name        string `json:"name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	AccountType string `json:"account_type"`
}

// VerifyEmailBody confirms an emailed verification code.
type VerifyEmailBody struct {
	UserID uint   `json:"user_id"`
	Code   string `json:"code"`
}

// LoginBody is the API login request.
type LoginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshBody is the API token refresh request.
type RefreshBody struct {
	RefreshToken string `json:"refresh_token"`
}

// RequestResetBody starts a password reset.
type RequestResetBody struct {
	Email string `json:"email"`
}

// ResetPasswordBody completes a password reset.
type ResetPasswordBody struct {
	UserID      uint   `json:"user_id"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// UpdateProfileBody replaces the caller's display name and username.
type UpdateProfileBody struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// SetPictureBody stores the caller's profile picture URL.
type SetPictureBody struct {
	PictureURL string `json:"picture_url"`
}

// TaskBody is the API request to create or replace a task. The owning user
// always comes from the authenticated token, never the body.
type TaskBody struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     string     `json:"due_date"`
	Status      string     `json:"status,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

// ChatMessageBody posts a message to a project channel over REST.
type ChatMessageBody struct {
	Content string `json:"content"`
}
