package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domain "github.com/creativity-code/planora/domain/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// captureMailer records sent mail instead of delivering it.
type captureMailer struct {
	sent []struct {
		to, subject, body string
	}
}

func (m *captureMailer) Send(to, subject, body string) error {
	m.sent = append(m.sent, struct{ to, subject, body string }{to, subject, body})
	return nil
}

// lastCode extracts the six-digit code out of the most recent mail body.
func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	if len(m.sent) == 0 {
		t.Fatal("no mail was sent")
	}
	body := m.sent[len(m.sent)-1].body
	idx := strings.LastIndex(body, ": ")
	if idx < 0 {
		t.Fatalf("mail body %q has no code", body)
	}
	return body[idx+2:]
}

func setupAuthService(t *testing.T) (*AuthService, *captureMailer) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.VerificationCode{}, &domain.ResetToken{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	mailer := &captureMailer{}
	service := NewAuthService(
		NewUserRepository(db),
		NewPasswordHasher(),
		NewJWTManager(JWTConfig{
			SecretKey:            "test-secret",
			AccessTokenDuration:  time.Minute,
			RefreshTokenDuration: time.Hour,
			Issuer:               "planora-test",
		}),
		mailer,
	)
	return service, mailer
}

func register(t *testing.T, s *AuthService) *domain.User {
	t.Helper()
	user, err := s.Register(context.Background(), "Alice", "alice", "alice@example.com", "password123", "Personal")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	return user
}

func TestAuthService_RegisterSendsVerificationCode(t *testing.T) {
	service, mailer := setupAuthService(t)

	user := register(t, service)

	if user.ID == 0 {
		t.Error("Register() user.ID should be assigned")
	}
	if user.Verified {
		t.Error("Register() user starts verified, want unverified")
	}
	if user.Role != "User" {
		t.Errorf("Register() user.Role = %q, want %q", user.Role, "User")
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("Register() sent %d mails, want 1", len(mailer.sent))
	}
	if mailer.sent[0].to != "alice@example.com" {
		t.Errorf("mail recipient = %q, want %q", mailer.sent[0].to, "alice@example.com")
	}
	if mailer.sent[0].subject != "Planora Email Verification" {
		t.Errorf("mail subject = %q, want %q", mailer.sent[0].subject, "Planora Email Verification")
	}
	code := mailer.lastCode(t)
	if len(code) != 6 {
		t.Errorf("verification code = %q, want 6 digits", code)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	service, _ := setupAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{"bad email", "bob", "not-an-email", "password123", ErrInvalidEmail},
		{"short password", "bob", "bob@example.com", "1234567", ErrWeakPassword},
		{"long password", "bob", "bob@example.com", strings.Repeat("x", 73), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(ctx, "Bob", tt.username, tt.email, tt.password, "Personal")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	service, _ := setupAuthService(t)
	ctx := context.Background()

	register(t, service)

	if _, err := service.Register(ctx, "Alice Two", "alice", "other@example.com", "password123", "Personal"); !errors.Is(err, ErrUserExists) {
		t.Errorf("Register() duplicate username error = %v, want ErrUserExists", err)
	}
	if _, err := service.Register(ctx, "Alice Two", "alice2", "alice@example.com", "password123", "Personal"); !errors.Is(err, ErrUserExists) {
		t.Errorf("Register() duplicate email error = %v, want ErrUserExists", err)
	}
}

func TestAuthService_LoginRequiresVerification(t *testing.T) {
	service, mailer := setupAuthService(t)
	ctx := context.Background()

	user := register(t, service)

	// Unverified accounts are locked out.
	if _, _, err := service.Login(ctx, "alice", "password123"); !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("Login() before verification error = %v, want ErrEmailNotVerified", err)
	}

	// Wrong code does not verify.
	if err := service.VerifyEmail(ctx, user.ID, "000000"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("VerifyEmail() wrong code error = %v, want ErrCodeNotFound", err)
	}

	if err := service.VerifyEmail(ctx, user.ID, mailer.lastCode(t)); err != nil {
		t.Fatalf("VerifyEmail() error: %v", err)
	}

	// The code is single-use.
	if err := service.VerifyEmail(ctx, user.ID, mailer.lastCode(t)); !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("VerifyEmail() reused code error = %v, want ErrCodeNotFound", err)
	}

	loggedIn, tokens, err := service.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("Login() after verification error: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("Login() user.ID = %d, want %d", loggedIn.ID, user.ID)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Error("Login() returned empty tokens")
	}

	claims, err := service.ValidateToken(ctx, tokens.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken() error: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("claims.UserID = %d, want %d", claims.UserID, user.ID)
	}
}

func TestAuthService_LoginBadCredentials(t *testing.T) {
	service, mailer := setupAuthService(t)
	ctx := context.Background()

	user := register(t, service)
	_ = service.VerifyEmail(ctx, user.ID, mailer.lastCode(t))

	if _, _, err := service.Login(ctx, "alice", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := service.Login(ctx, "nobody", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthService_RefreshTokens(t *testing.T) {
	service, mailer := setupAuthService(t)
	ctx := context.Background()

	user := register(t, service)
	_ = service.VerifyEmail(ctx, user.ID, mailer.lastCode(t))

	_, tokens, err := service.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	fresh, err := service.RefreshTokens(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshTokens() error: %v", err)
	}
	if fresh.AccessToken == "" {
		t.Error("RefreshTokens() returned empty access token")
	}

	// An access token is not accepted as a refresh token.
	if _, err := service.RefreshTokens(ctx, tokens.AccessToken); err == nil {
		t.Error("RefreshTokens(access token) expected error, got nil")
	}
}

func TestAuthService_PasswordReset(t *testing.T) {
	service, mailer := setupAuthService(t)
	ctx := context.Background()

	user := register(t, service)
	_ = service.VerifyEmail(ctx, user.ID, mailer.lastCode(t))

	if _, err := service.RequestPasswordReset(ctx, "unknown@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("RequestPasswordReset() unknown email error = %v, want ErrUserNotFound", err)
	}

	userID, err := service.RequestPasswordReset(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset() error: %v", err)
	}
	if userID != user.ID {
		t.Errorf("RequestPasswordReset() userID = %d, want %d", userID, user.ID)
	}
	token := mailer.lastCode(t)

	if err := service.ResetPassword(ctx, user.ID, "000000", "newpassword123"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("ResetPassword() wrong token error = %v, want ErrCodeNotFound", err)
	}
	if err := service.ResetPassword(ctx, user.ID, token, "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("ResetPassword() weak password error = %v, want ErrWeakPassword", err)
	}
	if err := service.ResetPassword(ctx, user.ID, token, "newpassword123"); err != nil {
		t.Fatalf("ResetPassword() error: %v", err)
	}

	// Old password no longer works, new one does.
	if _, _, err := service.Login(ctx, "alice", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() old password error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := service.Login(ctx, "alice", "newpassword123"); err != nil {
		t.Errorf("Login() new password error: %v", err)
	}

	// Reset token is single-use.
	if err := service.ResetPassword(ctx, user.ID, token, "anotherpassword1"); !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("ResetPassword() reused token error = %v, want ErrCodeNotFound", err)
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	service, _ := setupAuthService(t)
	ctx := context.Background()

	user := register(t, service)

	updated, err := service.UpdateProfile(ctx, user.ID, "Alice B", "aliceb")
	if err != nil {
		t.Fatalf("UpdateProfile() error: %v", err)
	}
	if updated.Name != "Alice B" || updated.Username != "aliceb" {
		t.Errorf("UpdateProfile() = %q/%q, want Alice B/aliceb", updated.Name, updated.Username)
	}
}

func TestAuthService_SetProfilePicture(t *testing.T) {
	service, _ := setupAuthService(t)
	ctx := context.Background()

	user := register(t, service)

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid png", "https://cdn.example.com/pics/alice.png", false},
		{"valid jpg uppercase", "https://cdn.example.com/pics/ALICE.JPG", false},
		{"empty url", "", true},
		{"whitespace url", "   ", true},
		{"not a url", "not a url", true},
		{"no image extension", "https://cdn.example.com/pics/alice.pdf", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := service.SetProfilePicture(ctx, user.ID, tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPictureURL) {
					t.Errorf("SetProfilePicture(%q) error = %v, want ErrInvalidPictureURL", tt.url, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetProfilePicture(%q) error: %v", tt.url, err)
			}
			if updated.ProfilePicture != tt.url {
				t.Errorf("ProfilePicture = %q, want %q", updated.ProfilePicture, tt.url)
			}
		})
	}
}
