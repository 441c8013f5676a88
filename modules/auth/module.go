// Package auth provides Planora account management: registration with
// emailed verification codes, JWT login, password reset, and profile
// updates. Accounts start unverified and cannot log in until the code is
// confirmed.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	domain "github.com/creativity-code/planora/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AuthModule provides authentication services.
type AuthModule struct {
	db      *gorm.DB
	service *AuthService
	dbPath  string
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule() *AuthModule {
	dbPath := os.Getenv("PLANORA_AUTH_DB_PATH")
	if dbPath == "" {
		dbPath = "planora_auth.db"
	}
	return &AuthModule{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start initializes the auth module.
func (m *AuthModule) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.VerificationCode{},
		&domain.ResetToken{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	repo := NewUserRepository(db)
	hasher := NewPasswordHasher()
	jwtManager := NewJWTManager(loadJWTConfig())
	mailer := NewMailer(LoadSMTPConfig())

	m.service = NewAuthService(repo, hasher, jwtManager, mailer)

	log.Printf("[auth] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}
	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
		},
	}
}

// RegisterServices registers request/reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	services := []struct {
		name     string
		register func() error
	}{
		{"register", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "register", json.Unmarshal, json.Marshal, m.handleRegister)
		}},
		{"verify-email", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "verify-email", json.Unmarshal, json.Marshal, m.handleVerifyEmail)
		}},
		{"login", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "login", json.Unmarshal, json.Marshal, m.handleLogin)
		}},
		{"refresh-token", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "refresh-token", json.Unmarshal, json.Marshal, m.handleRefresh)
		}},
		{"validate-token", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken)
		}},
		{"get-user", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser)
		}},
		{"request-password-reset", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "request-password-reset", json.Unmarshal, json.Marshal, m.handleRequestReset)
		}},
		{"reset-password", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "reset-password", json.Unmarshal, json.Marshal, m.handleResetPassword)
		}},
		{"update-profile", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "update-profile", json.Unmarshal, json.Marshal, m.handleUpdateProfile)
		}},
		{"set-profile-picture", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "set-profile-picture", json.Unmarshal, json.Marshal, m.handleSetPicture)
		}},
	}

	for _, svc := range services {
		if err := svc.register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", svc.name, err)
		}
	}

	log.Println("[auth] Registered services: register, verify-email, login, refresh-token, validate-token, get-user, request-password-reset, reset-password, update-profile, set-profile-picture")
	return nil
}

// Service handlers

func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (RegisterResponse, error) {
	user, err := m.service.Register(ctx, req.Name, req.Username, req.Email, req.Password, req.AccountType)
	if err != nil {
		return RegisterResponse{}, err
	}
	return RegisterResponse{User: toProfile(user)}, nil
}

func (m *AuthModule) handleVerifyEmail(ctx context.Context, req VerifyEmailRequest, _ *mono.Msg) (VerifyEmailResponse, error) {
	if err := m.service.VerifyEmail(ctx, req.UserID, req.Code); err != nil {
		return VerifyEmailResponse{}, err
	}
	return VerifyEmailResponse{Verified: true}, nil
}

func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	user, tokens, err := m.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{
		User:         toProfile(user),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		TokenType:    tokens.TokenType,
	}, nil
}

func (m *AuthModule) handleRefresh(ctx context.Context, req RefreshRequest, _ *mono.Msg) (RefreshResponse, error) {
	tokens, err := m.service.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		return RefreshResponse{}, err
	}
	return RefreshResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		TokenType:    tokens.TokenType,
	}, nil
}

func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		errMsg := "invalid token"
		if errors.Is(err, ErrExpiredToken) {
			errMsg = "token expired"
		}
		// Validation failures are a response, not a transport error.
		return ValidateTokenResponse{
			Valid: false,
			Error: errMsg,
		}, nil
	}

	return ValidateTokenResponse{
		Valid:    true,
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
	}, nil
}

func (m *AuthModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (GetUserResponse, error) {
	user, err := m.service.GetUser(ctx, req.UserID)
	if err != nil {
		return GetUserResponse{}, err
	}
	return GetUserResponse{User: toProfile(user)}, nil
}

func (m *AuthModule) handleRequestReset(ctx context.Context, req RequestResetRequest, _ *mono.Msg) (RequestResetResponse, error) {
	userID, err := m.service.RequestPasswordReset(ctx, req.Email)
	if err != nil {
		return RequestResetResponse{}, err
	}
	return RequestResetResponse{UserID: userID}, nil
}

func (m *AuthModule) handleResetPassword(ctx context.Context, req ResetPasswordRequest, _ *mono.Msg) (ResetPasswordResponse, error) {
	if err := m.service.ResetPassword(ctx, req.UserID, req.Token, req.NewPassword); err != nil {
		return ResetPasswordResponse{}, err
	}
	return ResetPasswordResponse{Reset: true}, nil
}

func (m *AuthModule) handleUpdateProfile(ctx context.Context, req UpdateProfileRequest, _ *mono.Msg) (UpdateProfileResponse, error) {
	user, err := m.service.UpdateProfile(ctx, req.UserID, req.Name, req.Username)
	if err != nil {
		return UpdateProfileResponse{}, err
	}
	return UpdateProfileResponse{User: toProfile(user)}, nil
}

func (m *AuthModule) handleSetPicture(ctx context.Context, req SetPictureRequest, _ *mono.Msg) (SetPictureResponse, error) {
	user, err := m.service.SetProfilePicture(ctx, req.UserID, req.PictureURL)
	if err != nil {
		return SetPictureResponse{}, err
	}
	return SetPictureResponse{User: toProfile(user)}, nil
}

// loadJWTConfig loads JWT configuration from environment variables.
func loadJWTConfig() JWTConfig {
	config := DefaultJWTConfig()

	if secret := os.Getenv("PLANORA_JWT_SECRET"); secret != "" {
		config.SecretKey = secret
	}
	if issuer := os.Getenv("PLANORA_JWT_ISSUER"); issuer != "" {
		config.Issuer = issuer
	}

	return config
}
