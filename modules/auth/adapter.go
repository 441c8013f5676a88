package auth

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/creativity-code/planora/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort is the interface other modules use to check identities.
type AuthPort interface {
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	GetUser(ctx context.Context, userID uint) (UserProfile, error)
}

// Adapter implements AuthPort over the module's service container.
type Adapter struct {
	container mono.ServiceContainer
}

var _ AuthPort = (*Adapter)(nil)

// NewAdapter creates an AuthPort backed by the given service container.
func NewAdapter(container mono.ServiceContainer) *Adapter {
	if container == nil {
		panic("auth: ServiceContainer is nil")
	}
	return &Adapter{container: container}
}

// ValidateToken validates an access token and returns claims.
func (a *Adapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"validate-token",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("validate-token request failed: %w", err)
	}

	if !resp.Valid {
		return nil, fmt.Errorf("token validation failed: %s", resp.Error)
	}

	return &domain.Claims{
		UserID:   resp.UserID,
		Username: resp.Username,
		Email:    resp.Email,
	}, nil
}

// GetUser retrieves a user profile by ID.
func (a *Adapter) GetUser(ctx context.Context, userID uint) (UserProfile, error) {
	req := GetUserRequest{UserID: userID}
	var resp GetUserResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-user",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return UserProfile{}, fmt.Errorf("get-user request failed: %w", err)
	}

	return resp.User, nil
}
