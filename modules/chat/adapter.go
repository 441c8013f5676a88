package chat

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/creativity-code/planora/domain/chat"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ChatPort is the interface other modules use to reach chat operations.
type ChatPort interface {
	Join(ctx context.Context, projectID, email string) (JoinResponse, error)
	Leave(ctx context.Context, projectID, email string) error
	Send(ctx context.Context, projectID, email, content string) (domain.Message, error)
	History(ctx context.Context, projectID string, limit int) ([]domain.Message, error)
	Members(ctx context.Context, projectID string) ([]domain.Member, error)
}

// Adapter implements ChatPort over the module's service container.
type Adapter struct {
	container mono.ServiceContainer
}

var _ ChatPort = (*Adapter)(nil)

// NewAdapter creates a ChatPort backed by the given service container.
func NewAdapter(container mono.ServiceContainer) *Adapter {
	if container == nil {
		panic("chat: ServiceContainer is nil")
	}
	return &Adapter{container: container}
}

func call[Req any, Resp any](ctx context.Context, a *Adapter, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	return nil
}

// Join adds a user to a project's channel.
func (a *Adapter) Join(ctx context.Context, projectID, email string) (JoinResponse, error) {
	req := JoinRequest{ProjectID: projectID, UserEmail: email}
	var resp JoinResponse
	if err := call(ctx, a, ServiceJoin, &req, &resp); err != nil {
		return JoinResponse{}, err
	}
	return resp, nil
}

// Leave removes a user from a project's channel.
func (a *Adapter) Leave(ctx context.Context, projectID, email string) error {
	req := LeaveRequest{ProjectID: projectID, UserEmail: email}
	var resp LeaveResponse
	return call(ctx, a, ServiceLeave, &req, &resp)
}

// Send posts a message to a project's channel.
func (a *Adapter) Send(ctx context.Context, projectID, email, content string) (domain.Message, error) {
	req := SendMessageRequest{ProjectID: projectID, UserEmail: email, Content: content}
	var resp SendMessageResponse
	if err := call(ctx, a, ServiceSend, &req, &resp); err != nil {
		return domain.Message{}, err
	}
	return resp.Message, nil
}

// History fetches recent messages of a project's channel.
func (a *Adapter) History(ctx context.Context, projectID string, limit int) ([]domain.Message, error) {
	req := GetHistoryRequest{ProjectID: projectID, Limit: limit}
	var resp GetHistoryResponse
	if err := call(ctx, a, ServiceGetHistory, &req, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// Members lists the users currently in a project's channel.
func (a *Adapter) Members(ctx context.Context, projectID string) ([]domain.Member, error) {
	req := GetMembersRequest{ProjectID: projectID}
	var resp GetMembersResponse
	if err := call(ctx, a, ServiceGetMembers, &req, &resp); err != nil {
		return nil, err
	}
	return resp.Members, nil
}
