package user

import (
	"context"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/model"
)

type Service interface {
	Login(ctx context.Context) (*LoginResp, error)
	Register(ctx context.Context, req *RegisterReq) (*RegisterResp, error)
	Me(ctx context.Context) (*UserResp, error)

	Ping(ctx context.Context) (*PingResp, error)
	SetOnline(ctx context.Context) (*StatusResp, error)
	SetOffline(ctx context.Context) (*StatusResp, error)
	OnlineUsers(ctx context.Context) ([]*UserResp, error)
	Status(ctx context.Context, req *UIDReq) (*StatusResp, error)
	Dashboard(ctx context.Context) (*DashboardResp, error)
	MyActivity(ctx context.Context, req *ActivityReq) (*common.PageResp[[]*model.ActivityLog], error)

	ListUsers(ctx context.Context, req *ListReq) (*common.PageResp[[]*UserResp], error)
	PendingUsers(ctx context.Context) ([]*UserResp, error)
	ApproveUser(ctx context.Context, req *IDReq) (*UserResp, error)
	UpdateRole(ctx context.Context, req *RoleReq) (*UserResp, error)
	DeleteUser(ctx context.Context, req *IDReq) error
	CreateInvitation(ctx context.Context, req *InvitationReq) (*model.Invitation, error)
	ListInvitations(ctx context.Context, req *InvitationListReq) (*common.PageResp[[]*model.Invitation], error)
}
