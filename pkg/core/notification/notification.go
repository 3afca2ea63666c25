package notification

import (
	"context"

	"github.com/scienceol/chemtrack/pkg/common"
)

type Service interface {
	CreateNotification(ctx context.Context, req *CreateReq) (*NotificationResp, error)
	// SendNotification creates one notification per recipient role.
	SendNotification(ctx context.Context, req *CreateReq) ([]*NotificationResp, error)
	ListNotifications(ctx context.Context, req *ListReq) (*common.PageResp[[]*NotificationResp], error)
	UnreadNotifications(ctx context.Context) ([]*NotificationResp, error)
	ActiveNotifications(ctx context.Context) ([]*NotificationResp, error)
	GetNotification(ctx context.Context, req *IDReq) (*NotificationResp, error)
	UpdateNotification(ctx context.Context, req *UpdateReq) (*NotificationResp, error)
	DismissNotification(ctx context.Context, req *IDReq) (*NotificationResp, error)
	ReadNotification(ctx context.Context, req *IDReq) (*NotificationResp, error)
	DeleteNotification(ctx context.Context, req *DeleteReq) (*DeleteResp, error)

	Categories() []common.Label
	Priorities() []common.Label
	Statuses() []common.Label
}
