package alert

import (
	"context"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/model"
)

type Service interface {
	CreateAlert(ctx context.Context, req *CreateReq) (*model.Alert, error)
	ListAlerts(ctx context.Context, req *ListReq) (*common.PageResp[[]*model.Alert], error)
	UnreadAlerts(ctx context.Context) ([]*model.Alert, error)
	ActiveAlerts(ctx context.Context) ([]*model.Alert, error)
	GetAlert(ctx context.Context, req *IDReq) (*model.Alert, error)
	UpdateAlert(ctx context.Context, req *UpdateReq) (*model.Alert, error)
	ReadAlert(ctx context.Context, req *IDReq) (*model.Alert, error)
	DismissAlert(ctx context.Context, req *IDReq) (*model.Alert, error)
	DeleteAlert(ctx context.Context, req *IDReq) error

	Types() []common.Label
	Severities() []common.Label
}
