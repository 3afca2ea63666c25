package repo

import (
	"context"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/model"
)

type NotificationQuery struct {
	Role        *common.Role // nil lists every notification
	Category    *model.NotificationCategory
	Priority    *model.NotificationPriority
	Status      *model.NotificationStatus
	Severity    *string
	IsRead      *bool
	IsDismissed *bool
	Offset      int
	Limit       int
}

type NotificationRepo interface {
	Transactor

	CreateNotification(ctx context.Context, n *model.Notification) error
	GetNotification(ctx context.Context, id int64) (*model.Notification, error)
	SaveNotification(ctx context.Context, n *model.Notification) error
	DeleteNotification(ctx context.Context, id int64) error
	ListNotifications(ctx context.Context, q NotificationQuery) ([]*model.Notification, int64, error)
}
