package notification

import (
	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/model"
)

// DefaultRecipients is used when a notification names no recipient roles.
var DefaultRecipients = []common.Role{common.Admin, common.Product}

type IDReq struct {
	ID int64 `uri:"id" binding:"required,gt=0"`
}

type CreateReq struct {
	Type       string                     `json:"type" binding:"required"`
	Severity   string                     `json:"severity" binding:"required"`
	Message    string                     `json:"message" binding:"required"`
	Category   model.NotificationCategory `json:"category"`
	Priority   model.NotificationPriority `json:"priority"`
	Status     model.NotificationStatus   `json:"status"`
	ChemicalID *int64                     `json:"chemical_id"`
	Recipients []common.Role              `json:"recipients"`
}

type UpdateReq struct {
	ID          int64                     `json:"-" uri:"id"`
	Status      *model.NotificationStatus `json:"status"`
	IsRead      *bool                     `json:"is_read"`
	IsDismissed *bool                     `json:"is_dismissed"`
}

type DeleteReq struct {
	ID            int64  `json:"-" uri:"id"`
	DeleteComment string `json:"delete_comment"`
}

type ListReq struct {
	common.PageReq
	Category    *model.NotificationCategory `form:"category"`
	Priority    *model.NotificationPriority `form:"priority"`
	Status      *model.NotificationStatus   `form:"status"`
	Severity    *string                     `form:"severity"`
	IsRead      *bool                       `form:"is_read"`
	IsDismissed *bool                       `form:"is_dismissed"`
}

type NotificationResp struct {
	*model.Notification
	CreatorName string `json:"creator_name,omitempty"`
}

type DeleteResp struct {
	Message       string  `json:"message"`
	DeleteComment *string `json:"delete_comment,omitempty"`
}
