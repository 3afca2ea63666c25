package model

import (
	"slices"

	"github.com/scienceol/chemtrack/pkg/common"
	"gorm.io/datatypes"
)

type NotificationCategory string

const (
	CategoryChemical  NotificationCategory = "chemical"
	CategoryProduct   NotificationCategory = "product"
	CategorySafety    NotificationCategory = "safety"
	CategoryInventory NotificationCategory = "inventory"
	CategoryGeneral   NotificationCategory = "general"
)

var NotificationCategories = []NotificationCategory{
	CategoryChemical, CategoryProduct, CategorySafety, CategoryInventory, CategoryGeneral,
}

type NotificationPriority string

const (
	PriorityLow  NotificationPriority = "low"
	PriorityMid  NotificationPriority = "mid"
	PriorityHigh NotificationPriority = "high"
)

var NotificationPriorities = []NotificationPriority{PriorityLow, PriorityMid, PriorityHigh}

type NotificationStatus string

const (
	NotificationPending    NotificationStatus = "pending"
	NotificationInProgress NotificationStatus = "in_progress"
	NotificationCompleted  NotificationStatus = "completed"
	NotificationCancelled  NotificationStatus = "cancelled"
)

var NotificationStatuses = []NotificationStatus{
	NotificationPending, NotificationInProgress, NotificationCompleted, NotificationCancelled,
}

type Notification struct {
	BaseModel
	Type          string                           `gorm:"type:varchar(64);not null" json:"type"`
	Severity      string                           `gorm:"type:varchar(32);not null" json:"severity"`
	Message       string                           `gorm:"type:text;not null" json:"message"`
	Category      NotificationCategory             `gorm:"type:varchar(32);not null;default:general;index" json:"category"`
	Priority      NotificationPriority             `gorm:"type:varchar(16);not null;default:mid;index" json:"priority"`
	Status        NotificationStatus               `gorm:"type:varchar(16);not null;default:pending;index" json:"status"`
	ChemicalID    *int64                           `gorm:"index" json:"chemical_id"`
	UserID        *string                          `gorm:"type:varchar(128)" json:"user_id"`
	CreatedBy     *string                          `gorm:"type:varchar(128)" json:"created_by"`
	IsRead        bool                             `gorm:"not null;default:false" json:"is_read"`
	IsDismissed   bool                             `gorm:"not null;default:false" json:"is_dismissed"`
	Recipients    datatypes.JSONSlice[common.Role] `gorm:"type:jsonb" json:"recipients"`
	DeleteComment *string                          `gorm:"type:text" json:"delete_comment"`
}

func (*Notification) TableName() string { return "notifications" }

// VisibleTo reports whether role may see the notification.
func (n *Notification) VisibleTo(role common.Role) bool {
	return role == common.Admin || n.HasRecipient(role)
}

func (n *Notification) HasRecipient(role common.Role) bool {
	return slices.Contains(n.Recipients, role)
}
