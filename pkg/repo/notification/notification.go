package notification

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"gorm.io/gorm"
)

type notificationImpl struct {
	*repo.BaseDB
}

func New() repo.NotificationRepo {
	return &notificationImpl{BaseDB: repo.NewBaseDB()}
}

func (n *notificationImpl) CreateNotification(ctx context.Context, data *model.Notification) error {
	if err := n.DBWithContext(ctx).Create(data).Error; err != nil {
		logger.Errorf(ctx, "CreateNotification err: %+v", err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (n *notificationImpl) GetNotification(ctx context.Context, id int64) (*model.Notification, error) {
	data := &model.Notification{}
	if err := n.DBWithContext(ctx).Where("id = ?", id).Take(data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RecordNotFound.WithMsg("Notification not found")
		}
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return data, nil
}

func (n *notificationImpl) SaveNotification(ctx context.Context, data *model.Notification) error {
	res := n.DBWithContext(ctx).Select("*").Omit("created_at", "uuid").Updates(data)
	if res.Error != nil {
		return code.UpdateDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound.WithMsg("Notification not found")
	}
	return nil
}

func (n *notificationImpl) DeleteNotification(ctx context.Context, id int64) error {
	res := n.DBWithContext(ctx).Where("id = ?", id).Delete(&model.Notification{})
	if res.Error != nil {
		return code.DeleteDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound.WithMsg("Notification not found")
	}
	return nil
}

func recipientScope(role common.Role) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		needle, _ := json.Marshal([]common.Role{role})
		return db.Where("recipients @> ?::jsonb", string(needle))
	}
}

func (n *notificationImpl) ListNotifications(ctx context.Context, q repo.NotificationQuery) ([]*model.Notification, int64, error) {
	db := n.DBWithContext(ctx).Model(&model.Notification{})
	if q.Role != nil {
		db = db.Scopes(recipientScope(*q.Role))
	}
	if q.Category != nil {
		db = db.Where("category = ?", *q.Category)
	}
	if q.Priority != nil {
		db = db.Where("priority = ?", *q.Priority)
	}
	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}
	if q.Severity != nil {
		db = db.Where("severity = ?", *q.Severity)
	}
	if q.IsRead != nil {
		db = db.Where("is_read = ?", *q.IsRead)
	}
	if q.IsDismissed != nil {
		db = db.Where("is_dismissed = ?", *q.IsDismissed)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	list := make([]*model.Notification, 0, q.Limit)
	if err := db.Order("created_at desc, id desc").Offset(q.Offset).Limit(q.Limit).Find(&list).Error; err != nil {
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	return list, total, nil
}
