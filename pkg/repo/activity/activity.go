package activity

import (
	"context"
	"errors"

	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"gorm.io/gorm"
)

type activityImpl struct {
	*repo.BaseDB
}

func New() repo.ActivityLogRepo {
	return &activityImpl{BaseDB: repo.NewBaseDB()}
}

func (a *activityImpl) CreateLogs(ctx context.Context, logs []*model.ActivityLog) error {
	if len(logs) == 0 {
		return nil
	}
	if err := a.DBWithContext(ctx).CreateInBatches(logs, 100).Error; err != nil {
		logger.Errorf(ctx, "CreateLogs err: %+v", err)
		return code.AuditRecordErr.WithErr(err)
	}
	return nil
}

func (a *activityImpl) GetLog(ctx context.Context, id int64) (*model.ActivityLog, error) {
	data := &model.ActivityLog{}
	if err := a.DBWithContext(ctx).Where("id = ?", id).Take(data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RecordNotFound.WithMsg("Activity log not found")
		}
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return data, nil
}

func (a *activityImpl) ListLogs(ctx context.Context, q repo.ActivityQuery) ([]*model.ActivityLog, int64, error) {
	db := a.DBWithContext(ctx).Model(&model.ActivityLog{})
	if q.UserID != nil {
		db = db.Where("user_id = ?", *q.UserID)
	}
	if q.Action != nil && *q.Action != "" {
		db = db.Where("action = ?", *q.Action)
	}
	if q.Table != nil && *q.Table != "" {
		db = db.Where("table_modified = ?", *q.Table)
	}
	if q.RecordID != nil {
		db = db.Where("record_id = ?", *q.RecordID)
	}
	if q.Start != nil {
		db = db.Where("timestamp >= ?", *q.Start)
	}
	if q.End != nil {
		db = db.Where("timestamp <= ?", *q.End)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	list := make([]*model.ActivityLog, 0, q.Limit)
	if err := db.Order("timestamp desc, id desc").Offset(q.Offset).Limit(q.Limit).Find(&list).Error; err != nil {
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	return list, total, nil
}

// UpdateLogNote touches only the note column.
func (a *activityImpl) UpdateLogNote(ctx context.Context, id int64, note string) error {
	res := a.DBWithContext(ctx).Model(&model.ActivityLog{}).Where("id = ?", id).UpdateColumn("note", note)
	if res.Error != nil {
		return code.UpdateDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound.WithMsg("Activity log not found")
	}
	return nil
}
