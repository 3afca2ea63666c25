package alert

import (
	"context"
	"errors"

	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"gorm.io/gorm"
)

type alertImpl struct {
	*repo.BaseDB
}

func New() repo.AlertRepo {
	return &alertImpl{BaseDB: repo.NewBaseDB()}
}

func (a *alertImpl) CreateAlert(ctx context.Context, data *model.Alert) error {
	if err := a.DBWithContext(ctx).Create(data).Error; err != nil {
		logger.Errorf(ctx, "CreateAlert err: %+v", err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (a *alertImpl) GetAlert(ctx context.Context, id int64) (*model.Alert, error) {
	data := &model.Alert{}
	if err := a.DBWithContext(ctx).Where("id = ?", id).Take(data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RecordNotFound.WithMsg("Alert not found")
		}
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return data, nil
}

func (a *alertImpl) SaveAlert(ctx context.Context, data *model.Alert) error {
	res := a.DBWithContext(ctx).Select("*").Omit("created_at", "uuid").Updates(data)
	if res.Error != nil {
		return code.UpdateDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound.WithMsg("Alert not found")
	}
	return nil
}

func (a *alertImpl) DeleteAlert(ctx context.Context, id int64) error {
	res := a.DBWithContext(ctx).Where("id = ?", id).Delete(&model.Alert{})
	if res.Error != nil {
		return code.DeleteDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound.WithMsg("Alert not found")
	}
	return nil
}

func (a *alertImpl) ListAlerts(ctx context.Context, q repo.AlertQuery) ([]*model.Alert, int64, error) {
	db := a.DBWithContext(ctx).Model(&model.Alert{})
	if q.Type != nil {
		db = db.Where("type = ?", *q.Type)
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
	if q.ChemicalID != nil {
		db = db.Where("chemical_id = ?", *q.ChemicalID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	list := make([]*model.Alert, 0, q.Limit)
	if err := db.Order("created_at desc, id desc").Offset(q.Offset).Limit(q.Limit).Find(&list).Error; err != nil {
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	return list, total, nil
}

func (a *alertImpl) HasActiveAlert(ctx context.Context, chemicalID int64, typ model.AlertType) (bool, error) {
	var count int64
	if err := a.DBWithContext(ctx).Model(&model.Alert{}).
		Where("chemical_id = ? AND type = ? AND is_dismissed = ?", chemicalID, typ, false).
		Count(&count).Error; err != nil {
		return false, code.QueryRecordErr.WithErr(err)
	}
	return count > 0, nil
}
