package inventory

import (
	"context"
	"errors"

	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type inventoryImpl struct {
	*repo.BaseDB
}

func New() repo.InventoryRepo {
	return &inventoryImpl{BaseDB: repo.NewBaseDB()}
}

func (i *inventoryImpl) CreateChemical(ctx context.Context, item *model.ChemicalInventory) error {
	if err := i.DBWithContext(ctx).Create(item).Error; err != nil {
		logger.Errorf(ctx, "CreateChemical err: %+v", err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (i *inventoryImpl) GetChemical(ctx context.Context, id int64) (*model.ChemicalInventory, error) {
	return i.getChemical(ctx, i.DBWithContext(ctx), id)
}

func (i *inventoryImpl) GetChemicalForUpdate(ctx context.Context, id int64) (*model.ChemicalInventory, error) {
	return i.getChemical(ctx, i.DBWithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (i *inventoryImpl) getChemical(ctx context.Context, db *gorm.DB, id int64) (*model.ChemicalInventory, error) {
	data := &model.ChemicalInventory{}
	if err := db.Where("id = ?", id).Take(data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RecordNotFound.WithMsg("Chemical not found")
		}
		logger.Errorf(ctx, "GetChemical err: %+v", err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return data, nil
}

func (i *inventoryImpl) SaveChemical(ctx context.Context, item *model.ChemicalInventory) error {
	res := i.DBWithContext(ctx).Select("*").Omit("created_at", "uuid", "notes").Updates(item)
	if res.Error != nil {
		logger.Errorf(ctx, "SaveChemical err: %+v", res.Error)
		return code.UpdateDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound.WithMsg("Chemical not found")
	}
	return nil
}

func (i *inventoryImpl) AppendChemicalNote(ctx context.Context, id int64, line string) (string, error) {
	var notes string
	res := i.DBWithContext(ctx).Model(&model.ChemicalInventory{}).
		Where("id = ?", id).
		UpdateColumn("notes", gorm.Expr("CASE WHEN COALESCE(notes, '') = '' THEN ? ELSE notes || E'\\n' || ? END", line, line))
	if res.Error != nil {
		logger.Errorf(ctx, "AppendChemicalNote err: %+v", res.Error)
		return "", code.UpdateDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return "", code.RecordNotFound.WithMsg("Chemical not found")
	}
	if err := i.DBWithContext(ctx).Model(&model.ChemicalInventory{}).
		Where("id = ?", id).Select("notes").Scan(&notes).Error; err != nil {
		return "", code.QueryRecordErr.WithErr(err)
	}
	return notes, nil
}

func (i *inventoryImpl) DeleteChemical(ctx context.Context, id int64) error {
	res := i.DBWithContext(ctx).Where("id = ?", id).Delete(&model.ChemicalInventory{})
	if res.Error != nil {
		logger.Errorf(ctx, "DeleteChemical err: %+v", res.Error)
		return code.DeleteDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound.WithMsg("Chemical not found")
	}
	return nil
}

func lowStockScope(db *gorm.DB) *gorm.DB {
	return db.Where("alert_threshold IS NOT NULL AND quantity <= alert_threshold")
}

func (i *inventoryImpl) ListChemicals(ctx context.Context, q repo.ChemicalQuery) ([]*model.ChemicalInventory, int64, error) {
	db := i.DBWithContext(ctx).Model(&model.ChemicalInventory{})
	if q.Search != nil && *q.Search != "" {
		like := "%" + *q.Search + "%"
		db = db.Where("(name ILIKE ? OR formulation ILIKE ? OR supplier ILIKE ?)", like, like, like)
	}
	if q.Supplier != nil && *q.Supplier != "" {
		db = db.Where("supplier ILIKE ?", "%"+*q.Supplier+"%")
	}
	if q.Location != nil && *q.Location != "" {
		db = db.Where("location ILIKE ?", "%"+*q.Location+"%")
	}
	if q.LowStock {
		db = db.Scopes(lowStockScope)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	list := make([]*model.ChemicalInventory, 0, q.Limit)
	if err := db.Order("last_updated desc, id desc").Offset(q.Offset).Limit(q.Limit).Find(&list).Error; err != nil {
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	return list, total, nil
}
