package account

import (
	"context"
	"errors"
	"time"

	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountImpl struct {
	*repo.BaseDB
}

func New() repo.AccountRepo {
	return &accountImpl{BaseDB: repo.NewBaseDB()}
}

func completedPurchaseScope(db *gorm.DB) *gorm.DB {
	return db.Where("transaction_type = ? AND status = ?", model.TransactionPurchase, model.TransactionCompleted)
}

func (a *accountImpl) CreateTransaction(ctx context.Context, txn *model.AccountTransaction) error {
	if err := a.DBWithContext(ctx).Create(txn).Error; err != nil {
		logger.Errorf(ctx, "CreateTransaction err: %+v", err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (a *accountImpl) GetTransaction(ctx context.Context, id int64) (*model.AccountTransaction, error) {
	return a.getTransaction(a.DBWithContext(ctx), id)
}

func (a *accountImpl) GetTransactionForUpdate(ctx context.Context, id int64) (*model.AccountTransaction, error) {
	return a.getTransaction(a.DBWithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (a *accountImpl) getTransaction(db *gorm.DB, id int64) (*model.AccountTransaction, error) {
	data := &model.AccountTransaction{}
	if err := db.Where("id = ?", id).Take(data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RecordNotFound.WithMsg("Transaction not found")
		}
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return data, nil
}

func (a *accountImpl) SaveTransaction(ctx context.Context, txn *model.AccountTransaction) error {
	res := a.DBWithContext(ctx).Select("*").Omit("created_at", "uuid", "status", "approved_by", "approved_at").Updates(txn)
	if res.Error != nil {
		logger.Errorf(ctx, "SaveTransaction err: %+v", res.Error)
		return code.UpdateDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound.WithMsg("Transaction not found")
	}
	return nil
}

func (a *accountImpl) DeleteTransaction(ctx context.Context, id int64) error {
	res := a.DBWithContext(ctx).Where("id = ?", id).Delete(&model.AccountTransaction{})
	if res.Error != nil {
		return code.DeleteDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound.WithMsg("Transaction not found")
	}
	return nil
}

func (a *accountImpl) ListTransactions(ctx context.Context, q repo.TransactionQuery) ([]*model.AccountTransaction, int64, error) {
	db := a.DBWithContext(ctx).Model(&model.AccountTransaction{})
	if q.Type != nil {
		db = db.Where("transaction_type = ?", *q.Type)
	}
	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}
	if q.ChemicalID != nil {
		db = db.Where("chemical_id = ?", *q.ChemicalID)
	}
	if q.Start != nil {
		db = db.Where("created_at >= ?", *q.Start)
	}
	if q.End != nil {
		db = db.Where("created_at <= ?", *q.End)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	list := make([]*model.AccountTransaction, 0, q.Limit)
	if err := db.Order("created_at desc, id desc").Offset(q.Offset).Limit(q.Limit).Find(&list).Error; err != nil {
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	return list, total, nil
}

func (a *accountImpl) TransitionTransaction(ctx context.Context, id int64, from, to model.TransactionStatus, by string, at time.Time) (bool, error) {
	res := a.DBWithContext(ctx).Model(&model.AccountTransaction{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumns(map[string]any{
			"status":      to,
			"approved_by": by,
			"approved_at": at,
			"updated_at":  at,
		})
	if res.Error != nil {
		logger.Errorf(ctx, "TransitionTransaction err: %+v", res.Error)
		return false, code.UpdateDataErr.WithErr(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (a *accountImpl) SumCompletedPurchases(ctx context.Context, since *time.Time) (float64, error) {
	db := a.DBWithContext(ctx).Model(&model.AccountTransaction{}).Scopes(completedPurchaseScope)
	if since != nil {
		db = db.Where("created_at >= ?", *since)
	}
	var total float64
	if err := db.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, code.QueryRecordErr.WithErr(err)
	}
	return total, nil
}

func (a *accountImpl) CountTransactions(ctx context.Context) (int64, error) {
	var count int64
	if err := a.DBWithContext(ctx).Model(&model.AccountTransaction{}).Count(&count).Error; err != nil {
		return 0, code.QueryRecordErr.WithErr(err)
	}
	return count, nil
}

func (a *accountImpl) CompletedPurchases(ctx context.Context, chemicalID int64) ([]*model.AccountTransaction, error) {
	list := make([]*model.AccountTransaction, 0)
	if err := a.DBWithContext(ctx).Scopes(completedPurchaseScope).
		Where("chemical_id = ?", chemicalID).
		Order("created_at desc").
		Find(&list).Error; err != nil {
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return list, nil
}

func (a *accountImpl) CreatePurchaseOrder(ctx context.Context, order *model.PurchaseOrder) error {
	if err := a.DBWithContext(ctx).Omit("Items").Create(order).Error; err != nil {
		if repo.IsUniqueViolation(err) {
			return code.OrderNumberConflict.WithErr(err)
		}
		logger.Errorf(ctx, "CreatePurchaseOrder err: %+v", err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (a *accountImpl) CreatePurchaseOrderItem(ctx context.Context, item *model.PurchaseOrderItem) error {
	if err := a.DBWithContext(ctx).Create(item).Error; err != nil {
		logger.Errorf(ctx, "CreatePurchaseOrderItem err: %+v", err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (a *accountImpl) GetPurchaseOrder(ctx context.Context, id int64) (*model.PurchaseOrder, error) {
	data := &model.PurchaseOrder{}
	err := a.DBWithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Where("id = ?", id).Take(data).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RecordNotFound.WithMsg("Purchase order not found")
		}
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return data, nil
}

func (a *accountImpl) SavePurchaseOrder(ctx context.Context, order *model.PurchaseOrder) error {
	res := a.DBWithContext(ctx).Select("*").Omit("Items", "created_at", "uuid", "order_number").Updates(order)
	if res.Error != nil {
		return code.UpdateDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound.WithMsg("Purchase order not found")
	}
	return nil
}

func (a *accountImpl) DeletePurchaseOrder(ctx context.Context, id int64) error {
	return a.ExecTx(ctx, func(txCtx context.Context) error {
		db := a.DBWithContext(txCtx)
		if err := db.Where("purchase_order_id = ?", id).Delete(&model.PurchaseOrderItem{}).Error; err != nil {
			return code.DeleteDataErr.WithErr(err)
		}
		res := db.Where("id = ?", id).Delete(&model.PurchaseOrder{})
		if res.Error != nil {
			return code.DeleteDataErr.WithErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return code.RecordNotFound.WithMsg("Purchase order not found")
		}
		return nil
	})
}

func (a *accountImpl) ListPurchaseOrders(ctx context.Context, q repo.PurchaseOrderQuery) ([]*model.PurchaseOrder, int64, error) {
	db := a.DBWithContext(ctx).Model(&model.PurchaseOrder{})
	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}
	if q.Supplier != nil && *q.Supplier != "" {
		db = db.Where("supplier ILIKE ?", "%"+*q.Supplier+"%")
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	list := make([]*model.PurchaseOrder, 0, q.Limit)
	if err := db.Preload("Items").Order("order_date desc, id desc").Offset(q.Offset).Limit(q.Limit).Find(&list).Error; err != nil {
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	return list, total, nil
}

func (a *accountImpl) CountPurchaseOrders(ctx context.Context, statuses ...model.PurchaseOrderStatus) (int64, error) {
	db := a.DBWithContext(ctx).Model(&model.PurchaseOrder{})
	if len(statuses) > 0 {
		db = db.Where("status IN ?", statuses)
	}
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, code.QueryRecordErr.WithErr(err)
	}
	return count, nil
}
