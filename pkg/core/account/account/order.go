package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/common/uuid"
	"github.com/scienceol/chemtrack/pkg/core/account"
	"github.com/scienceol/chemtrack/pkg/core/audit"
	"github.com/scienceol/chemtrack/pkg/core/policy"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
)

const orderNumberAttempts = 3

func (a *accountImpl) orderNumber() string {
	return fmt.Sprintf("PO-%s-%s", a.now().Format("20060102"), uuid.ShortHex(8))
}

func validateItem(idx int, item *account.PurchaseOrderItemReq) error {
	switch {
	case item == nil:
		return code.ParamErr.WithMsgf("item %d: missing", idx)
	case item.Quantity <= 0:
		return code.ParamErr.WithMsgf("item %d: quantity must be positive", idx)
	case strings.TrimSpace(item.Unit) == "":
		return code.ParamErr.WithMsgf("item %d: unit is required", idx)
	case item.UnitPrice < 0 || item.TotalPrice < 0:
		return code.ParamErr.WithMsgf("item %d: price must not be negative", idx)
	}
	return nil
}

// CreatePurchaseOrder writes the header and every item in one transaction;
// the first invalid item rolls the whole order back. A clashing order number
// retries the whole transaction with a fresh number.
func (a *accountImpl) CreatePurchaseOrder(ctx context.Context, req *account.PurchaseOrderReq) (*model.PurchaseOrder, error) {
	user, err := currentUser(ctx, policy.CreatePurchaseOrder)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Supplier) == "" {
		return nil, code.ParamErr.WithMsg("supplier is required")
	}
	if len(req.Items) == 0 {
		return nil, code.ParamErr.WithMsg("a purchase order needs at least one item")
	}
	status := req.Status
	if status == "" {
		status = model.OrderDraft
	}
	if !status.Valid() {
		return nil, code.ParamErr.WithMsgf("invalid status %q", status)
	}

	for attempt := 1; ; attempt++ {
		order, err := a.createOrder(ctx, user, req, status)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, code.OrderNumberConflict) || attempt == orderNumberAttempts {
			return nil, err
		}
		logger.Warnf(ctx, "order number clash, retry %d: %v", attempt, err)
	}
}

func (a *accountImpl) createOrder(ctx context.Context, user *model.User, req *account.PurchaseOrderReq,
	status model.PurchaseOrderStatus,
) (*model.PurchaseOrder, error) {
	order := &model.PurchaseOrder{
		OrderNumber:      a.orderNumber(),
		Supplier:         req.Supplier,
		Currency:         orDefaultCurrency(req.Currency),
		Status:           status,
		OrderDate:        a.now(),
		ExpectedDelivery: req.ExpectedDelivery,
		Notes:            req.Notes,
		CreatedBy:        user.UID,
	}
	if req.OrderDate != nil {
		order.OrderDate = *req.OrderDate
	}
	entry := &audit.Entry{
		Actor:       user,
		Action:      audit.CreatePurchaseOrder,
		Table:       orderTable,
		Description: "Created purchase order " + order.OrderNumber + " for " + req.Supplier,
	}
	err := audit.Mutate(ctx, a.tx, a.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		if err := a.accounts.CreatePurchaseOrder(txCtx, order); err != nil {
			return nil, err
		}
		entry.RecordID = order.ID

		var sum float64
		items := make([]*model.PurchaseOrderItem, 0, len(req.Items))
		for idx, it := range req.Items {
			if err := validateItem(idx+1, it); err != nil {
				return nil, err
			}
			if err := a.checkChemical(txCtx, it.ChemicalID); err != nil {
				return nil, code.CodeOf(err).WithMsgf("item %d: %v", idx+1, err)
			}
			item := &model.PurchaseOrderItem{
				PurchaseOrderID: order.ID,
				ChemicalID:      it.ChemicalID,
				Quantity:        it.Quantity,
				Unit:            it.Unit,
				UnitPrice:       it.UnitPrice,
				TotalPrice:      it.TotalPrice,
				Notes:           it.Notes,
			}
			if item.TotalPrice == 0 {
				item.TotalPrice = item.Quantity * item.UnitPrice
			}
			if err := a.accounts.CreatePurchaseOrderItem(txCtx, item); err != nil {
				return nil, err
			}
			sum += item.TotalPrice
			items = append(items, item)
		}
		order.Items = items

		order.TotalAmount = req.TotalAmount
		if order.TotalAmount == 0 {
			order.TotalAmount = sum
		}
		if order.TotalAmount != 0 {
			if err := a.accounts.SavePurchaseOrder(txCtx, order); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (a *accountImpl) UpdatePurchaseOrder(ctx context.Context, req *account.PurchaseOrderUpdateReq) (*model.PurchaseOrder, error) {
	user, err := currentUser(ctx, policy.UpdatePurchaseOrder)
	if err != nil {
		return nil, err
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, code.ParamErr.WithMsgf("invalid status %q", *req.Status)
	}
	if req.Supplier != nil && strings.TrimSpace(*req.Supplier) == "" {
		return nil, code.ParamErr.WithMsg("supplier must not be empty")
	}

	var order *model.PurchaseOrder
	entry := &audit.Entry{
		Actor:       user,
		Action:      audit.UpdatePurchaseOrder,
		Table:       orderTable,
		RecordID:    req.ID,
		OnlyChanges: true,
	}
	if err := audit.Mutate(ctx, a.tx, a.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		if order, err = a.accounts.GetPurchaseOrder(txCtx, req.ID); err != nil {
			return nil, err
		}
		entry.Description = "Updated purchase order " + order.OrderNumber
		var changes []audit.Change
		if req.Supplier != nil {
			changes = audit.Diff(changes, "supplier", order.Supplier, *req.Supplier)
			order.Supplier = *req.Supplier
		}
		if req.TotalAmount != nil {
			changes = audit.Diff(changes, "total_amount", order.TotalAmount, *req.TotalAmount)
			order.TotalAmount = *req.TotalAmount
		}
		if req.Currency != nil {
			cur := orDefaultCurrency(*req.Currency)
			changes = audit.Diff(changes, "currency", order.Currency, cur)
			order.Currency = cur
		}
		if req.Status != nil {
			changes = audit.Diff(changes, "status", order.Status, *req.Status)
			order.Status = *req.Status
		}
		if req.ExpectedDelivery != nil {
			changes = audit.Diff(changes, "expected_delivery", order.ExpectedDelivery, *req.ExpectedDelivery)
			order.ExpectedDelivery = req.ExpectedDelivery
		}
		if req.Notes != nil {
			changes = audit.Diff(changes, "notes", order.Notes, *req.Notes)
			order.Notes = req.Notes
		}
		if len(changes) == 0 {
			return nil, nil
		}
		return changes, a.accounts.SavePurchaseOrder(txCtx, order)
	}); err != nil {
		return nil, err
	}
	return order, nil
}

func (a *accountImpl) DeletePurchaseOrder(ctx context.Context, req *account.IDReq) error {
	user, err := currentUser(ctx, policy.DeletePurchaseOrder)
	if err != nil {
		return err
	}
	entry := &audit.Entry{Actor: user, Action: audit.DeletePurchaseOrder, Table: orderTable, RecordID: req.ID}
	return audit.Mutate(ctx, a.tx, a.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		order, err := a.accounts.GetPurchaseOrder(txCtx, req.ID)
		if err != nil {
			return nil, err
		}
		entry.Description = "Deleted purchase order " + order.OrderNumber
		return nil, a.accounts.DeletePurchaseOrder(txCtx, req.ID)
	})
}

func (a *accountImpl) GetPurchaseOrder(ctx context.Context, req *account.IDReq) (*model.PurchaseOrder, error) {
	return a.accounts.GetPurchaseOrder(ctx, req.ID)
}

func (a *accountImpl) ListPurchaseOrders(ctx context.Context, req *account.PurchaseOrderListReq) (*common.PageResp[[]*model.PurchaseOrder], error) {
	req.Normalize()
	list, total, err := a.accounts.ListPurchaseOrders(ctx, repo.PurchaseOrderQuery{
		Status:   req.Status,
		Supplier: req.Supplier,
		Offset:   req.Skip,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &common.PageResp[[]*model.PurchaseOrder]{Data: list, Total: total, Skip: req.Skip, Limit: req.Limit}, nil
}
