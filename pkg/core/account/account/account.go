package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/account"
	"github.com/scienceol/chemtrack/pkg/core/audit"
	"github.com/scienceol/chemtrack/pkg/core/policy"
	"github.com/scienceol/chemtrack/pkg/middleware/auth"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/repo/store"
)

const (
	txnTable      = "account_transactions"
	orderTable    = "purchase_orders"
	defaultRecent = 10
)

type accountImpl struct {
	tx        repo.Transactor
	accounts  repo.AccountRepo
	chemicals repo.InventoryRepo
	recorder  *audit.Recorder
	now       func() time.Time
}

func New(st *store.Store) account.Service {
	return &accountImpl{
		tx:        st.Tx,
		accounts:  st.Account,
		chemicals: st.Inventory,
		recorder:  audit.NewRecorder(st.Activity),
		now:       time.Now,
	}
}

func currentUser(ctx context.Context, op policy.Operation) (*model.User, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	if err := policy.Authorize(user.Role, op); err != nil {
		return nil, err
	}
	return user, nil
}

func (a *accountImpl) checkChemical(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	_, err := a.chemicals.GetChemical(ctx, *id)
	return err
}

func (a *accountImpl) CreateTransaction(ctx context.Context, req *account.TransactionReq) (*model.AccountTransaction, error) {
	user, err := currentUser(ctx, policy.CreateTransaction)
	if err != nil {
		return nil, err
	}
	if !req.TransactionType.Valid() {
		return nil, code.ParamErr.WithMsgf("invalid transaction_type %q", req.TransactionType)
	}
	if req.Amount < 0 {
		return nil, code.ParamErr.WithMsg("amount must not be negative")
	}

	txn := &model.AccountTransaction{
		ChemicalID:      req.ChemicalID,
		TransactionType: req.TransactionType,
		Quantity:        req.Quantity,
		Unit:            req.Unit,
		Amount:          req.Amount,
		Currency:        orDefaultCurrency(req.Currency),
		Supplier:        req.Supplier,
		DeliveryDate:    req.DeliveryDate,
		Status:          model.TransactionPending,
		Notes:           req.Notes,
		CreatedBy:       user.UID,
	}
	entry := &audit.Entry{
		Actor:       user,
		Action:      audit.CreateTransaction,
		Table:       txnTable,
		Description: "Created " + string(req.TransactionType) + " transaction",
	}
	if err := audit.Mutate(ctx, a.tx, a.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		if err := a.checkChemical(txCtx, req.ChemicalID); err != nil {
			return nil, err
		}
		if err := a.accounts.CreateTransaction(txCtx, txn); err != nil {
			return nil, err
		}
		entry.RecordID = txn.ID
		return nil, nil
	}); err != nil {
		return nil, err
	}
	return txn, nil
}

func orDefaultCurrency(c string) string {
	if c = strings.TrimSpace(c); c == "" {
		return model.DefaultCurrency
	}
	return strings.ToUpper(c)
}

func (a *accountImpl) UpdateTransaction(ctx context.Context, req *account.TransactionUpdateReq) (*model.AccountTransaction, error) {
	user, err := currentUser(ctx, policy.UpdateTransaction)
	if err != nil {
		return nil, err
	}
	if req.TransactionType != nil && !req.TransactionType.Valid() {
		return nil, code.ParamErr.WithMsgf("invalid transaction_type %q", *req.TransactionType)
	}

	var txn *model.AccountTransaction
	entry := &audit.Entry{
		Actor:       user,
		Action:      audit.UpdateTransaction,
		Table:       txnTable,
		RecordID:    req.ID,
		Description: "Updated transaction",
		OnlyChanges: true,
	}
	if err := audit.Mutate(ctx, a.tx, a.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		if txn, err = a.accounts.GetTransactionForUpdate(txCtx, req.ID); err != nil {
			return nil, err
		}
		if err := a.checkChemical(txCtx, req.ChemicalID); err != nil {
			return nil, err
		}
		var changes []audit.Change
		if req.TransactionType != nil {
			changes = audit.Diff(changes, "transaction_type", txn.TransactionType, *req.TransactionType)
			txn.TransactionType = *req.TransactionType
		}
		if req.ChemicalID != nil {
			changes = audit.Diff(changes, "chemical_id", txn.ChemicalID, *req.ChemicalID)
			txn.ChemicalID = req.ChemicalID
		}
		if req.Quantity != nil {
			changes = audit.Diff(changes, "quantity", txn.Quantity, *req.Quantity)
			txn.Quantity = req.Quantity
		}
		if req.Unit != nil {
			changes = audit.Diff(changes, "unit", txn.Unit, *req.Unit)
			txn.Unit = req.Unit
		}
		if req.Amount != nil {
			changes = audit.Diff(changes, "amount", txn.Amount, *req.Amount)
			txn.Amount = *req.Amount
		}
		if req.Currency != nil {
			cur := orDefaultCurrency(*req.Currency)
			changes = audit.Diff(changes, "currency", txn.Currency, cur)
			txn.Currency = cur
		}
		if req.Supplier != nil {
			changes = audit.Diff(changes, "supplier", txn.Supplier, *req.Supplier)
			txn.Supplier = req.Supplier
		}
		if req.DeliveryDate != nil {
			changes = audit.Diff(changes, "delivery_date", txn.DeliveryDate, *req.DeliveryDate)
			txn.DeliveryDate = req.DeliveryDate
		}
		if req.Notes != nil {
			changes = audit.Diff(changes, "notes", txn.Notes, *req.Notes)
			txn.Notes = req.Notes
		}
		if len(changes) == 0 {
			return nil, nil
		}
		return changes, a.accounts.SaveTransaction(txCtx, txn)
	}); err != nil {
		return nil, err
	}
	return txn, nil
}

func (a *accountImpl) ApproveTransaction(ctx context.Context, req *account.IDReq) (*model.AccountTransaction, error) {
	return a.transition(ctx, req.ID, model.TransactionCompleted, audit.ApproveTransaction, "approved")
}

func (a *accountImpl) RejectTransaction(ctx context.Context, req *account.IDReq) (*model.AccountTransaction, error) {
	return a.transition(ctx, req.ID, model.TransactionCancelled, audit.RejectTransaction, "rejected")
}

// transition moves a pending transaction to a terminal status. The status
// check and the write are one conditional update, so concurrent approvals
// cannot both succeed.
func (a *accountImpl) transition(ctx context.Context, id int64, to model.TransactionStatus,
	action audit.Action, verb string,
) (*model.AccountTransaction, error) {
	user, err := currentUser(ctx, policy.ApproveTransaction)
	if err != nil {
		return nil, err
	}

	var txn *model.AccountTransaction
	entry := &audit.Entry{
		Actor:       user,
		Action:      action,
		Table:       txnTable,
		RecordID:    id,
		Description: "Transaction " + verb,
	}
	if err := audit.Mutate(ctx, a.tx, a.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		ok, err := a.accounts.TransitionTransaction(txCtx, id, model.TransactionPending, to, user.UID, a.now())
		if err != nil {
			return nil, err
		}
		if txn, err = a.accounts.GetTransaction(txCtx, id); err != nil {
			return nil, err
		}
		if !ok {
			return nil, code.TransactionNotPending.WithMsg("Only pending transactions can be " + verb)
		}
		return []audit.Change{{
			Field: "status",
			Old:   string(model.TransactionPending),
			New:   string(to),
		}}, nil
	}); err != nil {
		return nil, err
	}
	return txn, nil
}

func (a *accountImpl) DeleteTransaction(ctx context.Context, req *account.IDReq) error {
	user, err := currentUser(ctx, policy.DeleteTransaction)
	if err != nil {
		return err
	}
	entry := &audit.Entry{
		Actor:       user,
		Action:      audit.DeleteTransaction,
		Table:       txnTable,
		RecordID:    req.ID,
		Description: "Deleted transaction",
	}
	return audit.Mutate(ctx, a.tx, a.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		return nil, a.accounts.DeleteTransaction(txCtx, req.ID)
	})
}

func (a *accountImpl) GetTransaction(ctx context.Context, req *account.IDReq) (*model.AccountTransaction, error) {
	return a.accounts.GetTransaction(ctx, req.ID)
}

func (a *accountImpl) ListTransactions(ctx context.Context, req *account.TransactionListReq) (*common.PageResp[[]*model.AccountTransaction], error) {
	req.Normalize()
	q := repo.TransactionQuery{
		Type:       req.Type,
		Status:     req.Status,
		ChemicalID: req.ChemicalID,
		Start:      req.StartDate,
		Offset:     req.Skip,
		Limit:      req.Limit,
	}
	if req.EndDate != nil {
		end := req.EndDate.Add(24*time.Hour - time.Nanosecond)
		q.End = &end
	}
	list, total, err := a.accounts.ListTransactions(ctx, q)
	if err != nil {
		return nil, err
	}
	return &common.PageResp[[]*model.AccountTransaction]{Data: list, Total: total, Skip: req.Skip, Limit: req.Limit}, nil
}

func (a *accountImpl) RecentTransactions(ctx context.Context, req *account.RecentReq) ([]*model.AccountTransaction, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultRecent
	}
	limit = min(limit, common.MaxLimit)
	list, _, err := a.accounts.ListTransactions(ctx, repo.TransactionQuery{Limit: limit})
	return list, err
}

func (a *accountImpl) PendingPurchases(ctx context.Context) ([]*model.AccountTransaction, error) {
	typ, status := model.TransactionPurchase, model.TransactionPending
	list, _, err := a.accounts.ListTransactions(ctx, repo.TransactionQuery{
		Type:   &typ,
		Status: &status,
		Limit:  common.MaxLimit,
	})
	return list, err
}

func (a *accountImpl) Summary(ctx context.Context) (*account.SummaryResp, error) {
	now := a.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())

	resp := &account.SummaryResp{Currency: model.DefaultCurrency}
	var err error
	if resp.TotalPurchases, err = a.accounts.SumCompletedPurchases(ctx, nil); err != nil {
		return nil, err
	}
	if resp.SpentThisMonth, err = a.accounts.SumCompletedPurchases(ctx, &monthStart); err != nil {
		return nil, err
	}
	if resp.SpentThisYear, err = a.accounts.SumCompletedPurchases(ctx, &yearStart); err != nil {
		return nil, err
	}
	if resp.TotalTransactions, err = a.accounts.CountTransactions(ctx); err != nil {
		return nil, err
	}
	if resp.PendingOrders, err = a.accounts.CountPurchaseOrders(ctx, model.OrderDraft, model.OrderSubmitted); err != nil {
		return nil, err
	}
	return resp, nil
}

func (a *accountImpl) PurchaseHistory(ctx context.Context, req *account.IDReq) (*account.HistoryResp, error) {
	resp := &account.HistoryResp{ChemicalID: req.ID, Currency: model.DefaultCurrency}
	chemical, err := a.chemicals.GetChemical(ctx, req.ID)
	switch {
	case err == nil:
		resp.ChemicalName = chemical.Name
	case errors.Is(err, code.RecordNotFound):
		resp.ChemicalName = "Unknown Chemical"
	default:
		return nil, err
	}

	list, err := a.accounts.CompletedPurchases(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	resp.Transactions = list
	for _, t := range list {
		if t.Quantity != nil {
			resp.TotalPurchased += *t.Quantity
		}
		resp.TotalSpent += t.Amount
		if resp.LastPurchaseDate == nil || t.CreatedAt.After(*resp.LastPurchaseDate) {
			created := t.CreatedAt
			resp.LastPurchaseDate = &created
		}
	}
	if resp.TotalPurchased > 0 {
		resp.AverageUnitPrice = resp.TotalSpent / resp.TotalPurchased
	}
	return resp, nil
}
