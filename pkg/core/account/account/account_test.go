package account

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/account"
	"github.com/scienceol/chemtrack/pkg/middleware/auth"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/repo/memory"
	"github.com/scienceol/chemtrack/pkg/repo/store"
)

func setup(t *testing.T) (*memory.Store, account.Service) {
	t.Helper()
	m := memory.New()
	return m, New(store.FromMemory(m))
}

func login(t *testing.T, m *memory.Store, role common.Role) context.Context {
	t.Helper()
	u := &model.User{UID: string(role) + "-uid", Email: string(role) + "@lab.test", FirstName: string(role), Role: role, IsApproved: true}
	if err := m.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return auth.WithUser(context.Background(), u)
}

func purchase(amount float64) *account.TransactionReq {
	return &account.TransactionReq{TransactionType: model.TransactionPurchase, Amount: amount}
}

func TestCreateTransactionStartsPending(t *testing.T) {
	m, svc := setup(t)
	ctx := login(t, m, common.Account)

	txn, err := svc.CreateTransaction(ctx, &account.TransactionReq{
		TransactionType: model.TransactionPurchase,
		Amount:          120,
		Currency:        "usd",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if txn.Status != model.TransactionPending || txn.Currency != "USD" || txn.CreatedBy != "account-uid" {
		t.Fatalf("unexpected transaction %+v", txn)
	}

	if _, err := svc.CreateTransaction(ctx, &account.TransactionReq{TransactionType: "gift", Amount: 1}); code.CodeOf(err) != code.ParamErr {
		t.Fatalf("expected invalid type error, got %v", err)
	}

	missing := int64(999)
	req := purchase(5)
	req.ChemicalID = &missing
	if _, err := svc.CreateTransaction(ctx, req); code.CodeOf(err) != code.RecordNotFound {
		t.Fatalf("expected missing chemical error, got %v", err)
	}

	labCtx := login(t, m, common.LabStaff)
	if _, err := svc.CreateTransaction(labCtx, purchase(5)); code.CodeOf(err) != code.PermissionDenied {
		t.Fatalf("lab_staff should be denied, got %v", err)
	}
}

func TestApproveTwiceConflicts(t *testing.T) {
	m, svc := setup(t)
	accCtx := login(t, m, common.Account)
	adminCtx := login(t, m, common.Admin)

	txn, err := svc.CreateTransaction(accCtx, purchase(50))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.ApproveTransaction(accCtx, &account.IDReq{ID: txn.ID}); code.CodeOf(err) != code.PermissionDenied {
		t.Fatalf("account role must not approve, got %v", err)
	}

	approved, err := svc.ApproveTransaction(adminCtx, &account.IDReq{ID: txn.ID})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != model.TransactionCompleted || approved.ApprovedBy == nil || *approved.ApprovedBy != "admin-uid" {
		t.Fatalf("unexpected approved transaction %+v", approved)
	}

	_, err = svc.ApproveTransaction(adminCtx, &account.IDReq{ID: txn.ID})
	if code.CodeOf(err) != code.TransactionNotPending || code.TransactionNotPending.HTTPStatus() != 400 {
		t.Fatalf("expected conflict, got %v", err)
	}
	_, err = svc.RejectTransaction(adminCtx, &account.IDReq{ID: txn.ID})
	if code.CodeOf(err) != code.TransactionNotPending {
		t.Fatalf("reject after approve should conflict, got %v", err)
	}

	stored, _ := m.GetTransaction(context.Background(), txn.ID)
	if stored.Status != model.TransactionCompleted {
		t.Fatalf("status changed to %s", stored.Status)
	}

	action := "approve_transaction"
	_, n, _ := m.ListLogs(context.Background(), repo.ActivityQuery{Action: &action})
	if n != 1 {
		t.Fatalf("expected one approval row, got %d", n)
	}
}

func TestConcurrentApprovalsOnlyOneWins(t *testing.T) {
	m, svc := setup(t)
	accCtx := login(t, m, common.Account)
	adminCtx := login(t, m, common.Admin)
	txn, err := svc.CreateTransaction(accCtx, purchase(10))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ApproveTransaction(adminCtx, &account.IDReq{ID: txn.ID}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if succeeded != 1 {
		t.Fatalf("expected exactly one approval, got %d", succeeded)
	}
}

func TestSummaryCountsCompletedPurchasesOnly(t *testing.T) {
	m, svc := setup(t)
	accCtx := login(t, m, common.Account)
	adminCtx := login(t, m, common.Admin)

	approve := func(amount float64) {
		txn, err := svc.CreateTransaction(accCtx, purchase(amount))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := svc.ApproveTransaction(adminCtx, &account.IDReq{ID: txn.ID}); err != nil {
			t.Fatalf("approve: %v", err)
		}
	}
	approve(100)
	approve(50)

	if _, err := svc.CreateTransaction(accCtx, purchase(999)); err != nil {
		t.Fatalf("create pending: %v", err)
	}
	rejected, _ := svc.CreateTransaction(accCtx, purchase(777))
	if _, err := svc.RejectTransaction(adminCtx, &account.IDReq{ID: rejected.ID}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	sale, _ := svc.CreateTransaction(accCtx, &account.TransactionReq{TransactionType: model.TransactionSale, Amount: 300})
	if _, err := svc.ApproveTransaction(adminCtx, &account.IDReq{ID: sale.ID}); err != nil {
		t.Fatalf("approve sale: %v", err)
	}

	sum, err := svc.Summary(accCtx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.TotalPurchases != 150 || sum.SpentThisMonth != 150 || sum.SpentThisYear != 150 {
		t.Fatalf("unexpected spend %+v", sum)
	}
	if sum.TotalTransactions != 5 {
		t.Fatalf("expected 5 transactions, got %d", sum.TotalTransactions)
	}
}

func TestPurchaseOrderIsAtomic(t *testing.T) {
	m, svc := setup(t)
	ctx := login(t, m, common.Account)

	bad := &account.PurchaseOrderReq{
		Supplier: "Sigma",
		Items: []*account.PurchaseOrderItemReq{
			{Quantity: 2, Unit: "L", UnitPrice: 10},
			{Quantity: 0, Unit: "L", UnitPrice: 10},
			{Quantity: 1, Unit: "kg", UnitPrice: 5},
		},
	}
	_, err := svc.CreatePurchaseOrder(ctx, bad)
	if code.CodeOf(err) != code.ParamErr || !strings.Contains(err.Error(), "item 2") {
		t.Fatalf("expected item 2 validation error, got %v", err)
	}
	if _, n, _ := m.ListPurchaseOrders(context.Background(), repo.PurchaseOrderQuery{}); n != 0 {
		t.Fatalf("expected no orders after rollback, got %d", n)
	}
	if _, n, _ := m.ListLogs(context.Background(), repo.ActivityQuery{}); n != 0 {
		t.Fatalf("expected no audit rows after rollback, got %d", n)
	}

	bad.Items[1].Quantity = 3
	order, err := svc.CreatePurchaseOrder(ctx, bad)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Status != model.OrderDraft || !strings.HasPrefix(order.OrderNumber, "PO-") {
		t.Fatalf("unexpected order header %+v", order)
	}
	if order.TotalAmount != 55 {
		t.Fatalf("expected total 55, got %v", order.TotalAmount)
	}

	stored, err := m.GetPurchaseOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(stored.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(stored.Items))
	}
}

// approvingRepo commits an approval between the update's read and its write.
type approvingRepo struct {
	repo.AccountRepo
	by string
}

func (r *approvingRepo) GetTransactionForUpdate(ctx context.Context, id int64) (*model.AccountTransaction, error) {
	stale, err := r.AccountRepo.GetTransactionForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.AccountRepo.TransitionTransaction(ctx, id, model.TransactionPending, model.TransactionCompleted, r.by, time.Now()); err != nil {
		return nil, err
	}
	return stale, nil
}

func TestUpdateCannotRevertApproval(t *testing.T) {
	m := memory.New()
	st := store.FromMemory(m)
	accCtx := login(t, m, common.Account)

	txn, err := New(st).CreateTransaction(accCtx, purchase(40))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	st.Account = &approvingRepo{AccountRepo: m, by: "admin-uid"}
	supplier := "Fisher"
	if _, err := New(st).UpdateTransaction(accCtx, &account.TransactionUpdateReq{ID: txn.ID, Supplier: &supplier}); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, _ := m.GetTransaction(context.Background(), txn.ID)
	if stored.Status != model.TransactionCompleted || stored.ApprovedBy == nil || *stored.ApprovedBy != "admin-uid" {
		t.Fatalf("approval was undone: status=%s approved_by=%v", stored.Status, stored.ApprovedBy)
	}
	if stored.Supplier == nil || *stored.Supplier != supplier {
		t.Fatalf("update lost: %+v", stored.Supplier)
	}
}
