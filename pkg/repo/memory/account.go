package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
)

func (s *Store) CreateTransaction(_ context.Context, txn *model.AccountTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn.ID = s.nextID()
	txn.Touch()
	s.st.transactions[txn.ID] = *txn
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (*model.AccountTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.st.transactions[id]
	if !ok {
		return nil, notFound("Transaction")
	}
	return &t, nil
}

func (s *Store) GetTransactionForUpdate(ctx context.Context, id int64) (*model.AccountTransaction, error) {
	return s.GetTransaction(ctx, id)
}

func (s *Store) SaveTransaction(_ context.Context, txn *model.AccountTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.st.transactions[txn.ID]
	if !ok {
		return notFound("Transaction")
	}
	txn.UUID, txn.CreatedAt, txn.UpdatedAt = old.UUID, old.CreatedAt, time.Now()
	txn.Status, txn.ApprovedBy, txn.ApprovedAt = old.Status, old.ApprovedBy, old.ApprovedAt
	s.st.transactions[txn.ID] = *txn
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.transactions[id]; !ok {
		return notFound("Transaction")
	}
	delete(s.st.transactions, id)
	return nil
}

func (s *Store) ListTransactions(_ context.Context, q repo.TransactionQuery) ([]*model.AccountTransaction, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, total := page(s.st.transactions, func(t *model.AccountTransaction) bool {
		if !eq(q.Type, t.TransactionType) || !eq(q.Status, t.Status) || !eqPtr(q.ChemicalID, t.ChemicalID) {
			return false
		}
		if q.Start != nil && t.CreatedAt.Before(*q.Start) {
			return false
		}
		return q.End == nil || !t.CreatedAt.After(*q.End)
	}, func(t *model.AccountTransaction) (time.Time, int64) { return t.CreatedAt, t.ID }, q.Offset, q.Limit)
	return list, total, nil
}

func (s *Store) TransitionTransaction(_ context.Context, id int64, from, to model.TransactionStatus, by string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.st.transactions[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status, t.ApprovedBy, t.ApprovedAt, t.UpdatedAt = to, &by, &at, at
	s.st.transactions[id] = t
	return true, nil
}

func completedPurchase(t *model.AccountTransaction) bool {
	return t.TransactionType == model.TransactionPurchase && t.Status == model.TransactionCompleted
}

func (s *Store) SumCompletedPurchases(_ context.Context, since *time.Time) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum float64
	for _, t := range s.st.transactions {
		if completedPurchase(&t) && (since == nil || !t.CreatedAt.Before(*since)) {
			sum += t.Amount
		}
	}
	return sum, nil
}

func (s *Store) CountTransactions(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.st.transactions)), nil
}

func (s *Store) CompletedPurchases(_ context.Context, chemicalID int64) ([]*model.AccountTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, _ := page(s.st.transactions, func(t *model.AccountTransaction) bool {
		return completedPurchase(t) && t.ChemicalID != nil && *t.ChemicalID == chemicalID
	}, func(t *model.AccountTransaction) (time.Time, int64) { return t.CreatedAt, t.ID }, 0, 0)
	return list, nil
}

func (s *Store) CreatePurchaseOrder(_ context.Context, order *model.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.st.orders {
		if o.OrderNumber == order.OrderNumber {
			return code.OrderNumberConflict.WithMsgf("order number %s already exists", order.OrderNumber)
		}
	}
	order.ID = s.nextID()
	order.Touch()
	row := *order
	row.Items = nil
	s.st.orders[order.ID] = row
	return nil
}

func (s *Store) CreatePurchaseOrderItem(_ context.Context, item *model.PurchaseOrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.orders[item.PurchaseOrderID]; !ok {
		return code.CreateDataErr.WithMsg("purchase order does not exist")
	}
	if item.Quantity <= 0 {
		return code.CreateDataErr.WithMsg("item quantity must be positive")
	}
	item.ID = s.nextID()
	item.Touch()
	s.st.orderItems[item.ID] = *item
	return nil
}

// itemsOf must be called with mu held.
func (s *Store) itemsOf(orderID int64) []*model.PurchaseOrderItem {
	items := make([]*model.PurchaseOrderItem, 0)
	for _, it := range s.st.orderItems {
		if it.PurchaseOrderID == orderID {
			items = append(items, &it)
		}
	}
	slices.SortFunc(items, func(a, b *model.PurchaseOrderItem) int { return cmp.Compare(a.ID, b.ID) })
	return items
}

func (s *Store) GetPurchaseOrder(_ context.Context, id int64) (*model.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.orders[id]
	if !ok {
		return nil, notFound("Purchase order")
	}
	o.Items = s.itemsOf(id)
	return &o, nil
}

func (s *Store) SavePurchaseOrder(_ context.Context, order *model.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.st.orders[order.ID]
	if !ok {
		return notFound("Purchase order")
	}
	row := *order
	row.UUID, row.CreatedAt, row.UpdatedAt = old.UUID, old.CreatedAt, time.Now()
	row.Items = nil
	s.st.orders[order.ID] = row
	order.UpdatedAt = row.UpdatedAt
	return nil
}

func (s *Store) DeletePurchaseOrder(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.orders[id]; !ok {
		return notFound("Purchase order")
	}
	for itemID, it := range s.st.orderItems {
		if it.PurchaseOrderID == id {
			delete(s.st.orderItems, itemID)
		}
	}
	delete(s.st.orders, id)
	return nil
}

func (s *Store) ListPurchaseOrders(_ context.Context, q repo.PurchaseOrderQuery) ([]*model.PurchaseOrder, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, total := page(s.st.orders, func(o *model.PurchaseOrder) bool {
		if !eq(q.Status, o.Status) {
			return false
		}
		return q.Supplier == nil || *q.Supplier == "" ||
			strings.Contains(strings.ToLower(o.Supplier), strings.ToLower(*q.Supplier))
	}, func(o *model.PurchaseOrder) (time.Time, int64) { return o.CreatedAt, o.ID }, q.Offset, q.Limit)
	for _, o := range list {
		o.Items = s.itemsOf(o.ID)
	}
	return list, total, nil
}

func (s *Store) CountPurchaseOrders(_ context.Context, statuses ...model.PurchaseOrderStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, o := range s.st.orders {
		if len(statuses) == 0 || slices.Contains(statuses, o.Status) {
			n++
		}
	}
	return n, nil
}
