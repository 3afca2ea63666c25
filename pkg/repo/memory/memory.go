// Package memory is a process-local implementation of every repository
// interface. Transactions are serialized and rolled back by restoring a
// snapshot, which is enough for tests and single-node local runs.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/model"
)

type txKey struct{}

type state struct {
	seq           int64
	users         map[int64]model.User
	invitations   map[int64]model.Invitation
	chemicals     map[int64]model.ChemicalInventory
	transactions  map[int64]model.AccountTransaction
	orders        map[int64]model.PurchaseOrder
	orderItems    map[int64]model.PurchaseOrderItem
	notifications map[int64]model.Notification
	alerts        map[int64]model.Alert
	logs          map[int64]model.ActivityLog
}

func newState() state {
	return state{
		users:         map[int64]model.User{},
		invitations:   map[int64]model.Invitation{},
		chemicals:     map[int64]model.ChemicalInventory{},
		transactions:  map[int64]model.AccountTransaction{},
		orders:        map[int64]model.PurchaseOrder{},
		orderItems:    map[int64]model.PurchaseOrderItem{},
		notifications: map[int64]model.Notification{},
		alerts:        map[int64]model.Alert{},
		logs:          map[int64]model.ActivityLog{},
	}
}

func (s state) clone() state {
	return state{
		seq:           s.seq,
		users:         maps.Clone(s.users),
		invitations:   maps.Clone(s.invitations),
		chemicals:     maps.Clone(s.chemicals),
		transactions:  maps.Clone(s.transactions),
		orders:        maps.Clone(s.orders),
		orderItems:    maps.Clone(s.orderItems),
		notifications: maps.Clone(s.notifications),
		alerts:        maps.Clone(s.alerts),
		logs:          maps.Clone(s.logs),
	}
}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   state

	// LogWriteErr, when set, fails every CreateLogs call.
	LogWriteErr error
}

var (
	shared     *Store
	sharedOnce sync.Once
)

func New() *Store {
	return &Store{st: newState()}
}

// Shared returns the process wide store used when STORE_DRIVER=memory.
func Shared() *Store {
	sharedOnce.Do(func() { shared = New() })
	return shared
}

func (s *Store) nextID() int64 {
	s.st.seq++
	return s.st.seq
}

func (s *Store) ExecTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// page sorts rows newest first and applies offset/limit; total is pre-paging.
func page[T any](rows map[int64]T, keep func(*T) bool, created func(*T) (time.Time, int64), offset, limit int) ([]*T, int64) {
	list := make([]*T, 0, len(rows))
	for _, r := range rows {
		if keep == nil || keep(&r) {
			list = append(list, &r)
		}
	}
	slices.SortFunc(list, func(a, b *T) int {
		ta, ia := created(a)
		tb, ib := created(b)
		if c := tb.Compare(ta); c != 0 {
			return c
		}
		return cmp.Compare(ib, ia)
	})
	total := int64(len(list))
	if offset >= len(list) {
		return []*T{}, total
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, total
}

func notFound(what string) error {
	return code.RecordNotFound.WithMsg(what + " not found")
}

func eq[T comparable](filter *T, v T) bool {
	return filter == nil || *filter == v
}

func eqPtr[T comparable](filter *T, v *T) bool {
	if filter == nil {
		return true
	}
	return v != nil && *v == *filter
}
