package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/scienceol/chemtrack/pkg/model"
)

func TestStaleTransactionSaveKeepsApproval(t *testing.T) {
	ctx := context.Background()
	s := New()
	txn := &model.AccountTransaction{TransactionType: model.TransactionPurchase, Amount: 12, Status: model.TransactionPending}
	if err := s.CreateTransaction(ctx, txn); err != nil {
		t.Fatalf("create: %v", err)
	}

	stale, _ := s.GetTransaction(ctx, txn.ID)
	ok, err := s.TransitionTransaction(ctx, txn.ID, model.TransactionPending, model.TransactionCompleted, "admin-uid", time.Now())
	if err != nil || !ok {
		t.Fatalf("approve: ok=%v err=%v", ok, err)
	}
	supplier := "Merck"
	stale.Supplier = &supplier
	if err := s.SaveTransaction(ctx, stale); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, _ := s.GetTransaction(ctx, txn.ID)
	if got.Status != model.TransactionCompleted || got.ApprovedBy == nil || *got.ApprovedBy != "admin-uid" || got.ApprovedAt == nil {
		t.Fatalf("stale save reverted approval: %+v", got)
	}
	if got.Supplier == nil || *got.Supplier != supplier {
		t.Fatalf("supplier not saved: %v", got.Supplier)
	}
}

func TestNotesOnlyGrow(t *testing.T) {
	ctx := context.Background()
	s := New()
	item := &model.ChemicalInventory{Name: "Acetone", Unit: "L", Quantity: 3}
	if err := s.CreateChemical(ctx, item); err != nil {
		t.Fatalf("create: %v", err)
	}

	first, _ := s.GetChemical(ctx, item.ID)
	second, _ := s.GetChemical(ctx, item.ID)
	if _, err := s.AppendChemicalNote(ctx, item.ID, "note-1"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := s.AppendChemicalNote(ctx, item.ID, "note-2"); err != nil {
		t.Fatalf("append: %v", err)
	}

	// saves from stale reads must not touch notes
	for _, stale := range []*model.ChemicalInventory{first, second} {
		stale.Quantity = 2
		if err := s.SaveChemical(ctx, stale); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, _ := s.GetChemical(ctx, item.ID)
	if got.Notes == nil || *got.Notes != strings.Join([]string{"note-1", "note-2"}, "\n") {
		t.Fatalf("notes lost: %v", got.Notes)
	}
	if got.Quantity != 2 {
		t.Fatalf("quantity not saved: %v", got.Quantity)
	}
}

func TestExecTxRollsBackNoteAppend(t *testing.T) {
	ctx := context.Background()
	s := New()
	item := &model.ChemicalInventory{Name: "Toluene", Unit: "L", Quantity: 1}
	if err := s.CreateChemical(ctx, item); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := s.ExecTx(ctx, func(txCtx context.Context) error {
		if _, err := s.AppendChemicalNote(txCtx, item.ID, "draft"); err != nil {
			return err
		}
		return context.Canceled
	})
	if err != context.Canceled {
		t.Fatalf("expected the tx error back, got %v", err)
	}
	got, _ := s.GetChemical(ctx, item.ID)
	if got.Notes != nil {
		t.Fatalf("rolled back note survived: %q", *got.Notes)
	}
}
