package inventory

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/inventory"
	"github.com/scienceol/chemtrack/pkg/core/policy"
	"github.com/scienceol/chemtrack/pkg/middleware/auth"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/repo/memory"
	"github.com/scienceol/chemtrack/pkg/repo/store"
)

type fixture struct {
	mem *memory.Store
	svc *inventoryImpl
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := memory.New()
	svc := New(store.FromMemory(m), nil).(*inventoryImpl)
	svc.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	return &fixture{mem: m, svc: svc}
}

func (f *fixture) user(t *testing.T, role common.Role, first string) context.Context {
	t.Helper()
	u := &model.User{
		UID:        first + "-uid",
		Email:      first + "@lab.test",
		FirstName:  first,
		LastName:   "Tester",
		Role:       role,
		IsApproved: true,
	}
	if err := f.mem.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return auth.WithUser(context.Background(), u)
}

func (f *fixture) chemical(t *testing.T, qty float64, threshold *float64) *model.ChemicalInventory {
	t.Helper()
	loc := "Cabinet A"
	item := &model.ChemicalInventory{Name: "Ethanol", Quantity: qty, Unit: "L", Location: &loc, AlertThreshold: threshold}
	if err := f.mem.CreateChemical(context.Background(), item); err != nil {
		t.Fatalf("create chemical: %v", err)
	}
	return item
}

func (f *fixture) logs(t *testing.T) []*model.ActivityLog {
	t.Helper()
	list, _, err := f.mem.ListLogs(context.Background(), repo.ActivityQuery{})
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	return list
}

func ptr[T any](v T) *T { return &v }

func TestCreateChemicalRequiresRole(t *testing.T) {
	f := newFixture(t)
	ctx := f.user(t, common.Account, "ada")

	_, err := f.svc.CreateChemical(ctx, &inventory.CreateReq{Name: "Acetone", Unit: "L", Quantity: 1})
	if code.CodeOf(err) != code.PermissionDenied {
		t.Fatalf("expected permission denied, got %v", err)
	}

	labCtx := f.user(t, common.LabStaff, "lin")
	resp, err := f.svc.CreateChemical(labCtx, &inventory.CreateReq{Name: "Acetone", Unit: "L", Quantity: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.UpdatedBy == nil || *resp.UpdatedBy != "lin-uid" {
		t.Fatalf("updated_by not set: %+v", resp.UpdatedBy)
	}
	if n := len(f.logs(t)); n != 1 {
		t.Fatalf("expected one audit row, got %d", n)
	}
}

func TestAccountUpdateAppliesAllowedFieldsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := f.user(t, common.Account, "ada")
	item := f.chemical(t, 10, nil)

	resp, err := f.svc.UpdateChemical(ctx, &inventory.UpdateReq{
		ID: item.ID,
		InventoryPatch: policy.InventoryPatch{
			Quantity: ptr(4.0),
			Notes:    ptr("recounted"),
			Location: ptr("Freezer 2"),
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !slices.Equal(resp.AppliedFields, []policy.InventoryField{policy.FieldQuantity, policy.FieldNotes}) {
		t.Fatalf("unexpected applied fields %v", resp.AppliedFields)
	}

	stored, _ := f.mem.GetChemical(context.Background(), item.ID)
	if stored.Quantity != 4 || *stored.Location != "Cabinet A" {
		t.Fatalf("unexpected stored item: quantity=%v location=%s", stored.Quantity, *stored.Location)
	}
	if want := "[2024-05-06 07:08:09] ada Tester: recounted"; stored.Notes == nil || *stored.Notes != want {
		t.Fatalf("expected notes %q, got %v", want, stored.Notes)
	}

	logs := f.logs(t)
	if len(logs) != 2 {
		t.Fatalf("expected 2 audit rows, got %d", len(logs))
	}
	fields := []string{*logs[0].FieldModified, *logs[1].FieldModified}
	slices.Sort(fields)
	if !slices.Equal(fields, []string{"notes", "quantity"}) {
		t.Fatalf("unexpected audited fields %v", fields)
	}
}

func TestUpdateWithNoWritableFieldsIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := f.user(t, common.AllUsers, "guest")
	item := f.chemical(t, 10, nil)

	resp, err := f.svc.UpdateChemical(ctx, &inventory.UpdateReq{
		ID:             item.ID,
		InventoryPatch: policy.InventoryPatch{Quantity: ptr(1.0)},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(resp.AppliedFields) != 0 || resp.Quantity != 10 {
		t.Fatalf("all_users changed the item: %+v", resp)
	}
	if n := len(f.logs(t)); n != 0 {
		t.Fatalf("expected no audit rows, got %d", n)
	}
}

func TestLabStaffCannotDelete(t *testing.T) {
	f := newFixture(t)
	ctx := f.user(t, common.LabStaff, "lin")
	item := f.chemical(t, 10, nil)

	err := f.svc.DeleteChemical(ctx, &inventory.IDReq{ID: item.ID})
	if code.CodeOf(err) != code.PermissionDenied || code.PermissionDenied.HTTPStatus() != 403 {
		t.Fatalf("expected 403, got %v", err)
	}
	if _, err := f.mem.GetChemical(context.Background(), item.ID); err != nil {
		t.Fatalf("item should remain: %v", err)
	}
	if n := len(f.logs(t)); n != 0 {
		t.Fatalf("expected no audit rows, got %d", n)
	}

	adminCtx := f.user(t, common.Admin, "root")
	if err := f.svc.DeleteChemical(adminCtx, &inventory.IDReq{ID: item.ID}); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	logs := f.logs(t)
	if len(logs) != 1 || logs[0].Description != "Deleted chemical inventory item: Ethanol" {
		t.Fatalf("unexpected delete audit rows %+v", logs)
	}
}

func TestNotesAreAppended(t *testing.T) {
	f := newFixture(t)
	ctx := f.user(t, common.LabStaff, "lin")
	item := f.chemical(t, 10, nil)

	if _, err := f.svc.AddNote(ctx, &inventory.NoteReq{ID: item.ID, Note: "opened new bottle"}); err != nil {
		t.Fatalf("first note: %v", err)
	}
	resp, err := f.svc.AddNote(ctx, &inventory.NoteReq{ID: item.ID, Note: "moved to shelf 3"})
	if err != nil {
		t.Fatalf("second note: %v", err)
	}
	notes := *resp.Notes
	if !strings.Contains(notes, "lin Tester: opened new bottle") || !strings.HasSuffix(notes, "lin Tester: moved to shelf 3") {
		t.Fatalf("unexpected notes %q", notes)
	}
	if lines := strings.Split(notes, "\n"); len(lines) != 2 {
		t.Fatalf("expected two note lines, got %d", len(lines))
	}

	if _, err := f.svc.AddNote(ctx, &inventory.NoteReq{ID: item.ID, Note: "   "}); code.CodeOf(err) != code.ParamErr {
		t.Fatalf("blank note should be rejected, got %v", err)
	}
}

func TestLowStockAlertIsRaisedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := f.user(t, common.LabStaff, "lin")
	item := f.chemical(t, 10, ptr(5.0))

	for _, qty := range []float64{3, 2} {
		if _, err := f.svc.UpdateChemical(ctx, &inventory.UpdateReq{
			ID:             item.ID,
			InventoryPatch: policy.InventoryPatch{Quantity: ptr(qty)},
		}); err != nil {
			t.Fatalf("update to %v: %v", qty, err)
		}
	}
	alerts, _, err := f.mem.ListAlerts(context.Background(), repo.AlertQuery{ChemicalID: &item.ID})
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Type != model.AlertLowStock || alerts[0].Severity != model.SeverityWarning {
		t.Fatalf("expected a single low stock alert, got %+v", alerts)
	}

	if _, err := f.svc.UpdateChemical(ctx, &inventory.UpdateReq{
		ID:             item.ID,
		InventoryPatch: policy.InventoryPatch{Quantity: ptr(0.0)},
	}); err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	typ := model.AlertOutOfStock
	out, _, _ := f.mem.ListAlerts(context.Background(), repo.AlertQuery{ChemicalID: &item.ID, Type: &typ})
	if len(out) != 1 || out[0].Severity != model.SeverityCritical {
		t.Fatalf("expected an out of stock alert, got %+v", out)
	}
}

// racingRepo commits another user's note between the service's read and its write.
type racingRepo struct {
	repo.InventoryRepo
	line string
}

func (r *racingRepo) GetChemicalForUpdate(ctx context.Context, id int64) (*model.ChemicalInventory, error) {
	stale, err := r.InventoryRepo.GetChemicalForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.InventoryRepo.AppendChemicalNote(ctx, id, r.line); err != nil {
		return nil, err
	}
	return stale, nil
}

func TestInterleavedNotesAreKept(t *testing.T) {
	f := newFixture(t)
	ctx := f.user(t, common.LabStaff, "lin")
	item := f.chemical(t, 10, nil)
	f.svc.items = &racingRepo{InventoryRepo: f.mem, line: "other bench note"}

	if _, err := f.svc.AddNote(ctx, &inventory.NoteReq{ID: item.ID, Note: "opened new bottle"}); err != nil {
		t.Fatalf("add note: %v", err)
	}
	if _, err := f.svc.UpdateChemical(ctx, &inventory.UpdateReq{
		ID:             item.ID,
		InventoryPatch: policy.InventoryPatch{Quantity: ptr(7.0), Notes: ptr("recounted")},
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, _ := f.mem.GetChemical(context.Background(), item.ID)
	lines := strings.Split(*stored.Notes, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 note lines, got %q", *stored.Notes)
	}
	for idx, want := range []string{"other bench note", "opened new bottle", "other bench note", "recounted"} {
		if !strings.HasSuffix(lines[idx], want) {
			t.Fatalf("line %d = %q, want suffix %q", idx, lines[idx], want)
		}
	}
	if stored.Quantity != 7 {
		t.Fatalf("quantity not saved: %v", stored.Quantity)
	}
}

func TestBlankNoteIsNotApplied(t *testing.T) {
	f := newFixture(t)
	ctx := f.user(t, common.LabStaff, "lin")
	item := f.chemical(t, 10, nil)

	resp, err := f.svc.UpdateChemical(ctx, &inventory.UpdateReq{
		ID:             item.ID,
		InventoryPatch: policy.InventoryPatch{Quantity: ptr(8.0), Notes: ptr("   ")},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !slices.Equal(resp.AppliedFields, []policy.InventoryField{policy.FieldQuantity}) {
		t.Fatalf("unexpected applied fields %v", resp.AppliedFields)
	}
	if resp.Notes != nil {
		t.Fatalf("blank note was stored: %q", *resp.Notes)
	}

	resp, err = f.svc.UpdateChemical(ctx, &inventory.UpdateReq{
		ID:             item.ID,
		InventoryPatch: policy.InventoryPatch{Notes: ptr("\t")},
	})
	if err != nil || len(resp.AppliedFields) != 0 {
		t.Fatalf("blank-only patch should be a no-op, got %v %v", resp, err)
	}
	if n := len(f.logs(t)); n != 1 {
		t.Fatalf("expected only the quantity row, got %d", n)
	}
}
