package policy

import (
	"slices"
	"testing"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
)

func TestResolveWritableFields(t *testing.T) {
	requested := []InventoryField{FieldName, FieldQuantity, FieldNotes, FieldLocation, FieldExpiryDate}
	cases := []struct {
		role common.Role
		want []InventoryField
	}{
		{common.Admin, requested},
		{common.LabStaff, []InventoryField{FieldQuantity, FieldNotes, FieldLocation}},
		{common.Product, []InventoryField{FieldQuantity, FieldNotes, FieldLocation}},
		{common.Account, []InventoryField{FieldQuantity, FieldNotes}},
		{common.AllUsers, []InventoryField{}},
		{common.Role("janitor"), []InventoryField{}},
	}
	for _, tc := range cases {
		got := ResolveWritableFields(tc.role, requested)
		if !slices.Equal(got, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.role, tc.want, got)
		}
	}
}

func TestResolveWritableFieldsDropsDuplicates(t *testing.T) {
	got := ResolveWritableFields(common.Account, []InventoryField{FieldNotes, FieldNotes, FieldQuantity})
	if !slices.Equal(got, []InventoryField{FieldNotes, FieldQuantity}) {
		t.Fatalf("unexpected fields %v", got)
	}
}

func TestMaskClearsForbiddenFields(t *testing.T) {
	qty, notes, loc, name := 4.0, "recount", "shelf B", "Ethanol"
	patch := InventoryPatch{Quantity: &qty, Notes: &notes, Location: &loc, Name: &name}

	masked := patch.Mask(common.Account)
	if masked.Location != nil || masked.Name != nil {
		t.Fatalf("account kept forbidden fields: %+v", masked)
	}
	if masked.Quantity == nil || *masked.Quantity != qty || masked.Notes == nil {
		t.Fatalf("account lost allowed fields: %+v", masked)
	}
	if patch.Location == nil {
		t.Fatal("mask must not modify the receiver")
	}

	if got := patch.Mask(common.AllUsers).Fields(); len(got) != 0 {
		t.Fatalf("all_users should write nothing, got %v", got)
	}
	if got := patch.Mask(common.Admin).Fields(); len(got) != 4 {
		t.Fatalf("admin should keep all four fields, got %v", got)
	}
}

func TestAllowed(t *testing.T) {
	for _, op := range Operations {
		if !Allowed(common.Admin, op) {
			t.Fatalf("admin denied %s", op)
		}
		if Allowed(common.AllUsers, op) {
			t.Fatalf("all_users allowed %s", op)
		}
		if Allowed(common.Role(""), op) {
			t.Fatalf("empty role allowed %s", op)
		}
	}

	cases := []struct {
		role common.Role
		op   Operation
		want bool
	}{
		{common.LabStaff, CreateInventory, true},
		{common.LabStaff, DeleteInventory, false},
		{common.Product, CreateInventory, true},
		{common.Product, CreateTransaction, false},
		{common.Account, CreateTransaction, true},
		{common.Account, UpdatePurchaseOrder, true},
		{common.Account, ApproveTransaction, false},
		{common.Account, DeleteTransaction, false},
		{common.Account, CreateInventory, false},
		{common.LabStaff, ViewActivity, false},
	}
	for _, tc := range cases {
		if got := Allowed(tc.role, tc.op); got != tc.want {
			t.Fatalf("Allowed(%s, %s) = %v, want %v", tc.role, tc.op, got, tc.want)
		}
	}
}

func TestAuthorize(t *testing.T) {
	err := Authorize(common.LabStaff, DeleteInventory)
	if code.CodeOf(err) != code.PermissionDenied {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if err.Error() != `role "lab_staff" is not allowed to delete chemicals` {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if err := Authorize(common.Account, CreateTransaction); err != nil {
		t.Fatalf("unexpected err %v", err)
	}
}

func TestDashboardPermissions(t *testing.T) {
	if len(DashboardPermissions(common.Admin)) == 0 {
		t.Fatal("admin dashboard should list permissions")
	}
	if got := DashboardPermissions(common.Role("ghost")); len(got) != 0 {
		t.Fatalf("unknown role got %v", got)
	}
}
