package activity

import (
	"context"
	"testing"
	"time"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/activity"
	"github.com/scienceol/chemtrack/pkg/middleware/auth"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/repo/memory"
	"github.com/scienceol/chemtrack/pkg/repo/store"
)

func seed(t *testing.T) (*memory.Store, activity.Service, *model.User, *model.User) {
	t.Helper()
	m := memory.New()
	admin := &model.User{UID: "admin", Email: "admin@lab.test", Role: common.Admin, IsApproved: true}
	lab := &model.User{UID: "lab", Email: "lab@lab.test", Role: common.LabStaff, IsApproved: true}
	for _, u := range []*model.User{admin, lab} {
		if err := m.CreateUser(context.Background(), u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	day := func(d int) time.Time { return time.Date(2024, 4, d, 15, 0, 0, 0, time.UTC) }
	logs := []*model.ActivityLog{
		{UserID: &admin.ID, Action: "login", Description: "admin in", Timestamp: day(1)},
		{UserID: &lab.ID, Action: "create_chemical_inventory", Description: "lab add", Timestamp: day(2)},
		{UserID: &lab.ID, Action: "login", Description: "lab in", Timestamp: day(3)},
	}
	if err := m.CreateLogs(context.Background(), logs); err != nil {
		t.Fatalf("create logs: %v", err)
	}
	return m, New(store.FromMemory(m)), admin, lab
}

func TestListActivityIsAdminOnly(t *testing.T) {
	_, svc, admin, lab := seed(t)

	if _, err := svc.ListActivity(auth.WithUser(context.Background(), lab), &activity.ListReq{}); code.CodeOf(err) != code.PermissionDenied {
		t.Fatalf("lab_staff should be denied, got %v", err)
	}

	end := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	page, err := svc.ListActivity(auth.WithUser(context.Background(), admin), &activity.ListReq{EndDate: &end})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("end date should include its whole day, got %d rows", page.Total)
	}

	action := "login"
	page, _ = svc.ListActivity(auth.WithUser(context.Background(), admin), &activity.ListReq{Action: &action, UserID: &lab.ID})
	if page.Total != 1 || page.Data[0].Description != "lab in" {
		t.Fatalf("unexpected filtered rows %+v", page.Data)
	}
}

func TestGetActivityOwnerOrAdmin(t *testing.T) {
	m, svc, admin, lab := seed(t)
	adminRow, _, _ := m.ListLogs(context.Background(), activityQueryFor(admin.ID))
	labRows, _, _ := m.ListLogs(context.Background(), activityQueryFor(lab.ID))

	labCtx := auth.WithUser(context.Background(), lab)
	if _, err := svc.GetActivity(labCtx, &activity.IDReq{ID: labRows[0].ID}); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if _, err := svc.GetActivity(labCtx, &activity.IDReq{ID: adminRow[0].ID}); code.CodeOf(err) != code.RecordNotFound {
		t.Fatalf("foreign row should be hidden, got %v", err)
	}
	if _, err := svc.GetActivity(auth.WithUser(context.Background(), admin), &activity.IDReq{ID: labRows[0].ID}); err != nil {
		t.Fatalf("admin read: %v", err)
	}
}

func TestSetNote(t *testing.T) {
	m, svc, admin, lab := seed(t)
	rows, _, _ := m.ListLogs(context.Background(), activityQueryFor(lab.ID))

	if _, err := svc.SetNote(auth.WithUser(context.Background(), lab), &activity.NoteReq{ID: rows[0].ID, Note: "mine"}); code.CodeOf(err) != code.PermissionDenied {
		t.Fatalf("lab_staff should be denied, got %v", err)
	}
	adminCtx := auth.WithUser(context.Background(), admin)
	if _, err := svc.SetNote(adminCtx, &activity.NoteReq{ID: rows[0].ID, Note: " "}); code.CodeOf(err) != code.ParamErr {
		t.Fatalf("blank note should be rejected, got %v", err)
	}
	row, err := svc.SetNote(adminCtx, &activity.NoteReq{ID: rows[0].ID, Note: "verified with supplier"})
	if err != nil {
		t.Fatalf("set note: %v", err)
	}
	if row.Note == nil || *row.Note != "verified with supplier" {
		t.Fatalf("note not stored: %+v", row)
	}
}

func activityQueryFor(uid int64) repo.ActivityQuery {
	return repo.ActivityQuery{UserID: &uid}
}
