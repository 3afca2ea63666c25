package notification

import (
	"context"
	"testing"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/notification"
	"github.com/scienceol/chemtrack/pkg/middleware/auth"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/repo/memory"
	"github.com/scienceol/chemtrack/pkg/repo/store"
)

type env struct {
	mem *memory.Store
	svc notification.Service
}

func newEnv() *env {
	m := memory.New()
	return &env{mem: m, svc: New(store.FromMemory(m), nil)}
}

func (e *env) as(t *testing.T, role common.Role) context.Context {
	t.Helper()
	u := &model.User{UID: string(role), Email: string(role) + "@lab.test", FirstName: "Pat", LastName: string(role), Role: role, IsApproved: true}
	if err := e.mem.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return auth.WithUser(context.Background(), u)
}

func (e *env) create(t *testing.T, ctx context.Context, msg string, recipients ...common.Role) *notification.NotificationResp {
	t.Helper()
	resp, err := e.svc.CreateNotification(ctx, &notification.CreateReq{
		Type:       "info",
		Severity:   "low",
		Message:    msg,
		Recipients: recipients,
	})
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}
	return resp
}

func TestCreateAppliesDefaults(t *testing.T) {
	e := newEnv()
	ctx := e.as(t, common.LabStaff)

	resp := e.create(t, ctx, "Fume hood 2 serviced")
	if resp.Category != model.CategoryGeneral || resp.Priority != model.PriorityMid || resp.Status != model.NotificationPending {
		t.Fatalf("defaults not applied: %+v", resp.Notification)
	}
	if len(resp.Recipients) != 2 || !resp.HasRecipient(common.Admin) || !resp.HasRecipient(common.Product) {
		t.Fatalf("unexpected default recipients %v", resp.Recipients)
	}
	if resp.CreatorName != "Pat lab_staff" || *resp.CreatedBy != "lab_staff" {
		t.Fatalf("unexpected creator %q", resp.CreatorName)
	}

	_, err := e.svc.CreateNotification(ctx, &notification.CreateReq{
		Type: "info", Severity: "low", Message: "x", Recipients: []common.Role{"visitor"},
	})
	if code.CodeOf(err) != code.ParamErr {
		t.Fatalf("expected invalid recipient error, got %v", err)
	}
}

func TestSendNotificationFansOutPerRole(t *testing.T) {
	e := newEnv()
	ctx := e.as(t, common.Admin)

	list, err := e.svc.SendNotification(ctx, &notification.CreateReq{
		Type:       "info",
		Severity:   "low",
		Message:    "Quarterly stock take",
		Recipients: []common.Role{common.LabStaff, common.Account, common.LabStaff},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected one notification per unique role, got %d", len(list))
	}
	for _, n := range list {
		if len(n.Recipients) != 1 {
			t.Fatalf("expected a single recipient, got %v", n.Recipients)
		}
	}
}

func TestListingsAreFilteredByRole(t *testing.T) {
	e := newEnv()
	adminCtx := e.as(t, common.Admin)
	labCtx := e.as(t, common.LabStaff)
	accCtx := e.as(t, common.Account)

	forLab := e.create(t, adminCtx, "lab only", common.LabStaff)
	e.create(t, adminCtx, "accounts only", common.Account)
	e.create(t, adminCtx, "both", common.LabStaff, common.Account)

	page, err := e.svc.ListNotifications(labCtx, &notification.ListReq{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("lab_staff should see 2 notifications, got %d", page.Total)
	}
	for _, n := range page.Data {
		if !n.HasRecipient(common.LabStaff) {
			t.Fatalf("lab_staff saw %q", n.Message)
		}
	}

	all, _ := e.svc.ListNotifications(adminCtx, &notification.ListReq{})
	if all.Total != 3 {
		t.Fatalf("admin should see every notification, got %d", all.Total)
	}

	if _, err := e.svc.GetNotification(accCtx, &notification.IDReq{ID: forLab.ID}); code.CodeOf(err) != code.RecordNotFound {
		t.Fatalf("account should not see lab notification, got %v", err)
	}
	if _, err := e.svc.ReadNotification(accCtx, &notification.IDReq{ID: forLab.ID}); code.CodeOf(err) != code.RecordNotFound {
		t.Fatalf("account should not mark lab notification read, got %v", err)
	}
}

func TestReadAndDismissFeeds(t *testing.T) {
	e := newEnv()
	labCtx := e.as(t, common.LabStaff)
	first := e.create(t, labCtx, "first", common.LabStaff)
	e.create(t, labCtx, "second", common.LabStaff)

	if _, err := e.svc.ReadNotification(labCtx, &notification.IDReq{ID: first.ID}); err != nil {
		t.Fatalf("read: %v", err)
	}
	unread, err := e.svc.UnreadNotifications(labCtx)
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if len(unread) != 1 || unread[0].Message != "second" {
		t.Fatalf("unexpected unread feed %+v", unread)
	}

	if _, err := e.svc.DismissNotification(labCtx, &notification.IDReq{ID: first.ID}); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	active, _ := e.svc.ActiveNotifications(labCtx)
	if len(active) != 1 {
		t.Fatalf("expected one active notification, got %d", len(active))
	}

	// marking read again changes nothing and writes no row
	action := "update_notification"
	_, before, _ := e.mem.ListLogs(context.Background(), repo.ActivityQuery{Action: &action})
	if _, err := e.svc.ReadNotification(labCtx, &notification.IDReq{ID: first.ID}); err != nil {
		t.Fatalf("read again: %v", err)
	}
	_, after, _ := e.mem.ListLogs(context.Background(), repo.ActivityQuery{Action: &action})
	if before != after {
		t.Fatalf("no-op update wrote %d rows", after-before)
	}
}

func TestDeleteByRecipientNeedsComment(t *testing.T) {
	e := newEnv()
	adminCtx := e.as(t, common.Admin)
	productCtx := e.as(t, common.Product)
	accCtx := e.as(t, common.Account)
	n := e.create(t, adminCtx, "Reorder acetone", common.Product)

	_, err := e.svc.DeleteNotification(productCtx, &notification.DeleteReq{ID: n.ID, DeleteComment: "  "})
	if code.CodeOf(err) != code.DeleteCommentRequired || code.DeleteCommentRequired.HTTPStatus() != 400 {
		t.Fatalf("expected comment required, got %v", err)
	}
	if _, err := e.mem.GetNotification(context.Background(), n.ID); err != nil {
		t.Fatalf("notification should still exist: %v", err)
	}

	_, err = e.svc.DeleteNotification(accCtx, &notification.DeleteReq{ID: n.ID, DeleteComment: "not mine"})
	if code.CodeOf(err) != code.PermissionDenied {
		t.Fatalf("non-recipient delete should be denied, got %v", err)
	}

	resp, err := e.svc.DeleteNotification(productCtx, &notification.DeleteReq{ID: n.ID, DeleteComment: "already ordered"})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if resp.Message != "Notification deleted by product." || *resp.DeleteComment != "already ordered" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if _, err := e.mem.GetNotification(context.Background(), n.ID); code.CodeOf(err) != code.RecordNotFound {
		t.Fatalf("notification should be gone, got %v", err)
	}

	action := "delete_notification"
	logs, _, _ := e.mem.ListLogs(context.Background(), repo.ActivityQuery{Action: &action})
	if len(logs) != 1 || logs[0].Note == nil || *logs[0].Note != "already ordered" {
		t.Fatalf("comment missing from audit row: %+v", logs)
	}
}

func TestAdminDeletesWithoutComment(t *testing.T) {
	e := newEnv()
	adminCtx := e.as(t, common.Admin)
	n := e.create(t, adminCtx, "stale", common.LabStaff)

	resp, err := e.svc.DeleteNotification(adminCtx, &notification.DeleteReq{ID: n.ID})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if resp.Message != "Notification deleted by admin." || resp.DeleteComment != nil {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestLabels(t *testing.T) {
	e := newEnv()
	statuses := e.svc.Statuses()
	var found bool
	for _, l := range statuses {
		if l.Value == "in_progress" {
			found = l.Label == "In Progress"
		}
	}
	if !found {
		t.Fatalf("in_progress label missing or wrong: %+v", statuses)
	}
	if p := e.svc.Priorities(); p[0].Label != "LOW" {
		t.Fatalf("unexpected priority label %+v", p[0])
	}
}

// flakyRepo fails the nth notification insert.
type flakyRepo struct {
	repo.NotificationRepo
	failAt int
	calls  int
}

func (r *flakyRepo) CreateNotification(ctx context.Context, row *model.Notification) error {
	r.calls++
	if r.calls == r.failAt {
		return code.CreateDataErr.WithMsg("disk full")
	}
	return r.NotificationRepo.CreateNotification(ctx, row)
}

func TestSendNotificationIsAllOrNothing(t *testing.T) {
	e := newEnv()
	ctx := e.as(t, common.Admin)
	st := store.FromMemory(e.mem)
	st.Notifications = &flakyRepo{NotificationRepo: e.mem, failAt: 2}
	svc := New(st, nil)

	_, err := svc.SendNotification(ctx, &notification.CreateReq{
		Type:       "info",
		Severity:   "low",
		Message:    "Inspection tomorrow",
		Recipients: []common.Role{common.LabStaff, common.Account, common.Product},
	})
	if code.CodeOf(err) != code.NotifySendMsgErr {
		t.Fatalf("expected send failure, got %v", err)
	}
	if _, n, _ := e.mem.ListNotifications(context.Background(), repo.NotificationQuery{}); n != 0 {
		t.Fatalf("expected no notifications after a failed send, got %d", n)
	}
	if _, n, _ := e.mem.ListLogs(context.Background(), repo.ActivityQuery{}); n != 0 {
		t.Fatalf("expected no audit rows after a failed send, got %d", n)
	}
}
