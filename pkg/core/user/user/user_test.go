package user

import (
	"context"
	"testing"
	"time"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/user"
	"github.com/scienceol/chemtrack/pkg/middleware/auth"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/repo/memory"
	"github.com/scienceol/chemtrack/pkg/repo/store"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newService(t *testing.T) (*memory.Store, *userImpl, *clock) {
	t.Helper()
	m := memory.New()
	c := &clock{t: time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)}
	svc := New(store.FromMemory(m)).(*userImpl)
	svc.now = c.now
	svc.threshold = 5 * time.Minute
	return m, svc, c
}

func identityCtx(uid, email string) context.Context {
	return auth.WithIdentity(context.Background(), &repo.Identity{UID: uid, Email: email, FirstName: "Sam", LastName: "Lee"})
}

func asUser(t *testing.T, m *memory.Store, uid string) context.Context {
	t.Helper()
	u, err := m.GetUserByUID(context.Background(), uid)
	if err != nil {
		t.Fatalf("load %s: %v", uid, err)
	}
	return auth.WithUser(context.Background(), u)
}

func TestFirstAdminIsApproved(t *testing.T) {
	m, svc, _ := newService(t)

	resp, err := svc.Register(identityCtx("u1", "boss@lab.test"), &user.RegisterReq{FirstName: "Sam", Role: common.Admin})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !resp.IsApproved || resp.User.Role != common.Admin {
		t.Fatalf("first admin should be approved: %+v", resp.User)
	}

	_, err = svc.Register(identityCtx("u2", "second@lab.test"), &user.RegisterReq{FirstName: "Kim", Role: common.Admin})
	if code.CodeOf(err) != code.ParamErr || err.Error() != "Admin already exists" {
		t.Fatalf("expected second admin refusal, got %v", err)
	}
	if _, err := m.GetUserByUID(context.Background(), "u2"); code.CodeOf(err) != code.RecordNotFound {
		t.Fatalf("refused admin should not be stored, got %v", err)
	}

	_, err = svc.Register(identityCtx("u1", "boss@lab.test"), &user.RegisterReq{FirstName: "Sam"})
	if code.CodeOf(err) != code.EmailAlreadyExist {
		t.Fatalf("expected duplicate refusal, got %v", err)
	}
}

func TestRegisterRequiresFirstName(t *testing.T) {
	_, svc, _ := newService(t)
	_, err := svc.Register(identityCtx("u1", "a@lab.test"), &user.RegisterReq{FirstName: "  "})
	if code.CodeOf(err) != code.ParamErr {
		t.Fatalf("expected param error, got %v", err)
	}
}

func TestLoginOfUnapprovedUser(t *testing.T) {
	m, svc, _ := newService(t)
	ctx := identityCtx("new-uid", "new@lab.test")

	_, err := svc.Login(ctx)
	if code.CodeOf(err) != code.AccountPendingApproval || code.AccountPendingApproval.HTTPStatus() != 403 {
		t.Fatalf("expected pending approval, got %v", err)
	}
	stored, err := m.GetUserByUID(context.Background(), "new-uid")
	if err != nil {
		t.Fatalf("user should persist after refused login: %v", err)
	}
	if stored.IsApproved || stored.Role != common.AllUsers {
		t.Fatalf("unexpected stored user %+v", stored)
	}

	action := "register"
	if _, n, _ := m.ListLogs(context.Background(), repo.ActivityQuery{Action: &action}); n != 1 {
		t.Fatalf("expected one register row, got %d", n)
	}

	// a second attempt is still refused and does not create another user
	if _, err := svc.Login(ctx); code.CodeOf(err) != code.AccountPendingApproval {
		t.Fatalf("expected pending approval again, got %v", err)
	}
	if _, n, _ := m.ListUsers(context.Background(), repo.UserQuery{}); n != 1 {
		t.Fatalf("expected one user, got %d", n)
	}
}

func TestApproveThenLogin(t *testing.T) {
	m, svc, c := newService(t)
	if _, err := svc.Register(identityCtx("root", "root@lab.test"), &user.RegisterReq{FirstName: "Root", Role: common.Admin}); err != nil {
		t.Fatalf("register admin: %v", err)
	}
	if _, err := svc.Register(identityCtx("lab", "lab@lab.test"), &user.RegisterReq{FirstName: "Lab"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	pending, _ := m.GetUserByUID(context.Background(), "lab")

	adminCtx := asUser(t, m, "root")
	if _, err := svc.ApproveUser(asUser(t, m, "lab"), &user.IDReq{ID: pending.ID}); code.CodeOf(err) != code.PermissionDenied {
		t.Fatalf("non-admin approval should be denied, got %v", err)
	}
	approved, err := svc.ApproveUser(adminCtx, &user.IDReq{ID: pending.ID})
	if err != nil || !approved.IsApproved {
		t.Fatalf("approve: %v", err)
	}

	resp, err := svc.Login(identityCtx("lab", "lab@lab.test"))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.User.LastLogin == nil || !resp.User.LastLogin.Equal(c.t) || !resp.User.IsOnline {
		t.Fatalf("login did not stamp presence: %+v", resp.User)
	}
	if len(resp.Permissions) == 0 {
		t.Fatal("login should list dashboard permissions")
	}
}

func TestInvitationAssignsRole(t *testing.T) {
	m, svc, c := newService(t)
	if _, err := svc.Register(identityCtx("root", "root@lab.test"), &user.RegisterReq{FirstName: "Root", Role: common.Admin}); err != nil {
		t.Fatalf("register admin: %v", err)
	}
	adminCtx := asUser(t, m, "root")

	inv, err := svc.CreateInvitation(adminCtx, &user.InvitationReq{Email: "Chem@Lab.test", Role: common.LabStaff})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if inv.Email != "chem@lab.test" || inv.Status != model.InvitationPending {
		t.Fatalf("unexpected invitation %+v", inv)
	}
	if _, err := svc.CreateInvitation(adminCtx, &user.InvitationReq{Email: "root@lab.test", Role: common.Account}); code.CodeOf(err) != code.EmailAlreadyExist {
		t.Fatalf("inviting an existing user should fail, got %v", err)
	}

	resp, err := svc.Register(identityCtx("chem", "chem@lab.test"), &user.RegisterReq{FirstName: "Chem"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.Role != common.LabStaff || resp.IsApproved {
		t.Fatalf("invited user should get lab_staff and wait for approval: %+v", resp.User)
	}
	if _, err := m.GetPendingInvitation(context.Background(), "chem@lab.test", c.t); code.CodeOf(err) != code.RecordNotFound {
		t.Fatalf("invitation should be accepted, got %v", err)
	}
}

func TestAdminCannotDemoteOrDeleteSelf(t *testing.T) {
	m, svc, _ := newService(t)
	if _, err := svc.Register(identityCtx("root", "root@lab.test"), &user.RegisterReq{FirstName: "Root", Role: common.Admin}); err != nil {
		t.Fatalf("register admin: %v", err)
	}
	adminCtx := asUser(t, m, "root")
	self := auth.GetCurrentUser(adminCtx)

	if _, err := svc.UpdateRole(adminCtx, &user.RoleReq{ID: self.ID, Role: common.AllUsers}); code.CodeOf(err) != code.ParamErr {
		t.Fatalf("expected self demotion refusal, got %v", err)
	}
	if err := svc.DeleteUser(adminCtx, &user.IDReq{ID: self.ID}); code.CodeOf(err) != code.ParamErr {
		t.Fatalf("expected self delete refusal, got %v", err)
	}
}

func TestPresenceGoesStale(t *testing.T) {
	m, svc, c := newService(t)
	if _, err := svc.Register(identityCtx("root", "root@lab.test"), &user.RegisterReq{FirstName: "Root", Role: common.Admin}); err != nil {
		t.Fatalf("register admin: %v", err)
	}
	ctx := asUser(t, m, "root")

	if _, err := svc.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	online, err := svc.OnlineUsers(ctx)
	if err != nil || len(online) != 1 || !online[0].Online {
		t.Fatalf("expected one online user, got %v %v", online, err)
	}

	c.t = c.t.Add(6 * time.Minute)
	status, err := svc.Status(ctx, &user.UIDReq{UID: "root"})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Online {
		t.Fatal("stale heartbeat should read as offline")
	}
	if online, _ := svc.OnlineUsers(ctx); len(online) != 0 {
		t.Fatalf("expected nobody online, got %d", len(online))
	}

	if _, err := svc.SetOffline(ctx); err != nil {
		t.Fatalf("set offline: %v", err)
	}
	stored, _ := m.GetUserByUID(context.Background(), "root")
	if stored.IsOnline {
		t.Fatal("explicit offline not stored")
	}
}
