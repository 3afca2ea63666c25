package user

import (
	"context"
	"strings"
	"time"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/audit"
	"github.com/scienceol/chemtrack/pkg/core/policy"
	"github.com/scienceol/chemtrack/pkg/core/user"
	"github.com/scienceol/chemtrack/pkg/middleware/auth"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/utils"
)

func (u *userImpl) admin(ctx context.Context) (*model.User, error) {
	current := auth.GetCurrentUser(ctx)
	if current == nil {
		return nil, code.UnLogin
	}
	if err := policy.Authorize(current.Role, policy.ManageUsers); err != nil {
		return nil, err
	}
	return current, nil
}

func (u *userImpl) ListUsers(ctx context.Context, req *user.ListReq) (*common.PageResp[[]*user.UserResp], error) {
	if _, err := u.admin(ctx); err != nil {
		return nil, err
	}
	req.Normalize()
	list, total, err := u.users.ListUsers(ctx, repo.UserQuery{
		Role:     req.Role,
		Approved: req.Approved,
		Offset:   req.Skip,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &common.PageResp[[]*user.UserResp]{
		Data:  utils.FilterSlice(list, func(m *model.User) (*user.UserResp, bool) { return u.resp(m), true }),
		Total: total,
		Skip:  req.Skip,
		Limit: req.Limit,
	}, nil
}

func (u *userImpl) PendingUsers(ctx context.Context) ([]*user.UserResp, error) {
	resp, err := u.ListUsers(ctx, &user.ListReq{
		PageReq:  common.PageReq{Limit: common.MaxLimit},
		Approved: utils.Ptr(false),
	})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// mutateUser loads the target user inside the transaction, applies fn and
// saves it when a field changed.
func (u *userImpl) mutateUser(ctx context.Context, actor *model.User, action audit.Action, id int64,
	fn func(target *model.User) ([]audit.Change, error),
) (*model.User, error) {
	var target *model.User
	entry := &audit.Entry{Actor: actor, Action: action, Table: table, RecordID: id, OnlyChanges: true}
	if err := audit.Mutate(ctx, u.tx, u.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		var err error
		if target, err = u.users.GetUserByID(txCtx, id); err != nil {
			return nil, err
		}
		changes, err := fn(target)
		if err != nil || len(changes) == 0 {
			return nil, err
		}
		entry.Description = string(action) + ": " + target.Email
		return changes, u.users.SaveUser(txCtx, target)
	}); err != nil {
		return nil, err
	}
	return target, nil
}

func (u *userImpl) ApproveUser(ctx context.Context, req *user.IDReq) (*user.UserResp, error) {
	actor, err := u.admin(ctx)
	if err != nil {
		return nil, err
	}
	target, err := u.mutateUser(ctx, actor, audit.ApproveUser, req.ID, func(target *model.User) ([]audit.Change, error) {
		changes := audit.Diff(nil, "is_approved", target.IsApproved, true)
		target.IsApproved = true
		return changes, nil
	})
	if err != nil {
		return nil, err
	}
	return u.resp(target), nil
}

func (u *userImpl) UpdateRole(ctx context.Context, req *user.RoleReq) (*user.UserResp, error) {
	actor, err := u.admin(ctx)
	if err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, code.ParamErr.WithMsgf("invalid role %q", req.Role)
	}
	if req.ID == actor.ID {
		return nil, code.ParamErr.WithMsg("admins cannot change their own role")
	}
	target, err := u.mutateUser(ctx, actor, audit.UpdateUserRole, req.ID, func(target *model.User) ([]audit.Change, error) {
		changes := audit.Diff(nil, "role", target.Role, req.Role)
		target.Role = req.Role
		return changes, nil
	})
	if err != nil {
		return nil, err
	}
	return u.resp(target), nil
}

func (u *userImpl) DeleteUser(ctx context.Context, req *user.IDReq) error {
	actor, err := u.admin(ctx)
	if err != nil {
		return err
	}
	if req.ID == actor.ID {
		return code.ParamErr.WithMsg("admins cannot delete themselves")
	}
	entry := &audit.Entry{Actor: actor, Action: audit.DeleteUser, Table: table, RecordID: req.ID}
	return audit.Mutate(ctx, u.tx, u.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		target, err := u.users.GetUserByID(txCtx, req.ID)
		if err != nil {
			return nil, err
		}
		entry.Description = "Deleted user: " + target.Email
		return nil, u.users.DeleteUser(txCtx, req.ID)
	})
}

func (u *userImpl) CreateInvitation(ctx context.Context, req *user.InvitationReq) (*model.Invitation, error) {
	actor, err := u.admin(ctx)
	if err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, code.ParamErr.WithMsgf("invalid role %q", req.Role)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	ttl := invitationTTL
	if req.ExpiresInDays > 0 {
		ttl = time.Duration(req.ExpiresInDays) * 24 * time.Hour
	}

	inv := &model.Invitation{
		Email:     email,
		Role:      req.Role,
		InvitedBy: actor.UID,
		Status:    model.InvitationPending,
		ExpiresAt: u.now().Add(ttl),
	}
	entry := &audit.Entry{
		Actor:       actor,
		Action:      audit.CreateInvitation,
		Table:       invitationTable,
		Description: "Invited " + email + " as " + string(req.Role),
	}
	if err := audit.Mutate(ctx, u.tx, u.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		if _, err := u.users.GetUserByEmail(txCtx, email); err == nil {
			return nil, code.EmailAlreadyExist.WithMsg("User already exists")
		}
		if err := u.users.CreateInvitation(txCtx, inv); err != nil {
			return nil, err
		}
		entry.RecordID = inv.ID
		return nil, nil
	}); err != nil {
		return nil, err
	}
	return inv, nil
}

func (u *userImpl) ListInvitations(ctx context.Context, req *user.InvitationListReq) (*common.PageResp[[]*model.Invitation], error) {
	if _, err := u.admin(ctx); err != nil {
		return nil, err
	}
	req.Normalize()
	list, total, err := u.users.ListInvitations(ctx, req.Status, req.Skip, req.Limit)
	if err != nil {
		return nil, err
	}
	return &common.PageResp[[]*model.Invitation]{Data: list, Total: total, Skip: req.Skip, Limit: req.Limit}, nil
}
