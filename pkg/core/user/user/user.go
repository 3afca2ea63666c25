package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/scienceol/chemtrack/internal/config"
	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/audit"
	"github.com/scienceol/chemtrack/pkg/core/policy"
	"github.com/scienceol/chemtrack/pkg/core/user"
	"github.com/scienceol/chemtrack/pkg/middleware/auth"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/repo/store"
	"github.com/scienceol/chemtrack/pkg/utils"
)

const (
	table           = "users"
	invitationTable = "invitations"
	invitationTTL   = 7 * 24 * time.Hour
)

type userImpl struct {
	tx        repo.Transactor
	users     repo.UserRepo
	logs      repo.ActivityLogRepo
	recorder  *audit.Recorder
	threshold time.Duration
	now       func() time.Time
}

func New(st *store.Store) user.Service {
	return &userImpl{
		tx:        st.Tx,
		users:     st.Users,
		logs:      st.Activity,
		recorder:  audit.NewRecorder(st.Activity),
		threshold: config.Global().Presence.OnlineThreshold,
		now:       time.Now,
	}
}

func (u *userImpl) resp(m *model.User) *user.UserResp {
	return &user.UserResp{User: m, Online: m.OnlineAt(u.now(), u.threshold)}
}

// Login loads the user behind the verified identity, registering it on first
// sight. A fresh account is persisted even though it is refused until approved.
func (u *userImpl) Login(ctx context.Context) (*user.LoginResp, error) {
	identity := auth.GetIdentity(ctx)
	if identity == nil {
		return nil, code.UnLogin
	}

	current, err := u.users.GetUserByUID(ctx, identity.UID)
	switch {
	case errors.Is(err, code.RecordNotFound):
		if current, err = u.firstLogin(ctx, identity); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	if !current.IsApproved {
		logger.Warnf(ctx, "login denied for %s, account pending approval", current.Email)
		return nil, code.AccountPendingApproval.WithMsg("Account pending approval. Please contact administrator.")
	}

	now := u.now()
	entry := &audit.Entry{
		Actor:       current,
		Action:      audit.Login,
		Table:       table,
		RecordID:    current.ID,
		Description: "User logged in: " + current.Email,
	}
	if err := audit.Mutate(ctx, u.tx, u.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		current.LastLogin = &now
		current.LastSeen = &now
		current.IsOnline = true
		return nil, u.users.SaveUser(txCtx, current)
	}); err != nil {
		return nil, err
	}
	logger.Infof(ctx, "login success uid: %s role: %s", current.UID, current.Role)
	return &user.LoginResp{User: current, Permissions: policy.DashboardPermissions(current.Role)}, nil
}

func (u *userImpl) firstLogin(ctx context.Context, identity *repo.Identity) (*model.User, error) {
	created := &model.User{
		UID:       identity.UID,
		Email:     identity.Email,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Role:      common.AllUsers,
	}
	if identity.Phone != "" {
		created.Phone = &identity.Phone
	}
	entry := &audit.Entry{Actor: created, Action: audit.Register, Table: table}
	if err := audit.Mutate(ctx, u.tx, u.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		if err := u.applyInvitation(txCtx, created); err != nil {
			return nil, err
		}
		if err := u.users.CreateUser(txCtx, created); err != nil {
			return nil, err
		}
		entry.RecordID = created.ID
		entry.Description = "New user registration: " + created.Email
		return nil, nil
	}); err != nil {
		return nil, err
	}
	return created, nil
}

// applyInvitation gives m the role of its pending invitation, if any, and
// marks that invitation accepted.
func (u *userImpl) applyInvitation(ctx context.Context, m *model.User) error {
	inv, err := u.users.GetPendingInvitation(ctx, m.Email, u.now())
	if errors.Is(err, code.RecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	m.Role = inv.Role
	inv.Status = model.InvitationAccepted
	return u.users.SaveInvitation(ctx, inv)
}

func (u *userImpl) Register(ctx context.Context, req *user.RegisterReq) (*user.RegisterResp, error) {
	identity := auth.GetIdentity(ctx)
	if identity == nil {
		return nil, code.UnLogin
	}
	if strings.TrimSpace(req.FirstName) == "" {
		return nil, code.ParamErr.WithMsg("First name is required")
	}
	if req.Role != "" && !req.Role.Valid() {
		return nil, code.ParamErr.WithMsgf("invalid role %q", req.Role)
	}

	created := &model.User{
		UID:       identity.UID,
		Email:     identity.Email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      common.AllUsers,
	}
	entry := &audit.Entry{Actor: created, Action: audit.Register, Table: table}
	if err := audit.Mutate(ctx, u.tx, u.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		if _, err := u.users.GetUserByUID(txCtx, identity.UID); err == nil {
			return nil, code.EmailAlreadyExist.WithMsg("User already exists")
		}
		if _, err := u.users.GetUserByEmail(txCtx, identity.Email); err == nil {
			return nil, code.EmailAlreadyExist.WithMsg("User already exists")
		}

		if req.Role == common.Admin {
			admins, err := u.users.CountAdmins(txCtx)
			if err != nil {
				return nil, err
			}
			if admins > 0 {
				return nil, code.ParamErr.WithMsg("Admin already exists")
			}
			// the first admin bootstraps the system and needs nobody's approval
			created.Role, created.IsApproved = common.Admin, true
		} else if err := u.applyInvitation(txCtx, created); err != nil {
			return nil, err
		}

		if err := u.users.CreateUser(txCtx, created); err != nil {
			return nil, err
		}
		entry.RecordID = created.ID
		entry.Description = "New user registration: " + created.Email + " (" + created.DisplayName() + ")"
		return nil, nil
	}); err != nil {
		return nil, err
	}
	return &user.RegisterResp{
		Message:    "User registered successfully",
		IsApproved: created.IsApproved,
		User:       created,
	}, nil
}

func (u *userImpl) Me(ctx context.Context) (*user.UserResp, error) {
	current := auth.GetCurrentUser(ctx)
	if current == nil {
		return nil, code.UnLogin
	}
	return u.resp(current), nil
}

// Ping is the presence heartbeat. It is last-write-wins and not audited.
func (u *userImpl) Ping(ctx context.Context) (*user.PingResp, error) {
	current := auth.GetCurrentUser(ctx)
	if current == nil {
		return nil, code.UnLogin
	}
	now := u.now()
	if err := u.users.UpdatePresence(ctx, current.ID, utils.Ptr(true), now); err != nil {
		return nil, err
	}
	return &user.PingResp{LastSeen: now}, nil
}

func (u *userImpl) SetOnline(ctx context.Context) (*user.StatusResp, error) {
	return u.setPresence(ctx, true)
}

func (u *userImpl) SetOffline(ctx context.Context) (*user.StatusResp, error) {
	return u.setPresence(ctx, false)
}

func (u *userImpl) setPresence(ctx context.Context, online bool) (*user.StatusResp, error) {
	current := auth.GetCurrentUser(ctx)
	if current == nil {
		return nil, code.UnLogin
	}
	action, desc := audit.UserOnline, "User came online"
	if !online {
		action, desc = audit.UserOffline, "User went offline"
	}
	now := u.now()
	entry := &audit.Entry{Actor: current, Action: action, Table: table, RecordID: current.ID, Description: desc}
	if err := audit.Mutate(ctx, u.tx, u.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		return nil, u.users.UpdatePresence(txCtx, current.ID, &online, now)
	}); err != nil {
		return nil, err
	}
	return &user.StatusResp{UID: current.UID, Online: online, LastSeen: &now}, nil
}

func (u *userImpl) OnlineUsers(ctx context.Context) ([]*user.UserResp, error) {
	if auth.GetCurrentUser(ctx) == nil {
		return nil, code.UnLogin
	}
	now := u.now()
	list, _, err := u.users.ListUsers(ctx, repo.UserQuery{
		SeenSince: utils.Ptr(now.Add(-u.threshold)),
		Limit:     common.MaxLimit,
	})
	if err != nil {
		return nil, err
	}
	return utils.FilterSlice(list, func(m *model.User) (*user.UserResp, bool) {
		return u.resp(m), m.OnlineAt(now, u.threshold)
	}), nil
}

func (u *userImpl) Status(ctx context.Context, req *user.UIDReq) (*user.StatusResp, error) {
	if auth.GetCurrentUser(ctx) == nil {
		return nil, code.UnLogin
	}
	m, err := u.users.GetUserByUID(ctx, req.UID)
	if err != nil {
		return nil, err
	}
	return &user.StatusResp{UID: m.UID, Online: m.OnlineAt(u.now(), u.threshold), LastSeen: m.LastSeen}, nil
}

func (u *userImpl) Dashboard(ctx context.Context) (*user.DashboardResp, error) {
	current := auth.GetCurrentUser(ctx)
	if current == nil {
		return nil, code.UnLogin
	}
	return &user.DashboardResp{Role: current.Role, Permissions: policy.DashboardPermissions(current.Role)}, nil
}

func (u *userImpl) MyActivity(ctx context.Context, req *user.ActivityReq) (*common.PageResp[[]*model.ActivityLog], error) {
	current := auth.GetCurrentUser(ctx)
	if current == nil {
		return nil, code.UnLogin
	}
	req.Normalize()
	list, total, err := u.logs.ListLogs(ctx, repo.ActivityQuery{UserID: &current.ID, Offset: req.Skip, Limit: req.Limit})
	if err != nil {
		return nil, err
	}
	return &common.PageResp[[]*model.ActivityLog]{Data: list, Total: total, Skip: req.Skip, Limit: req.Limit}, nil
}
