package alert

import (
	"context"
	"slices"
	"strings"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/alert"
	"github.com/scienceol/chemtrack/pkg/core/audit"
	"github.com/scienceol/chemtrack/pkg/core/notify"
	"github.com/scienceol/chemtrack/pkg/core/policy"
	"github.com/scienceol/chemtrack/pkg/middleware/auth"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/repo/store"
	"github.com/scienceol/chemtrack/pkg/utils"
)

const (
	table     = "alerts"
	feedLimit = 100
)

type alertImpl struct {
	tx        repo.Transactor
	alerts    repo.AlertRepo
	recorder  *audit.Recorder
	msgCenter notify.MsgCenter
}

func New(st *store.Store, msgCenter notify.MsgCenter) alert.Service {
	return &alertImpl{
		tx:        st.Tx,
		alerts:    st.Alerts,
		recorder:  audit.NewRecorder(st.Activity),
		msgCenter: msgCenter,
	}
}

func (a *alertImpl) currentUser(ctx context.Context, op policy.Operation) (*model.User, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	if op != "" {
		if err := policy.Authorize(user.Role, op); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (a *alertImpl) CreateAlert(ctx context.Context, req *alert.CreateReq) (*model.Alert, error) {
	user, err := a.currentUser(ctx, policy.CreateAlert)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, code.ParamErr.WithMsg("message is required")
	}
	if !slices.Contains(model.AlertSeverities, req.Severity) {
		return nil, code.ParamErr.WithMsgf("invalid severity %q", req.Severity)
	}

	row := &model.Alert{
		Type:       model.AlertSystem,
		Severity:   req.Severity,
		Message:    req.Message,
		ChemicalID: req.ChemicalID,
		UserID:     &user.UID,
	}
	entry := &audit.Entry{Actor: user, Action: audit.CreateAlert, Table: table, Description: req.Message}
	if err := audit.Mutate(ctx, a.tx, a.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		if err := a.alerts.CreateAlert(txCtx, row); err != nil {
			return nil, err
		}
		entry.RecordID = row.ID
		return nil, nil
	}); err != nil {
		return nil, err
	}

	if a.msgCenter != nil {
		if err := a.msgCenter.Broadcast(ctx, &notify.SendMsg{
			Channel:    notify.AlertRaised,
			ChemicalID: row.ChemicalID,
			UserID:     user.UID,
			Data:       row,
		}); err != nil {
			logger.Warnf(ctx, "broadcast alert %d err: %+v", row.ID, err)
		}
	}
	return row, nil
}

func (a *alertImpl) ListAlerts(ctx context.Context, req *alert.ListReq) (*common.PageResp[[]*model.Alert], error) {
	if _, err := a.currentUser(ctx, ""); err != nil {
		return nil, err
	}
	req.Normalize()
	list, total, err := a.alerts.ListAlerts(ctx, repo.AlertQuery{
		Type:        req.Type,
		Severity:    req.Severity,
		IsRead:      req.IsRead,
		IsDismissed: req.IsDismissed,
		ChemicalID:  req.ChemicalID,
		Offset:      req.Skip,
		Limit:       req.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &common.PageResp[[]*model.Alert]{Data: list, Total: total, Skip: req.Skip, Limit: req.Limit}, nil
}

func (a *alertImpl) feed(ctx context.Context, q repo.AlertQuery) ([]*model.Alert, error) {
	if _, err := a.currentUser(ctx, ""); err != nil {
		return nil, err
	}
	q.Limit = feedLimit
	list, _, err := a.alerts.ListAlerts(ctx, q)
	return list, err
}

func (a *alertImpl) UnreadAlerts(ctx context.Context) ([]*model.Alert, error) {
	return a.feed(ctx, repo.AlertQuery{IsRead: utils.Ptr(false)})
}

func (a *alertImpl) ActiveAlerts(ctx context.Context) ([]*model.Alert, error) {
	return a.feed(ctx, repo.AlertQuery{IsDismissed: utils.Ptr(false)})
}

func (a *alertImpl) GetAlert(ctx context.Context, req *alert.IDReq) (*model.Alert, error) {
	if _, err := a.currentUser(ctx, ""); err != nil {
		return nil, err
	}
	return a.alerts.GetAlert(ctx, req.ID)
}

func (a *alertImpl) UpdateAlert(ctx context.Context, req *alert.UpdateReq) (*model.Alert, error) {
	user, err := a.currentUser(ctx, "")
	if err != nil {
		return nil, err
	}
	var row *model.Alert
	entry := &audit.Entry{
		Actor:       user,
		Action:      audit.UpdateAlert,
		Table:       table,
		RecordID:    req.ID,
		Description: "Updated alert",
		OnlyChanges: true,
	}
	if err := audit.Mutate(ctx, a.tx, a.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		var err error
		if row, err = a.alerts.GetAlert(txCtx, req.ID); err != nil {
			return nil, err
		}
		var changes []audit.Change
		if req.IsRead != nil {
			changes = audit.Diff(changes, "is_read", row.IsRead, *req.IsRead)
			row.IsRead = *req.IsRead
		}
		if req.IsDismissed != nil {
			changes = audit.Diff(changes, "is_dismissed", row.IsDismissed, *req.IsDismissed)
			row.IsDismissed = *req.IsDismissed
		}
		if len(changes) == 0 {
			return nil, nil
		}
		return changes, a.alerts.SaveAlert(txCtx, row)
	}); err != nil {
		return nil, err
	}
	return row, nil
}

func (a *alertImpl) ReadAlert(ctx context.Context, req *alert.IDReq) (*model.Alert, error) {
	return a.UpdateAlert(ctx, &alert.UpdateReq{ID: req.ID, IsRead: utils.Ptr(true)})
}

func (a *alertImpl) DismissAlert(ctx context.Context, req *alert.IDReq) (*model.Alert, error) {
	return a.UpdateAlert(ctx, &alert.UpdateReq{ID: req.ID, IsDismissed: utils.Ptr(true)})
}

func (a *alertImpl) DeleteAlert(ctx context.Context, req *alert.IDReq) error {
	user, err := a.currentUser(ctx, policy.DeleteAlert)
	if err != nil {
		return err
	}
	entry := &audit.Entry{Actor: user, Action: audit.DeleteAlert, Table: table, RecordID: req.ID}
	return audit.Mutate(ctx, a.tx, a.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		row, err := a.alerts.GetAlert(txCtx, req.ID)
		if err != nil {
			return nil, err
		}
		entry.Description = "Deleted alert: " + row.Message
		return nil, a.alerts.DeleteAlert(txCtx, req.ID)
	})
}

func (a *alertImpl) Types() []common.Label {
	return common.TitleLabels(model.AlertTypes)
}

func (a *alertImpl) Severities() []common.Label {
	return common.TitleLabels(model.AlertSeverities)
}
