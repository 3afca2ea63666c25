package activity

import (
	"context"
	"strings"
	"time"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/activity"
	"github.com/scienceol/chemtrack/pkg/core/policy"
	"github.com/scienceol/chemtrack/pkg/middleware/auth"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/repo/store"
)

type activityImpl struct {
	logs repo.ActivityLogRepo
}

func New(st *store.Store) activity.Service {
	return &activityImpl{logs: st.Activity}
}

func (a *activityImpl) ListActivity(ctx context.Context, req *activity.ListReq) (*common.PageResp[[]*model.ActivityLog], error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	if err := policy.Authorize(user.Role, policy.ViewActivity); err != nil {
		return nil, err
	}
	req.Normalize()
	q := repo.ActivityQuery{
		UserID:   req.UserID,
		Action:   req.Action,
		Table:    req.Table,
		RecordID: req.RecordID,
		Start:    req.StartDate,
		Offset:   req.Skip,
		Limit:    req.Limit,
	}
	if req.EndDate != nil {
		end := req.EndDate.Add(24*time.Hour - time.Nanosecond)
		q.End = &end
	}
	list, total, err := a.logs.ListLogs(ctx, q)
	if err != nil {
		return nil, err
	}
	return &common.PageResp[[]*model.ActivityLog]{Data: list, Total: total, Skip: req.Skip, Limit: req.Limit}, nil
}

// GetActivity is open to admins and to the actor the row belongs to.
func (a *activityImpl) GetActivity(ctx context.Context, req *activity.IDReq) (*model.ActivityLog, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	row, err := a.logs.GetLog(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if policy.Allowed(user.Role, policy.ViewActivity) {
		return row, nil
	}
	if row.UserID == nil || *row.UserID != user.ID {
		return nil, code.RecordNotFound.WithMsg("Activity log not found")
	}
	return row, nil
}

func (a *activityImpl) SetNote(ctx context.Context, req *activity.NoteReq) (*model.ActivityLog, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	if err := policy.Authorize(user.Role, policy.ViewActivity); err != nil {
		return nil, err
	}
	note := strings.TrimSpace(req.Note)
	if note == "" {
		return nil, code.ParamErr.WithMsg("note is required")
	}
	if err := a.logs.UpdateLogNote(ctx, req.ID, note); err != nil {
		return nil, err
	}
	return a.logs.GetLog(ctx, req.ID)
}
