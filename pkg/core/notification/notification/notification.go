package notification

import (
	"context"
	"slices"
	"strings"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/audit"
	"github.com/scienceol/chemtrack/pkg/core/notification"
	"github.com/scienceol/chemtrack/pkg/core/notify"
	"github.com/scienceol/chemtrack/pkg/middleware/auth"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/repo/store"
	"github.com/scienceol/chemtrack/pkg/utils"
)

const (
	table     = "notifications"
	feedLimit = 100
)

type notificationImpl struct {
	tx            repo.Transactor
	notifications repo.NotificationRepo
	users         repo.UserRepo
	recorder      *audit.Recorder
	msgCenter     notify.MsgCenter
}

func New(st *store.Store, msgCenter notify.MsgCenter) notification.Service {
	return &notificationImpl{
		tx:            st.Tx,
		notifications: st.Notifications,
		users:         st.Users,
		recorder:      audit.NewRecorder(st.Activity),
		msgCenter:     msgCenter,
	}
}

func validate(req *notification.CreateReq) error {
	if strings.TrimSpace(req.Message) == "" {
		return code.ParamErr.WithMsg("message is required")
	}
	if req.Category == "" {
		req.Category = model.CategoryGeneral
	}
	if req.Priority == "" {
		req.Priority = model.PriorityMid
	}
	if req.Status == "" {
		req.Status = model.NotificationPending
	}
	switch {
	case !slices.Contains(model.NotificationCategories, req.Category):
		return code.ParamErr.WithMsgf("invalid category %q", req.Category)
	case !slices.Contains(model.NotificationPriorities, req.Priority):
		return code.ParamErr.WithMsgf("invalid priority %q", req.Priority)
	case !slices.Contains(model.NotificationStatuses, req.Status):
		return code.ParamErr.WithMsgf("invalid status %q", req.Status)
	}
	if len(req.Recipients) == 0 {
		req.Recipients = slices.Clone(notification.DefaultRecipients)
	}
	for _, r := range req.Recipients {
		if !r.Valid() {
			return code.ParamErr.WithMsgf("invalid recipient role %q", r)
		}
	}
	return nil
}

// insert writes one notification and its audit row; inside a tx it joins that tx.
func (n *notificationImpl) insert(ctx context.Context, user *model.User, req *notification.CreateReq,
	recipients []common.Role,
) (*model.Notification, error) {
	row := &model.Notification{
		Type:       req.Type,
		Severity:   req.Severity,
		Message:    req.Message,
		Category:   req.Category,
		Priority:   req.Priority,
		Status:     req.Status,
		ChemicalID: req.ChemicalID,
		UserID:     &user.UID,
		CreatedBy:  &user.UID,
		Recipients: recipients,
	}
	entry := &audit.Entry{
		Actor:       user,
		Action:      audit.CreateNotification,
		Table:       table,
		Description: "Created notification: " + req.Message,
	}
	if err := audit.Mutate(ctx, n.tx, n.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		if err := n.notifications.CreateNotification(txCtx, row); err != nil {
			return nil, err
		}
		entry.RecordID = row.ID
		return nil, nil
	}); err != nil {
		return nil, err
	}
	return row, nil
}

func (n *notificationImpl) broadcast(ctx context.Context, row *model.Notification) {
	if n.msgCenter == nil {
		return
	}
	if err := n.msgCenter.Broadcast(ctx, &notify.SendMsg{
		Channel:    notify.NotificationCreated,
		Recipients: row.Recipients,
		ChemicalID: row.ChemicalID,
		UserID:     utils.Deref(row.CreatedBy, ""),
		Data:       row,
	}); err != nil {
		logger.Warnf(ctx, "broadcast notification %d err: %+v", row.ID, err)
	}
}

func (n *notificationImpl) CreateNotification(ctx context.Context, req *notification.CreateReq) (*notification.NotificationResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	row, err := n.insert(ctx, user, req, req.Recipients)
	if err != nil {
		return nil, err
	}
	n.broadcast(ctx, row)
	return &notification.NotificationResp{Notification: row, CreatorName: user.DisplayName()}, nil
}

func (n *notificationImpl) SendNotification(ctx context.Context, req *notification.CreateReq) ([]*notification.NotificationResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	roles := utils.FilterUniqSlice(req.Recipients, func(r common.Role) (common.Role, bool) { return r, true })
	rows := make([]*model.Notification, 0, len(roles))
	// one per role, all or none
	if err := n.tx.ExecTx(ctx, func(txCtx context.Context) error {
		for _, role := range roles {
			row, err := n.insert(txCtx, user, req, []common.Role{role})
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return nil
	}); err != nil {
		return nil, code.NotifySendMsgErr.WithMsgf("Failed to send notification: %v", err)
	}

	resp := make([]*notification.NotificationResp, 0, len(rows))
	for _, row := range rows {
		n.broadcast(ctx, row)
		resp = append(resp, &notification.NotificationResp{Notification: row, CreatorName: user.DisplayName()})
	}
	return resp, nil
}

// roleFilter is nil for admins, who see every notification.
func roleFilter(user *model.User) *common.Role {
	if user.Role == common.Admin {
		return nil
	}
	return &user.Role
}

func (n *notificationImpl) ListNotifications(ctx context.Context, req *notification.ListReq) (*common.PageResp[[]*notification.NotificationResp], error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	req.Normalize()
	list, total, err := n.notifications.ListNotifications(ctx, repo.NotificationQuery{
		Role:        roleFilter(user),
		Category:    req.Category,
		Priority:    req.Priority,
		Status:      req.Status,
		Severity:    req.Severity,
		IsRead:      req.IsRead,
		IsDismissed: req.IsDismissed,
		Offset:      req.Skip,
		Limit:       req.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &common.PageResp[[]*notification.NotificationResp]{
		Data:  n.enrich(ctx, list),
		Total: total,
		Skip:  req.Skip,
		Limit: req.Limit,
	}, nil
}

func (n *notificationImpl) feed(ctx context.Context, q repo.NotificationQuery) ([]*notification.NotificationResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	q.Role = roleFilter(user)
	q.Limit = feedLimit
	list, _, err := n.notifications.ListNotifications(ctx, q)
	if err != nil {
		return nil, err
	}
	return n.enrich(ctx, list), nil
}

func (n *notificationImpl) UnreadNotifications(ctx context.Context) ([]*notification.NotificationResp, error) {
	return n.feed(ctx, repo.NotificationQuery{IsRead: utils.Ptr(false)})
}

func (n *notificationImpl) ActiveNotifications(ctx context.Context) ([]*notification.NotificationResp, error) {
	return n.feed(ctx, repo.NotificationQuery{IsDismissed: utils.Ptr(false)})
}

// visible loads id and hides it behind NotFound when user may not see it.
func (n *notificationImpl) visible(ctx context.Context, user *model.User, id int64) (*model.Notification, error) {
	row, err := n.notifications.GetNotification(ctx, id)
	if err != nil {
		return nil, err
	}
	if !row.VisibleTo(user.Role) {
		return nil, code.RecordNotFound.WithMsg("Notification not found")
	}
	return row, nil
}

func (n *notificationImpl) GetNotification(ctx context.Context, req *notification.IDReq) (*notification.NotificationResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	row, err := n.visible(ctx, user, req.ID)
	if err != nil {
		return nil, err
	}
	return n.enrich(ctx, []*model.Notification{row})[0], nil
}

func (n *notificationImpl) UpdateNotification(ctx context.Context, req *notification.UpdateReq) (*notification.NotificationResp, error) {
	if req.Status != nil && !slices.Contains(model.NotificationStatuses, *req.Status) {
		return nil, code.ParamErr.WithMsgf("invalid status %q", *req.Status)
	}
	return n.update(ctx, req)
}

func (n *notificationImpl) DismissNotification(ctx context.Context, req *notification.IDReq) (*notification.NotificationResp, error) {
	return n.update(ctx, &notification.UpdateReq{ID: req.ID, IsDismissed: utils.Ptr(true)})
}

func (n *notificationImpl) ReadNotification(ctx context.Context, req *notification.IDReq) (*notification.NotificationResp, error) {
	return n.update(ctx, &notification.UpdateReq{ID: req.ID, IsRead: utils.Ptr(true)})
}

func (n *notificationImpl) update(ctx context.Context, req *notification.UpdateReq) (*notification.NotificationResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	var row *model.Notification
	entry := &audit.Entry{
		Actor:       user,
		Action:      audit.UpdateNotification,
		Table:       table,
		RecordID:    req.ID,
		Description: "Updated notification",
		OnlyChanges: true,
	}
	if err := audit.Mutate(ctx, n.tx, n.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		var err error
		if row, err = n.visible(txCtx, user, req.ID); err != nil {
			return nil, err
		}
		var changes []audit.Change
		if req.Status != nil {
			changes = audit.Diff(changes, "status", row.Status, *req.Status)
			row.Status = *req.Status
		}
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
		return changes, n.notifications.SaveNotification(txCtx, row)
	}); err != nil {
		return nil, err
	}
	return n.enrich(ctx, []*model.Notification{row})[0], nil
}

// DeleteNotification lets admins delete anything; a recipient role may delete
// with a non-empty comment, which is kept on the row and in the audit entry.
func (n *notificationImpl) DeleteNotification(ctx context.Context, req *notification.DeleteReq) (*notification.DeleteResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	comment := strings.TrimSpace(req.DeleteComment)
	resp := &notification.DeleteResp{}
	entry := &audit.Entry{Actor: user, Action: audit.DeleteNotification, Table: table, RecordID: req.ID}
	if err := audit.Mutate(ctx, n.tx, n.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		row, err := n.notifications.GetNotification(txCtx, req.ID)
		if err != nil {
			return nil, err
		}
		entry.Description = "Deleted notification: " + row.Message

		switch {
		case user.Role == common.Admin:
			resp.Message = "Notification deleted by admin."
		case row.HasRecipient(user.Role):
			if comment == "" {
				return nil, code.DeleteCommentRequired
			}
			row.DeleteComment = &comment
			if err := n.notifications.SaveNotification(txCtx, row); err != nil {
				return nil, err
			}
			entry.Note = &comment
			resp.Message = "Notification deleted by " + string(user.Role) + "."
			resp.DeleteComment = &comment
		default:
			return nil, code.PermissionDenied.WithMsg("You do not have permission to delete this notification.")
		}
		return nil, n.notifications.DeleteNotification(txCtx, req.ID)
	}); err != nil {
		return nil, err
	}
	return resp, nil
}

func (n *notificationImpl) enrich(ctx context.Context, rows []*model.Notification) []*notification.NotificationResp {
	uids := utils.FilterUniqSlice(rows, func(r *model.Notification) (string, bool) {
		return utils.Deref(r.CreatedBy, ""), r.CreatedBy != nil
	})
	names := map[string]string{}
	if len(uids) > 0 {
		users, err := n.users.GetUsersByUIDs(ctx, uids)
		if err != nil {
			logger.Warnf(ctx, "load notification creators err: %+v", err)
		}
		names = utils.Slice2Map(users, func(u *model.User) (string, string) { return u.UID, u.DisplayName() })
	}
	out := make([]*notification.NotificationResp, 0, len(rows))
	for _, r := range rows {
		out = append(out, &notification.NotificationResp{Notification: r, CreatorName: names[utils.Deref(r.CreatedBy, "")]})
	}
	return out
}

func (n *notificationImpl) Categories() []common.Label {
	return common.TitleLabels(model.NotificationCategories)
}

func (n *notificationImpl) Priorities() []common.Label {
	return common.UpperLabels(model.NotificationPriorities)
}

func (n *notificationImpl) Statuses() []common.Label {
	return common.TitleLabels(model.NotificationStatuses)
}
