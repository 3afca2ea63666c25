// Package audit writes activity-log rows for every accepted mutation and runs
// the mutation and its rows in one transaction.
package audit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/middleware/metrics"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/repo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Action string

const (
	CreateChemical  Action = "create_chemical_inventory"
	UpdateChemical  Action = "update_chemical_inventory"
	AddNoteChemical Action = "add_note_chemical_inventory"
	DeleteChemical  Action = "delete_chemical_inventory"

	CreateTransaction  Action = "create_transaction"
	UpdateTransaction  Action = "update_transaction"
	ApproveTransaction Action = "approve_transaction"
	RejectTransaction  Action = "reject_transaction"
	DeleteTransaction  Action = "delete_transaction"

	CreatePurchaseOrder Action = "create_purchase_order"
	UpdatePurchaseOrder Action = "update_purchase_order"
	DeletePurchaseOrder Action = "delete_purchase_order"

	CreateNotification Action = "create_notification"
	UpdateNotification Action = "update_notification"
	DeleteNotification Action = "delete_notification"

	CreateAlert Action = "create_alert"
	UpdateAlert Action = "update_alert"
	DeleteAlert Action = "delete_alert"

	Login            Action = "login"
	Register         Action = "register"
	UserOnline       Action = "user_online"
	UserOffline      Action = "user_offline"
	ApproveUser      Action = "approve_user"
	UpdateUserRole   Action = "update_user_role"
	DeleteUser       Action = "delete_user"
	CreateInvitation Action = "create_invitation"
)

// Change is one field transition rendered as strings.
type Change struct {
	Field string
	Old   string
	New   string
}

// Entry describes the mutation being recorded. RecordID may be filled in by
// the mutation itself once the row exists.
type Entry struct {
	Actor       *model.User
	Action      Action
	Table       string
	RecordID    int64
	Description string
	Note        *string
	// OnlyChanges skips the summary row when no field changed.
	OnlyChanges bool
}

type Recorder struct {
	logs    repo.ActivityLogRepo
	entries metric.Int64Counter
}

func NewRecorder(logs repo.ActivityLogRepo) *Recorder {
	counter, err := otel.Meter("chemtrack/audit").Int64Counter("audit.entries",
		metric.WithDescription("activity log rows written"))
	if err != nil {
		logger.Warnf(context.Background(), "create audit.entries counter err: %+v", err)
	}
	return &Recorder{logs: logs, entries: counter}
}

// Rows builds the activity-log rows for entry: one per real change, or a
// single summary row when nothing field-level changed.
func Rows(entry *Entry, changes []Change, now time.Time) []*model.ActivityLog {
	base := model.ActivityLog{
		Action:      string(entry.Action),
		Description: entry.Description,
		Note:        entry.Note,
		Timestamp:   now,
	}
	if entry.Actor != nil {
		base.UserID = &entry.Actor.ID
	}
	if entry.Table != "" {
		base.TableModified = &entry.Table
	}
	if entry.RecordID != 0 {
		base.RecordID = &entry.RecordID
	}

	rows := make([]*model.ActivityLog, 0, len(changes))
	for _, c := range changes {
		if c.Old == c.New {
			continue
		}
		row := base
		row.FieldModified, row.OldValue, row.NewValue = &c.Field, &c.Old, &c.New
		if row.Description == "" {
			row.Description = fmt.Sprintf("%s: %s changed", entry.Action, c.Field)
		}
		rows = append(rows, &row)
	}
	if len(rows) == 0 && !entry.OnlyChanges {
		row := base
		if row.Description == "" {
			row.Description = string(entry.Action)
		}
		rows = append(rows, &row)
	}
	return rows
}

func (r *Recorder) Record(ctx context.Context, entry *Entry, changes []Change) error {
	rows := Rows(entry, changes, time.Now())
	if len(rows) == 0 {
		return nil
	}
	if err := r.logs.CreateLogs(ctx, rows); err != nil {
		logger.Errorf(ctx, "write activity log action: %s, err: %+v", entry.Action, err)
		if code.CodeOf(err) == code.UnDefineErr {
			return code.AuditRecordErr.WithErr(err)
		}
		return err
	}
	if r.entries != nil {
		r.entries.Add(ctx, int64(len(rows)), metric.WithAttributes(attribute.String("action", string(entry.Action))))
	}
	return nil
}

// Mutate runs fn and the audit write for entry in one transaction. fn returns
// the applied changes; an error from either side rolls both back.
func Mutate(ctx context.Context, tx repo.Transactor, rec *Recorder, entry *Entry,
	fn func(txCtx context.Context) ([]Change, error),
) error {
	err := tx.ExecTx(ctx, func(txCtx context.Context) error {
		changes, err := fn(txCtx)
		if err != nil {
			return err
		}
		return rec.Record(txCtx, entry, changes)
	})
	metrics.ObserveMutation(string(entry.Action), err)
	return err
}

// Diff appends a change for field when before and after render differently.
func Diff(changes []Change, field string, before, after any) []Change {
	o, n := Format(before), Format(after)
	if o == n {
		return changes
	}
	return append(changes, Change{Field: field, Old: o, New: n})
}

// Format renders a value the way it is stored in old_value/new_value.
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case *float64:
		if t == nil {
			return ""
		}
		return strconv.FormatFloat(*t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case *int64:
		if t == nil {
			return ""
		}
		return strconv.FormatInt(*t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
