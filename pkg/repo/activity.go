package repo

import (
	"context"
	"time"

	"github.com/scienceol/chemtrack/pkg/model"
)

type ActivityQuery struct {
	UserID   *int64
	Action   *string
	Table    *string
	RecordID *int64
	Start    *time.Time
	End      *time.Time
	Offset   int
	Limit    int
}

type ActivityLogRepo interface {
	Transactor

	CreateLogs(ctx context.Context, logs []*model.ActivityLog) error
	GetLog(ctx context.Context, id int64) (*model.ActivityLog, error)
	ListLogs(ctx context.Context, q ActivityQuery) ([]*model.ActivityLog, int64, error)
	UpdateLogNote(ctx context.Context, id int64, note string) error
}
