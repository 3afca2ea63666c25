package activity

import (
	"context"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/model"
)

// Service reads the activity log. Rows are immutable apart from the note.
type Service interface {
	ListActivity(ctx context.Context, req *ListReq) (*common.PageResp[[]*model.ActivityLog], error)
	GetActivity(ctx context.Context, req *IDReq) (*model.ActivityLog, error)
	SetNote(ctx context.Context, req *NoteReq) (*model.ActivityLog, error)
}
