package activity

import (
	"time"

	"github.com/scienceol/chemtrack/pkg/common"
)

type IDReq struct {
	ID int64 `uri:"id" binding:"required,gt=0"`
}

type ListReq struct {
	common.PageReq
	UserID    *int64     `form:"user_id"`
	Action    *string    `form:"action"`
	Table     *string    `form:"table"`
	RecordID  *int64     `form:"record_id"`
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
}

type NoteReq struct {
	ID   int64  `json:"-" uri:"id"`
	Note string `json:"note" binding:"required"`
}
