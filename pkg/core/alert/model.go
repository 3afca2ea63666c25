package alert

import (
	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/model"
)

type IDReq struct {
	ID int64 `uri:"id" binding:"required,gt=0"`
}

// CreateReq raises an operator alert. The type is always system.
type CreateReq struct {
	Severity   model.AlertSeverity `json:"severity" binding:"required"`
	Message    string              `json:"message" binding:"required"`
	ChemicalID *int64              `json:"chemical_id"`
}

type UpdateReq struct {
	ID          int64 `json:"-" uri:"id"`
	IsRead      *bool `json:"is_read"`
	IsDismissed *bool `json:"is_dismissed"`
}

type ListReq struct {
	common.PageReq
	Type        *model.AlertType     `form:"type"`
	Severity    *model.AlertSeverity `form:"severity"`
	IsRead      *bool                `form:"is_read"`
	IsDismissed *bool                `form:"is_dismissed"`
	ChemicalID  *int64               `form:"chemical_id"`
}
