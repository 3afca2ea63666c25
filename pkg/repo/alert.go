package repo

import (
	"context"

	"github.com/scienceol/chemtrack/pkg/model"
)

type AlertQuery struct {
	Type        *model.AlertType
	Severity    *model.AlertSeverity
	IsRead      *bool
	IsDismissed *bool
	ChemicalID  *int64
	Offset      int
	Limit       int
}

type AlertRepo interface {
	Transactor

	CreateAlert(ctx context.Context, a *model.Alert) error
	GetAlert(ctx context.Context, id int64) (*model.Alert, error)
	SaveAlert(ctx context.Context, a *model.Alert) error
	DeleteAlert(ctx context.Context, id int64) error
	ListAlerts(ctx context.Context, q AlertQuery) ([]*model.Alert, int64, error)
	HasActiveAlert(ctx context.Context, chemicalID int64, typ model.AlertType) (bool, error)
}
