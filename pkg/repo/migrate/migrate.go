package migrate

import (
	"context"

	"github.com/scienceol/chemtrack/pkg/middleware/db"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/model"
	"github.com/scienceol/chemtrack/pkg/utils"
)

func Table(ctx context.Context) error {
	d := db.DB().DBWithContext(ctx)
	return utils.IfErrReturn(func() error {
		return d.AutoMigrate(
			&model.User{},
			&model.Invitation{},
			&model.ChemicalInventory{},
			&model.AccountTransaction{},
			&model.PurchaseOrder{},
			&model.PurchaseOrderItem{},
			&model.Notification{},
			&model.Alert{},
			&model.ActivityLog{},
		)
	}, func() error {
		// role visibility filter uses jsonb containment
		return d.Exec(`CREATE INDEX IF NOT EXISTS idx_notifications_recipients ON notifications USING gin(recipients);`).Error
	}, func() error {
		return d.Exec(`CREATE INDEX IF NOT EXISTS idx_alerts_active ON alerts (chemical_id, type) WHERE is_dismissed = false;`).Error
	}, func() error {
		logger.Infof(ctx, "migrate tables done")
		return nil
	})
}
