package inventory

import (
	"context"
	"fmt"

	"github.com/scienceol/chemtrack/pkg/core/audit"
	"github.com/scienceol/chemtrack/pkg/core/notify"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/model"
)

// stockAlert returns the alert the item's level calls for, if any.
func stockAlert(item *model.ChemicalInventory) (model.AlertType, model.AlertSeverity, string, bool) {
	switch {
	case item.Quantity == 0:
		return model.AlertOutOfStock, model.SeverityCritical,
			fmt.Sprintf("%s is out of stock", item.Name), true
	case item.LowStock():
		return model.AlertLowStock, model.SeverityWarning,
			fmt.Sprintf("%s is low on stock: %g %s left (threshold %g)", item.Name, item.Quantity, item.Unit, *item.AlertThreshold), true
	}
	return "", "", "", false
}

// checkStock raises a stock alert unless an undismissed one of the same type
// exists for the item. Failures are logged; the inventory write already committed.
func (i *inventoryImpl) checkStock(ctx context.Context, item *model.ChemicalInventory) {
	typ, severity, msg, ok := stockAlert(item)
	if !ok {
		return
	}

	exists, err := i.alerts.HasActiveAlert(ctx, item.ID, typ)
	if err != nil {
		logger.Errorf(ctx, "check active %s alert for chemical %d err: %+v", typ, item.ID, err)
		return
	}
	if exists {
		return
	}

	alert := &model.Alert{Type: typ, Severity: severity, Message: msg, ChemicalID: &item.ID}
	entry := &audit.Entry{Action: audit.CreateAlert, Table: "alerts", Description: msg}
	if err := audit.Mutate(ctx, i.tx, i.recorder, entry, func(txCtx context.Context) ([]audit.Change, error) {
		if err := i.alerts.CreateAlert(txCtx, alert); err != nil {
			return nil, err
		}
		entry.RecordID = alert.ID
		return nil, nil
	}); err != nil {
		logger.Errorf(ctx, "raise %s alert for chemical %d err: %+v", typ, item.ID, err)
		return
	}

	if i.msgCenter == nil {
		return
	}
	if err := i.msgCenter.Broadcast(ctx, &notify.SendMsg{
		Channel:    notify.AlertRaised,
		ChemicalID: &item.ID,
		Data:       alert,
	}); err != nil {
		logger.Warnf(ctx, "broadcast alert %d err: %+v", alert.ID, err)
	}
}
