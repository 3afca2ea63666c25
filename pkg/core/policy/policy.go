// Package policy decides which roles may run an operation and which inventory
// fields each role may write.
package policy

import (
	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
)

type Operation string

const (
	CreateInventory     Operation = "create_inventory"
	DeleteInventory     Operation = "delete_inventory"
	CreateTransaction   Operation = "create_transaction"
	UpdateTransaction   Operation = "update_transaction"
	ApproveTransaction  Operation = "approve_transaction"
	DeleteTransaction   Operation = "delete_transaction"
	CreatePurchaseOrder Operation = "create_purchase_order"
	UpdatePurchaseOrder Operation = "update_purchase_order"
	DeletePurchaseOrder Operation = "delete_purchase_order"
	CreateAlert         Operation = "create_alert"
	DeleteAlert         Operation = "delete_alert"
	DeleteNotification  Operation = "delete_notification"
	ManageUsers         Operation = "manage_users"
	ViewActivity        Operation = "view_activity"
)

var Operations = []Operation{
	CreateInventory, DeleteInventory,
	CreateTransaction, UpdateTransaction, ApproveTransaction, DeleteTransaction,
	CreatePurchaseOrder, UpdatePurchaseOrder, DeletePurchaseOrder,
	CreateAlert, DeleteAlert, DeleteNotification,
	ManageUsers, ViewActivity,
}

// Allowed reports whether role may run op.
func Allowed(role common.Role, op Operation) bool {
	switch role {
	case common.Admin:
		return true
	case common.LabStaff, common.Product:
		return op == CreateInventory
	case common.Account:
		switch op {
		case CreateTransaction, UpdateTransaction, CreatePurchaseOrder, UpdatePurchaseOrder:
			return true
		}
		return false
	case common.AllUsers:
		return false
	default:
		return false
	}
}

func Authorize(role common.Role, op Operation) error {
	if Allowed(role, op) {
		return nil
	}
	return code.PermissionDenied.WithMsgf("role %q is not allowed to %s", string(role), opVerb(op))
}

func opVerb(op Operation) string {
	switch op {
	case CreateInventory:
		return "create chemicals"
	case DeleteInventory:
		return "delete chemicals"
	case CreateTransaction:
		return "create transactions"
	case UpdateTransaction:
		return "update transactions"
	case ApproveTransaction:
		return "approve or reject transactions"
	case DeleteTransaction:
		return "delete transactions"
	case CreatePurchaseOrder:
		return "create purchase orders"
	case UpdatePurchaseOrder:
		return "update purchase orders"
	case DeletePurchaseOrder:
		return "delete purchase orders"
	case CreateAlert:
		return "create alerts"
	case DeleteAlert:
		return "delete alerts"
	case DeleteNotification:
		return "delete this notification"
	case ManageUsers:
		return "manage users"
	case ViewActivity:
		return "view activity logs"
	}
	return string(op)
}
