package policy

import "github.com/scienceol/chemtrack/pkg/common"

// DashboardPermissions lists the feature flags the dashboard shows for role.
func DashboardPermissions(role common.Role) []string {
	switch role {
	case common.Admin:
		return []string{
			"manage_users", "manage_invitations", "view_logs", "approve_users", "delete_users",
			"modify_users", "view_inventory", "add_chemicals", "update_chemicals", "view_reports",
			"manage_safety_data", "manage_accounts", "view_financial_data",
		}
	case common.LabStaff:
		return []string{"view_inventory", "add_chemicals", "update_chemicals", "view_reports", "manage_safety_data"}
	case common.Product:
		return []string{"view_inventory", "view_reports", "export_data", "manage_product_info"}
	case common.Account:
		return []string{"view_inventory", "view_reports", "manage_accounts", "view_financial_data"}
	case common.AllUsers:
		return []string{"view_inventory", "view_reports", "basic_access"}
	default:
		return []string{}
	}
}
