package shared

// Permission identifiers used by RBAC route guards.
const (
	PermLedgerView       = "ledger.view"
	PermPurchasingView   = "purchasing.view"
	PermPurchasingManage = "purchasing.manage"
	PermSalesView        = "sales.view"
	PermSalesManage      = "sales.manage"
	PermProductionView   = "production.view"
	PermProductionManage = "production.manage"
	PermContentManage    = "content.manage"
	PermMasterdataView   = "masterdata.view"
	PermMasterdataManage = "masterdata.manage"
	PermNotaPrint        = "nota.print"
	PermUsersManage      = "users.manage"
)
