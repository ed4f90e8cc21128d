package shared

// Permission actions. "manage" is a distinct grant: it is never expanded into
// the other four actions during checks.
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionManage = "manage"
)

// Permission resources covered by the catalog.
const (
	ResourceUsers       = "users"
	ResourceRoles       = "roles"
	ResourceEmployees   = "employees"
	ResourcePayroll     = "payroll"
	ResourceRecruitment = "recruitment"
	ResourceAttendance  = "attendance"
	ResourceLeaves      = "leaves"
	ResourceSettings    = "settings"
	ResourceAgents      = "agents"
)

// Well-known permission names referenced from middleware wiring.
const (
	PermReadUsers         = "read_users"
	PermManageUsers       = "manage_users"
	PermReadRoles         = "read_roles"
	PermManageRoles       = "manage_roles"
	PermReadEmployees     = "read_employees"
	PermManageEmployees   = "manage_employees"
	PermReadRecruitment   = "read_recruitment"
	PermManageRecruitment = "manage_recruitment"
	PermReadSettings      = "read_settings"
	PermUpdateSettings    = "update_settings"
	PermManageSettings    = "manage_settings"
	PermManageAgents      = "manage_agents"
)

// Actions lists every valid permission action.
func Actions() []string {
	return []string{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage}
}

// ValidAction reports whether the supplied action is part of the fixed verb set.
func ValidAction(action string) bool {
	switch action {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage:
		return true
	}
	return false
}
