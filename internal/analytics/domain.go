package analytics

// StatusCount pairs an employment status with its headcount.
type StatusCount struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Count  int64  `json:"count"`
}

// MonthlyTurnover is one month of the turnover series.
type MonthlyTurnover struct {
	Month      string  `json:"month"`
	Joined     int64   `json:"joined"`
	Left       int64   `json:"left"`
	Headcount  int64   `json:"headcount"`
	TurnoverPc float64 `json:"turnoverPercent"`
}

// DepartmentShare is one department's slice of the headcount.
type DepartmentShare struct {
	DepartmentID int64   `json:"departmentId"`
	Department   string  `json:"department"`
	Count        int64   `json:"count"`
	Percent      float64 `json:"percent"`
}

// DepartmentGrowth tracks hires per department over the trailing year.
type DepartmentGrowth struct {
	DepartmentID int64  `json:"departmentId"`
	Department   string `json:"department"`
	Hires        int64  `json:"hires"`
}

// TenureReport summarises how long the workforce has been around.
type TenureReport struct {
	AverageTenureMonths float64            `json:"averageTenureMonths"`
	RecentHires         int64              `json:"recentHires"`
	DepartmentGrowth    []DepartmentGrowth `json:"departmentGrowth"`
}

// Dashboard bundles every widget the overview page renders.
type Dashboard struct {
	EmployeeStatus []StatusCount     `json:"employeeStatus"`
	Turnover       []MonthlyTurnover `json:"turnover"`
	Departments    []DepartmentShare `json:"departments"`
	Tenure         TenureReport      `json:"tenure"`
}
