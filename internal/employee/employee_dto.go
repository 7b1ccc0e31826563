package employee

type CreateEmployeeRequest struct {
	FullName  string  `json:"full_name" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Gender    string  `json:"gender" binding:"required,oneof=Male Female"`
	JoinDate  string  `json:"join_date" binding:"required"`
	ManagerID *string `json:"manager_id"`
}

type EmployeeResponse struct {
	ID             string  `json:"id"`
	CompanyID      string  `json:"company_id"`
	EmployeeNumber string  `json:"employee_number"`
	FullName       string  `json:"full_name"`
	Email          string  `json:"email"`
	Gender         string  `json:"gender"`
	JoinDate       string  `json:"join_date"`
	ManagerID      *string `json:"manager_id,omitempty"`
	Status         string  `json:"status"`
	LeaveSummary   string  `json:"leave_summary,omitempty"`
}

type BulkRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type BulkUploadResult struct {
	Created int            `json:"created"`
	Failed  []BulkRowError `json:"failed"`
}
