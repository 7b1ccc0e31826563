package domain

// EnforceRequest is the authorization question asked of the RBAC service:
// may this employee of this company perform action on resource?
type EnforceRequest struct {
	EmployeeID string `json:"employee_id"`
	CompanyID  string `json:"company_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
}
