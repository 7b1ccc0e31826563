package entitlement

type SummaryItem struct {
	LeaveType     string `json:"leave_type"`
	ShortCode     string `json:"short_code"`
	TotalDays     int    `json:"total_days"`
	RemainingDays int    `json:"remaining_days"`
}

type BalanceResponse struct {
	LeaveType     string `json:"leave_type"`
	Year          int    `json:"year"`
	TotalDays     int    `json:"total_days"`
	RemainingDays int    `json:"remaining_days"`
}
