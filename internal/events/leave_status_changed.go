package events

import "time"

const LeaveStatusChangedTopic = "hr.leave.status.v1"

// LeaveStatusChangedEvent is emitted on every leave request transition. The
// engine never formats or delivers the notification itself; the consumer
// binary does that.
type LeaveStatusChangedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id"`
	CompanyID  string    `json:"company_id"`
	EmployeeID string    `json:"employee_id"`
	LeaveType  string    `json:"leave_type"`
	Status     string    `json:"status"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
