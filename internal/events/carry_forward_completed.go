package events

import "time"

const CarryForwardCompletedTopic = "hr.leave.carryforward.v1"

type CarryForwardCompletedEvent struct {
	EventType  string    `json:"event_type"`
	RunID      string    `json:"run_id"`
	CompanyID  string    `json:"company_id"`
	FromYear   int       `json:"from_year"`
	Processed  int       `json:"processed"`
	Failed     []string  `json:"failed"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
