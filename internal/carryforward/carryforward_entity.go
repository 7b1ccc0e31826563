package carryforward

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusProcessing = "PROCESSING"
	RunStatusCompleted  = "COMPLETED"
)

// Run records one execution of the year-end carry-forward for a company.
// The unique (company_id, from_year) index is what makes re-runs fail with
// AlreadyProcessed instead of double-applying carried days.
type Run struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_carry_forward_runs_year"`
	FromYear  int       `gorm:"type:int;not null;uniqueIndex:uq_carry_forward_runs_year"`

	Status    string `gorm:"type:varchar(20);not null;default:'PROCESSING'"`
	Processed int    `gorm:"type:int;not null;default:0"`
	Failed    int    `gorm:"type:int;not null;default:0"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Run) TableName() string {
	return "carry_forward_runs"
}
