package entitlement

import (
	"time"

	"github.com/google/uuid"
)

// Entitlement is one employee's allotted and remaining leave days for one
// leave type in one calendar year. Invariant: 0 <= remaining <= total,
// enforced by the atomic reserve/release statements in the repository.
type Entitlement struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_entitlement_key"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_entitlement_key"`

	LeaveType string `gorm:"type:varchar(30);not null;uniqueIndex:uq_entitlement_key"`
	Year      int    `gorm:"type:int;not null;uniqueIndex:uq_entitlement_key"`

	TotalDays     int `gorm:"type:int;not null"`
	RemainingDays int `gorm:"type:int;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Entitlement) TableName() string {
	return "leave_entitlements"
}
