package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

type Employee struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_employees_company_status"`

	EmployeeNumber string     `gorm:"type:varchar(20);not null;uniqueIndex:uq_employees_number"`
	FullName       string     `gorm:"type:varchar(150);not null"`
	Email          string     `gorm:"type:varchar(150);not null;uniqueIndex:uq_employees_email"`
	Gender         string     `gorm:"type:varchar(10);not null"`
	JoinDate       time.Time  `gorm:"type:date;not null"`
	ManagerID      *uuid.UUID `gorm:"type:uuid"`

	Status string `gorm:"type:varchar(20);not null;default:'ACTIVE';index:idx_employees_company_status"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_employees_deleted_at"`
}
