package leaverequest

import (
	"context"
	"database/sql"
	"errors"
	"time"

	leaverequesterrors "github.com/LabelNest/NestHR/internal/leaverequest/errors"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leaverequest_repo.go -destination=mock/leaverequest_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	UpdateStatus(ctx context.Context, l *LeaveRequest) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]LeaveRequest, error)
	FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]LeaveRequest, error)
	HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// Create inserts through raw SQL so request persistence and balance
// reservation commit or roll back together.
func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	query := `
        INSERT INTO leave_requests (
            id, company_id, employee_id, leave_type, start_date, end_date, year,
            total_days, reason, status, created_by, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
    `

	_, err := r.execer().ExecContext(
		ctx, query,
		l.ID, l.CompanyID, l.EmployeeID, l.LeaveType, l.StartDate, l.EndDate, l.Year,
		l.TotalDays, l.Reason, l.Status, l.CreatedBy,
	)
	return err
}

// UpdateStatus persists a state transition. The WHERE clause re-checks the
// previous status so a concurrent transition loses cleanly instead of
// double-applying ledger effects.
func (r *repository) UpdateStatus(ctx context.Context, l *LeaveRequest) error {
	query := `
UPDATE leave_requests
SET
	status = $3,
	approved_by = $4,
	approved_at = $5,
	rejection_reason = $6,
	updated_at = NOW()
WHERE id = $1
	AND company_id = $2
	AND status = $7
	AND deleted_at IS NULL
`

	res, err := r.execer().ExecContext(
		ctx, query,
		l.ID, l.CompanyID, l.Status, l.ApprovedBy, l.ApprovedAt, l.RejectionReason, l.previousStatus,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return leaverequesterrors.ErrInvalidStatusTransition
	}
	return nil
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&l, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaverequesterrors.ErrLeaveNotFound
		}
		return nil, err
	}
	l.previousStatus = l.Status
	return &l, nil
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("start_date DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Order("start_date DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Where("status NOT IN ?", []string{StatusCancelled, StatusRejected}).
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate)

	if excludeID != nil && *excludeID != "" {
		db = db.Where("id <> ?", *excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	db, _ := r.db.DB()
	return db
}
