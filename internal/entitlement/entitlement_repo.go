package entitlement

import (
	"context"
	"database/sql"
	"errors"

	entitlementerrors "github.com/LabelNest/NestHR/internal/entitlement/errors"
	"gorm.io/gorm"
)

//go:generate mockgen -source=entitlement_repo.go -destination=mock/entitlement_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	InsertMissing(ctx context.Context, rows []Entitlement) error
	AddCarriedDays(ctx context.Context, companyID, employeeID, leaveType string, year, days int) error
	Reserve(ctx context.Context, companyID, employeeID, leaveType string, year, days int) error
	Release(ctx context.Context, companyID, employeeID, leaveType string, year, days int) error
	Find(ctx context.Context, companyID, employeeID, leaveType string, year int) (*Entitlement, error)
	FindAllByEmployeeYear(ctx context.Context, companyID, employeeID string, year int) ([]Entitlement, error)
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

// InsertMissing creates entitlement rows that do not exist yet. Existing rows
// are left untouched so a re-run never overwrites a consumed balance.
func (r *repository) InsertMissing(ctx context.Context, rows []Entitlement) error {
	query := `
        INSERT INTO leave_entitlements (
            id, company_id, employee_id, leave_type, year, total_days, remaining_days, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        ON CONFLICT (company_id, employee_id, leave_type, year) DO NOTHING
    `

	exec := r.execer()
	for _, e := range rows {
		if _, err := exec.ExecContext(
			ctx, query,
			e.ID, e.CompanyID, e.EmployeeID, e.LeaveType, e.Year, e.TotalDays, e.RemainingDays,
		); err != nil {
			return err
		}
	}
	return nil
}

// AddCarriedDays raises total and remaining together on an existing row, for
// rows that were provisioned before the year-end rollover computed the carry.
func (r *repository) AddCarriedDays(ctx context.Context, companyID, employeeID, leaveType string, year, days int) error {
	query := `
UPDATE leave_entitlements
SET
	total_days = total_days + $5,
	remaining_days = remaining_days + $5,
	updated_at = NOW()
WHERE company_id = $1
	AND employee_id = $2
	AND leave_type = $3
	AND year = $4
`

	res, err := r.execer().ExecContext(ctx, query, companyID, employeeID, leaveType, year, days)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entitlementerrors.ErrEntitlementNotFound
	}
	return nil
}

// Reserve decrements remaining_days atomically. The WHERE clause is the
// compare-and-swap: two concurrent reservations for the same key serialize on
// the row lock and the second one fails once the balance is exhausted.
func (r *repository) Reserve(ctx context.Context, companyID, employeeID, leaveType string, year, days int) error {
	query := `
UPDATE leave_entitlements
SET
	remaining_days = remaining_days - $5,
	updated_at = NOW()
WHERE company_id = $1
	AND employee_id = $2
	AND leave_type = $3
	AND year = $4
	AND remaining_days >= $5
`

	res, err := r.execer().ExecContext(ctx, query, companyID, employeeID, leaveType, year, days)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return r.classifyNoRowUpdate(ctx, companyID, employeeID, leaveType, year, entitlementerrors.ErrInsufficientBalance)
	}
	return nil
}

// Release credits days back, guarded so remaining never exceeds total. A
// release that would overflow is a caller bug (double cancellation) and is
// surfaced, not clamped.
func (r *repository) Release(ctx context.Context, companyID, employeeID, leaveType string, year, days int) error {
	query := `
UPDATE leave_entitlements
SET
	remaining_days = remaining_days + $5,
	updated_at = NOW()
WHERE company_id = $1
	AND employee_id = $2
	AND leave_type = $3
	AND year = $4
	AND remaining_days + $5 <= total_days
`

	res, err := r.execer().ExecContext(ctx, query, companyID, employeeID, leaveType, year, days)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return r.classifyNoRowUpdate(ctx, companyID, employeeID, leaveType, year, entitlementerrors.ErrReleaseExceedsTotal)
	}
	return nil
}

// classifyNoRowUpdate disambiguates a zero-row CAS update: either the
// entitlement row does not exist, or it exists and the guard failed.
func (r *repository) classifyNoRowUpdate(ctx context.Context, companyID, employeeID, leaveType string, year int, guardErr error) error {
	var exists bool
	query := `
SELECT EXISTS (
	SELECT 1 FROM leave_entitlements
	WHERE company_id = $1 AND employee_id = $2 AND leave_type = $3 AND year = $4
)
`
	if err := r.queryer().QueryRowContext(ctx, query, companyID, employeeID, leaveType, year).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return entitlementerrors.ErrEntitlementNotFound
	}
	return guardErr
}

func (r *repository) Find(ctx context.Context, companyID, employeeID, leaveType string, year int) (*Entitlement, error) {
	query := `
SELECT id, company_id, employee_id, leave_type, year, total_days, remaining_days, created_at, updated_at
FROM leave_entitlements
WHERE company_id = $1 AND employee_id = $2 AND leave_type = $3 AND year = $4
`

	var e Entitlement
	err := r.queryer().QueryRowContext(ctx, query, companyID, employeeID, leaveType, year).Scan(
		&e.ID, &e.CompanyID, &e.EmployeeID, &e.LeaveType, &e.Year,
		&e.TotalDays, &e.RemainingDays, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entitlementerrors.ErrEntitlementNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *repository) FindAllByEmployeeYear(ctx context.Context, companyID, employeeID string, year int) ([]Entitlement, error) {
	query := `
SELECT id, company_id, employee_id, leave_type, year, total_days, remaining_days, created_at, updated_at
FROM leave_entitlements
WHERE company_id = $1 AND employee_id = $2 AND year = $3
ORDER BY leave_type ASC
`

	res, err := r.queryer().QueryContext(ctx, query, companyID, employeeID, year)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	var rows []Entitlement
	for res.Next() {
		var e Entitlement
		if err := res.Scan(
			&e.ID, &e.CompanyID, &e.EmployeeID, &e.LeaveType, &e.Year,
			&e.TotalDays, &e.RemainingDays, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rows = append(rows, e)
	}
	return rows, res.Err()
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

func (r *repository) queryer() interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
} {
	if r.tx != nil {
		return r.tx
	}
	db, _ := r.db.DB()
	return db
}
