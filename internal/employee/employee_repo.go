package employee

import (
	"context"
	"database/sql"
	"errors"

	employeeerrors "github.com/LabelNest/NestHR/internal/employee/errors"
	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *Employee) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Employee, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]Employee, error)
	ListActiveByCompany(ctx context.Context, companyID string) ([]Employee, error)
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

// Create inserts through raw SQL so it participates in the service-owned
// transaction alongside the outbox and entitlement writes.
func (r *repository) Create(ctx context.Context, e *Employee) error {
	query := `
        INSERT INTO employees (
            id, company_id, employee_number, full_name, email, gender, join_date, manager_id, status, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
    `

	_, err := r.execer().ExecContext(
		ctx, query,
		e.ID, e.CompanyID, e.EmployeeNumber, e.FullName, e.Email,
		e.Gender, e.JoinDate, e.ManagerID, e.Status,
	)
	return err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&e, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeerrors.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("employee_number ASC").
		Find(&employees).Error
	return employees, err
}

func (r *repository) ListActiveByCompany(ctx context.Context, companyID string) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("status = ?", StatusActive).
		Order("employee_number ASC").
		Find(&employees).Error
	return employees, err
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
