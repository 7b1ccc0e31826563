package carryforward

import (
	"context"
	"errors"
	"strings"

	carryforwarderrors "github.com/LabelNest/NestHR/internal/carryforward/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

//go:generate mockgen -source=carryforward_repo.go -destination=mock/carryforward_repo_mock.go -package=mock
type Repository interface {
	CreateRun(ctx context.Context, run *Run) error
	FinalizeRun(ctx context.Context, runID string, processed, failed int) error
	FindAllByCompany(ctx context.Context, companyID string) ([]Run, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateRun claims the (company, from_year) slot. A second run for the same
// boundary trips the unique index and surfaces as AlreadyProcessed.
func (r *repository) CreateRun(ctx context.Context, run *Run) error {
	err := r.db.WithContext(ctx).Create(run).Error
	if err != nil && isUniqueRunViolation(err) {
		return carryforwarderrors.ErrAlreadyProcessed
	}
	return err
}

func (r *repository) FinalizeRun(ctx context.Context, runID string, processed, failed int) error {
	return r.db.WithContext(ctx).
		Model(&Run{}).
		Where("id = ?", runID).
		Updates(map[string]any{
			"status":    RunStatusCompleted,
			"processed": processed,
			"failed":    failed,
		}).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Run, error) {
	var runs []Run
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("from_year DESC").
		Find(&runs).Error
	return runs, err
}

func isUniqueRunViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "uq_carry_forward_runs_year"
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_carry_forward_runs_year")
}
