package carryforward

import (
	"context"
	"database/sql"
	"time"

	carryforwarderrors "github.com/LabelNest/NestHR/internal/carryforward/errors"
	"github.com/LabelNest/NestHR/internal/employee"
	"github.com/LabelNest/NestHR/internal/entitlement"
	"github.com/LabelNest/NestHR/internal/events"
	"github.com/LabelNest/NestHR/internal/leavetype"
	"github.com/LabelNest/NestHR/internal/messaging/kafka"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=carryforward_service.go -destination=mock/carryforward_service_mock.go -package=mock
type Service interface {
	Run(ctx context.Context, companyID, actorID string, fromYear int) (RunResult, error)
	GetRuns(ctx context.Context, companyID string) ([]Run, error)
}

type service struct {
	db              *sql.DB
	repo            Repository
	employeeRepo    employee.Repository
	entitlementRepo entitlement.Repository
	entitlementSvc  entitlement.Service
	registry        *leavetype.Registry
	outbox          kafka.OutboxRepository
	logger          *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employeeRepo employee.Repository,
	entitlementRepo entitlement.Repository,
	entitlementSvc entitlement.Service,
	registry *leavetype.Registry,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("carryforward.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("carryforward.service")
	}
	return &service{
		db:              db,
		repo:            repo,
		employeeRepo:    employeeRepo,
		entitlementRepo: entitlementRepo,
		entitlementSvc:  entitlementSvc,
		registry:        registry,
		outbox:          outboxRepo,
		logger:          l,
	}
}

// Run rolls every active employee's balances over the fromYear -> fromYear+1
// boundary. Employees are processed independently, each in its own
// transaction: one employee's failure is recorded and the batch continues.
func (s *service) Run(ctx context.Context, companyID, actorID string, fromYear int) (RunResult, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return RunResult{}, carryforwarderrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return RunResult{}, carryforwarderrors.ErrInvalidActorID
	}
	if fromYear < 2000 || fromYear > 2200 {
		return RunResult{}, carryforwarderrors.ErrInvalidFromYear
	}

	run := &Run{
		ID:        uuid.New(),
		CompanyID: companyUUID,
		FromYear:  fromYear,
		Status:    RunStatusProcessing,
		CreatedBy: actorUUID,
	}
	if err := s.repo.CreateRun(ctx, run); err != nil {
		return RunResult{}, err
	}

	employees, err := s.employeeRepo.ListActiveByCompany(ctx, companyID)
	if err != nil {
		s.logger.Error("carry forward list employees failed", zap.Error(err))
		return RunResult{}, err
	}

	toYear := fromYear + 1
	result := RunResult{
		RunID:    run.ID.String(),
		FromYear: fromYear,
		ToYear:   toYear,
		Failed:   []string{},
	}

	for _, emp := range employees {
		if err := s.processEmployee(ctx, companyID, emp, fromYear); err != nil {
			s.logger.Error("carry forward employee failed",
				zap.String("employee_id", emp.ID.String()),
				zap.Int("from_year", fromYear),
				zap.Error(err),
			)
			result.Failed = append(result.Failed, emp.ID.String())
			continue
		}
		result.Processed++
		s.entitlementSvc.InvalidateSummary(ctx, companyID, emp.ID.String(), toYear)
	}

	if err := s.repo.FinalizeRun(ctx, run.ID.String(), result.Processed, len(result.Failed)); err != nil {
		s.logger.Error("carry forward finalize run failed", zap.Error(err))
		return RunResult{}, err
	}

	if err := s.emitCompleted(ctx, run, result, actorID); err != nil {
		s.logger.Error("carry forward outbox persist failed", zap.Error(err))
	}

	s.logger.Info("carry forward run finished",
		zap.String("run_id", run.ID.String()),
		zap.Int("from_year", fromYear),
		zap.Int("processed", result.Processed),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

// processEmployee writes one employee's next-year rows. Quotas are recomputed
// from the registry against the employee's current gender, never copied from
// the prior year; only the carrying type adds min(prevRemaining, cap).
func (s *service) processEmployee(ctx context.Context, companyID string, emp employee.Employee, fromYear int) error {
	prevRows, err := s.entitlementRepo.FindAllByEmployeeYear(ctx, companyID, emp.ID.String(), fromYear)
	if err != nil {
		return err
	}
	prevRemaining := make(map[string]int, len(prevRows))
	for _, row := range prevRows {
		prevRemaining[row.LeaveType] = row.RemainingDays
	}

	toYear := fromYear + 1
	nextRows, err := entitlement.BuildYearRows(s.registry, companyID, emp.ID.String(), toYear, emp.Gender)
	if err != nil {
		return err
	}
	carriedByType := make(map[string]int, len(nextRows))
	for i := range nextRows {
		def, err := s.registry.Get(nextRows[i].LeaveType)
		if err != nil {
			return err
		}
		if !def.CarryForward {
			continue
		}
		carried := prevRemaining[def.ID]
		if carried > def.MaxCarryForwardDays {
			// Days beyond the cap are forfeited.
			carried = def.MaxCarryForwardDays
		}
		carriedByType[def.ID] = carried
		nextRows[i].TotalDays += carried
		nextRows[i].RemainingDays = nextRows[i].TotalDays
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	txRepo := s.entitlementRepo.WithTx(tx)

	// Next-year rows may already exist: a December request for January dates
	// provisions them lazily at plain quota. Those rows get the carried days
	// as a delta so consumed balances survive; only the rest are inserted.
	existing, err := txRepo.FindAllByEmployeeYear(ctx, companyID, emp.ID.String(), toYear)
	if err != nil {
		return err
	}
	existingTypes := make(map[string]bool, len(existing))
	for _, row := range existing {
		existingTypes[row.LeaveType] = true
	}

	toInsert := make([]entitlement.Entitlement, 0, len(nextRows))
	for _, row := range nextRows {
		if !existingTypes[row.LeaveType] {
			toInsert = append(toInsert, row)
			continue
		}
		carried := carriedByType[row.LeaveType]
		if carried == 0 {
			continue
		}
		if err := txRepo.AddCarriedDays(ctx, companyID, emp.ID.String(), row.LeaveType, toYear, carried); err != nil {
			return err
		}
	}

	if len(toInsert) > 0 {
		if err := txRepo.InsertMissing(ctx, toInsert); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *service) GetRuns(ctx context.Context, companyID string) ([]Run, error) {
	return s.repo.FindAllByCompany(ctx, companyID)
}

func (s *service) emitCompleted(ctx context.Context, run *Run, result RunResult, actorID string) error {
	event, err := kafka.NewEvent(ctx, "carry_forward_run", run.ID.String(), "carry_forward_completed", events.CarryForwardCompletedTopic, events.CarryForwardCompletedEvent{
		EventType:  "carry_forward_completed",
		RunID:      run.ID.String(),
		CompanyID:  run.CompanyID.String(),
		FromYear:   run.FromYear,
		Processed:  result.Processed,
		Failed:     result.Failed,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return s.outbox.Create(ctx, event)
}
