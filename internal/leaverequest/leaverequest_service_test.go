package leaverequest_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/LabelNest/NestHR/internal/employee"
	"github.com/LabelNest/NestHR/internal/entitlement"
	entitlementerrors "github.com/LabelNest/NestHR/internal/entitlement/errors"
	"github.com/LabelNest/NestHR/internal/leaverequest"
	leaverequesterrors "github.com/LabelNest/NestHR/internal/leaverequest/errors"
	"github.com/LabelNest/NestHR/internal/leavetype"
	"github.com/LabelNest/NestHR/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeLeaveRequestRepository struct {
	withTxFn               func(tx *sql.Tx) leaverequest.Repository
	createFn               func(ctx context.Context, l *leaverequest.LeaveRequest) error
	updateStatusFn         func(ctx context.Context, l *leaverequest.LeaveRequest) error
	findByIDAndCompanyFn   func(ctx context.Context, companyID, id string) (*leaverequest.LeaveRequest, error)
	findAllByCompanyFn     func(ctx context.Context, companyID string) ([]leaverequest.LeaveRequest, error)
	findAllByEmployeeFn    func(ctx context.Context, companyID, employeeID string) ([]leaverequest.LeaveRequest, error)
	hasOverlappingPeriodFn func(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error)
}

func (f *fakeLeaveRequestRepository) WithTx(tx *sql.Tx) leaverequest.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeLeaveRequestRepository) Create(ctx context.Context, l *leaverequest.LeaveRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, l)
	}
	return nil
}

func (f *fakeLeaveRequestRepository) UpdateStatus(ctx context.Context, l *leaverequest.LeaveRequest) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, l)
	}
	return nil
}

func (f *fakeLeaveRequestRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*leaverequest.LeaveRequest, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, leaverequesterrors.ErrLeaveNotFound
}

func (f *fakeLeaveRequestRepository) FindAllByCompany(ctx context.Context, companyID string) ([]leaverequest.LeaveRequest, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeLeaveRequestRepository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]leaverequest.LeaveRequest, error) {
	if f.findAllByEmployeeFn != nil {
		return f.findAllByEmployeeFn(ctx, companyID, employeeID)
	}
	return nil, nil
}

func (f *fakeLeaveRequestRepository) HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error) {
	if f.hasOverlappingPeriodFn != nil {
		return f.hasOverlappingPeriodFn(ctx, companyID, employeeID, startDate, endDate, excludeID)
	}
	return false, nil
}

type fakeEntitlementRepository struct {
	insertMissingFn func(ctx context.Context, rows []entitlement.Entitlement) error
	reserveFn       func(ctx context.Context, companyID, employeeID, leaveType string, year, days int) error
	releaseFn       func(ctx context.Context, companyID, employeeID, leaveType string, year, days int) error
}

func (f *fakeEntitlementRepository) WithTx(tx *sql.Tx) entitlement.Repository { return f }

func (f *fakeEntitlementRepository) InsertMissing(ctx context.Context, rows []entitlement.Entitlement) error {
	if f.insertMissingFn != nil {
		return f.insertMissingFn(ctx, rows)
	}
	return nil
}

func (f *fakeEntitlementRepository) AddCarriedDays(ctx context.Context, companyID, employeeID, leaveType string, year, days int) error {
	return nil
}

func (f *fakeEntitlementRepository) Reserve(ctx context.Context, companyID, employeeID, leaveType string, year, days int) error {
	if f.reserveFn != nil {
		return f.reserveFn(ctx, companyID, employeeID, leaveType, year, days)
	}
	return nil
}

func (f *fakeEntitlementRepository) Release(ctx context.Context, companyID, employeeID, leaveType string, year, days int) error {
	if f.releaseFn != nil {
		return f.releaseFn(ctx, companyID, employeeID, leaveType, year, days)
	}
	return nil
}

func (f *fakeEntitlementRepository) Find(ctx context.Context, companyID, employeeID, leaveType string, year int) (*entitlement.Entitlement, error) {
	return nil, entitlementerrors.ErrEntitlementNotFound
}

func (f *fakeEntitlementRepository) FindAllByEmployeeYear(ctx context.Context, companyID, employeeID string, year int) ([]entitlement.Entitlement, error) {
	return nil, nil
}

type fakeEntitlementService struct {
	invalidated []string
}

func (f *fakeEntitlementService) InitializeYear(ctx context.Context, companyID, employeeID string, year int, gender string) error {
	return nil
}

func (f *fakeEntitlementService) GetBalance(ctx context.Context, companyID, employeeID, leaveType string, year int) (entitlement.BalanceResponse, error) {
	return entitlement.BalanceResponse{}, nil
}

func (f *fakeEntitlementService) GetSummary(ctx context.Context, companyID, employeeID string, year int) ([]entitlement.SummaryItem, error) {
	return nil, nil
}

func (f *fakeEntitlementService) InvalidateSummary(ctx context.Context, companyID, employeeID string, year int) {
	f.invalidated = append(f.invalidated, employeeID)
}

type fakeEmployeeRepository struct {
	findByIDAndCompanyFn func(ctx context.Context, companyID, id string) (*employee.Employee, error)
}

func (f *fakeEmployeeRepository) WithTx(tx *sql.Tx) employee.Repository { return f }

func (f *fakeEmployeeRepository) Create(ctx context.Context, e *employee.Employee) error { return nil }

func (f *fakeEmployeeRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*employee.Employee, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) FindAllByCompany(ctx context.Context, companyID string) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepository) ListActiveByCompany(ctx context.Context, companyID string) ([]employee.Employee, error) {
	return nil, nil
}

type fakeOutboxRepository struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type leaveServiceDeps struct {
	db              *sql.DB
	sqlMock         sqlmock.Sqlmock
	service         leaverequest.Service
	repo            *fakeLeaveRequestRepository
	entitlementRepo *fakeEntitlementRepository
	entitlementSvc  *fakeEntitlementService
	employeeRepo    *fakeEmployeeRepository
	outbox          *fakeOutboxRepository
}

func setupLeaveServiceTest(t *testing.T) *leaveServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeLeaveRequestRepository{}
	entitlementRepo := &fakeEntitlementRepository{}
	entitlementSvc := &fakeEntitlementService{}
	employeeRepo := &fakeEmployeeRepository{}
	outbox := &fakeOutboxRepository{}

	svc := leaverequest.NewService(
		db,
		repo,
		entitlementRepo,
		entitlementSvc,
		employeeRepo,
		leavetype.NewRegistry(),
		leaverequest.NewDayCounter(leaverequest.DayCountingCalendar),
		outbox,
	)

	return &leaveServiceDeps{
		db:              db,
		sqlMock:         sqlMock,
		service:         svc,
		repo:            repo,
		entitlementRepo: entitlementRepo,
		entitlementSvc:  entitlementSvc,
		employeeRepo:    employeeRepo,
		outbox:          outbox,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func activeEmployee(id uuid.UUID, companyID uuid.UUID, gender string) *employee.Employee {
	return &employee.Employee{
		ID:        id,
		CompanyID: companyID,
		FullName:  "Test Employee",
		Email:     "test@labelnest.io",
		Gender:    gender,
		Status:    employee.StatusActive,
	}
}

func TestLeaveRequestService_Create(t *testing.T) {
	ctx := context.Background()
	companyUUID := uuid.New()
	employeeUUID := uuid.New()
	companyID := companyUUID.String()
	actorID := employeeUUID.String()
	employeeID := employeeUUID.String()

	t.Run("success reserves balance and persists", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.employeeRepo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
			return activeEmployee(employeeUUID, companyUUID, leavetype.GenderMale), nil
		}

		var reservedDays int
		deps.entitlementRepo.reserveFn = func(ctx context.Context, cid, eid, lt string, year, days int) error {
			assert.Equal(t, companyID, cid)
			assert.Equal(t, employeeID, eid)
			assert.Equal(t, leavetype.CasualLeave, lt)
			assert.Equal(t, 2026, year)
			reservedDays = days
			return nil
		}

		resp, err := deps.service.Create(ctx, companyID, actorID, leaverequest.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  leavetype.CasualLeave,
			StartDate:  "2026-03-02",
			EndDate:    "2026-03-04",
			Reason:     "Family visit",
		})

		assert.NoError(t, err)
		assert.Equal(t, 3, reservedDays)
		assert.Equal(t, 3, resp.TotalDays)
		assert.Equal(t, leaverequest.StatusPending, resp.Status)
		assert.Len(t, deps.outbox.created, 1)
		assert.Contains(t, deps.entitlementSvc.invalidated, employeeID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("insufficient balance rolls back", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.employeeRepo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
			return activeEmployee(employeeUUID, companyUUID, leavetype.GenderMale), nil
		}
		deps.entitlementRepo.reserveFn = func(ctx context.Context, cid, eid, lt string, year, days int) error {
			return entitlementerrors.ErrInsufficientBalance
		}

		_, err := deps.service.Create(ctx, companyID, actorID, leaverequest.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  leavetype.CasualLeave,
			StartDate:  "2026-03-02",
			EndDate:    "2026-03-10",
		})

		assert.ErrorIs(t, err, entitlementerrors.ErrInsufficientBalance)
		assert.Empty(t, deps.outbox.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("menstruation leave rejected for male employee", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.employeeRepo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
			return activeEmployee(employeeUUID, companyUUID, leavetype.GenderMale), nil
		}

		_, err := deps.service.Create(ctx, companyID, actorID, leaverequest.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  leavetype.MenstruationLeave,
			StartDate:  "2026-03-02",
			EndDate:    "2026-03-02",
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrLeaveTypeNotEligible)
	})

	t.Run("menstruation leave allowed for female employee", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.employeeRepo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
			return activeEmployee(employeeUUID, companyUUID, leavetype.GenderFemale), nil
		}

		resp, err := deps.service.Create(ctx, companyID, actorID, leaverequest.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  leavetype.MenstruationLeave,
			StartDate:  "2026-03-02",
			EndDate:    "2026-03-02",
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, resp.TotalDays)
	})

	t.Run("special leave requires a reason", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.employeeRepo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
			return activeEmployee(employeeUUID, companyUUID, leavetype.GenderMale), nil
		}

		_, err := deps.service.Create(ctx, companyID, actorID, leaverequest.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  leavetype.SpecialLeave,
			StartDate:  "2026-03-02",
			EndDate:    "2026-03-02",
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrSpecialReasonRequired)
	})

	t.Run("special leave with birthday reason succeeds", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.employeeRepo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
			return activeEmployee(employeeUUID, companyUUID, leavetype.GenderMale), nil
		}

		resp, err := deps.service.Create(ctx, companyID, actorID, leaverequest.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  leavetype.SpecialLeave,
			StartDate:  "2026-03-02",
			EndDate:    "2026-03-02",
			Reason:     "Birthday",
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, resp.TotalDays)
	})

	t.Run("cross year range rejected", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, companyID, actorID, leaverequest.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  leavetype.CasualLeave,
			StartDate:  "2026-12-30",
			EndDate:    "2027-01-02",
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrCrossYearRange)
	})

	t.Run("end before start rejected", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, companyID, actorID, leaverequest.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  leavetype.CasualLeave,
			StartDate:  "2026-03-05",
			EndDate:    "2026-03-02",
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrInvalidDateRange)
	})

	t.Run("unknown leave type rejected", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.employeeRepo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
			return activeEmployee(employeeUUID, companyUUID, leavetype.GenderMale), nil
		}

		_, err := deps.service.Create(ctx, companyID, actorID, leaverequest.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  "Sabbatical",
			StartDate:  "2026-03-02",
			EndDate:    "2026-03-02",
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrInvalidLeaveType)
	})

	t.Run("overlapping request rejected", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.employeeRepo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
			return activeEmployee(employeeUUID, companyUUID, leavetype.GenderMale), nil
		}
		deps.repo.hasOverlappingPeriodFn = func(ctx context.Context, cid, eid string, startDate, endDate time.Time, excludeID *string) (bool, error) {
			return true, nil
		}

		_, err := deps.service.Create(ctx, companyID, actorID, leaverequest.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  leavetype.CasualLeave,
			StartDate:  "2026-03-02",
			EndDate:    "2026-03-04",
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrLeaveOverlap)
	})
}

func pendingRequest(id, companyUUID, employeeUUID uuid.UUID, days int) *leaverequest.LeaveRequest {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return &leaverequest.LeaveRequest{
		ID:         id,
		CompanyID:  companyUUID,
		EmployeeID: employeeUUID,
		LeaveType:  leavetype.CasualLeave,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, days-1),
		Year:       2026,
		TotalDays:  days,
		Status:     leaverequest.StatusPending,
		CreatedBy:  employeeUUID,
	}
}

func TestLeaveRequestService_Transitions(t *testing.T) {
	ctx := context.Background()
	companyUUID := uuid.New()
	employeeUUID := uuid.New()
	leaveID := uuid.New()
	companyID := companyUUID.String()
	actorID := uuid.New().String()

	t.Run("approve keeps reservation", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leaverequest.LeaveRequest, error) {
			return pendingRequest(leaveID, companyUUID, employeeUUID, 3), nil
		}

		released := false
		deps.entitlementRepo.releaseFn = func(ctx context.Context, cid, eid, lt string, year, days int) error {
			released = true
			return nil
		}

		resp, err := deps.service.Approve(ctx, companyID, actorID, leaveID.String())

		assert.NoError(t, err)
		assert.Equal(t, leaverequest.StatusApproved, resp.Status)
		assert.NotNil(t, resp.ApprovedBy)
		assert.False(t, released, "approval must not credit the ledger")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("reject releases reserved days", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leaverequest.LeaveRequest, error) {
			return pendingRequest(leaveID, companyUUID, employeeUUID, 3), nil
		}

		var releasedDays int
		deps.entitlementRepo.releaseFn = func(ctx context.Context, cid, eid, lt string, year, days int) error {
			releasedDays = days
			return nil
		}

		resp, err := deps.service.Reject(ctx, companyID, actorID, leaveID.String(), "insufficient coverage")

		assert.NoError(t, err)
		assert.Equal(t, leaverequest.StatusRejected, resp.Status)
		assert.Equal(t, 3, releasedDays)
		assert.NotNil(t, resp.RejectionReason)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("reject without reason rejected", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Reject(ctx, companyID, actorID, leaveID.String(), "")
		assert.ErrorIs(t, err, leaverequesterrors.ErrRejectionReasonRequired)
	})

	t.Run("cancel pending releases reserved days", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leaverequest.LeaveRequest, error) {
			return pendingRequest(leaveID, companyUUID, employeeUUID, 2), nil
		}

		var releasedDays int
		deps.entitlementRepo.releaseFn = func(ctx context.Context, cid, eid, lt string, year, days int) error {
			releasedDays = days
			return nil
		}

		resp, err := deps.service.Cancel(ctx, companyID, actorID, leaveID.String())

		assert.NoError(t, err)
		assert.Equal(t, leaverequest.StatusCancelled, resp.Status)
		assert.Equal(t, 2, releasedDays)
	})

	t.Run("cancel approved releases reserved days", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leaverequest.LeaveRequest, error) {
			l := pendingRequest(leaveID, companyUUID, employeeUUID, 2)
			l.Status = leaverequest.StatusApproved
			return l, nil
		}

		var releasedDays int
		deps.entitlementRepo.releaseFn = func(ctx context.Context, cid, eid, lt string, year, days int) error {
			releasedDays = days
			return nil
		}

		resp, err := deps.service.Cancel(ctx, companyID, actorID, leaveID.String())

		assert.NoError(t, err)
		assert.Equal(t, leaverequest.StatusCancelled, resp.Status)
		assert.Equal(t, 2, releasedDays)
	})

	t.Run("cancel of cancelled request is invalid", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leaverequest.LeaveRequest, error) {
			l := pendingRequest(leaveID, companyUUID, employeeUUID, 2)
			l.Status = leaverequest.StatusCancelled
			return l, nil
		}

		released := false
		deps.entitlementRepo.releaseFn = func(ctx context.Context, cid, eid, lt string, year, days int) error {
			released = true
			return nil
		}

		_, err := deps.service.Cancel(ctx, companyID, actorID, leaveID.String())

		assert.ErrorIs(t, err, leaverequesterrors.ErrInvalidStatusTransition)
		assert.False(t, released, "double cancel must not double credit")
	})

	t.Run("approve of rejected request is invalid", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leaverequest.LeaveRequest, error) {
			l := pendingRequest(leaveID, companyUUID, employeeUUID, 2)
			l.Status = leaverequest.StatusRejected
			return l, nil
		}

		_, err := deps.service.Approve(ctx, companyID, actorID, leaveID.String())
		assert.ErrorIs(t, err, leaverequesterrors.ErrInvalidStatusTransition)
	})

	t.Run("concurrent transition loses on guarded update", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leaverequest.LeaveRequest, error) {
			return pendingRequest(leaveID, companyUUID, employeeUUID, 2), nil
		}
		deps.repo.updateStatusFn = func(ctx context.Context, l *leaverequest.LeaveRequest) error {
			return leaverequesterrors.ErrInvalidStatusTransition
		}

		released := false
		deps.entitlementRepo.releaseFn = func(ctx context.Context, cid, eid, lt string, year, days int) error {
			released = true
			return nil
		}

		_, err := deps.service.Cancel(ctx, companyID, actorID, leaveID.String())

		assert.ErrorIs(t, err, leaverequesterrors.ErrInvalidStatusTransition)
		assert.False(t, released, "release must not run when the status update lost")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
