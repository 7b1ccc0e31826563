package employee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	employeeerrors "github.com/LabelNest/NestHR/internal/employee/errors"
	"github.com/LabelNest/NestHR/internal/entitlement"
	"github.com/LabelNest/NestHR/internal/events"
	"github.com/LabelNest/NestHR/internal/leavetype"
	"github.com/LabelNest/NestHR/internal/messaging/kafka"
	"github.com/LabelNest/NestHR/internal/shared/contextutil"
	"github.com/LabelNest/NestHR/internal/shared/counter"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const employeeNumberCounter = "employee_number"

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context, companyID string) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, companyID, id string) (EmployeeResponse, error)
	BulkUpload(ctx context.Context, companyID string, file io.Reader) (BulkUploadResult, error)
}

type service struct {
	db              *sql.DB
	repo            Repository
	counter         counter.Repository
	entitlementRepo entitlement.Repository
	outbox          kafka.OutboxRepository
	registry        *leavetype.Registry
	logger          *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counterRepo counter.Repository,
	entitlementRepo entitlement.Repository,
	outboxRepo kafka.OutboxRepository,
	registry *leavetype.Registry,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:              db,
		repo:            repo,
		counter:         counterRepo,
		entitlementRepo: entitlementRepo,
		outbox:          outboxRepo,
		registry:        registry,
		logger:          l,
	}
}

// Create provisions an employee: number from the per-company counter, the
// employee row, the current year's leave entitlements, and the lifecycle
// outbox event, all in one transaction.
func (s *service) Create(ctx context.Context, companyID string, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("email", req.Email),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidCompanyID
	}

	joinDate, err := time.Parse("2006-01-02", req.JoinDate)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidJoinDate
	}

	var managerID *uuid.UUID
	if req.ManagerID != nil && *req.ManagerID != "" {
		parsed, err := uuid.Parse(*req.ManagerID)
		if err != nil {
			return EmployeeResponse{}, employeeerrors.ErrInvalidManagerID
		}
		managerID = &parsed
	}

	nextNumber, err := s.counter.GetNextValue(ctx, companyID, employeeNumberCounter)
	if err != nil {
		s.logger.Error("create employee counter failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	e := &Employee{
		ID:             uuid.New(),
		CompanyID:      companyUUID,
		EmployeeNumber: fmt.Sprintf("EMP-%04d", nextNumber),
		FullName:       req.FullName,
		Email:          strings.ToLower(req.Email),
		Gender:         req.Gender,
		JoinDate:       joinDate,
		ManagerID:      managerID,
		Status:         StatusActive,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, e); err != nil {
		if isUniqueViolation(err, "uq_employees_email") {
			return EmployeeResponse{}, employeeerrors.ErrEmailTaken
		}
		s.logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	year := joinDate.Year()
	rows, err := entitlement.BuildYearRows(s.registry, companyID, e.ID.String(), year, e.Gender)
	if err != nil {
		return EmployeeResponse{}, err
	}
	if err := s.entitlementRepo.WithTx(tx).InsertMissing(ctx, rows); err != nil {
		s.logger.Error("create employee entitlement init failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	event, err := kafka.NewEvent(ctx, "employee", e.ID.String(), "employee_created", events.EmployeeCreatedTopic, events.EmployeeCreatedEvent{
		EventType:  "employee_created",
		EmployeeID: e.ID.String(),
		CompanyID:  companyID,
		Gender:     e.Gender,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return EmployeeResponse{}, err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		s.logger.Error("create employee outbox persist failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.logger.Info("create employee success",
		zap.String("employee_id", e.ID.String()),
		zap.String("employee_number", e.EmployeeNumber),
	)
	return s.mapToResponse(*e), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]EmployeeResponse, error) {
	employees, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	resp := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = s.mapToResponse(e)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	e, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return EmployeeResponse{}, err
	}
	return s.mapToResponse(*e), nil
}

// BulkUpload ingests an xlsx sheet with columns full_name, email, gender,
// join_date (header row skipped). Row failures are collected, not fatal.
func (s *service) BulkUpload(ctx context.Context, companyID string, file io.Reader) (BulkUploadResult, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return BulkUploadResult{}, employeeerrors.ErrEmptyUpload
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return BulkUploadResult{}, err
	}
	if len(rows) <= 1 {
		return BulkUploadResult{}, employeeerrors.ErrEmptyUpload
	}

	result := BulkUploadResult{Failed: []BulkRowError{}}
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header

		if len(row) < 4 {
			result.Failed = append(result.Failed, BulkRowError{Row: rowNum, Reason: "expected columns: full_name, email, gender, join_date"})
			continue
		}

		req := CreateEmployeeRequest{
			FullName: strings.TrimSpace(row[0]),
			Email:    strings.TrimSpace(row[1]),
			Gender:   strings.TrimSpace(row[2]),
			JoinDate: strings.TrimSpace(row[3]),
		}
		if req.FullName == "" || req.Email == "" {
			result.Failed = append(result.Failed, BulkRowError{Row: rowNum, Reason: "full_name and email are required"})
			continue
		}
		if req.Gender != leavetype.GenderMale && req.Gender != leavetype.GenderFemale {
			result.Failed = append(result.Failed, BulkRowError{Row: rowNum, Reason: "gender must be Male or Female"})
			continue
		}

		if _, err := s.Create(ctx, companyID, req); err != nil {
			result.Failed = append(result.Failed, BulkRowError{Row: rowNum, Reason: err.Error()})
			continue
		}
		result.Created++
	}

	s.logger.Info("bulk upload finished",
		zap.String("company_id", companyID),
		zap.Int("created", result.Created),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func (s *service) mapToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:             e.ID.String(),
		CompanyID:      e.CompanyID.String(),
		EmployeeNumber: e.EmployeeNumber,
		FullName:       e.FullName,
		Email:          e.Email,
		Gender:         e.Gender,
		JoinDate:       e.JoinDate.Format("2006-01-02"),
		Status:         e.Status,
		LeaveSummary:   s.registry.SummaryText(e.Gender),
	}
	if e.ManagerID != nil {
		v := e.ManagerID.String()
		resp.ManagerID = &v
	}
	return resp
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, constraint)
}
