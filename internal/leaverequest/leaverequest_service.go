package leaverequest

import (
	"context"
	"database/sql"
	"time"

	"github.com/LabelNest/NestHR/internal/employee"
	"github.com/LabelNest/NestHR/internal/entitlement"
	"github.com/LabelNest/NestHR/internal/events"
	"github.com/LabelNest/NestHR/internal/leavetype"
	leaverequesterrors "github.com/LabelNest/NestHR/internal/leaverequest/errors"
	"github.com/LabelNest/NestHR/internal/messaging/kafka"
	"github.com/LabelNest/NestHR/internal/shared/contextutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

//go:generate mockgen -source=leaverequest_service.go -destination=mock/leaverequest_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreateLeaveRequest) (LeaveRequestResponse, error)
	GetAll(ctx context.Context, companyID string) ([]LeaveRequestResponse, error)
	GetByID(ctx context.Context, companyID, id string) (LeaveRequestResponse, error)
	Approve(ctx context.Context, companyID, actorID, id string) (LeaveRequestResponse, error)
	Reject(ctx context.Context, companyID, actorID, id, rejectionReason string) (LeaveRequestResponse, error)
	Cancel(ctx context.Context, companyID, actorID, id string) (LeaveRequestResponse, error)
}

type service struct {
	db              *sql.DB
	repo            Repository
	entitlementRepo entitlement.Repository
	entitlementSvc  entitlement.Service
	employeeRepo    employee.Repository
	registry        *leavetype.Registry
	dayCounter      DayCounter
	outbox          kafka.OutboxRepository
	logger          *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	entitlementRepo entitlement.Repository,
	entitlementSvc entitlement.Service,
	employeeRepo employee.Repository,
	registry *leavetype.Registry,
	dayCounter DayCounter,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leaverequest.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leaverequest.service")
	}
	return &service{
		db:              db,
		repo:            repo,
		entitlementRepo: entitlementRepo,
		entitlementSvc:  entitlementSvc,
		employeeRepo:    employeeRepo,
		registry:        registry,
		dayCounter:      dayCounter,
		outbox:          outboxRepo,
		logger:          l,
	}
}

// Create validates the request against the leave policy, reserves balance and
// persists the request in one transaction. The request exists only if the
// reservation succeeded.
func (s *service) Create(ctx context.Context, companyID, actorID string, req CreateLeaveRequest) (LeaveRequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create leave requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("leave_type", req.LeaveType),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidCompanyID
	}
	createdByUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidActorID
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidEmployeeID
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	if startDate.After(endDate) {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidDateRange
	}
	// One entitlement year per request; a span across New Year must be split
	// by the requester.
	if startDate.Year() != endDate.Year() {
		return LeaveRequestResponse{}, leaverequesterrors.ErrCrossYearRange
	}

	emp, err := s.employeeRepo.FindByIDAndCompany(ctx, companyID, req.EmployeeID)
	if err != nil {
		return LeaveRequestResponse{}, err
	}

	def, err := s.registry.Get(req.LeaveType)
	if err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidLeaveType
	}
	// Eligibility is checked before any ledger mutation.
	if def.GenderRestriction != "" && def.GenderRestriction != emp.Gender {
		s.logger.Warn("create leave gender ineligible",
			zap.String("employee_id", req.EmployeeID),
			zap.String("leave_type", req.LeaveType),
		)
		return LeaveRequestResponse{}, leaverequesterrors.ErrLeaveTypeNotEligible
	}
	if def.RequiresSpecialReason && req.Reason == "" {
		return LeaveRequestResponse{}, leaverequesterrors.ErrSpecialReasonRequired
	}

	totalDays := s.dayCounter.Count(startDate, endDate)
	if totalDays <= 0 {
		return LeaveRequestResponse{}, leaverequesterrors.ErrZeroDayRange
	}

	overlap, err := s.repo.HasOverlappingPeriod(ctx, companyID, req.EmployeeID, startDate, endDate, nil)
	if err != nil {
		s.logger.Error("create leave overlap check failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	if overlap {
		return LeaveRequestResponse{}, leaverequesterrors.ErrLeaveOverlap
	}

	year := startDate.Year()
	l := &LeaveRequest{
		ID:         uuid.New(),
		CompanyID:  companyUUID,
		EmployeeID: employeeUUID,
		LeaveType:  req.LeaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		Year:       year,
		TotalDays:  totalDays,
		Reason:     req.Reason,
		Status:     StatusPending,
		CreatedBy:  createdByUUID,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qEntitlements := s.entitlementRepo.WithTx(tx)

	// Lazy provisioning: first request of the year creates the rows.
	rows, err := entitlement.BuildYearRows(s.registry, companyID, req.EmployeeID, year, emp.Gender)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	if err := qEntitlements.InsertMissing(ctx, rows); err != nil {
		s.logger.Error("create leave entitlement init failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	if err := qEntitlements.Reserve(ctx, companyID, req.EmployeeID, req.LeaveType, year, totalDays); err != nil {
		s.logger.Warn("create leave reserve failed",
			zap.String("employee_id", req.EmployeeID),
			zap.String("leave_type", req.LeaveType),
			zap.Int("days", totalDays),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}

	if err := s.repo.WithTx(tx).Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	if err := s.createStatusEvent(ctx, tx, l, actorID); err != nil {
		return LeaveRequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	s.entitlementSvc.InvalidateSummary(ctx, companyID, req.EmployeeID, year)
	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.Int("days", totalDays),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]LeaveRequestResponse, error) {
	requests, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (LeaveRequestResponse, error) {
	l, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	return mapToResponse(*l), nil
}

// isAllowedStatusTransition encodes the lifecycle: PENDING branches to all
// three outcomes, an APPROVED request can still be cancelled (admin
// correction), REJECTED and CANCELLED are terminal.
func isAllowedStatusTransition(currentStatus, targetStatus string) bool {
	switch currentStatus {
	case StatusPending:
		return targetStatus == StatusApproved ||
			targetStatus == StatusRejected ||
			targetStatus == StatusCancelled
	case StatusApproved:
		return targetStatus == StatusCancelled
	default:
		return false
	}
}

// Approve confirms consumption of the balance reserved at creation time.
// No ledger mutation happens here.
func (s *service) Approve(ctx context.Context, companyID, actorID, id string) (LeaveRequestResponse, error) {
	return s.transition(ctx, companyID, actorID, id, StatusApproved, nil)
}

// Reject releases the reserved days back to the ledger.
func (s *service) Reject(ctx context.Context, companyID, actorID, id, rejectionReason string) (LeaveRequestResponse, error) {
	if rejectionReason == "" {
		return LeaveRequestResponse{}, leaverequesterrors.ErrRejectionReasonRequired
	}
	return s.transition(ctx, companyID, actorID, id, StatusRejected, &rejectionReason)
}

// Cancel withdraws a pending request or voids an approved one, releasing the
// reserved days exactly once. Cancelling a terminal request is an invalid
// transition, never a second credit.
func (s *service) Cancel(ctx context.Context, companyID, actorID, id string) (LeaveRequestResponse, error) {
	return s.transition(ctx, companyID, actorID, id, StatusCancelled, nil)
}

func (s *service) transition(ctx context.Context, companyID, actorID, id, targetStatus string, rejectionReason *string) (LeaveRequestResponse, error) {
	s.logger.Debug("transition leave status requested",
		zap.String("leave_id", id),
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
		zap.String("target_status", targetStatus),
	)

	if _, err := uuid.Parse(companyID); err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidActorID
	}

	l, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	if !isAllowedStatusTransition(l.Status, targetStatus) {
		s.logger.Warn("transition leave status invalid",
			zap.String("leave_id", id),
			zap.String("from_status", l.Status),
			zap.String("to_status", targetStatus),
		)
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidStatusTransition
	}

	releaseDays := 0
	switch targetStatus {
	case StatusApproved:
		l.ApprovedBy = &actorUUID
		now := time.Now().UTC()
		l.ApprovedAt = &now
		l.RejectionReason = nil
	case StatusRejected:
		l.ApprovedBy = nil
		l.ApprovedAt = nil
		l.RejectionReason = rejectionReason
		releaseDays = l.TotalDays
	case StatusCancelled:
		releaseDays = l.TotalDays
	}
	l.Status = targetStatus

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("transition leave status begin tx failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	// The guarded status update runs first: if a concurrent transition won,
	// zero rows match and the release below never executes.
	if err := s.repo.WithTx(tx).UpdateStatus(ctx, l); err != nil {
		s.logger.Warn("transition leave status persist failed",
			zap.String("leave_id", id),
			zap.String("target_status", targetStatus),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}

	if releaseDays > 0 {
		if err := s.entitlementRepo.WithTx(tx).Release(
			ctx, companyID, l.EmployeeID.String(), l.LeaveType, l.Year, releaseDays,
		); err != nil {
			s.logger.Error("transition leave release failed",
				zap.String("leave_id", id),
				zap.Int("days", releaseDays),
				zap.Error(err),
			)
			return LeaveRequestResponse{}, err
		}
	}

	if err := s.createStatusEvent(ctx, tx, l, actorID); err != nil {
		return LeaveRequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("transition leave status commit failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	if releaseDays > 0 {
		s.entitlementSvc.InvalidateSummary(ctx, companyID, l.EmployeeID.String(), l.Year)
	}
	s.logger.Info("transition leave status success",
		zap.String("leave_id", id),
		zap.String("status", targetStatus),
	)
	return mapToResponse(*l), nil
}

func (s *service) createStatusEvent(ctx context.Context, tx *sql.Tx, l *LeaveRequest, actorID string) error {
	event, err := kafka.NewEvent(ctx, "leave_request", l.ID.String(), "leave_status_changed", events.LeaveStatusChangedTopic, events.LeaveStatusChangedEvent{
		EventType:  "leave_status_changed",
		RequestID:  l.ID.String(),
		CompanyID:  l.CompanyID.String(),
		EmployeeID: l.EmployeeID.String(),
		LeaveType:  l.LeaveType,
		Status:     l.Status,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		s.logger.Error("leave status outbox persist failed",
			zap.String("leave_id", l.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaverequesterrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:         l.ID.String(),
		CompanyID:  l.CompanyID.String(),
		EmployeeID: l.EmployeeID.String(),
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		Year:       l.Year,
		TotalDays:  l.TotalDays,
		Reason:     l.Reason,
		Status:     l.Status,
		CreatedBy:  l.CreatedBy.String(),
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	resp.RejectionReason = l.RejectionReason
	return resp
}

func mapToListResponse(requests []LeaveRequest) []LeaveRequestResponse {
	resp := make([]LeaveRequestResponse, len(requests))
	for i, l := range requests {
		resp[i] = mapToResponse(l)
	}
	return resp
}
