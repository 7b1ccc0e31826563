package entitlement

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LabelNest/NestHR/internal/leavetype"
	"github.com/LabelNest/NestHR/internal/shared/contextutil"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	SummaryKeyPrefix = "entitlements:summary:"
	summaryCacheTTL  = 5 * time.Minute
)

func GetSummaryKey(companyID, employeeID string, year int) string {
	return fmt.Sprintf("%s%s:%s:%d", SummaryKeyPrefix, companyID, employeeID, year)
}

//go:generate mockgen -source=entitlement_service.go -destination=mock/entitlement_service_mock.go -package=mock
type Service interface {
	InitializeYear(ctx context.Context, companyID, employeeID string, year int, gender string) error
	GetBalance(ctx context.Context, companyID, employeeID, leaveType string, year int) (BalanceResponse, error)
	GetSummary(ctx context.Context, companyID, employeeID string, year int) ([]SummaryItem, error)
	InvalidateSummary(ctx context.Context, companyID, employeeID string, year int)
}

type service struct {
	db       *sql.DB
	repo     Repository
	registry *leavetype.Registry
	rdb      *redis.Client
	sf       *singleflight.Group
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, registry *leavetype.Registry, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("entitlement.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("entitlement.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		registry: registry,
		rdb:      rdb,
		sf:       &singleflight.Group{},
		logger:   l,
	}
}

// InitializeYear lazily provisions one year of entitlement rows for an
// employee, one per leave type applicable to the employee's gender. Rows that
// already exist keep their balance.
func (s *service) InitializeYear(ctx context.Context, companyID, employeeID string, year int, gender string) error {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("initialize year requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("employee_id", employeeID),
		zap.Int("year", year),
	)

	rows, err := BuildYearRows(s.registry, companyID, employeeID, year, gender)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("initialize year begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).InsertMissing(ctx, rows); err != nil {
		s.logger.Error("initialize year persist failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("initialize year commit failed", zap.Error(err))
		return err
	}

	s.InvalidateSummary(ctx, companyID, employeeID, year)
	s.logger.Info("initialize year success",
		zap.String("employee_id", employeeID),
		zap.Int("year", year),
		zap.Int("types", len(rows)),
	)
	return nil
}

// BuildYearRows derives the fresh entitlement rows for one employee-year from
// the registry: total = annual quota, remaining = total.
func BuildYearRows(registry *leavetype.Registry, companyID, employeeID string, year int, gender string) ([]Entitlement, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, err
	}
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, err
	}

	defs := registry.ListForGender(gender)
	rows := make([]Entitlement, 0, len(defs))
	for _, d := range defs {
		rows = append(rows, Entitlement{
			ID:            uuid.New(),
			CompanyID:     companyUUID,
			EmployeeID:    employeeUUID,
			LeaveType:     d.ID,
			Year:          year,
			TotalDays:     d.AnnualQuotaDays,
			RemainingDays: d.AnnualQuotaDays,
		})
	}
	return rows, nil
}

func (s *service) GetBalance(ctx context.Context, companyID, employeeID, leaveType string, year int) (BalanceResponse, error) {
	e, err := s.repo.Find(ctx, companyID, employeeID, leaveType, year)
	if err != nil {
		return BalanceResponse{}, err
	}
	return BalanceResponse{
		LeaveType:     e.LeaveType,
		Year:          e.Year,
		TotalDays:     e.TotalDays,
		RemainingDays: e.RemainingDays,
	}, nil
}

// GetSummary returns the per-type balances for one employee-year. Results are
// cached in redis and deduplicated with singleflight so a dashboard burst
// issues a single query.
func (s *service) GetSummary(ctx context.Context, companyID, employeeID string, year int) ([]SummaryItem, error) {
	cacheKey := GetSummaryKey(companyID, employeeID, year)

	if s.rdb != nil {
		if val, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var items []SummaryItem
			if err := json.Unmarshal([]byte(val), &items); err == nil {
				return items, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (any, error) {
		rows, err := s.repo.FindAllByEmployeeYear(ctx, companyID, employeeID, year)
		if err != nil {
			return nil, err
		}

		items := make([]SummaryItem, 0, len(rows))
		for _, e := range rows {
			item := SummaryItem{
				LeaveType:     e.LeaveType,
				TotalDays:     e.TotalDays,
				RemainingDays: e.RemainingDays,
			}
			if def, err := s.registry.Get(e.LeaveType); err == nil {
				item.ShortCode = def.ShortCode
			}
			items = append(items, item)
		}

		if s.rdb != nil {
			if payload, err := json.Marshal(items); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, payload, summaryCacheTTL).Err(); err != nil {
					s.logger.Warn("cache entitlement summary failed", zap.Error(err))
				}
			}
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]SummaryItem), nil
}

// InvalidateSummary drops the cached summary after any balance mutation.
func (s *service) InvalidateSummary(ctx context.Context, companyID, employeeID string, year int) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, GetSummaryKey(companyID, employeeID, year)).Err(); err != nil {
		s.logger.Warn("invalidate entitlement summary failed",
			zap.String("employee_id", employeeID),
			zap.Int("year", year),
			zap.Error(err),
		)
	}
}
