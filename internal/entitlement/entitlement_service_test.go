package entitlement_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/LabelNest/NestHR/internal/entitlement"
	entitlementerrors "github.com/LabelNest/NestHR/internal/entitlement/errors"
	"github.com/LabelNest/NestHR/internal/leavetype"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeRepository struct {
	insertMissingFn         func(ctx context.Context, rows []entitlement.Entitlement) error
	findFn                  func(ctx context.Context, companyID, employeeID, leaveType string, year int) (*entitlement.Entitlement, error)
	findAllByEmployeeYearFn func(ctx context.Context, companyID, employeeID string, year int) ([]entitlement.Entitlement, error)
}

func (f *fakeRepository) WithTx(tx *sql.Tx) entitlement.Repository { return f }

func (f *fakeRepository) InsertMissing(ctx context.Context, rows []entitlement.Entitlement) error {
	if f.insertMissingFn != nil {
		return f.insertMissingFn(ctx, rows)
	}
	return nil
}

func (f *fakeRepository) AddCarriedDays(ctx context.Context, companyID, employeeID, leaveType string, year, days int) error {
	return nil
}

func (f *fakeRepository) Reserve(ctx context.Context, companyID, employeeID, leaveType string, year, days int) error {
	return nil
}

func (f *fakeRepository) Release(ctx context.Context, companyID, employeeID, leaveType string, year, days int) error {
	return nil
}

func (f *fakeRepository) Find(ctx context.Context, companyID, employeeID, leaveType string, year int) (*entitlement.Entitlement, error) {
	if f.findFn != nil {
		return f.findFn(ctx, companyID, employeeID, leaveType, year)
	}
	return nil, entitlementerrors.ErrEntitlementNotFound
}

func (f *fakeRepository) FindAllByEmployeeYear(ctx context.Context, companyID, employeeID string, year int) ([]entitlement.Entitlement, error) {
	if f.findAllByEmployeeYearFn != nil {
		return f.findAllByEmployeeYearFn(ctx, companyID, employeeID, year)
	}
	return nil, nil
}

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   entitlement.Service
	repo      *fakeRepository
	redisMock redismock.ClientMock
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	dbRedis, redisMock := redismock.NewClientMock()
	repo := &fakeRepository{}

	svc := entitlement.NewService(db, repo, leavetype.NewRegistry(), dbRedis)

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   svc,
		repo:      repo,
		redisMock: redisMock,
	}
}

func TestEntitlementService_InitializeYear(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	t.Run("female employee gets five rows", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.redisMock.ExpectDel(entitlement.GetSummaryKey(companyID, employeeID, 2026)).SetVal(1)

		var inserted []entitlement.Entitlement
		deps.repo.insertMissingFn = func(ctx context.Context, rows []entitlement.Entitlement) error {
			inserted = rows
			return nil
		}

		err := deps.service.InitializeYear(ctx, companyID, employeeID, 2026, leavetype.GenderFemale)

		assert.NoError(t, err)
		assert.Len(t, inserted, 5)
		for _, row := range inserted {
			assert.Equal(t, row.TotalDays, row.RemainingDays, "fresh rows start full")
			assert.Equal(t, 2026, row.Year)
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("male employee gets four rows", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.redisMock.ExpectDel(entitlement.GetSummaryKey(companyID, employeeID, 2026)).SetVal(1)

		var inserted []entitlement.Entitlement
		deps.repo.insertMissingFn = func(ctx context.Context, rows []entitlement.Entitlement) error {
			inserted = rows
			return nil
		}

		err := deps.service.InitializeYear(ctx, companyID, employeeID, 2026, leavetype.GenderMale)

		assert.NoError(t, err)
		assert.Len(t, inserted, 4)
	})

	t.Run("invalid company id fails before tx", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		err := deps.service.InitializeYear(ctx, "not-a-uuid", employeeID, 2026, leavetype.GenderMale)
		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestEntitlementService_GetSummary(t *testing.T) {
	ctx := context.Background()
	companyUUID := uuid.New()
	employeeUUID := uuid.New()
	companyID := companyUUID.String()
	employeeID := employeeUUID.String()
	cacheKey := entitlement.GetSummaryKey(companyID, employeeID, 2026)

	dbRows := []entitlement.Entitlement{
		{
			ID:            uuid.New(),
			CompanyID:     companyUUID,
			EmployeeID:    employeeUUID,
			LeaveType:     leavetype.CasualLeave,
			Year:          2026,
			TotalDays:     6,
			RemainingDays: 4,
		},
		{
			ID:            uuid.New(),
			CompanyID:     companyUUID,
			EmployeeID:    employeeUUID,
			LeaveType:     leavetype.EarnedLeave,
			Year:          2026,
			TotalDays:     18,
			RemainingDays: 18,
		},
	}

	expectedItems := []entitlement.SummaryItem{
		{LeaveType: leavetype.CasualLeave, ShortCode: "CL", TotalDays: 6, RemainingDays: 4},
		{LeaveType: leavetype.EarnedLeave, ShortCode: "EL", TotalDays: 18, RemainingDays: 18},
	}

	t.Run("cache miss reads db and populates cache", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		payload, err := json.Marshal(expectedItems)
		assert.NoError(t, err)

		deps.redisMock.ExpectGet(cacheKey).RedisNil()
		deps.redisMock.ExpectSet(cacheKey, payload, 5*time.Minute).SetVal("OK")

		deps.repo.findAllByEmployeeYearFn = func(ctx context.Context, cid, eid string, year int) ([]entitlement.Entitlement, error) {
			return dbRows, nil
		}

		items, err := deps.service.GetSummary(ctx, companyID, employeeID, 2026)

		assert.NoError(t, err)
		assert.Equal(t, expectedItems, items)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("cache hit skips the db", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		payload, err := json.Marshal(expectedItems)
		assert.NoError(t, err)

		deps.redisMock.ExpectGet(cacheKey).SetVal(string(payload))

		deps.repo.findAllByEmployeeYearFn = func(ctx context.Context, cid, eid string, year int) ([]entitlement.Entitlement, error) {
			t.Fatal("db must not be queried on a cache hit")
			return nil, nil
		}

		items, err := deps.service.GetSummary(ctx, companyID, employeeID, 2026)

		assert.NoError(t, err)
		assert.Equal(t, expectedItems, items)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})
}

func TestEntitlementService_GetBalance(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	t.Run("found", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.findFn = func(ctx context.Context, cid, eid, lt string, year int) (*entitlement.Entitlement, error) {
			return &entitlement.Entitlement{
				LeaveType:     leavetype.SickLeave,
				Year:          2026,
				TotalDays:     6,
				RemainingDays: 5,
			}, nil
		}

		balance, err := deps.service.GetBalance(ctx, companyID, employeeID, leavetype.SickLeave, 2026)

		assert.NoError(t, err)
		assert.Equal(t, 5, balance.RemainingDays)
		assert.Equal(t, 6, balance.TotalDays)
	})

	t.Run("missing row", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.GetBalance(ctx, companyID, employeeID, leavetype.SickLeave, 2026)
		assert.ErrorIs(t, err, entitlementerrors.ErrEntitlementNotFound)
	})
}
