package entitlement_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/LabelNest/NestHR/internal/entitlement"
	entitlementerrors "github.com/LabelNest/NestHR/internal/entitlement/errors"
	"github.com/LabelNest/NestHR/internal/leavetype"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupRepoTest(t *testing.T) (entitlement.Repository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)

	return entitlement.NewRepository(gormDB), mock, db
}

func entitlementColumns() []string {
	return []string{
		"id", "company_id", "employee_id", "leave_type", "year",
		"total_days", "remaining_days", "created_at", "updated_at",
	}
}

func TestEntitlementRepository_Release(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	t.Run("success credits days back", func(t *testing.T) {
		repo, mock, db := setupRepoTest(t)
		defer db.Close()

		mock.ExpectExec("UPDATE leave_entitlements").
			WithArgs(companyID, employeeID, leavetype.SickLeave, 2026, 2).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Release(ctx, companyID, employeeID, leavetype.SickLeave, 2026, 2)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("over-release on an existing row is surfaced", func(t *testing.T) {
		repo, mock, db := setupRepoTest(t)
		defer db.Close()

		// The guard `remaining + days <= total` matched no row, but the row
		// itself exists: a double release, not a missing entitlement.
		mock.ExpectExec("UPDATE leave_entitlements").
			WithArgs(companyID, employeeID, leavetype.SickLeave, 2026, 5).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(companyID, employeeID, leavetype.SickLeave, 2026).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := repo.Release(ctx, companyID, employeeID, leavetype.SickLeave, 2026, 5)

		assert.ErrorIs(t, err, entitlementerrors.ErrReleaseExceedsTotal)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("release against a missing row", func(t *testing.T) {
		repo, mock, db := setupRepoTest(t)
		defer db.Close()

		mock.ExpectExec("UPDATE leave_entitlements").
			WithArgs(companyID, employeeID, leavetype.SickLeave, 2026, 1).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(companyID, employeeID, leavetype.SickLeave, 2026).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		err := repo.Release(ctx, companyID, employeeID, leavetype.SickLeave, 2026, 1)

		assert.ErrorIs(t, err, entitlementerrors.ErrEntitlementNotFound)
	})
}

func TestEntitlementRepository_Reserve(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	t.Run("exhausted balance on an existing row", func(t *testing.T) {
		repo, mock, db := setupRepoTest(t)
		defer db.Close()

		mock.ExpectExec("UPDATE leave_entitlements").
			WithArgs(companyID, employeeID, leavetype.EarnedLeave, 2026, 10).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(companyID, employeeID, leavetype.EarnedLeave, 2026).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := repo.Reserve(ctx, companyID, employeeID, leavetype.EarnedLeave, 2026, 10)

		assert.ErrorIs(t, err, entitlementerrors.ErrInsufficientBalance)
	})
}

func TestEntitlementRepository_AddCarriedDays(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	t.Run("raises total and remaining together", func(t *testing.T) {
		repo, mock, db := setupRepoTest(t)
		defer db.Close()

		mock.ExpectExec("UPDATE leave_entitlements").
			WithArgs(companyID, employeeID, leavetype.EarnedLeave, 2027, 25).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.AddCarriedDays(ctx, companyID, employeeID, leavetype.EarnedLeave, 2027, 25)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is surfaced", func(t *testing.T) {
		repo, mock, db := setupRepoTest(t)
		defer db.Close()

		mock.ExpectExec("UPDATE leave_entitlements").
			WithArgs(companyID, employeeID, leavetype.EarnedLeave, 2027, 25).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.AddCarriedDays(ctx, companyID, employeeID, leavetype.EarnedLeave, 2027, 25)

		assert.ErrorIs(t, err, entitlementerrors.ErrEntitlementNotFound)
	})
}

func TestEntitlementRepository_ReadsFollowTransaction(t *testing.T) {
	ctx := context.Background()
	companyUUID := uuid.New()
	employeeUUID := uuid.New()
	now := time.Now().UTC()

	// The repository is backed by one connection and handed a transaction from
	// another; every read must hit the transaction's connection only.
	repo, baseMock, baseDB := setupRepoTest(t)
	defer baseDB.Close()

	txDB, txMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer txDB.Close()

	txMock.ExpectBegin()
	tx, err := txDB.Begin()
	assert.NoError(t, err)

	txMock.ExpectQuery("SELECT id, company_id, employee_id").
		WithArgs(companyUUID.String(), employeeUUID.String(), leavetype.EarnedLeave, 2027).
		WillReturnRows(sqlmock.NewRows(entitlementColumns()).AddRow(
			uuid.New().String(), companyUUID.String(), employeeUUID.String(),
			leavetype.EarnedLeave, 2027, 18, 16, now, now,
		))

	got, err := repo.WithTx(tx).Find(ctx, companyUUID.String(), employeeUUID.String(), leavetype.EarnedLeave, 2027)

	assert.NoError(t, err)
	assert.Equal(t, 16, got.RemainingDays)

	txMock.ExpectQuery("SELECT id, company_id, employee_id").
		WithArgs(companyUUID.String(), employeeUUID.String(), 2027).
		WillReturnRows(sqlmock.NewRows(entitlementColumns()).AddRow(
			uuid.New().String(), companyUUID.String(), employeeUUID.String(),
			leavetype.EarnedLeave, 2027, 18, 16, now, now,
		))

	rows, err := repo.WithTx(tx).FindAllByEmployeeYear(ctx, companyUUID.String(), employeeUUID.String(), 2027)

	assert.NoError(t, err)
	assert.Len(t, rows, 1)

	assert.NoError(t, txMock.ExpectationsWereMet())
	assert.NoError(t, baseMock.ExpectationsWereMet())
}
