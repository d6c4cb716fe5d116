package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPaymentStore creates a GormPaymentStore with a mocked SQL connection
func newMockPaymentStore(t *testing.T) (*GormPaymentStore, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPaymentStore(gormDB), mock, mockDB
}

func TestGormPaymentStore_AmountPaid(t *testing.T) {
	t.Run("sums all records for the sale", func(t *testing.T) {
		store, mock, mockDB := newMockPaymentStore(t)
		defer mockDB.Close()

		saleID := uuid.New()

		mock.ExpectQuery(`SELECT SUM\(amount\) FROM "payment_records" WHERE sale_id = \$1`).
			WithArgs(saleID).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("150.50"))

		total, err := store.AmountPaid(context.Background(), saleID)

		assert.NoError(t, err)
		assert.True(t, total.Equal(decimal.RequireFromString("150.50")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sale without payments sums to zero", func(t *testing.T) {
		store, mock, mockDB := newMockPaymentStore(t)
		defer mockDB.Close()

		saleID := uuid.New()

		mock.ExpectQuery(`SELECT SUM\(amount\) FROM "payment_records" WHERE sale_id = \$1`).
			WithArgs(saleID).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(nil))

		total, err := store.AmountPaid(context.Background(), saleID)

		assert.NoError(t, err)
		assert.True(t, total.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentStore_Record(t *testing.T) {
	t.Run("appends a payment record", func(t *testing.T) {
		store, mock, mockDB := newMockPaymentStore(t)
		defer mockDB.Close()

		saleID := uuid.New()

		mock.ExpectExec(`INSERT INTO "payment_records"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := store.Record(context.Background(), saleID, decimal.NewFromInt(40))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects a non positive amount", func(t *testing.T) {
		store, mock, mockDB := newMockPaymentStore(t)
		defer mockDB.Close()

		err := store.Record(context.Background(), uuid.New(), decimal.Zero)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
