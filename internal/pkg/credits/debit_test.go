package credits

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true, TranslateError: true})
	require.NoError(t, err)
	return db, mock
}

func expectPhotographerLock(mock sqlmock.Sqlmock, photographerID uint) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `photographers`")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(photographerID))
}

func ledgerRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "photographer_id", "amount", "type", "expires_at", "created_at"})
}

func TestDebitInsufficientBalanceInsertsNothing(t *testing.T) {
	db, mock := newMockDB(t)
	engine := NewEngine(db)
	now := time.Now()

	// +5 batch fully consumed by an earlier debit; live sum is zero
	expectPhotographerLock(mock, 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `credit_ledger_entries`")).
		WillReturnRows(ledgerRows().
			AddRow(1, 1, 5, "purchase", now.Add(24*time.Hour), now.Add(-time.Hour)).
			AddRow(2, 1, -5, "debit", now.Add(24*time.Hour), now.Add(-time.Minute)))

	entry, err := engine.Debit(db, 1, 1)
	assert.ErrorIs(t, err, ErrInsufficientCredits)
	assert.Nil(t, entry)

	// no INSERT was ever issued
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitEmptyLedgerInsertsNothing(t *testing.T) {
	db, mock := newMockDB(t)
	engine := NewEngine(db)

	expectPhotographerLock(mock, 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `credit_ledger_entries`")).
		WillReturnRows(ledgerRows())

	entry, err := engine.Debit(db, 1, 1)
	assert.ErrorIs(t, err, ErrInsufficientCredits)
	assert.Nil(t, entry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitCopiesOldestBatchExpiry(t *testing.T) {
	db, mock := newMockDB(t)
	engine := NewEngine(db)
	now := time.Now()
	oldest := now.Add(30 * 24 * time.Hour).Truncate(time.Second)
	newest := now.Add(365 * 24 * time.Hour).Truncate(time.Second)

	expectPhotographerLock(mock, 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `credit_ledger_entries`")).
		WillReturnRows(ledgerRows().
			AddRow(1, 1, 3, "purchase", oldest, now.Add(-2*time.Hour)).
			AddRow(2, 1, 5, "purchase", newest, now.Add(-time.Hour)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `credit_ledger_entries`")).
		WillReturnResult(sqlmock.NewResult(42, 1))

	entry, err := engine.Debit(db, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.Equal(t, int64(-1), entry.Amount)
	assert.Equal(t, "debit", entry.Type)
	assert.True(t, entry.ExpiresAt.Equal(oldest), "debit expiry must be copied from the oldest batch")
	assert.Equal(t, uint(42), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitRejectsNonPositiveAmount(t *testing.T) {
	db, mock := newMockDB(t)
	engine := NewEngine(db)

	_, err := engine.Debit(db, 1, 0)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
