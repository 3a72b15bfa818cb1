package billing

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/sabaipics/sabaipics/app/repository"
	"github.com/sabaipics/sabaipics/internal/pkg/credits"
)

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true, TranslateError: true})
	require.NoError(t, err)

	svc := NewService(db, credits.NewEngine(db), repository.NewPhotographerRepository(db))
	return svc, mock
}

func checkoutEvent() *CheckoutEvent {
	return &CheckoutEvent{
		EventType: EventCheckoutCompleted,
		OrderID:   "ord_8731",
		AuthID:    "auth0|abc123",
		Credits:   500,
	}
}

func entryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "photographer_id", "amount", "type", "external_reference", "created_at"})
}

func TestProcessCheckoutReplayReturnsOriginalEntry(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `credit_ledger_entries`")).
		WillReturnRows(entryRows().AddRow(11, 7, 500, "purchase", "order:ord_8731", time.Now()))

	entry, err := svc.ProcessCheckout(checkoutEvent())
	require.NoError(t, err)
	assert.Equal(t, uint(11), entry.ID)

	// nothing past the idempotency pre-check ran, so no second grant
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessCheckoutConcurrentReplayLosesInsertRace(t *testing.T) {
	svc, mock := newMockService(t)

	// a concurrent delivery commits between the pre-check and our insert
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `credit_ledger_entries`")).
		WillReturnRows(entryRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `photographers`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "auth_id"}).AddRow(7, "auth0|abc123"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `credit_ledger_entries`")).
		WillReturnError(&gomysql.MySQLError{Number: 1062, Message: "Duplicate entry 'order:ord_8731' for key 'external_reference'"})
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `credit_ledger_entries`")).
		WillReturnRows(entryRows().AddRow(11, 7, 500, "purchase", "order:ord_8731", time.Now()))

	entry, err := svc.ProcessCheckout(checkoutEvent())
	require.NoError(t, err)

	// the loser resolves to the winner's entry instead of double-crediting
	assert.Equal(t, uint(11), entry.ID)
	assert.Equal(t, int64(500), entry.Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessCheckoutUnknownPhotographer(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `credit_ledger_entries`")).
		WillReturnRows(entryRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `photographers`")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.ProcessCheckout(checkoutEvent())
	assert.ErrorIs(t, err, ErrUnknownPhotographer)
	assert.NoError(t, mock.ExpectationsWereMet())
}
