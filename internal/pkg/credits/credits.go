package credits

import (
	"errors"
	"fmt"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sabaipics/sabaipics/app/models"
)

var (
	// ErrInsufficientCredits is the expected steady-state outcome when the
	// unexpired balance cannot cover a debit. Callers branch on it before
	// any side effect with external cost.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrLedgerInconsistent signals that the balance says credit exists but
	// no unexpired positive batch was found. That is a data-integrity
	// violation, never a normal insufficient-credits case.
	ErrLedgerInconsistent = errors.New("credit ledger inconsistent")
)

// Engine computes spendable balances from the append-only ledger and
// performs FIFO-correct atomic deduction. Balance is always derived from the
// ledger rows, never cached across a settlement transaction.
type Engine struct {
	db *gorm.DB
}

// NewEngine creates a balance engine on the given database handle.
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Balance returns the spendable credit balance: the sum of all ledger
// amounts whose expiry is strictly in the future. It takes no lock and may
// be stale by the time the caller acts on it, which is fine for fast-fail
// pre-checks but never for settlement.
func (e *Engine) Balance(photographerID uint) (int64, error) {
	var balance int64
	err := e.db.Model(&models.CreditLedgerEntry{}).
		Where("photographer_id = ? AND expires_at > ?", photographerID, time.Now()).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to compute balance: %w", err)
	}
	return balance, nil
}

// Grant appends a credit batch (purchase, gift or refund) expiring after
// validFor. Refunds of a consumed batch should pass the original batch
// expiry via GrantUntil instead.
func (e *Engine) Grant(photographerID uint, amount int64, entryType string, validFor time.Duration, externalRef string) (*models.CreditLedgerEntry, error) {
	return e.GrantUntil(photographerID, amount, entryType, time.Now().Add(validFor), externalRef)
}

// GrantUntil appends a credit batch with an explicit expiry.
func (e *Engine) GrantUntil(photographerID uint, amount int64, entryType string, expiresAt time.Time, externalRef string) (*models.CreditLedgerEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("grant amount must be positive, got %d", amount)
	}
	entry := &models.CreditLedgerEntry{
		PhotographerID: photographerID,
		Amount:         amount,
		Type:           entryType,
		ExpiresAt:      expiresAt,
	}
	if externalRef != "" {
		entry.ExternalReference = &externalRef
	}
	if err := e.db.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to append credit batch: %w", err)
	}
	return entry, nil
}

// OldestUnexpiredBatch returns the credit batch FIFO settlement would
// consume next, or nil when no unexpired positive batch exists. Lock-free;
// useful for showing which credits expire soonest.
func (e *Engine) OldestUnexpiredBatch(photographerID uint) (*models.CreditLedgerEntry, error) {
	entries, err := unexpiredEntries(e.db, photographerID)
	if err != nil {
		return nil, err
	}
	return oldestPositiveBatch(entries), nil
}

// Debit spends credits inside the caller's transaction. It locks the
// photographer row, recomputes the balance under the lock, and inserts a
// debit whose expiry is copied from the oldest unexpired positive batch.
// Nothing before this lock serializes concurrent uploads; the lock is held
// only for these few reads plus one insert.
func (e *Engine) Debit(tx *gorm.DB, photographerID uint, amount int64) (*models.CreditLedgerEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	var photographer models.Photographer
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&photographer, photographerID).Error; err != nil {
		return nil, fmt.Errorf("failed to lock photographer %d: %w", photographerID, err)
	}

	entries, err := unexpiredEntries(tx, photographerID)
	if err != nil {
		return nil, err
	}

	if sumEntries(entries) < amount {
		return nil, ErrInsufficientCredits
	}

	batch := oldestPositiveBatch(entries)
	if batch == nil {
		// Positive balance without a positive batch means the ledger is
		// corrupt. Surface it loudly instead of masking it as a payment
		// failure.
		fiberlog.Errorf("[Credits] Ledger inconsistency for photographer %d: balance %d but no unexpired positive batch",
			photographerID, sumEntries(entries))
		return nil, ErrLedgerInconsistent
	}

	debit := &models.CreditLedgerEntry{
		PhotographerID: photographerID,
		Amount:         -amount,
		Type:           models.LedgerTypeDebit,
		ExpiresAt:      batch.ExpiresAt,
	}
	if err := tx.Create(debit).Error; err != nil {
		return nil, fmt.Errorf("failed to insert debit: %w", err)
	}
	return debit, nil
}

// unexpiredEntries loads the photographer's live ledger rows oldest-expiry
// first. Per-photographer ledgers are small (one row per upload or
// purchase), so summing in process under the lock keeps the decision logic
// in one place.
func unexpiredEntries(tx *gorm.DB, photographerID uint) ([]models.CreditLedgerEntry, error) {
	var entries []models.CreditLedgerEntry
	err := tx.Where("photographer_id = ? AND expires_at > ?", photographerID, time.Now()).
		Order("expires_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger entries: %w", err)
	}
	return entries, nil
}

// sumEntries nets credits and debits over the given rows.
func sumEntries(entries []models.CreditLedgerEntry) int64 {
	var sum int64
	for _, e := range entries {
		sum += e.Amount
	}
	return sum
}

// oldestPositiveBatch returns the first credit batch from rows ordered by
// ascending expiry, which is the batch FIFO settlement consumes next.
func oldestPositiveBatch(entries []models.CreditLedgerEntry) *models.CreditLedgerEntry {
	for i := range entries {
		if entries[i].Amount > 0 {
			return &entries[i]
		}
	}
	return nil
}
