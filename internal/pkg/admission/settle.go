package admission

import (
	"context"

	"gorm.io/gorm"

	"github.com/sabaipics/sabaipics/app/models"
	"github.com/sabaipics/sabaipics/app/repository"
	"github.com/sabaipics/sabaipics/internal/pkg/credits"
)

// Settler atomically charges one credit and persists the photo row.
type Settler interface {
	Settle(ctx context.Context, photographerID uint, photo *models.Photo) error
}

// LedgerSettler runs settlement as a single database transaction: lock the
// photographer row, re-check the balance, insert the FIFO debit, insert the
// photo. Either everything commits or nothing does, so a charged credit
// always has a matching photo row.
type LedgerSettler struct {
	db      *gorm.DB
	credits *credits.Engine
	photos  repository.PhotoRepository
}

// NewLedgerSettler creates the gorm-backed settler.
func NewLedgerSettler(db *gorm.DB, engine *credits.Engine, photos repository.PhotoRepository) *LedgerSettler {
	return &LedgerSettler{db: db, credits: engine, photos: photos}
}

// Settle spends one credit and inserts the photo in one transaction.
func (s *LedgerSettler) Settle(ctx context.Context, photographerID uint, photo *models.Photo) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.credits.Debit(tx, photographerID, 1); err != nil {
			return err
		}
		return s.photos.CreateTx(tx, photo)
	})
}
