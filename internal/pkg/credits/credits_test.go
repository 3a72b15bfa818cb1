package credits

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabaipics/sabaipics/app/models"
)

func entry(id uint, amount int64, expiresIn time.Duration) models.CreditLedgerEntry {
	return models.CreditLedgerEntry{
		ID:        id,
		Amount:    amount,
		ExpiresAt: time.Now().Add(expiresIn),
	}
}

func TestSumEntries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entries []models.CreditLedgerEntry
		want    int64
	}{
		{
			name:    "empty ledger",
			entries: nil,
			want:    0,
		},
		{
			name: "credits only",
			entries: []models.CreditLedgerEntry{
				entry(1, 100, 24*time.Hour),
				entry(2, 50, 48*time.Hour),
			},
			want: 150,
		},
		{
			name: "debits net out their batch",
			entries: []models.CreditLedgerEntry{
				entry(1, 100, 24*time.Hour),
				entry(2, -40, 24*time.Hour),
				entry(3, 10, 72*time.Hour),
			},
			want: 70,
		},
		{
			name: "fully consumed",
			entries: []models.CreditLedgerEntry{
				entry(1, 1, 24*time.Hour),
				entry(2, -1, 24*time.Hour),
			},
			want: 0,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, sumEntries(tc.entries))
		})
	}
}

func TestOldestPositiveBatch(t *testing.T) {
	t.Parallel()

	t.Run("picks first credit in expiry order", func(t *testing.T) {
		t.Parallel()
		// entries arrive ordered by expires_at ASC as the query guarantees
		entries := []models.CreditLedgerEntry{
			entry(5, -1, 10*time.Hour), // debit sorts first, must be skipped
			entry(2, 20, 12*time.Hour),
			entry(3, 30, 240 * time.Hour),
		}
		batch := oldestPositiveBatch(entries)
		require.NotNil(t, batch)
		assert.Equal(t, uint(2), batch.ID)
	})

	t.Run("no positive batch", func(t *testing.T) {
		t.Parallel()
		entries := []models.CreditLedgerEntry{
			entry(1, -1, 10*time.Hour),
			entry(2, -2, 12*time.Hour),
		}
		assert.Nil(t, oldestPositiveBatch(entries))
	})

	t.Run("empty ledger", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, oldestPositiveBatch(nil))
	})
}

// The FIFO property: whatever mix of grants and debits the ledger holds, the
// next debit always copies its expiry from the oldest unexpired credit batch.
func TestDebitExpiryFollowsOldestBatch(t *testing.T) {
	t.Parallel()

	oldest := entry(1, 5, 30*24*time.Hour)
	newer := entry(2, 5, 60*24*time.Hour)

	entries := []models.CreditLedgerEntry{oldest, newer}
	batch := oldestPositiveBatch(entries)
	require.NotNil(t, batch)
	assert.Equal(t, oldest.ExpiresAt, batch.ExpiresAt)

	// after the oldest batch is fully consumed, its debits keep its expiry
	// and the next batch takes over
	consumed := []models.CreditLedgerEntry{
		oldest,
		{ID: 3, Amount: -5, ExpiresAt: oldest.ExpiresAt},
		newer,
	}
	assert.Equal(t, int64(5), sumEntries(consumed))
	next := oldestPositiveBatch(consumed)
	require.NotNil(t, next)
	assert.Equal(t, oldest.ExpiresAt, next.ExpiresAt)
}
