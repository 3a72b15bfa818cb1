package presign

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sabaipics/sabaipics/app/models"
	"github.com/sabaipics/sabaipics/internal/pkg/credits"
	"github.com/sabaipics/sabaipics/internal/pkg/objstorage"
)

type fakeEventRepo struct {
	events map[uint]*models.Event
}

func (f *fakeEventRepo) GetOwnedByID(photographerID, eventID uint) (*models.Event, error) {
	event, ok := f.events[eventID]
	if !ok || event.PhotographerID != photographerID {
		return nil, gorm.ErrRecordNotFound
	}
	return event, nil
}

type fakeIntentRepo struct {
	intents map[string]*models.UploadIntent
	resets  int
}

func (f *fakeIntentRepo) Create(intent *models.UploadIntent) error {
	f.intents[intent.ID] = intent
	return nil
}

func (f *fakeIntentRepo) GetOwnedByID(photographerID uint, id string) (*models.UploadIntent, error) {
	intent, ok := f.intents[id]
	if !ok || intent.PhotographerID != photographerID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *intent
	return &cp, nil
}

func (f *fakeIntentRepo) GetOwnedByIDs(photographerID uint, ids []string) ([]models.UploadIntent, error) {
	var out []models.UploadIntent
	for _, id := range ids {
		if intent, ok := f.intents[id]; ok && intent.PhotographerID == photographerID {
			out = append(out, *intent)
		}
	}
	if out == nil {
		out = []models.UploadIntent{}
	}
	return out, nil
}

func (f *fakeIntentRepo) ResetForRepresign(intent *models.UploadIntent) error {
	f.resets++
	cp := *intent
	f.intents[intent.ID] = &cp
	return nil
}

type fakeBalance struct {
	balance int64
}

func (f *fakeBalance) Balance(photographerID uint) (int64, error) {
	return f.balance, nil
}

type fakePresigner struct {
	calls int
}

func (f *fakePresigner) PresignPut(ctx context.Context, key, contentType string, contentLength int64, expiresIn time.Duration) (*objstorage.PresignedUpload, error) {
	f.calls++
	return &objstorage.PresignedUpload{
		URL:       "https://storage.example/" + key + "?sig=abc",
		ObjectKey: key,
		ExpiresAt: time.Now().Add(expiresIn),
		Headers: map[string]string{
			"Content-Type":  contentType,
			"If-None-Match": "*",
		},
	}, nil
}

const (
	ownerID   = uint(1)
	foreignID = uint(2)
	eventID   = uint(10)
)

func newTestService(balance int64) (*Service, *fakeIntentRepo, *fakePresigner) {
	events := &fakeEventRepo{events: map[uint]*models.Event{
		eventID: {ID: eventID, PhotographerID: ownerID, ExpiresAt: time.Now().Add(24 * time.Hour)},
	}}
	intents := &fakeIntentRepo{intents: map[string]*models.UploadIntent{}}
	presigner := &fakePresigner{}
	return NewService(events, intents, &fakeBalance{balance: balance}, presigner), intents, presigner
}

func TestPresignHappyPath(t *testing.T) {
	t.Parallel()
	svc, intents, _ := newTestService(5)

	grant, err := svc.Presign(context.Background(), ownerID, eventID, "image/jpeg", 1024)
	require.NoError(t, err)

	assert.NotEmpty(t, grant.UploadID)
	assert.Contains(t, grant.PutURL, grant.ObjectKey)
	assert.Contains(t, grant.ObjectKey, "events/10/incoming/")
	assert.Equal(t, "*", grant.RequiredHeaders["If-None-Match"])

	stored := intents.intents[grant.UploadID]
	require.NotNil(t, stored)
	assert.Equal(t, models.IntentStatusPending, stored.Status)
	assert.Equal(t, grant.ObjectKey, stored.ObjectKey)
	assert.Equal(t, int64(1024), stored.ContentLength)
}

func TestPresignValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		contentType   string
		contentLength int64
		wantErr       error
	}{
		{name: "pdf rejected", contentType: "application/pdf", contentLength: 100, wantErr: ErrInvalidMediaType},
		{name: "zero length", contentType: "image/jpeg", contentLength: 0, wantErr: ErrInvalidLength},
		{name: "oversized", contentType: "image/jpeg", contentLength: MaxContentLength + 1, wantErr: ErrInvalidLength},
		{name: "heic accepted", contentType: "image/heic", contentLength: 100, wantErr: nil},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc, _, _ := newTestService(5)
			_, err := svc.Presign(context.Background(), ownerID, eventID, tc.contentType, tc.contentLength)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPresignFailures(t *testing.T) {
	t.Parallel()

	t.Run("foreign event looks like a missing one", func(t *testing.T) {
		t.Parallel()
		svc, intents, _ := newTestService(5)
		_, err := svc.Presign(context.Background(), foreignID, eventID, "image/jpeg", 100)
		assert.ErrorIs(t, err, ErrEventNotFound)
		assert.Empty(t, intents.intents)
	})

	t.Run("expired event", func(t *testing.T) {
		t.Parallel()
		events := &fakeEventRepo{events: map[uint]*models.Event{
			eventID: {ID: eventID, PhotographerID: ownerID, ExpiresAt: time.Now().Add(-time.Hour)},
		}}
		svc := NewService(events, &fakeIntentRepo{intents: map[string]*models.UploadIntent{}}, &fakeBalance{balance: 5}, &fakePresigner{})
		_, err := svc.Presign(context.Background(), ownerID, eventID, "image/jpeg", 100)
		assert.ErrorIs(t, err, ErrEventExpired)
	})

	t.Run("empty balance fast-fails before presigning", func(t *testing.T) {
		t.Parallel()
		svc, intents, presigner := newTestService(0)
		_, err := svc.Presign(context.Background(), ownerID, eventID, "image/jpeg", 100)
		assert.ErrorIs(t, err, credits.ErrInsufficientCredits)
		assert.Zero(t, presigner.calls)
		assert.Empty(t, intents.intents)
	})
}

func TestStatusReturnsOnlyOwnedIntents(t *testing.T) {
	t.Parallel()
	svc, intents, _ := newTestService(5)

	grant, err := svc.Presign(context.Background(), ownerID, eventID, "image/jpeg", 100)
	require.NoError(t, err)

	intents.intents["foreign-intent"] = &models.UploadIntent{
		ID: "foreign-intent", PhotographerID: foreignID, EventID: eventID,
	}

	// a mix of owned, foreign and unknown ids yields only the owned subset,
	// with no way to tell foreign from unknown
	withForeign, err := svc.Status(ownerID, []string{grant.UploadID, "foreign-intent"})
	require.NoError(t, err)
	withUnknown, err := svc.Status(ownerID, []string{grant.UploadID, "no-such-intent"})
	require.NoError(t, err)

	require.Len(t, withForeign, 1)
	require.Len(t, withUnknown, 1)
	assert.Equal(t, withForeign[0].ID, withUnknown[0].ID)
	assert.Equal(t, grant.UploadID, withForeign[0].ID)
}

func TestRepresign(t *testing.T) {
	t.Parallel()

	setupIntent := func(t *testing.T, status string) (*Service, *fakeIntentRepo, string, string) {
		t.Helper()
		svc, intents, _ := newTestService(5)
		grant, err := svc.Presign(context.Background(), ownerID, eventID, "image/jpeg", 100)
		require.NoError(t, err)
		intents.intents[grant.UploadID].Status = status
		return svc, intents, grant.UploadID, grant.ObjectKey
	}

	for _, status := range []string{models.IntentStatusPending, models.IntentStatusExpired, models.IntentStatusFailed} {
		status := status
		t.Run("rotates key from "+status, func(t *testing.T) {
			t.Parallel()
			svc, intents, uploadID, oldKey := setupIntent(t, status)
			intents.intents[uploadID].ErrorCode = "storage_rejected"
			intents.intents[uploadID].ErrorMessage = "precondition failed"

			grant, err := svc.Represign(context.Background(), ownerID, uploadID)
			require.NoError(t, err)

			assert.Equal(t, uploadID, grant.UploadID)
			assert.NotEqual(t, oldKey, grant.ObjectKey, "old key must never be reused")

			stored := intents.intents[uploadID]
			assert.Equal(t, models.IntentStatusPending, stored.Status)
			assert.Empty(t, stored.ErrorCode)
			assert.Empty(t, stored.ErrorMessage)
			assert.Equal(t, grant.ObjectKey, stored.ObjectKey)
		})
	}

	for _, status := range []string{models.IntentStatusCompleted, models.IntentStatusUploaded} {
		status := status
		t.Run("conflicts from "+status, func(t *testing.T) {
			t.Parallel()
			svc, intents, uploadID, oldKey := setupIntent(t, status)

			_, err := svc.Represign(context.Background(), ownerID, uploadID)
			assert.ErrorIs(t, err, ErrNotRetryable)

			// the intent is left untouched
			stored := intents.intents[uploadID]
			assert.Equal(t, status, stored.Status)
			assert.Equal(t, oldKey, stored.ObjectKey)
			assert.Zero(t, intents.resets)
		})
	}

	t.Run("foreign intent is not found", func(t *testing.T) {
		t.Parallel()
		svc, _, uploadID, _ := setupIntent(t, models.IntentStatusPending)
		_, err := svc.Represign(context.Background(), foreignID, uploadID)
		assert.ErrorIs(t, err, ErrIntentNotFound)
	})

	t.Run("expired event blocks retry", func(t *testing.T) {
		t.Parallel()
		events := &fakeEventRepo{events: map[uint]*models.Event{
			eventID: {ID: eventID, PhotographerID: ownerID, ExpiresAt: time.Now().Add(time.Minute)},
		}}
		intents := &fakeIntentRepo{intents: map[string]*models.UploadIntent{}}
		svc := NewService(events, intents, &fakeBalance{balance: 5}, &fakePresigner{})

		grant, err := svc.Presign(context.Background(), ownerID, eventID, "image/jpeg", 100)
		require.NoError(t, err)

		events.events[eventID].ExpiresAt = time.Now().Add(-time.Minute)
		_, err = svc.Represign(context.Background(), ownerID, grant.UploadID)
		assert.ErrorIs(t, err, ErrEventExpired)
	})
}
