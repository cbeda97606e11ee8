package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MKhiriev/go-health-keeper/internal/mock"
	"github.com/MKhiriev/go-health-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// ── Scan ─────────────────────────────────────────────────────────────────────

func TestPendingScanner_Scan_OnlyLocalState(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mock.NewMockRecordRepository(ctrl)
	scanner := NewPendingScanner(mockRepo)
	ctx := context.Background()

	pending := []models.Record{
		{ID: "p1", Kind: models.KindMeal, SyncState: models.StateLocal},
		{ID: "p2", Kind: models.KindWater, SyncState: models.StateLocal},
	}

	// очередь — это ровно записи в состоянии local
	mockRepo.EXPECT().Query(ctx, gomock.Any(), models.StateLocal).Return(pending, nil)

	got, err := scanner.Scan(ctx, models.ScopeAll())
	require.NoError(t, err)
	assert.Equal(t, pending, got)
}

func TestPendingScanner_Scan_PassesScope(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mock.NewMockRecordRepository(ctrl)
	scanner := NewPendingScanner(mockRepo)
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	mockRepo.EXPECT().Query(ctx, gomock.Any(), models.StateLocal).DoAndReturn(
		func(_ context.Context, scope models.ScanScope, _ ...models.SyncState) ([]models.Record, error) {
			require.NotNil(t, scope.Day)
			assert.True(t, scope.Day.Equal(day))
			return nil, nil
		})

	_, err := scanner.Scan(ctx, models.ScopeDay(day))
	require.NoError(t, err)
}

func TestPendingScanner_Scan_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mock.NewMockRecordRepository(ctrl)
	scanner := NewPendingScanner(mockRepo)
	ctx := context.Background()

	mockRepo.EXPECT().Query(ctx, gomock.Any(), models.StateLocal).Return(nil, errors.New("db error"))

	_, err := scanner.Scan(ctx, models.ScopeAll())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan pending writes")
}

// ── PendingCount ─────────────────────────────────────────────────────────────

func TestPendingScanner_PendingCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mock.NewMockRecordRepository(ctrl)
	scanner := NewPendingScanner(mockRepo)
	ctx := context.Background()

	mockRepo.EXPECT().CountByState(ctx, models.StateLocal, gomock.Any()).Return(7, nil)

	count, err := scanner.PendingCount(ctx, models.ScopeAll())
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestPendingScanner_PendingCount_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mock.NewMockRecordRepository(ctrl)
	scanner := NewPendingScanner(mockRepo)
	ctx := context.Background()

	mockRepo.EXPECT().CountByState(ctx, models.StateLocal, gomock.Any()).Return(0, errors.New("db error"))

	_, err := scanner.PendingCount(ctx, models.ScopeAll())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count pending writes")
}
