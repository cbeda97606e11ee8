package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-health-keeper/internal/store"
	"github.com/MKhiriev/go-health-keeper/models"
)

type pendingScanner struct {
	repo store.RecordRepository
}

func NewPendingScanner(repo store.RecordRepository) PendingScanner {
	return &pendingScanner{repo: repo}
}

func (p *pendingScanner) Scan(ctx context.Context, scope models.ScanScope) ([]models.Record, error) {
	records, err := p.repo.Query(ctx, scope, models.StateLocal)
	if err != nil {
		return nil, fmt.Errorf("scan pending writes: %w", err)
	}
	return records, nil
}

func (p *pendingScanner) PendingCount(ctx context.Context, scope models.ScanScope) (int, error) {
	count, err := p.repo.CountByState(ctx, models.StateLocal, scope)
	if err != nil {
		return 0, fmt.Errorf("count pending writes: %w", err)
	}
	return count, nil
}
