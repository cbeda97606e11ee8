package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-health-keeper/internal/adapter"
	"github.com/MKhiriev/go-health-keeper/internal/logger"
	"github.com/MKhiriev/go-health-keeper/internal/store"
	"github.com/MKhiriev/go-health-keeper/models"
)

// defaultUploadConcurrency bounds the in-flight uploads of one wave group.
// One request per pending record would overwhelm both the remote endpoint
// and a constrained mobile connection on large backlogs.
const defaultUploadConcurrency = 5

type uploader struct {
	repo        store.RecordRepository
	remote      adapter.RemoteAdapter
	concurrency int

	logger *logger.Logger
}

func NewUploader(repo store.RecordRepository, remote adapter.RemoteAdapter, concurrency int, logger *logger.Logger) Uploader {
	if concurrency <= 0 {
		concurrency = defaultUploadConcurrency
	}
	return &uploader{repo: repo, remote: remote, concurrency: concurrency, logger: logger}
}

// Upload implements [Uploader].
//
// The wave start is persisted first: one atomic batch of conditional
// local → uploading transitions. Records are then pushed in fixed-size
// groups with a WaitGroup barrier between groups, so at most concurrency
// uploads are ever in flight and group N+1 does not start until group N
// has fully completed. After the last group, ONE atomic batch moves
// successes to synced and everything else back to local.
func (u *uploader) Upload(ctx context.Context, records []models.Record, progress ProgressFunc) (models.UploadReport, error) {
	report := models.UploadReport{Outcomes: make(map[string]models.UploadOutcome, len(records))}
	if len(records) == 0 {
		return report, nil
	}
	report.Attempted = len(records)

	waveStart := models.ChangeSet{}
	for _, rec := range records {
		waveStart.Transitions = append(waveStart.Transitions, models.StateTransition{
			Ref:  rec.Ref(),
			From: models.StateLocal,
			To:   models.StateUploading,
		})
	}
	if err := u.repo.ApplyBatch(ctx, waveStart); err != nil {
		return models.UploadReport{}, fmt.Errorf("persist upload wave start: %w", err)
	}

	u.logger.Info().
		Str("func", "uploader.Upload").
		Int("records", len(records)).
		Int("concurrency", u.concurrency).
		Msg("upload wave started")

	var mu sync.Mutex // guards report and orders progress delivery

	for from := 0; from < len(records); from += u.concurrency {
		if ctx.Err() != nil {
			break
		}

		to := from + u.concurrency
		if to > len(records) {
			to = len(records)
		}
		group := records[from:to]

		var wg sync.WaitGroup
		for _, rec := range group {
			wg.Add(1)
			go func(rec models.Record) {
				defer wg.Done()

				outcome := u.push(ctx, rec)

				mu.Lock()
				report.Outcomes[rec.ID] = outcome
				if outcome.OK {
					report.Synced++
				}
				if progress != nil {
					progress(report.Synced, report.Attempted)
				}
				mu.Unlock()
			}(rec)
		}
		wg.Wait()
	}

	// Records the wave never reached (cancelled between groups) count as
	// failed and transition back to local with everything else.
	finish := models.ChangeSet{}
	for _, rec := range records {
		outcome, attempted := report.Outcomes[rec.ID]
		if !attempted {
			outcome = models.UploadOutcome{Err: ctx.Err()}
			report.Outcomes[rec.ID] = outcome
		}

		target := models.StateLocal
		if outcome.OK {
			target = models.StateSynced
		}
		finish.Transitions = append(finish.Transitions, models.StateTransition{
			Ref:  rec.Ref(),
			From: models.StateUploading,
			To:   target,
		})
	}

	// The wave result must land even when the wave itself was cancelled
	// mid-flight, otherwise records stay stuck in uploading until the
	// next startup recovery.
	if err := u.repo.ApplyBatch(context.WithoutCancel(ctx), finish); err != nil {
		return report, fmt.Errorf("persist upload wave result: %w", err)
	}

	u.logger.Info().
		Str("func", "uploader.Upload").
		Int("synced", report.Synced).
		Int("failed", report.Failed()).
		Msg("upload wave finished")

	return report, nil
}

// push uploads one record and classifies the outcome. The record is
// re-read first so the wave sends the freshest payload and skips records
// deleted between scan and upload.
func (u *uploader) push(ctx context.Context, rec models.Record) models.UploadOutcome {
	fresh, err := u.repo.Get(ctx, rec.Kind, rec.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			u.logger.Debug().
				Str("func", "uploader.push").
				Str("record_id", rec.ID).
				Msg("record vanished before upload, skipping")
		}
		return models.UploadOutcome{Err: err}
	}

	if err = u.remote.Push(ctx, fresh); err != nil {
		outcome := models.UploadOutcome{Err: err, Permanent: adapter.IsPermanent(err)}
		u.logger.Warn().Err(err).
			Str("func", "uploader.push").
			Str("record_id", rec.ID).
			Bool("permanent", outcome.Permanent).
			Msg("record upload failed")
		return outcome
	}

	return models.UploadOutcome{OK: true}
}
