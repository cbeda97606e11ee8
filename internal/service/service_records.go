package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/MKhiriev/go-health-keeper/internal/adapter"
	"github.com/MKhiriev/go-health-keeper/internal/logger"
	"github.com/MKhiriev/go-health-keeper/internal/store"
	"github.com/MKhiriev/go-health-keeper/internal/utils"
	"github.com/MKhiriev/go-health-keeper/internal/validators"
	"github.com/MKhiriev/go-health-keeper/models"
)

type recordsService struct {
	repo      store.RecordRepository
	remote    adapter.RemoteAdapter
	ids       *utils.UUIDGenerator
	validator validators.Validator
}

func NewRecordsService(repo store.RecordRepository, remote adapter.RemoteAdapter, validator validators.Validator) RecordsService {
	return &recordsService{
		repo:      repo,
		remote:    remote,
		ids:       utils.NewUUIDGenerator(),
		validator: validator,
	}
}

func (s *recordsService) LogMeal(ctx context.Context, at time.Time, meal models.MealPayload) (models.Record, error) {
	if err := s.validator.Validate(ctx, meal); err != nil {
		return models.Record{}, fmt.Errorf("validate meal: %w", err)
	}
	return s.log(ctx, models.KindMeal, at, meal)
}

func (s *recordsService) LogWater(ctx context.Context, at time.Time, water models.WaterPayload) (models.Record, error) {
	if err := s.validator.Validate(ctx, water); err != nil {
		return models.Record{}, fmt.Errorf("validate water intake: %w", err)
	}
	return s.log(ctx, models.KindWater, at, water)
}

func (s *recordsService) LogWeight(ctx context.Context, at time.Time, weight models.WeightPayload) (models.Record, error) {
	if err := s.validator.Validate(ctx, weight); err != nil {
		return models.Record{}, fmt.Errorf("validate weight: %w", err)
	}
	return s.log(ctx, models.KindWeight, at, weight)
}

// log assigns the client-side ID and saves the entry as a pending local
// write. The ID is generated before any network involvement, so the
// eventual remote upsert is idempotent by construction.
func (s *recordsService) log(ctx context.Context, kind models.RecordKind, at time.Time, payload any) (models.Record, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return models.Record{}, fmt.Errorf("encode %s payload: %w", kind, err)
	}

	now := time.Now().UTC()
	record := models.Record{
		ID:                  s.ids.NewID(),
		Kind:                kind,
		LoggedAt:            at,
		Payload:             raw,
		SyncState:           models.StateLocal,
		LastModifiedLocally: now,
		CreatedAt:           &now,
		UpdatedAt:           &now,
	}

	if err = s.repo.Save(ctx, record); err != nil {
		return models.Record{}, fmt.Errorf("save %s entry: %w", kind, err)
	}

	logger.FromContext(ctx).Debug().
		Str("func", "recordsService.log").
		Str("kind", string(kind)).
		Str("record_id", record.ID).
		Msg("entry logged locally")

	return record, nil
}

func (s *recordsService) Update(ctx context.Context, record models.Record) (models.Record, error) {
	if err := s.validator.Validate(ctx, record, validators.FieldID, validators.FieldKind, validators.FieldLoggedAt, validators.FieldPayload); err != nil {
		return models.Record{}, fmt.Errorf("validate updated record: %w", err)
	}

	prev, err := s.repo.Get(ctx, record.Kind, record.ID)
	if err != nil {
		return models.Record{}, fmt.Errorf("load existing record: %w", err)
	}

	now := time.Now().UTC()
	updated := prev
	updated.LoggedAt = record.LoggedAt
	updated.Payload = record.Payload
	updated.SyncState = models.StateLocal
	updated.LastModifiedLocally = now
	updated.UpdatedAt = &now

	if err = s.repo.Save(ctx, updated); err != nil {
		return models.Record{}, fmt.Errorf("save updated record: %w", err)
	}

	return updated, nil
}

func (s *recordsService) Delete(ctx context.Context, ref models.RecordRef) error {
	record, err := s.repo.Get(ctx, ref.Kind, ref.ID)
	if err != nil {
		return fmt.Errorf("load record for delete: %w", err)
	}

	switch record.SyncState {
	case models.StateLocal:
		// Never reached the remote: purge with no network call.
		return s.purge(ctx, ref)

	case models.StateUploading:
		// Mid-wave: purge locally, then best-effort remote delete in
		// case the in-flight upload already landed. The wave's
		// conditional transitions skip the vanished record.
		if err = s.purge(ctx, ref); err != nil {
			return err
		}
		if remoteErr := s.remote.Remove(ctx, ref); remoteErr != nil {
			logger.FromContext(ctx).Warn().Err(remoteErr).
				Str("func", "recordsService.Delete").
				Str("record_id", ref.ID).
				Msg("best-effort remote delete of an in-flight record failed")
		}
		return nil

	case models.StatePendingDeletion:
		// A delete is already in flight; hidden either way.
		return nil

	case models.StateSynced:
		return s.deleteSynced(ctx, ref)

	default:
		return fmt.Errorf("record %s/%s has invalid sync state %q", ref.Kind, ref.ID, record.SyncState)
	}
}

// deleteSynced hides the record immediately, then runs the remote delete.
// Acknowledgement purges the hidden record; failure reverts it to synced
// so it reappears in reads.
func (s *recordsService) deleteSynced(ctx context.Context, ref models.RecordRef) error {
	hide := models.ChangeSet{Transitions: []models.StateTransition{
		{Ref: ref, From: models.StateSynced, To: models.StatePendingDeletion},
	}}
	if err := s.repo.ApplyBatch(ctx, hide); err != nil {
		return fmt.Errorf("hide record pending deletion: %w", err)
	}

	if err := s.remote.Remove(ctx, ref); err != nil {
		revert := models.ChangeSet{Transitions: []models.StateTransition{
			{Ref: ref, From: models.StatePendingDeletion, To: models.StateSynced},
		}}
		if revertErr := s.repo.ApplyBatch(ctx, revert); revertErr != nil {
			return errors.Join(
				fmt.Errorf("delete record on remote: %w", err),
				fmt.Errorf("revert record to synced: %w", revertErr),
			)
		}
		return fmt.Errorf("delete record on remote: %w", err)
	}

	return s.purge(ctx, ref)
}

func (s *recordsService) purge(ctx context.Context, ref models.RecordRef) error {
	change := models.ChangeSet{Deletes: []models.RecordRef{ref}}
	if err := s.repo.ApplyBatch(ctx, change); err != nil {
		return fmt.Errorf("purge record from cache: %w", err)
	}
	return nil
}

func (s *recordsService) Day(ctx context.Context, day time.Time) ([]models.Record, error) {
	records, err := s.repo.Query(ctx, models.ScopeDay(day),
		models.StateLocal, models.StateUploading, models.StateSynced)
	if err != nil {
		return nil, fmt.Errorf("query day records: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].LoggedAt.Equal(records[j].LoggedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].LoggedAt.Before(records[j].LoggedAt)
	})

	return records, nil
}
