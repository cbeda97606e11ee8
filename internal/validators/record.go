package validators

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-health-keeper/models"
)

const (
	FieldID        = "id"
	FieldKind      = "kind"
	FieldLoggedAt  = "logged_at"
	FieldSyncState = "sync_state"
	FieldPayload   = "payload"

	FieldMealName = "meal name"
	FieldCalories = "calories"
	FieldMacros   = "macros"
	FieldSource   = "source"

	FieldVolume = "volume"
	FieldWeight = "weight"
)

// Plausibility bounds for manual entry. Values outside are almost
// certainly typos (a missing decimal point, ml/l confusion).
const (
	maxWaterVolumeML = 10000
	maxWeightKG      = 500
)

var allowedMealSources = []models.MealSource{
	models.MealSourceManual,
	models.MealSourceAIParsed,
}

type RecordValidator struct {
}

func NewRecordValidator() Validator {
	return &RecordValidator{}
}

func (v *RecordValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Record:
		return v.validateRecord(ctx, value, fields...)
	case *models.Record:
		return v.validateRecord(ctx, *value, fields...)

	case models.MealPayload:
		return v.validateMeal(ctx, value, fields...)
	case *models.MealPayload:
		return v.validateMeal(ctx, *value, fields...)

	case models.WaterPayload:
		return v.validateWater(ctx, value, fields...)
	case *models.WaterPayload:
		return v.validateWater(ctx, *value, fields...)

	case models.WeightPayload:
		return v.validateWeight(ctx, value, fields...)
	case *models.WeightPayload:
		return v.validateWeight(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func isAllowedMealSource(s models.MealSource) bool {
	if s == "" {
		// omitted source defaults to manual entry
		return true
	}
	for _, allowed := range allowedMealSources {
		if s == allowed {
			return true
		}
	}
	return false
}

func (v *RecordValidator) validateRecord(ctx context.Context, record models.Record, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldKind, FieldLoggedAt, FieldSyncState, FieldPayload}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if record.ID == "" {
				return ErrEmptyRecordID
			}
		case FieldKind:
			if !record.Kind.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidKind, record.Kind)
			}
		case FieldLoggedAt:
			if record.LoggedAt.IsZero() {
				return ErrZeroLoggedAt
			}
		case FieldSyncState:
			if !record.SyncState.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidSyncState, record.SyncState)
			}
		case FieldPayload:
			if err := v.validateRecordPayload(ctx, record); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateRecordPayload decodes the opaque payload for the record's kind and
// applies the kind-specific rules to the result.
func (v *RecordValidator) validateRecordPayload(ctx context.Context, record models.Record) error {
	switch record.Kind {
	case models.KindMeal:
		meal, err := record.Meal()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		return v.validateMeal(ctx, meal)
	case models.KindWater:
		water, err := record.Water()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		return v.validateWater(ctx, water)
	case models.KindWeight:
		weight, err := record.Weight()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		return v.validateWeight(ctx, weight)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, record.Kind)
	}
}

func (v *RecordValidator) validateMeal(_ context.Context, meal models.MealPayload, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldMealName, FieldCalories, FieldMacros, FieldSource}
	}

	for _, f := range fields {
		switch f {
		case FieldMealName:
			if meal.Name == "" {
				return ErrEmptyMealName
			}
		case FieldCalories:
			if meal.Calories < 0 {
				return ErrNegativeCalories
			}
		case FieldMacros:
			if meal.ProteinG < 0 || meal.CarbsG < 0 || meal.FatG < 0 {
				return ErrNegativeMacros
			}
		case FieldSource:
			if !isAllowedMealSource(meal.Source) {
				return fmt.Errorf("%w: %q", ErrUnknownMealSource, meal.Source)
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *RecordValidator) validateWater(_ context.Context, water models.WaterPayload, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldVolume}
	}

	for _, f := range fields {
		switch f {
		case FieldVolume:
			if water.VolumeML <= 0 {
				return ErrNonPositiveVolume
			}
			if water.VolumeML > maxWaterVolumeML {
				return ErrVolumeTooLarge
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *RecordValidator) validateWeight(_ context.Context, weight models.WeightPayload, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldWeight}
	}

	for _, f := range fields {
		switch f {
		case FieldWeight:
			if weight.WeightKG <= 0 {
				return ErrNonPositiveWeight
			}
			if weight.WeightKG > maxWeightKG {
				return ErrWeightOutOfRange
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}
