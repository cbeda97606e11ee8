package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyRecordID    = errors.New("record id is required")
	ErrInvalidKind      = errors.New("invalid record kind")
	ErrZeroLoggedAt     = errors.New("logged_at timestamp is required")
	ErrInvalidSyncState = errors.New("invalid sync state")
	ErrInvalidPayload   = errors.New("payload does not decode for its kind")

	ErrEmptyMealName     = errors.New("meal name is required")
	ErrNegativeCalories  = errors.New("calories cannot be negative")
	ErrNegativeMacros    = errors.New("macronutrients cannot be negative")
	ErrUnknownMealSource = errors.New("unknown meal source")

	ErrNonPositiveVolume = errors.New("water volume must be positive")
	ErrVolumeTooLarge    = errors.New("water volume is implausibly large")

	ErrNonPositiveWeight = errors.New("weight must be positive")
	ErrWeightOutOfRange  = errors.New("weight is out of the plausible range")
)
