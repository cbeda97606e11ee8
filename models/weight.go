package models

// WeightPayload holds the domain fields of a body-weight measurement.
// Stored opaque inside Record.Payload when the record kind is KindWeight.
type WeightPayload struct {
	// WeightKG is the measured body weight in kilograms.
	WeightKG float64 `json:"weight_kg"`
}
