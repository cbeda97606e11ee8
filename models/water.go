package models

// WaterPayload holds the domain fields of a water intake entry.
// Stored opaque inside Record.Payload when the record kind is KindWater.
type WaterPayload struct {
	// VolumeML is the amount of water drunk, in milliliters.
	VolumeML float64 `json:"volume_ml"`
}
