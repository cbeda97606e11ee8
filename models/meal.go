package models

// MealSource identifies how a meal entry was produced.
type MealSource string

const (
	// MealSourceManual marks a meal the user typed in by hand.
	MealSourceManual MealSource = "manual"

	// MealSourceAIParsed marks a meal whose nutrition facts came from the
	// photo-recognition service.
	MealSourceAIParsed MealSource = "ai_parsed"
)

// MealPayload holds the domain fields of a meal entry.
// It is serialized to JSON and stored opaque inside Record.Payload when
// the record kind is KindMeal.
type MealPayload struct {
	// Name is the display name of the meal ("oatmeal with berries").
	Name string `json:"name"`

	// Notes contains optional free-form user notes.
	Notes string `json:"notes,omitempty"`

	// Calories is the total energy of the meal in kcal.
	Calories float64 `json:"calories"`

	// ProteinG, CarbsG and FatG are the macronutrients in grams.
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`

	// Source records whether the entry was typed in or parsed from a
	// photo by the recognition service.
	Source MealSource `json:"source,omitempty"`
}
