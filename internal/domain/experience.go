package domain

import "time"

// Experience records one cooking session logged by a user.
type Experience struct {
	ID                  string
	UserID              string
	RecipeID            string
	RecipeName          string
	People              int
	Repetitions         int
	EstimatedCost       float64
	AdjustedTimeMinutes int
	Notes               string
	// Rating is 1..5, or 0 when the cook has not rated the session.
	Rating    int
	CookedAt  time.Time
	UpdatedAt time.Time
}
