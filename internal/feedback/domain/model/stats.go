package model

// DerivedStats is the dashboard view derived from the current rating and
// suggestion snapshots. It is recomputed whole on every emission, never
// patched incrementally, so it can hold no drift.
type DerivedStats struct {
	TotalRatings      int              `json:"totalRatings"`
	AverageRating     float64          `json:"averageRating"`
	TotalSuggestions  int              `json:"totalSuggestions"`
	CountsByMealType  map[MealType]int `json:"countsByMealType"`
	CountsByCategory  map[Category]int `json:"countsByCategory"`
	RecentRatings     []Rating         `json:"recentRatings"`
	RecentSuggestions []Suggestion     `json:"recentSuggestions"`
	LowRatings        []Rating         `json:"lowRatings"`
}
