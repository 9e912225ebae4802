package model

import (
	"time"

	"pgfeedback/internal/shared/errors"
)

// MealType identifies one of the three daily meals. The enumeration is fixed
// and not user-extensible.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
)

// MealTypes lists all valid meal types in serving order.
func MealTypes() []MealType {
	return []MealType{MealBreakfast, MealLunch, MealDinner}
}

// IsValid reports whether m is one of the three known meal types.
func (m MealType) IsValid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner:
		return true
	}
	return false
}

// CurrentMealType returns the meal being served at the given time:
// before 10:00 breakfast, before 16:00 lunch, otherwise dinner.
func CurrentMealType(t time.Time) MealType {
	switch hour := t.Hour(); {
	case hour < 10:
		return MealBreakfast
	case hour < 16:
		return MealLunch
	default:
		return MealDinner
	}
}

// Rating is a resident's feedback on a single meal. Ratings are immutable
// once created; the engine never mutates or deletes them.
type Rating struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	MealType  MealType  `json:"mealType"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate checks the creation-time invariants of a rating.
func (r Rating) Validate() error {
	if !r.MealType.IsValid() {
		return errors.ErrInvalidMealType
	}
	if r.Rating < 1 || r.Rating > 5 {
		return errors.ErrInvalidRatingValue
	}
	return nil
}

// IsLow reports whether the rating flags a meal for attention (2 stars or
// below).
func (r Rating) IsLow() bool {
	return r.Rating <= 2
}
