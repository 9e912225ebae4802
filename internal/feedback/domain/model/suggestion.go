package model

import (
	"time"

	"pgfeedback/internal/shared/errors"
)

// Category classifies a suggested dish.
type Category string

const (
	CategoryVeg    Category = "veg"
	CategoryNonVeg Category = "non-veg"
	CategoryJain   Category = "jain"
	CategoryOthers Category = "others"
)

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryVeg, CategoryNonVeg, CategoryJain, CategoryOthers:
		return true
	}
	return false
}

// SuggestionStatus is the moderation state of a suggestion. It is set by
// staff; residents only read it.
type SuggestionStatus string

const (
	StatusPending  SuggestionStatus = "pending"
	StatusApproved SuggestionStatus = "approved"
	StatusRejected SuggestionStatus = "rejected"
)

// IsValid reports whether s is a known moderation status.
func (s SuggestionStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Suggestion is a resident's proposal for a dish. Deletable by its owner;
// status changes come through moderation only.
type Suggestion struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	UserName    string           `json:"userName"`
	DishName    string           `json:"dishName"`
	Category    Category         `json:"category"`
	Description string           `json:"description,omitempty"`
	Date        string           `json:"date"`
	Timestamp   time.Time        `json:"timestamp"`
	Status      SuggestionStatus `json:"status"`
}

// Validate checks the creation-time invariants of a suggestion.
func (s Suggestion) Validate() error {
	if s.DishName == "" {
		return errors.ErrInvalidInput
	}
	if !s.Category.IsValid() {
		return errors.ErrInvalidCategory
	}
	if !s.Status.IsValid() {
		return errors.ErrInvalidStatus
	}
	return nil
}
