package usecase

import (
	"context"
	"time"

	"pgfeedback/internal/feedback/domain/model"
	"pgfeedback/internal/feedback/domain/port"
	"pgfeedback/internal/shared/errors"
	"pgfeedback/internal/shared/eventbus"
	"pgfeedback/internal/shared/logger"
)

// SubmitRatingRequest carries one meal rating from an authenticated resident.
type SubmitRatingRequest struct {
	MealType model.MealType `json:"mealType"`
	Rating   int            `json:"rating"`
	Comment  string         `json:"comment"`
}

// SubmitSuggestionRequest carries one dish suggestion.
type SubmitSuggestionRequest struct {
	DishName    string         `json:"dishName"`
	Category    model.Category `json:"category"`
	Description string         `json:"description"`
}

// FeedbackService handles the write side of ratings and suggestions. Reads
// go through the live feeds of StreamManager instead.
type FeedbackService struct {
	store port.DocumentStore
	bus   eventbus.EventBusInterface
	log   logger.Logger
	now   func() time.Time
}

// NewFeedbackService creates the service.
func NewFeedbackService(store port.DocumentStore, bus eventbus.EventBusInterface, log logger.Logger) *FeedbackService {
	return &FeedbackService{
		store: store,
		bus:   bus,
		log:   log.WithComponent("feedback_service"),
		now:   time.Now,
	}
}

// SubmitRating validates and stores a rating on behalf of the identity. The
// store assigns the id; the date key and timestamp are set server side.
func (s *FeedbackService) SubmitRating(ctx context.Context, identity model.Identity, req SubmitRatingRequest) (model.Rating, error) {
	if !identity.Authenticated {
		return model.Rating{}, errors.NewAuthenticationError("login required to rate a meal")
	}

	now := s.now()
	rating := model.Rating{
		UserID:    identity.UID,
		UserName:  identity.DisplayName,
		MealType:  req.MealType,
		Rating:    req.Rating,
		Comment:   req.Comment,
		Date:      model.DateKey(now),
		Timestamp: now,
	}
	if err := rating.Validate(); err != nil {
		return model.Rating{}, err
	}

	id, err := s.store.Add(ctx, model.CollectionRatings, rating.Document())
	if err != nil {
		return model.Rating{}, errors.NewTransientWriteError("failed to store rating", err)
	}
	rating.ID = id

	s.log.WithFields(map[string]interface{}{
		"userId":   identity.UID,
		"mealType": rating.MealType,
		"rating":   rating.Rating,
	}).Info("rating submitted")
	s.publish(ctx, eventbus.EventTypeRatingCreated, rating)
	return rating, nil
}

// SubmitSuggestion validates and stores a suggestion. New suggestions always
// start in the pending status regardless of the request.
func (s *FeedbackService) SubmitSuggestion(ctx context.Context, identity model.Identity, req SubmitSuggestionRequest) (model.Suggestion, error) {
	if !identity.Authenticated {
		return model.Suggestion{}, errors.NewAuthenticationError("login required to suggest a dish")
	}

	now := s.now()
	suggestion := model.Suggestion{
		UserID:      identity.UID,
		UserName:    identity.DisplayName,
		DishName:    req.DishName,
		Category:    req.Category,
		Description: req.Description,
		Date:        model.DateKey(now),
		Timestamp:   now,
		Status:      model.StatusPending,
	}
	if err := suggestion.Validate(); err != nil {
		return model.Suggestion{}, err
	}

	id, err := s.store.Add(ctx, model.CollectionSuggestions, suggestion.Document())
	if err != nil {
		return model.Suggestion{}, errors.NewTransientWriteError("failed to store suggestion", err)
	}
	suggestion.ID = id

	s.log.WithFields(map[string]interface{}{
		"userId":   identity.UID,
		"dishName": suggestion.DishName,
	}).Info("suggestion submitted")
	s.publish(ctx, eventbus.EventTypeSuggestionCreated, suggestion)
	return suggestion, nil
}

// DeleteSuggestion removes a suggestion. Residents may only delete their own
// suggestions; admins may delete any.
func (s *FeedbackService) DeleteSuggestion(ctx context.Context, identity model.Identity, id string) error {
	if !identity.Authenticated {
		return errors.NewAuthenticationError("login required")
	}

	doc, err := s.store.Get(ctx, model.CollectionSuggestions, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return errors.NewNotFoundError("suggestion")
		}
		return errors.WrapError(err, "failed to load suggestion")
	}

	suggestion := model.SuggestionFromDocument(doc)
	if suggestion.UserID != identity.UID && !identity.IsAdmin() {
		return errors.NewAuthorizationError(errors.ErrNotSuggestionOwner.Error())
	}

	if err := s.store.Delete(ctx, model.CollectionSuggestions, id); err != nil {
		return errors.NewTransientWriteError("failed to delete suggestion", err)
	}

	s.publish(ctx, eventbus.EventTypeSuggestionDeleted, suggestion)
	return nil
}

// ModerateSuggestion sets a suggestion's status. Admin only.
func (s *FeedbackService) ModerateSuggestion(ctx context.Context, identity model.Identity, id string, status model.SuggestionStatus) (model.Suggestion, error) {
	if !identity.Authenticated {
		return model.Suggestion{}, errors.NewAuthenticationError("login required")
	}
	if !identity.IsAdmin() {
		return model.Suggestion{}, errors.NewAuthorizationError("only admins can moderate suggestions")
	}
	if !status.IsValid() {
		return model.Suggestion{}, errors.NewValidationError(errors.ErrInvalidStatus.Error())
	}

	doc, err := s.store.Get(ctx, model.CollectionSuggestions, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return model.Suggestion{}, errors.NewNotFoundError("suggestion")
		}
		return model.Suggestion{}, errors.WrapError(err, "failed to load suggestion")
	}

	suggestion := model.SuggestionFromDocument(doc)
	suggestion.Status = status
	if err := s.store.Set(ctx, model.CollectionSuggestions, id, suggestion.Document()); err != nil {
		return model.Suggestion{}, errors.NewTransientWriteError("failed to update suggestion status", err)
	}

	s.publish(ctx, eventbus.EventTypeSuggestionUpdated, suggestion)
	return suggestion, nil
}

func (s *FeedbackService) publish(ctx context.Context, eventType string, data interface{}) {
	if s.bus == nil {
		return
	}
	s.bus.PublishAndForget(ctx, eventbus.NewBasicEvent(eventType, data))
}
