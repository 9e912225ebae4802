package usecase

import (
	"context"

	"pgfeedback/internal/feedback/domain/model"
	"pgfeedback/internal/feedback/domain/port"
	"pgfeedback/internal/shared/eventbus"
	"pgfeedback/internal/shared/logger"
)

// JournalRecorder listens on the event bus and records every collection
// mutation in the change-event journal. Recording is best effort: a journal
// failure is logged and never propagates back to the write path.
type JournalRecorder struct {
	journal port.EventJournal
	log     logger.Logger
}

func NewJournalRecorder(journal port.EventJournal, log logger.Logger) *JournalRecorder {
	return &JournalRecorder{
		journal: journal,
		log:     log.WithComponent("journal_recorder"),
	}
}

// Register subscribes the recorder to the mutation event types.
func (r *JournalRecorder) Register(bus eventbus.EventBusInterface) {
	bus.Subscribe(eventbus.EventTypeRatingCreated, r.handle)
	bus.Subscribe(eventbus.EventTypeSuggestionCreated, r.handle)
	bus.Subscribe(eventbus.EventTypeSuggestionUpdated, r.handle)
	bus.Subscribe(eventbus.EventTypeSuggestionDeleted, r.handle)
	bus.Subscribe(eventbus.EventTypeMenuUpdated, r.handle)
}

func (r *JournalRecorder) handle(ctx context.Context, event eventbus.Event) error {
	change, ok := changeFromEvent(event)
	if !ok {
		r.log.Warnf("unrecognized event payload for %s", event.Type())
		return nil
	}
	if err := r.journal.Append(ctx, change); err != nil {
		r.log.WithFields(map[string]interface{}{
			"eventType":  event.Type(),
			"collection": change.Collection,
			"key":        change.Key,
		}).Error("failed to journal change event: ", err)
	}
	return nil
}

func changeFromEvent(event eventbus.Event) (model.ChangeEvent, bool) {
	change := model.ChangeEvent{Timestamp: event.Timestamp()}

	switch event.Type() {
	case eventbus.EventTypeRatingCreated:
		rating, ok := event.Data().(model.Rating)
		if !ok {
			return model.ChangeEvent{}, false
		}
		change.Kind = model.ChangeCreated
		change.Collection = model.CollectionRatings
		change.Key = rating.ID
		change.Data = rating.Document().Data
	case eventbus.EventTypeSuggestionCreated, eventbus.EventTypeSuggestionUpdated, eventbus.EventTypeSuggestionDeleted:
		suggestion, ok := event.Data().(model.Suggestion)
		if !ok {
			return model.ChangeEvent{}, false
		}
		switch event.Type() {
		case eventbus.EventTypeSuggestionCreated:
			change.Kind = model.ChangeCreated
		case eventbus.EventTypeSuggestionUpdated:
			change.Kind = model.ChangeUpdated
		default:
			change.Kind = model.ChangeDeleted
		}
		change.Collection = model.CollectionSuggestions
		change.Key = suggestion.ID
		change.Data = suggestion.Document().Data
	case eventbus.EventTypeMenuUpdated:
		data, ok := event.Data().(map[string]interface{})
		if !ok {
			return model.ChangeEvent{}, false
		}
		date, _ := data["date"].(string)
		if date == "" {
			return model.ChangeEvent{}, false
		}
		change.Kind = model.ChangeUpdated
		change.Collection = model.CollectionMenus
		change.Key = date
		change.Data = data
	default:
		return model.ChangeEvent{}, false
	}

	return change, true
}
