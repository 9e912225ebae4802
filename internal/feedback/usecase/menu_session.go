package usecase

import (
	"context"
	"sync"
	"time"

	"pgfeedback/internal/feedback/domain/model"
	"pgfeedback/internal/feedback/domain/port"
	"pgfeedback/internal/shared/errors"
	"pgfeedback/internal/shared/eventbus"
	"pgfeedback/internal/shared/logger"
)

// SessionState is the menu edit session lifecycle state.
type SessionState string

const (
	// StateViewing shows the persisted menu; no edit buffer exists.
	StateViewing SessionState = "viewing"
	// StateEditing holds a private buffer; the persisted menu is untouched
	// until Save.
	StateEditing SessionState = "editing"
)

// MenuEditSession manages today's menu for one admin: load with
// default-initialization, a buffered edit cycle, and last-write-wins saves.
// All methods are safe for concurrent use.
type MenuEditSession struct {
	store port.DocumentStore
	bus   eventbus.EventBusInterface
	log   logger.Logger
	now   func() time.Time

	mu     sync.Mutex
	state  SessionState
	menu   model.DailyMenu
	buffer model.DailyMenu
}

// NewMenuEditSession creates a session in the Viewing state. The menu is not
// loaded until Load is called.
func NewMenuEditSession(store port.DocumentStore, bus eventbus.EventBusInterface, log logger.Logger) *MenuEditSession {
	return &MenuEditSession{
		store: store,
		bus:   bus,
		log:   log.WithComponent("menu_session"),
		now:   time.Now,
		state: StateViewing,
	}
}

// State reports the current lifecycle state.
func (s *MenuEditSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load fetches today's menu from the store. If no menu exists for today yet,
// the default menu is persisted first and then returned, so every later
// reader sees the same document. Load leaves the session in Viewing and
// discards any in-progress edit buffer.
func (s *MenuEditSession) Load(ctx context.Context) (model.DailyMenu, error) {
	dateKey := model.DateKey(s.now())

	doc, err := s.store.Get(ctx, model.CollectionMenus, dateKey)
	if err != nil {
		if !errors.IsNotFound(err) {
			return model.DailyMenu{}, errors.WrapError(err, "failed to load menu")
		}
		menu := model.DefaultMenu(dateKey)
		if err := s.store.Set(ctx, model.CollectionMenus, dateKey, menu.Document()); err != nil {
			return model.DailyMenu{}, errors.NewTransientWriteError("failed to initialize default menu", err)
		}
		s.log.Infof("initialized default menu for %s", dateKey)
		s.setViewing(menu)
		return menu.Clone(), nil
	}

	menu := model.MenuFromDocument(doc)
	s.setViewing(menu)
	return menu.Clone(), nil
}

func (s *MenuEditSession) setViewing(menu model.DailyMenu) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateViewing
	s.menu = menu.Clone()
	s.buffer = model.DailyMenu{}
}

// Menu returns the menu the session is showing: the edit buffer while
// editing, the loaded menu otherwise.
func (s *MenuEditSession) Menu() model.DailyMenu {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateEditing {
		return s.buffer.Clone()
	}
	return s.menu.Clone()
}

// BeginEdit copies the loaded menu into a private buffer and moves to
// Editing. Beginning an edit while already editing is a contract violation.
func (s *MenuEditSession) BeginEdit() (model.DailyMenu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateEditing {
		return model.DailyMenu{}, errors.NewContractError(errors.ErrAlreadyEditing.Error())
	}
	s.state = StateEditing
	s.buffer = s.menu.Clone()
	return s.buffer.Clone(), nil
}

// SetItem replaces one item of the buffer. The date field is not addressable
// through the edit cycle.
func (s *MenuEditSession) SetItem(meal model.MealType, idx int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return errors.NewContractError(errors.ErrNotEditing.Error())
	}
	if !meal.IsValid() {
		return errors.NewValidationError(errors.ErrMenuFieldNotEditable.Error())
	}
	if !s.buffer.SetItem(meal, idx, text) {
		return errors.NewValidationError(errors.ErrMenuItemOutOfRange.Error())
	}
	return nil
}

// AppendItem adds an empty item to one meal of the buffer.
func (s *MenuEditSession) AppendItem(meal model.MealType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return errors.NewContractError(errors.ErrNotEditing.Error())
	}
	if !s.buffer.AppendItem(meal) {
		return errors.NewValidationError(errors.ErrMenuFieldNotEditable.Error())
	}
	return nil
}

// RemoveItem deletes one item from one meal of the buffer.
func (s *MenuEditSession) RemoveItem(meal model.MealType, idx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return errors.NewContractError(errors.ErrNotEditing.Error())
	}
	if !meal.IsValid() {
		return errors.NewValidationError(errors.ErrMenuFieldNotEditable.Error())
	}
	if !s.buffer.RemoveItem(meal, idx) {
		return errors.NewValidationError(errors.ErrMenuItemOutOfRange.Error())
	}
	return nil
}

// Save persists the buffer as today's menu and returns to Viewing. Saves are
// last-write-wins: the buffer replaces whatever is stored, with no version
// check. On a store failure the session stays in Editing with the buffer
// intact so the admin can retry or cancel.
func (s *MenuEditSession) Save(ctx context.Context) (model.DailyMenu, error) {
	s.mu.Lock()
	if s.state != StateEditing {
		s.mu.Unlock()
		return model.DailyMenu{}, errors.NewContractError(errors.ErrNotEditing.Error())
	}
	buffer := s.buffer.Clone()
	s.mu.Unlock()

	if err := s.store.Set(ctx, model.CollectionMenus, buffer.Date, buffer.Document()); err != nil {
		return model.DailyMenu{}, errors.NewTransientWriteError("failed to save menu", err)
	}

	s.mu.Lock()
	s.state = StateViewing
	s.menu = buffer.Clone()
	s.buffer = model.DailyMenu{}
	s.mu.Unlock()

	s.publishMenuUpdated(ctx, buffer)
	return buffer, nil
}

// Cancel discards the buffer and returns to Viewing; the persisted menu is
// untouched. Cancelling while not editing is a no-op.
func (s *MenuEditSession) Cancel() model.DailyMenu {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateEditing {
		s.state = StateViewing
		s.buffer = model.DailyMenu{}
	}
	return s.menu.Clone()
}

func (s *MenuEditSession) publishMenuUpdated(ctx context.Context, menu model.DailyMenu) {
	if s.bus == nil {
		return
	}
	event := eventbus.NewBasicEvent(
		eventbus.EventTypeMenuUpdated,
		map[string]interface{}{"date": menu.Date},
	)
	s.bus.PublishAndForget(ctx, event)
}

// MenuSessionRegistry hands out one edit session per admin so concurrent
// admins each get a private buffer over the same stored menu.
type MenuSessionRegistry struct {
	store port.DocumentStore
	bus   eventbus.EventBusInterface
	log   logger.Logger

	mu       sync.Mutex
	sessions map[string]*MenuEditSession
}

// NewMenuSessionRegistry creates an empty registry.
func NewMenuSessionRegistry(store port.DocumentStore, bus eventbus.EventBusInterface, log logger.Logger) *MenuSessionRegistry {
	return &MenuSessionRegistry{
		store:    store,
		bus:      bus,
		log:      log,
		sessions: make(map[string]*MenuEditSession),
	}
}

// Session returns the session for the given admin, creating it on first use.
func (r *MenuSessionRegistry) Session(uid string) *MenuEditSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[uid]; ok {
		return s
	}
	s := NewMenuEditSession(r.store, r.bus, r.log)
	r.sessions[uid] = s
	return s
}

// Release drops the session for the given admin, discarding any buffer.
func (r *MenuSessionRegistry) Release(uid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, uid)
}
