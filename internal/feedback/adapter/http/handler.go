// Package http exposes the feedback engine over fiber: REST endpoints for
// writes and the menu edit cycle, WebSocket endpoints for the live feeds.
package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"pgfeedback/internal/feedback/domain/model"
	"pgfeedback/internal/feedback/domain/port"
	"pgfeedback/internal/feedback/usecase"
	"pgfeedback/internal/shared/errors"
	"pgfeedback/internal/shared/logger"
)

// Handler serves the REST surface of the feedback engine.
type Handler struct {
	feedback    *usecase.FeedbackService
	aggregation *usecase.AggregationEngine
	sessions    *usecase.MenuSessionRegistry
	store       port.DocumentStore
	journal     port.EventJournal
	middleware  *AuthMiddleware
	log         logger.Logger
}

// NewHandler creates the REST handler.
func NewHandler(
	feedback *usecase.FeedbackService,
	aggregation *usecase.AggregationEngine,
	sessions *usecase.MenuSessionRegistry,
	store port.DocumentStore,
	journal port.EventJournal,
	middleware *AuthMiddleware,
	log logger.Logger,
) *Handler {
	return &Handler{
		feedback:    feedback,
		aggregation: aggregation,
		sessions:    sessions,
		store:       store,
		journal:     journal,
		middleware:  middleware,
		log:         log.WithComponent("http_handler"),
	}
}

// RegisterRoutes mounts the REST endpoints under the given router.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	api := router.Group("/api/v1")

	api.Get("/health", h.Health)
	api.Get("/meals/current", h.CurrentMeal)

	requireAuth := h.middleware.RequireAuth()
	api.Post("/ratings", requireAuth, WriteRateLimiter(), h.SubmitRating)
	api.Post("/suggestions", requireAuth, WriteRateLimiter(), h.SubmitSuggestion)
	api.Delete("/suggestions/:id", requireAuth, h.DeleteSuggestion)
	api.Get("/menu", requireAuth, h.GetMenu)

	admin := api.Group("/admin", h.middleware.RequireAdmin())
	admin.Patch("/suggestions/:id/status", h.ModerateSuggestion)
	admin.Get("/stats", h.DashboardStats)
	admin.Get("/activity", h.Activity)
	admin.Post("/menu/edit", h.BeginMenuEdit)
	admin.Put("/menu/edit/items", h.SetMenuItem)
	admin.Post("/menu/edit/items", h.AppendMenuItem)
	admin.Delete("/menu/edit/items", h.RemoveMenuItem)
	admin.Post("/menu/save", h.SaveMenu)
	admin.Post("/menu/cancel", h.CancelMenuEdit)
}

// Health reports liveness.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "time": time.Now().UTC()})
}

// CurrentMeal reports which meal is being served right now.
func (h *Handler) CurrentMeal(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"mealType": model.CurrentMealType(time.Now())})
}

// SubmitRating stores one meal rating for the caller.
func (h *Handler) SubmitRating(c *fiber.Ctx) error {
	var req usecase.SubmitRatingRequest
	if err := c.BodyParser(&req); err != nil {
		return h.renderError(c, errors.NewValidationError("invalid request body"))
	}

	rating, err := h.feedback.SubmitRating(c.UserContext(), IdentityFromCtx(c), req)
	if err != nil {
		return h.renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rating)
}

// SubmitSuggestion stores one dish suggestion for the caller.
func (h *Handler) SubmitSuggestion(c *fiber.Ctx) error {
	var req usecase.SubmitSuggestionRequest
	if err := c.BodyParser(&req); err != nil {
		return h.renderError(c, errors.NewValidationError("invalid request body"))
	}

	suggestion, err := h.feedback.SubmitSuggestion(c.UserContext(), IdentityFromCtx(c), req)
	if err != nil {
		return h.renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(suggestion)
}

// DeleteSuggestion removes a suggestion owned by the caller.
func (h *Handler) DeleteSuggestion(c *fiber.Ctx) error {
	if err := h.feedback.DeleteSuggestion(c.UserContext(), IdentityFromCtx(c), c.Params("id")); err != nil {
		return h.renderError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ModerateSuggestion sets a suggestion's moderation status.
func (h *Handler) ModerateSuggestion(c *fiber.Ctx) error {
	var req struct {
		Status model.SuggestionStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return h.renderError(c, errors.NewValidationError("invalid request body"))
	}

	suggestion, err := h.feedback.ModerateSuggestion(c.UserContext(), IdentityFromCtx(c), c.Params("id"), req.Status)
	if err != nil {
		return h.renderError(c, err)
	}
	return c.JSON(suggestion)
}

// DashboardStats derives the dashboard statistics from the current contents
// of both collections. The live path is the WebSocket feed; this endpoint
// serves one-shot reads.
func (h *Handler) DashboardStats(c *fiber.Ctx) error {
	ctx := c.UserContext()

	ratingDocs, err := h.store.Query(ctx, model.CollectionRatings, nil, port.ByRecency())
	if err != nil {
		return h.renderError(c, errors.WrapError(err, "failed to load ratings"))
	}
	suggestionDocs, err := h.store.Query(ctx, model.CollectionSuggestions, nil, port.ByRecency())
	if err != nil {
		return h.renderError(c, errors.WrapError(err, "failed to load suggestions"))
	}

	ratings := make([]model.Rating, 0, len(ratingDocs))
	for _, d := range ratingDocs {
		ratings = append(ratings, model.RatingFromDocument(d))
	}
	suggestions := make([]model.Suggestion, 0, len(suggestionDocs))
	for _, d := range suggestionDocs {
		suggestions = append(suggestions, model.SuggestionFromDocument(d))
	}

	return c.JSON(h.aggregation.Compute(ratings, suggestions))
}

// Activity pages through the change journal for the admin activity view.
func (h *Handler) Activity(c *fiber.Ctx) error {
	collection := c.Query("collection", model.CollectionRatings)
	token := c.Query("since")

	events, err := h.journal.Since(c.UserContext(), collection, token)
	if err != nil {
		return h.renderError(c, errors.WrapError(err, "failed to read activity"))
	}

	next := token
	if len(events) > 0 {
		next = events[len(events)-1].ResumeToken
	}
	return c.JSON(fiber.Map{"events": events, "nextToken": next})
}

// GetMenu loads today's menu, initializing the default menu when none
// exists yet.
func (h *Handler) GetMenu(c *fiber.Ctx) error {
	session := h.sessions.Session(IdentityFromCtx(c).UID)
	menu, err := session.Load(c.UserContext())
	if err != nil {
		return h.renderError(c, err)
	}
	return c.JSON(fiber.Map{"menu": menu, "state": session.State()})
}

// BeginMenuEdit opens the caller's edit buffer over today's menu.
func (h *Handler) BeginMenuEdit(c *fiber.Ctx) error {
	session := h.sessions.Session(IdentityFromCtx(c).UID)
	if _, err := session.Load(c.UserContext()); err != nil {
		return h.renderError(c, err)
	}
	buffer, err := session.BeginEdit()
	if err != nil {
		return h.renderError(c, err)
	}
	return c.JSON(fiber.Map{"menu": buffer, "state": session.State()})
}

type menuItemRequest struct {
	Meal  model.MealType `json:"meal"`
	Index int            `json:"index"`
	Text  string         `json:"text"`
}

// SetMenuItem replaces one item in the caller's edit buffer.
func (h *Handler) SetMenuItem(c *fiber.Ctx) error {
	var req menuItemRequest
	if err := c.BodyParser(&req); err != nil {
		return h.renderError(c, errors.NewValidationError("invalid request body"))
	}

	session := h.sessions.Session(IdentityFromCtx(c).UID)
	if err := session.SetItem(req.Meal, req.Index, req.Text); err != nil {
		return h.renderError(c, err)
	}
	return c.JSON(fiber.Map{"menu": session.Menu(), "state": session.State()})
}

// AppendMenuItem adds an empty item to one meal of the edit buffer.
func (h *Handler) AppendMenuItem(c *fiber.Ctx) error {
	var req menuItemRequest
	if err := c.BodyParser(&req); err != nil {
		return h.renderError(c, errors.NewValidationError("invalid request body"))
	}

	session := h.sessions.Session(IdentityFromCtx(c).UID)
	if err := session.AppendItem(req.Meal); err != nil {
		return h.renderError(c, err)
	}
	return c.JSON(fiber.Map{"menu": session.Menu(), "state": session.State()})
}

// RemoveMenuItem deletes one item from the edit buffer.
func (h *Handler) RemoveMenuItem(c *fiber.Ctx) error {
	var req menuItemRequest
	if err := c.BodyParser(&req); err != nil {
		return h.renderError(c, errors.NewValidationError("invalid request body"))
	}

	session := h.sessions.Session(IdentityFromCtx(c).UID)
	if err := session.RemoveItem(req.Meal, req.Index); err != nil {
		return h.renderError(c, err)
	}
	return c.JSON(fiber.Map{"menu": session.Menu(), "state": session.State()})
}

// SaveMenu persists the caller's edit buffer as today's menu.
func (h *Handler) SaveMenu(c *fiber.Ctx) error {
	session := h.sessions.Session(IdentityFromCtx(c).UID)
	menu, err := session.Save(c.UserContext())
	if err != nil {
		return h.renderError(c, err)
	}
	return c.JSON(fiber.Map{"menu": menu, "state": session.State()})
}

// CancelMenuEdit discards the caller's edit buffer.
func (h *Handler) CancelMenuEdit(c *fiber.Ctx) error {
	session := h.sessions.Session(IdentityFromCtx(c).UID)
	menu := session.Cancel()
	return c.JSON(fiber.Map{"menu": menu, "state": session.State()})
}

// renderError maps domain errors onto HTTP responses.
func (h *Handler) renderError(c *fiber.Ctx, err error) error {
	if appErr, ok := err.(*errors.AppError); ok {
		if appErr.HTTPCode >= fiber.StatusInternalServerError {
			h.log.WithContext(c.UserContext()).Error("request failed: ", appErr)
		}
		return c.Status(appErr.HTTPCode).JSON(fiber.Map{
			"error": appErr.Message,
			"type":  appErr.Type,
		})
	}

	switch {
	case errors.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.IsValidation(err), errors.IsContract(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.IsAuthorization(err):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	default:
		h.log.WithContext(c.UserContext()).Error("request failed: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}
