package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Behavior(t *testing.T) {
	err := NewValidationError("invalid input").WithCode("VAL001").WithDetail("field", "mealType").WithComponent("feedback-service")
	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "VAL001", err.Code)
	assert.Equal(t, "feedback-service", err.Component)
	assert.Equal(t, "mealType", err.Details["field"])
	assert.Equal(t, "invalid input", err.Error())
}

func TestAppError_WithCause_Unwrap(t *testing.T) {
	cause := ErrDocumentNotFound
	err := NewNotFoundError("menu").WithCause(cause)
	assert.Equal(t, cause, err.Unwrap())
	assert.Equal(t, "menu not found: document not found", err.Error())
}

func TestTaxonomyPredicates(t *testing.T) {
	tw := NewTransientWriteError("rating rejected", fmt.Errorf("store unavailable"))
	assert.True(t, IsTransientWrite(tw))
	assert.False(t, IsSubscription(tw))

	sub := NewSubscriptionError("ratings stream lost", ErrSubscriptionClosed)
	assert.True(t, IsSubscription(sub))
	assert.True(t, IsSubscription(ErrSubscriptionClosed))
	assert.False(t, IsTransientWrite(sub))

	contract := NewContractError("lunch index out of range")
	assert.True(t, IsContract(contract))
	assert.True(t, IsContract(ErrMenuItemOutOfRange))
	assert.True(t, IsContract(fmt.Errorf("wrapped: %w", ErrMenuFieldNotEditable)))
}

func TestIsNotFound_IsValidation_IsAuthorization(t *testing.T) {
	nf := NewNotFoundError("suggestion")
	assert.True(t, IsNotFound(nf))
	assert.True(t, IsNotFound(fmt.Errorf("get: %w", ErrSuggestionNotFound)))
	assert.False(t, IsValidation(nf))
	assert.False(t, IsAuthorization(nf))

	assert.True(t, IsValidation(ErrInvalidRatingValue))
	assert.True(t, IsValidation(NewValidationError("bad")))
	assert.True(t, IsAuthorization(ErrNotSuggestionOwner))
	assert.True(t, IsAuthorization(NewAuthorizationError("bad")))
}

func TestWrapError_PassesThroughAppError(t *testing.T) {
	orig := NewContractError("bad edit")
	wrapped := WrapError(orig, "ignored")
	assert.Same(t, orig, wrapped)

	plain := fmt.Errorf("boom")
	app := WrapError(plain, "context message")
	assert.Equal(t, ErrorTypeInternal, app.Type)
	assert.Equal(t, plain, app.Unwrap())
}
