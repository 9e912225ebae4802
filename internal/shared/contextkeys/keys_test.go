package contextkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextKey_String(t *testing.T) {
	key := contextKey("testKey")
	assert.Equal(t, "pgfeedback context key testKey", key.String())
}

func TestContextKeys_Usage(t *testing.T) {
	ctx := context.Background()
	ctx = context.WithValue(ctx, UserIDKey, "user-123")
	ctx = context.WithValue(ctx, UserNameKey, "Asha")
	ctx = context.WithValue(ctx, UserRoleKey, "admin")
	ctx = context.WithValue(ctx, RequestIDKey, "req-456")
	ctx = context.WithValue(ctx, ComponentKey, "stream_manager")

	assert.Equal(t, "user-123", ctx.Value(UserIDKey))
	assert.Equal(t, "Asha", ctx.Value(UserNameKey))
	assert.Equal(t, "admin", ctx.Value(UserRoleKey))
	assert.Equal(t, "req-456", ctx.Value(RequestIDKey))
	assert.Equal(t, "stream_manager", ctx.Value(ComponentKey))
}

func TestContextKeys_NoCollisionWithPlainStrings(t *testing.T) {
	ctx := context.WithValue(context.Background(), UserIDKey, "user-123")
	assert.Nil(t, ctx.Value("userID"))
}
