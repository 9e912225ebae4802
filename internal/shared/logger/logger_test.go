package logger

import (
	"context"
	"testing"

	"pgfeedback/internal/shared/contextkeys"

	"github.com/stretchr/testify/assert"
)

func TestLoggerInterface_Contract(t *testing.T) {
	var _ Logger = NewLogger()
	var _ Logger = NewLoggerWithConfig("info", "json")
	var _ Logger = NewLoggerWithConfig("not-a-level", "text")
}

func TestLogrusLogger_WithFieldsAndContext(t *testing.T) {
	log := NewLogger()
	log2 := log.WithFields(map[string]interface{}{"meal": "lunch"})
	assert.NotNil(t, log2)

	ctx := context.Background()
	ctx = context.WithValue(ctx, contextkeys.UserIDKey, "user1")
	ctx = context.WithValue(ctx, contextkeys.UserRoleKey, "admin")
	log3 := log.WithContext(ctx)
	assert.NotNil(t, log3)
}

func TestLogrusLogger_WithComponent(t *testing.T) {
	log := NewLogger()
	log2 := log.WithComponent("stream-manager")
	assert.NotNil(t, log2)
}
