package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgfeedback/internal/feedback/domain/model"
	"pgfeedback/internal/shared/errors"
)

func newTestSession(store *fakeStore) *MenuEditSession {
	s := NewMenuEditSession(store, nil, testLogger())
	s.now = func() time.Time { return time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestMenuEditSession_LoadInitializesDefaultMenu(t *testing.T) {
	store := newFakeStore()
	session := newTestSession(store)

	menu, err := session.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Fri Aug 28 2026", menu.Date)
	assert.Equal(t, []string{"Poha", "Tea/Coffee", "Boiled Eggs"}, menu.Breakfast)
	assert.Equal(t, StateViewing, session.State())

	// The default menu is persisted, not just returned.
	doc, err := store.Get(context.Background(), model.CollectionMenus, menu.Date)
	require.NoError(t, err)
	assert.Equal(t, menu, model.MenuFromDocument(doc))
}

func TestMenuEditSession_LoadReturnsStoredMenu(t *testing.T) {
	store := newFakeStore()
	session := newTestSession(store)
	stored := model.DefaultMenu("Fri Aug 28 2026")
	stored.Lunch = []string{"Chole Bhature"}
	require.NoError(t, store.Set(context.Background(), model.CollectionMenus, stored.Date, stored.Document()))

	menu, err := session.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Chole Bhature"}, menu.Lunch)
}

func TestMenuEditSession_EditBufferDoesNotTouchStore(t *testing.T) {
	store := newFakeStore()
	session := newTestSession(store)
	_, err := session.Load(context.Background())
	require.NoError(t, err)

	_, err = session.BeginEdit()
	require.NoError(t, err)
	require.NoError(t, session.SetItem(model.MealBreakfast, 0, "Upma"))
	require.NoError(t, session.AppendItem(model.MealDinner))
	require.NoError(t, session.RemoveItem(model.MealLunch, 0))

	assert.Equal(t, StateEditing, session.State())
	assert.Equal(t, "Upma", session.Menu().Breakfast[0])

	// Store still holds the untouched default.
	doc, err := store.Get(context.Background(), model.CollectionMenus, "Fri Aug 28 2026")
	require.NoError(t, err)
	assert.Equal(t, "Poha", model.MenuFromDocument(doc).Breakfast[0])
}

func TestMenuEditSession_SavePersistsBuffer(t *testing.T) {
	store := newFakeStore()
	session := newTestSession(store)
	_, err := session.Load(context.Background())
	require.NoError(t, err)

	_, err = session.BeginEdit()
	require.NoError(t, err)
	require.NoError(t, session.SetItem(model.MealDinner, 0, "Paneer Butter Masala"))

	saved, err := session.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Paneer Butter Masala", saved.Dinner[0])
	assert.Equal(t, StateViewing, session.State())

	doc, err := store.Get(context.Background(), model.CollectionMenus, saved.Date)
	require.NoError(t, err)
	assert.Equal(t, "Paneer Butter Masala", model.MenuFromDocument(doc).Dinner[0])
}

func TestMenuEditSession_SaveFailureKeepsEditing(t *testing.T) {
	store := newFakeStore()
	session := newTestSession(store)
	_, err := session.Load(context.Background())
	require.NoError(t, err)

	_, err = session.BeginEdit()
	require.NoError(t, err)
	require.NoError(t, session.SetItem(model.MealBreakfast, 0, "Idli"))

	store.failSet = fmt.Errorf("write timeout")
	_, err = session.Save(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsTransientWrite(err))

	// The buffer survives the failed save so the admin can retry.
	assert.Equal(t, StateEditing, session.State())
	assert.Equal(t, "Idli", session.Menu().Breakfast[0])

	store.failSet = nil
	saved, err := session.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Idli", saved.Breakfast[0])
}

func TestMenuEditSession_CancelRevertsBuffer(t *testing.T) {
	store := newFakeStore()
	session := newTestSession(store)
	_, err := session.Load(context.Background())
	require.NoError(t, err)

	_, err = session.BeginEdit()
	require.NoError(t, err)
	require.NoError(t, session.SetItem(model.MealBreakfast, 0, "Dosa"))

	menu := session.Cancel()
	assert.Equal(t, "Poha", menu.Breakfast[0])
	assert.Equal(t, StateViewing, session.State())

	// Cancel while viewing is a no-op.
	again := session.Cancel()
	assert.Equal(t, menu, again)
}

func TestMenuEditSession_ContractViolations(t *testing.T) {
	store := newFakeStore()
	session := newTestSession(store)
	_, err := session.Load(context.Background())
	require.NoError(t, err)

	// Edits outside the Editing state are contract violations.
	assert.True(t, errors.IsContract(session.SetItem(model.MealLunch, 0, "x")))
	assert.True(t, errors.IsContract(session.AppendItem(model.MealLunch)))
	assert.True(t, errors.IsContract(session.RemoveItem(model.MealLunch, 0)))
	_, err = session.Save(context.Background())
	assert.True(t, errors.IsContract(err))

	_, err = session.BeginEdit()
	require.NoError(t, err)
	_, err = session.BeginEdit()
	assert.True(t, errors.IsContract(err))

	// Out-of-range index and non-meal fields are rejected.
	assert.True(t, errors.IsValidation(session.SetItem(model.MealLunch, 99, "x")))
	assert.True(t, errors.IsValidation(session.SetItem(model.MealType("date"), 0, "x")))
	assert.True(t, errors.IsValidation(session.RemoveItem(model.MealDinner, -1)))
}

func TestMenuSessionRegistry_SessionPerAdmin(t *testing.T) {
	store := newFakeStore()
	registry := NewMenuSessionRegistry(store, nil, testLogger())

	a := registry.Session("admin-a")
	b := registry.Session("admin-b")
	assert.NotSame(t, a, b)
	assert.Same(t, a, registry.Session("admin-a"))

	registry.Release("admin-a")
	assert.NotSame(t, a, registry.Session("admin-a"))
}
