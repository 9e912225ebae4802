package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgfeedback/internal/feedback/domain/model"
	"pgfeedback/internal/feedback/domain/port"
	"pgfeedback/internal/shared/errors"
	"pgfeedback/internal/shared/logger"
)

func newTestStore() *Store {
	return NewStore(logger.NewLoggerWithConfig("error", "json"))
}

func addRating(t *testing.T, store *Store, userID string, value int, ts time.Time) string {
	t.Helper()
	r := model.Rating{
		UserID:    userID,
		UserName:  "Tester",
		MealType:  model.MealLunch,
		Rating:    value,
		Date:      model.DateKey(ts),
		Timestamp: ts,
	}
	id, err := store.Add(context.Background(), model.CollectionRatings, r.Document())
	require.NoError(t, err)
	return id
}

func TestStore_GetSetDelete(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	_, err := store.Get(ctx, model.CollectionMenus, "missing")
	assert.True(t, errors.IsNotFound(err))

	menu := model.DefaultMenu("Fri Aug 28 2026")
	require.NoError(t, store.Set(ctx, model.CollectionMenus, menu.Date, menu.Document()))

	doc, err := store.Get(ctx, model.CollectionMenus, menu.Date)
	require.NoError(t, err)
	assert.Equal(t, menu, model.MenuFromDocument(doc))

	require.NoError(t, store.Delete(ctx, model.CollectionMenus, menu.Date))
	_, err = store.Get(ctx, model.CollectionMenus, menu.Date)
	assert.True(t, errors.IsNotFound(err))

	// Deleting an absent key is not an error.
	require.NoError(t, store.Delete(ctx, model.CollectionMenus, menu.Date))
}

func TestStore_QueryRecencyOrderWithTieBreak(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	oldest := addRating(t, store, "u1", 3, base.Add(-time.Hour))
	tieA := addRating(t, store, "u1", 4, base)
	tieB := addRating(t, store, "u2", 5, base)

	docs, err := store.Query(ctx, model.CollectionRatings, nil, port.ByRecency())
	require.NoError(t, err)
	require.Len(t, docs, 3)

	// Newest first; the two equal timestamps come out in id order.
	assert.Equal(t, oldest, docs[2].ID)
	first, second := docs[0].ID, docs[1].ID
	assert.Less(t, first, second)
	assert.ElementsMatch(t, []string{tieA, tieB}, []string{first, second})
}

func TestStore_QueryOwnerFilter(t *testing.T) {
	store := newTestStore()
	now := time.Now()
	addRating(t, store, "alice", 5, now)
	addRating(t, store, "bob", 2, now.Add(time.Second))

	docs, err := store.Query(context.Background(), model.CollectionRatings, port.OwnedBy("alice"), port.ByRecency())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "alice", model.RatingFromDocument(docs[0]).UserID)
}

func TestStore_WatchDeliversInitialAndMutationSnapshots(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	addRating(t, store, "u1", 4, time.Now())

	snaps, err := store.Watch(ctx, model.CollectionRatings, nil, port.ByRecency())
	require.NoError(t, err)
	defer snaps.Cancel()

	select {
	case docs := <-snaps.Updates():
		assert.Len(t, docs, 1)
	case <-time.After(time.Second):
		t.Fatal("initial snapshot never arrived")
	}

	addRating(t, store, "u2", 5, time.Now())

	deadline := time.After(time.Second)
	for {
		select {
		case docs := <-snaps.Updates():
			if len(docs) == 2 {
				return
			}
		case <-deadline:
			t.Fatal("mutation snapshot never arrived")
		}
	}
}

func TestStore_WatchConflatesForSlowConsumers(t *testing.T) {
	store := newTestStore()
	snaps, err := store.Watch(context.Background(), model.CollectionRatings, nil, port.ByRecency())
	require.NoError(t, err)
	defer snaps.Cancel()

	// Burst of writes with nobody draining the channel.
	now := time.Now()
	for i := 0; i < 20; i++ {
		addRating(t, store, "u1", 3, now.Add(time.Duration(i)*time.Millisecond))
	}

	deadline := time.After(time.Second)
	for {
		select {
		case docs := <-snaps.Updates():
			// Intermediate snapshots may be dropped; the final one must
			// carry all writes.
			if len(docs) == 20 {
				return
			}
		case <-deadline:
			t.Fatal("final snapshot never arrived")
		}
	}
}

func TestStore_WatchCancelIsIdempotent(t *testing.T) {
	store := newTestStore()
	snaps, err := store.Watch(context.Background(), model.CollectionRatings, nil, port.ByRecency())
	require.NoError(t, err)

	snaps.Cancel()
	snaps.Cancel()

	// Writes after cancel must not panic on closed channels.
	addRating(t, store, "u1", 4, time.Now())

	_, ok := <-snaps.Updates()
	for ok {
		_, ok = <-snaps.Updates()
	}
	assert.False(t, ok)
}

func TestStore_WatchHonorsContextCancellation(t *testing.T) {
	store := newTestStore()
	ctx, cancel := context.WithCancel(context.Background())

	snaps, err := store.Watch(ctx, model.CollectionRatings, nil, port.ByRecency())
	require.NoError(t, err)

	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-snaps.Updates():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("updates channel never closed after context cancel")
		}
	}
}

type recordingJournal struct {
	events []model.ChangeEvent
}

func (j *recordingJournal) Append(ctx context.Context, event model.ChangeEvent) error {
	j.events = append(j.events, event)
	return nil
}

func (j *recordingJournal) Since(ctx context.Context, collection, token string) ([]model.ChangeEvent, error) {
	return j.events, nil
}

func (j *recordingJournal) Trim(ctx context.Context, retention time.Duration) error { return nil }

func TestStore_MutationsReachJournal(t *testing.T) {
	journal := &recordingJournal{}
	store := newTestStore().WithJournal(journal)
	ctx := context.Background()

	id := addRating(t, store, "u1", 4, time.Now())
	menu := model.DefaultMenu("Fri Aug 28 2026")
	require.NoError(t, store.Set(ctx, model.CollectionMenus, menu.Date, menu.Document()))
	require.NoError(t, store.Set(ctx, model.CollectionMenus, menu.Date, menu.Document()))
	require.NoError(t, store.Delete(ctx, model.CollectionRatings, id))

	require.Len(t, journal.events, 4)
	assert.Equal(t, model.ChangeCreated, journal.events[0].Kind)
	assert.Equal(t, model.ChangeCreated, journal.events[1].Kind)
	assert.Equal(t, model.ChangeUpdated, journal.events[2].Kind)
	assert.Equal(t, model.ChangeDeleted, journal.events[3].Kind)
}
