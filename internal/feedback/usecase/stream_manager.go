package usecase

import (
	"context"
	"sync"

	"pgfeedback/internal/feedback/domain/model"
	"pgfeedback/internal/feedback/domain/port"
	"pgfeedback/internal/shared/errors"
	"pgfeedback/internal/shared/logger"
)

// SnapshotPair is one combined emission of the feedback feed: the complete
// current contents of both collections, newest first. Consumers replace any
// prior state with each pair; pairs are never diffs.
type SnapshotPair struct {
	Ratings     []model.Rating     `json:"ratings"`
	Suggestions []model.Suggestion `json:"suggestions"`
}

// FeedbackFeed is a live, combined subscription over the ratings and
// suggestions collections. Updates carries full snapshot pairs. A value on
// Errors means the underlying subscription failed; no snapshot accompanies
// it. Cancel is safe to call multiple times and from any goroutine.
type FeedbackFeed struct {
	updates chan SnapshotPair
	errs    chan error

	cancel     context.CancelFunc
	cancelOnce sync.Once
	done       chan struct{}
}

// Updates delivers full snapshot pairs. Rapid successive mutations may be
// coalesced into fewer emissions; the last emission after writes stop always
// reflects the final state of both collections.
func (f *FeedbackFeed) Updates() <-chan SnapshotPair { return f.updates }

// Errors delivers subscription failures. An empty snapshot is delivered on
// Updates, never here.
func (f *FeedbackFeed) Errors() <-chan error { return f.errs }

// Cancel terminates the feed. It is idempotent; once it returns, no further
// emissions occur on Updates or Errors.
func (f *FeedbackFeed) Cancel() {
	f.cancelOnce.Do(func() {
		f.cancel()
		<-f.done
	})
}

// StreamManager owns the live subscriptions behind the dashboard and the
// per-user history view. It merges the two per-collection streams of the
// document store into one feed of combined snapshot pairs.
type StreamManager struct {
	store port.DocumentStore
	log   logger.Logger
}

// NewStreamManager creates a stream manager on top of the given store.
func NewStreamManager(store port.DocumentStore, log logger.Logger) *StreamManager {
	return &StreamManager{
		store: store,
		log:   log.WithComponent("stream_manager"),
	}
}

// SubscribeAll opens a feed over every rating and suggestion, for the admin
// dashboard. The first pair is emitted as soon as both collections have
// delivered their initial snapshots.
func (m *StreamManager) SubscribeAll(ctx context.Context) (*FeedbackFeed, error) {
	return m.subscribe(ctx, nil)
}

// SubscribeUser opens a feed restricted to documents created by the given
// user, for the personal history view.
func (m *StreamManager) SubscribeUser(ctx context.Context, userID string) (*FeedbackFeed, error) {
	return m.subscribe(ctx, port.OwnedBy(userID))
}

func (m *StreamManager) subscribe(ctx context.Context, filter *port.Filter) (*FeedbackFeed, error) {
	feedCtx, cancel := context.WithCancel(ctx)

	ratingSnaps, err := m.store.Watch(feedCtx, model.CollectionRatings, filter, port.ByRecency())
	if err != nil {
		cancel()
		return nil, errors.NewSubscriptionError("failed to watch ratings", err)
	}

	suggestionSnaps, err := m.store.Watch(feedCtx, model.CollectionSuggestions, filter, port.ByRecency())
	if err != nil {
		ratingSnaps.Cancel()
		cancel()
		return nil, errors.NewSubscriptionError("failed to watch suggestions", err)
	}

	feed := &FeedbackFeed{
		updates: make(chan SnapshotPair, 1),
		errs:    make(chan error, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go m.pump(feedCtx, feed, ratingSnaps, suggestionSnaps)
	return feed, nil
}

// pump merges the two collection streams into combined pairs. Emission is
// conflating: if the consumer has not drained the previous pair yet, it is
// replaced by the newer one, so a slow consumer always observes the latest
// state rather than a backlog.
func (m *StreamManager) pump(ctx context.Context, feed *FeedbackFeed, ratings, suggestions port.Snapshots) {
	defer func() {
		ratings.Cancel()
		suggestions.Cancel()
		close(feed.updates)
		close(feed.errs)
		close(feed.done)
	}()

	var (
		pair            SnapshotPair
		haveRatings     bool
		haveSuggestions bool
	)

	ratingErrs := ratings.Errors()
	suggestionErrs := suggestions.Errors()

	for {
		select {
		case <-ctx.Done():
			return

		case docs, ok := <-ratings.Updates():
			if !ok {
				m.emitError(feed, errors.NewSubscriptionError("ratings stream closed", errors.ErrSubscriptionClosed))
				return
			}
			pair.Ratings = make([]model.Rating, 0, len(docs))
			for _, d := range docs {
				pair.Ratings = append(pair.Ratings, model.RatingFromDocument(d))
			}
			haveRatings = true

		case docs, ok := <-suggestions.Updates():
			if !ok {
				m.emitError(feed, errors.NewSubscriptionError("suggestions stream closed", errors.ErrSubscriptionClosed))
				return
			}
			pair.Suggestions = make([]model.Suggestion, 0, len(docs))
			for _, d := range docs {
				pair.Suggestions = append(pair.Suggestions, model.SuggestionFromDocument(d))
			}
			haveSuggestions = true

		case err, ok := <-ratingErrs:
			if !ok {
				ratingErrs = nil
				continue
			}
			if err != nil {
				m.log.Error("ratings subscription failed: ", err)
				m.emitError(feed, errors.NewSubscriptionError("ratings subscription failed", err))
				return
			}

		case err, ok := <-suggestionErrs:
			if !ok {
				suggestionErrs = nil
				continue
			}
			if err != nil {
				m.log.Error("suggestions subscription failed: ", err)
				m.emitError(feed, errors.NewSubscriptionError("suggestions subscription failed", err))
				return
			}
		}

		// Hold the first emission until both collections have reported, so
		// consumers never mistake a not-yet-loaded collection for an empty
		// one.
		if haveRatings && haveSuggestions {
			m.emitPair(feed, pair)
		}
	}
}

func (m *StreamManager) emitPair(feed *FeedbackFeed, pair SnapshotPair) {
	for {
		select {
		case feed.updates <- pair:
			return
		default:
		}
		select {
		case <-feed.updates:
		default:
		}
	}
}

func (m *StreamManager) emitError(feed *FeedbackFeed, err error) {
	select {
	case feed.errs <- err:
	default:
	}
}
