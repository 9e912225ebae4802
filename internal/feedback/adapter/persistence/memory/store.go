// Package memory provides an in-process DocumentStore used by tests and
// single-node deployments. It implements the same snapshot semantics as the
// MongoDB adapter, including live watches.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pgfeedback/internal/feedback/domain/model"
	"pgfeedback/internal/feedback/domain/port"
	"pgfeedback/internal/shared/errors"
	"pgfeedback/internal/shared/logger"
)

// Store is an in-memory document store. All operations are safe for
// concurrent use; watchers receive a fresh full snapshot after every
// mutation of their collection.
type Store struct {
	log     logger.Logger
	journal port.EventJournal

	mu          sync.RWMutex
	collections map[string]map[string]model.Document
	watchers    map[string][]*watcher
}

// NewStore creates an empty store.
func NewStore(log logger.Logger) *Store {
	return &Store{
		log:         log.WithComponent("memory_store"),
		collections: make(map[string]map[string]model.Document),
		watchers:    make(map[string][]*watcher),
	}
}

// WithJournal makes the store record every mutation in the given journal.
// Journal failures are logged and never fail the originating write.
func (s *Store) WithJournal(journal port.EventJournal) *Store {
	s.journal = journal
	return s
}

func (s *Store) docsLocked(collection string) map[string]model.Document {
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]model.Document)
	}
	return s.collections[collection]
}

// Query returns the current contents of a collection, filtered and ordered.
func (s *Store) Query(ctx context.Context, collection string, filter *port.Filter, order port.Order) ([]model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(collection, filter, order), nil
}

// snapshotLocked builds an ordered snapshot. Equal timestamps are broken by
// document id ascending so snapshot order is stable across emissions.
func (s *Store) snapshotLocked(collection string, filter *port.Filter, order port.Order) []model.Document {
	docs := make([]model.Document, 0, len(s.docsLocked(collection)))
	for _, d := range s.docsLocked(collection) {
		if filter != nil && d.Data[filter.Field] != filter.Value {
			continue
		}
		docs = append(docs, cloneDocument(d))
	}

	sort.Slice(docs, func(i, j int) bool {
		vi := orderValue(docs[i], order.Field)
		vj := orderValue(docs[j], order.Field)
		if !vi.Equal(vj) {
			if order.Descending {
				return vi.After(vj)
			}
			return vi.Before(vj)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs
}

func orderValue(d model.Document, field string) time.Time {
	if t, ok := d.Data[field].(time.Time); ok {
		return t
	}
	return time.Time{}
}

func cloneDocument(d model.Document) model.Document {
	data := make(map[string]interface{}, len(d.Data))
	for k, v := range d.Data {
		data[k] = v
	}
	return model.Document{ID: d.ID, Data: data}
}

// Watch opens a live subscription over a collection. The initial snapshot is
// delivered immediately; later snapshots follow every mutation. Snapshots to
// a slow consumer are conflated so the newest state always wins.
func (s *Store) Watch(ctx context.Context, collection string, filter *port.Filter, order port.Order) (port.Snapshots, error) {
	w := &watcher{
		store:      s,
		collection: collection,
		filter:     filter,
		order:      order,
		updates:    make(chan []model.Document, 1),
		errs:       make(chan error, 1),
	}

	s.mu.Lock()
	s.watchers[collection] = append(s.watchers[collection], w)
	initial := s.snapshotLocked(collection, filter, order)
	s.mu.Unlock()

	w.push(initial)

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			w.Cancel()
		}()
	}
	return w, nil
}

// Get point-reads a document by key.
func (s *Store) Get(ctx context.Context, collection, key string) (model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docsLocked(collection)[key]
	if !ok {
		return model.Document{}, errors.ErrDocumentNotFound
	}
	return cloneDocument(d), nil
}

// Set upserts a document at the given key, replacing it entirely.
func (s *Store) Set(ctx context.Context, collection, key string, doc model.Document) error {
	s.mu.Lock()
	_, existed := s.docsLocked(collection)[key]
	doc.ID = key
	s.docsLocked(collection)[key] = cloneDocument(doc)
	s.notifyLocked(collection)
	s.mu.Unlock()

	kind := model.ChangeCreated
	if existed {
		kind = model.ChangeUpdated
	}
	s.record(ctx, kind, collection, key, doc.Data)
	return nil
}

// Add inserts a document under a fresh uuid key and returns the key.
func (s *Store) Add(ctx context.Context, collection string, doc model.Document) (string, error) {
	id := uuid.New().String()

	s.mu.Lock()
	doc.ID = id
	s.docsLocked(collection)[id] = cloneDocument(doc)
	s.notifyLocked(collection)
	s.mu.Unlock()

	s.record(ctx, model.ChangeCreated, collection, id, doc.Data)
	return id, nil
}

// Delete removes a document by key. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, collection, key string) error {
	s.mu.Lock()
	_, existed := s.docsLocked(collection)[key]
	delete(s.docsLocked(collection), key)
	if existed {
		s.notifyLocked(collection)
	}
	s.mu.Unlock()

	if existed {
		s.record(ctx, model.ChangeDeleted, collection, key, nil)
	}
	return nil
}

// notifyLocked pushes a fresh snapshot to every watcher of the collection.
// Called with s.mu held.
func (s *Store) notifyLocked(collection string) {
	for _, w := range s.watchers[collection] {
		w.push(s.snapshotLocked(collection, w.filter, w.order))
	}
}

func (s *Store) record(ctx context.Context, kind model.ChangeKind, collection, key string, data map[string]interface{}) {
	if s.journal == nil {
		return
	}
	event := model.ChangeEvent{
		Kind:       kind,
		Collection: collection,
		Key:        key,
		Data:       data,
		Timestamp:  time.Now(),
	}
	if err := s.journal.Append(ctx, event); err != nil {
		s.log.Warn("failed to journal change event: ", err)
	}
}

func (s *Store) removeWatcher(collection string, w *watcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	watchers := s.watchers[collection]
	for i, candidate := range watchers {
		if candidate == w {
			s.watchers[collection] = append(watchers[:i], watchers[i+1:]...)
			break
		}
	}
}

// watcher is one live subscription. Its updates channel holds at most the
// newest snapshot; push replaces a pending one instead of blocking.
type watcher struct {
	store      *Store
	collection string
	filter     *port.Filter
	order      port.Order

	updates chan []model.Document
	errs    chan error

	mu        sync.Mutex
	cancelled bool
}

func (w *watcher) Updates() <-chan []model.Document { return w.updates }
func (w *watcher) Errors() <-chan error             { return w.errs }

// Cancel detaches the watcher from the store and closes its channels. Safe
// to call more than once.
func (w *watcher) Cancel() {
	w.mu.Lock()
	if w.cancelled {
		w.mu.Unlock()
		return
	}
	w.cancelled = true
	w.mu.Unlock()

	w.store.removeWatcher(w.collection, w)

	w.mu.Lock()
	close(w.updates)
	close(w.errs)
	w.mu.Unlock()
}

func (w *watcher) push(snapshot []model.Document) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancelled {
		return
	}
	for {
		select {
		case w.updates <- snapshot:
			return
		default:
		}
		select {
		case <-w.updates:
		default:
		}
	}
}
