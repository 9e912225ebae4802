package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pgfeedback/internal/feedback/domain/model"
	"pgfeedback/internal/feedback/domain/port"
	"pgfeedback/internal/shared/errors"
	"pgfeedback/internal/shared/logger"
)

func testLogger() logger.Logger {
	return logger.NewLoggerWithConfig("error", "json")
}

// fakeStore is an in-memory DocumentStore for usecase tests. Individual
// operations can be forced to fail via the fail* fields.
type fakeStore struct {
	mu          sync.Mutex
	collections map[string]map[string]model.Document
	nextID      int

	failGet    error
	failSet    error
	failAdd    error
	failDelete error
	failWatch  error

	watchers []*fakeSnapshots
}

func newFakeStore() *fakeStore {
	return &fakeStore{collections: make(map[string]map[string]model.Document)}
}

func (s *fakeStore) docs(collection string) map[string]model.Document {
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]model.Document)
	}
	return s.collections[collection]
}

func (s *fakeStore) Query(ctx context.Context, collection string, filter *port.Filter, order port.Order) ([]model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(collection, filter, order), nil
}

func (s *fakeStore) snapshotLocked(collection string, filter *port.Filter, order port.Order) []model.Document {
	var out []model.Document
	for _, d := range s.docs(collection) {
		if filter != nil && d.Data[filter.Field] != filter.Value {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		ti := out[i].Data["timestamp"]
		tj := out[j].Data["timestamp"]
		si := fmt.Sprint(ti)
		sj := fmt.Sprint(tj)
		if si != sj {
			if order.Descending {
				return si > sj
			}
			return si < sj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *fakeStore) Watch(ctx context.Context, collection string, filter *port.Filter, order port.Order) (port.Snapshots, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWatch != nil {
		return nil, s.failWatch
	}
	w := &fakeSnapshots{
		updates: make(chan []model.Document, 16),
		errs:    make(chan error, 1),
	}
	w.updates <- s.snapshotLocked(collection, filter, order)
	s.watchers = append(s.watchers, w)
	return w, nil
}

func (s *fakeStore) Get(ctx context.Context, collection, key string) (model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return model.Document{}, s.failGet
	}
	d, ok := s.docs(collection)[key]
	if !ok {
		return model.Document{}, errors.ErrDocumentNotFound
	}
	return d, nil
}

func (s *fakeStore) Set(ctx context.Context, collection, key string, doc model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet != nil {
		return s.failSet
	}
	doc.ID = key
	s.docs(collection)[key] = doc
	return nil
}

func (s *fakeStore) Add(ctx context.Context, collection string, doc model.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAdd != nil {
		return "", s.failAdd
	}
	s.nextID++
	id := fmt.Sprintf("doc-%03d", s.nextID)
	doc.ID = id
	s.docs(collection)[id] = doc
	return id, nil
}

func (s *fakeStore) Delete(ctx context.Context, collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete != nil {
		return s.failDelete
	}
	delete(s.docs(collection), key)
	return nil
}

type fakeSnapshots struct {
	updates    chan []model.Document
	errs       chan error
	cancelOnce sync.Once
	cancelled  bool
}

func (w *fakeSnapshots) Updates() <-chan []model.Document { return w.updates }
func (w *fakeSnapshots) Errors() <-chan error             { return w.errs }

func (w *fakeSnapshots) Cancel() {
	w.cancelOnce.Do(func() {
		w.cancelled = true
	})
}

func (w *fakeSnapshots) emit(docs []model.Document) { w.updates <- docs }
func (w *fakeSnapshots) fail(err error)             { w.errs <- err }
