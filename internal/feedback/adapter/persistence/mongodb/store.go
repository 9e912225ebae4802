// Package mongodb implements the DocumentStore port on MongoDB. Live
// watches ride the server's change streams, so mutations from any client
// node reach every subscriber.
package mongodb

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pgfeedback/internal/feedback/domain/model"
	"pgfeedback/internal/feedback/domain/port"
	"pgfeedback/internal/shared/errors"
	"pgfeedback/internal/shared/logger"
)

// Store implements port.DocumentStore on a MongoDB database. One Mongo
// collection backs each logical collection; the document key is stored in
// the _id field.
type Store struct {
	db     *mongo.Database
	logger logger.Logger
}

// NewStore creates a store over the given database.
func NewStore(db *mongo.Database, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithComponent("mongodb_store"),
	}
}

func (s *Store) col(collection string) *mongo.Collection {
	return s.db.Collection(collection)
}

func filterToBSON(filter *port.Filter) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return bson.M{filter.Field: filter.Value}
}

func orderToSort(order port.Order) bson.D {
	direction := 1
	if order.Descending {
		direction = -1
	}
	// Ties on the order field resolve by _id ascending so snapshot order
	// stays stable across emissions.
	return bson.D{{Key: order.Field, Value: direction}, {Key: "_id", Value: 1}}
}

// Query returns the current contents of a collection, filtered and ordered.
func (s *Store) Query(ctx context.Context, collection string, filter *port.Filter, order port.Order) ([]model.Document, error) {
	findOpts := options.Find().SetSort(orderToSort(order))

	cursor, err := s.col(collection).Find(ctx, filterToBSON(filter), findOpts)
	if err != nil {
		s.logger.Errorf("failed to query collection %s: %v", collection, err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []model.Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			s.logger.Warnf("failed to decode document in %s: %v", collection, err)
			continue
		}
		docs = append(docs, fromBSON(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Get point-reads a document by key.
func (s *Store) Get(ctx context.Context, collection, key string) (model.Document, error) {
	var raw bson.M
	err := s.col(collection).FindOne(ctx, bson.M{"_id": key}).Decode(&raw)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return model.Document{}, errors.ErrDocumentNotFound
		}
		return model.Document{}, err
	}
	return fromBSON(raw), nil
}

// Set upserts a document at the given key, replacing it entirely.
func (s *Store) Set(ctx context.Context, collection, key string, doc model.Document) error {
	payload := toBSON(key, doc)
	opts := options.Replace().SetUpsert(true)

	_, err := s.col(collection).ReplaceOne(ctx, bson.M{"_id": key}, payload, opts)
	if err != nil {
		s.logger.Errorf("failed to set document %s/%s: %v", collection, key, err)
		return err
	}
	return nil
}

// Add inserts a document under a fresh uuid key and returns the key.
func (s *Store) Add(ctx context.Context, collection string, doc model.Document) (string, error) {
	key := uuid.New().String()

	_, err := s.col(collection).InsertOne(ctx, toBSON(key, doc))
	if err != nil {
		s.logger.Errorf("failed to add document to %s: %v", collection, err)
		return "", err
	}
	return key, nil
}

// Delete removes a document by key. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, collection, key string) error {
	_, err := s.col(collection).DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		s.logger.Errorf("failed to delete document %s/%s: %v", collection, key, err)
		return err
	}
	return nil
}

// Watch opens a change-stream-backed subscription. Every mutation of the
// collection triggers a requery and a fresh full snapshot; rapid mutations
// coalesce into fewer snapshots for slow consumers.
func (s *Store) Watch(ctx context.Context, collection string, filter *port.Filter, order port.Order) (port.Snapshots, error) {
	streamCtx, cancel := context.WithCancel(ctx)

	stream, err := s.col(collection).Watch(streamCtx, mongo.Pipeline{},
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		cancel()
		s.logger.Errorf("failed to open change stream on %s: %v", collection, err)
		return nil, err
	}

	w := &watcher{
		updates: make(chan []model.Document, 1),
		errs:    make(chan error, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go s.run(streamCtx, w, stream, collection, filter, order)
	return w, nil
}

func (s *Store) run(ctx context.Context, w *watcher, stream *mongo.ChangeStream, collection string, filter *port.Filter, order port.Order) {
	defer func() {
		stream.Close(context.Background())
		close(w.updates)
		close(w.errs)
		close(w.done)
	}()

	// Initial snapshot before any change arrives.
	if !s.requery(ctx, w, collection, filter, order) {
		return
	}

	for stream.Next(ctx) {
		if !s.requery(ctx, w, collection, filter, order) {
			return
		}
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		s.logger.Errorf("change stream on %s failed: %v", collection, err)
		w.pushError(errors.NewSubscriptionError("change stream failed", err))
	}
}

func (s *Store) requery(ctx context.Context, w *watcher, collection string, filter *port.Filter, order port.Order) bool {
	docs, err := s.Query(ctx, collection, filter, order)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		w.pushError(errors.NewSubscriptionError("failed to requery after change", err))
		return false
	}
	w.push(docs)
	return true
}

type watcher struct {
	updates chan []model.Document
	errs    chan error

	cancel     context.CancelFunc
	cancelOnce sync.Once
	done       chan struct{}
}

func (w *watcher) Updates() <-chan []model.Document { return w.updates }
func (w *watcher) Errors() <-chan error             { return w.errs }

func (w *watcher) Cancel() {
	w.cancelOnce.Do(func() {
		w.cancel()
		<-w.done
	})
}

// push conflates pending snapshots so a slow consumer always sees the
// newest state.
func (w *watcher) push(docs []model.Document) {
	for {
		select {
		case w.updates <- docs:
			return
		default:
		}
		select {
		case <-w.updates:
		default:
		}
	}
}

func (w *watcher) pushError(err error) {
	select {
	case w.errs <- err:
	default:
	}
}

// toBSON flattens a document for storage. The key goes to _id.
func toBSON(key string, doc model.Document) bson.M {
	payload := bson.M{"_id": key}
	for k, v := range doc.Data {
		payload[k] = v
	}
	return payload
}

// fromBSON rebuilds a port document, normalizing the driver's native types
// back to the ones the domain decodes.
func fromBSON(raw bson.M) model.Document {
	doc := model.Document{Data: make(map[string]interface{}, len(raw))}
	for k, v := range raw {
		if k == "_id" {
			if id, ok := v.(string); ok {
				doc.ID = id
			}
			continue
		}
		doc.Data[k] = normalizeValue(v)
	}
	return doc
}

func normalizeValue(v interface{}) interface{} {
	switch value := v.(type) {
	case primitive.DateTime:
		return value.Time().UTC()
	case primitive.A:
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = normalizeValue(item)
		}
		return out
	case time.Time:
		return value.UTC()
	default:
		return v
	}
}
