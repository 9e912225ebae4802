// Package port declares the interfaces the feedback engine consumes but does
// not implement: the document store and the change-event journal.
package port

import (
	"context"
	"time"

	"pgfeedback/internal/feedback/domain/model"
)

// Filter narrows a query or live subscription to documents whose field equals
// the given value. A nil *Filter means the whole collection.
type Filter struct {
	Field string
	Value interface{}
}

// OwnedBy filters a collection to documents created by the given user.
func OwnedBy(userID string) *Filter {
	return &Filter{Field: "userId", Value: userID}
}

// Order is the ordering applied to queries and snapshots.
type Order struct {
	Field      string
	Descending bool
}

// ByRecency orders documents newest first. Adapters break equal-timestamp
// ties by id ascending so that snapshot order is stable.
func ByRecency() Order {
	return Order{Field: "timestamp", Descending: true}
}

// Snapshots is a live subscription over one collection. Every value on
// Updates is a complete, internally consistent snapshot of the collection,
// never a diff; consumers replace prior state with each emission. A value on
// Errors signals a subscription failure, which is distinct from an empty
// snapshot. Cancel is idempotent; after it returns no further emissions
// occur.
type Snapshots interface {
	Updates() <-chan []model.Document
	Errors() <-chan error
	Cancel()
}

// DocumentStore is the abstract port over the remote document database.
// Documents are flat key/value records; timestamps are opaque, strictly
// orderable instants.
type DocumentStore interface {
	// Query returns the current contents of a collection, ordered.
	Query(ctx context.Context, collection string, filter *Filter, order Order) ([]model.Document, error)
	// Watch opens a live subscription delivering full ordered snapshots on
	// every mutation of the collection by any client. Rapid successive
	// mutations may be coalesced, but the final emission after a quiescent
	// period reflects the true final state.
	Watch(ctx context.Context, collection string, filter *Filter, order Order) (Snapshots, error)
	// Get point-reads a document. Returns errors.ErrDocumentNotFound when
	// the key is absent.
	Get(ctx context.Context, collection, key string) (model.Document, error)
	// Set upserts a document at the given key, replacing it entirely.
	Set(ctx context.Context, collection, key string, doc model.Document) error
	// Add inserts a document with a store-assigned id and returns the id.
	Add(ctx context.Context, collection string, doc model.Document) (string, error)
	// Delete removes a document by key.
	Delete(ctx context.Context, collection, key string) error
}

// EventJournal records the stream of document mutations for the admin
// activity view and replay-after-token reads. Journal failures are reported
// to its own caller and never interfere with snapshot delivery.
type EventJournal interface {
	Append(ctx context.Context, event model.ChangeEvent) error
	// Since returns events for a collection recorded after the resume token;
	// an empty token reads from the start of the retained window.
	Since(ctx context.Context, collection string, token string) ([]model.ChangeEvent, error)
	// Trim discards events older than the retention period.
	Trim(ctx context.Context, retention time.Duration) error
}
