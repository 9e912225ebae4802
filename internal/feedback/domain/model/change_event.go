package model

import "time"

// ChangeKind identifies what kind of mutation a change event describes.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// ChangeEvent records a single document mutation in one of the feedback
// collections. Events feed the change journal and the admin activity view;
// observers of live snapshots never see individual events, only full
// snapshots.
type ChangeEvent struct {
	Kind       ChangeKind             `json:"kind"`
	Collection string                 `json:"collection"`
	Key        string                 `json:"key"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	// ResumeToken is assigned by the journal when the event is recorded and
	// lets a reader continue from where it left off.
	ResumeToken string `json:"resumeToken,omitempty"`
}
