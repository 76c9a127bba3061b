package database

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// Collection names.
const (
	ResultsCollection  = "results"
	StudentsCollection = "students"
	ProfilesCollection = "profiles"
	SettingsCollection = "settings"
)

// ErrNotFound is returned by Get and Update when no document has the id.
var ErrNotFound = errors.New("document not found")

// Snapshot is the full document set of a collection at one point in time.
// Every document carries its string id under "_id".
type Snapshot struct {
	Collection string
	Docs       []bson.M
}

// Store is the document database the portal persists to.
//
// Subscribe pushes the whole collection once immediately and again after every
// change. Slow readers only ever see the latest snapshot. The channel is closed
// when ctx is done.
type Store interface {
	Subscribe(ctx context.Context, collection string) (<-chan Snapshot, error)
	// Create inserts doc under a new id and stamps createdAt.
	Create(ctx context.Context, collection string, doc bson.M) (string, error)
	// Update merges fields into the document id.
	Update(ctx context.Context, collection, id string, fields bson.M) error
	// Set overwrites (or creates) the document id.
	Set(ctx context.Context, collection, id string, doc bson.M) error
	Get(ctx context.Context, collection, id string) (bson.M, error)
}

// publish hands snap to ch, replacing a snapshot the reader has not taken yet.
// ch must have a buffer and a single sender.
func publish(ch chan Snapshot, snap Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
