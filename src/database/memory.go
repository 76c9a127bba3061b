package database

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// MemoryStore keeps every collection in process. It backs the "memory" store
// driver and the tests.
type MemoryStore struct {
	mu    sync.Mutex
	docs  map[string]map[string]bson.M
	order map[string][]string
	subs  map[string]map[chan Snapshot]struct{}

	now   func() time.Time
	newID func() string

	// FailWrites, when set, is consulted before every Create and Update.
	FailWrites func(collection string, doc bson.M) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:  make(map[string]map[string]bson.M),
		order: make(map[string][]string),
		subs:  make(map[string]map[chan Snapshot]struct{}),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// SetClock replaces the createdAt source.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *MemoryStore) Subscribe(ctx context.Context, collection string) (<-chan Snapshot, error) {
	ch := make(chan Snapshot, 1)

	m.mu.Lock()
	if m.subs[collection] == nil {
		m.subs[collection] = make(map[chan Snapshot]struct{})
	}
	m.subs[collection][ch] = struct{}{}
	ch <- m.snapshotLocked(collection)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs[collection], ch)
		close(ch)
		m.mu.Unlock()
	}()
	return ch, nil
}

func (m *MemoryStore) Create(_ context.Context, collection string, doc bson.M) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites != nil {
		if err := m.FailWrites(collection, doc); err != nil {
			return "", err
		}
	}
	id := m.newID()
	d := cloneDoc(doc)
	d["_id"] = id
	d["createdAt"] = m.now()
	m.putLocked(collection, id, d)
	m.broadcastLocked(collection)
	return id, nil
}

func (m *MemoryStore) Update(_ context.Context, collection, id string, fields bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites != nil {
		if err := m.FailWrites(collection, fields); err != nil {
			return err
		}
	}
	cur, ok := m.docs[collection][id]
	if !ok {
		return ErrNotFound
	}
	d := cloneDoc(cur)
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		d[k] = v
	}
	m.docs[collection][id] = d
	m.broadcastLocked(collection)
	return nil
}

func (m *MemoryStore) Set(_ context.Context, collection, id string, doc bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := cloneDoc(doc)
	d["_id"] = id
	m.putLocked(collection, id, d)
	m.broadcastLocked(collection)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, collection, id string) (bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.docs[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(d), nil
}

func (m *MemoryStore) putLocked(collection, id string, d bson.M) {
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]bson.M)
	}
	if _, exists := m.docs[collection][id]; !exists {
		m.order[collection] = append(m.order[collection], id)
	}
	m.docs[collection][id] = d
}

func (m *MemoryStore) snapshotLocked(collection string) Snapshot {
	ids := m.order[collection]
	docs := make([]bson.M, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, cloneDoc(m.docs[collection][id]))
	}
	return Snapshot{Collection: collection, Docs: docs}
}

func (m *MemoryStore) broadcastLocked(collection string) {
	if len(m.subs[collection]) == 0 {
		return
	}
	snap := m.snapshotLocked(collection)
	for ch := range m.subs[collection] {
		publish(ch, snap)
	}
}

func cloneDoc(d bson.M) bson.M {
	out := make(bson.M, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
