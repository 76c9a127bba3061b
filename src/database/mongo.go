package database

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore is the Store backed by MongoDB. Subscriptions use change streams
// and fall back to polling when the server does not support them.
type MongoStore struct {
	client       *mongo.Client
	db           *mongo.Database
	pollInterval time.Duration
	log          log.Logger
}

// ConnectMongo connects to uri and pings the primary.
func ConnectMongo(ctx context.Context, uri, dbName string, pollInterval time.Duration, logger log.Logger) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("MONGO_URI is not set")
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}

	cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}
	level.Info(logger).Log("msg", "mongo connected", "db", dbName)

	return &MongoStore{
		client:       client,
		db:           client.Database(dbName),
		pollInterval: pollInterval,
		log:          logger,
	}, nil
}

// EnsureIndexes creates the lookup index on the result identity key. It is not
// unique: uniqueness is kept by the reconciler.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(ResultsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "studentId", Value: 1},
			{Key: "subject", Value: 1},
			{Key: "term", Value: 1},
			{Key: "year", Value: 1},
		},
		Options: options.Index().SetName("result_identity"),
	})
	if err != nil {
		return errors.Wrap(err, "create result index")
	}
	_, err = s.db.Collection(StudentsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "level", Value: 1}, {Key: "className", Value: 1}},
		Options: options.Index().SetName("student_class"),
	})
	return errors.Wrap(err, "create student index")
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// changeStream is the part of *mongo.ChangeStream a subscription reads.
type changeStream interface {
	Next(ctx context.Context) bool
	Err() error
	Close(ctx context.Context) error
}

type loadFunc func(ctx context.Context) (Snapshot, error)

func (s *MongoStore) Subscribe(ctx context.Context, collection string) (<-chan Snapshot, error) {
	coll := s.db.Collection(collection)
	open := func(ctx context.Context) (changeStream, error) {
		stream, err := coll.Watch(ctx, mongo.Pipeline{})
		if err != nil {
			return nil, err
		}
		return stream, nil
	}
	load := func(ctx context.Context) (Snapshot, error) {
		return s.load(ctx, coll)
	}
	return s.subscribe(ctx, collection, open, load)
}

// subscribe opens the change stream before the first load, so a write landing
// in between still produces a change event.
func (s *MongoStore) subscribe(ctx context.Context, collection string, open func(context.Context) (changeStream, error), load loadFunc) (<-chan Snapshot, error) {
	stream, err := open(ctx)
	if err != nil {
		level.Warn(s.log).Log("msg", "change stream unavailable, polling", "collection", collection, "err", err)
		stream = nil
	}

	first, err := load(ctx)
	if err != nil {
		if stream != nil {
			_ = stream.Close(context.Background())
		}
		return nil, err
	}

	out := make(chan Snapshot, 1)
	out <- first

	go func() {
		defer close(out)
		if stream != nil {
			if err := s.watch(ctx, collection, stream, load, out); err == nil {
				return
			}
		}
		s.poll(ctx, collection, load, out)
	}()
	return out, nil
}

// watch reloads the collection after every change event. It returns nil once
// ctx is done and the stream error otherwise.
func (s *MongoStore) watch(ctx context.Context, collection string, stream changeStream, load loadFunc, out chan Snapshot) error {
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		snap, err := load(ctx)
		if err != nil {
			level.Error(s.log).Log("msg", "reload after change failed", "collection", collection, "err", err)
			continue
		}
		publish(out, snap)
	}
	if ctx.Err() != nil {
		return nil
	}
	err := stream.Err()
	if err == nil {
		err = errors.New("change stream closed")
	}
	level.Warn(s.log).Log("msg", "change stream ended, polling", "collection", collection, "err", err)
	return err
}

func (s *MongoStore) poll(ctx context.Context, collection string, load loadFunc, out chan Snapshot) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, err := load(ctx)
			if err != nil {
				level.Error(s.log).Log("msg", "poll failed", "collection", collection, "err", err)
				continue
			}
			publish(out, snap)
		}
	}
}

func (s *MongoStore) load(ctx context.Context, coll *mongo.Collection) (Snapshot, error) {
	lctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	cursor, err := coll.Find(lctx, bson.M{})
	if err != nil {
		return Snapshot{}, errors.Wrapf(err, "find %s", coll.Name())
	}
	defer cursor.Close(lctx)

	var docs []bson.M
	if err := cursor.All(lctx, &docs); err != nil {
		return Snapshot{}, errors.Wrapf(err, "decode %s", coll.Name())
	}
	for _, d := range docs {
		normalizeID(d)
	}
	return Snapshot{Collection: coll.Name(), Docs: docs}, nil
}

func (s *MongoStore) Create(ctx context.Context, collection string, doc bson.M) (string, error) {
	d := cloneDoc(doc)
	oid := primitive.NewObjectID()
	d["_id"] = oid
	d["createdAt"] = time.Now().UTC()

	if _, err := s.db.Collection(collection).InsertOne(ctx, d); err != nil {
		return "", errors.Wrapf(err, "insert into %s", collection)
	}
	return oid.Hex(), nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields bson.M) error {
	set := cloneDoc(fields)
	delete(set, "_id")

	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": docID(id)}, bson.M{"$set": set})
	if err != nil {
		return errors.Wrapf(err, "update %s/%s", collection, id)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, doc bson.M) error {
	d := cloneDoc(doc)
	d["_id"] = docID(id)

	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": docID(id)}, d, options.Replace().SetUpsert(true))
	return errors.Wrapf(err, "set %s/%s", collection, id)
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (bson.M, error) {
	var d bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": docID(id)}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get %s/%s", collection, id)
	}
	normalizeID(d)
	return d, nil
}

// docID maps an API id to its stored form: ObjectIDs for generated ids, plain
// strings for singleton documents such as profiles and settings.
func docID(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func normalizeID(d bson.M) {
	if oid, ok := d["_id"].(primitive.ObjectID); ok {
		d["_id"] = oid.Hex()
	}
}
