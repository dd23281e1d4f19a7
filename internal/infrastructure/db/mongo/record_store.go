package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/core/ports"
)

const (
	collectionRecords = "records"
	maxCASRetries     = 10
)

// recordDocument holds one whole collection. Version increases on every
// write and guards Mutate against concurrent writers.
type recordDocument struct {
	Kind    string `bson:"_id"`
	Version int64  `bson:"version"`
	Payload string `bson:"payload"`
}

type RecordStore struct {
	col *mongo.Collection
}

func NewRecordStore(db *mongo.Database) *RecordStore {
	return &RecordStore{col: db.Collection(collectionRecords)}
}

func (s *RecordStore) Read(ctx context.Context, kind ports.RecordKind) ([]byte, error) {
	doc, err := s.load(ctx, kind)
	if err != nil {
		return nil, err
	}
	return []byte(doc.Payload), nil
}

func (s *RecordStore) Write(ctx context.Context, kind ports.RecordKind, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": string(kind)},
		bson.M{"$set": bson.M{"payload": string(data)}, "$inc": bson.M{"version": 1}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo store: write %s: %w", kind, err)
	}
	return nil
}

func (s *RecordStore) Mutate(ctx context.Context, kind ports.RecordKind, fn ports.MutateFunc) error {
	for i := 0; i < maxCASRetries; i++ {
		doc, err := s.load(ctx, kind)
		if err != nil {
			return err
		}

		next, err := fn([]byte(doc.Payload))
		if err != nil {
			return err
		}

		swapped, err := s.swap(ctx, doc, next)
		if err != nil {
			return err
		}
		if swapped {
			return nil
		}
	}
	return fmt.Errorf("mongo store: mutate %s: %w", kind, domain.ErrStoreConflict)
}

func (s *RecordStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return s.col.Database().Client().Ping(ctx, nil)
}

// load fetches the document for kind, inserting an empty collection on first
// access.
func (s *RecordStore) load(ctx context.Context, kind ports.RecordKind) (*recordDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc recordDocument
	err := s.col.FindOne(ctx, bson.M{"_id": string(kind)}).Decode(&doc)
	if err == nil {
		return &doc, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("mongo store: read %s: %w", kind, err)
	}

	doc = recordDocument{Kind: string(kind), Payload: "[]"}
	if _, err := s.col.InsertOne(ctx, doc); err != nil && !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("mongo store: init %s: %w", kind, err)
	}
	if err := s.col.FindOne(ctx, bson.M{"_id": string(kind)}).Decode(&doc); err != nil {
		return nil, fmt.Errorf("mongo store: read %s: %w", kind, err)
	}
	return &doc, nil
}

func (s *RecordStore) swap(ctx context.Context, prev *recordDocument, next []byte) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": prev.Kind, "version": prev.Version},
		bson.M{"$set": bson.M{"payload": string(next), "version": prev.Version + 1}},
	)
	if err != nil {
		return false, fmt.Errorf("mongo store: swap %s: %w", prev.Kind, err)
	}
	return res.MatchedCount == 1, nil
}
