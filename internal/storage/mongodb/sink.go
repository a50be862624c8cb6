// Package mongodb implements the MongoDB sink: connection from a URI,
// optional collection drop and 2dsphere index creation, and the unordered
// bulk-insert primitive the batching loader drives.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"geoload/pkg/document"
)

// Sink is a handle on one target collection.
type Sink struct {
	client *mongo.Client
	coll   *mongo.Collection
	log    *zap.SugaredLogger
}

// Connect dials uri, verifies the server is reachable, and binds to
// db.collection. Call Close when the run finishes.
func Connect(ctx context.Context, uri, db, collection string, log *zap.SugaredLogger) (*Sink, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}
	return &Sink{
		client: client,
		coll:   client.Database(db).Collection(collection),
		log:    log,
	}, nil
}

// Close releases the underlying client.
func (s *Sink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Drop removes the target collection. Dropping a collection that does not
// exist is a no-op, so a fresh database is safe.
func (s *Sink) Drop(ctx context.Context) error {
	s.log.Infow("dropping collection", "namespace", s.coll.Database().Name()+"."+s.coll.Name())
	if err := s.coll.Drop(ctx); err != nil {
		return fmt.Errorf("mongodb: drop %s: %w", s.coll.Name(), err)
	}
	return nil
}

// EnsureGeoIndex creates a 2dsphere index on field. Creation is idempotent
// when an index with the same definition already exists. The index requires
// GeoJSON geometry in WGS84 (EPSG:4326) to be queryable.
func (s *Sink) EnsureGeoIndex(ctx context.Context, field string) error {
	s.log.Infow("ensuring 2dsphere index", "field", field)
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: field, Value: "2dsphere"}},
	})
	if err != nil {
		return fmt.Errorf("mongodb: create 2dsphere index on %q: %w", field, err)
	}
	return nil
}

// BulkInsert writes one batch with unordered semantics: a document-level
// failure does not abort the remaining documents of the same batch, but any
// bulk-write error is still returned (and therefore fatal for the run) after
// its per-document detail is logged. The returned count is the number of
// documents the server reports as inserted.
func (s *Sink) BulkInsert(ctx context.Context, docs []document.Doc) (int64, error) {
	models := make([]mongo.WriteModel, len(docs))
	for i, d := range docs {
		models[i] = mongo.NewInsertOneModel().SetDocument(d)
	}

	res, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	var inserted int64
	if res != nil {
		inserted = res.InsertedCount
	}
	if err != nil {
		s.logBulkErr(err)
		return inserted, fmt.Errorf("mongodb: bulk write: %w", err)
	}
	return inserted, nil
}

// logBulkErr surfaces per-document failures from an unordered batch before
// the error aborts the run.
func (s *Sink) logBulkErr(err error) {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return
	}
	for _, we := range bwe.WriteErrors {
		s.log.Errorw("document rejected",
			"index", we.Index,
			"code", we.Code,
			"message", we.Message,
		)
	}
	if bwe.WriteConcernError != nil {
		s.log.Errorw("write concern error",
			"code", bwe.WriteConcernError.Code,
			"message", bwe.WriteConcernError.Message,
		)
	}
}
