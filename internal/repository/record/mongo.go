package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kailas-cloud/surveyd/internal/db"
	"github.com/kailas-cloud/surveyd/internal/domain/record"
	"github.com/kailas-cloud/surveyd/internal/domain/stats"
)

// collection is the consumer interface over *mongo.Collection (ISP).
type collection interface {
	InsertOne(ctx context.Context, document interface{},
		opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter, update interface{},
		opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	FindOne(ctx context.Context, filter interface{},
		opts ...*options.FindOneOptions) *mongo.SingleResult
}

// MongoRepo stores records in a MongoDB collection.
type MongoRepo struct {
	coll collection
	now  func() time.Time
}

// NewMongo creates a record repository over the given collection.
func NewMongo(coll collection) *MongoRepo {
	return &MongoRepo{coll: coll, now: time.Now}
}

// Insert creates a record without statistics and returns its ObjectID in hex.
func (r *MongoRepo) Insert(ctx context.Context, d record.Draft) (string, error) {
	doc := newDocument(d, r.now().UTC())
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", persistenceErr(db.OpInsertOne, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", persistenceErr(db.OpInsertOne,
			fmt.Errorf("unexpected inserted id type %T", res.InsertedID))
	}
	return oid.Hex(), nil
}

// UpdateStatistics merges the statistics bundle into an existing record.
func (r *MongoRepo) UpdateStatistics(ctx context.Context, id string, b stats.Bundle) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return notFoundErr(id)
	}

	update := bson.M{"$set": bson.M{
		"mean":      b.Mean,
		"median":    b.Median,
		"stdDev":    b.StdDev,
		"updatedAt": r.now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return persistenceErr(db.OpUpdateOne, err)
	}
	if res.MatchedCount == 0 {
		return notFoundErr(id)
	}
	return nil
}

// Find returns a record by id.
func (r *MongoRepo) Find(ctx context.Context, id string) (record.Stored, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return record.Stored{}, notFoundErr(id)
	}

	var doc document
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return record.Stored{}, notFoundErr(id)
		}
		return record.Stored{}, persistenceErr(db.OpFindOne, err)
	}
	return doc.toStored(id), nil
}
