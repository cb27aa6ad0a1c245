package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const SequencesColName = "sequences"

// SequenceRepo hands out strictly increasing numbers per named counter.
type SequenceRepo interface {
	NextSequence(ctx context.Context, name string) (int64, error)
}

// Store is everything the booking flow needs from persistence.
type Store interface {
	BookingRepo
	PricingRepo
	SequenceRepo
}

func (mdb *MongodbRepo) NextSequence(ctx context.Context, name string) (int64, error) {
	col := mdb.collection(SequencesColName)

	update := bson.M{"$inc": bson.M{"value": int64(1)}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Value int64 `bson:"value"`
	}
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": name}, update, opts).Decode(&counter); err != nil {
		return 0, fmt.Errorf("error advancing sequence %s: %w", name, err)
	}
	return counter.Value, nil
}
