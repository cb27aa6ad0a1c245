package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (mdb *MongodbRepo) GetPricing(ctx context.Context) (*Pricing, error) {
	var p Pricing
	err := mdb.collection(PricingColName).FindOne(ctx, bson.M{"_id": pricingDocID}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding pricing: %w", err)
	}
	return &p, nil
}

func (mdb *MongodbRepo) UpsertPricing(ctx context.Context, dayPass, seasonPass float64) (*Pricing, error) {
	col := mdb.collection(PricingColName)

	update := bson.M{
		"$set": bson.M{
			"dayPass":    dayPass,
			"seasonPass": seasonPass,
			"updatedAt":  time.Now().UTC().Truncate(time.Millisecond),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result Pricing
	err := col.FindOneAndUpdate(ctx, bson.M{"_id": pricingDocID}, update, opts).Decode(&result)
	if err != nil {
		return nil, fmt.Errorf("error upserting pricing: %w", err)
	}
	return &result, nil
}
