package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (mdb *MongodbRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	col := mdb.collection(BookingsColName)

	booking.BeforeCreate(time.Now())
	if err := Validate.Struct(booking); err != nil {
		return nil, fmt.Errorf("invalid booking: %w", err)
	}

	if _, err := col.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateKeyError(err)
		}
		return nil, fmt.Errorf("error inserting booking: %w", err)
	}
	return booking, nil
}

// duplicateKeyError maps an E11000 error to the index that rejected the write.
func duplicateKeyError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, serialIndexName), strings.Contains(msg, "serialNumber"):
		return fmt.Errorf("%w: %v", ErrDuplicateSerial, err)
	case strings.Contains(msg, paymentIndexName), strings.Contains(msg, "paymentId"):
		return fmt.Errorf("%w: %v", ErrDuplicatePayment, err)
	}
	return fmt.Errorf("duplicate key on booking insert: %w", err)
}

func (mdb *MongodbRepo) findOneBooking(ctx context.Context, filter bson.M) (*Booking, error) {
	var booking Booking
	err := mdb.collection(BookingsColName).FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding booking: %w", err)
	}
	return &booking, nil
}

func (mdb *MongodbRepo) GetBookingBySerial(ctx context.Context, serial string) (*Booking, error) {
	return mdb.findOneBooking(ctx, bson.M{"serialNumber": serial})
}

func (mdb *MongodbRepo) GetBookingByPaymentID(ctx context.Context, paymentID string) (*Booking, error) {
	return mdb.findOneBooking(ctx, bson.M{"paymentId": paymentID})
}

func (mdb *MongodbRepo) ListBookings(ctx context.Context) ([]*Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := mdb.collection(BookingsColName).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*Booking{}
	for cursor.Next(ctx) {
		var b Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking: %w", err)
		}
		bookings = append(bookings, &b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, nil
}

func (mdb *MongodbRepo) MarkBookingUsed(ctx context.Context, serial string, at time.Time) (*Booking, error) {
	col := mdb.collection(BookingsColName)

	filter := bson.M{
		"serialNumber": serial,
		"usedAt":       bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{"usedAt": at.UTC().Truncate(time.Millisecond)}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking Booking
	err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error marking booking used: %w", err)
	}

	existing, err := mdb.GetBookingBySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	return existing, ErrAlreadyUsed
}

func (mdb *MongodbRepo) DeleteAllBookings(ctx context.Context) (int64, error) {
	res, err := mdb.collection(BookingsColName).DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("error deleting bookings: %w", err)
	}
	return res.DeletedCount, nil
}
