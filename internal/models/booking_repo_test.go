package models

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const testDB = "gatepass"

func bookingDoc(serial, payment string, ts time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: "6f1c6d1e-0000-4000-8000-000000000001"},
		{Key: "serialNumber", Value: serial},
		{Key: "paymentId", Value: payment},
		{Key: "fullName", Value: "Asha Rao"},
		{Key: "email", Value: "asha@example.com"},
		{Key: "phone", Value: "9999999999"},
		{Key: "ticketType", Value: DayPass.Label},
		{Key: "quantity", Value: 2},
		{Key: "totalAmount", Value: 398.0},
		{Key: "timestamp", Value: ts},
	}
}

func TestMongoCreateBooking(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("inserts", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		b, err := repo.CreateBooking(context.Background(), newBooking("DP-0001", "pay_1"))
		require.NoError(mt, err)
		assert.NotEmpty(mt, b.ID)
		assert.False(mt, b.Timestamp.IsZero())
	})

	mt.Run("duplicate serial", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: gatepass.bookings index: uniq_serial_number dup key: { serialNumber: \"DP-0001\" }",
		}))

		_, err := repo.CreateBooking(context.Background(), newBooking("DP-0001", "pay_2"))
		assert.ErrorIs(mt, err, ErrDuplicateSerial)
	})

	mt.Run("duplicate payment", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: gatepass.bookings index: uniq_payment_id dup key: { paymentId: \"pay_1\" }",
		}))

		_, err := repo.CreateBooking(context.Background(), newBooking("DP-0002", "pay_1"))
		assert.ErrorIs(mt, err, ErrDuplicatePayment)
	})

	mt.Run("invalid booking never reaches the server", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, testDB)
		b := newBooking("DP-0003", "pay_3")
		b.Quantity = 0

		_, err := repo.CreateBooking(context.Background(), b)
		assert.Error(mt, err)
	})
}

func TestMongoGetBooking(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := testDB + "." + BookingsColName
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mt.Run("found", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bookingDoc("DP-0001", "pay_1", ts)))

		b, err := repo.GetBookingBySerial(context.Background(), "DP-0001")
		require.NoError(mt, err)
		assert.Equal(mt, "pay_1", b.PaymentID)
		assert.Equal(mt, 2, b.Quantity)
		assert.True(mt, ts.Equal(b.Timestamp))
		assert.Nil(mt, b.UsedAt)
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetBookingByPaymentID(context.Background(), "pay_404")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, testDB)
		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
			bookingDoc("DP-0002", "pay_2", ts.Add(time.Minute)))
		last := mtest.CreateCursorResponse(0, ns, mtest.NextBatch,
			bookingDoc("DP-0001", "pay_1", ts))
		mt.AddMockResponses(first, last)

		all, err := repo.ListBookings(context.Background())
		require.NoError(mt, err)
		require.Len(mt, all, 2)
		assert.Equal(mt, "DP-0002", all[0].SerialNumber)
	})
}

func TestMongoMarkBookingUsed(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := testDB + "." + BookingsColName
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	usedAt := ts.Add(2 * time.Hour)

	mt.Run("first scan", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, testDB)
		doc := append(bookingDoc("DP-0001", "pay_1", ts), bson.E{Key: "usedAt", Value: usedAt})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc}))

		b, err := repo.MarkBookingUsed(context.Background(), "DP-0001", usedAt)
		require.NoError(mt, err)
		require.NotNil(mt, b.UsedAt)
		assert.True(mt, usedAt.Equal(*b.UsedAt))
	})

	mt.Run("second scan", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, testDB)
		doc := append(bookingDoc("DP-0001", "pay_1", ts), bson.E{Key: "usedAt", Value: usedAt})
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, doc),
		)

		b, err := repo.MarkBookingUsed(context.Background(), "DP-0001", usedAt.Add(time.Hour))
		assert.ErrorIs(mt, err, ErrAlreadyUsed)
		require.NotNil(mt, b)
		assert.True(mt, usedAt.Equal(*b.UsedAt))
	})
}

func TestMongoSequenceAndPricing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := testDB + "." + PricingColName

	mt.Run("next sequence", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: DayPass.Key},
			{Key: "value", Value: int64(7)},
		}}))

		v, err := repo.NextSequence(context.Background(), DayPass.Key)
		require.NoError(mt, err)
		assert.Equal(mt, int64(7), v)
	})

	mt.Run("pricing absent", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetPricing(context.Background())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("pricing upsert", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: "current"},
			{Key: "dayPass", Value: 250.0},
			{Key: "seasonPass", Value: 800.0},
		}}))

		p, err := repo.UpsertPricing(context.Background(), 250, 800)
		require.NoError(mt, err)
		assert.Equal(mt, 250.0, p.DayPass)
		assert.Equal(mt, 800.0, p.SeasonPass)
	})
}
