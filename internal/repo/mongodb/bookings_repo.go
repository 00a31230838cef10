package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/karigarhub/internal/domain/booking"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookingsRepo struct {
	coll *mongo.Collection
}

func NewBookingsRepo(database *mongo.Database) *BookingsRepo {
	return &BookingsRepo{coll: database.Collection("bookings")}
}

func (r *BookingsRepo) Create(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	now := time.Now().UTC()

	b.ID = primitive.NewObjectID().Hex()
	b.Status = booking.StatusPending
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, b)

	if err != nil {
		// unique (postingId, providerId) index
		if mongo.IsDuplicateKeyError(err) {
			return booking.Booking{}, booking.ErrAlreadyBooked
		}

		return booking.Booking{}, err
	}

	return b, nil
}

func (r *BookingsRepo) GetByID(ctx context.Context, id string) (booking.Booking, error) {
	var b booking.Booking

	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&b)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return booking.Booking{}, booking.ErrNotFound
		}

		return booking.Booking{}, err
	}

	return b, nil
}

// UpdateStatus performs the transition guard atomically: the filter
// pins the expected current status, so a concurrent writer loses.
func (r *BookingsRepo) UpdateStatus(ctx context.Context, id, from, to string) (booking.Booking, error) {
	var b booking.Booking

	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{
			"status":    to,
			"updatedAt": time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return booking.Booking{}, booking.ErrInvalidTransition
		}

		return booking.Booking{}, err
	}

	return b, nil
}

// ListForUser returns bookings where the caller is either side.
func (r *BookingsRepo) ListForUser(ctx context.Context, userID string) ([]booking.Booking, error) {
	cur, err := r.coll.Find(ctx, bson.M{
		"$or": bson.A{
			bson.M{"clientId": userID},
			bson.M{"providerId": userID},
		},
	}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))

	if err != nil {
		return nil, err
	}

	defer cur.Close(ctx)

	bookings := make([]booking.Booking, 0)

	err = cur.All(ctx, &bookings)

	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *BookingsRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{
		"$or": bson.A{
			bson.M{"clientId": userID},
			bson.M{"providerId": userID},
		},
	})

	return err
}
