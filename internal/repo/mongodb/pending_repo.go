package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/karigarhub/internal/domain/pendingreg"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type PendingRepo struct {
	coll *mongo.Collection
}

func NewPendingRepo(database *mongo.Database) *PendingRepo {
	return &PendingRepo{coll: database.Collection("pending_registrations")}
}

// Replace removes any prior pending registration for the email and
// inserts a fresh one, so at most one code is live per email. Two
// concurrent callers race on the unique email index; the loser gets
// the duplicate-key error back.
func (r *PendingRepo) Replace(ctx context.Context, email, code string, expiresAt time.Time) (pendingreg.PendingRegistration, error) {
	_, err := r.coll.DeleteOne(ctx, bson.M{"email": email})

	if err != nil {
		return pendingreg.PendingRegistration{}, err
	}

	p := pendingreg.PendingRegistration{
		ID:        primitive.NewObjectID().Hex(),
		Email:     email,
		Code:      code,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}

	_, err = r.coll.InsertOne(ctx, p)

	if err != nil {
		return pendingreg.PendingRegistration{}, err
	}

	return p, nil
}

func (r *PendingRepo) GetByID(ctx context.Context, id string) (pendingreg.PendingRegistration, error) {
	var p pendingreg.PendingRegistration

	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return pendingreg.PendingRegistration{}, pendingreg.ErrNotFound
		}

		return pendingreg.PendingRegistration{}, err
	}

	return p, nil
}

func (r *PendingRepo) MarkVerified(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"verified": true},
	})

	if err != nil {
		return err
	}

	if res.MatchedCount == 0 {
		return pendingreg.ErrNotFound
	}

	return nil
}

func (r *PendingRepo) Delete(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})

	return err
}
