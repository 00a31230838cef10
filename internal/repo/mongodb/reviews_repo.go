package mongodb

import (
	"context"
	"time"

	"github.com/geocoder89/karigarhub/internal/domain/review"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReviewsRepo struct {
	coll *mongo.Collection
}

func NewReviewsRepo(database *mongo.Database) *ReviewsRepo {
	return &ReviewsRepo{coll: database.Collection("reviews")}
}

func (r *ReviewsRepo) Create(ctx context.Context, rev review.Review) (review.Review, error) {
	rev.ID = primitive.NewObjectID().Hex()
	rev.CreatedAt = time.Now().UTC()

	_, err := r.coll.InsertOne(ctx, rev)

	if err != nil {
		// unique bookingId index
		if mongo.IsDuplicateKeyError(err) {
			return review.Review{}, review.ErrAlreadyReviewed
		}

		return review.Review{}, err
	}

	return rev, nil
}

func (r *ReviewsRepo) ListForProvider(ctx context.Context, providerID string) ([]review.Review, error) {
	cur, err := r.coll.Find(ctx, bson.M{"providerId": providerID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))

	if err != nil {
		return nil, err
	}

	defer cur.Close(ctx)

	reviews := make([]review.Review, 0)

	err = cur.All(ctx, &reviews)

	if err != nil {
		return nil, err
	}

	return reviews, nil
}

func (r *ReviewsRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{
		"$or": bson.A{
			bson.M{"authorId": userID},
			bson.M{"providerId": userID},
		},
	})

	return err
}
