package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/karigarhub/internal/domain/posting"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PostingsRepo struct {
	coll *mongo.Collection
}

func NewPostingsRepo(database *mongo.Database) *PostingsRepo {
	return &PostingsRepo{coll: database.Collection("postings")}
}

func (r *PostingsRepo) Create(ctx context.Context, ownerID string, req posting.CreatePostingRequest) (posting.Posting, error) {
	now := time.Now().UTC()

	p := posting.Posting{
		ID:          primitive.NewObjectID().Hex(),
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		City:        req.City,
		Budget:      req.Budget,
		Status:      posting.StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := r.coll.InsertOne(ctx, p)

	if err != nil {
		return posting.Posting{}, err
	}

	return p, nil
}

func (r *PostingsRepo) GetByID(ctx context.Context, id string) (posting.Posting, error) {
	var p posting.Posting

	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return posting.Posting{}, posting.ErrNotFound
		}

		return posting.Posting{}, err
	}

	return p, nil
}

// ListOpen returns open postings, newest first. Plain limit, no
// cursoring.
func (r *PostingsRepo) ListOpen(ctx context.Context, limit int64) ([]posting.Posting, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	cur, err := r.coll.Find(ctx, bson.M{"status": posting.StatusOpen}, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit))

	if err != nil {
		return nil, err
	}

	defer cur.Close(ctx)

	postings := make([]posting.Posting, 0)

	err = cur.All(ctx, &postings)

	if err != nil {
		return nil, err
	}

	return postings, nil
}

func (r *PostingsRepo) Update(ctx context.Context, id string, req posting.UpdatePostingRequest) (posting.Posting, error) {
	var p posting.Posting

	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"title":       req.Title,
			"description": req.Description,
			"category":    req.Category,
			"city":        req.City,
			"budget":      req.Budget,
			"status":      req.Status,
			"updatedAt":   time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return posting.Posting{}, posting.ErrNotFound
		}

		return posting.Posting{}, err
	}

	return p, nil
}

func (r *PostingsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})

	if err != nil {
		return err
	}

	if res.DeletedCount == 0 {
		return posting.ErrNotFound
	}

	return nil
}

// DeleteByOwner backs the admin user-delete cascade.
func (r *PostingsRepo) DeleteByOwner(ctx context.Context, ownerID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"ownerId": ownerID})

	return err
}
