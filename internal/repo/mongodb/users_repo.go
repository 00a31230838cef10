package mongodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/karigarhub/internal/domain/identity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UsersRepo struct {
	coll *mongo.Collection
}

func NewUsersRepo(database *mongo.Database) *UsersRepo {
	return &UsersRepo{coll: database.Collection("users")}
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (identity.User, error) {
	return r.getOne(ctx, bson.M{"_id": id})
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (identity.User, error) {
	return r.getOne(ctx, bson.M{"email": email})
}

func (r *UsersRepo) GetByPhone(ctx context.Context, phone string) (identity.User, error) {
	return r.getOne(ctx, bson.M{"phone": phone})
}

// GetByIdentifier matches the login identifier against either contact
// point. The caller cannot tell which one matched.
func (r *UsersRepo) GetByIdentifier(ctx context.Context, identifier string) (identity.User, error) {
	return r.getOne(ctx, bson.M{
		"$or": bson.A{
			bson.M{"email": strings.ToLower(identifier)},
			bson.M{"phone": identifier},
		},
	})
}

func (r *UsersRepo) getOne(ctx context.Context, filter bson.M) (identity.User, error) {
	var u identity.User

	err := r.coll.FindOne(ctx, filter).Decode(&u)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return identity.User{}, identity.ErrNotFound
		}

		return identity.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, u identity.User) (identity.User, error) {
	now := time.Now().UTC()

	if u.ID == "" {
		u.ID = primitive.NewObjectID().Hex()
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, u)

	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if u.Email != "" {
				return identity.User{}, identity.ErrEmailTaken
			}
			return identity.User{}, identity.ErrPhoneTaken
		}

		return identity.User{}, err
	}

	return u, nil
}

// OverwritePhoneRegistration replaces name, role and credential on an
// existing unverified phone record and flips it to verified. Used by
// the phone register path only; the handler has already checked the
// record is unverified.
func (r *UsersRepo) OverwritePhoneRegistration(ctx context.Context, id, name, role, passwordHash string) (identity.User, error) {
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"name":         name,
			"role":         role,
			"passwordHash": passwordHash,
			"verified":     true,
			"updatedAt":    time.Now().UTC(),
		},
	})
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, req identity.UpdateProfileRequest) (identity.User, error) {
	return r.setFields(ctx, id, bson.M{
		"name":      req.Name,
		"bio":       req.Bio,
		"skills":    req.Skills,
		"city":      req.City,
		"dailyRate": req.DailyRate,
	})
}

func (r *UsersRepo) SetAvatar(ctx context.Context, id, url string) (identity.User, error) {
	return r.setFields(ctx, id, bson.M{"avatarUrl": url})
}

func (r *UsersRepo) SetVerification(ctx context.Context, id string, v identity.Verification) (identity.User, error) {
	return r.setFields(ctx, id, bson.M{"verification": v})
}

func (r *UsersRepo) setFields(ctx context.Context, id string, fields bson.M) (identity.User, error) {
	fields["updatedAt"] = time.Now().UTC()

	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
}

func (r *UsersRepo) SetVerificationStatus(ctx context.Context, id, status string) (identity.User, error) {
	now := time.Now().UTC()

	return r.findOneAndUpdate(ctx, bson.M{"_id": id, "verification": bson.M{"$exists": true}}, bson.M{
		"$set": bson.M{
			"verification.status":     status,
			"verification.reviewedAt": now,
			"updatedAt":               now,
		},
	})
}

// Password-reset state machine. The three writes below are the only
// mutations of the reset sub-state.

func (r *UsersRepo) SetResetCode(ctx context.Context, id, code string, expires time.Time) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{
			"resetCode":        code,
			"resetCodeExpires": expires,
			"updatedAt":        time.Now().UTC(),
		},
		"$unset": bson.M{"resetVerified": ""},
	})
}

func (r *UsersRepo) MarkResetVerified(ctx context.Context, id string) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{
			"resetVerified": true,
			"updatedAt":     time.Now().UTC(),
		},
	})
}

// ResetPassword stores the new hash and returns the record to a
// neutral state, ready for a future reset cycle.
func (r *UsersRepo) ResetPassword(ctx context.Context, id, passwordHash string) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{
			"passwordHash": passwordHash,
			"updatedAt":    time.Now().UTC(),
		},
		"$unset": bson.M{
			"resetCode":        "",
			"resetCodeExpires": "",
			"resetVerified":    "",
		},
	})
}

// ClearResetCode compensates a failed email dispatch so no unsendable
// code lingers on the record.
func (r *UsersRepo) ClearResetCode(ctx context.Context, id string) error {
	return r.updateOne(ctx, id, bson.M{
		"$unset": bson.M{
			"resetCode":        "",
			"resetCodeExpires": "",
			"resetVerified":    "",
		},
	})
}

func (r *UsersRepo) List(ctx context.Context, filter identity.ListFilter) ([]identity.User, error) {
	q := bson.M{}

	if filter.Role != nil {
		q["role"] = *filter.Role
	}

	if filter.VerificationStatus != nil {
		q["verification.status"] = *filter.VerificationStatus
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	cur, err := r.coll.Find(ctx, q, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit))

	if err != nil {
		return nil, err
	}

	defer cur.Close(ctx)

	users := make([]identity.User, 0)

	err = cur.All(ctx, &users)

	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})

	if err != nil {
		return err
	}

	if res.DeletedCount == 0 {
		return identity.ErrNotFound
	}

	return nil
}

func (r *UsersRepo) findOneAndUpdate(ctx context.Context, filter, update bson.M) (identity.User, error) {
	var u identity.User

	err := r.coll.FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return identity.User{}, identity.ErrNotFound
		}

		return identity.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) updateOne(ctx context.Context, id string, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)

	if err != nil {
		return err
	}

	if res.MatchedCount == 0 {
		return identity.ErrNotFound
	}

	return nil
}
