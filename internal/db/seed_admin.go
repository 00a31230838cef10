package db

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/karigarhub/internal/config"
	"github.com/geocoder89/karigarhub/internal/domain/identity"
	"github.com/geocoder89/karigarhub/internal/security"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func EnsureAdminUser(ctx context.Context, database *mongo.Database, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	users := database.Collection("users")

	// check if the user exists

	err := users.FindOne(ctx, bson.M{"email": cfg.AdminEmail}).Err()

	if err == nil {
		return nil
	}

	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	u := identity.User{
		ID:           primitive.NewObjectID().Hex(),
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Name:         cfg.AdminName,
		Role:         identity.RoleAdmin,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = users.InsertOne(ctx, u)

	return err
}
