package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProfileRepository implements the document-store surface the
// onboarding verifier needs, against MongoDB.
type ProfileRepository struct {
	db *mongo.Database
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByPhone returns the profile document for the phone number, or
// (nil, nil) when no profile exists in the collection.
func (r *ProfileRepository) FindByPhone(ctx context.Context, collection, phone string) (bson.M, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var doc bson.M
	err := r.db.Collection(collection).FindOne(ctx, bson.M{"phoneNumber": phone}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Insert writes a new profile document.
func (r *ProfileRepository) Insert(ctx context.Context, collection string, doc bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.db.Collection(collection).InsertOne(ctx, doc)
	return err
}
