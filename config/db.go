// config/db.go
package config

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB establishes connection to MongoDB
func ConnectDB() *mongo.Client {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = os.Getenv("MONGODB_URI")
	}

	// Only use the Docker service name as a fallback in development
	if mongoURI == "" {
		env := os.Getenv("ENV")
		if env == "development" || env == "dev" {
			mongoURI = "mongodb://mongodb:27017"
		} else {
			log.Fatal("MONGO_URI or MONGODB_URI environment variable is required for production")
		}
	}

	log.Printf("Connecting to MongoDB at: %s", maskMongoURI(mongoURI))

	clientOptions := options.Client().ApplyURI(mongoURI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatal("MongoDB connection error:", err)
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		log.Fatal("MongoDB ping error:", err)
	}

	log.Println("Connected to MongoDB")

	setupCollections(client)

	return client
}

// GetDatabase returns the application database handle.
func GetDatabase(client *mongo.Client) *mongo.Database {
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "immuneplus"
	}
	return client.Database(dbName)
}

// GetCollection returns a MongoDB collection from the app database.
func GetCollection(client *mongo.Client, collectionName string) *mongo.Collection {
	return GetDatabase(client).Collection(collectionName)
}

// setupCollections ensures all necessary collections and indexes exist
func setupCollections(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := GetDatabase(client)

	collections := []string{"Users", "Pharmacy", "DeliveryPartner", "Doctors", "Orders", "Category", "Poster", "Counters", "paymentDelivery", "Admins"}
	for _, collName := range collections {
		db.CreateCollection(ctx, collName)
	}

	// One profile per phone number per collection. The onboarding
	// verifier relies on this as its last line of defense.
	for _, collName := range []string{"Users", "Pharmacy", "DeliveryPartner", "Doctors"} {
		coll := db.Collection(collName)
		phoneIndexModel := mongo.IndexModel{
			Keys:    bson.D{{Key: "phoneNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		}
		_, err := coll.Indexes().CreateOne(ctx, phoneIndexModel)
		if err != nil {
			log.Printf("Error creating phoneNumber index for %s: %v", collName, err)
		}
	}

	ordersColl := db.Collection("Orders")
	for _, key := range []string{"assignedPharmacy", "assignedPartner", "patientId"} {
		indexModel := mongo.IndexModel{
			Keys: bson.D{{Key: key, Value: 1}},
		}
		_, err := ordersColl.Indexes().CreateOne(ctx, indexModel)
		if err != nil {
			log.Printf("Error creating %s index for Orders: %v", key, err)
		}
	}

	log.Println("Database collections and indexes setup complete")
}

// maskMongoURI masks the password in MongoDB URI for logging
func maskMongoURI(uri string) string {
	if idx := strings.Index(uri, "@"); idx > 0 {
		if colonIdx := strings.LastIndex(uri[:idx], ":"); colonIdx > 0 {
			return uri[:colonIdx+1] + "***" + uri[idx:]
		}
	}
	return uri
}
