// utils/notification_utils.go
package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/immuneplus/immuneplus_backend/config"
)

// SendFCMNotification pushes a notification to the account with the
// given sequential id in the given collection, using the FCM token
// stored on its profile. Callers treat failures as best-effort and only
// log them.
func SendFCMNotification(db *mongo.Database, collection string, recipientID int, title, body string, data map[string]string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var profile struct {
		FCMToken string `bson:"fcmToken"`
	}
	err := db.Collection(collection).FindOne(ctx, bson.M{"_id": recipientID}).Decode(&profile)
	if err != nil {
		return fmt.Errorf("failed to find recipient %d in %s: %w", recipientID, collection, err)
	}
	if profile.FCMToken == "" {
		return fmt.Errorf("recipient %d in %s has no FCM token", recipientID, collection)
	}

	if config.FirebaseApp == nil {
		return fmt.Errorf("firebase app not initialized")
	}

	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging client: %w", err)
	}

	if data == nil {
		data = map[string]string{}
	}
	data["timestamp"] = time.Now().Format(time.RFC3339)

	fcmMessage := &messaging.Message{
		Token: profile.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
	}

	response, err := client.Send(ctx, fcmMessage)
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}

	log.Printf("FCM message sent to %s/%d: %s", collection, recipientID, response)
	return nil
}
