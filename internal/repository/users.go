package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"game_arena/internal/domain/user"
)

// MongoUserDirectory resolves display names from the accounts collection.
type MongoUserDirectory struct {
	mongo *mongo.Database
	log   *zap.SugaredLogger
}

func NewMongoUserDirectory(mongo *mongo.Database, log *zap.SugaredLogger) *MongoUserDirectory {
	return &MongoUserDirectory{mongo: mongo, log: log}
}

// Nickname returns ok=false when the user is unknown; ids may be object ids or plain strings.
func (m *MongoUserDirectory) Nickname(ctx context.Context, userID string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var id any = userID
	if oid, err := primitive.ObjectIDFromHex(userID); err == nil {
		id = oid
	}

	var u user.User
	err := m.mongo.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			m.log.Errorw("failed to look up user", "user", userID, "error", err)
		}
		return "", false
	}
	return u.Username, true
}
