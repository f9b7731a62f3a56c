package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"game_arena/internal/domain/game"
	errs "game_arena/internal/errors"
)

const archivePageSize = 20

// MongoArchive stores finished sessions in the games collection, one document per session.
type MongoArchive struct {
	mongo *mongo.Database
	log   *zap.SugaredLogger
}

func NewMongoArchive(mongo *mongo.Database, log *zap.SugaredLogger) *MongoArchive {
	return &MongoArchive{mongo: mongo, log: log}
}

func (a *MongoArchive) Archive(ctx context.Context, s *game.Session, records []game.SummaryRecord, sgf string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc := game.ArchivedGame{
		SessionID: s.ID,
		Mode:      s.Mode,
		Players:   []string{s.Black.UserID, s.White.UserID},
		Black:     s.Black,
		White:     s.White,
		Summaries: records,
		Moves:     s.MoveHistory,
		SGF:       sgf,
		CreatedAt: s.CreatedAt,
	}
	if s.Result != nil {
		doc.Winner = s.Result.Winner
		doc.Reason = s.Result.Reason
		doc.EndedAt = s.Result.EndedAt
	}

	_, err := a.mongo.Collection("games").ReplaceOne(ctx, bson.M{"_id": s.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		a.log.Errorw("failed to archive session", "session", s.ID, "error", err)
		return err
	}
	a.log.Infow("session archived", "session", s.ID)
	return nil
}

func (a *MongoArchive) Get(ctx context.Context, sessionID string) (*game.ArchivedGame, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc game.ArchivedGame
	err := a.mongo.Collection("games").FindOne(ctx, bson.M{"_id": sessionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ByUser lists a player's finished games, newest first; page starts at 1.
func (a *MongoArchive) ByUser(ctx context.Context, userID string, page int) ([]game.ArchivedGame, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	page = max(page, 1)
	opts := options.Find().
		SetSort(bson.D{{Key: "ended_at", Value: -1}}).
		SetSkip(int64((page - 1) * archivePageSize)).
		SetLimit(archivePageSize).
		SetProjection(bson.M{"moves": 0, "sgf": 0})

	cursor, err := a.mongo.Collection("games").Find(ctx, bson.M{"players": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []game.ArchivedGame{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
