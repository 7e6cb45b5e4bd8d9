package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type counterDoc struct {
	Seq int64 `bson:"seq"`
}

// nextID atomically allocates the next integer id for the named sequence.
func nextID(ctx context.Context, db *mongo.Database, sequence string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c counterDoc
	err := db.Collection(countersCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": sequence}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts).
		Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("allocate %s id: %w", sequence, err)
	}
	return c.Seq, nil
}
