package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection names.
const (
	ItemsCollection = "items"
	UsersCollection = "users"
	AuditCollection = "audit_logs"
)

// Connect opens a pooled client and verifies it with a ping.
func Connect(ctx context.Context, uri string, log *zap.Logger) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is empty")
	}

	opts := options.Client().
		ApplyURI(uri).
		SetRegistry(NewRegistry()).
		SetMaxPoolSize(10).
		SetMinPoolSize(2).
		SetServerSelectionTimeout(5 * time.Second).
		SetSocketTimeout(45 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	log.Info("Connected to MongoDB")
	return client, nil
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// (storeId, variants.sku) index is the authoritative guard against two items
// in one store sharing a SKU.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := db.Collection(ItemsCollection).Indexes().CreateMany(ctx, itemIndexes())
	if err != nil {
		return fmt.Errorf("creating item indexes: %w", err)
	}

	_, err = db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_1").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("creating user indexes: %w", err)
	}
	return nil
}

// itemIndexes describes the items collection indexes. The SKU index only
// covers documents holding at least one string SKU: an item emptied by
// removing its last variant would otherwise index as (storeId, null) and
// collide with the next one.
func itemIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "variants.sku", Value: 1}},
			Options: options.Index().
				SetName("storeId_variants.sku_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"variants.sku": bson.M{"$type": "string"}}),
		},
		{
			Keys:    bson.D{{Key: "storeId", Value: 1}, {Key: "updatedAt", Value: -1}},
			Options: options.Index().SetName("storeId_updatedAt_-1"),
		},
	}
}

// IsDuplicateKey reports whether err was caused by a unique index.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
