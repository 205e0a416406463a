package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestIsDuplicateKey(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	other := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 121, Message: "document failed validation"}}}

	assert.True(t, IsDuplicateKey(dup))
	assert.False(t, IsDuplicateKey(other))
	assert.False(t, IsDuplicateKey(errors.New("boom")))
}

func TestConnectRequiresURI(t *testing.T) {
	_, err := Connect(context.Background(), "", zap.NewNop())
	assert.Error(t, err)
}

func TestSKUIndexIgnoresEmptiedItems(t *testing.T) {
	indexes := itemIndexes()
	require.NotEmpty(t, indexes)

	sku := indexes[0]
	assert.Equal(t, bson.D{{Key: "storeId", Value: 1}, {Key: "variants.sku", Value: 1}}, sku.Keys)
	require.NotNil(t, sku.Options.Unique)
	assert.True(t, *sku.Options.Unique)
	assert.Equal(t, bson.M{"variants.sku": bson.M{"$type": "string"}}, sku.Options.PartialFilterExpression)
}
