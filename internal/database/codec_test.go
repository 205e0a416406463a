package database

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type priced struct {
	Price decimal.Decimal `bson:"price"`
}

func TestDecimalStoredAsDecimal128(t *testing.T) {
	reg := NewRegistry()

	data, err := bson.MarshalWithRegistry(reg, priced{Price: decimal.RequireFromString("19.99")})
	require.NoError(t, err)

	raw := bson.Raw(data)
	assert.Equal(t, bson.TypeDecimal128, raw.Lookup("price").Type)

	var out priced
	require.NoError(t, bson.UnmarshalWithRegistry(reg, data, &out))
	assert.True(t, decimal.RequireFromString("19.99").Equal(out.Price), "got %s", out.Price)
}

func TestDecimalDecodesLegacyNumbers(t *testing.T) {
	reg := NewRegistry()

	for _, doc := range []bson.M{
		{"price": 12.5},
		{"price": int32(12)},
		{"price": int64(12)},
		{"price": "12.50"},
	} {
		data, err := bson.Marshal(doc)
		require.NoError(t, err)

		var out priced
		require.NoError(t, bson.UnmarshalWithRegistry(reg, data, &out), "doc %v", doc)
		assert.True(t, out.Price.GreaterThanOrEqual(decimal.NewFromInt(12)), "doc %v got %s", doc, out.Price)
	}
}

func TestDecimalRejectsBoolean(t *testing.T) {
	data, err := bson.Marshal(bson.M{"price": true})
	require.NoError(t, err)

	var out priced
	assert.Error(t, bson.UnmarshalWithRegistry(NewRegistry(), data, &out))
}
