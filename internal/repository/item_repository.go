package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mahammedjunedattar/cloth-invent/internal/database"
	"github.com/mahammedjunedattar/cloth-invent/internal/models"
)

const (
	writeTimeout = 5 * time.Second
	readTimeout  = 3 * time.Second
	listTimeout  = 10 * time.Second
)

// ItemFilter narrows a listing. Zero values are ignored.
type ItemFilter struct {
	Page     int
	Limit    int
	Search   string
	Category string
	Gender   string
	Size     string
	Color    string
}

type ItemRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewItemRepository(collection *mongo.Collection) *ItemRepository {
	return &ItemRepository{
		collection: collection,
		now:        time.Now,
	}
}

// Create inserts a new item. A SKU already used in the store yields ErrDuplicateSKU.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	now := r.now()
	item.ID = primitive.NewObjectID()
	item.CreatedAt = now
	item.UpdatedAt = now
	item.DeletedAt = nil

	if _, err := r.collection.InsertOne(ctx, item); err != nil {
		if database.IsDuplicateKey(err) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("inserting item: %w", err)
	}
	return nil
}

// ExistingSKUs returns which of skus are already used by any item in the store.
func (r *ItemRepository) ExistingSKUs(ctx context.Context, storeID string, skus []string) ([]string, error) {
	if len(skus) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	filter := bson.M{
		"storeId":      storeID,
		"variants.sku": bson.M{"$in": skus},
	}
	opts := options.Find().SetProjection(bson.M{"variants.sku": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("finding skus: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []models.Item
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding skus: %w", err)
	}
	return matchingSKUs(skus, docs), nil
}

// FindBySKU returns the live item that holds the variant.
func (r *ItemRepository) FindBySKU(ctx context.Context, storeID, sku string) (*models.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var item models.Item
	err := r.collection.FindOne(ctx, liveVariantFilter(storeID, sku)).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("finding item: %w", err)
	}
	return &item, nil
}

// List returns one page of live items, newest first, plus the total match count.
func (r *ItemRepository) List(ctx context.Context, storeID string, f ItemFilter) ([]models.Item, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	filter := listFilter(storeID, f)

	totalCh := make(chan int64, 1)
	errCh := make(chan error, 1)

	go func() {
		total, err := r.collection.CountDocuments(ctx, filter)
		if err != nil {
			errCh <- err
			return
		}
		totalCh <- total
	}()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("listing items: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]models.Item, 0)
	if err = cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decoding items: %w", err)
	}

	select {
	case total := <-totalCh:
		return items, total, nil
	case err := <-errCh:
		return nil, 0, fmt.Errorf("counting items: %w", err)
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	}
}

// AdjustStock adds delta to the variant's quantity and returns the new value.
// A decrement that would take the quantity below zero yields ErrInsufficientStock.
func (r *ItemRepository) AdjustStock(ctx context.Context, storeID, sku string, delta int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	elem := bson.M{"sku": sku}
	if delta < 0 {
		elem["quantity"] = bson.M{"$gte": -delta}
	}
	filter := bson.M{
		"storeId":   storeID,
		"deletedAt": nil,
		"variants":  bson.M{"$elemMatch": elem},
	}
	update := bson.M{
		"$inc": bson.M{"variants.$[elem].quantity": delta},
		"$set": bson.M{"updatedAt": r.now()},
	}
	opts := options.FindOneAndUpdate().
		SetArrayFilters(options.ArrayFilters{Filters: []interface{}{bson.M{"elem.sku": sku}}}).
		SetReturnDocument(options.After)

	var item models.Item
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, cerr := r.collection.CountDocuments(ctx, liveVariantFilter(storeID, sku))
		if cerr != nil {
			return 0, fmt.Errorf("checking variant: %w", cerr)
		}
		if n > 0 {
			return 0, ErrInsufficientStock
		}
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("adjusting stock: %w", err)
	}

	v, ok := item.Variant(sku)
	if !ok {
		return 0, ErrNotFound
	}
	return v.Quantity, nil
}

// ReplaceVariant overwrites the variant identified by sku, keeping the SKU.
func (r *ItemRepository) ReplaceVariant(ctx context.Context, storeID, sku string, v models.Variant) (*models.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	v.SKU = sku
	update := bson.M{"$set": bson.M{
		"variants.$": v,
		"updatedAt":  r.now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item models.Item
	err := r.collection.FindOneAndUpdate(ctx, liveVariantFilter(storeID, sku), update, opts).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("replacing variant: %w", err)
	}
	return &item, nil
}

// RemoveVariant pulls the variant out of its item. When it was the last
// variant the item is soft deleted.
func (r *ItemRepository) RemoveVariant(ctx context.Context, storeID, sku string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	update := bson.M{
		"$pull": bson.M{"variants": bson.M{"sku": sku}},
		"$set":  bson.M{"updatedAt": r.now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item models.Item
	err := r.collection.FindOneAndUpdate(ctx, liveVariantFilter(storeID, sku), update, opts).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return fmt.Errorf("removing variant: %w", err)
	}

	if len(item.Variants) == 0 {
		return r.softDelete(ctx, storeID, item.ID)
	}
	return nil
}

// softDelete marks an item as deleted.
func (r *ItemRepository) softDelete(ctx context.Context, storeID string, id primitive.ObjectID) error {
	now := r.now()
	filter := bson.M{
		"_id":       id,
		"storeId":   storeID,
		"deletedAt": nil,
	}
	update := bson.M{
		"$set": bson.M{
			"deletedAt": now,
			"updatedAt": now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("soft deleting item: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type quantityBucket struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

type statsFacet struct {
	Sizes  []quantityBucket `bson:"sizes"`
	Colors []quantityBucket `bson:"colors"`
}

// Stats totals stock per size and per color across the store's live items.
func (r *ItemRepository) Stats(ctx context.Context, storeID string) (*models.InventoryStats, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	group := func(field string) bson.A {
		return bson.A{
			bson.M{"$group": bson.M{
				"_id":   "$variants." + field,
				"count": bson.M{"$sum": "$variants.quantity"},
			}},
			bson.M{"$sort": bson.M{"_id": 1}},
		}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"storeId": storeID, "deletedAt": nil}}},
		{{Key: "$unwind", Value: "$variants"}},
		{{Key: "$facet", Value: bson.M{
			"sizes":  group("size"),
			"colors": group("color"),
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregating stats: %w", err)
	}
	defer cursor.Close(ctx)

	var facet statsFacet
	if cursor.Next(ctx) {
		if err := cursor.Decode(&facet); err != nil {
			return nil, fmt.Errorf("decoding stats: %w", err)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	return facet.toStats(), nil
}

func (f statsFacet) toStats() *models.InventoryStats {
	stats := &models.InventoryStats{
		Sizes:       make([]string, 0, len(f.Sizes)),
		Colors:      make([]string, 0, len(f.Colors)),
		SizeCounts:  make(map[string]int64, len(f.Sizes)),
		ColorCounts: make(map[string]int64, len(f.Colors)),
	}
	for _, b := range f.Sizes {
		if b.Key == "" {
			continue
		}
		stats.Sizes = append(stats.Sizes, b.Key)
		stats.SizeCounts[b.Key] = b.Count
	}
	for _, b := range f.Colors {
		if b.Key == "" {
			continue
		}
		stats.Colors = append(stats.Colors, b.Key)
		stats.ColorCounts[b.Key] = b.Count
	}
	return stats
}

func liveVariantFilter(storeID, sku string) bson.M {
	return bson.M{
		"storeId":      storeID,
		"variants.sku": sku,
		"deletedAt":    nil,
	}
}

// listFilter builds the query for List. Search text is matched literally.
func listFilter(storeID string, f ItemFilter) bson.M {
	filter := bson.M{
		"storeId":   storeID,
		"deletedAt": nil,
	}

	if f.Search != "" {
		pattern := regexp.QuoteMeta(f.Search)
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"category": bson.M{"$regex": pattern, "$options": "i"}},
			{"variants.sku": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Gender != "" {
		filter["gender"] = f.Gender
	}
	if f.Size != "" {
		filter["variants.size"] = f.Size
	}
	if f.Color != "" {
		filter["variants.color"] = f.Color
	}
	return filter
}

// matchingSKUs returns the wanted SKUs present in docs, in wanted order, once each.
func matchingSKUs(wanted []string, docs []models.Item) []string {
	stored := make(map[string]struct{})
	for _, d := range docs {
		for _, v := range d.Variants {
			stored[v.SKU] = struct{}{}
		}
	}

	var out []string
	for _, sku := range wanted {
		if _, ok := stored[sku]; ok {
			out = append(out, sku)
			delete(stored, sku)
		}
	}
	return out
}
