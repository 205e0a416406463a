package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	// Prices are emitted as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Gender selects the size chart an item is validated against
type Gender string

const (
	GenderLadies Gender = "LADIES"
	GenderGents  Gender = "GENTS"
)

// Item represents a product in a store's inventory
type Item struct {
	ID        primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Gender    Gender             `json:"gender" bson:"gender"`
	Category  string             `json:"category" bson:"category"`
	Material  string             `json:"material" bson:"material"`
	Variants  []Variant          `json:"variants" bson:"variants"`
	StoreID   string             `json:"-" bson:"storeId"`
	CreatedBy string             `json:"createdBy" bson:"createdBy"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
	DeletedAt *time.Time         `json:"deletedAt" bson:"deletedAt"`
}

// Variant is one size/color/price/stock combination of an item
type Variant struct {
	Size         string             `json:"size" bson:"size"`
	Color        string             `json:"color" bson:"color"`
	SKU          string             `json:"sku" bson:"sku"`
	Quantity     int64              `json:"quantity" bson:"quantity"`
	Price        decimal.Decimal    `json:"price" bson:"price"`
	Barcode      string             `json:"barcode" bson:"barcode"`
	Measurements map[string]float64 `json:"measurements,omitempty" bson:"measurements,omitempty"`
}

// SKUs returns the variant SKUs in submission order
func (i *Item) SKUs() []string {
	skus := make([]string, 0, len(i.Variants))
	for _, v := range i.Variants {
		if v.SKU != "" {
			skus = append(skus, v.SKU)
		}
	}
	return skus
}

// Variant returns the variant with the given SKU, if any
func (i *Item) Variant(sku string) (*Variant, bool) {
	for idx := range i.Variants {
		if i.Variants[idx].SKU == sku {
			return &i.Variants[idx], true
		}
	}
	return nil, false
}

// StockOperation is the direction of a stock adjustment
type StockOperation string

const (
	StockIncrement StockOperation = "increment"
	StockDecrement StockOperation = "decrement"
)

// StockUpdate is the body of a stock adjustment request
type StockUpdate struct {
	SKU       string         `json:"sku" binding:"required"`
	Quantity  int64          `json:"quantity" binding:"required,gt=0"`
	Operation StockOperation `json:"operation" binding:"required,oneof=increment decrement"`
}

// Delta returns the signed quantity change
func (u StockUpdate) Delta() int64 {
	if u.Operation == StockDecrement {
		return -u.Quantity
	}
	return u.Quantity
}

// InventoryStats aggregates stock across a store's variants
type InventoryStats struct {
	Sizes       []string         `json:"sizes"`
	Colors      []string         `json:"colors"`
	SizeCounts  map[string]int64 `json:"sizeCounts"`
	ColorCounts map[string]int64 `json:"colorCounts"`
}

// Pagination describes one page of a listing
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
}

// NewPagination computes page counts for a listing
func NewPagination(total int64, page, limit int) Pagination {
	p := Pagination{Total: total, Page: page, Limit: limit}
	if limit > 0 {
		p.TotalPages = total / int64(limit)
		if total%int64(limit) != 0 {
			p.TotalPages++
		}
		p.HasNext = int64(page*limit) < total
	}
	return p
}
