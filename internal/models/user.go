package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account that signs in with email and password
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password"`
	StoreID      string             `json:"storeId" bson:"storeId"`
	Role         string             `json:"role" bson:"role"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Roles.
const (
	RoleOwner = "owner"
	RoleUser  = "user"
)

// Audit actions.
const (
	AuditItemCreate    = "ITEM_CREATE"
	AuditStockUpdate   = "STOCK_UPDATE"
	AuditVariantUpdate = "VARIANT_UPDATE"
	AuditVariantDelete = "VARIANT_DELETE"
)

// AuditLog records a write made on behalf of a user
type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Action    string             `bson:"action"`
	UserID    string             `bson:"userId"`
	StoreID   string             `bson:"storeId"`
	TargetID  string             `bson:"targetId,omitempty"`
	TargetSKU string             `bson:"targetSku,omitempty"`
	Details   any                `bson:"details,omitempty"`
	Timestamp time.Time          `bson:"timestamp"`
}
