package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mahammedjunedattar/cloth-invent/internal/models"
)

type AuditRepository struct {
	collection *mongo.Collection
}

func NewAuditRepository(collection *mongo.Collection) *AuditRepository {
	return &AuditRepository{collection: collection}
}

// Record appends an entry to the audit log.
func (r *AuditRepository) Record(ctx context.Context, entry models.AuditLog) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("recording audit log: %w", err)
	}
	return nil
}
