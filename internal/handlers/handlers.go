package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mahammedjunedattar/cloth-invent/internal/auth"
	"github.com/mahammedjunedattar/cloth-invent/internal/logger"
	"github.com/mahammedjunedattar/cloth-invent/internal/middleware"
	"github.com/mahammedjunedattar/cloth-invent/internal/models"
	"github.com/mahammedjunedattar/cloth-invent/internal/repository"
)

// ItemStore is the item persistence the handlers rely on. Every method is
// scoped to one store.
type ItemStore interface {
	Create(ctx context.Context, item *models.Item) error
	ExistingSKUs(ctx context.Context, storeID string, skus []string) ([]string, error)
	FindBySKU(ctx context.Context, storeID, sku string) (*models.Item, error)
	List(ctx context.Context, storeID string, f repository.ItemFilter) ([]models.Item, int64, error)
	AdjustStock(ctx context.Context, storeID, sku string, delta int64) (int64, error)
	ReplaceVariant(ctx context.Context, storeID, sku string, v models.Variant) (*models.Item, error)
	RemoveVariant(ctx context.Context, storeID, sku string) error
	Stats(ctx context.Context, storeID string) (*models.InventoryStats, error)
}

type AuditStore interface {
	Record(ctx context.Context, entry models.AuditLog) error
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// session returns the caller's claims, answering 401 when there are none.
func session(c *gin.Context) (*auth.Claims, bool) {
	claims, ok := middleware.Session(c)
	if !ok || claims.StoreID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized access"})
		return nil, false
	}
	return claims, true
}

// recordAudit writes an audit entry. A failure is logged but does not fail
// the request, since the write it describes has already happened.
func recordAudit(c *gin.Context, store AuditStore, entry models.AuditLog) {
	if store == nil {
		return
	}
	if err := store.Record(c.Request.Context(), entry); err != nil {
		logger.FromContext(c).Error("recording audit log",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

func internalError(c *gin.Context, msg string, err error) {
	logger.FromContext(c).Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msg})
}
