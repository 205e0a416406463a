package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mahammedjunedattar/cloth-invent/internal/cache"
	"github.com/mahammedjunedattar/cloth-invent/internal/metrics"
	"github.com/mahammedjunedattar/cloth-invent/internal/models"
	"github.com/mahammedjunedattar/cloth-invent/internal/repository"
	"github.com/mahammedjunedattar/cloth-invent/internal/validation"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 100
)

type ItemHandler struct {
	Items     ItemStore
	Audit     AuditStore
	Validator *validation.Validator
	Cache     *cache.Cache
	StatsTTL  time.Duration
	Metrics   *metrics.Metrics

	statsGen statsGenerations
}

type ItemListResponse struct {
	Data       []models.Item     `json:"data"`
	Pagination models.Pagination `json:"pagination"`
	Links      PageLinks         `json:"links"`
}

type PageLinks struct {
	Next *string `json:"next"`
	Prev *string `json:"prev"`
}

type ValidationErrorResponse struct {
	Errors validation.Issues `json:"errors"`
}

type StockUpdateResponse struct {
	Message     string `json:"message"`
	NewQuantity int64  `json:"newQuantity"`
}

// GET /api/items
func (h *ItemHandler) ListItems(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}

	page, limit := getPaginationParams(c)
	filter := repository.ItemFilter{
		Page:     page,
		Limit:    limit,
		Search:   strings.TrimSpace(c.Query("search")),
		Category: c.Query("category"),
		Gender:   strings.ToUpper(c.Query("gender")),
		Size:     c.Query("size"),
		Color:    c.Query("color"),
	}

	items, total, err := h.Items.List(c.Request.Context(), s.StoreID, filter)
	if err != nil {
		internalError(c, "Failed to retrieve items", err)
		return
	}
	if items == nil {
		items = []models.Item{}
	}

	pagination := models.NewPagination(total, page, limit)
	c.JSON(http.StatusOK, ItemListResponse{
		Data:       items,
		Pagination: pagination,
		Links:      pageLinks(c, pagination),
	})
}

// POST /api/items
func (h *ItemHandler) CreateItem(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}

	body, err := decodeObject(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	body["storeId"] = s.StoreID
	body["createdBy"] = s.UserID

	item, err := h.Validator.Validate(body)
	if err != nil {
		h.validationFailed(c, err)
		return
	}

	ctx := c.Request.Context()
	existing, err := h.Items.ExistingSKUs(ctx, s.StoreID, item.SKUs())
	if err != nil {
		internalError(c, "Failed to create item", err)
		return
	}
	if len(existing) > 0 {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Duplicate SKUs found: " + strings.Join(existing, ", ")})
		return
	}

	if err := h.Items.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicateSKU) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Duplicate SKUs found"})
			return
		}
		internalError(c, "Failed to create item", err)
		return
	}

	recordAudit(c, h.Audit, models.AuditLog{
		Action:   models.AuditItemCreate,
		UserID:   s.UserID,
		StoreID:  s.StoreID,
		TargetID: item.ID.Hex(),
		Details:  item,
	})
	h.invalidateStats(s.StoreID)

	c.JSON(http.StatusCreated, item)
}

// PATCH /api/items
func (h *ItemHandler) UpdateStock(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}

	var req models.StockUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	sku := validation.NormalizeSKU(req.SKU)

	qty, err := h.Items.AdjustStock(c.Request.Context(), s.StoreID, sku, req.Delta())
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Variant not found"})
		return
	case errors.Is(err, repository.ErrInsufficientStock):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Insufficient stock"})
		return
	case err != nil:
		internalError(c, "Failed to update stock", err)
		return
	}

	if h.Metrics != nil {
		h.Metrics.StockUpdates.WithLabelValues(string(req.Operation)).Inc()
	}
	recordAudit(c, h.Audit, models.AuditLog{
		Action:    models.AuditStockUpdate,
		UserID:    s.UserID,
		StoreID:   s.StoreID,
		TargetSKU: sku,
		Details:   gin.H{"quantity": req.Quantity, "operation": req.Operation},
	})
	h.invalidateStats(s.StoreID)

	c.JSON(http.StatusOK, StockUpdateResponse{Message: "Stock updated successfully", NewQuantity: qty})
}

// GET /api/items/:sku
func (h *ItemHandler) GetItem(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}

	item, err := h.Items.FindBySKU(c.Request.Context(), s.StoreID, validation.NormalizeSKU(c.Param("sku")))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
			return
		}
		internalError(c, "Failed to retrieve item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// PUT /api/items/:sku
func (h *ItemHandler) UpdateVariant(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	sku := validation.NormalizeSKU(c.Param("sku"))
	ctx := c.Request.Context()

	body, err := decodeObject(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	parent, err := h.Items.FindBySKU(ctx, s.StoreID, sku)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Variant not found"})
			return
		}
		internalError(c, "Failed to update variant", err)
		return
	}

	body["sku"] = sku
	variant, err := h.Validator.ValidateVariant(parent.Gender, body)
	if err != nil {
		h.validationFailed(c, err)
		return
	}

	item, err := h.Items.ReplaceVariant(ctx, s.StoreID, sku, *variant)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Variant not found"})
			return
		}
		internalError(c, "Failed to update variant", err)
		return
	}

	recordAudit(c, h.Audit, models.AuditLog{
		Action:    models.AuditVariantUpdate,
		UserID:    s.UserID,
		StoreID:   s.StoreID,
		TargetID:  item.ID.Hex(),
		TargetSKU: sku,
		Details:   variant,
	})
	h.invalidateStats(s.StoreID)

	c.JSON(http.StatusOK, item)
}

// DELETE /api/items/:sku
func (h *ItemHandler) DeleteVariant(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	sku := validation.NormalizeSKU(c.Param("sku"))

	if err := h.Items.RemoveVariant(c.Request.Context(), s.StoreID, sku); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
			return
		}
		internalError(c, "Failed to delete variant", err)
		return
	}

	recordAudit(c, h.Audit, models.AuditLog{
		Action:    models.AuditVariantDelete,
		UserID:    s.UserID,
		StoreID:   s.StoreID,
		TargetSKU: sku,
	})
	h.invalidateStats(s.StoreID)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ItemHandler) validationFailed(c *gin.Context, err error) {
	var issues validation.Issues
	if !errors.As(err, &issues) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordIssues(issues.Codes())
	}
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{Errors: issues})
}

// decodeObject reads the body as a JSON object, keeping numbers as
// json.Number so the validator sees their exact text.
func decodeObject(c *gin.Context) (map[string]any, error) {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, errors.New("request body must be a JSON object")
	}
	if body == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	return body, nil
}

// getPaginationParams reads page and limit, falling back to defaults and
// capping the limit.
func getPaginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))

	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func pageLinks(c *gin.Context, p models.Pagination) PageLinks {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	link := func(page int) *string {
		s := fmt.Sprintf("%s://%s%s?page=%d&limit=%d", scheme, c.Request.Host, c.Request.URL.Path, page, p.Limit)
		return &s
	}

	var links PageLinks
	if p.HasNext {
		links.Next = link(p.Page + 1)
	}
	if p.Page > 1 {
		links.Prev = link(p.Page - 1)
	}
	return links
}
