package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/pricetracker/internal/database"
	"github.com/jonesrussell/pricetracker/internal/domain"
	"github.com/jonesrussell/pricetracker/internal/logger"
	"github.com/jonesrussell/pricetracker/internal/urlutil"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
	checkNowTimeout     = 2 * time.Minute
)

// ProductRepository is the product persistence surface the handlers use.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, status domain.ProductStatus) ([]*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	UpdateStatus(ctx context.Context, id int64, status domain.ProductStatus) error
	Delete(ctx context.Context, id int64) error
}

// ObservationReader serves price history queries.
type ObservationReader interface {
	ListByProduct(ctx context.Context, productID int64, limit int) ([]*domain.Observation, error)
	Stats(ctx context.Context, productID int64) (*database.PriceRange, error)
}

// Checker runs an on-demand product check.
type Checker interface {
	RunCheckNow(ctx context.Context, productID int64) error
}

// ProductsHandler handles product-related HTTP requests.
type ProductsHandler struct {
	repo         ProductRepository
	observations ObservationReader
	checker      Checker
	logger       logger.Interface
}

// NewProductsHandler creates a new products handler.
func NewProductsHandler(repo ProductRepository, observations ObservationReader, checker Checker, log logger.Interface) *ProductsHandler {
	return &ProductsHandler{
		repo:         repo,
		observations: observations,
		checker:      checker,
		logger:       log.WithComponent("api.products"),
	}
}

// Create handles POST /api/v1/products.
func (h *ProductsHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := urlutil.ValidateProductURL(req.URL); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product URL: " + err.Error()})
		return
	}
	siteDomain, err := urlutil.DomainFromURL(req.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product URL: " + err.Error()})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	interval := req.CheckIntervalHours
	if interval <= 0 {
		interval = domain.DefaultCheckIntervalHours
	}

	product := &domain.Product{
		URL:                req.URL,
		Domain:             siteDomain,
		Name:               req.Name,
		TargetPrice:        req.TargetPrice,
		Currency:           currency,
		CheckIntervalHours: interval,
		Status:             domain.StatusActive,
		Tags:               req.Tags,
		Notes:              req.Notes,
	}
	if createErr := h.repo.Create(c.Request.Context(), product); createErr != nil {
		if errors.Is(createErr, database.ErrDuplicateProductURL) {
			c.JSON(http.StatusConflict, gin.H{"error": "Product URL is already tracked"})
			return
		}
		h.logger.Error("Failed to create product", "error", createErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	// Kick off the first check so the product gets a name and price
	// without waiting for the schedule.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), checkNowTimeout)
		defer cancel()
		if checkErr := h.checker.RunCheckNow(ctx, product.ID); checkErr != nil {
			h.logger.Warn("Initial check failed", "product_id", product.ID, "error", checkErr)
		}
	}()

	c.JSON(http.StatusCreated, product)
}

// List handles GET /api/v1/products.
func (h *ProductsHandler) List(c *gin.Context) {
	status := domain.ProductStatus(c.Query("status"))

	products, err := h.repo.List(c.Request.Context(), status)
	if err != nil {
		h.logger.Error("Failed to list products", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "total": len(products)})
}

// Get handles GET /api/v1/products/:id.
func (h *ProductsHandler) Get(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	product, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Update handles PUT /api/v1/products/:id.
func (h *ProductsHandler) Update(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	product, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	if req.Name != nil {
		product.Name = req.Name
	}
	if req.TargetPrice != nil {
		product.TargetPrice = req.TargetPrice
	}
	if req.Currency != nil {
		product.Currency = *req.Currency
	}
	if req.CheckIntervalHours != nil && *req.CheckIntervalHours > 0 {
		product.CheckIntervalHours = *req.CheckIntervalHours
	}
	if req.Tags != nil {
		product.Tags = req.Tags
	}
	if req.Notes != nil {
		product.Notes = req.Notes
	}

	if updateErr := h.repo.Update(c.Request.Context(), product); updateErr != nil {
		h.respondLookupError(c, updateErr)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Delete handles DELETE /api/v1/products/:id.
func (h *ProductsHandler) Delete(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.respondLookupError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Pause handles POST /api/v1/products/:id/pause.
func (h *ProductsHandler) Pause(c *gin.Context) {
	h.setStatus(c, domain.StatusPaused)
}

// Resume handles POST /api/v1/products/:id/resume.
func (h *ProductsHandler) Resume(c *gin.Context) {
	h.setStatus(c, domain.StatusActive)
}

func (h *ProductsHandler) setStatus(c *gin.Context, status domain.ProductStatus) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	if err := h.repo.UpdateStatus(c.Request.Context(), id, status); err != nil {
		h.respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
}

// CheckNow handles POST /api/v1/products/:id/check. The check runs
// synchronously; the refreshed product is returned.
func (h *ProductsHandler) CheckNow(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), checkNowTimeout)
	defer cancel()

	if err := h.checker.RunCheckNow(ctx, id); err != nil {
		h.logger.Error("On-demand check failed", "product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Check failed"})
		return
	}

	product, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// History handles GET /api/v1/products/:id/history.
func (h *ProductsHandler) History(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))
	if err != nil || limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}

	observations, err := h.observations.ListByProduct(c.Request.Context(), id, limit)
	if err != nil {
		h.logger.Error("Failed to list observations", "product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"observations": observations, "total": len(observations)})
}

// Stats handles GET /api/v1/products/:id/stats.
func (h *ProductsHandler) Stats(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	stats, err := h.observations.Stats(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load stats", "product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product_id": id,
		"min_price":  stats.MinPrice,
		"max_price":  stats.MaxPrice,
		"count":      stats.Count,
	})
}

func (h *ProductsHandler) productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return 0, false
	}
	return id, true
}

func (h *ProductsHandler) respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, database.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	h.logger.Error("Product lookup failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
}
