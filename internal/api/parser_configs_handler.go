package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/pricetracker/internal/domain"
	"github.com/jonesrussell/pricetracker/internal/logger"
	"github.com/jonesrussell/pricetracker/internal/parser"
	"github.com/jonesrussell/pricetracker/internal/urlutil"
)

// ParserConfigRepository is the parser config persistence surface the
// handlers use.
type ParserConfigRepository interface {
	List(ctx context.Context) ([]*domain.ParserConfig, error)
	Upsert(ctx context.Context, config *domain.ParserConfig) error
	Delete(ctx context.Context, siteDomain string) error
}

// ParserConfigsHandler handles parser configuration HTTP requests.
type ParserConfigsHandler struct {
	repo   ParserConfigRepository
	logger logger.Interface
}

// NewParserConfigsHandler creates a new parser configs handler.
func NewParserConfigsHandler(repo ParserConfigRepository, log logger.Interface) *ParserConfigsHandler {
	return &ParserConfigsHandler{
		repo:   repo,
		logger: log.WithComponent("api.parser_configs"),
	}
}

// List handles GET /api/v1/parser-configs.
func (h *ParserConfigsHandler) List(c *gin.Context) {
	configs, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list parser configs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve parser configs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"parser_configs": configs, "total": len(configs)})
}

// Upsert handles PUT /api/v1/parser-configs/:domain.
func (h *ParserConfigsHandler) Upsert(c *gin.Context) {
	siteDomain := urlutil.NormalizeDomain(c.Param("domain"))
	if siteDomain == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid domain"})
		return
	}

	var req ParserConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	config := &domain.ParserConfig{
		Domain:                siteDomain,
		RequiresBrowser:       req.RequiresBrowser,
		PriceSelectors:        toChain(req.PriceSelectors),
		NameSelectors:         toChain(req.NameSelectors),
		ImageSelectors:        toChain(req.ImageSelectors),
		AvailabilitySelectors: toChain(req.AvailabilitySelectors),
		RateLimitSeconds:      req.RateLimitSeconds,
		MaxRetries:            req.MaxRetries,
		IsActive:              true,
	}
	if req.IsActive != nil {
		config.IsActive = *req.IsActive
	}
	if config.PriceSelectors.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one price selector is required"})
		return
	}

	if err := h.repo.Upsert(c.Request.Context(), config); err != nil {
		h.logger.Error("Failed to upsert parser config", "domain", siteDomain, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save parser config"})
		return
	}
	c.JSON(http.StatusOK, config)
}

// Delete handles DELETE /api/v1/parser-configs/:domain.
func (h *ParserConfigsHandler) Delete(c *gin.Context) {
	siteDomain := urlutil.NormalizeDomain(c.Param("domain"))

	if err := h.repo.Delete(c.Request.Context(), siteDomain); err != nil {
		if errors.Is(err, parser.ErrConfigNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Parser config not found"})
			return
		}
		h.logger.Error("Failed to delete parser config", "domain", siteDomain, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete parser config"})
		return
	}
	c.Status(http.StatusNoContent)
}

func toChain(input SelectorsInput) domain.SelectorChain {
	return domain.SelectorChain{Primary: input.Primary, Fallback: input.Fallback}
}
