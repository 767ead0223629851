package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/pricetracker/internal/database"
	"github.com/jonesrussell/pricetracker/internal/domain"
	"github.com/jonesrussell/pricetracker/internal/logger"
)

const defaultAlertLimit = 50

// AlertRepository is the alert persistence surface the handlers use.
type AlertRepository interface {
	List(ctx context.Context, status domain.AlertStatus, productID int64, limit int) ([]*domain.Alert, error)
	MarkRead(ctx context.Context, id int64) error
	Dismiss(ctx context.Context, id int64) error
}

// AlertsHandler handles alert-related HTTP requests.
type AlertsHandler struct {
	repo   AlertRepository
	logger logger.Interface
}

// NewAlertsHandler creates a new alerts handler.
func NewAlertsHandler(repo AlertRepository, log logger.Interface) *AlertsHandler {
	return &AlertsHandler{
		repo:   repo,
		logger: log.WithComponent("api.alerts"),
	}
}

// List handles GET /api/v1/alerts.
func (h *AlertsHandler) List(c *gin.Context) {
	status := domain.AlertStatus(c.Query("status"))
	productID, _ := strconv.ParseInt(c.Query("product_id"), 10, 64)
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAlertLimit)))
	if err != nil || limit <= 0 {
		limit = defaultAlertLimit
	}

	alerts, err := h.repo.List(c.Request.Context(), status, productID, limit)
	if err != nil {
		h.logger.Error("Failed to list alerts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve alerts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "total": len(alerts)})
}

// MarkRead handles POST /api/v1/alerts/:id/read.
func (h *AlertsHandler) MarkRead(c *gin.Context) {
	h.mutate(c, h.repo.MarkRead, domain.AlertRead)
}

// Dismiss handles POST /api/v1/alerts/:id/dismiss.
func (h *AlertsHandler) Dismiss(c *gin.Context) {
	h.mutate(c, h.repo.Dismiss, domain.AlertDismissed)
}

func (h *AlertsHandler) mutate(c *gin.Context, op func(context.Context, int64) error, status domain.AlertStatus) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert ID"})
		return
	}

	if opErr := op(c.Request.Context(), id); opErr != nil {
		if errors.Is(opErr, database.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		h.logger.Error("Failed to update alert", "alert_id", id, "error", opErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update alert"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
}
