package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cryptowallet/internal/delivery/http/dto"
	"cryptowallet/internal/domain"
)

// ServerStats reports live wallet server counters
type ServerStats interface {
	OpenConnections() int64
	ActiveSessions() int64
}

// CatalogRefresher triggers an out-of-schedule price refresh
type CatalogRefresher interface {
	RunNow() error
	Refreshing() bool
}

// OpsHandler serves read-only operational views of the wallet server
type OpsHandler struct {
	catalog   *domain.Catalog
	stats     ServerStats
	refresher CatalogRefresher
	logger    *zap.Logger
	startedAt time.Time
}

// NewOpsHandler creates a new OpsHandler
func NewOpsHandler(catalog *domain.Catalog, stats ServerStats, refresher CatalogRefresher, logger *zap.Logger) *OpsHandler {
	return &OpsHandler{
		catalog:   catalog,
		stats:     stats,
		refresher: refresher,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// GetHealth reports liveness and server counters
// GET /health
func (h *OpsHandler) GetHealth(c echo.Context) error {
	return SuccessResponse(c, dto.HealthOutput{
		Status:          "healthy",
		Service:         "cryptowallet",
		Timestamp:       time.Now().Format(time.RFC3339),
		Uptime:          time.Since(h.startedAt).Truncate(time.Second).String(),
		CatalogSize:     h.catalog.Len(),
		OpenConnections: h.stats.OpenConnections(),
		ActiveSessions:  h.stats.ActiveSessions(),
	})
}

// GetOfferings returns the current catalog snapshot
// GET /api/offerings
func (h *OpsHandler) GetOfferings(c echo.Context) error {
	assets := h.catalog.Assets()
	output := make([]dto.OfferingOutput, 0, len(assets))
	for _, a := range assets {
		output = append(output, dto.NewOfferingOutput(a))
	}
	return SuccessResponse(c, output)
}

// GetOffering returns one catalog asset
// GET /api/offerings/:id
func (h *OpsHandler) GetOffering(c echo.Context) error {
	asset, ok := h.catalog.Find(c.Param("id"))
	if !ok {
		return NotFoundResponse(c, "Asset not found")
	}
	return SuccessResponse(c, dto.NewOfferingOutput(asset))
}

// TriggerRefresh starts a price refresh in the background.
// Returns 409 while a refresh is already running.
// POST /api/offerings/refresh
func (h *OpsHandler) TriggerRefresh(c echo.Context) error {
	if h.refresher.Refreshing() {
		return ConflictResponse(c, "Price refresh already in progress")
	}

	h.logger.Info("manual price refresh triggered via API")

	go func() {
		// failures and overlapping calls are logged by the refresher
		_ = h.refresher.RunNow()
	}()

	return AcceptedResponse(c, "Price refresh triggered")
}
