package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	OpsHandler *OpsHandler
	Logger     *zap.Logger
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	// Middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			// health is polled
			return c.Request().URL.Path == "/health"
		},
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			config.Logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())

	// Health check
	e.GET("/health", config.OpsHandler.GetHealth)

	// API group
	api := e.Group("/api")

	offerings := api.Group("/offerings")
	{
		offerings.GET("", config.OpsHandler.GetOfferings)
		offerings.GET("/:id", config.OpsHandler.GetOffering)
		offerings.POST("/refresh", config.OpsHandler.TriggerRefresh)
	}
}

// NewServer builds an echo instance with all routes registered
func NewServer(config *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	SetupRoutes(e, config)
	return e
}
