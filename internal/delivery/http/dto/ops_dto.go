package dto

import "cryptowallet/internal/domain"

// OfferingOutput represents a catalog asset in API responses
type OfferingOutput struct {
	ID    string `json:"asset_id"`
	Name  string `json:"name"`
	Price string `json:"price_usd"` // exact decimal text
}

// NewOfferingOutput converts a catalog asset
func NewOfferingOutput(a domain.Asset) OfferingOutput {
	return OfferingOutput{
		ID:    a.ID,
		Name:  a.Name,
		Price: a.Price.String(),
	}
}

// HealthOutput represents the ops health report
type HealthOutput struct {
	Status          string `json:"status"`
	Service         string `json:"service"`
	Timestamp       string `json:"timestamp"`
	Uptime          string `json:"uptime"`
	CatalogSize     int    `json:"catalog_size"`
	OpenConnections int64  `json:"open_connections"`
	ActiveSessions  int64  `json:"active_sessions"`
}
