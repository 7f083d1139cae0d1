package domain

import (
	"strings"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// MaxCatalogAssets caps how many assets a catalog snapshot retains
const MaxCatalogAssets = 100

// Asset represents one tradable instrument as last reported by the price feed
type Asset struct {
	ID       string          `json:"asset_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price_usd"`
	IsCrypto bool            `json:"is_crypto"`
}

// InfoString renders the asset the way list-offerings shows it
func (a Asset) InfoString() string {
	var sb strings.Builder
	sb.WriteString("Asset ID: ")
	sb.WriteString(a.ID)
	sb.WriteString(LineSeparator)
	sb.WriteString("Name: ")
	sb.WriteString(a.Name)
	sb.WriteString(LineSeparator)
	sb.WriteString("Price: ")
	sb.WriteString(FormatAmount(a.Price))
	sb.WriteString(";")
	sb.WriteString(LineSeparator)
	return sb.String()
}

// Catalog holds the latest snapshot of tradable assets.
// Replace swaps the whole snapshot atomically, so readers on the dispatch loop
// never observe a partially updated catalog while the price feed refreshes it.
type Catalog struct {
	snapshot atomic.Pointer[[]Asset]
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	c := &Catalog{}
	empty := []Asset{}
	c.snapshot.Store(&empty)
	return c
}

// Replace keeps only crypto assets, truncates to MaxCatalogAssets and publishes the result
func (c *Catalog) Replace(assets []Asset) {
	next := make([]Asset, 0, min(len(assets), MaxCatalogAssets))
	for _, asset := range assets {
		if !asset.IsCrypto {
			continue
		}
		if len(next) == MaxCatalogAssets {
			break
		}
		next = append(next, asset)
	}
	c.snapshot.Store(&next)
}

// Find looks up an asset by id in the current snapshot
func (c *Catalog) Find(id string) (Asset, bool) {
	for _, asset := range *c.snapshot.Load() {
		if asset.ID == id {
			return asset, true
		}
	}
	return Asset{}, false
}

// Assets returns the current snapshot. Callers must not modify it.
func (c *Catalog) Assets() []Asset {
	return *c.snapshot.Load()
}

// Len returns the number of assets in the current snapshot
func (c *Catalog) Len() int {
	return len(*c.snapshot.Load())
}

// ListOfferings renders every asset in the snapshot as a human readable block
func (c *Catalog) ListOfferings() string {
	var sb strings.Builder
	sb.WriteString("Available offerings: ")
	sb.WriteString(LineSeparator)
	for _, asset := range *c.snapshot.Load() {
		sb.WriteString(asset.InfoString())
		sb.WriteString(LineSeparator)
	}
	return sb.String()
}
