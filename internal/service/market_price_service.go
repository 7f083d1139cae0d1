package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cryptowallet/internal/domain"
)

// DefaultCoinAPIURL is the CoinAPI asset listing endpoint
const DefaultCoinAPIURL = "https://rest.coinapi.io/v1/assets/"

// coinAPIAsset is one entry of the CoinAPI /v1/assets response
type coinAPIAsset struct {
	AssetID      string          `json:"asset_id"`
	Name         string          `json:"name"`
	TypeIsCrypto int             `json:"type_is_crypto"`
	PriceUSD     decimal.Decimal `json:"price_usd"`
}

// MarketPriceService fetches asset listings and prices from CoinAPI
type MarketPriceService struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewMarketPriceService creates a new MarketPriceService
// baseURL defaults to DefaultCoinAPIURL if empty
func NewMarketPriceService(baseURL, apiKey string) *MarketPriceService {
	if baseURL == "" {
		baseURL = DefaultCoinAPIURL
	}
	return &MarketPriceService{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// FetchAssets fetches every listed asset with its current USD price
func (s *MarketPriceService) FetchAssets(ctx context.Context) ([]domain.Asset, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("CoinAPI key is not configured")
	}

	url := fmt.Sprintf("%s/APIKEY-%s", s.baseURL, s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assets from CoinAPI: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("CoinAPI error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	// Decode response directly from stream, the listing is large
	var listing []coinAPIAsset
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	assets := make([]domain.Asset, 0, len(listing))
	for _, item := range listing {
		if item.AssetID == "" {
			continue
		}
		assets = append(assets, domain.Asset{
			ID:       item.AssetID,
			Name:     item.Name,
			Price:    item.PriceUSD,
			IsCrypto: item.TypeIsCrypto == 1,
		})
	}

	return assets, nil
}
