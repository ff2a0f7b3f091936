package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cargodesk/cargodesk/internal/config"
	"github.com/cargodesk/cargodesk/internal/costing/model"
)

// ErrNoRates is returned when no rates have been fetched yet.
var ErrNoRates = fmt.Errorf("no exchange rates cached, refresh first")

// trackedCurrencies are the currencies estimates can be invoiced in, besides
// the ZAR base.
var trackedCurrencies = []model.Currency{model.CurrencyUSD, model.CurrencyEUR}

// ExchangeRateService fetches indicative rates from the external feed and
// caches them in Postgres. The cached rates pre-fill the ROE fields on new
// estimates; they are never applied silently to existing ones.
type ExchangeRateService struct {
	db     *gorm.DB
	cfg    config.ExchangeRateConfig
	client *http.Client
}

func NewExchangeRateService(db *gorm.DB, cfg config.ExchangeRateConfig) *ExchangeRateService {
	return &ExchangeRateService{
		db:  db,
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Current returns the cached rates.
func (s *ExchangeRateService) Current(ctx context.Context) ([]model.ExchangeRate, error) {
	var rates []model.ExchangeRate
	if err := s.db.WithContext(ctx).Order("currency ASC").Find(&rates).Error; err != nil {
		return nil, fmt.Errorf("failed to load exchange rates: %w", err)
	}
	if len(rates) == 0 {
		return nil, ErrNoRates
	}
	return rates, nil
}

// feedResponse is the shape of the open.er-api.com payload. Rates are quoted
// with ZAR as base, so the ZAR value of one foreign unit is the reciprocal.
type feedResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// Refresh fetches the feed and upserts the tracked currencies.
func (s *ExchangeRateService) Refresh(ctx context.Context) ([]model.ExchangeRate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.FeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate feed request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate feed returned status %d", resp.StatusCode)
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode rate feed response: %w", err)
	}
	if feed.Result != "success" {
		return nil, fmt.Errorf("rate feed reported result %q", feed.Result)
	}

	now := time.Now().UTC()
	rates := make([]model.ExchangeRate, 0, len(trackedCurrencies))
	for _, currency := range trackedCurrencies {
		quoted, ok := feed.Rates[string(currency)]
		if !ok || quoted <= 0 {
			return nil, fmt.Errorf("rate feed is missing a usable %s rate", currency)
		}
		rates = append(rates, model.ExchangeRate{
			Currency:  currency,
			Rate:      1 / quoted,
			FetchedAt: now,
		})
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "currency"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "fetched_at"}),
	}).Create(&rates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to store exchange rates: %w", err)
	}
	return rates, nil
}
