package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// ExchangeSymbol describes one instrument from the exchangeInfo endpoint.
type ExchangeSymbol struct {
	Symbol     string `json:"symbol"`
	Status     string `json:"status"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
}

// exchangeInfo is the relevant slice of the /api/v3/exchangeInfo response.
type exchangeInfo struct {
	Symbols []ExchangeSymbol `json:"symbols"`
}

// InstrumentClient resolves instrument metadata over the exchange REST API.
type InstrumentClient struct {
	client *resty.Client
}

// NewInstrumentClient creates a REST client with retries against the
// given base URL.
func NewInstrumentClient(baseURL string) *InstrumentClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second)

	return &InstrumentClient{client: client}
}

// FetchSymbols queries exchangeInfo for the given symbols.
func (c *InstrumentClient) FetchSymbols(ctx context.Context, symbols []string) ([]ExchangeSymbol, error) {
	// The endpoint expects the filter as a JSON array query parameter.
	filter, err := json.Marshal(symbols)
	if err != nil {
		return nil, fmt.Errorf("failed to encode symbol filter: %w", err)
	}

	var info exchangeInfo
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("symbols", string(filter)).
		SetResult(&info).
		Get("/api/v3/exchangeInfo")
	if err != nil {
		return nil, fmt.Errorf("exchangeInfo request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("exchangeInfo returned status %d: %s", resp.StatusCode(), resp.String())
	}

	return info.Symbols, nil
}

// TradableSymbols fetches the requested symbols and splits them into the
// ones currently trading and the ones the exchange rejected or halted.
func (c *InstrumentClient) TradableSymbols(ctx context.Context, requested []string) ([]string, []string, error) {
	listed, err := c.FetchSymbols(ctx, requested)
	if err != nil {
		return nil, nil, err
	}

	trading := make(map[string]bool, len(listed))
	for _, s := range listed {
		if s.Status == "TRADING" {
			trading[s.Symbol] = true
		}
	}

	var tradable, unknown []string
	for _, s := range requested {
		if trading[s] {
			tradable = append(tradable, s)
		} else {
			unknown = append(unknown, s)
		}
	}

	slog.Info("instruments_resolved",
		"requested", len(requested),
		"tradable", len(tradable),
		"unknown", len(unknown),
	)

	return tradable, unknown, nil
}
