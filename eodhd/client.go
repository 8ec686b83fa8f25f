// Package eodhd fetches market data from the EODHD API and serves it to the
// engine as monthly total returns. Responses are cached on disk with a daily
// expiry so repeated analyses stay within the API's request budget.
package eodhd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/etnz/attribution"
	"github.com/shopspring/decimal"
)

// DefaultExchange is the EODHD exchange suffix applied to bare symbols.
const DefaultExchange = "US"

// Client is a MarketData provider over the EODHD end-of-day API.
type Client struct {
	apiKey string
	client *http.Client
}

// New returns a client using the given API token.
func New(apiKey string) *Client {
	return &Client{apiKey: apiKey, client: newDailyCachingClient()}
}

// bar is one row of the EOD endpoint.
//
//	{
//		"date": "2024-02-13",
//		"open": 675.066,
//		"high": 684.219,
//		"low": 648.659,
//		"close": 668.445,
//		"adjusted_close": 67.705,
//		"volume": 0
//	}
type bar struct {
	Date          attribution.Date `json:"date"`
	AdjustedClose decimal.Decimal  `json:"adjusted_close"`
}

// MonthlyReturns implements attribution.MarketData by compounding daily
// adjusted closes into one return per calendar month. The fetch starts one
// month before the requested range so the first month has a prior close to
// grow from. A ticker that cannot be fetched fails the whole call; a month
// with no bars is simply absent from the table.
func (c *Client) MonthlyReturns(ctx context.Context, tickers []string, from, to attribution.Date) (attribution.ReturnTable, error) {
	table := attribution.ReturnTable{}
	for _, ticker := range tickers {
		bars, err := c.fetchBars(ctx, ticker, from.AddMonth(-1).StartOfMonth(), to)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", ticker, err)
		}
		for monthEnd, r := range monthlyFromBars(bars) {
			if !monthEnd.Before(from) && !monthEnd.After(to) {
				table.Set(ticker, monthEnd, r)
			}
		}
	}
	return table, nil
}

// fetchBars retrieves the daily bars for a ticker. Bare symbols get the
// default exchange suffix; symbols already carrying ".XX" pass through.
func (c *Client) fetchBars(ctx context.Context, ticker string, from, to attribution.Date) ([]bar, error) {
	symbol := ticker
	if !hasExchangeSuffix(symbol) {
		symbol = symbol + "." + DefaultExchange
	}
	// bounds are included in the response – the format is 'YYYY-MM-DD'.
	addr := fmt.Sprintf("https://eodhd.com/api/eod/%s?fmt=json&api_token=%s&from=%s&to=%s",
		symbol, c.apiKey, from, to)

	bars := make([]bar, 0)
	if err := jwget(ctx, c.client, addr, &bars); err != nil {
		return nil, err
	}
	return bars, nil
}

func hasExchangeSuffix(symbol string) bool {
	for i := len(symbol) - 1; i >= 0; i-- {
		if symbol[i] == '.' {
			return true
		}
	}
	return false
}

// monthlyFromBars reduces daily bars to monthly returns keyed by month-end.
// Each month's return is its last adjusted close over the previous month's
// last adjusted close, so the compounding carries dividends and splits.
func monthlyFromBars(bars []bar) map[attribution.Date]float64 {
	// Last close per calendar month, relying on the API's ascending order.
	lastClose := make(map[attribution.Date]float64)
	var months []attribution.Date
	for _, b := range bars {
		if b.AdjustedClose.IsZero() {
			continue
		}
		me := b.Date.EndOfMonth()
		if _, seen := lastClose[me]; !seen {
			months = append(months, me)
		}
		lastClose[me] = b.AdjustedClose.InexactFloat64()
	}

	returns := make(map[attribution.Date]float64, len(months))
	for i := 1; i < len(months); i++ {
		prev, cur := lastClose[months[i-1]], lastClose[months[i]]
		if prev > 0 {
			returns[months[i]] = cur/prev - 1
		}
	}
	return returns
}
