package eodhd

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// expenseRatioPaths are the places EODHD hides a fund's net expense ratio,
// depending on the fund's kind.
var expenseRatioPaths = []string{
	"$.ETF_Data.NetExpenseRatio",
	"$.MutualFund_Data.Expense_Ratio",
}

// ExpenseRatio fetches the annual expense ratio of a fund from the EODHD
// fundamentals endpoint, as a fraction (0.0009 for 9 basis points).
func (c *Client) ExpenseRatio(ctx context.Context, ticker string) (float64, error) {
	symbol := ticker
	if !hasExchangeSuffix(symbol) {
		symbol = symbol + "." + DefaultExchange
	}
	addr := fmt.Sprintf("https://eodhd.com/api/fundamentals/%s?fmt=json&api_token=%s", symbol, c.apiKey)

	var jobj any
	if err := jwget(ctx, c.client, addr, &jobj); err != nil {
		return 0, fmt.Errorf("fetching fundamentals for %s: %w", ticker, err)
	}
	return pluckExpenseRatio(jobj, ticker)
}

// ExpenseRatios fetches the expense ratios of several funds, skipping
// tickers the API has no fundamentals for.
func (c *Client) ExpenseRatios(ctx context.Context, tickers []string) (map[string]float64, error) {
	ratios := make(map[string]float64, len(tickers))
	for _, ticker := range tickers {
		ratio, err := c.ExpenseRatio(ctx, ticker)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("no expense ratio for %s (skipped): %v", ticker, err)
			continue
		}
		ratios[ticker] = ratio
	}
	return ratios, nil
}

// pluckExpenseRatio walks the fundamentals document with every known path
// until one yields a usable number.
func pluckExpenseRatio(jobj any, ticker string) (float64, error) {
	for _, path := range expenseRatioPaths {
		jval, err := jsonpath.Get(path, jobj)
		if err != nil {
			continue
		}
		// because jsonpath is never clear about whether it returns a list of 1 answer, or a single answer:
		// by this call I keep the first one if any
		if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
			jval = jlist[0]
		}
		switch v := jval.(type) {
		case float64:
			return v, nil
		case string:
			// sometimes, this weird API returns the value as a string
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			val, err := strconv.ParseFloat(s, 64)
			if err != nil {
				continue
			}
			return val, nil
		}
	}
	return 0, fmt.Errorf("no expense ratio in fundamentals for %q", ticker)
}
