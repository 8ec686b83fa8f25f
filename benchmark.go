package attribution

import (
	"sort"
	"strings"
)

// Benchmark proxy tickers. Liquid ETFs stand in for the asset classes a
// retail portfolio is made of.
const (
	BenchmarkLargeCap       = "SPY"
	BenchmarkMidCap         = "VO"
	BenchmarkSmallCap       = "VB"
	BenchmarkDevelopedExUS  = "VEA"
	BenchmarkEmergingMarket = "VWO"
	BenchmarkBond           = "BND"
	BenchmarkCash           = "BIL"
)

// benchmarkRule is one entry of the ordered matching table: the first rule
// whose predicate accepts the security names its benchmark.
type benchmarkRule struct {
	name      string
	matches   func(sec Security) bool
	benchmark string
}

func nameContains(words ...string) func(sec Security) bool {
	return func(sec Security) bool {
		name := strings.ToLower(sec.Name())
		for _, w := range words {
			if strings.Contains(name, w) {
				return true
			}
		}
		return false
	}
}

// benchmarkRules maps securities to proxies, most specific first. The
// keyword rules read the institution's display name because retail exports
// rarely carry a usable asset-class field.
var benchmarkRules = []benchmarkRule{
	{"cash equivalent", func(sec Security) bool { return sec.CashEquivalent() }, BenchmarkCash},
	{"bond by type", func(sec Security) bool { return sec.Type() == Bond }, BenchmarkBond},
	{"bond by name", nameContains("bond", "fixed income", "treasury", "aggregate"), BenchmarkBond},
	{"emerging markets", nameContains("emerging"), BenchmarkEmergingMarket},
	{"developed ex-us", nameContains("international", "developed", "eafe", "ex-us", "ex us"), BenchmarkDevelopedExUS},
	{"small cap", nameContains("small cap", "small-cap"), BenchmarkSmallCap},
	{"mid cap", nameContains("mid cap", "mid-cap"), BenchmarkMidCap},
	{"equity fallback", func(sec Security) bool {
		switch sec.Type() {
		case Equity, ETF, MutualFund:
			return true
		}
		return false
	}, BenchmarkLargeCap},
}

// ResolveBenchmark returns the benchmark proxy for a security. The
// per-ticker override table wins over every rule; the ultimate fallback is
// the large-cap proxy.
func ResolveBenchmark(sec Security, overrides map[string]string) string {
	if b, ok := overrides[sec.Ticker()]; ok && b != "" {
		return b
	}
	for _, rule := range benchmarkRules {
		if rule.matches(sec) {
			return rule.benchmark
		}
	}
	return BenchmarkLargeCap
}

// BenchmarkWeights maps the start-of-period positions onto benchmark
// proxies and returns each proxy's share of absolute position value, in
// percent. The weights sum to ~100 whenever any position has value.
func BenchmarkWeights(positions map[string]Position, securities *Securities, overrides map[string]string) map[string]Percent {
	values := make(map[string]float64)
	var total float64
	for id, p := range positions {
		sec, ok := securities.Get(id)
		if !ok {
			sec = NewSecurity(id, id, id, Other, false)
		}
		v := p.Value.AsFloat()
		if v < 0 {
			v = -v
		}
		values[ResolveBenchmark(sec, overrides)] += v
		total += v
	}

	weights := make(map[string]Percent, len(values))
	if total == 0 {
		return weights
	}
	for b, v := range values {
		weights[b] = Percent(100 * v / total)
	}
	return weights
}

// BenchmarkTickers returns the proxies named by the weights plus the cash
// proxy, sorted.
func BenchmarkTickers(weights map[string]Percent) []string {
	tickers := []string{BenchmarkCash}
	for b := range weights {
		if b != BenchmarkCash {
			tickers = append(tickers, b)
		}
	}
	sort.Strings(tickers)
	return tickers
}
