// Package montecarlo projects a portfolio's future balance by simulating
// thousands of return paths. Monthly returns are drawn from a normal
// distribution or, to model the fat tails of real markets, from a scaled
// Student's t distribution.
package montecarlo

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Tails selects the shape of the monthly return distribution.
type Tails int

const (
	// NormalTails draws from a plain normal distribution.
	NormalTails Tails = iota
	// FatTails draws from a Student's t with 5 degrees of freedom.
	FatTails
	// ExtremeTails draws from a Student's t with 3 degrees of freedom.
	ExtremeTails
)

func (t Tails) String() string {
	switch t {
	case NormalTails:
		return "normal"
	case FatTails:
		return "fat"
	case ExtremeTails:
		return "extreme"
	default:
		return "unknown"
	}
}

// ParseTails maps a CLI label onto a Tails value.
func ParseTails(s string) (Tails, error) {
	switch s {
	case "normal":
		return NormalTails, nil
	case "fat":
		return FatTails, nil
	case "extreme":
		return ExtremeTails, nil
	default:
		return NormalTails, fmt.Errorf("unknown tails %q, want normal, fat or extreme", s)
	}
}

// percentileBands are the trajectory bands reported per month.
var percentileBands = []int{10, 20, 50, 80, 90}

// Config parameterizes one projection.
type Config struct {
	InitialBalance      float64
	MonthlyContribution float64
	Years               int
	AnnualReturn        float64 // expected annual return, 0.07 for 7%
	AnnualVolatility    float64 // annual standard deviation, 0.15 for 15%
	Paths               int     // number of simulated paths, default 10000
	Tails               Tails
	Seed                uint64 // fixed seed makes the projection reproducible
}

// Projection is the statistical summary of all simulated paths.
type Projection struct {
	Months        int
	Contributions float64           // initial balance plus every monthly contribution
	Bands         map[int][]float64 // per percentile, the balance trajectory by month
	FinalBalances FinalStats
}

// FinalStats summarizes the distribution of final balances.
type FinalStats struct {
	Mean        float64
	Median      float64
	Percentiles map[int]float64
	// Success rates over all paths.
	Positive            float64 // ended above zero
	BeatContributions   float64 // ended above the money put in
	DoubleContributions float64 // ended above twice the money put in
}

// sampler draws one monthly return.
type sampler interface {
	Rand() float64
}

// newSampler builds the monthly return distribution from annual figures.
// The expected return converts geometrically, the volatility by the square
// root of time. Student's t draws are rescaled by sqrt((nu-2)/nu) so the
// fat tails do not inflate the target volatility.
func newSampler(cfg Config, src rand.Source) sampler {
	monthlyReturn := math.Pow(1+cfg.AnnualReturn, 1.0/12) - 1
	monthlyVol := cfg.AnnualVolatility / math.Sqrt(12)

	var nu float64
	switch cfg.Tails {
	case FatTails:
		nu = 5
	case ExtremeTails:
		nu = 3
	default:
		return distuv.Normal{Mu: monthlyReturn, Sigma: monthlyVol, Src: src}
	}
	return distuv.StudentsT{
		Mu:    monthlyReturn,
		Sigma: monthlyVol * math.Sqrt((nu-2)/nu),
		Nu:    nu,
		Src:   src,
	}
}

// Run simulates every path and reduces them to percentile bands and
// success rates.
func Run(cfg Config) (*Projection, error) {
	if cfg.Years < 1 {
		return nil, errors.New("projection needs at least one year")
	}
	if cfg.AnnualVolatility < 0 {
		return nil, errors.New("volatility cannot be negative")
	}
	if cfg.Paths <= 0 {
		cfg.Paths = 10000
	}

	months := cfg.Years * 12
	draw := newSampler(cfg, rand.NewPCG(cfg.Seed, cfg.Seed+1))

	// balances[m] holds every path's balance after month m+1.
	balances := make([][]float64, months)
	for m := range balances {
		balances[m] = make([]float64, cfg.Paths)
	}
	for p := 0; p < cfg.Paths; p++ {
		balance := cfg.InitialBalance
		for m := 0; m < months; m++ {
			balance = (balance + cfg.MonthlyContribution) * (1 + draw.Rand())
			balances[m][p] = balance
		}
	}

	proj := &Projection{
		Months:        months,
		Contributions: cfg.InitialBalance + cfg.MonthlyContribution*float64(months),
		Bands:         make(map[int][]float64, len(percentileBands)),
	}
	for _, band := range percentileBands {
		proj.Bands[band] = make([]float64, months)
	}
	sorted := make([]float64, cfg.Paths)
	for m := 0; m < months; m++ {
		copy(sorted, balances[m])
		slices.Sort(sorted)
		for _, band := range percentileBands {
			proj.Bands[band][m] = stat.Quantile(float64(band)/100, stat.Empirical, sorted, nil)
		}
	}

	final := balances[months-1]
	copy(sorted, final)
	slices.Sort(sorted)
	stats := FinalStats{
		Mean:        stat.Mean(final, nil),
		Median:      stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Percentiles: make(map[int]float64, len(percentileBands)),
	}
	for _, band := range percentileBands {
		stats.Percentiles[band] = stat.Quantile(float64(band)/100, stat.Empirical, sorted, nil)
	}
	for _, b := range final {
		if b > 0 {
			stats.Positive++
		}
		if b > proj.Contributions {
			stats.BeatContributions++
		}
		if b > 2*proj.Contributions {
			stats.DoubleContributions++
		}
	}
	n := float64(cfg.Paths)
	stats.Positive /= n
	stats.BeatContributions /= n
	stats.DoubleContributions /= n
	proj.FinalBalances = stats

	return proj, nil
}
