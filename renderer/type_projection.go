package renderer

import (
	"github.com/etnz/attribution"
	"github.com/etnz/attribution/montecarlo"
)

// Projection is the flattened view of a Monte Carlo projection.
type Projection struct {
	Years int    `json:"years"`
	Paths int    `json:"paths"`
	Tails string `json:"tails"`

	Contributions attribution.Money `json:"contributions"`
	Mean          attribution.Money `json:"mean"`
	Median        attribution.Money `json:"median"`

	Outcomes   []OutcomeRow   `json:"outcomes"`
	Milestones []MilestoneRow `json:"milestones"`

	Positive            attribution.Percent `json:"positive"`
	BeatContributions   attribution.Percent `json:"beatContributions"`
	DoubleContributions attribution.Percent `json:"doubleContributions"`
}

// OutcomeRow is one percentile of the final balance distribution.
type OutcomeRow struct {
	Percentile int               `json:"percentile"`
	Balance    attribution.Money `json:"balance"`
}

// MilestoneRow is the projected balance band at the end of one year.
type MilestoneRow struct {
	Year int               `json:"year"`
	Low  attribution.Money `json:"low"`  // 10th percentile
	Mid  attribution.Money `json:"mid"`  // median
	High attribution.Money `json:"high"` // 90th percentile
}

// NewProjection flattens a Monte Carlo projection into its renderable
// view. Balances are stamped with the reporting currency.
func NewProjection(cfg montecarlo.Config, proj *montecarlo.Projection, currency string) *Projection {
	money := func(v float64) attribution.Money { return attribution.M(v, currency) }

	p := &Projection{
		Years:               cfg.Years,
		Paths:               cfg.Paths,
		Tails:               cfg.Tails.String(),
		Contributions:       money(proj.Contributions),
		Mean:                money(proj.FinalBalances.Mean),
		Median:              money(proj.FinalBalances.Median),
		Positive:            attribution.Percent(100 * proj.FinalBalances.Positive),
		BeatContributions:   attribution.Percent(100 * proj.FinalBalances.BeatContributions),
		DoubleContributions: attribution.Percent(100 * proj.FinalBalances.DoubleContributions),
	}
	if p.Paths <= 0 {
		p.Paths = 10000 // Run's own default
	}

	for _, band := range []int{10, 20, 50, 80, 90} {
		if balance, ok := proj.FinalBalances.Percentiles[band]; ok {
			p.Outcomes = append(p.Outcomes, OutcomeRow{Percentile: band, Balance: money(balance)})
		}
	}

	for year := 1; year <= cfg.Years; year++ {
		m := year*12 - 1
		if m >= proj.Months {
			break
		}
		p.Milestones = append(p.Milestones, MilestoneRow{
			Year: year,
			Low:  money(proj.Bands[10][m]),
			Mid:  money(proj.Bands[50][m]),
			High: money(proj.Bands[90][m]),
		})
	}
	return p
}
