package attribution

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestInternalRateLumpSum(t *testing.T) {
	// $10,000 grows to $11,000 over exactly one 365-day year.
	start := NewDate(2021, time.January, 1)
	end := NewDate(2022, time.January, 1)

	rate, err := InternalRate(start, 10000, nil, end, 11000)
	if err != nil {
		t.Fatalf("InternalRate: %v", err)
	}
	if math.Abs(rate-0.10) > 1e-4 {
		t.Errorf("rate = %v, want 0.10", rate)
	}
}

func TestInternalRateWithContribution(t *testing.T) {
	// 1000 in at t0, another 1000 in one year later, 2310 out after two
	// years. With x = 1/(1+r): 2310x^2 - 1000x - 1000 = 0, whose positive
	// root is x = 10/11, so r = 10% exactly.
	start := NewDate(2021, time.January, 1)
	end := NewDate(2023, time.January, 1)
	flows := []Cashflow{
		{Date: NewDate(2022, time.January, 1), Amount: USD(-1000)},
	}

	rate, err := InternalRate(start, 1000, flows, end, 2310)
	if err != nil {
		t.Fatalf("InternalRate: %v", err)
	}
	if math.Abs(rate-0.10) > 0.0005 {
		t.Errorf("rate = %v, want 0.10 within 0.05pp", rate)
	}
}

func TestInternalRateMonthlyContributions(t *testing.T) {
	// $100,000 at the start, $1,000 added at each of the twelve month-ends,
	// $113,500 after one 365-day year. The reference rate of 1.4212% was
	// solved independently with a high-precision bisection over the same
	// dated-flow NPV.
	start := NewDate(2025, time.January, 1)
	end := NewDate(2026, time.January, 1)
	var flows []Cashflow
	for d := range (Range{From: start, To: NewDate(2025, time.December, 31)}).MonthEnds() {
		flows = append(flows, Cashflow{Date: d, Amount: USD(-1000)})
	}
	if len(flows) != 12 {
		t.Fatalf("built %d contributions, want 12", len(flows))
	}

	rate, err := InternalRate(start, 100000, flows, end, 113500)
	if err != nil {
		t.Fatalf("InternalRate: %v", err)
	}
	if math.Abs(rate-0.014212) > 0.0005 {
		t.Errorf("rate = %v, want 0.014212 within 0.05pp", rate)
	}
}

func TestInternalRateLoss(t *testing.T) {
	start := NewDate(2021, time.January, 1)
	end := NewDate(2022, time.January, 1)

	rate, err := InternalRate(start, 10000, nil, end, 8000)
	if err != nil {
		t.Fatalf("InternalRate: %v", err)
	}
	if math.Abs(rate-(-0.20)) > 1e-4 {
		t.Errorf("rate = %v, want -0.20", rate)
	}
}

func TestInternalRateDegenerate(t *testing.T) {
	start := NewDate(2021, time.January, 1)
	end := NewDate(2022, time.January, 1)

	// A zero start with no inflows never has a sign change.
	_, err := InternalRate(start, 0, nil, end, 1000)
	if !errors.Is(err, ErrDegenerateFlows) {
		t.Errorf("err = %v, want ErrDegenerateFlows", err)
	}
}

func TestModifiedDietz(t *testing.T) {
	// 1000 at the start, 100 deposited on day 182, 1210 at the end of a
	// 365-day year.
	start := NewDate(2021, time.January, 1)
	end := NewDate(2022, time.January, 1)
	flows := []Cashflow{
		{Date: NewDate(2021, time.July, 2), Amount: USD(-100)},
	}

	rate, err := ModifiedDietz(start, 1000, flows, end, 1210)
	if err != nil {
		t.Fatalf("ModifiedDietz: %v", err)
	}
	want := (1210.0 - 1000 - 100) / (1000 + 100*183.0/365.0)
	if math.Abs(rate-want) > 1e-9 {
		t.Errorf("rate = %v, want %v", rate, want)
	}
}

func TestModifiedDietzZeroCapital(t *testing.T) {
	start := NewDate(2021, time.January, 1)
	end := NewDate(2022, time.January, 1)

	if _, err := ModifiedDietz(start, 0, nil, end, 1000); err == nil {
		t.Error("want an error on zero average capital")
	}
}

func TestSimpleReturn(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		want       float64
	}{
		{"gain", 1000, 1100, 0.10},
		{"loss", 1000, 900, -0.10},
		{"zero start", 0, 1000, 0},
		// A margin-debit start keeps the plain arithmetic result.
		{"negative start", -1000, -900, -0.10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SimpleReturn(tc.start, tc.end); math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("SimpleReturn(%v, %v) = %v, want %v", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestAnnualize(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		years float64
		want  float64
	}{
		{"two years", 0.21, 2, 0.10},
		{"half year", 0.10, 0.5, 1.1*1.1 - 1},
		{"zero years", 0.10, 0, 0},
		{"total loss", -1, 1, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Annualize(tc.total, tc.years); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Annualize(%v, %v) = %v, want %v", tc.total, tc.years, got, tc.want)
			}
		})
	}
}

func TestXNPVAtSolution(t *testing.T) {
	flows := []datedFlow{
		{on: NewDate(2021, time.January, 1), amount: -1000},
		{on: NewDate(2022, time.January, 1), amount: 1100},
	}
	if got := xnpv(0.10, flows); math.Abs(got) > 1e-9 {
		t.Errorf("xnpv(0.10) = %v, want 0", got)
	}
}
