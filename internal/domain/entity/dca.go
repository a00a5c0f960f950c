package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Interval is the purchase cadence of a DCA plan
type Interval string

const (
	IntervalDaily   Interval = "daily"
	IntervalWeekly  Interval = "weekly"
	IntervalMonthly Interval = "monthly"
)

// ParseInterval converts user input into an Interval. Empty input means weekly.
func ParseInterval(s string) (Interval, error) {
	switch Interval(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return IntervalWeekly, nil
	case IntervalDaily:
		return IntervalDaily, nil
	case IntervalWeekly:
		return IntervalWeekly, nil
	case IntervalMonthly:
		return IntervalMonthly, nil
	default:
		return "", fmt.Errorf("unknown interval %q", s)
	}
}

// ChartData is the chart-ready payload handed to the presentation layer.
// Labels and Values always have the same length.
type ChartData struct {
	Labels []string          `json:"labels"`
	Values []decimal.Decimal `json:"values"`
}

// DCASimulation is the outcome of a simulated dollar-cost-averaging plan, valued in EUR
type DCASimulation struct {
	Symbol        string          `json:"symbol"`
	Interval      Interval        `json:"interval"`
	Amount        decimal.Decimal `json:"amount"`
	Rate          decimal.Decimal `json:"rate"`
	Purchases     int             `json:"purchases"`
	TotalInvested decimal.Decimal `json:"total_invested"`
	Units         decimal.Decimal `json:"units"`
	FinalValue    decimal.Decimal `json:"final_value"`
	Chart         ChartData       `json:"chart"`
}
