package domain

import "github.com/shopspring/decimal"

type LineOutcome string

const (
	LineApplied LineOutcome = "applied"
	LineSkipped LineOutcome = "skipped"
)

type SkipReason string

const (
	SkipShortage SkipReason = "shortage"
	SkipVanished SkipReason = "vanished"
)

// LineResult is the outcome of one cart line within a checkout batch.
type LineResult struct {
	Line        CartLine
	Outcome     LineOutcome
	Reason      SkipReason
	ProductName string
	FarmerID    uint
	Available   int
	OrderID     uint64
	TotalPrice  decimal.Decimal
}

func (r LineResult) Applied() bool {
	return r.Outcome == LineApplied
}

// CheckoutReport collects every line result of a committed checkout.
type CheckoutReport struct {
	Results []LineResult
	Total   decimal.Decimal
}

func (r CheckoutReport) AppliedCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Applied() {
			n++
		}
	}
	return n
}

func (r CheckoutReport) Shortages() []LineResult {
	var out []LineResult
	for _, res := range r.Results {
		if res.Outcome == LineSkipped && res.Reason == SkipShortage {
			out = append(out, res)
		}
	}
	return out
}

// RemainingCart keeps only shortage lines, so the customer can retry them.
// Applied and vanished lines leave the cart.
func (r CheckoutReport) RemainingCart() Cart {
	var cart Cart
	for _, res := range r.Shortages() {
		cart.Lines = append(cart.Lines, res.Line)
	}
	return cart
}
