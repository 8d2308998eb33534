package rewards

import "fmt"

// BasePayout is the balance a period starts at. It matches ledger.BasePoints.
const BasePayout = 100

// Payout is the summary shown above the history.
type Payout struct {
	Balance int
	// Earned is true once the balance reaches the base.
	Earned bool
	// Shekels is the amount paid out: one per point once earned.
	Shekels int
	// Bonus is the part of the payout above the base.
	Bonus int
	// Progress is the balance clamped to [0, 100], for a progress bar.
	Progress int
	Message  string
}

// Summarize derives the payout summary from a balance.
func Summarize(balance int) Payout {
	p := Payout{Balance: balance, Progress: min(100, max(0, balance))}
	if balance >= BasePayout {
		p.Earned = true
		p.Shekels = balance
		p.Bonus = balance - BasePayout
		p.Message = fmt.Sprintf("%d shekels (%d base + %d bonus)", balance, BasePayout, p.Bonus)
		return p
	}
	p.Message = "Keep collecting points!"
	return p
}
