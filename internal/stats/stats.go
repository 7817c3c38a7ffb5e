// Package stats projects read-only summaries over register counters. Rates
// are always recomputed from summed numerators and denominators, never
// averaged per register.
package stats

import "github.com/patrick-gordon/umbra-registers/internal/domain"

// Summary is one register's (or an aggregated scope's) derived view.
type Summary struct {
	domain.RegisterStats
	TheftRate float64 `json:"theftRate"`
	AvgTicket float64 `json:"avgTicket"`
}

// Summarize derives rates for a single counter set.
func Summarize(s domain.RegisterStats) Summary {
	out := Summary{RegisterStats: s}
	if s.TotalTransactions > 0 {
		out.TheftRate = float64(s.StolenTransactions) / float64(s.TotalTransactions)
	}
	if s.PaidTransactions > 0 {
		out.AvgTicket = s.TotalSales / float64(s.PaidTransactions)
	}
	return out
}

// Aggregate sums every counter across the scope before deriving rates.
func Aggregate(all []domain.RegisterStats) Summary {
	var sum domain.RegisterStats
	for _, s := range all {
		sum.TotalSales += s.TotalSales
		sum.TotalTransactions += s.TotalTransactions
		sum.PaidTransactions += s.PaidTransactions
		sum.StolenTransactions += s.StolenTransactions
		sum.StealAttempts += s.StealAttempts
		sum.BlockedStealAttempts += s.BlockedStealAttempts
		sum.ItemsSold += s.ItemsSold
		sum.ItemsStolen += s.ItemsStolen
		if s.LastTransactionAt.After(sum.LastTransactionAt) {
			sum.LastTransactionAt = s.LastTransactionAt
			sum.LastPaidTotal = s.LastPaidTotal
		}
	}
	return Summarize(sum)
}
