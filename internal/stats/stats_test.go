package stats

import (
	"testing"
	"time"

	"github.com/patrick-gordon/umbra-registers/internal/domain"
)

func TestSummarizeRates(t *testing.T) {
	s := Summarize(domain.RegisterStats{
		TotalSales:         100,
		TotalTransactions:  10,
		PaidTransactions:   8,
		StolenTransactions: 2,
	})
	if s.TheftRate != 0.2 {
		t.Errorf("theft rate = %v, want 0.2", s.TheftRate)
	}
	if s.AvgTicket != 12.5 {
		t.Errorf("avg ticket = %v, want 12.5", s.AvgTicket)
	}
}

func TestSummarizeZeroDenominators(t *testing.T) {
	s := Summarize(domain.RegisterStats{})
	if s.TheftRate != 0 || s.AvgTicket != 0 {
		t.Errorf("empty stats should derive zero rates, got %+v", s)
	}
}

func TestAggregateRecomputesFromSums(t *testing.T) {
	a := domain.RegisterStats{TotalTransactions: 10, StolenTransactions: 5, PaidTransactions: 5, TotalSales: 50}
	b := domain.RegisterStats{TotalTransactions: 90, StolenTransactions: 0, PaidTransactions: 90, TotalSales: 450}

	// averaging the per-register theft rates would give 0.25; the correct
	// scope-wide rate is 5/100
	got := Aggregate([]domain.RegisterStats{a, b})
	if got.TheftRate != 0.05 {
		t.Errorf("aggregate theft rate = %v, want 0.05", got.TheftRate)
	}
	if got.AvgTicket != 500.0/95.0 {
		t.Errorf("aggregate avg ticket = %v, want %v", got.AvgTicket, 500.0/95.0)
	}
	if got.TotalTransactions != 100 {
		t.Errorf("total transactions = %d, want 100", got.TotalTransactions)
	}
}

func TestAggregateKeepsLatestLastPaid(t *testing.T) {
	early := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)
	a := domain.RegisterStats{LastTransactionAt: early, LastPaidTotal: 10}
	b := domain.RegisterStats{LastTransactionAt: late, LastPaidTotal: 25}

	got := Aggregate([]domain.RegisterStats{a, b})
	if got.LastPaidTotal != 25 || !got.LastTransactionAt.Equal(late) {
		t.Errorf("expected latest register's last-paid snapshot, got %+v", got.RegisterStats)
	}
}
