package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the credit core. Refund compensations should stay near zero;
// a climbing rate means unlock races are unusually frequent.
var (
	CreditsCredited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "comics_credits_credited_total",
		Help: "Credits added through verified on-chain purchases",
	})

	DuplicateSubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "comics_purchase_duplicate_submissions_total",
		Help: "Purchase proofs resolved idempotently against an existing credit",
	})

	ChapterUnlocks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "comics_chapter_unlocks_total",
		Help: "Chapters unlocked (new entitlements only)",
	})

	RefundCompensations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "comics_refund_compensations_total",
		Help: "Compensating refunds after a lost unlock race",
	})

	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "comics_auth_failures_total",
		Help: "Wallet authentication failures by reason",
	}, []string{"reason"})

	VerificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "comics_purchase_verification_failures_total",
		Help: "Purchase verification failures by reason",
	}, []string{"reason"})

	BalanceDriftRepairs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "comics_balance_drift_repairs_total",
		Help: "Cached balances repaired by the reconciliation job",
	})
)
