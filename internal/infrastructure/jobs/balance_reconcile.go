package jobs

import (
	"context"
	"log"
	"time"

	"chain-comics.backend/internal/domain/repositories"
	"chain-comics.backend/pkg/metrics"
)

// BalanceReconcileJob periodically recomputes cached balances from the
// ledger. The guarded ledger writes keep the cache correct under normal
// operation; this job repairs drift after manual database surgery or bugs
// and reports every repair so drift never goes unnoticed.
type BalanceReconcileJob struct {
	accountRepo repositories.AccountRepository
	ledgerRepo  repositories.LedgerRepository
	interval    time.Duration
	stop        chan struct{}
}

func NewBalanceReconcileJob(
	accountRepo repositories.AccountRepository,
	ledgerRepo repositories.LedgerRepository,
	interval time.Duration,
) *BalanceReconcileJob {
	return &BalanceReconcileJob{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		interval:    interval,
		stop:        make(chan struct{}),
	}
}

func (j *BalanceReconcileJob) Start(ctx context.Context) {
	log.Println("🕐 Starting balance reconcile job...")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Balance reconcile job stopped (context cancelled)")
			return
		case <-j.stop:
			log.Println("⏹️ Balance reconcile job stopped")
			return
		case <-ticker.C:
			j.reconcile(ctx)
		}
	}
}

func (j *BalanceReconcileJob) Stop() {
	close(j.stop)
}

func (j *BalanceReconcileJob) reconcile(ctx context.Context) {
	ids, err := j.ledgerRepo.ListAccountIDs(ctx)
	if err != nil {
		log.Printf("❌ Error listing accounts for reconcile: %v", err)
		return
	}

	repaired := 0
	for _, id := range ids {
		cached, err := j.ledgerRepo.BalanceOf(ctx, id)
		if err != nil {
			log.Printf("❌ Error reading cached balance for %s: %v", id, err)
			continue
		}
		actual, err := j.ledgerRepo.SumConfirmed(ctx, id)
		if err != nil {
			log.Printf("❌ Error summing ledger for %s: %v", id, err)
			continue
		}
		if cached == actual {
			continue
		}

		log.Printf("⚠️ Balance drift for account %s: cached=%d ledger=%d, repairing", id, cached, actual)
		if _, err := j.accountRepo.RecomputeBalance(ctx, id); err != nil {
			log.Printf("❌ Error repairing balance for %s: %v", id, err)
			continue
		}
		metrics.BalanceDriftRepairs.Inc()
		repaired++
	}

	if repaired > 0 {
		log.Printf("✅ Repaired %d drifted balances", repaired)
	}
}
