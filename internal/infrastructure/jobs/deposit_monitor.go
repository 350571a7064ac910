package jobs

import (
	"context"
	"log"
	"math/big"
	"time"

	"swap-router.backend/internal/domain/entities"
	"swap-router.backend/internal/infrastructure/indexer"
	"swap-router.backend/internal/usecases"
	"swap-router.backend/pkg/metrics"
)

// minConfirmations before a deposit counts.
const minConfirmations = 1

// depositTolerancePercent allows deposits slightly under the quoted amount
// (fee dust, wallet rounding).
const depositTolerancePercent = 1

// Notifier pushes quote updates to connected clients.
type Notifier interface {
	BroadcastSwapUpdate(quote *entities.SwapQuote)
}

// DepositMonitor scans watched deposit addresses on a fixed period and
// advances quotes whose deposits have landed. It also sweeps stale ACTIVE
// quotes into EXPIRED.
type DepositMonitor struct {
	quotes   *usecases.SwapQuoteUsecase
	lookup   *indexer.Dispatcher
	notifier Notifier
	interval time.Duration
	stop     chan struct{}
}

func NewDepositMonitor(quotes *usecases.SwapQuoteUsecase, lookup *indexer.Dispatcher, notifier Notifier) *DepositMonitor {
	return &DepositMonitor{
		quotes:   quotes,
		lookup:   lookup,
		notifier: notifier,
		interval: 30 * time.Second,
		stop:     make(chan struct{}),
	}
}

func (m *DepositMonitor) Start(ctx context.Context) {
	log.Println("🕐 Starting deposit monitor...")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Deposit monitor stopped (context cancelled)")
			return
		case <-m.stop:
			log.Println("⏹️ Deposit monitor stopped")
			return
		case <-ticker.C:
			m.scan(ctx)
		}
	}
}

func (m *DepositMonitor) Stop() {
	close(m.stop)
}

// scan is failure-tolerant: per-quote errors are logged and never abort the
// sweep. Detecting the same deposit twice is a no-op because the quote is no
// longer ACTIVE.
func (m *DepositMonitor) scan(ctx context.Context) {
	metrics.MonitorScans.Inc()

	if expired, err := m.quotes.ExpireStale(ctx); err != nil {
		log.Printf("❌ Error expiring stale quotes: %v", err)
		metrics.MonitorErrors.Inc()
	} else if expired > 0 {
		log.Printf("✅ Expired %d stale quotes", expired)
	}

	watched, err := m.quotes.ListToMonitor(ctx, 100)
	if err != nil {
		log.Printf("❌ Error listing quotes to monitor: %v", err)
		metrics.MonitorErrors.Inc()
		return
	}

	for _, quote := range watched {
		if quote.Status != entities.SwapQuoteStatusActive {
			continue
		}
		m.checkQuote(ctx, quote)
	}
}

func (m *DepositMonitor) checkQuote(ctx context.Context, quote *entities.SwapQuote) {
	minAmount, ok := minDepositAmount(quote.SellAmountBaseUnit)
	if !ok {
		log.Printf("❌ Quote %s has unparseable sell amount %q", quote.QuoteID, quote.SellAmountBaseUnit)
		metrics.MonitorErrors.Inc()
		return
	}

	deposit, found, err := m.lookup.FindDeposit(ctx, quote.SellAssetID.ChainID(), quote.DepositAddress, minAmount)
	if err != nil {
		log.Printf("❌ Deposit lookup failed for quote %s: %v", quote.QuoteID, err)
		metrics.MonitorErrors.Inc()
		return
	}
	if !found || deposit.Confirmations < minConfirmations {
		return
	}

	if err := m.quotes.MarkDepositReceived(ctx, quote.QuoteID, deposit.TxHash); err != nil {
		log.Printf("❌ Error marking deposit received for quote %s: %v", quote.QuoteID, err)
		metrics.MonitorErrors.Inc()
		return
	}
	metrics.MonitorDeposits.Inc()
	log.Printf("✅ Deposit detected for quote %s (tx %s)", quote.QuoteID, deposit.TxHash)

	if m.notifier != nil {
		quote.Status = entities.SwapQuoteStatusDepositReceived
		quote.DepositTxHash = deposit.TxHash
		m.notifier.BroadcastSwapUpdate(quote)
	}
}

// minDepositAmount applies the tolerance: amount * (100 - tolerance) / 100.
func minDepositAmount(sellAmountBaseUnit string) (*big.Int, bool) {
	amount, ok := new(big.Int).SetString(sellAmountBaseUnit, 10)
	if !ok || amount.Sign() <= 0 {
		return nil, false
	}
	scaled := new(big.Int).Mul(amount, big.NewInt(100-depositTolerancePercent))
	return scaled.Quo(scaled, big.NewInt(100)), true
}
