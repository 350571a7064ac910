package jobs

import (
	"context"
	"log"
	"time"

	"swap-router.backend/internal/routing"
)

// GraphRefreshJob rebuilds the route graph on a fixed period so provider
// catalog changes (new pools, delisted assets) flow into routing without a
// restart.
type GraphRefreshJob struct {
	graph    *routing.Graph
	interval time.Duration
	stop     chan struct{}
}

func NewGraphRefreshJob(graph *routing.Graph) *GraphRefreshJob {
	return &GraphRefreshJob{
		graph:    graph,
		interval: 5 * time.Minute,
		stop:     make(chan struct{}),
	}
}

func (j *GraphRefreshJob) Start(ctx context.Context) {
	log.Println("🕐 Starting route graph refresh job...")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Route graph refresh job stopped (context cancelled)")
			return
		case <-j.stop:
			log.Println("⏹️ Route graph refresh job stopped")
			return
		case <-ticker.C:
			stats := j.graph.Rebuild(ctx)
			log.Printf("🔄 Route graph refreshed: %d nodes, %d edges", stats.Nodes, stats.Edges)
		}
	}
}

func (j *GraphRefreshJob) Stop() {
	close(j.stop)
}
