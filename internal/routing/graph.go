package routing

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"swap-router.backend/internal/domain/entities"
	"swap-router.backend/pkg/logger"
	"swap-router.backend/pkg/metrics"
)

// Catalog publishes a provider's current set of supported ordered pairs.
type Catalog interface {
	Provider() entities.Provider
	ListPairs(ctx context.Context) ([]entities.RouteEdge, error)
}

// GraphStats describes the last completed build.
type GraphStats struct {
	Nodes           int                          `json:"nodes"`
	Edges           int                          `json:"edges"`
	CrossChainEdges int                          `json:"crossChainEdges"`
	EdgesByProvider map[entities.Provider]int    `json:"edgesByProvider"`
	FailedProviders []entities.Provider          `json:"failedProviders,omitempty"`
	BuildDuration   time.Duration                `json:"buildDurationMs"`
	LastBuiltAt     time.Time                    `json:"lastBuiltAt"`
}

// graphData is one immutable snapshot. Readers hold the pointer for the
// duration of a request; a rebuild publishes a fresh snapshot atomically.
type graphData struct {
	nodes     map[entities.AssetID]struct{}
	adjacency map[entities.AssetID][]entities.RouteEdge
	incoming  map[entities.AssetID]int
	edgeKeys  map[string]struct{}
	stats     GraphStats
}

func newGraphData() *graphData {
	return &graphData{
		nodes:     make(map[entities.AssetID]struct{}),
		adjacency: make(map[entities.AssetID][]entities.RouteEdge),
		incoming:  make(map[entities.AssetID]int),
		edgeKeys:  make(map[string]struct{}),
		stats:     GraphStats{EdgesByProvider: make(map[entities.Provider]int)},
	}
}

// addEdge inserts the edge unless the same (sell, buy, provider) triple is
// already present. Endpoint nodes are created as needed.
func (g *graphData) addEdge(e entities.RouteEdge) {
	if _, dup := g.edgeKeys[e.Key()]; dup {
		return
	}
	g.edgeKeys[e.Key()] = struct{}{}
	g.nodes[e.SellAssetID] = struct{}{}
	g.nodes[e.BuyAssetID] = struct{}{}
	g.adjacency[e.SellAssetID] = append(g.adjacency[e.SellAssetID], e)
	g.incoming[e.BuyAssetID]++
	g.stats.Edges++
	g.stats.EdgesByProvider[e.Provider]++
	if e.IsCrossChain {
		g.stats.CrossChainEdges++
	}
}

// Graph is the directed asset multigraph. The snapshot pointer is swapped
// atomically on rebuild so readers never observe a half-built graph.
type Graph struct {
	catalogs []Catalog
	cache    *Cache
	data     atomic.Pointer[graphData]
}

// NewGraph creates an empty graph over the given catalogs. The graph stays
// empty (and routable as such) until the first Rebuild.
func NewGraph(catalogs []Catalog, cache *Cache) *Graph {
	g := &Graph{catalogs: catalogs, cache: cache}
	g.data.Store(newGraphData())
	return g
}

// Rebuild fetches every catalog concurrently, assembles a fresh graph off
// to the side and swaps it in. Individual catalog failures are isolated:
// the rebuild keeps whatever the other providers returned. The route cache
// is cleared on swap.
func (g *Graph) Rebuild(ctx context.Context) GraphStats {
	start := time.Now()

	results := make([][]entities.RouteEdge, len(g.catalogs))
	failures := make([]entities.Provider, 0)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i, cat := range g.catalogs {
		wg.Add(1)
		go func(i int, cat Catalog) {
			defer wg.Done()
			edges, err := cat.ListPairs(ctx)
			if err != nil {
				logger.Warn(ctx, "catalog fetch failed",
					zap.String("provider", string(cat.Provider())),
					zap.Error(err))
				metrics.GraphBuildFailures.Inc()
				mu.Lock()
				failures = append(failures, cat.Provider())
				mu.Unlock()
				return
			}
			results[i] = edges
		}(i, cat)
	}
	wg.Wait()

	// Merge sequentially in catalog registration order so edge insertion
	// order, and therefore pathfinder tie-breaking, is deterministic.
	fresh := newGraphData()
	for _, edges := range results {
		for _, e := range edges {
			fresh.addEdge(e)
		}
	}
	fresh.stats.Nodes = len(fresh.nodes)
	fresh.stats.FailedProviders = failures
	fresh.stats.BuildDuration = time.Since(start)
	fresh.stats.LastBuiltAt = time.Now()

	g.data.Store(fresh)
	if g.cache != nil {
		g.cache.Clear()
	}

	for p, n := range fresh.stats.EdgesByProvider {
		metrics.GraphEdges.WithLabelValues(string(p)).Set(float64(n))
	}
	metrics.GraphBuildDuration.Observe(fresh.stats.BuildDuration.Seconds())

	logger.Info(ctx, "route graph rebuilt",
		zap.Int("nodes", fresh.stats.Nodes),
		zap.Int("edges", fresh.stats.Edges),
		zap.Int("cross_chain_edges", fresh.stats.CrossChainEdges),
		zap.Duration("duration", fresh.stats.BuildDuration))

	return fresh.stats
}

func (g *Graph) snapshot() *graphData {
	return g.data.Load()
}

// HasAsset reports whether the asset appears in any edge.
func (g *Graph) HasAsset(a entities.AssetID) bool {
	_, ok := g.snapshot().nodes[a]
	return ok
}

// HasRoutesFrom reports whether any edge sells the asset.
func (g *Graph) HasRoutesFrom(a entities.AssetID) bool {
	return len(g.snapshot().adjacency[a]) > 0
}

// HasRoutesTo reports whether any edge buys the asset.
func (g *Graph) HasRoutesTo(a entities.AssetID) bool {
	return g.snapshot().incoming[a] > 0
}

// DirectRoutes returns every edge from sell directly to buy, in insertion order.
func (g *Graph) DirectRoutes(sell, buy entities.AssetID) []entities.RouteEdge {
	var out []entities.RouteEdge
	for _, e := range g.snapshot().adjacency[sell] {
		if e.BuyAssetID == buy {
			out = append(out, e)
		}
	}
	return out
}

// Outgoing returns all edges selling the asset, in insertion order.
func (g *Graph) Outgoing(a entities.AssetID) []entities.RouteEdge {
	return g.snapshot().adjacency[a]
}

// Stats returns the stats of the current snapshot.
func (g *Graph) Stats() GraphStats {
	return g.snapshot().stats
}
