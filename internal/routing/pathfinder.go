package routing

import (
	"container/heap"
	"fmt"
	"sort"

	domainerrors "swap-router.backend/internal/domain/errors"
	"swap-router.backend/internal/domain/entities"
)

// Pathfinder runs constrained shortest-path searches over graph snapshots.
// Edge weight is 1 for a same-chain hop and 3 for a cross-chain hop;
// disallowed providers and blocked edges are unreachable.
type Pathfinder struct {
	graph *Graph
	cache *Cache
}

// NewPathfinder creates a pathfinder over the graph, caching results when a
// cache is supplied.
func NewPathfinder(graph *Graph, cache *Cache) *Pathfinder {
	return &Pathfinder{graph: graph, cache: cache}
}

func edgeWeight(e entities.RouteEdge) int {
	if e.IsCrossChain {
		return 3
	}
	return 1
}

// FindPath returns the optimal simple path from sell to buy under the
// constraints, or a typed failure.
func (pf *Pathfinder) FindPath(sell, buy entities.AssetID, constraints entities.PathConstraints) (*entities.FoundPath, error) {
	key := ""
	if pf.cache != nil {
		key = PathKey(sell, buy, constraints)
		if cached := pf.cache.GetPath(key); cached != nil {
			return cached, nil
		}
	}

	path, err := pf.findPath(sell, buy, constraints, nil)
	if err != nil {
		return nil, err
	}

	if pf.cache != nil {
		pf.cache.Set(key, path, 0)
	}
	return path, nil
}

func (pf *Pathfinder) findPath(sell, buy entities.AssetID, constraints entities.PathConstraints, blocked map[string]struct{}) (*entities.FoundPath, error) {
	if !pf.graph.HasAsset(sell) {
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrAssetUnknown, sell)
	}
	if !pf.graph.HasAsset(buy) {
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrAssetUnknown, buy)
	}
	if sell == buy {
		return nil, fmt.Errorf("%w: sell and buy asset are identical", domainerrors.ErrCircularRoute)
	}

	// Fast path: a direct edge wins when it satisfies the constraints.
	// Same-chain edges are preferred over cross-chain ones. The result runs
	// through the same postcondition as a search result; a direct path has
	// the minimum possible hop counts, so a longer path cannot do better.
	if p := pf.directPath(sell, buy, constraints, blocked); p != nil {
		if err := validatePath(p, constraints); err != nil {
			return nil, err
		}
		return p, nil
	}

	path := pf.dijkstra(sell, buy, constraints, blocked)
	if path == nil {
		return nil, fmt.Errorf("%w: %s -> %s", domainerrors.ErrNoRoute, sell, buy)
	}
	if err := validatePath(path, constraints); err != nil {
		return nil, err
	}
	return path, nil
}

func (pf *Pathfinder) directPath(sell, buy entities.AssetID, constraints entities.PathConstraints, blocked map[string]struct{}) *entities.FoundPath {
	direct := pf.graph.DirectRoutes(sell, buy)
	var crossChain *entities.RouteEdge
	for i := range direct {
		e := direct[i]
		if !constraints.AllowsProvider(e.Provider) {
			continue
		}
		if blocked != nil {
			if _, b := blocked[e.Key()]; b {
				continue
			}
		}
		if !e.IsCrossChain {
			return pathFromEdges(sell, []entities.RouteEdge{e})
		}
		if crossChain == nil && constraints.MaxCrossChainHops >= 1 {
			crossChain = &e
		}
	}
	if crossChain != nil {
		return pathFromEdges(sell, []entities.RouteEdge{*crossChain})
	}
	return nil
}

// search node for the priority queue
type pqItem struct {
	asset entities.AssetID
	dist  int
	seq   int // insertion sequence, breaks weight ties deterministically
	index int
}

type priorityQueue []*pqItem

func (q priorityQueue) Len() int { return len(q) }
func (q priorityQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].seq < q[j].seq
}
func (q priorityQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *priorityQueue) Push(x any) {
	item := x.(*pqItem)
	item.index = len(*q)
	*q = append(*q, item)
}
func (q *priorityQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// dijkstra runs a weighted shortest-path search. Weights are strictly
// positive so settled paths are simple; tie-breaking follows edge insertion
// order via the monotonically increasing push sequence.
func (pf *Pathfinder) dijkstra(sell, buy entities.AssetID, constraints entities.PathConstraints, blocked map[string]struct{}) *entities.FoundPath {
	dist := map[entities.AssetID]int{sell: 0}
	prev := map[entities.AssetID]entities.RouteEdge{}
	settled := map[entities.AssetID]struct{}{}

	seq := 0
	pq := &priorityQueue{}
	heap.Push(pq, &pqItem{asset: sell, dist: 0, seq: seq})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*pqItem)
		if _, done := settled[cur.asset]; done {
			continue
		}
		settled[cur.asset] = struct{}{}
		if cur.asset == buy {
			break
		}

		for _, e := range pf.graph.Outgoing(cur.asset) {
			if !constraints.AllowsProvider(e.Provider) {
				continue
			}
			if blocked != nil {
				if _, b := blocked[e.Key()]; b {
					continue
				}
			}
			if _, done := settled[e.BuyAssetID]; done {
				continue
			}
			alt := cur.dist + edgeWeight(e)
			if d, seen := dist[e.BuyAssetID]; !seen || alt < d {
				dist[e.BuyAssetID] = alt
				prev[e.BuyAssetID] = e
				seq++
				heap.Push(pq, &pqItem{asset: e.BuyAssetID, dist: alt, seq: seq})
			}
		}
	}

	if _, reached := dist[buy]; !reached {
		return nil
	}

	var edges []entities.RouteEdge
	for at := buy; at != sell; {
		e, ok := prev[at]
		if !ok {
			return nil
		}
		edges = append([]entities.RouteEdge{e}, edges...)
		at = e.SellAssetID
	}
	return pathFromEdges(sell, edges)
}

func pathFromEdges(start entities.AssetID, edges []entities.RouteEdge) *entities.FoundPath {
	assets := []entities.AssetID{start}
	crossChain := 0
	for _, e := range edges {
		assets = append(assets, e.BuyAssetID)
		if e.IsCrossChain {
			crossChain++
		}
	}
	return &entities.FoundPath{
		AssetIDs:           assets,
		Edges:              edges,
		HopCount:           len(edges),
		CrossChainHopCount: crossChain,
	}
}

// validatePath is the defensive postcondition on any returned path: hop
// budgets, provider lists, and the no-repeated-asset rule.
func validatePath(p *entities.FoundPath, constraints entities.PathConstraints) error {
	if p.HopCount > constraints.MaxHops {
		return fmt.Errorf("%w: %d hops, max %d", domainerrors.ErrMaxHopsExceeded, p.HopCount, constraints.MaxHops)
	}
	if p.CrossChainHopCount > constraints.MaxCrossChainHops {
		return fmt.Errorf("%w: %d cross-chain hops, max %d", domainerrors.ErrMaxCrossChainHops, p.CrossChainHopCount, constraints.MaxCrossChainHops)
	}
	for _, e := range p.Edges {
		if !constraints.AllowsProvider(e.Provider) {
			return fmt.Errorf("%w: %s", domainerrors.ErrProviderDisallowed, e.Provider)
		}
	}
	seen := make(map[entities.AssetID]struct{}, len(p.AssetIDs))
	for _, a := range p.AssetIDs {
		if _, dup := seen[a]; dup {
			return fmt.Errorf("%w: %s", domainerrors.ErrCircularRoute, a)
		}
		seen[a] = struct{}{}
	}
	return nil
}

// FindAlternatives collects up to k routes distinct from the primary path
// by cumulatively blocking edges of previously found paths and re-running
// the search. Results are sorted by hop count, then cross-chain hop count.
func (pf *Pathfinder) FindAlternatives(sell, buy entities.AssetID, constraints entities.PathConstraints, primary *entities.FoundPath, k int) []*entities.FoundPath {
	if primary == nil || k <= 0 {
		return nil
	}

	seen := map[string]struct{}{primary.Signature(): {}}
	blocked := make(map[string]struct{})
	queue := append([]entities.RouteEdge(nil), primary.Edges...)

	var alts []*entities.FoundPath
	for len(queue) > 0 && len(alts) < k {
		e := queue[0]
		queue = queue[1:]
		blocked[e.Key()] = struct{}{}

		p, err := pf.findPath(sell, buy, constraints, blocked)
		if err != nil {
			continue
		}
		if _, dup := seen[p.Signature()]; dup {
			continue
		}
		seen[p.Signature()] = struct{}{}
		alts = append(alts, p)
		queue = append(queue, p.Edges...)
	}

	sort.SliceStable(alts, func(i, j int) bool {
		if alts[i].HopCount != alts[j].HopCount {
			return alts[i].HopCount < alts[j].HopCount
		}
		return alts[i].CrossChainHopCount < alts[j].CrossChainHopCount
	})
	return alts
}
