package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swap-router.backend/internal/domain/entities"
)

type stubCatalog struct {
	name  entities.Provider
	edges []entities.RouteEdge
	err   error
}

func (s *stubCatalog) Provider() entities.Provider { return s.name }

func (s *stubCatalog) ListPairs(ctx context.Context) ([]entities.RouteEdge, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.edges, nil
}

func edge(p entities.Provider, sell, buy entities.AssetID) entities.RouteEdge {
	return entities.NewRouteEdge(p, sell, buy)
}

func TestGraph_EmptyBeforeRebuild(t *testing.T) {
	g := NewGraph(nil, nil)
	assert.False(t, g.HasAsset(entities.AssetBTC))
	assert.Equal(t, 0, g.Stats().Edges)
}

func TestGraph_Rebuild(t *testing.T) {
	thor := &stubCatalog{name: entities.ProviderThorchain, edges: []entities.RouteEdge{
		edge(entities.ProviderThorchain, entities.AssetBTC, entities.AssetETH),
		edge(entities.ProviderThorchain, entities.AssetETH, entities.AssetBTC),
	}}
	zrx := &stubCatalog{name: entities.ProviderZrx, edges: []entities.RouteEdge{
		edge(entities.ProviderZrx, entities.AssetETH, entities.AssetUSDCEthereum),
	}}

	g := NewGraph([]Catalog{thor, zrx}, nil)
	stats := g.Rebuild(context.Background())

	assert.Equal(t, 3, stats.Nodes)
	assert.Equal(t, 3, stats.Edges)
	assert.Equal(t, 2, stats.CrossChainEdges)
	assert.Equal(t, 2, stats.EdgesByProvider[entities.ProviderThorchain])
	assert.Equal(t, 1, stats.EdgesByProvider[entities.ProviderZrx])
	assert.Empty(t, stats.FailedProviders)

	assert.True(t, g.HasAsset(entities.AssetBTC))
	assert.True(t, g.HasRoutesFrom(entities.AssetBTC))
	assert.True(t, g.HasRoutesTo(entities.AssetUSDCEthereum))
	assert.False(t, g.HasRoutesFrom(entities.AssetUSDCEthereum))

	direct := g.DirectRoutes(entities.AssetBTC, entities.AssetETH)
	require.Len(t, direct, 1)
	assert.Equal(t, entities.ProviderThorchain, direct[0].Provider)
}

func TestGraph_Rebuild_FailureIsolation(t *testing.T) {
	good := &stubCatalog{name: entities.ProviderThorchain, edges: []entities.RouteEdge{
		edge(entities.ProviderThorchain, entities.AssetBTC, entities.AssetETH),
	}}
	bad := &stubCatalog{name: entities.ProviderChainflip, err: errors.New("api down")}

	g := NewGraph([]Catalog{good, bad}, nil)
	stats := g.Rebuild(context.Background())

	assert.Equal(t, 1, stats.Edges)
	assert.Equal(t, []entities.Provider{entities.ProviderChainflip}, stats.FailedProviders)
	assert.True(t, g.HasAsset(entities.AssetBTC))
}

func TestGraph_Rebuild_DeduplicatesEdges(t *testing.T) {
	dup := edge(entities.ProviderThorchain, entities.AssetBTC, entities.AssetETH)
	cat := &stubCatalog{name: entities.ProviderThorchain, edges: []entities.RouteEdge{dup, dup}}

	g := NewGraph([]Catalog{cat}, nil)
	stats := g.Rebuild(context.Background())
	assert.Equal(t, 1, stats.Edges)
}

func TestGraph_Rebuild_ClearsCache(t *testing.T) {
	cache := NewCache()
	cache.Set("route:stale", "old", 0)

	g := NewGraph(nil, cache)
	g.Rebuild(context.Background())
	assert.Nil(t, cache.Get("route:stale"))
}

func TestGraph_Rebuild_DeterministicMergeOrder(t *testing.T) {
	// Both providers offer BTC->ETH. Registration order decides which edge
	// comes first in the adjacency list, regardless of goroutine timing.
	first := &stubCatalog{name: entities.ProviderThorchain, edges: []entities.RouteEdge{
		edge(entities.ProviderThorchain, entities.AssetBTC, entities.AssetETH),
	}}
	second := &stubCatalog{name: entities.ProviderChainflip, edges: []entities.RouteEdge{
		edge(entities.ProviderChainflip, entities.AssetBTC, entities.AssetETH),
	}}

	for i := 0; i < 10; i++ {
		g := NewGraph([]Catalog{first, second}, nil)
		g.Rebuild(context.Background())
		routes := g.DirectRoutes(entities.AssetBTC, entities.AssetETH)
		require.Len(t, routes, 2)
		assert.Equal(t, entities.ProviderThorchain, routes[0].Provider)
		assert.Equal(t, entities.ProviderChainflip, routes[1].Provider)
	}
}
