package routing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swap-router.backend/internal/domain/entities"
	domainerrors "swap-router.backend/internal/domain/errors"
)

const (
	assetUSDCArbitrum = entities.AssetID("eip155:42161/erc20:0xaf88d065e77c8cc2239327c5edb3a432268e5831")
	assetETHArbitrum  = entities.AssetID("eip155:42161/slip44:60")
)

func buildGraph(t *testing.T, edges ...entities.RouteEdge) *Graph {
	t.Helper()
	cat := &stubCatalog{name: entities.ProviderThorchain, edges: edges}
	g := NewGraph([]Catalog{cat}, nil)
	g.Rebuild(context.Background())
	return g
}

func TestFindPath_DirectEdge(t *testing.T) {
	g := buildGraph(t,
		edge(entities.ProviderThorchain, entities.AssetBTC, entities.AssetETH),
	)
	pf := NewPathfinder(g, nil)

	p, err := pf.FindPath(entities.AssetBTC, entities.AssetETH, entities.DefaultPathConstraints())
	require.NoError(t, err)
	assert.Equal(t, 1, p.HopCount)
	assert.Equal(t, 1, p.CrossChainHopCount)
	assert.Equal(t, []entities.AssetID{entities.AssetBTC, entities.AssetETH}, p.AssetIDs)
}

func TestFindPath_PrefersSameChainDirectEdge(t *testing.T) {
	// Two direct USDC->ETH edges exist; the same-chain one must win even
	// though the cross-chain edge was inserted first.
	g := buildGraph(t,
		edge(entities.ProviderThorchain, entities.AssetUSDCEthereum, assetETHArbitrum),
		edge(entities.ProviderZrx, entities.AssetUSDCEthereum, entities.AssetETH),
	)
	pf := NewPathfinder(g, nil)

	p, err := pf.FindPath(entities.AssetUSDCEthereum, entities.AssetETH, entities.DefaultPathConstraints())
	require.NoError(t, err)
	require.Equal(t, 1, p.HopCount)
	assert.Equal(t, entities.ProviderZrx, p.Edges[0].Provider)
	assert.False(t, p.Edges[0].IsCrossChain)
}

func TestFindPath_MultiHop(t *testing.T) {
	g := buildGraph(t,
		edge(entities.ProviderZrx, entities.AssetUSDCEthereum, entities.AssetETH),
		edge(entities.ProviderThorchain, entities.AssetETH, entities.AssetBTC),
	)
	pf := NewPathfinder(g, nil)

	p, err := pf.FindPath(entities.AssetUSDCEthereum, entities.AssetBTC, entities.DefaultPathConstraints())
	require.NoError(t, err)
	assert.Equal(t, 2, p.HopCount)
	assert.Equal(t, 1, p.CrossChainHopCount)
	assert.Equal(t, entities.AssetETH, p.AssetIDs[1])
}

func TestFindPath_WeightPrefersSameChainHops(t *testing.T) {
	// USDC -> BTC either directly (cross-chain, weight 3) or via a two-hop
	// detour USDC -> ETH (same-chain, 1) -> BTC (cross-chain, 3). The direct
	// edge wins on weight.
	g := buildGraph(t,
		edge(entities.ProviderZrx, entities.AssetUSDCEthereum, entities.AssetETH),
		edge(entities.ProviderThorchain, entities.AssetETH, entities.AssetBTC),
		edge(entities.ProviderChainflip, entities.AssetUSDCEthereum, entities.AssetBTC),
	)
	pf := NewPathfinder(g, nil)

	p, err := pf.FindPath(entities.AssetUSDCEthereum, entities.AssetBTC, entities.DefaultPathConstraints())
	require.NoError(t, err)
	assert.Equal(t, 1, p.HopCount)
	assert.Equal(t, entities.ProviderChainflip, p.Edges[0].Provider)
}

func TestFindPath_UnknownAsset(t *testing.T) {
	g := buildGraph(t, edge(entities.ProviderThorchain, entities.AssetBTC, entities.AssetETH))
	pf := NewPathfinder(g, nil)

	_, err := pf.FindPath(entities.AssetDOGE, entities.AssetETH, entities.DefaultPathConstraints())
	assert.ErrorIs(t, err, domainerrors.ErrAssetUnknown)

	_, err = pf.FindPath(entities.AssetBTC, entities.AssetDOGE, entities.DefaultPathConstraints())
	assert.ErrorIs(t, err, domainerrors.ErrAssetUnknown)
}

func TestFindPath_IdenticalAssets(t *testing.T) {
	g := buildGraph(t, edge(entities.ProviderThorchain, entities.AssetBTC, entities.AssetETH))
	pf := NewPathfinder(g, nil)

	_, err := pf.FindPath(entities.AssetBTC, entities.AssetBTC, entities.DefaultPathConstraints())
	assert.ErrorIs(t, err, domainerrors.ErrCircularRoute)
}

func TestFindPath_NoRoute(t *testing.T) {
	g := buildGraph(t,
		edge(entities.ProviderThorchain, entities.AssetBTC, entities.AssetETH),
		edge(entities.ProviderZrx, entities.AssetUSDCEthereum, entities.AssetUSDTEthereum),
	)
	pf := NewPathfinder(g, nil)

	_, err := pf.FindPath(entities.AssetETH, entities.AssetBTC, entities.DefaultPathConstraints())
	assert.ErrorIs(t, err, domainerrors.ErrNoRoute)
}

func TestFindPath_ExcludedProviderUnreachable(t *testing.T) {
	g := buildGraph(t, edge(entities.ProviderThorchain, entities.AssetBTC, entities.AssetETH))
	pf := NewPathfinder(g, nil)

	c := entities.DefaultPathConstraints()
	c.ExcludedProviders = []entities.Provider{entities.ProviderThorchain}
	_, err := pf.FindPath(entities.AssetBTC, entities.AssetETH, c)
	assert.ErrorIs(t, err, domainerrors.ErrNoRoute)
}

func TestFindPath_MaxCrossChainHops(t *testing.T) {
	// BTC -> ETH -> ATOM requires two cross-chain hops.
	g := buildGraph(t,
		edge(entities.ProviderThorchain, entities.AssetBTC, entities.AssetETH),
		edge(entities.ProviderThorchain, entities.AssetETH, entities.AssetATOM),
	)
	pf := NewPathfinder(g, nil)

	c := entities.DefaultPathConstraints()
	c.MaxCrossChainHops = 1
	_, err := pf.FindPath(entities.AssetBTC, entities.AssetATOM, c)
	assert.ErrorIs(t, err, domainerrors.ErrMaxCrossChainHops)

	c.MaxCrossChainHops = 2
	p, err := pf.FindPath(entities.AssetBTC, entities.AssetATOM, c)
	require.NoError(t, err)
	assert.Equal(t, 2, p.CrossChainHopCount)
}

func TestFindPath_MaxHops(t *testing.T) {
	g := buildGraph(t,
		edge(entities.ProviderZrx, entities.AssetUSDCEthereum, entities.AssetUSDTEthereum),
		edge(entities.ProviderZrx, entities.AssetUSDTEthereum, entities.AssetETH),
		edge(entities.ProviderThorchain, entities.AssetETH, entities.AssetBTC),
	)
	pf := NewPathfinder(g, nil)

	c := entities.DefaultPathConstraints()
	c.MaxHops = 2
	_, err := pf.FindPath(entities.AssetUSDCEthereum, entities.AssetBTC, c)
	assert.ErrorIs(t, err, domainerrors.ErrMaxHopsExceeded)
}

func TestFindPath_MaxHopsBindsDirectEdge(t *testing.T) {
	// The direct-edge fast path obeys the same hop budget as a full search.
	g := buildGraph(t,
		edge(entities.ProviderThorchain, entities.AssetBTC, entities.AssetETH),
	)
	pf := NewPathfinder(g, nil)

	c := entities.DefaultPathConstraints()
	c.MaxHops = 0
	_, err := pf.FindPath(entities.AssetBTC, entities.AssetETH, c)
	assert.ErrorIs(t, err, domainerrors.ErrMaxHopsExceeded)
}

func TestFindPath_UsesCache(t *testing.T) {
	cache := NewCache()
	g := buildGraph(t, edge(entities.ProviderThorchain, entities.AssetBTC, entities.AssetETH))
	pf := NewPathfinder(g, cache)

	p1, err := pf.FindPath(entities.AssetBTC, entities.AssetETH, entities.DefaultPathConstraints())
	require.NoError(t, err)

	p2, err := pf.FindPath(entities.AssetBTC, entities.AssetETH, entities.DefaultPathConstraints())
	require.NoError(t, err)
	assert.Same(t, p1, p2)
	assert.Equal(t, uint64(1), cache.Stats().Hits)
}

func TestFindAlternatives(t *testing.T) {
	g := buildGraph(t,
		edge(entities.ProviderThorchain, entities.AssetBTC, entities.AssetETH),
		edge(entities.ProviderChainflip, entities.AssetBTC, entities.AssetETH),
		edge(entities.ProviderThorchain, entities.AssetBTC, entities.AssetATOM),
		edge(entities.ProviderThorchain, entities.AssetATOM, entities.AssetETH),
	)
	pf := NewPathfinder(g, nil)

	primary, err := pf.FindPath(entities.AssetBTC, entities.AssetETH, entities.DefaultPathConstraints())
	require.NoError(t, err)
	require.Equal(t, 1, primary.HopCount)

	alts := pf.FindAlternatives(entities.AssetBTC, entities.AssetETH, entities.DefaultPathConstraints(), primary, 3)
	require.NotEmpty(t, alts)

	// No alternative repeats the primary signature and results are sorted by
	// hop count.
	for _, a := range alts {
		assert.NotEqual(t, primary.Signature(), a.Signature())
	}
	for i := 1; i < len(alts); i++ {
		assert.LessOrEqual(t, alts[i-1].HopCount, alts[i].HopCount)
	}
}

func TestFindAlternatives_NilPrimary(t *testing.T) {
	g := buildGraph(t, edge(entities.ProviderThorchain, entities.AssetBTC, entities.AssetETH))
	pf := NewPathfinder(g, nil)
	assert.Nil(t, pf.FindAlternatives(entities.AssetBTC, entities.AssetETH, entities.DefaultPathConstraints(), nil, 3))
	p, _ := pf.FindPath(entities.AssetBTC, entities.AssetETH, entities.DefaultPathConstraints())
	assert.Nil(t, pf.FindAlternatives(entities.AssetBTC, entities.AssetETH, entities.DefaultPathConstraints(), p, 0))
}
