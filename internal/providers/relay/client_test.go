package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swap-router.backend/internal/domain/entities"
)

func TestListPairs_CrossChainNativeMesh(t *testing.T) {
	c := New("http://unused", time.Second)
	edges, err := c.ListPairs(context.Background())
	require.NoError(t, err)

	// 5 chains, full directed mesh.
	assert.Len(t, edges, 20)
	for _, e := range edges {
		assert.True(t, e.IsCrossChain)
		assert.True(t, e.SellAssetID.IsNative())
		assert.True(t, e.BuyAssetID.IsNative())
	}
}

func TestQuoteStep(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/quote", r.URL.Path)

		var req quoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 1, req.OriginChainID)
		assert.Equal(t, 42161, req.DestinationChainID)
		assert.Equal(t, zeroAddress, req.OriginCurrency)
		assert.Equal(t, zeroAddress, req.DestinationCurrency)
		assert.Equal(t, "EXACT_INPUT", req.TradeType)
		assert.Equal(t, "0xrecipient", req.Recipient)

		var resp quoteResponse
		resp.Details.CurrencyOut.Amount = "998000000000000000"
		resp.Fees.Relayer.USD = "1.25"
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	edge := entities.NewRouteEdge(entities.ProviderRelay, entities.AssetETH, "eip155:42161/slip44:60")
	q := c.QuoteStep(context.Background(), edge, "1000000000000000000", "0xuser", "0xrecipient")

	require.True(t, q.Success, q.Error)
	assert.Equal(t, "998000000000000000", q.ExpectedBuyAmountBaseUnit)
	assert.Equal(t, 1.25, q.FeeUSD)
	assert.Equal(t, int64(600), q.EstimatedTimeSeconds)
}

func TestQuoteStep_UnsupportedChain(t *testing.T) {
	c := New("http://unused", time.Second)
	edge := entities.NewRouteEdge(entities.ProviderRelay, entities.AssetBTC, entities.AssetETH)
	q := c.QuoteStep(context.Background(), edge, "100000000", "", "")
	assert.False(t, q.Success)
}

func TestParseFloat(t *testing.T) {
	assert.Equal(t, 1.25, parseFloat("1.25"))
	assert.Equal(t, 0.0, parseFloat(""))
	assert.Equal(t, 0.0, parseFloat("n/a"))
}
