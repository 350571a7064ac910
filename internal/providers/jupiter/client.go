package jupiter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"swap-router.backend/internal/domain/entities"
	"swap-router.backend/internal/providers"
)

const estimatedTimeSeconds = 30

// wrappedSOLMint stands in for native SOL: Jupiter quotes against the
// wrapped-SOL SPL mint and unwraps on execution.
const wrappedSOLMint = "So11111111111111111111111111111111111111112"

const defaultSlippageBps = 50

// Solana-local tradeable set. Jupiter never leaves the chain.
var tradeableAssets = []entities.AssetID{
	entities.AssetSOL,
	"solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp/token:EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", // USDC
	"solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp/token:Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", // USDT
}

// Client talks to the Jupiter swap quote API.
type Client struct {
	http    *http.Client
	baseURL string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) Provider() entities.Provider {
	return entities.ProviderJupiter
}

// ListPairs returns the all-pairs mesh over the Solana asset set.
func (c *Client) ListPairs(ctx context.Context) ([]entities.RouteEdge, error) {
	var edges []entities.RouteEdge
	for _, sell := range tradeableAssets {
		for _, buy := range tradeableAssets {
			if sell == buy {
				continue
			}
			edges = append(edges, entities.NewRouteEdge(entities.ProviderJupiter, sell, buy))
		}
	}
	return edges, nil
}

type quoteResponse struct {
	OutAmount   string `json:"outAmount"`
	SlippageBps int    `json:"slippageBps"`
}

func (c *Client) QuoteStep(ctx context.Context, edge entities.RouteEdge, sellAmountBaseUnit, userAddr, receiveAddr string) entities.StepQuote {
	if edge.IsCrossChain || edge.SellAssetID.Family() != entities.FamilySolana {
		return providers.FailedStep(edge, sellAmountBaseUnit, fmt.Errorf("jupiter cannot route %s -> %s", edge.SellAssetID, edge.BuyAssetID))
	}

	vals := url.Values{}
	vals.Set("inputMint", mintOf(edge.SellAssetID))
	vals.Set("outputMint", mintOf(edge.BuyAssetID))
	vals.Set("amount", sellAmountBaseUnit)
	vals.Set("slippageBps", fmt.Sprint(defaultSlippageBps))

	endpoint := fmt.Sprintf("%s/v6/quote?%s", c.baseURL, vals.Encode())
	var resp quoteResponse
	if err := providers.DoJSON(ctx, c.http, http.MethodGet, endpoint, nil, nil, &resp); err != nil {
		return providers.FailedStep(edge, sellAmountBaseUnit, err)
	}
	if resp.OutAmount == "" {
		return providers.FailedStep(edge, sellAmountBaseUnit, fmt.Errorf("jupiter quote missing out amount"))
	}

	return entities.StepQuote{
		Success:                   true,
		Provider:                  entities.ProviderJupiter,
		SellAssetID:               edge.SellAssetID,
		BuyAssetID:                edge.BuyAssetID,
		SellAmountBaseUnit:        sellAmountBaseUnit,
		ExpectedBuyAmountBaseUnit: resp.OutAmount,
		SlippagePercent:           float64(resp.SlippageBps) / 100,
		EstimatedTimeSeconds:      estimatedTimeSeconds,
	}
}

// mintOf maps an asset ID to its SPL mint. Native SOL maps to wrapped SOL.
func mintOf(aid entities.AssetID) string {
	if aid.IsNative() {
		return wrappedSOLMint
	}
	return aid.AssetReference()
}
