package chainflip

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"swap-router.backend/internal/domain/entities"
	"swap-router.backend/internal/providers"
)

const estimatedTimeSeconds = 600

type cfAsset struct {
	ID    entities.AssetID
	Asset string
	Chain string
}

// Assets routable through Chainflip's swapping pools.
var supportedAssets = []cfAsset{
	{entities.AssetBTC, "BTC", "Bitcoin"},
	{entities.AssetETH, "ETH", "Ethereum"},
	{entities.AssetUSDCEthereum, "USDC", "Ethereum"},
	{entities.AssetUSDTEthereum, "USDT", "Ethereum"},
	{entities.AssetSOL, "SOL", "Solana"},
}

// Client talks to a Chainflip broker API.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

func (c *Client) Provider() entities.Provider {
	return entities.ProviderChainflip
}

// ListPairs returns the all-pairs mesh over the supported asset set.
func (c *Client) ListPairs(ctx context.Context) ([]entities.RouteEdge, error) {
	var edges []entities.RouteEdge
	for _, sell := range supportedAssets {
		for _, buy := range supportedAssets {
			if sell.ID == buy.ID {
				continue
			}
			edges = append(edges, entities.NewRouteEdge(entities.ProviderChainflip, sell.ID, buy.ID))
		}
	}
	return edges, nil
}

type quoteRequest struct {
	SrcAsset  string `json:"srcAsset"`
	SrcChain  string `json:"srcChain"`
	DestAsset string `json:"destAsset"`
	DestChain string `json:"destChain"`
	Amount    string `json:"amount"`
}

type quoteResponse struct {
	EgressAmount    string `json:"egressAmount"`
	EstimatedOutput string `json:"estimatedOutput"`
}

func (c *Client) QuoteStep(ctx context.Context, edge entities.RouteEdge, sellAmountBaseUnit, userAddr, receiveAddr string) entities.StepQuote {
	src, ok := lookup(edge.SellAssetID)
	if !ok {
		return providers.FailedStep(edge, sellAmountBaseUnit, fmt.Errorf("asset %s not supported by chainflip", edge.SellAssetID))
	}
	dest, ok := lookup(edge.BuyAssetID)
	if !ok {
		return providers.FailedStep(edge, sellAmountBaseUnit, fmt.Errorf("asset %s not supported by chainflip", edge.BuyAssetID))
	}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	body := quoteRequest{
		SrcAsset:  src.Asset,
		SrcChain:  src.Chain,
		DestAsset: dest.Asset,
		DestChain: dest.Chain,
		Amount:    sellAmountBaseUnit,
	}
	var resp quoteResponse
	if err := providers.DoJSON(ctx, c.http, http.MethodPost, c.baseURL+"/quote", body, headers, &resp); err != nil {
		return providers.FailedStep(edge, sellAmountBaseUnit, err)
	}

	out := resp.EgressAmount
	if out == "" {
		out = resp.EstimatedOutput
	}
	if out == "" {
		return providers.FailedStep(edge, sellAmountBaseUnit, fmt.Errorf("chainflip quote missing output amount"))
	}

	return entities.StepQuote{
		Success:                   true,
		Provider:                  entities.ProviderChainflip,
		SellAssetID:               edge.SellAssetID,
		BuyAssetID:                edge.BuyAssetID,
		SellAmountBaseUnit:        sellAmountBaseUnit,
		ExpectedBuyAmountBaseUnit: out,
		EstimatedTimeSeconds:      estimatedTimeSeconds,
	}
}

func lookup(aid entities.AssetID) (cfAsset, bool) {
	for _, a := range supportedAssets {
		if a.ID == aid {
			return a, true
		}
	}
	return cfAsset{}, false
}
