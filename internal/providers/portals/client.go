package portals

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

const estimatedTimeSeconds = 60

// networks maps CAIP-2 chain IDs to Portals network slugs.
var networks = map[string]string{
	entities.ChainEthereum: "ethereum",
	entities.ChainPolygon:  "polygon",
	entities.ChainArbitrum: "arbitrum",
	entities.ChainBase:     "base",
	entities.ChainOptimism: "optimism",
}

var tradeableAssets = map[string][]entities.AssetID{
	entities.ChainEthereum: {
		entities.AssetETH,
		entities.AssetUSDCEthereum,
		entities.AssetUSDTEthereum,
	},
	entities.ChainPolygon: {
		"eip155:137/slip44:60",
		"eip155:137/erc20:0x3c499c542cef5e3811e1192ce70d8cc03d5c3359", // USDC on Polygon
	},
	entities.ChainArbitrum: {
		"eip155:42161/slip44:60",
		"eip155:42161/erc20:0xaf88d065e77c8cc2239327c5edb3a432268e5831",
	},
	entities.ChainBase: {
		"eip155:8453/slip44:60",
		"eip155:8453/erc20:0x833589fcd6edb6e08f4c7c32d4f71b54bda02913",
	},
	entities.ChainOptimism: {
		"eip155:10/slip44:60",
		"eip155:10/erc20:0x0b2c639c533813f4aa9d7837caf62653d097ff85", // USDC on Optimism
	},
}

// nativeSentinel is the zero address Portals uses for chain native currency.
const nativeSentinel = "0x0000000000000000000000000000000000000000"

// Client talks to the Portals aggregation API.
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
	return entities.ProviderPortals
}

// ListPairs returns the per-chain all-pairs mesh. Portals is same-chain only.
func (c *Client) ListPairs(ctx context.Context) ([]entities.RouteEdge, error) {
	var edges []entities.RouteEdge
	for chainID := range networks {
		assets := tradeableAssets[chainID]
		for _, sell := range assets {
			for _, buy := range assets {
				if sell == buy {
					continue
				}
				edges = append(edges, entities.NewRouteEdge(entities.ProviderPortals, sell, buy))
			}
		}
	}
	return edges, nil
}

type quoteResponse struct {
	OutputAmount string `json:"outputAmount"`
}

func (c *Client) QuoteStep(ctx context.Context, edge entities.RouteEdge, sellAmountBaseUnit, userAddr, receiveAddr string) entities.StepQuote {
	network, ok := networks[edge.SellChainID]
	if !ok || edge.IsCrossChain {
		return providers.FailedStep(edge, sellAmountBaseUnit, fmt.Errorf("portals cannot route %s -> %s", edge.SellAssetID, edge.BuyAssetID))
	}

	vals := url.Values{}
	vals.Set("inputToken", network+":"+tokenAddress(edge.SellAssetID))
	vals.Set("outputToken", network+":"+tokenAddress(edge.BuyAssetID))
	vals.Set("inputAmount", sellAmountBaseUnit)
	vals.Set("slippageTolerancePercentage", "0.5")
	if userAddr != "" {
		vals.Set("sender", userAddr)
	}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	endpoint := fmt.Sprintf("%s/v2/portal?%s", c.baseURL, vals.Encode())
	var resp quoteResponse
	if err := providers.DoJSON(ctx, c.http, http.MethodGet, endpoint, nil, headers, &resp); err != nil {
		return providers.FailedStep(edge, sellAmountBaseUnit, err)
	}
	if resp.OutputAmount == "" {
		return providers.FailedStep(edge, sellAmountBaseUnit, fmt.Errorf("portals quote missing output amount"))
	}

	return entities.StepQuote{
		Success:                   true,
		Provider:                  entities.ProviderPortals,
		SellAssetID:               edge.SellAssetID,
		BuyAssetID:                edge.BuyAssetID,
		SellAmountBaseUnit:        sellAmountBaseUnit,
		ExpectedBuyAmountBaseUnit: resp.OutputAmount,
		EstimatedTimeSeconds:      estimatedTimeSeconds,
	}
}

func tokenAddress(aid entities.AssetID) string {
	if aid.IsNative() {
		return nativeSentinel
	}
	return aid.AssetReference()
}
