package zrx

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"swap-router.backend/internal/domain/entities"
	"swap-router.backend/internal/providers"
)

const estimatedTimeSeconds = 60

const nativeSentinel = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"

// numericChainIDs maps CAIP-2 chain IDs to the 0x-chain-id header value.
var numericChainIDs = map[string]int{
	entities.ChainEthereum: 1,
	entities.ChainPolygon:  137,
	entities.ChainArbitrum: 42161,
	entities.ChainBase:     8453,
	entities.ChainOptimism: 10,
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

// Client talks to the 0x swap API.
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
	return entities.ProviderZrx
}

// ListPairs returns the per-chain all-pairs mesh. 0x is same-chain only.
func (c *Client) ListPairs(ctx context.Context) ([]entities.RouteEdge, error) {
	var edges []entities.RouteEdge
	for chainID := range numericChainIDs {
		assets := tradeableAssets[chainID]
		for _, sell := range assets {
			for _, buy := range assets {
				if sell == buy {
					continue
				}
				edges = append(edges, entities.NewRouteEdge(entities.ProviderZrx, sell, buy))
			}
		}
	}
	return edges, nil
}

type quoteResponse struct {
	BuyAmount string `json:"buyAmount"`
}

func (c *Client) QuoteStep(ctx context.Context, edge entities.RouteEdge, sellAmountBaseUnit, userAddr, receiveAddr string) entities.StepQuote {
	numericID, ok := numericChainIDs[edge.SellChainID]
	if !ok || edge.IsCrossChain {
		return providers.FailedStep(edge, sellAmountBaseUnit, fmt.Errorf("0x cannot route %s -> %s", edge.SellAssetID, edge.BuyAssetID))
	}

	vals := url.Values{}
	vals.Set("sellToken", tokenAddress(edge.SellAssetID))
	vals.Set("buyToken", tokenAddress(edge.BuyAssetID))
	vals.Set("sellAmount", sellAmountBaseUnit)
	vals.Set("takerAddress", userAddr)

	headers := map[string]string{"0x-chain-id": strconv.Itoa(numericID)}
	endpoint := fmt.Sprintf("%s/swap/v1/quote?%s", c.baseURL, vals.Encode())

	var resp quoteResponse
	if err := providers.DoJSON(ctx, c.http, http.MethodGet, endpoint, nil, headers, &resp); err != nil {
		return providers.FailedStep(edge, sellAmountBaseUnit, err)
	}
	if resp.BuyAmount == "" {
		return providers.FailedStep(edge, sellAmountBaseUnit, fmt.Errorf("0x quote missing buy amount"))
	}

	return entities.StepQuote{
		Success:                   true,
		Provider:                  entities.ProviderZrx,
		SellAssetID:               edge.SellAssetID,
		BuyAssetID:                edge.BuyAssetID,
		SellAmountBaseUnit:        sellAmountBaseUnit,
		ExpectedBuyAmountBaseUnit: resp.BuyAmount,
		EstimatedTimeSeconds:      estimatedTimeSeconds,
	}
}

func tokenAddress(aid entities.AssetID) string {
	if aid.IsNative() {
		return nativeSentinel
	}
	return aid.AssetReference()
}
