package cowswap

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"swap-router.backend/internal/domain/entities"
	"swap-router.backend/internal/providers"
)

const estimatedTimeSeconds = 120

// nativeSentinel is the ERC-20 placeholder CoW Protocol uses for chain
// native currency.
const nativeSentinel = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"

// networks maps CAIP-2 chain IDs to CoW API network slugs.
var networks = map[string]string{
	entities.ChainEthereum: "mainnet",
	entities.ChainGnosis:   "xdai",
	entities.ChainArbitrum: "arbitrum_one",
	entities.ChainBase:     "base",
}

// tradeableAssets declares the per-chain asset sets for the mesh catalog.
var tradeableAssets = map[string][]entities.AssetID{
	entities.ChainEthereum: {
		entities.AssetETH,
		entities.AssetUSDCEthereum,
		entities.AssetUSDTEthereum,
	},
	entities.ChainGnosis: {
		"eip155:100/slip44:60",
		"eip155:100/erc20:0xddafbb505ad214d7b80b1f830fccc89b60fb7a83", // USDC on Gnosis
	},
	entities.ChainArbitrum: {
		"eip155:42161/slip44:60",
		"eip155:42161/erc20:0xaf88d065e77c8cc2239327c5edb3a432268e5831", // USDC on Arbitrum
	},
	entities.ChainBase: {
		"eip155:8453/slip44:60",
		"eip155:8453/erc20:0x833589fcd6edb6e08f4c7c32d4f71b54bda02913", // USDC on Base
	},
}

// Client talks to the CoW Protocol order quote API.
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
	return entities.ProviderCowSwap
}

// ListPairs returns the per-chain all-pairs mesh. CoW is same-chain only.
func (c *Client) ListPairs(ctx context.Context) ([]entities.RouteEdge, error) {
	var edges []entities.RouteEdge
	for chainID := range networks {
		assets := tradeableAssets[chainID]
		for _, sell := range assets {
			for _, buy := range assets {
				if sell == buy {
					continue
				}
				edges = append(edges, entities.NewRouteEdge(entities.ProviderCowSwap, sell, buy))
			}
		}
	}
	return edges, nil
}

type quoteRequest struct {
	SellToken           string `json:"sellToken"`
	BuyToken            string `json:"buyToken"`
	From                string `json:"from"`
	Receiver            string `json:"receiver,omitempty"`
	Kind                string `json:"kind"`
	SellAmountBeforeFee string `json:"sellAmountBeforeFee"`
	SigningScheme       string `json:"signingScheme"`
}

type quoteResponse struct {
	Quote struct {
		BuyAmount string `json:"buyAmount"`
		FeeAmount string `json:"feeAmount"`
	} `json:"quote"`
}

func (c *Client) QuoteStep(ctx context.Context, edge entities.RouteEdge, sellAmountBaseUnit, userAddr, receiveAddr string) entities.StepQuote {
	network, ok := networks[edge.SellChainID]
	if !ok || edge.IsCrossChain {
		return providers.FailedStep(edge, sellAmountBaseUnit, fmt.Errorf("cowswap cannot route %s -> %s", edge.SellAssetID, edge.BuyAssetID))
	}

	body := quoteRequest{
		SellToken:           tokenAddress(edge.SellAssetID),
		BuyToken:            tokenAddress(edge.BuyAssetID),
		From:                userAddr,
		Receiver:            receiveAddr,
		Kind:                "sell",
		SellAmountBeforeFee: sellAmountBaseUnit,
		SigningScheme:       "eip712",
	}

	endpoint := fmt.Sprintf("%s/%s/api/v1/quote", c.baseURL, network)
	var resp quoteResponse
	if err := providers.DoJSON(ctx, c.http, http.MethodPost, endpoint, body, nil, &resp); err != nil {
		return providers.FailedStep(edge, sellAmountBaseUnit, err)
	}
	if resp.Quote.BuyAmount == "" {
		return providers.FailedStep(edge, sellAmountBaseUnit, fmt.Errorf("cowswap quote missing buy amount"))
	}

	return entities.StepQuote{
		Success:                   true,
		Provider:                  entities.ProviderCowSwap,
		SellAssetID:               edge.SellAssetID,
		BuyAssetID:                edge.BuyAssetID,
		SellAmountBaseUnit:        sellAmountBaseUnit,
		ExpectedBuyAmountBaseUnit: resp.Quote.BuyAmount,
		EstimatedTimeSeconds:      estimatedTimeSeconds,
	}
}

func tokenAddress(aid entities.AssetID) string {
	if aid.IsNative() {
		return nativeSentinel
	}
	return aid.AssetReference()
}
