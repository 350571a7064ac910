package relay

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

// zeroAddress denotes native currency in the Relay API.
const zeroAddress = "0x0000000000000000000000000000000000000000"

// nativeChains lists the EVM chains Relay bridges between. The catalog is
// cross-chain natives only.
var nativeChains = []struct {
	Asset     entities.AssetID
	NumericID int
}{
	{entities.AssetETH, 1},
	{"eip155:10/slip44:60", 10},
	{"eip155:42161/slip44:60", 42161},
	{"eip155:8453/slip44:60", 8453},
	{"eip155:137/slip44:60", 137},
}

// Client talks to the Relay bridging API.
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
	return entities.ProviderRelay
}

// ListPairs returns native-to-native edges between every distinct chain pair.
func (c *Client) ListPairs(ctx context.Context) ([]entities.RouteEdge, error) {
	var edges []entities.RouteEdge
	for _, sell := range nativeChains {
		for _, buy := range nativeChains {
			if sell.Asset == buy.Asset {
				continue
			}
			edges = append(edges, entities.NewRouteEdge(entities.ProviderRelay, sell.Asset, buy.Asset))
		}
	}
	return edges, nil
}

type quoteRequest struct {
	User                string `json:"user"`
	OriginChainID       int    `json:"originChainId"`
	DestinationChainID  int    `json:"destinationChainId"`
	OriginCurrency      string `json:"originCurrency"`
	DestinationCurrency string `json:"destinationCurrency"`
	Amount              string `json:"amount"`
	Recipient           string `json:"recipient"`
	TradeType           string `json:"tradeType"`
}

type quoteResponse struct {
	Details struct {
		CurrencyOut struct {
			Amount string `json:"amount"`
		} `json:"currencyOut"`
	} `json:"details"`
	Fees struct {
		Relayer struct {
			USD string `json:"usd"`
		} `json:"relayer"`
	} `json:"fees"`
}

func (c *Client) QuoteStep(ctx context.Context, edge entities.RouteEdge, sellAmountBaseUnit, userAddr, receiveAddr string) entities.StepQuote {
	origin, ok := numericID(edge.SellAssetID)
	if !ok {
		return providers.FailedStep(edge, sellAmountBaseUnit, fmt.Errorf("asset %s not supported by relay", edge.SellAssetID))
	}
	dest, ok := numericID(edge.BuyAssetID)
	if !ok {
		return providers.FailedStep(edge, sellAmountBaseUnit, fmt.Errorf("asset %s not supported by relay", edge.BuyAssetID))
	}

	body := quoteRequest{
		User:                userAddr,
		OriginChainID:       origin,
		DestinationChainID:  dest,
		OriginCurrency:      zeroAddress,
		DestinationCurrency: zeroAddress,
		Amount:              sellAmountBaseUnit,
		Recipient:           receiveAddr,
		TradeType:           "EXACT_INPUT",
	}

	var resp quoteResponse
	if err := providers.DoJSON(ctx, c.http, http.MethodPost, c.baseURL+"/quote", body, nil, &resp); err != nil {
		return providers.FailedStep(edge, sellAmountBaseUnit, err)
	}
	if resp.Details.CurrencyOut.Amount == "" {
		return providers.FailedStep(edge, sellAmountBaseUnit, fmt.Errorf("relay quote missing output amount"))
	}

	return entities.StepQuote{
		Success:                   true,
		Provider:                  entities.ProviderRelay,
		SellAssetID:               edge.SellAssetID,
		BuyAssetID:                edge.BuyAssetID,
		SellAmountBaseUnit:        sellAmountBaseUnit,
		ExpectedBuyAmountBaseUnit: resp.Details.CurrencyOut.Amount,
		FeeUSD:                    parseFloat(resp.Fees.Relayer.USD),
		EstimatedTimeSeconds:      estimatedTimeSeconds,
	}
}

func numericID(aid entities.AssetID) (int, bool) {
	for _, nc := range nativeChains {
		if nc.Asset == aid {
			return nc.NumericID, true
		}
	}
	return 0, false
}

func parseFloat(s string) float64 {
	var f float64
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%g", &f)
	if err != nil {
		return 0
	}
	return f
}
