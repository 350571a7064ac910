package thorchain

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"swap-router.backend/internal/domain/entities"
	"swap-router.backend/internal/providers"
)

// Thornode-family API amounts are fixed at 8 decimals regardless of the
// underlying asset's precision.
const nodeDecimals = 8

const (
	crossChainTimeSeconds = 1200
	sameChainTimeSeconds  = 60
)

// chainSymbols maps the provider's chain ticker to our CAIP-2 chain ID.
var chainSymbols = map[string]string{
	"ETH":  entities.ChainEthereum,
	"AVAX": entities.ChainAvalanche,
	"BSC":  entities.ChainBSC,
	"BASE": entities.ChainBase,
	"BTC":  entities.ChainBitcoin,
	"LTC":  entities.ChainLitecoin,
	"DOGE": entities.ChainDogecoin,
	"BCH":  entities.ChainBitcoinCash,
	"GAIA": entities.ChainCosmosHub,
}

// nativeSymbols holds native tickers that differ from the chain ticker.
var nativeSymbols = map[string]string{
	"GAIA": "ATOM",
}

var nativeSlip44 = map[string]string{
	"ETH":  "60",
	"AVAX": "60",
	"BSC":  "60",
	"BASE": "60",
	"BTC":  "0",
	"LTC":  "2",
	"DOGE": "3",
	"BCH":  "145",
	"GAIA": "118",
}

// Client talks to a thornode-style quote API. Thorchain and Mayachain share
// the wire protocol; only the base path and the native pool asset differ.
type Client struct {
	provider    entities.Provider
	http        *http.Client
	baseURL     string
	apiPath     string // "thorchain" or "mayachain"
	nativeAsset entities.AssetID
	nativeName  string // "THOR.RUNE" or "MAYA.CACAO"
	priceUSD    providers.PriceFunc
}

// New creates the Thorchain adapter.
func New(baseURL string, timeout time.Duration, priceUSD providers.PriceFunc) *Client {
	return &Client{
		provider:    entities.ProviderThorchain,
		http:        &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiPath:     "thorchain",
		nativeAsset: entities.AssetRUNE,
		nativeName:  "THOR.RUNE",
		priceUSD:    priceUSD,
	}
}

// NewMayachain creates the Mayachain adapter over the same wire protocol.
func NewMayachain(baseURL string, timeout time.Duration, priceUSD providers.PriceFunc) *Client {
	return &Client{
		provider:    entities.ProviderMayachain,
		http:        &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiPath:     "mayachain",
		nativeAsset: entities.AssetCACAO,
		nativeName:  "MAYA.CACAO",
		priceUSD:    priceUSD,
	}
}

func (c *Client) Provider() entities.Provider {
	return c.provider
}

type poolResponse struct {
	Asset  string `json:"asset"`
	Status string `json:"status"`
}

// ListPairs fetches the pool list and emits bidirectional edges between the
// protocol's native asset and every available pool asset.
func (c *Client) ListPairs(ctx context.Context) ([]entities.RouteEdge, error) {
	var pools []poolResponse
	endpoint := fmt.Sprintf("%s/%s/pools", c.baseURL, c.apiPath)
	if err := providers.DoJSON(ctx, c.http, http.MethodGet, endpoint, nil, nil, &pools); err != nil {
		return nil, err
	}

	var edges []entities.RouteEdge
	for _, pool := range pools {
		if !strings.EqualFold(pool.Status, "available") {
			continue
		}
		aid, err := PoolAssetToID(pool.Asset)
		if err != nil {
			continue // unmapped chain, skip the pool
		}
		edges = append(edges,
			entities.NewRouteEdge(c.provider, c.nativeAsset, aid),
			entities.NewRouteEdge(c.provider, aid, c.nativeAsset),
		)
	}
	return edges, nil
}

type swapQuoteResponse struct {
	ExpectedAmountOut string `json:"expected_amount_out"`
	SlippageBps       int64  `json:"slippage_bps"`
	Fees              struct {
		Affiliate string `json:"affiliate"`
		Outbound  string `json:"outbound"`
		Liquidity string `json:"liquidity"`
	} `json:"fees"`
}

// QuoteStep calls GET /{api}/quote/swap with amounts converted to the
// node's 8-decimal fixed-point representation.
func (c *Client) QuoteStep(ctx context.Context, edge entities.RouteEdge, sellAmountBaseUnit, userAddr, receiveAddr string) entities.StepQuote {
	fromAsset, err := assetToNotation(edge.SellAssetID, c.nativeAsset, c.nativeName)
	if err != nil {
		return providers.FailedStep(edge, sellAmountBaseUnit, err)
	}
	toAsset, err := assetToNotation(edge.BuyAssetID, c.nativeAsset, c.nativeName)
	if err != nil {
		return providers.FailedStep(edge, sellAmountBaseUnit, err)
	}
	nodeAmount, err := providers.RescaleBaseUnit(sellAmountBaseUnit, edge.SellAssetID.Precision(), nodeDecimals)
	if err != nil {
		return providers.FailedStep(edge, sellAmountBaseUnit, err)
	}

	vals := url.Values{}
	vals.Set("from_asset", fromAsset)
	vals.Set("to_asset", toAsset)
	vals.Set("amount", nodeAmount)
	vals.Set("destination", receiveAddr)

	endpoint := fmt.Sprintf("%s/%s/quote/swap?%s", c.baseURL, c.apiPath, vals.Encode())
	var resp swapQuoteResponse
	if err := providers.DoJSON(ctx, c.http, http.MethodGet, endpoint, nil, nil, &resp); err != nil {
		return providers.FailedStep(edge, sellAmountBaseUnit, err)
	}

	buyAmount, err := providers.RescaleBaseUnit(resp.ExpectedAmountOut, nodeDecimals, edge.BuyAssetID.Precision())
	if err != nil {
		return providers.FailedStep(edge, sellAmountBaseUnit, err)
	}

	estTime := int64(sameChainTimeSeconds)
	if edge.IsCrossChain {
		estTime = crossChainTimeSeconds
	}

	return entities.StepQuote{
		Success:                   true,
		Provider:                  c.provider,
		SellAssetID:               edge.SellAssetID,
		BuyAssetID:                edge.BuyAssetID,
		SellAmountBaseUnit:        sellAmountBaseUnit,
		ExpectedBuyAmountBaseUnit: buyAmount,
		FeeUSD:                    c.feeUSD(ctx, edge.BuyAssetID, resp),
		SlippagePercent:           float64(resp.SlippageBps) / 100,
		EstimatedTimeSeconds:      estTime,
	}
}

// feeUSD sums the node's fee decomposition (affiliate + outbound +
// liquidity, all 8-decimal amounts of the buy asset) and converts to USD
// when a price is available.
func (c *Client) feeUSD(ctx context.Context, buyAsset entities.AssetID, resp swapQuoteResponse) float64 {
	total := new(big.Int)
	for _, f := range []string{resp.Fees.Affiliate, resp.Fees.Outbound, resp.Fees.Liquidity} {
		if f == "" {
			continue
		}
		v, ok := new(big.Int).SetString(f, 10)
		if !ok {
			continue
		}
		total.Add(total, v)
	}
	if total.Sign() == 0 || c.priceUSD == nil {
		return 0
	}
	price, ok := c.priceUSD(ctx, buyAsset)
	if !ok {
		return 0
	}
	feeDecimal, _ := new(big.Float).SetInt(total).Float64()
	return feeDecimal / 1e8 * price
}

// PoolAssetToID converts "ETH.USDC-0XA0B8..." into the canonical asset ID.
func PoolAssetToID(pool string) (entities.AssetID, error) {
	chain, rest, ok := strings.Cut(pool, ".")
	if !ok {
		return "", fmt.Errorf("malformed pool asset %q", pool)
	}
	chainID, ok := chainSymbols[chain]
	if !ok {
		return "", fmt.Errorf("unmapped pool chain %q", chain)
	}
	if _, addr, hasAddr := strings.Cut(rest, "-"); hasAddr {
		return entities.AssetID(chainID + "/erc20:" + strings.ToLower(addr)), nil
	}
	return entities.AssetID(chainID + "/slip44:" + nativeSlip44[chain]), nil
}

// assetToNotation converts a canonical asset ID to the provider's
// CHAIN.SYMBOL[-ADDRESS] notation.
func assetToNotation(aid, native entities.AssetID, nativeName string) (string, error) {
	if aid == native {
		return nativeName, nil
	}
	chainID := aid.ChainID()
	var chain string
	for sym, id := range chainSymbols {
		if id == chainID {
			chain = sym
			break
		}
	}
	if chain == "" {
		return "", fmt.Errorf("asset %s not routable via thornode protocols", aid)
	}
	if aid.IsNative() {
		sym := chain
		if s, ok := nativeSymbols[chain]; ok {
			sym = s
		}
		return chain + "." + sym, nil
	}
	addr := strings.ToUpper(aid.AssetReference())
	// Symbol lookup by address is not needed by the node; the address part
	// is authoritative.
	return chain + ".TOKEN-" + addr, nil
}
