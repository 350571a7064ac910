package entities

// RouteEdge is a directed swap capability: one provider converting sellAsset
// into buyAsset. Edge identity is the (sell, buy, provider) triple.
type RouteEdge struct {
	Provider     Provider `json:"provider"`
	SellAssetID  AssetID  `json:"sellAssetId"`
	BuyAssetID   AssetID  `json:"buyAssetId"`
	SellChainID  string   `json:"sellChainId"`
	BuyChainID   string   `json:"buyChainId"`
	IsCrossChain bool     `json:"isCrossChain"`
}

// NewRouteEdge builds an edge, deriving chain IDs and the cross-chain flag.
func NewRouteEdge(provider Provider, sell, buy AssetID) RouteEdge {
	sellChain := sell.ChainID()
	buyChain := buy.ChainID()
	return RouteEdge{
		Provider:     provider,
		SellAssetID:  sell,
		BuyAssetID:   buy,
		SellChainID:  sellChain,
		BuyChainID:   buyChain,
		IsCrossChain: sellChain != buyChain,
	}
}

// Key returns the dedup identity of the edge.
func (e RouteEdge) Key() string {
	return string(e.SellAssetID) + "|" + string(e.BuyAssetID) + "|" + string(e.Provider)
}

// FoundPath is a simple directed path through the asset graph.
// Invariants: Edges[i].SellAssetID == AssetIDs[i],
// Edges[i].BuyAssetID == AssetIDs[i+1], and no asset repeats.
type FoundPath struct {
	AssetIDs           []AssetID   `json:"assetIds"`
	Edges              []RouteEdge `json:"edges"`
	HopCount           int         `json:"hopCount"`
	CrossChainHopCount int         `json:"crossChainHopCount"`
}

// Signature identifies a path by its asset sequence plus provider sequence.
// Two paths with the same signature are the same route.
func (p FoundPath) Signature() string {
	s := ""
	for _, a := range p.AssetIDs {
		s += string(a) + ">"
	}
	s += "|"
	for _, e := range p.Edges {
		s += string(e.Provider) + ">"
	}
	return s
}

// PathConstraints bound the pathfinder search.
type PathConstraints struct {
	MaxHops           int        `json:"maxHops"`
	MaxCrossChainHops int        `json:"maxCrossChainHops"`
	AllowedProviders  []Provider `json:"allowedProviders,omitempty"`
	ExcludedProviders []Provider `json:"excludedProviders,omitempty"`
}

// DefaultPathConstraints returns the default search bounds.
func DefaultPathConstraints() PathConstraints {
	return PathConstraints{MaxHops: 4, MaxCrossChainHops: 2}
}

// AllowsProvider applies the allow/exclude lists to a provider.
func (c PathConstraints) AllowsProvider(p Provider) bool {
	for _, ex := range c.ExcludedProviders {
		if ex == p {
			return false
		}
	}
	if len(c.AllowedProviders) == 0 {
		return true
	}
	for _, al := range c.AllowedProviders {
		if al == p {
			return true
		}
	}
	return false
}

// StepQuote is the result of quoting a single hop with one provider.
// Amounts are decimal strings in base units.
type StepQuote struct {
	Success                   bool    `json:"success"`
	Provider                  Provider `json:"provider"`
	SellAssetID               AssetID `json:"sellAssetId"`
	BuyAssetID                AssetID `json:"buyAssetId"`
	SellAmountBaseUnit        string  `json:"sellAmountCryptoBaseUnit"`
	ExpectedBuyAmountBaseUnit string  `json:"expectedBuyAmountCryptoBaseUnit"`
	FeeUSD                    float64 `json:"feeUsd"`
	SlippagePercent           float64 `json:"slippagePercent"`
	EstimatedTimeSeconds      int64   `json:"estimatedTimeSeconds"`
	Error                     string  `json:"error,omitempty"`
}

// RouteStep is one executed hop inside a multi-step route.
type RouteStep struct {
	StepIndex                 int      `json:"stepIndex"`
	Provider                  Provider `json:"provider"`
	SellAssetID               AssetID  `json:"sellAssetId"`
	BuyAssetID                AssetID  `json:"buyAssetId"`
	SellAmountBaseUnit        string   `json:"sellAmountCryptoBaseUnit"`
	ExpectedBuyAmountBaseUnit string   `json:"expectedBuyAmountCryptoBaseUnit"`
	FeeUSD                    float64  `json:"feeUsd"`
	SlippagePercent           float64  `json:"slippagePercent"`
	EstimatedTimeSeconds      int64    `json:"estimatedTimeSeconds"`
	IsCrossChain              bool     `json:"isCrossChain"`
}

// MultiStepRoute is the aggregated quote for a whole path.
// Steps chain: Steps[i+1].SellAmountBaseUnit == Steps[i].ExpectedBuyAmountBaseUnit.
type MultiStepRoute struct {
	SellAssetID              AssetID     `json:"sellAssetId"`
	BuyAssetID               AssetID     `json:"buyAssetId"`
	SellAmountBaseUnit       string      `json:"sellAmountCryptoBaseUnit"`
	TotalSteps               int         `json:"totalSteps"`
	EstimatedOutputBaseUnit  string      `json:"estimatedOutputCryptoBaseUnit"`
	EstimatedOutputPrecision string      `json:"estimatedOutputPrecision"`
	TotalFeesUSD             float64     `json:"totalFeesUsd"`
	TotalSlippagePercent     float64     `json:"totalSlippagePercent"`
	EstimatedTimeSeconds     int64       `json:"estimatedTimeSeconds"`
	PriceImpactPercent       *float64    `json:"priceImpactPercent"`
	HighPriceImpact          bool        `json:"highPriceImpact,omitempty"`
	Warnings                 []string    `json:"warnings,omitempty"`
	Steps                    []RouteStep `json:"steps"`
}
