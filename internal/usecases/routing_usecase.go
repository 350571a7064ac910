package usecases

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"swap-router.backend/internal/domain/entities"
	domainerrors "swap-router.backend/internal/domain/errors"
	"swap-router.backend/internal/pricing"
	"swap-router.backend/internal/providers"
	"swap-router.backend/internal/routing"
	"swap-router.backend/pkg/logger"
)

const (
	// multiStepQuoteExpiry is how long a returned route stays actionable.
	multiStepQuoteExpiry = 30 * time.Second
	maxAlternativeRoutes = 3
	warnImpactPercent    = 2.0
	highImpactPercent    = 5.0
)

// MultiStepQuoteRequest is the routing request contract.
type MultiStepQuoteRequest struct {
	SellAssetID        entities.AssetID `json:"sellAssetId"`
	BuyAssetID         entities.AssetID `json:"buyAssetId"`
	SellAmountBaseUnit string           `json:"sellAmountCryptoBaseUnit"`
	UserAddress        string           `json:"userAddress"`
	ReceiveAddress     string           `json:"receiveAddress"`
	MaxHops            *int             `json:"maxHops,omitempty"`
	MaxCrossChainHops  *int             `json:"maxCrossChainHops,omitempty"`
}

// RouteError is the typed failure surfaced in a routing response.
type RouteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MultiStepQuoteResponse is the routing response contract. Failures are
// typed, never transport errors: Success=false carries Error.
type MultiStepQuoteResponse struct {
	Success           bool                      `json:"success"`
	Route             *entities.MultiStepRoute  `json:"route"`
	AlternativeRoutes []entities.MultiStepRoute `json:"alternativeRoutes,omitempty"`
	ExpiresAt         time.Time                 `json:"expiresAt"`
	Error             *RouteError               `json:"error,omitempty"`
}

// RoutingUsecase composes pathfinding, per-step quoting, and price impact
// into multi-step routes.
type RoutingUsecase struct {
	graph      *routing.Graph
	pathfinder *routing.Pathfinder
	registry   *providers.Registry
	oracle     pricing.Oracle
	cache      *routing.Cache
	classifier *ProviderClassifier
	now        func() time.Time
}

func NewRoutingUsecase(
	graph *routing.Graph,
	pathfinder *routing.Pathfinder,
	registry *providers.Registry,
	oracle pricing.Oracle,
	cache *routing.Cache,
	classifier *ProviderClassifier,
) *RoutingUsecase {
	return &RoutingUsecase{
		graph:      graph,
		pathfinder: pathfinder,
		registry:   registry,
		oracle:     oracle,
		cache:      cache,
		classifier: classifier,
		now:        time.Now,
	}
}

// GetMultiStepQuote finds the optimal path and quotes every hop. Alternative
// routes are best-effort: their failures never fail the primary.
func (u *RoutingUsecase) GetMultiStepQuote(ctx context.Context, req MultiStepQuoteRequest) *MultiStepQuoteResponse {
	if err := u.validateRequest(req); err != nil {
		return u.failure(err)
	}

	constraints := entities.DefaultPathConstraints()
	if req.MaxHops != nil {
		constraints.MaxHops = *req.MaxHops
	}
	if req.MaxCrossChainHops != nil {
		constraints.MaxCrossChainHops = *req.MaxCrossChainHops
	}
	constraints.ExcludedProviders = append(constraints.ExcludedProviders, u.classifier.ExcludedProviders()...)

	quoteKey := routing.QuoteKey(req.SellAssetID, req.BuyAssetID, req.SellAmountBaseUnit)
	if cached := u.cache.GetRoute(quoteKey); cached != nil {
		return &MultiStepQuoteResponse{
			Success:   true,
			Route:     cached,
			ExpiresAt: u.now().Add(multiStepQuoteExpiry),
		}
	}

	path, err := u.pathfinder.FindPath(req.SellAssetID, req.BuyAssetID, constraints)
	if err != nil {
		return u.failure(err)
	}

	route, err := u.aggregatePath(ctx, path, req.SellAmountBaseUnit, req.UserAddress, req.ReceiveAddress)
	if err != nil {
		return u.failure(err)
	}

	var alternatives []entities.MultiStepRoute
	for _, altPath := range u.pathfinder.FindAlternatives(req.SellAssetID, req.BuyAssetID, constraints, path, maxAlternativeRoutes) {
		alt, err := u.aggregatePath(ctx, altPath, req.SellAmountBaseUnit, req.UserAddress, req.ReceiveAddress)
		if err != nil {
			logger.Debug(ctx, "alternative route quote failed",
				zap.String("signature", altPath.Signature()),
				zap.Error(err))
			continue
		}
		alternatives = append(alternatives, *alt)
	}

	u.cache.Set(quoteKey, route, 0)

	return &MultiStepQuoteResponse{
		Success:           true,
		Route:             route,
		AlternativeRoutes: alternatives,
		ExpiresAt:         u.now().Add(multiStepQuoteExpiry),
	}
}

func (u *RoutingUsecase) validateRequest(req MultiStepQuoteRequest) error {
	if !req.SellAssetID.IsValid() {
		return fmt.Errorf("%w: malformed sell asset id %q", domainerrors.ErrInvalidInput, req.SellAssetID)
	}
	if !req.BuyAssetID.IsValid() {
		return fmt.Errorf("%w: malformed buy asset id %q", domainerrors.ErrInvalidInput, req.BuyAssetID)
	}
	if _, err := providers.ParseBaseUnit(req.SellAmountBaseUnit); err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrInvalidInput, err)
	}
	if req.ReceiveAddress == "" {
		return fmt.Errorf("%w: receive address is required", domainerrors.ErrInvalidInput)
	}
	return nil
}

func (u *RoutingUsecase) failure(err error) *MultiStepQuoteResponse {
	return &MultiStepQuoteResponse{
		Success:   false,
		ExpiresAt: u.now().Add(multiStepQuoteExpiry),
		Error: &RouteError{
			Code:    domainerrors.RoutingCode(err),
			Message: err.Error(),
		},
	}
}

// aggregatePath quotes every hop sequentially: each step's sell amount is
// the previous step's expected output, so the loop cannot be parallelised.
func (u *RoutingUsecase) aggregatePath(ctx context.Context, path *entities.FoundPath, sellAmountBaseUnit, userAddr, receiveAddr string) (*entities.MultiStepRoute, error) {
	if len(path.Edges) == 0 {
		return nil, fmt.Errorf("%w: path has no edges", domainerrors.ErrQuoteFailed)
	}
	if _, err := providers.ParseBaseUnit(sellAmountBaseUnit); err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrInvalidInput, err)
	}

	route := &entities.MultiStepRoute{
		SellAssetID:        path.AssetIDs[0],
		BuyAssetID:         path.AssetIDs[len(path.AssetIDs)-1],
		SellAmountBaseUnit: sellAmountBaseUnit,
		TotalSteps:         len(path.Edges),
	}

	current := sellAmountBaseUnit
	for i, edge := range path.Edges {
		adapter, err := u.registry.Get(edge.Provider)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domainerrors.ErrQuoteFailed, err)
		}

		recv := userAddr
		if i == len(path.Edges)-1 {
			recv = receiveAddr
		}

		sq := adapter.QuoteStep(ctx, edge, current, userAddr, recv)
		if !sq.Success {
			return nil, fmt.Errorf("%w: step %d via %s: %s", domainerrors.ErrQuoteFailed, i, edge.Provider, sq.Error)
		}
		out, err := providers.ParseBaseUnit(sq.ExpectedBuyAmountBaseUnit)
		if err != nil || out.Sign() <= 0 {
			return nil, fmt.Errorf("%w: step %d via %s returned no output", domainerrors.ErrQuoteFailed, i, edge.Provider)
		}

		route.Steps = append(route.Steps, entities.RouteStep{
			StepIndex:                 i,
			Provider:                  edge.Provider,
			SellAssetID:               edge.SellAssetID,
			BuyAssetID:                edge.BuyAssetID,
			SellAmountBaseUnit:        current,
			ExpectedBuyAmountBaseUnit: sq.ExpectedBuyAmountBaseUnit,
			FeeUSD:                    sq.FeeUSD,
			SlippagePercent:           sq.SlippagePercent,
			EstimatedTimeSeconds:      sq.EstimatedTimeSeconds,
			IsCrossChain:              edge.IsCrossChain,
		})
		route.TotalFeesUSD += sq.FeeUSD
		// Slippage is summed across steps. This overstates compounding
		// slightly but keeps the figure conservative.
		route.TotalSlippagePercent += sq.SlippagePercent
		route.EstimatedTimeSeconds += sq.EstimatedTimeSeconds
		current = sq.ExpectedBuyAmountBaseUnit
	}

	route.EstimatedOutputBaseUnit = current
	route.EstimatedOutputPrecision = providers.FormatDecimal(current, route.BuyAssetID.Precision())

	u.applyPriceImpact(ctx, route)
	return route, nil
}

// applyPriceImpact computes the route-level USD in/out delta. A missing
// price on either side leaves the impact null rather than failing the quote.
func (u *RoutingUsecase) applyPriceImpact(ctx context.Context, route *entities.MultiStepRoute) {
	if u.oracle == nil {
		return
	}
	sellPrice, okSell := u.oracle.PriceUSD(ctx, route.SellAssetID)
	buyPrice, okBuy := u.oracle.PriceUSD(ctx, route.BuyAssetID)
	if !okSell || !okBuy {
		return
	}

	inAmount, err1 := strconv.ParseFloat(providers.FormatDecimal(route.SellAmountBaseUnit, route.SellAssetID.Precision()), 64)
	outAmount, err2 := strconv.ParseFloat(route.EstimatedOutputPrecision, 64)
	if err1 != nil || err2 != nil {
		return
	}

	inputUSD := inAmount * sellPrice
	outputUSD := outAmount * buyPrice
	if inputUSD <= 0 {
		return
	}

	impact := (inputUSD - outputUSD) / inputUSD * 100
	route.PriceImpactPercent = &impact
	if impact > highImpactPercent {
		route.HighPriceImpact = true
		route.Warnings = append(route.Warnings, fmt.Sprintf("price impact %.2f%% exceeds %.0f%%", impact, highImpactPercent))
	} else if impact > warnImpactPercent {
		route.Warnings = append(route.Warnings, fmt.Sprintf("price impact %.2f%% exceeds %.0f%%", impact, warnImpactPercent))
	}
}

// RebuildGraph forces a catalog refresh and returns the new build stats.
func (u *RoutingUsecase) RebuildGraph(ctx context.Context) routing.GraphStats {
	return u.graph.Rebuild(ctx)
}

// GraphStats returns the stats of the current graph snapshot plus cache
// counters.
func (u *RoutingUsecase) GraphStats() (routing.GraphStats, routing.CacheStats) {
	return u.graph.Stats(), u.cache.Stats()
}

// ProviderInfo is the public listing record for a provider.
type ProviderInfo struct {
	Name                       entities.Provider     `json:"name"`
	Type                       entities.ProviderType `json:"type"`
	SupportsDestinationAddress bool                  `json:"supportsDestinationAddress"`
	Description                string                `json:"description"`
	Excluded                   bool                  `json:"excluded"`
}

// ListProviders returns the classification of every known provider.
func (u *RoutingUsecase) ListProviders() []ProviderInfo {
	var out []ProviderInfo
	for _, p := range entities.KnownProviders() {
		cls, _ := entities.ClassificationOf(p)
		out = append(out, ProviderInfo{
			Name:                       p,
			Type:                       cls.Type,
			SupportsDestinationAddress: cls.SupportsDestinationAddress,
			Description:                cls.Description,
			Excluded:                   u.classifier.IsExcluded(p),
		})
	}
	return out
}
