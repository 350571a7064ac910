package providers

import (
	"context"

	"swap-router.backend/internal/domain/entities"
)

// Adapter is the capability set every provider integration implements:
// a pair catalog for graph building and a single-step quoter.
type Adapter interface {
	// Provider returns the adapter's identity.
	Provider() entities.Provider

	// ListPairs returns the provider's current set of supported ordered
	// pairs. Failures are isolated by the caller; returning an error never
	// affects other adapters.
	ListPairs(ctx context.Context) ([]entities.RouteEdge, error)

	// QuoteStep fetches one quote for a single hop. It never returns an
	// error: provider failures become StepQuote{Success: false}.
	QuoteStep(ctx context.Context, edge entities.RouteEdge, sellAmountBaseUnit, userAddr, receiveAddr string) entities.StepQuote
}

// FailedStep builds the uniform failing step quote for an adapter error.
func FailedStep(edge entities.RouteEdge, sellAmountBaseUnit string, err error) entities.StepQuote {
	msg := "provider request failed"
	if err != nil {
		msg = err.Error()
	}
	return entities.StepQuote{
		Success:            false,
		Provider:           edge.Provider,
		SellAssetID:        edge.SellAssetID,
		BuyAssetID:         edge.BuyAssetID,
		SellAmountBaseUnit: sellAmountBaseUnit,
		Error:              msg,
	}
}
