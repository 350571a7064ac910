package usecases

import (
	"fmt"

	"go.uber.org/zap"

	"swap-router.backend/internal/domain/entities"
	domainerrors "swap-router.backend/internal/domain/errors"
	"swap-router.backend/pkg/logger"
)

// ProviderClassifier answers static capability questions about providers.
// A provider without destination-address support is excluded from every
// routing and send-swap operation.
type ProviderClassifier struct{}

func NewProviderClassifier() *ProviderClassifier {
	return &ProviderClassifier{}
}

// TypeOf resolves the provider's custody model. Unknown providers report
// SERVICE_CUSTODY and emit a warning.
func (c *ProviderClassifier) TypeOf(p entities.Provider) entities.ProviderType {
	cls, known := entities.ClassificationOf(p)
	if !known {
		logger.GetLogger().Warn("classifying unknown provider", zap.String("provider", string(p)))
	}
	return cls.Type
}

// IsExcluded reports whether the provider is barred from swap operations.
func (c *ProviderClassifier) IsExcluded(p entities.Provider) bool {
	cls, _ := entities.ClassificationOf(p)
	return !cls.SupportsDestinationAddress
}

// FilterValid drops excluded providers, preserving order.
func (c *ProviderClassifier) FilterValid(list []entities.Provider) []entities.Provider {
	var out []entities.Provider
	for _, p := range list {
		if !c.IsExcluded(p) {
			out = append(out, p)
		}
	}
	return out
}

// ExcludedProviders returns every known provider barred from swaps, for use
// as a pathfinder exclusion list.
func (c *ProviderClassifier) ExcludedProviders() []entities.Provider {
	var out []entities.Provider
	for _, p := range entities.KnownProviders() {
		if c.IsExcluded(p) {
			out = append(out, p)
		}
	}
	return out
}

// ValidateForQuote checks that a provider may back a send-swap quote.
func (c *ProviderClassifier) ValidateForQuote(p entities.Provider) error {
	cls, known := entities.ClassificationOf(p)
	if !known {
		logger.GetLogger().Warn("quote requested for unknown provider", zap.String("provider", string(p)))
		return fmt.Errorf("%w: unknown provider %q", domainerrors.ErrProviderExcluded, p)
	}
	if !cls.SupportsDestinationAddress {
		return fmt.Errorf("%w: %s does not support destination addresses", domainerrors.ErrProviderExcluded, p)
	}
	return nil
}
