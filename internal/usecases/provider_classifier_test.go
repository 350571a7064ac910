package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"swap-router.backend/internal/domain/entities"
	domainerrors "swap-router.backend/internal/domain/errors"
)

func TestProviderClassifier_TypeOf(t *testing.T) {
	c := NewProviderClassifier()
	assert.Equal(t, entities.ProviderTypeDirect, c.TypeOf(entities.ProviderThorchain))
	assert.Equal(t, entities.ProviderTypeServiceCustody, c.TypeOf(entities.ProviderCowSwap))
	assert.Equal(t, entities.ProviderTypeServiceCustody, c.TypeOf(entities.Provider("Mystery")))
}

func TestProviderClassifier_IsExcluded(t *testing.T) {
	c := NewProviderClassifier()
	assert.False(t, c.IsExcluded(entities.ProviderThorchain))
	assert.False(t, c.IsExcluded(entities.ProviderJupiter))
	// Unknown providers never support destination addresses.
	assert.True(t, c.IsExcluded(entities.Provider("Mystery")))
}

func TestProviderClassifier_FilterValid(t *testing.T) {
	c := NewProviderClassifier()
	in := []entities.Provider{
		entities.ProviderThorchain,
		entities.Provider("Mystery"),
		entities.ProviderChainflip,
	}
	assert.Equal(t,
		[]entities.Provider{entities.ProviderThorchain, entities.ProviderChainflip},
		c.FilterValid(in))
}

func TestProviderClassifier_ValidateForQuote(t *testing.T) {
	c := NewProviderClassifier()
	assert.NoError(t, c.ValidateForQuote(entities.ProviderThorchain))
	assert.NoError(t, c.ValidateForQuote(entities.ProviderZrx))

	err := c.ValidateForQuote(entities.Provider("Mystery"))
	assert.ErrorIs(t, err, domainerrors.ErrProviderExcluded)
}

func TestProviderClassifier_ExcludedProviders(t *testing.T) {
	c := NewProviderClassifier()
	for _, p := range c.ExcludedProviders() {
		assert.True(t, c.IsExcluded(p), string(p))
	}
}
