package entities

// Provider identifies a supported swap provider.
type Provider string

const (
	ProviderThorchain   Provider = "Thorchain"
	ProviderMayachain   Provider = "Mayachain"
	ProviderChainflip   Provider = "Chainflip"
	ProviderCowSwap     Provider = "CowSwap"
	ProviderZrx         Provider = "0x"
	ProviderRelay       Provider = "Relay"
	ProviderPortals     Provider = "Portals"
	ProviderJupiter     Provider = "Jupiter"
	ProviderNearIntents Provider = "NearIntents"
	ProviderButterSwap  Provider = "ButterSwap"
	ProviderBebop       Provider = "Bebop"
)

// ProviderType distinguishes providers that hand out their own deposit
// address from those where the service custodies funds and executes onward.
type ProviderType string

const (
	ProviderTypeDirect         ProviderType = "DIRECT"
	ProviderTypeServiceCustody ProviderType = "SERVICE_CUSTODY"
)

// ProviderClassification is the static capability record of a provider.
type ProviderClassification struct {
	Type                       ProviderType `json:"type"`
	SupportsDestinationAddress bool         `json:"supportsDestinationAddress"`
	Description                string       `json:"description"`
}

var providerClassifications = map[Provider]ProviderClassification{
	ProviderThorchain: {
		Type:                       ProviderTypeDirect,
		SupportsDestinationAddress: true,
		Description:                "Thorchain native cross-chain swaps via inbound vault addresses",
	},
	ProviderMayachain: {
		Type:                       ProviderTypeDirect,
		SupportsDestinationAddress: true,
		Description:                "Mayachain native cross-chain swaps via inbound vault addresses",
	},
	ProviderChainflip: {
		Type:                       ProviderTypeDirect,
		SupportsDestinationAddress: true,
		Description:                "Chainflip broker-issued deposit channels",
	},
	ProviderNearIntents: {
		Type:                       ProviderTypeDirect,
		SupportsDestinationAddress: true,
		Description:                "NEAR intents settlement with provider deposit addresses",
	},
	ProviderCowSwap: {
		Type:                       ProviderTypeServiceCustody,
		SupportsDestinationAddress: true,
		Description:                "CoW Protocol orders executed from the service wallet",
	},
	ProviderZrx: {
		Type:                       ProviderTypeServiceCustody,
		SupportsDestinationAddress: true,
		Description:                "0x swap API executed from the service wallet",
	},
	ProviderRelay: {
		Type:                       ProviderTypeServiceCustody,
		SupportsDestinationAddress: true,
		Description:                "Relay cross-chain bridging executed from the service wallet",
	},
	ProviderPortals: {
		Type:                       ProviderTypeServiceCustody,
		SupportsDestinationAddress: true,
		Description:                "Portals same-chain swaps executed from the service wallet",
	},
	ProviderJupiter: {
		Type:                       ProviderTypeServiceCustody,
		SupportsDestinationAddress: true,
		Description:                "Jupiter Solana swaps executed from the service wallet",
	},
	ProviderButterSwap: {
		Type:                       ProviderTypeServiceCustody,
		SupportsDestinationAddress: true,
		Description:                "ButterSwap omnichain swaps executed from the service wallet",
	},
	ProviderBebop: {
		Type:                       ProviderTypeServiceCustody,
		SupportsDestinationAddress: true,
		Description:                "Bebop RFQ swaps executed from the service wallet",
	},
}

// ClassificationOf returns the static classification for a provider.
// Unknown providers default to service custody without destination-address
// support, which effectively excludes them everywhere.
func ClassificationOf(p Provider) (ProviderClassification, bool) {
	c, ok := providerClassifications[p]
	if !ok {
		return ProviderClassification{
			Type:                       ProviderTypeServiceCustody,
			SupportsDestinationAddress: false,
			Description:                "unknown provider",
		}, false
	}
	return c, true
}

// KnownProviders returns the closed set of supported providers in a stable order.
func KnownProviders() []Provider {
	return []Provider{
		ProviderThorchain,
		ProviderMayachain,
		ProviderChainflip,
		ProviderCowSwap,
		ProviderZrx,
		ProviderRelay,
		ProviderPortals,
		ProviderJupiter,
		ProviderNearIntents,
		ProviderButterSwap,
		ProviderBebop,
	}
}
