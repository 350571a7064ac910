package entities

import "strings"

// AssetID is the canonical chain-prefixed asset identifier, e.g.
// "eip155:1/erc20:0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48".
// Two asset IDs are equal iff they are byte-equal.
type AssetID string

// ChainFamily groups chains by their address and derivation scheme.
type ChainFamily string

const (
	FamilyEVM     ChainFamily = "evm"
	FamilyUTXO    ChainFamily = "utxo"
	FamilyCosmos  ChainFamily = "cosmos"
	FamilySolana  ChainFamily = "solana"
	FamilyUnknown ChainFamily = "unknown"
)

// Well-known chain IDs (CAIP-2).
const (
	ChainEthereum  = "eip155:1"
	ChainAvalanche = "eip155:43114"
	ChainBSC       = "eip155:56"
	ChainPolygon   = "eip155:137"
	ChainOptimism  = "eip155:10"
	ChainArbitrum  = "eip155:42161"
	ChainBase      = "eip155:8453"
	ChainGnosis    = "eip155:100"

	ChainBitcoin     = "bip122:000000000019d6689c085ae165831e93"
	ChainLitecoin    = "bip122:12a765e31ffd4059bada1e25190f6e98"
	ChainDogecoin    = "bip122:1a91e3dace36e2be3bf030a65679fe82"
	ChainBitcoinCash = "bip122:000000000000000000651ef99cb9fcbe"

	ChainCosmosHub = "cosmos:cosmoshub-4"
	ChainOsmosis   = "cosmos:osmosis-1"
	ChainThorchain = "cosmos:thorchain-1"
	ChainMayachain = "cosmos:mayachain-1"

	ChainSolana = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"
)

// Well-known native asset IDs.
const (
	AssetETH  AssetID = "eip155:1/slip44:60"
	AssetBTC  AssetID = "bip122:000000000019d6689c085ae165831e93/slip44:0"
	AssetLTC  AssetID = "bip122:12a765e31ffd4059bada1e25190f6e98/slip44:2"
	AssetDOGE AssetID = "bip122:1a91e3dace36e2be3bf030a65679fe82/slip44:3"
	AssetBCH  AssetID = "bip122:000000000000000000651ef99cb9fcbe/slip44:145"
	AssetATOM AssetID = "cosmos:cosmoshub-4/slip44:118"
	AssetRUNE AssetID = "cosmos:thorchain-1/slip44:931"
	AssetCACAO AssetID = "cosmos:mayachain-1/slip44:931"
	AssetSOL  AssetID = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp/slip44:501"

	AssetUSDCEthereum AssetID = "eip155:1/erc20:0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	AssetUSDTEthereum AssetID = "eip155:1/erc20:0xdac17f958d2ee523a2206206994597c13d831ec7"
)

// IsValid reports whether the identifier has the
// <chain-namespace>:<chain-reference>/<asset-namespace>:<asset-reference> shape.
func (a AssetID) IsValid() bool {
	chain, asset, ok := strings.Cut(string(a), "/")
	if !ok || chain == "" || asset == "" {
		return false
	}
	if ns, ref, ok := strings.Cut(chain, ":"); !ok || ns == "" || ref == "" {
		return false
	}
	if ns, ref, ok := strings.Cut(asset, ":"); !ok || ns == "" || ref == "" {
		return false
	}
	return true
}

// ChainID returns the CAIP-2 prefix before the first '/'.
func (a AssetID) ChainID() string {
	chain, _, _ := strings.Cut(string(a), "/")
	return chain
}

// AssetReference returns the part after the last ':' of the asset component,
// e.g. the ERC-20 contract address or SPL mint.
func (a AssetID) AssetReference() string {
	_, asset, ok := strings.Cut(string(a), "/")
	if !ok {
		return ""
	}
	if i := strings.LastIndex(asset, ":"); i >= 0 {
		return asset[i+1:]
	}
	return asset
}

// IsNative reports whether the asset is the chain's native (slip44) asset.
func (a AssetID) IsNative() bool {
	_, asset, ok := strings.Cut(string(a), "/")
	return ok && strings.HasPrefix(asset, "slip44:")
}

// Family resolves the chain family of the asset's chain.
func (a AssetID) Family() ChainFamily {
	return ChainIDFamily(a.ChainID())
}

// ChainIDFamily resolves a CAIP-2 chain ID to its family.
func ChainIDFamily(chainID string) ChainFamily {
	switch {
	case strings.HasPrefix(chainID, "eip155:"):
		return FamilyEVM
	case strings.HasPrefix(chainID, "bip122:"):
		return FamilyUTXO
	case strings.HasPrefix(chainID, "cosmos:"):
		return FamilyCosmos
	case strings.HasPrefix(chainID, "solana:"):
		return FamilySolana
	default:
		return FamilyUnknown
	}
}

// stablecoin contracts priced at 6 decimals regardless of chain defaults
var sixDecimalContracts = map[string]bool{
	"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48": true, // USDC (Ethereum)
	"0xdac17f958d2ee523a2206206994597c13d831ec7": true, // USDT (Ethereum)
	"0xaf88d065e77c8cc2239327c5edb3a432268e5831": true, // USDC (Arbitrum)
	"0x833589fcd6edb6e08f4c7c32d4f71b54bda02913": true, // USDC (Base)
	"epjfwdd5aufqssqem2qn1xzybapc8g4weggkzwytdt1v": true, // USDC (Solana)
}

// Precision resolves the asset's decimal precision. The table is
// deterministic: known stablecoins are 6, UTXO natives 8, native SOL 9,
// Cosmos assets 6, everything else defaults to 18.
func (a AssetID) Precision() int {
	if sixDecimalContracts[strings.ToLower(a.AssetReference())] {
		return 6
	}
	switch a.Family() {
	case FamilyUTXO:
		return 8
	case FamilyCosmos:
		return 6
	case FamilySolana:
		if a.IsNative() {
			return 9
		}
		return 6
	default:
		return 18
	}
}
