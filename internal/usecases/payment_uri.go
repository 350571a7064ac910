package usecases

import (
	"fmt"
	"net/url"
	"strings"

	"swap-router.backend/internal/domain/entities"
	"swap-router.backend/internal/providers"
)

// uriSchemes maps CAIP-2 chain IDs to their payment URI scheme. Every EVM
// chain shares the "ethereum" scheme.
var uriSchemes = map[string]string{
	entities.ChainBitcoin:     "bitcoin",
	entities.ChainLitecoin:    "litecoin",
	entities.ChainDogecoin:    "dogecoin",
	entities.ChainBitcoinCash: "bitcoincash",
	entities.ChainCosmosHub:   "cosmos",
	entities.ChainOsmosis:     "osmosis",
	entities.ChainSolana:      "solana",
}

// BuildPaymentURI renders a scannable payment URI for a deposit address.
// EVM chains carry the amount as base-unit wei in `value=`; everything else
// uses `amount=` in human-readable precision (satoshi to BTC, lamports to
// SOL, micro-denom to whole units).
func BuildPaymentURI(asset entities.AssetID, address, amountBaseUnit string) (string, error) {
	chainID := asset.ChainID()
	if entities.ChainIDFamily(chainID) == entities.FamilyEVM {
		return fmt.Sprintf("ethereum:%s?value=%s", address, amountBaseUnit), nil
	}
	scheme, ok := uriSchemes[chainID]
	if !ok {
		return "", fmt.Errorf("no payment URI scheme for chain %s", chainID)
	}
	amount := providers.FormatDecimal(amountBaseUnit, asset.Precision())
	return fmt.Sprintf("%s:%s?amount=%s", scheme, address, amount), nil
}

// ParsePaymentURI splits a payment URI into scheme, address, and query
// parameters. Round-trips BuildPaymentURI output.
func ParsePaymentURI(uri string) (scheme, address string, params url.Values, err error) {
	scheme, rest, ok := strings.Cut(uri, ":")
	if !ok || scheme == "" || rest == "" {
		return "", "", nil, fmt.Errorf("malformed payment URI %q", uri)
	}
	address, query, _ := strings.Cut(rest, "?")
	if address == "" {
		return "", "", nil, fmt.Errorf("payment URI %q has no address", uri)
	}
	params, err = url.ParseQuery(query)
	if err != nil {
		return "", "", nil, fmt.Errorf("payment URI query: %w", err)
	}
	return scheme, address, params, nil
}
