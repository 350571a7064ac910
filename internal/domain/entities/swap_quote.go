package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SwapQuoteStatus represents the lifecycle state of a send-swap quote.
type SwapQuoteStatus string

const (
	SwapQuoteStatusActive          SwapQuoteStatus = "ACTIVE"
	SwapQuoteStatusDepositReceived SwapQuoteStatus = "DEPOSIT_RECEIVED"
	SwapQuoteStatusExecuting       SwapQuoteStatus = "EXECUTING"
	SwapQuoteStatusCompleted       SwapQuoteStatus = "COMPLETED"
	SwapQuoteStatusExpired         SwapQuoteStatus = "EXPIRED"
	SwapQuoteStatusFailed          SwapQuoteStatus = "FAILED"
)

// SwapQuoteExpiry is how long a deposit address stays valid.
const SwapQuoteExpiry = 30 * time.Minute

// IsTerminal reports whether no further transitions are allowed.
func (s SwapQuoteStatus) IsTerminal() bool {
	switch s {
	case SwapQuoteStatusCompleted, SwapQuoteStatusExpired, SwapQuoteStatusFailed:
		return true
	}
	return false
}

// CanTransitionTo enforces the quote state machine:
// ACTIVE -> DEPOSIT_RECEIVED -> EXECUTING -> COMPLETED, with EXPIRED
// reachable only from ACTIVE and FAILED from any non-terminal state.
func (s SwapQuoteStatus) CanTransitionTo(next SwapQuoteStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch next {
	case SwapQuoteStatusDepositReceived:
		return s == SwapQuoteStatusActive
	case SwapQuoteStatusExecuting:
		return s == SwapQuoteStatusDepositReceived
	case SwapQuoteStatusCompleted:
		return s == SwapQuoteStatusExecuting
	case SwapQuoteStatusExpired:
		return s == SwapQuoteStatusActive
	case SwapQuoteStatusFailed:
		return true
	}
	return false
}

// SwapQuote is a persisted send-swap quote bound to a unique deposit address.
// All base-unit amounts are decimal strings to preserve precision.
type SwapQuote struct {
	ID                        uuid.UUID       `json:"id"`
	QuoteID                   string          `json:"quoteId"`
	Status                    SwapQuoteStatus `json:"status"`
	SellAssetID               AssetID         `json:"sellAssetId"`
	BuyAssetID                AssetID         `json:"buyAssetId"`
	SellAsset                 json.RawMessage `json:"sellAsset,omitempty"`
	BuyAsset                  json.RawMessage `json:"buyAsset,omitempty"`
	SellAmountBaseUnit        string          `json:"sellAmountCryptoBaseUnit"`
	ExpectedBuyAmountBaseUnit string          `json:"expectedBuyAmountCryptoBaseUnit"`
	DepositAddress            string          `json:"depositAddress"`
	ReceiveAddress            string          `json:"receiveAddress"`
	Provider                  Provider        `json:"swapperName"`
	ProviderType              ProviderType    `json:"swapperType"`
	AddressIndex              uint32          `json:"addressIndex"`
	GasOverheadBaseUnit       string          `json:"gasOverheadBaseUnit,omitempty"`
	DepositTxHash             string          `json:"depositTxHash,omitempty"`
	ExecutionTxHash           string          `json:"executionTxHash,omitempty"`
	ExpiresAt                 time.Time       `json:"expiresAt"`
	ExecutedAt                *time.Time      `json:"executedAt,omitempty"`
	CreatedAt                 time.Time       `json:"createdAt"`
	UpdatedAt                 time.Time       `json:"updatedAt"`
}

// IsExpired reports whether an ACTIVE quote has outlived its deposit window.
func (q *SwapQuote) IsExpired(now time.Time) bool {
	return q.Status == SwapQuoteStatusActive && now.After(q.ExpiresAt)
}
