package indexer

import (
	"context"
	"math/big"
	"net/http"
	"strings"
	"time"

	"swap-router.backend/internal/providers"
)

// SolanaLookup checks the watched address's lamport balance over JSON-RPC
// and resolves the funding signature.
type SolanaLookup struct {
	http    *http.Client
	baseURL string
}

func NewSolanaLookup(baseURL string, timeout time.Duration) *SolanaLookup {
	return &SolanaLookup{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type balanceResponse struct {
	Result struct {
		Value uint64 `json:"value"`
	} `json:"result"`
}

type signaturesResponse struct {
	Result []struct {
		Signature string `json:"signature"`
	} `json:"result"`
}

func (l *SolanaLookup) FindDeposit(ctx context.Context, chainID, address string, minAmount *big.Int) (*Deposit, bool, error) {
	var balance balanceResponse
	req := rpcRequest{JSONRPC: "2.0", ID: 1, Method: "getBalance", Params: []any{address}}
	if err := providers.DoJSON(ctx, l.http, http.MethodPost, l.baseURL, req, nil, &balance); err != nil {
		return nil, false, err
	}

	received := new(big.Int).SetUint64(balance.Result.Value)
	if received.Cmp(minAmount) < 0 {
		return nil, false, nil
	}

	var sigs signaturesResponse
	req = rpcRequest{JSONRPC: "2.0", ID: 2, Method: "getSignaturesForAddress", Params: []any{address, map[string]any{"limit": 1}}}
	txHash := ""
	if err := providers.DoJSON(ctx, l.http, http.MethodPost, l.baseURL, req, nil, &sigs); err == nil && len(sigs.Result) > 0 {
		txHash = sigs.Result[0].Signature
	}

	return &Deposit{
		TxHash:         txHash,
		AmountBaseUnit: received,
		Confirmations:  1,
	}, true, nil
}
