package indexer

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"swap-router.backend/internal/providers"
)

// UTXOLookup queries a blockbook-style indexer for transactions paying the
// watched address.
type UTXOLookup struct {
	http    *http.Client
	baseURL string
}

func NewUTXOLookup(baseURL string, timeout time.Duration) *UTXOLookup {
	return &UTXOLookup{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type bbAddressResponse struct {
	Transactions []struct {
		Txid          string `json:"txid"`
		Confirmations uint64 `json:"confirmations"`
		Vout          []struct {
			Value     string   `json:"value"`
			Addresses []string `json:"addresses"`
		} `json:"vout"`
	} `json:"transactions"`
}

func (l *UTXOLookup) FindDeposit(ctx context.Context, chainID, address string, minAmount *big.Int) (*Deposit, bool, error) {
	endpoint := fmt.Sprintf("%s/api/v2/address/%s?details=txs&pageSize=10", l.baseURL, address)
	var resp bbAddressResponse
	if err := providers.DoJSON(ctx, l.http, http.MethodGet, endpoint, nil, nil, &resp); err != nil {
		return nil, false, err
	}

	for _, tx := range resp.Transactions {
		for _, out := range tx.Vout {
			if !containsAddress(out.Addresses, address) {
				continue
			}
			value, ok := new(big.Int).SetString(out.Value, 10)
			if !ok || value.Cmp(minAmount) < 0 {
				continue
			}
			return &Deposit{
				TxHash:         tx.Txid,
				AmountBaseUnit: value,
				Confirmations:  tx.Confirmations,
			}, true, nil
		}
	}
	return nil, false, nil
}

func containsAddress(addrs []string, addr string) bool {
	for _, a := range addrs {
		if strings.EqualFold(a, addr) {
			return true
		}
	}
	return false
}
