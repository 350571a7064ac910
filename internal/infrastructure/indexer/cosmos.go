package indexer

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"swap-router.backend/internal/providers"
)

// CosmosLookup checks an LCD endpoint for the watched address's balance and
// resolves the funding transaction via event search.
type CosmosLookup struct {
	http    *http.Client
	baseURL string
}

func NewCosmosLookup(baseURL string, timeout time.Duration) *CosmosLookup {
	return &CosmosLookup{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type lcdBalancesResponse struct {
	Balances []struct {
		Denom  string `json:"denom"`
		Amount string `json:"amount"`
	} `json:"balances"`
}

type lcdTxSearchResponse struct {
	TxResponses []struct {
		TxHash string `json:"txhash"`
	} `json:"tx_responses"`
}

func (l *CosmosLookup) FindDeposit(ctx context.Context, chainID, address string, minAmount *big.Int) (*Deposit, bool, error) {
	endpoint := fmt.Sprintf("%s/cosmos/bank/v1beta1/balances/%s", l.baseURL, address)
	var balances lcdBalancesResponse
	if err := providers.DoJSON(ctx, l.http, http.MethodGet, endpoint, nil, nil, &balances); err != nil {
		return nil, false, err
	}

	var received *big.Int
	for _, b := range balances.Balances {
		v, ok := new(big.Int).SetString(b.Amount, 10)
		if ok && v.Cmp(minAmount) >= 0 {
			received = v
			break
		}
	}
	if received == nil {
		return nil, false, nil
	}

	// Best-effort tx hash: latest transfer whose recipient is the address.
	query := url.QueryEscape(fmt.Sprintf("transfer.recipient='%s'", address))
	searchEndpoint := fmt.Sprintf("%s/cosmos/tx/v1beta1/txs?query=%s&order_by=ORDER_BY_DESC&limit=1", l.baseURL, query)
	var search lcdTxSearchResponse
	txHash := ""
	if err := providers.DoJSON(ctx, l.http, http.MethodGet, searchEndpoint, nil, nil, &search); err == nil && len(search.TxResponses) > 0 {
		txHash = search.TxResponses[0].TxHash
	}

	return &Deposit{
		TxHash:         txHash,
		AmountBaseUnit: received,
		Confirmations:  1,
	}, true, nil
}
