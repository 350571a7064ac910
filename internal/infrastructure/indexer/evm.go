package indexer

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// evmScanDepth is how many recent blocks are inspected per scan. The monitor
// runs every 30 s, so a dozen mainnet blocks comfortably covers the window.
const evmScanDepth = 12

// EVMLookup detects native-currency deposits by scanning recent blocks for
// transactions to the watched address.
type EVMLookup struct {
	client *ethclient.Client
}

func NewEVMLookup(rpcURL string) (*EVMLookup, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial evm rpc: %w", err)
	}
	return &EVMLookup{client: client}, nil
}

func (l *EVMLookup) FindDeposit(ctx context.Context, chainID, address string, minAmount *big.Int) (*Deposit, bool, error) {
	head, err := l.client.BlockNumber(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("fetch head: %w", err)
	}

	target := common.HexToAddress(address)
	from := uint64(0)
	if head > evmScanDepth {
		from = head - evmScanDepth
	}

	for n := head; n >= from && n > 0; n-- {
		block, err := l.client.BlockByNumber(ctx, new(big.Int).SetUint64(n))
		if err != nil {
			return nil, false, fmt.Errorf("fetch block %d: %w", n, err)
		}
		for _, tx := range block.Transactions() {
			to := tx.To()
			if to == nil || !strings.EqualFold(to.Hex(), target.Hex()) {
				continue
			}
			if tx.Value().Cmp(minAmount) < 0 {
				continue
			}
			return &Deposit{
				TxHash:         tx.Hash().Hex(),
				AmountBaseUnit: tx.Value(),
				Confirmations:  head - n + 1,
			}, true, nil
		}
	}
	return nil, false, nil
}
