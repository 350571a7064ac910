package indexer

import (
	"context"
	"fmt"
	"math/big"

	"swap-router.backend/internal/domain/entities"
)

// Deposit is an observed inbound transfer to a watched address.
type Deposit struct {
	TxHash         string
	AmountBaseUnit *big.Int
	Confirmations  uint64
}

// Lookup checks external chain state for a deposit of at least minAmount to
// the address. The bool is false when no qualifying deposit exists.
type Lookup interface {
	FindDeposit(ctx context.Context, chainID, address string, minAmount *big.Int) (*Deposit, bool, error)
}

// Dispatcher fans a lookup out to the per-family indexer client.
type Dispatcher struct {
	evm    Lookup
	utxo   Lookup
	cosmos Lookup
	solana Lookup
}

func NewDispatcher(evm, utxo, cosmos, solana Lookup) *Dispatcher {
	return &Dispatcher{evm: evm, utxo: utxo, cosmos: cosmos, solana: solana}
}

func (d *Dispatcher) FindDeposit(ctx context.Context, chainID, address string, minAmount *big.Int) (*Deposit, bool, error) {
	var l Lookup
	switch entities.ChainIDFamily(chainID) {
	case entities.FamilyEVM:
		l = d.evm
	case entities.FamilyUTXO:
		l = d.utxo
	case entities.FamilyCosmos:
		l = d.cosmos
	case entities.FamilySolana:
		l = d.solana
	}
	if l == nil {
		return nil, false, fmt.Errorf("no indexer for chain %s", chainID)
	}
	return l.FindDeposit(ctx, chainID, address, minAmount)
}
