package usecases

import (
	"math"
	"math/big"

	"go.uber.org/zap"

	"swap-router.backend/internal/domain/entities"
	"swap-router.backend/pkg/logger"
)

// gasOverheadEntry is the per-chain reserve the service keeps back when it
// custodies funds: a base amount in the chain's smallest denomination and a
// volatility multiplier in [1.0, 1.3].
type gasOverheadEntry struct {
	baseOverheadBaseUnits *big.Int
	volatilityMultiplier  float64
}

var gasOverheadTable = map[string]gasOverheadEntry{
	entities.ChainEthereum:  {big.NewInt(4_000_000_000_000_000), 1.3},  // 0.004 ETH
	entities.ChainPolygon:   {big.NewInt(50_000_000_000_000_000), 1.2}, // 0.05 POL
	entities.ChainArbitrum:  {big.NewInt(500_000_000_000_000), 1.15},   // 0.0005 ETH
	entities.ChainOptimism:  {big.NewInt(500_000_000_000_000), 1.15},
	entities.ChainBase:      {big.NewInt(500_000_000_000_000), 1.15},
	entities.ChainAvalanche: {big.NewInt(10_000_000_000_000_000), 1.2}, // 0.01 AVAX
	entities.ChainBSC:       {big.NewInt(2_000_000_000_000_000), 1.15}, // 0.002 BNB
	entities.ChainGnosis:    {big.NewInt(1_000_000_000_000_000), 1.1},

	entities.ChainBitcoin:     {big.NewInt(5_000), 1.25}, // sats
	entities.ChainLitecoin:    {big.NewInt(2_000), 1.2},
	entities.ChainDogecoin:    {big.NewInt(100_000_000), 1.2}, // 1 DOGE
	entities.ChainBitcoinCash: {big.NewInt(1_000), 1.15},

	entities.ChainCosmosHub: {big.NewInt(5_000), 1.1}, // uatom
	entities.ChainOsmosis:   {big.NewInt(5_000), 1.1},
	entities.ChainThorchain: {big.NewInt(2_000_000), 1.0}, // 0.02 RUNE
	entities.ChainMayachain: {big.NewInt(20_000_000), 1.0},

	entities.ChainSolana: {big.NewInt(10_000), 1.1}, // lamports
}

// defaultGasOverhead is the conservative fallback for unmapped chains:
// 0.005 ETH-equivalent with a 1.25 multiplier.
var defaultGasOverhead = gasOverheadEntry{big.NewInt(5_000_000_000_000_000), 1.25}

// GasOverheadModel computes the base-unit gas reserve applied to
// service-custody quotes.
type GasOverheadModel struct{}

func NewGasOverheadModel() *GasOverheadModel {
	return &GasOverheadModel{}
}

// Overhead returns the reserve for the chain as a base-unit decimal string.
// DIRECT providers carry no overhead: the provider supplies the deposit
// address and pays its own gas.
func (g *GasOverheadModel) Overhead(chainID string, providerType entities.ProviderType) string {
	if providerType == entities.ProviderTypeDirect {
		return "0"
	}

	entry, ok := gasOverheadTable[chainID]
	if !ok {
		logger.GetLogger().Warn("gas overhead for unmapped chain, using default",
			zap.String("chain_id", chainID))
		entry = defaultGasOverhead
	}

	// floor(base * round(multiplier*100)) / 100 keeps the arithmetic in
	// integers so the result is stable across platforms.
	hundredths := big.NewInt(int64(math.Round(entry.volatilityMultiplier * 100)))
	scaled := new(big.Int).Mul(entry.baseOverheadBaseUnits, hundredths)
	return scaled.Quo(scaled, big.NewInt(100)).String()
}
