package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"swap-router.backend/internal/domain/entities"
	"swap-router.backend/internal/wallet"
)

// derive-check prints the deposit address each chain derives at a given
// index, so operators can cross-check the configured mnemonic against a
// reference wallet before going live.
func main() {
	index := flag.Uint("index", 0, "address index to derive")
	account := flag.Uint("account", 0, "account to derive")
	flag.Parse()

	_ = godotenv.Load()
	mnemonic := os.Getenv("MNEMONIC")
	if mnemonic == "" {
		log.Fatal("MNEMONIC is not set")
	}

	keyring, err := wallet.NewKeyring(mnemonic, os.Getenv("WALLET_PASSPHRASE"))
	if err != nil {
		log.Fatalf("keyring: %v", err)
	}

	chains := []string{
		entities.ChainEthereum,
		entities.ChainBitcoin,
		entities.ChainLitecoin,
		entities.ChainDogecoin,
		entities.ChainBitcoinCash,
		entities.ChainCosmosHub,
		entities.ChainOsmosis,
		entities.ChainThorchain,
		entities.ChainMayachain,
		entities.ChainSolana,
	}

	for _, chainID := range chains {
		addr, err := keyring.DepositAddress(chainID, uint32(*account), uint32(*index))
		if err != nil {
			fmt.Printf("%-45s ERROR: %v\n", chainID, err)
			continue
		}
		fmt.Printf("%-45s %s\n", chainID, addr)
	}
}
