package wallet

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/pbkdf2"

	"swap-router.backend/internal/domain/entities"
)

const hardened = hdkeychain.HardenedKeyStart

// utxoScheme describes how a UTXO chain encodes deposit addresses.
// Segwit chains use BIP84 bech32 P2WPKH; the rest use BIP44 legacy P2PKH.
type utxoScheme struct {
	coinType     uint32
	bech32HRP    string
	p2pkhVersion byte
	segwit       bool
}

var utxoSchemes = map[string]utxoScheme{
	entities.ChainBitcoin:     {coinType: 0, bech32HRP: "bc", segwit: true},
	entities.ChainLitecoin:    {coinType: 2, bech32HRP: "ltc", segwit: true},
	entities.ChainDogecoin:    {coinType: 3, p2pkhVersion: 0x1e},
	entities.ChainBitcoinCash: {coinType: 145, p2pkhVersion: 0x00},
}

type cosmosScheme struct {
	coinType uint32
	hrp      string
}

var cosmosSchemes = map[string]cosmosScheme{
	entities.ChainCosmosHub: {coinType: 118, hrp: "cosmos"},
	entities.ChainOsmosis:   {coinType: 118, hrp: "osmo"},
	entities.ChainThorchain: {coinType: 931, hrp: "thor"},
	entities.ChainMayachain: {coinType: 931, hrp: "maya"},
}

// Keyring derives per-quote deposit addresses from a BIP39 mnemonic. It holds
// the secp256k1 master key and the raw seed (needed for the ed25519 path).
type Keyring struct {
	master *hdkeychain.ExtendedKey
	seed   []byte
}

// NewKeyring builds the keyring from mnemonic and optional passphrase. The
// seed follows BIP39: PBKDF2-SHA512, 2048 rounds, salt "mnemonic"+passphrase.
func NewKeyring(mnemonic, passphrase string) (*Keyring, error) {
	mnemonic = strings.TrimSpace(mnemonic)
	if mnemonic == "" {
		return nil, fmt.Errorf("mnemonic is required")
	}
	words := len(strings.Fields(mnemonic))
	if words < 12 || words > 24 || words%3 != 0 {
		return nil, fmt.Errorf("mnemonic must be 12-24 words, got %d", words)
	}

	seed := pbkdf2.Key([]byte(mnemonic), []byte("mnemonic"+passphrase), 2048, 64, sha512.New)
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("derive master key: %w", err)
	}
	return &Keyring{master: master, seed: seed}, nil
}

// DepositAddress derives the deposit address for the chain at the given
// account/index slot. Derivation is deterministic: the same inputs always
// produce the same address.
func (k *Keyring) DepositAddress(chainID string, account, index uint32) (string, error) {
	switch entities.ChainIDFamily(chainID) {
	case entities.FamilyEVM:
		return k.evmAddress(account, index)
	case entities.FamilyUTXO:
		return k.utxoAddress(chainID, account, index)
	case entities.FamilyCosmos:
		return k.cosmosAddress(chainID, account, index)
	case entities.FamilySolana:
		return k.solanaAddress(index)
	default:
		return "", fmt.Errorf("no derivation scheme for chain %s", chainID)
	}
}

// evmAddress derives m/44'/60'/account'/0/index. One address serves every
// EVM chain.
func (k *Keyring) evmAddress(account, index uint32) (string, error) {
	key, err := k.deriveSecp(hardened+44, hardened+60, hardened+account, 0, index)
	if err != nil {
		return "", err
	}
	pub, err := key.ECPubKey()
	if err != nil {
		return "", err
	}
	return ethcrypto.PubkeyToAddress(*pub.ToECDSA()).Hex(), nil
}

// utxoAddress derives m/84'/coin'/account'/0/index for segwit chains and
// m/44'/coin'/account'/0/index for legacy chains.
func (k *Keyring) utxoAddress(chainID string, account, index uint32) (string, error) {
	scheme, ok := utxoSchemes[chainID]
	if !ok {
		return "", fmt.Errorf("no derivation scheme for chain %s", chainID)
	}
	purpose := uint32(44)
	if scheme.segwit {
		purpose = 84
	}
	key, err := k.deriveSecp(hardened+purpose, hardened+scheme.coinType, hardened+account, 0, index)
	if err != nil {
		return "", err
	}
	pub, err := key.ECPubKey()
	if err != nil {
		return "", err
	}
	h160 := btcutil.Hash160(pub.SerializeCompressed())

	if !scheme.segwit {
		return base58.CheckEncode(h160, scheme.p2pkhVersion), nil
	}
	conv, err := bech32.ConvertBits(h160, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(scheme.bech32HRP, append([]byte{0}, conv...))
}

// cosmosAddress derives m/44'/coin'/account'/0/index and bech32-encodes the
// hash160 of the compressed pubkey with the chain's HRP.
func (k *Keyring) cosmosAddress(chainID string, account, index uint32) (string, error) {
	scheme, ok := cosmosSchemes[chainID]
	if !ok {
		return "", fmt.Errorf("no derivation scheme for chain %s", chainID)
	}
	key, err := k.deriveSecp(hardened+44, hardened+scheme.coinType, hardened+account, 0, index)
	if err != nil {
		return "", err
	}
	pub, err := key.ECPubKey()
	if err != nil {
		return "", err
	}
	conv, err := bech32.ConvertBits(btcutil.Hash160(pub.SerializeCompressed()), 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(scheme.hrp, conv)
}

// solanaAddress derives the SLIP-0010 ed25519 path m/44'/501'/index'/0'
// (hardened-only) and base58-encodes the public key.
func (k *Keyring) solanaAddress(index uint32) (string, error) {
	key, chain := slip10Master(k.seed)
	for _, i := range []uint32{hardened + 44, hardened + 501, hardened + index, hardened + 0} {
		key, chain = slip10Child(key, chain, i)
	}
	pub := ed25519.NewKeyFromSeed(key).Public().(ed25519.PublicKey)
	return base58.Encode(pub), nil
}

func (k *Keyring) deriveSecp(path ...uint32) (*hdkeychain.ExtendedKey, error) {
	key := k.master
	for _, i := range path {
		var err error
		if key, err = key.Derive(i); err != nil {
			return nil, fmt.Errorf("derive child %d: %w", i, err)
		}
	}
	return key, nil
}

// Verify derives one address per chain family and fails if any scheme is
// broken. Run at startup so a bad mnemonic surfaces before the first quote.
func (k *Keyring) Verify() error {
	checks := []string{
		entities.ChainEthereum,
		entities.ChainBitcoin,
		entities.ChainDogecoin,
		entities.ChainCosmosHub,
		entities.ChainSolana,
	}
	for _, chainID := range checks {
		addr, err := k.DepositAddress(chainID, 0, 0)
		if err != nil {
			return fmt.Errorf("derivation check for %s: %w", chainID, err)
		}
		if addr == "" {
			return fmt.Errorf("derivation check for %s produced empty address", chainID)
		}
	}
	return nil
}

// slip10Master computes the SLIP-0010 ed25519 master key from the seed.
func slip10Master(seed []byte) (key, chainCode []byte) {
	mac := hmac.New(sha512.New, []byte("ed25519 seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}

// slip10Child computes a hardened child. ed25519 SLIP-0010 defines only
// hardened derivation.
func slip10Child(key, chainCode []byte, index uint32) (childKey, childChain []byte) {
	data := make([]byte, 0, 1+32+4)
	data = append(data, 0x00)
	data = append(data, key...)
	data = binary.BigEndian.AppendUint32(data, index)

	mac := hmac.New(sha512.New, chainCode)
	mac.Write(data)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}
