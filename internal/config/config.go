package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Wallet    WalletConfig
	Providers ProviderConfig
	Indexers  IndexerConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// WalletConfig holds the deposit-address derivation seed material.
type WalletConfig struct {
	Mnemonic   string
	Passphrase string
}

// ProviderConfig holds per-provider API endpoints.
type ProviderConfig struct {
	ThorchainNodeURL    string
	ThorchainMidgardURL string
	MayachainNodeURL    string
	MayachainMidgardURL string
	ChainflipAPIURL     string
	ChainflipAPIKey     string
	CowSwapBaseURL      string
	ZrxBaseURL          string
	RelayAPIURL         string
	PortalsBaseURL      string
	JupiterAPIURL       string
	QuoteTimeout        time.Duration
	CowSwapQuoteTimeout time.Duration
}

// IndexerConfig holds blockchain indexer endpoints for deposit monitoring.
type IndexerConfig struct {
	EVMRPCURL      string
	UTXOIndexerURL string
	CosmosLCDURL   string
	SolanaRPCURL   string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "3001"),
			Env:            getEnv("SERVER_ENV", "development"),
			AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "")),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "swaprouter"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		Wallet: WalletConfig{
			Mnemonic:   getEnv("MNEMONIC", ""),
			Passphrase: getEnv("WALLET_PASSPHRASE", ""),
		},
		Providers: ProviderConfig{
			ThorchainNodeURL:    getEnv("VITE_THORCHAIN_NODE_URL", "https://thornode.ninerealms.com"),
			ThorchainMidgardURL: getEnv("VITE_THORCHAIN_MIDGARD_URL", "https://midgard.ninerealms.com"),
			MayachainNodeURL:    getEnv("VITE_MAYACHAIN_NODE_URL", "https://mayanode.mayachain.info"),
			MayachainMidgardURL: getEnv("VITE_MAYACHAIN_MIDGARD_URL", "https://midgard.mayachain.info"),
			ChainflipAPIURL:     getEnv("VITE_CHAINFLIP_API_URL", "https://chainflip-broker.io"),
			ChainflipAPIKey:     getEnv("VITE_CHAINFLIP_API_KEY", ""),
			CowSwapBaseURL:      getEnv("VITE_COWSWAP_BASE_URL", "https://api.cow.fi"),
			ZrxBaseURL:          getEnv("VITE_ZRX_BASE_URL", "https://api.0x.org"),
			RelayAPIURL:         getEnv("VITE_RELAY_API_URL", "https://api.relay.link"),
			PortalsBaseURL:      getEnv("VITE_PORTALS_BASE_URL", "https://api.portals.fi"),
			JupiterAPIURL:       getEnv("VITE_JUPITER_API_URL", "https://quote-api.jup.ag"),
			QuoteTimeout:        getEnvAsDuration("PROVIDER_QUOTE_TIMEOUT", 10*time.Second),
			CowSwapQuoteTimeout: getEnvAsDuration("COWSWAP_QUOTE_TIMEOUT", 15*time.Second),
		},
		Indexers: IndexerConfig{
			EVMRPCURL:      getEnv("EVM_RPC_URL", "https://eth.llamarpc.com"),
			UTXOIndexerURL: getEnv("UTXO_INDEXER_URL", "https://btc1.trezor.io"),
			CosmosLCDURL:   getEnv("COSMOS_LCD_URL", "https://cosmos-rest.publicnode.com"),
			SolanaRPCURL:   getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
