package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"swap-router.backend/internal/config"
	"swap-router.backend/internal/infrastructure/indexer"
	"swap-router.backend/internal/infrastructure/jobs"
	"swap-router.backend/internal/infrastructure/models"
	"swap-router.backend/internal/infrastructure/repositories"
	"swap-router.backend/internal/interfaces/http/handlers"
	"swap-router.backend/internal/interfaces/http/middleware"
	"swap-router.backend/internal/interfaces/ws"
	"swap-router.backend/internal/pricing"
	"swap-router.backend/internal/providers"
	"swap-router.backend/internal/providers/chainflip"
	"swap-router.backend/internal/providers/cowswap"
	"swap-router.backend/internal/providers/jupiter"
	"swap-router.backend/internal/providers/portals"
	"swap-router.backend/internal/providers/relay"
	"swap-router.backend/internal/providers/thorchain"
	"swap-router.backend/internal/providers/zrx"
	"swap-router.backend/internal/routing"
	"swap-router.backend/internal/usecases"
	"swap-router.backend/internal/wallet"
	"swap-router.backend/pkg/logger"
	"swap-router.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
		if err := db.AutoMigrate(&models.SwapQuote{}); err != nil {
			log.Printf("⚠️ Auto-migration failed: %v", err)
		}
	}

	// Derivation keyring. The liveness check derives one address per chain
	// family so a bad mnemonic fails at startup, not at the first quote.
	keyring, err := wallet.NewKeyring(cfg.Wallet.Mnemonic, cfg.Wallet.Passphrase)
	if err != nil {
		return fmt.Errorf("failed to initialize keyring: %w", err)
	}
	if err := keyring.Verify(); err != nil {
		return fmt.Errorf("keyring verification failed: %w", err)
	}
	log.Println("✅ Derivation keyring verified")

	// Routing engine
	cache := routing.NewCache()
	oracle := pricing.NewCachedOracle(
		pricing.NewMidgardOracle(cfg.Providers.ThorchainMidgardURL, cfg.Providers.MayachainMidgardURL, cfg.Providers.QuoteTimeout),
		pricing.DefaultPriceTTL,
	)
	priceFn := pricing.Func(oracle)

	adapters := []providers.Adapter{
		thorchain.New(cfg.Providers.ThorchainNodeURL, cfg.Providers.QuoteTimeout, priceFn),
		thorchain.NewMayachain(cfg.Providers.MayachainNodeURL, cfg.Providers.QuoteTimeout, priceFn),
		chainflip.New(cfg.Providers.ChainflipAPIURL, cfg.Providers.ChainflipAPIKey, cfg.Providers.QuoteTimeout),
		cowswap.New(cfg.Providers.CowSwapBaseURL, cfg.Providers.CowSwapQuoteTimeout),
		zrx.New(cfg.Providers.ZrxBaseURL, cfg.Providers.QuoteTimeout),
		relay.New(cfg.Providers.RelayAPIURL, cfg.Providers.QuoteTimeout),
		portals.New(cfg.Providers.PortalsBaseURL, "", cfg.Providers.QuoteTimeout),
		jupiter.New(cfg.Providers.JupiterAPIURL, cfg.Providers.QuoteTimeout),
	}
	registry := providers.NewRegistry(adapters...)

	catalogs := make([]routing.Catalog, len(adapters))
	for i, a := range adapters {
		catalogs[i] = a
	}
	graph := routing.NewGraph(catalogs, cache)
	pathfinder := routing.NewPathfinder(graph, cache)

	// Initial graph build is best-effort: provider outages must not block
	// startup, the refresh job retries.
	buildCtx, buildCancel := context.WithTimeout(context.Background(), 30*time.Second)
	stats := graph.Rebuild(buildCtx)
	buildCancel()
	log.Printf("✅ Route graph built: %d nodes, %d edges (%d providers failed)",
		stats.Nodes, stats.Edges, len(stats.FailedProviders))

	// Usecases
	classifier := usecases.NewProviderClassifier()
	overhead := usecases.NewGasOverheadModel()
	quoteRepo := repositories.NewSwapQuoteRepository(db)
	quoteUsecase := usecases.NewSwapQuoteUsecase(quoteRepo, keyring, classifier, overhead)
	routingUsecase := usecases.NewRoutingUsecase(graph, pathfinder, registry, oracle, cache, classifier)

	// Deposit indexers
	var evmLookup indexer.Lookup
	if l, err := indexer.NewEVMLookup(cfg.Indexers.EVMRPCURL); err != nil {
		log.Printf("⚠️ EVM indexer unavailable: %v", err)
	} else {
		evmLookup = l
	}
	dispatcher := indexer.NewDispatcher(
		evmLookup,
		indexer.NewUTXOLookup(cfg.Indexers.UTXOIndexerURL, cfg.Providers.QuoteTimeout),
		indexer.NewCosmosLookup(cfg.Indexers.CosmosLCDURL, cfg.Providers.QuoteTimeout),
		indexer.NewSolanaLookup(cfg.Indexers.SolanaRPCURL, cfg.Providers.QuoteTimeout),
	)

	// WebSocket hub
	hub := ws.NewHub(quoteUsecase)
	go hub.Run()

	// Handlers
	swapQuoteHandler := handlers.NewSwapQuoteHandler(quoteUsecase)
	routingHandler := handlers.NewRoutingHandler(routingUsecase)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor := jobs.NewDepositMonitor(quoteUsecase, dispatcher, hub)
	go monitor.Start(ctx)

	refreshJob := jobs.NewGraphRefreshJob(graph)
	go refreshJob.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))

	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		swapQuoteHandler: swapQuoteHandler,
		routingHandler:   routingHandler,
		hub:              hub,
	})

	log.Println("📋 Registered Routes:")
	for _, route := range r.Routes() {
		log.Printf("   %s %s", route.Method, route.Path)
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		monitor.Stop()
		refreshJob.Stop()
		cancel()
	}()

	log.Printf("🚀 Swap Router Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
