package pricing

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"swap-router.backend/internal/domain/entities"
	"swap-router.backend/internal/providers"
	"swap-router.backend/internal/providers/thorchain"
	"swap-router.backend/pkg/logger"
)

// Oracle resolves asset USD prices. The bool return is false when the price
// is unavailable; callers degrade to "no USD figure" rather than failing.
type Oracle interface {
	PriceUSD(ctx context.Context, asset entities.AssetID) (float64, bool)
}

// MidgardOracle prices assets from Midgard pool depth data. Thorchain and
// Mayachain Midgard instances are queried in order; the first hit wins.
type MidgardOracle struct {
	http     *http.Client
	baseURLs []string
}

func NewMidgardOracle(thorchainURL, mayachainURL string, timeout time.Duration) *MidgardOracle {
	return &MidgardOracle{
		http: &http.Client{Timeout: timeout},
		baseURLs: []string{
			strings.TrimRight(thorchainURL, "/"),
			strings.TrimRight(mayachainURL, "/"),
		},
	}
}

type midgardPool struct {
	Asset         string `json:"asset"`
	AssetPriceUSD string `json:"assetPriceUSD"`
	Status        string `json:"status"`
}

// PriceUSD fetches pool listings and scans them for the asset. Network or
// parse failures log a warning and report the price as unavailable.
func (o *MidgardOracle) PriceUSD(ctx context.Context, asset entities.AssetID) (float64, bool) {
	for _, base := range o.baseURLs {
		if base == "" {
			continue
		}
		var pools []midgardPool
		if err := providers.DoJSON(ctx, o.http, http.MethodGet, base+"/v2/pools", nil, nil, &pools); err != nil {
			logger.GetLogger().Warn("midgard pool fetch failed",
				zap.String("base_url", base),
				zap.Error(err))
			continue
		}
		for _, pool := range pools {
			aid, err := thorchain.PoolAssetToID(pool.Asset)
			if err != nil || aid != asset {
				continue
			}
			price, err := strconv.ParseFloat(pool.AssetPriceUSD, 64)
			if err != nil || price <= 0 {
				continue
			}
			return price, true
		}
	}
	return 0, false
}

// CachedOracle memoizes prices for a TTL so that quote fan-outs do not hit
// Midgard once per step.
type CachedOracle struct {
	inner Oracle
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	entries map[entities.AssetID]cachedPrice
}

type cachedPrice struct {
	price     float64
	ok        bool
	expiresAt time.Time
}

const DefaultPriceTTL = 60 * time.Second

func NewCachedOracle(inner Oracle, ttl time.Duration) *CachedOracle {
	if ttl <= 0 {
		ttl = DefaultPriceTTL
	}
	return &CachedOracle{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[entities.AssetID]cachedPrice),
	}
}

func (c *CachedOracle) PriceUSD(ctx context.Context, asset entities.AssetID) (float64, bool) {
	c.mu.Lock()
	if e, ok := c.entries[asset]; ok && c.now().Before(e.expiresAt) {
		c.mu.Unlock()
		return e.price, e.ok
	}
	c.mu.Unlock()

	price, ok := c.inner.PriceUSD(ctx, asset)

	c.mu.Lock()
	c.entries[asset] = cachedPrice{price: price, ok: ok, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return price, ok
}

// Func adapts an Oracle to the providers.PriceFunc callback shape.
func Func(o Oracle) providers.PriceFunc {
	return o.PriceUSD
}
