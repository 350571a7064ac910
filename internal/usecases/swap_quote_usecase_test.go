package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"swap-router.backend/internal/domain/entities"
	domainerrors "swap-router.backend/internal/domain/errors"
)

// memQuoteRepo is an in-memory SwapQuoteRepository for usecase tests.
type memQuoteRepo struct {
	mu     sync.Mutex
	quotes []*entities.SwapQuote
}

func (r *memQuoteRepo) Create(ctx context.Context, q *entities.SwapQuote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.quotes {
		if existing.DepositAddress == q.DepositAddress {
			return fmt.Errorf("duplicate deposit address %s", q.DepositAddress)
		}
	}
	cp := *q
	r.quotes = append(r.quotes, &cp)
	return nil
}

func (r *memQuoteRepo) GetByQuoteID(ctx context.Context, quoteID string) (*entities.SwapQuote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.quotes {
		if q.QuoteID == quoteID {
			cp := *q
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memQuoteRepo) GetByDepositAddress(ctx context.Context, address string) (*entities.SwapQuote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.quotes {
		if q.DepositAddress == address {
			cp := *q
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memQuoteRepo) ListByStatus(ctx context.Context, status entities.SwapQuoteStatus, limit, offset int) ([]*entities.SwapQuote, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*entities.SwapQuote
	for _, q := range r.quotes {
		if q.Status == status {
			cp := *q
			matched = append(matched, &cp)
		}
	}
	total := len(matched)
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (r *memQuoteRepo) CountAll(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.quotes)), nil
}

func (r *memQuoteRepo) UpdateStatus(ctx context.Context, quoteID string, status entities.SwapQuoteStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.quotes {
		if q.QuoteID == quoteID {
			q.Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memQuoteRepo) MarkDepositReceived(ctx context.Context, quoteID, txHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.quotes {
		if q.QuoteID == quoteID {
			q.Status = entities.SwapQuoteStatusDepositReceived
			q.DepositTxHash = txHash
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memQuoteRepo) MarkCompleted(ctx context.Context, quoteID, txHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.quotes {
		if q.QuoteID == quoteID {
			q.Status = entities.SwapQuoteStatusCompleted
			q.ExecutionTxHash = txHash
			now := time.Now()
			q.ExecutedAt = &now
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memQuoteRepo) GetExpiredActive(ctx context.Context, limit int) ([]*entities.SwapQuote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var out []*entities.SwapQuote
	for _, q := range r.quotes {
		if q.Status == entities.SwapQuoteStatusActive && now.After(q.ExpiresAt) {
			cp := *q
			out = append(out, &cp)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memQuoteRepo) ExpireQuotes(ctx context.Context, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.quotes {
		for _, id := range ids {
			if q.ID == id {
				q.Status = entities.SwapQuoteStatusExpired
			}
		}
	}
	return nil
}

// stubDeriver derives synthetic but unique addresses per chain and index.
type stubDeriver struct{}

func (stubDeriver) DepositAddress(chainID string, account, index uint32) (string, error) {
	if entities.ChainIDFamily(chainID) == entities.FamilyUnknown {
		return "", fmt.Errorf("no derivation scheme for chain %s", chainID)
	}
	return fmt.Sprintf("addr-%s-%d-%d", chainID, account, index), nil
}

func newQuoteUsecase() (*SwapQuoteUsecase, *memQuoteRepo) {
	repo := &memQuoteRepo{}
	u := NewSwapQuoteUsecase(repo, stubDeriver{}, NewProviderClassifier(), NewGasOverheadModel())
	return u, repo
}

func validCreateRequest() CreateSwapQuoteRequest {
	return CreateSwapQuoteRequest{
		SellAssetID:               entities.AssetBTC,
		BuyAssetID:                entities.AssetETH,
		SellAmountBaseUnit:        "100000000",
		ExpectedBuyAmountBaseUnit: "15000000000000000000",
		ReceiveAddress:            "0xreceive",
		Provider:                  entities.ProviderThorchain,
	}
}

func TestSwapQuoteCreate(t *testing.T) {
	u, _ := newQuoteUsecase()

	dto, err := u.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, entities.SwapQuoteStatusActive, dto.Status)
	assert.Equal(t, uint32(0), dto.AddressIndex)
	assert.NotEmpty(t, dto.QuoteID)
	assert.NotEmpty(t, dto.DepositAddress)
	// Direct providers carry no gas overhead.
	assert.Empty(t, dto.GasOverheadBaseUnit)
	assert.Contains(t, dto.QRData, "bitcoin:")
	assert.WithinDuration(t, time.Now().Add(entities.SwapQuoteExpiry), dto.ExpiresAt, time.Minute)

	// The next quote gets the next derivation index.
	second, err := u.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, uint32(1), second.AddressIndex)
	assert.NotEqual(t, dto.DepositAddress, second.DepositAddress)
}

func TestSwapQuoteCreate_ServiceCustodyGasOverhead(t *testing.T) {
	u, _ := newQuoteUsecase()

	req := validCreateRequest()
	req.SellAssetID = entities.AssetUSDCEthereum
	req.BuyAssetID = entities.AssetUSDTEthereum
	req.Provider = entities.ProviderZrx

	dto, err := u.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, entities.ProviderTypeServiceCustody, dto.ProviderType)
	// Ethereum overhead: 0.004 ETH * 1.3.
	assert.Equal(t, "5200000000000000", dto.GasOverheadBaseUnit)
}

func TestSwapQuoteCreate_Validation(t *testing.T) {
	u, _ := newQuoteUsecase()
	ctx := context.Background()

	req := validCreateRequest()
	req.SellAssetID = "garbage"
	_, err := u.Create(ctx, req)
	assert.Error(t, err)

	req = validCreateRequest()
	req.SellAmountBaseUnit = "0"
	_, err = u.Create(ctx, req)
	assert.Error(t, err)

	req = validCreateRequest()
	req.ReceiveAddress = ""
	_, err = u.Create(ctx, req)
	assert.Error(t, err)

	req = validCreateRequest()
	req.Provider = "Mystery"
	_, err = u.Create(ctx, req)
	assert.Error(t, err)

	req = validCreateRequest()
	req.SellAssetID = "polkadot:91b171bb/slip44:354"
	_, err = u.Create(ctx, req)
	assert.ErrorIs(t, err, domainerrors.ErrUnsupportedAsset)
}

func TestSwapQuoteGet_LazyExpiry(t *testing.T) {
	u, _ := newQuoteUsecase()

	dto, err := u.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	// Move the clock past the deposit window.
	u.now = func() time.Time { return time.Now().Add(entities.SwapQuoteExpiry + time.Minute) }

	got, err := u.Get(context.Background(), dto.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, entities.SwapQuoteStatusExpired, got.Status)

	// The expiry was persisted, not just reported.
	raw, err := u.repo.GetByQuoteID(context.Background(), dto.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, entities.SwapQuoteStatusExpired, raw.Status)
}

func TestSwapQuoteGet_NotFound(t *testing.T) {
	u, _ := newQuoteUsecase()
	_, err := u.Get(context.Background(), "missing")
	require.Error(t, err)
	appErr, ok := err.(*domainerrors.AppError)
	require.True(t, ok)
	assert.Equal(t, domainerrors.CodeNotFound, appErr.Code)
}

func TestSwapQuoteLifecycle(t *testing.T) {
	u, _ := newQuoteUsecase()
	ctx := context.Background()

	dto, err := u.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, u.MarkDepositReceived(ctx, dto.QuoteID, "0xdeposit"))
	require.NoError(t, u.MarkExecuting(ctx, dto.QuoteID))
	require.NoError(t, u.MarkCompleted(ctx, dto.QuoteID, "0xexec"))

	got, err := u.Get(ctx, dto.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, entities.SwapQuoteStatusCompleted, got.Status)
	assert.Equal(t, "0xexec", got.ExecutionTxHash)
}

func TestSwapQuoteLifecycle_InvalidTransitions(t *testing.T) {
	u, _ := newQuoteUsecase()
	ctx := context.Background()

	dto, err := u.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	// Cannot execute before the deposit arrives.
	err = u.MarkExecuting(ctx, dto.QuoteID)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)

	// Repeated deposit detection is a no-op, not an error.
	require.NoError(t, u.MarkDepositReceived(ctx, dto.QuoteID, "0xdeposit"))
	require.NoError(t, u.MarkDepositReceived(ctx, dto.QuoteID, "0xdeposit"))

	// Failure is reachable from any non-terminal state, but terminal states
	// are frozen.
	require.NoError(t, u.MarkFailed(ctx, dto.QuoteID))
	err = u.MarkDepositReceived(ctx, dto.QuoteID, "0xagain")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)
}

func TestSwapQuoteCreate_CarriesAssetMetadata(t *testing.T) {
	u, _ := newQuoteUsecase()
	ctx := context.Background()

	req := validCreateRequest()
	req.SellAsset = json.RawMessage(`{"symbol":"BTC","precision":8}`)
	req.BuyAsset = json.RawMessage(`{"symbol":"ETH","precision":18}`)

	dto, err := u.Create(ctx, req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"BTC","precision":8}`, string(dto.SellAsset))

	got, err := u.Get(ctx, dto.QuoteID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"ETH","precision":18}`, string(got.BuyAsset))
}

func TestSwapQuoteMarkDepositReceived_Idempotent(t *testing.T) {
	u, _ := newQuoteUsecase()
	ctx := context.Background()

	dto, err := u.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, u.MarkDepositReceived(ctx, dto.QuoteID, "0xfirst"))
	// A second notification, even with a different tx hash, leaves the row
	// untouched.
	require.NoError(t, u.MarkDepositReceived(ctx, dto.QuoteID, "0xsecond"))

	got, err := u.Get(ctx, dto.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, entities.SwapQuoteStatusDepositReceived, got.Status)
	assert.Equal(t, "0xfirst", got.DepositTxHash)
}

func TestSwapQuoteListToMonitor(t *testing.T) {
	u, repo := newQuoteUsecase()
	ctx := context.Background()

	active, err := u.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	received, err := u.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	require.NoError(t, u.MarkDepositReceived(ctx, received.QuoteID, "0xd"))

	// An expired ACTIVE quote is skipped.
	stale, err := u.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	repo.mu.Lock()
	for _, q := range repo.quotes {
		if q.QuoteID == stale.QuoteID {
			q.ExpiresAt = time.Now().Add(-time.Minute)
		}
	}
	repo.mu.Unlock()

	toMonitor, err := u.ListToMonitor(ctx, 100)
	require.NoError(t, err)
	ids := make(map[string]bool)
	for _, q := range toMonitor {
		ids[q.QuoteID] = true
	}
	assert.True(t, ids[active.QuoteID])
	assert.True(t, ids[received.QuoteID])
	assert.False(t, ids[stale.QuoteID])
}

func TestSwapQuoteExpireStale(t *testing.T) {
	u, repo := newQuoteUsecase()
	ctx := context.Background()

	fresh, err := u.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	stale, err := u.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	repo.mu.Lock()
	for _, q := range repo.quotes {
		if q.QuoteID == stale.QuoteID {
			q.ExpiresAt = time.Now().Add(-time.Minute)
		}
	}
	repo.mu.Unlock()

	n, err := u.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := u.Get(ctx, stale.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, entities.SwapQuoteStatusExpired, got.Status)

	got, err = u.Get(ctx, fresh.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, entities.SwapQuoteStatusActive, got.Status)
}
