package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"swap-router.backend/internal/domain/entities"
)

func newQuote(i int) *entities.SwapQuote {
	now := time.Now()
	return &entities.SwapQuote{
		ID:                        uuid.New(),
		QuoteID:                   uuid.NewString(),
		Status:                    entities.SwapQuoteStatusActive,
		SellAssetID:               entities.AssetBTC,
		BuyAssetID:                entities.AssetETH,
		SellAmountBaseUnit:        "100000000",
		ExpectedBuyAmountBaseUnit: "15000000000000000000",
		DepositAddress:            fmt.Sprintf("bc1qdeposit%d", i),
		ReceiveAddress:            "0xreceive",
		Provider:                  entities.ProviderThorchain,
		ProviderType:              entities.ProviderTypeDirect,
		AddressIndex:              uint32(i),
		ExpiresAt:                 now.Add(30 * time.Minute),
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
}

func TestSwapQuoteRepo_CreateAndGet(t *testing.T) {
	repo := NewSwapQuoteRepository(newTestDB(t))
	ctx := context.Background()

	q := newQuote(0)
	require.NoError(t, repo.Create(ctx, q))

	got, err := repo.GetByQuoteID(ctx, q.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, q.QuoteID, got.QuoteID)
	assert.Equal(t, entities.SwapQuoteStatusActive, got.Status)
	assert.Equal(t, entities.AssetBTC, got.SellAssetID)
	assert.Equal(t, "100000000", got.SellAmountBaseUnit)
	assert.Empty(t, got.DepositTxHash)

	byAddr, err := repo.GetByDepositAddress(ctx, q.DepositAddress)
	require.NoError(t, err)
	assert.Equal(t, q.QuoteID, byAddr.QuoteID)

	_, err = repo.GetByQuoteID(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSwapQuoteRepo_AssetMetadataRoundTrip(t *testing.T) {
	repo := NewSwapQuoteRepository(newTestDB(t))
	ctx := context.Background()

	q := newQuote(0)
	q.SellAsset = json.RawMessage(`{"symbol":"BTC","precision":8}`)
	q.BuyAsset = json.RawMessage(`{"symbol":"ETH","precision":18}`)
	require.NoError(t, repo.Create(ctx, q))

	got, err := repo.GetByQuoteID(ctx, q.QuoteID)
	require.NoError(t, err)
	assert.JSONEq(t, string(q.SellAsset), string(got.SellAsset))
	assert.JSONEq(t, string(q.BuyAsset), string(got.BuyAsset))

	// Quotes created without metadata read back empty.
	bare := newQuote(1)
	require.NoError(t, repo.Create(ctx, bare))
	got, err = repo.GetByQuoteID(ctx, bare.QuoteID)
	require.NoError(t, err)
	assert.Nil(t, got.SellAsset)
	assert.Nil(t, got.BuyAsset)
}

func TestSwapQuoteRepo_DepositAddressUnique(t *testing.T) {
	repo := NewSwapQuoteRepository(newTestDB(t))
	ctx := context.Background()

	a := newQuote(0)
	require.NoError(t, repo.Create(ctx, a))

	b := newQuote(1)
	b.DepositAddress = a.DepositAddress
	assert.Error(t, repo.Create(ctx, b))
}

func TestSwapQuoteRepo_ListByStatusAndCount(t *testing.T) {
	repo := NewSwapQuoteRepository(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newQuote(i)))
	}
	done := newQuote(3)
	done.Status = entities.SwapQuoteStatusCompleted
	require.NoError(t, repo.Create(ctx, done))

	quotes, total, err := repo.ListByStatus(ctx, entities.SwapQuoteStatusActive, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, quotes, 2)

	count, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestSwapQuoteRepo_StatusTransitions(t *testing.T) {
	repo := NewSwapQuoteRepository(newTestDB(t))
	ctx := context.Background()

	q := newQuote(0)
	require.NoError(t, repo.Create(ctx, q))

	require.NoError(t, repo.MarkDepositReceived(ctx, q.QuoteID, "0xdeadbeef"))
	got, err := repo.GetByQuoteID(ctx, q.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, entities.SwapQuoteStatusDepositReceived, got.Status)
	assert.Equal(t, "0xdeadbeef", got.DepositTxHash)

	require.NoError(t, repo.UpdateStatus(ctx, q.QuoteID, entities.SwapQuoteStatusExecuting))
	require.NoError(t, repo.MarkCompleted(ctx, q.QuoteID, "0xexec"))

	got, err = repo.GetByQuoteID(ctx, q.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, entities.SwapQuoteStatusCompleted, got.Status)
	assert.Equal(t, "0xexec", got.ExecutionTxHash)
	require.NotNil(t, got.ExecutedAt)
}

func TestSwapQuoteRepo_ExpireQuotes(t *testing.T) {
	repo := NewSwapQuoteRepository(newTestDB(t))
	ctx := context.Background()

	stale := newQuote(0)
	stale.ExpiresAt = time.Now().Add(-time.Minute)
	fresh := newQuote(1)
	require.NoError(t, repo.Create(ctx, stale))
	require.NoError(t, repo.Create(ctx, fresh))

	expired, err := repo.GetExpiredActive(ctx, 100)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, stale.QuoteID, expired[0].QuoteID)

	require.NoError(t, repo.ExpireQuotes(ctx, []uuid.UUID{expired[0].ID}))
	got, err := repo.GetByQuoteID(ctx, stale.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, entities.SwapQuoteStatusExpired, got.Status)

	// Empty batch is a no-op.
	assert.NoError(t, repo.ExpireQuotes(ctx, nil))
}

func TestSwapQuoteRepo_ExpireQuotesSkipsNonActive(t *testing.T) {
	repo := NewSwapQuoteRepository(newTestDB(t))
	ctx := context.Background()

	// Deposit lands between the sweep's list and its bulk update: the quote
	// must keep its state.
	q := newQuote(0)
	q.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, repo.Create(ctx, q))
	require.NoError(t, repo.MarkDepositReceived(ctx, q.QuoteID, "0xlanded"))

	require.NoError(t, repo.ExpireQuotes(ctx, []uuid.UUID{q.ID}))

	got, err := repo.GetByQuoteID(ctx, q.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, entities.SwapQuoteStatusDepositReceived, got.Status)
	assert.Equal(t, "0xlanded", got.DepositTxHash)
}
