package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"swap-router.backend/internal/domain/entities"
	domainerrors "swap-router.backend/internal/domain/errors"
	"swap-router.backend/internal/domain/repositories"
	"swap-router.backend/internal/providers"
	"swap-router.backend/pkg/logger"
	"swap-router.backend/pkg/utils"
)

// AddressDeriver derives deterministic deposit addresses per chain.
type AddressDeriver interface {
	DepositAddress(chainID string, account, index uint32) (string, error)
}

// CreateSwapQuoteRequest is the send-swap quote creation contract. SellAsset
// and BuyAsset carry the client's display metadata (symbol, name, precision)
// and are persisted verbatim.
type CreateSwapQuoteRequest struct {
	SellAssetID               entities.AssetID  `json:"sellAssetId"`
	BuyAssetID                entities.AssetID  `json:"buyAssetId"`
	SellAsset                 json.RawMessage   `json:"sellAsset,omitempty"`
	BuyAsset                  json.RawMessage   `json:"buyAsset,omitempty"`
	SellAmountBaseUnit        string            `json:"sellAmountCryptoBaseUnit"`
	ExpectedBuyAmountBaseUnit string            `json:"expectedBuyAmountCryptoBaseUnit"`
	ReceiveAddress            string            `json:"receiveAddress"`
	Provider                  entities.Provider `json:"swapperName"`
}

// SwapQuoteDTO is the API shape of a quote: the entity plus the scannable
// payment URI.
type SwapQuoteDTO struct {
	*entities.SwapQuote
	QRData string `json:"qrData,omitempty"`
}

// SwapQuoteUsecase owns the send-swap quote lifecycle.
type SwapQuoteUsecase struct {
	repo       repositories.SwapQuoteRepository
	deriver    AddressDeriver
	classifier *ProviderClassifier
	overhead   *GasOverheadModel
	now        func() time.Time
}

func NewSwapQuoteUsecase(
	repo repositories.SwapQuoteRepository,
	deriver AddressDeriver,
	classifier *ProviderClassifier,
	overhead *GasOverheadModel,
) *SwapQuoteUsecase {
	return &SwapQuoteUsecase{
		repo:       repo,
		deriver:    deriver,
		classifier: classifier,
		overhead:   overhead,
		now:        time.Now,
	}
}

// Create validates the provider, allocates a fresh deposit address and
// persists the quote as ACTIVE.
func (u *SwapQuoteUsecase) Create(ctx context.Context, req CreateSwapQuoteRequest) (*SwapQuoteDTO, error) {
	if !req.SellAssetID.IsValid() || !req.BuyAssetID.IsValid() {
		return nil, domainerrors.BadRequest("malformed asset id")
	}
	if _, err := providers.ParseBaseUnit(req.SellAmountBaseUnit); err != nil {
		return nil, domainerrors.BadRequest(err.Error())
	}
	if req.ReceiveAddress == "" {
		return nil, domainerrors.BadRequest("receiveAddress is required")
	}
	if err := u.classifier.ValidateForQuote(req.Provider); err != nil {
		return nil, domainerrors.NewAppError(400, domainerrors.CodeProviderDisallowed, err.Error(), err)
	}

	sellChainID := req.SellAssetID.ChainID()
	if entities.ChainIDFamily(sellChainID) == entities.FamilyUnknown {
		return nil, domainerrors.UnsupportedAsset(fmt.Sprintf("no derivation scheme for chain %s", sellChainID))
	}

	// Index allocation is advisory: row count at creation time. Concurrent
	// creation may reuse an index; uniqueness of the resulting address is
	// enforced by the deposit_address unique constraint.
	count, err := u.repo.CountAll(ctx)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	addressIndex := uint32(count)

	depositAddress, err := u.deriver.DepositAddress(sellChainID, 0, addressIndex)
	if err != nil {
		return nil, domainerrors.UnsupportedAsset(err.Error())
	}

	providerType := u.classifier.TypeOf(req.Provider)
	gasOverhead := ""
	if providerType == entities.ProviderTypeServiceCustody {
		gasOverhead = u.overhead.Overhead(sellChainID, providerType)
	}

	now := u.now()
	quote := &entities.SwapQuote{
		ID:                        utils.GenerateUUIDv7(),
		QuoteID:                   uuid.NewString(),
		Status:                    entities.SwapQuoteStatusActive,
		SellAssetID:               req.SellAssetID,
		BuyAssetID:                req.BuyAssetID,
		SellAsset:                 req.SellAsset,
		BuyAsset:                  req.BuyAsset,
		SellAmountBaseUnit:        req.SellAmountBaseUnit,
		ExpectedBuyAmountBaseUnit: req.ExpectedBuyAmountBaseUnit,
		DepositAddress:            depositAddress,
		ReceiveAddress:            req.ReceiveAddress,
		Provider:                  req.Provider,
		ProviderType:              providerType,
		AddressIndex:              addressIndex,
		GasOverheadBaseUnit:       gasOverhead,
		ExpiresAt:                 now.Add(entities.SwapQuoteExpiry),
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}

	if err := u.repo.Create(ctx, quote); err != nil {
		return nil, domainerrors.InternalError(err)
	}

	logger.Info(ctx, "swap quote created",
		zap.String("quote_id", quote.QuoteID),
		zap.String("provider", string(quote.Provider)),
		zap.String("deposit_address", quote.DepositAddress),
		zap.Uint32("address_index", quote.AddressIndex))

	return u.toDTO(quote), nil
}

// Get fetches a quote by its quote ID, lazily expiring it when the deposit
// window has passed.
func (u *SwapQuoteUsecase) Get(ctx context.Context, quoteID string) (*SwapQuoteDTO, error) {
	quote, err := u.repo.GetByQuoteID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NotFound("quote not found")
		}
		return nil, domainerrors.InternalError(err)
	}
	if err := u.lazyExpire(ctx, quote); err != nil {
		return nil, err
	}
	return u.toDTO(quote), nil
}

// GetByDepositAddress fetches a quote by deposit address with the same lazy
// expiration as Get.
func (u *SwapQuoteUsecase) GetByDepositAddress(ctx context.Context, address string) (*SwapQuoteDTO, error) {
	quote, err := u.repo.GetByDepositAddress(ctx, address)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NotFound("quote not found")
		}
		return nil, domainerrors.InternalError(err)
	}
	if err := u.lazyExpire(ctx, quote); err != nil {
		return nil, err
	}
	return u.toDTO(quote), nil
}

// ListActive returns ACTIVE quotes, newest first.
func (u *SwapQuoteUsecase) ListActive(ctx context.Context, limit, offset int) ([]*SwapQuoteDTO, int, error) {
	quotes, total, err := u.repo.ListByStatus(ctx, entities.SwapQuoteStatusActive, limit, offset)
	if err != nil {
		return nil, 0, domainerrors.InternalError(err)
	}
	out := make([]*SwapQuoteDTO, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, u.toDTO(q))
	}
	return out, total, nil
}

// ListToMonitor returns quotes the deposit monitor should scan: ACTIVE or
// DEPOSIT_RECEIVED and not past their deposit window.
func (u *SwapQuoteUsecase) ListToMonitor(ctx context.Context, limit int) ([]*entities.SwapQuote, error) {
	now := u.now()
	var out []*entities.SwapQuote
	for _, status := range []entities.SwapQuoteStatus{entities.SwapQuoteStatusActive, entities.SwapQuoteStatusDepositReceived} {
		quotes, _, err := u.repo.ListByStatus(ctx, status, limit, 0)
		if err != nil {
			return nil, err
		}
		for _, q := range quotes {
			if q.Status == entities.SwapQuoteStatusActive && now.After(q.ExpiresAt) {
				continue
			}
			out = append(out, q)
		}
	}
	return out, nil
}

// MarkDepositReceived transitions ACTIVE -> DEPOSIT_RECEIVED and records the
// deposit transaction. Repeated detections of the same deposit are a no-op:
// the quote stays in DEPOSIT_RECEIVED with its original tx hash.
func (u *SwapQuoteUsecase) MarkDepositReceived(ctx context.Context, quoteID, txHash string) error {
	quote, err := u.repo.GetByQuoteID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.NotFound("quote not found")
		}
		return domainerrors.InternalError(err)
	}
	if err := u.lazyExpire(ctx, quote); err != nil {
		return err
	}
	if quote.Status == entities.SwapQuoteStatusDepositReceived {
		return nil
	}
	if !quote.Status.CanTransitionTo(entities.SwapQuoteStatusDepositReceived) {
		return domainerrors.InvalidState(fmt.Sprintf("cannot transition %s from %s to %s",
			quoteID, quote.Status, entities.SwapQuoteStatusDepositReceived))
	}
	if err := u.repo.MarkDepositReceived(ctx, quote.QuoteID, txHash); err != nil {
		return domainerrors.InternalError(err)
	}
	logger.Info(ctx, "deposit received",
		zap.String("quote_id", quoteID),
		zap.String("tx_hash", txHash))
	return nil
}

// MarkExecuting transitions DEPOSIT_RECEIVED -> EXECUTING.
func (u *SwapQuoteUsecase) MarkExecuting(ctx context.Context, quoteID string) error {
	if _, err := u.loadForTransition(ctx, quoteID, entities.SwapQuoteStatusExecuting); err != nil {
		return err
	}
	if err := u.repo.UpdateStatus(ctx, quoteID, entities.SwapQuoteStatusExecuting); err != nil {
		return domainerrors.InternalError(err)
	}
	return nil
}

// MarkCompleted transitions EXECUTING -> COMPLETED with the execution tx.
func (u *SwapQuoteUsecase) MarkCompleted(ctx context.Context, quoteID, txHash string) error {
	if _, err := u.loadForTransition(ctx, quoteID, entities.SwapQuoteStatusCompleted); err != nil {
		return err
	}
	if err := u.repo.MarkCompleted(ctx, quoteID, txHash); err != nil {
		return domainerrors.InternalError(err)
	}
	return nil
}

// MarkFailed moves any non-terminal quote to FAILED.
func (u *SwapQuoteUsecase) MarkFailed(ctx context.Context, quoteID string) error {
	if _, err := u.loadForTransition(ctx, quoteID, entities.SwapQuoteStatusFailed); err != nil {
		return err
	}
	if err := u.repo.UpdateStatus(ctx, quoteID, entities.SwapQuoteStatusFailed); err != nil {
		return domainerrors.InternalError(err)
	}
	return nil
}

// ExpireStale batch-expires ACTIVE quotes past their deposit window and
// returns how many were transitioned.
func (u *SwapQuoteUsecase) ExpireStale(ctx context.Context) (int, error) {
	stale, err := u.repo.GetExpiredActive(ctx, 100)
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}
	ids := make([]uuid.UUID, 0, len(stale))
	for _, q := range stale {
		ids = append(ids, q.ID)
	}
	if err := u.repo.ExpireQuotes(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (u *SwapQuoteUsecase) loadForTransition(ctx context.Context, quoteID string, next entities.SwapQuoteStatus) (*entities.SwapQuote, error) {
	quote, err := u.repo.GetByQuoteID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NotFound("quote not found")
		}
		return nil, domainerrors.InternalError(err)
	}
	if err := u.lazyExpire(ctx, quote); err != nil {
		return nil, err
	}
	if !quote.Status.CanTransitionTo(next) {
		return nil, domainerrors.InvalidState(fmt.Sprintf("cannot transition %s from %s to %s", quoteID, quote.Status, next))
	}
	return quote, nil
}

// lazyExpire persists the ACTIVE -> EXPIRED transition on read when the
// deposit window has passed.
func (u *SwapQuoteUsecase) lazyExpire(ctx context.Context, quote *entities.SwapQuote) error {
	if !quote.IsExpired(u.now()) {
		return nil
	}
	if err := u.repo.UpdateStatus(ctx, quote.QuoteID, entities.SwapQuoteStatusExpired); err != nil {
		return domainerrors.InternalError(err)
	}
	quote.Status = entities.SwapQuoteStatusExpired
	return nil
}

func (u *SwapQuoteUsecase) toDTO(quote *entities.SwapQuote) *SwapQuoteDTO {
	dto := &SwapQuoteDTO{SwapQuote: quote}
	uri, err := BuildPaymentURI(quote.SellAssetID, quote.DepositAddress, quote.SellAmountBaseUnit)
	if err == nil {
		dto.QRData = uri
	}
	return dto
}
