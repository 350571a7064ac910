package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"swap-router.backend/internal/domain/entities"
	"swap-router.backend/internal/infrastructure/models"
)

// SwapQuoteRepositoryImpl implements SwapQuoteRepository
type SwapQuoteRepositoryImpl struct {
	db *gorm.DB
}

func NewSwapQuoteRepository(db *gorm.DB) *SwapQuoteRepositoryImpl {
	return &SwapQuoteRepositoryImpl{db: db}
}

func (r *SwapQuoteRepositoryImpl) Create(ctx context.Context, quote *entities.SwapQuote) error {
	now := time.Now()
	m := &models.SwapQuote{
		ID:              quote.ID,
		QuoteID:         quote.QuoteID,
		Status:          string(quote.Status),
		SellAssetID:     string(quote.SellAssetID),
		BuyAssetID:      string(quote.BuyAssetID),
		SellAsset:       string(quote.SellAsset),
		BuyAsset:        string(quote.BuyAsset),
		SellAmount:      quote.SellAmountBaseUnit,
		ExpectedAmount:  quote.ExpectedBuyAmountBaseUnit,
		DepositAddress:  quote.DepositAddress,
		ReceiveAddress:  quote.ReceiveAddress,
		Provider:        string(quote.Provider),
		ProviderType:    string(quote.ProviderType),
		AddressIndex:    quote.AddressIndex,
		GasOverhead:     quote.GasOverheadBaseUnit,
		DepositTxHash:   null.NewString(quote.DepositTxHash, quote.DepositTxHash != ""),
		ExecutionTxHash: null.NewString(quote.ExecutionTxHash, quote.ExecutionTxHash != ""),
		ExpiresAt:       quote.ExpiresAt,
		ExecutedAt:      quote.ExecutedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *SwapQuoteRepositoryImpl) GetByQuoteID(ctx context.Context, quoteID string) (*entities.SwapQuote, error) {
	var m models.SwapQuote
	if err := r.db.WithContext(ctx).Where("quote_id = ?", quoteID).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *SwapQuoteRepositoryImpl) GetByDepositAddress(ctx context.Context, address string) (*entities.SwapQuote, error) {
	var m models.SwapQuote
	if err := r.db.WithContext(ctx).Where("deposit_address = ?", address).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *SwapQuoteRepositoryImpl) ListByStatus(ctx context.Context, status entities.SwapQuoteStatus, limit, offset int) ([]*entities.SwapQuote, int, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.SwapQuote{}).
		Where("status = ?", string(status)).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.SwapQuote
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	var quotes []*entities.SwapQuote
	for _, m := range ms {
		model := m
		quotes = append(quotes, r.toEntity(&model))
	}
	return quotes, int(total), nil
}

// CountAll includes soft-deleted rows so that derivation indices are never
// reused for a new deposit address.
func (r *SwapQuoteRepositoryImpl) CountAll(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.SwapQuote{}).Count(&total).Error
	return total, err
}

func (r *SwapQuoteRepositoryImpl) UpdateStatus(ctx context.Context, quoteID string, status entities.SwapQuoteStatus) error {
	return r.db.WithContext(ctx).Model(&models.SwapQuote{}).
		Where("quote_id = ?", quoteID).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		}).Error
}

func (r *SwapQuoteRepositoryImpl) MarkDepositReceived(ctx context.Context, quoteID, txHash string) error {
	return r.db.WithContext(ctx).Model(&models.SwapQuote{}).
		Where("quote_id = ?", quoteID).
		Updates(map[string]interface{}{
			"status":          string(entities.SwapQuoteStatusDepositReceived),
			"deposit_tx_hash": txHash,
			"updated_at":      time.Now(),
		}).Error
}

func (r *SwapQuoteRepositoryImpl) MarkCompleted(ctx context.Context, quoteID, txHash string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.SwapQuote{}).
		Where("quote_id = ?", quoteID).
		Updates(map[string]interface{}{
			"status":            string(entities.SwapQuoteStatusCompleted),
			"execution_tx_hash": txHash,
			"executed_at":       now,
			"updated_at":        now,
		}).Error
}

func (r *SwapQuoteRepositoryImpl) GetExpiredActive(ctx context.Context, limit int) ([]*entities.SwapQuote, error) {
	var ms []models.SwapQuote
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", string(entities.SwapQuoteStatusActive), time.Now()).
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	var quotes []*entities.SwapQuote
	for _, m := range ms {
		model := m
		quotes = append(quotes, r.toEntity(&model))
	}
	return quotes, nil
}

func (r *SwapQuoteRepositoryImpl) ExpireQuotes(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	// Only ACTIVE rows expire: a quote whose deposit landed between the
	// sweep's list and this update must keep its state.
	return r.db.WithContext(ctx).Model(&models.SwapQuote{}).
		Where("id IN ? AND status = ?", ids, string(entities.SwapQuoteStatusActive)).
		Updates(map[string]interface{}{
			"status":     string(entities.SwapQuoteStatusExpired),
			"updated_at": time.Now(),
		}).Error
}

// rawJSON treats the column's empty/default states as "no metadata stored".
func rawJSON(s string) json.RawMessage {
	if s == "" || s == "{}" {
		return nil
	}
	return json.RawMessage(s)
}

func (r *SwapQuoteRepositoryImpl) toEntity(m *models.SwapQuote) *entities.SwapQuote {
	return &entities.SwapQuote{
		ID:                        m.ID,
		QuoteID:                   m.QuoteID,
		Status:                    entities.SwapQuoteStatus(m.Status),
		SellAssetID:               entities.AssetID(m.SellAssetID),
		BuyAssetID:                entities.AssetID(m.BuyAssetID),
		SellAsset:                 rawJSON(m.SellAsset),
		BuyAsset:                  rawJSON(m.BuyAsset),
		SellAmountBaseUnit:        m.SellAmount,
		ExpectedBuyAmountBaseUnit: m.ExpectedAmount,
		DepositAddress:            m.DepositAddress,
		ReceiveAddress:            m.ReceiveAddress,
		Provider:                  entities.Provider(m.Provider),
		ProviderType:              entities.ProviderType(m.ProviderType),
		AddressIndex:              m.AddressIndex,
		GasOverheadBaseUnit:       m.GasOverhead,
		DepositTxHash:             m.DepositTxHash.String,
		ExecutionTxHash:           m.ExecutionTxHash.String,
		ExpiresAt:                 m.ExpiresAt,
		ExecutedAt:                m.ExecutedAt,
		CreatedAt:                 m.CreatedAt,
		UpdatedAt:                 m.UpdatedAt,
	}
}
