package repositories

import (
	"context"

	"github.com/google/uuid"
	"swap-router.backend/internal/domain/entities"
)

// SwapQuoteRepository persists send-swap quotes and their lifecycle updates.
type SwapQuoteRepository interface {
	Create(ctx context.Context, quote *entities.SwapQuote) error
	GetByQuoteID(ctx context.Context, quoteID string) (*entities.SwapQuote, error)
	GetByDepositAddress(ctx context.Context, address string) (*entities.SwapQuote, error)
	ListByStatus(ctx context.Context, status entities.SwapQuoteStatus, limit, offset int) ([]*entities.SwapQuote, int, error)
	CountAll(ctx context.Context) (int64, error)
	UpdateStatus(ctx context.Context, quoteID string, status entities.SwapQuoteStatus) error
	MarkDepositReceived(ctx context.Context, quoteID, txHash string) error
	MarkCompleted(ctx context.Context, quoteID, txHash string) error
	GetExpiredActive(ctx context.Context, limit int) ([]*entities.SwapQuote, error)
	ExpireQuotes(ctx context.Context, ids []uuid.UUID) error
}
