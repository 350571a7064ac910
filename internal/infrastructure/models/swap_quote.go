package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

type SwapQuote struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	QuoteID         string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	Status          string    `gorm:"type:varchar(32);not null;index"`
	SellAssetID     string    `gorm:"type:varchar(255);not null"`
	BuyAssetID      string    `gorm:"type:varchar(255);not null"`
	SellAsset       string    `gorm:"type:jsonb;default:'{}'"`
	BuyAsset        string    `gorm:"type:jsonb;default:'{}'"`
	SellAmount      string    `gorm:"type:varchar(100);not null"`
	ExpectedAmount  string    `gorm:"type:varchar(100);not null"`
	DepositAddress  string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	ReceiveAddress  string    `gorm:"type:varchar(255);not null"`
	Provider        string    `gorm:"type:varchar(64);not null"`
	ProviderType    string    `gorm:"type:varchar(32);not null"`
	AddressIndex    uint32    `gorm:"not null"`
	GasOverhead     string    `gorm:"type:varchar(100)"`
	DepositTxHash   null.String `gorm:"type:varchar(255)"`
	ExecutionTxHash null.String `gorm:"type:varchar(255)"`
	ExpiresAt       time.Time `gorm:"not null;index"`
	ExecutedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}
