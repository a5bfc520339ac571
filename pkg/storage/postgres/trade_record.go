package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is one executed trade stored in the durable trade log. The
// candle engine treats this table as its source of truth at bootstrap.
type TradeRecord struct {
	ID uint `gorm:"primaryKey"`

	Symbol    string          `gorm:"type:text;not null;index:idx_trade_symbol;index:idx_trade_symbol_time"`
	Price     decimal.Decimal `gorm:"type:numeric;not null"`
	Quantity  decimal.Decimal `gorm:"type:numeric;not null"`
	TradeTime int64           `gorm:"not null;index:idx_trade_symbol_time"` // epoch seconds

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (TradeRecord) TableName() string {
	return "trade_record"
}
