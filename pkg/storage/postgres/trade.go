package postgres

import (
	"context"

	"chartengine/internal/chart/candle"
)

// InsertTrade appends one executed trade to the durable trade log.
func (p *Client) InsertTrade(ctx context.Context, record *TradeRecord) error {
	return p.DB.WithContext(ctx).Create(record).Error
}

// FindDistinctSymbols lists every symbol that has at least one trade.
func (p *Client) FindDistinctSymbols(ctx context.Context) ([]string, error) {
	var symbols []string
	err := p.DB.WithContext(ctx).
		Model(&TradeRecord{}).
		Distinct().
		Pluck("symbol", &symbols).Error
	if err != nil {
		return nil, err
	}
	return symbols, nil
}

// FindRecentTradeRecords returns up to limit trades for a symbol, newest first.
func (p *Client) FindRecentTradeRecords(ctx context.Context, symbol string, limit int) ([]TradeRecord, error) {
	var records []TradeRecord
	err := p.DB.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("trade_time DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// FindRecentTrades is FindRecentTradeRecords mapped to engine ticks.
func (p *Client) FindRecentTrades(ctx context.Context, symbol string, limit int) ([]candle.Tick, error) {
	records, err := p.FindRecentTradeRecords(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}

	ticks := make([]candle.Tick, 0, len(records))
	for _, r := range records {
		ticks = append(ticks, ToTick(r))
	}
	return ticks, nil
}

// DeleteOldTrades removes trades older than the given epoch-seconds cutoff.
func (p *Client) DeleteOldTrades(ctx context.Context, before int64) error {
	return p.DB.WithContext(ctx).
		Where("trade_time < ?", before).
		Delete(&TradeRecord{}).Error
}

// ToTradeRecord converts a trade tick into a TradeRecord for DB insertion.
func ToTradeRecord(t candle.Tick) *TradeRecord {
	return &TradeRecord{
		Symbol:    t.Symbol,
		Price:     t.Price,
		Quantity:  t.Quantity,
		TradeTime: t.TradeTime,
	}
}

// ToTick converts a stored TradeRecord back into an engine tick.
func ToTick(r TradeRecord) candle.Tick {
	return candle.Tick{
		Symbol:    r.Symbol,
		Price:     r.Price,
		Quantity:  r.Quantity,
		TradeTime: r.TradeTime,
	}
}
