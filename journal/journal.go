// Package journal records every order the bridge builds, the audit trail
// for what was (or would have been, in dry mode) sent to the venue.
package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderRecord is one journaled order submission.
type OrderRecord struct {
	Time         time.Time
	ClientID     string
	OrderID      string // venue order id, empty in dry mode
	TradeID      string // opaque id from the signal source
	Market       string
	Side         string
	Type         string
	Price        decimal.Decimal
	TriggerPrice decimal.Decimal
	Size         decimal.Decimal
	LimitFee     decimal.Decimal
	Status       string // venue status, or "DRY"
	Mode         string // LIVE or DRY
}

type Journal interface {
	RecordOrder(OrderRecord) error
	Close() error
}

// Noop discards all records.
type Noop struct{}

func (Noop) RecordOrder(OrderRecord) error { return nil }
func (Noop) Close() error                  { return nil }
