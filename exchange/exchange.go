// Package exchange defines the venue boundary: the snapshots the engine
// reads and the order requests it submits. Concrete clients (see the dydx
// package) implement Exchange; tests supply fakes.
package exchange

import (
	"context"

	"github.com/shopspring/decimal"
)

// Side is the venue's buy/sell enumeration.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// OrderType selects the venue order kind.
type OrderType string

const (
	Limit      OrderType = "LIMIT"
	Market     OrderType = "MARKET"
	StopLimit  OrderType = "STOP_LIMIT"
	TakeProfit OrderType = "TAKE_PROFIT"
)

// TimeInForce controls how long an order rests.
type TimeInForce string

const (
	GTT TimeInForce = "GTT"
	IOC TimeInForce = "IOC"
	FOK TimeInForce = "FOK"
)

// OrderStatus is the venue-reported lifecycle state of an order.
type OrderStatus string

const (
	StatusPending  OrderStatus = "PENDING"
	StatusOpen     OrderStatus = "OPEN"
	StatusFilled   OrderStatus = "FILLED"
	StatusCanceled OrderStatus = "CANCELED"
)

// Position is one open position as reported by the venue.
type Position struct {
	Market     string
	Side       string // venue-reported, e.g. "LONG"/"SHORT"
	Size       decimal.Decimal
	EntryPrice decimal.Decimal
}

// AccountSnapshot is a read-only, per-request view of the account. The
// engine never mutates it; all state changes happen venue-side.
type AccountSnapshot struct {
	PositionID    string
	Equity        decimal.Decimal
	OpenPositions map[string]Position // keyed by market symbol
}

// MarketSpec is a read-only, per-request view of one market's metadata.
// Two requests may observe different snapshots; no cross-request
// consistency is guaranteed.
type MarketSpec struct {
	Market                string
	TickSize              decimal.Decimal
	StepSize              decimal.Decimal
	AssetResolution       int32
	InitialMarginFraction decimal.Decimal
	OraclePrice           decimal.Decimal
	IndexPrice            decimal.Decimal
}

// OrderRequest is the full parameter set for one order submission.
// Constructed fresh per order, immutable once submitted.
type OrderRequest struct {
	PositionID             string
	Market                 string
	Type                   OrderType
	Side                   Side
	Price                  decimal.Decimal
	TriggerPrice           decimal.Decimal // bracket orders only, zero otherwise
	Size                   decimal.Decimal
	LimitFee               decimal.Decimal
	ClientID               string
	PostOnly               bool
	ReduceOnly             bool
	TimeInForce            TimeInForce
	ExpirationEpochSeconds int64
}

// OrderResult is the venue's acknowledgment of a submitted order.
type OrderResult struct {
	ID     string
	Status OrderStatus
	Price  decimal.Decimal
	Size   decimal.Decimal
}

// Exchange is the synchronous RPC surface the engine consumes. Every call
// reads or mutates venue state and may fail with a generic exchange error.
type Exchange interface {
	GetAccount(ctx context.Context) (AccountSnapshot, error)
	GetMarket(ctx context.Context, market string) (MarketSpec, error)
	CreateOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
	GetOrder(ctx context.Context, id string) (OrderResult, error)
	CancelAllOrders(ctx context.Context, market string) error
}
