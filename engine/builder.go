package engine

import (
	"fmt"
	"time"

	"github.com/perpkit/bridge/exchange"
	"github.com/perpkit/bridge/internal/id"
	"github.com/perpkit/bridge/signal"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BracketKind selects which protective order a bracket is.
type BracketKind string

const (
	StopLoss   BracketKind = "StopLoss"
	TakeProfit BracketKind = "TakeProfit"
)

// Builder assembles venue-compliant order requests: prices quantized to the
// market's tick size, sizes to its step size, fees and expirations from the
// configured policy.
type Builder struct {
	params Params
	now    func() time.Time
}

func NewBuilder(p Params) *Builder {
	return &Builder{params: p, now: time.Now}
}

// BuildPrimary produces the main order for a signal: a resting limit order
// for entries, a reduce-only market order for exits.
func (b *Builder) BuildPrimary(sig signal.TradeSignal, acct exchange.AccountSnapshot, mkt exchange.MarketSpec, side exchange.Side) (exchange.OrderRequest, error) {
	req := exchange.OrderRequest{
		PositionID:             acct.PositionID,
		Market:                 mkt.Market,
		Side:                   side,
		ClientID:               id.New(),
		PostOnly:               b.params.PostOnly,
		TimeInForce:            b.params.TimeInForce,
		ExpirationEpochSeconds: b.now().Add(b.params.OrderExpiration).Unix(),
	}

	var price decimal.Decimal
	switch sig.Command {
	case signal.CmdEntry:
		req.Type = exchange.Limit
		price = b.entryPrice(sig, mkt)
	case signal.CmdExit:
		req.Type = exchange.Market
		req.ReduceOnly = true
		price = sig.Limit
	default:
		return exchange.OrderRequest{}, fmt.Errorf("no order for command %q", sig.Command)
	}

	var err error
	if req.Price, err = Quantize(price, mkt.TickSize, TickPrecision(mkt.TickSize)); err != nil {
		return exchange.OrderRequest{}, fmt.Errorf("quantize price: %w", err)
	}
	if req.Size, err = Quantize(sig.Amount, mkt.StepSize, mkt.AssetResolution); err != nil {
		return exchange.OrderRequest{}, fmt.Errorf("quantize size: %w", err)
	}
	req.LimitFee = sig.Amount.Mul(b.params.FeePercent).Div(hundred)

	return req, nil
}

func (b *Builder) entryPrice(sig signal.TradeSignal, mkt exchange.MarketSpec) decimal.Decimal {
	if !b.params.UseOraclePrice {
		return sig.OpenRate
	}
	if sig.Direction == signal.Long {
		return mkt.OraclePrice
	}
	return mkt.IndexPrice
}

// BuildBracket derives a protective order from a filled entry: a stop-loss
// or take-profit at a percentage offset from the fill price, reduce-only on
// the opposite side, same size as the primary, short expiration window.
//
// Offset direction follows from side and kind: a long's stop sits below the
// fill and its target above; a short mirrors both.
func (b *Builder) BuildBracket(primary exchange.OrderRequest, fillPrice decimal.Decimal, mkt exchange.MarketSpec, kind BracketKind) (exchange.OrderRequest, error) {
	var offset decimal.Decimal
	req := exchange.OrderRequest{
		PositionID:             primary.PositionID,
		Market:                 primary.Market,
		Size:                   primary.Size,
		LimitFee:               primary.LimitFee,
		ClientID:               id.New(),
		ReduceOnly:             true,
		TimeInForce:            b.params.TimeInForce,
		ExpirationEpochSeconds: b.now().Add(b.params.BracketExpiration).Unix(),
	}

	switch kind {
	case StopLoss:
		req.Type = exchange.StopLimit
		offset = b.params.StopLossPercent
	case TakeProfit:
		req.Type = exchange.TakeProfit
		offset = b.params.TakeProfitPercent
	default:
		return exchange.OrderRequest{}, fmt.Errorf("unknown bracket kind %q", kind)
	}

	// A stop below / target above for longs, mirrored for shorts.
	factor := offset.Div(hundred)
	switch {
	case primary.Side == exchange.Buy && kind == StopLoss,
		primary.Side == exchange.Sell && kind == TakeProfit:
		factor = decimal.NewFromInt(1).Sub(factor)
	default:
		factor = decimal.NewFromInt(1).Add(factor)
	}

	if primary.Side == exchange.Buy {
		req.Side = exchange.Sell
	} else {
		req.Side = exchange.Buy
	}

	raw := fillPrice.Mul(factor)
	prec := TickPrecision(mkt.TickSize)
	var err error
	if req.TriggerPrice, err = Quantize(raw, mkt.TickSize, prec); err != nil {
		return exchange.OrderRequest{}, fmt.Errorf("quantize trigger price: %w", err)
	}
	if req.Price, err = Quantize(raw, mkt.TickSize, prec); err != nil {
		return exchange.OrderRequest{}, fmt.Errorf("quantize limit price: %w", err)
	}

	return req, nil
}
