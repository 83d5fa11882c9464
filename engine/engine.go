// Package engine translates validated trade signals into exchange-compliant
// order submissions: it quantizes prices and sizes to venue tick/step
// constraints, gates entries on margin and allow-list limits, checks the
// signal against the account's open positions, and optionally brackets a
// filled entry with stop-loss and take-profit orders.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/perpkit/bridge/exchange"
	"github.com/perpkit/bridge/journal"
	"github.com/perpkit/bridge/notify"
	"github.com/perpkit/bridge/signal"
	"go.uber.org/zap"
)

// Engine handles one signal end-to-end: snapshot fetch, guards, order
// build, submission, bracket placement, journaling and notification.
// Requests share no local mutable state; the exchange account is the only
// authority. A concurrent request for the same market can still race past
// the position guard on a stale snapshot, which the venue then arbitrates.
type Engine struct {
	params   Params
	exch     exchange.Exchange
	builder  *Builder
	journal  journal.Journal
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time
}

// Option configures optional engine collaborators.
type Option func(*Engine)

func WithJournal(j journal.Journal) Option {
	return func(e *Engine) { e.journal = j }
}

func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func New(p Params, exch exchange.Exchange, opts ...Option) *Engine {
	e := &Engine{
		params:   p,
		exch:     exch,
		builder:  NewBuilder(p),
		journal:  journal.Noop{},
		notifier: notify.Noop{},
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleSignal processes one Entry or Exit signal. A nil return means the
// primary order was accepted (or built, in dry mode). Rejections come back
// as *RejectionError, venue failures as *SubmissionError; a bracket failure
// after a filled entry is a *SubmissionError with Bracket set, since it
// leaves the position unprotected.
func (e *Engine) HandleSignal(ctx context.Context, sig signal.TradeSignal) error {
	market := sig.Market(e.params.StakeCurrency)
	log := e.log.With(
		zap.String("trade_id", sig.TradeID),
		zap.String("market", market),
		zap.String("command", string(sig.Command)),
		zap.String("direction", string(sig.Direction)),
	)

	acct, err := e.exch.GetAccount(ctx)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}

	if d := CheckPositionState(sig.Command, market, sig.Direction, acct.OpenPositions); !d.Allowed {
		log.Warn("signal rejected", zap.String("reason", string(d.Reason)), zap.String("msg", d.Msg))
		return d.Err()
	}

	mkt, err := e.exch.GetMarket(ctx, market)
	if err != nil {
		return fmt.Errorf("get market %s: %w", market, err)
	}

	if sig.Command == signal.CmdEntry {
		if d := CheckEntryAllowed(sig.Asset(), mkt.InitialMarginFraction, e.params); !d.Allowed {
			log.Warn("entry rejected", zap.String("reason", string(d.Reason)), zap.String("msg", d.Msg))
			return d.Err()
		}
	}

	side, err := ResolveSide(sig.Command, sig.Direction)
	if err != nil {
		return err
	}

	req, err := e.builder.BuildPrimary(sig, acct, mkt, side)
	if err != nil {
		return err
	}
	log.Info("primary order built",
		zap.String("side", string(req.Side)),
		zap.String("type", string(req.Type)),
		zap.String("price", req.Price.String()),
		zap.String("size", req.Size.String()),
		zap.Bool("live", e.params.Live),
	)

	if !e.params.Live {
		e.record(sig, req, exchange.OrderResult{Status: "DRY"})
		return nil
	}

	res, err := e.exch.CreateOrder(ctx, req)
	if err != nil {
		serr := &SubmissionError{Cause: err}
		log.Error("order submission failed", zap.Error(err))
		e.notify(ctx, fmt.Sprintf("Error posting %s %s order for %s: %v", req.Side, req.Type, market, err))
		return serr
	}
	e.record(sig, req, res)
	log.Info("order posted", zap.String("order_id", res.ID), zap.String("status", string(res.Status)))
	e.notify(ctx, fmt.Sprintf("Order %s posted: %s %s %s size=%s price=%s",
		res.ID, req.Side, req.Type, market, req.Size, req.Price))

	switch sig.Command {
	case signal.CmdExit:
		// The position is closing; any resting brackets for it are stale.
		if err := e.exch.CancelAllOrders(ctx, market); err != nil {
			log.Warn("cancel resting orders failed", zap.Error(err))
		}
		return nil
	case signal.CmdEntry:
		if !e.params.StopLossEnabled && !e.params.TakeProfitEnabled {
			return nil
		}
		if err := e.placeBrackets(ctx, log, sig, req, mkt, res); err != nil {
			e.notify(ctx, fmt.Sprintf("WARNING: position %s is open but unprotected: %v", market, err))
			return err
		}
	}
	return nil
}

// placeBrackets waits for the entry to fill, then submits the enabled
// stop-loss and take-profit orders keyed off the realized fill price.
func (e *Engine) placeBrackets(ctx context.Context, log *zap.Logger, sig signal.TradeSignal, primary exchange.OrderRequest, mkt exchange.MarketSpec, res exchange.OrderResult) error {
	fill, err := e.waitForFill(ctx, res.ID)
	if err != nil {
		return &SubmissionError{Bracket: true, Cause: err}
	}

	fillPrice := fill.Price
	if fillPrice.Sign() <= 0 {
		fillPrice = primary.Price
	}

	kinds := make([]BracketKind, 0, 2)
	if e.params.StopLossEnabled {
		kinds = append(kinds, StopLoss)
	}
	if e.params.TakeProfitEnabled {
		kinds = append(kinds, TakeProfit)
	}

	for _, kind := range kinds {
		req, err := e.builder.BuildBracket(primary, fillPrice, mkt, kind)
		if err != nil {
			return &SubmissionError{Bracket: true, Cause: err}
		}
		bres, err := e.exch.CreateOrder(ctx, req)
		if err != nil {
			return &SubmissionError{Bracket: true, Cause: fmt.Errorf("%s: %w", kind, err)}
		}
		e.record(sig, req, bres)
		log.Info("bracket order posted",
			zap.String("kind", string(kind)),
			zap.String("order_id", bres.ID),
			zap.String("trigger_price", req.TriggerPrice.String()),
		)
	}
	return nil
}

// waitForFill polls the venue until the order reports FILLED, with a
// bounded timeout. Stands in for the venue lacking a push confirmation.
func (e *Engine) waitForFill(ctx context.Context, orderID string) (exchange.OrderResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.params.FillWaitTimeout)
	defer cancel()

	ticker := time.NewTicker(e.params.FillPollInterval)
	defer ticker.Stop()

	for {
		res, err := e.exch.GetOrder(ctx, orderID)
		if err == nil {
			switch res.Status {
			case exchange.StatusFilled:
				return res, nil
			case exchange.StatusCanceled:
				return res, fmt.Errorf("order %s canceled before fill", orderID)
			}
		} else {
			e.log.Warn("fill poll failed", zap.String("order_id", orderID), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return exchange.OrderResult{}, fmt.Errorf("timed out waiting for order %s to fill: %w", orderID, ctx.Err())
		case <-ticker.C:
		}
	}
}

// AccountSummary fetches the current account snapshot, for the Account
// command and operator tooling.
func (e *Engine) AccountSummary(ctx context.Context) (exchange.AccountSnapshot, error) {
	return e.exch.GetAccount(ctx)
}

func (e *Engine) record(sig signal.TradeSignal, req exchange.OrderRequest, res exchange.OrderResult) {
	mode := "DRY"
	if e.params.Live {
		mode = "LIVE"
	}
	rec := journal.OrderRecord{
		Time:         e.now(),
		ClientID:     req.ClientID,
		OrderID:      res.ID,
		TradeID:      sig.TradeID,
		Market:       req.Market,
		Side:         string(req.Side),
		Type:         string(req.Type),
		Price:        req.Price,
		TriggerPrice: req.TriggerPrice,
		Size:         req.Size,
		LimitFee:     req.LimitFee,
		Status:       string(res.Status),
		Mode:         mode,
	}
	if err := e.journal.RecordOrder(rec); err != nil {
		e.log.Warn("journal write failed", zap.String("client_id", req.ClientID), zap.Error(err))
	}
}

// notify is best-effort: failures are logged and never propagate.
func (e *Engine) notify(ctx context.Context, msg string) {
	if err := e.notifier.Notify(ctx, msg); err != nil {
		e.log.Warn("notification failed", zap.Error(err))
	}
}
