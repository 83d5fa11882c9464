package engine

import (
	"testing"
	"time"

	"github.com/perpkit/bridge/exchange"
	"github.com/perpkit/bridge/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builderParams() Params {
	return Params{
		StakeCurrency:     "USD",
		FeePercent:        d("0.051"),
		TimeInForce:       exchange.GTT,
		OrderExpiration:   24 * time.Hour,
		StopLossEnabled:   true,
		StopLossPercent:   d("0.5"),
		TakeProfitEnabled: true,
		TakeProfitPercent: d("0.5"),
		BracketExpiration: 10 * time.Minute,
	}
}

func btcMarket() exchange.MarketSpec {
	return exchange.MarketSpec{
		Market:                "BTC-USD",
		TickSize:              d("1"),
		StepSize:              d("0.001"),
		AssetResolution:       3,
		InitialMarginFraction: d("0.1"),
		OraclePrice:           d("50100"),
		IndexPrice:            d("49900"),
	}
}

func entrySignal() signal.TradeSignal {
	return signal.TradeSignal{
		Command:   signal.CmdEntry,
		Pair:      "BTC/USD",
		TradeID:   "T1",
		Direction: signal.Long,
		Amount:    d("1"),
		OpenRate:  d("50000"),
	}
}

func TestBuildPrimaryEntry(t *testing.T) {
	t.Parallel()

	b := NewBuilder(builderParams())
	start := time.Now()
	acct := exchange.AccountSnapshot{PositionID: "P1"}

	req, err := b.BuildPrimary(entrySignal(), acct, btcMarket(), exchange.Buy)
	require.NoError(t, err)

	assert.Equal(t, "P1", req.PositionID)
	assert.Equal(t, "BTC-USD", req.Market)
	assert.Equal(t, exchange.Limit, req.Type)
	assert.Equal(t, exchange.Buy, req.Side)
	assert.False(t, req.ReduceOnly)
	assert.Equal(t, exchange.GTT, req.TimeInForce)
	assert.NotEmpty(t, req.ClientID)

	assert.True(t, d("50000").Equal(req.Price), "price %s", req.Price)
	assert.True(t, d("1").Equal(req.Size), "size %s", req.Size)
	assert.True(t, req.Size.Mod(d("0.001")).IsZero())
	// 1 * 0.051 / 100
	assert.True(t, d("0.00051").Equal(req.LimitFee), "fee %s", req.LimitFee)

	exp := time.Unix(req.ExpirationEpochSeconds, 0)
	assert.WithinDuration(t, start.Add(24*time.Hour), exp, 5*time.Second)
}

func TestBuildPrimaryEntryOraclePricing(t *testing.T) {
	t.Parallel()

	p := builderParams()
	p.UseOraclePrice = true
	b := NewBuilder(p)

	sig := entrySignal()
	req, err := b.BuildPrimary(sig, exchange.AccountSnapshot{}, btcMarket(), exchange.Buy)
	require.NoError(t, err)
	assert.True(t, d("50100").Equal(req.Price), "long should price off oracle, got %s", req.Price)

	sig.Direction = signal.Short
	req, err = b.BuildPrimary(sig, exchange.AccountSnapshot{}, btcMarket(), exchange.Sell)
	require.NoError(t, err)
	assert.True(t, d("49900").Equal(req.Price), "short should price off index, got %s", req.Price)
}

func TestBuildPrimaryExit(t *testing.T) {
	t.Parallel()

	b := NewBuilder(builderParams())
	sig := signal.TradeSignal{
		Command:   signal.CmdExit,
		Pair:      "BTC/USD",
		TradeID:   "T2",
		Direction: signal.Long,
		Amount:    d("0.4995"),
		OpenRate:  d("50000"),
		Limit:     d("51003.4"),
	}

	req, err := b.BuildPrimary(sig, exchange.AccountSnapshot{PositionID: "P1"}, btcMarket(), exchange.Sell)
	require.NoError(t, err)

	assert.Equal(t, exchange.Market, req.Type)
	assert.Equal(t, exchange.Sell, req.Side)
	assert.True(t, req.ReduceOnly)
	assert.True(t, d("51003").Equal(req.Price), "price should quantize to tick, got %s", req.Price)
	// 0.4995 rounds to the nearest 0.001 step
	assert.True(t, d("0.5").Equal(req.Size), "size %s", req.Size)
}

func TestBuildPrimaryQuantizesAmountToStep(t *testing.T) {
	t.Parallel()

	b := NewBuilder(builderParams())
	sig := entrySignal()
	sig.Amount = d("1.00049")

	req, err := b.BuildPrimary(sig, exchange.AccountSnapshot{}, btcMarket(), exchange.Buy)
	require.NoError(t, err)
	assert.True(t, d("1").Equal(req.Size), "size %s", req.Size)
}

func TestBuildBracketPricing(t *testing.T) {
	t.Parallel()

	mkt := btcMarket()
	mkt.TickSize = d("0.5")
	fill := d("100")

	tests := []struct {
		name string
		side exchange.Side
		kind BracketKind
		want string
	}{
		{"long stop-loss below fill", exchange.Buy, StopLoss, "99.5"},
		{"long take-profit above fill", exchange.Buy, TakeProfit, "100.5"},
		{"short stop-loss above fill", exchange.Sell, StopLoss, "100.5"},
		{"short take-profit below fill", exchange.Sell, TakeProfit, "99.5"},
	}

	b := NewBuilder(builderParams())
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			primary := exchange.OrderRequest{
				PositionID: "P1",
				Market:     "BTC-USD",
				Side:       tt.side,
				Size:       d("1"),
			}
			req, err := b.BuildBracket(primary, fill, mkt, tt.kind)
			require.NoError(t, err)

			assert.True(t, d(tt.want).Equal(req.TriggerPrice), "trigger %s want %s", req.TriggerPrice, tt.want)
			assert.True(t, d(tt.want).Equal(req.Price), "price %s want %s", req.Price, tt.want)
			assert.True(t, req.ReduceOnly)
			assert.True(t, d("1").Equal(req.Size), "bracket carries primary size")
			if tt.side == exchange.Buy {
				assert.Equal(t, exchange.Sell, req.Side)
			} else {
				assert.Equal(t, exchange.Buy, req.Side)
			}
		})
	}
}

func TestBuildBracketOrderTypes(t *testing.T) {
	t.Parallel()

	b := NewBuilder(builderParams())
	primary := exchange.OrderRequest{Market: "BTC-USD", Side: exchange.Buy, Size: d("1")}

	sl, err := b.BuildBracket(primary, d("100"), btcMarket(), StopLoss)
	require.NoError(t, err)
	assert.Equal(t, exchange.StopLimit, sl.Type)

	tp, err := b.BuildBracket(primary, d("100"), btcMarket(), TakeProfit)
	require.NoError(t, err)
	assert.Equal(t, exchange.TakeProfit, tp.Type)

	_, err = b.BuildBracket(primary, d("100"), btcMarket(), BracketKind("Trailing"))
	assert.Error(t, err)
}

func TestBuildBracketExpiresSoonerThanPrimary(t *testing.T) {
	t.Parallel()

	b := NewBuilder(builderParams())
	sig := entrySignal()

	primary, err := b.BuildPrimary(sig, exchange.AccountSnapshot{}, btcMarket(), exchange.Buy)
	require.NoError(t, err)

	bracket, err := b.BuildBracket(primary, d("50000"), btcMarket(), StopLoss)
	require.NoError(t, err)

	assert.Less(t, bracket.ExpirationEpochSeconds, primary.ExpirationEpochSeconds)
}
