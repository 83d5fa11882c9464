package engine

import (
	"time"

	"github.com/perpkit/bridge/exchange"
	"github.com/shopspring/decimal"
)

// Params is the engine's immutable trading policy, built once from config
// and passed in at construction. Keeping it explicit (rather than process
// globals) lets tests run varied parameter sets deterministically.
type Params struct {
	StakeCurrency string // "USD"
	Live          bool   // false = dry run, orders are built but never submitted

	// Order shaping
	FeePercent      decimal.Decimal // limit fee as a percentage of amount
	PostOnly        bool
	TimeInForce     exchange.TimeInForce
	OrderExpiration time.Duration // primary orders
	UseOraclePrice  bool          // entry price from oracle (long) / index (short) instead of the signal rate

	// Entry gates
	CheckAllowedAssets       bool
	AllowedAssets            []string
	MaxInitialMarginFraction decimal.Decimal

	// Brackets
	StopLossEnabled   bool
	StopLossPercent   decimal.Decimal
	TakeProfitEnabled bool
	TakeProfitPercent decimal.Decimal
	BracketExpiration time.Duration // short; brackets only bound risk on a fresh position

	// Fill confirmation before bracket placement
	FillPollInterval time.Duration
	FillWaitTimeout  time.Duration
}
