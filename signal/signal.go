// Package signal defines the inbound trade signal and its wire parsing.
//
// Signals arrive as form-encoded HTTP posts (typically webhook alerts) and
// carry a command, an instrument pair, a direction and reference prices. The
// types here are ephemeral: one TradeSignal per request, never persisted.
package signal

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Command is the action requested by the signal source.
type Command string

const (
	CmdEntry   Command = "Entry"
	CmdExit    Command = "Exit"
	CmdStatus  Command = "Status"
	CmdAccount Command = "Account"
)

// Direction is the side of the position the signal refers to.
type Direction string

const (
	Long  Direction = "Long"
	Short Direction = "Short"
)

// TradeSignal is one parsed inbound signal.
type TradeSignal struct {
	Command   Command
	Pair      string // "BASE/QUOTE", e.g. "BTC/USD"
	TradeID   string
	Direction Direction
	Amount    decimal.Decimal
	OpenRate  decimal.Decimal
	Limit     decimal.Decimal // Exit only
}

// MalformedError reports a missing or invalid signal field.
type MalformedError struct {
	Field string
	Msg   string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed signal: field %q: %s", e.Field, e.Msg)
}

func malformed(field, msg string) error {
	return &MalformedError{Field: field, Msg: msg}
}

// Asset returns the base asset of the pair ("BTC" for "BTC/USD").
func (s TradeSignal) Asset() string {
	base, _, _ := strings.Cut(s.Pair, "/")
	return base
}

// Market returns the venue market symbol for the signal's pair against the
// given stake currency, e.g. "BTC-USD".
func (s TradeSignal) Market(stakeCurrency string) string {
	return s.Asset() + "-" + stakeCurrency
}

// ParseForm builds a TradeSignal from form values. Only Entry and Exit carry
// the full field set; Status and Account are command-only.
func ParseForm(form url.Values) (TradeSignal, error) {
	sig := TradeSignal{Command: Command(form.Get("command"))}

	switch sig.Command {
	case CmdStatus, CmdAccount:
		return sig, nil
	case CmdEntry, CmdExit:
	case "":
		return sig, malformed("command", "missing")
	default:
		return sig, malformed("command", fmt.Sprintf("unknown command %q", sig.Command))
	}

	sig.Pair = form.Get("pair")
	if sig.Pair == "" {
		return sig, malformed("pair", "missing")
	}
	if base, quote, ok := strings.Cut(sig.Pair, "/"); !ok || base == "" || quote == "" {
		return sig, malformed("pair", fmt.Sprintf("want BASE/QUOTE, got %q", sig.Pair))
	}

	sig.TradeID = form.Get("trade_id")
	if sig.TradeID == "" {
		return sig, malformed("trade_id", "missing")
	}

	sig.Direction = Direction(form.Get("direction"))
	if sig.Direction != Long && sig.Direction != Short {
		return sig, malformed("direction", fmt.Sprintf("must be Long or Short, got %q", form.Get("direction")))
	}

	var err error
	if sig.Amount, err = parseDecimal(form, "amount"); err != nil {
		return sig, err
	}
	if sig.OpenRate, err = parseDecimal(form, "open_rate"); err != nil {
		return sig, err
	}
	if sig.Command == CmdExit {
		if sig.Limit, err = parseDecimal(form, "limit"); err != nil {
			return sig, err
		}
	}

	return sig, nil
}

func parseDecimal(form url.Values, field string) (decimal.Decimal, error) {
	raw := form.Get(field)
	if raw == "" {
		return decimal.Zero, malformed(field, "missing")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, malformed(field, fmt.Sprintf("not a number: %q", raw))
	}
	if d.Sign() <= 0 {
		return decimal.Zero, malformed(field, fmt.Sprintf("must be positive, got %s", d))
	}
	return d, nil
}
