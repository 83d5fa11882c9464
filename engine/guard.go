package engine

import (
	"strings"

	"github.com/perpkit/bridge/exchange"
	"github.com/perpkit/bridge/signal"
)

// CheckPositionState verifies the signal is consistent with the account's
// open positions: an entry must not duplicate an existing position, and an
// exit must reference an open position on the requested direction.
//
// The check runs against a single per-request snapshot. A concurrent
// request for the same market can race past it on a stale snapshot; the
// venue remains authoritative.
func CheckPositionState(cmd signal.Command, market string, dir signal.Direction, open map[string]exchange.Position) Decision {
	pos, exists := open[market]

	switch cmd {
	case signal.CmdEntry:
		if exists {
			return rejected(ReasonDuplicatePosition,
				"already an open position for %s, ignoring order", market)
		}
	case signal.CmdExit:
		if !exists {
			return rejected(ReasonNoOpenPosition,
				"no open position found for %s, ignoring order", market)
		}
		if !strings.EqualFold(pos.Side, string(dir)) {
			return rejected(ReasonDirectionMismatch,
				"open position for %s is %s, signal wants to exit %s", market, pos.Side, dir)
		}
	}
	return allowed()
}
