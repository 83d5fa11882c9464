package engine

import (
	"fmt"

	"github.com/perpkit/bridge/exchange"
	"github.com/perpkit/bridge/signal"
)

// ResolveSide maps (command, direction) to the venue order side. Entries
// trade in the direction of the position; exits invert it, since closing
// a long is a sell and closing a short is a buy.
func ResolveSide(cmd signal.Command, dir signal.Direction) (exchange.Side, error) {
	switch {
	case cmd == signal.CmdEntry && dir == signal.Long:
		return exchange.Buy, nil
	case cmd == signal.CmdEntry && dir == signal.Short:
		return exchange.Sell, nil
	case cmd == signal.CmdExit && dir == signal.Long:
		return exchange.Sell, nil
	case cmd == signal.CmdExit && dir == signal.Short:
		return exchange.Buy, nil
	}
	return "", fmt.Errorf("no order side for command %q direction %q", cmd, dir)
}
