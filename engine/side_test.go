package engine

import (
	"testing"

	"github.com/perpkit/bridge/exchange"
	"github.com/perpkit/bridge/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cmd  signal.Command
		dir  signal.Direction
		want exchange.Side
	}{
		{signal.CmdEntry, signal.Long, exchange.Buy},
		{signal.CmdEntry, signal.Short, exchange.Sell},
		{signal.CmdExit, signal.Long, exchange.Sell},
		{signal.CmdExit, signal.Short, exchange.Buy},
	}

	for _, tt := range tests {
		got, err := ResolveSide(tt.cmd, tt.dir)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s", tt.cmd, tt.dir)
	}
}

func TestResolveSideRejectsOtherCombinations(t *testing.T) {
	t.Parallel()

	_, err := ResolveSide(signal.CmdStatus, signal.Long)
	assert.Error(t, err)

	_, err = ResolveSide(signal.CmdEntry, signal.Direction("Sideways"))
	assert.Error(t, err)

	_, err = ResolveSide(signal.CmdExit, "")
	assert.Error(t, err)
}
