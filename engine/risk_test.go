package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func riskParams() Params {
	return Params{
		CheckAllowedAssets:       true,
		AllowedAssets:            []string{"BTC", "ETH"},
		MaxInitialMarginFraction: d("0.5"),
	}
}

func TestCheckEntryAllowed(t *testing.T) {
	t.Parallel()

	t.Run("allowed asset under ceiling", func(t *testing.T) {
		dec := CheckEntryAllowed("BTC", d("0.1"), riskParams())
		assert.True(t, dec.Allowed)
	})

	t.Run("asset not in allow-list", func(t *testing.T) {
		dec := CheckEntryAllowed("DOGE", d("0.1"), riskParams())
		assert.False(t, dec.Allowed)
		assert.Equal(t, ReasonAssetNotAllowed, dec.Reason)
	})

	t.Run("allow-list disabled passes any asset", func(t *testing.T) {
		p := riskParams()
		p.CheckAllowedAssets = false
		dec := CheckEntryAllowed("DOGE", d("0.1"), p)
		assert.True(t, dec.Allowed)
	})

	t.Run("margin fraction above ceiling rejected", func(t *testing.T) {
		dec := CheckEntryAllowed("BTC", d("0.51"), riskParams())
		assert.False(t, dec.Allowed)
		assert.Equal(t, ReasonMarginFractionTooHigh, dec.Reason)
	})

	t.Run("margin fraction exactly at ceiling allowed", func(t *testing.T) {
		dec := CheckEntryAllowed("BTC", d("0.5"), riskParams())
		assert.True(t, dec.Allowed)
	})
}
