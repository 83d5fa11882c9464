package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLiteJournal, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

func testRecord(clientID, tradeID string) OrderRecord {
	return OrderRecord{
		Time:         time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		ClientID:     clientID,
		OrderID:      "ord-1",
		TradeID:      tradeID,
		Market:       "BTC-USD",
		Side:         "BUY",
		Type:         "LIMIT",
		Price:        decimal.RequireFromString("50000"),
		TriggerPrice: decimal.Zero,
		Size:         decimal.RequireFromString("0.5"),
		LimitFee:     decimal.RequireFromString("0.000255"),
		Status:       "PENDING",
		Mode:         "LIVE",
	}
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='orders'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "orders", name)
}

func TestSQLiteRecordAndQuery(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	require.NoError(t, j.RecordOrder(testRecord("c1", "T1")))
	require.NoError(t, j.RecordOrder(testRecord("c2", "T1")))
	require.NoError(t, j.RecordOrder(testRecord("c3", "T2")))

	byTrade, err := j.ListByTradeID("T1")
	require.NoError(t, err)
	require.Len(t, byTrade, 2)
	assert.Equal(t, "c1", byTrade[0].ClientID)
	assert.True(t, decimal.RequireFromString("50000").Equal(byTrade[0].Price))
	assert.True(t, decimal.RequireFromString("0.5").Equal(byTrade[0].Size))

	recent, err := j.ListRecent(10)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestSQLiteDuplicateClientIDRejected(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	require.NoError(t, j.RecordOrder(testRecord("c1", "T1")))
	assert.Error(t, j.RecordOrder(testRecord("c1", "T9")))
}
