package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRecordOrder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "orders.csv")
	j, err := NewCSV(path)
	require.NoError(t, err)

	require.NoError(t, j.RecordOrder(testRecord("c1", "T1")))
	require.NoError(t, j.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus one record")

	assert.Equal(t, "client_id", rows[0][1])
	assert.Equal(t, "c1", rows[1][1])
	assert.Equal(t, "BTC-USD", rows[1][4])
	assert.Equal(t, "50000", rows[1][7])
	assert.Equal(t, "LIVE", rows[1][12])
}

func TestCSVRecordOrderConcurrent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "orders.csv")
	j, err := NewCSV(path)
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, j.RecordOrder(testRecord(fmt.Sprintf("c%d", n), "T1")))
		}(i)
	}
	wg.Wait()
	require.NoError(t, j.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, writers+1, "header plus one row per writer")
	for _, row := range rows[1:] {
		assert.Len(t, row, 13)
		assert.Equal(t, "BTC-USD", row[4])
	}
}
