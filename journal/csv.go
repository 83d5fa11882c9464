// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"sync"
	"time"
)

type CSVJournal struct {
	mu     sync.Mutex
	orders *csv.Writer
	of     *os.File
}

func NewCSV(ordersPath string) (*CSVJournal, error) {
	of, err := os.Create(ordersPath)
	if err != nil {
		return nil, err
	}

	ow := csv.NewWriter(of)

	if err := ow.Write([]string{"time", "client_id", "order_id", "trade_id", "market", "side", "type", "price", "trigger_price", "size", "limit_fee", "status", "mode"}); err != nil {
		return nil, err
	}

	ow.Flush()
	if err := ow.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{orders: ow, of: of}, nil
}

// RecordOrder appends one row. The journal is shared across concurrent
// requests and csv.Writer is not goroutine-safe, so writes serialize here.
func (j *CSVJournal) RecordOrder(r OrderRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.orders.Write([]string{
		r.Time.Format(time.RFC3339),
		r.ClientID,
		r.OrderID,
		r.TradeID,
		r.Market,
		r.Side,
		r.Type,
		r.Price.String(),
		r.TriggerPrice.String(),
		r.Size.String(),
		r.LimitFee.String(),
		r.Status,
		r.Mode,
	})
	if err != nil {
		return err
	}

	j.orders.Flush()
	return j.orders.Error()
}

func (j *CSVJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.orders.Flush()
	if err := j.orders.Error(); err != nil {
		return err
	}
	return j.of.Close()
}
