package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordOrder(r OrderRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO orders
		(client_id, order_id, trade_id, time, market, side, type, price, trigger_price, size, limit_fee, status, mode)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ClientID, r.OrderID, r.TradeID, r.Time, r.Market, r.Side, r.Type,
		r.Price.String(), r.TriggerPrice.String(), r.Size.String(),
		r.LimitFee.String(), r.Status, r.Mode,
	)
	return err
}

// ListByTradeID returns every order journaled for a signal trade id, the
// primary first by insertion order.
func (j *SQLiteJournal) ListByTradeID(tradeID string) ([]OrderRecord, error) {
	rows, err := j.db.Query(`
		SELECT client_id, order_id, trade_id, time, market, side, type, price, trigger_price, size, limit_fee, status, mode
		FROM orders WHERE trade_id = ? ORDER BY client_id`, tradeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

// ListRecent returns the most recently journaled orders, newest first.
func (j *SQLiteJournal) ListRecent(limit int) ([]OrderRecord, error) {
	rows, err := j.db.Query(`
		SELECT client_id, order_id, trade_id, time, market, side, type, price, trigger_price, size, limit_fee, status, mode
		FROM orders ORDER BY time DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func scanOrders(rows *sql.Rows) ([]OrderRecord, error) {
	var out []OrderRecord
	for rows.Next() {
		var (
			r                              OrderRecord
			ts                             time.Time
			price, trigger, size, limitFee string
		)
		if err := rows.Scan(&r.ClientID, &r.OrderID, &r.TradeID, &ts, &r.Market,
			&r.Side, &r.Type, &price, &trigger, &size, &limitFee, &r.Status, &r.Mode); err != nil {
			return nil, err
		}
		r.Time = ts
		var err error
		if r.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("bad price %q: %w", price, err)
		}
		if r.TriggerPrice, err = decimal.NewFromString(trigger); err != nil {
			return nil, fmt.Errorf("bad trigger price %q: %w", trigger, err)
		}
		if r.Size, err = decimal.NewFromString(size); err != nil {
			return nil, fmt.Errorf("bad size %q: %w", size, err)
		}
		if r.LimitFee, err = decimal.NewFromString(limitFee); err != nil {
			return nil, fmt.Errorf("bad limit fee %q: %w", limitFee, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
