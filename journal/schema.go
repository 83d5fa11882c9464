// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS orders (
	client_id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL,
	trade_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	market TEXT NOT NULL,
	side TEXT NOT NULL,
	type TEXT NOT NULL,
	price TEXT NOT NULL,
	trigger_price TEXT NOT NULL,
	size TEXT NOT NULL,
	limit_fee TEXT NOT NULL,
	status TEXT NOT NULL,
	mode TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_market ON orders(market);
CREATE INDEX IF NOT EXISTS idx_orders_trade_id ON orders(trade_id);
`
