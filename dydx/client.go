// Package dydx is a REST client for a dYdX-v3-style perpetuals API,
// implementing the exchange boundary the engine consumes. Private requests
// are HMAC-signed; all numeric fields cross the wire as strings and are
// parsed into decimals at the edge.
package dydx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/perpkit/bridge/exchange"
	"github.com/shopspring/decimal"
)

// DefaultHost is the production API endpoint.
const DefaultHost = "https://api.dydx.exchange"

// maxAssetResolution caps the decimal places a market may quote sizes in;
// v3 markets use single digits, anything past this is a garbled response.
const maxAssetResolution = 18

// Credentials are the API key set for private endpoints.
type Credentials struct {
	Key        string
	Secret     string
	Passphrase string
}

type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	now        func() time.Time
}

// NewClient builds a client against host (DefaultHost when empty). The
// timeout bounds every call, submission included; an expired deadline
// surfaces as an ordinary request error.
func NewClient(host string, creds Credentials, timeout time.Duration) *Client {
	if host == "" {
		host = DefaultHost
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(host, "/"),
		creds:      creds,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

type apiPosition struct {
	Market     string `json:"market"`
	Side       string `json:"side"`
	Size       string `json:"size"`
	EntryPrice string `json:"entryPrice"`
}

type apiAccount struct {
	PositionID    string                 `json:"positionId"`
	Equity        string                 `json:"equity"`
	OpenPositions map[string]apiPosition `json:"openPositions"`
}

type accountResponse struct {
	Account apiAccount `json:"account"`
}

// GetAccount fetches the account snapshot: position id, equity and the map
// of open positions keyed by market.
func (c *Client) GetAccount(ctx context.Context) (exchange.AccountSnapshot, error) {
	var resp accountResponse
	if err := c.do(ctx, http.MethodGet, "/v3/accounts", nil, nil, &resp); err != nil {
		return exchange.AccountSnapshot{}, err
	}

	snap := exchange.AccountSnapshot{
		PositionID:    resp.Account.PositionID,
		OpenPositions: make(map[string]exchange.Position, len(resp.Account.OpenPositions)),
	}
	var err error
	if snap.Equity, err = parseDecimal(resp.Account.Equity, "equity"); err != nil {
		return exchange.AccountSnapshot{}, err
	}
	for market, p := range resp.Account.OpenPositions {
		pos := exchange.Position{Market: market, Side: p.Side}
		if pos.Size, err = parseDecimal(p.Size, "position size"); err != nil {
			return exchange.AccountSnapshot{}, err
		}
		if pos.EntryPrice, err = parseDecimal(p.EntryPrice, "position entry price"); err != nil {
			return exchange.AccountSnapshot{}, err
		}
		snap.OpenPositions[market] = pos
	}
	return snap, nil
}

type apiMarket struct {
	Market                string `json:"market"`
	TickSize              string `json:"tickSize"`
	StepSize              string `json:"stepSize"`
	AssetResolution       string `json:"assetResolution"`
	InitialMarginFraction string `json:"initialMarginFraction"`
	OraclePrice           string `json:"oraclePrice"`
	IndexPrice            string `json:"indexPrice"`
}

type marketsResponse struct {
	Markets map[string]apiMarket `json:"markets"`
}

// GetMarket fetches one market's metadata snapshot.
func (c *Client) GetMarket(ctx context.Context, market string) (exchange.MarketSpec, error) {
	var resp marketsResponse
	query := url.Values{"market": {market}}
	if err := c.do(ctx, http.MethodGet, "/v3/markets", query, nil, &resp); err != nil {
		return exchange.MarketSpec{}, err
	}

	m, ok := resp.Markets[market]
	if !ok {
		return exchange.MarketSpec{}, fmt.Errorf("market %s not found", market)
	}

	spec := exchange.MarketSpec{Market: market}
	var err error
	if spec.TickSize, err = parseDecimal(m.TickSize, "tickSize"); err != nil {
		return exchange.MarketSpec{}, err
	}
	if spec.StepSize, err = parseDecimal(m.StepSize, "stepSize"); err != nil {
		return exchange.MarketSpec{}, err
	}
	if spec.InitialMarginFraction, err = parseDecimal(m.InitialMarginFraction, "initialMarginFraction"); err != nil {
		return exchange.MarketSpec{}, err
	}
	if spec.OraclePrice, err = parseDecimal(m.OraclePrice, "oraclePrice"); err != nil {
		return exchange.MarketSpec{}, err
	}
	if spec.IndexPrice, err = parseDecimal(m.IndexPrice, "indexPrice"); err != nil {
		return exchange.MarketSpec{}, err
	}
	res, err := parseDecimal(m.AssetResolution, "assetResolution")
	if err != nil {
		return exchange.MarketSpec{}, err
	}
	// assetResolution is a decimal-places count; reject anything that is
	// not a small non-negative integer rather than truncating it.
	if !res.IsInteger() || res.Sign() < 0 || res.IntPart() > maxAssetResolution {
		return exchange.MarketSpec{}, fmt.Errorf("market %s: assetResolution %q out of range", market, m.AssetResolution)
	}
	spec.AssetResolution = int32(res.IntPart())
	return spec, nil
}

type apiOrderParams struct {
	Market       string `json:"market"`
	Side         string `json:"side"`
	Type         string `json:"type"`
	Size         string `json:"size"`
	Price        string `json:"price"`
	TriggerPrice string `json:"triggerPrice,omitempty"`
	LimitFee     string `json:"limitFee"`
	ClientID     string `json:"clientId"`
	TimeInForce  string `json:"timeInForce"`
	PostOnly     bool   `json:"postOnly"`
	ReduceOnly   bool   `json:"reduceOnly"`
	Expiration   string `json:"expiration"`
}

type apiOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Price  string `json:"price"`
	Size   string `json:"size"`
}

type orderResponse struct {
	Order apiOrder `json:"order"`
}

// CreateOrder submits one order. No retries; the caller decides what a
// failure means.
func (c *Client) CreateOrder(ctx context.Context, req exchange.OrderRequest) (exchange.OrderResult, error) {
	params := apiOrderParams{
		Market:      req.Market,
		Side:        string(req.Side),
		Type:        string(req.Type),
		Size:        req.Size.String(),
		Price:       req.Price.String(),
		LimitFee:    req.LimitFee.String(),
		ClientID:    req.ClientID,
		TimeInForce: string(req.TimeInForce),
		PostOnly:    req.PostOnly,
		ReduceOnly:  req.ReduceOnly,
		Expiration:  time.Unix(req.ExpirationEpochSeconds, 0).UTC().Format(time.RFC3339),
	}
	if req.TriggerPrice.Sign() > 0 {
		params.TriggerPrice = req.TriggerPrice.String()
	}

	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, "/v3/orders", nil, params, &resp); err != nil {
		return exchange.OrderResult{}, err
	}
	return toOrderResult(resp.Order)
}

// GetOrder fetches one order's current state, used to confirm fills.
func (c *Client) GetOrder(ctx context.Context, id string) (exchange.OrderResult, error) {
	var resp orderResponse
	if err := c.do(ctx, http.MethodGet, "/v3/orders/"+id, nil, nil, &resp); err != nil {
		return exchange.OrderResult{}, err
	}
	return toOrderResult(resp.Order)
}

// CancelAllOrders cancels every resting order on a market.
func (c *Client) CancelAllOrders(ctx context.Context, market string) error {
	query := url.Values{"market": {market}}
	return c.do(ctx, http.MethodDelete, "/v3/orders", query, nil, nil)
}

func toOrderResult(o apiOrder) (exchange.OrderResult, error) {
	res := exchange.OrderResult{ID: o.ID, Status: exchange.OrderStatus(o.Status)}
	var err error
	if o.Price != "" {
		if res.Price, err = parseDecimal(o.Price, "order price"); err != nil {
			return exchange.OrderResult{}, err
		}
	}
	if o.Size != "" {
		if res.Size, err = parseDecimal(o.Size, "order size"); err != nil {
			return exchange.OrderResult{}, err
		}
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return err
		}
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	u.Path = path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestPath := u.Path
	if u.RawQuery != "" {
		requestPath += "?" + u.RawQuery
	}
	timestamp := c.now().UTC().Format("2006-01-02T15:04:05.000Z")
	req.Header.Set("DYDX-API-KEY", c.creds.Key)
	req.Header.Set("DYDX-PASSPHRASE", c.creds.Passphrase)
	req.Header.Set("DYDX-TIMESTAMP", timestamp)
	req.Header.Set("DYDX-SIGNATURE", sign(c.creds.Secret, timestamp, method, requestPath, body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return fmt.Errorf("dydx %s %s: http %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func parseDecimal(s, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return d, nil
}
