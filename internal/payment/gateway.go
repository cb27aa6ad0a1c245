package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrInvalidAmount = errors.New("amount must be greater than zero")

// Order is the gateway's view of a checkout. Amount is in the minor unit.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type gatewayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Client talks to the hosted payment gateway's orders API.
type Client struct {
	http     *resty.Client
	currency string
	now      func() time.Time
}

func NewClient(baseURL, keyID, keySecret, currency string) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetBasicAuth(keyID, keySecret).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(300 * time.Millisecond)

	return &Client{http: http, currency: currency, now: time.Now}
}

// CreateOrder registers an order for amount (major unit) with the gateway.
func (c *Client) CreateOrder(ctx context.Context, amount float64) (*Order, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, ErrInvalidAmount
	}

	req := createOrderRequest{
		Amount:   ToMinorUnits(amount),
		Currency: c.currency,
		Receipt:  "receipt_" + strconv.FormatInt(c.now().UnixMilli(), 10),
	}

	var order Order
	var failure gatewayError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&order).
		SetError(&failure).
		Post("/orders")
	if err != nil {
		return nil, fmt.Errorf("error creating gateway order: %w", err)
	}
	if resp.IsError() {
		if failure.Error.Description != "" {
			return nil, fmt.Errorf("gateway rejected order (%d): %s", resp.StatusCode(), failure.Error.Description)
		}
		return nil, fmt.Errorf("gateway rejected order: status %d", resp.StatusCode())
	}
	if order.ID == "" {
		return nil, fmt.Errorf("gateway returned an order without id")
	}
	if order.Amount != req.Amount {
		return nil, fmt.Errorf("gateway order %s is for %.2f, requested %.2f",
			order.ID, FromMinorUnits(order.Amount), amount)
	}
	return &order, nil
}

// ToMinorUnits converts a major-unit amount (rupees) to the gateway's minor
// unit (paise).
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func FromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}
