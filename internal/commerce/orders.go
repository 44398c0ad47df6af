package commerce

import (
	"context"
	"fmt"
	"net/url"

	"github.com/orderdeskapp/orderdesk/internal/orders"
)

// FilterType is the server-side filter token for order listing. Each bucket
// maps to exactly one token.
type FilterType string

const (
	FilterActive         FilterType = "active"
	FilterPaymentPending FilterType = "payment_pending"
	FilterDelivered      FilterType = "delivered"
	FilterCancelled      FilterType = "cancelled"
	FilterUPIPending     FilterType = "upi_pending"
	FilterCODOrders      FilterType = "cod_orders"
)

// OrderPage is one page of an order listing.
type OrderPage struct {
	Results    []orders.Order `json:"results"`
	TotalPages int            `json:"total_pages"`
	TotalCount int            `json:"total_count"`
}

type ListOrdersParams struct {
	Filter   FilterType
	Page     int
	PageSize int
	// Query is the committed search term, empty for unfiltered listing.
	Query string
}

func (c *Client) ListOrders(ctx context.Context, params ListOrdersParams) (*OrderPage, error) {
	values := url.Values{}
	values.Set("filter_type", string(params.Filter))
	values.Set("page", fmt.Sprint(params.Page))
	values.Set("page_size", fmt.Sprint(params.PageSize))
	if params.Query != "" {
		values.Set("q", params.Query)
	}

	var page OrderPage
	if err := c.getJSON(ctx, "/orders/?"+values.Encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetOrder fetches a single order by id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*orders.Order, error) {
	var order orders.Order
	if err := c.getJSON(ctx, "/orders/"+url.PathEscape(orderID)+"/", &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID, reason string) error {
	payload := map[string]string{"cancellation_reason": reason}
	return c.postJSON(ctx, "/orders/"+url.PathEscape(orderID)+"/cancel/", payload, nil)
}

func (c *Client) RequestRefund(ctx context.Context, orderID, reason string) error {
	payload := map[string]string{"reason": reason}
	return c.postJSON(ctx, "/orders/"+url.PathEscape(orderID)+"/refund/", payload, nil)
}
