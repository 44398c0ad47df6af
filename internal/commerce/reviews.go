package commerce

import (
	"context"
	"net/url"

	"github.com/orderdeskapp/orderdesk/internal/orders"
)

type ReviewPayload struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (c *Client) ListProductReviews(ctx context.Context, productID string) ([]orders.Review, error) {
	var reviews []orders.Review
	if err := c.getJSON(ctx, "/products/"+url.PathEscape(productID)+"/reviews/", &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (c *Client) CreateReview(ctx context.Context, productID string, payload ReviewPayload) (*orders.Review, error) {
	var review orders.Review
	if err := c.postJSON(ctx, "/products/"+url.PathEscape(productID)+"/reviews/", payload, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (c *Client) UpdateReview(ctx context.Context, productID, reviewID string, payload ReviewPayload) (*orders.Review, error) {
	var review orders.Review
	if err := c.putJSON(ctx, "/products/"+url.PathEscape(productID)+"/reviews/"+url.PathEscape(reviewID)+"/", payload, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (c *Client) DeleteReview(ctx context.Context, productID, reviewID string) error {
	return c.delete(ctx, "/products/"+url.PathEscape(productID)+"/reviews/"+url.PathEscape(reviewID)+"/")
}
