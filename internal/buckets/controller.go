package buckets

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/orderdeskapp/orderdesk/internal/commerce"
	"github.com/orderdeskapp/orderdesk/internal/logging"
	"github.com/orderdeskapp/orderdesk/internal/observability"
	"github.com/orderdeskapp/orderdesk/internal/orders"
)

type orderLister interface {
	ListOrders(ctx context.Context, params commerce.ListOrdersParams) (*commerce.OrderPage, error)
}

// bucketFilters maps each bucket to its server-side filter token.
var bucketFilters = map[orders.Bucket]commerce.FilterType{
	orders.BucketCurrent:        commerce.FilterActive,
	orders.BucketPendingPayment: commerce.FilterPaymentPending,
	orders.BucketPrevious:       commerce.FilterDelivered,
	orders.BucketCancelled:      commerce.FilterCancelled,
	orders.BucketUPIPending:     commerce.FilterUPIPending,
	orders.BucketCODOrders:      commerce.FilterCODOrders,
}

// FilterFor returns the server filter token for a bucket.
func FilterFor(bucket orders.Bucket) (commerce.FilterType, error) {
	filter, ok := bucketFilters[bucket]
	if !ok {
		return "", fmt.Errorf("unknown bucket: %s", bucket)
	}
	return filter, nil
}

// Controller drives per-bucket fetching against the commerce API. It is the
// only component that mutates the Store.
type Controller struct {
	store  *Store
	lister orderLister
	logger *slog.Logger

	mu     sync.Mutex
	active orders.Bucket
	query  string
}

func NewController(store *Store, lister orderLister, logger *slog.Logger) *Controller {
	return &Controller{
		store:  store,
		lister: lister,
		logger: logger,
		active: orders.BucketCurrent,
	}
}

func (c *Controller) Store() *Store {
	return c.store
}

// Active returns the bucket currently shown.
func (c *Controller) Active() orders.Bucket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Fetch loads one page of a bucket. On failure that bucket's items are
// cleared and the error surfaced in its state; other buckets are untouched
// either way. A response that is no longer the latest for its bucket is
// discarded.
func (c *Controller) Fetch(ctx context.Context, bucket orders.Bucket, page int) (State, error) {
	filter, err := FilterFor(bucket)
	if err != nil {
		return State{}, err
	}
	if page < 1 {
		page = 1
	}

	seq, pageSize := c.store.beginFetch(bucket)

	c.mu.Lock()
	query := c.query
	c.mu.Unlock()

	meter := observability.MeterFromContext(ctx)
	result, err := c.lister.ListOrders(ctx, commerce.ListOrdersParams{
		Filter:   filter,
		Page:     page,
		PageSize: pageSize,
		Query:    query,
	})
	if err != nil {
		meter.Count("buckets.fetch.failed", 1, sentry.WithAttributes(
			attribute.String("bucket", string(bucket)),
		))
		applied := c.store.failFetch(bucket, seq, "could not load orders, please retry")
		if !applied {
			logging.FromContext(ctx, c.logger).Debug("discarded stale fetch failure", "bucket", bucket)
			return c.store.Snapshot(bucket), nil
		}
		return c.store.Snapshot(bucket), fmt.Errorf("fetch bucket %s: %w", bucket, err)
	}

	applied := c.store.completeFetch(bucket, seq, page, result.Results, result.TotalPages, result.TotalCount)
	if !applied {
		logging.FromContext(ctx, c.logger).Debug("discarded stale fetch result", "bucket", bucket)
	} else {
		meter.Count("buckets.fetch.succeeded", 1, sentry.WithAttributes(
			attribute.String("bucket", string(bucket)),
		))
	}
	return c.store.Snapshot(bucket), nil
}

// Switch makes bucket the active one and loads its first page. Switching
// always resets to page 1; the other buckets keep their pagination state.
func (c *Controller) Switch(ctx context.Context, bucket orders.Bucket) (State, error) {
	if _, err := FilterFor(bucket); err != nil {
		return State{}, err
	}

	c.mu.Lock()
	c.active = bucket
	c.mu.Unlock()

	c.store.resetPage(bucket)
	return c.Fetch(ctx, bucket, 1)
}

// View reconciles a requested bucket, page, and search term against the
// current selection and returns the resulting state. Changing bucket or
// search term resets to page 1.
func (c *Controller) View(ctx context.Context, bucket orders.Bucket, page int, query string) (State, error) {
	if _, err := FilterFor(bucket); err != nil {
		return State{}, err
	}

	c.mu.Lock()
	changed := bucket != c.active || query != c.query
	c.active = bucket
	c.query = query
	c.mu.Unlock()

	if changed {
		c.store.resetPage(bucket)
		return c.Fetch(ctx, bucket, 1)
	}
	return c.Fetch(ctx, bucket, page)
}

// Refresh re-queries the active bucket at its current page. Coordinators
// call this after any successful mutation.
func (c *Controller) Refresh(ctx context.Context) (State, error) {
	c.mu.Lock()
	bucket := c.active
	c.mu.Unlock()

	return c.Fetch(ctx, bucket, c.store.Snapshot(bucket).Page)
}

// CommitQuery installs a settled search term and reloads the active bucket
// from page 1. Intermediate keystrokes never reach here; see Debouncer.
func (c *Controller) CommitQuery(ctx context.Context, query string) (State, error) {
	c.mu.Lock()
	c.query = query
	bucket := c.active
	c.mu.Unlock()

	c.store.resetPage(bucket)
	return c.Fetch(ctx, bucket, 1)
}
