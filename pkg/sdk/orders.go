package bloomprobe

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/bloomprobe/internal/domain/bloom"
	"github.com/kailas-cloud/bloomprobe/internal/domain/order"
)

// Orders returns the orders of userID found in the candidate buckets.
// Result.Truncated reports that the bucket cap left candidates unfetched.
func (c *Client) Orders(ctx context.Context, userID int64) (res Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("orders", start, err) }()

	out, err := c.lookupSvc.Orders(ctx, order.ByUser(userID))
	if err != nil {
		return Result{}, fmt.Errorf("orders: %w", err)
	}
	if out.Truncated {
		c.obs.observeTruncation(userID, len(out.Candidates), out.Fetched)
	}

	orders := make([]Order, len(out.Orders))
	for i, o := range out.Orders {
		orders[i] = toOrder(o)
	}
	return Result{
		Orders:     orders,
		Candidates: toSerials(out.Candidates),
		Fetched:    out.Fetched,
		Truncated:  out.Truncated,
	}, nil
}

// Candidates returns the serials whose summaries may contain userID,
// without fetching any bucket.
func (c *Client) Candidates(ctx context.Context, userID int64) (serials []uint64, err error) {
	start := time.Now()
	defer func() { c.obs.observe("candidates", start, err) }()

	out, err := c.lookupSvc.Candidates(ctx, order.ByUser(userID))
	if err != nil {
		return nil, fmt.Errorf("candidates: %w", err)
	}
	return toSerials(out), nil
}

// Probe returns the probe derived from userID.
func (c *Client) Probe(ctx context.Context, userID int64) (Probe, error) {
	p, err := c.lookupSvc.Probe(ctx, order.ByUser(userID))
	if err != nil {
		return Probe{}, fmt.Errorf("probe: %w", err)
	}
	return Probe{Value: p.Probe, Nibbles: p.Nibbles}, nil
}

// PutBucket stores a bucket under its serial, replacing any previous one.
func (c *Client) PutBucket(ctx context.Context, b Bucket) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("put_bucket", start, err) }()

	orders := make([]order.Order, len(b.Orders))
	for i, o := range b.Orders {
		orders[i] = order.New(o.UserID, o.OrderID, o.UnixTimeMs)
	}
	if err = c.buckets.Put(ctx, order.NewBucket(bloom.Serial(b.Serial), orders)); err != nil {
		return fmt.Errorf("put bucket: %w", err)
	}
	return nil
}

// DeleteBucket removes a stored bucket. Deleting an absent bucket succeeds.
// A descriptor still naming serial makes later lookups that select it fail
// with ErrBucketNotFound.
func (c *Client) DeleteBucket(ctx context.Context, serial uint64) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete_bucket", start, err) }()

	if err = c.buckets.Delete(ctx, bloom.Serial(serial)); err != nil {
		return fmt.Errorf("delete bucket: %w", err)
	}
	return nil
}

// SaveDescriptors replaces the whole descriptor table. Order is kept and
// decides which candidates survive the bucket cap.
func (c *Client) SaveDescriptors(ctx context.Context, ds []Descriptor) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("save_descriptors", start, err) }()

	out := make([]bloom.Descriptor, len(ds))
	for i, d := range ds {
		out[i] = bloom.NewDescriptor(bloom.Serial(d.Serial), bloom.Bits(d.Bloom))
	}
	if err = c.descriptors.Save(ctx, out); err != nil {
		return fmt.Errorf("save descriptors: %w", err)
	}
	return nil
}

func toOrder(o order.Order) Order {
	return Order{UserID: o.UserID(), OrderID: o.OrderID(), UnixTimeMs: o.UnixTimeMs()}
}

func toSerials(in []bloom.Serial) []uint64 {
	out := make([]uint64, len(in))
	for i, s := range in {
		out[i] = uint64(s)
	}
	return out
}
