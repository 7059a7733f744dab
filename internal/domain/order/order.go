// Package order is the item domain served by the lookup API: customer orders
// sharded into buckets and keyed by user id.
package order

import (
	"strconv"

	"github.com/kailas-cloud/bloomprobe/internal/domain/bloom"
)

// Order is a single item stored in a bucket.
type Order struct {
	userID     int64
	orderID    int64
	unixTimeMs int64
}

// New creates an Order.
func New(userID, orderID, unixTimeMs int64) Order {
	return Order{userID: userID, orderID: orderID, unixTimeMs: unixTimeMs}
}

// UserID returns the owning user.
func (o Order) UserID() int64 { return o.userID }

// OrderID returns the order identifier.
func (o Order) OrderID() int64 { return o.orderID }

// UnixTimeMs returns the order timestamp in unix millis.
func (o Order) UnixTimeMs() int64 { return o.unixTimeMs }

// Bucket is a shard of orders addressed by serial.
type Bucket struct {
	serial bloom.Serial
	orders []Order
}

// NewBucket creates a Bucket.
func NewBucket(serial bloom.Serial, orders []Order) Bucket {
	return Bucket{serial: serial, orders: orders}
}

// Serial returns the bucket serial.
func (b Bucket) Serial() bloom.Serial { return b.serial }

// Orders returns the bucket contents in stored order.
func (b Bucket) Orders() []Order { return b.orders }

// Criterion selects the orders of one user.
type Criterion struct {
	userID int64
}

// ByUser selects orders of one user.
func ByUser(userID int64) Criterion { return Criterion{userID: userID} }

// UserID returns the selected user.
func (c Criterion) UserID() int64 { return c.userID }

// Key returns the text form of the criterion used by text-keyed summaries.
func (c Criterion) Key() string { return strconv.FormatInt(c.userID, 10) }

// Match is the exact predicate: Found when the order belongs to the selected
// user, NotFound otherwise.
func Match(c Criterion, o Order) bloom.Result {
	if o.userID == c.userID {
		return bloom.Found
	}
	return bloom.NotFound
}
