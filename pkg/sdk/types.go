package bloomprobe

// Order is a single stored order.
type Order struct {
	UserID     int64
	OrderID    int64
	UnixTimeMs int64
}

// Bucket is a shard of orders addressed by serial.
type Bucket struct {
	Serial uint64
	Orders []Order
}

// Descriptor summarizes one bucket.
type Descriptor struct {
	Serial uint64
	Bloom  uint16
}

// Result is the outcome of an order lookup.
type Result struct {
	Orders     []Order
	Candidates []uint64 // serials that passed the Bloom test, in descriptor order
	Fetched    int      // leading candidates that were fetched
	Truncated  bool
}

// Probe is the 16-bit value derived from a user id and its four nibbles,
// most significant first.
type Probe struct {
	Value   uint16
	Nibbles [4]uint8
}
