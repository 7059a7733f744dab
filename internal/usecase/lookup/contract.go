package lookup

import (
	"context"

	"github.com/kailas-cloud/bloomprobe/internal/deferred"
	"github.com/kailas-cloud/bloomprobe/internal/domain/bloom"
	"github.com/kailas-cloud/bloomprobe/internal/domain/order"
)

// BucketRepository fetches buckets and lists their orders.
type BucketRepository interface {
	Fetch(serial bloom.Serial) deferred.IO[order.Bucket]
	Extract(b order.Bucket) deferred.IO[[]order.Order]
}

// DescriptorRepository loads the Bloom descriptor table.
type DescriptorRepository interface {
	Load(ctx context.Context) ([]bloom.Descriptor, error)
}
