package health

import (
	"context"

	"github.com/kailas-cloud/bloomprobe/internal/domain/bloom"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// DescriptorLoader reads the Bloom descriptor table.
type DescriptorLoader interface {
	Present(ctx context.Context) (bool, error)
	Load(ctx context.Context) ([]bloom.Descriptor, error)
}
