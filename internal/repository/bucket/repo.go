// Package bucket stores order buckets addressed by serial.
package bucket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/bloomprobe/internal/db"
	"github.com/kailas-cloud/bloomprobe/internal/deferred"
	"github.com/kailas-cloud/bloomprobe/internal/domain"
	"github.com/kailas-cloud/bloomprobe/internal/domain/bloom"
	"github.com/kailas-cloud/bloomprobe/internal/domain/order"
)

// store is the consumer interface for buckets (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// Repo reads and writes order buckets.
type Repo struct {
	store       store
	prefix      string
	compression Compression
}

// New creates a bucket repository. Keys are "<prefix>bucket:<serial hex>";
// compression applies to writes only.
func New(s store, prefix string, c Compression) *Repo {
	return &Repo{store: s, prefix: prefix, compression: c}
}

// Fetch returns a deferred read of the bucket stored under serial.
// A missing bucket fails with domain.BucketNotFoundError.
func (r *Repo) Fetch(serial bloom.Serial) deferred.IO[order.Bucket] {
	return func(ctx context.Context) (order.Bucket, error) {
		key := r.key(serial)
		data, err := r.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				return order.Bucket{}, domain.NewBucketNotFound(uint64(serial))
			}
			return order.Bucket{}, fmt.Errorf("get %s: %w", key, err)
		}

		b, err := decode(data)
		if err != nil {
			return order.Bucket{}, fmt.Errorf("decode %s: %w", key, err)
		}
		if b.Serial() != serial {
			return order.Bucket{}, fmt.Errorf("decode %s: %w: holds serial %#x",
				key, ErrCorruptPayload, uint64(b.Serial()))
		}
		return b, nil
	}
}

// Extract lists the orders of a fetched bucket in stored order.
func (r *Repo) Extract(b order.Bucket) deferred.IO[[]order.Order] {
	return deferred.Of(b.Orders())
}

// Put writes a bucket, replacing any previous content.
func (r *Repo) Put(ctx context.Context, b order.Bucket) error {
	raw, err := json.Marshal(toDTO(b))
	if err != nil {
		return fmt.Errorf("marshal bucket: %w", err)
	}
	data, err := encodePayload(raw, r.compression)
	if err != nil {
		return fmt.Errorf("encode bucket: %w", err)
	}

	key := r.key(b.Serial())
	if err := r.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes the bucket stored under serial. Deleting a missing bucket
// is not an error. Descriptors pointing at it will fail lookups with
// domain.BucketNotFoundError until the table is rewritten.
func (r *Repo) Delete(ctx context.Context, serial bloom.Serial) error {
	key := r.key(serial)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func (r *Repo) key(serial bloom.Serial) string {
	return fmt.Sprintf("%sbucket:%x", r.prefix, uint64(serial))
}

func decode(data []byte) (order.Bucket, error) {
	raw, err := decodePayload(data)
	if err != nil {
		return order.Bucket{}, err
	}
	var d bucketDTO
	if err := json.Unmarshal(raw, &d); err != nil {
		return order.Bucket{}, fmt.Errorf("%w: %w", ErrCorruptPayload, err)
	}
	return fromDTO(d), nil
}
