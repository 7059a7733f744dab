// Package descriptor persists the Bloom descriptor table as a single
// fixed-width binary value.
package descriptor

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/bloomprobe/internal/db"
	"github.com/kailas-cloud/bloomprobe/internal/domain"
	"github.com/kailas-cloud/bloomprobe/internal/domain/bloom"
)

// store is the consumer interface for descriptors (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Repo loads and saves the descriptor table.
type Repo struct {
	store store
	key   string
	width bloom.SerialWidth
}

// New creates a descriptor repository reading "<prefix>descriptors".
func New(s store, prefix string, width bloom.SerialWidth) (*Repo, error) {
	if !width.IsValid() {
		return nil, bloom.ErrInvalidWidth
	}
	return &Repo{store: s, key: prefix + "descriptors", width: width}, nil
}

// Load returns all descriptors in stored order. A missing table is
// domain.ErrDescriptorsUnavailable.
func (r *Repo) Load(ctx context.Context) ([]bloom.Descriptor, error) {
	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s is missing", domain.ErrDescriptorsUnavailable, r.key)
		}
		return nil, fmt.Errorf("get %s: %w", r.key, err)
	}

	ds, err := bloom.UnmarshalDescriptors(data, r.width)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.key, err)
	}
	return ds, nil
}

// Present reports whether the table is stored, without reading it.
func (r *Repo) Present(ctx context.Context) (bool, error) {
	ok, err := r.store.Exists(ctx, r.key)
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", r.key, err)
	}
	return ok, nil
}

// Save replaces the table with ds.
func (r *Repo) Save(ctx context.Context, ds []bloom.Descriptor) error {
	data, err := bloom.MarshalDescriptors(ds, r.width)
	if err != nil {
		return fmt.Errorf("encode descriptors: %w", err)
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("set %s: %w", r.key, err)
	}
	return nil
}
