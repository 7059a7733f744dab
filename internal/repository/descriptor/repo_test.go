package descriptor

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/bloomprobe/internal/db"
	"github.com/kailas-cloud/bloomprobe/internal/domain"
	"github.com/kailas-cloud/bloomprobe/internal/domain/bloom"
	"github.com/kailas-cloud/bloomprobe/internal/domain/order"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	data     map[string][]byte
	getFn    func(ctx context.Context, key string) ([]byte, error)
	existsFn func(ctx context.Context, key string) (bool, error)
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) Set(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	_, ok := m.data[key]
	return ok, nil
}

func TestRepo_Present(t *testing.T) {
	ms := &mockStore{data: map[string][]byte{}}
	repo, err := New(ms, "bp:", bloom.Width64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if ok, err := repo.Present(ctx); err != nil || ok {
		t.Fatalf("before save: present=%v err=%v", ok, err)
	}
	if err := repo.Save(ctx, order.SampleDescriptors()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ok, err := repo.Present(ctx); err != nil || !ok {
		t.Errorf("after save: present=%v err=%v", ok, err)
	}

	cause := errors.New("conn reset")
	ms.existsFn = func(context.Context, string) (bool, error) { return false, cause }
	if _, err := repo.Present(ctx); !errors.Is(err, cause) {
		t.Errorf("expected cause, got %v", err)
	}
}

func TestRepo_SaveLoad(t *testing.T) {
	ms := &mockStore{data: map[string][]byte{}}
	repo, err := New(ms, "bp:", bloom.Width32)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if err := repo.Save(ctx, order.SampleDescriptors()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := []byte{0x00, 0x00, 0x00, 0x42, 0x14, 0x02, 0x00, 0x00, 0x00, 0x43, 0x14, 0x02}
	if !bytes.Equal(ms.data["bp:descriptors"], want) {
		t.Errorf("stored % x, want % x", ms.data["bp:descriptors"], want)
	}

	ds, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds) != 2 || ds[0].Serial() != 0x42 || ds[1].Serial() != 0x43 || ds[1].Bits() != order.SampleBloom {
		t.Errorf("unexpected descriptors: %+v", ds)
	}
}

func TestRepo_Load_Missing(t *testing.T) {
	repo, _ := New(&mockStore{data: map[string][]byte{}}, "bp:", bloom.Width64)

	_, err := repo.Load(context.Background())
	if !errors.Is(err, domain.ErrDescriptorsUnavailable) {
		t.Errorf("expected ErrDescriptorsUnavailable, got %v", err)
	}
}

func TestRepo_Load_Malformed(t *testing.T) {
	ms := &mockStore{data: map[string][]byte{"bp:descriptors": {0x00, 0x01, 0x02}}}
	repo, _ := New(ms, "bp:", bloom.Width64)

	_, err := repo.Load(context.Background())
	if !errors.Is(err, bloom.ErrMalformedDescriptors) {
		t.Errorf("expected ErrMalformedDescriptors, got %v", err)
	}
}

func TestRepo_Load_StoreError(t *testing.T) {
	boom := errors.New("timeout")
	repo, _ := New(&mockStore{getFn: func(context.Context, string) ([]byte, error) { return nil, boom }},
		"bp:", bloom.Width64)

	_, err := repo.Load(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("expected store error, got %v", err)
	}
	if errors.Is(err, domain.ErrDescriptorsUnavailable) {
		t.Error("store failure must not look like a missing table")
	}
}

func TestRepo_Save_Overflow(t *testing.T) {
	repo, _ := New(&mockStore{data: map[string][]byte{}}, "bp:", bloom.Width32)

	err := repo.Save(context.Background(), []bloom.Descriptor{bloom.NewDescriptor(1<<40, 0)})
	if !errors.Is(err, bloom.ErrSerialOverflow) {
		t.Errorf("expected ErrSerialOverflow, got %v", err)
	}
}

func TestNew_InvalidWidth(t *testing.T) {
	if _, err := New(&mockStore{}, "bp:", 3); !errors.Is(err, bloom.ErrInvalidWidth) {
		t.Errorf("expected ErrInvalidWidth, got %v", err)
	}
}
