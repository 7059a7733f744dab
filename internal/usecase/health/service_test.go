package health

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/bloomprobe/internal/domain"
	"github.com/kailas-cloud/bloomprobe/internal/domain/bloom"
	"github.com/kailas-cloud/bloomprobe/internal/domain/order"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockDescriptorLoader struct {
	absent     bool
	presentErr error
	ds         []bloom.Descriptor
	err        error
	loads      int
}

func (m *mockDescriptorLoader) Present(_ context.Context) (bool, error) {
	return !m.absent, m.presentErr
}

func (m *mockDescriptorLoader) Load(_ context.Context) ([]bloom.Descriptor, error) {
	m.loads++
	return m.ds, m.err
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockDescriptorLoader{ds: order.SampleDescriptors()})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["database"] != CheckOK {
		t.Errorf("expected database %q, got %q", CheckOK, r.Checks["database"])
	}
	if r.Checks["descriptors"] != CheckOK {
		t.Errorf("expected descriptors %q, got %q", CheckOK, r.Checks["descriptors"])
	}
	if r.Descriptors != 2 {
		t.Errorf("expected 2 descriptors, got %d", r.Descriptors)
	}
}

func TestCheck_DBError(t *testing.T) {
	svc := New(&mockDBPinger{err: errors.New("conn refused")}, &mockDescriptorLoader{})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
}

func TestCheck_DescriptorsUnreadable(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockDescriptorLoader{err: domain.ErrDescriptorsUnavailable})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["descriptors"] != CheckError {
		t.Errorf("expected descriptors %q, got %q", CheckError, r.Checks["descriptors"])
	}
}

func TestCheck_DescriptorsAbsent(t *testing.T) {
	loader := &mockDescriptorLoader{absent: true}
	r := New(&mockDBPinger{}, loader).Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["descriptors"] != CheckMissing {
		t.Errorf("expected descriptors %q, got %q", CheckMissing, r.Checks["descriptors"])
	}
	if loader.loads != 0 {
		t.Errorf("absent table should not be read, got %d loads", loader.loads)
	}
}

func TestCheck_DescriptorsPresenceError(t *testing.T) {
	loader := &mockDescriptorLoader{presentErr: errors.New("timeout")}
	r := New(&mockDBPinger{}, loader).Check(context.Background())

	if r.Status != Degraded || r.Checks["descriptors"] != CheckError {
		t.Errorf("unexpected report: %+v", r)
	}
}

func TestCheck_BothFail(t *testing.T) {
	svc := New(&mockDBPinger{err: errors.New("down")}, &mockDescriptorLoader{err: errors.New("down")})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_NilDescriptors(t *testing.T) {
	svc := New(&mockDBPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["descriptors"]; ok {
		t.Error("descriptors check should be absent when no loader is set")
	}
}
