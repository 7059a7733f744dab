package bloomprobe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/bloomprobe/internal/db"
	"github.com/kailas-cloud/bloomprobe/internal/db/memory"
	dbMinio "github.com/kailas-cloud/bloomprobe/internal/db/minio"
	dbRedis "github.com/kailas-cloud/bloomprobe/internal/db/redis"
	"github.com/kailas-cloud/bloomprobe/internal/domain/bloom"
	"github.com/kailas-cloud/bloomprobe/internal/domain/order"
	bucketrepo "github.com/kailas-cloud/bloomprobe/internal/repository/bucket"
	descriptorrepo "github.com/kailas-cloud/bloomprobe/internal/repository/descriptor"
	healthuc "github.com/kailas-cloud/bloomprobe/internal/usecase/health"
	lookupuc "github.com/kailas-cloud/bloomprobe/internal/usecase/lookup"
)

const defaultReadinessTimeout = 10 * time.Second

// Внутренние интерфейсы для подмены в тестах.
type lookupUseCase interface {
	Orders(ctx context.Context, c order.Criterion) (lookupuc.Result, error)
	Candidates(ctx context.Context, c order.Criterion) ([]bloom.Serial, error)
	Probe(ctx context.Context, c order.Criterion) (lookupuc.ProbeInfo, error)
}

type bucketWriter interface {
	Put(ctx context.Context, b order.Bucket) error
	Delete(ctx context.Context, serial bloom.Serial) error
}

type descriptorWriter interface {
	Save(ctx context.Context, ds []bloom.Descriptor) error
}

// Client is the bloomprobe SDK entry point.
type Client struct {
	store       db.Store
	lookupSvc   lookupUseCase
	buckets     bucketWriter
	descriptors descriptorWriter
	healthSvc   healthUseCase
	obs         *observer
}

// New creates a Client and connects to the store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("bloomprobe: store required (use WithValkey, WithRedis, WithMinio or WithMemory)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("bloomprobe: store not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	c, err := wireClient(store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		if len(cfg.addrs) == 0 || cfg.addrs[0] == "" {
			return nil, fmt.Errorf("bloomprobe: %s address required", cfg.driver)
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("bloomprobe: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	case "minio":
		s, err := dbMinio.NewStore(dbMinio.Config{
			Endpoint:  cfg.minio.endpoint,
			AccessKey: cfg.minio.accessKey,
			SecretKey: cfg.minio.secretKey,
			Bucket:    cfg.minio.bucket,
			Secure:    cfg.minio.secure,
		})
		if err != nil {
			return nil, fmt.Errorf("bloomprobe: create minio store: %w", err)
		}
		return s, nil
	case "memory":
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("bloomprobe: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	compression, err := bucketrepo.ParseCompression(cfg.compression)
	if err != nil {
		return nil, fmt.Errorf("bloomprobe: %w", err)
	}

	buckets := bucketrepo.New(store, cfg.keyPrefix, compression)
	descriptors, err := descriptorrepo.New(store, cfg.keyPrefix, bloom.SerialWidth(cfg.serialWidth))
	if err != nil {
		return nil, fmt.Errorf("bloomprobe: %w", err)
	}

	kind := lookupuc.KeyInt
	if cfg.textKeys {
		kind = lookupuc.KeyText
	}
	// The SDK logs through slog in observe; the service stays silent.
	lookupSvc, err := lookupuc.New(buckets, descriptors, lookupuc.Options{
		MaxBuckets:  cfg.maxBuckets,
		Concurrency: cfg.concurrency,
		KeyKind:     kind,
		Charset:     cfg.charset,
		StrictText:  cfg.strict,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("bloomprobe: %w", err)
	}

	return &Client{
		store:       store,
		lookupSvc:   lookupSvc,
		buckets:     buckets,
		descriptors: descriptors,
		healthSvc:   healthuc.New(store, descriptors),
		obs:         obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
