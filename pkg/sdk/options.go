package bloomprobe

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey", "redis", "minio" or "memory"
	addrs    []string
	password string
	minio    minioConfig

	keyPrefix   string
	serialWidth int
	compression string

	maxBuckets  int
	concurrency int
	textKeys    bool
	charset     string
	strict      bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

type minioConfig struct {
	endpoint  string
	accessKey string
	secretKey string
	bucket    string
	secure    bool
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		keyPrefix:   "bloomprobe:",
		serialWidth: 8,
		compression: "none",
	}
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithMinio stores buckets and descriptors as objects in an S3-compatible
// bucket. The bucket must exist.
func WithMinio(endpoint, accessKey, secretKey, bucket string, secure bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "minio"
		c.minio = minioConfig{
			endpoint:  endpoint,
			accessKey: accessKey,
			secretKey: secretKey,
			bucket:    bucket,
			secure:    secure,
		}
	})
}

// WithMemory keeps everything in process memory. Useful for tests.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "memory"
	})
}

// WithKeyPrefix sets the prefix of every stored key.
// Default: "bloomprobe:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithSerialWidth sets the byte width of serials in the descriptor table
// (4 or 8). Default: 8.
func WithSerialWidth(width int) Option {
	return optionFunc(func(c *clientConfig) {
		c.serialWidth = width
	})
}

// WithCompression sets the codec for written bucket payloads: "none",
// "zstd" or "lz4". Reads detect the codec from the payload.
func WithCompression(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.compression = name
	})
}

// WithMaxBuckets caps how many candidate buckets a lookup fetches.
// Zero or negative keeps the default of 256.
func WithMaxBuckets(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBuckets = n
	})
}

// WithConcurrency bounds bucket fetches in flight. Zero means unbounded.
func WithConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.concurrency = n
	})
}

// WithTextKeys digests the decimal user id encoded in charset instead of
// its 8-byte form. With strict set, keys longer than 256 encoded bytes are
// rejected rather than hashed by prefix.
func WithTextKeys(charset string, strict bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.textKeys = true
		c.charset = charset
		c.strict = strict
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
