package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingValkeyAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = []string{}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing valkey addrs")
	}
}

func TestValidate_Drivers(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"redis", func(c *Config) { c.Database.Driver = DriverRedis }, ""},
		{"memory without addrs", func(c *Config) {
			c.Database.Driver = DriverMemory
			c.Database.Addrs = nil
		}, ""},
		{"minio", func(c *Config) {
			c.Database.Driver = DriverMinio
			c.Database.Minio = MinioConfig{Endpoint: "localhost:9000", Bucket: "bp"}
		}, ""},
		{"minio without bucket", func(c *Config) {
			c.Database.Driver = DriverMinio
			c.Database.Minio = MinioConfig{Endpoint: "localhost:9000"}
		}, "database.minio"},
		{"unknown", func(c *Config) { c.Database.Driver = "etcd" }, "database.driver"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidate_StorageAndPipeline(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"serial width", func(c *Config) { c.Storage.SerialWidth = 2 }, `storage.serial_width must be 4 or 8, got 2`},
		{"compression", func(c *Config) { c.Storage.Compression = "gzip" },
			`storage.compression must be none, zstd or lz4, got "gzip"`},
		{"key kind", func(c *Config) { c.Pipeline.KeyKind = "uuid" },
			`pipeline.key_kind must be "int" or "text", got "uuid"`},
		{"concurrency", func(c *Config) { c.Pipeline.Concurrency = -1 },
			`pipeline.concurrency must not be negative, got -1`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tc.want {
				t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), tc.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != DriverValkey {
		t.Errorf("expected Driver=valkey, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Storage.KeyPrefix != "bloomprobe:" {
		t.Errorf("expected KeyPrefix='bloomprobe:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Storage.SerialWidth != 8 {
		t.Errorf("expected SerialWidth=8, got %d", cfg.Storage.SerialWidth)
	}
	if cfg.Storage.Compression != "none" {
		t.Errorf("expected Compression=none, got %q", cfg.Storage.Compression)
	}
	if cfg.Pipeline.MaxBuckets != 256 {
		t.Errorf("expected MaxBuckets=256, got %d", cfg.Pipeline.MaxBuckets)
	}
	if cfg.Pipeline.KeyKind != "int" {
		t.Errorf("expected KeyKind=int, got %q", cfg.Pipeline.KeyKind)
	}
	if cfg.Pipeline.TextCharset != "utf-8" {
		t.Errorf("expected TextCharset=utf-8, got %q", cfg.Pipeline.TextCharset)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{Driver: DriverRedis, ReadinessTimeout: 15},
		Storage:  StorageConfig{KeyPrefix: "custom:", SerialWidth: 4, Compression: "lz4"},
		Pipeline: PipelineConfig{MaxBuckets: 8, KeyKind: "text", TextCharset: "iso-8859-1"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Driver != DriverRedis {
		t.Errorf("expected Driver=redis, got %q", cfg.Database.Driver)
	}
	if cfg.Storage.KeyPrefix != "custom:" || cfg.Storage.SerialWidth != 4 || cfg.Storage.Compression != "lz4" {
		t.Errorf("storage overridden: %+v", cfg.Storage)
	}
	if cfg.Pipeline.MaxBuckets != 8 || cfg.Pipeline.KeyKind != "text" || cfg.Pipeline.TextCharset != "iso-8859-1" {
		t.Errorf("pipeline overridden: %+v", cfg.Pipeline)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("BP_TEST_PORT", "9090")

	got := string(expandEnvVars([]byte("port: ${BP_TEST_PORT}\nhost: ${BP_TEST_UNSET:-localhost}\nkey: ${BP_TEST_UNSET}")))
	want := "port: 9090\nhost: localhost\nkey: "
	if got != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestLoad_Local(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")

	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Errorf("expected driver from env, got %q", cfg.Database.Driver)
	}
	if cfg.Storage.Compression != "zstd" || cfg.Pipeline.Concurrency != 16 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoad_UnknownEnv(t *testing.T) {
	if _, err := Load("no-such-env"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
