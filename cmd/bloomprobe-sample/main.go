// Command bloomprobe-sample seeds an in-memory store with two order buckets
// and looks up the orders of one user through the Bloom pre-filter.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bloomprobe/internal/db/memory"
	"github.com/kailas-cloud/bloomprobe/internal/domain/bloom"
	"github.com/kailas-cloud/bloomprobe/internal/domain/order"
	logpkg "github.com/kailas-cloud/bloomprobe/internal/logger"
	bucketrepo "github.com/kailas-cloud/bloomprobe/internal/repository/bucket"
	descriptorrepo "github.com/kailas-cloud/bloomprobe/internal/repository/descriptor"
	lookupuc "github.com/kailas-cloud/bloomprobe/internal/usecase/lookup"
	"github.com/kailas-cloud/bloomprobe/internal/version"
)

func main() {
	userID := flag.Int64("user", order.SampleCriterion().UserID(), "user id to look up")
	maxBuckets := flag.Int("max-buckets", 0, "candidate bucket cap (0 = default)")
	compression := flag.String("compression", "zstd", "bucket payload compression: none, zstd, lz4")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger, err := logpkg.NewLogger("local", *level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), logger, *userID, *maxBuckets, *compression); err != nil {
		logger.Error("Sample failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *zap.Logger, userID int64, maxBuckets int, compression string) error {
	logger.Info("Starting sample", zap.String("version", version.String()))

	c, err := bucketrepo.ParseCompression(compression)
	if err != nil {
		return err
	}

	store := memory.NewStore()
	defer store.Close()

	buckets := bucketrepo.New(store, "sample:", c)
	descriptors, err := descriptorrepo.New(store, "sample:", bloom.Width32)
	if err != nil {
		return err
	}

	if err := seed(ctx, buckets, descriptors); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	logger.Info("Seeded sample store", zap.Int("keys", store.Len()))

	svc, err := lookupuc.New(buckets, descriptors, lookupuc.Options{MaxBuckets: maxBuckets}, logger)
	if err != nil {
		return err
	}

	crit := order.ByUser(userID)
	p, err := svc.Probe(ctx, crit)
	if err != nil {
		return err
	}
	logger.Info("Derived probe",
		zap.Int64("user_id", userID),
		zap.String("probe", fmt.Sprintf("%#04x", p.Probe)),
		zap.Uint8s("nibbles", p.Nibbles[:]),
	)

	res, err := svc.Orders(ctx, crit)
	if err != nil {
		return err
	}
	for _, o := range res.Orders {
		logger.Info("Matched order",
			zap.Int64("user_id", o.UserID()),
			zap.Int64("order_id", o.OrderID()),
			zap.Int64("unix_time_ms", o.UnixTimeMs()),
		)
	}
	logger.Info("Lookup complete",
		zap.Int("candidates", len(res.Candidates)),
		zap.Int("fetched", res.Fetched),
		zap.Bool("truncated", res.Truncated),
		zap.Int("matched", len(res.Orders)),
	)
	return nil
}

func seed(ctx context.Context, buckets *bucketrepo.Repo, descriptors *descriptorrepo.Repo) error {
	for _, b := range order.SampleBuckets() {
		if err := buckets.Put(ctx, b); err != nil {
			return err
		}
	}
	return descriptors.Save(ctx, order.SampleDescriptors())
}
