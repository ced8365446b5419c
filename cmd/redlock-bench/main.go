// Command redlock-bench races many workers on one lock and checks that the
// counter they guard matches the number of successful acquisitions.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/huimingz/redlock"
	"github.com/huimingz/redlock/metrics"
)

func main() {
	var (
		addr        = flag.String("redis", "127.0.0.1:6379", "Redis address")
		name        = flag.String("name", "bench", "Logical lock name")
		counter     = flag.String("counter", "redlock-bench:counter", "Key of the guarded counter")
		workers     = flag.Int("workers", 20, "Number of concurrent workers")
		iterations  = flag.Int("iterations", 10, "Acquisitions per worker")
		hold        = flag.Duration("hold", 0, "Time spent inside the critical section")
		configFile  = flag.String("config", "", "Optional YAML file with a lock section")
		configKey   = flag.String("config-key", "lock", "Lock section inside the config file")
		metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
		renew       = flag.Bool("renew", false, "Use the renewing variant")
	)
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	opts, err := loadOptions(*configFile, *configKey)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if *renew {
		opts = append(opts, redlock.WithVariant(redlock.VariantRedisson))
	}

	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics.Register(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			logger.Info("serving metrics", zap.String("addr", *metricsAddr))
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{Addr: *addr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("redis is not available", zap.String("addr", *addr), zap.Error(err))
	}
	if err := rdb.Set(ctx, *counter, 0, 0).Err(); err != nil {
		logger.Fatal("failed to reset counter", zap.Error(err))
	}

	client := redlock.NewClient(rdb, redlock.WithLogger(redlock.NewZapLogger(logger)))

	var (
		successes, failures, lost atomic.Int64
		wg                        sync.WaitGroup
	)
	start := time.Now()
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < *iterations; i++ {
				out, err := client.Do(ctx, *name, func(ctx context.Context, l redlock.Lock) error {
					if *hold > 0 {
						time.Sleep(*hold)
					}
					return rdb.Incr(ctx, *counter).Err()
				}, opts...)
				if err != nil {
					logger.Error("critical section failed", zap.Error(err))
					return
				}
				switch {
				case !out.Acquired:
					failures.Add(1)
				case !out.Released:
					successes.Add(1)
					lost.Add(1)
				default:
					successes.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	total, err := rdb.Get(ctx, *counter).Int64()
	if err != nil {
		logger.Fatal("failed to read counter", zap.Error(err))
	}
	logger.Info("done",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int64("acquired", successes.Load()),
		zap.Int64("exhausted", failures.Load()),
		zap.Int64("lost_leases", lost.Load()),
		zap.Int64("counter", total),
	)
	if total != successes.Load() {
		logger.Fatal("counter does not match acquisitions", zap.Int64("counter", total), zap.Int64("acquired", successes.Load()))
	}
}

func loadOptions(file, key string) ([]redlock.Option, error) {
	if file == "" {
		return nil, nil
	}
	v := viper.New()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return redlock.LoadOptions(v, key)
}
