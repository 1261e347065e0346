package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/devrev/rangekv/internal/cluster"
	"github.com/devrev/rangekv/internal/config"
	"github.com/devrev/rangekv/internal/observer"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if dump, err := cfg.Dump(); err == nil {
		logger.Debug("effective configuration", zap.String("config", dump))
	}

	obs := observer.Multi{observer.NewLog(logger)}
	if cfg.Metrics.Enabled {
		obs = append(obs, observer.NewMetrics(prometheus.DefaultRegisterer, cfg.Cluster.Name))
		go serveMetrics(cfg.Metrics, logger)
	}

	c, err := cluster.New(cfg.Cluster, logger, obs)
	if err != nil {
		logger.Fatal("Failed to bootstrap cluster", zap.Error(err))
	}
	defer c.Close()

	runWorkload(c, logger)
}

// runWorkload walks the cluster through a scripted set of operations,
// including out-of-domain keys, and dumps the per-node state afterward.
func runWorkload(c *cluster.Cluster, logger *zap.Logger) {
	ctx := context.Background()

	inserts := []struct{ key, value int }{
		{1, 223}, {10, 65422}, {20, 2652}, {30, 2542}, {40, 652},
		{70, 265}, {50, 298}, {1000, 265}, {-1, 298},
	}
	for _, in := range inserts {
		if err := c.Insert(ctx, in.key, in.value); err != nil {
			logger.Warn("insert failed", zap.Int("key", in.key), zap.Error(err))
			continue
		}
		logger.Info("insert ok", zap.Int("key", in.key), zap.Int("value", in.value))
	}

	for _, key := range []int{1, 10, 20, 30, 40, 31, 41} {
		v, err := c.Get(ctx, key)
		if err != nil {
			logger.Warn("get failed", zap.Int("key", key), zap.Error(err))
			continue
		}
		logger.Info("get ok", zap.Int("key", key), zap.Int("value", v))
	}

	for _, up := range []struct{ key, value int }{{1, 2223}, {10, 654224}, {32, 25842}} {
		if err := c.Update(ctx, up.key, up.value); err != nil {
			logger.Warn("update failed", zap.Int("key", up.key), zap.Error(err))
			continue
		}
		logger.Info("update ok", zap.Int("key", up.key), zap.Int("value", up.value))
	}

	for _, key := range []int{1, 10, 31} {
		if err := c.Remove(ctx, key); err != nil {
			logger.Warn("remove failed", zap.Int("key", key), zap.Error(err))
			continue
		}
		logger.Info("remove ok", zap.Int("key", key))
	}

	snaps, err := c.Snapshot(ctx)
	if err != nil {
		logger.Error("snapshot failed", zap.Error(err))
		return
	}
	for _, s := range snaps {
		logger.Info("node state",
			zap.Int("node_id", int(s.NodeID)),
			zap.Int("entries", len(s.Entries)),
			zap.Int("pending", len(s.Pending)),
			zap.Any("store", s.Entries))
	}
}

func serveMetrics(cfg config.MetricsConfig, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())
	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("metrics server listening", zap.String("addr", addr), zap.String("path", cfg.Path))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zcfg zap.Config
	if cfg.Format == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
