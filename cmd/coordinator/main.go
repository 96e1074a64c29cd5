// Command coordinator runs the distributed BFS coordinator service: the
// control plane that wires a fleet of shard proxies into a toroidal
// topology and drives global BFS runs across them.
//
// Configuration:
//   - COORDINATOR_ADDR: listen address (default ":5000")
//   - DBFS_NSHARDS_MAX: upper bound on create-remote-shards' shard count
//     (default 10000)
//
// Example usage:
//
//	COORDINATOR_ADDR=:5000 ./coordinator
//	curl 'localhost:5000/create-shards?shards=4&nodes=200&edges=0.08&farnodes=16'
//	curl 'localhost:5000/do-dbfs?shard=0&verbose=false'
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dreamware/dbfs/internal/config"
	"github.com/dreamware/dbfs/internal/coordinator"
)

func main() {
	cfg := config.LoadCoordinator()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	c := coordinator.New(cfg.NShardsMax, logger)
	srv := coordinator.NewServer(c, logger)

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("coordinator listening", zap.String("addr", cfg.ListenAddr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("coordinator stopped")
}
