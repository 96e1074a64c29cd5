// Command shard runs a single shard service process: it hosts zero or
// more shardgraph.Shard instances and serves the query-string HTTP
// contract a coordinator's RemoteProxy speaks against.
//
// Configuration:
//   - SHARD_ADDR: listen address (default ":5001")
//   - SHARD_ID: required; logged at startup for operators running several
//     shard processes on one host, though the process itself can host any
//     shard id a create-graph-shard call names.
//
// Example usage:
//
//	SHARD_ID=0 SHARD_ADDR=:5001 ./shard
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
	"github.com/dreamware/dbfs/internal/shardservice"
)

func main() {
	cfg, err := config.LoadShard()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	svc := shardservice.New(logger)

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           svc.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("shard service listening", zap.String("addr", cfg.ListenAddr), zap.Int("shardId", cfg.ID))
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
	logger.Info("shard service stopped")
}
