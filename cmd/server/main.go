package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swarmfill.ai/internal/sim/maps"
	"swarmfill.ai/internal/sim/sim"
	"swarmfill.ai/internal/transport/ws"
)

func main() {
	var (
		addr     = flag.String("addr", ":8080", "http listen address")
		mapsPath = flag.String("maps", "./configs/maps.yaml", "map catalog path")
		prob     = flag.Int("p", 100, "active probability (0-100)")
		seed     = flag.Int64("seed", 1337, "sleep-roll rng seed")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	catalog, err := maps.Load(*mapsPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("map catalog not found (%s); serving the built-in demo map", *mapsPath)
		} else {
			logger.Fatalf("load maps: %v", err)
		}
	}

	srv := ws.NewServer(catalog, sim.Config{
		Seed:              *seed,
		ActiveProbability: *prob,
		Logger:            logger,
	}, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", srv.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	httpSrv := &http.Server{Addr: *addr, Handler: mux}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(ctx)
	}()

	logger.Printf("listening on %s (maps=%d, p=%d)", *addr, len(catalog.Maps), *prob)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("listen: %v", err)
	}
}
