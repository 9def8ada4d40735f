package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"voice-coach-be/internal/bootstrap"
	"voice-coach-be/internal/config"
	"voice-coach-be/internal/server"
	"voice-coach-be/internal/tracer"

	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(ctx, cfg.App)
	defer shutdownTracer(context.Background())

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to bootstrap: %v", err)
	}

	// 4. Initialize Server
	srv := server.New(cfg, container)

	// 5. Run hub and server until a signal arrives or one of them fails
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		container.WebSocketHub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		return srv.Run()
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("[INFO] Shutting down...")
		return srv.Shutdown()
	})

	if err := g.Wait(); err != nil {
		log.Printf("[ERROR] Server stopped: %v", err)
	}

	// 6. Release sessions, then infrastructure
	container.Orchestrator.Shutdown()
	if err := container.Close(); err != nil {
		log.Printf("[WARN] Shutdown: %v", err)
	}
}
