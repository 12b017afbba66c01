package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"example.com/marketplace/internal/app"
	"example.com/marketplace/internal/discovery"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	cfg := app.LoadConfig()

	handler, cleanup, err := app.NewServer(cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer cleanup()

	if cfg.ConsulAddr != "" {
		reg, err := discovery.NewClient(discovery.Config{
			Addr:        cfg.ConsulAddr,
			ServiceName: cfg.ServiceName,
			Port:        cfg.Port,
			Host:        cfg.PublicHost,
		})
		if err != nil {
			log.Fatalf("consul: %v", err)
		}
		if err := reg.WaitForAgent(10, 2*time.Second); err != nil {
			log.Printf("consul: %v", err)
		} else if err := reg.Register(); err != nil {
			log.Printf("consul: %v", err)
		} else {
			defer func() {
				if err := reg.Deregister(); err != nil {
					log.Printf("consul: %v", err)
				}
			}()
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
