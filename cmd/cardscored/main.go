package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ivlev/cardvision/internal/config"
	"github.com/ivlev/cardvision/internal/engine"
	"github.com/ivlev/cardvision/internal/server"
	"github.com/ivlev/cardvision/internal/system"
)

var version = "dev"

func main() {
	system.InitResourceLimits(4096)

	configPtr := flag.String("config", "", "Path to a YAML config file")
	addrPtr := flag.String("addr", "", "Listen address (overrides config)")
	templatesPtr := flag.String("templates", "", "Directory of card template PNGs (overrides config)")
	debugPtr := flag.String("debug-dir", "", "Save every rectified card to this directory")
	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}
	cfg.ApplyEnv()
	if *addrPtr != "" {
		cfg.Addr = *addrPtr
	}
	if *templatesPtr != "" {
		cfg.TemplatesDir = *templatesPtr
	}
	if *debugPtr != "" {
		cfg.DebugDir = *debugPtr
	}
	cfg.BuildVersion = version
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Invalid config: %v", err)
	}

	system.LogResources()
	analyzer, err := engine.Load(cfg)
	if err != nil {
		log.Fatalf("[-] Could not load templates: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(analyzer, cfg.Workers, cfg.MaxUploadMB).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("[*] cardscored %s listening on %s (%d workers)", cfg.BuildVersion, cfg.Addr, cfg.Workers)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[-] %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[*] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[!] Shutdown: %v", err)
	}
}
