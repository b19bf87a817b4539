package main

import (
	"flag"
	"fmt"
	"os"

	"PriceSim/internal/di"
	"PriceSim/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path (empty for built-in defaults)")
	check := flag.Bool("check", false, "validate the configuration and exit")
	flag.Parse()

	if err := run(*configPath, *check); err != nil {
		fmt.Fprintf(os.Stderr, "pricesim: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, check bool) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if check {
		fmt.Printf("config ok: env=%s domain_policy=%s session_backend=%s kafka=%t\n",
			cfg.Environment, cfg.Pricing.DomainPolicy, cfg.Session.Backend, cfg.Kafka.Enabled)
		return nil
	}

	// Blocks until SIGINT/SIGTERM.
	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	return app.Run()
}
