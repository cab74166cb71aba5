package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/ignite/golden-ipa/internal/config"
	"github.com/ignite/golden-ipa/internal/experience"
	"github.com/ignite/golden-ipa/internal/metrics"
	"github.com/ignite/golden-ipa/internal/pkg/logger"
	"github.com/ignite/golden-ipa/internal/relay"
	"github.com/ignite/golden-ipa/internal/server"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/experience.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetRedactPII(cfg.Log.Redact())

	exp := cfg.Experience
	if exp.CustomersDomainURL == "" || exp.OrdersDomainURL == "" {
		log.Fatalf("CUSTOMERS_DOMAIN_URL and ORDERS_DOMAIN_URL are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	creds, err := relay.NewCredentialsProvider(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to load signing credentials: %v", err)
	}

	client := relay.NewClient(relay.Options{
		Credentials: creds,
		Timeout:     exp.Timeout(),
		ConsumerID:  exp.ConsumerID,
		Service:     exp.SigningService,
		Region:      exp.SigningRegion,
		Metrics:     metrics.NewRelay(),
	})
	resolvers := experience.NewResolvers(
		client.Customers(exp.CustomersDomainURL),
		client.Orders(exp.OrdersDomainURL),
	)
	router := experience.NewRouter(resolvers, experience.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        metrics.NewHTTP("experience"),
	})

	logger.Info("experience layer configured",
		"customersDomainUrl", exp.CustomersDomainURL,
		"ordersDomainUrl", exp.OrdersDomainURL,
		"consumerId", exp.ConsumerID,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", addr, err)
	}
	if err := server.New("experience-api", router).Run(ctx, ln); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
