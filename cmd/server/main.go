package main

import (
	"fmt"
	"log/slog"
	"os"

	"hostorigin/internal/config"
	"hostorigin/internal/dnsclient"
	"hostorigin/internal/handlers"
	"hostorigin/internal/hosting"
	"hostorigin/internal/metrics"
	"hostorigin/internal/middleware"
	"hostorigin/internal/registry"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})))

	dnsclient.SetUserAgentVersion(cfg.AppVersion)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestContext())
	router.Use(middleware.Recovery())
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(middleware.SecurityHeaders())

	rateLimiter := middleware.NewInMemoryRateLimiter()
	slog.Info("Rate limiter initialized", "backend", "in-memory", "max_requests", middleware.RateLimitMaxRequests, "window_seconds", middleware.RateLimitWindow)

	m := metrics.New()

	dnsOpts := []dnsclient.Option{dnsclient.WithTimeout(cfg.DNSTimeout)}
	if len(cfg.DNSResolvers) > 0 {
		resolvers := make([]dnsclient.ResolverConfig, 0, len(cfg.DNSResolvers))
		for _, ip := range cfg.DNSResolvers {
			resolvers = append(resolvers, dnsclient.ResolverConfig{Name: ip, IP: ip})
		}
		dnsOpts = append(dnsOpts, dnsclient.WithResolvers(resolvers))
	}

	checker := hosting.New(
		hosting.WithDNSClient(dnsclient.New(dnsOpts...)),
		hosting.WithHTTPTimeout(cfg.HTTPTimeout),
		hosting.WithMetrics(m),
	)
	slog.Info("Hosting checker initialized", "dns_timeout", cfg.DNSTimeout, "http_timeout", cfg.HTTPTimeout)

	checkHandler := handlers.NewCheckHandler(checker, rateLimiter, m)
	checkHandler.Timeout = cfg.CheckTimeout
	registryHandler := handlers.NewRegistryHandler(registry.New(cfg.RegistryBaseURL, nil), m)
	healthHandler := handlers.NewHealthHandler(cfg.AppVersion)

	router.POST("/api/check", checkHandler.Check)
	router.GET("/api/check", checkHandler.Check)

	router.POST("/api/registry/check", registryHandler.CheckOperator)
	router.GET("/api/registry/check", registryHandler.CheckOperator)

	router.GET("/healthz", healthHandler.HealthCheck)
	router.GET("/api/health", healthHandler.HealthCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Not found"})
	})

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Port)
	slog.Info("Starting hosting origin server", "address", addr, "version", cfg.AppVersion)

	if err := router.Run(addr); err != nil {
		slog.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}
