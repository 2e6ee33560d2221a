// cmd/heliosd — the Helios node daemon.
//
// It owns one in-memory claim ledger, registers the built-in verification
// agents, and serves the node HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/helios-protocol/helios/internal/agent"
	"github.com/helios-protocol/helios/internal/api"
	"github.com/helios-protocol/helios/internal/claims"
	"github.com/helios-protocol/helios/internal/health"
	"github.com/helios-protocol/helios/internal/ledger"
	"github.com/helios-protocol/helios/internal/orchestrator"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	if err := run(logger); err != nil {
		logger.Fatal("heliosd exited with error", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	// ── Configuration ────────────────────────────────────────────────────────
	viper.SetConfigName("heliosd")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("configs")
	viper.AddConfigPath(".")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("node.id", "helios_node_001")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	viper.SetDefault("server.rate_limit_rps", 20)
	viper.SetDefault("server.rate_limit_sweep_interval", "5m")
	viper.SetDefault("orchestrator.agent_timeout", "30s")
	viper.SetDefault("agents.hash_check.enabled", true)
	viper.SetDefault("agents.hash_check.min_hash_length", agent.DefaultMinHashLength)
	viper.SetDefault("agents.known_facts.enabled", true)
	viper.SetDefault("health.check_interval", "1m")

	if err := viper.ReadInConfig(); err != nil {
		var cfgNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgNotFound) {
			return fmt.Errorf("read config: %w", err)
		}
		logger.Warn("no config file found, using defaults and env vars")
	}

	nodeID := viper.GetString("node.id")

	// ── Ledger ───────────────────────────────────────────────────────────────
	chain := ledger.New()

	startCtx := context.Background()
	if err := chain.Verify(startCtx); err != nil {
		return fmt.Errorf("genesis chain verification failed: %w", err)
	}
	tail, _ := chain.TailHash(startCtx)
	logger.Info("claim ledger initialised",
		zap.String("node_id", nodeID),
		zap.String("tail_hash", tail),
	)

	// ── Orchestrator & agents ────────────────────────────────────────────────
	orch := orchestrator.New(chain, logger,
		orchestrator.WithAgentTimeout(viper.GetDuration("orchestrator.agent_timeout")),
	)
	if viper.GetBool("agents.hash_check.enabled") {
		orch.Register(agent.NewHashCheckAgent(viper.GetInt("agents.hash_check.min_hash_length")))
	}
	if viper.GetBool("agents.known_facts.enabled") {
		orch.Register(agent.NewKnownFactsAgent(nil))
	}
	for _, info := range orch.Agents() {
		logger.Info("verification agent registered",
			zap.String("agent_id", info.ID),
			zap.String("agent_version", info.Version),
		)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	claimSvc := claims.NewService(chain, logger)

	watcher := health.New(chain, health.Config{
		CheckInterval: viper.GetDuration("health.check_interval"),
	}, logger)
	watcher.SetMetricsRecord(api.RecordChainCheck)

	watchCtx, stopWatcher := context.WithCancel(context.Background())
	defer stopWatcher()
	go watcher.Start(watchCtx)

	// ── HTTP server ──────────────────────────────────────────────────────────
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.PrometheusMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: viper.GetStringSlice("server.cors_origins"),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Content-Type", "Accept"},
	}))
	limiter := api.NewRateLimiter(api.RateLimitConfig{
		RPS:           viper.GetInt("server.rate_limit_rps"),
		Burst:         viper.GetInt("server.rate_limit_rps") * 2,
		SweepInterval: viper.GetDuration("server.rate_limit_sweep_interval"),
	})
	go limiter.Sweep(watchCtx)
	router.Use(limiter.Middleware())

	router.GET("/healthz", func(c *gin.Context) {
		if !watcher.Healthy() {
			_, lastErr := watcher.Status()
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  lastErr.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "node_id": nodeID})
	})
	router.GET("/metrics", api.MetricsHandler())

	v1 := router.Group("/api/v1")
	api.NewClaimHandler(claimSvc, orch, logger).Register(v1)
	api.NewLedgerHandler(chain, logger).Register(v1)

	addr := fmt.Sprintf(":%d", viper.GetInt("server.port"))
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("node API listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// ── Shutdown ─────────────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
