package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/edvin/flowplane/internal/api"
	"github.com/edvin/flowplane/internal/archive"
	"github.com/edvin/flowplane/internal/audit"
	"github.com/edvin/flowplane/internal/config"
	"github.com/edvin/flowplane/internal/core"
	"github.com/edvin/flowplane/internal/db"
	"github.com/edvin/flowplane/internal/engine"
	"github.com/edvin/flowplane/internal/logging"
	"github.com/edvin/flowplane/internal/metrics"
	"github.com/edvin/flowplane/internal/model"
	"github.com/edvin/flowplane/internal/store"
)

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "issue-token" {
		issueToken(os.Args[2:])
		return
	}

	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("api"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	metrics.RegisterPgxPoolMetrics(prometheus.DefaultRegisterer, pool)

	eng := engine.NewClient(engine.Config{
		BaseURL:      cfg.EngineURL,
		APIKey:       cfg.EngineAPIKey,
		APIKeyHeader: cfg.EngineAPIKeyHeader,
		CallTimeout:  cfg.EngineCallTimeout,
		CloneTimeout: cfg.EngineCloneTimeout,
	}, logger)

	auditLogger := audit.NewLogger(store.NewAuditStore(pool), logger)

	var archiver core.Archiver
	if a := archive.NewS3Archiver(cfg, logger); a != nil {
		archiver = a
		logger.Info().Str("bucket", cfg.ArchiveS3Bucket).Msg("archiving retired workflows to S3")
	}

	services := core.NewServices(pool, eng, auditLogger, archiver, cfg.JWTSecret, cfg.JWTIssuer)
	srv := api.NewServer(logger, pool, services, cfg)

	// Provisioning waits on an engine clone, so writes get the clone timeout plus headroom.
	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.EngineCloneTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting flowplane API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	var metricsServer *http.Server
	if cfg.MetricsListenAddr != "" {
		metricsServer = metrics.NewServer(cfg.MetricsListenAddr, prometheus.DefaultGatherer)
		go func() {
			logger.Info().Str("addr", cfg.MetricsListenAddr).Msg("starting metrics server")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	// In-flight provisions may still be cloning; let them finish before the
	// audit logger closes.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg.EngineCloneTimeout))
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	if metricsServer != nil {
		metricsServer.Shutdown(shutdownCtx)
	}
	auditLogger.Close()
}

func shutdownTimeout(cloneTimeout time.Duration) time.Duration {
	return max(10*time.Second, cloneTimeout+5*time.Second)
}

func issueToken(args []string) {
	fs := flag.NewFlagSet("issue-token", flag.ExitOnError)
	userID := fs.String("user", "", "User ID for the token subject (required)")
	role := fs.String("role", model.RoleUser, "Role: global_admin, msp_admin, client_admin or user")
	tenantID := fs.String("tenant", "", "Tenant ID of the caller (required unless global_admin)")
	ttl := fs.Duration("ttl", 24*time.Hour, "Token lifetime")
	fs.Parse(args)

	if *userID == "" || (*tenantID == "" && *role != model.RoleGlobalAdmin) {
		fmt.Fprintln(os.Stderr, "error: --user is required, and --tenant unless --role global_admin")
		fmt.Fprintln(os.Stderr, "usage: flowplane-api issue-token --user <id> --role <role> --tenant <tenant-id>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if len(cfg.JWTSecret) < 32 {
		fmt.Fprintln(os.Stderr, "error: JWT_SECRET must be set to at least 32 bytes")
		os.Exit(1)
	}

	auth := core.NewAuthService(cfg.JWTSecret, cfg.JWTIssuer)
	token, err := auth.IssueToken(model.Caller{UserID: *userID, Role: *role, TenantID: *tenantID}, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
