package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"conditions-backend/internal/config"
	"conditions-backend/internal/database"
	"conditions-backend/internal/identity"
	"conditions-backend/internal/logger"
	"conditions-backend/internal/metrics"
	"conditions-backend/internal/notify"
	"conditions-backend/internal/repository"
	"conditions-backend/internal/server"
	"conditions-backend/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	os.Exit(serve(cfg, log, run))
}

type runFunc func(ctx context.Context, cfg *config.Config, log *zap.Logger) error

// serve runs fn until it returns or a termination signal arrives and
// returns the process exit code. Deferred cleanup runs before main exits.
func serve(cfg *config.Config, log *zap.Logger, fn runFunc) int {
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fn(ctx, cfg, log); err != nil {
		log.Error("server failed", zap.Error(err))
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	// Connect to MongoDB
	db, err := database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer func() {
		if err := database.Disconnect(context.Background(), db); err != nil {
			log.Warn("mongo disconnect failed", zap.Error(err))
		}
	}()
	log.Info("connected to MongoDB", zap.String("db", cfg.Mongo.DBName))

	profileRepo := repository.NewProfileRepo(db)

	provider, err := newProvider(ctx, cfg, db, log)
	if err != nil {
		return err
	}

	// Ensure indexes
	idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := profileRepo.EnsureIndexes(idxCtx); err != nil {
		log.Warn("failed to create profile indexes", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	var notifier notify.Notifier = notify.NewLogNotifier(log)
	if cfg.Mail.ResendAPIKey != "" {
		notifier = notify.NewResendNotifier(cfg.Mail.ResendAPIKey, cfg.Mail.From, log)
	} else {
		log.Warn("RESEND_API_KEY not set, welcome mails will only be logged")
	}

	accounts := service.NewAccountService(provider, profileRepo, notifier, collector, log)

	deps := server.Deps{
		Accounts:    accounts,
		Logger:      log,
		Metrics:     collector,
		CORSOrigins: cfg.CORSOrigins,
	}
	if cfg.MetricsEnabled {
		deps.MetricsHandler = metrics.Handler(reg)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(deps),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("identity", cfg.Identity.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	return shutdown(shutdownCtx, srv, accounts)
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

type waiter interface {
	Wait()
}

// shutdown stops accepting requests and then waits for background work
// started by handled requests, even when the server did not stop cleanly.
func shutdown(ctx context.Context, srv shutdowner, background waiter) error {
	err := srv.Shutdown(ctx)
	background.Wait()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newProvider(ctx context.Context, cfg *config.Config, db *mongo.Database, log *zap.Logger) (identity.Provider, error) {
	switch cfg.Identity.Backend {
	case config.BackendLocal:
		accountRepo := repository.NewAccountRepo(db)
		idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := accountRepo.EnsureIndexes(idxCtx); err != nil {
			log.Warn("failed to create account indexes", zap.Error(err))
		}
		log.Warn("using local identity backend, not for production")
		return identity.NewLocal(accountRepo), nil
	default:
		client, err := identity.NewFirebaseAuthClient(ctx, cfg.Identity.ServiceAccount)
		if err != nil {
			return nil, err
		}
		return identity.NewFirebase(client), nil
	}
}
