package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mycodash/internal/device"
	"mycodash/internal/handlers"
	"mycodash/internal/logger"
	"mycodash/internal/remote"
	"mycodash/internal/repository"
	"mycodash/internal/repository/db"
	"mycodash/internal/server"
	"mycodash/internal/service"

	"github.com/rs/cors"
	"github.com/spf13/viper"
)

const (
	defaultPollTick  = 5 * time.Second
	defaultSweepTick = 1 * time.Second
)

func main() {
	// load config.yml first so the log level applies
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log_level"))

	// open local sqlite store
	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	repos := repository.NewRepository(sqlDB)

	// remote profile store is optional: without it the profile engine
	// runs local-only
	remoteStore := openRemote(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dev, err := device.NewClient(ctx, repos.Config, repos.Cache, log.Named("device"))
	if err != nil {
		log.Fatalw("failed to init device client", "err", err)
	}

	services := service.NewService(service.Deps{
		Device: dev,
		Repos:  repos,
		Remote: remoteStore,
		Log:    log,
		Auth: service.AuthConfig{
			SigningKey: viper.GetString("auth.signing_key"),
			TokenTTL:   viper.GetDuration("auth.token_ttl"),
		},
	})
	apiHandler := handlers.NewHandler(services, log)

	// background pollers
	go services.Monitor.Run(ctx, pollTick())
	go services.Overrides.Run(ctx, defaultSweepTick)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), withCORS(apiHandler), log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "mycodash.db")
		dbPath = "mycodash.db"
	}
	return db.InitDB(dbPath)
}

// openRemote connects to the cloud profile store when a DSN is configured.
// Failures degrade to local-only mode instead of aborting startup.
func openRemote(log *logger.Logger) remote.Store {
	dsn := viper.GetString("remote.dsn")
	if dsn == "" {
		log.Infow("remote.dsn not set; profiles run local-only")
		return nil
	}
	store, err := remote.New(dsn, log.Named("remote"))
	if err != nil {
		log.Warnw("remote store unavailable; profiles run local-only", "err", err)
		return nil
	}
	return store
}

func pollTick() time.Duration {
	if d := viper.GetDuration("poll.interval"); d > 0 {
		return d
	}
	return defaultPollTick
}

// withCORS wraps the router so the dashboard can call the API from a browser.
func withCORS(h *handlers.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   viper.GetStringSlice("cors.allowed_origins"),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(h.InitRoutes())
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler http.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler); err != nil && err != http.ErrServerClosed {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
