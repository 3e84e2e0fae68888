// main.go
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

	"github.com/ariebrainware/nutritrack/config"
	"github.com/ariebrainware/nutritrack/endpoint"
	"github.com/ariebrainware/nutritrack/feed"
	"github.com/ariebrainware/nutritrack/jobs"
	"github.com/ariebrainware/nutritrack/middleware"
	"github.com/ariebrainware/nutritrack/model"
	"github.com/ariebrainware/nutritrack/session"
	"github.com/ariebrainware/nutritrack/util"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nutritrack",
		Short: "Patient tracker for nutrition clinics",
	}
	rootCmd.AddCommand(serveCmd(), migrateCmd(), purgeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the config, configures logging and opens the database and the
// optional redis client.
func setup() (*config.Config, *gorm.DB, *redis.Client, error) {
	cfg := config.LoadConfig()
	util.NewLogger(cfg.AppEnv, cfg.LogLevel)

	db, err := config.ConnectDatabase()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := model.Migrate(db); err != nil {
		return nil, nil, nil, err
	}

	rdb, err := config.ConnectRedis()
	if err != nil {
		// Sessions and rate limits fall back to the database and memory.
		log.Warn().Err(err).Msg("redis unavailable, continuing without it")
		rdb = nil
	}
	return cfg, db, rdb, nil
}

func newProvider(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *session.Provider {
	return session.NewProvider(db, rdb, cfg.JWTSecret, cfg.SessionTTL)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, db, rdb, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := feed.NewHub()
	if rdb != nil {
		relay := feed.NewRedisRelay(rdb, hub)
		hub.SetRelay(relay)
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("feed relay stopped")
			}
		}()
	}

	util.SetSecurityLoggerDB(db)
	if cfg.GeoIPDBPath != "" {
		if err := util.InitGeoIP(cfg.GeoIPDBPath); err != nil {
			log.Warn().Err(err).Msg("geoip disabled")
		}
		defer util.CloseGeoIP()
	}

	loc := cfg.Location()
	provider := newProvider(cfg, db, rdb)
	scheduler, err := jobs.StartSessionPurger(provider, cfg.PurgeInterval, loc)
	if err != nil {
		return err
	}
	defer scheduler.Stop()

	gin.SetMode(cfg.GinMode)
	router := gin.New()

	api := endpoint.New(db, hub, provider)
	api.Location = loc
	api.DefaultLocale = cfg.DefaultLocale
	api.CORSOrigins = cfg.CORSOrigins
	api.LoginLimit = middleware.RateLimitConfig{Limit: cfg.RateLimit, Window: cfg.RateWindow, Redis: rdb}
	api.Register(router)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", cfg.AppName),
		})
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.AppEnv).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func migrateCmd() *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and optionally create a clinician account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, rdb, err := setup()
			if err != nil {
				return err
			}
			log.Info().Str("driver", cfg.DBDriver).Msg("schema up to date")
			if email == "" {
				return nil
			}
			u, err := newProvider(cfg, db, rdb).SignUp(cmd.Context(), email, password, name)
			if err != nil {
				return fmt.Errorf("seed clinician: %w", err)
			}
			log.Info().Str("uid", u.UID).Str("email", u.Email).Msg("clinician created")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "seed-email", "", "create a clinician with this email")
	cmd.Flags().StringVar(&password, "seed-password", "", "password for the seeded clinician")
	cmd.Flags().StringVar(&name, "seed-name", "", "display name for the seeded clinician")
	return cmd
}

func purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-sessions",
		Short: "Delete expired sessions once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, rdb, err := setup()
			if err != nil {
				return err
			}
			n, err := jobs.PurgeOnce(cmd.Context(), newProvider(cfg, db, rdb))
			if err != nil {
				return err
			}
			fmt.Printf("%d expired sessions deleted\n", n)
			return nil
		},
	}
}
