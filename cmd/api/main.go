// @title        Manage breast screening API
// @version      1.0
// @description  Clinic, appointment and participant management for breast screening.
// @BasePath     /
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"manage-breast-screening/internal/adapters/auth/introspection"
	"manage-breast-screening/internal/adapters/auth/jwtverifier"
	"manage-breast-screening/internal/adapters/capabilities/roles"
	"manage-breast-screening/internal/adapters/storage/memory"
	pg "manage-breast-screening/internal/adapters/storage/postgres"
	"manage-breast-screening/internal/config"
	"manage-breast-screening/internal/domain/audit"
	"manage-breast-screening/internal/platform/logger"
	"manage-breast-screening/internal/ports/auth"
	"manage-breast-screening/internal/router"
	"manage-breast-screening/internal/seed"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "manage-breast-screening",
		Short:        "Breast screening clinic management API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *pg.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				fmt.Println("migrations complete")
				return nil
			})
		},
	})

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			return withMigrator(func(m *pg.Migrator) error {
				return m.Down(steps)
			})
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(downCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Set the schema version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version: %w", err)
			}
			return withMigrator(func(m *pg.Migrator) error {
				if err := m.Force(version); err != nil {
					return err
				}
				fmt.Printf("forced version to %d\n", version)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *pg.Migrator) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Printf("version %d (dirty=%t)\n", v, dirty)
				return nil
			})
		},
	})

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo clinics, participants and appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync(log)

			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required to seed")
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := runSeed(cmd.Context(), router.PostgresStorage(db), cfg, log)
			if err != nil {
				return err
			}
			for _, c := range res.Clinics {
				fmt.Printf("clinic %s %s\n", c.ID, c.StartsAt.In(cfg.Location()).Format(time.RFC3339))
			}

			if cfg.AuthMode == config.AuthModeJWT {
				user, _ := cmd.Flags().GetString("token-for")
				if user != "" {
					v, err := jwtverifier.New(cfg.AuthJWTSecret, cfg.AuthJWTIssuer)
					if err != nil {
						return err
					}
					tok, err := v.Sign(jwtverifier.Claims{
						Roles: []string{roles.RoleSuperuser},
						RegisteredClaims: jwt.RegisteredClaims{
							Subject:   user,
							ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
						},
					})
					if err != nil {
						return err
					}
					fmt.Printf("token for %s: %s\n", user, tok)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("token-for", "", "Also print a superuser demo token for this user id (AUTH_MODE=jwt)")
	return cmd
}

func setup() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func openDB(cfg *config.Config) (*sql.DB, error) {
	db, err := pg.Open(cfg.DatabaseURL, pg.PoolOptions{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

func withMigrator(fn func(m *pg.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	db, err := openDB(cfg)
	if err != nil {
		return err
	}

	m, err := pg.NewMigrator(db)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() { _ = m.Close() }()

	return fn(m)
}

func runSeed(ctx context.Context, st router.Storage, cfg *config.Config, log logger.Logger) (seed.Result, error) {
	opts := []audit.Option{audit.WithLocator(st.Locator)}
	if fields := cfg.ExcludedAuditFields(); len(fields) > 0 {
		opts = append(opts, audit.WithExcludedFields(fields...))
	}
	return seed.Run(ctx, seed.Repos{
		Tx:           st.Tx,
		Participants: st.Participants,
		Clinics:      st.Clinics,
		Appointments: st.Appointments,
	}, audit.NewFactory(st.Audit, opts...), seed.Options{
		Location:       cfg.Location(),
		SystemUpdateID: cfg.SeedSystemUpdateID,
		Log:            log,
	})
}

func buildVerifier(cfg *config.Config) (auth.AuthVerifier, error) {
	switch cfg.AuthMode {
	case config.AuthModeJWT:
		v, err := jwtverifier.New(cfg.AuthJWTSecret, cfg.AuthJWTIssuer)
		if err != nil {
			return nil, err
		}
		return v, nil
	case config.AuthModeIntrospection:
		v, err := introspection.New(introspection.Config{
			BaseURL: cfg.AuthIntrospectionURL,
			APIKey:  cfg.AuthIntrospectionAPIKey,
			Timeout: 5 * time.Second,
		})
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	// dev mode: debug headers
	return nil, nil
}

func runServer() error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync(log)

	verifier, err := buildVerifier(cfg)
	if err != nil {
		return fmt.Errorf("auth verifier: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := router.Options{
		AuthVerifier:        verifier,
		Log:                 log,
		Registry:            reg,
		Resolver:            roles.NewResolver(nil, cfg.AllowAllCapabilities),
		Location:            cfg.Location(),
		AuditExcludedFields: cfg.ExcludedAuditFields(),
	}

	if cfg.DatabaseURL != "" {
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		opts.DB = db
	} else {
		// in-memory store with demo data
		store := memory.NewStore()
		if _, err := runSeed(context.Background(), router.MemoryStorage(store), cfg, log); err != nil {
			return err
		}
		opts.Store = store
		log.Warn("DATABASE_URL not set, using in-memory store", nil)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "env": cfg.Env, "auth_mode": cfg.AuthMode})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server stopped", nil)
	return nil
}
