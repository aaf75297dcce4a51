package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fitmatlabs/campus-arena/internal/httpapi"
	"github.com/fitmatlabs/campus-arena/internal/metrics"
	"github.com/fitmatlabs/campus-arena/internal/oplog"
	"github.com/fitmatlabs/campus-arena/internal/session"
	"github.com/fitmatlabs/campus-arena/internal/store/gormstore"
	"github.com/fitmatlabs/campus-arena/internal/tallycache"
	"github.com/fitmatlabs/campus-arena/pkg/campus"
	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	flagDatabaseURL      = "database-url"
	flagListenAddr       = "listen-addr"
	flagRedisAddr        = "redis-addr"
	flagSessionKey       = "session-signing-key"
	flagSessionIssuer    = "session-issuer"
	flagSessionCookie    = "session-cookie"
	flagSessionTTL       = "session-ttl"
	flagAllowedOrigins   = "allowed-origins"
	flagSecureCookies    = "secure-cookies"
	flagCampusDomain     = "campus-email-domain"
	flagStartingBalance  = "starting-balance"
	flagSkipSeed         = "skip-seed"
	flagTallyCacheTTL    = "tally-cache-ttl"
	defaultDatabaseURL   = "sqlite:///tmp/campus-arena.db"
	defaultListenAddr    = ":8080"
	defaultCampusDomain  = "fitmat.edu"
	defaultStartBalance  = 1000
	defaultSessionTTL    = 24 * time.Hour
	defaultTallyCacheTTL = 5 * time.Second
)

type runtimeConfig struct {
	DatabaseURL     string
	ListenAddr      string
	RedisAddr       string
	SessionKey      string
	SessionIssuer   string
	SessionCookie   string
	SessionTTL      time.Duration
	AllowedOrigins  string
	SecureCookies   bool
	CampusDomain    string
	StartingBalance int64
	SkipSeed        bool
	TallyCacheTTL   time.Duration
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "arenad: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &runtimeConfig{}
	cmd := &cobra.Command{
		Use:           "arenad",
		Short:         "Campus arena HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	cmd.Flags().String(flagDatabaseURL, defaultDatabaseURL, "database connection string (sqlite path or postgres URL)")
	cmd.Flags().String(flagListenAddr, defaultListenAddr, "HTTP listen address")
	cmd.Flags().String(flagRedisAddr, "", "redis address for the tally cache (empty disables caching)")
	cmd.Flags().String(flagSessionKey, "", "HMAC key for session tokens")
	cmd.Flags().String(flagSessionIssuer, "campus-arena", "issuer claim for session tokens")
	cmd.Flags().String(flagSessionCookie, "arena_session", "name of the session cookie")
	cmd.Flags().Duration(flagSessionTTL, defaultSessionTTL, "session token lifetime")
	cmd.Flags().String(flagAllowedOrigins, "", "comma-separated CORS origins")
	cmd.Flags().Bool(flagSecureCookies, false, "mark session cookies Secure")
	cmd.Flags().String(flagCampusDomain, defaultCampusDomain, "email domain required at signup")
	cmd.Flags().Int64(flagStartingBalance, defaultStartBalance, "token balance granted at signup")
	cmd.Flags().Bool(flagSkipSeed, false, "skip seeding demo fixtures on startup")
	cmd.Flags().Duration(flagTallyCacheTTL, defaultTallyCacheTTL, "time cached tallies stay fresh")

	return cmd
}

func loadConfig(cmd *cobra.Command, cfg *runtimeConfig) error {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	envBindings := map[string]string{
		flagDatabaseURL:     "DATABASE_URL",
		flagListenAddr:      "LISTEN_ADDR",
		flagRedisAddr:       "REDIS_ADDR",
		flagSessionKey:      "SESSION_SIGNING_KEY",
		flagSessionIssuer:   "SESSION_ISSUER",
		flagSessionCookie:   "SESSION_COOKIE",
		flagSessionTTL:      "SESSION_TTL",
		flagAllowedOrigins:  "ALLOWED_ORIGINS",
		flagSecureCookies:   "SECURE_COOKIES",
		flagCampusDomain:    "CAMPUS_EMAIL_DOMAIN",
		flagStartingBalance: "STARTING_BALANCE",
		flagSkipSeed:        "SKIP_SEED",
		flagTallyCacheTTL:   "TALLY_CACHE_TTL",
	}
	for flagName, envName := range envBindings {
		configKey := strings.ReplaceAll(flagName, "-", "_")
		if err := viper.BindEnv(configKey, envName); err != nil {
			return err
		}
		if err := viper.BindPFlag(configKey, cmd.Flags().Lookup(flagName)); err != nil {
			return err
		}
	}

	cfg.DatabaseURL = viper.GetString("database_url")
	cfg.ListenAddr = viper.GetString("listen_addr")
	cfg.RedisAddr = viper.GetString("redis_addr")
	cfg.SessionKey = viper.GetString("session_signing_key")
	cfg.SessionIssuer = viper.GetString("session_issuer")
	cfg.SessionCookie = viper.GetString("session_cookie")
	cfg.SessionTTL = viper.GetDuration("session_ttl")
	cfg.AllowedOrigins = viper.GetString("allowed_origins")
	cfg.SecureCookies = viper.GetBool("secure_cookies")
	cfg.CampusDomain = viper.GetString("campus_email_domain")
	cfg.StartingBalance = viper.GetInt64("starting_balance")
	cfg.SkipSeed = viper.GetBool("skip_seed")
	cfg.TallyCacheTTL = viper.GetDuration("tally_cache_ttl")

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	if cfg.SessionKey == "" {
		return fmt.Errorf("session signing key is required")
	}
	return nil
}

func runServer(ctx context.Context, cfg *runtimeConfig) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, cleanup, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database open: %w", err)
	}
	defer cleanup()

	store := gormstore.New(gormDB)
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if !cfg.SkipSeed {
		if err := store.Seed(ctx, time.Now().UTC()); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	registry := metrics.NewRegistry()
	operationLogger := campus.CombineOperationLoggers(
		oplog.NewZapLogger(logger),
		metrics.NewRecorder(registry),
	)

	clock := func() int64 { return time.Now().UTC().Unix() }
	identityService, err := campus.NewIdentityService(store, clock,
		campus.WithCampusEmailDomain(cfg.CampusDomain),
		campus.WithStartingBalance(cfg.StartingBalance),
		campus.WithIdentityOperationLogger(operationLogger),
	)
	if err != nil {
		return fmt.Errorf("identity service init: %w", err)
	}
	bettingService, err := campus.NewBettingService(store, clock,
		campus.WithBettingOperationLogger(operationLogger),
	)
	if err != nil {
		return fmt.Errorf("betting service init: %w", err)
	}
	votingService, err := campus.NewVotingService(store, clock,
		campus.WithVotingOperationLogger(operationLogger),
	)
	if err != nil {
		return fmt.Errorf("voting service init: %w", err)
	}

	sessions, err := session.New(session.Config{
		SigningKey: []byte(cfg.SessionKey),
		Issuer:     cfg.SessionIssuer,
		CookieName: cfg.SessionCookie,
		TTL:        cfg.SessionTTL,
	})
	if err != nil {
		return fmt.Errorf("session manager init: %w", err)
	}

	var tallies *tallycache.Cache
	if cfg.RedisAddr != "" {
		redisClient, redisErr := tallycache.Connect(ctx, cfg.RedisAddr)
		if redisErr != nil {
			return fmt.Errorf("redis connect: %w", redisErr)
		}
		defer func() { _ = redisClient.Close() }()
		tallies = tallycache.New(redisClient, cfg.TallyCacheTTL)
		logger.Info("tally cache enabled", zap.String("redis_addr", cfg.RedisAddr))
	}

	server, err := httpapi.New(httpapi.Config{
		ListenAddr:        cfg.ListenAddr,
		AllowedOrigins:    httpapi.ParseAllowedOrigins(cfg.AllowedOrigins),
		SessionSigningKey: cfg.SessionKey,
		SessionIssuer:     cfg.SessionIssuer,
		SessionCookieName: cfg.SessionCookie,
		SessionTTL:        cfg.SessionTTL,
		SecureCookies:     cfg.SecureCookies,
	}, httpapi.Dependencies{
		Logger:   logger,
		Identity: identityService,
		Betting:  bettingService,
		Voting:   votingService,
		Store:    store,
		Sessions: sessions,
		Tallies:  tallies,
		Metrics:  metrics.Handler(registry),
	})
	if err != nil {
		return fmt.Errorf("http server init: %w", err)
	}

	return server.Run(ctx)
}

func openDatabase(ctx context.Context, dsn string) (*gorm.DB, func() error, error) {
	driver, sqlitePath, err := resolveDriver(dsn)
	if err != nil {
		return nil, nil, err
	}

	var db *gorm.DB
	gormCfg := &gorm.Config{}
	switch driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(sqlitePath), gormCfg)
	default:
		return nil, nil, fmt.Errorf("unsupported database scheme %q", driver)
	}
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() error { return sqlDB.Close() }
	return db.WithContext(ctx), cleanup, nil
}

func resolveDriver(dsn string) (string, string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres", "", nil
	}
	if strings.HasPrefix(dsn, "sqlite://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", "", fmt.Errorf("parse sqlite url: %w", err)
		}
		path := u.Path
		if path == "" {
			path = u.Host
		}
		if path == "" || path == "/" {
			path = "campus-arena.db"
		}
		sqlitePath, err := normalizeSQLitePath(path)
		return "sqlite", sqlitePath, err
	}
	// Treat everything else as a direct sqlite path.
	sqlitePath, err := normalizeSQLitePath(dsn)
	return "sqlite", sqlitePath, err
}

func normalizeSQLitePath(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}
	if strings.HasPrefix(path, "/") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", err
		}
		return path, nil
	}
	abs := filepath.Join(".", path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}
	return abs, nil
}
