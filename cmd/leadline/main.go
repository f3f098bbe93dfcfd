package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/FinalExpenseIQ/leadline/internal/api"
	"github.com/FinalExpenseIQ/leadline/internal/messaging"
	"github.com/FinalExpenseIQ/leadline/internal/store"
	"github.com/FinalExpenseIQ/leadline/internal/twiliosms"
	"github.com/FinalExpenseIQ/leadline/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for Leadline state data
	DefaultStateDir = "/var/lib/leadline"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "leads.db"
	// DefaultAPIAddr is the default API listen address
	DefaultAPIAddr = ":3001"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	st, err := buildStore(flags)
	if err != nil {
		slog.Error("Failed to initialize lead store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// One-time backfill: rewrite legacy phone encodings so steady-state
	// lookups stay strictly canonical.
	if migrated, err := st.CanonicalizePhoneNumbers(context.Background()); err != nil {
		slog.Error("Phone number backfill failed", "error", err)
		os.Exit(1)
	} else if migrated > 0 {
		slog.Info("Phone number backfill complete", "migrated", migrated)
	}

	msgService := buildMessagingService(flags)

	srv := api.NewServer(st, msgService, buildAPIOptions(flags)...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Bootstrapping Leadline", "addr", *flags.apiAddr, "mode", msgService.Mode())
	if err := srv.Run(ctx); err != nil {
		slog.Error("Leadline failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Leadline exited successfully")
}

// Config holds environment configuration
type Config struct {
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	DatabaseURL      string
	StateDir         string
	APIAddr          string
	AdminToken       string
	DemoMode         bool
}

// Flags holds command line flag values
type Flags struct {
	stateDir   *string
	dbDSN      *string
	apiAddr    *string
	adminToken *string
	demoMode   *bool

	twilioAccountSID string
	twilioAuthToken  string
	twilioFromNumber string
}

// initializeLogger sets up structured logging
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	config := Config{
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		StateDir:         os.Getenv("LEADLINE_STATE_DIR"),
		APIAddr:          os.Getenv("API_ADDR"),
		AdminToken:       os.Getenv("LEADLINE_ADMIN_TOKEN"),
		DemoMode:         util.BoolEnv("DEMO_MODE", false),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
	}
	if config.APIAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			config.APIAddr = ":" + port
		} else {
			config.APIAddr = DefaultAPIAddr
		}
	}
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"TWILIO_ACCOUNT_SID_SET", config.TwilioAccountSID != "",
		"TWILIO_AUTH_TOKEN_SET", config.TwilioAuthToken != "",
		"TWILIO_FROM_NUMBER_SET", config.TwilioFromNumber != "",
		"DATABASE_URL_SET", os.Getenv("DATABASE_URL") != "",
		"LEADLINE_STATE_DIR", config.StateDir,
		"API_ADDR", config.APIAddr,
		"ADMIN_TOKEN_SET", config.AdminToken != "",
		"DEMO_MODE", config.DemoMode)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:   flag.String("state-dir", config.StateDir, "state directory for Leadline data (overrides $LEADLINE_STATE_DIR)"),
		dbDSN:      flag.String("db-dsn", config.DatabaseURL, "database DSN for the lead store (overrides $DATABASE_URL)"),
		apiAddr:    flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR / $PORT)"),
		adminToken: flag.String("admin-token", config.AdminToken, "bearer token for /admin endpoints (overrides $LEADLINE_ADMIN_TOKEN)"),
		demoMode:   flag.Bool("demo", config.DemoMode, "force demo mode: log outbound SMS instead of sending (overrides $DEMO_MODE)"),

		twilioAccountSID: config.TwilioAccountSID,
		twilioAuthToken:  config.TwilioAuthToken,
		twilioFromNumber: config.TwilioFromNumber,
	}

	flag.Parse()

	// Keep the SQLite path in sync when only the state dir was overridden.
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
	}

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"apiAddr", *flags.apiAddr,
		"adminToken_set", *flags.adminToken != "",
		"demoMode", *flags.demoMode)

	return flags
}

// buildStore constructs the lead store from the DSN, picking the backend
// by connection string shape.
func buildStore(flags Flags) (store.Store, error) {
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring Postgres store")
		return store.NewPostgresStore(store.WithPostgresDSN(*flags.dbDSN))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.dbDSN)
	return store.NewSQLiteStore(store.WithSQLiteDSN(*flags.dbDSN))
}

// buildMessagingService wires the outbound channel. A missing or broken
// Twilio credential degrades to the demo (logging) service rather than
// failing startup; the active mode is reported via /health.
func buildMessagingService(flags Flags) messaging.Service {
	if *flags.demoMode {
		slog.Info("Demo mode requested; outbound SMS will be logged, not sent")
		return messaging.NewDemoService()
	}
	if flags.twilioAccountSID == "" || flags.twilioAuthToken == "" || flags.twilioFromNumber == "" {
		slog.Warn("Twilio credentials not configured; degrading to demo mode")
		return messaging.NewDemoService()
	}

	client, err := twiliosms.NewClient(
		twiliosms.WithAccountSID(flags.twilioAccountSID),
		twiliosms.WithAuthToken(flags.twilioAuthToken),
		twiliosms.WithFromNumber(flags.twilioFromNumber),
	)
	if err != nil {
		slog.Warn("Twilio client initialization failed; degrading to demo mode", "error", err)
		return messaging.NewDemoService()
	}

	slog.Info("Twilio client initialized successfully")
	return messaging.NewTwilioService(client)
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.adminToken != "" {
		apiOpts = append(apiOpts, api.WithAdminToken(*flags.adminToken))
	}
	return apiOpts
}
