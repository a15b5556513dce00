package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/saltyorg/microblog/internal/config"
	"github.com/saltyorg/microblog/internal/database"
	"github.com/saltyorg/microblog/internal/logging"
	"github.com/saltyorg/microblog/internal/maintenance"
	"github.com/saltyorg/microblog/internal/web"
	"github.com/saltyorg/microblog/internal/web/flash"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI flags
var (
	port        int
	bind        string
	allowSubnet string
	dbPath      string
	verbosity   int
	vacuum      bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "microblog",
		Short:         "Microblog - a tiny blog server",
		Long:          `Microblog serves a single-user blog backed by a SQLite database file.`,
		RunE:          runServer,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", config.DefaultDatabasePath, "SQLite database path (or set DB_PATH env var)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")

	rootCmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "HTTP server port (or set PORT env var)")
	rootCmd.Flags().StringVarP(&bind, "bind", "b", "", "IP address to bind to (e.g., 127.0.0.1, 0.0.0.0)")
	rootCmd.Flags().StringVarP(&allowSubnet, "allow-subnet", "a", "", "CIDR subnet allowed to connect (e.g., 192.168.1.0/24)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "initdb",
		Short: "Create the database tables (destroys existing entries)",
		RunE:  runInitDB,
	})

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "Run database maintenance once",
		RunE:  runOptimize,
	}
	optimizeCmd.Flags().BoolVar(&vacuum, "vacuum", false, "Also VACUUM the database file")
	rootCmd.AddCommand(optimizeCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("microblog %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})

	return rootCmd
}

// loadConfig builds the configuration from defaults, settings file,
// environment and finally any flags set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DatabasePath = dbPath
	}
	if flags.Changed("port") {
		cfg.Port = port
	}
	if flags.Changed("bind") {
		cfg.Bind = bind
	}
	if flags.Changed("allow-subnet") {
		cfg.AllowSubnet = allowSubnet
	}
	cfg.Log.Level = logging.LevelForVerbosity(verbosity, cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Apply(cfg.Log, cfg.DatabasePath)
	return cfg, nil
}

func runInitDB(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	conn, err := database.NewConnector(cfg.DatabasePath).Open(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.InitSchema(ctx); err != nil {
		return err
	}

	fmt.Println("Initialized the database.")
	return nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := maintenance.RunOnce(cmd.Context(), database.NewConnector(cfg.DatabasePath), vacuum); err != nil {
		return err
	}
	log.Info().Bool("vacuum", vacuum).Msg("Database maintenance complete")
	return nil
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Warn if binding to all interfaces without an allow list
	if (cfg.Bind == "" || cfg.Bind == "0.0.0.0" || cfg.Bind == "::") && cfg.AllowSubnet == "" {
		log.Warn().Msg("Server is accessible from all interfaces without subnet restrictions. Consider using --bind or --allow-subnet for security.")
	}
	if cfg.SecretKey == config.DefaultSecretKey {
		log.Warn().Msg("Using the development secret key. Set SECRET_KEY for anything but local use.")
	}

	log.Info().
		Str("version", version).
		Int("port", cfg.Port).
		Str("bind", cfg.Bind).
		Str("allow_subnet", cfg.AllowSubnet).
		Str("database", cfg.DatabasePath).
		Msg("Starting Microblog")

	connector := database.NewConnector(cfg.DatabasePath)

	signer, err := flash.NewSigner(cfg.SecretKey)
	if err != nil {
		return err
	}

	server, err := web.NewServer(cfg, connector, signer)
	if err != nil {
		return err
	}

	if cfg.MaintenanceSchedule != "" {
		scheduler, err := maintenance.New(connector, cfg.MaintenanceSchedule)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info().Msg("Microblog stopped")
	return nil
}
