package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/anoncampus/campusforum/internal/api"
	"github.com/anoncampus/campusforum/internal/config"
	"github.com/anoncampus/campusforum/internal/logger"
	"github.com/anoncampus/campusforum/internal/session"
	"github.com/anoncampus/campusforum/internal/tui"
)

var (
	logLevel   string
	logFile    string
	logConsole bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "forum",
	Short: "CampusForum - Anonymous campus discussion board",
	Long: `CampusForum is a terminal client for the anonymous campus discussion
board. Accounts are pseudonymous; posts carry only a username.

Run 'forum' without arguments to launch the interactive TUI.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config from file (or defaults if not exists)
		loaded, err := config.Load()
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			loaded = config.DefaultConfig()
		}
		cfg = loaded

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
			configChanged = true
		}

		// Save config if changed via CLI flags
		if configChanged {
			if err := cfg.Save(); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}

		logConfig := logger.Config{
			Level:      logger.ParseLevel(cfg.LogLevel),
			FilePath:   cfg.LogFile,
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxBackups: 5,
			Console:    cfg.LogConsole,
		}

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("CampusForum started", logger.F("command", cmd.Name()))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		client, mgr, err := newSession()
		if err != nil {
			logger.Error("Failed to set up session", logger.F("error", err))
			return err
		}

		logger.Info("Launching TUI")
		m := tui.NewModel(mgr, client, cfg.PostsURL)
		p := tea.NewProgram(m, tea.WithAltScreen())

		if _, err := p.Run(); err != nil {
			logger.Error("TUI error", logger.F("error", err))
			return fmt.Errorf("failed to run TUI: %w", err)
		}

		logger.Info("TUI exited normally")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("CampusForum exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

// newSession wires the API client, token store and session manager
// from the loaded config
func newSession() (*api.Client, *session.Manager, error) {
	client := api.NewClient(cfg.ServerURL, cfg.ClientID, cfg.RequestTimeout)
	store, err := session.NewDefaultStore()
	if err != nil {
		return nil, nil, err
	}
	return client, session.NewManager(client, store), nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	// Add subcommands
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(postsCmd)
}
