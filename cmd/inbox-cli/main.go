package main

import (
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/zap"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pulseinbox/inbox-cli/internal/api"
	"github.com/pulseinbox/inbox-cli/internal/authflow"
	"github.com/pulseinbox/inbox-cli/internal/callback"
	"github.com/pulseinbox/inbox-cli/internal/config"
	"github.com/pulseinbox/inbox-cli/internal/inbox"
	"github.com/pulseinbox/inbox-cli/internal/logger"
	"github.com/pulseinbox/inbox-cli/internal/session"
	"github.com/pulseinbox/inbox-cli/internal/tui"
)

func main() {
	Execute()
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "inbox-cli",
	Short: "A terminal client for the unified inbox",
	Long: `inbox-cli is a terminal client for the unified inbox backend.
It signs you in, walks you through phone-number verification, and lets you
read and answer conversations without leaving the terminal.`,
	Run: runTUI,
}

// configInitCmd writes a starter config file.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("path")
		if path == "" {
			dir, err := os.UserConfigDir()
			if err != nil {
				pterm.Error.Println(err)
				os.Exit(1)
			}
			path = filepath.Join(dir, "inbox-cli", "config.yaml")
		}
		if err := config.WriteScaffold(path); err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
		pterm.Info.Printfln("Wrote %s", path)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the inbox-cli config file",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Place version check in PreRun to ensure flags are parsed first
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags()
	rootCmd.PersistentFlags().AddFlagSet(pflag.CommandLine)
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")
	configInitCmd.Flags().String("path", "", "Where to write the config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// runTUI wires the collaborators and runs the terminal client.
func runTUI(cmd *cobra.Command, args []string) {
	defer func() {
		if r := recover(); r != nil {
			pterm.Error.Printf("\nCaught panic: %v\n", r)
			pterm.Error.Printf("%s\n", debug.Stack())
			os.Exit(2)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so console logging stays off unless the
	// config routes it to a file.
	if err := logger.InitLogger(&cfg.Logging); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	deps := tui.Deps{Config: cfg}
	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg),
		fx.Provide(
			func(c *config.Config) *config.APIConfig { return &c.API },
			func(c *config.Config) *config.AuthConfig { return &c.Auth },
		),
		api.Module,
		session.Module,
		authflow.Module,
		inbox.Module,
		callback.Module,
		fx.Populate(&deps.Store, &deps.Resolver, &deps.Gate, &deps.OTP, &deps.Inbox, &deps.API, &deps.Callback),
	)
	if err := app.Err(); err != nil {
		pterm.Error.Printf("Error wiring application: %v\n", err)
		os.Exit(1)
	}

	deps.Store.Subscribe(func(snap session.Snapshot) {
		logger.Debug("session changed",
			zap.Bool("loading", snap.Loading),
			zap.Bool("authenticated", snap.Authenticated))
	})

	p := tea.NewProgram(tui.NewAppModel(deps), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		pterm.Error.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
