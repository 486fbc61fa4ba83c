// Command aiwriter serves the AI issue writer and drives drafts from a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"aiwriter/internal/config"
)

const Version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globals are the flags shared by every command.
type globals struct {
	configPath string
	logLevel   string
	dbPath     string
}

func rootCmd() *cobra.Command {
	g := &globals{}
	cmd := &cobra.Command{
		Use:           "aiwriter",
		Short:         "AI-assisted issue writer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "config file (default: aiwriter.yaml if present)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&g.dbPath, "db", "", "SQLite database path")

	cmd.AddCommand(serveCmd(g), writeCmd(g), keyCmd(g), configCmd())
	cmd.AddCommand(adminCmds(g)...)
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "aiwriter version %s\n", Version)
		},
	})
	return cmd
}

// load reads configuration and applies flag overrides.
func (g *globals) load() (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.dbPath != "" {
		cfg.DatabasePath = g.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// withApp starts an App for the duration of fn.
func (g *globals) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp(cfg, logger)
	if err := app.startup(ctx); err != nil {
		return err
	}
	defer app.shutdown(context.Background())
	return fn(ctx, app)
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default " + config.FileName,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
