package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	readOnly   bool
	rootPath   string
	configPath string

	cfg Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tessera",
	Short: "Generate, list and clear QR-coded tickets",
	Long: `Tessera issues tickets with a random id and a free-form payload.
Each ticket is rendered as a QR code and stored on disk next to its metadata.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)

		resolved, err := ResolveConfig(configPath, cmd.Flags().Changed("root"), rootPath)
		if err != nil {
			return err
		}
		cfg = resolved
		slog.Debug("config resolved", "root", cfg.Root)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&readOnly, "read-only", false, "Open the store without write access")
	rootCmd.PersistentFlags().StringVar(&rootPath, "root", "", "Ticket directory (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/tessera/config.yaml)")
}
