// Package cli wires the swarmdash command surface.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/swarmdash/internal/collect"
	"github.com/Dicklesworthstone/swarmdash/internal/config"
	"github.com/Dicklesworthstone/swarmdash/internal/output"
	"github.com/Dicklesworthstone/swarmdash/internal/tui/dashboard"
)

var (
	cfgFile    string
	swarmDir   string
	jsonOutput bool
	liveMode   bool
	refreshSec int
	feedTab    int

	// Build information - set via ldflags
	Version = "dev"
	Commit  = "none"
)

// oneShotTimeout bounds the single collection pass; the gh probe dominates.
const oneShotTimeout = 15 * time.Second

var rootCmd = &cobra.Command{
	Use:   "swarmdash",
	Short: "Read-only dashboard over a multi-agent swarm",
	Long: `swarmdash reconciles the on-disk state of an agent swarm (state files,
kanban board, inbox, outbox, logs) with live tmux sessions and renders one
coherent picture of what the swarm is doing right now.

It only ever observes: no file it reads is written, no session is signaled.

Examples:
  swarmdash                 # one-shot snapshot at terminal size
  swarmdash --live          # full-screen live dashboard
  swarmdash --json | jq .   # machine-readable snapshot
  swarmdash --live --tab 3  # start on the third agent feed`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		collector := collect.New(cfg)

		if liveMode && !jsonOutput {
			interval := time.Duration(cfg.RefreshSeconds) * time.Second
			return dashboard.Run(collector, interval, cfg.PanelEnabled)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), oneShotTimeout)
		defer cancel()
		snap := collector.All(ctx, feedTab)

		format := output.DetectFormat(jsonOutput)
		f := output.New(output.WithJSON(format == output.FormatJSON), output.WithWriter(cmd.OutOrStdout()))
		if f.IsJSON() {
			return f.JSON(snap)
		}

		width, height := terminalSize()
		fmt.Fprintln(cmd.OutOrStdout(), dashboard.RenderOnce(snap, width, height, cfg.PanelEnabled))
		return nil
	},
}

// loadConfig merges the config file with command-line overrides. Flags win
// over the file, the file wins over defaults.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if swarmDir != "" {
		cfg.Dir = swarmDir
	}
	if refreshSec > 0 {
		cfg.RefreshSeconds = refreshSec
	}
	return cfg, nil
}

// terminalSize returns the stdout dimensions, with a sane fallback when
// output is not a terminal.
func terminalSize() (width, height int) {
	width, height = 120, 65
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width, height = w, h
	}
	return width, height
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			_ = output.New(output.WithJSON(true), output.WithWriter(cmd.OutOrStdout())).
				JSON(map[string]string{"version": Version, "commit": Commit})
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "swarmdash %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/swarmdash/config.toml)")
	rootCmd.PersistentFlags().StringVar(&swarmDir, "dir", "", "swarm directory (default /var/swarm or $SWARMDASH_DIR)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (machine-readable)")

	rootCmd.Flags().BoolVarP(&liveMode, "live", "l", false, "Run the full-screen live dashboard")
	rootCmd.Flags().IntVar(&refreshSec, "refresh", 0, "Live refresh interval in seconds (overrides config)")
	rootCmd.Flags().IntVar(&feedTab, "tab", 1, "Agent feed tab to show (1 = orchestrator)")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		if !jsonOutput {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return err
	}
	return nil
}
