// Package cli wires the calculators to cobra commands.
//
// Every tool command starts from a preset (or the tool's opening values),
// applies the flags that were set explicitly, and prints the result with its
// verdict. The serve command runs the dashboard API.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/TFMV/tenlab/config"
	"github.com/TFMV/tenlab/presets"
)

var validate = validator.New()

// app is the state shared by every command once flags are parsed
type app struct {
	configPath  string
	presetsPath string
	logFormat   string
	debug       bool
	jsonOut     bool

	cfg     config.Config
	logger  *slog.Logger
	presets *presets.Set
}

// NewRootCommand builds the tenlab command tree
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "tenlab",
		Short: "Ten equations for everyday decisions",
		Long: `tenlab runs ten small models of everyday decisions: Bayes, Kelly,
confidence intervals, Markov habits, PageRank trust, market frenzy,
correlation, epsilon-greedy exploration, gradient descent and if-then rules.

Examples:
  tenlab presets markov
  tenlab markov --preset 2 --seed 7
  tenlab rank --input team.csv --format svg --out team.svg
  tenlab descent --rate 0.3 --animate
  tenlab serve --addr :9090`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	f.StringVar(&a.presetsPath, "presets", "", "path to a YAML preset catalog (default: built in)")
	f.StringVar(&a.logFormat, "log-format", "", "log format: text or json")
	f.BoolVar(&a.debug, "debug", false, "enable debug logging")
	f.BoolVar(&a.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		a.toolsCmd(),
		a.presetsCmd(),
		a.bayesCmd(),
		a.kellyCmd(),
		a.confidenceCmd(),
		a.markovCmd(),
		a.rankCmd(),
		a.frenzyCmd(),
		a.correlationCmd(),
		a.banditCmd(),
		a.descentCmd(),
		a.rulesCmd(),
		a.serveCmd(),
	)
	return root
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	// SIGINT/SIGTERM cancel the command context so long runs still report
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		return 1
	}
	return 0
}

// setup loads the config and presets and builds the logger
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.Log.Level = "debug"
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.Log.NewLogger(cmd.ErrOrStderr())

	path := a.presetsPath
	if path == "" {
		path = cfg.Presets
	}
	if path == "" {
		a.presets, err = presets.Builtin()
	} else {
		a.presets, err = presets.LoadFile(path)
	}
	if err != nil {
		return fmt.Errorf("load presets: %w", err)
	}
	a.logger.Debug("ready", "config", a.configPath, "presets", path, "command", cmd.Name())
	return nil
}

// check validates a parameter record
func check(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

// override copies v into dst when the named flag was set on the command line
func override[T any](cmd *cobra.Command, name string, dst *T, v T) {
	if cmd.Flags().Changed(name) {
		*dst = v
	}
}

// writeFile stores a rendered chart and logs where it went
func (a *app) writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	a.logger.Info("wrote chart", "path", path, "bytes", len(data))
	return nil
}
