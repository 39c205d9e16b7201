// nlggen generates the CASE NLG validator module from a UCO/CASE ontology.
//
// Usage:
//
//	nlggen generate [ontology.ttl] [--out nlg.py] [--go-out nlg.go] [--verify]
//	nlggen plan snapshot.msgpack
//	nlggen manifest audit.db [--diff]
//	nlggen xsd [ontology.ttl] [--out types.xsd]
//	nlggen watch
//	nlggen version
//
// Settings are read from nlggen.yaml in the current or a parent directory,
// or from --config, and flags override them.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/casework/CASE-Utility-Verifier/config"
)

const version = "0.1.0"

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	logLevel   string
	logger     *slog.Logger
	stdout     io.Writer
	stderr     io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "nlggen",
		Short:         "Generate CASE NLG validator code from a UCO/CASE ontology",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
				return fmt.Errorf("invalid --log-level %q", a.logLevel)
			}
			a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
			return nil
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: nlggen.yaml in the current or a parent directory)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(
		newGenerateCmd(a),
		newPlanCmd(a),
		newManifestCmd(a),
		newXSDCmd(a),
		newWatchCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print the nlggen version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(a.stdout, "nlggen %s\n", version)
			},
		},
	)
	return root
}

// loadConfig loads the layered configuration. Callers merge their flags on
// top and then validate.
func (a *app) loadConfig() (*config.Config, error) {
	return config.NewLoader(a.logger).Load(a.configPath)
}
