package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/httpintercept/internal/cliconfig"
	"github.com/getmockd/httpintercept/pkg/logging"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// errSilent reports failure through the exit code after a command has
// already described the problem on its output.
var errSilent = errors.New("command failed")

// app carries the state shared by every command.
type app struct {
	cfg    *cliconfig.Config
	log    *slog.Logger
	stdout io.Writer
	stderr io.Writer

	// logFile is the open --log-file, closed when the command returns.
	logFile *os.File
}

// NewRootCommand returns the httpintercept command tree writing to stdout
// and stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	root, _ := newRoot(stdout, stderr)
	return root
}

func newRoot(stdout, stderr io.Writer) (*cobra.Command, *app) {
	a := &app{
		cfg:    cliconfig.Load(),
		log:    logging.Nop(),
		stdout: stdout,
		stderr: stderr,
	}

	root := &cobra.Command{
		Use:   "httpintercept",
		Short: "Validate and exercise HTTP interception bundles",
		Long: `httpintercept works with the JSON and YAML bundles used to register
HTTP interceptions in tests.

It can validate bundles, list the registrations they produce and run a
request through them without touching the network.`,
		SilenceUsage:  true,
		SilenceErrors: true, // We handle errors in Execute()
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel,
		"Log level: debug, info, warn, error (env "+cliconfig.EnvLogLevel+")")
	root.PersistentFlags().StringVar(&a.cfg.LogFormat, "log-format", a.cfg.LogFormat,
		"Log format: text or json (env "+cliconfig.EnvLogFormat+")")
	root.PersistentFlags().StringVar(&a.cfg.LogFile, "log-file", a.cfg.LogFile,
		"Also append JSON logs to this file (env "+cliconfig.EnvLogFile+")")
	root.PersistentFlags().BoolVarP(&a.cfg.Verbose, "verbose", "v", a.cfg.Verbose,
		"Show detailed output (env "+cliconfig.EnvVerbose+")")

	root.AddCommand(
		newValidateCommand(a),
		newListCommand(a),
		newMatchCommand(a),
		newVersionCommand(a),
	)
	return root, a
}

func (a *app) setup(cmd *cobra.Command) error {
	for flag, name := range map[string]string{
		"log-level":  "logLevel",
		"log-format": "logFormat",
		"log-file":   "logFile",
		"verbose":    "verbose",
	} {
		if cmd.Flags().Changed(flag) {
			a.cfg.MarkFlag(name)
		}
	}

	level, err := logging.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(a.cfg.LogFormat)
	if err != nil {
		return err
	}

	var file slog.Handler
	if a.cfg.LogFile != "" {
		f, err := os.OpenFile(a.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		a.logFile = f
		file = logging.NewHandler(logging.Config{Level: level, Format: logging.FormatJSON, Output: f})
	}

	a.log = logging.New(logging.Config{Level: level, Format: format, Output: a.stderr}, file).
		With("command", cmd.Name())
	return nil
}

func (a *app) close() {
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}

// bundleArgs returns the bundle patterns from args, falling back to the
// configured defaults.
func (a *app) bundleArgs(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(a.cfg.Bundles) > 0 {
		return a.cfg.Bundles, nil
	}
	return nil, fmt.Errorf("no bundles given: pass paths or globs, or set %s", cliconfig.EnvBundles)
}

// Execute runs the CLI with os.Args and returns the process exit code.
func Execute() int {
	return Run(os.Args[1:], os.Stdout, os.Stderr)
}

// Run runs the CLI with args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root, a := newRoot(stdout, stderr)
	defer a.close()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
	return 0
}
