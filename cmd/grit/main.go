// Package main provides the grit command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/grit/internal/shell"
	"github.com/inodb/grit/internal/validate"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const description = "Parses genetic annotation data and allows querying with command line arguments. Requires file (-f /path/to/file)"

// usageError marks failures caused by how the command was invoked.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// app holds state shared by the root command and its subcommands.
type app struct {
	v       *viper.Viper
	logger  *zap.Logger
	cfgFile string
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(errOut, "Run 'grit --help' for usage.\n")
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	a := &app{
		v:      viper.New(),
		logger: zap.NewNop(),
	}

	cmd := &cobra.Command{
		Use:   "grit",
		Short: "Validate and query genomic annotation files",
		Long: description + `

The input is a tab-separated file without a header and exactly five columns:
chromosome (chr1-chr22), start_pos, end_pos, feature_name and strand (+/-).
After validation an interactive shell answers position and feature queries
and reports summary statistics.`,
		Example: `  grit -f annotations.tsv
  grit -f annotations.tsv --mode fail-fast
  grit -f annotations.tsv.gz --backend duckdb`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initConfig(); err != nil {
				return err
			}
			return a.initLogger(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(cmd)
		},
	}
	cmd.SetVersionTemplate("grit version {{.Version}}\n")

	flags := cmd.Flags()
	flags.StringP("file", "f", "", "path to file")
	flags.String("mode", "collect-all", "Validation mode: fail-fast or collect-all")
	flags.String("error-log", validate.DefaultErrorLogPath, "Error log file for collect-all mode (empty to disable)")
	flags.String("backend", "memory", "Query backend: memory or duckdb")
	flags.String("db", "", "DuckDB database file for the duckdb backend (default: in-memory)")
	flags.Int("max-attempts", shell.DefaultMaxAttempts, "Invalid answers allowed per prompt before returning to the menu")

	pflags := cmd.PersistentFlags()
	pflags.StringVar(&a.cfgFile, "config", "", "Config file (default: ~/.grit.yaml)")
	pflags.BoolP("verbose", "v", false, "Enable debug logging")

	for key, name := range map[string]string{
		"file":         "file",
		"mode":         "mode",
		"error_log":    "error-log",
		"backend":      "backend",
		"db":           "db",
		"max_attempts": "max-attempts",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}
	_ = a.v.BindPFlag("verbose", pflags.Lookup("verbose"))

	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

// initConfig reads ~/.grit.yaml (or --config) and GRIT_* environment variables.
func (a *app) initConfig() error {
	a.v.SetDefault("mode", "collect-all")
	a.v.SetDefault("error_log", validate.DefaultErrorLogPath)
	a.v.SetDefault("backend", "memory")
	a.v.SetDefault("max_attempts", shell.DefaultMaxAttempts)

	a.v.SetEnvPrefix("GRIT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		a.v.SetConfigFile(filepath.Join(home, ".grit.yaml"))
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			if a.cfgFile != "" {
				return &usageError{msg: fmt.Sprintf("config file %s does not exist", a.cfgFile)}
			}
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// initLogger builds a JSON logger on w at warn level, or debug with --verbose.
// Every entry carries the run identifier.
func (a *app) initLogger(w io.Writer) error {
	level := zapcore.WarnLevel
	if a.v.GetBool("verbose") {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), level)

	a.logger = zap.New(core).With(zap.String("run_id", uuid.New().String()))
	return nil
}
