package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vk/experimentor/internal/app"
	"github.com/vk/experimentor/internal/cmdexecutor"
	"github.com/vk/experimentor/internal/httpexecutor"
	"github.com/vk/experimentor/internal/runner"
)

// EnvPrefix prefixes environment variables that override flags, e.g.
// EXPERIMENTOR_MAX_TRIAL=5.
const EnvPrefix = "EXPERIMENTOR"

// Version is set at build time.
var Version = "dev"

// RootCmd is the root Cobra command. All sub-commands are registered here.
func RootCmd(outW, errW io.Writer, opts ...app.Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experimentor",
		Short: "experimentor runs a command once for every combination of a parameter grid.",
		Long: `experimentor expands a grid of named parameter sets into every combination,
runs a script (or calls an HTTP endpoint) once per combination, retries
failures and keeps one log file per attempt under <log-dir>/<title>/.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageError(fmt.Errorf("%w\nRun '%s --help' for usage.", err, c.CommandPath()))
	})

	cmd.AddCommand(
		runCmd(errW, opts...),
		listCmd(outW),
		latestCmd(outW),
		versionCmd(outW),
	)
	return cmd
}

// newViper binds the command's flags to a fresh viper instance with
// environment overrides.
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	return v, nil
}

func runCmd(logW io.Writer, opts ...app.Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every combination of a grid",
		Example: `  experimentor run --config-file grid.json --script "python train.py"
  experimentor run --config-file grid.hcl --endpoint http://localhost:8080/run --skip-existing`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadRunConfig(cmd.Flags())
			if err != nil {
				return usageError(err)
			}

			a, err := app.NewApp(logW, cfg, opts...)
			if err != nil {
				return usageError(err)
			}
			return exitError(a.Run(cmd.Context()))
		},
	}

	f := cmd.Flags()
	f.StringP("config-file", "c", "", "Grid file (.json, .yaml, .yml or .hcl)")
	f.String("script", "", "Command run for each experiment, with the rendered options appended")
	f.Bool("direct", false, "Run the script without a shell")
	f.String("shell", cmdexecutor.DefaultShell, "Shell used to run the script")
	f.String("endpoint", "", "URL each experiment is POSTed to instead of running a script")
	f.Duration("request-timeout", httpexecutor.DefaultTimeout, "Timeout of one request to the endpoint")
	f.Bool("no-log", false, "Do not write log files")
	f.String("log-dir", app.DefaultLogDir, "Directory holding one sub-directory of log files per experiment")
	f.Int("max-trial", runner.DefaultMaxTrials, "Maximum number of trials per experiment")
	f.Bool("skip-existing", false, "Skip experiments that already have a log file")
	f.Bool("disable-lock", false, "Do not lock the log directory")
	f.Duration("retry-delay", 0, "Pause between trials of one experiment")
	f.Bool("dry-run", false, "Print the command of every experiment without running anything")
	f.String("log-level", "info", "Logging level: debug, info, warn or error")
	f.String("log-format", "text", "Log output format: text or json")
	f.Int("metrics-port", 0, "Port serving /health and /metrics during the run, 0 disables")
	f.String("progress-socket", "", "socket.io server URL receiving progress events")
	f.String("progress-namespace", "/", "socket.io namespace for progress events")
	f.String("settings", "", "Settings file (yaml, toml or json) with defaults for these flags")

	cmd.MarkFlagsMutuallyExclusive("no-log", "log-dir")
	cmd.MarkFlagsMutuallyExclusive("script", "endpoint")
	return cmd
}

// loadRunConfig merges flags, EXPERIMENTOR_* variables and the optional
// settings file, in that order of precedence, and validates the result.
func loadRunConfig(flags *pflag.FlagSet) (*app.Config, error) {
	v, err := newViper(flags)
	if err != nil {
		return nil, err
	}
	if path := v.GetString("settings"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	var cfg app.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return app.NewConfig(cfg)
}

func listCmd(outW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the title of every combination of a grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := newViper(cmd.Flags())
			if err != nil {
				return usageError(err)
			}
			path := v.GetString("config-file")
			if path == "" {
				return usageError(fmt.Errorf("config-file is required"))
			}
			if err := app.ListTitles(cmd.Context(), outW, path); err != nil {
				return usageError(err)
			}
			return nil
		},
	}
	cmd.Flags().StringP("config-file", "c", "", "Grid file (.json, .yaml, .yml or .hcl)")
	return cmd
}

func latestCmd(outW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "latest TITLE",
		Short: "Print the most recent log file of an experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd.Flags())
			if err != nil {
				return usageError(err)
			}
			return exitError(app.ShowLatest(outW, v.GetString("log-dir"), args[0], v.GetBool("cat")))
		},
	}
	cmd.Flags().String("log-dir", app.DefaultLogDir, "Log directory of the batch")
	cmd.Flags().Bool("cat", false, "Print the content of the log file instead of its path")
	return cmd
}

func versionCmd(outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(outW, "experimentor %s\n", Version)
		},
	}
}
