package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/greyhatharold/QGit/internal/domain"
	"github.com/greyhatharold/QGit/internal/logging"
)

var (
	// cfg holds flag, environment and config file values for the running command.
	cfg    = viper.New()
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "qgit",
	Short: "Quick git workflows and a risky-file cleaner",
	Long: "qgit wraps common git workflows and, with 'benedict', finds secrets,\n" +
		"logs, caches and other files that should not be committed.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Log debug output to stderr")
	pf.String("log-level", "warn", "Log level (debug, info, warn, error)")
	pf.String("config", "", "Config file (default .qgit.toml in the working or home directory)")
	pf.String("rules", "", "Extra risk rules TOML merged after the built-in table")
	pf.String("ignore-file", "", "Ignore file to update (default <repo>/.gitignore)")
}

// setup loads configuration and builds the logger before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	v := viper.New()
	v.SetEnvPrefix("QGIT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var bindErr error
	bind := func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil && bindErr == nil {
			bindErr = err
		}
	}
	cmd.Flags().VisitAll(bind)
	cmd.InheritedFlags().VisitAll(bind)
	if bindErr != nil {
		return errors.Wrap(bindErr, "binding flags")
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(".qgit")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.WithHint(errors.Wrap(err, "reading config"),
				"check the file passed with --config or QGIT_CONFIG")
		}
	}

	cfg = v
	level := logging.ParseLevel(v.GetString("log-level"), v.GetBool("verbose"))
	stderr := cmd.ErrOrStderr()
	logger = logging.New(stderr, level, logging.ColorEnabled(stderr))
	logger.Debug("configuration loaded",
		zap.String("command", cmd.CommandPath()),
		zap.String("config", v.ConfigFileUsed()))
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return domain.ExitCode(err)
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if hint := errors.FlattenHints(err); hint != "" {
		for _, line := range strings.Split(hint, "\n") {
			fmt.Fprintf(w, "hint: %s\n", line)
		}
	}
}
