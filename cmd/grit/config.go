package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/grit/internal/validate"
)

// configKeys lists the settings grit reads from ~/.grit.yaml.
var configKeys = []string{"mode", "error_log", "backend", "db", "max_attempts", "verbose"}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage grit configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.grit.yaml.",
		Example: `  grit config                        # show all config
  grit config set mode fail-fast     # stop at the first bad value
  grit config get backend            # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigShow(cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigSet(cmd, args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigGet(cmd, args[0])
		},
	})

	return cmd
}

func (a *app) runConfigShow(cmd *cobra.Command) error {
	settings := make(map[string]any, len(configKeys))
	for _, k := range configKeys {
		if a.v.IsSet(k) {
			settings[k] = a.v.Get(k)
		}
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

// runConfigSet writes one key to the config file, leaving every other
// setting as the file had it.
func (a *app) runConfigSet(cmd *cobra.Command, key, value string) error {
	if !knownKey(key) {
		return &usageError{msg: fmt.Sprintf("unknown config key %q", key)}
	}
	parsed, err := parseConfigValue(key, value)
	if err != nil {
		return err
	}

	cfgFile := a.v.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".grit.yaml")
	}

	file := viper.New()
	file.SetConfigFile(cfgFile)
	if err := file.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	file.Set(key, parsed)

	if err := file.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v in %s\n", key, parsed, cfgFile)
	return nil
}

// parseConfigValue checks value against key and converts it to the type
// the key is read as.
func parseConfigValue(key, value string) (any, error) {
	switch key {
	case "mode":
		if _, err := validate.ParseMode(value); err != nil {
			return nil, &usageError{msg: err.Error()}
		}
	case "backend":
		if err := checkBackend(value); err != nil {
			return nil, err
		}
	case "max_attempts":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return nil, &usageError{msg: fmt.Sprintf("max_attempts must be a positive integer, got %q", value)}
		}
		return n, nil
	case "verbose":
		switch value {
		case "true", "yes", "on":
			return true, nil
		case "false", "no", "off":
			return false, nil
		}
		return nil, &usageError{msg: fmt.Sprintf("verbose must be true or false, got %q", value)}
	}
	return value, nil
}

func (a *app) runConfigGet(cmd *cobra.Command, key string) error {
	if !a.v.IsSet(key) {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.v.Get(key))
	return nil
}

func knownKey(key string) bool {
	for _, k := range configKeys {
		if k == key {
			return true
		}
	}
	return false
}
