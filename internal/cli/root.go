// Package cli wires the cutset command tree. Library packages stay
// quiet; everything user-facing, logging and process exit included,
// lives here.
package cli

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/speechkit/cutset/pkg/logger"
)

var (
	cfgFile  string
	logLevel string
	rootDir  string

	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cutset",
	Short: "Manage lazy cut manifests over precomputed speech features",
	Long: `cutset assembles training examples for speech models without
touching the underlying feature matrices until the last moment. Cuts
reference windows of precomputed features; mixes reference other cuts
by id and materialize on demand. Manifests are plain YAML, so a corpus
can be sliced, mixed and shipped as text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root-dir", "", "directory feature storage paths are resolved against")
}

// initConfig resolves the persistent settings through viper so a
// config file or CUTSET_ environment variables can stand in for
// flags. Flags set explicitly still win.
func initConfig() error {
	viper.SetEnvPrefix("CUTSET")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
	}
	logLevel = viper.GetString("log-level")
	rootDir = viper.GetString("root-dir")
	log = logger.New(logLevel)
	return nil
}

// Execute runs the command tree once.
func Execute() error {
	return rootCmd.Execute()
}
