package cmd

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/metrico/dvgrouper/config"
	"github.com/metrico/dvgrouper/logger"
)

// flagKeys maps command flags onto configuration keys.
var flagKeys = map[string]string{
	"log-level": "log_level",
	"engine":    "engine",
	"format":    "formats",
	"expected":  "expected_files",
	"ignore":    "ignore_regex",
	"workers":   "workers",
	"schemas":   "schemas_file",
}

// bindFlags binds the flags of the running command only, several commands
// declare the same flag.
func bindFlags(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

type app struct {
	configFile string
	logger     zerolog.Logger
}

// NewRootCommand builds the dvgrouper command tree.
func NewRootCommand() *cobra.Command {
	a := &app{logger: zerolog.Nop()}
	root := &cobra.Command{
		Use:           "dvgrouper",
		Short:         "Group data vault files into named datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(cmd); err != nil {
				return err
			}
			if err := config.InitConfig(a.configFile); err != nil {
				return err
			}
			l, err := logger.NewWithWriters(config.Config.LogLevel, cmd.ErrOrStderr(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.logger = l
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newLoadCommand(a), newValidateCommand(a), newServeCommand(a))
	return root
}

func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
