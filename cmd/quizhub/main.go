package main

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Alp4ka/quizhub/internal/flags"
)

var (
	logLevel   = "info"
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "quizhub",
	Short: "Trivia, blog and user backend with a GraphQL and REST API",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := flags.Overlay(cmd.Flags(), configFile); err != nil {
			return errors.WithMessage(err, "could not load configuration")
		}

		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return errors.WithMessage(err, "cannot parse log-level")
		}
		log.SetLevel(level)
		log.Debug("debug logging enabled")

		return nil
	},
	SilenceUsage: true,
}

func main() {
	// Millisecond timestamps help when following requests through the log.
	formatter := new(log.TextFormatter)
	formatter.TimestampFormat = "2006-01-02T15:04:05.999Z07:00"
	formatter.FullTimestamp = true
	log.SetFormatter(formatter)

	rootCmd.AddCommand(
		NewServeCommand(),
		NewMigrateCommand(),
		NewSweepCommand(),
		NewVersionCommand(),
	)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel,
		"Log level (trace,debug,info,warn,error)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Optional config file (yaml, json or toml) with flag values keyed by flag name")

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Fatal("could not execute root command")
	}
}
