package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ohdsi/condenser/pkg/api/atlas"
	"github.com/ohdsi/condenser/pkg/vocabulary"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOpts struct {
	logLevel   string
	configFile string
}

var rootopts = rootOpts{}

// config holds the defaults from the config file. Flags given on the command
// line take precedence.
var config = atlas.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "condenser",
	Short: "condenser finds the shortest expression for OHDSI concept sets",
	Long: `The tool rewrites a concept set, given as a flat list of concepts, into the shortest expression of include and exclude
items with or without descendants which resolves to exactly the same concepts`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile := rootopts.configFile
		if configFile == "" {
			configFile = vocabulary.SearchConfig()
		}
		if configFile != "" {
			loaded, err := vocabulary.LoadConfig(cmd.Context(), configFile)
			if err != nil {
				return err
			}
			config = loaded
			logrus.Debugf("Loaded config from %s", configFile)
		}
		logLevel := config.LogLevel
		if cmd.Flags().Changed("log-level") || logLevel == "" {
			logLevel = rootopts.logLevel
		}
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		return nil
	},
}

func Execute() {
	rootCmd.PersistentFlags().StringVar(&rootopts.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&rootopts.configFile, "config", "", "config file with flag defaults (default: condenser/config.yaml in the XDG config directories)")
	rootCmd.AddCommand(NewCondenseCmd())
	rootCmd.AddCommand(NewReduceCmd())
	rootCmd.AddCommand(NewVerifyCmd())
	rootCmd.AddCommand(NewInitCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}
