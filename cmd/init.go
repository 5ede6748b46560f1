package main

import (
	"github.com/ohdsi/condenser/pkg/vocabulary"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type initOpts struct {
	out string
}

var initopts = initOpts{}

func NewInitCmd() *cobra.Command {

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a config file with the default flag values",
		Long:  `Create a config file with the default flag values. Without --output it is placed in the XDG config directory, where all commands pick it up`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := initopts.out
			if out == "" {
				var err error
				out, err = vocabulary.DefaultConfigFile()
				if err != nil {
					return err
				}
			}
			if err := vocabulary.InitConfig(out); err != nil {
				return err
			}
			logrus.Infof("Wrote config file %s", out)
			return nil
		},
	}

	initCmd.Flags().StringVarP(&initopts.out, "output", "o", "", "where to write the config file")
	return initCmd
}
