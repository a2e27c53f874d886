package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"djedi-migrate/internal/config"
)

func newConfigCommand(app *Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the " + config.FileName + " file",
		Args:  cobra.NoArgs,
	}

	var force bool
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a configuration file with the default settings",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigLoad: ""},
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := app.flags.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.Save(path, config.Default()); err != nil {
				return fmt.Errorf("write configuration: %w", err)
			}
			app.logger.Debug("configuration written", zap.String("path", path))
			return writeln(cmd.OutOrStdout(), "wrote "+path)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.cfg.Path == "" {
				return writeln(cmd.OutOrStdout(), "(none, default location "+config.DefaultPath()+")")
			}
			return writeln(cmd.OutOrStdout(), app.cfg.Path)
		},
	}

	cmd.AddCommand(initCmd, pathCmd)
	return cmd
}
