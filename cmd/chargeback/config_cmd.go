package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/chargeback/internal/cli"
	"github.com/Veraticus/chargeback/internal/common"
	"github.com/Veraticus/chargeback/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the chargeback configuration",
	}
	cmd.AddCommand(configInitCmd())
	cmd.AddCommand(configShowCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := cfgFile
			if path == "" {
				path = config.DefaultConfigPath()
			}

			if err := writeDefaultConfig(path, force); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Wrote "+path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return common.NewUserError(fmt.Sprintf("%s already exists (use --force to overwrite)", path), nil)
	}

	data, err := yaml.Marshal(config.DefaultFile())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var file config.File
			if err := viper.Unmarshal(&file); err != nil {
				return fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
			}

			data, err := yaml.Marshal(maskSecrets(file))
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}

			if used := viper.ConfigFileUsed(); used != "" {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Loaded from "+used))
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func maskSecrets(file config.File) config.File {
	mask := func(s *string) {
		if *s != "" {
			*s = "********"
		}
	}
	mask(&file.Notify.SMTP.Password)
	mask(&file.Notify.Slack.Token)
	mask(&file.Notify.Sheets.ClientSecret)
	mask(&file.Notify.Sheets.RefreshToken)
	return file
}
