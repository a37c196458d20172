package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/chargeback/internal/cli"
	"github.com/Veraticus/chargeback/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func ratesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "List billable actions and their monthly rate per user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle("Billable actions"))
			fmt.Fprintln(out, cli.RenderRates(cfg.Actions, cfg.Rates))

			if missing := cfg.MissingRates(); len(missing) > 0 {
				fmt.Fprintln(out, cli.FormatWarning("Rows for these actions will be skipped: "+strings.Join(missing, ", ")))
			}
			return nil
		},
	}
}
