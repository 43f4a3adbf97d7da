/*
SPDX-License-Identifier: Apache-2.0
*/

package showconfig

import (
	"fmt"

	"github.com/depress-xyz/depress/internal/config"
	"github.com/spf13/cobra"
)

// Cmd returns the command that prints the effective configuration.
func Cmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML.",
		Long: `Print the configuration after defaults, depress.yaml and DEPRESS_*
environment overrides have been applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			conf, err := config.Load()
			if err != nil {
				return err
			}
			out, err := conf.YAML()
			if err != nil {
				return err
			}
			if conf.File != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", conf.File)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
