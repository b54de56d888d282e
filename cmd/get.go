package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var getFormat string

var getCmd = &cobra.Command{
	Use:   "get <content-id>",
	Short: "Print a stored evidence bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("get"); err != nil {
			return err
		}

		st, err := initStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		bundle, err := st.GetEvidence(ctx, args[0])
		if err != nil {
			return err
		}
		if bundle == nil {
			return eris.Errorf("no evidence stored for %s", args[0])
		}
		return writeOutput(cmd.OutOrStdout(), getFormat, bundle)
	},
}

func init() {
	getCmd.Flags().StringVar(&getFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(getCmd)
}
