package main

import (
	"github.com/spf13/cobra"
)

func newAccountCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Show the signing account derived from PRIVATE_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.build()
			if err != nil {
				return err
			}
			defer svc.close()

			a.describeChain(cmd.Context(), svc.chains)
			return nil
		},
	}
}
