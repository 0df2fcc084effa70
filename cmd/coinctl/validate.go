package main

import (
	"github.com/spf13/cobra"
)

func newValidateURICommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-uri <uri>",
		Short: "Check a metadata URI and the document behind it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.build()
			if err != nil {
				return err
			}
			defer svc.close()

			_, err = svc.coins.ValidateMetadataURI(cmd.Context(), args[0])
			return err
		},
	}
}
