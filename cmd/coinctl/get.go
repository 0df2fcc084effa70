package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <address>",
		Short: "Look up a coin in the indexer",
		Long:  "Look up a coin by contract address on the configured chain (see --chain-id).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.build()
			if err != nil {
				return err
			}
			defer svc.close()

			resp, err := svc.coins.FetchCoin(cmd.Context(), args[0], a.cfg.Chain.ID)
			if err != nil {
				return err
			}
			if resp.Data.Zora20Token == nil {
				a.logger.Info("Coin not indexed", zap.String("address", args[0]), zap.Int64("chainId", a.cfg.Chain.ID))
			}
			return nil
		},
	}
}
