package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"coinctl/internal/domain/entity"
	"coinctl/internal/pkg/apperrors"
)

func newCheckRPCCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-rpc [url]",
		Short: "Probe an RPC endpoint and confirm it serves the configured chain",
		Long: `Probe an RPC endpoint with eth_chainId. Without an argument RPC_URL is probed;
any http, https, ws or wss URL may be given instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := a.cfg.Credentials.RPCURL
			if len(args) == 1 {
				parsed, err := entity.NewRPCURL(args[0])
				if err != nil {
					return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
				}
				target = parsed
			}

			svc, err := a.build()
			if err != nil {
				return err
			}
			defer svc.close()

			detail, err := svc.chains.CheckEndpoint(cmd.Context(), target, a.cfg.Chain.ID)
			if err != nil {
				return err
			}

			a.logger.Info("RPC endpoint is working",
				zap.String("protocol", string(detail.Protocol)),
				zap.Int64("chainId", detail.ChainID),
				zap.Int64("latencyMs", detail.LatencyMs),
			)
			a.describeChain(cmd.Context(), svc.chains)
			return nil
		},
	}
}
