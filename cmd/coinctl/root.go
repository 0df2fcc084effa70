package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"coinctl/internal/config"
	"coinctl/internal/logger"
	"coinctl/internal/pkg/apperrors"
)

// app carries what every subcommand needs once the root pre-run has loaded it.
type app struct {
	configPath string
	chainID    int64

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "coinctl",
		Short: "Mint and inspect coins on an EVM chain",
		Long: `coinctl mints coins through the on-chain coin factory, reads coin data
from the indexer and checks metadata URIs before they are used.

PRIVATE_KEY and RPC_URL must be set in the environment or in a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "configs", "directory holding config.yaml")
	cmd.PersistentFlags().Int64Var(&a.chainID, "chain-id", 0, "override chain.id from the configuration")

	cmd.AddCommand(
		newCreateCommand(a),
		newGetCommand(a),
		newValidateURICommand(a),
		newCheckRPCCommand(a),
		newAccountCommand(a),
	)

	return cmd
}

// load reads configuration and builds the logger. Missing secrets fail here, before any client exists.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("chain-id") {
		if a.chainID <= 0 {
			return fmt.Errorf("%w: --chain-id must be positive", apperrors.ErrConfiguration)
		}
		cfg.Chain.ID = a.chainID
	}

	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}

	a.cfg = cfg
	a.logger = log
	log.Debug("Configuration loaded",
		zap.String("configPath", a.configPath),
		zap.Int64("chainId", cfg.Chain.ID),
		zap.String("rpcProtocol", string(cfg.Credentials.RPCURL.Protocol())),
	)
	return nil
}
