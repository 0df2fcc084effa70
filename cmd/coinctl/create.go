package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"coinctl/internal/config"
	"coinctl/internal/domain/entity"
	"coinctl/internal/pkg/apperrors"
)

type createFlags struct {
	paramsFile       string
	name             string
	symbol           string
	uri              string
	payoutRecipient  string
	owners           []string
	platformReferrer string
}

func newCreateCommand(a *app) *cobra.Command {
	var f createFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Mint a new coin",
		Long: `Mint a new coin through the coin factory.

Parameters come from the coin section of the configuration, then from --params,
then from individual flags. The payout recipient defaults to the signing account.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCreate(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.paramsFile, "params", "", "YAML file with coin parameters")
	cmd.Flags().StringVar(&f.name, "name", "", "coin name")
	cmd.Flags().StringVar(&f.symbol, "symbol", "", "coin symbol")
	cmd.Flags().StringVar(&f.uri, "uri", "", "metadata URI (ipfs://, ar://, data: or https://)")
	cmd.Flags().StringVar(&f.payoutRecipient, "payout-recipient", "", "address receiving creator rewards")
	cmd.Flags().StringSliceVar(&f.owners, "owner", nil, "coin owner address, repeatable")
	cmd.Flags().StringVar(&f.platformReferrer, "platform-referrer", "", "platform referrer address")

	return cmd
}

func (a *app) runCreate(cmd *cobra.Command, f createFlags) error {
	ctx := cmd.Context()

	svc, err := a.build()
	if err != nil {
		return err
	}
	defer svc.close()

	params, err := resolveCoinParams(a.cfg.Coin, f, cmd)
	if err != nil {
		return err
	}
	if params.PayoutRecipient == "" {
		params.PayoutRecipient = svc.clients.Account.Address().Hex()
	}

	if a.cfg.Checker.Preflight {
		if _, err := svc.chains.CheckEndpoint(ctx, a.cfg.Credentials.RPCURL, a.cfg.Chain.ID); err != nil {
			return fmt.Errorf("rpc preflight failed: %w", err)
		}
	}

	result, err := svc.coins.CreateCoin(ctx, params)
	if err != nil {
		return err
	}

	link, err := svc.chains.ExplorerTxURL(ctx, a.cfg.Chain.ID, result.Hash)
	if err != nil {
		a.logger.Warn("Explorer link unavailable", zap.Error(err))
		return nil
	}
	a.logger.Info("Explorer link", zap.String("url", link))
	return nil
}

// resolveCoinParams layers config defaults, the params file and explicitly set flags, in that order.
func resolveCoinParams(defaults config.CoinConfig, f createFlags, cmd *cobra.Command) (entity.CoinParams, error) {
	params := entity.CoinParams{
		Name:   defaults.Name,
		Symbol: defaults.Symbol,
		URI:    defaults.URI,
	}

	if f.paramsFile != "" {
		fromFile, err := readParamsFile(f.paramsFile)
		if err != nil {
			return entity.CoinParams{}, err
		}
		overlay(&params, fromFile)
	}

	flags := cmd.Flags()
	fromFlags := entity.CoinParams{}
	if flags.Changed("name") {
		fromFlags.Name = f.name
	}
	if flags.Changed("symbol") {
		fromFlags.Symbol = f.symbol
	}
	if flags.Changed("uri") {
		fromFlags.URI = f.uri
	}
	if flags.Changed("payout-recipient") {
		fromFlags.PayoutRecipient = f.payoutRecipient
	}
	if flags.Changed("owner") {
		fromFlags.Owners = f.owners
	}
	if flags.Changed("platform-referrer") {
		fromFlags.PlatformReferrer = f.platformReferrer
	}
	overlay(&params, fromFlags)

	return params, nil
}

func readParamsFile(path string) (entity.CoinParams, error) {
	file, err := os.Open(path)
	if err != nil {
		return entity.CoinParams{}, fmt.Errorf("%w: failed to open params file: %v", apperrors.ErrInvalidInput, err)
	}
	defer file.Close()

	var params entity.CoinParams
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&params); err != nil {
		return entity.CoinParams{}, fmt.Errorf("%w: failed to parse params file %s: %v", apperrors.ErrInvalidInput, path, err)
	}
	return params, nil
}

// overlay copies every non-empty field of src onto dst.
func overlay(dst *entity.CoinParams, src entity.CoinParams) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Symbol != "" {
		dst.Symbol = src.Symbol
	}
	if src.URI != "" {
		dst.URI = src.URI
	}
	if src.PayoutRecipient != "" {
		dst.PayoutRecipient = src.PayoutRecipient
	}
	if len(src.Owners) > 0 {
		dst.Owners = src.Owners
	}
	if src.PlatformReferrer != "" {
		dst.PlatformReferrer = src.PlatformReferrer
	}
}
