package cmd

import (
	"encoding/json"

	"github.com/nidhish-srivastava/defi-lending-protocol/config"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/spf13/cobra"
	"github.com/yiplee/structs"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "manage the asset pools",
}

var poolInitCmd = &cobra.Command{
	Use:   "init",
	Short: "create the pools defined in the config file",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		poolStore := providePoolStore(database)

		for _, c := range cfg.Pools {
			pool, err := poolFromConfig(c)
			if err != nil {
				cmd.PrintErrln("invalid pool", c.Kind, err)
				return
			}

			if err := poolStore.Create(ctx, pool); err != nil {
				cmd.PrintErrln("create pool", c.Kind, err)
				return
			}

			cmd.Println("pool", pool.Symbol, "ready, id", pool.ID)
		}
	},
}

var poolListCmd = &cobra.Command{
	Use:   "list",
	Short: "list pools and their totals",
	Run: func(cmd *cobra.Command, args []string) {
		database := provideDatabase()
		defer database.Close()

		pools, err := providePoolStore(database).All(cmd.Context())
		if err != nil {
			cmd.PrintErrln("list pools", err)
			return
		}

		for _, pool := range pools {
			printView(cmd, structs.Map(newPoolView(pool)))
		}
	},
}

type poolView struct {
	Symbol               string `json:"symbol"`
	AssetID              string `json:"asset_id"`
	Decimals             uint8  `json:"decimals"`
	TotalDeposits        uint64 `json:"total_deposits"`
	TotalDepositShares   uint64 `json:"total_deposit_shares"`
	TotalBorrowed        uint64 `json:"total_borrowed"`
	TotalBorrowedShares  uint64 `json:"total_borrowed_shares"`
	LiquidationThreshold string `json:"liquidation_threshold"`
	CloseFactor          string `json:"liquidation_close_factor"`
	Bonus                string `json:"liquidation_bonus"`
	InterestRate         string `json:"interest_rate"`
	Version              int64  `json:"version"`
}

func newPoolView(pool *core.Pool) poolView {
	return poolView{
		Symbol:               pool.Symbol,
		AssetID:              pool.AssetID,
		Decimals:             pool.Decimals,
		TotalDeposits:        pool.TotalDeposits,
		TotalDepositShares:   pool.TotalDepositShares,
		TotalBorrowed:        pool.TotalBorrowed,
		TotalBorrowedShares:  pool.TotalBorrowedShares,
		LiquidationThreshold: pool.LiquidationThreshold.String(),
		CloseFactor:          pool.LiquidationCloseFactor.String(),
		Bonus:                pool.LiquidationBonus.String(),
		InterestRate:         pool.InterestRate.String(),
		Version:              pool.Version,
	}
}

func poolFromConfig(c config.Pool) (*core.Pool, error) {
	kind, err := core.ParseAssetKind(c.Kind)
	if err != nil {
		return nil, err
	}

	pool := &core.Pool{
		Kind:                   kind,
		AssetID:                c.AssetID,
		Symbol:                 kind.String(),
		Decimals:               c.Decimals,
		LiquidationThreshold:   c.LiquidationThreshold,
		LiquidationCloseFactor: c.LiquidationCloseFactor,
		LiquidationBonus:       c.LiquidationBonus,
		InterestRate:           c.InterestRate,
		MaxPriceAge:            c.MaxPriceAge,
	}

	if err := pool.Validate(); err != nil {
		return nil, err
	}

	return pool, nil
}

func printView(cmd *cobra.Command, v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	cmd.Println(string(data))
}

func init() {
	rootCmd.AddCommand(poolCmd)
	poolCmd.AddCommand(poolInitCmd, poolListCmd)
}
