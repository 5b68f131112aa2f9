package cmd

import (
	"context"

	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

type ledgerOperation func(s core.ILedgerService) func(ctx context.Context, req *core.LedgerRequest) (*core.Transaction, error)

func newLedgerCmd(use, short string, op ledgerOperation) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <user_id> <asset_id> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			amount, err := cast.ToUint64E(args[2])
			if err != nil {
				cmd.PrintErrln("invalid amount", args[2], err)
				return
			}

			traceID, _ := cmd.Flags().GetString("trace")

			database := provideDatabase()
			defer database.Close()

			t, err := op(provideLedgerService(database))(cmd.Context(), &core.LedgerRequest{
				TraceID: traceID,
				UserID:  args[0],
				AssetID: args[1],
				Amount:  amount,
			})
			if err != nil {
				cmd.PrintErrln(use, "failed:", err)
				return
			}

			printView(cmd, t)
		},
	}

	cmd.Flags().String("trace", "", "trace id, generated when empty")
	return cmd
}

var liquidateCmd = &cobra.Command{
	Use:   "liquidate <liquidator_id> <user_id> <collateral_asset_id> <borrowed_asset_id>",
	Short: "repay part of an undercollateralized position and seize its collateral",
	Args:  cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		traceID, _ := cmd.Flags().GetString("trace")

		database := provideDatabase()
		defer database.Close()

		t, err := provideLedgerService(database).Liquidate(cmd.Context(), &core.LiquidateRequest{
			TraceID:           traceID,
			LiquidatorID:      args[0],
			UserID:            args[1],
			CollateralAssetID: args[2],
			BorrowedAssetID:   args[3],
		})
		if err != nil {
			cmd.PrintErrln("liquidate failed:", err)
			return
		}

		printView(cmd, t)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health <user_id>",
	Short: "show the health factors of a position",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		database := provideDatabase()
		defer database.Close()

		report, err := provideLedgerService(database).Health(cmd.Context(), args[0])
		if err != nil {
			cmd.PrintErrln("health failed:", err)
			return
		}

		printView(cmd, report)
	},
}

func init() {
	rootCmd.AddCommand(
		newLedgerCmd("deposit", "deposit collateral into a pool", func(s core.ILedgerService) func(context.Context, *core.LedgerRequest) (*core.Transaction, error) {
			return s.Deposit
		}),
		newLedgerCmd("withdraw", "withdraw collateral from a pool", func(s core.ILedgerService) func(context.Context, *core.LedgerRequest) (*core.Transaction, error) {
			return s.Withdraw
		}),
		newLedgerCmd("borrow", "borrow against deposited collateral", func(s core.ILedgerService) func(context.Context, *core.LedgerRequest) (*core.Transaction, error) {
			return s.Borrow
		}),
		newLedgerCmd("repay", "repay borrowed assets", func(s core.ILedgerService) func(context.Context, *core.LedgerRequest) (*core.Transaction, error) {
			return s.Repay
		}),
		liquidateCmd,
		healthCmd,
	)

	liquidateCmd.Flags().String("trace", "", "trace id, generated when empty")
}
