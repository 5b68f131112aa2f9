package cmd

import (
	"github.com/fox-one/pkg/store/db"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var faucetCmd = &cobra.Command{
	Use:   "faucet <account_id> <asset_id> <amount>",
	Short: "credit a test balance to an account",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		operator, _ := cmd.Flags().GetString("operator")
		if !cfg.IsAdmin(operator) {
			cmd.PrintErrln("operator", operator, "is not an admin")
			return
		}

		amount, err := cast.ToUint64E(args[2])
		if err != nil {
			cmd.PrintErrln("invalid amount", args[2], err)
			return
		}

		database := provideDatabase()
		defer database.Close()

		transfers := provideTransferService(providePoolStore(database), provideBalanceStore(database))
		if err := database.Tx(func(tx *db.DB) error {
			return transfers.Credit(ctx, tx, args[0], args[1], amount)
		}); err != nil {
			cmd.PrintErrln("faucet failed:", err)
			return
		}

		cmd.Println("credited", amount, args[1], "to", args[0])
	},
}

func init() {
	rootCmd.AddCommand(faucetCmd)
	faucetCmd.Flags().String("operator", "", "admin user id")
}
