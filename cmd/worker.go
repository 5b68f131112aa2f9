package cmd

import (
	"context"

	"github.com/fox-one/pkg/logger"
	"github.com/nidhish-srivastava/defi-lending-protocol/worker/priceoracle"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "run the price oracle worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		clk := provideClock()
		priceStore := providePriceStore(database)

		workers := []interface {
			Run(ctx context.Context) error
		}{
			priceoracle.New(
				database,
				providePoolStore(database),
				priceStore,
				provideOracleService(priceStore, clk),
				providePropertyStore(database),
				clk,
				cfg.Oracle.PullInterval(),
			),
		}

		g, ctx := errgroup.WithContext(ctx)
		for _, w := range workers {
			w := w
			g.Go(func() error {
				return w.Run(ctx)
			})
		}

		if err := g.Wait(); err != nil && err != context.Canceled {
			log.WithError(err).Errorln("worker exit")
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
