package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"mentor-booking/cmd/bootstrap"
	"mentor-booking/cmd/bootstrap/components"
	"mentor-booking/internal/domain/booking"
	"mentor-booking/internal/usecase/commands"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func reconcileCmd() *cobra.Command {
	var (
		stale     bool
		olderThan time.Duration
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "reconcile [order-id]",
		Short: "Settle bookings from the gateway's view of their orders",
		Long: `Query the payment gateway for an order's current status and apply it
exactly as a webhook would. Use this when a callback was lost.

Examples:
  bookingctl reconcile MB261016101500ABCDEF
  bookingctl reconcile --stale --older-than 30m --limit 50`,
		Args: func(cmd *cobra.Command, args []string) error {
			if stale {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var settlement commands.SettlementCommands
			app := fx.New(
				bootstrap.ConfigModule,
				bootstrap.LoggerModule,
				bootstrap.DBModule,
				bootstrap.GatewayModule,
				bootstrap.SideEffectModule,
				components.RepositoryModule,
				components.UseCaseModule,
				fx.Populate(&settlement),
				fx.NopLogger,
			)
			if err := app.Err(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := app.Start(ctx); err != nil {
				return err
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = app.Stop(stopCtx)
			}()

			out := cmd.OutOrStdout()
			if stale {
				summary, err := settlement.ReconcileStale(ctx, olderThan, limit)
				if err != nil {
					return err
				}
				for _, r := range summary.Results {
					printResult(out, &r)
				}
				fmt.Fprintf(out, "checked=%d settled=%d failed=%d\n", summary.Checked, summary.Settled, summary.Failed)
				return nil
			}

			orderID, err := booking.ParseOrderID(args[0])
			if err != nil {
				return err
			}
			res, err := settlement.ReconcileOrder(ctx, orderID)
			if err != nil {
				return err
			}
			printResult(out, res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&stale, "stale", false, "reconcile every booking still pending after --older-than")
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*time.Minute, "minimum age of a pending booking")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum bookings per run")

	return cmd
}

func printResult(w io.Writer, r *commands.ReconciliationResult) {
	fmt.Fprintf(w, "%s\tbooking=%s\tpayment=%s\tbooking_status=%s\ttransition=%s\n",
		r.OrderID, r.BookingID, r.PaymentStatus, r.BookingStatus, r.Transition)
}
