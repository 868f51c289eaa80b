package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tradewind-io/tradewind/internal/external/alpaca"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live order updates from the broker",
	Long: `Connects to the broker's trade-updates stream and prints order
lifecycle events (fills, partial fills, cancellations, rejections) as
they happen.

Example:
  go run ./cmd/tradewind watch`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Tradewind Order Stream ===")

	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	stream := alpaca.NewStreamClient(a.cfg.Alpaca, a.log)

	stream.OnTradeUpdate(func(update *alpaca.TradeUpdate) {
		switch update.Event {
		case alpaca.EventFill, alpaca.EventPartialFill:
			fmt.Printf("[%s] %s %s %s qty=%g price=%.2f\n",
				update.ReceivedAt.Format("15:04:05"), update.Event,
				update.Side, update.Symbol, update.FilledQty, update.FillPrice)
		case alpaca.EventRejected, alpaca.EventCanceled:
			fmt.Printf("[%s] %s %s %s order=%s\n",
				update.ReceivedAt.Format("15:04:05"), update.Event,
				update.Side, update.Symbol, update.OrderID)
		}
	})

	stream.OnError(func(err error) {
		a.log.WithError(err).Error("stream error")
	})

	stream.OnDisconnect(func() {
		go func() {
			if err := stream.Reconnect(ctx); err != nil {
				a.log.WithError(err).Error("stream reconnect failed")
				cancel()
			}
		}()
	})

	if err := stream.Connect(ctx); err != nil {
		return fmt.Errorf("connect stream: %w", err)
	}

	fmt.Println("\nListening for order updates, press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
	case <-ctx.Done():
	}

	cancel() // stop any pending reconnect before closing
	return stream.Disconnect()
}
