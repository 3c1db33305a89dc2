package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quietlane/capwire/internal/capmsg"
	"github.com/quietlane/capwire/internal/codec"
)

var pingCmd = &cobra.Command{
	Use:   "ping <address>",
	Short: "Probe a capwire actor for liveness without invoking its handler",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := capmsg.ParseActorAddress(args[0])
		if err != nil {
			return fmt.Errorf("parsing address: %w", err)
		}

		tr, err := resolveTransport(addr)
		if err != nil {
			return err
		}

		c, err := resolveCodec()
		if err != nil {
			return err
		}

		d, err := resolveTimeout()
		if err != nil {
			return fmt.Errorf("parsing --timeout: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), d)
		defer cancel()

		// Ping never touches the payload, so the int shape is used
		// regardless of --type.
		h := intHandle(addr, tr, c)
		result := h.Send(ctx, capmsg.Ping[codec.IntValue]())
		if result.IsErr() {
			return result.Err()
		}

		fmt.Println("ok")

		return nil
	},
}
