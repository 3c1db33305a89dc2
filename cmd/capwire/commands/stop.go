package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quietlane/capwire/internal/capmsg"
	"github.com/quietlane/capwire/internal/codec"
)

var stopCmd = &cobra.Command{
	Use:   "stop <address>",
	Short: "Request termination of a capwire actor (refused unless its bridge allows Stop)",
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

		switch payloadType {
		case "int":
			h := intHandle(addr, tr, c)
			result := h.Send(ctx, capmsg.Stop[codec.IntValue]())
			if result.IsErr() {
				return result.Err()
			}
		case "string":
			h := stringHandle(addr, tr, c)
			result := h.Send(ctx, capmsg.Stop[codec.StringValue]())
			if result.IsErr() {
				return result.Err()
			}
		default:
			return fmt.Errorf("unknown --type %q (want int or string)", payloadType)
		}

		fmt.Println("stopped")

		return nil
	},
}
