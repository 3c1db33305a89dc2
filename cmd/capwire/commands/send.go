package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/quietlane/capwire/internal/capmsg"
	"github.com/quietlane/capwire/internal/codec"
)

var sendMut bool

var sendCmd = &cobra.Command{
	Use:   "send <address> <value>",
	Short: "Send a Task (or TaskMut, with --mut) to a capwire actor",
	Args:  cobra.ExactArgs(2),
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
			v, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("parsing int value: %w", err)
			}

			h := intHandle(addr, tr, c)
			msg := capmsg.Task[codec.IntValue](codec.IntValue(v))
			if sendMut {
				msg = capmsg.TaskMut[codec.IntValue](codec.IntValue(v))
			}

			result := h.Send(ctx, msg)
			if result.IsErr() {
				return result.Err()
			}
			fmt.Println(int64(result.Reply().Value()))

		case "string":
			h := stringHandle(addr, tr, c)
			msg := capmsg.Task[codec.StringValue](codec.StringValue(args[1]))
			if sendMut {
				msg = capmsg.TaskMut[codec.StringValue](codec.StringValue(args[1]))
			}

			result := h.Send(ctx, msg)
			if result.IsErr() {
				return result.Err()
			}
			fmt.Println(string(result.Reply().Value()))

		default:
			return fmt.Errorf("unknown --type %q (want int or string)", payloadType)
		}

		return nil
	},
}

func init() {
	sendCmd.Flags().BoolVar(&sendMut, "mut", false, "Send a TaskMut instead of a Task")
}
