package commands

import (
	"github.com/spf13/cobra"
)

var (
	// payloadType selects which demo payload type a send/ping/stop
	// operation uses: "int" (codec.IntValue) or "string"
	// (codec.StringValue).
	payloadType string

	// codecName selects the wire codec: "proto" or "msgp".
	codecName string

	// timeout bounds how long a RemoteHandle call may take before its
	// context is cancelled.
	timeout string
)

// rootCmd is the base command for the capwire CLI.
var rootCmd = &cobra.Command{
	Use:   "capwire",
	Short: "capwire capability client",
	Long: `capwire is the command-line client for talking to a capwire
actor through its ActorAddress capability: send a Task or TaskMut,
ping for liveness, stop the actor, or inspect an address's textual form.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&payloadType, "type", "int",
		"Payload type to use: int or string",
	)
	rootCmd.PersistentFlags().StringVar(
		&codecName, "codec", "proto",
		"Wire codec to use: proto or msgp",
	)
	rootCmd.PersistentFlags().StringVar(
		&timeout, "timeout", "5s",
		"Timeout for the remote call",
	)

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(addrCmd)
}
