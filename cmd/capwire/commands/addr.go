package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quietlane/capwire/internal/capmsg"
)

var addrCmd = &cobra.Command{
	Use:   "addr",
	Short: "Inspect or construct a capwire ActorAddress",
}

var addrParseCmd = &cobra.Command{
	Use:   "parse <address>",
	Short: "Parse a textual address and print its tag, peer id, and host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := capmsg.ParseActorAddress(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("tag:  %s\n", addr.Tag)
		fmt.Printf("peer: %s\n", addr.PeerID.String())
		fmt.Printf("host: %s\n", addr.Host)

		return nil
	},
}

var addrFormatCmd = &cobra.Command{
	Use:   "format <tag> <peer-hex> <host>",
	Short: "Construct and print the canonical textual form of an address",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := capmsg.ParsePeerID(args[1])
		if err != nil {
			return err
		}

		addr := capmsg.NewActorAddress(args[0], id, args[2])
		fmt.Println(addr.Format())

		return nil
	},
}

func init() {
	addrCmd.AddCommand(addrParseCmd)
	addrCmd.AddCommand(addrFormatCmd)
}
