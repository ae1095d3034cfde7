// Command chat is the terminal client for NextHire conversations and
// interview calls.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func NewChatCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "chat",
		Short:         "NextHire chat and interview calls from the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			a.close()
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")

	cmd.AddCommand(
		newLoginCommand(a),
		newLogoutCommand(a),
		newHistoryCommand(a),
		newSendCommand(a),
		newSearchCommand(a),
		newInboxCommand(a),
		newGroupCommand(a),
		newOpenCommand(a),
	)
	return cmd
}

func main() {
	if err := NewChatCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
