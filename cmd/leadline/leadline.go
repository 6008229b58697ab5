// Package leadlinecmder
package leadlinecmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/leadline/cmd/leadline/auth"
	chatcmder "github.com/papercomputeco/leadline/cmd/leadline/chat"
	configcmder "github.com/papercomputeco/leadline/cmd/leadline/config"
	initcmder "github.com/papercomputeco/leadline/cmd/leadline/init"
	retrievecmder "github.com/papercomputeco/leadline/cmd/leadline/retrieve"
	servecmder "github.com/papercomputeco/leadline/cmd/leadline/serve"
	versioncmder "github.com/papercomputeco/leadline/cmd/version"
)

const leadlineLongDesc string = `leadline is an enrollment assistant for lead-generation chat.

It classifies each conversation, pulls context from the school's knowledge
base, asks Gemini for a reply and records every turn for analytics.

Run the service using:
  leadline serve       Run the chat server
  leadline chat        Chat with a running server from the terminal
  leadline retrieve    Run one knowledge-base search`

const leadlineShortDesc string = "leadline - enrollment assistant"

func NewLeadlineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "leadline",
		Short:         leadlineShortDesc,
		Long:          leadlineLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .leadline/ config directory")

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(retrievecmder.NewRetrieveCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
