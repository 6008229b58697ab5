// Package configcmder provides the config command for managing persistent
// leadline configuration stored in the .leadline/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent leadline configuration.

Configuration is stored as config.toml in the .leadline/ directory and
provides default values for command flags. CLI flags and LEADLINE_*
environment variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure, for example:
  server.listen, assistant.history_window,
  generation.project, generation.model, generation.temperature,
  retrieval.provider, retrieval.engine, retrieval.top_k,
  analytics.provider, analytics.target, prompt.policy_file

Use subcommands to get, set, or list configuration values:
  leadline config set <key> <value>    Set a configuration value
  leadline config get <key>            Get a configuration value
  leadline config list                 List all configuration values

Examples:
  leadline config set generation.model gemini-2.5-pro
  leadline config set analytics.provider sqlite
  leadline config get retrieval.engine
  leadline config list`

const configShortDesc string = "Manage persistent leadline configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
