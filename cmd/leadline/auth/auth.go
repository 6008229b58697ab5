// Package authcmder provides the auth command for storing Google service
// account key paths.
package authcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/leadline/pkg/cliui"
	"github.com/papercomputeco/leadline/pkg/credentials"
)

const authLongDesc string = `Store Google service account keys for leadline services.

Key file paths are stored in credentials.toml in the .leadline/ directory.
Services without a stored key use Application Default Credentials.

Services:
  vertex    Gemini generation on Vertex AI
  search    Vertex AI Search knowledge base
  client    ID tokens for 'leadline chat' against protected deployments

Examples:
  leadline auth vertex ./sa-key.json    Use a key file for generation
  leadline auth --list                  List stored credentials
  leadline auth --remove vertex         Fall back to default credentials`

const authShortDesc string = "Store Google credentials for leadline services"

func NewAuthCmd() *cobra.Command {
	var listFlag bool
	var removeFlag string

	cmd := &cobra.Command{
		Use:   "auth [service] [key-file]",
		Short: authShortDesc,
		Long:  authLongDesc,
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			w := cmd.OutOrStdout()

			switch {
			case listFlag:
				return runList(w, configDir)
			case removeFlag != "":
				return runRemove(w, removeFlag, configDir)
			default:
				if len(args) != 2 {
					return fmt.Errorf("service and key file arguments required\n\nSupported services: %s",
						strings.Join(credentials.SupportedServices(), ", "))
				}
				return runAuth(w, args[0], args[1], configDir)
			}
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return credentials.SupportedServices(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveDefault
		},
	}

	cmd.Flags().BoolVar(&listFlag, "list", false, "List stored credentials")
	cmd.Flags().StringVar(&removeFlag, "remove", "", "Remove stored credentials for a service")

	return cmd
}

func runAuth(w io.Writer, service, file, configDir string) error {
	service = strings.ToLower(strings.TrimSpace(service))

	if !credentials.IsSupportedService(service) {
		return fmt.Errorf("unsupported service: %q\n\nSupported services: %s",
			service, strings.Join(credentials.SupportedServices(), ", "))
	}

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.SetCredentialsFile(service, strings.TrimSpace(file)); err != nil {
		return err
	}

	stored, err := mgr.CredentialsFile(service)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n  %s Stored %s credentials %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(service),
		cliui.DimStyle.Render("("+stored+")"),
	)
	return nil
}

func runList(w io.Writer, configDir string) error {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	services, err := mgr.ListServices()
	if err != nil {
		return err
	}

	if len(services) == 0 {
		fmt.Fprintf(w, "\n  %s No stored credentials.\n", cliui.DimStyle.Render("●"))
		fmt.Fprintf(w, "  All services use Application Default Credentials.\n")
		fmt.Fprintf(w, "  Supported services: %s\n\n", strings.Join(credentials.SupportedServices(), ", "))
		return nil
	}

	fmt.Fprintf(w, "\n  %s\n\n", cliui.HeaderStyle.Render("Stored credentials"))
	for _, s := range services {
		file, err := mgr.CredentialsFile(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s  %s  %s\n",
			cliui.SuccessMark,
			cliui.NameStyle.Render(s),
			cliui.DimStyle.Render("→ "+file),
		)
	}
	fmt.Fprintln(w)

	return nil
}

func runRemove(w io.Writer, service, configDir string) error {
	service = strings.ToLower(strings.TrimSpace(service))

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.Remove(service); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n  %s Removed %s credentials.\n\n", cliui.SuccessMark, cliui.NameStyle.Render(service))

	return nil
}
