package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/studykit/studykit/internal/catalog"
	"github.com/studykit/studykit/internal/llm"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List supported AI providers and their models",
	RunE: func(cmd *cobra.Command, args []string) error {
		check, _ := cmd.Flags().GetBool("check")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		settings, _ := cfg.Settings()

		cat := catalog.Default()
		out := cmd.OutOrStdout()
		for _, pc := range cat.List() {
			marker := " "
			if pc.ID == settings.Provider {
				marker = "*"
			}
			cred := "no key needed"
			if pc.RequiresCredential {
				cred = "requires " + pc.CredentialLabel
			}
			fmt.Fprintf(out, "%s %-12s %-16s (%s)\n", marker, pc.ID, pc.Name, cred)

			for _, m := range pc.Models {
				rec := ""
				if m.Recommended {
					rec = "  (recommended)"
				}
				fmt.Fprintf(out, "    %-42s %-7s%s\n", m.ID, m.Cost, rec)
			}

			if check && pc.ID == settings.Provider {
				result := cat.Validate(pc.ID, settings)
				if result.Valid {
					fmt.Fprintln(out, "    settings: ok")
					checkReachable(cmd, out, settings)
				} else {
					fmt.Fprintf(out, "    settings: %s\n", strings.Join(result.Errors, "; "))
				}
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

// checkReachable probes the backend when its adapter supports a cheap
// connectivity test. Backends without one are skipped silently.
func checkReachable(cmd *cobra.Command, out io.Writer, settings llm.Settings) {
	provider, err := llm.New(settings)
	if err != nil {
		fmt.Fprintf(out, "    connection: %v\n", err)
		return
	}
	pinger, ok := provider.(llm.Pinger)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	if err := pinger.Ping(ctx); err != nil {
		fmt.Fprintf(out, "    connection: %v\n", err)
		return
	}
	fmt.Fprintln(out, "    connection: ok")
}

var setupCmd = &cobra.Command{
	Use:   "setup [provider]",
	Short: "Show setup instructions for a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := catalog.Default()
		pc, err := cat.Get(llm.ProviderID(args[0]))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n\n", pc.Name)
		for i, step := range pc.SetupInstructions {
			fmt.Fprintf(out, "%d. %s\n", i+1, step)
		}
		if pc.CredentialHint != "" {
			fmt.Fprintf(out, "\nKey format: %s\n", pc.CredentialHint)
		}
		return nil
	},
}

func init() {
	providersCmd.Flags().Bool("check", false, "Validate the configured settings for the selected provider")
	providersCmd.AddCommand(setupCmd)
}
