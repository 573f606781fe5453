package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// emailCommand creates the email command.
func (c *CLI) emailCommand() *cobra.Command {
	var repoHint string

	cmd := &cobra.Command{
		Use:   "email <login>",
		Short: "Find a contact email for a GitHub user",
		Long: `Hunt for a public contact email across the user's profile, commit
metadata, public events, and own repositories. Best effort: noreply
addresses are rejected, and many users simply have no public email.

A --repo hint is checked first and gives the best hit rate for users
known from a specific repository.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			login := args[0]
			client := c.newClient(ctx)

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Searching for %s's email...", login))
			spinner.Start()
			email, err := client.FindEmail(ctx, login, repoHint)
			spinner.Stop()
			if err != nil {
				return err
			}

			if email == "" {
				printWarning("No public email found for %s", StyleValue.Render(login))
				if repoHint == "" {
					printDetail("A --repo owner/name hint often helps")
				}
				return nil
			}

			printSuccess("%s", StyleValue.Render(email))
			return nil
		},
	}

	cmd.Flags().StringVar(&repoHint, "repo", "", "repository hint (owner/name) to scan first")

	return cmd
}
