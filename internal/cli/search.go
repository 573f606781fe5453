package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
		pick       bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search GitHub repositories",
		Long: `Search GitHub repositories by stars, descending.

Results are cached for an hour, so repeating a query does not burn quota.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			query := strings.Join(args, " ")
			client := c.newClient(ctx)

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Searching for %q...", query))
			spinner.Start()
			repos, err := client.SearchRepos(ctx, query, limit)
			spinner.Stop()
			if err != nil {
				return err
			}

			if len(repos) == 0 {
				printInfo("No repositories found for %q", query)
				return nil
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(repos)
			}

			if pick {
				model, err := tea.NewProgram(NewRepoListModel(repos)).Run()
				if err != nil {
					return fmt.Errorf("run picker: %w", err)
				}
				selected := model.(RepoListModel).Selected
				if selected == nil {
					return nil
				}
				printNewline()
				printSuccess("Selected %s", StyleValue.Render(selected.FullName))
				printDetail("contriblens contributors %s", selected.FullName)
				return nil
			}

			printNewline()
			for i, r := range repos {
				meta := fmt.Sprintf("★ %d", r.Stars)
				if r.Language != "" {
					meta += " · " + r.Language
				}
				fmt.Printf("%2d. %s  %s\n", i+1, StyleValue.Render(r.FullName), StyleDim.Render(meta))
				if r.Description != "" {
					printDetail("%s", truncate(r.Description, 76))
				}
			}
			printNewline()
			printDetail("contriblens contributors <owner>/<repo> to extract a contributor list")
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of results")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output raw JSON")
	cmd.Flags().BoolVar(&pick, "pick", false, "select a repository interactively")

	return cmd
}
