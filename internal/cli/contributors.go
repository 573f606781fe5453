package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/contriblens/contriblens/pkg/export"
	"github.com/contriblens/contriblens/pkg/github"
)

// contributorsCommand creates the contributors command.
func (c *CLI) contributorsCommand() *cobra.Command {
	var (
		enrich     bool
		findEmails bool
		csvOutput  bool
		jsonOutput bool
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "contributors <owner>/<repo>",
		Short: "Extract a repository's contributor list",
		Long: `Extract the full contributor list of a repository, bots filtered out and
anonymous contributors folded into a single aggregate row.

With --enrich each contributor's public profile (name, company, location,
social links) is fetched in parallel batches; press p to pause and resume.
--emails additionally hunts for a contact email per contributor through
commit metadata, which costs several API calls each.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, ok := strings.Cut(args[0], "/")
			if !ok || owner == "" || repo == "" {
				return fmt.Errorf("expected <owner>/<repo>, got %q", args[0])
			}
			if findEmails {
				enrich = true
			}

			ctx := cmd.Context()
			prog := newProgress(loggerFromContext(ctx))
			client := c.newClient(ctx)
			fullName := owner + "/" + repo

			contribs, err := c.extract(ctx, client, owner, repo)
			if err != nil {
				if len(contribs) == 0 {
					return err
				}
				printWarning("Extraction stopped early: %v", err)
				printDetail("Continuing with %d contributors", len(contribs))
			}
			if len(contribs) == 0 {
				printInfo("No contributors found for %s", fullName)
				return nil
			}

			if enrich {
				interactive := !csvOutput && !jsonOutput && outPath == ""
				contribs, err = c.enrich(ctx, client, contribs, interactive)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						printWarning("Enrichment abandoned")
						return nil
					}
					return err
				}
			}

			if findEmails {
				c.findEmails(ctx, client, contribs, fullName)
			}

			if client.Quota().ShouldGuard() {
				remaining, _ := client.Quota().Remaining()
				printWarning("API quota low (%d left), further calls are held back", remaining)
			}

			if err := c.writeContributors(contribs, fullName, csvOutput, jsonOutput, outPath); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Processed %s", fullName))
			return nil
		},
	}

	cmd.Flags().BoolVar(&enrich, "enrich", false, "fetch public profile data per contributor")
	cmd.Flags().BoolVar(&findEmails, "emails", false, "discover contact emails (implies --enrich)")
	cmd.Flags().BoolVar(&csvOutput, "csv", false, "output CSV")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write output to a file (implies --csv unless --json)")

	return cmd
}

// extract runs pagination with a live spinner count.
func (c *CLI) extract(ctx context.Context, client *github.Client, owner, repo string) ([]github.Contributor, error) {
	spinner := newSpinnerWithContext(ctx, "Extracting contributors...")
	spinner.Start()

	contribs, err := client.Contributors(ctx, owner, repo, func(count, remaining int) {
		msg := fmt.Sprintf("Extracting contributors... %d found", count)
		if remaining >= 0 {
			msg += fmt.Sprintf(" · quota %d", remaining)
		}
		spinner.SetMessage(msg)
	})
	if err != nil {
		spinner.Stop()
		return contribs, err
	}

	spinner.StopWithSuccess(fmt.Sprintf("Extracted %s contributors", StyleNumber.Render(fmt.Sprintf("%d", len(contribs)))))
	return contribs, nil
}

// enrich runs the profile pipeline, interactively when the result is going
// to the terminal.
func (c *CLI) enrich(ctx context.Context, client *github.Client, contribs []github.Contributor, interactive bool) ([]github.Contributor, error) {
	ctrl := github.NewControl()

	if !interactive {
		spinner := newSpinnerWithContext(ctx, "Enriching contributors...")
		spinner.Start()
		result, err := client.Enrich(ctx, contribs, ctrl, func(done, total int, _ []github.Contributor) {
			spinner.SetMessage(fmt.Sprintf("Enriching contributors... %d/%d", done, total))
		})
		if err != nil {
			spinner.Stop()
			return result, err
		}
		spinner.StopWithSuccess("Enrichment complete")
		return result, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewEnrichModel(len(contribs), ctrl, cancel))
	go func() {
		result, err := client.Enrich(runCtx, contribs, ctrl, func(done, total int, _ []github.Contributor) {
			remaining := -1
			if r, ok := client.Quota().Remaining(); ok {
				remaining = r
			}
			p.Send(enrichProgressMsg{done: done, total: total, remaining: remaining})
		})
		p.Send(enrichDoneMsg{result: result, err: err})
	}()

	model, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("run progress view: %w", err)
	}
	m := model.(EnrichModel)
	if m.Quit {
		return nil, context.Canceled
	}
	if m.Err != nil {
		return m.Result, m.Err
	}
	printSuccess("Enrichment complete")
	return m.Result, nil
}

// findEmails runs email discovery per contributor, sequentially. Each lookup
// can cost several API calls, so a guard trip stops the sweep and leaves the
// remaining contributors untagged.
func (c *CLI) findEmails(ctx context.Context, client *github.Client, contribs []github.Contributor, repoHint string) {
	spinner := newSpinnerWithContext(ctx, "Finding emails...")
	spinner.Start()
	defer spinner.Stop()

	found := 0
	for i := range contribs {
		cb := &contribs[i]
		if cb.IsAnonymous || cb.Email != "" {
			continue
		}
		spinner.SetMessage(fmt.Sprintf("Finding emails... %s", cb.Login))

		email, err := client.FindEmail(ctx, cb.Login, repoHint)
		switch {
		case err != nil:
			cb.EmailStatus = github.EmailError
			if github.IsGuard(err) || github.IsRateLimited(err) || ctx.Err() != nil {
				spinner.Stop()
				printWarning("Email discovery stopped: %v", err)
				return
			}
		case email != "":
			cb.Email = email
			cb.EmailStatus = github.EmailFound
			found++
		default:
			cb.EmailStatus = github.EmailNotFound
		}
	}

	spinner.StopWithSuccess(fmt.Sprintf("Found %d emails", found))
}

// writeContributors renders the final output.
func (c *CLI) writeContributors(contribs []github.Contributor, fullName string, csvOutput, jsonOutput bool, outPath string) error {
	if outPath != "" && !jsonOutput {
		csvOutput = true
	}

	switch {
	case csvOutput:
		data := export.ContributorsCSV(contribs, fullName) + "\n"
		if outPath == "" {
			fmt.Print(data)
			return nil
		}
		if err := os.WriteFile(outPath, []byte(data), 0644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		printSuccess("Wrote %d rows", len(contribs))
		printFile(outPath)
		return nil

	case jsonOutput:
		data, err := json.MarshalIndent(contribs, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal contributors: %w", err)
		}
		data = append(data, '\n')
		if outPath == "" {
			os.Stdout.Write(data)
			return nil
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		printSuccess("Wrote %d contributors", len(contribs))
		printFile(outPath)
		return nil

	default:
		printContributorsSummary(contribs, fullName)
		return nil
	}
}

// printContributorsSummary prints the top of the list plus totals.
func printContributorsSummary(contribs []github.Contributor, fullName string) {
	const topN = 15

	printNewline()
	printKeyValue("Repository", fullName)
	printKeyValue("Contributors", fmt.Sprintf("%d", len(contribs)))

	anon, enriched := 0, 0
	for _, cb := range contribs {
		if cb.IsAnonymous {
			anon++
		}
		if cb.Enriched {
			enriched++
		}
	}
	if anon > 0 {
		printKeyValue("Anonymous", fmt.Sprintf("%d", anon))
	}
	if enriched > 0 {
		printKeyValue("Enriched", fmt.Sprintf("%d", enriched))
	}
	printNewline()

	for i, cb := range contribs {
		if i == topN {
			printDetail("… and %d more (use --csv or --json for the full list)", len(contribs)-topN)
			break
		}
		line := fmt.Sprintf("%4d  %s", cb.Contributions, StyleValue.Render(cb.Login))
		if cb.Name != "" {
			line += StyleDim.Render(" · " + cb.Name)
		}
		if cb.Email != "" {
			line += StyleDim.Render(" · " + cb.Email)
		}
		fmt.Println(line)
	}
	printNewline()
}
