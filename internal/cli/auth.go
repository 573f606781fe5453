package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/contriblens/contriblens/pkg/github"
	"github.com/contriblens/contriblens/pkg/session"
)

// authCommand creates the auth command group.
func (c *CLI) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with GitHub",
		Long:  "Manage GitHub authentication for higher rate limits and email discovery.",
	}

	cmd.AddCommand(c.authLoginCommand())
	cmd.AddCommand(c.authLogoutCommand())
	cmd.AddCommand(c.authWhoamiCommand())

	return cmd
}

func (c *CLI) authLoginCommand() *cobra.Command {
	var noBrowser bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to GitHub via device flow",
		Long: `Authenticate with GitHub using the OAuth device flow.

Opens your browser to github.com where you enter a one-time code. The
resulting token is stored locally and used by all commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLogin(cmd.Context(), noBrowser)
		},
	}

	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "print the verification URL instead of opening a browser")

	return cmd
}

func (c *CLI) runLogin(ctx context.Context, noBrowser bool) error {
	store, err := session.NewCLIStore()
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}

	if sess, err := store.GetSession(ctx); err == nil && sess != nil {
		printInfo("Already logged in as %s", StyleValue.Render(sess.Login()))
		printDetail("Run 'contriblens auth logout' first to switch accounts")
		return nil
	}

	oauth := github.NewOAuthClient(os.Getenv("GITHUB_CLIENT_ID"))

	code, err := oauth.RequestDeviceCode(ctx)
	if err != nil {
		return fmt.Errorf("request device code: %w", err)
	}

	printNewline()
	printInfo("First, copy your one-time code: %s", StyleTitle.Render(code.UserCode))
	printDetail("Then authorize at %s", StyleLink.Render(code.VerificationURI))
	printNewline()

	if !noBrowser {
		if err := openBrowser(code.VerificationURI); err != nil {
			c.Logger.Debug("could not open browser", "err", err)
		}
	}

	spinner := newSpinnerWithContext(ctx, "Waiting for authorization...")
	spinner.Start()

	token, err := oauth.PollForToken(ctx, code.DeviceCode, code.Interval)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			printWarning("Login cancelled")
			return nil
		}
		spinner.StopWithError("Authorization failed")
		return err
	}

	spinner.SetMessage("Fetching your profile...")
	user, err := github.NewClient(token.AccessToken).AuthenticatedUser(ctx)
	spinner.Stop()
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}

	sess, err := session.New(token.AccessToken, user, session.DefaultTTL)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if err := store.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	printSuccess("Logged in as %s", StyleValue.Render(user.Login))
	printDetail("Token stored in %s", store.Path())
	return nil
}

func (c *CLI) authLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored GitHub credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := session.NewCLIStore()
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}

			sess, err := store.GetSession(cmd.Context())
			if err != nil {
				return err
			}
			if sess == nil {
				printInfo("Not logged in")
				return nil
			}

			if err := store.DeleteSession(cmd.Context()); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			printSuccess("Logged out %s", StyleValue.Render(sess.Login()))
			return nil
		},
	}
}

func (c *CLI) authWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user and remaining quota",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			token := c.resolveToken(ctx)
			if token == "" {
				printInfo("Not logged in")
				printDetail("Run 'contriblens auth login', or set GITHUB_TOKEN")
				return nil
			}

			client := c.newClient(ctx)
			user, err := client.AuthenticatedUser(ctx)
			if err != nil {
				return fmt.Errorf("fetch profile: %w", err)
			}

			printKeyValue("Login", user.Login)
			if user.Name != "" {
				printKeyValue("Name", user.Name)
			}
			printKeyValue("Profile", user.HTMLURL)

			snap := client.Quota().Snapshot()
			if snap.Limit > 0 {
				printKeyValue("Quota", fmt.Sprintf("%d/%d remaining", snap.Remaining, snap.Limit))
				if !snap.ResetAt.IsZero() {
					printKeyValue("Resets", snap.ResetAt.Local().Format(time.Kitchen))
				}
			}
			return nil
		},
	}
}

// openBrowser opens the URL in the default browser.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
