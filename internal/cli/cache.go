package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contriblens/contriblens/pkg/cache"
)

// cacheCommand creates the cache command group.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached API responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Backend == "redis" {
				// Redis entries expire on their own; a shared instance should
				// not be flushed wholesale from here.
				printWarning("The redis backend relies on TTL expiry; nothing to clear locally")
				return nil
			}

			fc, err := cache.NewFileCache(c.cacheDir())
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			if err := fc.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cache cleared")
			printDetail("%s", fc.Dir())
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.cacheDir())
			return nil
		},
	}
}
