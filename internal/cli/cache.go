package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/cache"
)

// cacheCommand creates the cache management command. It manages the local
// file cache only; Redis entries expire on their own.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local layout cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cacheStatsCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

func openFileCache() (*cache.FileCache, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	return cache.NewFileCache(dir)
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var keyType string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached views and renderings",
		Long: `Remove cached views and renderings.

With --type view only computed layouts are removed, with --type artifact only
DOT, SVG and PNG renderings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch keyType {
			case "", cache.KeyTypeView, cache.KeyTypeArtifact:
			default:
				return fmt.Errorf("invalid --type %q (want %s or %s)", keyType, cache.KeyTypeView, cache.KeyTypeArtifact)
			}

			fc, err := openFileCache()
			if err != nil {
				return err
			}
			stats, err := fc.Stats()
			if err != nil {
				return fmt.Errorf("read cache: %w", err)
			}

			count := 0
			for t, ts := range stats {
				if keyType == "" || t == keyType {
					count += ts.Entries
				}
			}
			w := cmd.OutOrStdout()
			if count == 0 {
				printInfo(w, "Nothing cached")
				return nil
			}

			if err := fc.Clear(keyType); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			c.Logger.Debug("cleared cache", "dir", fc.Dir(), "type", keyType, "entries", count)
			printInfo(w, "Cleared %s from %s", plural(count, "entry"), fc.Dir())
			return nil
		},
	}
	cmd.Flags().StringVar(&keyType, "type", "", "only clear entries of this type: view or artifact")
	return cmd
}

// cacheStatsCommand creates the "cache stats" subcommand.
func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count cached views and renderings",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := openFileCache()
			if err != nil {
				return err
			}
			stats, err := fc.Stats()
			if err != nil {
				return fmt.Errorf("read cache: %w", err)
			}
			printCacheStats(cmd.OutOrStdout(), fc.Dir(), stats)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
