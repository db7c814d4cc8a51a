package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boxlayout/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local snapshot and render cache",
		Long: `Inspect or clear the file cache used by "render" and "serve".

Redis entries are not touched; they expire after cache.ttl.`,
	}
	cmd.PersistentFlags().String("cache-dir", "", "render cache directory")
	cmd.AddCommand(
		&cobra.Command{Use: "clear", Short: "Remove every cached entry", Args: cobra.NoArgs, RunE: c.runCacheClear},
		&cobra.Command{Use: "stat", Short: "Show entry count and size", Args: cobra.NoArgs, RunE: c.runCacheStat},
		&cobra.Command{Use: "path", Short: "Print the cache directory", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), c.cfg().Cache.Dir)
			return err
		}},
	)
	return cmd
}

// openFileCache opens the configured cache directory. It returns nil when
// the directory does not exist yet.
func (c *CLI) openFileCache() (*cache.FileCache, error) {
	dir := c.cfg().Cache.Dir
	if dir == "" {
		return nil, fmt.Errorf("no cache directory configured")
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) runCacheClear(cmd *cobra.Command, _ []string) error {
	fc, err := c.openFileCache()
	if err != nil {
		return err
	}
	if fc == nil {
		printInfo("Cache is empty")
		return nil
	}
	if err := fc.Clear(); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	printSuccess("Cache cleared")
	printDetail("Directory: %s", fc.Dir())
	if addr := c.cfg().Cache.RedisAddr; addr != "" {
		printWarning("Redis entries at %s expire on their own", addr)
	}
	return nil
}

func (c *CLI) runCacheStat(cmd *cobra.Command, _ []string) error {
	fc, err := c.openFileCache()
	if err != nil {
		return err
	}
	var entries int
	var size int64
	if fc != nil {
		if entries, size, err = fc.Stat(); err != nil {
			return fmt.Errorf("stat cache: %w", err)
		}
	}
	printKeyValue("Directory", c.cfg().Cache.Dir)
	printKeyValue("Entries", strconv.Itoa(entries))
	printKeyValue("Size", fmtBytes(size))
	return nil
}

func fmtBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
