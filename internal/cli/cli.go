package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sersmask/pkg/buildinfo"
	"github.com/matzehuels/sersmask/pkg/cache"
	"github.com/matzehuels/sersmask/pkg/catalog"
	"github.com/matzehuels/sersmask/pkg/observability"
	"github.com/matzehuels/sersmask/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "sersmask"

	// catalogFile is the default catalog database name under the data dir.
	catalogFile = "catalog.db"

	// redisURLEnv overrides the default Redis URL.
	redisURLEnv = "SERSMASK_REDIS_URL"
)

// Cache backends selectable with --cache.
const (
	cacheFile  = "file"
	cacheRedis = "redis"
	cacheNone  = "none"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the pipeline,
// cache and HTTP hooks log every stage.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "sersmask generates photomask layouts for SERS slot waveguides",
		Long:         `sersmask turns batches of slot-waveguide specs into GDSII photomask layouts, with SVG, PNG and diagram previews.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheOpts selects the artifact cache of a command.
type cacheOpts struct {
	backend  string
	redisURL string
	noCache  bool
}

func (o *cacheOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.backend, "cache", cacheFile, "cache backend: file, redis, none")
	cmd.Flags().StringVar(&o.redisURL, "redis-url", os.Getenv(redisURLEnv), "redis URL for --cache redis (env "+redisURLEnv+")")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
	_ = cmd.RegisterFlagCompletionFunc("cache", completeCacheBackends)
}

// newRunner creates a pipeline runner for CLI use. Keys are scoped by
// version so a new release never serves artifacts of an old one.
func (c *CLI) newRunner(ctx context.Context, opts cacheOpts) (*pipeline.Runner, error) {
	cc, err := newCache(ctx, opts)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

func newCache(ctx context.Context, opts cacheOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	switch opts.backend {
	case cacheNone:
		return cache.NewNullCache(), nil
	case cacheRedis:
		if opts.redisURL == "" {
			return nil, fmt.Errorf("--cache redis needs --redis-url or %s", redisURLEnv)
		}
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: opts.redisURL, Prefix: appName + ":"})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return rc, nil
	case cacheFile, "":
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q (want %s, %s or %s)", opts.backend, cacheFile, cacheRedis, cacheNone)
}

// openCatalog opens the catalog at path, or at the default location when
// path is empty.
func openCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		dir, err := dataDir()
		if err != nil {
			return nil, fmt.Errorf("get data dir: %w", err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		path = filepath.Join(dir, catalogFile)
	}
	return catalog.Open(path)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/sersmask/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// dataDir returns the data directory using XDG standard (~/.local/share/sersmask/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// splitList parses a comma-separated flag value into a slice.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if formats := splitList(s); len(formats) > 0 {
		return formats
	}
	return []string{pipeline.DefaultFormat}
}
