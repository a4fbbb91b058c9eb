package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/famomatic/waisitv/client"
	"github.com/famomatic/waisitv/internal/catalog"
	"github.com/famomatic/waisitv/internal/config"
	"github.com/famomatic/waisitv/internal/logging"
	"github.com/famomatic/waisitv/internal/playback"
)

// Commands.
const (
	CommandHome     = "home"
	CommandChannels = "channels"
	CommandGenre    = "genre"
	CommandCatalog  = "catalog"
	CommandResolve  = "resolve"
	CommandPlay     = "play"
)

var commands = []string{CommandHome, CommandChannels, CommandGenre, CommandCatalog, CommandResolve, CommandPlay}

// ErrUsage indicates malformed command-line input.
var ErrUsage = errors.New("usage error")

// Options holds all command-line options.
type Options struct {
	// Input
	Command string
	Args    []string

	// General
	Help       bool
	ConfigPath string // -c, --config

	// Selection
	Slug  string // -s, --slug
	Kind  string // -k, --kind
	URL   string // -u, --url
	Genre string // -g, --genre

	// Network
	ProxyURL string        // --proxy
	Timeout  time.Duration // --timeout
	Cache    string        // --cache

	// Playback
	Quality  int           // -q, --quality
	Duration time.Duration // -d, --duration
	Mute     bool          // --mute
	WarmUp   bool          // --warm-up

	// Output
	PrintJSON   bool   // -j, --json
	Verbose     bool   // -v, --verbose
	MetricsAddr string // --metrics-addr
}

// ParseFlags parses command-line arguments into Options. Flags may appear
// before or after the command.
func ParseFlags(args []string, stderr io.Writer) (Options, error) {
	opts := Options{}
	fs := flag.NewFlagSet("waisi", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Helper to bind multiple flags to one variable
	var configShort, configLong string
	var slugShort, slugLong string
	var kindShort, kindLong string
	var urlShort, urlLong string
	var genreShort, genreLong string
	var qualityShort, qualityLong int
	var durationShort, durationLong time.Duration
	var jsonShort, jsonLong bool
	var verboseShort, verboseLong bool

	fs.StringVar(&configShort, "c", "", "Configuration file (YAML)")
	fs.StringVar(&configLong, "config", "", "Configuration file (YAML)")

	fs.StringVar(&slugShort, "s", "", "Program or channel slug")
	fs.StringVar(&slugLong, "slug", "", "Program or channel slug")

	fs.StringVar(&kindShort, "k", "channel", "Content kind: channel, movie, vod or episode")
	fs.StringVar(&kindLong, "kind", "channel", "Content kind: channel, movie, vod or episode")

	fs.StringVar(&urlShort, "u", "", "Direct stream URL (skips resolution)")
	fs.StringVar(&urlLong, "url", "", "Direct stream URL (skips resolution)")

	fs.StringVar(&genreShort, "g", "", "Genre slug for the genre command")
	fs.StringVar(&genreLong, "genre", "", "Genre slug for the genre command")

	fs.IntVar(&qualityShort, "q", playback.AutoQuality, "Quality level index to pin (-1 is automatic)")
	fs.IntVar(&qualityLong, "quality", playback.AutoQuality, "Quality level index to pin (-1 is automatic)")

	fs.DurationVar(&durationShort, "d", 0, "Stop playing after this long (0 runs until interrupted)")
	fs.DurationVar(&durationLong, "duration", 0, "Stop playing after this long (0 runs until interrupted)")

	fs.BoolVar(&jsonShort, "j", false, "Print results as JSON")
	fs.BoolVar(&jsonLong, "json", false, "Print results as JSON")

	fs.BoolVar(&verboseShort, "v", false, "Print debug logs")
	fs.BoolVar(&verboseLong, "verbose", false, "Print debug logs")

	fs.BoolVar(&opts.Help, "h", false, "Show help")
	fs.StringVar(&opts.ProxyURL, "proxy", "", "Use the specified HTTP/HTTPS proxy")
	fs.DurationVar(&opts.Timeout, "timeout", 0, "Per-request timeout override")
	fs.StringVar(&opts.Cache, "cache", "", "Catalog cache backend override: memory, redis or none")
	fs.BoolVar(&opts.Mute, "mute", false, "Start playback muted")
	fs.BoolVar(&opts.WarmUp, "warm-up", false, "Prime the gateway before running the command")
	fs.StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9102)")

	// Custom usage
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: waisi [OPTIONS] COMMAND [ARG]\n\n")
		fmt.Fprintf(stderr, "Commands: %s\n\n", strings.Join(commands, ", "))
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	rest := fs.Args()
	if len(rest) > 0 {
		opts.Command = rest[0]
		if err := fs.Parse(rest[1:]); err != nil {
			return opts, fmt.Errorf("%w: %v", ErrUsage, err)
		}
		opts.Args = fs.Args()
	}

	// Consolidate aliases
	opts.ConfigPath = pickValue(configShort, configLong, "")
	opts.Slug = pickValue(slugShort, slugLong, "")
	opts.Kind = pickValue(kindShort, kindLong, "channel")
	opts.URL = pickValue(urlShort, urlLong, "")
	opts.Genre = pickValue(genreShort, genreLong, "")
	opts.Quality = pickInt(qualityShort, qualityLong, playback.AutoQuality)
	opts.Duration = durationShort
	if durationLong != 0 {
		opts.Duration = durationLong
	}
	opts.PrintJSON = jsonShort || jsonLong
	opts.Verbose = verboseShort || verboseLong

	if opts.Help {
		fs.Usage()
		return opts, nil
	}
	return opts, opts.validate()
}

func (o Options) validate() error {
	switch o.Command {
	case CommandHome, CommandChannels, CommandCatalog:
	case CommandGenre:
		if o.GenreSlug() == "" {
			return fmt.Errorf("%w: genre requires -genre or an argument", ErrUsage)
		}
	case CommandResolve, CommandPlay:
		if _, err := o.Descriptor(); err != nil {
			return fmt.Errorf("%w: %s requires -slug, -url or an argument", ErrUsage, o.Command)
		}
	case "":
		return fmt.Errorf("%w: missing command", ErrUsage)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, o.Command)
	}
	if o.Duration < 0 {
		return fmt.Errorf("%w: negative duration", ErrUsage)
	}
	return nil
}

// GenreSlug returns -genre or the first positional argument.
func (o Options) GenreSlug() string {
	if o.Genre != "" {
		return o.Genre
	}
	if len(o.Args) > 0 {
		return strings.TrimSpace(o.Args[0])
	}
	return ""
}

// Descriptor returns what resolve and play should target. -url wins over
// -slug, which wins over the positional argument.
func (o Options) Descriptor() (client.Descriptor, error) {
	switch {
	case o.URL != "":
		return client.ParseDescriptor(o.URL, "")
	case o.Slug != "":
		return client.ParseDescriptor(o.Slug, o.Kind)
	case len(o.Args) > 0:
		return client.ParseDescriptor(o.Args[0], o.Kind)
	}
	return client.Descriptor{}, client.ErrInvalidInput
}

func pickValue(v1, v2, def string) string {
	if v1 != def {
		return v1
	}
	if v2 != def {
		return v2
	}
	return def
}

func pickInt(v1, v2, def int) int {
	if v1 != def {
		return v1
	}
	return v2
}

// ApplyOverrides copies command-line overrides onto the loaded
// configuration.
func ApplyOverrides(opts Options, cfg *config.Config) {
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	if opts.MetricsAddr != "" {
		cfg.Metrics.Addr = opts.MetricsAddr
	}
	if opts.Cache != "" {
		cfg.Cache.Backend = opts.Cache
	}
	if opts.Timeout > 0 {
		cfg.Gateway.Timeout = opts.Timeout
		cfg.Playback.ManifestTimeout = opts.Timeout
	}
}

// ToClientConfig converts the loaded configuration and Options to
// client.Config. A redis cache is connected here; the returned client
// closes it.
func ToClientConfig(ctx context.Context, opts Options, cfg *config.Config, logger zerolog.Logger) (client.Config, error) {
	out := client.Config{
		ProxyURL:             opts.ProxyURL,
		RequestTimeout:       cfg.Gateway.Timeout,
		APIv5Base:            cfg.Gateway.APIv5Base,
		APIv3Base:            cfg.Gateway.APIv3Base,
		MediaBase:            cfg.Gateway.MediaBase,
		Platform:             cfg.Gateway.Platform,
		ProjectID:            cfg.Gateway.ProjectID,
		UserAgent:            cfg.Gateway.UserAgent,
		MaxRetries:           cfg.Gateway.MaxRetries,
		RetryWaitMin:         cfg.Gateway.RetryWaitMin,
		RetryWaitMax:         cfg.Gateway.RetryWaitMax,
		RequestsPerSecond:    cfg.Gateway.RequestsPerSecond,
		Burst:                cfg.Gateway.Burst,
		CacheTTL:             cfg.Cache.TTL,
		MaxNetworkRecoveries: cfg.Playback.MaxNetworkRecoveries,
		ControlsTimeout:      cfg.Playback.ControlsTimeout,
		ManifestRetries:      cfg.Playback.ManifestRetries,
		ManifestTimeout:      cfg.Playback.ManifestTimeout,
		RefreshInterval:      cfg.Playback.RefreshInterval,
		Logger:               logging.Warner{Logger: logger},
	}
	if out.MaxRetries == 0 {
		out.MaxRetries = -1
	}
	for _, p := range cfg.Premium {
		out.Premium = append(out.Premium, catalog.Item{
			ID:   p.ID,
			Name: p.Name,
			Logo: p.Logo,
			URL:  p.URL,
			Kind: catalog.KindChannel,
		})
	}

	switch cfg.Cache.Backend {
	case config.CacheMemory:
		out.CatalogCache = catalog.NewMemoryCache(cfg.Cache.MaxEntries)
	case config.CacheRedis:
		cache, err := catalog.NewRedisCache(ctx, catalog.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		}, logging.WithComponent(logger, "cache"))
		if err != nil {
			return out, fmt.Errorf("failed to connect catalog cache: %w", err)
		}
		out.CatalogCache = cache
	case config.CacheNone, "":
	default:
		return out, fmt.Errorf("%w: unknown cache backend %q", ErrUsage, cfg.Cache.Backend)
	}
	return out, nil
}
