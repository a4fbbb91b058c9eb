package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/famomatic/waisitv/client"
	"github.com/famomatic/waisitv/internal/cli"
	"github.com/famomatic/waisitv/internal/config"
	"github.com/famomatic/waisitv/internal/logging"
	"github.com/famomatic/waisitv/internal/metrics"
	"github.com/famomatic/waisitv/internal/playback"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := cli.ParseFlags(args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if opts.Help {
		return exitOK
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return exitError
	}
	cli.ApplyOverrides(opts, cfg)

	logger, logOutput, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		fmt.Fprintf(stderr, "Error opening log output: %v\n", err)
		return exitError
	}
	defer logOutput.Close()

	if cfg.Metrics.Addr != "" {
		srv := metrics.NewServer(cfg.Metrics.Addr, logging.WithComponent(logger, "metrics"))
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	clientCfg, err := cli.ToClientConfig(ctx, opts, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	c := client.New(clientCfg)
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warn().Err(err).Msg("client close failed")
		}
	}()

	if opts.WarmUp {
		c.WarmUp(ctx)
	}

	out := printer{w: stdout, json: opts.PrintJSON}
	switch opts.Command {
	case cli.CommandHome:
		return out.home(c.Home(ctx))
	case cli.CommandChannels:
		return out.items(c.LiveChannels(ctx))
	case cli.CommandGenre:
		items, err := c.GenrePrograms(ctx, opts.GenreSlug())
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		return out.items(items)
	case cli.CommandCatalog:
		return out.catalog(c.Catalog(ctx))
	case cli.CommandResolve:
		d, _ := opts.Descriptor()
		url, err := c.ResolveStreamURL(ctx, d)
		if err != nil {
			fmt.Fprintf(stderr, "Error resolving stream: %v (%s)\n", err, client.ClassifyError(err))
			return exitError
		}
		return out.url(url)
	case cli.CommandPlay:
		return play(ctx, c, opts, out, logger)
	}
	fmt.Fprintf(stderr, "unknown command %q\n", opts.Command)
	return exitUsage
}

// forwardStates hands every snapshot to states in order, giving up once
// ctx ends so a finished play loop never blocks the player.
func forwardStates(ctx context.Context, states chan<- client.PlayerState) func(client.PlayerState) {
	return func(s client.PlayerState) {
		select {
		case states <- s:
		case <-ctx.Done():
		}
	}
}

// play warms the gateway up as a selection does, then runs one session
// until it fails, the duration elapses or ctx ends.
func play(ctx context.Context, c *client.Client, opts cli.Options, out printer, logger zerolog.Logger) int {
	d, _ := opts.Descriptor()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	states := make(chan client.PlayerState, 16)
	player, err := c.NewPlayer(client.PlayerOptions{OnStateChange: forwardStates(ctx, states)})
	if err != nil {
		logger.Error().Err(err).Msg("create player")
		return exitError
	}
	if !opts.WarmUp {
		c.WarmUp(ctx)
	}
	if err := player.Start(ctx, d); err != nil {
		logger.Error().Err(err).Msg("start playback")
		return exitError
	}
	if opts.Mute {
		player.ToggleMute()
	}

	var stop <-chan time.Time
	if opts.Duration > 0 {
		timer := time.NewTimer(opts.Duration)
		defer timer.Stop()
		stop = timer.C
	}

	pinned := opts.Quality < 0
	last := ""
	for {
		select {
		case <-ctx.Done():
			return exitOK
		case <-stop:
			return exitOK
		case s := <-states:
			if line := formatState(s); line != last {
				last = line
				out.state(s, line)
			}
			if !pinned && len(s.Levels) > opts.Quality {
				pinned = true
				if err := player.SetQuality(opts.Quality); err != nil {
					logger.Warn().Err(err).Int("quality", opts.Quality).Msg("pin quality")
				}
			}
			if s.Phase == playback.PhaseError {
				return exitError
			}
		}
	}
}

type printer struct {
	w    io.Writer
	json bool
}

func (p printer) encode(v any) int {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return exitError
	}
	return exitOK
}

func (p printer) items(items []client.Item) int {
	if p.json {
		return p.encode(items)
	}
	for _, it := range items {
		fmt.Fprintln(p.w, formatItem(it))
	}
	return exitOK
}

func (p printer) home(h client.HomeSections) int {
	if p.json {
		return p.encode(h)
	}
	for _, s := range h.Slider {
		fmt.Fprintln(p.w, formatItem(s.Item()))
	}
	fmt.Fprintf(p.w, "[home] slider=%d chunks=%d\n", len(h.Slider), len(h.Chunks))
	return exitOK
}

func (p printer) catalog(cat client.Catalog) int {
	if p.json {
		return p.encode(cat)
	}
	p.section("slider", sliderItems(cat.Slider))
	for _, s := range cat.Sections {
		p.section(s.Title, s.Items)
	}
	p.section("movies", cat.Movies)
	p.section("sports", cat.Sports)
	p.section("channels", cat.Channels)
	p.section("premium", cat.Premium)
	return exitOK
}

func (p printer) section(title string, items []client.Item) {
	fmt.Fprintf(p.w, "== %s (%d)\n", title, len(items))
	for _, it := range items {
		fmt.Fprintln(p.w, formatItem(it))
	}
}

func (p printer) url(url string) int {
	if p.json {
		return p.encode(map[string]string{"url": url})
	}
	fmt.Fprintln(p.w, url)
	return exitOK
}

func (p printer) state(s client.PlayerState, line string) {
	if p.json {
		_ = json.NewEncoder(p.w).Encode(s)
		return
	}
	fmt.Fprintln(p.w, line)
}

func sliderItems(in []client.SliderItem) []client.Item {
	out := make([]client.Item, 0, len(in))
	for _, s := range in {
		out = append(out, s.Item())
	}
	return out
}

func formatItem(it client.Item) string {
	target := it.Slug
	if it.URL != "" {
		target = it.URL
	}
	return fmt.Sprintf("%s\t%s\t%s\t%s", it.ID, it.Kind, it.Name, target)
}

func formatState(s client.PlayerState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[play] %s", s.Phase)
	if len(s.Levels) > 0 {
		labels := make([]string, 0, len(s.Levels))
		for _, l := range s.Levels {
			labels = append(labels, l.Label)
		}
		fmt.Fprintf(&b, " levels=%s", strings.Join(labels, ","))
	}
	if s.CurrentQuality == playback.AutoQuality {
		b.WriteString(" quality=auto")
	} else {
		fmt.Fprintf(&b, " quality=%d", s.CurrentQuality)
	}
	if s.IsMuted {
		b.WriteString(" muted")
	}
	if s.Error != nil {
		fmt.Fprintf(&b, " error=%q", s.Error.Reason())
	}
	return b.String()
}
