// Copyright 2025 The TripServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the TripServe suggestion engine.

TripServe reads a travel query as it is being typed ("flight from Mumbai to
De") and answers with the detected intent, the next piece of information the
user should give and a ranked list of completions for it. Everything is rule
based and answers in well under a millisecond, so it can sit behind every
keystroke.

# Usage

Serve msgpack IPC on stdin and stdout (the default):

	tripserve

Serve HTTP instead, with debug logs:

	tripserve -http :8080 -d

Try queries interactively:

	tripserve -c -limit 5

Write the loaded place list as a msgpack snapshot and exit:

	tripserve -places places.yaml -export places.msgpack

# Configuration

Runtime configuration lives in a TOML file, created with defaults at
~/.config/tripserve/config.toml when missing:

	[engine]
	max_suggestions = 8
	intent_threshold = 0.75
	enable_cache = true
	cache_ttl_seconds = 300

	[cache]
	backend = "memory"   # or "redis"
	redis_addr = "localhost:6379"

	[lookup]
	places_file = ""     # .yaml or .msgpack, builtin list when empty
	rules_file = ""      # YAML overrides for the rule tables

	[http]
	addr = ":8080"
	allowed_origins = ["*"]
	fallback_url = ""
	fallback_timeout_ms = 3000

Every value can be overridden from the environment or a .env file with a
TRIPSERVE_ prefix, for example TRIPSERVE_CACHE_BACKEND=redis. Flags win over
both.

# Command Line Flags

	-version  Show current version
	-d        Enable debug logging
	-c        Run the interactive prompt
	-http     Serve HTTP on the given address
	-config   Path to a config file
	-places   Place list file (.yaml or .msgpack)
	-rules    Rule override file (.yaml)
	-limit    Suggestions per response
	-no-cache Disable the result cache
	-export   Write a msgpack place snapshot to the given path and exit
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/tripserve/internal/cli"
	"github.com/bastiangx/tripserve/internal/logger"
	"github.com/bastiangx/tripserve/pkg/cache"
	"github.com/bastiangx/tripserve/pkg/config"
	"github.com/bastiangx/tripserve/pkg/engine"
	"github.com/bastiangx/tripserve/pkg/fallback"
	"github.com/bastiangx/tripserve/pkg/lookup"
	"github.com/bastiangx/tripserve/pkg/rules"
	"github.com/bastiangx/tripserve/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

const (
	Version = "0.1.0"
	AppName = "tripserve"
	gh      = "https://github.com/bastiangx/tripserve"
)

type options struct {
	debug      bool
	cliMode    bool
	httpAddr   string
	configPath string
	placesFile string
	rulesFile  string
	limit      int
	noCache    bool
	exportPath string
}

// main parses flags and hands off to the selected mode.
func main() {
	var opts options
	showVersion := flag.Bool("version", false, "Show current version")
	flag.BoolVar(&opts.debug, "d", false, "Toggle debug mode")
	flag.BoolVar(&opts.cliMode, "c", false, "Run the interactive prompt")
	flag.StringVar(&opts.httpAddr, "http", "", "Serve HTTP on this address instead of IPC")
	flag.StringVar(&opts.configPath, "config", "", "Path to a config file")
	flag.StringVar(&opts.placesFile, "places", "", "Place list file (.yaml or .msgpack)")
	flag.StringVar(&opts.rulesFile, "rules", "", "Rule override file (.yaml)")
	flag.IntVar(&opts.limit, "limit", 0, "Number of suggestions to return (default from config)")
	flag.BoolVar(&opts.noCache, "no-cache", false, "Disable the result cache")
	flag.StringVar(&opts.exportPath, "export", "", "Write a msgpack place snapshot to this path and exit")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	level := log.WarnLevel
	if opts.debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	// stdout carries the IPC stream
	log.SetDefault(logger.Stderr(""))
	log.SetReportTimestamp(opts.debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		log.Error(err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, cfgPath, err := config.LoadConfigWithPriority(opts.configPath)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	applyFlags(cfg, opts)
	log.Debugf("Using config: %s", config.GetActiveConfigPath(cfgPath))

	places, err := loadPlaces(cfg.Lookup.PlacesFile)
	if err != nil {
		return err
	}
	if opts.exportPath != "" {
		return lookup.SaveSnapshot(opts.exportPath, places.Places())
	}

	compiled, err := loadRules(cfg)
	if err != nil {
		return err
	}

	store, closeStore, err := buildCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	eng := engine.New(compiled, places, store, engine.WithLimit(cfg.Engine.MaxSuggestions))

	switch {
	case opts.cliMode:
		log.SetReportTimestamp(false)
		return cli.NewInputHandler(eng, cfg.CLI.DefaultLimit, os.Stdin, os.Stdout).Start(ctx)
	case opts.httpAddr != "":
		return runHTTP(ctx, cfg, eng)
	default:
		return runIPC(ctx, eng, places.Len())
	}
}

// applyFlags lets flags override the file and environment.
func applyFlags(cfg *config.Config, opts options) {
	if opts.placesFile != "" {
		cfg.Lookup.PlacesFile = opts.placesFile
	}
	if opts.rulesFile != "" {
		cfg.Lookup.RulesFile = opts.rulesFile
	}
	if opts.limit > 0 {
		cfg.Engine.MaxSuggestions = opts.limit
		cfg.CLI.DefaultLimit = opts.limit
	}
	if opts.noCache {
		cfg.Engine.EnableCache = false
	}
	if opts.httpAddr != "" {
		cfg.HTTP.Addr = opts.httpAddr
	}
}

func loadPlaces(path string) (*lookup.Index, error) {
	if path == "" {
		return lookup.Default(), nil
	}
	places, err := lookup.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load places: %w", err)
	}
	return lookup.NewIndex(places), nil
}

func loadRules(cfg *config.Config) (*rules.Compiled, error) {
	r, err := rules.Load(cfg.Lookup.RulesFile)
	if err != nil {
		return nil, err
	}
	r.Threshold = cfg.Engine.IntentThreshold
	return r.Compile()
}

// buildCache returns a nil cache when caching is off so the engine computes
// every request.
func buildCache(ctx context.Context, cfg *config.Config) (cache.Cache, func(), error) {
	noop := func() {}
	if !cfg.Engine.EnableCache {
		log.Debug("Result cache disabled")
		return nil, noop, nil
	}

	switch cfg.Cache.Backend {
	case config.BackendRedis:
		client := redis.NewClient(cache.RedisOptions(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB))
		rc := cache.NewRedis(client, cfg.Cache.KeyPrefix, cfg.CacheTTL())
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, noop, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Cache.RedisAddr, err)
		}
		log.Debugf("Using redis cache at %s", cfg.Cache.RedisAddr)
		return rc, func() { _ = rc.Close() }, nil
	default:
		mc := cache.NewMemory(cfg.CacheTTL(), cache.WithMaxEntries(cfg.Engine.CacheMaxEntries))
		mc.StartSweeper(ctx, 0)
		return mc, noop, nil
	}
}

func runHTTP(ctx context.Context, cfg *config.Config, eng *engine.Engine) error {
	var fb *fallback.Client
	if cfg.HTTP.FallbackURL != "" {
		var err error
		fb, err = fallback.New(cfg.HTTP.FallbackURL, cfg.FallbackTimeout())
		if err != nil {
			return err
		}
	}
	srv := server.NewHTTPServer(eng, server.HTTPOptions{
		Addr:            cfg.HTTP.Addr,
		AllowedOrigins:  cfg.HTTP.AllowedOrigins,
		Version:         Version,
		GinMode:         cfg.HTTP.GinMode,
		Fallback:        fb,
		FallbackTimeout: cfg.FallbackTimeout(),
	})
	showStartupInfo("http "+cfg.HTTP.Addr, eng.Places().Len())
	return srv.Run(ctx)
}

// runIPC serves until stdin closes. A signal ends the process without
// waiting for the blocked read.
func runIPC(ctx context.Context, eng *engine.Engine, places int) error {
	log.Debug("spawning IPC")
	srv := server.NewServer(eng, Version)
	showStartupInfo("ipc", places)

	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		return nil
	}
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ TripServe ] Travel query suggestions as you type")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(mode string, places int) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	log.Infof("%s %s", AppName, Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("mode: %s", mode)
	log.Infof("places: %d", places)
	log.Info("status: ready")
}
