package main

import (
	"flag"
	"os"
	"runtime/pprof"

	"github.com/rs/zerolog/log"

	"github.com/hailam/checkersplay/internal/config"
	"github.com/hailam/checkersplay/internal/engine"
	"github.com/hailam/checkersplay/internal/protocol"
	"github.com/hailam/checkersplay/internal/storage"
	"github.com/hailam/checkersplay/internal/training"
)

var (
	configPath = flag.String("config", "", "config file (default: XDG config dir)")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	logLevel   = flag.String("log-level", "", "override the configured log level")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
		if err := cfg.Validate(); err != nil {
			log.Fatal().Err(err).Msg("bad -log-level")
		}
	}
	// stdout carries the protocol
	cfg.SetupLogging(os.Stderr)

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	eng := engine.NewEngine(cfg.EngineOptions())

	var collector *training.Collector
	if cfg.Training.Enabled {
		collector = training.NewCollector(cfg.Training.Capacity)
		eng.SetRecorder(collector)
	}

	handler, err := protocol.New(eng, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not start protocol")
	}
	if err := handler.Run(os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("reading commands")
	}

	if collector != nil {
		flushSamples(cfg, collector)
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.Load(*configPath)
	}
	return config.InitConfig()
}

// flushSamples stores the samples gathered during the session.
func flushSamples(cfg *config.Config, collector *training.Collector) {
	samples := collector.Drain()
	if len(samples) == 0 {
		return
	}
	store, err := storage.OpenDir(cfg.Training.StoreDir)
	if err != nil {
		log.Error().Err(err).Msg("could not open sample store")
		return
	}
	defer store.Close()

	if err := store.SaveSamples(samples); err != nil {
		log.Error().Err(err).Int("samples", len(samples)).Msg("could not save samples")
	}
}
