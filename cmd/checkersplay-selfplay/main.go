package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"

	"github.com/hailam/checkersplay/internal/board"
	"github.com/hailam/checkersplay/internal/config"
	"github.com/hailam/checkersplay/internal/selfplay"
	"github.com/hailam/checkersplay/internal/storage"
	"github.com/hailam/checkersplay/internal/training"
)

var (
	configPath = flag.String("config", "", "config file (default: XDG config dir)")
	games      = flag.Int("games", 10, "number of games")
	parallel   = flag.Int("parallel", 2, "games played at once")
	botA       = flag.String("a", "hard", "bot profile moving first")
	botB       = flag.String("b", "medium", "bot profile moving second")
	size       = flag.Int("size", 0, "board size (default: from config)")
	maxPlies   = flag.Int("max-plies", selfplay.DefaultMaxPlies, "ply cap before a game is drawn")
)

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.InitConfig()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	cfg.SetupLogging(os.Stderr)

	opts := selfplay.Options{
		Size:     cfg.Board.Size,
		MaxPlies: *maxPlies,
		Engine:   cfg.EngineOptions(),
	}
	if *size != 0 {
		opts.Size = *size
	}
	for _, side := range []struct {
		name string
		bot  *selfplay.Bot
	}{{*botA, &opts.A}, {*botB, &opts.B}} {
		limits, err := cfg.Bot(side.name)
		if err != nil {
			log.Fatal().Err(err).Strs("bots", cfg.BotNames()).Msg("unknown bot")
		}
		*side.bot = selfplay.Bot{Name: side.name, Limits: limits}
	}

	store, err := storage.OpenDir(cfg.Training.StoreDir)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open store")
	}
	defer store.Close()

	collector := training.NewCollector(cfg.Training.Capacity)
	opts.Recorder = collector

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info().
		Int("games", *games).
		Int("parallel", *parallel).
		Str("a", opts.A.Name).
		Str("b", opts.B.Name).
		Int("size", opts.Size).
		Msg("self-play started")

	_, runErr := selfplay.RunMany(ctx, opts, *games, *parallel, store)
	if err := store.SaveSamples(collector.Drain()); err != nil {
		log.Error().Err(err).Msg("could not save samples")
	}
	if runErr != nil {
		log.Error().Err(runErr).Msg("self-play stopped")
	}

	stats, err := store.LoadStats()
	if err != nil {
		log.Error().Err(err).Msg("could not load stats")
		return
	}
	log.Info().
		Int("played", stats.GamesPlayed).
		Int("wins_a", stats.WinsA).
		Int("wins_b", stats.WinsB).
		Int("draws", stats.Draws).
		Float64("win_rate_a", stats.WinRate(board.SideA)).
		Msg("totals")
}
