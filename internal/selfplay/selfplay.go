// Package selfplay plays bot-vs-bot games to generate training samples and
// compare strength profiles.
package selfplay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/checkersplay/internal/board"
	"github.com/hailam/checkersplay/internal/engine"
	"github.com/hailam/checkersplay/internal/game"
	"github.com/hailam/checkersplay/internal/storage"
)

// DefaultMaxPlies ends a game as a draw when neither side has won.
const DefaultMaxPlies = 200

var ErrInvalidOptions = errors.New("invalid self-play options")

// Bot is a named set of search limits.
type Bot struct {
	Name   string
	Limits engine.SearchLimits
}

// Options configures a series of games.
type Options struct {
	Size     int
	MaxPlies int
	A, B     Bot
	Engine   engine.Options

	// Recorder, when set, receives samples from every game's final passes.
	Recorder engine.SampleRecorder
}

// ResultSink receives finished games, e.g. a *storage.Storage.
type ResultSink interface {
	RecordGame(storage.GameResult) error
}

// Game is one finished game.
type Game struct {
	ID     string
	Moves  []board.Move
	Result storage.GameResult
}

func (o *Options) validate() error {
	if _, err := board.GeometryFor(o.Size); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if o.MaxPlies < 0 {
		return fmt.Errorf("%w: negative ply cap", ErrInvalidOptions)
	}
	if o.MaxPlies == 0 {
		o.MaxPlies = DefaultMaxPlies
	}
	return nil
}

// seedFor derives a per-game blunder seed. A zero seed stays random.
func seedFor(seed uint64, index int) uint64 {
	if seed == 0 {
		return 0
	}
	return seed + uint64(index)*0x9e3779b97f4a7c15
}

// Play runs one game between opts.A (moving first) and opts.B. index
// selects the game's blunder seed.
func Play(ctx context.Context, opts Options, index int) (Game, error) {
	if err := opts.validate(); err != nil {
		return Game{}, err
	}

	engOpts := opts.Engine
	engOpts.Seed = seedFor(engOpts.Seed, index)
	eng := engine.NewEngine(engOpts)
	eng.SetRecorder(opts.Recorder)

	s, err := game.NewSession(opts.Size)
	if err != nil {
		return Game{}, err
	}

	start := time.Now()
	for !s.IsOver() && s.Plies() < opts.MaxPlies {
		if err := ctx.Err(); err != nil {
			return Game{}, err
		}
		bot := opts.A
		if s.Turn() == board.SideB {
			bot = opts.B
		}

		r, err := eng.Search(s.Position(), s.Turn(), bot.Limits)
		if err != nil {
			return Game{}, fmt.Errorf("ply %d (%s): %w", s.Plies(), bot.Name, err)
		}
		if err := s.PlayMove(r.Move); err != nil {
			return Game{}, fmt.Errorf("ply %d (%s): %w", s.Plies(), bot.Name, err)
		}
	}

	g := Game{
		ID:    s.ID,
		Moves: s.History(),
		Result: storage.GameResult{
			BotA:     opts.A.Name,
			BotB:     opts.B.Name,
			Plies:    s.Plies(),
			Duration: time.Since(start),
		},
	}
	if winner, over := s.Winner(); over {
		g.Result.Winner = winner
	} else {
		g.Result.Draw = true
	}
	return g, nil
}

// RunMany plays n games with at most parallel running at once. Finished
// games go to sink when it is non-nil. Results are in game order.
func RunMany(ctx context.Context, opts Options, n, parallel int, sink ResultSink) ([]Game, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative game count", ErrInvalidOptions)
	}
	if parallel < 1 {
		parallel = 1
	}

	games := make([]Game, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			played, err := Play(ctx, opts, i)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			games[i] = played

			r := played.Result
			event := log.Info().
				Int("game", i).
				Str("id", played.ID).
				Int("plies", r.Plies).
				Dur("duration", r.Duration)
			if r.Draw {
				event.Msg("game drawn")
			} else {
				event.Str("winner", r.Winner.String()).Msg("game won")
			}

			if sink != nil {
				return sink.RecordGame(r)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return games, nil
}
