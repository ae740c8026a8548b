// Package protocol implements a line-based text protocol for driving the
// engine from a host process.
package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/checkersplay/internal/board"
	"github.com/hailam/checkersplay/internal/config"
	"github.com/hailam/checkersplay/internal/engine"
	"github.com/hailam/checkersplay/internal/game"
)

// defaultBot is used by "go" when no bot or depth is given.
const defaultBot = "medium"

var (
	errUsage       = errors.New("usage")
	errUnknownGame = errors.New("unknown game")
)

// Handler holds the host's games and the engine that plays the current one.
type Handler struct {
	cfg     *config.Config
	engine  *engine.Engine
	games   *game.Manager
	session *game.Session
	out     io.Writer
}

// New creates a protocol handler for a fresh game on the configured board.
func New(eng *engine.Engine, cfg *config.Config) (*Handler, error) {
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}
	games := game.NewManager()
	s, err := games.NewGame(cfg.Board.Size)
	if err != nil {
		return nil, err
	}
	return &Handler{cfg: cfg, engine: eng, games: games, session: s, out: io.Discard}, nil
}

// Session returns the current game.
func (h *Handler) Session() *game.Session {
	return h.session
}

// Run reads commands from r until "quit" or end of input, writing replies
// to w.
func (h *Handler) Run(r io.Reader, w io.Writer) error {
	h.out = w
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		if cmd == "quit" {
			return nil
		}
		if err := h.dispatch(cmd, args); err != nil {
			log.Debug().Str("command", line).Err(err).Msg("command rejected")
			h.printf("error %v", err)
		}
	}
	return scanner.Err()
}

func (h *Handler) dispatch(cmd string, args []string) error {
	switch cmd {
	case "isready":
		h.printf("readyok")
	case "newgame":
		return h.handleNewGame(args)
	case "position":
		return h.handlePosition(args)
	case "moves":
		h.handleMoves()
	case "play":
		return h.handlePlay(args)
	case "undo":
		m, err := h.session.Undo()
		if err != nil {
			return err
		}
		h.printf("undone %s", m)
	case "select":
		return h.handleSelect(args)
	case "game":
		return h.handleGame(args)
	case "go":
		return h.handleGo(args)
	case "eval":
		h.handleEval()
	// Debug commands
	case "d":
		pos := h.session.Position()
		h.printf("%s", strings.TrimRight(pos.String(), "\n"))
		h.printf("fen %s", pos.ToFEN())
	case "perft":
		return h.handlePerft(args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (h *Handler) printf(format string, args ...interface{}) {
	fmt.Fprintf(h.out, format+"\n", args...)
}

// handleNewGame starts another game on the configured or given board size.
// Earlier games stay registered and can be resumed with "game <id>".
func (h *Handler) handleNewGame(args []string) error {
	size := h.cfg.Board.Size
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("board size %q: %w", args[0], err)
		}
		size = n
	}
	s, err := h.games.NewGame(size)
	if err != nil {
		return err
	}
	h.engine.Clear()
	h.session = s
	return nil
}

// handleGame prints the current game, or switches to a registered one.
func (h *Handler) handleGame(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("game: %w: game [<id>]", errUsage)
	}
	if len(args) == 1 {
		s, ok := h.games.Get(args[0])
		if !ok {
			return fmt.Errorf("game %s: %w", args[0], errUnknownGame)
		}
		h.session = s
	}
	h.printf("game %s size %d plies %d", h.session.ID, h.session.Size(), h.session.Plies())
	return nil
}

// handleSelect marks a piece and prints where it can move. Without an
// argument the selection is cleared.
func (h *Handler) handleSelect(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("select: %w: select [<square>]", errUsage)
	}
	if len(args) == 0 {
		h.session.Deselect()
		h.printf("selected none")
		return nil
	}

	sq, err := board.ParseSquare(args[0], h.session.Size())
	if err != nil {
		return err
	}
	if err := h.session.Select(sq); err != nil {
		return err
	}
	targets := h.session.Targets()
	parts := make([]string, len(targets))
	for i, to := range targets {
		parts[i] = strconv.Itoa(int(to))
	}
	h.printf("targets %s", strings.Join(parts, " "))
	return nil
}

// handlePosition sets up a position. Formats:
//   - position startpos [moves 17-24 ...]
//   - position <fen> [moves 17-24 ...]
//
// The current game is kept if anything fails.
func (h *Handler) handlePosition(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("position: %w: position startpos|<fen> [moves ...]", errUsage)
	}

	end := len(args)
	for i, arg := range args {
		if arg == "moves" {
			end = i
			break
		}
	}

	var s *game.Session
	var err error
	if args[0] == "startpos" {
		s, err = game.NewSession(h.session.Size())
	} else {
		var pos *board.Position
		pos, err = board.ParseFEN(strings.Join(args[:end], " "))
		if err == nil {
			s, err = game.NewSessionFrom(pos)
		}
	}
	if err != nil {
		return err
	}

	if end < len(args) {
		for _, text := range args[end+1:] {
			m, err := s.ParseMove(text)
			if err != nil {
				return err
			}
			if err := s.PlayMove(m); err != nil {
				return err
			}
		}
	}
	h.games.Remove(h.session.ID)
	h.games.Add(s)
	h.session = s
	return nil
}

func (h *Handler) handleMoves() {
	legal := h.session.LegalMoves()
	parts := make([]string, 0, legal.Len())
	for _, m := range legal.Slice() {
		parts = append(parts, m.String())
	}
	h.printf("moves %s", strings.Join(parts, " "))
}

// handlePlay accepts "play <from> <to>" or "play <move>".
func (h *Handler) handlePlay(args []string) error {
	var m board.Move
	var err error
	switch len(args) {
	case 1:
		m, err = h.session.ParseMove(args[0])
		if err == nil {
			err = h.session.PlayMove(m)
		}
	case 2:
		var from, to board.Square
		if from, err = board.ParseSquare(args[0], h.session.Size()); err != nil {
			return err
		}
		if to, err = board.ParseSquare(args[1], h.session.Size()); err != nil {
			return err
		}
		m, err = h.session.Play(from, to)
	default:
		return fmt.Errorf("play: %w: play <from> <to> | play <move>", errUsage)
	}
	if err != nil {
		return err
	}

	h.printf("played %s", m)
	if winner, over := h.session.Winner(); over {
		h.printf("gameover winner %s", winner)
	}
	return nil
}

// parseGoOptions converts "go" arguments into search limits.
func (h *Handler) parseGoOptions(args []string) (engine.SearchLimits, error) {
	limits, err := h.cfg.Bot(defaultBot)
	if err != nil {
		limits = engine.DifficultySettings[engine.Medium]
	}

	for i := 0; i < len(args); i++ {
		if i+1 >= len(args) {
			return limits, fmt.Errorf("go: %s needs a value", args[i])
		}
		value := args[i+1]
		switch args[i] {
		case "depth":
			if limits.Depth, err = strconv.Atoi(value); err != nil {
				return limits, fmt.Errorf("go: depth %q: %w", value, err)
			}
		case "blunder":
			if limits.Blunder, err = strconv.ParseFloat(value, 64); err != nil {
				return limits, fmt.Errorf("go: blunder %q: %w", value, err)
			}
		case "movetime":
			ms, err := strconv.Atoi(value)
			if err != nil {
				return limits, fmt.Errorf("go: movetime %q: %w", value, err)
			}
			limits.MoveTime = time.Duration(ms) * time.Millisecond
		case "bot":
			if limits, err = h.cfg.Bot(value); err != nil {
				return limits, err
			}
		default:
			return limits, fmt.Errorf("go: unknown option %q", args[i])
		}
		i++
	}
	return limits, nil
}

// handleGo searches the current position and reports the move to play.
// The move is not applied; the host replies with "play".
func (h *Handler) handleGo(args []string) error {
	limits, err := h.parseGoOptions(args)
	if err != nil {
		return err
	}

	h.engine.OnInfo = h.sendInfo
	defer func() { h.engine.OnInfo = nil }()

	pos := h.session.Position()
	r, err := h.engine.Search(pos, pos.Turn, limits)
	if errors.Is(err, engine.ErrNoLegalMoves) {
		h.printf("bestmove 0000")
		return nil
	}
	if err != nil {
		return err
	}

	if r.Blundered {
		h.printf("bestmove %s blunder %s", r.Move, r.BestMove)
		return nil
	}
	h.printf("bestmove %s", r.Move)
	return nil
}

// sendInfo outputs one search iteration.
func (h *Handler) sendInfo(info engine.SearchInfo) {
	var parts []string

	parts = append(parts, "phase "+info.Phase.String())
	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))

	switch {
	case engine.IsWinScore(info.Score) && info.Score > 0:
		parts = append(parts, fmt.Sprintf("score win %d", engine.WinScore-info.Score))
	case engine.IsWinScore(info.Score):
		parts = append(parts, fmt.Sprintf("score loss %d", engine.WinScore+info.Score))
	default:
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))

	if info.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.HashFull))
	}

	if len(info.PV) > 0 {
		pv := make([]string, len(info.PV))
		for i, m := range info.PV {
			pv[i] = m.String()
		}
		parts = append(parts, "pv "+strings.Join(pv, " "))
	}

	h.printf("info %s", strings.Join(parts, " "))
}

// handleEval prints the static evaluation for the side to move, with its
// components from SideA's point of view.
func (h *Handler) handleEval() {
	pos := h.session.Position()
	score := h.engine.Evaluate(pos)
	t := h.engine.Evaluator().Terms(pos)
	h.printf("eval %d (%s) %s material %d mobility %d captures %d promotion %d endgame %d",
		score, engine.ScoreToString(score), engine.OutlookFor(score),
		t.Material, t.Mobility, t.Captures, t.Promotion, t.Endgame)
}

// handlePerft counts leaf nodes of the current position.
func (h *Handler) handlePerft(args []string) error {
	depth := 3
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("perft: bad depth %q", args[0])
		}
		depth = n
	}

	start := time.Now()
	nodes := h.engine.Perft(h.session.Position(), depth)
	elapsed := time.Since(start)

	h.printf("nodes %d time %d", nodes, elapsed.Milliseconds())
	return nil
}
