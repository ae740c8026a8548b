package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"

	"github.com/hailam/checkersplay/internal/board"
	"github.com/hailam/checkersplay/internal/training"
)

// Storage keys
const (
	keyStats      = "stats"
	samplePrefix  = "sample:"
	sampleKeyForm = samplePrefix + "%d:%s:%016x:%016x:%016x"
)

// GameStats stores self-play and session results.
type GameStats struct {
	GamesPlayed   int            `json:"games_played"`
	WinsA         int            `json:"wins_a"`
	WinsB         int            `json:"wins_b"`
	Draws         int            `json:"draws"`
	WinsByBot     map[string]int `json:"wins_by_bot"`
	TotalPlies    int            `json:"total_plies"`
	TotalPlayTime time.Duration  `json:"total_play_time"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{
		WinsByBot: make(map[string]int),
	}
}

// GameResult represents the result of a completed game
type GameResult struct {
	Winner   board.Side
	Draw     bool // ply cap reached without a winner
	BotA     string
	BotB     string
	Plies    int
	Duration time.Duration
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
	mu sync.Mutex // serializes stats read-modify-write
}

// NewStorage opens the database in the default data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// OpenDir opens the database in dir, or in the default data directory when
// dir is empty.
func OpenDir(dir string) (*Storage, error) {
	if dir == "" {
		return NewStorage()
	}
	return Open(dir)
}

// Open opens or creates the database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = badgerLogger{}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open sample store %s: %w", dir, err)
	}
	return &Storage{db: db}, nil
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// sampleKey derives the database key of a sample from its board key.
func sampleKey(k board.Key) []byte {
	return []byte(fmt.Sprintf(sampleKeyForm, k.Size, k.Turn, uint64(k.A), uint64(k.B), uint64(k.Kings)))
}

// SaveSamples writes samples, replacing any stored sample for the same board.
func (s *Storage) SaveSamples(samples []training.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, sample := range samples {
		data, err := json.Marshal(sample)
		if err != nil {
			return err
		}
		if err := wb.Set(sampleKey(sample.Key), data); err != nil {
			return err
		}
	}
	if err := wb.Flush(); err != nil {
		return err
	}

	log.Info().Int("samples", len(samples)).Msg("samples stored")
	return nil
}

// HasSample reports whether a sample for the board is stored.
func (s *Storage) HasSample(k board.Key) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(sampleKey(k))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

// LoadSamples returns up to limit stored samples in key order. A limit of 0
// loads everything.
func (s *Storage) LoadSamples(limit int) ([]training.Sample, error) {
	var out []training.Sample

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(samplePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var sample training.Sample
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &sample)
			})
			if err != nil {
				return err
			}
			out = append(out, sample)
		}
		return nil
	})

	return out, err
}

// CountSamples returns the number of stored samples.
func (s *Storage) CountSamples() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(samplePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// DeleteSamples removes every stored sample.
func (s *Storage) DeleteSamples() error {
	return s.db.DropPrefix([]byte(samplePrefix))
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *GameStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyStats), data)
	})
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Use empty stats
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	return stats, err
}

// RecordGame records a completed game and updates statistics
func (s *Storage) RecordGame(result GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.TotalPlies += result.Plies
	stats.TotalPlayTime += result.Duration

	switch {
	case result.Draw:
		stats.Draws++
	case result.Winner == board.SideA:
		stats.WinsA++
		if result.BotA != "" {
			stats.WinsByBot[result.BotA]++
		}
	default:
		stats.WinsB++
		if result.BotB != "" {
			stats.WinsByBot[result.BotB]++
		}
	}

	return s.SaveStats(stats)
}

// WinRate returns the share of decided games won by side, in percent.
func (s *GameStats) WinRate(side board.Side) float64 {
	decided := s.WinsA + s.WinsB
	if decided == 0 {
		return 0
	}
	wins := s.WinsA
	if side == board.SideB {
		wins = s.WinsB
	}
	return float64(wins) / float64(decided) * 100
}

// badgerLogger forwards badger's warnings and errors to zerolog.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	log.Error().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	log.Warn().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Infof(string, ...interface{}) {}

func (badgerLogger) Debugf(string, ...interface{}) {}
