package storage

import (
	"testing"
	"time"

	"github.com/hailam/checkersplay/internal/board"
	"github.com/hailam/checkersplay/internal/training"
)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// playoutSamples collects one sample per ply of a fixed playout.
func playoutSamples(t *testing.T, plies int) []training.Sample {
	t.Helper()
	c := training.NewCollector(0)
	pos, err := board.NewPosition(8)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < plies; i++ {
		moves := pos.LegalMoves(pos.Turn)
		if moves.Len() == 0 {
			break
		}
		m := moves.Get(i % moves.Len())
		c.Record(pos, m)
		pos.Apply(m)
	}
	return c.Drain()
}

func TestSamples(t *testing.T) {
	s := openTest(t)
	samples := playoutSamples(t, 10)

	if err := s.SaveSamples(samples); err != nil {
		t.Fatalf("SaveSamples: %v", err)
	}
	// Saving the same boards again replaces them.
	if err := s.SaveSamples(samples[:3]); err != nil {
		t.Fatalf("SaveSamples: %v", err)
	}

	n, err := s.CountSamples()
	if err != nil {
		t.Fatal(err)
	}
	if n != len(samples) {
		t.Errorf("CountSamples = %d, want %d", n, len(samples))
	}

	loaded, err := s.LoadSamples(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != len(samples) {
		t.Fatalf("loaded %d samples, want %d", len(loaded), len(samples))
	}
	byKey := make(map[board.Key]training.Sample)
	for _, sample := range samples {
		byKey[sample.Key] = sample
	}
	for _, got := range loaded {
		want, ok := byKey[got.Key]
		if !ok {
			t.Fatalf("loaded an unknown sample %+v", got.Key)
		}
		if got.Destination() != want.Destination() || got.Turn != want.Turn || len(got.Board) != 64 {
			t.Errorf("sample %+v did not round trip", got.Key)
		}
	}

	if ok, err := s.HasSample(samples[0].Key); err != nil || !ok {
		t.Errorf("HasSample = %v, %v", ok, err)
	}

	limited, _ := s.LoadSamples(4)
	if len(limited) != 4 {
		t.Errorf("LoadSamples(4) returned %d", len(limited))
	}

	if err := s.DeleteSamples(); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.CountSamples(); n != 0 {
		t.Errorf("%d samples left after DeleteSamples", n)
	}
}

func TestRecordGame(t *testing.T) {
	s := openTest(t)

	results := []GameResult{
		{Winner: board.SideA, BotA: "hard", BotB: "easy", Plies: 40, Duration: time.Second},
		{Winner: board.SideB, BotA: "easy", BotB: "hard", Plies: 52, Duration: time.Second},
		{Draw: true, Plies: 200, Duration: time.Second},
	}
	for _, r := range results {
		if err := s.RecordGame(r); err != nil {
			t.Fatalf("RecordGame: %v", err)
		}
	}

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesPlayed != 3 || stats.WinsA != 1 || stats.WinsB != 1 || stats.Draws != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.WinsByBot["hard"] != 2 {
		t.Errorf("hard won %d games, want 2", stats.WinsByBot["hard"])
	}
	if stats.TotalPlies != 292 || stats.TotalPlayTime != 3*time.Second {
		t.Errorf("totals: %d plies, %v", stats.TotalPlies, stats.TotalPlayTime)
	}
	if rate := stats.WinRate(board.SideA); rate != 50 {
		t.Errorf("WinRate(A) = %.1f, want 50", rate)
	}
}

func TestEmptyStats(t *testing.T) {
	s := openTest(t)
	stats, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesPlayed != 0 || stats.WinRate(board.SideA) != 0 {
		t.Errorf("expected empty stats, got %+v", stats)
	}
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	samples := playoutSamples(t, 4)
	if err := s.SaveSamples(samples); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if n, _ := s.CountSamples(); n != len(samples) {
		t.Errorf("reopened store has %d samples, want %d", n, len(samples))
	}
}
