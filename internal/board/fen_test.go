package board

import (
	"errors"
	"testing"
)

func TestFENRoundTrip(t *testing.T) {
	tests := []string{
		StartFEN,
		".a.a/..../..../b.b. a",
		".a.a.a/a.a.a./....../....../.b.b.b/b.b.b. b",
		"......../......../...b.b../....A.../...B.b../......../......../b....... a",
	}
	for _, fen := range tests {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := pos.ToFEN(); got != fen {
			t.Errorf("round trip mismatch:\n got %s\nwant %s", got, fen)
		}
	}
}

func TestNewPositionLayout(t *testing.T) {
	tests := []struct {
		size    int
		perSide int
	}{
		{4, 2},
		{6, 6},
		{8, 12},
	}
	for _, tc := range tests {
		pos, err := NewPosition(tc.size)
		if err != nil {
			t.Fatal(err)
		}
		for _, s := range []Side{SideA, SideB} {
			if n := pos.Pieces[s].PopCount(); n != tc.perSide {
				t.Errorf("size %d side %s: %d pieces, want %d", tc.size, s, n, tc.perSide)
			}
		}
		if err := pos.Validate(); err != nil {
			t.Errorf("size %d: %v", tc.size, err)
		}
	}

	pos, _ := NewPosition(8)
	if pos.ToFEN() != StartFEN {
		t.Errorf("starting position = %s", pos.ToFEN())
	}
}

func TestParseFENErrors(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"missing side", ".a.a/..../..../b.b."},
		{"bad side", ".a.a/..../..../b.b. c"},
		{"odd size", ".a./.../b.. a"},
		{"short row", ".a.a/.../..../b.b. a"},
		{"light cell", "a.../..../..../b.b. a"},
		{"unknown piece", ".x.a/..../..../b.b. a"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFEN(tc.fen)
			if !errors.Is(err, ErrInvalidFEN) {
				t.Errorf("ParseFEN(%q) = %v, want ErrInvalidFEN", tc.fen, err)
			}
		})
	}
}

func TestParseSquare(t *testing.T) {
	if sq, err := ParseSquare("63", 8); err != nil || sq != 63 {
		t.Errorf("ParseSquare(63) = %d, %v", sq, err)
	}
	if _, err := ParseSquare("36", 6); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("36 on a 6x6 board: got %v", err)
	}
	if _, err := ParseSquare("x", 8); err == nil {
		t.Error("expected an error for a non-numeric square")
	}
}

func TestFlatten(t *testing.T) {
	pos := mustParse(t, SideB,
		".a..",
		"..B.",
		"....",
		"b...",
	)
	v := pos.Flatten()
	if len(v) != 16 {
		t.Fatalf("len = %d, want 16", len(v))
	}
	want := map[int]float32{1: 1, 6: -2, 12: -1}
	for i, x := range v {
		if x != want[i] {
			t.Errorf("cell %d = %v, want %v", i, x, want[i])
		}
	}
}
