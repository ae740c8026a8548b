package board

import "fmt"

// Apply plays a move generated by LegalMoves for the side to move and
// returns the information needed to undo it. The piece is relocated, every
// captured cell is cleared and a man landing on the opponent's home row is
// promoted. Passing a move that does not belong to the position is a
// programming error and panics: the origin, the captured cells and the
// path geometry are checked, the mandatory capture rule is not.
func (p *Position) Apply(m Move) HistoryEntry {
	us := p.Turn
	them := us.Other()
	fromBB := SquareBB(m.From)
	toBB := SquareBB(m.To)

	if !p.geo.Contains(m.From) || !p.geo.Contains(m.To) {
		panic(fmt.Sprintf("board: apply %s: square off the board", m))
	}
	if p.Pieces[us]&fromBB == 0 {
		panic(fmt.Sprintf("board: apply %s: no %s piece on origin", m, us))
	}
	if m.Captured&^p.Pieces[them] != 0 {
		panic(fmt.Sprintf("board: apply %s: captured set holds non-enemy cells", m))
	}

	wasKing := p.Kings&fromBB != 0
	if m.IsCapture() {
		if !p.validChain(m, wasKing) {
			panic(fmt.Sprintf("board: apply %s: inconsistent capture path", m))
		}
	} else if !p.validStep(us, m, wasKing) {
		panic(fmt.Sprintf("board: apply %s: not a legal step", m))
	}

	entry := HistoryEntry{
		Move:          m,
		Moved:         NewPiece(us, wasKing),
		CapturedKings: p.Kings & m.Captured,
		PrevTurn:      us,
	}

	p.Pieces[us] &^= fromBB
	p.Kings &^= fromBB

	// A king chain may end on its own origin, so the destination is checked
	// after the origin has been vacated.
	if p.Occupied()&toBB != 0 {
		panic(fmt.Sprintf("board: apply %s: destination occupied", m))
	}

	p.Pieces[them] &^= m.Captured
	p.Kings &^= m.Captured

	p.Pieces[us] |= toBB
	if wasKing {
		p.Kings |= toBB
	} else if p.geo.PromotionRow[us]&toBB != 0 {
		p.Kings |= toBB
		entry.Promoted = true
	}

	p.Turn = them
	return entry
}

// validStep reports whether a quiet move is a forward step for a man or a
// slide along an empty diagonal for a king.
func (p *Position) validStep(us Side, m Move, king bool) bool {
	if !king {
		for _, d := range forward[us] {
			if p.geo.neighbor[m.From][d] == m.To {
				return true
			}
		}
		return false
	}
	return p.geo.aligned(m.From, m.To) && p.geo.between[m.From][m.To]&p.Occupied() == 0
}

// validChain reports whether every hop of a capture jumps exactly one
// not yet captured enemy and lands on an empty cell. Men jump from two cells
// away; kings may fly over empty cells on either side of the jumped piece.
func (p *Position) validChain(m Move, king bool) bool {
	if m.nhops == 0 {
		return false
	}
	occ := p.Occupied() &^ SquareBB(m.From)
	var seen Bitboard
	at := m.From
	for _, hop := range m.hops[:m.nhops] {
		if !p.geo.aligned(at, hop) || occ.IsSet(hop) {
			return false
		}
		path := p.geo.between[at][hop]
		if !king && path.PopCount() != 1 {
			return false
		}
		jumped := path & m.Captured
		if jumped.PopCount() != 1 || jumped&seen != 0 || path&occ != jumped {
			return false
		}
		seen |= jumped
		at = hop
	}
	return seen == m.Captured
}

// Undo reverts a move made by Apply. Entries must be undone in reverse order.
func (p *Position) Undo(h HistoryEntry) {
	m := h.Move
	us := h.PrevTurn
	them := us.Other()
	toBB := SquareBB(m.To)
	fromBB := SquareBB(m.From)

	p.Pieces[us] &^= toBB
	p.Kings &^= toBB

	p.Pieces[them] |= m.Captured
	p.Kings |= h.CapturedKings

	p.Pieces[us] |= fromBB
	if h.Moved.IsKing() {
		p.Kings |= fromBB
	}

	p.Turn = us
}
