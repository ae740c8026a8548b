package board

import "fmt"

// LegalMoves generates all legal moves for side. Captures are mandatory:
// when any piece of side can capture, only complete capture chains are
// returned. An empty list means side cannot move.
func (p *Position) LegalMoves(side Side) *MoveList {
	ml := NewMoveList()
	p.generateCaptures(ml, side, p.Pieces[side])
	if ml.Len() > 0 {
		return ml
	}
	p.generateQuiet(ml, side, p.Pieces[side])
	return ml
}

// PieceMoves returns the legal moves of the piece on sq. The whole-board
// capture rule applies: if another piece must capture, a piece that cannot
// capture has no moves.
func (p *Position) PieceMoves(sq Square) *MoveList {
	ml := NewMoveList()
	side, ok := p.PieceSide(sq)
	if !ok {
		return ml
	}
	all := p.LegalMoves(side)
	for _, m := range all.Slice() {
		if m.From == sq {
			ml.Add(m)
		}
	}
	return ml
}

// Captures generates only the capture chains of side.
func (p *Position) Captures(side Side) *MoveList {
	ml := NewMoveList()
	p.generateCaptures(ml, side, p.Pieces[side])
	return ml
}

// HasCapture reports whether side has at least one capture available.
func (p *Position) HasCapture(side Side) bool {
	occ := p.Occupied()
	enemies := p.Pieces[side.Other()]
	pieces := p.Pieces[side]
	for pieces != 0 {
		from := pieces.PopLSB()
		king := p.Kings.IsSet(from)
		for _, d := range Directions {
			if _, ok := p.firstJump(from, d, king, occ&^SquareBB(from), enemies, Empty); ok {
				return true
			}
		}
	}
	return false
}

// HasLegalMoves reports whether side can move at all.
func (p *Position) HasLegalMoves(side Side) bool {
	if p.HasCapture(side) {
		return true
	}
	occ := p.Occupied()
	pieces := p.Pieces[side]
	for pieces != 0 {
		from := pieces.PopLSB()
		dirs := forward[side][:]
		if p.Kings.IsSet(from) {
			dirs = Directions[:]
		}
		for _, d := range dirs {
			to := p.geo.neighbor[from][d]
			if to != NoSquare && occ&SquareBB(to) == 0 {
				return true
			}
		}
	}
	return false
}

// IsGameOver reports whether side has no legal move.
func (p *Position) IsGameOver(side Side) bool {
	return !p.HasLegalMoves(side)
}

// Attacked reports whether the piece on sq could be captured by side by.
func (p *Position) Attacked(sq Square, by Side) bool {
	occ := p.Occupied()
	for _, d := range Directions {
		landing := p.geo.neighbor[sq][d]
		if landing == NoSquare || occ&SquareBB(landing) != 0 {
			continue
		}
		back := d.Opposite()
		s := p.geo.neighbor[sq][back]
		if s == NoSquare {
			continue
		}
		if p.Pieces[by]&SquareBB(s) != 0 {
			// Men capture in every direction; kings adjacent too.
			return true
		}
		// Kings capture from a distance along an empty ray.
		for s != NoSquare && occ&SquareBB(s) == 0 {
			s = p.geo.neighbor[s][back]
		}
		if s != NoSquare && p.KingsOf(by)&SquareBB(s) != 0 {
			return true
		}
	}
	return false
}

// generateQuiet adds steps for men and slides for kings.
func (p *Position) generateQuiet(ml *MoveList, side Side, pieces Bitboard) {
	occ := p.Occupied()
	for pieces != 0 {
		from := pieces.PopLSB()
		if p.Kings.IsSet(from) {
			for _, d := range Directions {
				for to := p.geo.neighbor[from][d]; to != NoSquare && occ&SquareBB(to) == 0; to = p.geo.neighbor[to][d] {
					ml.Add(NewMove(from, to))
				}
			}
			continue
		}
		for _, d := range forward[side] {
			to := p.geo.neighbor[from][d]
			if to != NoSquare && occ&SquareBB(to) == 0 {
				ml.Add(NewMove(from, to))
			}
		}
	}
}

// generateCaptures adds one move per complete capture chain.
func (p *Position) generateCaptures(ml *MoveList, side Side, pieces Bitboard) {
	for pieces != 0 {
		from := pieces.PopLSB()
		for _, m := range p.CaptureChains(from) {
			ml.AddUnique(m)
		}
	}
}

// jump is a single capture: the cell jumped and the possible landings.
type jump struct {
	victim   Square
	landings []Square
}

// firstJump finds the capture available from at in direction d.
// occ must not contain the moving piece; captured cells stay in occ as
// blockers and cannot be jumped a second time.
func (p *Position) firstJump(at Square, d Direction, king bool, occ, enemies, captured Bitboard) (jump, bool) {
	g := p.geo
	s := g.neighbor[at][d]
	if king {
		for s != NoSquare && occ&SquareBB(s) == 0 {
			s = g.neighbor[s][d]
		}
	}
	if s == NoSquare || enemies&SquareBB(s) == 0 || captured&SquareBB(s) != 0 {
		return jump{}, false
	}

	j := jump{victim: s}
	for t := g.neighbor[s][d]; t != NoSquare && occ&SquareBB(t) == 0; t = g.neighbor[t][d] {
		j.landings = append(j.landings, t)
		if !king {
			break
		}
	}
	return j, len(j.landings) > 0
}

// chainSearch accumulates the complete chains of one piece.
type chainSearch struct {
	pos     *Position
	origin  Square
	king    bool
	occ     Bitboard
	enemies Bitboard
	chains  []Move
}

// CaptureChains returns every complete capture chain of the piece on from,
// one move per branch. Partial chains are never returned: a chain ends only
// when no further capture exists from its landing square.
func (p *Position) CaptureChains(from Square) []Move {
	side, ok := p.PieceSide(from)
	if !ok {
		return nil
	}
	cs := &chainSearch{
		pos:     p,
		origin:  from,
		king:    p.Kings.IsSet(from),
		occ:     p.Occupied() &^ SquareBB(from),
		enemies: p.Pieces[side.Other()],
	}
	var path [MaxHops]Square
	cs.extend(from, Empty, path[:0])
	return cs.chains
}

// extend explores every capture from at. path holds the landings so far and
// is copied whenever a chain completes.
func (cs *chainSearch) extend(at Square, captured Bitboard, path []Square) {
	extended := false
	for _, d := range Directions {
		j, ok := cs.pos.firstJump(at, d, cs.king, cs.occ, cs.enemies, captured)
		if !ok {
			continue
		}
		if len(path) == MaxHops {
			panic(fmt.Sprintf("board: capture chain from %d exceeds %d hops", cs.origin, MaxHops))
		}
		extended = true
		next := captured | SquareBB(j.victim)
		for _, landing := range j.landings {
			cs.extend(landing, next, append(path, landing))
		}
	}
	if !extended && len(path) > 0 {
		cs.chains = append(cs.chains, NewCapture(cs.origin, path, captured))
	}
}
