package board

// Key is the canonical encoding of a position: occupancy per side, the king
// mask and the side to move. Two move orders reaching the same position
// produce equal keys. Keys are comparable and usable as map keys.
type Key struct {
	A, B  Bitboard
	Kings Bitboard
	Turn  Side
	Size  uint8
}

// Key returns the canonical key of the position.
func (p *Position) Key() Key {
	return Key{
		A:     p.Pieces[SideA],
		B:     p.Pieces[SideB],
		Kings: p.Kings,
		Turn:  p.Turn,
		Size:  uint8(p.geo.Size),
	}
}

// Hash folds the key into 64 bits for table indexing. Equality of keys, not
// hashes, decides whether two positions are the same.
func (k Key) Hash() uint64 {
	h := mix(uint64(k.A) ^ 0x98F107A2BEEF1234)
	h = mix(h ^ uint64(k.B))
	h = mix(h ^ uint64(k.Kings))
	return mix(h ^ uint64(k.Turn)<<8 ^ uint64(k.Size))
}

// mix is the xorshift64* finaliser.
func mix(x uint64) uint64 {
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	return x * 0x2545F4914F6CDD1D
}
