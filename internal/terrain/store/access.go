package store

import (
	"math"
	"sort"

	"aeroterra.dev/internal/terrain/heightfield"
)

// neighborOrder is the fixed enumeration used by EnsureNeighborhood after
// the center chunk. The order is part of the store's semantics: within one
// call, later chunks constrain against earlier ones, so it decides which
// chunk's edge is authoritative at each fresh border.
var neighborOrder = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// GetChunk returns the chunk at (cx, cy) if it has been generated.
func (s *ChunkStore) GetChunk(cx, cy int) (*Chunk, bool) {
	c, ok := s.chunks[ChunkKey{CX: cx, CY: cy}]
	return c, ok
}

// EnsureChunk generates the chunk at (cx, cy) if absent and reports
// whether it was newly generated. Requesting a present chunk is a no-op
// that returns the stored value unchanged.
func (s *ChunkStore) EnsureChunk(cx, cy int) (*Chunk, bool) {
	k := ChunkKey{CX: cx, CY: cy}
	if c, ok := s.chunks[k]; ok {
		return c, false
	}

	// Params were validated at construction and every constraint below is
	// extracted from a field of the same side, so Generate cannot fail.
	cons := s.constraintsFor(cx, cy)
	field, err := heightfield.Generate(s.params.Detail, s.params.Roughness, cons, s.rng)
	if err != nil {
		panic("store: generate: " + err.Error())
	}

	c := &Chunk{CX: cx, CY: cy, Field: field, Edges: cons.Mask()}
	if s.tints != nil {
		c.Tint = s.tints.ChunkTint(cx, cy)
	}
	s.chunks[k] = c
	return c, true
}

// constraintsFor extracts the facing edge of every neighbor already in the
// store. An absent neighbor leaves that edge free; that is the normal case
// on the expansion frontier, not an error.
func (s *ChunkStore) constraintsFor(cx, cy int) heightfield.Constraints {
	var c heightfield.Constraints
	if nb, ok := s.chunks[ChunkKey{CX: cx, CY: cy + 1}]; ok {
		c.Top = nb.Field.Bottom()
	}
	if nb, ok := s.chunks[ChunkKey{CX: cx, CY: cy - 1}]; ok {
		c.Bottom = nb.Field.Top()
	}
	if nb, ok := s.chunks[ChunkKey{CX: cx - 1, CY: cy}]; ok {
		c.Left = nb.Field.Right()
	}
	if nb, ok := s.chunks[ChunkKey{CX: cx + 1, CY: cy}]; ok {
		c.Right = nb.Field.Left()
	}
	return c
}

// EnsureNeighborhood generates the chunk at (cx, cy) and its 8 neighbors,
// center first, then neighborOrder. It returns the newly generated chunks
// in generation order.
func (s *ChunkStore) EnsureNeighborhood(cx, cy int) []*Chunk {
	var created []*Chunk
	if c, ok := s.EnsureChunk(cx, cy); ok {
		created = append(created, c)
	}
	for _, d := range neighborOrder {
		if c, ok := s.EnsureChunk(cx+d[0], cy+d[1]); ok {
			created = append(created, c)
		}
	}
	return created
}

// ChunkAt converts a continuous world position to the containing chunk.
func (s *ChunkStore) ChunkAt(worldX, worldY float64) ChunkKey {
	return ChunkKey{
		CX: int(math.Floor(worldX / s.params.SquareSize)),
		CY: int(math.Floor(worldY / s.params.SquareSize)),
	}
}

// EvictBeyond drops chunks farther than EvictRadius (Chebyshev) from
// center and returns the evicted keys. With EvictRadius 0 it does nothing,
// matching the default never-evict semantics.
func (s *ChunkStore) EvictBeyond(center ChunkKey) []ChunkKey {
	if s.params.EvictRadius <= 0 {
		return nil
	}
	var evicted []ChunkKey
	for k := range s.chunks {
		dx := absInt(k.CX - center.CX)
		dy := absInt(k.CY - center.CY)
		if dx > s.params.EvictRadius || dy > s.params.EvictRadius {
			delete(s.chunks, k)
			evicted = append(evicted, k)
		}
	}
	sort.Slice(evicted, func(i, j int) bool {
		if evicted[i].CX != evicted[j].CX {
			return evicted[i].CX < evicted[j].CX
		}
		return evicted[i].CY < evicted[j].CY
	})
	return evicted
}

// Keys returns every generated chunk key, ordered by (CX, CY).
func (s *ChunkStore) Keys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(s.chunks))
	for k := range s.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		return keys[i].CY < keys[j].CY
	})
	return keys
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
