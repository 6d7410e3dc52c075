// Package store holds the sparse, lazily generated cache of terrain
// chunks. Chunks are generated on first request, constrained against the
// edges of any neighbors already present so the tile set forms a
// continuous surface, and never regenerated or mutated afterwards.
//
// The store has no internal locking: it is owned by the simulation loop
// and all access is serialized there.
package store

import (
	"fmt"
	"math/rand"

	"aeroterra.dev/internal/terrain/heightfield"
	"aeroterra.dev/internal/terrain/shade"
)

// ChunkKey addresses one chunk on the infinite integer grid.
type ChunkKey struct {
	CX int
	CY int
}

// Chunk is one generated terrain tile.
type Chunk struct {
	CX, CY int
	Field  *heightfield.Heightfield
	Tint   float64 // renderer color hint in [0,1]
	Edges  string  // constrained-edge mask at generation time, e.g. "T--L"
}

// Key returns the chunk's grid key.
func (c *Chunk) Key() ChunkKey { return ChunkKey{CX: c.CX, CY: c.CY} }

// Params fixes the generation tuple for every chunk in a store.
type Params struct {
	Detail     int     // side = 2^Detail + 1
	Roughness  float64 // displacement amplitude scale, > 0
	SquareSize float64 // world-unit side of one chunk, > 0

	// EvictRadius > 0 enables distance-based eviction: chunks farther than
	// this many chunks (Chebyshev) from the observer are dropped by
	// EvictBeyond. 0 keeps every chunk for the process lifetime.
	EvictRadius int
}

func (p Params) validate() error {
	if p.Detail < 1 {
		return fmt.Errorf("%w: detail %d, want >= 1", heightfield.ErrInvalidArgument, p.Detail)
	}
	if p.Roughness <= 0 {
		return fmt.Errorf("%w: roughness %v, want > 0", heightfield.ErrInvalidArgument, p.Roughness)
	}
	if p.SquareSize <= 0 {
		return fmt.Errorf("%w: square size %v, want > 0", heightfield.ErrInvalidArgument, p.SquareSize)
	}
	return nil
}

// ChunkStore maps chunk coordinates to generated heightfields.
type ChunkStore struct {
	params Params
	rng    *rand.Rand
	tints  *shade.Field // nil disables tinting
	chunks map[ChunkKey]*Chunk
}

// NewChunkStore validates params once so chunk generation itself cannot
// fail. tints may be nil.
func NewChunkStore(p Params, rng *rand.Rand, tints *shade.Field) (*ChunkStore, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &ChunkStore{
		params: p,
		rng:    rng,
		tints:  tints,
		chunks: map[ChunkKey]*Chunk{},
	}, nil
}

// Params returns the store's fixed generation tuple.
func (s *ChunkStore) Params() Params { return s.params }

// Len returns the number of generated chunks.
func (s *ChunkStore) Len() int { return len(s.chunks) }
