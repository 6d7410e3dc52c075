package store

import (
	"fmt"

	"aeroterra.dev/internal/persistence/snapshot"
	"aeroterra.dev/internal/terrain/heightfield"
)

// Export dumps every chunk as snapshot rows, ordered by key.
func (s *ChunkStore) Export() []snapshot.ChunkV1 {
	keys := s.Keys()
	out := make([]snapshot.ChunkV1, 0, len(keys))
	for _, k := range keys {
		c := s.chunks[k]
		out = append(out, snapshot.ChunkV1{
			CX:      c.CX,
			CY:      c.CY,
			N:       c.Field.Side(),
			Heights: c.Field.Cells(),
			Tint:    c.Tint,
		})
	}
	return out
}

// Restore loads snapshot rows into an empty store. Rows must match the
// store's side length; malformed rows are rejected rather than patched.
func (s *ChunkStore) Restore(rows []snapshot.ChunkV1) error {
	if len(s.chunks) != 0 {
		return fmt.Errorf("restore into non-empty store (%d chunks)", len(s.chunks))
	}
	want := heightfield.SideForDetail(s.params.Detail)
	for _, r := range rows {
		if r.N != want {
			return fmt.Errorf("chunk (%d,%d): side %d, store expects %d", r.CX, r.CY, r.N, want)
		}
		f, err := heightfield.FromCells(r.N, r.Heights)
		if err != nil {
			return fmt.Errorf("chunk (%d,%d): %w", r.CX, r.CY, err)
		}
		k := ChunkKey{CX: r.CX, CY: r.CY}
		if _, dup := s.chunks[k]; dup {
			return fmt.Errorf("chunk (%d,%d): duplicate row", r.CX, r.CY)
		}
		s.chunks[k] = &Chunk{CX: r.CX, CY: r.CY, Field: f, Tint: r.Tint}
	}
	return nil
}
