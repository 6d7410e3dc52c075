package store

import (
	"math/rand"
	"testing"

	"aeroterra.dev/internal/persistence/snapshot"
)

func TestExportRestoreRoundTrip(t *testing.T) {
	s := newTestStore(t, defaultParams())
	s.EnsureNeighborhood(2, -3)

	rows := s.Export()
	if len(rows) != 9 {
		t.Fatalf("exported %d rows, want 9", len(rows))
	}

	fresh := newTestStore(t, defaultParams())
	if err := fresh.Restore(rows); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if fresh.Len() != s.Len() {
		t.Fatalf("restored %d chunks, want %d", fresh.Len(), s.Len())
	}
	for _, k := range s.Keys() {
		orig, _ := s.GetChunk(k.CX, k.CY)
		got, ok := fresh.GetChunk(k.CX, k.CY)
		if !ok {
			t.Fatalf("chunk %+v missing after restore", k)
		}
		if got.Tint != orig.Tint {
			t.Fatalf("chunk %+v tint %v, want %v", k, got.Tint, orig.Tint)
		}
		a, b := orig.Field.Cells(), got.Field.Cells()
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("chunk %+v cell %d differs", k, i)
			}
		}
	}

	// A restored store keeps tiling seamlessly against its old chunks.
	nb, _ := fresh.EnsureChunk(4, -3)
	edge, _ := fresh.GetChunk(3, -3)
	a, b := edge.Field.Right(), nb.Field.Left()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("post-restore seam differs at %d", i)
		}
	}
}

func TestRestoreRejectsWrongSide(t *testing.T) {
	s := newTestStore(t, defaultParams()) // detail 4, side 17
	err := s.Restore([]snapshot.ChunkV1{{CX: 0, CY: 0, N: 9, Heights: make([]float64, 81)}})
	if err == nil {
		t.Fatal("side-9 row accepted by side-17 store")
	}
}

func TestRestoreRejectsDuplicateAndNonEmpty(t *testing.T) {
	rows := []snapshot.ChunkV1{
		{CX: 0, CY: 0, N: 17, Heights: make([]float64, 17*17)},
		{CX: 0, CY: 0, N: 17, Heights: make([]float64, 17*17)},
	}
	s := newTestStore(t, defaultParams())
	if err := s.Restore(rows); err == nil {
		t.Fatal("duplicate rows accepted")
	}

	s2, err := NewChunkStore(defaultParams(), rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	s2.EnsureChunk(0, 0)
	if err := s2.Restore(rows[:1]); err == nil {
		t.Fatal("restore into non-empty store accepted")
	}
}
