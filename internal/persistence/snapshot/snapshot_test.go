package snapshot

import (
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, Filename(42))

	snap := SnapshotV1{
		Header:     Header{Version: 1, Tick: 42},
		Seed:       1337,
		SquareSize: 100,
		Detail:     4,
		Roughness:  1.5,
		Chunks: []ChunkV1{
			{CX: -1, CY: 2, N: 3, Heights: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, Tint: 0.25},
		},
	}
	if err := Write(path, snap); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Header != snap.Header || got.Seed != snap.Seed || got.Detail != snap.Detail {
		t.Fatalf("header mismatch: %+v", got)
	}
	if got.SquareSize != snap.SquareSize || got.Roughness != snap.Roughness {
		t.Fatalf("tuple mismatch: %+v", got)
	}
	if len(got.Chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(got.Chunks))
	}
	c := got.Chunks[0]
	if c.CX != -1 || c.CY != 2 || c.N != 3 || c.Tint != 0.25 {
		t.Fatalf("chunk row mismatch: %+v", c)
	}
	for i, v := range snap.Chunks[0].Heights {
		if c.Heights[i] != v {
			t.Fatalf("height %d = %v, want %v", i, c.Heights[i], v)
		}
	}
}

func TestLatestPicksNewest(t *testing.T) {
	dir := t.TempDir()
	if got := Latest(dir); got != "" {
		t.Fatalf("empty dir returned %q", got)
	}
	for _, tick := range []uint64{5, 500, 50} {
		if err := Write(filepath.Join(dir, Filename(tick)), SnapshotV1{Header: Header{Version: 1, Tick: tick}}); err != nil {
			t.Fatalf("write %d: %v", tick, err)
		}
	}
	want := filepath.Join(dir, Filename(500))
	if got := Latest(dir); got != want {
		t.Fatalf("latest = %q, want %q", got, want)
	}
}
