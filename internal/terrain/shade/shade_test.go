package shade

import "testing"

func TestChunkTintDeterministic(t *testing.T) {
	f1 := New(1337, 3, 0.5, 0.05)
	f2 := New(1337, 3, 0.5, 0.05)
	for cy := -5; cy <= 5; cy++ {
		for cx := -5; cx <= 5; cx++ {
			if f1.ChunkTint(cx, cy) != f2.ChunkTint(cx, cy) {
				t.Fatalf("tint not deterministic at (%d,%d)", cx, cy)
			}
		}
	}
}

func TestChunkTintRange(t *testing.T) {
	f := New(42, 4, 0.6, 0.03)
	for cy := -50; cy <= 50; cy++ {
		for cx := -50; cx <= 50; cx++ {
			v := f.ChunkTint(cx, cy)
			if v < 0 || v > 1 {
				t.Errorf("tint(%d,%d) = %v, out of [0,1]", cx, cy, v)
			}
		}
	}
}

func TestSeedChangesField(t *testing.T) {
	f1 := New(1, 3, 0.5, 0.05)
	f2 := New(2, 3, 0.5, 0.05)
	same := true
	for cx := 0; cx < 20 && same; cx++ {
		if f1.ChunkTint(cx, 0) != f2.ChunkTint(cx, 0) {
			same = false
		}
	}
	if same {
		t.Fatal("different seeds produced identical tints")
	}
}
