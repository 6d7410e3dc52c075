// Package snapshot persists the generated terrain so a restarted server
// resumes the same carpet instead of growing a fresh, unrelated one. The
// on-disk format is zstd-compressed: a JSON header line for cheap
// inspection, then the gob-encoded body.
package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
)

type Header struct {
	Version int    `json:"version"`
	Tick    uint64 `json:"tick"`
}

// ChunkV1 is one stored heightfield, row-major.
type ChunkV1 struct {
	CX      int       `json:"cx"`
	CY      int       `json:"cy"`
	N       int       `json:"n"`
	Heights []float64 `json:"heights"`
	Tint    float64   `json:"tint"`
}

// SnapshotV1 captures the chunk store plus the generation tuple it was
// built with. The tuple is recorded so a resume with a different tuning
// file can be detected and refused rather than silently mixing grids.
type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed       int64   `json:"seed"`
	SquareSize float64 `json:"square_size"`
	Detail     int     `json:"detail"`
	Roughness  float64 `json:"roughness"`

	Chunks []ChunkV1 `json:"chunks"`
}

// Filename returns the canonical snapshot name for a tick. Names sort
// lexicographically in tick order.
func Filename(tick uint64) string {
	return fmt.Sprintf("snapshot-%012d.bin.zst", tick)
}

// Latest returns the path of the newest snapshot in dir, or "" if none.
func Latest(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "snapshot-") && strings.HasSuffix(e.Name(), ".bin.zst") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return filepath.Join(dir, names[len(names)-1])
}

func Write(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func Read(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Header line is informational; the gob body repeats it.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
