package telemetry

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/evolenia/components"
)

// SnapshotVersion is incremented when the sidecar format changes.
const SnapshotVersion = 1

// snapshotMagic opens every binary snapshot file.
var snapshotMagic = [8]byte{'E', 'V', 'O', 'S', 'N', 'P', '0', '1'}

// MaxSnapshotCells bounds width*height read from a snapshot header.
const MaxSnapshotCells = 1 << 24

// ErrBadMagic is returned when a file is not a snapshot.
var ErrBadMagic = errors.New("invalid snapshot magic")

// ErrBadDimensions is returned when a snapshot header declares an empty
// grid or one larger than MaxSnapshotCells.
var ErrBadDimensions = errors.New("invalid snapshot dimensions")

// Snapshot is the committed world state at one frame.
//
// The per-cell buffers go to a little-endian binary file: magic, u32 width,
// u32 height, then mass, energy, genome A (four values per cell), genome B
// and resource, each prefixed with a u64 value count. The remaining fields
// go to a JSON sidecar next to it.
type Snapshot struct {
	Version int    `json:"version"`
	Seed    int64  `json:"seed"`
	Frame   uint32 `json:"frame"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Event   *Event `json:"event,omitempty"`

	Mass     []float32            `json:"-"`
	Energy   []float32            `json:"-"`
	Genome   []components.GenomeA `json:"-"`
	Mut      []float32            `json:"-"`
	Resource []float32            `json:"-"`
}

// NewSnapshot copies the committed buffers of g.
func NewSnapshot(g Grid, frame uint32, seed int64) *Snapshot {
	return &Snapshot{
		Version:  SnapshotVersion,
		Seed:     seed,
		Frame:    frame,
		Width:    g.Width(),
		Height:   g.Height(),
		Mass:     append([]float32(nil), g.Mass()...),
		Energy:   append([]float32(nil), g.Energy()...),
		Genome:   append([]components.GenomeA(nil), g.GenomeA()...),
		Mut:      append([]float32(nil), g.GenomeB()...),
		Resource: append([]float32(nil), g.Resource()...),
	}
}

// CheckDimensions returns an error unless the snapshot is w×h.
func (s *Snapshot) CheckDimensions(w, h int) error {
	if s.Width != w || s.Height != h {
		return fmt.Errorf("snapshot dimensions %dx%d incompatible with world %dx%d", s.Width, s.Height, w, h)
	}
	n := w * h
	if len(s.Mass) != n || len(s.Energy) != n || len(s.Genome) != n || len(s.Mut) != n || len(s.Resource) != n {
		return fmt.Errorf("snapshot buffers do not match %dx%d", w, h)
	}
	return nil
}

// SidecarPath returns the JSON metadata path for a snapshot file.
func SidecarPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
}

// SaveSnapshot writes the binary snapshot to path and its sidecar beside it.
func SaveSnapshot(path string, s *Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := s.encode(w); err != nil {
		f.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}

	meta, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot metadata: %w", err)
	}
	if err := os.WriteFile(SidecarPath(path), meta, 0644); err != nil {
		return fmt.Errorf("write snapshot metadata: %w", err)
	}
	return nil
}

// SaveSnapshotToDir writes the snapshot as snapshot_<frame>.snap in dir
// (snapshot_<frame>_<event>.snap when it was triggered by an event) and
// returns the path.
func SaveSnapshotToDir(dir string, s *Snapshot) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	name := fmt.Sprintf("snapshot_%d", s.Frame)
	if s.Event != nil {
		name += "_" + strings.ReplaceAll(string(s.Event.Type), " ", "_")
	}
	path := filepath.Join(dir, name+".snap")
	if err := SaveSnapshot(path, s); err != nil {
		return "", err
	}
	return path, nil
}

// LoadSnapshot reads a binary snapshot and, if present, its sidecar.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	s, err := decodeSnapshot(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	meta, err := os.ReadFile(SidecarPath(path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.Version = SnapshotVersion
	case err != nil:
		return nil, fmt.Errorf("read snapshot metadata: %w", err)
	default:
		w, h := s.Width, s.Height
		if err := json.Unmarshal(meta, s); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot metadata: %w", err)
		}
		// The binary header is authoritative for dimensions
		s.Width, s.Height = w, h
	}
	return s, nil
}

func (s *Snapshot) encode(w io.Writer) error {
	le := binary.LittleEndian
	if _, err := w.Write(snapshotMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, le, [2]uint32{uint32(s.Width), uint32(s.Height)}); err != nil {
		return err
	}
	for _, v := range []any{s.Mass, s.Energy, s.Genome, s.Mut, s.Resource} {
		count := uint64(binary.Size(v) / 4)
		if err := binary.Write(w, le, count); err != nil {
			return err
		}
		if err := binary.Write(w, le, v); err != nil {
			return err
		}
	}
	return nil
}

func decodeSnapshot(r io.Reader) (*Snapshot, error) {
	le := binary.LittleEndian
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}
	if magic != snapshotMagic {
		return nil, ErrBadMagic
	}
	var dims [2]uint32
	if err := binary.Read(r, le, &dims); err != nil {
		return nil, err
	}
	n := uint64(dims[0]) * uint64(dims[1])
	if n == 0 || n > MaxSnapshotCells {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadDimensions, dims[0], dims[1])
	}
	s := &Snapshot{Width: int(dims[0]), Height: int(dims[1])}

	readVec := func(perCell uint64) ([]float32, error) {
		var count uint64
		if err := binary.Read(r, le, &count); err != nil {
			return nil, err
		}
		if count != n*perCell {
			return nil, fmt.Errorf("vector holds %d values, want %d", count, n*perCell)
		}
		v := make([]float32, count)
		if err := binary.Read(r, le, v); err != nil {
			return nil, err
		}
		return v, nil
	}

	var err error
	if s.Mass, err = readVec(1); err != nil {
		return nil, fmt.Errorf("mass: %w", err)
	}
	if s.Energy, err = readVec(1); err != nil {
		return nil, fmt.Errorf("energy: %w", err)
	}
	flat, err := readVec(4)
	if err != nil {
		return nil, fmt.Errorf("genome A: %w", err)
	}
	s.Genome = make([]components.GenomeA, n)
	for i := range s.Genome {
		s.Genome[i] = components.GenomeA{R: flat[4*i], Mu: flat[4*i+1], Sigma: flat[4*i+2], Agg: flat[4*i+3]}
	}
	if s.Mut, err = readVec(1); err != nil {
		return nil, fmt.Errorf("genome B: %w", err)
	}
	if s.Resource, err = readVec(1); err != nil {
		return nil, fmt.Errorf("resource: %w", err)
	}
	return s, nil
}
