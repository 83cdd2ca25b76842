package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bondsim/internal/scene"
	"github.com/ugorji/go/codec"
)

// SceneFormatVersion is bumped whenever sceneRecord changes shape.
const SceneFormatVersion = 1

var ErrCorruptScene = errors.New("corrupt scene file")

type nodeRecord struct {
	Position [2]float64 `codec:"p"`
	Velocity [2]float64 `codec:"v"`
	LastAcc  [2]float64 `codec:"la"`
	CurAcc   [2]float64 `codec:"ca"`
	Mass     float64    `codec:"m"`
	Drag     float64    `codec:"d"`
	ObjectID uint32     `codec:"o"`
	Boundary bool       `codec:"b"`
}

type bondRecord struct {
	A                   int     `codec:"a"`
	B                   int     `codec:"b"`
	EquilibriumDistance float64 `codec:"dx"`
	PotentialStrength   float64 `codec:"v0"`
}

type sceneRecord struct {
	Version                 int          `codec:"version"`
	ObjectRepulsionDistance float64      `codec:"repulsion_distance"`
	ObjectRepulsionStrength float64      `codec:"repulsion_strength"`
	Nodes                   []nodeRecord `codec:"nodes"`
	Bonds                   []bondRecord `codec:"bonds"`
}

func msgpackHandle() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.WriteExt = true
	return h
}

// SaveScene writes sc as msgpack. Accelerations are kept so a loaded scene
// resumes integration exactly where it stopped.
func SaveScene(w io.Writer, sc *scene.Scene) error {
	rec := sceneRecord{
		Version:                 SceneFormatVersion,
		ObjectRepulsionDistance: sc.ObjectRepulsionDistance,
		ObjectRepulsionStrength: sc.ObjectRepulsionStrength,
		Nodes:                   make([]nodeRecord, len(sc.Nodes)),
		Bonds:                   make([]bondRecord, 0, len(sc.Connections)),
	}
	for i, n := range sc.Nodes {
		rec.Nodes[i] = nodeRecord{
			Position: n.Position,
			Velocity: n.Velocity,
			LastAcc:  n.LastAcceleration,
			CurAcc:   n.CurrentAcceleration,
			Mass:     n.Mass,
			Drag:     n.Drag,
			ObjectID: n.ObjectID,
			Boundary: n.IsBoundary,
		}
	}
	for _, k := range sc.SortedKeys() {
		b := sc.Connections[k]
		rec.Bonds = append(rec.Bonds, bondRecord{
			A:                   k.A,
			B:                   k.B,
			EquilibriumDistance: b.EquilibriumDistance,
			PotentialStrength:   b.PotentialStrength,
		})
	}

	bw := bufio.NewWriter(w)
	if err := codec.NewEncoder(bw, msgpackHandle()).Encode(&rec); err != nil {
		return fmt.Errorf("encoding scene: %w", err)
	}
	return bw.Flush()
}

func LoadScene(r io.Reader) (*scene.Scene, error) {
	var rec sceneRecord
	if err := codec.NewDecoder(bufio.NewReader(r), msgpackHandle()).Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptScene, err)
	}
	if rec.Version != SceneFormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptScene, rec.Version)
	}

	sc := scene.New(rec.ObjectRepulsionDistance, rec.ObjectRepulsionStrength)
	sc.Nodes = make([]scene.Node, len(rec.Nodes))
	for i, n := range rec.Nodes {
		sc.Nodes[i] = scene.Node{
			Position:            mgl64.Vec2(n.Position),
			Velocity:            mgl64.Vec2(n.Velocity),
			LastAcceleration:    mgl64.Vec2(n.LastAcc),
			CurrentAcceleration: mgl64.Vec2(n.CurAcc),
			Mass:                n.Mass,
			Drag:                n.Drag,
			ObjectID:            n.ObjectID,
			IsBoundary:          n.Boundary,
		}
	}
	for _, b := range rec.Bonds {
		if b.A < 0 || b.B < 0 || b.A >= len(sc.Nodes) || b.B >= len(sc.Nodes) || b.A == b.B {
			return nil, fmt.Errorf("%w: bond (%d,%d) out of range for %d nodes", ErrCorruptScene, b.A, b.B, len(sc.Nodes))
		}
		sc.Connect(b.A, b.B, scene.Bond{
			EquilibriumDistance: b.EquilibriumDistance,
			PotentialStrength:   b.PotentialStrength,
		})
	}
	return sc, nil
}

func SaveSceneFile(path string, sc *scene.Scene) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := SaveScene(f, sc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func LoadSceneFile(path string) (*scene.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc, err := LoadScene(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}
