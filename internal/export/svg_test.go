package export

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 2) != "" {
		t.Error("nil canvas should render empty")
	}

	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(7, 7)
	svg := CanvasToSVG(c, 2)
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("svg not closed")
	}
}

func TestSceneToSVG(t *testing.T) {
	sc, err := scene.Generate("two_squares", 3)
	if err != nil {
		t.Fatal(err)
	}
	sc.Nodes[0].Position[0] = math.NaN()

	var buf bytes.Buffer
	if err := SceneToSVG(&buf, sc, 400); err != nil {
		t.Fatal(err)
	}
	svg := buf.String()

	if n := strings.Count(svg, "<circle"); n != len(sc.Nodes)-1 {
		t.Errorf("expected %d nodes drawn, got %d", len(sc.Nodes)-1, n)
	}
	if strings.Contains(svg, "NaN") {
		t.Error("non-finite coordinates leaked into svg")
	}

	dangling := 0
	for k := range sc.Connections {
		if k.A == 0 || k.B == 0 {
			dangling++
		}
	}
	// One floor line plus every bond not touching node 0.
	if n := strings.Count(svg, "<line"); n != 1+len(sc.Connections)-dangling {
		t.Errorf("unexpected line count %d", n)
	}
}
