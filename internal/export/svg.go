// Package export renders scenes and terminal canvases as SVG.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/bondsim/internal/physics"
	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/viz"
)

// CanvasToSVG turns every lit braille dot into a circle, scale pixels apart.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	dotsW, dotsH := canvas.Dots()
	width, height := float64(dotsW)*scale, float64(dotsH)*scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	r := scale * 0.4
	for y := 0; y < dotsH; y++ {
		for x := 0; x < dotsW; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// palette colours nodes by object id.
var palette = []string{"#00ccff", "#ff6b6b", "#feca57", "#5fd068", "#ff9ff3", "#ffffff"}

// SceneToSVG draws bonds as lines and nodes as dots in world coordinates,
// with y flipped so the floor sits at the bottom. Non-finite nodes and
// their bonds are skipped.
func SceneToSVG(w io.Writer, sc *scene.Scene, size int) error {
	minX, minY, maxX, maxY := -1.0, physics.FloorY, 1.0, 1.0
	for i := range sc.Nodes {
		p := sc.Nodes[i].Position
		if !scene.Finite(p) {
			continue
		}
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}
	const margin = 0.05
	minX, minY, maxX, maxY = minX-margin, minY-margin, maxX+margin, maxY+margin
	scale := float64(size) / math.Max(maxX-minX, maxY-minY)
	tx := func(x float64) float64 { return (x - minX) * scale }
	ty := func(y float64) float64 { return (maxY - y) * scale }

	width, height := (maxX-minX)*scale, (maxY-minY)*scale
	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<line x1="0" y1="%.1f" x2="%.0f" y2="%.1f" stroke="#666666" stroke-width="2"/>
<g stroke="#444466" stroke-width="1">
`, width, height, width, height, ty(physics.FloorY), width, ty(physics.FloorY))

	for _, k := range sc.SortedKeys() {
		a, b := sc.Nodes[k.A].Position, sc.Nodes[k.B].Position
		if !scene.Finite(a) || !scene.Finite(b) {
			continue
		}
		fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n", tx(a[0]), ty(a[1]), tx(b[0]), ty(b[1]))
	}
	sb.WriteString("</g>\n<g>\n")

	for i := range sc.Nodes {
		n := &sc.Nodes[i]
		if !scene.Finite(n.Position) {
			continue
		}
		r := 1.5
		if n.IsBoundary {
			r = 2.5
		}
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n",
			tx(n.Position[0]), ty(n.Position[1]), r, palette[int(n.ObjectID)%len(palette)])
	}
	sb.WriteString("</g>\n</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
