package main

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/bondsim/internal/export"
	"github.com/san-kum/bondsim/internal/metrics"
	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/storage"
	"github.com/san-kum/bondsim/internal/topology"
	"github.com/san-kum/bondsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	genSize   int
	genOutput string
	svgSize   int
	svgOutput string
	svgDots   int
)

func newSceneCmd() *cobra.Command {
	sceneCmd := &cobra.Command{
		Use:   "scene",
		Short: "create and inspect scene files",
	}

	generateCmd := &cobra.Command{
		Use:   "generate [preset]",
		Short: "write a preset scene to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scene.Generate(args[0], genSize)
			if err != nil {
				return err
			}
			out := genOutput
			if out == "" {
				out = fmt.Sprintf("%s_%d.msgpack", args[0], genSize)
			}
			if err := storage.SaveSceneFile(out, sc); err != nil {
				return err
			}
			fmt.Printf("wrote %s: %d nodes, %d bonds\n", out, len(sc.Nodes), len(sc.Connections))
			return nil
		},
	}
	generateCmd.Flags().IntVar(&genSize, "size", scene.DefaultSize, "object edge length")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "output file")

	infoCmd := &cobra.Command{
		Use:   "info [file]",
		Short: "summarize a scene file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := storage.LoadSceneFile(args[0])
			if err != nil {
				return err
			}
			printSceneInfo(sc)
			return nil
		},
	}

	renderCmd := &cobra.Command{
		Use:   "render [file]",
		Short: "draw a scene file as SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := storage.LoadSceneFile(args[0])
			if err != nil {
				return err
			}
			w := os.Stdout
			if svgOutput != "" {
				f, err := os.Create(svgOutput)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if svgDots > 0 {
				c := viz.NewCanvas(svgDots, max(1, svgDots/2))
				viz.DrawScene(c, viz.DefaultViewport, sc)
				_, err := fmt.Fprintln(w, export.CanvasToSVG(c, float64(svgSize)/float64(2*svgDots)))
				return err
			}
			return export.SceneToSVG(w, sc, svgSize)
		},
	}
	renderCmd.Flags().IntVar(&svgSize, "px", 800, "image size in pixels")
	renderCmd.Flags().IntVar(&svgDots, "braille", 0, "render through a braille canvas this many cells wide")
	renderCmd.Flags().StringVarP(&svgOutput, "output", "o", "", "output file (default stdout)")

	sceneCmd.AddCommand(generateCmd, infoCmd, renderCmd)
	return sceneCmd
}

func printSceneInfo(sc *scene.Scene) {
	objects := map[uint32]int{}
	for i := range sc.Nodes {
		objects[sc.Nodes[i].ObjectID]++
	}
	e := metrics.Energy(sc)

	fmt.Printf("nodes:      %d (%d boundary)\n", len(sc.Nodes), sc.BoundaryCount())
	fmt.Printf("bonds:      %d\n", len(sc.Connections))
	fmt.Printf("objects:    %d\n", len(objects))
	fmt.Printf("repulsion:  dx=%.4g v0=%.4g\n", sc.ObjectRepulsionDistance, sc.ObjectRepulsionStrength)
	fmt.Printf("diverged:   %t\n", sc.IsBroken())
	fmt.Printf("energy:     kinetic=%.4g gravity=%.4g bond=%.4g wall=%.4g object=%.4g total=%.4g\n",
		e.Kinetic, e.Gravity, e.Bond, e.Wall, e.ObjectRepulsion, e.Total())

	if p := metrics.MaxPressure(sc.Nodes, topology.BuildConnections(sc)); !math.IsInf(p, -1) {
		fmt.Printf("max pressure: %.4g\n", p)
	}
}
