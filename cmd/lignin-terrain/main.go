// Command lignin-terrain evaluates a terrain scene file, tessellates it,
// and writes the result as a .3mf model. With -debug-slice it additionally
// rasterizes a synthetic block and opens an SVG case-classification view of
// one Z layer in the system browser.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/browser"

	"github.com/chazu/lignin-terrain/pkg/debugview"
	"github.com/chazu/lignin-terrain/pkg/engine"
	"github.com/chazu/lignin-terrain/pkg/export"
	"github.com/chazu/lignin-terrain/pkg/kernel"
	"github.com/chazu/lignin-terrain/pkg/kernel/sdfx"
	"github.com/chazu/lignin-terrain/pkg/tessellate"
	"github.com/chazu/lignin-terrain/pkg/transvoxel"
	"github.com/chazu/lignin-terrain/pkg/voxel"
)

func main() {
	scenePath := flag.String("scene", "", "path to a .lignin scene file")
	outPath := flag.String("out", "terrain.3mf", "path to write the exported .3mf model")
	debugSlice := flag.Bool("debug-slice", false, "render a synthetic block's case classification and open it")
	flag.Parse()

	if *debugSlice {
		if err := renderDebugSlice(); err != nil {
			log.Fatalf("lignin-terrain: debug slice: %v", err)
		}
	}

	if *scenePath == "" {
		if !*debugSlice {
			log.Fatal("lignin-terrain: -scene is required unless -debug-slice is given")
		}
		return
	}

	meshes, err := evaluateScene(*scenePath)
	if err != nil {
		log.Fatalf("lignin-terrain: %v", err)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("lignin-terrain: creating output file: %v", err)
	}
	defer f.Close()

	blocks := make(map[string]*transvoxel.MeshOutput, len(meshes))
	for _, m := range meshes {
		blocks[m.PartName] = export.FromKernelMesh(m)
	}

	if err := export.WriteBlocksThreeMF(f, blocks); err != nil {
		log.Fatalf("lignin-terrain: writing 3mf: %v", err)
	}

	fmt.Printf("wrote %d blocks to %s\n", len(blocks), *outPath)
}

func evaluateScene(path string) ([]*kernel.Mesh, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}

	eng := engine.NewEngine()
	g, evalErrs, err := eng.Evaluate(string(source))
	if err != nil {
		return nil, fmt.Errorf("evaluating scene: %w", err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			log.Printf("lignin-terrain: scene error at line %d: %s", e.Line, e.Message)
		}
		return nil, fmt.Errorf("scene had %d error(s)", len(evalErrs))
	}

	k := sdfx.New()
	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		return nil, fmt.Errorf("tessellating scene: %w", err)
	}
	return meshes, nil
}

func renderDebugSlice() error {
	size := voxel.Size{X: 24, Y: 24, Z: 24}
	box, err := sdf.Box3D(v3.Vec{X: 30, Y: 30, Z: 30}, 0)
	if err != nil {
		return fmt.Errorf("building sdf box: %w", err)
	}
	origin := v3.Vec{X: -48, Y: -48, Z: -48}
	grid := voxel.RasterizeSDF(box, size, origin, 4.0)

	f, err := os.CreateTemp("", "lignin-terrain-slice-*.svg")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer f.Close()

	if err := debugview.WriteZSlice(f, grid, size.Z/2, voxel.ChannelDensity); err != nil {
		return fmt.Errorf("writing slice: %w", err)
	}

	if err := browser.OpenFile(f.Name()); err != nil {
		log.Printf("lignin-terrain: could not open browser, slice written to %s: %v", f.Name(), err)
	}
	return nil
}
