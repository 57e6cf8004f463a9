package main

import (
	"fmt"
	"math"

	"github.com/akmonengine/flatface"
	"github.com/akmonengine/flatface/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// SetupStrip builds a row of quads sharing their edges, each one twisted out of plane
func SetupStrip(quads int, twist float64) *mesh.Mesh {
	m := mesh.New()

	for i := 0; i <= quads; i++ {
		lift := twist * math.Sin(float64(i))
		m.AddVertex(mgl64.Vec3{float64(i), 0, lift})
		m.AddVertex(mgl64.Vec3{float64(i), 1, -lift})
	}

	for i := 0; i < quads; i++ {
		a, b := 2*i, 2*i+1
		c, d := 2*(i+1)+1, 2*(i+1)
		if _, err := m.AddPolygon(a, d, c, b); err != nil {
			panic(err)
		}
	}

	return m
}

func main() {
	fmt.Println("Flattening a twisted strip of quads")
	fmt.Println("===================================")

	m := SetupStrip(6, 0.25)
	selection := m.Select(false)
	diagonal := m.Bounds().Diagonal()

	planarity := flatface.Measure(selection, 1e-5*diagonal, 1)
	fmt.Printf("before: max deviation %.6g (normalized %.6g), non planar %d/%d\n",
		planarity.MaxDeviation, planarity.Normalized(diagonal), planarity.NonPlanar, planarity.Polygons)

	// one pass at a time, to watch the shared edges settle
	for iteration := 1; iteration <= flatface.DEFAULT_ITERATIONS; iteration++ {
		flatface.FlattenPolygons(selection, 1)

		planarity = flatface.Measure(selection, 1e-5*diagonal, 1)
		fmt.Printf("pass %2d: max deviation %.6g, non planar %d\n", iteration, planarity.MaxDeviation, planarity.NonPlanar)
	}

	for _, v := range m.Vertices {
		fmt.Printf("  vertex %2d: %v\n", v.Index, v.Position)
	}
}
