package render

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/chewxy/math32"
	"github.com/gekko3d/gizmo"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex matches the WGSL VertexInput
type Vertex struct {
	Pos [3]float32
}

// Instance matches the WGSL instance attributes
type Instance struct {
	ModelMat mgl32.Mat4
	Color    [4]float32
}

type shapeRange struct {
	offset uint32
	count  uint32
}

// batch is a run of instances that share a unit shape.
type batch struct {
	shape gizmo.ShapeType
	first uint32
	count uint32
}

const (
	circleSteps    = 32
	coneSides      = 8
	cameraDataSize = 256
)

var allShapes = []gizmo.ShapeType{
	gizmo.ShapeLine,
	gizmo.ShapeCube,
	gizmo.ShapeSphere,
	gizmo.ShapeRect,
	gizmo.ShapeCircle,
	gizmo.ShapeCone,
}

// clipDepthRemap maps GL clip depth [-w, w] onto WebGPU's [0, w].
var clipDepthRemap = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

func v(x, y, z float32) Vertex { return Vertex{Pos: [3]float32{x, y, z}} }

// ringXZ returns line-list segments of a circle of radius r in the plane y.
func ringXZ(r, y float32, steps int) []Vertex {
	out := make([]Vertex, 0, steps*2)
	step := 2 * math32.Pi / float32(steps)
	for i := 0; i < steps; i++ {
		s1, c1 := math32.Sincos(float32(i) * step)
		s2, c2 := math32.Sincos(float32(i+1) * step)
		out = append(out, v(r*c1, y, r*s1), v(r*c2, y, r*s2))
	}
	return out
}

// unitShapes builds every unit wireframe into one line-list vertex array.
func unitShapes() ([]Vertex, map[gizmo.ShapeType]shapeRange) {
	var vertices []Vertex
	ranges := make(map[gizmo.ShapeType]shapeRange, len(allShapes))
	add := func(t gizmo.ShapeType, shape []Vertex) {
		ranges[t] = shapeRange{offset: uint32(len(vertices)), count: uint32(len(shape))}
		vertices = append(vertices, shape...)
	}

	// Line along Y, centered.
	add(gizmo.ShapeLine, []Vertex{v(0, -0.5, 0), v(0, 0.5, 0)})

	lo, hi := float32(-0.5), float32(0.5)
	cube := []Vertex{
		// Bottom
		v(lo, lo, lo), v(hi, lo, lo),
		v(hi, lo, lo), v(hi, lo, hi),
		v(hi, lo, hi), v(lo, lo, hi),
		v(lo, lo, hi), v(lo, lo, lo),
		// Top
		v(lo, hi, lo), v(hi, hi, lo),
		v(hi, hi, lo), v(hi, hi, hi),
		v(hi, hi, hi), v(lo, hi, hi),
		v(lo, hi, hi), v(lo, hi, lo),
		// Sides
		v(lo, lo, lo), v(lo, hi, lo),
		v(hi, lo, lo), v(hi, hi, lo),
		v(hi, lo, hi), v(hi, hi, hi),
		v(lo, lo, hi), v(lo, hi, hi),
	}
	add(gizmo.ShapeCube, cube)

	// Sphere as three great circles.
	var sphere []Vertex
	step := 2 * math32.Pi / circleSteps
	for i := 0; i < circleSteps; i++ {
		s1, c1 := math32.Sincos(float32(i) * step)
		s2, c2 := math32.Sincos(float32(i+1) * step)
		sphere = append(sphere,
			v(c1, s1, 0), v(c2, s2, 0),
			v(c1, 0, s1), v(c2, 0, s2),
			v(0, c1, s1), v(0, c2, s2),
		)
	}
	add(gizmo.ShapeSphere, sphere)

	add(gizmo.ShapeRect, []Vertex{
		v(lo, 0, lo), v(hi, 0, lo),
		v(hi, 0, lo), v(hi, 0, hi),
		v(hi, 0, hi), v(lo, 0, hi),
		v(lo, 0, hi), v(lo, 0, lo),
	})

	add(gizmo.ShapeCircle, ringXZ(1, 0, circleSteps))

	cone := ringXZ(0.5, -0.5, circleSteps)
	for i := 0; i < coneSides; i++ {
		s, c := math32.Sincos(float32(i) * 2 * math32.Pi / coneSides)
		cone = append(cone, v(0.5*c, -0.5, 0.5*s), v(0, 0.5, 0))
	}
	add(gizmo.ShapeCone, cone)

	return vertices, ranges
}

// batchDraws orders scene shapes before gizmo shapes so the gizmo lands on top without depth
// testing, then groups consecutive draws of the same shape.
func batchDraws(draws []gizmo.Draw) ([]Instance, []batch) {
	sorted := slices.Clone(draws)
	slices.SortStableFunc(sorted, func(a, b gizmo.Draw) int {
		if a.Gizmo != b.Gizmo {
			if b.Gizmo {
				return -1
			}
			return 1
		}
		return int(a.Shape) - int(b.Shape)
	})

	instances := make([]Instance, 0, len(sorted))
	var batches []batch
	for i, d := range sorted {
		instances = append(instances, Instance{ModelMat: d.Model, Color: d.Color})
		if n := len(batches); n > 0 && batches[n-1].shape == d.Shape {
			batches[n-1].count++
			continue
		}
		batches = append(batches, batch{shape: d.Shape, first: uint32(i), count: 1})
	}
	return instances, batches
}

// cameraData packs the CameraData uniform: view_proj, cam_pos, viewport, padded to 256 bytes.
func cameraData(cam gizmo.CameraComponent, tr gizmo.TransformComponent) []byte {
	buf := make([]byte, cameraDataSize)
	put := func(offset int, values ...float32) {
		for i, f := range values {
			binary.LittleEndian.PutUint32(buf[offset+i*4:], math.Float32bits(f))
		}
	}

	vp := clipDepthRemap.Mul4(cam.ViewProjection(tr))
	put(0, vp[:]...)
	put(64, tr.Position.X(), tr.Position.Y(), tr.Position.Z(), 1)
	put(80, cam.Viewport.X(), cam.Viewport.Y(), 0, 0)
	return buf
}
