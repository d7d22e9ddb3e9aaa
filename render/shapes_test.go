package render

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gekko3d/gizmo"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitShapes(t *testing.T) {
	vertices, ranges := unitShapes()
	require.Len(t, ranges, len(allShapes))

	total := uint32(0)
	for _, shape := range allShapes {
		r, ok := ranges[shape]
		require.True(t, ok, "shape %d", shape)
		assert.Equal(t, uint32(0), r.count%2, "line lists come in pairs")
		assert.Equal(t, total, r.offset, "shapes are packed back to back")
		total += r.count
	}
	assert.Equal(t, int(total), len(vertices))

	// Rect and circle lie in the local XZ plane.
	for _, shape := range []gizmo.ShapeType{gizmo.ShapeRect, gizmo.ShapeCircle} {
		r := ranges[shape]
		for _, vert := range vertices[r.offset : r.offset+r.count] {
			assert.Equal(t, float32(0), vert.Pos[1])
		}
	}

	// The circle has radius one.
	r := ranges[gizmo.ShapeCircle]
	for _, vert := range vertices[r.offset : r.offset+r.count] {
		assert.InDelta(t, 1, mgl32.Vec3(vert.Pos).Len(), 1e-5)
	}

	// The line spans one unit along Y.
	line := ranges[gizmo.ShapeLine]
	assert.Equal(t, [3]float32{0, -0.5, 0}, vertices[line.offset].Pos)
	assert.Equal(t, [3]float32{0, 0.5, 0}, vertices[line.offset+1].Pos)
}

func TestBatchDraws_GizmoLast(t *testing.T) {
	draws := []gizmo.Draw{
		{Shape: gizmo.ShapeCone, Gizmo: true, Color: gizmo.Color{1, 0, 0, 1}},
		{Shape: gizmo.ShapeCube, Color: gizmo.Color{0, 1, 0, 1}},
		{Shape: gizmo.ShapeLine, Gizmo: true},
		{Shape: gizmo.ShapeCone, Gizmo: true, Color: gizmo.Color{0, 0, 1, 1}},
		{Shape: gizmo.ShapeCube},
	}

	instances, batches := batchDraws(draws)
	require.Len(t, instances, 5)
	assert.Equal(t, []batch{
		{shape: gizmo.ShapeCube, first: 0, count: 2},
		{shape: gizmo.ShapeLine, first: 2, count: 1},
		{shape: gizmo.ShapeCone, first: 3, count: 2},
	}, batches)
	assert.Equal(t, [4]float32{0, 1, 0, 1}, instances[0].Color, "stable within a batch")
	assert.Equal(t, [4]float32{1, 0, 0, 1}, instances[3].Color)

	_, empty := batchDraws(nil)
	assert.Empty(t, empty)
}

func readMat(buf []byte, offset int) mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range m {
		m[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[offset+i*4:]))
	}
	return m
}

func TestCameraData_WebGPUDepthRange(t *testing.T) {
	cam := gizmo.CameraComponent{Fov: 45, Near: 0.1, Far: 100, Viewport: mgl32.Vec2{800, 600}}
	tr := gizmo.LookAt(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})

	buf := cameraData(cam, tr)
	require.Len(t, buf, cameraDataSize)
	vp := readMat(buf, 0)

	depth := func(p mgl32.Vec3) float32 {
		clip := vp.Mul4x1(p.Vec4(1))
		return clip.Z() / clip.W()
	}
	assert.InDelta(t, 0, depth(mgl32.Vec3{0, 0, 10 - 0.1}), 1e-4, "near plane")
	assert.InDelta(t, 1, depth(mgl32.Vec3{0, 0, 10 - 100}), 1e-4, "far plane")

	pos := math.Float32frombits(binary.LittleEndian.Uint32(buf[64+8:]))
	assert.Equal(t, float32(10), pos)
}
