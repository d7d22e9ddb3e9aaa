package gizmo

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawList(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()
	server := NewAssetServer()

	tr := NewTransform(mgl32.Vec3{1, 2, 3})
	red := server.AddMaterial(Color{1, 0, 0, 1})
	cmd.AddEntity(&tr, &ShapeComponent{Type: ShapeCube, Scale: mgl32.Vec3{2, 2, 2}}, &MaterialComponent{Asset: red})

	plain := NewTransform(mgl32.Vec3{})
	cmd.AddEntity(&plain, &ShapeComponent{Type: ShapeSphere, Scale: mgl32.Vec3{1, 1, 1}})

	hidden := NewTransform(mgl32.Vec3{})
	cmd.AddEntity(&hidden, &ShapeComponent{Type: ShapeLine, Scale: mgl32.Vec3{1, 1, 1}}, &Visibility{Hidden: true})
	app.FlushCommands()

	draws := DrawList(cmd, server)
	require.Len(t, draws, 2)

	byShape := map[ShapeType]Draw{}
	for _, d := range draws {
		byShape[d.Shape] = d
	}

	cube := byShape[ShapeCube]
	assert.Equal(t, Color{1, 0, 0, 1}, cube.Color)
	assert.False(t, cube.Gizmo)
	vecNear(t, mgl32.Vec3{3, 4, 5}, mgl32.TransformCoordinate(mgl32.Vec3{1, 1, 1}, cube.Model), 1e-5)

	assert.Equal(t, defaultDrawColor, byShape[ShapeSphere].Color)
}

func TestDrawList_GizmoParts(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()
	server := NewAssetServer()
	BuildGizmo(cmd, server, NewNormalize3d(1.5, 100))
	app.FlushCommands()

	draws := DrawList(cmd, server)
	assert.Len(t, draws, 13)
	for _, d := range draws {
		assert.True(t, d.Gizmo)
		assert.NotEqual(t, defaultDrawColor, d.Color)
	}
}
