package gizmo

import "github.com/go-gl/mathgl/mgl32"

// Draw is one wireframe instance for the overlay pass.
type Draw struct {
	Shape ShapeType
	Color Color
	Model mgl32.Mat4
	Gizmo bool
}

var defaultDrawColor = Color{1, 1, 1, 1}

// DrawList collects every visible shape with its material color. Entities without a material
// draw white; a material id the server does not know draws white too.
func DrawList(cmd *Commands, server *AssetServer) []Draw {
	var draws []Draw
	MakeQuery2[ShapeComponent, TransformComponent](cmd).Map(func(eid EntityId, shape *ShapeComponent, tr *TransformComponent) bool {
		if vis := GetComponent[Visibility](cmd, eid); vis != nil && vis.Hidden {
			return true
		}

		color := defaultDrawColor
		if mat := GetComponent[MaterialComponent](cmd, eid); mat != nil && server != nil {
			if asset, ok := server.Material(mat.Asset); ok {
				color = asset.Color
			}
		}

		draws = append(draws, Draw{
			Shape: shape.Type,
			Color: color,
			Model: tr.Matrix().Mul4(mgl32.Scale3D(shape.Scale.X(), shape.Scale.Y(), shape.Scale.Z())),
			Gizmo: HasComponent[GizmoPart](cmd, eid),
		})
		return true
	})
	return draws
}
