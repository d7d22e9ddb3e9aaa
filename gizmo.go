package gizmo

import "github.com/go-gl/mathgl/mgl32"

type PartKind int

const (
	PartTranslateAxis PartKind = iota
	PartTranslateHandle
	PartTranslatePlane
	PartFreeHandle
	PartRotateArc
)

func (k PartKind) String() string {
	switch k {
	case PartTranslateAxis:
		return "translate-axis"
	case PartTranslateHandle:
		return "translate-handle"
	case PartTranslatePlane:
		return "translate-plane"
	case PartFreeHandle:
		return "free-handle"
	case PartRotateArc:
		return "rotate-arc"
	}
	return "unknown"
}

// GizmoRoot marks the single gizmo entity. It has no shape of its own; its parts hang under it.
type GizmoRoot struct{}

// GizmoPart marks an interactive child of the gizmo. The axis or plane it controls is not stored:
// drag handlers read it from the part's world orientation (up, forward, right).
type GizmoPart struct {
	Kind PartKind
}

type ShapeType int

const (
	ShapeLine ShapeType = iota
	ShapeCube
	ShapeSphere
	ShapeRect   // wireframe square in the local XZ plane
	ShapeCircle // wireframe circle in the local XZ plane
	ShapeCone   // apex toward local +Y
)

// ShapeComponent draws a unit wireframe shape scaled by Scale under the entity's world transform.
// Unit shapes span [-0.5, 0.5] (line and cone along Y), sphere and circle have radius 1.
type ShapeComponent struct {
	Type  ShapeType
	Scale mgl32.Vec3
}

// Gizmo geometry in gizmo-local units, before normalization.
const (
	gizmoAxisLength   = float32(1.3)
	gizmoArcRadius    = float32(1.0)
	gizmoArcThickness = float32(0.08)
	gizmoPlaneSize    = float32(0.325)
	gizmoPlaneOffset  = gizmoPlaneSize/2 + 0.26
	gizmoHandleRadius = float32(0.2)
	gizmoConeRadius   = float32(0.1)
	gizmoConeHeight   = float32(0.25)
	gizmoShaftRadius  = float32(0.08)
)

const (
	defaultSizeInWorld      = float32(1.5)
	defaultDesiredPixelSize = float32(100)
)

type gizmoPartDef struct {
	kind     PartKind
	position mgl32.Vec3
	rotation mgl32.Quat
	color    Color
	shape    ShapeComponent
	collider any
}

func rotX(deg float32) mgl32.Quat { return mgl32.QuatRotate(mgl32.DegToRad(deg), mgl32.Vec3{1, 0, 0}) }
func rotY(deg float32) mgl32.Quat { return mgl32.QuatRotate(mgl32.DegToRad(deg), mgl32.Vec3{0, 1, 0}) }
func rotZ(deg float32) mgl32.Quat { return mgl32.QuatRotate(mgl32.DegToRad(deg), mgl32.Vec3{0, 0, 1}) }

func gizmoPartDefs() []gizmoPartDef {
	red := HSL(0, 0.8, 0.6)
	green := HSL(120, 0.8, 0.6)
	blue := HSL(240, 0.8, 0.6)
	grey := HSL(0, 0, 0.6)

	half := gizmoAxisLength / 2
	po := gizmoPlaneOffset

	shaft := func(pos mgl32.Vec3, rot mgl32.Quat, c Color) gizmoPartDef {
		return gizmoPartDef{
			kind: PartTranslateAxis, position: pos, rotation: rot, color: c,
			shape:    ShapeComponent{Type: ShapeLine, Scale: mgl32.Vec3{1, gizmoAxisLength, 1}},
			collider: &BoxCollider{HalfExtents: mgl32.Vec3{gizmoShaftRadius, half, gizmoShaftRadius}},
		}
	}
	cone := func(pos mgl32.Vec3, rot mgl32.Quat, c Color) gizmoPartDef {
		return gizmoPartDef{
			kind: PartTranslateHandle, position: pos, rotation: rot, color: c,
			shape:    ShapeComponent{Type: ShapeCone, Scale: mgl32.Vec3{2 * gizmoConeRadius, gizmoConeHeight, 2 * gizmoConeRadius}},
			collider: &BoxCollider{HalfExtents: mgl32.Vec3{gizmoConeRadius, gizmoConeHeight / 2, gizmoConeRadius}},
		}
	}
	plane := func(pos mgl32.Vec3, rot mgl32.Quat, c Color) gizmoPartDef {
		return gizmoPartDef{
			kind: PartTranslatePlane, position: pos, rotation: rot, color: c,
			shape:    ShapeComponent{Type: ShapeRect, Scale: mgl32.Vec3{gizmoPlaneSize, 1, gizmoPlaneSize}},
			collider: &BoxCollider{HalfExtents: mgl32.Vec3{gizmoPlaneSize / 2, 0.01, gizmoPlaneSize / 2}},
		}
	}
	arc := func(rot mgl32.Quat, c Color) gizmoPartDef {
		return gizmoPartDef{
			kind: PartRotateArc, rotation: rot, color: c,
			shape:    ShapeComponent{Type: ShapeCircle, Scale: mgl32.Vec3{gizmoArcRadius, gizmoArcRadius, gizmoArcRadius}},
			collider: &RingCollider{Radius: gizmoArcRadius, Thickness: gizmoArcThickness},
		}
	}

	return []gizmoPartDef{
		shaft(mgl32.Vec3{half, 0, 0}, rotZ(90), red),
		shaft(mgl32.Vec3{0, half, 0}, rotY(90), green),
		shaft(mgl32.Vec3{0, 0, half}, rotX(90), blue),

		cone(mgl32.Vec3{gizmoAxisLength, 0, 0}, rotZ(-90), red),
		cone(mgl32.Vec3{0, gizmoAxisLength, 0}, mgl32.QuatIdent(), green),
		cone(mgl32.Vec3{0, 0, gizmoAxisLength}, rotX(90), blue),

		plane(mgl32.Vec3{0, po, po}, rotZ(-90), red),
		plane(mgl32.Vec3{po, 0, po}, mgl32.QuatIdent(), green),
		plane(mgl32.Vec3{po, po, 0}, rotX(90), blue),

		{
			kind: PartFreeHandle, rotation: mgl32.QuatIdent(), color: grey,
			shape:    ShapeComponent{Type: ShapeSphere, Scale: mgl32.Vec3{gizmoHandleRadius, gizmoHandleRadius, gizmoHandleRadius}},
			collider: &SphereCollider{Radius: gizmoHandleRadius},
		},

		arc(rotZ(90), red),
		arc(mgl32.QuatIdent(), green),
		arc(rotZ(90).Mul(rotX(90)), blue),
	}
}

// BuildGizmo spawns the gizmo root and its parts at the world origin and returns the root.
// Each color gets one material shared by the parts of that axis.
func BuildGizmo(cmd *Commands, server *AssetServer, norm Normalize3d) EntityId {
	rootLocal := NewLocalTransform(mgl32.Vec3{}, mgl32.QuatIdent())
	rootWorld := rootLocal.asTransform()
	root := cmd.AddEntity(
		&GizmoRoot{},
		&norm,
		&rootLocal,
		&rootWorld,
	)

	materials := make(map[Color]AssetId)
	for _, def := range gizmoPartDefs() {
		mat, ok := materials[def.color]
		if !ok {
			mat = server.AddMaterial(def.color)
			materials[def.color] = mat
		}

		local := NewLocalTransform(def.position, def.rotation)
		world := rootWorld.compose(local)
		shape := def.shape
		cmd.AddEntity(
			&GizmoPart{Kind: def.kind},
			&Parent{Entity: root},
			&local,
			&world,
			&shape,
			&MaterialComponent{Asset: mat},
			def.collider,
		)
	}

	cmd.Logger().Debugf("gizmo: built root %d with %d parts", root, len(gizmoPartDefs()))
	return root
}

// FindGizmoRoot returns the gizmo root entity or NoEntity.
func FindGizmoRoot(cmd *Commands) EntityId {
	root := NoEntity
	MakeQuery1[GizmoRoot](cmd).Map(func(eid EntityId, _ *GizmoRoot) bool {
		root = eid
		return false
	})
	return root
}
