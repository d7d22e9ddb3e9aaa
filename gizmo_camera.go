package gizmo

import (
	"github.com/go-gl/mathgl/mgl32"
)

// GizmoCamera marks the camera the overlay pass draws the gizmo with. It follows the pick source.
type GizmoCamera struct{}

func spawnGizmoCamera(cmd *Commands) EntityId {
	cam := NewPerspectiveCamera(45, 0.1, 1000)
	tr := NewTransform(mgl32.Vec3{})
	return cmd.AddEntity(&GizmoCamera{}, &cam, &tr)
}

// GizmoCameraSyncSystem copies the pick source's projection and pose onto the gizmo camera when
// they differ. Without a pick source the gizmo camera keeps its last state and a warning is logged once.
func GizmoCameraSyncSystem(cmd *Commands, diag *Diagnostics) {
	_, srcCam, srcTr, err := pickCamera(cmd)
	if reportPickSource(cmd, diag, "gizmo camera", err) || err != nil {
		return
	}

	MakeQuery3[GizmoCamera, CameraComponent, TransformComponent](cmd).Map(func(eid EntityId, _ *GizmoCamera, cam *CameraComponent, tr *TransformComponent) bool {
		if *cam != *srcCam {
			*cam = *srcCam
		}
		if *tr != *srcTr {
			*tr = *srcTr
		}
		return true
	})
}

// ActiveGizmoCamera returns the gizmo camera's state for rendering.
func ActiveGizmoCamera(cmd *Commands) (CameraComponent, TransformComponent, bool) {
	var (
		cam   CameraComponent
		tr    TransformComponent
		found bool
	)
	MakeQuery3[GizmoCamera, CameraComponent, TransformComponent](cmd).Map(func(eid EntityId, _ *GizmoCamera, c *CameraComponent, t *TransformComponent) bool {
		cam, tr, found = *c, *t, true
		return false
	})
	return cam, tr, found
}
