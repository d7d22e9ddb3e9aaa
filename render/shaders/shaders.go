package shaders

import (
	_ "embed"
)

//go:embed gizmo.wgsl
var GizmoWGSL string
