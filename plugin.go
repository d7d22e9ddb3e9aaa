package gizmo

// TransformGizmoModule wires picking, selection, dragging and normalization into an App.
// Input and AssetServer resources are created unless already installed; the transform
// hierarchy is scheduled by the module itself.
type TransformGizmoModule struct {
	UseTagFilter     bool
	SelectionColor   Color
	SelectionButton  MouseButton
	DragButton       MouseButton
	SizeInWorld      float32
	DesiredPixelSize float32
}

// #fde047
var defaultSelectionColor = Color{253.0 / 255, 224.0 / 255, 71.0 / 255, 1}

// DefaultTransformGizmoModule selects with the right button, drags with the left, and only
// picks Transformable entities.
func DefaultTransformGizmoModule() TransformGizmoModule {
	return TransformGizmoModule{
		UseTagFilter:     true,
		SelectionColor:   defaultSelectionColor,
		SelectionButton:  MouseButtonRight,
		DragButton:       MouseButtonLeft,
		SizeInWorld:      defaultSizeInWorld,
		DesiredPixelSize: defaultDesiredPixelSize,
	}
}

func (m TransformGizmoModule) Install(app *App, cmd *Commands) {
	if !app.hasResource(typeOf[Input]()) {
		InputModule{}.Install(app, cmd)
	}
	AssetServerModule{}.Install(app, cmd)
	if !app.hasResource(typeOf[Diagnostics]()) {
		cmd.AddResources(NewDiagnostics())
	}

	sizeInWorld, pixels := m.SizeInWorld, m.DesiredPixelSize
	if sizeInWorld <= 0 {
		sizeInWorld = defaultSizeInWorld
	}
	if pixels <= 0 {
		pixels = defaultDesiredPixelSize
	}
	norm := NewNormalize3d(sizeInWorld, pixels)

	cmd.AddResources(
		NewSelection(m.UseTagFilter, m.SelectionColor, m.SelectionButton, m.DragButton),
		&PickState{},
		&PointerDrags{},
	)

	app.UseSystem(
		System(CameraViewportSystem).
			InStage(Prelude).
			RunAlways(),
	)
	app.UseSystem(
		System(func(cmd *Commands, server *AssetServer) {
			BuildGizmo(cmd, server, norm)
			spawnGizmoCamera(cmd)
		}).
			InStage(Prelude).
			RunOnce(),
	)
	app.UseSystem(
		System(PointerDragSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
	app.UseSystem(
		System(PickingSystem).
			InStage(Update).
			RunAlways(),
	)
	app.UseSystem(
		System(DragSystem).
			InStage(Update).
			RunAlways(),
	)
	app.UseSystem(
		System(TransformHierarchySystem).
			InStage(PostUpdate).
			RunAlways(),
	)
	app.UseSystem(
		System(NormalizeSystem).
			InStage(PreRender).
			RunAlways(),
	)
	app.UseSystem(
		System(TransformHierarchySystem).
			InStage(PreRender).
			RunAlways(),
	)
	app.UseSystem(
		System(GizmoCameraSyncSystem).
			InStage(PreRender).
			RunAlways(),
	)
}
