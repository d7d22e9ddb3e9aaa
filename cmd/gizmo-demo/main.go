package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gizmo"
	"github.com/gekko3d/gizmo/platform"
	"github.com/gekko3d/gizmo/render"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/colornames"
)

func init() {
	// GLFW must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "gizmo config file (.yaml, .yml or .toml)")
	scene := flag.String("scene", "minimal", "scene to load: minimal or parenting")
	flag.Parse()

	cfg := gizmo.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = gizmo.LoadConfig(*configPath); err != nil {
			log.Fatalf("config: %v", err)
		}
	}
	gizmoModule, err := cfg.Module()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	window := platform.NewWindowModule(1280, 720, "Transform Gizmo")
	app := gizmo.NewAppBuilder().
		UseModule(gizmo.LoggingModule{Prefix: "gizmo", Debug: cfg.Debug}).
		UseModule(window).
		UseModule(platform.GpuModule{}).
		UseModule(gizmoModule).
		UseModule(gizmo.OrbitCameraModule{}).
		UseModule(render.GizmoRenderModule{ClearColor: wgpu.Color{R: 0.08, G: 0.08, B: 0.1, A: 1}}).
		Build()

	cmd := app.Commands()
	if err := spawnScene(cmd, *scene); err != nil {
		log.Fatal(err)
	}
	app.FlushCommands()

	defer func() {
		if gpu := gizmo.GetResource[platform.GpuState](cmd); gpu != nil {
			if pass := gizmo.GetResource[render.GizmoRenderPass](cmd); pass != nil {
				pass.Release()
			}
			gpu.Release()
		}
		if ws := gizmo.GetResource[platform.WindowState](cmd); ws != nil {
			ws.Destroy()
		}
	}()
	app.Run()
}

func spawnScene(cmd *gizmo.Commands, name string) error {
	server := gizmo.GetResource[gizmo.AssetServer](cmd)

	eye, target := mgl32.Vec3{2, 2.5, 5}, mgl32.Vec3{}
	cam := gizmo.NewPerspectiveCamera(45, 0.1, 1000)
	camTr := gizmo.LookAt(eye, target, mgl32.Vec3{0, 1, 0})
	orbit := gizmo.NewOrbitCamera(eye, target, gizmo.MouseButtonMiddle)
	cmd.AddEntity(&gizmo.PickSource{}, &cam, &camTr, &orbit)

	switch name {
	case "minimal":
		spawnCube(cmd, server, mgl32.Vec3{}, gizmo.ColorFrom(colornames.Steelblue))
		spawnBall(cmd, server, mgl32.Vec3{-2, 0, -1}, gizmo.ColorFrom(colornames.Coral))
	case "parenting":
		parent := spawnCube(cmd, server, mgl32.Vec3{}, gizmo.ColorFrom(colornames.Steelblue))
		child := spawnBall(cmd, server, mgl32.Vec3{1.5, 0, 0}, gizmo.ColorFrom(colornames.Coral))
		cmd.AddComponents(child, &gizmo.Parent{Entity: parent})
	default:
		return fmt.Errorf("unknown scene %q", name)
	}
	return nil
}

func spawnCube(cmd *gizmo.Commands, server *gizmo.AssetServer, pos mgl32.Vec3, color gizmo.Color) gizmo.EntityId {
	local := gizmo.NewLocalTransform(pos, mgl32.QuatIdent())
	world := gizmo.NewTransform(pos)
	return cmd.AddEntity(
		&gizmo.Transformable{},
		&local,
		&world,
		&gizmo.BoxCollider{HalfExtents: mgl32.Vec3{0.5, 0.5, 0.5}},
		&gizmo.ShapeComponent{Type: gizmo.ShapeCube, Scale: mgl32.Vec3{1, 1, 1}},
		&gizmo.MaterialComponent{Asset: server.AddMaterial(color)},
	)
}

func spawnBall(cmd *gizmo.Commands, server *gizmo.AssetServer, pos mgl32.Vec3, color gizmo.Color) gizmo.EntityId {
	local := gizmo.NewLocalTransform(pos, mgl32.QuatIdent())
	world := gizmo.NewTransform(pos)
	return cmd.AddEntity(
		&gizmo.Transformable{},
		&local,
		&world,
		&gizmo.SphereCollider{Radius: 0.4},
		&gizmo.ShapeComponent{Type: gizmo.ShapeSphere, Scale: mgl32.Vec3{0.4, 0.4, 0.4}},
		&gizmo.MaterialComponent{Asset: server.AddMaterial(color)},
	)
}
