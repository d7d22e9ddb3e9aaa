package gizmo

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/google/uuid"
)

type AssetId string

// Color is linear RGBA in [0, 1].
type Color [4]float32

type AssetServer struct {
	materials map[AssetId]MaterialAsset
}

type AssetServerModule struct{}

// MaterialComponent points an entity at a material asset. Swapping Asset is how the
// selection highlight is applied and undone.
type MaterialComponent struct {
	Asset AssetId
}

type MaterialAsset struct {
	version uint
	Color   Color
}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		materials: make(map[AssetId]MaterialAsset),
	}
}

func (server AssetServer) AddMaterial(c Color) AssetId {
	id := makeAssetId()

	server.materials[id] = MaterialAsset{
		version: 0,
		Color:   c,
	}

	return id
}

func (server AssetServer) Material(id AssetId) (MaterialAsset, bool) {
	m, ok := server.materials[id]
	return m, ok
}

func (server AssetServer) RemoveMaterial(id AssetId) {
	delete(server.materials, id)
}

func (server AssetServer) MaterialCount() int {
	return len(server.materials)
}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	if app.hasResource(typeOf[AssetServer]()) {
		return
	}
	app.addResources(NewAssetServer())
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// ColorFrom converts any image/color value (including x/image/colornames entries).
func ColorFrom(c color.Color) Color {
	r, g, b, a := c.RGBA()
	return Color{float32(r) / 0xffff, float32(g) / 0xffff, float32(b) / 0xffff, float32(a) / 0xffff}
}

// HSL builds an opaque color from hue in degrees, saturation and lightness in [0, 1].
func HSL(h, s, l float32) Color {
	c := (1 - math32.Abs(2*l-1)) * s
	hp := math32.Mod(h/60, 6)
	if hp < 0 {
		hp += 6
	}
	x := c * (1 - math32.Abs(math32.Mod(hp, 2)-1))

	var r, g, b float32
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := l - c/2
	return Color{r + m, g + m, b + m, 1}
}
