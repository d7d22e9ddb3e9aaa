package gizmo

import (
	"slices"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Colliders are expressed in the entity's local space and follow its world TransformComponent,
// so a scaled parent (the normalized gizmo) scales its parts' colliders too.

type SphereCollider struct {
	Radius float32
}

// BoxCollider is centered on the entity origin.
type BoxCollider struct {
	HalfExtents mgl32.Vec3
}

// RingCollider is a flat annulus in the local XZ plane: points of that plane whose distance
// from the origin is within Thickness of Radius.
type RingCollider struct {
	Radius    float32
	Thickness float32
}

type Visibility struct {
	Hidden bool
}

type RayCastVisibility int

const (
	// RayCastIgnoreVisibility treats hidden entities like visible ones.
	RayCastIgnoreVisibility RayCastVisibility = iota
	RayCastVisibleOnly
)

type RayCastSettings struct {
	// Filter admits candidates; nil admits everything.
	Filter func(EntityId) bool
	// Exclude removes candidates; applied before Filter.
	Exclude    func(EntityId) bool
	EarlyExit  bool
	Visibility RayCastVisibility
}

type RayHit struct {
	Entity   EntityId
	Distance float32
	Point    mgl32.Vec3
}

// CastRay intersects ray with every collider-bearing entity admitted by settings and returns
// the hits ordered by distance. With EarlyExit the scan stops at the first admitted hit.
func CastRay(cmd *Commands, ray Ray, settings RayCastSettings) []RayHit {
	var hits []RayHit

	MakeQuery1[TransformComponent](cmd).Map(func(eid EntityId, tr *TransformComponent) bool {
		if settings.Exclude != nil && settings.Exclude(eid) {
			return true
		}
		if settings.Filter != nil && !settings.Filter(eid) {
			return true
		}
		if settings.Visibility == RayCastVisibleOnly {
			if vis := GetComponent[Visibility](cmd, eid); vis != nil && vis.Hidden {
				return true
			}
		}

		d, ok := intersectEntity(cmd, eid, tr, ray)
		if !ok {
			return true
		}
		hits = append(hits, RayHit{Entity: eid, Distance: d, Point: ray.At(d)})
		return !settings.EarlyExit
	})

	slices.SortStableFunc(hits, func(a, b RayHit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})
	return hits
}

// intersectEntity returns the nearest hit over all colliders of the entity.
func intersectEntity(cmd *Commands, eid EntityId, tr *TransformComponent, ray Ray) (float32, bool) {
	sphere := GetComponent[SphereCollider](cmd, eid)
	box := GetComponent[BoxCollider](cmd, eid)
	ring := GetComponent[RingCollider](cmd, eid)
	if sphere == nil && box == nil && ring == nil {
		return 0, false
	}
	if tr.Scale.X() == 0 || tr.Scale.Y() == 0 || tr.Scale.Z() == 0 {
		return 0, false
	}

	// The local direction is left unnormalized so the ray parameter stays the world distance.
	inv := tr.InverseMatrix()
	local := Ray{
		Origin: inv.Mul4x1(ray.Origin.Vec4(1)).Vec3(),
		Dir:    inv.Mul4x1(ray.Dir.Vec4(0)).Vec3(),
	}

	best := math32.Inf(1)
	if sphere != nil {
		if d, ok := local.intersectSphere(sphere.Radius); ok && d < best {
			best = d
		}
	}
	if box != nil {
		if d, ok := local.intersectBox(box.HalfExtents); ok && d < best {
			best = d
		}
	}
	if ring != nil {
		if d, ok := local.intersectRing(ring.Radius, ring.Thickness); ok && d < best {
			best = d
		}
	}
	if math32.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}

func (r Ray) intersectSphere(radius float32) (float32, bool) {
	a := r.Dir.Dot(r.Dir)
	b := 2 * r.Origin.Dot(r.Dir)
	c := r.Origin.Dot(r.Origin) - radius*radius
	disc := b*b - 4*a*c
	if a == 0 || disc < 0 {
		return 0, false
	}
	sq := math32.Sqrt(disc)
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)
	if t0 >= 0 {
		return t0, true
	}
	if t1 >= 0 {
		return t1, true
	}
	return 0, false
}

// intersectBox is the slab test against an origin-centered box.
func (r Ray) intersectBox(half mgl32.Vec3) (float32, bool) {
	tMin := math32.Inf(-1)
	tMax := math32.Inf(1)
	for i := 0; i < 3; i++ {
		o, d := r.Origin[i], r.Dir[i]
		if math32.Abs(d) < 1e-12 {
			if o < -half[i] || o > half[i] {
				return 0, false
			}
			continue
		}
		t1 := (-half[i] - o) / d
		t2 := (half[i] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math32.Max(tMin, t1)
		tMax = math32.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	if tMax < 0 {
		return 0, false
	}
	if tMin >= 0 {
		return tMin, true
	}
	return tMax, true
}

func (r Ray) intersectRing(radius, thickness float32) (float32, bool) {
	t, ok := r.IntersectPlane(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	if !ok {
		return 0, false
	}
	p := r.At(t)
	dist := math32.Sqrt(p.X()*p.X() + p.Z()*p.Z())
	if math32.Abs(dist-radius) > thickness {
		return 0, false
	}
	return t, true
}
