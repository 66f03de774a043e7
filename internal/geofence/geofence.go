// Package geofence implements the even-odd ray-casting point-in-polygon
// test used to decide whether a navigation target lies inside the
// operating area.
package geofence

// Point is a location in decimal degrees, X=latitude, Y=longitude.
type Point struct {
	X float64
	Y float64
}

// Polygon is an ordered, simple closed polygon (last vertex implicitly
// connects back to the first). Must have at least three vertices.
type Polygon []Point

// Inside reports whether p lies within poly using the standard even-odd
// ray-casting test: a ray cast in +X from p, counting edge crossings.
//
// Behavior on NaN coordinates in p or poly is unspecified; callers must
// reject NaN before calling Inside. Points exactly on an edge have
// implementation-defined membership.
func Inside(p Point, poly Polygon) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := poly[i], poly[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) &&
			p.X < (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
	}
	return inside
}
