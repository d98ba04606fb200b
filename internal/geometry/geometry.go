// Package geometry provides the spatial primitives for the triangle game:
// great-circle distance, a local equal-area projection, and the
// point-in-triangle containment test.
package geometry

import "math"

const earthRadiusKm = 6371.0

// DefaultEpsilon is the cross-product tolerance used for collinearity and
// on-edge detection, in km². Small enough that no two distinct cities
// trip it by accident.
const DefaultEpsilon = 1e-6

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Planar is a projected coordinate in kilometers.
type Planar struct {
	X float64
	Y float64
}

// Haversine returns the great-circle distance between a and b in kilometers.
func Haversine(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// Centroid returns the arithmetic midpoint of three coordinates. Good enough
// as a projection center for triangles that don't straddle the antimeridian.
func Centroid(a, b, c Point) Point {
	return Point{
		Lat: (a.Lat + b.Lat + c.Lat) / 3,
		Lng: (a.Lng + b.Lng + c.Lng) / 3,
	}
}

// Projector maps geographic coordinates onto a plane using the Lambert
// azimuthal equal-area projection centered on a fixed point. Containment
// tests run in this plane so that triangles spanning hundreds of kilometers
// keep their area relationships.
type Projector struct {
	sinLat0 float64
	cosLat0 float64
	lng0    float64
}

// NewProjector returns a projector centered on c.
func NewProjector(c Point) *Projector {
	lat0 := c.Lat * math.Pi / 180
	return &Projector{
		sinLat0: math.Sin(lat0),
		cosLat0: math.Cos(lat0),
		lng0:    c.Lng * math.Pi / 180,
	}
}

// Project maps p onto the plane. Units are kilometers.
func (pr *Projector) Project(p Point) Planar {
	lat := p.Lat * math.Pi / 180
	dLng := p.Lng*math.Pi/180 - pr.lng0

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	cosDLng := math.Cos(dLng)

	denom := 1 + pr.sinLat0*sinLat + pr.cosLat0*cosLat*cosDLng
	if denom <= 0 {
		// Antipode of the projection center; push it far outside any triangle.
		return Planar{X: 4 * earthRadiusKm, Y: 4 * earthRadiusKm}
	}
	k := math.Sqrt(2 / denom)

	return Planar{
		X: earthRadiusKm * k * cosLat * math.Sin(dLng),
		Y: earthRadiusKm * k * (pr.cosLat0*sinLat - pr.sinLat0*cosLat*cosDLng),
	}
}

// cross returns the z component of (b-a) x (p-a).
func cross(a, b, p Planar) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// Collinear reports whether the three points lie on one line, within eps.
func Collinear(a, b, c Planar, eps float64) bool {
	return math.Abs(cross(a, b, c)) <= eps
}

// ContainsPoint reports whether p lies inside the triangle tri. Points on an
// edge or vertex count as inside. The result does not depend on vertex order
// or winding.
func ContainsPoint(tri [3]Planar, p Planar, eps float64) bool {
	d0 := cross(tri[0], tri[1], p)
	d1 := cross(tri[1], tri[2], p)
	d2 := cross(tri[2], tri[0], p)

	hasNeg := d0 < -eps || d1 < -eps || d2 < -eps
	hasPos := d0 > eps || d1 > eps || d2 > eps

	return !(hasNeg && hasPos)
}
