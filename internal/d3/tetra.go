package d3

import "gonum.org/v1/gonum/spatial/r3"

// TetraVolume6 returns six times the signed volume of the tetrahedron
// (p0,p1,p2,p3), that is dot(p1-p0, cross(p2-p0, p3-p0)). The result is positive
// when p3 lies on the side of triangle (p0,p1,p2) its right-handed normal points to.
func TetraVolume6(p0, p1, p2, p3 r3.Vec) float64 {
	return r3.Dot(r3.Sub(p1, p0), r3.Cross(r3.Sub(p2, p0), r3.Sub(p3, p0)))
}

// TriangleNormal returns the unnormalized normal of triangle (a,b,c)
// following the right hand rule.
func TriangleNormal(a, b, c r3.Vec) r3.Vec {
	return r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
}
